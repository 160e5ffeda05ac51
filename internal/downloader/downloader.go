package downloader

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Executor скачивает видео через внешний бинарник yt-dlp в изолированную
// рабочую папку запроса.
type Executor struct {
	binPath string
}

// New создает исполнитель скачиваний. Путь к yt-dlp берется из YTDLP_PATH,
// иначе ищется локальный бинарник рядом с процессом, иначе yt-dlp из PATH.
func New() *Executor {
	if p := os.Getenv("YTDLP_PATH"); p != "" {
		return &Executor{binPath: p}
	}
	local := "./yt-dlp_linux"
	if runtime.GOOS == "windows" {
		local = "./yt-dlp.exe"
	}
	if _, err := os.Stat(local); err == nil {
		abs, _ := filepath.Abs(local)
		return &Executor{binPath: abs}
	}
	return &Executor{binPath: "yt-dlp"}
}

// Download скачивает одно видео по ссылке в папку scratchDir и возвращает
// путь к файлу и mime-тип. Плейлисты не разворачиваются, yt-dlp сам делает
// до двух повторов. Вызов блокирующий: вынести его с основного потока
// обработки — забота вызывающей стороны.
func (e *Executor) Download(url, scratchDir string) (string, string, error) {
	outTemplate := filepath.Join(scratchDir, "%(title).80s.%(ext)s")
	args := []string{
		"-f", "mp4/bestvideo+bestaudio/best",
		"--merge-output-format", "mp4",
		"--no-playlist",
		"--no-mtime",
		"--quiet", "--no-warnings",
		"--retries", "2",
		"-o", outTemplate,
		"--no-simulate", "--print", "after_move:filepath",
		url,
	}

	cmd := exec.Command(e.binPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		return "", "", fmt.Errorf("yt-dlp завершился с ошибкой: %v, вывод: %s", err, detail)
	}

	// yt-dlp печатает ожидаемый путь к результату; после слияния дорожек
	// расширение могло измениться, поэтому ищем файл по основе имени.
	predicted := lastLine(stdout.String())
	found := LocateOutput(scratchDir, predicted)

	if _, err := os.Stat(found); err != nil {
		return "", "", fmt.Errorf("yt-dlp отработал, но файл не найден: %s", found)
	}
	return found, MimeFor(found), nil
}

// LocateOutput ищет в папке первый обычный файл, основа имени которого
// начинается с основы ожидаемого файла. Если такого нет, возвращает
// ожидаемый путь как есть.
func LocateOutput(dir, predicted string) string {
	base := filepath.Base(predicted)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		return predicted
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return predicted
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		entryStem := strings.TrimSuffix(name, filepath.Ext(name))
		if strings.HasPrefix(entryStem, stem) {
			return filepath.Join(dir, name)
		}
	}
	return predicted
}

var mimeByExt = map[string]string{
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
}

// MimeFor определяет mime-тип по расширению файла, по умолчанию video/mp4.
func MimeFor(path string) string {
	if t, ok := mimeByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return t
	}
	return "video/mp4"
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
