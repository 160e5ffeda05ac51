package downloader

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLocateOutputExactMatch(t *testing.T) {
	dir := t.TempDir()
	want := writeFile(t, dir, "Мое видео.mp4")

	got := LocateOutput(dir, filepath.Join(dir, "Мое видео.mp4"))
	if got != want {
		t.Errorf("LocateOutput = %q, ожидалось %q", got, want)
	}
}

func TestLocateOutputRewrittenExtension(t *testing.T) {
	dir := t.TempDir()
	// После слияния дорожек yt-dlp мог заменить расширение.
	want := writeFile(t, dir, "clip.mkv")

	got := LocateOutput(dir, filepath.Join(dir, "clip.webm"))
	if got != want {
		t.Errorf("LocateOutput = %q, ожидалось %q", got, want)
	}
}

func TestLocateOutputStemPrefix(t *testing.T) {
	dir := t.TempDir()
	want := writeFile(t, dir, "clip.f137.mp4")

	got := LocateOutput(dir, filepath.Join(dir, "clip.mp4"))
	if got != want {
		t.Errorf("LocateOutput = %q, ожидалось %q", got, want)
	}
}

func TestLocateOutputNoMatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "другое.mp4")

	predicted := filepath.Join(dir, "clip.mp4")
	if got := LocateOutput(dir, predicted); got != predicted {
		t.Errorf("LocateOutput = %q, ожидался исходный путь %q", got, predicted)
	}
}

func TestLocateOutputIgnoresDirs(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "clip.mp4"), 0755); err != nil {
		t.Fatal(err)
	}

	predicted := filepath.Join(dir, "clip.mp4")
	if got := LocateOutput(dir, predicted); got != predicted {
		t.Errorf("LocateOutput вернул директорию: %q", got)
	}
}

func TestMimeFor(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"video.mp4", "video/mp4"},
		{"video.webm", "video/webm"},
		{"video.MKV", "video/x-matroska"},
		{"video.unknown", "video/mp4"},
		{"video", "video/mp4"},
	}
	for _, tc := range cases {
		if got := MimeFor(tc.path); got != tc.want {
			t.Errorf("MimeFor(%q) = %q, ожидалось %q", tc.path, got, tc.want)
		}
	}
}
