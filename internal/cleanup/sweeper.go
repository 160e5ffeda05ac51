package cleanup

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Sweeper периодически удаляет из папки загрузок файлы старше порога
// хранения. С обработкой запросов он не делит ничего, кроме файловой
// системы: рабочие папки запросов живут считанные минуты и до порога
// в днях не доживают.
type Sweeper struct {
	Dir              string
	MaxAge           time.Duration
	Interval         time.Duration
	RecoveryInterval time.Duration
}

// SweepResult — итоги одного прохода очистки.
type SweepResult struct {
	Deleted    int
	FreedBytes int64
	Errors     int
}

// New создает очиститель с интервалом восстановления в одну минуту.
func New(dir string, maxAge, interval time.Duration) *Sweeper {
	return &Sweeper{
		Dir:              dir,
		MaxAge:           maxAge,
		Interval:         interval,
		RecoveryInterval: time.Minute,
	}
}

// Run крутит цикл очистки до отмены контекста. Первый проход выполняется
// только после полного интервала, чтобы не чистить сразу после деплоя.
// Паника внутри прохода логируется, следующий проход назначается через
// короткий интервал восстановления.
func (s *Sweeper) Run(ctx context.Context) {
	log.Printf("[CLEANUP] Запущен цикл очистки: папка=%s, порог=%v, интервал=%v", s.Dir, s.MaxAge, s.Interval)

	delay := s.Interval
	for {
		select {
		case <-ctx.Done():
			log.Printf("[CLEANUP] Цикл очистки остановлен")
			return
		case <-time.After(delay):
		}

		if s.sweepSafely() {
			delay = s.Interval
		} else {
			delay = s.RecoveryInterval
		}
	}
}

// sweepSafely выполняет проход и гасит панику, чтобы цикл жил вечно.
func (s *Sweeper) sweepSafely() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[CLEANUP] Критическая ошибка при очистке: %v", r)
			ok = false
		}
	}()

	s.Sweep()
	return true
}

// Sweep удаляет все обычные файлы старше порога, затем убирает опустевшие
// директории. Ошибки удаления отдельных файлов считаются, но проход не
// прерывают.
func (s *Sweeper) Sweep() SweepResult {
	var res SweepResult

	if _, err := os.Stat(s.Dir); os.IsNotExist(err) {
		log.Printf("[CLEANUP] Папка %s не существует", s.Dir)
		return res
	}

	cutoff := time.Now().Add(-s.MaxAge)
	log.Printf("[CLEANUP] Начало очистки файлов старше %v в %s", s.MaxAge, s.Dir)

	filepath.WalkDir(s.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			size := info.Size()
			if err := os.Remove(path); err != nil {
				log.Printf("[CLEANUP] Ошибка при удалении %s: %v", path, err)
				res.Errors++
				return nil
			}
			res.Deleted++
			res.FreedBytes += size
		}
		return nil
	})

	s.removeEmptyDirs()

	log.Printf("[CLEANUP] Очистка завершена: удалено %d файлов (%.2f MB), ошибок: %d",
		res.Deleted, float64(res.FreedBytes)/(1024*1024), res.Errors)
	return res
}

// removeEmptyDirs убирает пустые поддиректории, самые глубокие первыми.
// Ошибки игнорируются: непустая директория просто остается на месте.
func (s *Sweeper) removeEmptyDirs() {
	var dirs []string
	filepath.WalkDir(s.Dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && d.IsDir() && path != s.Dir {
			dirs = append(dirs, path)
		}
		return nil
	})

	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue
		}
		os.Remove(dir)
	}
}
