package utils

import (
	"fmt"
	"os"
)

// EnsureDir создает директорию вместе с родителями, если ее еще нет.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("не удалось создать папку %s: %v", dir, err)
	}
	return nil
}

// FileSizeMB возвращает размер файла в мегабайтах.
func FileSizeMB(path string) (float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return float64(info.Size()) / (1024 * 1024), nil
}

// FormatSizeMB форматирует размер в мегабайтах для подписи к видео.
func FormatSizeMB(sizeMB float64) string {
	return fmt.Sprintf("%.1f MB", sizeMB)
}
