package bot

import (
	"fmt"
	"log"

	tele "gopkg.in/telebot.v4"
)

// Logger предоставляет структурированное логирование с префиксом.
type Logger struct {
	prefix string
}

// NewLogger создает новый логгер с префиксом.
func NewLogger(prefix string) *Logger {
	return &Logger{prefix: prefix}
}

// Info логирует информационное сообщение.
func (l *Logger) Info(format string, args ...interface{}) {
	log.Printf("[%s] %s", l.prefix, fmt.Sprintf(format, args...))
}

// Error логирует ошибку.
func (l *Logger) Error(format string, args ...interface{}) {
	log.Printf("[%s] ERROR: %s", l.prefix, fmt.Sprintf(format, args...))
}

// Warning логирует предупреждение.
func (l *Logger) Warning(format string, args ...interface{}) {
	log.Printf("[%s] WARNING: %s", l.prefix, fmt.Sprintf(format, args...))
}

// LogUpdate логирует обновление Telegram.
func (l *Logger) LogUpdate(update *tele.Update) {
	switch {
	case update.Message != nil && update.Message.Sender != nil:
		l.Info("Message: user_id=%d, text=%q", update.Message.Sender.ID, update.Message.Text)
	case update.Callback != nil && update.Callback.Sender != nil:
		l.Info("CallbackQuery: user_id=%d, data=%q", update.Callback.Sender.ID, update.Callback.Data)
	}
}

// LogDownload логирует этап скачивания.
func (l *Logger) LogDownload(requestID, url string, userID int64, action string) {
	l.Info("[%s] %s: url=%s, user_id=%d", requestID, action, url, userID)
}
