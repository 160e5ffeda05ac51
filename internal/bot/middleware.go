package bot

import (
	tele "gopkg.in/telebot.v4"
)

// Middleware для логирования всех апдейтов и учета статистики.
func (b *Bot) setupMiddleware() {
	logger := NewLogger("UPDATE")

	b.api.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			update := c.Update()
			logger.LogUpdate(&update)

			if b.db != nil && update.Message != nil && update.Message.Sender != nil {
				b.recordUserActivity(update.Message.Sender.ID)
			}

			return next(c)
		}
	})
}
