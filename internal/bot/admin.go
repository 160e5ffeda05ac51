package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"MediaGateBot/internal/storage"

	tele "gopkg.in/telebot.v4"
)

// handleAdminCommands разбирает служебные команды. Возвращает true, если
// сообщение было командой и обработано.
func (b *Bot) handleAdminCommands(c tele.Context, msg *tele.Message) (bool, error) {
	switch msg.Text {
	case CmdStats:
		return true, b.sendStats(c)
	case CmdActiveDownloads:
		return true, b.sendActiveDownloads(c)
	case CmdCacheStats:
		return true, b.sendCacheStats(c)
	case CmdCacheClear:
		return true, b.clearCache(c)
	}
	if strings.HasPrefix(msg.Text, CmdCacheClean) {
		return true, b.cleanCache(c, msg.Text)
	}
	return false, nil
}

// sendStats отправляет общую статистику бота.
func (b *Bot) sendStats(c tele.Context) error {
	var sb strings.Builder
	sb.WriteString("📊 Статистика бота\n\n")
	fmt.Fprintf(&sb, "Пользователей в лимитере: %d\n", b.limiter.TrackedUsers())
	fmt.Fprintf(&sb, "Активных скачиваний: %d\n", len(b.downloadManager.ActiveDownloads()))

	if b.db != nil {
		stats, err := storage.GetTotalStats(b.db)
		if err != nil {
			NewLogger("STATS").Error("Ошибка чтения статистики: %v", err)
		} else {
			fmt.Fprintf(&sb, "\nВсего пользователей: %d\n", stats.TotalUsers)
			fmt.Fprintf(&sb, "Всего сообщений: %d\n", stats.TotalMessages)
			fmt.Fprintf(&sb, "Всего скачиваний: %d\n", stats.TotalDownloads)
		}
	}
	return c.Send(sb.String())
}

// sendActiveDownloads отправляет список текущих скачиваний.
func (b *Bot) sendActiveDownloads(c tele.Context) error {
	downloads := b.downloadManager.ActiveDownloads()
	if len(downloads) == 0 {
		return c.Send("Сейчас нет активных скачиваний")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "⏳ Активные скачивания: %d\n\n", len(downloads))
	for _, d := range downloads {
		elapsed := time.Since(d.StartTime).Round(time.Second)
		fmt.Fprintf(&sb, "[%s] user_id=%d, %s (%s)\n", d.RequestID, d.UserID, d.URL, elapsed)
	}
	return c.Send(sb.String())
}

// sendCacheStats отправляет размер кэша видео.
func (b *Bot) sendCacheStats(c tele.Context) error {
	if b.db == nil {
		return c.Send("БД не настроена, кэш выключен")
	}
	count, err := storage.GetCacheStats(b.db)
	if err != nil {
		NewLogger("CACHE").Error("Ошибка чтения статистики кэша: %v", err)
		return c.Send("Ошибка чтения статистики кэша")
	}
	return c.Send(fmt.Sprintf("💾 Записей в кэше: %d", count))
}

// cleanCache удаляет записи кэша старше N дней: /cache_clean N.
func (b *Bot) cleanCache(c tele.Context, text string) error {
	if b.db == nil {
		return c.Send("БД не настроена, кэш выключен")
	}

	days := 30
	parts := strings.Fields(text)
	if len(parts) > 1 {
		n, err := strconv.Atoi(parts[1])
		if err != nil || n < 1 {
			return c.Send("Использование: " + CmdCacheClean + " <дней>")
		}
		days = n
	}

	removed, err := storage.CleanOldCache(b.db, days)
	if err != nil {
		NewLogger("CACHE").Error("Ошибка очистки кэша: %v", err)
		return c.Send("Ошибка очистки кэша")
	}
	return c.Send(fmt.Sprintf("🧹 Удалено записей старше %d дн.: %d", days, removed))
}

// clearCache полностью очищает кэш видео.
func (b *Bot) clearCache(c tele.Context) error {
	if b.db == nil {
		return c.Send("БД не настроена, кэш выключен")
	}
	removed, err := storage.ClearCache(b.db)
	if err != nil {
		NewLogger("CACHE").Error("Ошибка полной очистки кэша: %v", err)
		return c.Send("Ошибка очистки кэша")
	}
	return c.Send(fmt.Sprintf("🧹 Кэш очищен, удалено записей: %d", removed))
}

// recordUserActivity обновляет счетчики пользователей и сообщений.
// Статистика не критична, ошибки только логируются.
func (b *Bot) recordUserActivity(userID int64) {
	logger := NewLogger("STATS")
	if err := storage.IncrementTotalUsersIfNew(b.db, userID); err != nil {
		logger.Error("Ошибка учета пользователя %d: %v", userID, err)
	}
	if err := storage.UpdateUserStats(b.db, userID); err != nil {
		logger.Error("Ошибка обновления статистики пользователя %d: %v", userID, err)
	}
	if err := storage.IncrementTotalMessages(b.db); err != nil {
		logger.Error("Ошибка учета сообщения: %v", err)
	}
}
