package bot

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"MediaGateBot/internal/allowlist"
	"MediaGateBot/internal/i18n"
	"MediaGateBot/internal/limiter"
	"MediaGateBot/internal/storage"
	"MediaGateBot/internal/utils"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"
)

// handleMessage обрабатывает текстовые сообщения.
func (b *Bot) handleMessage(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Sender == nil {
		return nil
	}
	logger := NewLogger("MESSAGE")
	logger.Info("user_id=%d, text=%q", msg.Sender.ID, msg.Text)

	lang := b.i18nManager.GetUserLanguage(msg.Sender)

	switch msg.Text {
	case CmdStart:
		return b.handleStart(c, lang)
	case CmdHelp:
		return b.handleHelp(c, lang)
	}

	if b.config.IsAdmin(msg.Sender.ID) {
		handled, err := b.handleAdminCommands(c, msg)
		if handled {
			return err
		}
	}

	// Любой другой текст считается запросом на скачивание. Скачивание
	// блокирующее, поэтому уводим обработку с потока диспетчера.
	go b.processRequest(msg.Sender.ID, lang, strings.TrimSpace(msg.Text), c)
	return nil
}

// handleCallback обрабатывает callback-запросы.
func (b *Bot) handleCallback(c tele.Context) error {
	cb := c.Callback()
	if cb == nil || cb.Sender == nil {
		return nil
	}
	logger := NewLogger("CALLBACK")
	logger.Info("user_id=%d, data=%q", cb.Sender.ID, cb.Data)

	lang := b.i18nManager.GetUserLanguage(cb.Sender)

	if strings.TrimSpace(cb.Data) == CallbackCheckSub {
		_ = c.Respond(&tele.CallbackResponse{})
		return b.handleCheckSub(c, lang)
	}
	return nil
}

// processRequest — конвейер обработки запроса: гейт подписки, проверка
// ссылки, лимиты, затем скачивание и отправка.
func (b *Bot) processRequest(userID int64, lang, text string, r replier) {
	if !b.gate.IsSubscribed(userID) {
		_ = r.Send(b.t(lang, i18n.KeySubscribePrompt), b.subscribeKeyboard(lang))
		return
	}

	low := strings.ToLower(text)
	isURL := strings.HasPrefix(low, "http://") || strings.HasPrefix(low, "https://")
	if !isURL || !allowlist.Allowed(text, b.config.AllowedDomains) {
		domains := strings.Join(b.config.AllowedDomains, ", ")
		_ = r.Send(b.t(lang, i18n.KeyBadURL, domains) + "\n\n" + b.t(lang, i18n.KeyDisclaimer))
		return
	}

	decision := b.limiter.Check(userID, text, time.Now())
	if decision.Verdict != limiter.Allowed {
		_ = r.Send(b.denialMessage(lang, decision))
		return
	}

	_ = r.Send(b.t(lang, i18n.KeyDownloading))
	b.deliver(userID, lang, text, r)
}

// deliver скачивает видео в изолированную рабочую папку и отправляет его
// пользователю. Любая необработанная ошибка гасится здесь: пользователю
// уходит общий текст, обработчик не падает.
func (b *Bot) deliver(userID int64, lang, url string, r replier) {
	requestID := uuid.NewString()[:8]
	logger := NewLogger("VIDEO")

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("[%s] Необработанная ошибка: %v", requestID, rec)
			_ = r.Send(b.t(lang, i18n.KeyGenericError))
		}
	}()

	logger.LogDownload(requestID, url, userID, "Начинаем скачивание")

	// Повторная ссылка другого пользователя может оказаться в кэше —
	// тогда отправляем готовый file_id без скачивания.
	if b.sendFromCache(requestID, lang, url, r) {
		return
	}

	if !b.downloadManager.AcquireSlot() {
		logger.Info("[%s] Нет свободных слотов для скачивания", requestID)
		_ = r.Send(b.t(lang, i18n.KeyBusy))
		return
	}
	defer b.downloadManager.ReleaseSlot()

	b.downloadManager.StartDownload(requestID, url, userID)
	var downloadErr error
	defer func() { b.downloadManager.FinishDownload(requestID, downloadErr) }()

	if err := utils.EnsureDir(b.config.DownloadDir); err != nil {
		downloadErr = err
		logger.Error("[%s] Ошибка подготовки папки загрузок: %v", requestID, err)
		_ = r.Send(b.t(lang, i18n.KeyGenericError))
		return
	}

	scratchDir, err := os.MkdirTemp(b.config.DownloadDir, "dl-")
	if err != nil {
		downloadErr = err
		logger.Error("[%s] Ошибка создания рабочей папки: %v", requestID, err)
		_ = r.Send(b.t(lang, i18n.KeyGenericError))
		return
	}
	// Рабочая папка запроса удаляется при любом исходе.
	defer os.RemoveAll(scratchDir)

	path, mimeType, err := b.executor.Download(url, scratchDir)
	if err != nil {
		downloadErr = err
		logger.Error("[%s] Ошибка скачивания: %v", requestID, err)
		_ = r.Send(b.t(lang, i18n.KeyDownloadFailed))
		return
	}
	logger.Info("[%s] Скачано: %s (%s)", requestID, filepath.Base(path), mimeType)

	sizeMB, err := utils.FileSizeMB(path)
	if err != nil {
		downloadErr = err
		logger.Error("[%s] Файл не найден после скачивания: %v", requestID, err)
		_ = r.Send(b.t(lang, i18n.KeyDownloadFailed))
		return
	}

	caption := b.t(lang, i18n.KeyCaptionReady, utils.FormatSizeMB(sizeMB)) + "\n" + b.t(lang, i18n.KeyDisclaimer)

	video := &tele.Video{File: tele.FromDisk(path), Caption: caption}
	if err := r.Send(video); err != nil {
		logger.Warning("[%s] Ошибка отправки видео, пробуем документом: %v", requestID, err)
		doc := &tele.Document{File: tele.FromDisk(path), FileName: filepath.Base(path), Caption: caption}
		if err := r.Send(doc); err != nil {
			downloadErr = err
			b.sendError(r, b.t(lang, i18n.KeyGenericError), err, "[SEND] "+url)
			return
		}
	}

	logger.LogDownload(requestID, url, userID, "Успешно отправлено")
	b.afterDelivery(userID, url, video)
}

// sendFromCache отправляет видео по сохраненному file_id. При неудачной
// отправке запись выбрасывается из кэша и запрос идет обычным путем.
func (b *Bot) sendFromCache(requestID, lang, url string, r replier) bool {
	if b.db == nil {
		return false
	}
	logger := NewLogger("CACHE")

	cache, err := storage.GetVideoFromCache(b.db, url)
	if err != nil {
		logger.Error("[%s] Ошибка проверки кэша: %v", requestID, err)
		return false
	}
	if cache == nil {
		return false
	}

	video := &tele.Video{
		File:    tele.File{FileID: cache.TelegramFileID},
		Caption: b.t(lang, i18n.KeyDisclaimer),
	}
	if err := r.Send(video); err != nil {
		logger.Warning("[%s] Ошибка отправки из кэша, скачиваем заново: %v", requestID, err)
		if err := storage.DeleteVideoFromCache(b.db, url); err != nil {
			logger.Error("[%s] Ошибка удаления записи кэша: %v", requestID, err)
		}
		return false
	}

	logger.Info("[%s] Отправлено из кэша: file_id=%s", requestID, cache.TelegramFileID)
	return true
}

// afterDelivery сохраняет file_id в кэш и обновляет статистику.
func (b *Bot) afterDelivery(userID int64, url string, video *tele.Video) {
	if b.db == nil {
		return
	}
	logger := NewLogger("CACHE")

	if video.File.FileID != "" {
		if err := storage.SaveVideoToCache(b.db, url, video.File.FileID); err != nil {
			logger.Error("Ошибка сохранения в кэш: %v", err)
		}
	}
	if err := storage.IncrementDownloads(b.db, userID); err != nil {
		logger.Error("Ошибка обновления статистики скачиваний: %v", err)
	}
}

// denialMessage переводит вердикт лимитера в текст для пользователя.
func (b *Bot) denialMessage(lang string, d limiter.Decision) string {
	switch d.Verdict {
	case limiter.DeniedCooldown:
		secs := int(math.Ceil(d.RetryAfter.Seconds()))
		return b.t(lang, i18n.KeyCooldown, secs)
	case limiter.DeniedDuplicate:
		return b.t(lang, i18n.KeyDuplicate)
	case limiter.DeniedMinuteLimit:
		return b.t(lang, i18n.KeyMinuteLimit)
	default:
		return b.t(lang, i18n.KeyHourLimit)
	}
}

// sendError отправляет пользователю общий текст, а детали — админу.
func (b *Bot) sendError(r replier, userMsg string, err error, extraInfo ...string) {
	_ = r.Send(userMsg)
	b.notifyAdmin(err, extraInfo...)
}

// notifyAdmin шлет подробности ошибки первому из настроенных админов.
func (b *Bot) notifyAdmin(err error, extraInfo ...string) {
	if b.api == nil || len(b.config.Admins) == 0 {
		return
	}
	details := append([]string{"[ERROR] " + err.Error()}, extraInfo...)
	for adminID := range b.config.Admins {
		_, _ = b.api.Send(&tele.User{ID: adminID}, strings.Join(details, "\n"))
		return
	}
}

func (b *Bot) t(lang, key string, args ...interface{}) string {
	return b.i18nManager.T(lang, key, args...)
}
