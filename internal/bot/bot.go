package bot

import (
	"database/sql"
	"log"
	"net/http"

	"MediaGateBot/internal/downloader"
	"MediaGateBot/internal/i18n"
	"MediaGateBot/internal/limiter"

	tele "gopkg.in/telebot.v4"
)

// NewBot создает и настраивает бота.
func NewBot(config *Config, db *sql.DB) (*Bot, error) {
	settings := tele.Settings{
		Token:  config.Token,
		Poller: &tele.LongPoller{Timeout: DefaultPollerTimeout},
		Client: &http.Client{Timeout: config.HTTPTimeout},
	}
	if config.TelegramAPIURL != "" {
		settings.URL = config.TelegramAPIURL
		log.Printf("[BOT] Используем API сервер: %s", config.TelegramAPIURL)
	}

	api, err := tele.NewBot(settings)
	if err != nil {
		return nil, err
	}

	i18nManager := i18n.NewManager("ru")
	if config.TranslationsDir != "" {
		if err := i18nManager.LoadTranslations(config.TranslationsDir); err != nil {
			log.Printf("[BOT] Ошибка загрузки переводов из %s: %v", config.TranslationsDir, err)
		}
	}

	b := &Bot{
		api:    api,
		config: config,
		limiter: limiter.New(limiter.Config{
			Cooldown:     config.Cooldown,
			MaxPerMinute: config.MaxPerMinute,
			MaxPerHour:   config.MaxPerHour,
			Admins:       config.Admins,
		}),
		downloadManager: NewDownloadManager(config.MaxWorkers),
		executor:        downloader.New(),
		db:              db,
		i18nManager:     i18nManager,
	}
	b.gate = NewSubscriptionGate(config.ChannelID, &teleMembers{api: api})
	if !b.gate.Enabled() {
		log.Printf("[BOT] WARNING: CHANNEL_ID не задан, проверка подписки выключена")
	}

	return b, nil
}

// Run запускает бота.
func (b *Bot) Run() {
	b.setupMiddleware()

	b.api.Handle(tele.OnText, b.handleMessage)
	b.api.Handle(tele.OnCallback, b.handleCallback)

	log.Printf("[BOT] Бот запущен: @%s", b.api.Me.Username)
	b.api.Start()
}

// Stop останавливает получение обновлений.
func (b *Bot) Stop() {
	b.api.Stop()
}
