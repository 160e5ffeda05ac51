package bot

import (
	"os"
	"strconv"
	"strings"
	"time"

	"MediaGateBot/internal/allowlist"
)

// NewConfig создает конфигурацию бота из переменных окружения.
func NewConfig() *Config {
	config := &Config{
		Token:           os.Getenv("BOT_TOKEN"),
		ChannelID:       os.Getenv("CHANNEL_ID"),
		Admins:          parseAdmins(os.Getenv("ADMINS")),
		DownloadDir:     DefaultDownloadDir,
		TranslationsDir: os.Getenv("TRANSLATIONS_DIR"),
		Cooldown:        DefaultCooldown,
		MaxPerMinute:    DefaultMaxPerMinute,
		MaxPerHour:      DefaultMaxPerHour,
		CleanupDays:     DefaultCleanupDays,
		CleanupInterval: DefaultCleanupInterval,
		MaxWorkers:      DefaultMaxWorkers,
		UseOfficialAPI:  os.Getenv("USE_OFFICIAL_API") == "true",
		HTTPTimeout:     DefaultHTTPTimeout,
	}

	domains := os.Getenv("ALLOWED_DOMAINS")
	if domains == "" {
		domains = DefaultAllowedDomains
	}
	config.AllowedDomains = allowlist.ParseDomains(domains)

	if dir := os.Getenv("DOWNLOAD_DIR"); dir != "" {
		config.DownloadDir = dir
	}
	if v := envInt("RATE_LIMIT_SECONDS"); v > 0 {
		config.Cooldown = time.Duration(v) * time.Second
	}
	if v := envInt("MAX_REQUESTS_PER_MINUTE"); v > 0 {
		config.MaxPerMinute = v
	}
	if v := envInt("MAX_REQUESTS_PER_HOUR"); v > 0 {
		config.MaxPerHour = v
	}
	if v := envInt("CLEANUP_DAYS"); v > 0 {
		config.CleanupDays = v
	}
	if v := envInt("CLEANUP_INTERVAL_MINUTES"); v > 0 {
		config.CleanupInterval = time.Duration(v) * time.Minute
	}
	if v := envInt("MAX_DOWNLOAD_WORKERS"); v > 0 {
		config.MaxWorkers = v
	}

	// Настройка URL для API
	if config.UseOfficialAPI {
		config.TelegramAPIURL = "https://api.telegram.org"
	} else if url := os.Getenv("TELEGRAM_API_URL"); url != "" {
		config.TelegramAPIURL = url
	}

	return config
}

// RetentionAge возвращает порог хранения файлов в папке загрузок.
func (c *Config) RetentionAge() time.Duration {
	return time.Duration(c.CleanupDays) * 24 * time.Hour
}

// IsAdmin проверяет, входит ли пользователь в список админов.
func (c *Config) IsAdmin(userID int64) bool {
	return c.Admins[userID]
}

func envInt(name string) int {
	s := os.Getenv(name)
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

// parseAdmins разбирает список идентификаторов админов вида "1,2,3".
func parseAdmins(raw string) map[int64]bool {
	admins := make(map[int64]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		admins[id] = true
	}
	return admins
}
