package bot

import (
	"database/sql"
	"sync"
	"time"

	"MediaGateBot/internal/i18n"
	"MediaGateBot/internal/limiter"

	tele "gopkg.in/telebot.v4"
)

// Config содержит конфигурацию бота.
type Config struct {
	Token           string
	ChannelID       string
	Admins          map[int64]bool
	AllowedDomains  []string
	DownloadDir     string
	TranslationsDir string

	Cooldown     time.Duration
	MaxPerMinute int
	MaxPerHour   int

	CleanupDays     int
	CleanupInterval time.Duration

	MaxWorkers     int
	UseOfficialAPI bool
	TelegramAPIURL string
	HTTPTimeout    time.Duration
}

// Bot представляет основную структуру бота.
type Bot struct {
	api             *tele.Bot
	config          *Config
	limiter         *limiter.Limiter
	gate            *SubscriptionGate
	downloadManager *DownloadManager
	executor        downloadExecutor
	db              *sql.DB
	i18nManager     *i18n.Manager
}

// downloadExecutor — внешний инструмент извлечения видео: ссылка и рабочая
// папка на входе, путь к файлу и mime-тип на выходе.
type downloadExecutor interface {
	Download(url, scratchDir string) (string, string, error)
}

// membershipChecker отдает роль пользователя в канале.
type membershipChecker interface {
	MemberRole(channel string, userID int64) (string, error)
}

// replier — минимальная поверхность отправки ответов; ей удовлетворяет
// tele.Context.
type replier interface {
	Send(what interface{}, opts ...interface{}) error
}

// DownloadManager ограничивает число одновременных скачиваний и ведет
// реестр активных.
type DownloadManager struct {
	limiter         chan struct{}
	activeDownloads map[string]*DownloadInfo
	downloadMutex   sync.RWMutex
}

// DownloadInfo содержит информацию об активном скачивании.
type DownloadInfo struct {
	RequestID string
	UserID    int64
	URL       string
	StartTime time.Time
}

// Constants
const (
	DefaultMaxWorkers      = 3
	DefaultHTTPTimeout     = 120 * time.Second
	DefaultPollerTimeout   = 60 * time.Second
	DefaultCooldown        = 30 * time.Second
	DefaultMaxPerMinute    = 3
	DefaultMaxPerHour      = 20
	DefaultCleanupDays     = 3
	DefaultCleanupInterval = time.Hour
	DefaultDownloadDir     = "./downloads"
	DefaultAllowedDomains  = "youtube.com,youtu.be,tiktok.com,vm.tiktok.com,instagram.com,instagr.am"
)

// Command constants
const (
	CmdStart           = "/start"
	CmdHelp            = "/help"
	CmdStats           = "/stats"
	CmdActiveDownloads = "/active_downloads"
	CmdCacheStats      = "/cache_stats"
	CmdCacheClean      = "/cache_clean"
	CmdCacheClear      = "/cache_clear"
)

// Callback constants
const (
	CallbackCheckSub = "check_sub"
)
