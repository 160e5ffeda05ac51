package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	tele "gopkg.in/telebot.v4"
)

// Ключи сообщений бота.
const (
	KeyWelcome         = "welcome"
	KeyNotConfigured   = "not_configured"
	KeyHelp            = "help"
	KeySubscribePrompt = "subscribe_prompt"
	KeySubThanks       = "sub_thanks"
	KeySubMissing      = "sub_missing"
	KeyBadURL          = "bad_url"
	KeyDownloading     = "downloading"
	KeyDownloadFailed  = "download_failed"
	KeyGenericError    = "generic_error"
	KeyBusy            = "busy"
	KeyCooldown        = "cooldown"
	KeyDuplicate       = "duplicate"
	KeyMinuteLimit     = "minute_limit"
	KeyHourLimit       = "hour_limit"
	KeyCaptionReady    = "caption_ready"
	KeyDisclaimer      = "disclaimer"
	KeyBtnSubscribe    = "btn_subscribe"
	KeyBtnCheckSub     = "btn_check_sub"
)

// Русские тексты по умолчанию; файлы переводов могут их переопределять.
var defaults = map[string]string{
	KeyWelcome:         "✅ Доступ разрешён. Пришлите ссылку на видео (YouTube / TikTok / Instagram).",
	KeyNotConfigured:   "Бот не настроен: отсутствует CHANNEL_ID.",
	KeyHelp:            "Отправьте ссылку на видео с поддерживаемых доменов:\n%s\nПеред обработкой требуется подписка на канал.",
	KeySubscribePrompt: "Чтобы пользоваться ботом, подпишитесь на канал и затем нажмите «Проверить подписку».",
	KeySubThanks:       "✅ Спасибо за подписку! Теперь отправьте ссылку на видео.",
	KeySubMissing:      "❌ Подписка не обнаружена. Подпишитесь и нажмите «Проверить подписку».",
	KeyBadURL:          "Пришлите прямую ссылку на видео с поддерживаемого домена:\n%s",
	KeyDownloading:     "⏬ Загружаю видео, подождите...",
	KeyDownloadFailed:  "Не удалось скачать видео. Попробуйте другую ссылку.",
	KeyGenericError:    "Произошла ошибка при загрузке. Попробуйте позже или другую ссылку.",
	KeyBusy:            "Сейчас много загрузок. Пожалуйста, подождите и попробуйте чуть позже.",
	KeyCooldown:        "Слишком часто. Подождите %d сек. и попробуйте снова.",
	KeyDuplicate:       "Эта ссылка уже обработана. Пришлите другую ссылку.",
	KeyMinuteLimit:     "Превышен лимит запросов в минуту. Попробуйте позже.",
	KeyHourLimit:       "Превышен лимит запросов в час. Попробуйте позже.",
	KeyCaptionReady:    "Готово ✅ (%s)",
	KeyDisclaimer:      "⚠️ Используйте бота только для скачивания собственных материалов, материалов с разрешения правообладателя или материалов в общественном достоянии. Нарушение TOS платформ и авторских прав может быть незаконным.",
	KeyBtnSubscribe:    "📢 Подписаться на канал",
	KeyBtnCheckSub:     "🔄 Проверить подписку",
}

// Manager отдает тексты сообщений с учетом языка пользователя.
type Manager struct {
	mutex        sync.RWMutex
	translations map[string]map[string]string
	fallbackLang string
}

// NewManager создает менеджер с русскими текстами по умолчанию.
func NewManager(fallbackLang string) *Manager {
	return &Manager{
		translations: make(map[string]map[string]string),
		fallbackLang: fallbackLang,
	}
}

// LoadTranslations загружает JSON-файлы переводов вида <lang>.json.
// Отсутствие директории не ошибка: бот работает на встроенных текстах.
func (m *Manager) LoadTranslations(dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("ошибка чтения директории переводов: %v", err)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		lang := strings.TrimSuffix(file.Name(), ".json")
		data, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return fmt.Errorf("ошибка чтения файла %s: %v", file.Name(), err)
		}
		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return fmt.Errorf("ошибка парсинга JSON в файле %s: %v", file.Name(), err)
		}
		m.translations[lang] = translations
	}
	return nil
}

// GetUserLanguage определяет язык пользователя из Telegram.
func (m *Manager) GetUserLanguage(user *tele.User) string {
	if user == nil || user.LanguageCode == "" {
		return m.fallbackLang
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if _, ok := m.translations[user.LanguageCode]; ok {
		return user.LanguageCode
	}
	return m.fallbackLang
}

// T возвращает текст по ключу: сначала перевод для языка, затем для языка
// по умолчанию, затем встроенный текст. Аргументы подставляются как в
// fmt.Sprintf.
func (m *Manager) T(lang, key string, args ...interface{}) string {
	m.mutex.RLock()
	text, ok := m.translations[lang][key]
	if !ok {
		text, ok = m.translations[m.fallbackLang][key]
	}
	m.mutex.RUnlock()
	if !ok {
		text, ok = defaults[key]
	}
	if !ok {
		return key
	}
	if len(args) == 0 {
		return text
	}
	return fmt.Sprintf(text, args...)
}
