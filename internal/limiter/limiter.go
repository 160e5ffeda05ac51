package limiter

import (
	"sync"
	"time"
)

// Verdict — результат проверки запроса.
type Verdict int

const (
	Allowed Verdict = iota
	DeniedCooldown
	DeniedDuplicate
	DeniedMinuteLimit
	DeniedHourLimit
)

// Decision содержит вердикт и, для кулдауна, время до следующей попытки.
type Decision struct {
	Verdict    Verdict
	RetryAfter time.Duration
}

// Config содержит лимиты и список админов.
type Config struct {
	Cooldown     time.Duration
	MaxPerMinute int
	MaxPerHour   int
	Admins       map[int64]bool
}

// userRecord — состояние одного пользователя. Записи живут до конца процесса.
type userRecord struct {
	lastRequest time.Time
	history     []time.Time
	lastURL     string
}

// Limiter ограничивает частоту и повторяемость запросов по пользователям.
// Вся карта защищена одним мьютексом: два одновременных запроса одного
// пользователя не могут обойти кулдаун, прочитав устаревшее состояние.
type Limiter struct {
	mu    sync.Mutex
	cfg   Config
	users map[int64]*userRecord
}

// New создает лимитер с заданными лимитами.
func New(cfg Config) *Limiter {
	return &Limiter{
		cfg:   cfg,
		users: make(map[int64]*userRecord),
	}
}

// IsAdmin проверяет, входит ли пользователь в список админов.
func (l *Limiter) IsAdmin(userID int64) bool {
	return l.cfg.Admins[userID]
}

// Check решает, пропустить ли запрос. Проверки идут строго по порядку:
// обход для админа, кулдаун, повтор ссылки, очистка истории старше часа,
// лимит за минуту, лимит за час. Состояние меняется только при Allowed —
// отклоненные запросы не засчитываются ни в одно окно.
func (l *Limiter) Check(userID int64, url string, now time.Time) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, exists := l.users[userID]
	if !exists {
		rec = &userRecord{}
		l.users[userID] = rec
	}

	// Админы пропускаются без всех проверок, но запрос фиксируется.
	if l.cfg.Admins[userID] {
		l.record(rec, url, now)
		return Decision{Verdict: Allowed}
	}

	if !rec.lastRequest.IsZero() {
		elapsed := now.Sub(rec.lastRequest)
		if elapsed < l.cfg.Cooldown {
			return Decision{Verdict: DeniedCooldown, RetryAfter: l.cfg.Cooldown - elapsed}
		}
	}

	if rec.lastURL != "" && rec.lastURL == url {
		return Decision{Verdict: DeniedDuplicate}
	}

	// Лениво выбрасываем записи старше часа перед подсчетом окон.
	hourAgo := now.Add(-time.Hour)
	kept := rec.history[:0]
	for _, t := range rec.history {
		if t.After(hourAgo) {
			kept = append(kept, t)
		}
	}
	rec.history = kept

	minuteAgo := now.Add(-time.Minute)
	perMinute := 0
	for _, t := range rec.history {
		if t.After(minuteAgo) {
			perMinute++
		}
	}
	if perMinute >= l.cfg.MaxPerMinute {
		return Decision{Verdict: DeniedMinuteLimit}
	}

	if len(rec.history) >= l.cfg.MaxPerHour {
		return Decision{Verdict: DeniedHourLimit}
	}

	l.record(rec, url, now)
	return Decision{Verdict: Allowed}
}

func (l *Limiter) record(rec *userRecord, url string, now time.Time) {
	rec.lastRequest = now
	rec.history = append(rec.history, now)
	rec.lastURL = url
}

// TrackedUsers возвращает количество пользователей с записями.
func (l *Limiter) TrackedUsers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.users)
}

// HistoryLen возвращает размер истории пользователя (для статистики и тестов).
func (l *Limiter) HistoryLen(userID int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if rec, ok := l.users[userID]; ok {
		return len(rec.history)
	}
	return 0
}
