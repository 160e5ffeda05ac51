package bot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"MediaGateBot/internal/i18n"
	"MediaGateBot/internal/limiter"

	tele "gopkg.in/telebot.v4"
)

type stubReplier struct {
	mu        sync.Mutex
	sent      []interface{}
	failVideo bool
}

func (r *stubReplier) Send(what interface{}, opts ...interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := what.(*tele.Video); ok && r.failVideo {
		return errors.New("Request Entity Too Large")
	}
	r.sent = append(r.sent, what)
	return nil
}

func (r *stubReplier) messages() []interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]interface{}(nil), r.sent...)
}

type stubExecutor struct {
	sizeBytes int64
	err       error
	panics    bool
}

func (e *stubExecutor) Download(url, scratchDir string) (string, string, error) {
	if e.panics {
		panic("downloader exploded")
	}
	if e.err != nil {
		return "", "", e.err
	}
	path := filepath.Join(scratchDir, "video.mp4")
	if err := os.WriteFile(path, make([]byte, e.sizeBytes), 0644); err != nil {
		return "", "", err
	}
	return path, "video/mp4", nil
}

func newTestBot(t *testing.T, exec downloadExecutor, members membershipChecker) *Bot {
	t.Helper()
	config := &Config{
		ChannelID:      "@testchannel",
		Admins:         map[int64]bool{},
		AllowedDomains: []string{"youtube.com", "youtu.be", "tiktok.com"},
		DownloadDir:    t.TempDir(),
		Cooldown:       30 * time.Second,
		MaxPerMinute:   3,
		MaxPerHour:     20,
		MaxWorkers:     2,
	}
	return &Bot{
		config: config,
		limiter: limiter.New(limiter.Config{
			Cooldown:     config.Cooldown,
			MaxPerMinute: config.MaxPerMinute,
			MaxPerHour:   config.MaxPerHour,
			Admins:       config.Admins,
		}),
		gate:            NewSubscriptionGate(config.ChannelID, members),
		downloadManager: NewDownloadManager(config.MaxWorkers),
		executor:        exec,
		i18nManager:     i18n.NewManager("ru"),
	}
}

func scratchDirs(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "dl-") {
			dirs = append(dirs, e.Name())
		}
	}
	return dirs
}

func TestProcessRequestDeliversVideo(t *testing.T) {
	b := newTestBot(t, &stubExecutor{sizeBytes: 2 * 1024 * 1024}, &stubMembers{role: "member"})
	r := &stubReplier{}

	b.processRequest(100, "ru", "https://youtube.com/watch?v=abc", r)

	msgs := r.messages()
	if len(msgs) != 2 {
		t.Fatalf("ожидалось 2 отправки, получено %d: %v", len(msgs), msgs)
	}
	if first, ok := msgs[0].(string); !ok || first != b.t("ru", i18n.KeyDownloading) {
		t.Errorf("первая отправка не сообщение о загрузке: %v", msgs[0])
	}
	video, ok := msgs[1].(*tele.Video)
	if !ok {
		t.Fatalf("вторая отправка не видео: %T", msgs[1])
	}
	if !strings.Contains(video.Caption, "2.0 MB") {
		t.Errorf("в подписи нет размера: %q", video.Caption)
	}
	if !strings.Contains(video.Caption, b.t("ru", i18n.KeyDisclaimer)) {
		t.Errorf("в подписи нет дисклеймера: %q", video.Caption)
	}
	if got := b.limiter.HistoryLen(100); got != 1 {
		t.Errorf("в истории лимитера %d запросов, ожидался 1", got)
	}
	if dirs := scratchDirs(t, b.config.DownloadDir); len(dirs) != 0 {
		t.Errorf("рабочие папки не удалены: %v", dirs)
	}
}

func TestProcessRequestRequiresSubscription(t *testing.T) {
	b := newTestBot(t, &stubExecutor{}, &stubMembers{role: "left"})
	r := &stubReplier{}

	b.processRequest(100, "ru", "https://youtube.com/watch?v=abc", r)

	msgs := r.messages()
	if len(msgs) != 1 {
		t.Fatalf("ожидалась 1 отправка, получено %d", len(msgs))
	}
	if got, ok := msgs[0].(string); !ok || got != b.t("ru", i18n.KeySubscribePrompt) {
		t.Errorf("ожидался призыв подписаться, получено: %v", msgs[0])
	}
	if got := b.limiter.HistoryLen(100); got != 0 {
		t.Errorf("запрос без подписки не должен попадать в лимитер, история: %d", got)
	}
}

func TestProcessRequestRejectsBadInput(t *testing.T) {
	b := newTestBot(t, &stubExecutor{}, &stubMembers{role: "member"})

	for _, text := range []string{
		"привет",
		"youtube.com/watch?v=abc",
		"https://evil.com/video",
		"ftp://youtube.com/file",
	} {
		r := &stubReplier{}
		b.processRequest(100, "ru", text, r)

		msgs := r.messages()
		if len(msgs) != 1 {
			t.Fatalf("%q: ожидалась 1 отправка, получено %d", text, len(msgs))
		}
		got, ok := msgs[0].(string)
		if !ok || !strings.Contains(got, "поддерживаемого домена") {
			t.Errorf("%q: ожидался отказ по домену, получено: %v", text, msgs[0])
		}
	}
}

func TestProcessRequestDenialMessages(t *testing.T) {
	b := newTestBot(t, &stubExecutor{sizeBytes: 1024}, &stubMembers{role: "member"})

	r := &stubReplier{}
	b.processRequest(100, "ru", "https://youtube.com/watch?v=abc", r)

	// Повторный запрос сразу после первого упирается в кулдаун.
	r = &stubReplier{}
	b.processRequest(100, "ru", "https://youtube.com/watch?v=other", r)
	msgs := r.messages()
	if len(msgs) != 1 {
		t.Fatalf("ожидалась 1 отправка, получено %d", len(msgs))
	}
	got, _ := msgs[0].(string)
	if !strings.Contains(got, "сек") {
		t.Errorf("в отказе по кулдауну нет времени ожидания: %q", got)
	}
}

func TestProcessRequestRejectsDuplicateURL(t *testing.T) {
	b := newTestBot(t, &stubExecutor{sizeBytes: 1024}, &stubMembers{role: "member"})
	b.config.Cooldown = 0
	b.limiter = limiter.New(limiter.Config{
		MaxPerMinute: 10,
		MaxPerHour:   20,
		Admins:       b.config.Admins,
	})

	url := "https://youtube.com/watch?v=abc"
	r := &stubReplier{}
	b.processRequest(100, "ru", url, r)

	r = &stubReplier{}
	b.processRequest(100, "ru", url, r)
	msgs := r.messages()
	if len(msgs) != 1 {
		t.Fatalf("ожидалась 1 отправка, получено %d", len(msgs))
	}
	if got, _ := msgs[0].(string); got != b.t("ru", i18n.KeyDuplicate) {
		t.Errorf("ожидался отказ по дубликату, получено: %v", msgs[0])
	}
}

func TestDeliverReportsDownloadFailure(t *testing.T) {
	b := newTestBot(t, &stubExecutor{err: errors.New("ERROR: unsupported url")}, &stubMembers{role: "member"})
	r := &stubReplier{}

	b.deliver(100, "ru", "https://youtube.com/watch?v=abc", r)

	msgs := r.messages()
	if len(msgs) != 1 {
		t.Fatalf("ожидалась 1 отправка, получено %d", len(msgs))
	}
	if got, _ := msgs[0].(string); got != b.t("ru", i18n.KeyDownloadFailed) {
		t.Errorf("ожидалось сообщение об ошибке скачивания, получено: %v", msgs[0])
	}
	if dirs := scratchDirs(t, b.config.DownloadDir); len(dirs) != 0 {
		t.Errorf("рабочие папки не удалены после ошибки: %v", dirs)
	}
	if got := len(b.downloadManager.ActiveDownloads()); got != 0 {
		t.Errorf("скачивание не снято с учета: %d", got)
	}
}

func TestDeliverRecoversFromPanic(t *testing.T) {
	b := newTestBot(t, &stubExecutor{panics: true}, &stubMembers{role: "member"})
	r := &stubReplier{}

	b.deliver(100, "ru", "https://youtube.com/watch?v=abc", r)

	msgs := r.messages()
	if len(msgs) != 1 {
		t.Fatalf("ожидалась 1 отправка, получено %d", len(msgs))
	}
	if got, _ := msgs[0].(string); got != b.t("ru", i18n.KeyGenericError) {
		t.Errorf("ожидалось общее сообщение об ошибке, получено: %v", msgs[0])
	}
	if dirs := scratchDirs(t, b.config.DownloadDir); len(dirs) != 0 {
		t.Errorf("рабочие папки не удалены после паники: %v", dirs)
	}
}

func TestDeliverReportsBusy(t *testing.T) {
	b := newTestBot(t, &stubExecutor{sizeBytes: 1024}, &stubMembers{role: "member"})
	b.downloadManager = NewDownloadManager(1)
	if !b.downloadManager.AcquireSlot() {
		t.Fatal("не удалось занять слот")
	}
	defer b.downloadManager.ReleaseSlot()

	r := &stubReplier{}
	b.deliver(100, "ru", "https://youtube.com/watch?v=abc", r)

	msgs := r.messages()
	if len(msgs) != 1 {
		t.Fatalf("ожидалась 1 отправка, получено %d", len(msgs))
	}
	if got, _ := msgs[0].(string); got != b.t("ru", i18n.KeyBusy) {
		t.Errorf("ожидалось сообщение о занятости, получено: %v", msgs[0])
	}
}

func TestDeliverFallsBackToDocument(t *testing.T) {
	b := newTestBot(t, &stubExecutor{sizeBytes: 1024}, &stubMembers{role: "member"})
	r := &stubReplier{failVideo: true}

	b.deliver(100, "ru", "https://youtube.com/watch?v=abc", r)

	msgs := r.messages()
	if len(msgs) != 1 {
		t.Fatalf("ожидалась 1 отправка, получено %d: %v", len(msgs), msgs)
	}
	doc, ok := msgs[0].(*tele.Document)
	if !ok {
		t.Fatalf("ожидался документ, получено: %T", msgs[0])
	}
	if doc.FileName != "video.mp4" {
		t.Errorf("неверное имя файла: %q", doc.FileName)
	}
	if !strings.Contains(doc.Caption, "0.0 MB") {
		t.Errorf("в подписи нет размера: %q", doc.Caption)
	}
}

func TestDenialMessageCooldownSeconds(t *testing.T) {
	b := newTestBot(t, &stubExecutor{}, &stubMembers{role: "member"})

	msg := b.denialMessage("ru", limiter.Decision{
		Verdict:    limiter.DeniedCooldown,
		RetryAfter: 9*time.Second + 500*time.Millisecond,
	})
	if !strings.Contains(msg, "10 сек") {
		t.Errorf("время ожидания не округлено вверх: %q", msg)
	}
}

func TestSubscribeKeyboard(t *testing.T) {
	b := newTestBot(t, &stubExecutor{}, &stubMembers{role: "left"})

	kb := b.subscribeKeyboard("ru")
	if len(kb.InlineKeyboard) != 2 {
		t.Fatalf("ожидалось 2 ряда кнопок, получено %d", len(kb.InlineKeyboard))
	}
	if got := kb.InlineKeyboard[0][0].URL; got != "https://t.me/testchannel" {
		t.Errorf("неверная ссылка на канал: %q", got)
	}
	if got := kb.InlineKeyboard[1][0].Data; got != CallbackCheckSub {
		t.Errorf("неверные данные кнопки проверки: %q", got)
	}

	// Для числового идентификатора канала публичной ссылки нет.
	b.config.ChannelID = "-1001234567890"
	kb = b.subscribeKeyboard("ru")
	if len(kb.InlineKeyboard) != 1 {
		t.Fatalf("ожидался 1 ряд кнопок, получено %d", len(kb.InlineKeyboard))
	}
}

func TestConcurrentRequestsIsolated(t *testing.T) {
	b := newTestBot(t, &stubExecutor{sizeBytes: 1024}, &stubMembers{role: "member"})
	b.downloadManager = NewDownloadManager(5)

	var wg sync.WaitGroup
	repliers := make([]*stubReplier, 5)
	for i := range repliers {
		repliers[i] = &stubReplier{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			url := fmt.Sprintf("https://youtube.com/watch?v=%d", i)
			b.processRequest(int64(200+i), "ru", url, repliers[i])
		}(i)
	}
	wg.Wait()

	for i, r := range repliers {
		msgs := r.messages()
		if len(msgs) != 2 {
			t.Errorf("пользователь %d: ожидалось 2 отправки, получено %d", i, len(msgs))
			continue
		}
		if _, ok := msgs[1].(*tele.Video); !ok {
			t.Errorf("пользователь %d: вторая отправка не видео: %T", i, msgs[1])
		}
	}
	if dirs := scratchDirs(t, b.config.DownloadDir); len(dirs) != 0 {
		t.Errorf("рабочие папки не удалены: %v", dirs)
	}
}
