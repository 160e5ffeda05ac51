package i18n

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestDefaults(t *testing.T) {
	m := NewManager("ru")

	if got := m.T("ru", KeyDuplicate); got != defaults[KeyDuplicate] {
		t.Errorf("T(duplicate) = %q", got)
	}
	if got := m.T("ru", KeyCooldown, 7); !strings.Contains(got, "7") {
		t.Errorf("в тексте кулдауна нет секунд: %q", got)
	}
	if got := m.T("ru", "нет_такого_ключа"); got != "нет_такого_ключа" {
		t.Errorf("для неизвестного ключа ожидался сам ключ, получено %q", got)
	}
}

func TestLoadTranslations(t *testing.T) {
	dir := t.TempDir()
	content := `{"duplicate": "This link was already processed."}`
	if err := os.WriteFile(filepath.Join(dir, "en.json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager("ru")
	if err := m.LoadTranslations(dir); err != nil {
		t.Fatalf("LoadTranslations: %v", err)
	}

	if got := m.T("en", KeyDuplicate); got != "This link was already processed." {
		t.Errorf("T(en, duplicate) = %q", got)
	}
	// Для ключа без перевода отдается встроенный текст.
	if got := m.T("en", KeyBusy); got != defaults[KeyBusy] {
		t.Errorf("T(en, busy) = %q", got)
	}
}

func TestLoadTranslationsMissingDir(t *testing.T) {
	m := NewManager("ru")
	if err := m.LoadTranslations(filepath.Join(t.TempDir(), "нет")); err != nil {
		t.Errorf("отсутствующая директория переводов не должна быть ошибкой: %v", err)
	}
}

func TestGetUserLanguage(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}
	m := NewManager("ru")
	if err := m.LoadTranslations(dir); err != nil {
		t.Fatal(err)
	}

	if got := m.GetUserLanguage(nil); got != "ru" {
		t.Errorf("язык для nil пользователя: %q", got)
	}
	if got := m.GetUserLanguage(&tele.User{LanguageCode: "en"}); got != "en" {
		t.Errorf("язык для en пользователя: %q", got)
	}
	// Язык без загруженного перевода откатывается на язык по умолчанию.
	if got := m.GetUserLanguage(&tele.User{LanguageCode: "de"}); got != "ru" {
		t.Errorf("язык для de пользователя: %q", got)
	}
}
