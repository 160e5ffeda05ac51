package allowlist

import "testing"

var testDomains = []string{"youtube.com", "youtu.be", "tiktok.com"}

func TestAllowed(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want bool
	}{
		{"полная ссылка", "https://youtube.com/watch?v=abc", true},
		{"без схемы", "youtube.com/watch", true},
		{"http", "http://youtu.be/abc", true},
		{"поддомен", "https://www.youtube.com/watch", true},
		{"поддомен mobile", "https://m.tiktok.com/v/123", true},
		{"пробелы по краям", "  https://youtube.com/x  ", true},
		{"верхний регистр хоста", "https://YouTube.COM/watch", true},
		{"чужой домен", "https://vimeo.com/123", false},
		{"подстрока вместо суффикса", "https://evilyoutube.com/watch", false},
		{"домен внутри чужого хоста", "https://notyoutube.com.evil.net/x", false},
		{"без точки в хосте", "https://localhost/video", false},
		{"короткий TLD", "https://youtube.c/x", false},
		{"пустая строка", "", false},
		{"просто текст", "привет", false},
		{"пробел в пути", "https://youtube.com/watch video", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Allowed(tc.url, testDomains); got != tc.want {
				t.Errorf("Allowed(%q) = %v, ожидалось %v", tc.url, got, tc.want)
			}
		})
	}
}

func TestParseDomains(t *testing.T) {
	got := ParseDomains(" Youtube.com, youtu.be ,,tiktok.com ")
	want := []string{"youtube.com", "youtu.be", "tiktok.com"}
	if len(got) != len(want) {
		t.Fatalf("ParseDomains вернул %d доменов, ожидалось %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("домен %d: %q, ожидалось %q", i, got[i], want[i])
		}
	}
}
