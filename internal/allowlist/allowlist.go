package allowlist

import (
	"regexp"
	"strings"
)

// Регулярка для ссылки: необязательная схема, хост с TLD минимум из 2 букв,
// необязательный путь.
var urlRegex = regexp.MustCompile(`^(?i)(https?://)?([A-Za-z0-9.-]+\.[A-Za-z]{2,})(/\S*)?$`)

// Allowed проверяет, что ссылка указывает на разрешенный домен.
// Хост должен совпадать с доменом из списка или оканчиваться на "."+домен,
// чтобы evilyoutube.com не проходил как youtube.com.
func Allowed(rawURL string, domains []string) bool {
	m := urlRegex.FindStringSubmatch(strings.TrimSpace(rawURL))
	if m == nil {
		return false
	}
	host := strings.ToLower(m[2])
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// ParseDomains разбирает список доменов из строки вида "a.com,b.com".
func ParseDomains(raw string) []string {
	var domains []string
	for _, d := range strings.Split(raw, ",") {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			domains = append(domains, d)
		}
	}
	return domains
}
