package bot

import (
	"log"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// SubscriptionGate решает, открыт ли пользователю доступ к скачиванию.
// Любая ошибка проверки трактуется как отсутствие подписки: при недоступном
// Telegram API доступ закрывается, а не открывается.
type SubscriptionGate struct {
	channel string
	members membershipChecker
}

// NewSubscriptionGate создает гейт. Пустой канал означает, что гейт
// выключен и пропускает всех.
func NewSubscriptionGate(channel string, members membershipChecker) *SubscriptionGate {
	return &SubscriptionGate{channel: channel, members: members}
}

// Enabled сообщает, настроен ли гейт.
func (g *SubscriptionGate) Enabled() bool {
	return g.channel != ""
}

// IsSubscribed проверяет подписку пользователя на канал.
func (g *SubscriptionGate) IsSubscribed(userID int64) bool {
	if !g.Enabled() {
		return true
	}

	role, err := g.members.MemberRole(g.channel, userID)
	if err != nil {
		log.Printf("[SUB_CHECK] Ошибка проверки подписки user_id=%d: %v", userID, err)
		return false
	}

	switch role {
	case "member", "administrator", "creator":
		return true
	}
	log.Printf("[SUB_CHECK] Пользователь %d НЕ подписан на канал (статус: %s)", userID, role)
	return false
}

// teleMembers — проверка членства через Telegram Bot API.
type teleMembers struct {
	api *tele.Bot
}

// MemberRole возвращает роль пользователя в канале. Канал задается либо
// как @username, либо как числовой идентификатор вида -100...
func (t *teleMembers) MemberRole(channel string, userID int64) (string, error) {
	var chat *tele.Chat
	if id, err := strconv.ParseInt(channel, 10, 64); err == nil {
		chat = &tele.Chat{ID: id}
	} else {
		if !strings.HasPrefix(channel, "@") {
			channel = "@" + channel
		}
		found, err := t.api.ChatByUsername(channel)
		if err != nil {
			return "", err
		}
		chat = found
	}

	member, err := t.api.ChatMemberOf(chat, &tele.User{ID: userID})
	if err != nil {
		return "", err
	}
	return string(member.Role), nil
}
