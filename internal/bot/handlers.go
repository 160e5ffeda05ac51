package bot

import (
	"strings"

	"MediaGateBot/internal/i18n"

	tele "gopkg.in/telebot.v4"
)

// handleStart обрабатывает команду /start.
func (b *Bot) handleStart(c tele.Context, lang string) error {
	if !b.gate.Enabled() {
		return c.Send(b.t(lang, i18n.KeyNotConfigured))
	}
	if b.gate.IsSubscribed(c.Sender().ID) {
		return c.Send(b.t(lang, i18n.KeyWelcome) + "\n\n" + b.t(lang, i18n.KeyDisclaimer))
	}
	return c.Send(b.t(lang, i18n.KeySubscribePrompt), b.subscribeKeyboard(lang))
}

// handleHelp обрабатывает команду /help.
func (b *Bot) handleHelp(c tele.Context, lang string) error {
	domains := strings.Join(b.config.AllowedDomains, ", ")
	return c.Send(b.t(lang, i18n.KeyHelp, domains) + "\n\n" + b.t(lang, i18n.KeyDisclaimer))
}

// handleCheckSub повторно проверяет подписку по нажатию кнопки.
func (b *Bot) handleCheckSub(c tele.Context, lang string) error {
	if b.gate.IsSubscribed(c.Sender().ID) {
		return c.Edit(b.t(lang, i18n.KeySubThanks) + "\n\n" + b.t(lang, i18n.KeyDisclaimer))
	}
	return c.Edit(b.t(lang, i18n.KeySubMissing), b.subscribeKeyboard(lang))
}

// subscribeKeyboard собирает клавиатуру с кнопкой перехода на канал и
// кнопкой повторной проверки. Ссылка на канал возможна только для
// публичных каналов с @username.
func (b *Bot) subscribeKeyboard(lang string) *tele.ReplyMarkup {
	var rows [][]tele.InlineButton

	if strings.HasPrefix(b.config.ChannelID, "@") {
		rows = append(rows, []tele.InlineButton{{
			Text: b.t(lang, i18n.KeyBtnSubscribe),
			URL:  "https://t.me/" + strings.TrimPrefix(b.config.ChannelID, "@"),
		}})
	}
	rows = append(rows, []tele.InlineButton{{
		Text: b.t(lang, i18n.KeyBtnCheckSub),
		Data: CallbackCheckSub,
	}})

	return &tele.ReplyMarkup{InlineKeyboard: rows}
}
