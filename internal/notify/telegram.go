package notify

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"nok-landing/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier отправляет новые заявки в чат менеджеров.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64, timeout time.Duration) (*TelegramNotifier, error) {
	return newTelegramNotifier(token, chatID, tgbotapi.APIEndpoint, &http.Client{Timeout: timeout})
}

func newTelegramNotifier(token string, chatID int64, endpoint string, client tgbotapi.HTTPClient) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
	}, nil
}

func (t *TelegramNotifier) Name() string { return "telegram" }

// Record отправляет заявку в чат. Библиотека не принимает context, поэтому проверяем его до отправки.
func (t *TelegramNotifier) Record(ctx context.Context, sub *models.ApplicationSubmission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.SendMessage(FormatApplication(sub))
}

func (t *TelegramNotifier) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := t.bot.Send(msg)
	return err
}

// FormatApplication собирает HTML-сообщение о заявке; пользовательский ввод экранируется.
func FormatApplication(sub *models.ApplicationSubmission) string {
	var b strings.Builder

	b.WriteString("📝 <b>Новая заявка на НОК</b>\n")
	fmt.Fprintf(&b, "№ <code>%s</code>\n", sub.Reference)
	fmt.Fprintf(&b, "👤 %s\n", html.EscapeString(sub.FullName))
	fmt.Fprintf(&b, "📧 %s\n", html.EscapeString(sub.Email))
	fmt.Fprintf(&b, "📞 %s\n", html.EscapeString(sub.Phone))
	fmt.Fprintf(&b, "🏗 %s\n", html.EscapeString(sub.Specialization.Label()))
	if sub.Company != "" {
		fmt.Fprintf(&b, "🏢 %s\n", html.EscapeString(sub.Company))
	}
	if sub.Experience != "" {
		fmt.Fprintf(&b, "⏳ Опыт: %s\n", html.EscapeString(sub.Experience.Label()))
	}
	if sub.Message != "" {
		fmt.Fprintf(&b, "💬 %s\n", html.EscapeString(sub.Message))
	}
	if !sub.SubmittedAt.IsZero() {
		fmt.Fprintf(&b, "🕒 %s UTC", sub.SubmittedAt.UTC().Format("02.01.2006 15:04"))
	}

	return strings.TrimRight(b.String(), "\n")
}
