// Package telegram delivers reminder notifications through the Telegram Bot API.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/notexe/task-reminder/internal/notify"
)

const defaultAPIBase = "https://api.telegram.org"

// Sender sends messages via the Telegram Bot API.
type Sender struct {
	botToken string
	chatID   string
	client   *resty.Client
}

// NewSender creates a new Telegram sender.
func NewSender(botToken, chatID string) *Sender {
	return NewSenderWithBase(defaultAPIBase, botToken, chatID)
}

// NewSenderWithBase points the sender at another Bot API host.
func NewSenderWithBase(apiBase, botToken, chatID string) *Sender {
	return &Sender{
		botToken: botToken,
		chatID:   chatID,
		client: resty.New().
			SetBaseURL(apiBase).
			SetTimeout(30 * time.Second),
	}
}

type sendRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// SendMessage sends an HTML formatted message to the configured chat.
func (s *Sender) SendMessage(ctx context.Context, text string) error {
	return s.call(ctx, "sendMessage", sendRequest{
		ChatID:    s.chatID,
		Text:      text,
		ParseMode: "HTML",
	})
}

// RequestPermission checks the bot token with getMe. A working bot counts as
// granted permission; anything else as denied.
func (s *Sender) RequestPermission(ctx context.Context) (notify.Permission, error) {
	if err := s.call(ctx, "getMe", nil); err != nil {
		return notify.PermissionDenied, err
	}
	return notify.PermissionGranted, nil
}

// Notify sends n as a chat message.
func (s *Sender) Notify(ctx context.Context, n notify.Notification) error {
	text := "<b>" + html.EscapeString(n.Title) + "</b>\n" + html.EscapeString(n.Body)
	if n.URL != "" {
		text += "\n" + html.EscapeString(n.URL)
	}
	return s.SendMessage(ctx, text)
}

func (s *Sender) call(ctx context.Context, method string, payload any) error {
	req := s.client.R().SetContext(ctx)
	if payload != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(payload)
	}

	resp, err := req.Post(fmt.Sprintf("/bot%s/%s", s.botToken, method))
	if err != nil {
		return fmt.Errorf("failed to call telegram %s: %w", method, err)
	}

	var tgResp apiResponse
	if err := json.Unmarshal(resp.Body(), &tgResp); err != nil {
		return fmt.Errorf("failed to parse telegram response: %w", err)
	}

	if !tgResp.OK {
		return fmt.Errorf("telegram API error: %s", tgResp.Description)
	}

	return nil
}
