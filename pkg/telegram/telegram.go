// Package telegram is a minimal Bot API client covering what the order flow
// needs: sending text replies, inline keyboards, acknowledging button taps,
// and webhook registration.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mohamedwael201193/octaneshift-api-sub000/pkg/flow"
)

const defaultBaseURL = "https://api.telegram.org"

// API talks to the Telegram Bot API. It implements flow.Replier.
type API struct {
	botToken string
	baseURL  string
	client   *http.Client
}

// Update is one inbound Telegram update envelope.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// Message is an inbound chat message.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      User   `json:"from"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

// CallbackQuery is an inline-keyboard button tap.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data"`
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type inlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type inlineKeyboardMarkup struct {
	InlineKeyboard [][]inlineKeyboardButton `json:"inline_keyboard"`
}

// NewAPI creates a Bot API client for the given bot token.
func NewAPI(botToken string) *API {
	return &API{
		botToken: botToken,
		baseURL:  defaultBaseURL,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Reply sends a plain text message to a chat.
func (a *API) Reply(ctx context.Context, chatID int64, text string) error {
	body := map[string]any{"chat_id": chatID, "text": text}
	_, err := a.request(ctx, "sendMessage", body)
	return err
}

// ReplyWithButtons sends a text message with an inline keyboard attached.
func (a *API) ReplyWithButtons(ctx context.Context, chatID int64, text string, rows [][]flow.Button) error {
	keyboard := make([][]inlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]inlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, inlineKeyboardButton{Text: b.Text, CallbackData: b.Data})
		}
		keyboard = append(keyboard, buttons)
	}
	body := map[string]any{
		"chat_id":      chatID,
		"text":         text,
		"reply_markup": inlineKeyboardMarkup{InlineKeyboard: keyboard},
	}
	_, err := a.request(ctx, "sendMessage", body)
	return err
}

// AnswerCallbackQuery acknowledges a button tap so the client stops showing
// its loading state.
func (a *API) AnswerCallbackQuery(ctx context.Context, callbackQueryID string) error {
	body := map[string]any{"callback_query_id": callbackQueryID}
	_, err := a.request(ctx, "answerCallbackQuery", body)
	return err
}

// SetWebhook points the bot at the given public URL. The secret token is
// echoed back by Telegram in the X-Telegram-Bot-Api-Secret-Token header of
// every delivery.
func (a *API) SetWebhook(ctx context.Context, webhookURL, secretToken string) error {
	body := map[string]any{
		"url":             webhookURL,
		"secret_token":    secretToken,
		"allowed_updates": []string{"message", "callback_query"},
	}
	_, err := a.request(ctx, "setWebhook", body)
	return err
}

// DeleteWebhook unregisters the webhook, leaving pending updates queued.
func (a *API) DeleteWebhook(ctx context.Context) error {
	_, err := a.request(ctx, "deleteWebhook", map[string]bool{"drop_pending_updates": false})
	return err
}

func (a *API) request(ctx context.Context, endpoint string, body any) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/bot%s/%s", a.baseURL, a.botToken, endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode >= 400 {
		msg := strings.TrimSpace(string(payload))
		if msg == "" {
			msg = fmt.Sprintf("telegram status %d", res.StatusCode)
		}
		return nil, fmt.Errorf("telegram: %s", msg)
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("telegram: decoding response: %w", err)
	}
	if !result.OK {
		return nil, fmt.Errorf("telegram: %s request rejected: %s", endpoint, result.Description)
	}
	return payload, nil
}
