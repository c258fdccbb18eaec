package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedwael201193/octaneshift-api-sub000/pkg/flow"
)

func testAPI(t *testing.T, handler http.HandlerFunc) *API {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	api := NewAPI("test-token")
	api.baseURL = srv.URL
	return api
}

func TestReply_SendsMessage(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	api := testAPI(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.Write([]byte(`{"ok":true}`))
	})

	err := api.Reply(context.Background(), 42, "hello")
	require.NoError(t, err)
	assert.Equal(t, "/bottest-token/sendMessage", gotPath)
	assert.Equal(t, float64(42), gotBody["chat_id"])
	assert.Equal(t, "hello", gotBody["text"])
}

func TestReplyWithButtons_BuildsInlineKeyboard(t *testing.T) {
	var gotBody struct {
		ReplyMarkup struct {
			InlineKeyboard [][]struct {
				Text         string `json:"text"`
				CallbackData string `json:"callback_data"`
			} `json:"inline_keyboard"`
		} `json:"reply_markup"`
	}
	api := testAPI(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.Write([]byte(`{"ok":true}`))
	})

	rows := [][]flow.Button{
		{{Text: "USDC on Ethereum", Data: "asset|usdc|ethereum|base"}},
		{{Text: "Cancel", Data: "cancel"}},
	}
	err := api.ReplyWithButtons(context.Background(), 42, "pick one", rows)
	require.NoError(t, err)

	require.Len(t, gotBody.ReplyMarkup.InlineKeyboard, 2)
	assert.Equal(t, "asset|usdc|ethereum|base", gotBody.ReplyMarkup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "cancel", gotBody.ReplyMarkup.InlineKeyboard[1][0].CallbackData)
}

func TestSetWebhook_CarriesSecretToken(t *testing.T) {
	var gotBody map[string]any
	api := testAPI(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.Write([]byte(`{"ok":true}`))
	})

	err := api.SetWebhook(context.Background(), "https://bot.example/webhook/s3cret", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "https://bot.example/webhook/s3cret", gotBody["url"])
	assert.Equal(t, "s3cret", gotBody["secret_token"])
}

func TestRequest_RejectedByTelegram(t *testing.T) {
	api := testAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	})

	err := api.Reply(context.Background(), 42, "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestRequest_HTTPError(t *testing.T) {
	api := testAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"ok":false,"description":"Unauthorized"}`))
	})

	err := api.AnswerCallbackQuery(context.Background(), "cbq-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unauthorized")
}
