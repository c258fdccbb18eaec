package ingress

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedwael201193/octaneshift-api-sub000/pkg/flow"
)

type fakeOrchestrator struct {
	events []flow.Event
	err    error
}

func (f *fakeOrchestrator) HandleEvent(ctx context.Context, ev flow.Event) error {
	f.events = append(f.events, ev)
	return f.err
}

type fakeAcker struct {
	acked []string
}

func (f *fakeAcker) AnswerCallbackQuery(ctx context.Context, id string) error {
	f.acked = append(f.acked, id)
	return nil
}

func newTestHandler(t *testing.T, secret string, orch *fakeOrchestrator, acker CallbackAcker) *Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(logger, secret, orch, acker)
	t.Cleanup(h.Close)
	return h
}

func deliver(h *Handler, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const messageUpdate = `{
	"update_id": 1001,
	"message": {
		"message_id": 1,
		"from": {"id": 7, "username": "alice"},
		"chat": {"id": 7},
		"text": "/gas base 0.01"
	}
}`

func TestServeHTTP_NoSecretConfigured(t *testing.T) {
	orch := &fakeOrchestrator{}
	h := newTestHandler(t, "", orch, nil)

	rec := deliver(h, "/webhook/anything", messageUpdate, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, orch.events)
}

func TestServeHTTP_MissingSecret(t *testing.T) {
	orch := &fakeOrchestrator{}
	h := newTestHandler(t, "s3cret", orch, nil)

	rec := deliver(h, "/webhook", messageUpdate, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, orch.events)
}

func TestServeHTTP_WrongPathSecret(t *testing.T) {
	orch := &fakeOrchestrator{}
	h := newTestHandler(t, "s3cret", orch, nil)

	rec := deliver(h, "/webhook/wrong", messageUpdate, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, orch.events)
}

func TestServeHTTP_WrongHeaderSecret(t *testing.T) {
	orch := &fakeOrchestrator{}
	h := newTestHandler(t, "s3cret", orch, nil)

	headers := map[string]string{"X-Telegram-Bot-Api-Secret-Token": "wrong"}
	rec := deliver(h, "/webhook/s3cret", messageUpdate, headers)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "header mismatch rejects even with a valid path secret")
	assert.Empty(t, orch.events)
}

func TestServeHTTP_HeaderSecretAlone(t *testing.T) {
	orch := &fakeOrchestrator{}
	h := newTestHandler(t, "s3cret", orch, nil)

	headers := map[string]string{"X-Telegram-Bot-Api-Secret-Token": "s3cret"}
	rec := deliver(h, "/webhook", messageUpdate, headers)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, orch.events, 1)
}

func TestServeHTTP_InvalidEnvelope(t *testing.T) {
	orch := &fakeOrchestrator{}
	h := newTestHandler(t, "s3cret", orch, nil)

	for _, body := range []string{
		`[1, 2, 3]`,
		`"just a string"`,
		`{"message": {"text": "no id"}}`,
		`{"update_id": "1001"}`,
		`{not json`,
	} {
		rec := deliver(h, "/webhook/s3cret", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
	assert.Empty(t, orch.events)
}

func TestServeHTTP_MessageDecoded(t *testing.T) {
	orch := &fakeOrchestrator{}
	h := newTestHandler(t, "s3cret", orch, nil)

	rec := deliver(h, "/webhook/s3cret", messageUpdate, map[string]string{
		"X-Forwarded-For": "203.0.113.9, 10.0.0.1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	require.Len(t, orch.events, 1)
	ev := orch.events[0]
	assert.Equal(t, int64(7), ev.UserID)
	assert.Equal(t, int64(7), ev.ChatID)
	assert.Equal(t, "203.0.113.9", ev.CallerIP)

	cmd, ok := ev.Command.(flow.Initiate)
	require.True(t, ok)
	assert.Equal(t, "base", cmd.NetworkAlias)
	assert.Equal(t, "0.01", cmd.Amount)
}

func TestServeHTTP_DuplicateUpdateAckedOnce(t *testing.T) {
	orch := &fakeOrchestrator{}
	h := newTestHandler(t, "s3cret", orch, nil)

	first := deliver(h, "/webhook/s3cret", messageUpdate, nil)
	second := deliver(h, "/webhook/s3cret", messageUpdate, nil)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code, "redelivery is still acked")
	assert.Len(t, orch.events, 1, "orchestration ran once")
}

func TestServeHTTP_OrchestrationFailure(t *testing.T) {
	orch := &fakeOrchestrator{err: errors.New("boom")}
	h := newTestHandler(t, "s3cret", orch, nil)

	rec := deliver(h, "/webhook/s3cret", messageUpdate, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Len(t, orch.events, 1, "failure is logged, not retried")
}

func TestServeHTTP_CallbackQuery(t *testing.T) {
	orch := &fakeOrchestrator{}
	acker := &fakeAcker{}
	h := newTestHandler(t, "s3cret", orch, acker)

	body := `{
		"update_id": 2002,
		"callback_query": {
			"id": "cbq-9",
			"from": {"id": 7},
			"message": {"message_id": 3, "chat": {"id": 7}},
			"data": "asset|usdc|ethereum|base"
		}
	}`
	rec := deliver(h, "/webhook/s3cret", body, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"cbq-9"}, acker.acked)

	require.Len(t, orch.events, 1)
	cmd, ok := orch.events[0].Command.(flow.SelectDepositAsset)
	require.True(t, ok)
	assert.Equal(t, "usdc", cmd.Coin)
	assert.Equal(t, "ethereum", cmd.Network)
	assert.Equal(t, "base", cmd.Context)
}

func TestServeHTTP_UnhandledUpdateKindAcked(t *testing.T) {
	orch := &fakeOrchestrator{}
	h := newTestHandler(t, "s3cret", orch, nil)

	rec := deliver(h, "/webhook/s3cret", `{"update_id": 3003, "edited_message": {"text": "x"}}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, orch.events)
}

func TestServeHTTP_MethodNotAllowed(t *testing.T) {
	orch := &fakeOrchestrator{}
	h := newTestHandler(t, "s3cret", orch, nil)

	req := httptest.NewRequest(http.MethodGet, "/webhook/s3cret", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
