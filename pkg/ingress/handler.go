// Package ingress receives Telegram webhook deliveries, authenticates them,
// and hands decoded events to the conversation orchestrator. The HTTP
// acknowledgment is sent only after orchestration has fully completed.
package ingress

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mohamedwael201193/octaneshift-api-sub000/pkg/flow"
	"github.com/mohamedwael201193/octaneshift-api-sub000/pkg/telegram"
)

const (
	secretHeader = "X-Telegram-Bot-Api-Secret-Token"

	dedupeWindow  = 10 * time.Minute
	dedupeMaxSize = 4096
)

// Orchestrator is the ingress's view of the conversation state machine.
type Orchestrator interface {
	HandleEvent(ctx context.Context, ev flow.Event) error
}

// CallbackAcker acknowledges button taps so the chat client stops showing a
// loading spinner. Optional.
type CallbackAcker interface {
	AnswerCallbackQuery(ctx context.Context, callbackQueryID string) error
}

// Handler is the webhook endpoint. The secret appears both as the final path
// segment and in the delivery header; either one mismatching rejects the
// request before the orchestrator is touched.
type Handler struct {
	logger *slog.Logger
	secret string
	orch   Orchestrator
	acker  CallbackAcker
	seen   *seenUpdates
}

// NewHandler creates the webhook handler. acker may be nil.
func NewHandler(logger *slog.Logger, secret string, orch Orchestrator, acker CallbackAcker) *Handler {
	return &Handler{
		logger: logger,
		secret: secret,
		orch:   orch,
		acker:  acker,
		seen:   newSeenUpdates(dedupeWindow, dedupeMaxSize),
	}
}

// Close releases the duplicate-suppression cache.
func (h *Handler) Close() {
	h.seen.Close()
}

// envelope is the inbound update with the id kept optional so its absence is
// distinguishable from zero.
type envelope struct {
	UpdateID      *int64                  `json:"update_id"`
	Message       *telegram.Message       `json:"message"`
	CallbackQuery *telegram.CallbackQuery `json:"callback_query"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"ok": false, "error": "method not allowed"})
		return
	}

	if h.secret == "" {
		h.logger.Error("webhook secret not configured, rejecting delivery")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "server misconfigured"})
		return
	}

	pathToken := pathSecret(r.URL.Path)
	headerToken := r.Header.Get(secretHeader)
	if pathToken == "" && headerToken == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "missing secret"})
		return
	}
	if (pathToken != "" && pathToken != h.secret) || (headerToken != "" && headerToken != h.secret) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "unauthorized"})
		return
	}

	var env envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil || env.UpdateID == nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid envelope"})
		return
	}

	logger := h.logger.With(
		"correlation_id", uuid.NewString(),
		"update_id", *env.UpdateID)

	if h.seen.CheckAndMark(*env.UpdateID) {
		logger.Info("duplicate update acked without processing")
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	ev, ok := h.decodeEvent(r, env, logger)
	if !ok {
		// Nothing to orchestrate: an update kind we don't handle, or a
		// callback with no usable chat. Telegram still expects a 200.
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if err := h.orch.HandleEvent(r.Context(), ev); err != nil {
		logger.Error("orchestration failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "processing failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) decodeEvent(r *http.Request, env envelope, logger *slog.Logger) (flow.Event, bool) {
	callerIP := callerIP(r)

	if msg := env.Message; msg != nil {
		if msg.From.ID == 0 {
			return flow.Event{}, false
		}
		return flow.Event{
			UserID:   msg.From.ID,
			ChatID:   msg.Chat.ID,
			CallerIP: callerIP,
			Command:  flow.DecodeMessage(msg.Text),
		}, true
	}

	if cb := env.CallbackQuery; cb != nil {
		if h.acker != nil {
			if err := h.acker.AnswerCallbackQuery(r.Context(), cb.ID); err != nil {
				logger.Warn("answering callback query failed", "error", err)
			}
		}
		if cb.Message == nil || cb.From.ID == 0 {
			return flow.Event{}, false
		}
		cmd, ok := flow.DecodeCallback(cb.Data)
		if !ok {
			logger.Warn("unrecognized callback payload dropped", "data", cb.Data)
			return flow.Event{}, false
		}
		return flow.Event{
			UserID:   cb.From.ID,
			ChatID:   cb.Message.Chat.ID,
			CallerIP: callerIP,
			Command:  cmd,
		}, true
	}

	return flow.Event{}, false
}

// pathSecret extracts the final path segment. "/webhook" alone carries none.
func pathSecret(p string) string {
	segment := path.Base(path.Clean(p))
	if segment == "webhook" || segment == "/" || segment == "." {
		return ""
	}
	return segment
}

// callerIP prefers the first forwarded address, falling back to the peer.
func callerIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
