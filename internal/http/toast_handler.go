package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/example/study-dashboard/internal/toast"
	"github.com/example/study-dashboard/internal/view"
)

const (
	streamBuffer     = 16
	streamWriteWait  = 10 * time.Second
	streamPingPeriod = 30 * time.Second
)

type ToastHandler struct {
	upgrader  websocket.Upgrader
	responder responder
	logger    *slog.Logger
}

func NewToastHandler(logger *slog.Logger) *ToastHandler {
	return &ToastHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 10 * time.Second,
		},
		responder: newResponder(logger),
		logger:    logger,
	}
}

func (h *ToastHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "ToastHandler", operation, attrs...)
}

// List returns the viewer's visible toasts.
func (h *ToastHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	toasts := []toast.Toast{}
	if board, ok := BoardFromContext(ctx); ok {
		toasts = append(toasts, board.Active()...)
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, map[string]any{"toasts": toasts})
}

// Stream mirrors the viewer's board over a websocket. Toasts already on the
// board are sent first, then every lifecycle event as it happens.
func (h *ToastHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	board, ok := BoardFromContext(ctx)
	if !ok {
		h.responder.writeError(ctx, w, http.StatusServiceUnavailable, nil)
		return
	}

	events, cancel := board.Subscribe(streamBuffer)
	defer cancel()
	// Toasts shown between Subscribe and Active arrive twice; the snapshot wins.
	snapshot := board.Active()
	sent := make(map[string]bool, len(snapshot))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log(ctx, "stream").WarnContext(ctx, "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	logger := h.log(ctx, "stream")
	logger.InfoContext(ctx, "toast stream opened")
	defer logger.InfoContext(ctx, "toast stream closed")

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	write := func(evt toast.Event) error {
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		return conn.WriteJSON(evt)
	}

	for _, t := range snapshot {
		sent[t.ID] = true
		if err := write(toast.Event{Kind: t.Phase, Toast: t}); err != nil {
			logger.WarnContext(ctx, "failed to write toast", "error", err)
			return
		}
	}

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case evt, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "board closed"),
					time.Now().Add(streamWriteWait))
				return
			}
			if evt.Kind == toast.PhaseShown && sent[evt.Toast.ID] {
				delete(sent, evt.Toast.ID)
				continue
			}
			if err := write(evt); err != nil {
				logger.WarnContext(ctx, "failed to write toast", "error", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		case <-closed:
			return
		case <-ctx.Done():
			return
		}
	}
}

func activeToasts(ctx context.Context) []view.ToastView {
	board, ok := BoardFromContext(ctx)
	if !ok {
		return nil
	}
	active := board.Active()
	views := make([]view.ToastView, 0, len(active))
	for _, t := range active {
		views = append(views, view.ToastView{
			ID:         t.ID,
			Class:      t.Level.Class(),
			Message:    t.Message,
			DurationMS: t.DurationMS,
			Dismissing: t.Phase == toast.PhaseDismissing,
		})
	}
	return views
}
