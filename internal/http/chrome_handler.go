package http

import (
	"log/slog"
	"net/http"

	"github.com/example/study-dashboard/internal/chrome"
	"github.com/example/study-dashboard/internal/view"
)

type ChromeHandler struct {
	badge     *chrome.BadgeRefresher
	responder responder
	logger    *slog.Logger
}

func NewChromeHandler(badge *chrome.BadgeRefresher, logger *slog.Logger) *ChromeHandler {
	return &ChromeHandler{badge: badge, responder: newResponder(logger), logger: logger}
}

// NotificationCount refreshes a detached badge and reports its state.
func (h *ChromeHandler) NotificationCount(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.badge == nil {
		http.Error(w, "chrome handler not configured", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	state := h.badge.Refresh(ctx, view.NewElement(view.IDNotificationCount, view.HiddenClass))
	if state.Stale {
		handlerLogger(ctx, h.logger, "ChromeHandler", "notification_count").
			WarnContext(ctx, "badge count is stale")
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, state)
}
