package http

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/example/study-dashboard/internal/chrome"
	"github.com/example/study-dashboard/internal/dashboard"
	"github.com/example/study-dashboard/internal/view"
)

// DashboardPath is where the page lives and where actions redirect to.
const DashboardPath = "/dashboard"

type DashboardHandler struct {
	service   *dashboard.Service
	renderer  *view.Renderer
	badge     *chrome.BadgeRefresher
	responder responder
	logger    *slog.Logger
}

func NewDashboardHandler(service *dashboard.Service, renderer *view.Renderer, badge *chrome.BadgeRefresher, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service:   service,
		renderer:  renderer,
		badge:     badge,
		responder: newResponder(logger),
		logger:    logger,
	}
}

func (h *DashboardHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "DashboardHandler", operation, attrs...)
}

// Page renders the whole dashboard once every section has settled.
func (h *DashboardHandler) Page(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil || h.renderer == nil {
		http.Error(w, "dashboard handler not configured", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	page := view.NewDashboard()
	layout := view.NewChrome(view.WithBadge(), view.WithMobileMenu())
	chrome.WireMobileMenu(layout)

	report := h.service.Reload(ctx, page)
	if h.badge != nil {
		h.badge.Refresh(ctx, layout.NotificationCount)
	}

	data := view.PageData{
		UserName:  userNameFromContext(ctx),
		Dashboard: page,
		Chrome:    layout,
		Toasts:    activeToasts(ctx),
	}

	var buf bytes.Buffer
	if err := h.renderer.Page(&buf, data); err != nil {
		h.log(ctx, "page").ErrorContext(ctx, "failed to render dashboard", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.log(ctx, "page").InfoContext(ctx, "dashboard rendered", "failed_sections", len(report.Failed()))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type fragmentResponse struct {
	Section  dashboard.Section `json:"section"`
	Loaded   bool              `json:"loaded"`
	Count    int               `json:"count"`
	Elements map[string]string `json:"elements"`
}

// Fragment runs one section loader and returns the handles it owns.
func (h *DashboardHandler) Fragment(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, "dashboard handler not configured", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	section := dashboard.Section(mux.Vars(r)["section"])
	page := view.NewDashboard()

	outcome, err := h.service.LoadSection(ctx, section, page)
	if err != nil {
		if errors.Is(err, dashboard.ErrUnknownSection) {
			h.responder.writeError(ctx, w, http.StatusNotFound, errUnknownSection)
			return
		}
		h.responder.writeError(ctx, w, http.StatusInternalServerError, err)
		return
	}

	resp := fragmentResponse{
		Section:  outcome.Section,
		Loaded:   outcome.Loaded,
		Count:    outcome.Count,
		Elements: make(map[string]string),
	}
	// A failed loader may leave handles as the fresh page had them; those
	// are omitted so clients keep what they show.
	pristine := sectionElements(section, view.NewDashboard())
	for i, el := range sectionElements(section, page) {
		markup := string(el.HTML())
		if !outcome.Loaded && markup == string(pristine[i].HTML()) {
			continue
		}
		resp.Elements[el.ID()] = markup
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, resp)
}

func sectionElements(section dashboard.Section, page *view.Dashboard) []*view.Element {
	switch section {
	case dashboard.SectionStats:
		return []*view.Element{&page.StatTotal, &page.StatUpcoming, &page.StatRating}
	case dashboard.SectionInvitations:
		return []*view.Element{&page.InvitationsContainer, &page.InvitationsCount}
	case dashboard.SectionUpcoming:
		return []*view.Element{&page.UpcomingContainer}
	case dashboard.SectionNotifications:
		return []*view.Element{&page.NotificationsContainer}
	default:
		return nil
	}
}

// Accept joins the invited session.
func (h *DashboardHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.handleAction(w, r, dashboard.ActionAccept)
}

// Decline marks the invitation read without joining.
func (h *DashboardHandler) Decline(w http.ResponseWriter, r *http.Request) {
	h.handleAction(w, r, dashboard.ActionDecline)
}

func (h *DashboardHandler) handleAction(w http.ResponseWriter, r *http.Request, action dashboard.Action) {
	if h == nil || h.service == nil {
		http.Error(w, "dashboard handler not configured", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	notificationID, err := strconv.ParseInt(mux.Vars(r)["notificationID"], 10, 64)
	if err != nil || notificationID <= 0 {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errInvalidNotificationID)
		return
	}

	ref := dashboard.InvitationRef{NotificationID: notificationID}
	ref.Caller, _ = ViewerFromContext(ctx)
	if action == dashboard.ActionAccept {
		sessionID, err := strconv.ParseInt(r.FormValue("session_id"), 10, 64)
		if err != nil || sessionID <= 0 {
			h.responder.writeError(ctx, w, http.StatusBadRequest, errInvalidSessionID)
			return
		}
		ref.SessionID = sessionID
	}

	// A browser form follows the redirect and reloads the page itself, so
	// only JSON callers need the reload done here.
	jsonClient := wantsJSON(r)
	var page *view.Dashboard
	if jsonClient {
		page = view.NewDashboard()
	}

	var result dashboard.ActionResult
	if action == dashboard.ActionAccept {
		result = h.service.Accept(ctx, page, ref)
	} else {
		result = h.service.Decline(ctx, page, ref)
	}

	h.log(ctx, string(action), "notification_id", notificationID, "state", result.State, "shared", result.Shared).
		InfoContext(ctx, "invitation action finished")

	if !jsonClient {
		http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
		return
	}

	status := http.StatusOK
	if !result.OK() {
		status = http.StatusBadGateway
	}
	h.responder.writeJSON(ctx, w, status, result)
}
