package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/example/study-dashboard/internal/apiclient"
	"github.com/example/study-dashboard/internal/chrome"
	"github.com/example/study-dashboard/internal/dashboard"
	"github.com/example/study-dashboard/internal/testfixtures"
	"github.com/example/study-dashboard/internal/toast"
	"github.com/example/study-dashboard/internal/view"
)

type serverHarness struct {
	backend  *testfixtures.Backend
	server   *httptest.Server
	client   *http.Client
	registry *toast.Registry
}

type harnessOptions struct {
	actionRate  rate.Limit
	actionBurst int
}

func newServerHarness(t *testing.T, opts harnessOptions) *serverHarness {
	t.Helper()

	backend := testfixtures.NewBackend(t)
	api := apiclient.New(backend.URL, apiclient.WithHTTPClient(backend.Client()))

	renderer, err := view.NewRenderer()
	require.NoError(t, err)

	timers := testfixtures.NewTimers(nil)
	registry, err := toast.NewRegistry(8,
		toast.WithClock(timers.Clock().NowFunc()),
		toast.WithAfterFunc(timers.AfterFunc),
	)
	require.NoError(t, err)

	service := dashboard.NewService(api, renderer,
		dashboard.WithClock(testfixtures.NewClock(time.Time{}).NowFunc()),
		dashboard.WithLocation(time.UTC),
	)
	badge := chrome.NewBadgeRefresher(api, nil)

	if opts.actionRate == 0 {
		opts.actionRate = rate.Inf
	}
	if opts.actionBurst == 0 {
		opts.actionBurst = 1
	}
	limiter, err := RateLimitActions(opts.actionRate, opts.actionBurst, 8, nil)
	require.NoError(t, err)

	handler := NewRouter(RouterConfig{
		Dashboard:        NewDashboardHandler(service, renderer, badge, nil),
		Chrome:           NewChromeHandler(badge, nil),
		Toasts:           NewToastHandler(nil),
		Static:           view.Static(),
		PageMiddleware:   []func(http.Handler) http.Handler{RequireAuth(chrome.NewAuthGate(api, "", nil))},
		ActionMiddleware: []func(http.Handler) http.Handler{limiter},
		Middleware: []func(http.Handler) http.Handler{
			RequestLogger(nil),
			ViewerIdentity(registry),
		},
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &serverHarness{backend: backend, server: server, client: client, registry: registry}
}

func (h *serverHarness) serveDashboard() {
	h.backend.OK(http.MethodGet, "/auth/check", map[string]any{"success": true, "user": map[string]any{"name": "Sam Rivera"}})
	h.backend.OK(http.MethodGet, "/api/dashboard/stats", testfixtures.Envelope(testfixtures.StatsPayload(12, 3, 4.5)))
	h.backend.OK(http.MethodGet, "/api/dashboard/invitations", testfixtures.Envelope([]any{
		testfixtures.NewInvitationPayload(testfixtures.WithInvitationIDs(5, 12)).Map(),
	}))
	h.backend.OK(http.MethodGet, "/api/dashboard/upcoming", testfixtures.Envelope([]any{
		testfixtures.NewSessionPayload(testfixtures.WithSubject("Operating Systems")).Map(),
	}))
	h.backend.OK(http.MethodGet, "/api/dashboard/notifications", testfixtures.Envelope([]any{
		testfixtures.NewNotificationPayload(testfixtures.WithMessage("Bring your notes")).Map(),
	}))
	h.backend.OK(http.MethodGet, "/api/notifications/unread-count", testfixtures.CountEnvelope(3))
}

func (h *serverHarness) get(t *testing.T, path string, header http.Header) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, h.server.URL+path, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := h.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (h *serverHarness) post(t *testing.T, path string, form url.Values, header http.Header) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, h.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := h.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (h *serverHarness) viewerCookie(t *testing.T) *http.Cookie {
	t.Helper()
	u, err := url.Parse(h.server.URL)
	require.NoError(t, err)
	for _, c := range h.client.Jar.Cookies(u) {
		if c.Name == ViewerCookie {
			return c
		}
	}
	t.Fatal("viewer cookie was not issued")
	return nil
}

func (h *serverHarness) toastMessages(t *testing.T) []string {
	t.Helper()
	resp := h.get(t, "/toasts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Toasts []toast.Toast `json:"toasts"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	messages := make([]string, 0, len(body.Toasts))
	for _, item := range body.Toasts {
		messages = append(messages, item.Message)
	}
	return messages
}

func jsonHeader() http.Header {
	return http.Header{"Accept": []string{"application/json"}}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}

func TestDashboardPageRendersEverySection(t *testing.T) {
	h := newServerHarness(t, harnessOptions{})
	h.serveDashboard()

	resp := h.get(t, DashboardPath, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	body := readBody(t, resp)
	assert.Contains(t, body, "Sam Rivera")
	assert.Contains(t, body, "1 invite")
	assert.Contains(t, body, "Operating Systems")
	assert.Contains(t, body, "Bring your notes")
	assert.Contains(t, body, `data-toggle="mobile-menu"`)
	assert.Contains(t, body, ">3</span>")
	assert.NotEmpty(t, h.viewerCookie(t).Value)
}

func TestDashboardRedirectsUnauthenticatedViewer(t *testing.T) {
	h := newServerHarness(t, harnessOptions{})
	h.backend.OK(http.MethodGet, "/auth/check", map[string]any{"success": false, "message": "Not logged in"})

	resp := h.get(t, DashboardPath, nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, chrome.DefaultLoginPath, resp.Header.Get("Location"))
	assert.Zero(t, h.backend.CallCount(http.MethodGet, "/api/dashboard/stats"))

	resp = h.get(t, DashboardPath, jsonHeader())
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBackendCookiesAreForwarded(t *testing.T) {
	h := newServerHarness(t, harnessOptions{})
	h.serveDashboard()

	u, err := url.Parse(h.server.URL)
	require.NoError(t, err)
	h.client.Jar.SetCookies(u, []*http.Cookie{{Name: "session", Value: "abc123"}})

	resp := h.get(t, DashboardPath, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	calls := h.backend.Calls()
	require.NotEmpty(t, calls)
	for _, call := range calls {
		assert.Contains(t, call.Cookie, "session=abc123", "call %s %s", call.Method, call.Path)
		assert.NotContains(t, call.Cookie, ViewerCookie)
	}
}

func TestFragmentReturnsSectionElements(t *testing.T) {
	h := newServerHarness(t, harnessOptions{})
	h.serveDashboard()

	resp := h.get(t, "/dashboard/fragments/invitations", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body fragmentResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Loaded)
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "1 invite(s)", body.Elements[view.IDInvitationsCount])
	assert.Contains(t, body.Elements[view.IDInvitationsContainer], "Data Structures")
	assert.NotContains(t, body.Elements, view.IDStatTotal)

	resp = h.get(t, "/dashboard/fragments/calendar", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFragmentOmitsHandlesAFailedLoaderLeftAlone(t *testing.T) {
	h := newServerHarness(t, harnessOptions{})
	h.backend.Fail(http.MethodGet, "/api/dashboard/stats", http.StatusInternalServerError, "Database unavailable")
	h.backend.Fail(http.MethodGet, "/api/dashboard/invitations", http.StatusInternalServerError, "Database unavailable")

	resp := h.get(t, "/dashboard/fragments/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats fragmentResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.False(t, stats.Loaded)
	assert.Empty(t, stats.Elements, "failed stats must not overwrite the counters")

	resp = h.get(t, "/dashboard/fragments/invitations", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var invitations fragmentResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&invitations))
	assert.False(t, invitations.Loaded)
	assert.Contains(t, invitations.Elements[view.IDInvitationsContainer], "Failed to load invitations")
	assert.NotContains(t, invitations.Elements, view.IDInvitationsCount)
}

func TestAcceptRedirectsAndToasts(t *testing.T) {
	h := newServerHarness(t, harnessOptions{})
	h.backend.OK(http.MethodPost, "/api/sessions/12/join", testfixtures.Envelope(nil))
	h.backend.OK(http.MethodPut, "/api/notifications/5/read", testfixtures.Envelope(nil))

	resp := h.post(t, "/dashboard/invitations/5/accept", url.Values{"session_id": {"12"}}, nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, DashboardPath, resp.Header.Get("Location"))

	assert.Equal(t, 1, h.backend.CallCount(http.MethodPost, "/api/sessions/12/join"))
	assert.Equal(t, 1, h.backend.CallCount(http.MethodPut, "/api/notifications/5/read"))
	assert.Zero(t, h.backend.CallCount(http.MethodGet, "/api/dashboard/stats"), "redirect reloads the page instead")
	assert.Equal(t, []string{dashboard.MessageJoined}, h.toastMessages(t))
}

func TestAcceptJSONReportsBackendFailureOnce(t *testing.T) {
	h := newServerHarness(t, harnessOptions{})
	h.backend.Fail(http.MethodPost, "/api/sessions/12/join", http.StatusBadRequest, "Session is full")

	resp := h.post(t, "/dashboard/invitations/5/accept", url.Values{"session_id": {"12"}}, jsonHeader())
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var result dashboard.ActionResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, dashboard.StateReported, result.State)
	assert.False(t, result.Reloaded)

	assert.Zero(t, h.backend.CallCount(http.MethodPut, "/api/notifications/5/read"))
	assert.Equal(t, []string{"Session is full"}, h.toastMessages(t))
}

func TestDeclineJSONReloadsDashboard(t *testing.T) {
	h := newServerHarness(t, harnessOptions{})
	h.serveDashboard()
	h.backend.OK(http.MethodPut, "/api/notifications/5/read", testfixtures.Envelope(nil))

	resp := h.post(t, "/dashboard/invitations/5/decline", nil, jsonHeader())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result dashboard.ActionResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, dashboard.StateSuccess, result.State)
	assert.True(t, result.Reloaded)
	require.NotNil(t, result.Report)
	assert.Len(t, result.Report.Outcomes, len(dashboard.Sections))
	assert.Equal(t, 1, h.backend.CallCount(http.MethodGet, "/api/dashboard/stats"))
}

func TestAcceptRejectsInvalidSessionID(t *testing.T) {
	h := newServerHarness(t, harnessOptions{})

	resp := h.post(t, "/dashboard/invitations/5/accept", url.Values{"session_id": {"abc"}}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, errInvalidSessionID.Error(), body.Message)
	assert.Empty(t, h.backend.Calls())
}

func TestActionsAreRateLimitedPerViewer(t *testing.T) {
	h := newServerHarness(t, harnessOptions{actionRate: rate.Every(time.Hour), actionBurst: 1})
	h.backend.OK(http.MethodPut, "/api/notifications/5/read", testfixtures.Envelope(nil))

	first := h.post(t, "/dashboard/invitations/5/decline", nil, nil)
	assert.Equal(t, http.StatusSeeOther, first.StatusCode)

	second := h.post(t, "/dashboard/invitations/5/decline", nil, nil)
	require.Equal(t, http.StatusTooManyRequests, second.StatusCode)

	var body errorResponse
	require.NoError(t, json.NewDecoder(second.Body).Decode(&body))
	assert.Equal(t, "Too many requests", body.Message)
	assert.Equal(t, 1, h.backend.CallCount(http.MethodPut, "/api/notifications/5/read"))
}

func TestNotificationCountReportsBadgeState(t *testing.T) {
	h := newServerHarness(t, harnessOptions{})
	h.backend.OK(http.MethodGet, "/api/notifications/unread-count", testfixtures.CountEnvelope(4))

	resp := h.get(t, "/chrome/notification-count", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var state chrome.BadgeState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	assert.Equal(t, chrome.BadgeState{Present: true, Visible: true, Count: 4}, state)
}

func TestStaticAssetsAreServed(t *testing.T) {
	h := newServerHarness(t, harnessOptions{})

	resp := h.get(t, "/static/js/dashboard.js", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "toast")
}

func TestUnsupportedMethodIsRejected(t *testing.T) {
	h := newServerHarness(t, harnessOptions{})

	resp := h.post(t, "/chrome/notification-count", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestToastStreamMirrorsBoard(t *testing.T) {
	h := newServerHarness(t, harnessOptions{})
	h.backend.OK(http.MethodPut, "/api/notifications/5/read", testfixtures.Envelope(nil))

	// The first request issues the viewer cookie.
	h.get(t, "/toasts", nil)
	cookie := h.viewerCookie(t)

	wsURL := "ws" + strings.TrimPrefix(h.server.URL, "http") + "/toasts/stream"
	header := http.Header{"Cookie": []string{cookie.String()}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	decline := h.post(t, "/dashboard/invitations/5/decline", nil, nil)
	require.Equal(t, http.StatusSeeOther, decline.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var evt toast.Event
	require.NoError(t, conn.ReadJSON(&evt))
	assert.Equal(t, toast.PhaseShown, evt.Kind)
	assert.Equal(t, dashboard.MessageDeclined, evt.Toast.Message)
	assert.Equal(t, toast.LevelSuccess, evt.Toast.Level)
}
