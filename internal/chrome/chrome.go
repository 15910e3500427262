// Package chrome runs the layout concerns every page shares: the auth
// check, the unread badge and the mobile menu toggle.
package chrome

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/example/study-dashboard/internal/apiclient"
	"github.com/example/study-dashboard/internal/logging"
	"github.com/example/study-dashboard/internal/view"
)

// DefaultLoginPath is where unauthenticated viewers are sent.
const DefaultLoginPath = "/auth/login"

// AuthChecker reports whether the viewer's backend session is valid.
type AuthChecker interface {
	CheckAuth(ctx context.Context) (apiclient.AuthStatus, error)
}

// Decision is the outcome of an auth check.
type Decision struct {
	Redirect bool
	Location string
	UserName string
}

// AuthGate redirects viewers the backend does not recognise.
type AuthGate struct {
	checker   AuthChecker
	loginPath string
	logger    *slog.Logger
}

// NewAuthGate returns a gate redirecting to loginPath (DefaultLoginPath
// when empty).
func NewAuthGate(checker AuthChecker, loginPath string, logger *slog.Logger) *AuthGate {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	return &AuthGate{checker: checker, loginPath: loginPath, logger: logger}
}

// Check asks the backend about the viewer. Pages under /auth/ are never
// redirected, and a check that could not complete lets the viewer through.
func (g *AuthGate) Check(ctx context.Context, path string) Decision {
	logger := logging.Component(ctx, g.logger, "chrome", "auth_check", "path", path)

	status, err := g.checker.CheckAuth(ctx)
	if err != nil {
		logger.WarnContext(ctx, "auth check failed", "error", err, "error_kind", apiclient.ErrorKind(err))
		return Decision{}
	}
	if !status.Authenticated && !strings.Contains(path, "/auth/") {
		logger.InfoContext(ctx, "redirecting unauthenticated viewer")
		return Decision{Redirect: true, Location: g.loginPath}
	}
	return Decision{UserName: status.UserName}
}

// UnreadCounter fetches the unread notification count.
type UnreadCounter interface {
	UnreadCount(ctx context.Context) (int, error)
}

// BadgeState is what the badge shows after a refresh.
type BadgeState struct {
	Present bool `json:"present"`
	Visible bool `json:"visible"`
	Count   int  `json:"count"`
	Stale   bool `json:"stale"`
}

// BadgeRefresher keeps the unread badge in step with the backend.
type BadgeRefresher struct {
	counter UnreadCounter
	logger  *slog.Logger
}

// NewBadgeRefresher returns a refresher reading from counter.
func NewBadgeRefresher(counter UnreadCounter, logger *slog.Logger) *BadgeRefresher {
	return &BadgeRefresher{counter: counter, logger: logger}
}

// Refresh updates badge: hidden at zero, visible with the count otherwise.
// A nil badge issues no request; a failed fetch leaves the badge as is.
func (r *BadgeRefresher) Refresh(ctx context.Context, badge *view.Element) BadgeState {
	if badge == nil {
		return BadgeState{}
	}

	count, err := r.counter.UnreadCount(ctx)
	if err != nil {
		logging.Component(ctx, r.logger, "chrome", "badge_refresh").
			ErrorContext(ctx, "failed to update notification count", "error", err, "error_kind", apiclient.ErrorKind(err))
		return BadgeState{Present: true, Visible: !badge.Hidden(), Stale: true}
	}

	if count > 0 {
		badge.SetText(strconv.Itoa(count))
		badge.Show()
		return BadgeState{Present: true, Visible: true, Count: count}
	}
	badge.Hide()
	return BadgeState{Present: true}
}

// WireMobileMenu makes the menu button toggle the menu's visibility. It
// reports whether both handles were present; otherwise nothing is wired.
func WireMobileMenu(c *view.Chrome) bool {
	if c == nil || c.MobileMenuButton == nil || c.MobileMenu == nil {
		return false
	}
	c.MobileMenuButton.SetData("toggle", c.MobileMenu.ID())
	return true
}

// ToggleMobileMenu flips the menu the way a click on a wired button does.
func ToggleMobileMenu(c *view.Chrome) bool {
	if c == nil || c.MobileMenu == nil || c.MobileMenuButton == nil {
		return false
	}
	if target, ok := c.MobileMenuButton.Data("toggle"); !ok || target != c.MobileMenu.ID() {
		return false
	}
	return !c.MobileMenu.Toggle(view.HiddenClass)
}
