package http

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/example/study-dashboard/internal/apiclient"
	"github.com/example/study-dashboard/internal/chrome"
	"github.com/example/study-dashboard/internal/toast"
)

// ViewerCookie names the cookie that keeps a browser's viewer id.
const ViewerCookie = "dashboard_viewer"

const viewerCookieMaxAge = 30 * 24 * 60 * 60

func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}

// ViewerIdentity tags the request with a viewer id, issuing the cookie on
// first visit, and binds the viewer's toast board as the request notifier.
// The remaining request cookies travel on to the backend.
func ViewerIdentity(registry *toast.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			viewerID := ""
			if cookie, err := r.Cookie(ViewerCookie); err == nil {
				if parsed, err := uuid.Parse(cookie.Value); err == nil {
					viewerID = parsed.String()
				}
			}
			if viewerID == "" {
				viewerID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     ViewerCookie,
					Value:    viewerID,
					Path:     "/",
					MaxAge:   viewerCookieMaxAge,
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			var board *toast.Board
			if registry != nil {
				board = registry.Board(viewerID)
			}

			ctx := ContextWithViewer(r.Context(), viewerID, board)
			ctx = apiclient.ContextWithCookies(ctx, backendCookies(r))
			if logger := LoggerFromContext(ctx); logger != nil {
				ctx = ContextWithLogger(ctx, logger.With("viewer_id", viewerID))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func backendCookies(r *http.Request) []*http.Cookie {
	all := r.Cookies()
	forwarded := make([]*http.Cookie, 0, len(all))
	for _, c := range all {
		if c.Name == ViewerCookie {
			continue
		}
		forwarded = append(forwarded, c)
	}
	return forwarded
}

// RateLimitActions caps how fast a single viewer may fire requests through
// the wrapped handler. Limiters are kept for at most size viewers.
func RateLimitActions(limit rate.Limit, burst, size int, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	limiters, err := lru.New[string, *rate.Limiter](size)
	if err != nil {
		return nil, fmt.Errorf("create limiter cache: %w", err)
	}
	responder := newResponder(logger)

	getLimiter := func(key string) *rate.Limiter {
		if limiter, ok := limiters.Get(key); ok {
			return limiter
		}
		limiter := rate.NewLimiter(limit, burst)
		if existing, ok, _ := limiters.PeekOrAdd(key, limiter); ok {
			return existing
		}
		return limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := ViewerFromContext(r.Context())
			if !ok {
				key = clientIP(r)
			}
			if !getLimiter(key).Allow() {
				responder.writeError(r.Context(), w, http.StatusTooManyRequests, errTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RequireAuth sends viewers the backend does not recognise to the login
// page. JSON clients get a 401 carrying the login location instead.
func RequireAuth(gate *chrome.AuthGate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if gate == nil {
			return next
		}
		responder := newResponder(nil)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := gate.Check(r.Context(), r.URL.Path)
			if decision.Redirect {
				if wantsJSON(r) {
					w.Header().Set("Location", decision.Location)
					responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{Message: "Authentication required"})
					return
				}
				http.Redirect(w, r, decision.Location, http.StatusFound)
				return
			}

			ctx := contextWithUserName(r.Context(), decision.UserName)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
