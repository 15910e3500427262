package http

import (
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"
)

type RouterConfig struct {
	Dashboard *DashboardHandler
	Chrome    *ChromeHandler
	Toasts    *ToastHandler
	Static    fs.FS
	// PageMiddleware wraps the full page only, typically RequireAuth.
	PageMiddleware []func(http.Handler) http.Handler
	// ActionMiddleware wraps the invitation actions, typically RateLimitActions.
	ActionMiddleware []func(http.Handler) http.Handler
	Middleware       []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		methodNotAllowed(w)
	})
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		newResponder(nil).writeError(req.Context(), w, http.StatusNotFound, nil)
	})

	if cfg.Dashboard != nil {
		r.Handle(DashboardPath, chain(http.HandlerFunc(cfg.Dashboard.Page), cfg.PageMiddleware)).Methods(http.MethodGet)
		r.Handle("/", http.RedirectHandler(DashboardPath, http.StatusFound)).Methods(http.MethodGet)
		r.HandleFunc(DashboardPath+"/fragments/{section}", cfg.Dashboard.Fragment).Methods(http.MethodGet)

		actions := r.PathPrefix(DashboardPath + "/invitations").Subrouter()
		actions.Use(muxMiddleware(cfg.ActionMiddleware)...)
		actions.HandleFunc("/{notificationID:[0-9]+}/accept", cfg.Dashboard.Accept).Methods(http.MethodPost)
		actions.HandleFunc("/{notificationID:[0-9]+}/decline", cfg.Dashboard.Decline).Methods(http.MethodPost)
	}

	if cfg.Chrome != nil {
		r.HandleFunc("/chrome/notification-count", cfg.Chrome.NotificationCount).Methods(http.MethodGet)
	}

	if cfg.Toasts != nil {
		r.HandleFunc("/toasts", cfg.Toasts.List).Methods(http.MethodGet)
		r.HandleFunc("/toasts/stream", cfg.Toasts.Stream).Methods(http.MethodGet)
	}

	if cfg.Static != nil {
		r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(cfg.Static)))).Methods(http.MethodGet)
	}

	return chain(r, cfg.Middleware)
}

// chain applies middleware so the first entry runs outermost.
func chain(handler http.Handler, middleware []func(http.Handler) http.Handler) http.Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		if middleware[i] != nil {
			handler = middleware[i](handler)
		}
	}
	return handler
}

// muxMiddleware adapts middleware for mux.Router.Use, skipping nil entries.
func muxMiddleware(middleware []func(http.Handler) http.Handler) []mux.MiddlewareFunc {
	out := make([]mux.MiddlewareFunc, 0, len(middleware))
	for _, mw := range middleware {
		if mw != nil {
			out = append(out, mux.MiddlewareFunc(mw))
		}
	}
	return out
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
