package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/example/study-dashboard/internal/apiclient"
	"github.com/example/study-dashboard/internal/chrome"
	"github.com/example/study-dashboard/internal/config"
	"github.com/example/study-dashboard/internal/dashboard"
	httptransport "github.com/example/study-dashboard/internal/http"
	"github.com/example/study-dashboard/internal/logging"
	"github.com/example/study-dashboard/internal/toast"
	"github.com/example/study-dashboard/internal/view"
)

func main() {
	bootLogger := logging.New(os.Stdout, "", slog.LevelInfo)
	if err := config.LoadDotEnv(); err != nil {
		bootLogger.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		bootLogger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogFormat, slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler, err := buildHandler(cfg, logger)
	if err != nil {
		logger.Error("failed to assemble dashboard", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Page renders wait on four backend calls.
		WriteTimeout: cfg.RequestTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("dashboard listening", "addr", server.Addr, "backend", cfg.BackendURL)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func buildHandler(cfg config.Config, logger *slog.Logger) (http.Handler, error) {
	api := apiclient.New(cfg.BackendURL,
		apiclient.WithAPIPrefix(cfg.APIPrefix),
		apiclient.WithTimeout(cfg.RequestTimeout),
		apiclient.WithLogger(logger),
	)

	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, err
	}

	registry, err := toast.NewRegistry(cfg.MaxViewers, toast.WithDefaultDuration(cfg.ToastDuration))
	if err != nil {
		return nil, err
	}

	limiter, err := httptransport.RateLimitActions(rate.Limit(cfg.ActionRate), cfg.ActionBurst, cfg.MaxViewers, logger)
	if err != nil {
		return nil, err
	}

	service := dashboard.NewService(api, renderer,
		dashboard.WithLocation(cfg.Location),
		dashboard.WithLogger(logger),
		dashboard.WithSettledHook(func(ctx context.Context, report dashboard.Report) {
			if failed := report.Failed(); len(failed) > 0 {
				logging.Component(ctx, logger, "dashboard", "reload").
					WarnContext(ctx, "dashboard sections failed", "sections", failed)
			}
		}),
	)
	badge := chrome.NewBadgeRefresher(api, logger)
	gate := chrome.NewAuthGate(api, cfg.LoginURL, logger)

	return httptransport.NewRouter(httptransport.RouterConfig{
		Dashboard:        httptransport.NewDashboardHandler(service, renderer, badge, logger),
		Chrome:           httptransport.NewChromeHandler(badge, logger),
		Toasts:           httptransport.NewToastHandler(logger),
		Static:           view.Static(),
		PageMiddleware:   []func(http.Handler) http.Handler{httptransport.RequireAuth(gate)},
		ActionMiddleware: []func(http.Handler) http.Handler{limiter},
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.ViewerIdentity(registry),
		},
	}), nil
}
