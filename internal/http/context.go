package http

import (
	"context"
	"log/slog"

	"github.com/example/study-dashboard/internal/logging"
	"github.com/example/study-dashboard/internal/toast"
)

type contextKey string

const (
	viewerContextKey contextKey = "viewer_id"
	boardContextKey  contextKey = "toast_board"
	userContextKey   contextKey = "user_name"
)

// ContextWithLogger returns a derived context carrying the request logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts the request logger if present.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

// ContextWithViewer records the viewer id and the viewer's toast board. The
// board also becomes the context's notifier.
func ContextWithViewer(ctx context.Context, viewerID string, board *toast.Board) context.Context {
	ctx = context.WithValue(ctx, viewerContextKey, viewerID)
	if board != nil {
		ctx = context.WithValue(ctx, boardContextKey, board)
		ctx = toast.ContextWithNotifier(ctx, board)
	}
	return ctx
}

// ViewerFromContext returns the viewer id.
func ViewerFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(viewerContextKey).(string)
	return id, ok && id != ""
}

// BoardFromContext returns the viewer's toast board.
func BoardFromContext(ctx context.Context) (*toast.Board, bool) {
	board, ok := ctx.Value(boardContextKey).(*toast.Board)
	return board, ok && board != nil
}

func contextWithUserName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, userContextKey, name)
}

func userNameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(userContextKey).(string)
	return name
}
