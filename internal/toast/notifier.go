package toast

import (
	"context"
	"log/slog"
	"sync"

	"github.com/example/study-dashboard/internal/logging"
)

// Notifier surfaces a message to the viewer.
type Notifier interface {
	Notify(ctx context.Context, level Level, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, level Level, message string)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, level Level, message string) {
	f(ctx, level, message)
}

// Notify shows the message with the board's default duration.
func (b *Board) Notify(_ context.Context, level Level, message string) {
	b.Show(level, message, 0)
}

type notifierKey struct{}

// ContextWithNotifier binds n to the request context.
func ContextWithNotifier(ctx context.Context, n Notifier) context.Context {
	if ctx == nil || n == nil {
		return ctx
	}
	return context.WithValue(ctx, notifierKey{}, n)
}

// FromContext returns the bound notifier, or one that only logs.
func FromContext(ctx context.Context) Notifier {
	if ctx != nil {
		if n, ok := ctx.Value(notifierKey{}).(Notifier); ok {
			return n
		}
	}
	return logNotifier{}
}

type logNotifier struct{}

func (logNotifier) Notify(ctx context.Context, level Level, message string) {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = slog.Default()
	}
	logLevel := slog.LevelInfo
	if level == LevelError {
		logLevel = slog.LevelWarn
	}
	logger.Log(ctx, logLevel, "toast without viewer", "level", string(level), "message", message)
}

// Entry is one notification captured by a Recorder.
type Entry struct {
	Level   Level
	Message string
}

// Recorder captures notifications, mostly for tests.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// Notify records the notification.
func (r *Recorder) Notify(_ context.Context, level Level, message string) {
	r.mu.Lock()
	r.entries = append(r.entries, Entry{Level: level, Message: message})
	r.mu.Unlock()
}

// Entries returns everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Messages returns the recorded messages of one level.
func (r *Recorder) Messages(level Level) []string {
	var out []string
	for _, entry := range r.Entries() {
		if entry.Level == level {
			out = append(out, entry.Message)
		}
	}
	return out
}
