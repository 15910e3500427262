// Package toast keeps the transient notifications shown to a dashboard
// viewer and streams their lifecycle to subscribers.
package toast

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultDuration is how long a toast stays fully visible.
	DefaultDuration = 5000 * time.Millisecond
	// ExitGrace separates the exit animation from removal.
	ExitGrace = 300 * time.Millisecond
)

// Level is the severity of a toast.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// ParseLevel maps a level name to a Level; unknown names become info.
func ParseLevel(value string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(value))) {
	case LevelSuccess:
		return LevelSuccess
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

// Class is the CSS class list for the level.
func (l Level) Class() string {
	return "toast toast-" + string(ParseLevel(string(l)))
}

// Phase is where a toast is in its lifecycle.
type Phase string

const (
	PhaseShown      Phase = "shown"
	PhaseDismissing Phase = "dismissing"
	PhaseRemoved    Phase = "removed"
)

// Toast is one notification on a board.
type Toast struct {
	ID         string        `json:"id"`
	Level      Level         `json:"level"`
	Message    string        `json:"message"`
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"duration_ms"`
	CreatedAt  time.Time     `json:"created_at"`
	Phase      Phase         `json:"phase"`
}

// Event reports a phase change of a toast.
type Event struct {
	Kind  Phase `json:"kind"`
	Toast Toast `json:"toast"`
}

// AfterFunc schedules fn after d. time.AfterFunc satisfies it once its
// timer result is discarded.
type AfterFunc func(d time.Duration, fn func())

// Board holds the toasts of one viewer. Toasts coexist without a cap; each
// is dismissed after its duration and removed ExitGrace later.
type Board struct {
	mu       sync.Mutex
	toasts   []*Toast
	subs     map[int]chan Event
	nextSub  int
	closed   bool
	now      func() time.Time
	after    AfterFunc
	duration time.Duration
	newID    func() string
}

// Option configures a Board.
type Option func(*Board)

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(b *Board) {
		if now != nil {
			b.now = now
		}
	}
}

// WithAfterFunc overrides the timer used for dismissal.
func WithAfterFunc(after AfterFunc) Option {
	return func(b *Board) {
		if after != nil {
			b.after = after
		}
	}
}

// WithDefaultDuration overrides DefaultDuration for toasts shown without an
// explicit duration.
func WithDefaultDuration(d time.Duration) Option {
	return func(b *Board) {
		if d > 0 {
			b.duration = d
		}
	}
}

// WithIDGenerator overrides the UUID generator.
func WithIDGenerator(next func() string) Option {
	return func(b *Board) {
		if next != nil {
			b.newID = next
		}
	}
}

// NewBoard returns an empty board.
func NewBoard(opts ...Option) *Board {
	b := &Board{
		subs:     make(map[int]chan Event),
		now:      time.Now,
		after:    func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
		duration: DefaultDuration,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Show adds a toast and schedules its teardown. A non-positive duration
// uses the board default.
func (b *Board) Show(level Level, message string, duration time.Duration) Toast {
	if duration <= 0 {
		duration = b.duration
	}
	t := &Toast{
		ID:         b.newID(),
		Level:      ParseLevel(string(level)),
		Message:    message,
		Duration:   duration,
		DurationMS: duration.Milliseconds(),
		CreatedAt:  b.now(),
		Phase:      PhaseShown,
	}

	b.mu.Lock()
	b.toasts = append(b.toasts, t)
	snapshot := *t
	b.publishLocked(Event{Kind: PhaseShown, Toast: snapshot})
	b.mu.Unlock()

	id := t.ID
	b.after(duration, func() { b.dismiss(id) })
	return snapshot
}

func (b *Board) dismiss(id string) {
	b.mu.Lock()
	t := b.findLocked(id)
	if t == nil || t.Phase != PhaseShown {
		b.mu.Unlock()
		return
	}
	t.Phase = PhaseDismissing
	b.publishLocked(Event{Kind: PhaseDismissing, Toast: *t})
	b.mu.Unlock()

	b.after(ExitGrace, func() { b.remove(id) })
}

func (b *Board) remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, t := range b.toasts {
		if t.ID != id {
			continue
		}
		b.toasts = append(b.toasts[:i], b.toasts[i+1:]...)
		removed := *t
		removed.Phase = PhaseRemoved
		b.publishLocked(Event{Kind: PhaseRemoved, Toast: removed})
		return
	}
}

func (b *Board) findLocked(id string) *Toast {
	for _, t := range b.toasts {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// publishLocked fans an event out without blocking; a subscriber whose
// buffer is full misses the event.
func (b *Board) publishLocked(evt Event) {
	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Active returns the toasts still on screen, oldest first.
func (b *Board) Active() []Toast {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Toast, 0, len(b.toasts))
	for _, t := range b.toasts {
		out = append(out, *t)
	}
	return out
}

// Subscribe streams lifecycle events. The returned cancel func is safe to
// call more than once. Subscribing to a closed board yields a closed
// channel.
func (b *Board) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	key := b.nextSub
	b.nextSub++
	b.subs[key] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[key]; ok {
				delete(b.subs, key)
				close(sub)
			}
		})
	}
}

// Close ends every subscription. Toasts already shown still expire.
func (b *Board) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for key, ch := range b.subs {
		delete(b.subs, key)
		close(ch)
	}
}
