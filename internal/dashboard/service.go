// Package dashboard fills a viewer's dashboard page from the backend and
// runs the invitation actions that change it.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/example/study-dashboard/internal/logging"
	"github.com/example/study-dashboard/internal/view"
)

// ErrUnknownSection is returned for a section name no loader serves.
var ErrUnknownSection = errors.New("dashboard: unknown section")

// DefaultActionBase prefixes the invitation action URLs rendered on cards.
const DefaultActionBase = "/dashboard/invitations"

// Report gathers the outcomes of one full reload in section order.
type Report struct {
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome returns the outcome for section.
func (r Report) Outcome(section Section) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Section == section {
			return o, true
		}
	}
	return Outcome{}, false
}

// Failed lists the sections whose loader contained an error.
func (r Report) Failed() []Section {
	var failed []Section
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o.Section)
		}
	}
	return failed
}

// Service runs the loaders and the invitation actions.
type Service struct {
	api       API
	loaders   []Loader
	logger    *slog.Logger
	onSettled func(ctx context.Context, report Report)
	inflight  singleflight.Group
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceConfig)

type serviceConfig struct {
	now        func() time.Time
	location   *time.Location
	logger     *slog.Logger
	onSettled  func(ctx context.Context, report Report)
	actionBase string
}

// WithClock overrides the time source used for relative timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(c *serviceConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLocation sets the zone naive backend timestamps are read in.
func WithLocation(loc *time.Location) ServiceOption {
	return func(c *serviceConfig) {
		if loc != nil {
			c.location = loc
		}
	}
}

// WithLogger sets the fallback logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(c *serviceConfig) { c.logger = logger }
}

// WithSettledHook runs fn once after every full reload has settled.
func WithSettledHook(fn func(ctx context.Context, report Report)) ServiceOption {
	return func(c *serviceConfig) { c.onSettled = fn }
}

// WithActionBase overrides DefaultActionBase.
func WithActionBase(base string) ServiceOption {
	return func(c *serviceConfig) {
		if base != "" {
			c.actionBase = base
		}
	}
}

// NewService wires the four loaders to api and renderer.
func NewService(api API, renderer *view.Renderer, opts ...ServiceOption) *Service {
	cfg := serviceConfig{
		now:        time.Now,
		location:   time.Local,
		actionBase: DefaultActionBase,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	deps := loaderDeps{
		api:      api,
		renderer: renderer,
		now:      cfg.now,
		location: cfg.location,
		logger:   cfg.logger,
	}
	return &Service{
		api:    api,
		logger: cfg.logger,
		loaders: []Loader{
			StatsLoader{deps},
			InvitationsLoader{loaderDeps: deps, actionBase: cfg.actionBase},
			UpcomingLoader{deps},
			NotificationsLoader{deps},
		},
		onSettled: cfg.onSettled,
	}
}

func (s *Service) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return logging.Component(ctx, s.logger, "dashboard", operation, attrs...)
}

// Reload runs every loader concurrently against page and returns once all
// of them have settled. It never fails; each loader contains its own error.
func (s *Service) Reload(ctx context.Context, page *view.Dashboard) Report {
	started := time.Now()
	outcomes := make([]Outcome, len(s.loaders))

	var group errgroup.Group
	for i, loader := range s.loaders {
		group.Go(func() error {
			outcomes[i] = loader.Load(ctx, page)
			return nil
		})
	}
	_ = group.Wait()

	report := Report{Outcomes: outcomes}
	s.log(ctx, "reload").InfoContext(ctx, "dashboard settled",
		"failed_sections", len(report.Failed()),
		"duration", time.Since(started),
	)
	if s.onSettled != nil {
		s.onSettled(ctx, report)
	}
	return report
}

// LoadSection runs the single loader serving section.
func (s *Service) LoadSection(ctx context.Context, section Section, page *view.Dashboard) (Outcome, error) {
	for _, loader := range s.loaders {
		if loader.Section() == section {
			return loader.Load(ctx, page), nil
		}
	}
	return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownSection, section)
}
