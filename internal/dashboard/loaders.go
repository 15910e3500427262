package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/example/study-dashboard/internal/apiclient"
	"github.com/example/study-dashboard/internal/format"
	"github.com/example/study-dashboard/internal/logging"
	"github.com/example/study-dashboard/internal/view"
)

// API is the part of the backend client the dashboard depends on.
type API interface {
	DashboardStats(ctx context.Context) (apiclient.Stats, error)
	Invitations(ctx context.Context) ([]apiclient.Invitation, error)
	UpcomingSessions(ctx context.Context) ([]apiclient.Session, error)
	RecentNotifications(ctx context.Context) ([]apiclient.Notification, error)
	JoinSession(ctx context.Context, sessionID int64) (apiclient.Envelope, error)
	MarkNotificationRead(ctx context.Context, notificationID int64) (apiclient.Envelope, error)
}

// Section names one dashboard loader.
type Section string

const (
	SectionStats         Section = "stats"
	SectionInvitations   Section = "invitations"
	SectionUpcoming      Section = "upcoming"
	SectionNotifications Section = "notifications"
)

// Sections lists every section in page order.
var Sections = []Section{SectionStats, SectionInvitations, SectionUpcoming, SectionNotifications}

// Outcome is how one loader settled. Loaders never fail outright; Err
// records the failure they contained.
type Outcome struct {
	Section Section `json:"section"`
	Loaded  bool    `json:"loaded"`
	Count   int     `json:"count"`
	Err     error   `json:"-"`
}

// Loader fills its own handles of a dashboard page from one endpoint.
type Loader interface {
	Section() Section
	Load(ctx context.Context, page *view.Dashboard) Outcome
}

// loaderDeps is what every loader shares.
type loaderDeps struct {
	api      API
	renderer *view.Renderer
	now      func() time.Time
	location *time.Location
	logger   *slog.Logger
}

func (d loaderDeps) log(ctx context.Context, section Section) *slog.Logger {
	return logging.Component(ctx, d.logger, "dashboard", "load", "section", string(section))
}

func (d loaderDeps) timeAgo(value string) string {
	return format.TimeAgoString(value, d.now(), d.location)
}

// fail replaces a container with the failure placeholder.
func (d loaderDeps) fail(ctx context.Context, section Section, el *view.Element, message string, err error) Outcome {
	d.log(ctx, section).ErrorContext(ctx, "failed to load "+string(section), "error", err, "error_kind", apiclient.ErrorKind(err))
	d.placeholder(ctx, section, el, view.Placeholder{Message: message, Failed: true})
	return Outcome{Section: section, Err: err}
}

func (d loaderDeps) placeholder(ctx context.Context, section Section, el *view.Element, p view.Placeholder) {
	html, err := d.renderer.Placeholder(p)
	if err != nil {
		d.log(ctx, section).ErrorContext(ctx, "failed to render placeholder", "error", err)
		el.SetText(p.Message)
		return
	}
	el.SetHTML(html)
}

// StatsLoader fills the three stat counters. On failure the counters keep
// whatever they showed before.
type StatsLoader struct{ loaderDeps }

// Section implements Loader.
func (l StatsLoader) Section() Section { return SectionStats }

// Load implements Loader.
func (l StatsLoader) Load(ctx context.Context, page *view.Dashboard) Outcome {
	stats, err := l.api.DashboardStats(ctx)
	if err != nil {
		l.log(ctx, SectionStats).ErrorContext(ctx, "failed to load stats", "error", err, "error_kind", apiclient.ErrorKind(err))
		return Outcome{Section: SectionStats, Err: err}
	}
	page.StatTotal.SetText(strconv.Itoa(stats.TotalSessions))
	page.StatUpcoming.SetText(strconv.Itoa(stats.UpcomingSessions))
	page.StatRating.SetText(format.Rating(stats.AvgEffectiveness))
	return Outcome{Section: SectionStats, Loaded: true, Count: 1}
}

// InvitationsLoader fills the invitation list and its count label.
type InvitationsLoader struct {
	loaderDeps
	actionBase string
}

// Section implements Loader.
func (l InvitationsLoader) Section() Section { return SectionInvitations }

// Load implements Loader.
func (l InvitationsLoader) Load(ctx context.Context, page *view.Dashboard) Outcome {
	const failure = "Failed to load invitations"
	container := &page.InvitationsContainer

	invitations, err := l.api.Invitations(ctx)
	if err != nil {
		return l.fail(ctx, SectionInvitations, container, failure, err)
	}

	page.InvitationsCount.SetText(fmt.Sprintf("%d invite(s)", len(invitations)))
	if len(invitations) == 0 {
		l.placeholder(ctx, SectionInvitations, container, view.Placeholder{Icon: "inbox", Message: "No pending invitations"})
		return Outcome{Section: SectionInvitations, Loaded: true}
	}

	cards := make([]view.InvitationCard, 0, len(invitations))
	for _, inv := range invitations {
		base := l.actionBase + "/" + strconv.FormatInt(inv.NotificationID, 10)
		cards = append(cards, view.InvitationCard{
			NotificationID: inv.NotificationID,
			SessionID:      inv.SessionID,
			Subject:        inv.SubjectName,
			Date:           format.Date(inv.SessionDate),
			Time:           format.Time(inv.StartTime),
			Location:       format.Location(string(inv.Building), string(inv.RoomNumber)),
			SentAgo:        l.timeAgo(inv.SentDate),
			AcceptURL:      base + "/accept",
			DeclineURL:     base + "/decline",
		})
	}
	html, err := l.renderer.InvitationCards(cards)
	if err != nil {
		return l.fail(ctx, SectionInvitations, container, failure, err)
	}
	container.SetHTML(html)
	return Outcome{Section: SectionInvitations, Loaded: true, Count: len(cards)}
}

// UpcomingLoader fills the upcoming session list.
type UpcomingLoader struct{ loaderDeps }

// Section implements Loader.
func (l UpcomingLoader) Section() Section { return SectionUpcoming }

// Load implements Loader.
func (l UpcomingLoader) Load(ctx context.Context, page *view.Dashboard) Outcome {
	const failure = "Failed to load sessions"
	container := &page.UpcomingContainer

	sessions, err := l.api.UpcomingSessions(ctx)
	if err != nil {
		return l.fail(ctx, SectionUpcoming, container, failure, err)
	}
	if len(sessions) == 0 {
		l.placeholder(ctx, SectionUpcoming, container, view.Placeholder{
			Icon:     "calendar",
			Message:  "No upcoming sessions",
			LinkHref: "/sessions/browse",
			LinkText: "Browse sessions",
		})
		return Outcome{Section: SectionUpcoming, Loaded: true}
	}

	cards := make([]view.SessionCard, 0, len(sessions))
	for _, s := range sessions {
		cards = append(cards, view.SessionCard{
			Href:            "/sessions/" + strconv.FormatInt(s.ID, 10),
			Subject:         s.SubjectName,
			Date:            format.Date(s.SessionDate),
			Time:            format.Time(s.StartTime),
			Location:        format.Location(string(s.Building), string(s.RoomNumber)),
			Status:          s.Status,
			BadgeClass:      SessionStatus(s.Status).BadgeClass(),
			Participants:    s.ParticipantCount,
			MaxParticipants: s.MaxParticipants,
		})
	}
	html, err := l.renderer.SessionCards(cards)
	if err != nil {
		return l.fail(ctx, SectionUpcoming, container, failure, err)
	}
	container.SetHTML(html)
	return Outcome{Section: SectionUpcoming, Loaded: true, Count: len(cards)}
}

// NotificationsLoader fills the recent notification list.
type NotificationsLoader struct{ loaderDeps }

// Section implements Loader.
func (l NotificationsLoader) Section() Section { return SectionNotifications }

// Load implements Loader.
func (l NotificationsLoader) Load(ctx context.Context, page *view.Dashboard) Outcome {
	const failure = "Failed to load notifications"
	container := &page.NotificationsContainer

	notifications, err := l.api.RecentNotifications(ctx)
	if err != nil {
		return l.fail(ctx, SectionNotifications, container, failure, err)
	}
	if len(notifications) == 0 {
		l.placeholder(ctx, SectionNotifications, container, view.Placeholder{Icon: "bell-off", Message: "No notifications"})
		return Outcome{Section: SectionNotifications, Loaded: true}
	}

	items := make([]view.NotificationItem, 0, len(notifications))
	for _, n := range notifications {
		kind := NotificationType(n.Type)
		items = append(items, view.NotificationItem{
			Icon:        kind.Icon(),
			BorderClass: kind.BorderClass(),
			IconClass:   kind.IconClass(),
			Message:     n.Message,
			SentAgo:     l.timeAgo(n.SentDate),
			Unread:      !bool(n.ReadStatus),
		})
	}
	html, err := l.renderer.NotificationItems(items)
	if err != nil {
		return l.fail(ctx, SectionNotifications, container, failure, err)
	}
	container.SetHTML(html)
	return Outcome{Section: SectionNotifications, Loaded: true, Count: len(items)}
}
