package view

// Element ids the dashboard page exposes.
const (
	IDStatTotal              = "stat-total"
	IDStatUpcoming           = "stat-upcoming"
	IDStatRating             = "stat-rating"
	IDInvitationsContainer   = "invitations-container"
	IDInvitationsCount       = "invitations-count"
	IDUpcomingContainer      = "upcoming-sessions-container"
	IDNotificationsContainer = "notifications-container"

	IDNotificationCount = "notification-count"
	IDMobileMenuButton  = "mobile-menu-button"
	IDMobileMenu        = "mobile-menu"
)

// Dashboard holds the handles every dashboard page has. Each loader writes
// to its own handles only.
type Dashboard struct {
	StatTotal              Element
	StatUpcoming           Element
	StatRating             Element
	InvitationsContainer   Element
	InvitationsCount       Element
	UpcomingContainer      Element
	NotificationsContainer Element
}

// NewDashboard returns a dashboard with loading placeholders in place.
func NewDashboard() *Dashboard {
	d := &Dashboard{}
	d.StatTotal.init(IDStatTotal, "text-3xl", "font-bold", "text-gray-900")
	d.StatUpcoming.init(IDStatUpcoming, "text-3xl", "font-bold", "text-gray-900")
	d.StatRating.init(IDStatRating, "text-3xl", "font-bold", "text-gray-900")
	d.InvitationsContainer.init(IDInvitationsContainer, "space-y-4")
	d.InvitationsCount.init(IDInvitationsCount, "text-sm", "text-gray-500")
	d.UpcomingContainer.init(IDUpcomingContainer, "space-y-4")
	d.NotificationsContainer.init(IDNotificationsContainer, "space-y-3")

	for _, stat := range []*Element{&d.StatTotal, &d.StatUpcoming, &d.StatRating} {
		stat.SetText("-")
	}
	return d
}

// Chrome holds the layout handles a page may or may not render. Nil
// handles are skipped by every operation.
type Chrome struct {
	NotificationCount *Element
	MobileMenuButton  *Element
	MobileMenu        *Element
}

// ChromeOption adds optional handles to a Chrome.
type ChromeOption func(*Chrome)

// WithBadge adds the unread notification badge.
func WithBadge() ChromeOption {
	return func(c *Chrome) {
		c.NotificationCount = NewElement(IDNotificationCount,
			"absolute", "top-0", "right-0", "bg-red-500", "text-white", "text-xs", "rounded-full", "px-1.5", HiddenClass)
	}
}

// WithMobileMenu adds the mobile navigation button and menu.
func WithMobileMenu() ChromeOption {
	return func(c *Chrome) {
		c.MobileMenuButton = NewElement(IDMobileMenuButton, "md:hidden", "text-gray-700")
		c.MobileMenu = NewElement(IDMobileMenu, "md:hidden", HiddenClass)
	}
}

// NewChrome returns the layout handles selected by opts.
func NewChrome(opts ...ChromeOption) *Chrome {
	c := &Chrome{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
