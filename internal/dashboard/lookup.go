package dashboard

// SessionStatus is the lifecycle state of a study session.
type SessionStatus string

const (
	StatusPlanned   SessionStatus = "Planned"
	StatusActive    SessionStatus = "Active"
	StatusCompleted SessionStatus = "Completed"
	StatusCancelled SessionStatus = "Cancelled"
)

// BadgeClass is the colour of the status badge. Unknown statuses are grey.
func (s SessionStatus) BadgeClass() string {
	switch s {
	case StatusPlanned:
		return "bg-blue-100 text-blue-800"
	case StatusActive:
		return "bg-green-100 text-green-800"
	case StatusCancelled:
		return "bg-red-100 text-red-800"
	default:
		return "bg-gray-100 text-gray-800"
	}
}

// NotificationType classifies a notification.
type NotificationType string

const (
	TypeSessionInvite   NotificationType = "Session Invite"
	TypeReminder        NotificationType = "Reminder"
	TypeCancellation    NotificationType = "Cancellation"
	TypeUpdate          NotificationType = "Update"
	TypeFeedbackRequest NotificationType = "Feedback Request"
)

type notificationStyle struct {
	icon   string
	border string
	color  string
}

var (
	notificationStyles = map[NotificationType]notificationStyle{
		TypeSessionInvite:   {icon: "mail", border: "border-blue-500", color: "text-blue-600"},
		TypeReminder:        {icon: "bell", border: "border-yellow-500", color: "text-yellow-600"},
		TypeCancellation:    {icon: "x-circle", border: "border-red-500", color: "text-red-600"},
		TypeUpdate:          {icon: "refresh-cw", border: "border-purple-500", color: "text-purple-600"},
		TypeFeedbackRequest: {icon: "edit", border: "border-green-500", color: "text-green-600"},
	}
	defaultNotificationStyle = notificationStyle{icon: "bell", border: "border-gray-500", color: "text-gray-600"}
)

func (t NotificationType) style() notificationStyle {
	if style, ok := notificationStyles[t]; ok {
		return style
	}
	return defaultNotificationStyle
}

// Icon is the feather icon name.
func (t NotificationType) Icon() string { return t.style().icon }

// BorderClass is the left border colour.
func (t NotificationType) BorderClass() string { return t.style().border }

// IconClass is the icon colour.
func (t NotificationType) IconClass() string { return t.style().color }
