package testfixtures

import (
	"sync/atomic"
	"time"
)

var (
	sessionCounter      int64
	notificationCounter int64
)

// Envelope wraps data the way the backend does on success.
func Envelope(data any) map[string]any {
	return map[string]any{"success": true, "data": data}
}

// CountEnvelope is the unread-count success shape.
func CountEnvelope(count int) map[string]any {
	return map[string]any{"success": true, "count": count}
}

// SessionPayload is an upcoming-session row as the backend serialises it.
type SessionPayload struct {
	SessionID        int64
	SubjectName      string
	SubjectCode      string
	SessionDate      string
	StartTime        string
	EndTime          string
	Building         any
	RoomNumber       any
	Status           string
	ParticipantCount int
	MaxParticipants  int
}

// SessionOption customises a session payload.
type SessionOption func(*SessionPayload)

// NewSessionPayload returns a planned session with sequential identifiers.
func NewSessionPayload(opts ...SessionOption) SessionPayload {
	id := atomic.AddInt64(&sessionCounter, 1)
	payload := SessionPayload{
		SessionID:        id,
		SubjectName:      "Data Structures",
		SubjectCode:      "CS201",
		SessionDate:      referenceTime.AddDate(0, 0, 1).Format("2006-01-02"),
		StartTime:        "14:00:00",
		EndTime:          "16:00:00",
		Building:         "Library",
		RoomNumber:       "204",
		Status:           "Planned",
		ParticipantCount: 2,
		MaxParticipants:  6,
	}
	for _, opt := range opts {
		opt(&payload)
	}
	return payload
}

// WithSessionID fixes the session identifier.
func WithSessionID(id int64) SessionOption {
	return func(p *SessionPayload) { p.SessionID = id }
}

// WithSessionStatus overrides the status.
func WithSessionStatus(status string) SessionOption {
	return func(p *SessionPayload) { p.Status = status }
}

// WithSubject overrides the subject name.
func WithSubject(name string) SessionOption {
	return func(p *SessionPayload) { p.SubjectName = name }
}

// WithoutLocation clears building and room the way an unassigned location
// serialises (JSON null).
func WithoutLocation() SessionOption {
	return func(p *SessionPayload) {
		p.Building = nil
		p.RoomNumber = nil
	}
}

// Map renders the payload as backend JSON.
func (p SessionPayload) Map() map[string]any {
	return map[string]any{
		"session_id":        p.SessionID,
		"subject_name":      p.SubjectName,
		"subject_code":      p.SubjectCode,
		"session_date":      p.SessionDate,
		"start_time":        p.StartTime,
		"end_time":          p.EndTime,
		"building":          p.Building,
		"room_number":       p.RoomNumber,
		"status":            p.Status,
		"participant_count": p.ParticipantCount,
		"max_participants":  p.MaxParticipants,
	}
}

// InvitationPayload is a pending invitation row.
type InvitationPayload struct {
	NotificationID int64
	SessionID      int64
	Message        string
	SentDate       string
	Session        SessionPayload
}

// InvitationOption customises an invitation payload.
type InvitationOption func(*InvitationPayload)

// NewInvitationPayload returns an invitation for a fresh session.
func NewInvitationPayload(opts ...InvitationOption) InvitationPayload {
	session := NewSessionPayload()
	payload := InvitationPayload{
		NotificationID: atomic.AddInt64(&notificationCounter, 1),
		SessionID:      session.SessionID,
		Message:        "You have been invited to a study session",
		SentDate:       referenceTime.Add(-2 * time.Hour).Format("2006-01-02T15:04:05"),
		Session:        session,
	}
	for _, opt := range opts {
		opt(&payload)
	}
	return payload
}

// WithInvitationIDs fixes the notification and session identifiers.
func WithInvitationIDs(notificationID, sessionID int64) InvitationOption {
	return func(p *InvitationPayload) {
		p.NotificationID = notificationID
		p.SessionID = sessionID
		p.Session.SessionID = sessionID
	}
}

// Map renders the payload as backend JSON.
func (p InvitationPayload) Map() map[string]any {
	out := p.Session.Map()
	delete(out, "status")
	out["notification_id"] = p.NotificationID
	out["session_id"] = p.SessionID
	out["message"] = p.Message
	out["sent_date"] = p.SentDate
	return out
}

// NotificationPayload is a recent notification row. ReadStatus is any so
// tests can send the 0/1 integers the database layer produces.
type NotificationPayload struct {
	NotificationID int64
	Type           string
	Message        string
	ReadStatus     any
	SentDate       string
}

// NotificationOption customises a notification payload.
type NotificationOption func(*NotificationPayload)

// NewNotificationPayload returns an unread reminder.
func NewNotificationPayload(opts ...NotificationOption) NotificationPayload {
	payload := NotificationPayload{
		NotificationID: atomic.AddInt64(&notificationCounter, 1),
		Type:           "Reminder",
		Message:        "Your session starts tomorrow",
		ReadStatus:     0,
		SentDate:       referenceTime.Add(-3 * time.Hour).Format("2006-01-02T15:04:05"),
	}
	for _, opt := range opts {
		opt(&payload)
	}
	return payload
}

// WithNotificationType overrides the type.
func WithNotificationType(kind string) NotificationOption {
	return func(p *NotificationPayload) { p.Type = kind }
}

// WithMessage overrides the message.
func WithMessage(message string) NotificationOption {
	return func(p *NotificationPayload) { p.Message = message }
}

// WithReadStatus overrides the read flag.
func WithReadStatus(status any) NotificationOption {
	return func(p *NotificationPayload) { p.ReadStatus = status }
}

// Map renders the payload as backend JSON.
func (p NotificationPayload) Map() map[string]any {
	return map[string]any{
		"notification_id":   p.NotificationID,
		"notification_type": p.Type,
		"message":           p.Message,
		"read_status":       p.ReadStatus,
		"sent_date":         p.SentDate,
	}
}

// StatsPayload renders the stats body.
func StatsPayload(total, upcoming int, avg float64) map[string]any {
	return map[string]any{
		"total_sessions":    total,
		"upcoming_sessions": upcoming,
		"avg_effectiveness": avg,
	}
}
