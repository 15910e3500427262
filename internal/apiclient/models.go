package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope is the backend's response shape.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Count   *int            `json:"count,omitempty"`
}

// Stats is the dashboard aggregate.
type Stats struct {
	TotalSessions    int     `json:"total_sessions"`
	UpcomingSessions int     `json:"upcoming_sessions"`
	AvgEffectiveness float64 `json:"avg_effectiveness"`
}

// Session is an upcoming study session the viewer belongs to.
type Session struct {
	ID               int64  `json:"session_id"`
	SubjectName      string `json:"subject_name"`
	SubjectCode      string `json:"subject_code"`
	SessionDate      string `json:"session_date"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	Building         Text   `json:"building"`
	RoomNumber       Text   `json:"room_number"`
	Status           string `json:"status"`
	ParticipantCount int    `json:"participant_count"`
	MaxParticipants  int    `json:"max_participants"`
}

// Invitation is a pending session invite derived from a notification.
type Invitation struct {
	NotificationID   int64  `json:"notification_id"`
	SessionID        int64  `json:"session_id"`
	Message          string `json:"message"`
	SentDate         string `json:"sent_date"`
	SubjectName      string `json:"subject_name"`
	SubjectCode      string `json:"subject_code"`
	SessionDate      string `json:"session_date"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	Building         Text   `json:"building"`
	RoomNumber       Text   `json:"room_number"`
	ParticipantCount int    `json:"participant_count"`
	MaxParticipants  int    `json:"max_participants"`
}

// Notification is one entry of the recent notifications list.
type Notification struct {
	ID         int64  `json:"notification_id"`
	Type       string `json:"notification_type"`
	Message    string `json:"message"`
	ReadStatus Flag   `json:"read_status"`
	SentDate   string `json:"sent_date"`
}

// AuthStatus is the answer of the auth check.
type AuthStatus struct {
	Authenticated bool
	UserName      string
	Message       string
}

// Flag is a boolean the database layer may serialise as true/false or 0/1.
type Flag bool

// UnmarshalJSON accepts booleans, numbers and their string forms.
func (f *Flag) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	switch strings.ToLower(raw) {
	case "true", "1":
		*f = true
	case "false", "0", "", "null":
		*f = false
	default:
		return fmt.Errorf("invalid flag %s", data)
	}
	return nil
}

// Text is a string column that may arrive as null or as a number.
type Text string

// UnmarshalJSON accepts strings, numbers and null.
func (t *Text) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*t = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("invalid text %s", data)
	}
	*t = Text(n.String())
	return nil
}

func decodeData[T any](env Envelope) (T, error) {
	var out T
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrUnexpectedPayload, err)
	}
	return out, nil
}
