package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static serves the embedded scripts and styles.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Placeholder is the centred message a container shows when it has nothing
// to list or failed to load.
type Placeholder struct {
	Icon     string
	Message  string
	Failed   bool
	LinkHref string
	LinkText string
}

// InvitationCard is one pending invitation.
type InvitationCard struct {
	NotificationID int64
	SessionID      int64
	Subject        string
	Date           string
	Time           string
	Location       string
	SentAgo        string
	AcceptURL      string
	DeclineURL     string
}

// SessionCard is one upcoming session.
type SessionCard struct {
	Href            string
	Subject         string
	Date            string
	Time            string
	Location        string
	Status          string
	BadgeClass      string
	Participants    int
	MaxParticipants int
}

// NotificationItem is one recent notification.
type NotificationItem struct {
	Icon        string
	BorderClass string
	IconClass   string
	Message     string
	SentAgo     string
	Unread      bool
}

// ToastView is a toast as rendered into the page.
type ToastView struct {
	ID         string
	Class      string
	Message    string
	DurationMS int64
	Dismissing bool
}

// PageData feeds the full dashboard page.
type PageData struct {
	Title     string
	UserName  string
	Dashboard *Dashboard
	Chrome    *Chrome
	Toasts    []ToastView
}

// Renderer executes the embedded templates.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) fragment(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

// Placeholder renders an empty or failed container body.
func (r *Renderer) Placeholder(p Placeholder) (template.HTML, error) {
	return r.fragment("placeholder", p)
}

// InvitationCards renders the invitation list.
func (r *Renderer) InvitationCards(cards []InvitationCard) (template.HTML, error) {
	return r.fragment("invitation_cards", cards)
}

// SessionCards renders the upcoming session list.
func (r *Renderer) SessionCards(cards []SessionCard) (template.HTML, error) {
	return r.fragment("session_cards", cards)
}

// NotificationItems renders the notification list.
func (r *Renderer) NotificationItems(items []NotificationItem) (template.HTML, error) {
	return r.fragment("notification_items", items)
}

// Toasts renders toast markup.
func (r *Renderer) Toasts(toasts []ToastView) (template.HTML, error) {
	return r.fragment("toasts", toasts)
}

// Page writes the full dashboard document.
func (r *Renderer) Page(w io.Writer, data PageData) error {
	if data.Chrome == nil {
		data.Chrome = NewChrome()
	}
	if data.Title == "" {
		data.Title = "Dashboard"
	}
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "page", data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
