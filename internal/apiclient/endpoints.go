package apiclient

import (
	"context"
	"net/http"
	"strconv"
)

// DashboardStats fetches the viewer's aggregate numbers.
func (c *Client) DashboardStats(ctx context.Context) (Stats, error) {
	env, err := c.Do(ctx, http.MethodGet, "/dashboard/stats", nil)
	if err != nil {
		return Stats{}, err
	}
	return decodeData[Stats](env)
}

// Invitations fetches the pending session invites.
func (c *Client) Invitations(ctx context.Context) ([]Invitation, error) {
	env, err := c.Do(ctx, http.MethodGet, "/dashboard/invitations", nil)
	if err != nil {
		return nil, err
	}
	return decodeData[[]Invitation](env)
}

// UpcomingSessions fetches the next sessions the viewer belongs to.
func (c *Client) UpcomingSessions(ctx context.Context) ([]Session, error) {
	env, err := c.Do(ctx, http.MethodGet, "/dashboard/upcoming", nil)
	if err != nil {
		return nil, err
	}
	return decodeData[[]Session](env)
}

// RecentNotifications fetches the latest notifications.
func (c *Client) RecentNotifications(ctx context.Context) ([]Notification, error) {
	env, err := c.Do(ctx, http.MethodGet, "/dashboard/notifications", nil)
	if err != nil {
		return nil, err
	}
	return decodeData[[]Notification](env)
}

// JoinSession adds the viewer to a session.
func (c *Client) JoinSession(ctx context.Context, sessionID int64) (Envelope, error) {
	return c.Do(ctx, http.MethodPost, "/sessions/"+strconv.FormatInt(sessionID, 10)+"/join", nil)
}

// MarkNotificationRead flags a notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID int64) (Envelope, error) {
	return c.Do(ctx, http.MethodPut, "/notifications/"+strconv.FormatInt(notificationID, 10)+"/read", nil)
}

// UnreadCount fetches the number of unread notifications. A missing count
// reads as zero.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	env, err := c.Do(ctx, http.MethodGet, "/notifications/unread-count", nil)
	if err != nil {
		return 0, err
	}
	if env.Count == nil {
		return 0, nil
	}
	return *env.Count, nil
}
