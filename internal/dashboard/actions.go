package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/study-dashboard/internal/apiclient"
	"github.com/example/study-dashboard/internal/toast"
	"github.com/example/study-dashboard/internal/view"
)

// AlreadyJoinedPhrase marks a join failure that means the viewer is
// already a member.
const AlreadyJoinedPhrase = "Already joined"

// Messages shown by the invitation actions.
const (
	MessageJoined          = "Joined session successfully!"
	MessageAlreadyJoined   = "You are already in this session"
	MessageDeclined        = "Invitation declined"
	MessageAcceptFallback  = "Failed to accept invitation"
	MessageDeclineFallback = "Failed to decline invitation"
)

// Action names an invitation action.
type Action string

const (
	ActionAccept  Action = "accept"
	ActionDecline Action = "decline"
)

// ActionState is the step an action invocation reached.
type ActionState string

const (
	StateIdle       ActionState = "idle"
	StateRequesting ActionState = "requesting"
	StateSuccess    ActionState = "success"
	StateBenign     ActionState = "benign"
	StateReported   ActionState = "reported"
)

// InvitationRef identifies the invitation an action targets. Caller scopes
// duplicate suppression to one viewer.
type InvitationRef struct {
	Caller         string
	SessionID      int64
	NotificationID int64
}

// ActionResult is the terminal state of one action invocation.
type ActionResult struct {
	Action   Action      `json:"action"`
	State    ActionState `json:"state"`
	Reloaded bool        `json:"reloaded"`
	Shared   bool        `json:"shared"`
	Report   *Report     `json:"report,omitempty"`
	Err      error       `json:"-"`
}

// OK reports whether the action reached a non-failure state.
func (r ActionResult) OK() bool {
	return r.State == StateSuccess || r.State == StateBenign
}

// Accept joins the invited session, marks the invitation read and reloads
// page. A join failure carrying AlreadyJoinedPhrase is treated as success
// with an informational toast; any other failure stops before mark-read
// and skips the reload.
func (s *Service) Accept(ctx context.Context, page *view.Dashboard, ref InvitationRef) ActionResult {
	return s.run(ctx, page, ActionAccept, ref, s.accept)
}

// Decline marks the invitation read and reloads page. A failure is
// reported and skips the reload.
func (s *Service) Decline(ctx context.Context, page *view.Dashboard, ref InvitationRef) ActionResult {
	return s.run(ctx, page, ActionDecline, ref, s.decline)
}

// run coalesces concurrent duplicates of the same action on the same
// invitation, then reloads page for every caller whose action succeeded.
// The shared steps ignore the first caller's cancellation.
func (s *Service) run(ctx context.Context, page *view.Dashboard, action Action, ref InvitationRef, steps func(context.Context, InvitationRef) ActionResult) ActionResult {
	key := fmt.Sprintf("%s|%s|%d", ref.Caller, action, ref.NotificationID)
	shareCtx := context.WithoutCancel(ctx)
	v, _, shared := s.inflight.Do(key, func() (any, error) {
		return steps(shareCtx, ref), nil
	})
	result := v.(ActionResult)
	result.Shared = shared

	logger := s.log(ctx, string(action),
		"notification_id", ref.NotificationID,
		"session_id", ref.SessionID,
		"state", string(result.State),
		"shared", shared,
	)
	if !result.OK() {
		logger.WarnContext(ctx, "invitation action failed", "error", result.Err, "error_kind", apiclient.ErrorKind(result.Err))
		return result
	}
	logger.InfoContext(ctx, "invitation action completed")

	if page != nil {
		report := s.Reload(ctx, page)
		result.Report = &report
		result.Reloaded = true
	}
	return result
}

func (s *Service) accept(ctx context.Context, ref InvitationRef) ActionResult {
	result := ActionResult{Action: ActionAccept, State: StateRequesting}
	notifier := toast.FromContext(ctx)

	_, err := s.api.JoinSession(ctx, ref.SessionID)
	switch {
	case err == nil:
		notifier.Notify(ctx, toast.LevelSuccess, MessageJoined)
		result.State = StateSuccess
	case strings.Contains(err.Error(), AlreadyJoinedPhrase):
		notifier.Notify(ctx, toast.LevelInfo, MessageAlreadyJoined)
		result.State = StateBenign
	default:
		return s.reportFailure(ctx, result, err, MessageAcceptFallback)
	}

	if _, err := s.api.MarkNotificationRead(ctx, ref.NotificationID); err != nil {
		return s.reportFailure(ctx, result, err, MessageAcceptFallback)
	}
	return result
}

func (s *Service) decline(ctx context.Context, ref InvitationRef) ActionResult {
	result := ActionResult{Action: ActionDecline, State: StateRequesting}

	if _, err := s.api.MarkNotificationRead(ctx, ref.NotificationID); err != nil {
		return s.reportFailure(ctx, result, err, MessageDeclineFallback)
	}
	toast.FromContext(ctx).Notify(ctx, toast.LevelSuccess, MessageDeclined)
	result.State = StateSuccess
	return result
}

// reportFailure shows fallback unless the client already showed err.
func (s *Service) reportFailure(ctx context.Context, result ActionResult, err error, fallback string) ActionResult {
	if !apiclient.Reported(err) {
		toast.FromContext(ctx).Notify(ctx, toast.LevelError, fallback)
	}
	result.State = StateReported
	result.Err = err
	return result
}
