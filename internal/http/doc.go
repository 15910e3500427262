// Package http serves the study dashboard to browsers.
//
// The router exposes the following endpoints:
//   - GET /dashboard: the full page. The viewer's backend session is checked
//     first and unauthenticated viewers are redirected to the login page. All
//     four sections are loaded concurrently, the unread badge is refreshed
//     and the viewer's active toasts are embedded.
//   - GET /dashboard/fragments/{section}: one section (stats, invitations,
//     upcoming, notifications) as {"section","loaded","count","elements"}
//     where elements maps element ids to their inner HTML. When the loader
//     failed, handles it left untouched are omitted from elements.
//   - POST /dashboard/invitations/{notificationID}/accept with form field
//     session_id, and POST /dashboard/invitations/{notificationID}/decline:
//     run the invitation action and answer 303 See Other to /dashboard, or the
//     action result as JSON when the request accepts application/json.
//   - GET /chrome/notification-count: the unread badge state.
//   - GET /toasts: the viewer's visible toasts. GET /toasts/stream upgrades to
//     a websocket carrying {"kind","toast"} lifecycle events.
//   - GET /static/...: embedded scripts and styles.
//
// Every request is tagged with a viewer id kept in the dashboard_viewer
// cookie; the viewer's remaining cookies are forwarded to the backend.
package http
