package testfixtures

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Reply is a canned backend answer. Raw, when set, is written verbatim
// instead of the JSON encoding of Body.
type Reply struct {
	Status int
	Body   any
	Raw    string
}

// Call records one request received by the fake backend.
type Call struct {
	Method string
	Path   string
	Body   string
	Cookie string
	Header http.Header
}

// Backend is an httptest server answering from a route table keyed by
// "METHOD /path". Unknown routes answer 404 with a JSON failure envelope.
type Backend struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]Reply
	hooks  map[string]func()
	calls  []Call
}

// NewBackend starts a backend that is closed when the test ends.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{routes: map[string]Reply{}, hooks: map[string]func(){}}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

// Handle installs the reply for method and path, replacing any earlier one.
func (b *Backend) Handle(method, path string, reply Reply) {
	b.mu.Lock()
	b.routes[method+" "+path] = reply
	b.mu.Unlock()
}

// OK installs a 200 reply with the given body.
func (b *Backend) OK(method, path string, body any) {
	b.Handle(method, path, Reply{Status: http.StatusOK, Body: body})
}

// Fail installs a failure envelope {"success": false, "message": message}.
func (b *Backend) Fail(method, path string, status int, message string) {
	b.Handle(method, path, Reply{Status: status, Body: map[string]any{"success": false, "message": message}})
}

// Before runs fn each time a request for method and path arrives, before
// the reply is written.
func (b *Backend) Before(method, path string, fn func()) {
	b.mu.Lock()
	b.hooks[method+" "+path] = fn
	b.mu.Unlock()
}

// Calls returns the requests received so far.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Call, len(b.calls))
	copy(out, b.calls)
	return out
}

// CallCount counts received requests matching method and path.
func (b *Backend) CallCount(method, path string) int {
	count := 0
	for _, call := range b.Calls() {
		if call.Method == method && call.Path == path {
			count++
		}
	}
	return count
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	key := r.Method + " " + r.URL.Path

	b.mu.Lock()
	b.calls = append(b.calls, Call{
		Method: r.Method,
		Path:   r.URL.Path,
		Body:   string(body),
		Cookie: r.Header.Get("Cookie"),
		Header: r.Header.Clone(),
	})
	reply, ok := b.routes[key]
	hook := b.hooks[key]
	b.mu.Unlock()

	if hook != nil {
		hook()
	}
	if !ok {
		reply = Reply{Status: http.StatusNotFound, Body: map[string]any{"success": false, "message": "Not found"}}
	}
	if reply.Status == 0 {
		reply.Status = http.StatusOK
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.Status)
	if reply.Raw != "" {
		_, _ = io.WriteString(w, reply.Raw)
		return
	}
	if reply.Body != nil {
		_ = json.NewEncoder(w).Encode(reply.Body)
	}
}
