package http

import (
	"encoding/json"
	"html/template"
	"net/http"
	"time"
)

// Notification is a toast level understood by the show-notification
// listener in app.js.
type Notification string

const (
	NotifySuccess Notification = "success"
	NotifyError   Notification = "error"
)

var toastDuration = map[Notification]time.Duration{
	NotifySuccess: 3 * time.Second,
	NotifyError:   5 * time.Second,
}

// HTMXReply is the answer to a request made by HTMX: a status, an optional
// HTML fragment and the events announced through HX-Trigger.
type HTMXReply struct {
	status   int
	events   map[string]any
	headers  http.Header
	fragment string
}

func NewHTMXReply(status int) *HTMXReply {
	return &HTMXReply{
		status:  status,
		events:  make(map[string]any),
		headers: make(http.Header),
	}
}

// Trigger announces event with detail to the page. A later call with the
// same event replaces the detail.
func (r *HTMXReply) Trigger(event string, detail any) *HTMXReply {
	r.events[event] = detail
	return r
}

// Notify shows msg as a toast.
func (r *HTMXReply) Notify(level Notification, msg string) *HTMXReply {
	return r.Trigger("show-notification", map[string]any{
		"type":     string(level),
		"message":  msg,
		"duration": toastDuration[level].Milliseconds(),
	})
}

// Redirect makes HTMX navigate to target instead of swapping.
func (r *HTMXReply) Redirect(target string) *HTMXReply {
	r.headers.Set("HX-Redirect", target)
	return r
}

// Fragment sets the HTML swapped into the request's target.
func (r *HTMXReply) Fragment(html string) *HTMXReply {
	r.fragment = html
	return r
}

func (r *HTMXReply) Write(w http.ResponseWriter) {
	for name, values := range r.headers {
		w.Header()[name] = values
	}
	if len(r.events) > 0 {
		if b, err := json.Marshal(r.events); err == nil {
			w.Header().Set("HX-Trigger", string(b))
		}
	}
	if r.fragment != "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	w.WriteHeader(r.status)
	if r.fragment != "" {
		_, _ = w.Write([]byte(r.fragment))
	}
}

// errorReply shows msg in an error box and as an error toast.
func errorReply(status int, msg string) *HTMXReply {
	return NewHTMXReply(status).
		Fragment(`<div class="error-box" role="alert"><b>Erreur:</b> ` + template.HTMLEscapeString(msg) + `</div>`).
		Notify(NotifyError, msg)
}
