package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"maplebudget/internal/amqp"
	"maplebudget/internal/api"
	"maplebudget/internal/cache"
	"maplebudget/internal/log"
	"maplebudget/internal/session"
	"maplebudget/internal/storage"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports whether templates are loaded and the store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if err := s.store.Ping(ctx); err != nil {
		checks["storage"] = fmt.Sprintf("failed: %v", err)
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}

	checks["cache"] = map[string]any{"entries": s.snapshots.Size(), "status": "ok"}
	checks["rate_limiter"] = map[string]any{"active_clients": s.limiter.ActiveClients(), "status": "ok"}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics exposes request, cache and mutation counters in the
// Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	total, inFlight := s.tracer.Stats()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	metric := func(name, kind, help string, v any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, v)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", total)
	metric("http_requests_in_flight", "gauge", "Requests currently being served", inFlight)
	metric("budget_mutations_total", "counter", "Successful changes made through the budgeting API", s.mutations.Load())
	metric("snapshot_cache_hits_total", "counter", "Snapshot cache hits", s.cacheHits.Load())
	metric("snapshot_cache_misses_total", "counter", "Snapshot cache misses", s.cacheMisses.Load())
	metric("snapshot_cache_entries", "gauge", "Current snapshot cache entries", s.snapshots.Size())
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", s.limiter.ActiveClients())
	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n# TYPE uptime_seconds gauge\nuptime_seconds %.0f\n", time.Since(s.started).Seconds())
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		errorReply(http.StatusNotFound, "Page introuvable.").Write(w)
		return
	}
	s.render(w, r, http.StatusNotFound, "error.html", errorView{
		Page:    Page{Title: "Introuvable"},
		Message: "Page introuvable.",
	})
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.ips.ClientIP(r), log.FieldPath, r.URL.Path)
	errorReply(http.StatusTooManyRequests, "Trop de requêtes. Réessaie dans un instant.").Write(w)
}

type errorView struct {
	Page
	Message string
}

// client returns the API client bound to the session's token.
func (s *Server) client(r *http.Request) *api.Client {
	sess := session.FromContext(r.Context())
	if sess == nil {
		return s.api
	}
	return s.api.WithTokens(s.sessions.TokenStore(sess.ID))
}

// refreshParam on a page request reloads the snapshot from the API.
const refreshParam = "refresh"

// snapshot returns the session's categories and normalized transactions,
// from the cache when possible.
func (s *Server) snapshot(r *http.Request) (*api.Snapshot, error) {
	ctx := r.Context()
	sess := session.FromContext(ctx)
	if sess == nil {
		return s.client(r).LoadSnapshot(ctx)
	}
	if r.URL.Query().Get(refreshParam) == "1" {
		s.snapshots.Delete(sess.ID)
	}

	loaded := false
	snap, err := cache.GetOrLoad(s.snapshots, sess.ID, func() (*api.Snapshot, error) {
		loaded = true
		return s.client(r).LoadSnapshot(ctx)
	})
	if loaded {
		s.cacheMisses.Add(1)
	} else {
		s.cacheHits.Add(1)
	}
	return snap, err
}

// invalidate drops the session's cached snapshot.
func (s *Server) invalidate(r *http.Request) {
	if sess := session.FromContext(r.Context()); sess != nil {
		s.snapshots.Delete(sess.ID)
	}
}

// mutated records a successful change: the snapshot is dropped and a domain
// event is emitted. Emission failures are logged only.
func (s *Server) mutated(r *http.Request, kind amqp.Kind, entityID int64, summary string) {
	ctx := r.Context()
	s.invalidate(r)
	s.mutations.Add(1)

	sess := session.FromContext(ctx)
	sessionID := ""
	if sess != nil {
		sessionID = sess.ID
	}
	logger := log.FromContext(ctx)
	log.NewStructuredLogger(logger).LogMutation(ctx, string(kind), entityID, sessionID)

	e := amqp.NewEvent(kind, session.Subject(sess), entityID, summary)
	if err := s.events.Emit(ctx, e); err != nil {
		logger.WarnContext(ctx, "Failed to emit event",
			log.NewFields().WithEvent(string(kind), entityID).WithError(err).ToSlice()...)
	}
}

// recentActivity returns the latest feed entries of the session's subject. A
// storage failure yields an empty feed.
func (s *Server) recentActivity(r *http.Request, limit int) []storage.Activity {
	ctx := r.Context()
	items, err := s.store.RecentActivity(ctx, session.Subject(session.FromContext(ctx)), limit)
	if err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Activity feed unavailable", log.FieldError, err)
		return nil
	}
	return items
}

// apiStatus maps an API failure to the status of the page reporting it.
func apiStatus(err error) int {
	switch st := api.StatusOf(err); {
	case st >= 400 && st < 500:
		return st
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

// showFunc re-renders a page with an inline error.
type showFunc func(w http.ResponseWriter, r *http.Request, status int, msg string)

// fail reports msg on the page that triggered the request. HTMX requests get
// the error fragment and a notification instead of a full page.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, msg string, show showFunc) {
	if isHTMX(r) {
		reply := errorReply(status, msg)
		if html, err := s.renderPartial("error-box", msg); err == nil {
			reply.Fragment(html)
		}
		reply.Write(w)
		return
	}
	show(w, r, status, msg)
}

// failAPI logs err and reports it through fail.
func (s *Server) failAPI(w http.ResponseWriter, r *http.Request, op string, err error, show showFunc) {
	ctx := r.Context()
	level, errType := log.FromContext(ctx).WarnContext, log.ErrorTypeUpstream
	switch {
	case api.IsUnauthorized(err):
		level, errType = log.FromContext(ctx).InfoContext, log.ErrorTypeAuth
	case api.StatusOf(err) == 0:
		level = log.FromContext(ctx).ErrorContext
	}
	level(ctx, "Budgeting API call failed",
		log.FieldOperation, op,
		log.FieldError, err,
		"error_type", errType)
	s.fail(w, r, apiStatus(err), api.Message(err), show)
}

// redirect sends the browser to target after a successful form post.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		NewHTMXReply(http.StatusOK).Redirect(target).Write(w)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
