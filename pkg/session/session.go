// Package session provides cookie-identified server-side sessions stored in a
// cache.Store (Redis in production, memory in tests).
//
//	r.Use(session.Middleware(session.DefaultOptions()))
//
//	sess := session.FromCtx(r)
//	sess.Set("user_id", 42)
//
// The middleware persists a changed session and sets the cookie right before
// the response header is written, so handlers never call Save themselves.
package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/gamevault/storefront/config"
	"github.com/gamevault/storefront/pkg/cache"
	"github.com/gamevault/storefront/pkg/logger"
)

// Options configures session behaviour.
type Options struct {
	CookieName string
	TTL        time.Duration
	HTTPOnly   bool
	Secure     bool
	SameSite   http.SameSite
	Path       string
	// Store defaults to cache.Default() when nil.
	Store cache.Store
}

// DefaultOptions returns the storefront's cookie settings.
func DefaultOptions() Options {
	return Options{
		CookieName: "storefront_session",
		TTL:        config.SessionTTL(),
		HTTPOnly:   true,
		Secure:     config.IsProduction(),
		SameSite:   http.SameSiteLaxMode,
		Path:       "/",
	}
}

func (o Options) store() cache.Store {
	if o.Store != nil {
		return o.Store
	}
	return cache.Default()
}

type ctxKey struct{}

// Session is the per-request handle on one client's session data.
type Session struct {
	id      string
	staleID string
	data    map[string]any
	opts    Options
	changed bool
}

func newID() string { return uuid.NewString() }

func storageKey(id string) string { return "storefront:session:" + id }

// Load fetches the session identified by id, or starts an empty one when the
// id is unknown or expired.
func Load(ctx context.Context, opts Options, id string) (*Session, error) {
	sess := &Session{id: id, opts: opts, data: map[string]any{}}
	if id == "" {
		sess.id = newID()
		return sess, nil
	}

	hit, err := opts.store().Get(ctx, storageKey(id), &sess.data)
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}
	if !hit || sess.data == nil {
		// Unknown ids are never adopted; a fresh id prevents fixation.
		sess.id = newID()
		sess.data = map[string]any{}
	}
	return sess, nil
}

func (s *Session) Get(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

func (s *Session) Set(key string, value any) {
	s.data[key] = value
	s.changed = true
}

func (s *Session) Delete(key string) {
	if _, ok := s.data[key]; !ok {
		return
	}
	delete(s.data, key)
	s.changed = true
}

// GetString is a typed convenience getter.
func (s *Session) GetString(key string) (string, bool) {
	v, ok := s.data[key].(string)
	return v, ok
}

// GetUint reads a numeric value, accepting the float64 that JSON decoding
// produces after a round trip through the store.
func (s *Session) GetUint(key string) (uint, bool) {
	switch n := s.data[key].(type) {
	case float64:
		if n < 0 {
			return 0, false
		}
		return uint(n), true
	case uint:
		return n, true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint(n), true
	}
	return 0, false
}

// Invalidate clears all data and rotates the id. The old record is removed
// on the next save.
func (s *Session) Invalidate() {
	if s.staleID == "" {
		s.staleID = s.id
	}
	s.id = newID()
	s.data = map[string]any{}
	s.changed = true
}

func (s *Session) ID() string    { return s.id }
func (s *Session) Changed() bool { return s.changed }

// Save persists the session and writes the cookie when anything changed.
func (s *Session) Save(ctx context.Context, w http.ResponseWriter) error {
	if !s.changed {
		return nil
	}

	store := s.opts.store()
	if s.staleID != "" {
		if err := store.Del(ctx, storageKey(s.staleID)); err != nil {
			return fmt.Errorf("session: drop stale: %w", err)
		}
		s.staleID = ""
	}
	if err := store.Set(ctx, storageKey(s.id), s.data, s.opts.TTL); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    s.id,
		Path:     s.opts.Path,
		MaxAge:   int(s.opts.TTL.Seconds()),
		HttpOnly: s.opts.HTTPOnly,
		Secure:   s.opts.Secure,
		SameSite: s.opts.SameSite,
	})

	s.changed = false
	return nil
}

// ─── Middleware ───────────────────────────────────────────────────────────────

// autoSaveWriter saves the session the first time the handler writes.
type autoSaveWriter struct {
	http.ResponseWriter
	ctx       context.Context
	sess      *Session
	committed bool
}

func (w *autoSaveWriter) commit() {
	if w.committed {
		return
	}
	w.committed = true
	if err := w.sess.Save(w.ctx, w.ResponseWriter); err != nil {
		logger.WithCtx(w.ctx).Error("session save failed", "error", err)
	}
}

func (w *autoSaveWriter) WriteHeader(code int) {
	w.commit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *autoSaveWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

// Middleware loads (or creates) the session for every request, exposes it
// through FromCtx and saves it once the handler responds.
func Middleware(opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if cookie, err := r.Cookie(opts.CookieName); err == nil {
				id = cookie.Value
			}

			sess, err := Load(r.Context(), opts, id)
			if err != nil {
				logger.WithCtx(r.Context()).Warn("session unavailable, starting fresh", "error", err)
				sess = &Session{id: newID(), opts: opts, data: map[string]any{}}
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, sess)
			aw := &autoSaveWriter{ResponseWriter: w, ctx: ctx, sess: sess}
			next.ServeHTTP(aw, r.WithContext(ctx))
			aw.commit()
		})
	}
}

// FromCtx returns the request's session. Outside the middleware it returns a
// detached empty session that is never persisted.
func FromCtx(r *http.Request) *Session {
	if s, ok := r.Context().Value(ctxKey{}).(*Session); ok {
		return s
	}
	return &Session{id: newID(), data: map[string]any{}, opts: DefaultOptions()}
}
