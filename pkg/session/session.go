// Package session keeps per-visitor state in the cache store, keyed by a
// random id carried in a cookie. The id doubles as the cart owner key.
//
// Sessions slide: a visit after a quarter of the TTL has passed extends both
// the stored record and the cookie.
//
//	r.Use(session.Middleware(session.OptionsFromConfig()))
//
//	sess := session.FromCtx(r)
//	sess.Set("applied_promo_id", promo.ID)
//	id, ok := sess.GetUint("applied_promo_id")
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

type Options struct {
	CookieName string
	TTL        time.Duration
	HTTPOnly   bool
	Secure     bool
	SameSite   http.SameSite
	Path       string
}

func DefaultOptions() Options {
	return Options{
		CookieName: "storefront_session",
		TTL:        14 * 24 * time.Hour,
		HTTPOnly:   true,
		SameSite:   http.SameSiteLaxMode,
		Path:       "/",
	}
}

// OptionsFromConfig applies SESSION_* settings on top of the defaults.
func OptionsFromConfig() Options {
	cfg := config.Session()
	opts := DefaultOptions()
	opts.CookieName = cfg.CookieName
	opts.TTL = cfg.TTL
	opts.Secure = cfg.Secure
	return opts
}

var idPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// record is what the cache holds for one session.
type record struct {
	Values  map[string]interface{} `json:"values"`
	Touched time.Time              `json:"touched"`
}

// Session is the handle a request works with. It may be shared with
// goroutines the handler starts.
type Session struct {
	mu    sync.Mutex
	id    string
	rec   record
	dirty bool
}

func newSession(id string) *Session {
	return &Session{id: id, rec: record{Values: map[string]interface{}{}}, dirty: true}
}

func newID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func storeKey(id string) string { return "storefront:session:" + id }

// ID is the 64 hex character session id.
func (s *Session) ID() string { return s.id }

func (s *Session) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.Values[key] = value
	s.dirty = true
}

func (s *Session) Get(key string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.rec.Values[key]
	return v, ok
}

// GetUint reads a non-negative whole number. Values that went through the
// store come back as float64.
func (s *Session) GetUint(key string) (uint, bool) {
	v, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case uint:
		return n, true
	case int:
		return uint(n), n >= 0
	case float64:
		if n < 0 || n != float64(uint(n)) {
			return 0, false
		}
		return uint(n), true
	}
	return 0, false
}

func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rec.Values[key]; ok {
		delete(s.rec.Values, key)
		s.dirty = true
	}
}

// save writes the record back if it changed or was touched.
func (s *Session) save(ctx context.Context, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	if err := cache.Set(ctx, storeKey(s.id), s.rec, ttl); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

func (o Options) cookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     o.CookieName,
		Value:    id,
		Path:     o.Path,
		MaxAge:   int(o.TTL.Seconds()),
		HttpOnly: o.HTTPOnly,
		Secure:   o.Secure,
		SameSite: o.SameSite,
	}
}

// resume loads the session named by the request cookie. It returns nil for a
// missing or malformed cookie and for an id the store no longer knows.
func resume(r *http.Request, opts Options, now time.Time) *Session {
	c, err := r.Cookie(opts.CookieName)
	if err != nil || !idPattern.MatchString(c.Value) {
		return nil
	}
	var rec record
	if !cache.Get(r.Context(), storeKey(c.Value), &rec) || rec.Values == nil {
		return nil
	}
	s := &Session{id: c.Value, rec: rec}
	if now.Sub(rec.Touched) > opts.TTL/4 {
		s.rec.Touched = now
		s.dirty = true
	}
	return s
}

type ctxKey struct{}

// Middleware attaches a session to every request. A new or refreshed
// session gets its cookie before the handler runs; changes are written back
// to the store once the handler returns.
func Middleware(opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			sess := resume(r, opts, now)
			if sess == nil {
				id, err := newID()
				if err != nil {
					http.Error(w, "session unavailable", http.StatusInternalServerError)
					return
				}
				sess = newSession(id)
				sess.rec.Touched = now
			}
			if sess.dirty {
				http.SetCookie(w, opts.cookie(sess.id))
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))

			if err := sess.save(r.Context(), opts.TTL); err != nil {
				logger.WithCtx(r.Context()).Error("session: save failed", "error", err)
			}
		})
	}
}

// FromCtx returns the request's session, or a fresh unsaved one when the
// middleware did not run.
func FromCtx(r *http.Request) *Session {
	if s, ok := r.Context().Value(ctxKey{}).(*Session); ok {
		return s
	}
	id, _ := newID()
	return newSession(id)
}
