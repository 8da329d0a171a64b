package session_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareIssuesCookieAndPersists(t *testing.T) {
	cache.Use(cache.NewMemoryStore())
	opts := session.DefaultOptions()

	var firstID string
	h := session.Middleware(opts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		if r.URL.Path == "/set" {
			firstID = sess.ID()
			sess.Set("applied_promo_id", uint(7))
			return
		}
		id, ok := sess.GetUint("applied_promo_id")
		assert.True(t, ok)
		assert.Equal(t, uint(7), id)
		assert.Equal(t, firstID, sess.ID())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/set", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, opts.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/get", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Result().Cookies(), "known session must not be re-issued")
}

func TestMiddlewareRejectsMalformedID(t *testing.T) {
	cache.Use(cache.NewMemoryStore())
	opts := session.DefaultOptions()

	h := session.Middleware(opts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEqual(t, "../../etc", session.FromCtx(r).ID())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: opts.CookieName, Value: "../../etc"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Len(t, rec.Result().Cookies(), 1)
}

func TestDeleteAndGetUint(t *testing.T) {
	sess := session.FromCtx(httptest.NewRequest(http.MethodGet, "/", nil))

	sess.Set("k", "v")
	sess.Delete("k")
	_, ok := sess.Get("k")
	assert.False(t, ok)

	sess.Set("n", float64(3))
	n, ok := sess.GetUint("n")
	assert.True(t, ok)
	assert.Equal(t, uint(3), n)

	sess.Set("n", float64(-1))
	_, ok = sess.GetUint("n")
	assert.False(t, ok)
}

func TestExpiredSessionStartsOver(t *testing.T) {
	cache.Use(cache.NewMemoryStore())
	opts := session.DefaultOptions()

	var seen string
	h := session.Middleware(opts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = session.FromCtx(r).ID()
	}))

	stale := strings.Repeat("ab", 32)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: opts.CookieName, Value: stale})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.NotEqual(t, stale, seen)
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Equal(t, seen, rec.Result().Cookies()[0].Value)
}
