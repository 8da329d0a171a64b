// Package ctx gives handlers a single request context with helpers for
// params, binding and the JSON envelope.
//
//	func (h *ProductController) Show(c *ctx.Context) {
//	    id, ok := c.ParamUint("id")
//	    if !ok {
//	        c.NotFound()
//	        return
//	    }
//	    c.Success(product)
//	}
//
//	r.Get("/products/{id}", "products.show", ctx.Wrap(h.Show))
package ctx

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	mu     sync.RWMutex
	store  map[string]any
	meta   map[string]any
	status int
}

var pool = sync.Pool{
	New: func() any { return &Context{store: make(map[string]any)} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	c.meta = nil
	for k := range c.store {
		delete(c.store, k)
	}
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	c.meta = nil
	pool.Put(c)
}

// Param returns a URL path parameter.
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// ParamUint parses a positive integer path parameter such as an id.
func (c *Context) ParamUint(key string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// Query returns a query-string value. Returns "" if not present.
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// QueryInt returns an integer query value, or def when absent or malformed.
func (c *Context) QueryInt(key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return n
}

// ClientIP returns the client address, honouring X-Forwarded-For.
func (c *Context) ClientIP() string {
	if fwd := c.R.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	if host, _, err := net.SplitHostPort(c.R.RemoteAddr); err == nil {
		return host
	}
	return c.R.RemoteAddr
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Set stores a value for the rest of the request.
func (c *Context) Set(key string, val any) {
	c.mu.Lock()
	c.store[key] = val
	c.mu.Unlock()
}

func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	v, ok := c.store[key]
	c.mu.RUnlock()
	return v, ok
}

// Bind decodes the body into dest. On failure it answers 400 (413 for an
// oversized body) and returns false.
func (c *Context) Bind(dest any) bool {
	err := bind.Decode(c.W, c.R, dest)
	if err == nil {
		return true
	}
	if errors.Is(err, bind.ErrTooLarge) {
		c.Error(http.StatusRequestEntityTooLarge, err.Error())
	} else {
		c.Error(http.StatusBadRequest, err.Error())
	}
	return false
}

// Meta attaches a key to the "meta" object of the next envelope written.
func (c *Context) Meta(key string, val any) {
	if c.meta == nil {
		c.meta = map[string]any{}
	}
	c.meta[key] = val
}

func (c *Context) write(body response.Envelope) {
	if len(c.meta) > 0 {
		body.Meta = c.meta
	}
	c.status = body.Status
	response.Write(c.W, body)
}

// Success sends a 200 envelope.
func (c *Context) Success(data any) {
	c.write(response.Envelope{Status: http.StatusOK, Data: data})
}

// Created sends a 201 envelope.
func (c *Context) Created(data any) {
	c.write(response.Envelope{Status: http.StatusCreated, Data: data})
}

// Paginated sends a 200 envelope with items and pagination.
func (c *Context) Paginated(page response.Page) {
	c.Success(page)
}

// NoContent sends a bare 204.
func (c *Context) NoContent() {
	c.status = http.StatusNoContent
	c.W.WriteHeader(http.StatusNoContent)
}

// Error sends an error envelope.
func (c *Context) Error(code int, message string) {
	c.write(response.Envelope{Status: code, Message: message})
}

// ValidationError sends a 422 with one message per failing field.
func (c *Context) ValidationError(errs map[string]string) {
	c.write(response.Envelope{
		Status:  http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  errs,
	})
}

func (c *Context) NotFound(message ...string) {
	msg := "Not found"
	if len(message) > 0 {
		msg = message[0]
	}
	c.Error(http.StatusNotFound, msg)
}

// WrittenStatus returns the status written so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }
