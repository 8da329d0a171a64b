package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"testing"
)

// Run loads the scenario at path and runs it as a subtest.
func Run(t *testing.T, handler http.Handler, path string) {
	t.Helper()

	s, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Run(s.Name, func(t *testing.T) {
		RunScenario(t, handler, s)
	})
}

// RunDir runs every scenario in dir as its own subtest. A file that fails to
// load is reported and the rest still run.
func RunDir(t *testing.T, handler http.Handler, dir string) {
	t.Helper()

	scenarios, errs := LoadAllFromDir(dir)
	for _, err := range errs {
		t.Error(err)
	}
	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			RunScenario(t, handler, s)
		})
	}
}

// RunScenario fires each step in order, stopping at the first step whose
// status code is wrong since later steps depend on it.
func RunScenario(t *testing.T, handler http.Handler, s *Scenario) {
	t.Helper()

	sess := &session{cookies: map[string]*http.Cookie{}, vars: map[string]string{}}
	for i, step := range s.Steps {
		label := fmt.Sprintf("%s step %d (%s %s)", s.Name, i+1, step.RequestMethod, step.RequestURL)
		rec := sess.do(handler, step)

		if !AssertStatusCode(t, label, step.ExpectedCode, rec.Code, rec.Body.Bytes()) {
			return
		}
		AssertJSONSubset(t, label, step.ExpectedBody, rec.Body.Bytes())

		if len(step.Capture) > 0 {
			if err := sess.capture(step.Capture, rec.Body.Bytes()); err != nil {
				t.Fatalf("[%s] %v", label, err)
			}
		}
	}
}

type session struct {
	cookies map[string]*http.Cookie
	vars    map[string]string
}

var placeholder = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

func (s *session) expand(in string) string {
	return placeholder.ReplaceAllStringFunc(in, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		if v, ok := s.vars[name]; ok {
			return v
		}
		return m
	})
}

func (s *session) do(handler http.Handler, step Step) *httptest.ResponseRecorder {
	var body io.Reader
	if len(step.RequestBody) > 0 {
		body = strings.NewReader(s.expand(string(step.RequestBody)))
	}

	req := httptest.NewRequest(step.RequestMethod, s.expand(step.RequestURL), body)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range step.Headers {
		req.Header.Set(k, v)
	}
	for _, c := range s.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(s.cookies, c.Name)
			continue
		}
		s.cookies[c.Name] = &http.Cookie{Name: c.Name, Value: c.Value}
	}
	return rec
}

func (s *session) capture(paths map[string]string, raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("capture: response is not JSON: %w", err)
	}
	for name, path := range paths {
		v, err := lookup(doc, path)
		if err != nil {
			return fmt.Errorf("capture %q: %w", name, err)
		}
		s.vars[name] = scalar(v)
	}
	return nil
}

// lookup walks a decoded JSON document along a dot path.
func lookup(doc any, path string) (any, error) {
	cur := doc
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("no key %q in %q", part, path)
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("bad index %q in %q", part, path)
			}
			cur = node[i]
		default:
			return nil, fmt.Errorf("cannot descend into %q at %q", path, part)
		}
	}
	return cur, nil
}

func scalar(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		b, _ := json.Marshal(x)
		return string(bytes.TrimSpace(b))
	}
}
