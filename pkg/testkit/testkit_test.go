package testkit_test

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/storefront/pkg/testkit"
)

// counter keeps a per-client count in a cookie.
var counter = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/count":
		n := 0
		if c, err := r.Cookie("n"); err == nil {
			n, _ = strconv.Atoi(c.Value)
		}
		n++
		http.SetCookie(w, &http.Cookie{Name: "n", Value: strconv.Itoa(n)})
		_ = json.NewEncoder(w).Encode(map[string]int{"count": n})
	case len(r.URL.Path) > 6 && r.URL.Path[:6] == "/echo/":
		_ = json.NewEncoder(w).Encode(map[string]string{"path": r.URL.Path})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
})

func TestRunDir(t *testing.T) {
	testkit.RunDir(t, counter, "testdata")
}

func TestDiffJSONIgnoresExtraKeys(t *testing.T) {
	var exp, act any
	_ = json.Unmarshal([]byte(`{"data":{"total":3000}}`), &exp)
	_ = json.Unmarshal([]byte(`{"data":{"total":3000,"discount":500},"status":200}`), &act)

	assert.Empty(t, testkit.DiffJSON("", exp, act))
}

func TestDiffJSONReportsMismatch(t *testing.T) {
	var exp, act any
	_ = json.Unmarshal([]byte(`{"data":{"items":[{"qty":1}]}}`), &exp)
	_ = json.Unmarshal([]byte(`{"data":{"items":[{"qty":2},{"qty":1}]}}`), &act)

	diffs := testkit.DiffJSON("", exp, act)
	assert.Len(t, diffs, 2)
	assert.Contains(t, diffs[0], "array length expected=1 actual=2")
}

func TestLoadAllFromDirWithoutFiles(t *testing.T) {
	_, errs := testkit.LoadAllFromDir(t.TempDir())
	assert.NotEmpty(t, errs)
}
