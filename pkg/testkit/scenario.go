// Package testkit drives HTTP tests from JSON scenario files.
//
// A scenario is a named sequence of steps fired against one handler. Cookies
// set by a response are sent with every later step, so a scenario behaves
// like one browser session:
//
//	{
//	  "name": "add then remove",
//	  "steps": [
//	    {"requestMethod": "POST", "requestUrl": "/cart/items",
//	     "requestBody": {"product_id": 1, "quantity": "2"},
//	     "expectedCode": 201, "capture": {"item": "data.id"}},
//	    {"requestMethod": "DELETE", "requestUrl": "/cart/items/{{item}}",
//	     "expectedCode": 200}
//	  ]
//	}
//
// Scenario files live next to the tests that run them:
//
//	func TestCartAPI(t *testing.T) {
//	    testkit.RunDir(t, handler, "testdata")
//	}
package testkit

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Scenario is one session's worth of requests.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Steps       []Step `json:"steps"`
}

// Step is a single request and what its response must look like.
type Step struct {
	RequestMethod string            `json:"requestMethod"`
	RequestURL    string            `json:"requestUrl"`
	RequestBody   json.RawMessage   `json:"requestBody"`
	Headers       map[string]string `json:"headers"`

	ExpectedCode int `json:"expectedCode"`

	// ExpectedBody is matched as a subset: every key it names must be present
	// in the response with an equal value; extra response keys are ignored.
	ExpectedBody json.RawMessage `json:"expectedBody"`

	// Capture stores response values under a name for later steps, which
	// reference them as {{name}} in the URL or body. Paths are dot separated
	// with numeric array indexes, e.g. "data.items.0.id".
	Capture map[string]string `json:"capture"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", path, err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", path, err)
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if len(s.Steps) == 0 {
		return errors.New("at least one step is required")
	}
	for i := range s.Steps {
		st := &s.Steps[i]
		if st.RequestURL == "" {
			return fmt.Errorf("steps[%d].requestUrl is required", i)
		}
		if st.ExpectedCode == 0 {
			return fmt.Errorf("steps[%d].expectedCode is required", i)
		}
		if st.RequestMethod == "" {
			st.RequestMethod = "GET"
		}
		st.RequestMethod = strings.ToUpper(st.RequestMethod)
	}
	return nil
}

// LoadAllFromDir loads every *.json file in dir. Files that fail to load are
// returned as errors alongside the ones that did.
func LoadAllFromDir(dir string) ([]*Scenario, []error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(paths) == 0 {
		return nil, []error{fmt.Errorf("testkit: no scenario files found in %q", dir)}
	}

	var (
		scenarios []*Scenario
		errs      []error
	)
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, errs
}
