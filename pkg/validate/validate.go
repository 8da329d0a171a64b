// Package validate checks structs against the rules in their `validate`
// tags. Every field is checked and the first failing rule of each field is
// reported, so a form gets all of its errors back in one pass.
//
// Rules, comma separated:
//
//	required            not zero or blank
//	nullable            an empty value skips the field's other rules
//	email               plausible email address
//	alpha_dash          letters, digits, hyphens and underscores
//	min=N, max=N        length for strings, value for numbers
//	gt=N, gte=N         number bounds
//	lt=N, lte=N
//	digits=N            exactly N decimal digits
//	digits_between=a,b  only decimal digits, between a and b of them
//	card_expiry         MM/YY, month 01-12, not before the current month
//	in=a,b,c            one of the listed values
//
// Example:
//
//	type ShippingForm struct {
//	    Tel     string `json:"tel"      validate:"required,digits_between=10,11"`
//	    ZipCode string `json:"zip_code" validate:"required,digits=7"`
//	}
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
)

// Now is the clock used by date rules such as card_expiry.
var Now = time.Now

// Struct validates v, a struct or pointer to one. The result maps the json
// name of each failing field to its message and is empty when v is valid.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return errs
	}

	for _, f := range fieldsOf(rv.Type()) {
		value := rv.Field(f.index)
		if f.nullable && isEmpty(value) {
			continue
		}
		for _, r := range f.rules {
			if msg := r.check(f.name, value, r.param); msg != "" {
				errs[f.name] = msg
				break
			}
		}
	}
	return errs
}

// HasErrors reports whether errs holds any message.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// ── Tag parsing ──────────────────────────────────────────────────────────────

type checkFunc func(field string, v reflect.Value, param string) string

type boundRule struct {
	check checkFunc
	param string
}

type field struct {
	index    int
	name     string
	nullable bool
	rules    []boundRule
}

var (
	parsedMu sync.RWMutex
	parsed   = map[reflect.Type][]field{}
)

// fieldsOf parses the tags of t once and remembers the result.
func fieldsOf(t reflect.Type) []field {
	parsedMu.RLock()
	fs, ok := parsed[t]
	parsedMu.RUnlock()
	if ok {
		return fs
	}

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("validate")
		if tag == "" || !sf.IsExported() {
			continue
		}
		f := field{index: i, name: jsonName(sf)}
		for _, rule := range splitRules(tag) {
			key, param, _ := strings.Cut(rule, "=")
			if key == "nullable" {
				f.nullable = true
				continue
			}
			check, known := checks[key]
			if !known {
				panic(fmt.Sprintf("validate: unknown rule %q on %s.%s", key, t.Name(), sf.Name))
			}
			f.rules = append(f.rules, boundRule{check: check, param: param})
		}
		fs = append(fs, f)
	}

	parsedMu.Lock()
	parsed[t] = fs
	parsedMu.Unlock()
	return fs
}

// splitRules splits a tag on commas. A piece that does not name a rule is
// another value of the preceding parameter, so "in=a,b,max=3" yields
// "in=a,b" and "max=3".
func splitRules(tag string) []string {
	var out []string
	for _, piece := range strings.Split(tag, ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		key, _, _ := strings.Cut(piece, "=")
		if _, isRule := checks[key]; isRule || key == "nullable" || len(out) == 0 {
			out = append(out, piece)
			continue
		}
		out[len(out)-1] += "," + piece
	}
	return out
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	return name
}

// ── Rules ────────────────────────────────────────────────────────────────────

var (
	emailRE      = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	digitsRE     = regexp.MustCompile(`^\d+$`)
	cardExpiryRE = regexp.MustCompile(`^(\d{2})/(\d{2})$`)
)

var checks map[string]checkFunc

func init() {
	checks = map[string]checkFunc{
		"required":       required,
		"email":          email,
		"alpha_dash":     alphaDash,
		"min":            minRule,
		"max":            maxRule,
		"gt":             compare(func(a, b float64) bool { return a > b }, "greater than"),
		"gte":            compare(func(a, b float64) bool { return a >= b }, "greater than or equal to"),
		"lt":             compare(func(a, b float64) bool { return a < b }, "less than"),
		"lte":            compare(func(a, b float64) bool { return a <= b }, "less than or equal to"),
		"digits":         digits,
		"digits_between": digitsBetween,
		"card_expiry":    cardExpiry,
		"in":             in,
	}
}

func required(field string, v reflect.Value, _ string) string {
	if isEmpty(v) {
		return fmt.Sprintf("The %s field is required.", field)
	}
	return ""
}

func email(field string, v reflect.Value, _ string) string {
	if !emailRE.MatchString(text(v)) {
		return fmt.Sprintf("The %s must be a valid email address.", field)
	}
	return ""
}

func alphaDash(field string, v reflect.Value, _ string) string {
	for _, c := range text(v) {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '-' && c != '_' {
			return fmt.Sprintf("The %s field may only contain letters, numbers, dashes, and underscores.", field)
		}
	}
	return ""
}

func minRule(field string, v reflect.Value, param string) string {
	n := number(param)
	if isNumeric(v) {
		if toFloat(v) < n {
			return fmt.Sprintf("The %s must be at least %s.", field, param)
		}
	} else if float64(len([]rune(text(v)))) < n {
		return fmt.Sprintf("The %s must be at least %s characters.", field, param)
	}
	return ""
}

func maxRule(field string, v reflect.Value, param string) string {
	n := number(param)
	if isNumeric(v) {
		if toFloat(v) > n {
			return fmt.Sprintf("The %s must not be greater than %s.", field, param)
		}
	} else if float64(len([]rune(text(v)))) > n {
		return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
	}
	return ""
}

func compare(ok func(a, b float64) bool, phrase string) checkFunc {
	return func(field string, v reflect.Value, param string) string {
		if !ok(toFloat(v), number(param)) {
			return fmt.Sprintf("The %s must be %s %s.", field, phrase, param)
		}
		return ""
	}
}

func digits(field string, v reflect.Value, param string) string {
	s := text(v)
	if !digitsRE.MatchString(s) || float64(len(s)) != number(param) {
		return fmt.Sprintf("The %s must be %s digits.", field, param)
	}
	return ""
}

func digitsBetween(field string, v reflect.Value, param string) string {
	lo, hi, _ := strings.Cut(param, ",")
	lo, hi = strings.TrimSpace(lo), strings.TrimSpace(hi)
	s := text(v)
	n := float64(len(s))
	if !digitsRE.MatchString(s) || n < number(lo) || n > number(hi) {
		return fmt.Sprintf("The %s must be between %s and %s digits.", field, lo, hi)
	}
	return ""
}

func cardExpiry(field string, v reflect.Value, _ string) string {
	if msg := checkCardExpiry(text(v), Now()); msg != "" {
		return fmt.Sprintf("The %s %s.", field, msg)
	}
	return ""
}

// checkCardExpiry accepts MM/YY for the current month or later. Years are
// read as 20YY.
func checkCardExpiry(raw string, now time.Time) string {
	m := cardExpiryRE.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "must be in MM/YY format"
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return "must have a month between 01 and 12"
	}
	year += 2000
	if year < now.Year() || (year == now.Year() && month < int(now.Month())) {
		return "has expired"
	}
	return ""
}

func in(field string, v reflect.Value, param string) string {
	s := text(v)
	for _, allowed := range strings.Split(param, ",") {
		if s == strings.TrimSpace(allowed) {
			return ""
		}
	}
	return fmt.Sprintf("The selected %s is invalid.", field)
}

// ── Value helpers ────────────────────────────────────────────────────────────

func text(v reflect.Value) string {
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprint(v.Interface())
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false
	}
	return isNumeric(v) && toFloat(v) == 0
}

func isNumeric(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch {
	case v.CanInt():
		return float64(v.Int())
	case v.CanUint():
		return float64(v.Uint())
	case v.CanFloat():
		return v.Float()
	}
	return number(text(v))
}

func number(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}
