// Package bind decodes an HTTP request body into a struct. JSON bodies go
// through encoding/json; urlencoded and multipart forms are mapped onto the
// same struct using its json tags, so one form type serves both.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

// ErrTooLarge is returned when the body exceeds MAX_BODY_BYTES.
var ErrTooLarge = errors.New("request body too large")

// maxBodyBytes returns the configured request body size limit (default 8 MB,
// enough for a product image plus fields).
func maxBodyBytes() int64 {
	n, err := strconv.ParseInt(config.Get("MAX_BODY_BYTES", "8388608"), 10, 64)
	if err != nil || n <= 0 {
		return 8 << 20
	}
	return n
}

// Decode fills dest from r according to its Content-Type. It does not
// validate.
func Decode(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes())

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return wrap(err, "invalid form")
		}
		return Form(r.PostForm, dest)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes()); err != nil {
			return wrap(err, "invalid multipart form")
		}
		return Form(r.MultipartForm.Value, dest)
	default:
		if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
			return wrap(err, "invalid JSON")
		}
		return nil
	}
}

// JSON decodes a JSON body into dest and runs its validate tags.
// Returns (errs, nil) when there are validation failures.
func JSON(w http.ResponseWriter, r *http.Request, dest interface{}) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes())
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return nil, wrap(err, "invalid JSON")
	}
	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}

func wrap(err error, what string) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w (max %d bytes)", ErrTooLarge, maxErr.Limit)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// Form copies values onto the exported fields of the struct dest points to,
// matching on the json tag name. Absent keys leave the field untouched; an
// empty value clears a pointer field.
func Form(values map[string][]string, dest interface{}) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind: dest must be a pointer to a struct, got %T", dest)
	}
	rv = rv.Elem()
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		vals, ok := values[name]
		if !ok || len(vals) == 0 {
			continue
		}
		if err := setField(rv.Field(i), strings.TrimSpace(vals[0])); err != nil {
			return fmt.Errorf("invalid form: field %s: %w", name, err)
		}
	}
	return nil
}

func setField(v reflect.Value, raw string) error {
	if v.Kind() == reflect.Pointer {
		if raw == "" {
			v.Set(reflect.Zero(v.Type()))
			return nil
		}
		elem := reflect.New(v.Type().Elem())
		if err := setField(elem.Elem(), raw); err != nil {
			return err
		}
		v.Set(elem)
		return nil
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		if raw == "" || raw == "on" {
			v.SetBool(raw == "on")
			return nil
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if raw == "" {
			v.SetInt(0)
			return nil
		}
		n, err := strconv.ParseInt(raw, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if raw == "" {
			v.SetUint(0)
			return nil
		}
		n, err := strconv.ParseUint(raw, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetUint(n)
	default:
		return fmt.Errorf("unsupported kind %s", v.Kind())
	}
	return nil
}
