// Package urlparam provides typed access to the string values a route
// resolution captures.
//
// Resolve hands back path parameters and query values as plain strings.
// This package layers conversion on top, so handlers read them the way
// they mean them:
//
//	match, _ := table.Resolve("/user/42?page=2&tags=go,web")
//
//	id := urlparam.Path(match).Int("id", 0)         // 42
//	page := urlparam.Query(match).Int("page", 1)    // 2
//	tags := urlparam.Query(match).List("tags")      // [go web]
//
// Struct decoding mirrors the flat query convention, with url tags
// naming the keys:
//
//	type Filters struct {
//	    Category string `url:"cat"`
//	    SortBy   string `url:"sort"`
//	    Page     int    `url:"page"`
//	}
//	var f Filters
//	err := urlparam.Query(match).Decode(&f)
package urlparam

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/metamon-dev/metamon/pkg/router"
)

// Values is a read-only view over named string values: the params or
// query of a route match, or any compatible map.
type Values map[string]string

// Path returns the match's path parameters as Values. A nil match
// yields empty Values.
func Path(m *router.RouteMatch) Values {
	if m == nil {
		return nil
	}
	return Values(m.Params)
}

// Query returns the match's query values as Values. A nil match yields
// empty Values.
func Query(m *router.RouteMatch) Values {
	if m == nil {
		return nil
	}
	return Values(m.Query)
}

// Has reports whether the key is present.
func (v Values) Has(key string) bool {
	_, ok := v[key]
	return ok
}

// Get returns the raw value and whether the key is present.
func (v Values) Get(key string) (string, bool) {
	value, ok := v[key]
	return value, ok
}

// String returns the value for key, or fallback when the key is absent.
// An empty present value is returned as-is.
func (v Values) String(key, fallback string) string {
	if value, ok := v[key]; ok {
		return value
	}
	return fallback
}

// Int returns the value parsed as an int, or fallback when the key is
// absent or does not parse.
func (v Values) Int(key string, fallback int) int {
	value, ok := v[key]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

// Int64 returns the value parsed as an int64, or fallback when the key
// is absent or does not parse.
func (v Values) Int64(key string, fallback int64) int64 {
	value, ok := v[key]
	if !ok {
		return fallback
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

// Uint64 returns the value parsed as a uint64, or fallback when the key
// is absent or does not parse.
func (v Values) Uint64(key string, fallback uint64) uint64 {
	value, ok := v[key]
	if !ok {
		return fallback
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

// Float64 returns the value parsed as a float64, or fallback when the
// key is absent or does not parse.
func (v Values) Float64(key string, fallback float64) float64 {
	value, ok := v[key]
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return f
}

// Bool returns the value parsed as a bool (strconv.ParseBool rules), or
// fallback when the key is absent or does not parse.
func (v Values) Bool(key string, fallback bool) bool {
	value, ok := v[key]
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

// List returns the value split on commas, the conventional encoding for
// list-valued query parameters (?tags=go,web,api). An absent or empty
// value yields nil.
func (v Values) List(key string) []string {
	value, ok := v[key]
	if !ok || value == "" {
		return nil
	}
	return strings.Split(value, ",")
}

// JSON decodes the value into dst. The value may be plain JSON or
// base64url-encoded JSON, the form compact state usually takes in URLs.
// An absent or empty value leaves dst untouched and returns nil.
func (v Values) JSON(key string, dst any) error {
	value, ok := v[key]
	if !ok || value == "" {
		return nil
	}

	data := []byte(value)
	if decoded, err := base64.RawURLEncoding.DecodeString(value); err == nil {
		data = decoded
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("urlparam: decode %q: %w", key, err)
	}
	return nil
}

// Decode fills a struct from the values, one field per key.
//
// dst must be a pointer to a struct. Keys come from the url tag, or the
// lowercased field name when untagged; a tag of "-" skips the field.
// Fields whose keys are absent keep their current value; a present value
// that does not parse into the field's type is an error.
func (v Values) Decode(dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("urlparam: Decode requires a non-nil struct pointer, got %T", dst)
	}

	sv := rv.Elem()
	st := sv.Type()
	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		fieldValue := sv.Field(i)
		if !fieldValue.CanSet() {
			continue
		}

		key := field.Tag.Get("url")
		if key == "" {
			key = strings.ToLower(field.Name)
		}
		if key == "-" {
			continue
		}

		value, ok := v[key]
		if !ok {
			continue
		}
		if err := setValue(fieldValue, value); err != nil {
			return fmt.Errorf("urlparam: field %s: %w", field.Name, err)
		}
	}
	return nil
}

// setValue parses s into a scalar or []scalar value.
func setValue(v reflect.Value, s string) error {
	switch v.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		v.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return err
		}
		v.SetUint(i)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		v.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Slice:
		if s == "" {
			v.Set(reflect.MakeSlice(v.Type(), 0, 0))
			return nil
		}
		parts := strings.Split(s, ",")
		slice := reflect.MakeSlice(v.Type(), len(parts), len(parts))
		for i, part := range parts {
			if err := setValue(slice.Index(i), part); err != nil {
				return err
			}
		}
		v.Set(slice)
	default:
		return fmt.Errorf("unsupported type %s", v.Kind())
	}
	return nil
}
