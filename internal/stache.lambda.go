package internal

import (
	"fmt"
	"reflect"
	"strconv"
)

// interpolationLambda adapts the supported zero-argument function shapes
func interpolationLambda(v any) (func() (string, error), bool) {
	switch fn := v.(type) {
	case func() string:
		return func() (string, error) { return fn(), nil }, true
	case func() (string, error):
		return fn, true
	case func() any:
		return func() (string, error) { return Stringify(fn()), nil }, true
	case func() (any, error):
		return func() (string, error) {
			out, err := fn()
			return Stringify(out), err
		}, true
	default:
		return nil, false
	}
}

// sectionLambda adapts the supported one-argument function shapes. The
// argument is the raw, unrendered section body.
func sectionLambda(v any) (func(string) (string, error), bool) {
	switch fn := v.(type) {
	case func(string) string:
		return func(body string) (string, error) { return fn(body), nil }, true
	case func(string) (string, error):
		return fn, true
	case func(string) any:
		return func(body string) (string, error) { return Stringify(fn(body)), nil }, true
	default:
		return nil, false
	}
}

// callValue invokes a zero-argument function used as a section value and
// returns its result. Other values are returned unchanged.
func callValue(v any) (any, error) {
	switch fn := v.(type) {
	case func() any:
		return fn(), nil
	case func() (any, error):
		return fn()
	case func() string:
		return fn(), nil
	case func() bool:
		return fn(), nil
	case func() []any:
		return fn(), nil
	default:
		return v, nil
	}
}

// Stringify renders a value as interpolation text. nil, including a typed
// nil pointer, renders as "".
func Stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	}
	if isNilPointer(v) {
		return ""
	}
	switch s := v.(type) {
	case fmt.Stringer:
		return s.String()
	case error:
		return s.Error()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(s)
	case int:
		return strconv.Itoa(s)
	default:
		return fmt.Sprint(v)
	}
}

// isNilPointer reports whether v holds a typed nil pointer.
func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
