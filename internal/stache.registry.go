package internal

import (
	"fmt"
	"iter"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ValueGetter reads a named member out of a container value
type ValueGetter struct {
	Name    string
	Applies func(container any) bool
	Get     func(container any, key string, ignoreCase bool) (any, bool)
}

// EnumerationConverter exposes a value as a sequence for section iteration
type EnumerationConverter struct {
	Name    string
	Applies func(value any) bool
	Convert func(value any) iter.Seq[any]
}

// TruthyCheck decides truthiness for the values it recognizes. The second
// return is false when the check does not apply.
type TruthyCheck struct {
	Name  string
	Check func(value any) (truthy bool, ok bool)
}

// Registry holds the value getters, enumeration converters and truthy
// checks used during lookup. Entries added later take precedence over
// earlier ones, so user entries run before the defaults.
// It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	getters    []ValueGetter
	converters []EnumerationConverter
	truthy     []TruthyCheck
	logger     *zap.Logger
}

// NewRegistry creates a registry preloaded with the default entries
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgRegistryCreated)
	return &Registry{
		getters:    defaultValueGetters(),
		converters: defaultEnumerationConverters(),
		logger:     logger,
	}
}

// AddValueGetter registers a getter ahead of existing ones
func (r *Registry) AddValueGetter(g ValueGetter) error {
	if g.Name == "" || g.Applies == nil || g.Get == nil {
		return NewRegistryError(ErrMsgInvalidRegistryEntry, g.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.getters {
		if existing.Name == g.Name {
			return NewRegistryError(ErrMsgRegistryEntryExists, g.Name)
		}
	}
	r.getters = append([]ValueGetter{g}, r.getters...)
	r.logger.Debug(LogMsgRegistryEntryAdded, zap.String(LogFieldRegistryEntry, g.Name))
	return nil
}

// AddEnumerationConverter registers a converter ahead of existing ones
func (r *Registry) AddEnumerationConverter(c EnumerationConverter) error {
	if c.Name == "" || c.Applies == nil || c.Convert == nil {
		return NewRegistryError(ErrMsgInvalidRegistryEntry, c.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.converters {
		if existing.Name == c.Name {
			return NewRegistryError(ErrMsgRegistryEntryExists, c.Name)
		}
	}
	r.converters = append([]EnumerationConverter{c}, r.converters...)
	r.logger.Debug(LogMsgRegistryEntryAdded, zap.String(LogFieldRegistryEntry, c.Name))
	return nil
}

// AddTruthyCheck registers a truthy check ahead of existing ones
func (r *Registry) AddTruthyCheck(c TruthyCheck) error {
	if c.Name == "" || c.Check == nil {
		return NewRegistryError(ErrMsgInvalidRegistryEntry, c.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.truthy {
		if existing.Name == c.Name {
			return NewRegistryError(ErrMsgRegistryEntryExists, c.Name)
		}
	}
	r.truthy = append([]TruthyCheck{c}, r.truthy...)
	r.logger.Debug(LogMsgRegistryEntryAdded, zap.String(LogFieldRegistryEntry, c.Name))
	return nil
}

// ValueGetterNames lists getters in the order they are tried
func (r *Registry) ValueGetterNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.getters))
	for _, g := range r.getters {
		names = append(names, g.Name)
	}
	return names
}

// Get resolves one path segment against a container. The first applicable
// getter that finds the key wins.
func (r *Registry) Get(container any, key string, ignoreCase bool) (any, bool) {
	if container == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, g := range r.getters {
		if !g.Applies(container) {
			continue
		}
		if v, ok := g.Get(container, key, ignoreCase); ok {
			return v, true
		}
	}
	return nil, false
}

// Enumerate returns value as a sequence when a converter applies
func (r *Registry) Enumerate(value any) (iter.Seq[any], bool) {
	if value == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.converters {
		if c.Applies(value) {
			return c.Convert(value), true
		}
	}
	return nil, false
}

// IsTruthy applies the registered checks, then the default rules: nil,
// false, "" and empty collections are falsy, everything else is truthy.
func (r *Registry) IsTruthy(value any) bool {
	r.mu.RLock()
	checks := r.truthy
	r.mu.RUnlock()

	for _, c := range checks {
		if truthy, ok := c.Check(value); ok {
			return truthy
		}
	}

	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return false
		}
	case reflect.Map:
		return rv.Len() > 0
	}

	if seq, ok := r.Enumerate(value); ok {
		for range seq {
			return true
		}
		return false
	}
	return true
}

func defaultValueGetters() []ValueGetter {
	return []ValueGetter{
		{
			Name: "map[string]any",
			Applies: func(c any) bool {
				_, ok := c.(map[string]any)
				return ok
			},
			Get: func(c any, key string, ignoreCase bool) (any, bool) {
				return lookupStringMap(c.(map[string]any), key, ignoreCase)
			},
		},
		{
			Name: "map[string]string",
			Applies: func(c any) bool {
				_, ok := c.(map[string]string)
				return ok
			},
			Get: func(c any, key string, ignoreCase bool) (any, bool) {
				return lookupStringMap(c.(map[string]string), key, ignoreCase)
			},
		},
		{
			Name: "map",
			Applies: func(c any) bool {
				rv := indirect(reflect.ValueOf(c))
				return rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String
			},
			Get: getMapValue,
		},
		{
			Name: "struct",
			Applies: func(c any) bool {
				return indirect(reflect.ValueOf(c)).Kind() == reflect.Struct
			},
			Get: getStructField,
		},
		{
			Name: "method",
			Applies: func(c any) bool {
				return !isNilPointer(c) && reflect.ValueOf(c).NumMethod() > 0
			},
			Get: getMethodValue,
		},
		{
			Name: "index",
			Applies: func(c any) bool {
				k := indirect(reflect.ValueOf(c)).Kind()
				return k == reflect.Slice || k == reflect.Array
			},
			Get: getIndexValue,
		},
	}
}

func lookupStringMap[V any](m map[string]V, key string, ignoreCase bool) (any, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	if ignoreCase {
		for k, v := range m {
			if strings.EqualFold(k, key) {
				return v, true
			}
		}
	}
	return nil, false
}

func indirect(rv reflect.Value) reflect.Value {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

func getMapValue(c any, key string, ignoreCase bool) (any, bool) {
	rv := indirect(reflect.ValueOf(c))
	k := reflect.ValueOf(key).Convert(rv.Type().Key())
	if v := rv.MapIndex(k); v.IsValid() {
		return v.Interface(), true
	}
	if ignoreCase {
		it := rv.MapRange()
		for it.Next() {
			if strings.EqualFold(it.Key().String(), key) {
				return it.Value().Interface(), true
			}
		}
	}
	return nil, false
}

func getStructField(c any, key string, ignoreCase bool) (any, bool) {
	rv := indirect(reflect.ValueOf(c))
	field, ok := rv.Type().FieldByName(key)
	if !ok && ignoreCase {
		field, ok = rv.Type().FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, key)
		})
	}
	if !ok || !field.IsExported() {
		return nil, false
	}
	v, err := rv.FieldByIndexErr(field.Index)
	if err != nil {
		return nil, false
	}
	return v.Interface(), true
}

// getMethodValue calls an exported method that takes no arguments and
// returns a value, or a value and an error. A non-nil error or a nil pointer
// receiver counts as a miss.
func getMethodValue(c any, key string, ignoreCase bool) (any, bool) {
	if isNilPointer(c) {
		return nil, false
	}
	rv := reflect.ValueOf(c)
	m := rv.MethodByName(key)
	if !m.IsValid() && ignoreCase {
		for i := 0; i < rv.NumMethod(); i++ {
			if strings.EqualFold(rv.Type().Method(i).Name, key) {
				m = rv.Method(i)
				break
			}
		}
	}
	if !m.IsValid() {
		return nil, false
	}
	mt := m.Type()
	switch {
	case mt.NumIn() != 0:
		return nil, false
	case mt.NumOut() == 1:
		return m.Call(nil)[0].Interface(), true
	case mt.NumOut() == 2 && mt.Out(1) == errorType:
		out := m.Call(nil)
		if !out[1].IsNil() {
			return nil, false
		}
		return out[0].Interface(), true
	default:
		return nil, false
	}
}

var errorType = reflect.TypeFor[error]()

func getIndexValue(c any, key string, _ bool) (any, bool) {
	rv := indirect(reflect.ValueOf(c))
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 || i >= rv.Len() {
		return nil, false
	}
	return rv.Index(i).Interface(), true
}

func defaultEnumerationConverters() []EnumerationConverter {
	return []EnumerationConverter{
		{
			Name: "iter.Seq[any]",
			Applies: func(v any) bool {
				_, ok := v.(iter.Seq[any])
				return ok
			},
			Convert: func(v any) iter.Seq[any] {
				return v.(iter.Seq[any])
			},
		},
		{
			Name: "[]any",
			Applies: func(v any) bool {
				_, ok := v.([]any)
				return ok
			},
			Convert: func(v any) iter.Seq[any] {
				items := v.([]any)
				return func(yield func(any) bool) {
					for _, item := range items {
						if !yield(item) {
							return
						}
					}
				}
			},
		},
		{
			Name: "slice",
			Applies: func(v any) bool {
				if _, ok := v.([]byte); ok {
					return false
				}
				k := indirect(reflect.ValueOf(v)).Kind()
				return k == reflect.Slice || k == reflect.Array
			},
			Convert: func(v any) iter.Seq[any] {
				rv := indirect(reflect.ValueOf(v))
				return func(yield func(any) bool) {
					for i := 0; i < rv.Len(); i++ {
						if !yield(rv.Index(i).Interface()) {
							return
						}
					}
				}
			},
		},
	}
}

// RegistryError represents a registry operation error
type RegistryError struct {
	Message string
	Name    string
}

// NewRegistryError creates a registry error
func NewRegistryError(message, name string) *RegistryError {
	return &RegistryError{Message: message, Name: name}
}

func (e *RegistryError) Error() string {
	if e.Name == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Name)
}
