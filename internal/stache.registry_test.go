package internal

import (
	"errors"
	"iter"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPerson struct {
	Name     string
	Age      int
	internal string
}

func (p testPerson) Greeting() string { return "hi " + p.Name }

func (p *testPerson) Shout() string { return strings.ToUpper(p.Name) }

func (p testPerson) Initial() (string, error) { return p.Name[:1], nil }

func (p testPerson) Broken() (string, error) { return "", errors.New("broken") }

type labels map[string]int

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry(nil)
	person := &testPerson{Name: "Jo", Age: 7, internal: "x"}

	tests := []struct {
		name       string
		container  any
		key        string
		ignoreCase bool
		want       any
		wantOK     bool
	}{
		{name: "map any", container: map[string]any{"a": 1}, key: "a", want: 1, wantOK: true},
		{name: "map any miss", container: map[string]any{"a": 1}, key: "b"},
		{name: "map any ignore case", container: map[string]any{"Name": "x"}, key: "name", ignoreCase: true, want: "x", wantOK: true},
		{name: "map any case sensitive", container: map[string]any{"Name": "x"}, key: "name"},
		{name: "map string", container: map[string]string{"a": "b"}, key: "a", want: "b", wantOK: true},
		{name: "named map", container: labels{"x": 3}, key: "x", want: 3, wantOK: true},
		{name: "named map ignore case", container: labels{"X": 3}, key: "x", ignoreCase: true, want: 3, wantOK: true},
		{name: "struct field", container: testPerson{Name: "Jo"}, key: "Name", want: "Jo", wantOK: true},
		{name: "struct pointer field", container: person, key: "Age", want: 7, wantOK: true},
		{name: "struct field ignore case", container: person, key: "age", ignoreCase: true, want: 7, wantOK: true},
		{name: "unexported field hidden", container: person, key: "internal"},
		{name: "value method", container: testPerson{Name: "Jo"}, key: "Greeting", want: "hi Jo", wantOK: true},
		{name: "pointer method", container: person, key: "Shout", want: "JO", wantOK: true},
		{name: "method ignore case", container: person, key: "greeting", ignoreCase: true, want: "hi Jo", wantOK: true},
		{name: "method with error result", container: person, key: "Initial", want: "J", wantOK: true},
		{name: "method returning error is a miss", container: person, key: "Broken"},
		{name: "slice index", container: []string{"a", "b"}, key: "1", want: "b", wantOK: true},
		{name: "slice index out of range", container: []string{"a"}, key: "3"},
		{name: "slice non numeric", container: []string{"a"}, key: "x"},
		{name: "scalar", container: 42, key: "x"},
		{name: "nil", container: nil, key: "x"},
		{name: "nil pointer method is a miss", container: (*testPerson)(nil), key: "Greeting"},
		{name: "nil pointer field is a miss", container: (*testPerson)(nil), key: "Name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Get(tt.container, tt.key, tt.ignoreCase)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRegistry_AddValueGetter(t *testing.T) {
	r := NewRegistry(nil)

	err := r.AddValueGetter(ValueGetter{
		Name:    "upper",
		Applies: func(c any) bool { _, ok := c.(map[string]any); return ok },
		Get: func(c any, key string, _ bool) (any, bool) {
			return strings.ToUpper(key), true
		},
	})
	require.NoError(t, err)

	got, ok := r.Get(map[string]any{"a": "real"}, "a", false)
	require.True(t, ok)
	assert.Equal(t, "A", got, "user getters run before defaults")
	assert.Equal(t, "upper", r.ValueGetterNames()[0])

	t.Run("duplicate name", func(t *testing.T) {
		err := r.AddValueGetter(ValueGetter{Name: "upper", Applies: func(any) bool { return false }, Get: func(any, string, bool) (any, bool) { return nil, false }})
		var regErr *RegistryError
		require.True(t, errors.As(err, &regErr))
		assert.Equal(t, ErrMsgRegistryEntryExists, regErr.Message)
	})

	t.Run("missing functions", func(t *testing.T) {
		assert.Error(t, r.AddValueGetter(ValueGetter{Name: "broken"}))
	})
}

func TestRegistry_Enumerate(t *testing.T) {
	r := NewRegistry(nil)

	collect := func(seq iter.Seq[any]) []any {
		var out []any
		for v := range seq {
			out = append(out, v)
		}
		return out
	}

	seq, ok := r.Enumerate([]int{1, 2})
	require.True(t, ok)
	assert.Equal(t, []any{1, 2}, collect(seq))

	seq, ok = r.Enumerate([2]string{"a", "b"})
	require.True(t, ok)
	assert.Equal(t, []any{"a", "b"}, collect(seq))

	seq, ok = r.Enumerate(iter.Seq[any](func(yield func(any) bool) {
		_ = yield("x") && yield("y")
	}))
	require.True(t, ok)
	assert.Equal(t, []any{"x", "y"}, collect(seq))

	_, ok = r.Enumerate("string")
	assert.False(t, ok)
	_, ok = r.Enumerate([]byte("bytes"))
	assert.False(t, ok)
	_, ok = r.Enumerate(map[string]any{"a": 1})
	assert.False(t, ok)
	_, ok = r.Enumerate(nil)
	assert.False(t, ok)
}

func TestRegistry_IsTruthy(t *testing.T) {
	r := NewRegistry(nil)
	var nilPtr *testPerson

	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{name: "nil", value: nil, want: false},
		{name: "false", value: false, want: false},
		{name: "true", value: true, want: true},
		{name: "empty string", value: "", want: false},
		{name: "string", value: "x", want: true},
		{name: "zero int", value: 0, want: true},
		{name: "zero float", value: 0.0, want: true},
		{name: "empty slice", value: []any{}, want: false},
		{name: "slice", value: []int{1}, want: true},
		{name: "empty map", value: map[string]any{}, want: false},
		{name: "map", value: map[string]any{"a": 1}, want: true},
		{name: "nil pointer", value: nilPtr, want: false},
		{name: "struct", value: testPerson{}, want: true},
		{name: "lambda", value: func(string) string { return "" }, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.IsTruthy(tt.value))
		})
	}
}

func TestRegistry_AddTruthyCheck(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.AddTruthyCheck(TruthyCheck{
		Name: "zero is falsy",
		Check: func(v any) (bool, bool) {
			n, ok := v.(int)
			if !ok {
				return false, false
			}
			return n != 0, true
		},
	}))

	assert.False(t, r.IsTruthy(0))
	assert.True(t, r.IsTruthy(2))
	assert.True(t, r.IsTruthy("x"), "other values fall through to defaults")
}

func TestRegistry_AddEnumerationConverter(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.AddEnumerationConverter(EnumerationConverter{
		Name:    "csv",
		Applies: func(v any) bool { s, ok := v.(string); return ok && strings.Contains(s, ",") },
		Convert: func(v any) iter.Seq[any] {
			return func(yield func(any) bool) {
				for _, part := range strings.Split(v.(string), ",") {
					if !yield(part) {
						return
					}
				}
			}
		},
	}))

	seq, ok := r.Enumerate("a,b")
	require.True(t, ok)
	var got []any
	for v := range seq {
		got = append(got, v)
	}
	assert.Equal(t, []any{"a", "b"}, got)
}
