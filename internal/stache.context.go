package internal

import (
	"strings"

	"go.uber.org/zap"
)

// LookupOptions control how names are resolved against the context stack
type LookupOptions struct {
	IgnoreCase          bool // match keys case-insensitively
	SkipRecursiveLookup bool // only search the innermost frame
	DataMissIsError     bool // return DataMissError for unresolved names
}

type lookupResult struct {
	value any
	found bool
}

// Frame is one level of the context stack. A frame is owned by a single
// render call and is not safe for concurrent use.
type Frame struct {
	value    any
	parent   *Frame
	registry *Registry
	options  LookupOptions
	logger   *zap.Logger
	cache    map[string]lookupResult
}

// NewFrame creates a root frame for value
func NewFrame(value any, registry *Registry, options LookupOptions, logger *zap.Logger) *Frame {
	if logger == nil {
		logger = zap.NewNop()
	}
	if registry == nil {
		registry = NewRegistry(logger)
	}
	return &Frame{
		value:    value,
		registry: registry,
		options:  options,
		logger:   logger,
	}
}

// Push returns a child frame whose parent is f
func (f *Frame) Push(value any) *Frame {
	return &Frame{
		value:    value,
		parent:   f,
		registry: f.registry,
		options:  f.options,
		logger:   f.logger,
	}
}

// Value returns the frame's own value
func (f *Frame) Value() any {
	return f.value
}

// Parent returns the enclosing frame, or nil for the root
func (f *Frame) Parent() *Frame {
	return f.parent
}

// Registry returns the registry used for lookups
func (f *Frame) Registry() *Registry {
	return f.registry
}

// Lookup resolves a name. "." is the frame's own value. For dotted names the
// first segment is searched from this frame outward; the remaining segments
// are resolved only against that first hit, and any miss there means the
// whole name is unresolved.
func (f *Frame) Lookup(name string) (any, bool, error) {
	if name == StrDot {
		return f.value, true, nil
	}

	if res, ok := f.cache[name]; ok {
		return f.missCheck(name, res)
	}

	segments := strings.Split(name, StrDot)
	var res lookupResult
	for frame := f; frame != nil; frame = frame.parent {
		v, ok := f.registry.Get(frame.value, segments[0], f.options.IgnoreCase)
		if ok {
			res = f.resolveRest(v, segments[1:])
			break
		}
		if f.options.SkipRecursiveLookup {
			break
		}
	}

	if f.cache == nil {
		f.cache = make(map[string]lookupResult)
	}
	f.cache[name] = res
	return f.missCheck(name, res)
}

func (f *Frame) resolveRest(v any, rest []string) lookupResult {
	for _, seg := range rest {
		next, ok := f.registry.Get(v, seg, f.options.IgnoreCase)
		if !ok {
			return lookupResult{}
		}
		v = next
	}
	return lookupResult{value: v, found: true}
}

func (f *Frame) missCheck(name string, res lookupResult) (any, bool, error) {
	if res.found {
		return res.value, true, nil
	}
	f.logger.Debug(LogMsgDataMiss, zap.String(LogFieldPath, name))
	if f.options.DataMissIsError {
		return nil, false, &DataMissError{Path: name}
	}
	return nil, false, nil
}

// IsTruthy reports the truthiness of v using the frame's registry
func (f *Frame) IsTruthy(v any) bool {
	return f.registry.IsTruthy(v)
}
