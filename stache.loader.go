package stache

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/itsatony/go-cuserr"
)

// TemplateLoader resolves a template name to template source.
// found is false when the loader does not know the name; err is reserved for
// failures such as I/O errors, and aborts the lookup.
type TemplateLoader interface {
	Load(ctx context.Context, name string) (source string, found bool, err error)
}

// LoaderDriver opens a TemplateLoader from a driver specific connection string.
type LoaderDriver interface {
	Open(connectionString string) (TemplateLoader, error)
}

// Loader error message constants
const (
	ErrMsgNilLoaderDriver         = "loader driver is nil"
	ErrMsgDriverAlreadyRegistered = "loader driver already registered"
	ErrMsgLoaderDriverNotFound    = "loader driver not found"
)

// MetaKeyDriverName is the metadata key naming a loader driver
const MetaKeyDriverName = "driver"

// Loader driver registry
var (
	loaderDriversMu sync.RWMutex
	loaderDrivers   = make(map[string]LoaderDriver)
)

// RegisterLoaderDriver registers a loader driver by name.
// This is typically called from a driver's init() function.
// Panics if a driver with the same name is already registered.
func RegisterLoaderDriver(name string, driver LoaderDriver) {
	loaderDriversMu.Lock()
	defer loaderDriversMu.Unlock()

	if driver == nil {
		panic(ErrMsgNilLoaderDriver)
	}
	if _, exists := loaderDrivers[name]; exists {
		panic(ErrMsgDriverAlreadyRegistered + ": " + name)
	}
	loaderDrivers[name] = driver
}

// OpenLoader opens a template loader using the named driver.
// The connection string format is driver-specific.
//
// Example:
//
//	loader, err := stache.OpenLoader("file", "/path/to/templates")
//	loader, err := stache.OpenLoader("postgres", "postgres://localhost/app?sslmode=disable")
func OpenLoader(driverName, connectionString string) (TemplateLoader, error) {
	loaderDriversMu.RLock()
	driver, ok := loaderDrivers[driverName]
	loaderDriversMu.RUnlock()

	if !ok {
		return nil, cuserr.NewNotFoundError(MetaKeyDriverName, ErrMsgLoaderDriverNotFound).
			WithMetadata(MetaKeyDriverName, driverName)
	}
	return driver.Open(connectionString)
}

// ListLoaderDrivers returns the sorted names of all registered loader drivers.
func ListLoaderDrivers() []string {
	loaderDriversMu.RLock()
	defer loaderDriversMu.RUnlock()
	return slices.Sorted(maps.Keys(loaderDrivers))
}

// StringLoader treats the name as the template text itself.
// It is the default template loader, so Render accepts literal templates.
type StringLoader struct{}

// NewStringLoader creates a StringLoader
func NewStringLoader() *StringLoader {
	return &StringLoader{}
}

// Load returns name as the template source
func (l *StringLoader) Load(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	return name, true, nil
}

// MapLoader serves templates from a fixed name to source map.
// It is immutable and safe for concurrent use.
type MapLoader struct {
	templates map[string]string
}

// NewMapLoader creates a loader over a copy of templates
func NewMapLoader(templates map[string]string) *MapLoader {
	return &MapLoader{templates: maps.Clone(templates)}
}

// Load returns the source registered under name
func (l *MapLoader) Load(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	source, ok := l.templates[name]
	return source, ok, nil
}

// Add returns a new loader with name bound to source. The receiver is unchanged.
func (l *MapLoader) Add(name, source string) *MapLoader {
	templates := make(map[string]string, len(l.templates)+1)
	maps.Copy(templates, l.templates)
	templates[name] = source
	return &MapLoader{templates: templates}
}

// Names returns the sorted template names
func (l *MapLoader) Names() []string {
	return slices.Sorted(maps.Keys(l.templates))
}

// Len returns the number of templates
func (l *MapLoader) Len() int {
	return len(l.templates)
}

// CompositeLoader tries loaders in order; the first that finds the name wins.
// An error from any loader aborts the lookup.
type CompositeLoader struct {
	loaders []TemplateLoader
}

// NewCompositeLoader creates a loader over loaders, skipping nil entries
func NewCompositeLoader(loaders ...TemplateLoader) *CompositeLoader {
	c := &CompositeLoader{}
	for _, l := range loaders {
		if l != nil {
			c.loaders = append(c.loaders, l)
		}
	}
	return c
}

// Load asks each loader in turn
func (c *CompositeLoader) Load(ctx context.Context, name string) (string, bool, error) {
	for _, l := range c.loaders {
		source, found, err := l.Load(ctx, name)
		if err != nil {
			return "", false, err
		}
		if found {
			return source, true, nil
		}
	}
	return "", false, nil
}

// Add returns a new composite with loader appended. The receiver is unchanged.
func (c *CompositeLoader) Add(loader TemplateLoader) *CompositeLoader {
	loaders := slices.Clone(c.loaders)
	if loader != nil {
		loaders = append(loaders, loader)
	}
	return &CompositeLoader{loaders: loaders}
}

// Len returns the number of loaders
func (c *CompositeLoader) Len() int {
	return len(c.loaders)
}
