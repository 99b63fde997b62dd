package stache

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-stache/internal"
	"go.uber.org/zap"
)

// Engine parses and renders Mustache templates. It is safe for concurrent
// use; parsed templates are immutable and shared between renders.
type Engine struct {
	config    *engineConfig
	registry  *internal.Registry
	tokenizer *internal.Tokenizer
	cache     *internal.TreeCache // nil when the template cache is disabled
	parser    internal.TreeParser
	renderer  *internal.Renderer
	partials  TemplateLoader
	logger    *zap.Logger

	templates map[string]*Template // named templates registered on the engine
	tmplMu    sync.RWMutex
}

// TemplateCacheStats reports template cache hits, misses and evictions
type TemplateCacheStats = internal.TreeCacheStats

// RenderResult is delivered by RenderAsync.
type RenderResult struct {
	Output string
	Err    error
}

// New creates a new Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := config.delimiters.Validate(); err != nil {
		return nil, convertError(err, "", "")
	}

	registry, err := buildRegistry(config, logger)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		config:    config,
		registry:  registry,
		tokenizer: internal.NewTokenizer(nil, logger),
		logger:    logger,
		templates: make(map[string]*Template),
	}

	e.parser = e.tokenizer
	if config.templateCache {
		e.cache = internal.NewTreeCache(e.tokenizer, config.templateCacheSize, logger)
		e.parser = e.cache
	}

	// partial lookups fall back to the template loader unless it treats
	// names as literal text
	e.partials = config.partialLoader
	if e.partials == nil {
		if _, literal := config.templateLoader.(*StringLoader); !literal {
			e.partials = config.templateLoader
		}
	}

	rendererConfig := internal.RendererConfig{
		Escaper:               config.escaper,
		SkipEscape:            config.skipHTMLEncoding,
		MaxRecursionDepth:     config.maxRecursionDepth,
		IgnoreMissingPartials: config.ignoreMissingPartials,
	}
	e.renderer = internal.NewRenderer(e.tokenizer, e.parser, &partialAdapter{engine: e}, rendererConfig, logger)

	logger.Debug(LogMsgEngineCreated,
		zap.String(LogFieldDelimiters, config.delimiters.String()),
		zap.Bool(LogFieldCache, config.templateCache))
	return e, nil
}

// MustNew creates a new Engine and panics if there's an error.
func MustNew(opts ...Option) *Engine {
	engine, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

// partialAdapter resolves partials against registered templates first, then
// the partial loader.
type partialAdapter struct {
	engine *Engine
}

func (a *partialAdapter) LoadPartial(ctx context.Context, name string) (string, bool, error) {
	if tmpl, ok := a.engine.GetTemplate(name); ok {
		return tmpl.source, true, nil
	}
	if a.engine.partials == nil {
		return "", false, nil
	}
	return a.engine.partials.Load(ctx, name)
}

// Parse parses source with the engine's initial delimiters.
// The returned Template can be rendered many times, concurrently.
func (e *Engine) Parse(source string) (*Template, error) {
	return e.ParseWithDelimiters(source, e.config.delimiters)
}

// ParseWithDelimiters parses source starting with delims instead of the
// engine's initial delimiters.
func (e *Engine) ParseWithDelimiters(source string, delims DelimiterSet) (*Template, error) {
	return e.parse(source, delims, "")
}

func (e *Engine) parse(source string, delims DelimiterSet, name string) (*Template, error) {
	tree, err := e.parser.Parse(source, delims)
	if err != nil {
		return nil, convertError(err, source, name)
	}
	return newTemplate(e, name, tree), nil
}

// Validate reports the first parse error in source, or nil.
func (e *Engine) Validate(source string) error {
	_, err := e.tokenizer.Parse(source, e.config.delimiters)
	return convertError(err, source, "")
}

// Render loads templateName through the template loader and renders it
// with data. With the default StringLoader the name is the template text.
func (e *Engine) Render(ctx context.Context, templateName string, data any) (string, error) {
	return e.RenderWithPartials(ctx, templateName, data, nil)
}

// RenderWithPartials renders like Render; partials found in the map take
// precedence over registered templates and the partial loader.
func (e *Engine) RenderWithPartials(ctx context.Context, templateName string, data any, partials map[string]string) (string, error) {
	tmpl, err := e.load(ctx, templateName)
	if err != nil {
		return "", err
	}
	return tmpl.RenderWithPartials(ctx, data, partials)
}

// RenderAsync renders on a separate goroutine. The channel receives exactly
// one result and is then closed.
func (e *Engine) RenderAsync(ctx context.Context, templateName string, data any) <-chan RenderResult {
	results := make(chan RenderResult, AsyncResultBufferSize)
	go func() {
		defer close(results)
		output, err := e.Render(ctx, templateName, data)
		results <- RenderResult{Output: output, Err: err}
	}()
	return results
}

// load resolves a name to a parsed template
func (e *Engine) load(ctx context.Context, name string) (*Template, error) {
	if tmpl, ok := e.GetTemplate(name); ok {
		return tmpl, nil
	}

	source, found, err := e.config.templateLoader.Load(ctx, name)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, convertError(ctxErr, "", name)
		}
		return nil, NewLoaderError(name, err)
	}
	if !found {
		return nil, NewUnknownTemplateError(name)
	}

	templateName := name
	if _, literal := e.config.templateLoader.(*StringLoader); literal {
		templateName = ""
	}
	e.logger.Debug(LogMsgRenderRequested,
		zap.String(LogFieldTemplate, templateName),
		zap.Int(LogFieldLength, len(source)))
	return e.parse(source, e.config.delimiters, templateName)
}

// lookupOptions returns the context lookup settings for renders
func (e *Engine) lookupOptions() internal.LookupOptions {
	return internal.LookupOptions{
		IgnoreCase:          e.config.ignoreCase,
		SkipRecursiveLookup: e.config.skipRecursiveLookup,
		DataMissIsError:     e.config.dataMissIsError,
	}
}

// CacheTemplate parses source into the template cache so later renders of
// the same text skip parsing.
func (e *Engine) CacheTemplate(source string) error {
	if _, err := e.Parse(source); err != nil {
		return err
	}
	e.logger.Debug(LogMsgTemplateCached, zap.Int(LogFieldLength, len(source)))
	return nil
}

// ClearCache drops every cached template tree.
func (e *Engine) ClearCache() {
	if e.cache == nil {
		return
	}
	e.cache.Clear()
	e.logger.Debug(LogMsgTemplateCacheCleared)
}

// CachedTemplateCount returns the number of cached template trees.
func (e *Engine) CachedTemplateCount() int {
	if e.cache == nil {
		return 0
	}
	return e.cache.Len()
}

// CacheStats returns template cache statistics. The zero value is returned
// when the cache is disabled.
func (e *Engine) CacheStats() TemplateCacheStats {
	if e.cache == nil {
		return TemplateCacheStats{}
	}
	return e.cache.Stats()
}

// RegisterTemplate parses source and registers it under name. Registered
// templates are found by Render and by partial tags before any loader.
func (e *Engine) RegisterTemplate(name, source string) error {
	if name == "" {
		return cuserr.NewValidationError(ErrCodeLoader, ErrMsgEmptyTemplateName)
	}
	tmpl, err := e.parse(source, e.config.delimiters, name)
	if err != nil {
		return err
	}

	e.tmplMu.Lock()
	defer e.tmplMu.Unlock()
	e.templates[name] = tmpl
	return nil
}

// MustRegisterTemplate registers a template and panics on error.
func (e *Engine) MustRegisterTemplate(name, source string) {
	if err := e.RegisterTemplate(name, source); err != nil {
		panic(err)
	}
}

// UnregisterTemplate removes a registered template by name.
// Returns true if the template existed and was removed, false otherwise.
func (e *Engine) UnregisterTemplate(name string) bool {
	e.tmplMu.Lock()
	defer e.tmplMu.Unlock()

	if _, exists := e.templates[name]; exists {
		delete(e.templates, name)
		return true
	}
	return false
}

// GetTemplate retrieves a registered template by name.
func (e *Engine) GetTemplate(name string) (*Template, bool) {
	e.tmplMu.RLock()
	defer e.tmplMu.RUnlock()

	tmpl, ok := e.templates[name]
	return tmpl, ok
}

// ListTemplates returns all registered template names in sorted order.
func (e *Engine) ListTemplates() []string {
	e.tmplMu.RLock()
	defer e.tmplMu.RUnlock()

	return slices.Sorted(maps.Keys(e.templates))
}

// TemplateCount returns the number of registered templates.
func (e *Engine) TemplateCount() int {
	e.tmplMu.RLock()
	defer e.tmplMu.RUnlock()

	return len(e.templates)
}
