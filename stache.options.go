package stache

import (
	"go.uber.org/zap"
)

// Option is a functional option for configuring the Engine.
type Option func(*engineConfig)

// engineConfig holds the internal configuration for an Engine.
type engineConfig struct {
	templateLoader        TemplateLoader
	partialLoader         TemplateLoader
	escaper               Escaper
	skipHTMLEncoding      bool
	ignoreCase            bool
	skipRecursiveLookup   bool
	dataMissIsError       bool
	ignoreMissingPartials bool
	maxRecursionDepth     int
	delimiters            DelimiterSet
	valueGetters          []ValueGetter
	enumerationConverters []EnumerationConverter
	truthyChecks          []TruthyCheck
	templateCache         bool
	templateCacheSize     int
	logger                *zap.Logger
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		templateLoader:    NewStringLoader(),
		escaper:           HTMLEscaper,
		maxRecursionDepth: DefaultMaxRecursionDepth,
		delimiters:        DefaultDelimiters(),
		templateCache:     true,
		templateCacheSize: DefaultTemplateCacheSize,
		logger:            nil,
	}
}

// WithTemplateLoader sets the loader that resolves the name passed to Render.
// Default: StringLoader (the name is the template text)
func WithTemplateLoader(loader TemplateLoader) Option {
	return func(c *engineConfig) {
		if loader != nil {
			c.templateLoader = loader
		}
	}
}

// WithPartialLoader sets the loader used for {{>partial}} tags.
// Default: the template loader, unless it is the StringLoader
func WithPartialLoader(loader TemplateLoader) Option {
	return func(c *engineConfig) {
		c.partialLoader = loader
	}
}

// WithEscaper replaces the escaping applied to {{name}} tags.
// Default: HTMLEscaper
func WithEscaper(escaper Escaper) Option {
	return func(c *engineConfig) {
		if escaper != nil {
			c.escaper = escaper
		}
	}
}

// WithSkipHTMLEncoding disables escaping for all interpolation tags.
func WithSkipHTMLEncoding(skip bool) Option {
	return func(c *engineConfig) {
		c.skipHTMLEncoding = skip
	}
}

// WithIgnoreCaseOnLookup matches keys, fields and methods case-insensitively.
func WithIgnoreCaseOnLookup(ignore bool) Option {
	return func(c *engineConfig) {
		c.ignoreCase = ignore
	}
}

// WithSkipRecursiveLookup restricts name lookup to the innermost context frame.
func WithSkipRecursiveLookup(skip bool) Option {
	return func(c *engineConfig) {
		c.skipRecursiveLookup = skip
	}
}

// WithDataMissIsError makes unresolved names fail the render.
func WithDataMissIsError(strict bool) Option {
	return func(c *engineConfig) {
		c.dataMissIsError = strict
	}
}

// WithIgnoreMissingPartials renders unknown partials as empty instead of failing.
func WithIgnoreMissingPartials(ignore bool) Option {
	return func(c *engineConfig) {
		c.ignoreMissingPartials = ignore
	}
}

// WithMaxRecursionDepth limits partial and lambda nesting.
// Default: 256
func WithMaxRecursionDepth(depth int) Option {
	return func(c *engineConfig) {
		if depth > 0 {
			c.maxRecursionDepth = depth
		}
	}
}

// WithDelimiters sets the delimiters templates start with.
// Default: "{{" and "}}"
func WithDelimiters(open, close string) Option {
	return func(c *engineConfig) {
		if open != "" {
			c.delimiters.Open = open
		}
		if close != "" {
			c.delimiters.Close = close
		}
	}
}

// WithValueGetter adds a value getter that runs before earlier ones.
func WithValueGetter(getter ValueGetter) Option {
	return func(c *engineConfig) {
		c.valueGetters = append(c.valueGetters, getter)
	}
}

// WithEnumerationConverter adds an enumeration converter that runs before earlier ones.
func WithEnumerationConverter(converter EnumerationConverter) Option {
	return func(c *engineConfig) {
		c.enumerationConverters = append(c.enumerationConverters, converter)
	}
}

// WithTruthyCheck adds a truthy check that runs before earlier ones.
func WithTruthyCheck(check TruthyCheck) Option {
	return func(c *engineConfig) {
		c.truthyChecks = append(c.truthyChecks, check)
	}
}

// WithTemplateCache enables or disables the parsed template cache.
// Default: enabled
func WithTemplateCache(enabled bool) Option {
	return func(c *engineConfig) {
		c.templateCache = enabled
	}
}

// WithTemplateCacheSize bounds the parsed template cache, evicting the oldest
// tree once size is reached. Use 0 for unbounded.
// Default: 0 (unbounded)
func WithTemplateCacheSize(size int) Option {
	return func(c *engineConfig) {
		if size >= 0 {
			c.templateCacheSize = size
		}
	}
}

// WithLogger sets the logger for the engine.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}
