package stache

import "time"

// Delimiter defaults
const (
	DefaultOpenDelimiter  = "{{"
	DefaultCloseDelimiter = "}}"
)

// Engine defaults
const (
	DefaultMaxRecursionDepth      = 256
	DefaultDelimiterCacheCapacity = 100
	DefaultTemplateCacheSize      = 0 // unbounded
)

// File loader defaults. The path pattern is expanded with fasttemplate.
const (
	FileLoaderDefaultPattern   = "{name}.{ext}"
	FileLoaderDefaultExtension = "mustache"
	FileLoaderTagStart         = "{"
	FileLoaderTagEnd           = "}"
	FileLoaderPlaceholderName  = "name"
	FileLoaderPlaceholderExt   = "ext"
)

// Cached loader defaults
const (
	CachedLoaderDefaultTTL         = 5 * time.Minute
	CachedLoaderDefaultMaxEntries  = 1000
	CachedLoaderDefaultNegativeTTL = 30 * time.Second
)

// PostgreSQL loader defaults
const (
	PostgresDriverName             = "postgres"
	PostgresTablePrefix            = "stache_"
	PostgresDefaultMaxOpenConns    = 25
	PostgresDefaultMaxIdleConns    = 5
	PostgresDefaultConnMaxLifetime = 5 * time.Minute
	PostgresDefaultConnMaxIdleTime = 5 * time.Minute
	PostgresDefaultQueryTimeout    = 30 * time.Second
)

// Async render
const (
	AsyncResultBufferSize = 1
)

// Logging messages
const (
	LogMsgEngineCreated        = "stache engine created"
	LogMsgRenderRequested      = "render requested"
	LogMsgRenderFailed         = "render failed"
	LogMsgTemplateLoaded       = "template loaded"
	LogMsgTemplateCached       = "template cached"
	LogMsgTemplateCacheCleared = "template cache cleared"
	LogMsgLoaderFallback       = "template loader failed"
	LogMsgCacheHit             = "loader cache hit"
	LogMsgCacheMiss            = "loader cache miss"
	LogMsgCacheEvicted         = "loader cache entry evicted"
	LogMsgPostgresConnected    = "postgres loader connected"
	LogMsgPostgresMigrated     = "postgres loader migration applied"
	LogMsgTemplateSaved        = "template saved"
	LogMsgTemplateDeleted      = "template deleted"
)

// Logging field names
const (
	LogFieldTemplate   = "template"
	LogFieldLength     = "length"
	LogFieldLoader     = "loader"
	LogFieldPath       = "path"
	LogFieldVersion    = "version"
	LogFieldFound      = "found"
	LogFieldCache      = "cache"
	LogFieldDelimiters = "delimiters"
)

// Error metadata keys
const (
	MetaKeyTag      = "tag"
	MetaKeyOffset   = "offset"
	MetaKeyLine     = "line"
	MetaKeyColumn   = "column"
	MetaKeyTemplate = "template"
	MetaKeyPath     = "path"
	MetaKeyDepth    = "depth"
	MetaKeyKind     = "kind"
	MetaKeyRoot     = "root"
	MetaKeyVersion  = "version"
)

// Loader names used in logs
const (
	LoaderNameString    = "string"
	LoaderNameMap       = "map"
	LoaderNameComposite = "composite"
	LoaderNameFile      = "file"
	LoaderNamePostgres  = "postgres"
	LoaderNameCached    = "cached"
)

const (
	postgresTemplatesTable  = "templates"
	postgresMigrationsTable = "schema_migrations"
)
