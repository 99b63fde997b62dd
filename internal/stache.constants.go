package internal

// TokenType represents the kind of a scanned token
type TokenType string

// Token type constants. The values are the tag sigils; plain text and
// plain interpolation use descriptive names.
const (
	TokenTypeText          TokenType = "text"
	TokenTypeName          TokenType = "name"
	TokenTypeUnescaped     TokenType = "&"
	TokenTypeSection       TokenType = "#"
	TokenTypeInverted      TokenType = "^"
	TokenTypeSectionClose  TokenType = "/"
	TokenTypePartial       TokenType = ">"
	TokenTypeComment       TokenType = "!"
	TokenTypeSetDelimiters TokenType = "="
)

// Tag sigils recognized right after an opening delimiter
const (
	SigilSection        = '#'
	SigilInverted       = '^'
	SigilSectionClose   = '/'
	SigilPartial        = '>'
	SigilTripleMustache = '{'
	SigilUnescaped      = '&'
	SigilSetDelimiters  = '='
	SigilComment        = '!'
)

// Character and string constants
const (
	CharNewline = '\n'
	StrDot      = "."
	StrNewline  = "\n"
	StrCurly    = "}"
)

// Default delimiters
const (
	DefaultOpenDelimiter  = "{{"
	DefaultCloseDelimiter = "}}"
)

// Limits
const (
	DefaultDelimiterCacheCapacity = 100
	DefaultMaxRecursionDepth      = 256
)

// Log messages
const (
	LogMsgTokenizerCreated      = "tokenizer created"
	LogMsgTokenizerStart        = "starting tokenization"
	LogMsgTokenizerEnd          = "tokenization complete"
	LogMsgDelimitersChanged     = "delimiters changed"
	LogMsgDelimiterCacheEvicted = "delimiter cache entry evicted"
	LogMsgDelimiterCacheResized = "delimiter cache resized"
	LogMsgTreeBuilt             = "template tree built"
	LogMsgTreeCacheHit          = "template tree cache hit"
	LogMsgTreeCacheStored       = "template tree cached"
	LogMsgRendererCreated       = "renderer created"
	LogMsgRenderStart           = "starting render"
	LogMsgRenderEnd             = "render complete"
	LogMsgPartialLoaded         = "partial loaded"
	LogMsgPartialMissing        = "partial not found, rendering empty"
	LogMsgLambdaInvoked         = "lambda invoked"
	LogMsgDataMiss              = "lookup missed"
	LogMsgRegistryCreated       = "registry created"
	LogMsgRegistryEntryAdded    = "registry entry added"
)

// Log field names
const (
	LogFieldSource     = "source_length"
	LogFieldTokens     = "token_count"
	LogFieldNodes      = "node_count"
	LogFieldTag        = "tag"
	LogFieldDelimiters = "delimiters"
	LogFieldCapacity   = "capacity"
	LogFieldEntries    = "entries"
	LogFieldPartial    = "partial"
	LogFieldDepth      = "depth"
	LogFieldPath       = "path"

	LogFieldRegistryEntry = "registry_entry"
)

// Error messages
const (
	ErrMsgUnclosedTag     = "unclosed tag"
	ErrMsgUnclosedSection = "unclosed section"
	ErrMsgUnopenedSection = "unopened section"
	ErrMsgInvalidTags     = "invalid tags"
	ErrMsgUnknownTemplate = "no template was found with the name"
	ErrMsgUndefined       = "is undefined"
	ErrMsgMaxRecursion    = "maximum recursion depth exceeded"
	ErrMsgLoaderFailed    = "template loader failed"
	ErrMsgLambdaFailed    = "lambda returned an error"

	ErrMsgInvalidRegistryEntry = "registry entry needs a name and functions"
	ErrMsgRegistryEntryExists  = "registry entry already exists"
)
