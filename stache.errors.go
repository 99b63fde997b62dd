package stache

import (
	"errors"
	"strconv"

	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-stache/internal"
)

// Error message constants
const (
	ErrMsgUnclosedTag        = internal.ErrMsgUnclosedTag
	ErrMsgUnclosedSection    = internal.ErrMsgUnclosedSection
	ErrMsgUnopenedSection    = internal.ErrMsgUnopenedSection
	ErrMsgInvalidTags        = internal.ErrMsgInvalidTags
	ErrMsgUnknownTemplate    = internal.ErrMsgUnknownTemplate
	ErrMsgUndefined          = internal.ErrMsgUndefined
	ErrMsgMaxRecursion       = internal.ErrMsgMaxRecursion
	ErrMsgLoaderFailed       = internal.ErrMsgLoaderFailed
	ErrMsgLambdaFailed       = internal.ErrMsgLambdaFailed
	ErrMsgRegistryFailed     = "registry update failed"
	ErrMsgRenderFailed       = "template rendering failed"
	ErrMsgPathEscapesRoot    = "template path escapes loader root"
	ErrMsgEmptyTemplateName  = "template name cannot be empty"
	ErrMsgReadTemplate       = "failed to read template file"
	ErrMsgLoaderClosed       = "template loader is closed"
	ErrMsgFileLoaderRootStat = "file loader root is not a directory"
	ErrMsgInvalidPathPattern = "invalid file loader path pattern"

	ErrMsgPostgresEmptyConnString  = "PostgreSQL connection string is empty"
	ErrMsgPostgresConnectionFailed = "failed to connect to PostgreSQL"
	ErrMsgPostgresQueryFailed      = "PostgreSQL query failed"
	ErrMsgPostgresMigrationFailed  = "PostgreSQL migration failed"
)

// Error code constants for categorization
const (
	ErrCodeParse    = "STACHE_PARSE"
	ErrCodeRender   = "STACHE_RENDER"
	ErrCodeLoader   = "STACHE_LOADER"
	ErrCodeRegistry = "STACHE_REGISTRY"
)

// Typed errors produced while parsing and rendering. Errors returned by the
// engine wrap these, so errors.As finds both the *cuserr.CustomError and the
// typed error underneath.
type (
	ParseError           = internal.ParseError
	ParseErrorKind       = internal.ParseErrorKind
	UnknownTemplateError = internal.UnknownTemplateError
	DataMissError        = internal.DataMissError
	RecursionError       = internal.RecursionError
	LoaderError          = internal.LoaderError
	LambdaError          = internal.LambdaError
	RegistryError        = internal.RegistryError
	Position             = internal.Position
)

// Parse error kinds
const (
	ParseErrorUnclosedTag     = internal.ParseErrorUnclosedTag
	ParseErrorUnclosedSection = internal.ParseErrorUnclosedSection
	ParseErrorUnopenedSection = internal.ParseErrorUnopenedSection
	ParseErrorInvalidTags     = internal.ParseErrorInvalidTags
)

// NewParseError wraps a tokenizer error with its location in source
func NewParseError(err *ParseError, source, templateName string) error {
	if err.Source != "" {
		source, templateName = err.Source, err.Partial
	}
	pos := internal.PositionAt(source, err.Offset)
	cerr := cuserr.WrapStdError(err, ErrCodeParse, err.Error()).
		WithMetadata(MetaKeyKind, string(err.Kind)).
		WithMetadata(MetaKeyOffset, strconv.Itoa(pos.Offset)).
		WithMetadata(MetaKeyLine, strconv.Itoa(pos.Line)).
		WithMetadata(MetaKeyColumn, strconv.Itoa(pos.Column))
	if err.Tag != "" {
		cerr = cerr.WithMetadata(MetaKeyTag, err.Tag)
	}
	if templateName != "" {
		cerr = cerr.WithMetadata(MetaKeyTemplate, templateName)
	}
	return cerr
}

// NewUnknownTemplateError creates an error for a template or partial that no loader knows
func NewUnknownTemplateError(name string) error {
	unknownErr := &UnknownTemplateError{Name: name}
	return cuserr.WrapStdError(unknownErr, ErrCodeRender, unknownErr.Error()).
		WithMetadata(MetaKeyTemplate, name)
}

// NewDataMissError creates an error for an unresolved name in strict mode
func NewDataMissError(path string) error {
	missErr := &DataMissError{Path: path}
	return cuserr.WrapStdError(missErr, ErrCodeRender, missErr.Error()).
		WithMetadata(MetaKeyPath, path)
}

// NewRecursionError creates an error for partial or lambda nesting beyond the limit
func NewRecursionError(name string, depth int) error {
	return cuserr.WrapStdError(&RecursionError{Name: name, Depth: depth}, ErrCodeRender, ErrMsgMaxRecursion).
		WithMetadata(MetaKeyTemplate, name).
		WithMetadata(MetaKeyDepth, strconv.Itoa(depth))
}

// NewLoaderError creates an error for a loader that failed with an I/O error
func NewLoaderError(name string, cause error) error {
	return cuserr.WrapStdError(&LoaderError{Name: name, Cause: cause}, ErrCodeLoader, ErrMsgLoaderFailed).
		WithMetadata(MetaKeyTemplate, name)
}

// NewLambdaError creates an error for a lambda that returned an error
func NewLambdaError(tag string, cause error) error {
	return cuserr.WrapStdError(&LambdaError{Tag: tag, Cause: cause}, ErrCodeRender, ErrMsgLambdaFailed).
		WithMetadata(MetaKeyTag, tag)
}

// NewRegistryError wraps a failed registry update
func NewRegistryError(cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeRegistry, ErrMsgRegistryFailed)
}

// convertError maps internal errors to public cuserr errors. source is the
// text that was being processed when err was raised.
func convertError(err error, source, templateName string) error {
	if err == nil {
		return nil
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return NewParseError(parseErr, source, templateName)
	}
	var unknownErr *UnknownTemplateError
	if errors.As(err, &unknownErr) {
		return NewUnknownTemplateError(unknownErr.Name)
	}
	var missErr *DataMissError
	if errors.As(err, &missErr) {
		return NewDataMissError(missErr.Path)
	}
	var recursionErr *RecursionError
	if errors.As(err, &recursionErr) {
		return NewRecursionError(recursionErr.Name, recursionErr.Depth)
	}
	var loaderErr *LoaderError
	if errors.As(err, &loaderErr) {
		return NewLoaderError(loaderErr.Name, loaderErr.Cause)
	}
	var lambdaErr *LambdaError
	if errors.As(err, &lambdaErr) {
		return NewLambdaError(lambdaErr.Tag, lambdaErr.Cause)
	}

	var customErr *cuserr.CustomError
	if errors.As(err, &customErr) {
		return err
	}
	// context cancellation and anything else surface as render failures
	return cuserr.WrapStdError(err, ErrCodeRender, ErrMsgRenderFailed).
		WithMetadata(MetaKeyTemplate, templateName)
}

// ParseErrorInfo describes a parse failure for reporting
type ParseErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Tag     string `json:"tag,omitempty"`
	Offset  int    `json:"offset"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Partial string `json:"partial,omitempty"`
}

// AsParseError extracts location details from a parse failure returned by
// Parse, Validate or Render. source must be the text that was parsed.
func AsParseError(err error, source string) (ParseErrorInfo, bool) {
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		return ParseErrorInfo{}, false
	}
	if parseErr.Source != "" {
		source = parseErr.Source
	}
	pos := internal.PositionAt(source, parseErr.Offset)
	return ParseErrorInfo{
		Kind:    string(parseErr.Kind),
		Message: parseErr.Error(),
		Tag:     parseErr.Tag,
		Offset:  pos.Offset,
		Line:    pos.Line,
		Column:  pos.Column,
		Partial: parseErr.Partial,
	}, true
}
