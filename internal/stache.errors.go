package internal

import (
	"fmt"
	"strings"
)

// Position is a location in template source
type Position struct {
	Offset int // Byte offset from start
	Line   int // 1-indexed line number
	Column int // 1-indexed column number
}

// String returns a human-readable position string
func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// PositionAt computes the line and column of a byte offset in source
func PositionAt(source string, offset int) Position {
	offset = min(max(offset, 0), len(source))
	prefix := source[:offset]
	line := strings.Count(prefix, StrNewline) + 1
	column := offset + 1
	if i := strings.LastIndexByte(prefix, CharNewline); i >= 0 {
		column = offset - i
	}
	return Position{Offset: offset, Line: line, Column: column}
}

// ParseErrorKind classifies tokenizer failures
type ParseErrorKind string

// Parse error kinds
const (
	ParseErrorUnclosedTag     ParseErrorKind = "unclosed_tag"
	ParseErrorUnclosedSection ParseErrorKind = "unclosed_section"
	ParseErrorUnopenedSection ParseErrorKind = "unopened_section"
	ParseErrorInvalidTags     ParseErrorKind = "invalid_tags"
)

// ParseError is returned by the tokenizer. Offset is a byte offset into the
// source that was being tokenized. Partial is set by the renderer when the
// failing source was a partial or lambda output, and Source then holds it.
type ParseError struct {
	Kind   ParseErrorKind
	Tag    string
	Offset int

	Partial string
	Source  string
}

// NewParseError creates a parse error
func NewParseError(kind ParseErrorKind, tag string, offset int) *ParseError {
	return &ParseError{Kind: kind, Tag: tag, Offset: offset}
}

// Message returns the error text without location
func (e *ParseError) Message() string {
	switch e.Kind {
	case ParseErrorUnclosedTag:
		return ErrMsgUnclosedTag
	case ParseErrorUnclosedSection:
		return ErrMsgUnclosedSection
	case ParseErrorUnopenedSection:
		return ErrMsgUnopenedSection
	default:
		return ErrMsgInvalidTags
	}
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case ParseErrorInvalidTags:
		return ErrMsgInvalidTags
	case ParseErrorUnclosedTag:
		return fmt.Sprintf("%s at %d", ErrMsgUnclosedTag, e.Offset)
	default:
		return fmt.Sprintf("%s '%s' at %d", e.Message(), e.Tag, e.Offset)
	}
}

// UnknownTemplateError is returned when a loader cannot find a template
type UnknownTemplateError struct {
	Name string
}

func (e *UnknownTemplateError) Error() string {
	return fmt.Sprintf("%s '%s'", ErrMsgUnknownTemplate, e.Name)
}

// DataMissError is returned when a lookup fails and misses are fatal
type DataMissError struct {
	Path string
}

func (e *DataMissError) Error() string {
	return fmt.Sprintf("'%s' %s", e.Path, ErrMsgUndefined)
}

// RecursionError is returned when partial or lambda nesting exceeds the limit
type RecursionError struct {
	Name  string
	Depth int
}

func (e *RecursionError) Error() string {
	return fmt.Sprintf("%s (%d) rendering '%s'", ErrMsgMaxRecursion, e.Depth, e.Name)
}

// LoaderError wraps a failure reported by a template loader
type LoaderError struct {
	Name  string
	Cause error
}

func (e *LoaderError) Error() string {
	return fmt.Sprintf("%s for '%s': %v", ErrMsgLoaderFailed, e.Name, e.Cause)
}

func (e *LoaderError) Unwrap() error {
	return e.Cause
}

// LambdaError wraps an error returned by a user lambda
type LambdaError struct {
	Tag   string
	Cause error
}

func (e *LambdaError) Error() string {
	return fmt.Sprintf("%s in '%s': %v", ErrMsgLambdaFailed, e.Tag, e.Cause)
}

func (e *LambdaError) Unwrap() error {
	return e.Cause
}
