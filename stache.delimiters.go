package stache

import "github.com/itsatony/go-stache/internal"

// DelimiterSet is a pair of tag markers such as "{{" and "}}"
type DelimiterSet = internal.DelimiterSet

// DefaultDelimiters returns the "{{" "}}" delimiter set
func DefaultDelimiters() DelimiterSet {
	return internal.DefaultDelimiters()
}

// ParseDelimiterSet parses "open close" as used in a {{=open close=}} tag
func ParseDelimiterSet(value string) (DelimiterSet, error) {
	return internal.ParseDelimiterSet(value)
}

// SetDelimiterCacheCapacity bounds the process-wide table of compiled
// delimiter patterns. Shrinking evicts entries immediately.
func SetDelimiterCacheCapacity(capacity int) {
	internal.SharedDelimiterTable().SetCapacity(capacity)
}

// DelimiterCacheCapacity returns the bound of the process-wide delimiter table
func DelimiterCacheCapacity() int {
	return internal.SharedDelimiterTable().Capacity()
}

// DelimiterCacheLen returns the number of delimiter sets currently compiled
func DelimiterCacheLen() int {
	return internal.SharedDelimiterTable().Len()
}

// Escaper transforms the text of escaped interpolation tags
type Escaper func(string) string

// HTMLEscaper escapes &, <, >, " and ' as HTML entities
func HTMLEscaper(s string) string {
	return internal.HTMLEscape(s)
}

// NoEscaper returns its input unchanged
func NoEscaper(s string) string {
	return s
}
