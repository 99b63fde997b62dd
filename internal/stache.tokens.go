package internal

import "fmt"

// Token is a flat scanned element. Start and End are byte offsets with End
// exclusive; for tags they cover the delimiters.
type Token struct {
	Type  TokenType
	Value string
	Start int
	End   int

	// Delimiters active when a section tag was scanned
	Delimiters DelimiterSet
	// Indent is the whitespace preceding a standalone partial tag
	Indent string
}

// String returns a human-readable representation of the token
func (t Token) String() string {
	return fmt.Sprintf("Token{%s: %q [%d,%d)}", t.Type, t.Value, t.Start, t.End)
}

// IsSectionOpen reports whether the token opens a section or inverted section
func (t Token) IsSectionOpen() bool {
	return t.Type == TokenTypeSection || t.Type == TokenTypeInverted
}
