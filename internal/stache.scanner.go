package internal

import "regexp"

// Scanner is a cursor over template source that consumes regexp matches
type Scanner struct {
	source string
	pos    int
}

// NewScanner creates a scanner positioned at the start of source
func NewScanner(source string) *Scanner {
	return &Scanner{source: source}
}

// Pos returns the current byte offset
func (s *Scanner) Pos() int {
	return s.pos
}

// EOS reports whether the whole source has been consumed
func (s *Scanner) EOS() bool {
	return s.pos >= len(s.source)
}

// Tail returns the unconsumed remainder
func (s *Scanner) Tail() string {
	return s.source[s.pos:]
}

// Scan consumes and returns the match of re when it starts at the current
// position. Otherwise nothing is consumed and "" is returned.
func (s *Scanner) Scan(re *regexp.Regexp) string {
	loc := re.FindStringIndex(s.Tail())
	if loc == nil || loc[0] != 0 {
		return ""
	}
	match := s.source[s.pos : s.pos+loc[1]]
	s.pos += loc[1]
	return match
}

// ScanUntil consumes and returns everything before the next match of re.
// Without a match the rest of the source is consumed.
func (s *Scanner) ScanUntil(re *regexp.Regexp) string {
	tail := s.Tail()
	loc := re.FindStringIndex(tail)
	if loc == nil {
		s.pos = len(s.source)
		return tail
	}
	s.pos += loc[0]
	return tail[:loc[0]]
}

// Peek returns the byte at the current position, or 0 at the end
func (s *Scanner) Peek() byte {
	if s.EOS() {
		return 0
	}
	return s.source[s.pos]
}

// Advance consumes n bytes
func (s *Scanner) Advance(n int) {
	s.pos = min(s.pos+n, len(s.source))
}
