package internal

import (
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// tokenTypeTriple is the transient type of a "{{{" tag before it becomes unescaped
const tokenTypeTriple TokenType = "{"

var (
	whitespacePattern = regexp.MustCompile(`\s*`)
	equalsPattern     = regexp.MustCompile(`\s*=`)
	curlyPattern      = regexp.MustCompile(`\s*\}`)
)

// Tokenizer turns template source into tokens and section trees
type Tokenizer struct {
	table  *DelimiterTable
	logger *zap.Logger
}

// NewTokenizer creates a tokenizer. A nil table selects the shared
// process-wide delimiter table.
func NewTokenizer(table *DelimiterTable, logger *zap.Logger) *Tokenizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if table == nil {
		table = SharedDelimiterTable()
	}
	logger.Debug(LogMsgTokenizerCreated)
	return &Tokenizer{table: table, logger: logger}
}

// tokenizeState carries the per-call bookkeeping for standalone lines
type tokenizeState struct {
	source  string
	tokens  []Token
	dropped []bool

	// text and partial tokens on the current line
	lineText     []int
	linePartials []int
	hasTag       bool
	nonSpace     bool
}

func (s *tokenizeState) emit(tok Token) int {
	s.tokens = append(s.tokens, tok)
	s.dropped = append(s.dropped, false)
	return len(s.tokens) - 1
}

func (s *tokenizeState) emitText(start, end int) {
	idx := s.emit(Token{Type: TokenTypeText, Value: s.source[start:end], Start: start, End: end})
	s.lineText = append(s.lineText, idx)
}

// lineIndent returns the text so far on the current line
func (s *tokenizeState) lineIndent() string {
	var sb strings.Builder
	for _, i := range s.lineText {
		sb.WriteString(s.tokens[i].Value)
	}
	return sb.String()
}

// endLine closes the current line. A line holding tags and nothing but
// whitespace otherwise is standalone: its text, including the newline,
// is dropped.
func (s *tokenizeState) endLine() {
	if s.hasTag && !s.nonSpace {
		for _, i := range s.lineText {
			s.dropped[i] = true
		}
	} else {
		for _, i := range s.linePartials {
			s.tokens[i].Indent = ""
		}
	}
	s.lineText = s.lineText[:0]
	s.linePartials = s.linePartials[:0]
	s.hasTag = false
	s.nonSpace = false
}

// scanText splits a run of literal text into per-line tokens
func (s *tokenizeState) scanText(value string, start int) {
	segStart := start
	for i, r := range value {
		if !unicode.IsSpace(r) {
			s.nonSpace = true
		}
		if r == CharNewline {
			s.emitText(segStart, start+i+1)
			segStart = start + i + 1
			s.endLine()
		}
	}
	if end := start + len(value); segStart < end {
		s.emitText(segStart, end)
	}
}

// Tokenize scans source with the given initial delimiters and returns the
// flat token list with standalone whitespace removed and adjacent text
// merged. Section balance is verified.
func (t *Tokenizer) Tokenize(source string, delims DelimiterSet) ([]Token, error) {
	t.logger.Debug(LogMsgTokenizerStart, zap.Int(LogFieldSource, len(source)))

	if err := delims.Validate(); err != nil {
		return nil, err
	}

	patterns := t.table.Get(delims)
	scanner := NewScanner(source)
	state := &tokenizeState{source: source}
	var sections []Token

	for !scanner.EOS() {
		textStart := scanner.Pos()
		if value := scanner.ScanUntil(patterns.Open); value != "" {
			state.scanText(value, textStart)
		}

		tagStart := scanner.Pos()
		if scanner.Scan(patterns.Open) == "" {
			break
		}
		firstOnLine := !state.hasTag
		state.hasTag = true

		tokType := TokenTypeName
		switch scanner.Peek() {
		case SigilSection, SigilInverted, SigilSectionClose, SigilPartial,
			SigilTripleMustache, SigilUnescaped, SigilSetDelimiters, SigilComment:
			tokType = TokenType(string(scanner.Peek()))
			scanner.Advance(1)
		}
		scanner.Scan(whitespacePattern)

		var value string
		switch tokType {
		case TokenTypeSetDelimiters:
			value = scanner.ScanUntil(equalsPattern)
			scanner.Scan(equalsPattern)
			scanner.ScanUntil(patterns.Close)
		case tokenTypeTriple:
			value = scanner.ScanUntil(patterns.Closing)
			scanner.Scan(curlyPattern)
			scanner.ScanUntil(patterns.Close)
			tokType = TokenTypeUnescaped
		default:
			value = scanner.ScanUntil(patterns.Close)
		}

		if scanner.Scan(patterns.Close) == "" {
			return nil, NewParseError(ParseErrorUnclosedTag, "", scanner.Pos())
		}

		tok := Token{Type: tokType, Value: value, Start: tagStart, End: scanner.Pos()}

		switch tokType {
		case TokenTypeSection, TokenTypeInverted:
			tok.Delimiters = patterns.Delimiters
			sections = append(sections, tok)
			state.emit(tok)
		case TokenTypeSectionClose:
			if len(sections) == 0 {
				return nil, NewParseError(ParseErrorUnopenedSection, value, tagStart)
			}
			opener := sections[len(sections)-1]
			sections = sections[:len(sections)-1]
			if opener.Value != value {
				return nil, NewParseError(ParseErrorUnclosedSection, opener.Value, tagStart)
			}
			state.emit(tok)
		case TokenTypeName, TokenTypeUnescaped:
			state.nonSpace = true
			state.emit(tok)
		case TokenTypePartial:
			if firstOnLine && !state.nonSpace {
				tok.Indent = state.lineIndent()
			}
			idx := state.emit(tok)
			state.linePartials = append(state.linePartials, idx)
		case TokenTypeSetDelimiters:
			next, err := ParseDelimiterSet(value)
			if err != nil {
				return nil, NewParseError(ParseErrorInvalidTags, "", tagStart)
			}
			tok.Delimiters = next
			patterns = t.table.Get(next)
			t.logger.Debug(LogMsgDelimitersChanged, zap.String(LogFieldDelimiters, next.String()))
			state.emit(tok)
		default:
			state.emit(tok)
		}
	}

	// the last line is standalone too when it holds only tags and whitespace
	state.endLine()

	if len(sections) > 0 {
		open := sections[len(sections)-1]
		return nil, NewParseError(ParseErrorUnclosedSection, open.Value, scanner.Pos())
	}

	tokens := squish(source, state.tokens, state.dropped)
	t.logger.Debug(LogMsgTokenizerEnd, zap.Int(LogFieldTokens, len(tokens)))
	return tokens, nil
}

// squish drops removed tokens and merges adjacent text tokens. Runs that are
// contiguous in source are re-sliced from it; runs with dropped whitespace
// between them are joined once, keeping the merge linear.
func squish(source string, tokens []Token, dropped []bool) []Token {
	out := make([]Token, 0, len(tokens))
	var pieces []string
	flush := func() {
		if pieces != nil {
			out[len(out)-1].Value = strings.Join(pieces, "")
			pieces = nil
		}
	}

	for i, tok := range tokens {
		if dropped[i] {
			continue
		}
		if n := len(out); n > 0 && tok.Type == TokenTypeText && out[n-1].Type == TokenTypeText {
			last := &out[n-1]
			if pieces == nil && last.End == tok.Start {
				last.End = tok.End
				last.Value = source[last.Start:last.End]
				continue
			}
			if pieces == nil {
				pieces = []string{last.Value}
			}
			pieces = append(pieces, tok.Value)
			last.End = tok.End
			continue
		}
		flush()
		out = append(out, tok)
	}
	flush()
	return out
}

// Parse tokenizes source and nests the tokens into a tree
func (t *Tokenizer) Parse(source string, delims DelimiterSet) (*Tree, error) {
	tokens, err := t.Tokenize(source, delims)
	if err != nil {
		return nil, err
	}
	nodes := Nest(tokens)
	t.logger.Debug(LogMsgTreeBuilt, zap.Int(LogFieldNodes, len(nodes)))
	return &Tree{Source: source, Delimiters: delims, Nodes: nodes}, nil
}

// Nest builds the node tree from a balanced token list. Children are
// collected before their section node is created, so every node is
// complete once constructed.
func Nest(tokens []Token) []Node {
	type frame struct {
		open     Token
		children []Node
	}
	stack := []*frame{{}}

	for _, tok := range tokens {
		top := stack[len(stack)-1]
		switch tok.Type {
		case TokenTypeSection, TokenTypeInverted:
			stack = append(stack, &frame{open: tok})
		case TokenTypeSectionClose:
			stack = stack[:len(stack)-1]
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, sectionNode(top.open, top.children, tok.Start))
		default:
			top.children = append(top.children, leafNode(tok))
		}
	}
	return stack[0].children
}

func sectionNode(open Token, children []Node, bodyEnd int) Node {
	if open.Type == TokenTypeInverted {
		return NewInvertedSectionNode(open.Value, children, open.Start, open.End, bodyEnd, open.Delimiters)
	}
	return NewSectionNode(open.Value, children, open.Start, open.End, bodyEnd, open.Delimiters)
}

func leafNode(tok Token) Node {
	switch tok.Type {
	case TokenTypeName:
		return NewInterpolationNode(tok.Value, true, tok.Start, tok.End)
	case TokenTypeUnescaped:
		return NewInterpolationNode(tok.Value, false, tok.Start, tok.End)
	case TokenTypePartial:
		return NewPartialNode(tok.Value, tok.Indent, tok.Start, tok.End)
	case TokenTypeComment:
		return NewCommentNode(tok.Value, tok.Start, tok.End)
	case TokenTypeSetDelimiters:
		return NewSetDelimitersNode(tok.Delimiters, tok.Start, tok.End)
	default:
		return NewTextNode(tok.Value, tok.Start, tok.End)
	}
}
