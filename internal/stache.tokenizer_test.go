package internal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenizer() *Tokenizer {
	return NewTokenizer(NewDelimiterTable(DefaultDelimiterCacheCapacity, nil), nil)
}

func TestTokenizer_Tokenize(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []Token
	}{
		{
			name:   "empty template",
			source: "",
			want:   []Token{},
		},
		{
			name:   "plain text",
			source: "hi",
			want:   []Token{{Type: TokenTypeText, Value: "hi", Start: 0, End: 2}},
		},
		{
			name:   "variable",
			source: "{{hi}}",
			want:   []Token{{Type: TokenTypeName, Value: "hi", Start: 0, End: 6}},
		},
		{
			name:   "inner spaces preserved, outer trimmed",
			source: "{{ hi . world }}",
			want:   []Token{{Type: TokenTypeName, Value: "hi . world", Start: 0, End: 16}},
		},
		{
			name:   "triple mustache",
			source: "{{{hi}}}",
			want:   []Token{{Type: TokenTypeUnescaped, Value: "hi", Start: 0, End: 8}},
		},
		{
			name:   "triple mustache with padding",
			source: "{{{ hi }}}",
			want:   []Token{{Type: TokenTypeUnescaped, Value: "hi", Start: 0, End: 10}},
		},
		{
			name:   "ampersand",
			source: "{{&hi}}",
			want:   []Token{{Type: TokenTypeUnescaped, Value: "hi", Start: 0, End: 7}},
		},
		{
			name:   "comment",
			source: "{{! hi }}",
			want:   []Token{{Type: TokenTypeComment, Value: "hi", Start: 0, End: 9}},
		},
		{
			name:   "partial",
			source: "{{> abc }}",
			want:   []Token{{Type: TokenTypePartial, Value: "abc", Start: 0, End: 10}},
		},
		{
			name:   "inline variable keeps surrounding whitespace",
			source: "a\n {{hi}} \nb",
			want: []Token{
				{Type: TokenTypeText, Value: "a\n ", Start: 0, End: 3},
				{Type: TokenTypeName, Value: "hi", Start: 3, End: 9},
				{Type: TokenTypeText, Value: " \nb", Start: 9, End: 12},
			},
		},
		{
			name:   "standalone comment line removed",
			source: "a\n {{!hi}} \nb",
			want: []Token{
				{Type: TokenTypeText, Value: "a\n", Start: 0, End: 2},
				{Type: TokenTypeComment, Value: "hi", Start: 3, End: 10},
				{Type: TokenTypeText, Value: "b", Start: 12, End: 13},
			},
		},
		{
			name:   "multiple lines",
			source: "{{a}}\n{{b}}\n\n{{#c}}\n{{/c}}\n",
			want: []Token{
				{Type: TokenTypeName, Value: "a", Start: 0, End: 5},
				{Type: TokenTypeText, Value: "\n", Start: 5, End: 6},
				{Type: TokenTypeName, Value: "b", Start: 6, End: 11},
				{Type: TokenTypeText, Value: "\n\n", Start: 11, End: 13},
				{Type: TokenTypeSection, Value: "c", Start: 13, End: 19, Delimiters: DefaultDelimiters()},
				{Type: TokenTypeSectionClose, Value: "c", Start: 20, End: 26},
			},
		},
		{
			name:   "set delimiters",
			source: "{{=<% %>=}}",
			want: []Token{
				{Type: TokenTypeSetDelimiters, Value: "<% %>", Start: 0, End: 11, Delimiters: DelimiterSet{Open: "<%", Close: "%>"}},
			},
		},
		{
			name:   "set delimiters with padding",
			source: "{{= <% %> =}}",
			want: []Token{
				{Type: TokenTypeSetDelimiters, Value: "<% %>", Start: 0, End: 13, Delimiters: DelimiterSet{Open: "<%", Close: "%>"}},
			},
		},
		{
			name:   "tag after set delimiters",
			source: "{{=<% %>=}}<%hi%>",
			want: []Token{
				{Type: TokenTypeSetDelimiters, Value: "<% %>", Start: 0, End: 11, Delimiters: DelimiterSet{Open: "<%", Close: "%>"}},
				{Type: TokenTypeName, Value: "hi", Start: 11, End: 17},
			},
		},
		{
			name:   "old delimiters are text after a change",
			source: "{{=| |=}}{{a}}|b|",
			want: []Token{
				{Type: TokenTypeSetDelimiters, Value: "| |", Start: 0, End: 9, Delimiters: DelimiterSet{Open: "|", Close: "|"}},
				{Type: TokenTypeText, Value: "{{a}}", Start: 9, End: 14},
				{Type: TokenTypeName, Value: "b", Start: 14, End: 17},
			},
		},
	}

	tokenizer := newTestTokenizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tokenizer.Tokenize(tt.source, DefaultDelimiters())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenizer_StandalonePartialIndent(t *testing.T) {
	tokenizer := newTestTokenizer()

	t.Run("standalone keeps indent", func(t *testing.T) {
		got, err := tokenizer.Tokenize("a\n  {{>p}}\nb", DefaultDelimiters())
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "a\n", got[0].Value)
		assert.Equal(t, TokenTypePartial, got[1].Type)
		assert.Equal(t, "  ", got[1].Indent)
		assert.Equal(t, "b", got[2].Value)
	})

	t.Run("inline has no indent", func(t *testing.T) {
		got, err := tokenizer.Tokenize("  {{>p}} x\n", DefaultDelimiters())
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "", got[1].Indent)
		assert.Equal(t, " x\n", got[2].Value)
	})

	t.Run("standalone at end of input", func(t *testing.T) {
		got, err := tokenizer.Tokenize("a\n\t{{>p}}", DefaultDelimiters())
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "\t", got[1].Indent)
	})
}

func TestTokenizer_LargeTaglessSource(t *testing.T) {
	source := strings.Repeat("ab\n", 200000)

	got, err := newTestTokenizer().Tokenize(source, DefaultDelimiters())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, source, got[0].Value)
	assert.Equal(t, 0, got[0].Start)
	assert.Equal(t, len(source), got[0].End)
}

func TestSquish(t *testing.T) {
	source := "ab\n  cd"
	text := func(start, end int) Token {
		return Token{Type: TokenTypeText, Value: source[start:end], Start: start, End: end}
	}

	tests := []struct {
		name    string
		tokens  []Token
		dropped []bool
		want    []Token
	}{
		{
			name:    "contiguous run is sliced from source",
			tokens:  []Token{text(0, 3), text(3, 5), text(5, 7)},
			dropped: []bool{false, false, false},
			want:    []Token{{Type: TokenTypeText, Value: "ab\n  c", Start: 0, End: 7}},
		},
		{
			name:    "gap from dropped token is joined",
			tokens:  []Token{text(0, 3), text(3, 5), text(5, 7), text(7, 8)},
			dropped: []bool{false, true, false, false},
			want:    []Token{{Type: TokenTypeText, Value: "ab\ncd", Start: 0, End: 8}},
		},
		{
			name: "tags split runs",
			tokens: []Token{
				text(0, 3),
				{Type: TokenTypeComment, Value: "x", Start: 3, End: 5},
				text(5, 7), text(7, 8),
			},
			dropped: []bool{false, false, false, false},
			want: []Token{
				{Type: TokenTypeText, Value: "ab\n", Start: 0, End: 3},
				{Type: TokenTypeComment, Value: "x", Start: 3, End: 5},
				{Type: TokenTypeText, Value: "cd", Start: 5, End: 8},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, squish(source, tt.tokens, tt.dropped))
		})
	}
}

func TestTokenizer_StandaloneWithoutNewline(t *testing.T) {
	tokenizer := newTestTokenizer()
	got, err := tokenizer.Tokenize("#{{#b}}\n/\n  {{/b}}", DefaultDelimiters())
	require.NoError(t, err)

	var text string
	for _, tok := range got {
		if tok.Type == TokenTypeText {
			text += tok.Value
		}
	}
	assert.Equal(t, "#\n/\n", text)
}

func TestTokenizer_Errors(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		delims     DelimiterSet
		wantKind   ParseErrorKind
		wantTag    string
		wantOffset int
		wantMsg    string
	}{
		{
			name:       "unclosed tag",
			source:     "My name is {{name",
			delims:     DefaultDelimiters(),
			wantKind:   ParseErrorUnclosedTag,
			wantOffset: 17,
			wantMsg:    "unclosed tag at 17",
		},
		{
			name:       "unclosed section",
			source:     "A list: {{#people}}{{name}}",
			delims:     DefaultDelimiters(),
			wantKind:   ParseErrorUnclosedSection,
			wantTag:    "people",
			wantOffset: 27,
			wantMsg:    "unclosed section 'people' at 27",
		},
		{
			name:       "unopened section",
			source:     "The end of the list! {{/people}}",
			delims:     DefaultDelimiters(),
			wantKind:   ParseErrorUnopenedSection,
			wantTag:    "people",
			wantOffset: 21,
			wantMsg:    "unopened section 'people' at 21",
		},
		{
			name:       "mismatched close",
			source:     "{{#Section}}Herp De Derp{{/wrongSection}}",
			delims:     DefaultDelimiters(),
			wantKind:   ParseErrorUnclosedSection,
			wantTag:    "Section",
			wantOffset: 24,
			wantMsg:    "unclosed section 'Section' at 24",
		},
		{
			name:     "invalid initial delimiters",
			source:   "{{a}}",
			delims:   DelimiterSet{Open: "{{"},
			wantKind: ParseErrorInvalidTags,
			wantMsg:  "invalid tags",
		},
		{
			name:     "set delimiters with one element",
			source:   "{{=<%=}}",
			delims:   DefaultDelimiters(),
			wantKind: ParseErrorInvalidTags,
			wantMsg:  "invalid tags",
		},
	}

	tokenizer := newTestTokenizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokenizer.Tokenize(tt.source, tt.delims)
			require.Error(t, err)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.wantKind, perr.Kind)
			assert.Equal(t, tt.wantTag, perr.Tag)
			if tt.wantKind != ParseErrorInvalidTags {
				assert.Equal(t, tt.wantOffset, perr.Offset)
			}
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestTokenizer_Parse_Nesting(t *testing.T) {
	tokenizer := newTestTokenizer()

	t.Run("empty section body on one line", func(t *testing.T) {
		tree, err := tokenizer.Parse("a\n{{#a}}{{/a}}\nb", DefaultDelimiters())
		require.NoError(t, err)
		require.Len(t, tree.Nodes, 3)

		text := tree.Nodes[0].(*TextNode)
		assert.Equal(t, "a\n", text.Content)

		section := tree.Nodes[1].(*SectionNode)
		assert.Equal(t, "a", section.Name)
		assert.Equal(t, 2, section.Start())
		assert.Equal(t, 8, section.End())
		assert.Equal(t, 8, section.BodyEnd)
		assert.Empty(t, section.Children)

		last := tree.Nodes[2].(*TextNode)
		assert.Equal(t, "b", last.Content)
		assert.Equal(t, 15, last.Start())
		assert.Equal(t, 16, last.End())
	})

	t.Run("standalone section lines", func(t *testing.T) {
		tree, err := tokenizer.Parse("a\n{{#a}}\n{{/a}}\nb", DefaultDelimiters())
		require.NoError(t, err)
		require.Len(t, tree.Nodes, 3)
		section := tree.Nodes[1].(*SectionNode)
		assert.Equal(t, 9, section.BodyEnd)
	})

	t.Run("nested sections", func(t *testing.T) {
		source := "{{#foo}}\n  {{#a}}\n    {{b}}\n  {{/a}}\n{{/foo}}\n"
		tree, err := tokenizer.Parse(source, DefaultDelimiters())
		require.NoError(t, err)
		require.Len(t, tree.Nodes, 1)

		foo := tree.Nodes[0].(*SectionNode)
		assert.Equal(t, "foo", foo.Name)
		assert.Equal(t, 0, foo.Start())
		assert.Equal(t, 8, foo.End())
		assert.Equal(t, 37, foo.BodyEnd)
		require.Len(t, foo.Children, 1)

		a := foo.Children[0].(*SectionNode)
		assert.Equal(t, 11, a.Start())
		assert.Equal(t, 17, a.End())
		assert.Equal(t, 30, a.BodyEnd)
		require.Len(t, a.Children, 3)

		indent := a.Children[0].(*TextNode)
		assert.Equal(t, "    ", indent.Content)
		assert.Equal(t, 18, indent.Start())
		assert.Equal(t, 22, indent.End())

		b := a.Children[1].(*InterpolationNode)
		assert.Equal(t, "b", b.Name)
		assert.True(t, b.Escape)
		assert.Equal(t, 22, b.Start())
		assert.Equal(t, 27, b.End())

		nl := a.Children[2].(*TextNode)
		assert.Equal(t, "\n", nl.Content)
		assert.Equal(t, 27, nl.Start())
		assert.Equal(t, 28, nl.End())

		assert.Equal(t, "\n  {{#a}}\n    {{b}}\n  {{/a}}\n", source[foo.End():foo.BodyEnd])
	})

	t.Run("inverted section records delimiters", func(t *testing.T) {
		tree, err := tokenizer.Parse("{{=| |=}}|^x|y|/x|", DefaultDelimiters())
		require.NoError(t, err)
		require.Len(t, tree.Nodes, 2)

		inv := tree.Nodes[1].(*InvertedSectionNode)
		assert.Equal(t, "x", inv.Name)
		assert.Equal(t, DelimiterSet{Open: "|", Close: "|"}, inv.Delimiters)
		assert.Equal(t, NodeTypeInvertedSection, inv.Type())
	})
}

func TestTokenizer_UsesDelimiterTable(t *testing.T) {
	table := NewDelimiterTable(4, nil)
	table.Clear()
	tokenizer := NewTokenizer(table, nil)

	_, err := tokenizer.Tokenize("{{=<% %>=}}<%a%>", DefaultDelimiters())
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.True(t, table.Contains(DelimiterSet{Open: "<%", Close: "%>"}))
}

func TestTree_Dump(t *testing.T) {
	tree, err := newTestTokenizer().Parse("{{#a}}x{{b}}{{/a}}", DefaultDelimiters())
	require.NoError(t, err)

	dump := tree.Dump()
	assert.Contains(t, dump, "Section(a, 2 children) [0,6)")
	assert.Contains(t, dump, "  Text(\"x\") [6,7)")
	assert.Contains(t, dump, "  Interpolation(b) [7,12)")
}
