package internal

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// PartialLoader resolves partial names to template source
type PartialLoader interface {
	LoadPartial(ctx context.Context, name string) (string, bool, error)
}

// TreeParser produces trees from source. Both Tokenizer and TreeCache
// implement it.
type TreeParser interface {
	Parse(source string, delims DelimiterSet) (*Tree, error)
}

// RendererConfig holds renderer configuration options
type RendererConfig struct {
	Escaper               func(string) string // nil selects HTML escaping
	SkipEscape            bool
	MaxRecursionDepth     int // partial and lambda nesting limit (0 = default)
	IgnoreMissingPartials bool
}

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// HTMLEscape replaces &, <, >, " and ' with HTML entities
func HTMLEscape(s string) string {
	return htmlReplacer.Replace(s)
}

// DefaultRendererConfig returns the default renderer configuration
func DefaultRendererConfig() RendererConfig {
	return RendererConfig{
		Escaper:           HTMLEscape,
		MaxRecursionDepth: DefaultMaxRecursionDepth,
	}
}

// Renderer walks a tree against a context stack and produces output
type Renderer struct {
	tokenizer *Tokenizer
	parser    TreeParser
	partials  PartialLoader
	config    RendererConfig
	logger    *zap.Logger
}

// NewRenderer creates a renderer. Partials are parsed through parser so they
// can be cached; lambda output is always parsed fresh with tokenizer.
func NewRenderer(tokenizer *Tokenizer, parser TreeParser, partials PartialLoader, config RendererConfig, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if parser == nil {
		parser = tokenizer
	}
	if config.Escaper == nil {
		config.Escaper = HTMLEscape
	}
	if config.MaxRecursionDepth <= 0 {
		config.MaxRecursionDepth = DefaultMaxRecursionDepth
	}
	logger.Debug(LogMsgRendererCreated)
	return &Renderer{
		tokenizer: tokenizer,
		parser:    parser,
		partials:  partials,
		config:    config,
		logger:    logger,
	}
}

// renderCall is the state shared by one top-level Render invocation
type renderCall struct {
	ctx       context.Context
	overrides map[string]string
}

// Render produces the output for tree with frame as the context stack.
// Partials named in overrides take precedence over the partial loader.
func (r *Renderer) Render(ctx context.Context, tree *Tree, frame *Frame, overrides map[string]string) (string, error) {
	r.logger.Debug(LogMsgRenderStart, zap.Int(LogFieldNodes, len(tree.Nodes)))

	call := &renderCall{ctx: ctx, overrides: overrides}
	var sb strings.Builder
	sb.Grow(len(tree.Source))
	if err := r.renderNodes(call, tree, tree.Nodes, frame, 0, &sb); err != nil {
		return "", err
	}

	r.logger.Debug(LogMsgRenderEnd)
	return sb.String(), nil
}

func (r *Renderer) renderNodes(call *renderCall, tree *Tree, nodes []Node, frame *Frame, depth int, sb *strings.Builder) error {
	if err := call.ctx.Err(); err != nil {
		return err
	}

	for _, node := range nodes {
		var err error
		switch n := node.(type) {
		case *TextNode:
			sb.WriteString(n.Content)
		case *InterpolationNode:
			err = r.renderInterpolation(call, n, frame, depth, sb)
		case *SectionNode:
			err = r.renderSection(call, tree, n, frame, depth, sb)
		case *InvertedSectionNode:
			err = r.renderInverted(call, tree, n, frame, depth, sb)
		case *PartialNode:
			err = r.renderPartial(call, n, frame, depth, sb)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) write(sb *strings.Builder, s string, escape bool) {
	if escape && !r.config.SkipEscape {
		s = r.config.Escaper(s)
	}
	sb.WriteString(s)
}

func (r *Renderer) renderInterpolation(call *renderCall, n *InterpolationNode, frame *Frame, depth int, sb *strings.Builder) error {
	value, found, err := frame.Lookup(n.Name)
	if err != nil || !found {
		return err
	}

	fn, ok := interpolationLambda(value)
	if !ok {
		r.write(sb, Stringify(value), n.Escape)
		return nil
	}

	r.logger.Debug(LogMsgLambdaInvoked, zap.String(LogFieldTag, n.Name))
	out, err := fn()
	if err != nil {
		return &LambdaError{Tag: n.Name, Cause: err}
	}
	// lambda output is a template in the default delimiters
	rendered, err := r.renderLambdaOutput(call, n.Name, out, DefaultDelimiters(), frame, depth)
	if err != nil {
		return err
	}
	r.write(sb, rendered, n.Escape)
	return nil
}

func (r *Renderer) renderSection(call *renderCall, tree *Tree, n *SectionNode, frame *Frame, depth int, sb *strings.Builder) error {
	value, found, err := frame.Lookup(n.Name)
	if err != nil || !found {
		return err
	}

	if fn, ok := sectionLambda(value); ok {
		r.logger.Debug(LogMsgLambdaInvoked, zap.String(LogFieldTag, n.Name))
		out, err := fn(tree.Source[n.End():n.BodyEnd])
		if err != nil {
			return &LambdaError{Tag: n.Name, Cause: err}
		}
		// section lambda output keeps the delimiters in effect at the tag
		rendered, err := r.renderLambdaOutput(call, n.Name, out, n.Delimiters, frame, depth)
		if err != nil {
			return err
		}
		sb.WriteString(rendered)
		return nil
	}

	value, err = callValue(value)
	if err != nil {
		return &LambdaError{Tag: n.Name, Cause: err}
	}

	if seq, ok := frame.Registry().Enumerate(value); ok {
		for item := range seq {
			if err := r.renderNodes(call, tree, n.Children, frame.Push(item), depth, sb); err != nil {
				return err
			}
		}
		return nil
	}

	if frame.IsTruthy(value) {
		return r.renderNodes(call, tree, n.Children, frame.Push(value), depth, sb)
	}
	return nil
}

func (r *Renderer) renderInverted(call *renderCall, tree *Tree, n *InvertedSectionNode, frame *Frame, depth int, sb *strings.Builder) error {
	value, found, err := frame.Lookup(n.Name)
	if err != nil {
		return err
	}
	if found && frame.IsTruthy(value) {
		return nil
	}
	return r.renderNodes(call, tree, n.Children, frame, depth, sb)
}

func (r *Renderer) renderLambdaOutput(call *renderCall, name, source string, delims DelimiterSet, frame *Frame, depth int) (string, error) {
	if depth+1 > r.config.MaxRecursionDepth {
		return "", &RecursionError{Name: name, Depth: r.config.MaxRecursionDepth}
	}
	tree, err := r.tokenizer.Parse(source, delims)
	if err != nil {
		return "", annotateParseError(err, name, source)
	}
	var sb strings.Builder
	if err := r.renderNodes(call, tree, tree.Nodes, frame, depth+1, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (r *Renderer) renderPartial(call *renderCall, n *PartialNode, frame *Frame, depth int, sb *strings.Builder) error {
	if depth+1 > r.config.MaxRecursionDepth {
		return &RecursionError{Name: n.Name, Depth: r.config.MaxRecursionDepth}
	}

	source, ok, err := r.loadPartial(call, n.Name)
	if err != nil {
		return &LoaderError{Name: n.Name, Cause: err}
	}
	if !ok {
		if r.config.IgnoreMissingPartials {
			r.logger.Debug(LogMsgPartialMissing, zap.String(LogFieldPartial, n.Name))
			return nil
		}
		return &UnknownTemplateError{Name: n.Name}
	}
	r.logger.Debug(LogMsgPartialLoaded,
		zap.String(LogFieldPartial, n.Name),
		zap.Int(LogFieldDepth, depth+1))

	if n.Indent != "" {
		source = IndentLines(source, n.Indent)
	}
	tree, err := r.parser.Parse(source, DefaultDelimiters())
	if err != nil {
		return annotateParseError(err, n.Name, source)
	}
	return r.renderNodes(call, tree, tree.Nodes, frame, depth+1, sb)
}

func (r *Renderer) loadPartial(call *renderCall, name string) (string, bool, error) {
	if source, ok := call.overrides[name]; ok {
		return source, true, nil
	}
	if r.partials == nil {
		return "", false, nil
	}
	return r.partials.LoadPartial(call.ctx, name)
}

// annotateParseError records which nested source failed to parse. The
// innermost annotation wins.
func annotateParseError(err error, name, source string) error {
	var parseErr *ParseError
	if errors.As(err, &parseErr) && parseErr.Source == "" {
		parseErr.Partial = name
		parseErr.Source = source
	}
	return err
}

// IndentLines prefixes every line of source that has content with indent
func IndentLines(source, indent string) string {
	lines := strings.SplitAfter(source, StrNewline)
	var sb strings.Builder
	sb.Grow(len(source) + len(lines)*len(indent))
	for _, line := range lines {
		if strings.TrimRight(line, "\r\n") != "" {
			sb.WriteString(indent)
		}
		sb.WriteString(line)
	}
	return sb.String()
}
