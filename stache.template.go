package stache

import (
	"context"

	"github.com/itsatony/go-stache/internal"
	"go.uber.org/zap"
)

// Template is a parsed template that can be rendered many times, concurrently.
type Template struct {
	engine *Engine
	name   string
	source string
	tree   *internal.Tree
}

func newTemplate(engine *Engine, name string, tree *internal.Tree) *Template {
	return &Template{
		engine: engine,
		name:   name,
		source: tree.Source,
		tree:   tree,
	}
}

// Render renders the template with data as the root context.
func (t *Template) Render(ctx context.Context, data any) (string, error) {
	return t.RenderWithPartials(ctx, data, nil)
}

// RenderWithPartials renders the template; partials found in the map take
// precedence over registered templates and the partial loader.
func (t *Template) RenderWithPartials(ctx context.Context, data any, partials map[string]string) (string, error) {
	e := t.engine
	frame := internal.NewFrame(data, e.registry, e.lookupOptions(), e.logger)
	output, err := e.renderer.Render(ctx, t.tree, frame, partials)
	if err != nil {
		e.logger.Debug(LogMsgRenderFailed, zap.String(LogFieldTemplate, t.name), zap.Error(err))
		return "", convertError(err, t.source, t.name)
	}
	return output, nil
}

// Name returns the registered or loaded name, or "" for literal templates.
func (t *Template) Name() string {
	return t.name
}

// Source returns the template text.
func (t *Template) Source() string {
	return t.source
}

// Delimiters returns the delimiters the template was parsed with.
func (t *Template) Delimiters() DelimiterSet {
	return t.tree.Delimiters
}

// Dump returns an indented outline of the parsed tree, one node per line.
func (t *Template) Dump() string {
	return t.tree.Dump()
}

// TokenInfo describes one node of a parsed template. Start and End are byte
// offsets into the source; End is exclusive.
type TokenInfo struct {
	Type     string      `json:"type" yaml:"type"`
	Value    string      `json:"value,omitempty" yaml:"value,omitempty"`
	Start    int         `json:"start" yaml:"start"`
	End      int         `json:"end" yaml:"end"`
	Escape   bool        `json:"escape,omitempty" yaml:"escape,omitempty"`
	Indent   string      `json:"indent,omitempty" yaml:"indent,omitempty"`
	Children []TokenInfo `json:"children,omitempty" yaml:"children,omitempty"`
}

// Tokens returns the nested token tree of the template.
func (t *Template) Tokens() []TokenInfo {
	return tokenInfos(t.tree.Nodes)
}

func tokenInfos(nodes []internal.Node) []TokenInfo {
	if len(nodes) == 0 {
		return nil
	}
	infos := make([]TokenInfo, 0, len(nodes))
	for _, n := range nodes {
		info := TokenInfo{
			Type:  n.Type().String(),
			Start: n.Start(),
			End:   n.End(),
		}
		switch v := n.(type) {
		case *internal.TextNode:
			info.Value = v.Content
		case *internal.InterpolationNode:
			info.Value = v.Name
			info.Escape = v.Escape
		case *internal.SectionNode:
			info.Value = v.Name
		case *internal.InvertedSectionNode:
			info.Value = v.Name
		case *internal.PartialNode:
			info.Value = v.Name
			info.Indent = v.Indent
		case *internal.CommentNode:
			info.Value = v.Content
		case *internal.SetDelimitersNode:
			info.Value = v.Delimiters.String()
		}
		info.Children = tokenInfos(internal.ChildrenOf(n))
		infos = append(infos, info)
	}
	return infos
}
