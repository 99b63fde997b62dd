package internal

import (
	"fmt"
	"strings"
)

// NodeType identifies tree node types
type NodeType int

// Node type constants
const (
	NodeTypeText NodeType = iota
	NodeTypeInterpolation
	NodeTypeSection
	NodeTypeInvertedSection
	NodeTypePartial
	NodeTypeComment
	NodeTypeSetDelimiters
)

// Node type string names for debugging
const (
	NodeTypeNameText            = "TEXT"
	NodeTypeNameInterpolation   = "INTERPOLATION"
	NodeTypeNameSection         = "SECTION"
	NodeTypeNameInvertedSection = "INVERTED_SECTION"
	NodeTypeNamePartial         = "PARTIAL"
	NodeTypeNameComment         = "COMMENT"
	NodeTypeNameSetDelimiters   = "SET_DELIMITERS"
	NodeTypeNameUnknown         = "UNKNOWN"
)

// String returns the string representation of the node type
func (n NodeType) String() string {
	switch n {
	case NodeTypeText:
		return NodeTypeNameText
	case NodeTypeInterpolation:
		return NodeTypeNameInterpolation
	case NodeTypeSection:
		return NodeTypeNameSection
	case NodeTypeInvertedSection:
		return NodeTypeNameInvertedSection
	case NodeTypePartial:
		return NodeTypeNamePartial
	case NodeTypeComment:
		return NodeTypeNameComment
	case NodeTypeSetDelimiters:
		return NodeTypeNameSetDelimiters
	default:
		return NodeTypeNameUnknown
	}
}

// Node is an element of a parsed template tree. Trees are immutable once
// built and may be shared across goroutines.
type Node interface {
	Type() NodeType
	Start() int
	End() int
	String() string
}

type span struct {
	start int
	end   int
}

func (s span) Start() int { return s.start }
func (s span) End() int   { return s.end }

// TextNode is literal output
type TextNode struct {
	span
	Content string
}

// NewTextNode creates a text node
func NewTextNode(content string, start, end int) *TextNode {
	return &TextNode{span: span{start, end}, Content: content}
}

func (n *TextNode) Type() NodeType { return NodeTypeText }

func (n *TextNode) String() string {
	return fmt.Sprintf("Text(%q)", n.Content)
}

// InterpolationNode outputs a looked-up value, escaped unless Escape is false
type InterpolationNode struct {
	span
	Name   string
	Escape bool
}

// NewInterpolationNode creates an interpolation node
func NewInterpolationNode(name string, escape bool, start, end int) *InterpolationNode {
	return &InterpolationNode{span: span{start, end}, Name: name, Escape: escape}
}

func (n *InterpolationNode) Type() NodeType { return NodeTypeInterpolation }

func (n *InterpolationNode) String() string {
	if n.Escape {
		return fmt.Sprintf("Interpolation(%s)", n.Name)
	}
	return fmt.Sprintf("Unescaped(%s)", n.Name)
}

// block holds what sections and inverted sections share
type block struct {
	span
	Name     string
	Children []Node
	// BodyEnd is the offset of the closing tag; the raw body is
	// source[End():BodyEnd].
	BodyEnd    int
	Delimiters DelimiterSet
}

// SectionNode renders its children for truthy values and once per element
// of enumerable values.
type SectionNode struct {
	block
}

// NewSectionNode creates a section node
func NewSectionNode(name string, children []Node, start, end, bodyEnd int, delims DelimiterSet) *SectionNode {
	return &SectionNode{block{span: span{start, end}, Name: name, Children: children, BodyEnd: bodyEnd, Delimiters: delims}}
}

func (n *SectionNode) Type() NodeType { return NodeTypeSection }

func (n *SectionNode) String() string {
	return fmt.Sprintf("Section(%s, %d children)", n.Name, len(n.Children))
}

// InvertedSectionNode renders its children when the value is missing or falsy
type InvertedSectionNode struct {
	block
}

// NewInvertedSectionNode creates an inverted section node
func NewInvertedSectionNode(name string, children []Node, start, end, bodyEnd int, delims DelimiterSet) *InvertedSectionNode {
	return &InvertedSectionNode{block{span: span{start, end}, Name: name, Children: children, BodyEnd: bodyEnd, Delimiters: delims}}
}

func (n *InvertedSectionNode) Type() NodeType { return NodeTypeInvertedSection }

func (n *InvertedSectionNode) String() string {
	return fmt.Sprintf("InvertedSection(%s, %d children)", n.Name, len(n.Children))
}

// PartialNode includes another template by name
type PartialNode struct {
	span
	Name   string
	Indent string
}

// NewPartialNode creates a partial node
func NewPartialNode(name, indent string, start, end int) *PartialNode {
	return &PartialNode{span: span{start, end}, Name: name, Indent: indent}
}

func (n *PartialNode) Type() NodeType { return NodeTypePartial }

func (n *PartialNode) String() string {
	return fmt.Sprintf("Partial(%s)", n.Name)
}

// CommentNode produces no output
type CommentNode struct {
	span
	Content string
}

// NewCommentNode creates a comment node
func NewCommentNode(content string, start, end int) *CommentNode {
	return &CommentNode{span: span{start, end}, Content: content}
}

func (n *CommentNode) Type() NodeType { return NodeTypeComment }

func (n *CommentNode) String() string {
	return fmt.Sprintf("Comment(%q)", n.Content)
}

// SetDelimitersNode records a delimiter change; it produces no output
type SetDelimitersNode struct {
	span
	Delimiters DelimiterSet
}

// NewSetDelimitersNode creates a set-delimiters node
func NewSetDelimitersNode(delims DelimiterSet, start, end int) *SetDelimitersNode {
	return &SetDelimitersNode{span: span{start, end}, Delimiters: delims}
}

func (n *SetDelimitersNode) Type() NodeType { return NodeTypeSetDelimiters }

func (n *SetDelimitersNode) String() string {
	return fmt.Sprintf("SetDelimiters(%s)", n.Delimiters)
}

// Tree is a parsed template together with the source it was parsed from.
// Lambda sections slice raw text out of Source.
type Tree struct {
	Source     string
	Delimiters DelimiterSet
	Nodes      []Node
}

// Dump returns an indented, one node per line outline of the tree
func (t *Tree) Dump() string {
	var sb strings.Builder
	dumpNodes(&sb, t.Nodes, 0)
	return sb.String()
}

func dumpNodes(sb *strings.Builder, nodes []Node, depth int) {
	for _, n := range nodes {
		sb.WriteString(strings.Repeat("  ", depth))
		fmt.Fprintf(sb, "%s [%d,%d)\n", n, n.Start(), n.End())
		if children := ChildrenOf(n); children != nil {
			dumpNodes(sb, children, depth+1)
		}
	}
}

// ChildrenOf returns the children of section nodes and nil for leaves
func ChildrenOf(n Node) []Node {
	switch v := n.(type) {
	case *SectionNode:
		return v.Children
	case *InvertedSectionNode:
		return v.Children
	default:
		return nil
	}
}
