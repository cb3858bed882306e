package widget

import "github.com/starford/dynwidget/internal/models"

// Kind identifies a render tree node.
type Kind string

const (
	KindRoot      Kind = "root"
	KindHeading   Kind = "heading"
	KindParagraph Kind = "paragraph"
	KindSection   Kind = "section"
	KindList      Kind = "list"
	KindItem      Kind = "item"
	KindLink      Kind = "link"
	KindActive    Kind = "active"
	KindEmpty     Kind = "empty"
)

// CSS classes carried by nodes.
const (
	ClassContent    = "widget-content"
	ClassActiveFile = "widget-active-file"
	ClassNoFile     = "widget-no-file"
)

// Node is one element of the display tree. Trees are values owned by a
// single render pass and never mutated after it returns.
type Node struct {
	Kind     Kind        `json:"kind"`
	Text     string      `json:"text,omitempty"`
	Level    int         `json:"level,omitempty"`
	Class    string      `json:"class,omitempty"`
	Path     string      `json:"path,omitempty"`
	Pane     models.Pane `json:"pane,omitempty"`
	Bullet   string      `json:"bullet,omitempty"`
	Children []*Node     `json:"children,omitempty"`
}

// Empty returns a placeholder node. Renderers emit nothing for it.
func Empty() *Node {
	return &Node{Kind: KindEmpty}
}

// Heading returns a heading node.
func Heading(level int, text string) *Node {
	return &Node{Kind: KindHeading, Level: level, Text: text}
}

// Paragraph returns a paragraph node.
func Paragraph(text, class string) *Node {
	return &Node{Kind: KindParagraph, Text: text, Class: class}
}

// Append adds children and returns n.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Walk visits n and its descendants depth-first.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Find returns every descendant (including n) of kind k.
func (n *Node) Find(k Kind) []*Node {
	var out []*Node
	n.Walk(func(c *Node) {
		if c.Kind == k {
			out = append(out, c)
		}
	})
	return out
}
