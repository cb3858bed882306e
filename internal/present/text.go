package present

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/dynwidget/internal/widget"
)

// Theme holds the terminal styles used by Text.
type Theme struct {
	Header  lipgloss.Style
	Section lipgloss.Style
	Link    lipgloss.Style
	Active  lipgloss.Style
	Muted   lipgloss.Style
	Bullet  lipgloss.Style
}

// DefaultTheme is tuned for dark terminals.
func DefaultTheme() Theme {
	return Theme{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Section: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("110")),
		Link:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Active:  lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("220")),
		Muted:   lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("244")),
		Bullet:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// PlainTheme applies no styling. Output is stable for files and tests.
func PlainTheme() Theme {
	s := lipgloss.NewStyle()
	return Theme{Header: s, Section: s, Link: s, Active: s, Muted: s, Bullet: s}
}

// Text renders tree as indented terminal lines.
func Text(tree *widget.Node, th Theme) string {
	var lines []string
	var walk func(n *widget.Node, depth int)
	walk = func(n *widget.Node, depth int) {
		indent := strings.Repeat("  ", depth)
		switch n.Kind {
		case widget.KindEmpty:
			return
		case widget.KindHeading:
			if n.Level <= 2 {
				lines = append(lines, th.Header.Render(n.Text))
			} else {
				lines = append(lines, "", indent+th.Section.Render(n.Text))
			}
			return
		case widget.KindParagraph:
			lines = append(lines, indent+th.Muted.Render(n.Text))
			return
		case widget.KindItem:
			bullet := n.Bullet
			if bullet == "" {
				bullet = "-"
			}
			for _, c := range n.Children {
				lines = append(lines, indent+th.Bullet.Render(bullet)+" "+entry(c, th))
			}
			return
		case widget.KindList:
			for _, c := range n.Children {
				walk(c, depth+1)
			}
			return
		}
		for _, c := range n.Children {
			walk(c, depth)
		}
	}
	walk(tree, 0)
	return strings.Join(lines, "\n") + "\n"
}

func entry(n *widget.Node, th Theme) string {
	if n.Kind == widget.KindActive {
		return th.Active.Render(n.Text) + th.Muted.Render(" (active)")
	}
	return th.Link.Render(n.Text)
}
