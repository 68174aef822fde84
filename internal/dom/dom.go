// Package dom is a small element API over a parsed HTML document, enough to
// query page regions by id or attribute and rewrite them before the page is
// serialized.
package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type Document struct {
	root *html.Node
}

func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document failed: %w", err)
	}
	return &Document{root: root}, nil
}

func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

func (d *Document) String() string {
	var b strings.Builder
	_ = d.Render(&b)
	return b.String()
}

// ElementByID returns nil when no element carries the id.
func (d *Document) ElementByID(id string) *Element {
	return d.find(func(n *html.Node) bool {
		v, ok := attr(n, "id")
		return ok && v == id
	})
}

// QueryAttr returns the first element carrying the attribute, or nil.
func (d *Document) QueryAttr(name string) *Element {
	return d.find(func(n *html.Node) bool {
		_, ok := attr(n, name)
		return ok
	})
}

// Body returns the body element, or nil for fragments without one.
func (d *Document) Body() *Element {
	return d.find(func(n *html.Node) bool {
		return n.DataAtom == atom.Body
	})
}

func (d *Document) find(match func(*html.Node) bool) *Element {
	var found *html.Node
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && match(n) {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(d.root)
	if found == nil {
		return nil
	}
	return &Element{node: found}
}

type Element struct {
	node *html.Node
}

// HTML renders the element itself, tags included.
func (e *Element) HTML() string {
	var b strings.Builder
	_ = html.Render(&b, e.node)
	return b.String()
}

func (e *Element) Tag() string {
	return e.node.Data
}

func (e *Element) Attr(name string) (string, bool) {
	return attr(e.node, name)
}

func (e *Element) SetAttr(name, value string) {
	for i := range e.node.Attr {
		if e.node.Attr[i].Namespace == "" && e.node.Attr[i].Key == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

// Text returns the concatenated text content.
func (e *Element) Text() string {
	var b strings.Builder
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(e.node)
	return b.String()
}

// SetText replaces all children with a single text node.
func (e *Element) SetText(s string) {
	e.ClearChildren()
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: s})
}

func (e *Element) ClearChildren() {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
}

// Children returns the element children in document order.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, &Element{node: c})
		}
	}
	return out
}

// AppendHTML parses fragment in the context of e and appends the result.
func (e *Element) AppendHTML(fragment string) error {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), e.node)
	if err != nil {
		return fmt.Errorf("parse fragment failed: %w", err)
	}
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

// Display returns the inline style display value, empty when unset.
func (e *Element) Display() string {
	style, _ := e.Attr("style")
	for _, decl := range parseStyle(style) {
		if decl[0] == "display" {
			return decl[1]
		}
	}
	return ""
}

// SetDisplay sets the inline display property, keeping other declarations.
func (e *Element) SetDisplay(value string) {
	style, _ := e.Attr("style")
	decls := parseStyle(style)
	replaced := false
	for i := range decls {
		if decls[i][0] == "display" {
			decls[i][1] = value
			replaced = true
		}
	}
	if !replaced {
		decls = append(decls, [2]string{"display", value})
	}

	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d[0]+":"+d[1])
	}
	e.SetAttr("style", strings.Join(parts, ";"))
}

func (e *Element) Hidden() bool {
	return e.Display() == "none"
}

func parseStyle(style string) [][2]string {
	var decls [][2]string
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		decls = append(decls, [2]string{k, strings.TrimSpace(v)})
	}
	return decls
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}
