package dom

import (
	"fmt"
	"io"

	"github.com/Syrcon/servo/treebuilder"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ToHTML converts the subtree under n to a tree of x/net/html nodes.
// Template contents become children of their template element, as the
// x/net/html renderer expects them. The returned map links converted
// nodes back to their origin.
func (n *Node) ToHTML() (*html.Node, map[*html.Node]*Node) {
	back := make(map[*html.Node]*Node)
	return n.toHTML(back), back
}

func (n *Node) toHTML(back map[*html.Node]*Node) *html.Node {
	h := &html.Node{Type: n.kind, Data: n.data}
	if n.kind == html.ElementNode {
		if n.space == treebuilder.NamespaceHTML {
			h.DataAtom = atom.Lookup([]byte(n.data))
		} else {
			h.Namespace = foreignPrefix(n.space)
		}
	}
	h.Attr = append(h.Attr, n.attrs...)
	back[h] = n
	for _, tn := range n.Node.Children() {
		h.AppendChild(nodeOf(tn).toHTML(back))
	}
	if n.contents != nil {
		for _, tn := range n.contents.Node.Children() {
			h.AppendChild(nodeOf(tn).toHTML(back))
		}
	}
	return h
}

func foreignPrefix(space string) string {
	switch space {
	case treebuilder.NamespaceSVG:
		return "svg"
	case treebuilder.NamespaceMathML:
		return "math"
	}
	return space
}

// Render serializes the subtree under n as HTML.
func (n *Node) Render(w io.Writer) error {
	h, _ := n.ToHTML()
	if n.kind != html.DocumentNode {
		return html.Render(w, h)
	}
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return err
		}
	}
	return nil
}

// QueryAll returns all nodes under n matching a CSS selector, in document
// order.
func (n *Node) QueryAll(selector string) ([]*Node, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	h, back := n.ToHTML()
	var result []*Node
	for _, m := range sel.MatchAll(h) {
		if dn, ok := back[m]; ok && !dn.inTemplate() {
			result = append(result, dn)
		}
	}
	return result, nil
}

// Query returns the first node under n matching a CSS selector, or nil.
func (n *Node) Query(selector string) (*Node, error) {
	all, err := n.QueryAll(selector)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

// inTemplate is true for nodes inside template contents, which are not part
// of the document proper.
func (n *Node) inTemplate() bool {
	return n.doc != nil && n.doc.owner != nil
}
