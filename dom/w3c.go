package dom

import (
	"fmt"
	"strings"

	"github.com/Syrcon/servo/dom/w3cdom"
	"golang.org/x/net/html"
)

var _ w3cdom.Node = (*Node)(nil)
var _ w3cdom.Document = w3cDocument{}

// NodeType is part of interface w3cdom.Node.
func (n *Node) NodeType() html.NodeType {
	return n.kind
}

// NodeName is part of interface w3cdom.Node.
func (n *Node) NodeName() string {
	switch n.kind {
	case html.ElementNode:
		return n.data
	case html.TextNode:
		return "#text"
	case html.CommentNode:
		return "#comment"
	case html.DoctypeNode:
		return n.data
	case html.DocumentNode:
		if n.fragment {
			return "#document-fragment"
		}
		return "#document"
	}
	return "#error"
}

// NamespaceURI is part of interface w3cdom.Node.
func (n *Node) NamespaceURI() string {
	if n.kind != html.ElementNode {
		return ""
	}
	return n.space
}

// NodeValue is part of interface w3cdom.Node.
func (n *Node) NodeValue() string {
	switch n.kind {
	case html.TextNode, html.CommentNode:
		return n.data
	}
	return ""
}

// HasAttributes is part of interface w3cdom.Node.
func (n *Node) HasAttributes() bool {
	return n.kind == html.ElementNode && len(n.attrs) > 0
}

// ParentNode is part of interface w3cdom.Node.
func (n *Node) ParentNode() w3cdom.Node {
	return asW3C(nodeOf(n.Node.Parent()))
}

// HasChildNodes is part of interface w3cdom.Node.
func (n *Node) HasChildNodes() bool {
	return n.Node.ChildCount() > 0
}

// ChildNodes is part of interface w3cdom.Node.
func (n *Node) ChildNodes() w3cdom.NodeList {
	var list nodeList
	for _, tn := range n.Node.Children() {
		list = append(list, nodeOf(tn))
	}
	return list
}

// Children is part of interface w3cdom.Node. It lists element children only.
func (n *Node) Children() w3cdom.NodeList {
	var list nodeList
	for _, tn := range n.Node.Children() {
		if ch := nodeOf(tn); ch.kind == html.ElementNode {
			list = append(list, ch)
		}
	}
	return list
}

// FirstChild is part of interface w3cdom.Node.
func (n *Node) FirstChild() w3cdom.Node {
	return asW3C(nodeOf(n.Node.FirstChild()))
}

// LastChild is part of interface w3cdom.Node.
func (n *Node) LastChild() w3cdom.Node {
	return asW3C(nodeOf(n.Node.LastChild()))
}

// PreviousSibling is part of interface w3cdom.Node.
func (n *Node) PreviousSibling() w3cdom.Node {
	return asW3C(nodeOf(n.Node.PrevSibling()))
}

// NextSibling is part of interface w3cdom.Node.
func (n *Node) NextSibling() w3cdom.Node {
	return asW3C(nodeOf(n.Node.NextSibling()))
}

// Attributes is part of interface w3cdom.Node.
func (n *Node) Attributes() w3cdom.NamedNodeMap {
	if n.kind != html.ElementNode {
		return attrMap(nil)
	}
	return attrMap(n.attrs)
}

// TextContent is part of interface w3cdom.Node.
func (n *Node) TextContent() (string, error) {
	switch n.kind {
	case html.TextNode, html.CommentNode:
		return n.data, nil
	case html.DoctypeNode:
		return "", nil
	}
	var sb strings.Builder
	var collect func(*Node)
	collect = func(x *Node) {
		for _, tn := range x.Node.Children() {
			ch := nodeOf(tn)
			switch ch.kind {
			case html.TextNode:
				sb.WriteString(ch.data)
			case html.ElementNode:
				collect(ch)
			}
		}
	}
	collect(n)
	return sb.String(), nil
}

func asW3C(n *Node) w3cdom.Node {
	if n == nil {
		return nil
	}
	return n
}

// W3C returns a view of the document as a w3cdom.Document.
func (doc *Document) W3C() w3cdom.Document {
	return w3cDocument{doc}
}

type w3cDocument struct {
	*Document
}

func (d w3cDocument) DocumentElement() w3cdom.Node {
	return asW3C(d.Document.DocumentElement())
}

func (d w3cDocument) Body() w3cdom.Node {
	return asW3C(d.Document.Body())
}

// --- Node lists and attributes ---------------------------------------------

type nodeList []*Node

func (l nodeList) Length() int {
	return len(l)
}

func (l nodeList) Item(i int) w3cdom.Node {
	if i < 0 || i >= len(l) {
		return nil
	}
	return l[i]
}

func (l nodeList) String() string {
	names := make([]string, len(l))
	for i, n := range l {
		names[i] = n.NodeName()
	}
	return fmt.Sprintf("[%s]", strings.Join(names, " "))
}

type attr struct {
	a html.Attribute
}

func (a attr) Namespace() string { return a.a.Namespace }
func (a attr) Key() string       { return a.a.Key }
func (a attr) Value() string     { return a.a.Val }

type attrMap []html.Attribute

func (m attrMap) Length() int {
	return len(m)
}

func (m attrMap) Item(i int) w3cdom.Attr {
	if i < 0 || i >= len(m) {
		return nil
	}
	return attr{m[i]}
}

func (m attrMap) GetNamedItem(key string) w3cdom.Attr {
	for _, a := range m {
		if a.Key == key {
			return attr{a}
		}
	}
	return nil
}
