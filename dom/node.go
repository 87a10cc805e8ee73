package dom

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"
	"slices"

	"github.com/Syrcon/servo/tree"
	"github.com/Syrcon/servo/treebuilder"
	"golang.org/x/net/html"
)

// Node is a node of the live document tree.
type Node struct {
	tree.Node[*Node] // we build on top of general purpose tree
	kind             html.NodeType
	space            string // namespace of elements
	data             string // local name of elements, text of text and comment nodes
	attrs            []html.Attribute
	doc              *Document
	scriptStarted    bool
	fragment         bool  // template contents
	contents         *Node // template contents of template elements
}

func newNode(doc *Document, kind html.NodeType, data string) *Node {
	n := &Node{kind: kind, data: data, doc: doc}
	n.Payload = n // Payload will always reference the node itself
	return n
}

// nodeOf gets the dom node from a generic tree node.
func nodeOf(tn *tree.Node[*Node]) *Node {
	if tn == nil {
		return nil
	}
	return tn.Payload
}

func (n *Node) String() string {
	switch n.kind {
	case html.ElementNode:
		return fmt.Sprintf("<%s>", n.QualName())
	case html.TextNode:
		return fmt.Sprintf("%q", n.data)
	case html.CommentNode:
		return fmt.Sprintf("<!--%s-->", n.data)
	case html.DoctypeNode:
		return fmt.Sprintf("<!DOCTYPE %s>", n.data)
	}
	return n.NodeName()
}

// OwnerDocument returns the document a node belongs to.
func (n *Node) OwnerDocument() *Document {
	return n.doc
}

// QualName returns the qualified name of an element.
func (n *Node) QualName() treebuilder.QualName {
	return treebuilder.QualName{Space: n.space, Local: n.data}
}

// LocalName returns the local name of an element, empty for other nodes.
func (n *Node) LocalName() string {
	if n.kind != html.ElementNode {
		return ""
	}
	return n.data
}

// IsElement is true for element nodes, optionally with one of the given
// HTML local names.
func (n *Node) IsElement(names ...string) bool {
	if n.kind != html.ElementNode {
		return false
	}
	if len(names) == 0 {
		return true
	}
	return n.space == treebuilder.NamespaceHTML && slices.Contains(names, n.data)
}

// Attr returns the value of an attribute.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.attrs {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// ScriptStarted is true if a script element has been flagged as not to be
// executed (again).
func (n *Node) ScriptStarted() bool {
	return n.scriptStarted
}

// MarkScriptStarted flags a script element as already started.
func (n *Node) MarkScriptStarted() {
	n.scriptStarted = true
}

// IsTemplateContents is true for the contents fragment of a template.
func (n *Node) IsTemplateContents() bool {
	return n.fragment
}

// TemplateContents returns the contents fragment of a template element,
// creating it on first call. It returns nil for other nodes.
func (n *Node) TemplateContents() *Node {
	if !n.IsElement("template") {
		return nil
	}
	if n.contents == nil {
		n.contents = newNode(n.doc.TemplateDocument(), html.DocumentNode, "")
		n.contents.fragment = true
	}
	return n.contents
}

// Contents returns the contents fragment of a template element if it has
// been materialized, nil otherwise.
func (n *Node) Contents() *Node {
	return n.contents
}

// --- Mutation --------------------------------------------------------------

// AppendChild appends ch to the children of n, detaching it from its
// previous parent.
func (n *Node) AppendChild(ch *Node) error {
	if err := n.checkInsertion(ch); err != nil {
		return err
	}
	n.adopt(ch)
	n.Node.AddChild(&ch.Node)
	return nil
}

// InsertBefore inserts ch immediately before ref, which must be a child of n.
func (n *Node) InsertBefore(ch, ref *Node) error {
	if ref == nil {
		return n.AppendChild(ch)
	}
	if nodeOf(ref.Node.Parent()) != n {
		return fmt.Errorf("%w: %v of %v", ErrNotAChild, ref, n)
	}
	if err := n.checkInsertion(ch); err != nil {
		return err
	}
	n.adopt(ch)
	n.Node.InsertChildBefore(&ch.Node, &ref.Node)
	return nil
}

// AppendText appends character data, merging it into a trailing text node.
func (n *Node) AppendText(text string) error {
	if last := nodeOf(n.Node.LastChild()); last != nil && last.kind == html.TextNode {
		last.data += text
		return nil
	}
	return n.AppendChild(newNode(n.doc, html.TextNode, text))
}

// InsertTextBefore inserts character data before ref, merging it into a
// text node immediately preceding ref.
func (n *Node) InsertTextBefore(text string, ref *Node) error {
	if nodeOf(ref.Node.Parent()) != n {
		return fmt.Errorf("%w: %v of %v", ErrNotAChild, ref, n)
	}
	if prev := nodeOf(ref.Node.PrevSibling()); prev != nil && prev.kind == html.TextNode {
		prev.data += text
		return nil
	}
	return n.InsertBefore(newNode(n.doc, html.TextNode, text), ref)
}

// AddAttrsIfMissing adds every attribute whose name is not yet present.
func (n *Node) AddAttrsIfMissing(attrs []html.Attribute) {
	for _, a := range attrs {
		if !slices.ContainsFunc(n.attrs, func(b html.Attribute) bool {
			return a.Namespace == b.Namespace && a.Key == b.Key
		}) {
			n.attrs = append(n.attrs, a)
		}
	}
}

// Remove detaches n from its parent, if any.
func (n *Node) Remove() {
	n.Node.Isolate()
}

// ReparentChildrenTo moves all children of n, in order, to the end of the
// children of target.
func (n *Node) ReparentChildrenTo(target *Node) error {
	for _, tn := range n.Node.Children() {
		if err := target.checkInsertion(nodeOf(tn)); err != nil {
			return err
		}
	}
	for _, tn := range n.Node.Children() {
		target.adopt(nodeOf(tn))
	}
	n.Node.MoveChildrenTo(&target.Node)
	return nil
}

// checkInsertion validates that ch may become a child of n. Nodes may move
// freely within a document and into the template contents of their
// document; every other move crosses documents.
func (n *Node) checkInsertion(ch *Node) error {
	if ch == nil || ch == n {
		return fmt.Errorf("%w: cannot insert %v into itself", ErrHierarchy, n)
	}
	switch n.kind {
	case html.TextNode, html.CommentNode, html.DoctypeNode:
		return fmt.Errorf("%w: %v cannot have children", ErrHierarchy, n)
	}
	if ch.kind == html.DocumentNode {
		return fmt.Errorf("%w: cannot insert a document", ErrHierarchy)
	}
	for p := n; p != nil; p = nodeOf(p.Node.Parent()) {
		if p == ch {
			return fmt.Errorf("%w: %v is an ancestor of %v", ErrHierarchy, ch, n)
		}
	}
	if ch.doc == n.doc || (ch.doc.template == n.doc && n.doc != nil) {
		return nil
	}
	if ch.doc == n.doc.owner && n.doc.owner != nil {
		return nil
	}
	return fmt.Errorf("%w: %v into %v", ErrWrongDocument, ch, n)
}

// adopt moves a subtree into the document of n.
func (n *Node) adopt(ch *Node) {
	if ch.doc == n.doc {
		return
	}
	var walk func(*Node)
	walk = func(x *Node) {
		x.doc = n.doc
		for _, tn := range x.Node.Children() {
			walk(nodeOf(tn))
		}
	}
	walk(ch)
}
