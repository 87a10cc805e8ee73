package dom

import (
	"github.com/Syrcon/servo/treebuilder"
	"golang.org/x/net/html"
)

// Invalidator is implemented by parsers which may be replaced as the
// current parser of a document.
type Invalidator interface {
	Invalidate()
}

// Document is the root of a live document tree.
type Document struct {
	*Node
	url      string
	quirks   treebuilder.QuirksMode
	parser   Invalidator
	loaded   bool
	template *Document // inert document holding template contents
	owner    *Document // set for template documents
}

// NewDocument creates an empty document for a URL.
func NewDocument(url string) *Document {
	doc := &Document{url: url}
	doc.Node = newNode(doc, html.DocumentNode, "")
	return doc
}

// URL returns the URL the document has been loaded from.
func (doc *Document) URL() string {
	return doc.url
}

// CreateElement creates a detached element owned by the document.
func (doc *Document) CreateElement(name treebuilder.QualName, attrs []html.Attribute) *Node {
	n := newNode(doc, html.ElementNode, name.Local)
	n.space = name.Space
	n.attrs = attrs
	return n
}

// CreateComment creates a detached comment node.
func (doc *Document) CreateComment(text string) *Node {
	return newNode(doc, html.CommentNode, text)
}

// CreateTextNode creates a detached text node.
func (doc *Document) CreateTextNode(text string) *Node {
	return newNode(doc, html.TextNode, text)
}

// AppendDoctype appends a doctype node to the document.
func (doc *Document) AppendDoctype(name, publicID, systemID string) error {
	n := newNode(doc, html.DoctypeNode, name)
	if publicID != "" {
		n.attrs = append(n.attrs, html.Attribute{Key: "public", Val: publicID})
	}
	if systemID != "" {
		n.attrs = append(n.attrs, html.Attribute{Key: "system", Val: systemID})
	}
	return doc.AppendChild(n)
}

// QuirksMode returns the compatibility mode of the document.
func (doc *Document) QuirksMode() treebuilder.QuirksMode {
	return doc.quirks
}

// SetQuirksMode sets the compatibility mode of the document.
func (doc *Document) SetQuirksMode(mode treebuilder.QuirksMode) {
	tracer().Debugf("document %s is in %s mode", doc.url, mode)
	doc.quirks = mode
}

// TemplateDocument returns the inert document owning template contents,
// creating it on first call. Template documents are their own template
// documents.
func (doc *Document) TemplateDocument() *Document {
	if doc.owner != nil {
		return doc
	}
	if doc.template == nil {
		doc.template = NewDocument(doc.url)
		doc.template.owner = doc
	}
	return doc.template
}

// --- Current parser --------------------------------------------------------

// ReplaceParser makes p the current parser of the document. A previous
// parser is invalidated and the tree it has built so far is discarded.
func (doc *Document) ReplaceParser(p Invalidator) {
	if doc.parser != nil && doc.parser != p {
		tracer().Infof("replacing current parser of %s", doc.url)
		doc.parser.Invalidate()
		doc.Reset()
	}
	doc.parser = p
}

// Reset removes all children of the document and returns it to no-quirks
// mode.
func (doc *Document) Reset() {
	for _, tn := range doc.Node.Node.Children() {
		nodeOf(tn).Remove()
	}
	doc.quirks = treebuilder.NoQuirks
	doc.loaded = false
}

// CurrentParser returns the current parser, if any.
func (doc *Document) CurrentParser() Invalidator {
	return doc.parser
}

// ClearParser empties the current parser slot, if p occupies it.
func (doc *Document) ClearParser(p Invalidator) {
	if doc.parser == p {
		doc.parser = nil
	}
}

// FinishLoad marks the network load of the document as finished. Parsing
// may still be in progress.
func (doc *Document) FinishLoad() {
	tracer().Debugf("load of %s finished", doc.url)
	doc.loaded = true
}

// Loaded is true once FinishLoad has been called.
func (doc *Document) Loaded() bool {
	return doc.loaded
}

// --- Accessors -------------------------------------------------------------

// DocumentElement returns the root element, usually <html>.
func (doc *Document) DocumentElement() *Node {
	for _, tn := range doc.Node.Node.Children() {
		if n := nodeOf(tn); n.kind == html.ElementNode {
			return n
		}
	}
	return nil
}

// Body returns the <body> element, if present.
func (doc *Document) Body() *Node {
	root := doc.DocumentElement()
	if root == nil {
		return nil
	}
	for _, tn := range root.Node.Children() {
		if n := nodeOf(tn); n.IsElement("body", "frameset") {
			return n
		}
	}
	return nil
}

// CompatMode returns "BackCompat" for documents in quirks mode,
// "CSS1Compat" otherwise.
func (doc *Document) CompatMode() string {
	if doc.quirks == treebuilder.Quirks {
		return "BackCompat"
	}
	return "CSS1Compat"
}
