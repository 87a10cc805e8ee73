package treebuilder

import (
	"fmt"

	"golang.org/x/net/html"
)

// Namespaces of qualified element names.
const (
	NamespaceHTML   = "http://www.w3.org/1999/xhtml"
	NamespaceSVG    = "http://www.w3.org/2000/svg"
	NamespaceMathML = "http://www.w3.org/1998/Math/MathML"
)

// QualName is the qualified name of an element: namespace URL plus local name.
type QualName struct {
	Space string
	Local string
}

// HTMLName returns the qualified name of an HTML element.
func HTMLName(local string) QualName {
	return QualName{Space: NamespaceHTML, Local: local}
}

func (q QualName) String() string {
	switch q.Space {
	case NamespaceHTML, "":
		return q.Local
	case NamespaceSVG:
		return "svg:" + q.Local
	case NamespaceMathML:
		return "math:" + q.Local
	}
	return fmt.Sprintf("{%s}%s", q.Space, q.Local)
}

// QuirksMode is the compatibility mode of a document, as determined from
// its doctype.
type QuirksMode uint8

// Quirks modes. NoQuirks is the "CSS1Compat" mode.
const (
	NoQuirks QuirksMode = iota
	LimitedQuirks
	Quirks
)

func (qm QuirksMode) String() string {
	switch qm {
	case LimitedQuirks:
		return "limited-quirks"
	case Quirks:
		return "quirks"
	}
	return "no-quirks"
}

// NodeOrText is the child argument of insertions: either a node handle or
// a run of character data.
type NodeOrText[H comparable] struct {
	Node   H
	Text   string
	isText bool
}

// AppendNode wraps a node handle as an insertion child.
func AppendNode[H comparable](h H) NodeOrText[H] {
	return NodeOrText[H]{Node: h}
}

// AppendText wraps character data as an insertion child.
func AppendText[H comparable](text string) NodeOrText[H] {
	return NodeOrText[H]{Text: text, isText: true}
}

// IsText is true if the child is character data.
func (c NodeOrText[H]) IsText() bool {
	return c.isText
}

func (c NodeOrText[H]) String() string {
	if c.isText {
		return fmt.Sprintf("%q", c.Text)
	}
	return fmt.Sprintf("%v", c.Node)
}

// TreeSink is the only view of "the tree" a Builder has. H is the type of
// node handles. Implementations never have to return node data the builder
// did not previously hand to them, except for element names and parent
// links.
type TreeSink[H comparable] interface {
	// Document returns the handle of the document node.
	Document() H
	// CreateElement creates a detached element.
	CreateElement(name QualName, attrs []html.Attribute) H
	// CreateComment creates a detached comment node.
	CreateComment(text string) H
	// Append appends a child to parent. Text is merged into an adjacent
	// text node by implementations.
	Append(parent H, child NodeOrText[H])
	// AppendBeforeSibling inserts a child immediately before sibling.
	// sibling always has a parent.
	AppendBeforeSibling(sibling H, child NodeOrText[H])
	// AppendDoctypeToDocument appends a doctype node to the document.
	AppendDoctypeToDocument(name, publicID, systemID string)
	// AddAttrsIfMissing adds each attribute not yet present on target.
	AddAttrsIfMissing(target H, attrs []html.Attribute)
	// RemoveFromParent detaches target.
	RemoveFromParent(target H)
	// ReparentChildren moves all children of node to newParent.
	ReparentChildren(node, newParent H)
	// MarkScriptAlreadyStarted flags a script element as not to be run.
	MarkScriptAlreadyStarted(node H)
	// CompleteScript is called when the end tag of a script element has
	// been processed.
	CompleteScript(node H)
	// SetQuirksMode sets the document's compatibility mode.
	SetQuirksMode(mode QuirksMode)
	// GetTemplateContents returns the contents fragment of a template.
	GetTemplateContents(target H) H
	// ElemName returns the qualified name of an element.
	ElemName(target H) QualName
	// Parent returns the parent of a node, if any.
	Parent(target H) (H, bool)
	// ParseError reports a recoverable markup error.
	ParseError(msg string)
}

// Options control a Builder.
type Options struct {
	// IgnoreMissingRules makes tokens without a tree construction rule fall
	// back to best-effort handling instead of panicking.
	IgnoreMissingRules bool
	// ScriptingEnabled controls <noscript> handling and whether scripts are
	// marked as already started.
	ScriptingEnabled bool
}

// DefaultOptions are lenient, with scripting enabled.
func DefaultOptions() Options {
	return Options{IgnoreMissingRules: true, ScriptingEnabled: true}
}
