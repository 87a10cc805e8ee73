package sink

import (
	"fmt"

	"github.com/Syrcon/servo/maybe"
	"github.com/Syrcon/servo/treebuilder"
	"golang.org/x/net/html"
)

// Operation is a tree mutation to be replayed by the owner. The set of
// operations is closed; see the types in this file.
type Operation interface {
	Kind() string
	fmt.Stringer
	isOperation()
}

// Child is the node-or-text argument of an insertion.
type Child = treebuilder.NodeOrText[Handle]

// CreateElement creates an element and binds it to Target.
type CreateElement struct {
	Target Handle
	Name   treebuilder.QualName
	Attrs  []html.Attribute
}

// CreateComment creates a comment node and binds it to Target.
type CreateComment struct {
	Target Handle
	Text   string
}

// Insert inserts Child into Parent, before Sibling if present, else at the
// end.
type Insert struct {
	Parent  Handle
	Sibling maybe.Maybe[Handle]
	Child   Child
}

// AppendDoctype appends a doctype node to the document.
type AppendDoctype struct {
	Name, PublicID, SystemID string
}

// AddAttrsIfMissing adds attributes not yet present on Target.
type AddAttrsIfMissing struct {
	Target Handle
	Attrs  []html.Attribute
}

// RemoveFromParent detaches Target.
type RemoveFromParent struct {
	Target Handle
}

// MarkScriptAlreadyStarted flags a script element as not to be executed.
type MarkScriptAlreadyStarted struct {
	Target Handle
}

// CompleteScript signals that a script element has been parsed completely.
type CompleteScript struct {
	Target Handle
}

// ReparentChildren moves all children of Node to NewParent.
type ReparentChildren struct {
	Node, NewParent Handle
}

// SetQuirksMode sets the document's compatibility mode.
type SetQuirksMode struct {
	Mode treebuilder.QuirksMode
}

// TemplateContents materializes the contents fragment of Template and binds
// it to Contents.
type TemplateContents struct {
	Template, Contents Handle
}

func (CreateElement) isOperation()            {}
func (CreateComment) isOperation()            {}
func (Insert) isOperation()                   {}
func (AppendDoctype) isOperation()            {}
func (AddAttrsIfMissing) isOperation()        {}
func (RemoveFromParent) isOperation()         {}
func (MarkScriptAlreadyStarted) isOperation() {}
func (CompleteScript) isOperation()           {}
func (ReparentChildren) isOperation()         {}
func (SetQuirksMode) isOperation()            {}
func (TemplateContents) isOperation()         {}

func (CreateElement) Kind() string            { return "create-element" }
func (CreateComment) Kind() string            { return "create-comment" }
func (Insert) Kind() string                   { return "insert" }
func (AppendDoctype) Kind() string            { return "append-doctype" }
func (AddAttrsIfMissing) Kind() string        { return "add-attrs-if-missing" }
func (RemoveFromParent) Kind() string         { return "remove-from-parent" }
func (MarkScriptAlreadyStarted) Kind() string { return "mark-script-already-started" }
func (CompleteScript) Kind() string           { return "complete-script" }
func (ReparentChildren) Kind() string         { return "reparent-children" }
func (SetQuirksMode) Kind() string            { return "set-quirks-mode" }
func (TemplateContents) Kind() string         { return "template-contents" }

func (op CreateElement) String() string {
	return fmt.Sprintf("%s %v <%s>", op.Kind(), op.Target, op.Name)
}

func (op CreateComment) String() string {
	return fmt.Sprintf("%s %v %q", op.Kind(), op.Target, op.Text)
}

func (op Insert) String() string {
	if s, ok := op.Sibling.Get(); ok {
		return fmt.Sprintf("%s %v into %v before %v", op.Kind(), op.Child, op.Parent, s)
	}
	return fmt.Sprintf("%s %v into %v", op.Kind(), op.Child, op.Parent)
}

func (op AppendDoctype) String() string {
	return fmt.Sprintf("%s %s", op.Kind(), op.Name)
}

func (op AddAttrsIfMissing) String() string {
	return fmt.Sprintf("%s %v (%d)", op.Kind(), op.Target, len(op.Attrs))
}

func (op RemoveFromParent) String() string {
	return fmt.Sprintf("%s %v", op.Kind(), op.Target)
}

func (op MarkScriptAlreadyStarted) String() string {
	return fmt.Sprintf("%s %v", op.Kind(), op.Target)
}

func (op CompleteScript) String() string {
	return fmt.Sprintf("%s %v", op.Kind(), op.Target)
}

func (op ReparentChildren) String() string {
	return fmt.Sprintf("%s %v to %v", op.Kind(), op.Node, op.NewParent)
}

func (op SetQuirksMode) String() string {
	return fmt.Sprintf("%s %s", op.Kind(), op.Mode)
}

func (op TemplateContents) String() string {
	return fmt.Sprintf("%s %v as %v", op.Kind(), op.Template, op.Contents)
}
