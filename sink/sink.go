package sink

import (
	"slices"

	"github.com/Syrcon/servo/maybe"
	"github.com/Syrcon/servo/treebuilder"
	"golang.org/x/net/html"
)

// Sink is the tree sink of the worker. It answers the builder's questions
// from the handle table and turns every mutation into an Operation.
type Sink struct {
	table     *Table
	queue     *Queue
	templates map[Handle]Handle
}

var _ treebuilder.TreeSink[Handle] = (*Sink)(nil)

// New creates a sink emitting to queue. table must have the document
// registered.
func New(table *Table, queue *Queue) *Sink {
	_, ok := table.Metadata(Document)
	assertThat(ok, "document handle not registered")
	return &Sink{
		table:     table,
		queue:     queue,
		templates: make(map[Handle]Handle),
	}
}

// Table returns the handle table of the sink.
func (s *Sink) Table() *Table {
	return s.table
}

func (s *Sink) Document() Handle {
	return Document
}

func (s *Sink) CreateElement(name treebuilder.QualName, attrs []html.Attribute) Handle {
	h := s.table.Allocate()
	s.table.Register(h, maybe.Nothing[Handle](), maybe.Just(name))
	s.queue.Enqueue(CreateElement{Target: h, Name: name, Attrs: slices.Clone(attrs)})
	return h
}

func (s *Sink) CreateComment(text string) Handle {
	h := s.table.Allocate()
	s.table.Register(h, maybe.Nothing[Handle](), maybe.Nothing[treebuilder.QualName]())
	s.queue.Enqueue(CreateComment{Target: h, Text: text})
	return h
}

func (s *Sink) Append(parent Handle, child Child) {
	if !child.IsText() {
		s.table.setParent(child.Node, maybe.Just(parent))
	}
	s.queue.Enqueue(Insert{Parent: parent, Sibling: maybe.Nothing[Handle](), Child: child})
}

func (s *Sink) AppendBeforeSibling(sibling Handle, child Child) {
	m, ok := s.table.Metadata(sibling)
	assertThat(ok, "insert before unregistered sibling %v", sibling)
	parent, ok := m.Parent.Get()
	assertThat(ok, "insert before parentless sibling %v", sibling)
	if !child.IsText() {
		s.table.setParent(child.Node, maybe.Just(parent))
	}
	s.queue.Enqueue(Insert{Parent: parent, Sibling: maybe.Just(sibling), Child: child})
}

func (s *Sink) AppendDoctypeToDocument(name, publicID, systemID string) {
	s.queue.Enqueue(AppendDoctype{Name: name, PublicID: publicID, SystemID: systemID})
}

func (s *Sink) AddAttrsIfMissing(target Handle, attrs []html.Attribute) {
	s.queue.Enqueue(AddAttrsIfMissing{Target: target, Attrs: slices.Clone(attrs)})
}

func (s *Sink) RemoveFromParent(target Handle) {
	s.table.setParent(target, maybe.Nothing[Handle]())
	s.queue.Enqueue(RemoveFromParent{Target: target})
}

func (s *Sink) ReparentChildren(node, newParent Handle) {
	s.table.reparentChildren(node, newParent)
	s.queue.Enqueue(ReparentChildren{Node: node, NewParent: newParent})
}

func (s *Sink) MarkScriptAlreadyStarted(node Handle) {
	s.queue.Enqueue(MarkScriptAlreadyStarted{Target: node})
}

func (s *Sink) CompleteScript(node Handle) {
	s.queue.Enqueue(CompleteScript{Target: node})
}

func (s *Sink) SetQuirksMode(mode treebuilder.QuirksMode) {
	s.queue.Enqueue(SetQuirksMode{Mode: mode})
}

// GetTemplateContents allocates the contents handle of a template on first
// request and returns the same handle afterwards.
func (s *Sink) GetTemplateContents(target Handle) Handle {
	if h, ok := s.templates[target]; ok {
		return h
	}
	h := s.table.Allocate()
	s.table.Register(h, maybe.Nothing[Handle](), maybe.Nothing[treebuilder.QualName]())
	s.templates[target] = h
	s.queue.Enqueue(TemplateContents{Template: target, Contents: h})
	return h
}

func (s *Sink) ElemName(target Handle) treebuilder.QualName {
	m, ok := s.table.Metadata(target)
	assertThat(ok, "element name of unregistered handle %v", target)
	name, ok := m.Name.Get()
	assertThat(ok, "element name requested for non-element %v", target)
	return name
}

func (s *Sink) Parent(target Handle) (Handle, bool) {
	m, ok := s.table.Metadata(target)
	if !ok {
		return 0, false
	}
	return m.Parent.Get()
}

func (s *Sink) ParseError(msg string) {
	tracer().Debugf("parse error: %s", msg)
}
