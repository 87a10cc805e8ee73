package sink

import (
	"fmt"
	"sync"

	"github.com/Syrcon/servo/maybe"
	"github.com/Syrcon/servo/treebuilder"
)

// Handle identifies a tree node across the goroutine boundary.
type Handle uint64

// Document is the handle of the document node.
const Document Handle = 0

func (h Handle) String() string {
	return fmt.Sprintf("#%d", uint64(h))
}

// Metadata is what the worker knows about a node.
type Metadata struct {
	Parent maybe.Maybe[Handle]
	Name   maybe.Maybe[treebuilder.QualName]
}

// Table allocates handles and keeps their metadata. It is accessed by the
// worker only, but guarded nevertheless so that diagnostics may read it.
type Table struct {
	mx       sync.RWMutex
	next     Handle
	meta     map[Handle]*Metadata
	children map[Handle]map[Handle]struct{} // parent -> children
}

// NewTable creates a handle table with the document pre-registered.
func NewTable() *Table {
	t := &Table{
		next:     Document + 1,
		meta:     make(map[Handle]*Metadata),
		children: make(map[Handle]map[Handle]struct{}),
	}
	t.Register(Document, maybe.Nothing[Handle](), maybe.Nothing[treebuilder.QualName]())
	return t
}

// Allocate returns a fresh handle. Handles are never reused.
func (t *Table) Allocate() Handle {
	t.mx.Lock()
	defer t.mx.Unlock()
	h := t.next
	t.next++
	return h
}

// Register records the metadata of a handle. Registering a handle twice is
// a programming error.
func (t *Table) Register(h Handle, parent maybe.Maybe[Handle], name maybe.Maybe[treebuilder.QualName]) {
	t.mx.Lock()
	defer t.mx.Unlock()
	_, exists := t.meta[h]
	assertThat(!exists, "handle %v registered twice", h)
	assertThat(h < t.next, "handle %v registered before allocation", h)
	t.meta[h] = &Metadata{Parent: parent, Name: name}
	t.link(h, parent)
}

// Metadata returns a copy of the metadata of a handle.
func (t *Table) Metadata(h Handle) (Metadata, bool) {
	t.mx.RLock()
	defer t.mx.RUnlock()
	m, ok := t.meta[h]
	if !ok {
		return Metadata{}, false
	}
	return *m, true
}

// Len is the number of registered handles, including the document.
func (t *Table) Len() int {
	t.mx.RLock()
	defer t.mx.RUnlock()
	return len(t.meta)
}

func (t *Table) setParent(h Handle, parent maybe.Maybe[Handle]) {
	t.mx.Lock()
	defer t.mx.Unlock()
	m, ok := t.meta[h]
	assertThat(ok, "parent set for unregistered handle %v", h)
	t.unlink(h, m.Parent)
	m.Parent = parent
	t.link(h, parent)
}

// reparentChildren moves the parent link of every child of node to
// newParent.
func (t *Table) reparentChildren(node, newParent Handle) {
	t.mx.Lock()
	defer t.mx.Unlock()
	chs := t.children[node]
	delete(t.children, node)
	for ch := range chs {
		t.meta[ch].Parent = maybe.Just(newParent)
		t.link(ch, maybe.Just(newParent))
	}
}

// childrenOf returns the handles whose parent is h, in no particular order.
func (t *Table) childrenOf(h Handle) []Handle {
	t.mx.RLock()
	defer t.mx.RUnlock()
	chs := make([]Handle, 0, len(t.children[h]))
	for ch := range t.children[h] {
		chs = append(chs, ch)
	}
	return chs
}

func (t *Table) link(h Handle, parent maybe.Maybe[Handle]) {
	p, ok := parent.Get()
	if !ok {
		return
	}
	chs, ok := t.children[p]
	if !ok {
		chs = make(map[Handle]struct{})
		t.children[p] = chs
	}
	chs[h] = struct{}{}
}

func (t *Table) unlink(h Handle, parent maybe.Maybe[Handle]) {
	p, ok := parent.Get()
	if !ok {
		return
	}
	if chs, ok := t.children[p]; ok {
		delete(chs, h)
		if len(chs) == 0 {
			delete(t.children, p)
		}
	}
}

// --- Owner side ------------------------------------------------------------

// Nodes resolves handles to live nodes. It is used by the owning
// goroutine only (arena + index).
type Nodes[N any] struct {
	nodes map[Handle]N
}

// NewNodes creates a resolution table with the document node bound to
// handle 0.
func NewNodes[N any](document N) *Nodes[N] {
	return &Nodes[N]{nodes: map[Handle]N{Document: document}}
}

// Bind binds a live node to a handle.
func (ns *Nodes[N]) Bind(h Handle, n N) error {
	if _, exists := ns.nodes[h]; exists {
		return fmt.Errorf("%w: %v", ErrHandleRebound, h)
	}
	ns.nodes[h] = n
	return nil
}

// Resolve looks up the live node of a handle.
func (ns *Nodes[N]) Resolve(h Handle) (N, error) {
	n, ok := ns.nodes[h]
	if !ok {
		return n, fmt.Errorf("%w: %v", ErrUnknownHandle, h)
	}
	return n, nil
}

// Len is the number of bound handles.
func (ns *Nodes[N]) Len() int {
	return len(ns.nodes)
}
