/*
Package dom implements the live document tree the parser builds.

The tree is owned by a single goroutine. Nodes are never handed to the
parsing worker; the worker addresses them by handle (see package sink) and
the owner replays the worker's operations against this tree.

Tree Implementation

Nodes are built on top of the general purpose tree type of package tree.
In a fully object oriented programming language we would subclass the
tree type, but in Go we resort to composition, thus including a generic
tree node in every dom.Node and setting the tree node's payload to the
dom.Node itself. Methods of the W3C interfaces (package w3cdom) shadow
the navigation methods of the tree type of the same name; internally we
navigate through the embedded tree.Node.

Documents

A Document is a node of type html.DocumentNode plus per-document state:
its compatibility mode, the URL it has been loaded from, and the slot for
the parser currently writing into it. Template contents live in an inert
template document associated with the document.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package dom

import (
	"errors"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'servo.dom'.
func tracer() tracing.Trace {
	return tracing.Select("servo.dom")
}

// ErrWrongDocument is returned when a node would be inserted into a tree of
// a document it does not belong to.
var ErrWrongDocument = errors.New("node belongs to a different document")

// ErrNotAChild is returned when a reference node is not a child of the
// node addressed.
var ErrNotAChild = errors.New("reference node is not a child")

// ErrHierarchy is returned when an insertion would create a cycle or put
// children into a node which cannot have them.
var ErrHierarchy = errors.New("hierarchy request error")
