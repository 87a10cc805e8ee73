/*
Package sink implements the handle indirection between the parsing worker and
the goroutine owning the live document tree.

The worker never sees tree nodes. The tree builder creates and addresses
nodes by Handle; the Sink records what the builder needs to know about a
handle (parent, qualified name) in a Table and translates every tree
construction callback into an Operation on a Queue. The owner dequeues the
operations in order and resolves handles to live nodes with Nodes.

Handle 0 is the document and is registered before any worker starts.
Handles are never reused within a parse session.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package sink

import (
	"errors"
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'servo.sink'.
func tracer() tracing.Trace {
	return tracing.Select("servo.sink")
}

// ErrUnknownHandle is returned when resolving a handle no node has been
// bound to. It means operations and registrations got out of order.
var ErrUnknownHandle = errors.New("unknown handle")

// ErrHandleRebound is returned when a node is bound to a handle twice.
var ErrHandleRebound = errors.New("handle bound twice")

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("sink: "+msg, msgargs...)
		panic(msg)
	}
}
