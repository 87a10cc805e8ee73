/*
Package parser implements the owner's side of a parse session.

A Parser ties together a live document (package dom), a parsing worker
(package engine) and the operation queue between them (package sink).
Input is fed in chunks; the parser forwards chunks to the worker and
applies the operations the worker produces, in order, to the document.

States

	Idle ──feed──▶ Running ◀──resume── Suspended
	                  │   ──suspend──▶
	                  ▼
	               Finished ──last op applied──▶ Complete

A session in any state may end up Aborted if the integrity of the
handle indirection is violated: an operation naming a handle no node has
been bound to, a handle bound twice, or a move of a node between
documents. Aborting tears the worker down and reports the error to the
coordinator.

Completion fires exactly once, when the worker has acknowledged the end
of input and no operation is in flight anymore.

Re-entrancy

Scripts run by a ScriptHost during application of an operation may feed
more input or suspend the parser. Feeding recurses into Drain, bounded by
a maximum nesting depth; deeper input stays queued for the enclosing
drain.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package parser

import (
	"errors"
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'servo.parser'.
func tracer() tracing.Trace {
	return tracing.Select("servo.parser")
}

// ErrReplaced is reported for a session which has been replaced by another
// parser of the same document.
var ErrReplaced = errors.New("parser replaced")

// ErrIntegrity is wrapped by all errors aborting a session because
// operations and the live tree got out of sync.
var ErrIntegrity = errors.New("parse session integrity violation")

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("parser: "+msg, msgargs...)
		panic(msg)
	}
}
