/*
Package engine runs tokenization and tree construction on a worker goroutine.

The worker owns an x/net/html tokenizer and a tree builder writing to a
sink. It is driven by a single ordered channel of instructions:

	Feed(text)            append decoded input
	Run()                 process buffered input as far as possible
	SetPlaintextState()   treat all further input as plain text
	End()                 no more input; finalize the tree

Run and End return acknowledgement channels which are closed when the
worker has reached the respective point. The worker blocks on nothing but
the next instruction. Input which cannot be tokenized yet (an incomplete
tag, say) stays buffered for the next Run.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package engine

import (
	"errors"
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'servo.engine'.
func tracer() tracing.Trace {
	return tracing.Select("servo.engine")
}

// ErrWorkerPanic is reported by Err if the worker died from a panic.
var ErrWorkerPanic = errors.New("parsing worker panicked")

// errClosed makes the tokenizer stop when the instruction channel has been
// closed.
var errClosed = errors.New("instruction channel closed")

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("engine: "+msg, msgargs...)
		panic(msg)
	}
}
