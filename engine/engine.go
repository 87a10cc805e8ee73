package engine

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/Syrcon/servo/treebuilder"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Engine is the owner's end of a parsing worker. Its methods must be called
// from a single goroutine, the owner of the document.
type Engine[H comparable] struct {
	instr  chan instruction
	done   chan struct{}
	mx     sync.Mutex
	err    error
	ended  bool
	closed bool
}

// Start spawns a parsing worker building a tree into sink.
func Start[H comparable](sink treebuilder.TreeSink[H], opts treebuilder.Options) *Engine[H] {
	e := &Engine[H]{
		instr: make(chan instruction, 16),
		done:  make(chan struct{}),
	}
	builder := treebuilder.New[H](sink, opts)
	go e.work(builder)
	return e
}

// Feed appends a chunk of decoded input.
func (e *Engine[H]) Feed(text string) {
	e.send(instruction{kind: feedInstr, text: text})
}

// Run asks the worker to process all buffered input. The returned channel
// is closed once the worker has done so.
func (e *Engine[H]) Run() <-chan struct{} {
	ack := make(chan struct{})
	e.send(instruction{kind: runInstr, ack: ack})
	return ack
}

// SetPlaintextState switches the tokenizer to plain text for all input fed
// afterwards.
func (e *Engine[H]) SetPlaintextState() {
	e.send(instruction{kind: plaintextInstr})
}

// End signals that no more input will arrive. The returned channel is closed
// after the tree has been finalized. No instruction may follow.
func (e *Engine[H]) End() <-chan struct{} {
	ack := make(chan struct{})
	e.send(instruction{kind: endInstr, ack: ack})
	e.ended = true
	return ack
}

// Ended is true after End has been called.
func (e *Engine[H]) Ended() bool {
	return e.ended
}

// Close tears the worker down. The worker terminates on its next receive.
// Close may be called more than once.
func (e *Engine[H]) Close() {
	if e.closed {
		return
	}
	e.closed = true
	close(e.instr)
}

// Done returns a channel closed when the worker has exited. Owners waiting
// for an acknowledgement should wait for Done as well.
func (e *Engine[H]) Done() <-chan struct{} {
	return e.done
}

// Wait blocks until the worker has exited.
func (e *Engine[H]) Wait() {
	<-e.done
}

// Err returns the error the worker died from, if any.
func (e *Engine[H]) Err() error {
	e.mx.Lock()
	defer e.mx.Unlock()
	return e.err
}

// send delivers an instruction. Instructions for a worker which has been
// closed or has died are dropped, with their acknowledgement released.
func (e *Engine[H]) send(ins instruction) {
	assertThat(!e.ended, "%s instruction after end of input", ins.kind)
	if e.closed {
		releaseAck(ins)
		return
	}
	select {
	case <-e.done:
		releaseAck(ins)
		return
	default:
	}
	select {
	case e.instr <- ins:
	case <-e.done:
		releaseAck(ins)
	}
}

func releaseAck(ins instruction) {
	if ins.ack != nil {
		close(ins.ack)
	}
}

// work is the worker's loop.
func (e *Engine[H]) work(b *treebuilder.Builder[H]) {
	r := &instructionReader{instr: e.instr}
	defer close(e.done)
	defer r.release()
	defer func() {
		if p := recover(); p != nil {
			tracer().Errorf("parsing worker died: %v", p)
			e.mx.Lock()
			e.err = fmt.Errorf("%w: %v", ErrWorkerPanic, p)
			e.mx.Unlock()
		}
	}()
	tracer().Debugf("parsing worker started")
	z := html.NewTokenizer(r)
	for {
		if b.InForeignContent() {
			z.NextIsNotRawText()
		}
		if z.Next() == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				b.End()
				tracer().Debugf("parsing worker reached end of input")
			} else {
				tracer().Debugf("parsing worker stopped: %v", z.Err())
			}
			return
		}
		tok := z.Token()
		if tok.Type == html.StartTagToken && tok.DataAtom == atom.Plaintext && r.markers > 0 {
			r.markers--
			continue
		}
		b.Process(tok)
	}
}
