package parser

import (
	"sync/atomic"

	"github.com/Syrcon/servo/dom"
	"github.com/Syrcon/servo/engine"
	"github.com/Syrcon/servo/sink"
	"github.com/emirpasic/gods/queues/linkedlistqueue"
)

// Parser is a parse session for a document. All methods must be called
// from the goroutine owning the document.
type Parser struct {
	doc       *dom.Document
	opts      options
	queue     *sink.Queue
	nodes     *sink.Nodes[*dom.Node]
	engine    *engine.Engine[sink.Handle]
	pending   *linkedlistqueue.Queue // chunks of input not yet handed to the worker
	suspended atomic.Bool
	state     State
	lastChunk bool // no more input will be fed
	endSent   bool
	endAck    <-chan struct{}
	finished  bool // worker acknowledged end of input
	depth     int  // nesting of drains
	err       error
	done      chan struct{}
}

// New creates a parse session for doc and makes it the document's current
// parser. A previous parser of doc is invalidated.
func New(doc *dom.Document, opts ...Option) *Parser {
	p := &Parser{
		doc:     doc,
		opts:    defaultOptions(),
		queue:   sink.NewQueue(),
		nodes:   sink.NewNodes(doc.Node),
		pending: linkedlistqueue.New(),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(&p.opts)
	}
	s := sink.New(sink.NewTable(), p.queue)
	p.engine = engine.Start[sink.Handle](s, p.opts.builder)
	doc.ReplaceParser(p)
	sessionsActive.Inc()
	tracer().Infof("parser %v started for %s", p.opts.pipeline, doc.URL())
	return p
}

// Document returns the document the parser writes to.
func (p *Parser) Document() *dom.Document {
	return p.doc
}

// Pipeline returns the pipeline id of the session.
func (p *Parser) Pipeline() PipelineID {
	return p.opts.pipeline
}

// State returns the state of the session.
func (p *Parser) State() State {
	return p.state
}

// Err returns the error the session has been aborted with, if any.
func (p *Parser) Err() error {
	return p.err
}

// Done returns a channel closed when the session has completed or aborted.
func (p *Parser) Done() <-chan struct{} {
	return p.done
}

// IsSuspended is true while the parser waits for Resume.
func (p *Parser) IsSuspended() bool {
	return p.suspended.Load()
}

// FeedChunk appends decoded input. Unless the parser is suspended, the
// input is parsed right away.
func (p *Parser) FeedChunk(text string) {
	assertThat(!p.endSent, "input fed after end of input")
	if p.state.Terminal() {
		return
	}
	p.pending.Enqueue(text)
	chunksFed.Inc()
	if !p.IsSuspended() {
		p.Drain()
	}
}

// SetPlaintextState makes the worker treat all input fed afterwards as
// plain text.
func (p *Parser) SetPlaintextState() {
	if p.state.Terminal() {
		return
	}
	p.flushPending()
	p.engine.SetPlaintextState()
}

// flushPending hands queued input to the worker without running it, so
// that instructions stay in input order.
func (p *Parser) flushPending() {
	for {
		chunk, ok := p.pending.Dequeue()
		if !ok {
			return
		}
		p.engine.Feed(chunk.(string))
	}
}

// Suspend pauses parsing. No operation is applied until Resume.
func (p *Parser) Suspend() {
	assertThat(!p.IsSuspended(), "suspend while suspended")
	p.suspended.Store(true)
	if !p.state.Terminal() {
		p.state = Suspended
	}
	tracer().Debugf("parser %v suspended", p.opts.pipeline)
}

// Resume continues a suspended parser.
func (p *Parser) Resume() {
	assertThat(p.IsSuspended(), "resume while not suspended")
	p.suspended.Store(false)
	if p.state.Terminal() {
		return
	}
	p.state = Running
	if p.endSent {
		p.state = Finished
	}
	tracer().Debugf("parser %v resumed", p.opts.pipeline)
	p.Drain()
}

// MarkLastChunkReceived records that no more input will be fed. Unless the
// parser is suspended, the remaining input is parsed and the session
// finished.
func (p *Parser) MarkLastChunkReceived() {
	p.lastChunk = true
	if !p.IsSuspended() {
		p.Drain()
	}
}

// Drain hands pending input to the worker chunk by chunk and applies the
// resulting operations, until either no input is left or the parser has
// been suspended. Once all input has been received, Drain finishes the
// session.
func (p *Parser) Drain() {
	if p.state.Terminal() {
		return
	}
	if p.depth >= p.opts.maxNesting {
		tracer().Debugf("drain nested too deeply, input stays queued")
		return
	}
	p.depth++
	defer func() { p.depth-- }()
	if p.state == Idle {
		p.state = Running
	}
	if p.endSent {
		p.awaitEnd()
		return
	}
	for !p.IsSuspended() && !p.state.Terminal() {
		chunk, ok := p.pending.Dequeue()
		if !ok {
			p.pump(p.engine.Run()) // flush buffered input
			break
		}
		p.engine.Feed(chunk.(string))
		p.pump(p.engine.Run())
	}
	if p.depth == 1 && p.lastChunk && !p.IsSuspended() && p.pending.Empty() && !p.state.Terminal() {
		p.Finish()
	}
}

// Finish signals end of input to the worker and applies the remaining
// operations. The parser must not be suspended and all input must have been
// handed to the worker.
func (p *Parser) Finish() {
	assertThat(!p.IsSuspended(), "finish while suspended")
	assertThat(p.pending.Empty(), "finish with pending input")
	if p.endSent || p.state.Terminal() {
		return
	}
	p.endSent = true
	p.lastChunk = true
	p.state = Finished
	p.endAck = p.engine.End()
	tracer().Debugf("parser %v finished input", p.opts.pipeline)
	p.awaitEnd()
}

// awaitEnd applies operations until the worker has acknowledged end of
// input.
func (p *Parser) awaitEnd() {
	if p.pump(p.endAck) {
		p.finished = true
		p.checkCompletion()
	}
}

// pump applies operations as they arrive until ack is closed. It returns
// true if ack has been observed, false if pumping stopped because the
// parser has been suspended or the session ended.
func (p *Parser) pump(ack <-chan struct{}) bool {
	for {
		p.applyPending()
		if p.IsSuspended() || p.state.Terminal() {
			return false
		}
		select {
		case <-ack:
			p.applyPending()
			return !p.state.Terminal()
		case <-p.engine.Done():
			if err := p.engine.Err(); err != nil {
				p.abort(err)
				return false
			}
			p.applyPending()
			return !p.state.Terminal()
		case <-p.queue.Wake():
		}
	}
}

// checkCompletion completes the session once the worker is done and the
// last operation has been applied.
func (p *Parser) checkCompletion() {
	if !p.finished || p.queue.InFlight() != 0 || p.state.Terminal() {
		return
	}
	p.engine.Wait()
	p.state = Complete
	p.doc.ClearParser(p)
	sessionsActive.Dec()
	sessionsEnded.WithLabelValues("complete").Inc()
	tracer().Infof("parser %v complete", p.opts.pipeline)
	close(p.done)
	if p.opts.coordinator != nil {
		p.opts.coordinator.ParsingComplete(p.opts.pipeline, nil)
	}
}

// abort ends the session because of a fatal error.
func (p *Parser) abort(err error) {
	if p.state.Terminal() {
		return
	}
	tracer().Errorf("parser %v aborted: %v", p.opts.pipeline, err)
	p.err = err
	p.state = Aborted
	p.engine.Close()
	p.engine.Wait()
	dropped := p.queue.Drop()
	p.pending.Clear()
	tracer().Debugf("dropped %d operations of aborted parser", dropped)
	p.doc.ClearParser(p)
	sessionsActive.Dec()
	sessionsEnded.WithLabelValues("aborted").Inc()
	close(p.done)
	if p.opts.coordinator != nil {
		p.opts.coordinator.ParsingComplete(p.opts.pipeline, err)
	}
}

// Invalidate aborts the session because the document got a new parser.
func (p *Parser) Invalidate() {
	p.abort(ErrReplaced)
}

var _ dom.Invalidator = (*Parser)(nil)
