package engine

import "io"

type instrKind uint8

const (
	feedInstr instrKind = iota
	runInstr
	plaintextInstr
	endInstr
)

func (k instrKind) String() string {
	switch k {
	case feedInstr:
		return "feed"
	case runInstr:
		return "run"
	case plaintextInstr:
		return "plaintext"
	}
	return "end"
}

type instruction struct {
	kind instrKind
	text string
	ack  chan struct{}
}

// plaintextMarker is injected into the input to switch the tokenizer to
// plain text. The worker drops the start tag it produces.
const plaintextMarker = "<plaintext>"

// instructionReader is the input of the tokenizer. It hands out fed text
// and blocks on the instruction channel when all of it has been consumed.
// A tokenizer asking for more input has processed everything it could,
// therefore outstanding Run requests are acknowledged right before
// blocking.
type instructionReader struct {
	instr   <-chan instruction
	buf     []byte
	runs    []chan struct{}
	markers int // plaintext markers not yet seen by the worker
	eof     bool
	endAck  chan struct{}
}

func (r *instructionReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		if r.eof {
			return 0, io.EOF
		}
		r.ackRuns()
		ins, ok := <-r.instr
		if !ok {
			return 0, errClosed
		}
		tracer().Debugf("worker received %s instruction", ins.kind)
		switch ins.kind {
		case feedInstr:
			r.buf = append(r.buf, ins.text...)
		case runInstr:
			r.runs = append(r.runs, ins.ack)
		case plaintextInstr:
			r.buf = append(r.buf, plaintextMarker...)
			r.markers++
		case endInstr:
			r.eof = true
			r.endAck = ins.ack
		}
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

func (r *instructionReader) ackRuns() {
	for _, ack := range r.runs {
		close(ack)
	}
	r.runs = r.runs[:0]
}

// release closes every acknowledgement the worker holds or which is still
// waiting in the channel.
func (r *instructionReader) release() {
	r.ackRuns()
	if r.endAck != nil {
		close(r.endAck)
		r.endAck = nil
	}
	for {
		select {
		case ins, ok := <-r.instr:
			if !ok {
				return
			}
			releaseAck(ins)
		default:
			return
		}
	}
}
