package parser

import (
	"errors"
	"testing"

	"github.com/Syrcon/servo/dom"
	"github.com/Syrcon/servo/dom/domdbg"
	"github.com/Syrcon/servo/maybe"
	"github.com/Syrcon/servo/sink"
	"github.com/Syrcon/servo/treebuilder"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// recorder counts completion notifications.
type recorder struct {
	calls int
	err   error
}

func (r *recorder) ParsingComplete(id PipelineID, err error) {
	r.calls++
	r.err = err
}

func parse(t *testing.T, chunks []string, opts ...Option) (*dom.Document, *Parser, *recorder) {
	t.Helper()
	rec := &recorder{}
	doc := dom.NewDocument("about:test")
	p := New(doc, append([]Option{WithCoordinator(rec)}, opts...)...)
	for _, chunk := range chunks {
		p.FeedChunk(chunk)
	}
	p.MarkLastChunkReceived()
	return doc, p, rec
}

func TestParseSplitTag(t *testing.T) {
	defer goleak.VerifyNone(t)
	teardown := gotestingadapter.QuickConfig(t, "servo.parser")
	defer teardown()
	//
	doc, p, rec := parse(t, []string{"<htm", "l><body>hi</body></html>"})
	if out := domdbg.Outline(doc.Node); out != `(html(head,body("hi")))` {
		t.Errorf("expected html containing body containing \"hi\", is %s", out)
	}
	assert.Equal(t, Complete, p.State())
	assert.Equal(t, 1, rec.calls)
	assert.NoError(t, rec.err)
	assert.Nil(t, doc.CurrentParser(), "completion must clear the current parser")
	select {
	case <-p.Done():
	default:
		t.Errorf("expected Done to be closed after completion")
	}
}

func TestParseEmptyInput(t *testing.T) {
	defer goleak.VerifyNone(t)
	teardown := gotestingadapter.QuickConfig(t, "servo.parser")
	defer teardown()
	//
	doc, p, rec := parse(t, nil)
	assert.Equal(t, `(html(head,body))`, domdbg.Outline(doc.Node))
	assert.Equal(t, Complete, p.State())
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, "BackCompat", doc.CompatMode())
}

func TestCompletionFiresOnce(t *testing.T) {
	defer goleak.VerifyNone(t)
	teardown := gotestingadapter.QuickConfig(t, "servo.parser")
	defer teardown()
	//
	_, p, rec := parse(t, []string{"<p>x"})
	p.MarkLastChunkReceived()
	p.Drain()
	p.Finish()
	if rec.calls != 1 {
		t.Errorf("expected exactly one completion notification, have %d", rec.calls)
	}
}

func TestSuspendResumeEquivalence(t *testing.T) {
	defer goleak.VerifyNone(t)
	teardown := gotestingadapter.QuickConfig(t, "servo.parser")
	defer teardown()
	//
	inputs := []string{
		"<!DOCTYPE html><title>T &amp; U</title><p>a<b>b<i>c</b>d</i></p>",
		"<table><tr><td>x</td>y</table><ul><li>1<li>2</ul>",
		"<template><p>t</p></template><svg><title>s</title></svg><pre>\nz</pre>",
	}
	for _, input := range inputs {
		ref, _, _ := parse(t, []string{input})
		want := domdbg.Outline(ref.Node)
		for i := 1; i < len(input); i++ {
			applied := 0
			doc := dom.NewDocument("about:test")
			p := New(doc, OnApply(func(uint64, sink.Operation) { applied++ }))
			p.FeedChunk(input[:i])
			p.Suspend()
			before := applied
			p.FeedChunk(input[i:])
			if applied != before {
				t.Fatalf("expected no operation to be applied while suspended, %d were", applied-before)
			}
			p.Resume()
			p.MarkLastChunkReceived()
			if got := domdbg.Outline(doc.Node); got != want {
				t.Fatalf("split at %d: expected %s, is %s", i, want, got)
			}
			require.Equal(t, Complete, p.State())
		}
	}
}

func TestScriptSuspendsParser(t *testing.T) {
	defer goleak.VerifyNone(t)
	teardown := gotestingadapter.QuickConfig(t, "servo.parser")
	defer teardown()
	//
	var seqs []uint64
	host := ScriptHostFunc(func(p *Parser, script *dom.Node) {
		p.Suspend()
	})
	doc := dom.NewDocument("about:test")
	rec := &recorder{}
	p := New(doc, WithScriptHost(host), WithCoordinator(rec),
		OnApply(func(seq uint64, _ sink.Operation) { seqs = append(seqs, seq) }))
	p.FeedChunk("<script>x</script><p>after</p>")
	require.True(t, p.IsSuspended())
	assert.Equal(t, Suspended, p.State())
	assert.Equal(t, `(html(head(script("x"))))`, domdbg.Outline(doc.Node))
	n := len(seqs)
	p.FeedChunk("<i>more</i>")
	p.MarkLastChunkReceived()
	assert.Equal(t, n, len(seqs), "no operation may be applied while suspended")
	assert.Equal(t, 0, rec.calls)
	p.Resume()
	assert.Equal(t, `(html(head(script("x")),body(p("after"),i("more"))))`, domdbg.Outline(doc.Node))
	assert.Equal(t, Complete, p.State())
	assert.Equal(t, 1, rec.calls)
	for i := 1; i < len(seqs); i++ {
		if seqs[i] != seqs[i-1]+1 {
			t.Fatalf("expected operations to be applied in emission order, got %v", seqs)
		}
	}
}

func TestScriptFeedsInput(t *testing.T) {
	defer goleak.VerifyNone(t)
	teardown := gotestingadapter.QuickConfig(t, "servo.parser")
	defer teardown()
	//
	for _, nesting := range []int{DefaultMaxNesting, 1} {
		ran := 0
		host := ScriptHostFunc(func(p *Parser, script *dom.Node) {
			ran++
			if txt, _ := script.TextContent(); txt == "write" {
				p.FeedChunk("<b>w</b>")
			}
		})
		doc, p, _ := parse(t, []string{"<script>write</script>", "<p>x</p>"},
			WithScriptHost(host), WithMaxNesting(nesting))
		assert.Equal(t, `(html(head(script("write")),body(b("w"),p("x"))))`, domdbg.Outline(doc.Node),
			"nesting %d", nesting)
		assert.Equal(t, 1, ran)
		assert.Equal(t, Complete, p.State())
	}
}

func TestScriptingDisabled(t *testing.T) {
	defer goleak.VerifyNone(t)
	teardown := gotestingadapter.QuickConfig(t, "servo.parser")
	defer teardown()
	//
	ran := false
	host := ScriptHostFunc(func(*Parser, *dom.Node) { ran = true })
	bo := treebuilder.DefaultOptions()
	bo.ScriptingEnabled = false
	doc, _, _ := parse(t, []string{"<script>x</script>"}, WithScriptHost(host), WithBuilderOptions(bo))
	assert.False(t, ran, "script must not run with scripting disabled")
	script, err := doc.Query("script")
	require.NoError(t, err)
	require.NotNil(t, script)
	assert.True(t, script.ScriptStarted())
}

func TestTemplateAndPlaintext(t *testing.T) {
	defer goleak.VerifyNone(t)
	teardown := gotestingadapter.QuickConfig(t, "servo.parser")
	defer teardown()
	//
	doc, _, _ := parse(t, []string{"<template><p>x</p></template>"})
	assert.Equal(t, `(html(head(template[p("x")]),body))`, domdbg.Outline(doc.Node))
	//
	doc = dom.NewDocument("about:text")
	p := New(doc)
	p.FeedChunk("<pre>\n")
	p.SetPlaintextState()
	p.FeedChunk("<b>not bold</b>")
	p.MarkLastChunkReceived()
	assert.Equal(t, `(html(head,body(pre("<b>not bold</b>"))))`, domdbg.Outline(doc.Node))
}

func TestUnknownHandleAborts(t *testing.T) {
	defer goleak.VerifyNone(t)
	teardown := gotestingadapter.QuickConfig(t, "servo.parser")
	defer teardown()
	//
	rec := &recorder{}
	doc := dom.NewDocument("about:test")
	p := New(doc, WithCoordinator(rec))
	p.queue.Enqueue(sink.Insert{
		Parent:  sink.Document,
		Sibling: maybe.Nothing[sink.Handle](),
		Child:   treebuilder.AppendNode[sink.Handle](99),
	})
	p.applyPending()
	assert.Equal(t, Aborted, p.State())
	assert.ErrorIs(t, p.Err(), ErrIntegrity)
	assert.ErrorIs(t, p.Err(), sink.ErrUnknownHandle)
	assert.Equal(t, 1, rec.calls)
	assert.ErrorIs(t, rec.err, sink.ErrUnknownHandle)
	assert.True(t, p.queue.Empty())
	p.FeedChunk("<p>ignored")
	p.MarkLastChunkReceived()
	assert.Equal(t, 1, rec.calls, "an aborted session never completes")
	assert.Nil(t, doc.CurrentParser())
}

func TestCrossDocumentAborts(t *testing.T) {
	defer goleak.VerifyNone(t)
	teardown := gotestingadapter.QuickConfig(t, "servo.parser")
	defer teardown()
	//
	other := dom.NewDocument("about:other")
	for _, op := range []sink.Operation{
		sink.Insert{Parent: sink.Document, Sibling: maybe.Nothing[sink.Handle](), Child: treebuilder.AppendNode[sink.Handle](50)},
		sink.ReparentChildren{Node: 51, NewParent: sink.Document},
	} {
		p := New(dom.NewDocument("about:test"))
		foreign := other.CreateElement(treebuilder.HTMLName("div"), nil)
		holder := other.CreateElement(treebuilder.HTMLName("div"), nil)
		require.NoError(t, holder.AppendChild(other.CreateComment("c")))
		require.NoError(t, p.nodes.Bind(50, foreign))
		require.NoError(t, p.nodes.Bind(51, holder))
		p.queue.Enqueue(op)
		p.applyPending()
		assert.Equal(t, Aborted, p.State(), "operation %v", op)
		assert.ErrorIs(t, p.Err(), dom.ErrWrongDocument)
	}
}

func TestHandleBoundTwiceAborts(t *testing.T) {
	defer goleak.VerifyNone(t)
	teardown := gotestingadapter.QuickConfig(t, "servo.parser")
	defer teardown()
	//
	p := New(dom.NewDocument("about:test"))
	p.queue.Enqueue(sink.CreateComment{Target: 7, Text: "a"})
	p.queue.Enqueue(sink.CreateComment{Target: 7, Text: "b"})
	p.applyPending()
	assert.ErrorIs(t, p.Err(), sink.ErrHandleRebound)
}

func TestProtocolViolationsPanic(t *testing.T) {
	defer goleak.VerifyNone(t)
	teardown := gotestingadapter.QuickConfig(t, "servo.parser")
	defer teardown()
	//
	doc := dom.NewDocument("about:test")
	p := New(doc)
	assert.Panics(t, p.Resume, "resume while not suspended")
	p.Suspend()
	assert.Panics(t, p.Suspend, "double suspend")
	assert.Panics(t, p.Finish, "finish while suspended")
	p.Resume()
	p.MarkLastChunkReceived()
	require.Equal(t, Complete, p.State())
	assert.Panics(t, func() { p.FeedChunk("late") }, "feed after end")
}

func TestReplaceParser(t *testing.T) {
	defer goleak.VerifyNone(t)
	teardown := gotestingadapter.QuickConfig(t, "servo.parser")
	defer teardown()
	//
	doc := dom.NewDocument("about:test")
	rec1 := &recorder{}
	p1 := New(doc, WithCoordinator(rec1))
	p1.FeedChunk("<p>first")
	p2 := New(doc)
	assert.Equal(t, Aborted, p1.State())
	assert.True(t, errors.Is(p1.Err(), ErrReplaced))
	assert.Equal(t, 1, rec1.calls)
	assert.Equal(t, p2, doc.CurrentParser())
	p2.FeedChunk("<p>second")
	p2.MarkLastChunkReceived()
	assert.Equal(t, Complete, p2.State())
	assert.Nil(t, doc.CurrentParser())
	if out := domdbg.Outline(doc.Node); out != `(html(head,body(p("second"))))` {
		t.Errorf("expected only the tree of the second parser, is %s", out)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "servo.parser")
	defer teardown()
	//
	conf := testconfig.Conf{
		"parser.maxnesting": 3,
		"parser.scripting":  false,
	}
	o := defaultOptions()
	for _, opt := range FromConfig(conf) {
		opt(&o)
	}
	assert.Equal(t, 3, o.maxNesting)
	assert.False(t, o.builder.ScriptingEnabled)
	assert.True(t, o.builder.IgnoreMissingRules)
	assert.Empty(t, FromConfig(nil))
}

func TestPipelineID(t *testing.T) {
	id1, id2 := NewPipelineID(), NewPipelineID()
	assert.NotEqual(t, id1, id2)
	assert.Len(t, id1.String(), 36)
	rec := &recorder{}
	_, p, _ := parse(t, nil, WithPipeline(id1), WithCoordinator(rec))
	assert.Equal(t, id1, p.Pipeline())
	assert.Equal(t, 1, rec.calls)
}
