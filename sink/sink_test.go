package sink

import (
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/Syrcon/servo/maybe"
	"github.com/Syrcon/servo/treebuilder"
	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestTableAllocation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "servo.sink")
	defer teardown()
	//
	table := NewTable()
	if table.Len() != 1 {
		t.Fatalf("expected document to be pre-registered, table has %d entries", table.Len())
	}
	h1, h2 := table.Allocate(), table.Allocate()
	if h1 != 1 || h2 != 2 {
		t.Errorf("expected handles #1 and #2, are %v and %v", h1, h2)
	}
	table.Register(h1, maybe.Nothing[Handle](), maybe.Just(treebuilder.HTMLName("div")))
	m, ok := table.Metadata(h1)
	require.True(t, ok)
	assert.True(t, m.Parent.IsNothing())
	assert.Equal(t, "div", m.Name.WithDefault(treebuilder.QualName{}).Local)
	_, ok = table.Metadata(h2)
	assert.False(t, ok, "allocated but unregistered handle must not have metadata")
}

func TestTableRegisterTwicePanics(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "servo.sink")
	defer teardown()
	//
	table := NewTable()
	assert.Panics(t, func() {
		table.Register(Document, maybe.Nothing[Handle](), maybe.Nothing[treebuilder.QualName]())
	})
	assert.Panics(t, func() {
		table.Register(42, maybe.Nothing[Handle](), maybe.Nothing[treebuilder.QualName]())
	}, "registering a handle which was never allocated")
}

func TestTableConcurrentAllocation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "servo.sink")
	defer teardown()
	//
	table := NewTable()
	var wg sync.WaitGroup
	var mx sync.Mutex
	seen := make(map[Handle]bool)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h := table.Allocate()
				mx.Lock()
				if seen[h] {
					t.Errorf("expected handle %v to be unique", h)
				}
				seen[h] = true
				mx.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 800)
	assert.False(t, seen[Document])
}

func TestNodesResolve(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "servo.sink")
	defer teardown()
	//
	nodes := NewNodes("doc")
	n, err := nodes.Resolve(Document)
	require.NoError(t, err)
	assert.Equal(t, "doc", n)
	require.NoError(t, nodes.Bind(3, "three"))
	assert.ErrorIs(t, nodes.Bind(3, "again"), ErrHandleRebound)
	_, err = nodes.Resolve(4)
	assert.ErrorIs(t, err, ErrUnknownHandle)
	assert.Equal(t, 2, nodes.Len())
}

func TestQueueInFlight(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "servo.sink")
	defer teardown()
	//
	q := NewQueue()
	q.Enqueue(CompleteScript{Target: 1})
	q.Enqueue(RemoveFromParent{Target: 2})
	select {
	case <-q.Wake():
	default:
		t.Errorf("expected a wake-up signal after enqueue")
	}
	if q.InFlight() != 2 || q.Len() != 2 {
		t.Errorf("expected 2 operations in flight, is %d (%d queued)", q.InFlight(), q.Len())
	}
	env, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, uint64(1), env.Seq)
	assert.Equal(t, CompleteScript{Target: 1}, env.Op)
	assert.Equal(t, int64(2), q.InFlight(), "dequeued but not applied counts as in flight")
	q.Done()
	assert.Equal(t, int64(1), q.InFlight())
	assert.Equal(t, 1, q.Drop())
	assert.Equal(t, int64(0), q.InFlight())
	_, ok = q.Dequeue()
	assert.False(t, ok)
	assert.Panics(t, func() { q.Done() })
}

func emit(t *testing.T, input string) (*Sink, []string) {
	t.Helper()
	q := NewQueue()
	s := New(NewTable(), q)
	b := treebuilder.New[Handle](s, treebuilder.DefaultOptions())
	z := html.NewTokenizer(strings.NewReader(input))
	for {
		if z.Next() == html.ErrorToken {
			require.ErrorIs(t, z.Err(), io.EOF)
			break
		}
		b.Process(z.Token())
	}
	b.End()
	var ops []string
	for {
		env, ok := q.Dequeue()
		if !ok {
			break
		}
		ops = append(ops, env.Op.String())
		q.Done()
	}
	return s, ops
}

func TestSinkEmitsOperations(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "servo.sink")
	defer teardown()
	//
	_, ops := emit(t, "<p>hi")
	expected := []string{
		"set-quirks-mode quirks",
		"create-element #1 <html>",
		"insert #1 into #0",
		"create-element #2 <head>",
		"insert #2 into #1",
		"create-element #3 <body>",
		"insert #3 into #1",
		"create-element #4 <p>",
		"insert #4 into #3",
		`insert "hi" into #4`,
	}
	if diff := cmp.Diff(expected, ops); diff != "" {
		t.Errorf("operation stream mismatch (-want +got):\n%s", diff)
	}
}

func TestSinkTracksParents(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "servo.sink")
	defer teardown()
	//
	s, ops := emit(t, "<!DOCTYPE html><table>x</table>")
	body, ok := s.Parent(4)
	require.True(t, ok, "table must have a parent")
	assert.Equal(t, Handle(3), body)
	assert.Equal(t, "table", s.ElemName(4).Local)
	fostered := false
	for _, op := range ops {
		if strings.HasPrefix(op, `insert "x" into #3 before #4`) {
			fostered = true
		}
	}
	assert.True(t, fostered, "expected text to be foster-parented before the table, ops are %v", ops)
}

func TestSinkTemplateContents(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "servo.sink")
	defer teardown()
	//
	s := New(NewTable(), NewQueue())
	tmpl := s.CreateElement(treebuilder.HTMLName("template"), nil)
	c1 := s.GetTemplateContents(tmpl)
	c2 := s.GetTemplateContents(tmpl)
	if c1 != c2 {
		t.Errorf("expected template contents to be allocated once, are %v and %v", c1, c2)
	}
	assert.Panics(t, func() { s.ElemName(c1) }, "contents fragment has no element name")
}

func TestSinkReparent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "servo.sink")
	defer teardown()
	//
	s := New(NewTable(), NewQueue())
	a := s.CreateElement(treebuilder.HTMLName("a"), nil)
	b := s.CreateElement(treebuilder.HTMLName("b"), nil)
	c := s.CreateElement(treebuilder.HTMLName("i"), nil)
	d := s.CreateElement(treebuilder.HTMLName("u"), nil)
	e := s.CreateElement(treebuilder.HTMLName("em"), nil)
	s.Append(a, treebuilder.AppendNode(c))
	s.Append(a, treebuilder.AppendNode(d))
	s.Append(b, treebuilder.AppendNode(e))
	s.ReparentChildren(a, b)
	p, ok := s.Parent(c)
	require.True(t, ok)
	assert.Equal(t, b, p)
	assert.Empty(t, s.Table().childrenOf(a))
	assert.ElementsMatch(t, []Handle{c, d, e}, s.Table().childrenOf(b))
	s.RemoveFromParent(c)
	_, ok = s.Parent(c)
	assert.False(t, ok)
	assert.ElementsMatch(t, []Handle{d, e}, s.Table().childrenOf(b))
	s.Append(a, treebuilder.AppendNode(d))
	assert.ElementsMatch(t, []Handle{d}, s.Table().childrenOf(a))
	assert.ElementsMatch(t, []Handle{e}, s.Table().childrenOf(b))
}
