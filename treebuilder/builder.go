package treebuilder

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type insertionMode uint8

const (
	initialMode insertionMode = iota
	beforeHTMLMode
	beforeHeadMode
	inHeadMode
	afterHeadMode
	inBodyMode
	textMode
	inTableMode
	inCaptionMode
	inColumnGroupMode
	inTableBodyMode
	inRowMode
	inCellMode
	inTemplateMode
	afterBodyMode
	afterAfterBodyMode
)

var modeNames = [...]string{"initial", "before-html", "before-head", "in-head",
	"after-head", "in-body", "text", "in-table", "in-caption", "in-column-group",
	"in-table-body", "in-row", "in-cell", "in-template", "after-body",
	"after-after-body"}

func (m insertionMode) String() string {
	return modeNames[m]
}

// A mode handler processes a token and reports whether the token has to be
// reprocessed in the (changed) insertion mode.
type modeHandler[H comparable] func(*Builder[H], *html.Token) bool

// afeEntry is an entry in the list of active formatting elements. A zero
// name marks a scope marker.
type afeEntry[H comparable] struct {
	h     H
	name  QualName
	attrs []html.Attribute
}

func (e afeEntry[H]) isMarker() bool {
	return e.name.Local == ""
}

// Builder constructs a document tree from a token stream, talking to the
// tree exclusively through a TreeSink.
//
// The builder is driven by Process and End. It is not safe for concurrent
// use; the parsing engine owns it on its worker goroutine.
type Builder[H comparable] struct {
	sink          TreeSink[H]
	opts          Options
	doc           H
	mode          insertionMode
	origMode      insertionMode
	open          []H
	afe           []afeEntry[H]
	templateModes []insertionMode
	head          H
	hasHead       bool
	quirks        QuirksMode
	framesetOK    bool
	skipLF        bool
	fostering     bool
	ended         bool
}

// New creates a tree builder for a sink.
func New[H comparable](sink TreeSink[H], opts Options) *Builder[H] {
	return &Builder[H]{
		sink:       sink,
		opts:       opts,
		doc:        sink.Document(),
		mode:       initialMode,
		framesetOK: true,
	}
}

var eofToken = html.Token{Type: html.ErrorToken}

// Process feeds one token to the tree builder.
func (b *Builder[H]) Process(tok html.Token) {
	assertThat(!b.ended, "token %s after end of input", tok.Type)
	if tok.Type == html.ErrorToken {
		return
	}
	if tok.Type == html.StartTagToken || tok.Type == html.SelfClosingTagToken ||
		tok.Type == html.EndTagToken {
		tok.Data = strings.ToLower(tok.Data)
		if tok.DataAtom == 0 {
			tok.DataAtom = atom.Lookup([]byte(tok.Data))
		}
	}
	b.dispatch(&tok)
}

// End signals end of input. Implied elements are created and all open
// elements are popped. The builder will not accept further tokens.
func (b *Builder[H]) End() {
	if b.ended {
		return
	}
	tok := eofToken
	b.dispatch(&tok)
	b.open = b.open[:0]
	b.ended = true
}

// InForeignContent is true if the current node is an SVG or MathML element
// which is not an HTML integration point. Tokenizers should not switch to
// raw text for <title> or <style> then.
func (b *Builder[H]) InForeignContent() bool {
	if len(b.open) == 0 {
		return false
	}
	name := b.sink.ElemName(b.current())
	return name.Space != NamespaceHTML && !integrationPoints[name]
}

func (b *Builder[H]) dispatch(tok *html.Token) {
	for i := 0; ; i++ {
		assertThat(i < 64, "token %v reprocessed too often in mode %s", tok, b.mode)
		if tok.Type == html.TextToken && b.skipLF {
			b.skipLF = false
			tok.Data = strings.TrimPrefix(tok.Data, "\n")
			if tok.Data == "" {
				return
			}
		} else if tok.Type != html.ErrorToken {
			b.skipLF = false
		}
		tracer().Debugf("%s: %s %q", b.mode, tok.Type, tok.Data)
		if !b.handler(b.mode)(b, tok) {
			return
		}
	}
}

func (b *Builder[H]) handler(mode insertionMode) modeHandler[H] {
	switch mode {
	case initialMode:
		return initialIM[H]
	case beforeHTMLMode:
		return beforeHTMLIM[H]
	case beforeHeadMode:
		return beforeHeadIM[H]
	case inHeadMode:
		return inHeadIM[H]
	case afterHeadMode:
		return afterHeadIM[H]
	case inBodyMode:
		return inBodyIM[H]
	case textMode:
		return textIM[H]
	case inTableMode:
		return inTableIM[H]
	case inCaptionMode:
		return inCaptionIM[H]
	case inColumnGroupMode:
		return inColumnGroupIM[H]
	case inTableBodyMode:
		return inTableBodyIM[H]
	case inRowMode:
		return inRowIM[H]
	case inCellMode:
		return inCellIM[H]
	case inTemplateMode:
		return inTemplateIM[H]
	case afterBodyMode:
		return afterBodyIM[H]
	case afterAfterBodyMode:
		return afterAfterBodyIM[H]
	}
	panic(fmt.Sprintf("treebuilder: unknown insertion mode %d", mode))
}

// missingRule is called for tokens the builder has no rule for.
func (b *Builder[H]) missingRule(tok *html.Token) {
	msg := fmt.Sprintf("no rule for %s %q in mode %s", tok.Type, tok.Data, b.mode)
	if !b.opts.IgnoreMissingRules {
		panic("treebuilder: " + msg)
	}
	b.sink.ParseError(msg)
}

func (b *Builder[H]) parseError(format string, args ...interface{}) {
	b.sink.ParseError(fmt.Sprintf(format, args...))
}

// --- Stack of open elements ------------------------------------------------

func (b *Builder[H]) current() H {
	return b.open[len(b.open)-1]
}

func (b *Builder[H]) push(h H) {
	b.open = append(b.open, h)
}

func (b *Builder[H]) pop() H {
	h := b.current()
	b.open = b.open[:len(b.open)-1]
	return h
}

// atomOf returns the atom of an HTML element, 0 for foreign elements.
func (b *Builder[H]) atomOf(h H) atom.Atom {
	name := b.sink.ElemName(h)
	if name.Space != NamespaceHTML {
		return 0
	}
	return atom.Lookup([]byte(name.Local))
}

func (b *Builder[H]) is(h H, a atom.Atom) bool {
	return b.atomOf(h) == a
}

func (b *Builder[H]) currentIs(atoms ...atom.Atom) bool {
	if len(b.open) == 0 {
		return false
	}
	return slices.Contains(atoms, b.atomOf(b.current()))
}

func (b *Builder[H]) stackIndex(h H) int {
	for i := len(b.open) - 1; i >= 0; i-- {
		if b.open[i] == h {
			return i
		}
	}
	return -1
}

func (b *Builder[H]) removeFromStack(h H) {
	if i := b.stackIndex(h); i >= 0 {
		b.open = slices.Delete(b.open, i, i+1)
	}
}

// popUntil pops elements up to and including the topmost element with one
// of the given names.
func (b *Builder[H]) popUntil(atoms ...atom.Atom) {
	for len(b.open) > 0 {
		if a := b.atomOf(b.pop()); slices.Contains(atoms, a) {
			return
		}
	}
}

// lastOnStack returns the topmost open element with name a.
func (b *Builder[H]) lastOnStack(a atom.Atom) (H, int) {
	for i := len(b.open) - 1; i >= 0; i-- {
		if b.is(b.open[i], a) {
			return b.open[i], i
		}
	}
	var none H
	return none, -1
}

// inScope checks if an element with one of the given names is in the scope
// delimited by the boundary set.
func (b *Builder[H]) inScope(boundary atomSet, atoms ...atom.Atom) bool {
	for i := len(b.open) - 1; i >= 0; i-- {
		h := b.open[i]
		a := b.atomOf(h)
		if slices.Contains(atoms, a) {
			return true
		}
		if boundary[a] || (a == 0 && integrationPoints[b.sink.ElemName(h)]) {
			return false
		}
	}
	return false
}

func (b *Builder[H]) elementInScope(target H) bool {
	for i := len(b.open) - 1; i >= 0; i-- {
		h := b.open[i]
		if h == target {
			return true
		}
		if defaultScope[b.atomOf(h)] {
			return false
		}
	}
	return false
}

func (b *Builder[H]) isSpecial(h H) bool {
	name := b.sink.ElemName(h)
	if name.Space != NamespaceHTML {
		return integrationPoints[name]
	}
	return specialElements[atom.Lookup([]byte(name.Local))]
}

func (b *Builder[H]) generateImpliedEndTags(except atom.Atom) {
	for len(b.open) > 0 {
		a := b.atomOf(b.current())
		if a == except || !impliedEndElements[a] {
			return
		}
		b.pop()
	}
}

func (b *Builder[H]) generateAllImpliedEndTags() {
	for len(b.open) > 0 && thoroughlyImpliedEndElements[b.atomOf(b.current())] {
		b.pop()
	}
}

func (b *Builder[H]) closePIfInButtonScope() {
	if b.inScope(buttonScope, atom.P) {
		b.closeP()
	}
}

func (b *Builder[H]) closeP() {
	b.generateImpliedEndTags(atom.P)
	if !b.currentIs(atom.P) {
		b.parseError("unexpected open element while closing paragraph")
	}
	b.popUntil(atom.P)
}

// --- Insertion -------------------------------------------------------------

// insert places a child at the appropriate place relative to target.
func (b *Builder[H]) insert(target H, child NodeOrText[H]) {
	if b.fostering && fosterTargets[b.atomOf(target)] {
		b.fosterParent(child)
		return
	}
	if b.is(target, atom.Template) {
		target = b.sink.GetTemplateContents(target)
	}
	b.sink.Append(target, child)
}

func (b *Builder[H]) fosterParent(child NodeOrText[H]) {
	table, ti := b.lastOnStack(atom.Table)
	if template, i := b.lastOnStack(atom.Template); i > ti {
		b.sink.Append(b.sink.GetTemplateContents(template), child)
		return
	}
	if ti < 0 {
		b.sink.Append(b.open[0], child)
		return
	}
	if _, ok := b.sink.Parent(table); ok {
		b.sink.AppendBeforeSibling(table, child)
		return
	}
	b.sink.Append(b.open[ti-1], child)
}

func (b *Builder[H]) insertText(text string) {
	b.insert(b.current(), AppendText[H](text))
}

func (b *Builder[H]) insertComment(text string) {
	b.insert(b.current(), AppendNode(b.sink.CreateComment(text)))
}

func (b *Builder[H]) createElement(name QualName, attrs []html.Attribute) H {
	return b.sink.CreateElement(name, slices.Clone(attrs))
}

// insertElement creates an element for a start tag, inserts it at the
// appropriate place and pushes it onto the stack of open elements.
func (b *Builder[H]) insertElement(tok *html.Token) H {
	return b.insertNamed(b.nameFor(tok), tok.Attr)
}

func (b *Builder[H]) insertNamed(name QualName, attrs []html.Attribute) H {
	h := b.createElement(name, attrs)
	b.insert(b.current(), AppendNode(h))
	b.push(h)
	return h
}

// insertVoid inserts an element and pops it right away.
func (b *Builder[H]) insertVoid(tok *html.Token) {
	b.insertElement(tok)
	b.pop()
}

// nameFor determines the namespace of a new element from its tag and the
// current node.
func (b *Builder[H]) nameFor(tok *html.Token) QualName {
	switch tok.DataAtom {
	case atom.Svg:
		return QualName{NamespaceSVG, "svg"}
	case atom.Math:
		return QualName{NamespaceMathML, "math"}
	}
	if len(b.open) > 0 {
		cur := b.sink.ElemName(b.current())
		if cur.Space != NamespaceHTML && !integrationPoints[cur] {
			return QualName{cur.Space, tok.Data}
		}
	}
	return HTMLName(tok.Data)
}

// --- Active formatting elements --------------------------------------------

func (b *Builder[H]) pushFormatting(h H, tok *html.Token) {
	b.afe = append(b.afe, afeEntry[H]{h: h, name: b.nameFor(tok), attrs: slices.Clone(tok.Attr)})
}

func (b *Builder[H]) pushMarker() {
	b.afe = append(b.afe, afeEntry[H]{})
}

func (b *Builder[H]) clearFormattingToMarker() {
	for len(b.afe) > 0 {
		e := b.afe[len(b.afe)-1]
		b.afe = b.afe[:len(b.afe)-1]
		if e.isMarker() {
			return
		}
	}
}

func (b *Builder[H]) formattingIndex(h H) int {
	for i := len(b.afe) - 1; i >= 0; i-- {
		if !b.afe[i].isMarker() && b.afe[i].h == h {
			return i
		}
	}
	return -1
}

// lastFormatting finds the last entry with a given name after the last
// marker.
func (b *Builder[H]) lastFormatting(a atom.Atom) int {
	for i := len(b.afe) - 1; i >= 0; i-- {
		e := b.afe[i]
		if e.isMarker() {
			return -1
		}
		if e.name.Space == NamespaceHTML && atom.Lookup([]byte(e.name.Local)) == a {
			return i
		}
	}
	return -1
}

func (b *Builder[H]) reconstructFormatting() {
	if len(b.afe) == 0 {
		return
	}
	last := b.afe[len(b.afe)-1]
	if last.isMarker() || b.stackIndex(last.h) >= 0 {
		return
	}
	i := len(b.afe) - 1
	for i > 0 {
		e := b.afe[i-1]
		if e.isMarker() || b.stackIndex(e.h) >= 0 {
			break
		}
		i--
	}
	for ; i < len(b.afe); i++ {
		e := b.afe[i]
		b.afe[i].h = b.insertNamed(e.name, e.attrs)
	}
}

// --- Insertion mode reset --------------------------------------------------

func (b *Builder[H]) resetInsertionMode() {
	for i := len(b.open) - 1; i >= 0; i-- {
		last := i == 0
		switch b.atomOf(b.open[i]) {
		case atom.Td, atom.Th:
			if !last {
				b.mode = inCellMode
				return
			}
		case atom.Tr:
			b.mode = inRowMode
			return
		case atom.Tbody, atom.Thead, atom.Tfoot:
			b.mode = inTableBodyMode
			return
		case atom.Caption:
			b.mode = inCaptionMode
			return
		case atom.Colgroup:
			b.mode = inColumnGroupMode
			return
		case atom.Table:
			b.mode = inTableMode
			return
		case atom.Template:
			b.mode = b.templateModes[len(b.templateModes)-1]
			return
		case atom.Head:
			if !last {
				b.mode = inHeadMode
				return
			}
		case atom.Body:
			b.mode = inBodyMode
			return
		case atom.Html:
			if b.hasHead {
				b.mode = afterHeadMode
			} else {
				b.mode = beforeHeadMode
			}
			return
		}
	}
	b.mode = inBodyMode
}

// --- Helpers ---------------------------------------------------------------

const whitespace = " \t\n\f\r"

// splitWhitespace splits text into leading whitespace and the rest.
func splitWhitespace(s string) (string, string) {
	i := 0
	for i < len(s) && strings.IndexByte(whitespace, s[i]) >= 0 {
		i++
	}
	return s[:i], s[i:]
}

func isWhitespace(s string) bool {
	return strings.Trim(s, whitespace) == ""
}

func isStart(tok *html.Token, atoms ...atom.Atom) bool {
	return (tok.Type == html.StartTagToken || tok.Type == html.SelfClosingTagToken) &&
		(len(atoms) == 0 || slices.Contains(atoms, tok.DataAtom))
}

func isEnd(tok *html.Token, atoms ...atom.Atom) bool {
	return tok.Type == html.EndTagToken && (len(atoms) == 0 || slices.Contains(atoms, tok.DataAtom))
}

func attrValue(tok *html.Token, key string) (string, bool) {
	for _, a := range tok.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
