package treebuilder

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func inTableIM[H comparable](b *Builder[H], tok *html.Token) bool {
	switch tok.Type {
	case html.TextToken:
		if fosterTargets[b.atomOf(b.current())] && isWhitespace(tok.Data) {
			b.insertText(tok.Data)
			return false
		}
	case html.CommentToken:
		b.insertComment(tok.Data)
		return false
	case html.DoctypeToken:
		b.parseError("unexpected doctype")
		return false
	case html.StartTagToken, html.SelfClosingTagToken:
		switch a := tok.DataAtom; {
		case a == atom.Caption:
			b.clearStackTo(atom.Table)
			b.pushMarker()
			b.insertElement(tok)
			b.mode = inCaptionMode
			return false
		case a == atom.Colgroup:
			b.clearStackTo(atom.Table)
			b.insertElement(tok)
			b.mode = inColumnGroupMode
			return false
		case a == atom.Col:
			b.clearStackTo(atom.Table)
			b.insertNamed(HTMLName("colgroup"), nil)
			b.mode = inColumnGroupMode
			return true
		case tableSectionElements[a]:
			b.clearStackTo(atom.Table)
			b.insertElement(tok)
			b.mode = inTableBodyMode
			return false
		case a == atom.Td || a == atom.Th || a == atom.Tr:
			b.clearStackTo(atom.Table)
			b.insertNamed(HTMLName("tbody"), nil)
			b.mode = inTableBodyMode
			return true
		case a == atom.Table:
			b.parseError("nested <table>")
			if !b.inScope(tableScope, atom.Table) {
				return false
			}
			b.popUntil(atom.Table)
			b.resetInsertionMode()
			return true
		case a == atom.Style || a == atom.Script || a == atom.Template:
			return inHeadIM(b, tok)
		case a == atom.Input:
			if t, _ := attrValue(tok, "type"); strings.EqualFold(t, "hidden") {
				b.parseError("hidden input in table")
				b.insertVoid(tok)
				return false
			}
		case a == atom.Form:
			b.parseError("<form> in table")
			return false
		}
	case html.EndTagToken:
		switch a := tok.DataAtom; {
		case a == atom.Table:
			if !b.inScope(tableScope, atom.Table) {
				b.parseError("</table> without open table")
				return false
			}
			b.popUntil(atom.Table)
			b.resetInsertionMode()
			return false
		case a == atom.Template:
			return inHeadIM(b, tok)
		case a == atom.Body || a == atom.Html || tableStructure[a]:
			b.parseError("unexpected </%s> in table", tok.Data)
			return false
		}
	case html.ErrorToken:
		return inBodyIM(b, tok)
	}
	b.parseError("%s %q in table is foster parented", tok.Type, tok.Data)
	b.fostering = true
	reprocess := inBodyIM(b, tok)
	b.fostering = false
	return reprocess
}

// clearStackTo pops elements until the current node is one of the given
// table context elements, html or template.
func (b *Builder[H]) clearStackTo(context ...atom.Atom) {
	context = append(context, atom.Html, atom.Template)
	for len(b.open) > 0 && !b.currentIs(context...) {
		b.pop()
	}
}

func inCaptionIM[H comparable](b *Builder[H], tok *html.Token) bool {
	closing := isEnd(tok, atom.Caption, atom.Table) ||
		(isStart(tok) && tableStructure[tok.DataAtom])
	switch {
	case closing:
		if !b.inScope(tableScope, atom.Caption) {
			b.parseError("no caption to close")
			return false
		}
		b.generateImpliedEndTags(0)
		b.popUntil(atom.Caption)
		b.clearFormattingToMarker()
		b.mode = inTableMode
		return !isEnd(tok, atom.Caption)
	case isEnd(tok, atom.Body, atom.Col, atom.Colgroup, atom.Html, atom.Tbody,
		atom.Td, atom.Tfoot, atom.Th, atom.Thead, atom.Tr):
		b.parseError("unexpected </%s> in caption", tok.Data)
		return false
	}
	return inBodyIM(b, tok)
}

func inColumnGroupIM[H comparable](b *Builder[H], tok *html.Token) bool {
	switch tok.Type {
	case html.TextToken:
		ws, rest := splitWhitespace(tok.Data)
		if ws != "" {
			b.insertText(ws)
		}
		if rest == "" {
			return false
		}
		tok.Data = rest
	case html.CommentToken:
		b.insertComment(tok.Data)
		return false
	case html.DoctypeToken:
		b.parseError("unexpected doctype")
		return false
	case html.StartTagToken, html.SelfClosingTagToken:
		switch tok.DataAtom {
		case atom.Html:
			return inBodyIM(b, tok)
		case atom.Col:
			b.insertVoid(tok)
			return false
		case atom.Template:
			return inHeadIM(b, tok)
		}
	case html.EndTagToken:
		switch tok.DataAtom {
		case atom.Colgroup:
			if !b.currentIs(atom.Colgroup) {
				b.parseError("</colgroup> without open colgroup")
				return false
			}
			b.pop()
			b.mode = inTableMode
			return false
		case atom.Col:
			b.parseError("unexpected </col>")
			return false
		case atom.Template:
			return inHeadIM(b, tok)
		}
	case html.ErrorToken:
		return inBodyIM(b, tok)
	}
	if !b.currentIs(atom.Colgroup) {
		b.parseError("unexpected %s %q in column group", tok.Type, tok.Data)
		return false
	}
	b.pop()
	b.mode = inTableMode
	return true
}

func inTableBodyIM[H comparable](b *Builder[H], tok *html.Token) bool {
	switch {
	case isStart(tok, atom.Tr):
		b.clearStackTo(atom.Tbody, atom.Tfoot, atom.Thead)
		b.insertElement(tok)
		b.mode = inRowMode
		return false
	case isStart(tok, atom.Th, atom.Td):
		b.parseError("<%s> without row", tok.Data)
		b.clearStackTo(atom.Tbody, atom.Tfoot, atom.Thead)
		b.insertNamed(HTMLName("tr"), nil)
		b.mode = inRowMode
		return true
	case isEnd(tok, atom.Tbody, atom.Tfoot, atom.Thead):
		if !b.inScope(tableScope, tok.DataAtom) {
			b.parseError("</%s> without open element", tok.Data)
			return false
		}
		b.clearStackTo(atom.Tbody, atom.Tfoot, atom.Thead)
		b.pop()
		b.mode = inTableMode
		return false
	case isStart(tok, atom.Caption, atom.Col, atom.Colgroup, atom.Tbody, atom.Tfoot, atom.Thead),
		isEnd(tok, atom.Table):
		if !b.inScope(tableScope, atom.Tbody, atom.Thead, atom.Tfoot) {
			b.parseError("no table section to close")
			return false
		}
		b.clearStackTo(atom.Tbody, atom.Tfoot, atom.Thead)
		b.pop()
		b.mode = inTableMode
		return true
	case isEnd(tok, atom.Body, atom.Caption, atom.Col, atom.Colgroup, atom.Html,
		atom.Td, atom.Th, atom.Tr):
		b.parseError("unexpected </%s> in table body", tok.Data)
		return false
	}
	return inTableIM(b, tok)
}

func inRowIM[H comparable](b *Builder[H], tok *html.Token) bool {
	closeRow := func() {
		b.clearStackTo(atom.Tr)
		b.pop()
		b.mode = inTableBodyMode
	}
	switch {
	case isStart(tok, atom.Th, atom.Td):
		b.clearStackTo(atom.Tr)
		b.insertElement(tok)
		b.mode = inCellMode
		b.pushMarker()
		return false
	case isEnd(tok, atom.Tr):
		if !b.inScope(tableScope, atom.Tr) {
			b.parseError("</tr> without open row")
			return false
		}
		closeRow()
		return false
	case isStart(tok, atom.Caption, atom.Col, atom.Colgroup, atom.Tbody, atom.Tfoot,
		atom.Thead, atom.Tr), isEnd(tok, atom.Table):
		if !b.inScope(tableScope, atom.Tr) {
			b.parseError("no row to close")
			return false
		}
		closeRow()
		return true
	case isEnd(tok, atom.Tbody, atom.Tfoot, atom.Thead):
		if !b.inScope(tableScope, tok.DataAtom) {
			b.parseError("</%s> without open element", tok.Data)
			return false
		}
		if !b.inScope(tableScope, atom.Tr) {
			return false
		}
		closeRow()
		return true
	case isEnd(tok, atom.Body, atom.Caption, atom.Col, atom.Colgroup, atom.Html,
		atom.Td, atom.Th):
		b.parseError("unexpected </%s> in row", tok.Data)
		return false
	}
	return inTableIM(b, tok)
}

func inCellIM[H comparable](b *Builder[H], tok *html.Token) bool {
	switch {
	case isEnd(tok, atom.Td, atom.Th):
		if !b.inScope(tableScope, tok.DataAtom) {
			b.parseError("</%s> without open cell", tok.Data)
			return false
		}
		b.closeCell()
		return false
	case isStart(tok, atom.Caption, atom.Col, atom.Colgroup, atom.Tbody, atom.Td,
		atom.Tfoot, atom.Th, atom.Thead, atom.Tr):
		if !b.inScope(tableScope, atom.Td, atom.Th) {
			b.parseError("no cell to close")
			return false
		}
		b.closeCell()
		return true
	case isEnd(tok, atom.Body, atom.Caption, atom.Col, atom.Colgroup, atom.Html):
		b.parseError("unexpected </%s> in cell", tok.Data)
		return false
	case isEnd(tok, atom.Table, atom.Tbody, atom.Tfoot, atom.Thead, atom.Tr):
		if !b.inScope(tableScope, tok.DataAtom) {
			b.parseError("</%s> without open element", tok.Data)
			return false
		}
		b.closeCell()
		return true
	}
	return inBodyIM(b, tok)
}

func (b *Builder[H]) closeCell() {
	b.generateImpliedEndTags(0)
	b.popUntil(atom.Td, atom.Th)
	b.clearFormattingToMarker()
	b.mode = inRowMode
}
