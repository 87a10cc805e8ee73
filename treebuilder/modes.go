package treebuilder

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func initialIM[H comparable](b *Builder[H], tok *html.Token) bool {
	switch tok.Type {
	case html.TextToken:
		_, rest := splitWhitespace(tok.Data)
		if rest == "" {
			return false
		}
		tok.Data = rest
	case html.CommentToken:
		b.sink.Append(b.doc, AppendNode(b.sink.CreateComment(tok.Data)))
		return false
	case html.DoctypeToken:
		name, public, system, quirks := parseDoctype(tok.Data)
		b.sink.AppendDoctypeToDocument(name, public, system)
		b.setQuirksMode(quirks)
		b.mode = beforeHTMLMode
		return false
	}
	b.parseError("missing doctype")
	b.setQuirksMode(Quirks)
	b.mode = beforeHTMLMode
	return true
}

func beforeHTMLIM[H comparable](b *Builder[H], tok *html.Token) bool {
	var attrs []html.Attribute
	explicit := false
	switch tok.Type {
	case html.DoctypeToken:
		b.parseError("unexpected doctype")
		return false
	case html.CommentToken:
		b.sink.Append(b.doc, AppendNode(b.sink.CreateComment(tok.Data)))
		return false
	case html.TextToken:
		_, rest := splitWhitespace(tok.Data)
		if rest == "" {
			return false
		}
		tok.Data = rest
	case html.StartTagToken, html.SelfClosingTagToken:
		if tok.DataAtom == atom.Html {
			attrs, explicit = tok.Attr, true
		}
	case html.EndTagToken:
		if !isEnd(tok, atom.Head, atom.Body, atom.Html, atom.Br) {
			b.parseError("unexpected </%s>", tok.Data)
			return false
		}
	}
	h := b.createElement(HTMLName("html"), attrs)
	b.sink.Append(b.doc, AppendNode(h))
	b.push(h)
	b.mode = beforeHeadMode
	return !explicit
}

func beforeHeadIM[H comparable](b *Builder[H], tok *html.Token) bool {
	switch tok.Type {
	case html.TextToken:
		_, rest := splitWhitespace(tok.Data)
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
		case atom.Head:
			b.head, b.hasHead = b.insertElement(tok), true
			b.mode = inHeadMode
			return false
		}
	case html.EndTagToken:
		if !isEnd(tok, atom.Head, atom.Body, atom.Html, atom.Br) {
			b.parseError("unexpected </%s>", tok.Data)
			return false
		}
	}
	b.head, b.hasHead = b.insertNamed(HTMLName("head"), nil), true
	b.mode = inHeadMode
	return true
}

func inHeadIM[H comparable](b *Builder[H], tok *html.Token) bool {
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
		case atom.Base, atom.Basefont, atom.Bgsound, atom.Link, atom.Meta:
			b.insertVoid(tok)
			return false
		case atom.Title, atom.Style, atom.Noframes, atom.Noscript:
			b.insertRawText(tok)
			return false
		case atom.Script:
			h := b.insertElement(tok)
			if !b.opts.ScriptingEnabled {
				b.sink.MarkScriptAlreadyStarted(h)
			}
			b.origMode, b.mode = b.mode, textMode
			return false
		case atom.Template:
			b.insertElement(tok)
			b.pushMarker()
			b.framesetOK = false
			b.mode = inTemplateMode
			b.templateModes = append(b.templateModes, inTemplateMode)
			return false
		case atom.Head:
			b.parseError("unexpected <head>")
			return false
		}
	case html.EndTagToken:
		switch tok.DataAtom {
		case atom.Head:
			b.pop()
			b.mode = afterHeadMode
			return false
		case atom.Template:
			b.endTemplate()
			return false
		case atom.Body, atom.Html, atom.Br:
		default:
			b.parseError("unexpected </%s>", tok.Data)
			return false
		}
	}
	b.pop()
	b.mode = afterHeadMode
	return true
}

func afterHeadIM[H comparable](b *Builder[H], tok *html.Token) bool {
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
		switch a := tok.DataAtom; {
		case a == atom.Html:
			return inBodyIM(b, tok)
		case a == atom.Body:
			b.insertElement(tok)
			b.framesetOK = false
			b.mode = inBodyMode
			return false
		case a == atom.Frameset:
			b.missingRule(tok)
		case headElements[a]:
			b.parseError("<%s> after head", tok.Data)
			b.push(b.head)
			reprocess := inHeadIM(b, tok)
			b.removeFromStack(b.head)
			return reprocess
		case a == atom.Head:
			b.parseError("unexpected <head>")
			return false
		}
	case html.EndTagToken:
		switch tok.DataAtom {
		case atom.Template:
			return inHeadIM(b, tok)
		case atom.Body, atom.Html, atom.Br:
		default:
			b.parseError("unexpected </%s>", tok.Data)
			return false
		}
	}
	b.insertNamed(HTMLName("body"), nil)
	b.mode = inBodyMode
	return true
}

func inBodyIM[H comparable](b *Builder[H], tok *html.Token) bool {
	switch tok.Type {
	case html.TextToken:
		text := strings.ReplaceAll(tok.Data, "\x00", "")
		if text == "" {
			return false
		}
		b.reconstructFormatting()
		b.insertText(text)
		if !isWhitespace(text) {
			b.framesetOK = false
		}
	case html.CommentToken:
		b.insertComment(tok.Data)
	case html.DoctypeToken:
		b.parseError("unexpected doctype")
	case html.StartTagToken, html.SelfClosingTagToken:
		return b.bodyStartTag(tok)
	case html.EndTagToken:
		return b.bodyEndTag(tok)
	case html.ErrorToken:
		if len(b.templateModes) > 0 {
			return inTemplateIM(b, tok)
		}
	}
	return false
}

func (b *Builder[H]) bodyStartTag(tok *html.Token) bool {
	switch a := tok.DataAtom; {
	case a == atom.Html:
		b.parseError("unexpected <html>")
		if len(b.templateModes) == 0 && len(b.open) > 0 {
			b.sink.AddAttrsIfMissing(b.open[0], slices.Clone(tok.Attr))
		}
	case headElements[a]:
		return inHeadIM(b, tok)
	case a == atom.Body:
		b.parseError("unexpected <body>")
		if len(b.open) > 1 && b.is(b.open[1], atom.Body) && len(b.templateModes) == 0 {
			b.framesetOK = false
			b.sink.AddAttrsIfMissing(b.open[1], slices.Clone(tok.Attr))
		}
	case a == atom.Frameset:
		b.missingRule(tok)
	case blockElements[a]:
		b.closePIfInButtonScope()
		b.insertElement(tok)
	case headingElements[a]:
		b.closePIfInButtonScope()
		if headingElements[b.atomOf(b.current())] {
			b.parseError("nested heading <%s>", tok.Data)
			b.pop()
		}
		b.insertElement(tok)
	case a == atom.Pre || a == atom.Listing:
		b.closePIfInButtonScope()
		b.insertElement(tok)
		b.skipLF = true
		b.framesetOK = false
	case a == atom.Form || a == atom.Plaintext:
		b.closePIfInButtonScope()
		b.insertElement(tok)
	case a == atom.Li:
		b.framesetOK = false
		b.closeListItem(atom.Li)
		b.closePIfInButtonScope()
		b.insertElement(tok)
	case a == atom.Dd || a == atom.Dt:
		b.framesetOK = false
		b.closeListItem(atom.Dd, atom.Dt)
		b.closePIfInButtonScope()
		b.insertElement(tok)
	case a == atom.Button:
		if b.inScope(defaultScope, atom.Button) {
			b.parseError("nested <button>")
			b.generateImpliedEndTags(0)
			b.popUntil(atom.Button)
		}
		b.reconstructFormatting()
		b.insertElement(tok)
		b.framesetOK = false
	case a == atom.A:
		if i := b.lastFormatting(atom.A); i >= 0 {
			b.parseError("nested <a>")
			h := b.afe[i].h
			b.adoptionAgency(atom.A)
			if j := b.formattingIndex(h); j >= 0 {
				b.afe = slices.Delete(b.afe, j, j+1)
			}
			b.removeFromStack(h)
		}
		b.reconstructFormatting()
		b.pushFormatting(b.insertElement(tok), tok)
	case a == atom.Nobr:
		b.reconstructFormatting()
		if b.inScope(defaultScope, atom.Nobr) {
			b.parseError("nested <nobr>")
			b.adoptionAgency(atom.Nobr)
			b.reconstructFormatting()
		}
		b.pushFormatting(b.insertElement(tok), tok)
	case formattingElements[a]:
		b.reconstructFormatting()
		b.pushFormatting(b.insertElement(tok), tok)
	case a == atom.Applet || a == atom.Marquee || a == atom.Object:
		b.reconstructFormatting()
		b.insertElement(tok)
		b.pushMarker()
		b.framesetOK = false
	case a == atom.Table:
		if b.quirks != Quirks {
			b.closePIfInButtonScope()
		}
		b.insertElement(tok)
		b.framesetOK = false
		b.mode = inTableMode
	case a == atom.Area || a == atom.Br || a == atom.Embed || a == atom.Img ||
		a == atom.Keygen || a == atom.Wbr || a == atom.Input:
		b.reconstructFormatting()
		b.insertVoid(tok)
		if t, _ := attrValue(tok, "type"); a != atom.Input || !strings.EqualFold(t, "hidden") {
			b.framesetOK = false
		}
	case a == atom.Param || a == atom.Source || a == atom.Track:
		b.insertVoid(tok)
	case a == atom.Hr:
		b.closePIfInButtonScope()
		b.insertVoid(tok)
		b.framesetOK = false
	case a == atom.Image:
		b.parseError("<image> is <img>")
		tok.Data, tok.DataAtom = "img", atom.Img
		return true
	case a == atom.Textarea:
		b.insertElement(tok)
		b.skipLF = true
		b.framesetOK = false
		b.origMode, b.mode = b.mode, textMode
	case a == atom.Xmp:
		b.closePIfInButtonScope()
		b.reconstructFormatting()
		b.framesetOK = false
		b.insertRawText(tok)
	case a == atom.Iframe:
		b.framesetOK = false
		b.insertRawText(tok)
	case a == atom.Noembed || a == atom.Noscript:
		b.insertRawText(tok)
	case a == atom.Select:
		b.reconstructFormatting()
		b.insertElement(tok)
		b.framesetOK = false
	case a == atom.Optgroup || a == atom.Option:
		if b.currentIs(atom.Option) {
			b.pop()
		}
		b.reconstructFormatting()
		b.insertElement(tok)
	case a == atom.Rb || a == atom.Rtc:
		if b.inScope(defaultScope, atom.Ruby) {
			b.generateImpliedEndTags(0)
		}
		b.insertElement(tok)
	case a == atom.Rp || a == atom.Rt:
		if b.inScope(defaultScope, atom.Ruby) {
			b.generateImpliedEndTags(atom.Rtc)
		}
		b.insertElement(tok)
	case tableStructure[a] || a == atom.Frame || a == atom.Head:
		b.parseError("unexpected <%s> in body", tok.Data)
	default:
		b.reconstructFormatting()
		h := b.insertElement(tok)
		if tok.Type == html.SelfClosingTagToken && b.sink.ElemName(h).Space != NamespaceHTML {
			b.pop()
		}
	}
	return false
}

func (b *Builder[H]) bodyEndTag(tok *html.Token) bool {
	switch a := tok.DataAtom; {
	case a == atom.Template:
		return inHeadIM(b, tok)
	case a == atom.Body || a == atom.Html:
		if !b.inScope(defaultScope, atom.Body) {
			b.parseError("</%s> without body in scope", tok.Data)
			return false
		}
		b.mode = afterBodyMode
		return a == atom.Html
	case a == atom.P:
		if !b.inScope(buttonScope, atom.P) {
			b.parseError("</p> without open paragraph")
			b.insertNamed(HTMLName("p"), nil)
		}
		b.closeP()
	case blockEndElements[a] || a == atom.Form:
		if !b.inScope(defaultScope, a) {
			b.parseError("</%s> without open element", tok.Data)
			return false
		}
		b.generateImpliedEndTags(0)
		b.popUntil(a)
	case a == atom.Li:
		if !b.inScope(listItemScope, atom.Li) {
			b.parseError("</li> without open list item")
			return false
		}
		b.generateImpliedEndTags(atom.Li)
		b.popUntil(atom.Li)
	case a == atom.Dd || a == atom.Dt:
		if !b.inScope(defaultScope, a) {
			b.parseError("</%s> without open element", tok.Data)
			return false
		}
		b.generateImpliedEndTags(a)
		b.popUntil(a)
	case headingElements[a]:
		hs := []atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}
		if !b.inScope(defaultScope, hs...) {
			b.parseError("</%s> without open heading", tok.Data)
			return false
		}
		b.generateImpliedEndTags(0)
		b.popUntil(hs...)
	case formattingElements[a]:
		b.adoptionAgency(a)
	case a == atom.Applet || a == atom.Marquee || a == atom.Object:
		if !b.inScope(defaultScope, a) {
			return false
		}
		b.generateImpliedEndTags(0)
		b.popUntil(a)
		b.clearFormattingToMarker()
	case a == atom.Br:
		b.parseError("</br> is <br>")
		tok.Type, tok.Attr = html.StartTagToken, nil
		return true
	default:
		b.anyOtherEndTag(tok)
	}
	return false
}

func (b *Builder[H]) anyOtherEndTag(tok *html.Token) {
	for i := len(b.open) - 1; i >= 0; i-- {
		h := b.open[i]
		if strings.EqualFold(b.sink.ElemName(h).Local, tok.Data) {
			b.generateImpliedEndTags(b.atomOf(h))
			b.open = b.open[:i]
			return
		}
		if b.isSpecial(h) {
			b.parseError("stray </%s>", tok.Data)
			return
		}
	}
}

func (b *Builder[H]) closeListItem(atoms ...atom.Atom) {
	for i := len(b.open) - 1; i >= 0; i-- {
		h := b.open[i]
		a := b.atomOf(h)
		if slices.Contains(atoms, a) {
			b.generateImpliedEndTags(a)
			b.popUntil(a)
			return
		}
		if b.isSpecial(h) && a != atom.Address && a != atom.Div && a != atom.P {
			return
		}
	}
}

func (b *Builder[H]) insertRawText(tok *html.Token) {
	b.insertElement(tok)
	b.origMode, b.mode = b.mode, textMode
}

func textIM[H comparable](b *Builder[H], tok *html.Token) bool {
	switch tok.Type {
	case html.TextToken:
		b.insertText(tok.Data)
	case html.EndTagToken:
		h := b.pop()
		b.mode = b.origMode
		if b.is(h, atom.Script) {
			b.sink.CompleteScript(h)
		}
	case html.ErrorToken:
		b.parseError("end of input in raw text")
		if h := b.pop(); b.is(h, atom.Script) {
			b.sink.MarkScriptAlreadyStarted(h)
		}
		b.mode = b.origMode
		return true
	}
	return false
}

func inTemplateIM[H comparable](b *Builder[H], tok *html.Token) bool {
	switch tok.Type {
	case html.TextToken, html.CommentToken, html.DoctypeToken:
		return inBodyIM(b, tok)
	case html.StartTagToken, html.SelfClosingTagToken:
		switch a := tok.DataAtom; {
		case headElements[a]:
			return inHeadIM(b, tok)
		case a == atom.Caption || a == atom.Colgroup || tableSectionElements[a]:
			b.switchTemplateMode(inTableMode)
		case a == atom.Col:
			b.switchTemplateMode(inColumnGroupMode)
		case a == atom.Tr:
			b.switchTemplateMode(inTableBodyMode)
		case a == atom.Td || a == atom.Th:
			b.switchTemplateMode(inRowMode)
		default:
			b.switchTemplateMode(inBodyMode)
		}
		return true
	case html.EndTagToken:
		if tok.DataAtom == atom.Template {
			return inHeadIM(b, tok)
		}
		b.parseError("unexpected </%s> in template", tok.Data)
	case html.ErrorToken:
		if _, i := b.lastOnStack(atom.Template); i < 0 {
			return false
		}
		b.parseError("end of input in template")
		b.popUntil(atom.Template)
		b.clearFormattingToMarker()
		b.templateModes = b.templateModes[:len(b.templateModes)-1]
		b.resetInsertionMode()
		return true
	}
	return false
}

func (b *Builder[H]) switchTemplateMode(mode insertionMode) {
	b.templateModes[len(b.templateModes)-1] = mode
	b.mode = mode
}

func (b *Builder[H]) endTemplate() {
	if _, i := b.lastOnStack(atom.Template); i < 0 {
		b.parseError("</template> without open template")
		return
	}
	b.generateAllImpliedEndTags()
	b.popUntil(atom.Template)
	b.clearFormattingToMarker()
	b.templateModes = b.templateModes[:len(b.templateModes)-1]
	b.resetInsertionMode()
}

func afterBodyIM[H comparable](b *Builder[H], tok *html.Token) bool {
	switch tok.Type {
	case html.TextToken:
		if isWhitespace(tok.Data) {
			return inBodyIM(b, tok)
		}
	case html.CommentToken:
		b.sink.Append(b.open[0], AppendNode(b.sink.CreateComment(tok.Data)))
		return false
	case html.DoctypeToken:
		b.parseError("unexpected doctype")
		return false
	case html.StartTagToken, html.SelfClosingTagToken:
		if tok.DataAtom == atom.Html {
			return inBodyIM(b, tok)
		}
	case html.EndTagToken:
		if tok.DataAtom == atom.Html {
			b.mode = afterAfterBodyMode
			return false
		}
	case html.ErrorToken:
		return false
	}
	b.parseError("content after body")
	b.mode = inBodyMode
	return true
}

func afterAfterBodyIM[H comparable](b *Builder[H], tok *html.Token) bool {
	switch tok.Type {
	case html.CommentToken:
		b.sink.Append(b.doc, AppendNode(b.sink.CreateComment(tok.Data)))
		return false
	case html.DoctypeToken:
		return inBodyIM(b, tok)
	case html.TextToken:
		if isWhitespace(tok.Data) {
			return inBodyIM(b, tok)
		}
	case html.StartTagToken, html.SelfClosingTagToken:
		if tok.DataAtom == atom.Html {
			return inBodyIM(b, tok)
		}
	case html.ErrorToken:
		return false
	}
	b.parseError("content after html")
	b.mode = inBodyMode
	return true
}

func (b *Builder[H]) setQuirksMode(mode QuirksMode) {
	b.quirks = mode
	b.sink.SetQuirksMode(mode)
}
