package treebuilder

import (
	"slices"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// adoptionAgency handles end tags of formatting elements which are
// mis-nested with block content, e.g. "<b>1<p>2</b>3</p>". Elements are
// re-created and re-parented through the sink, so the agency is the main
// source of RemoveFromParent and ReparentChildren calls.
func (b *Builder[H]) adoptionAgency(tag atom.Atom) {
	if cur := b.current(); b.is(cur, tag) && b.formattingIndex(cur) < 0 {
		b.pop()
		return
	}
	for outer := 0; outer < 8; outer++ {
		fi := b.lastFormatting(tag)
		if fi < 0 {
			b.anyOtherEndTag(&html.Token{Type: html.EndTagToken, DataAtom: tag, Data: tag.String()})
			return
		}
		fe := b.afe[fi]
		si := b.stackIndex(fe.h)
		if si < 0 {
			b.parseError("formatting element <%s> not open", fe.name.Local)
			b.afe = slices.Delete(b.afe, fi, fi+1)
			return
		}
		if !b.elementInScope(fe.h) {
			b.parseError("formatting element <%s> not in scope", fe.name.Local)
			return
		}
		if fe.h != b.current() {
			b.parseError("mis-nested </%s>", fe.name.Local)
		}
		fbi := -1
		for i := si + 1; i < len(b.open); i++ {
			if b.isSpecial(b.open[i]) {
				fbi = i
				break
			}
		}
		if fbi < 0 {
			b.open = b.open[:si]
			b.afe = slices.Delete(b.afe, fi, fi+1)
			return
		}
		commonAncestor := b.open[si-1]
		furthest := b.open[fbi]
		bookmark := fi
		node, lastNode := furthest, furthest
		ni := fbi
		for inner := 1; ; inner++ {
			ni--
			node = b.open[ni]
			if node == fe.h {
				break
			}
			nai := b.formattingIndex(node)
			if inner > 3 && nai >= 0 {
				b.afe = slices.Delete(b.afe, nai, nai+1)
				if nai < bookmark {
					bookmark--
				}
				nai = -1
			}
			if nai < 0 {
				b.open = slices.Delete(b.open, ni, ni+1)
				continue
			}
			entry := b.afe[nai]
			clone := b.createElement(entry.name, entry.attrs)
			b.afe[nai].h = clone
			b.open[ni] = clone
			node = clone
			if lastNode == furthest {
				bookmark = nai + 1
			}
			b.sink.RemoveFromParent(lastNode)
			b.sink.Append(node, AppendNode(lastNode))
			lastNode = node
		}
		b.sink.RemoveFromParent(lastNode)
		b.insert(commonAncestor, AppendNode(lastNode))

		el := b.createElement(fe.name, fe.attrs)
		b.sink.ReparentChildren(furthest, el)
		b.sink.Append(furthest, AppendNode(el))

		fi = b.formattingIndex(fe.h)
		b.afe = slices.Delete(b.afe, fi, fi+1)
		if fi < bookmark {
			bookmark--
		}
		bookmark = min(bookmark, len(b.afe))
		b.afe = slices.Insert(b.afe, bookmark, afeEntry[H]{h: el, name: fe.name, attrs: fe.attrs})

		b.removeFromStack(fe.h)
		fbi = b.stackIndex(furthest)
		b.open = slices.Insert(b.open, fbi+1, el)
	}
}
