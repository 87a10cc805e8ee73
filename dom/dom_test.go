package dom

import (
	"errors"
	"strings"
	"testing"

	"github.com/Syrcon/servo/treebuilder"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func skeleton(t *testing.T) (*Document, *Node) {
	t.Helper()
	doc := NewDocument("about:blank")
	root := doc.CreateElement(treebuilder.HTMLName("html"), nil)
	body := doc.CreateElement(treebuilder.HTMLName("body"), nil)
	require.NoError(t, doc.AppendChild(root))
	require.NoError(t, root.AppendChild(doc.CreateElement(treebuilder.HTMLName("head"), nil)))
	require.NoError(t, root.AppendChild(body))
	return doc, body
}

func TestDocumentSkeleton(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "servo.dom")
	defer teardown()
	//
	doc, body := skeleton(t)
	if doc.Body() != body {
		t.Errorf("expected body to be found, is %v", doc.Body())
	}
	if doc.DocumentElement().LocalName() != "html" {
		t.Errorf("expected document element to be <html>, is %v", doc.DocumentElement())
	}
	assert.Equal(t, "CSS1Compat", doc.CompatMode())
	doc.SetQuirksMode(treebuilder.Quirks)
	assert.Equal(t, "BackCompat", doc.W3C().CompatMode())
	assert.Equal(t, "#document", doc.NodeName())
}

func TestTextMerging(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "servo.dom")
	defer teardown()
	//
	doc, body := skeleton(t)
	require.NoError(t, body.AppendText("a"))
	require.NoError(t, body.AppendText("b"))
	p := doc.CreateElement(treebuilder.HTMLName("p"), nil)
	require.NoError(t, body.AppendChild(p))
	require.NoError(t, body.InsertTextBefore("c", p))
	if body.ChildNodes().Length() != 2 {
		t.Fatalf("expected 2 children of body, is %s", body.ChildNodes())
	}
	txt, _ := body.TextContent()
	assert.Equal(t, "abc", txt)
	assert.Equal(t, html.TextNode, body.FirstChild().NodeType())
	assert.Equal(t, "p", body.LastChild().NodeName())
}

func TestInsertBefore(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "servo.dom")
	defer teardown()
	//
	doc, body := skeleton(t)
	a := doc.CreateElement(treebuilder.HTMLName("a"), nil)
	b := doc.CreateElement(treebuilder.HTMLName("b"), nil)
	require.NoError(t, body.AppendChild(b))
	require.NoError(t, body.InsertBefore(a, b))
	assert.Equal(t, "[a b]", body.ChildNodes().String())
	assert.Equal(t, a, b.PreviousSibling())
	stray := doc.CreateElement(treebuilder.HTMLName("i"), nil)
	err := body.InsertBefore(doc.CreateComment("x"), stray)
	assert.True(t, errors.Is(err, ErrNotAChild), "expected ErrNotAChild, is %v", err)
}

func TestHierarchyErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "servo.dom")
	defer teardown()
	//
	doc, body := skeleton(t)
	root := doc.DocumentElement()
	assert.ErrorIs(t, body.AppendChild(root), ErrHierarchy)
	txt := doc.CreateTextNode("x")
	assert.ErrorIs(t, txt.AppendChild(doc.CreateComment("c")), ErrHierarchy)
}

func TestCrossDocument(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "servo.dom")
	defer teardown()
	//
	_, body := skeleton(t)
	other := NewDocument("about:other")
	foreign := other.CreateElement(treebuilder.HTMLName("div"), nil)
	assert.ErrorIs(t, body.AppendChild(foreign), ErrWrongDocument)
	holder := other.CreateElement(treebuilder.HTMLName("div"), nil)
	require.NoError(t, holder.AppendChild(foreign))
	assert.ErrorIs(t, holder.ReparentChildrenTo(body), ErrWrongDocument)
	assert.False(t, body.HasChildNodes(), "failed reparenting must not move any child")
}

func TestTemplateContents(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "servo.dom")
	defer teardown()
	//
	doc, body := skeleton(t)
	tmpl := doc.CreateElement(treebuilder.HTMLName("template"), nil)
	require.NoError(t, body.AppendChild(tmpl))
	assert.Nil(t, tmpl.Contents())
	contents := tmpl.TemplateContents()
	require.NotNil(t, contents)
	assert.True(t, contents.IsTemplateContents())
	assert.Equal(t, doc.TemplateDocument(), contents.OwnerDocument())
	p := doc.CreateElement(treebuilder.HTMLName("p"), nil)
	require.NoError(t, contents.AppendChild(p))
	assert.Equal(t, doc.TemplateDocument(), p.OwnerDocument(), "expected p to be adopted")
	assert.Nil(t, body.TemplateContents())
	found, err := doc.QueryAll("p")
	require.NoError(t, err)
	assert.Empty(t, found, "template contents are not part of the document")
}

func TestQueryAndRender(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "servo.dom")
	defer teardown()
	//
	doc, body := skeleton(t)
	for _, id := range []string{"x", "y"} {
		p := doc.CreateElement(treebuilder.HTMLName("p"), []html.Attribute{{Key: "id", Val: id}})
		require.NoError(t, body.AppendChild(p))
		require.NoError(t, p.AppendText(strings.ToUpper(id)))
	}
	p, err := doc.Query("p#y")
	require.NoError(t, err)
	require.NotNil(t, p)
	txt, _ := p.TextContent()
	assert.Equal(t, "Y", txt)
	_, err = doc.QueryAll("p[")
	assert.Error(t, err)
	require.NoError(t, doc.AppendDoctype("html", "", ""))
	var sb strings.Builder
	require.NoError(t, doc.Render(&sb))
	// the doctype has been appended last
	assert.Equal(t, `<html><head></head><body><p id="x">X</p><p id="y">Y</p></body></html><!DOCTYPE html>`, sb.String())
}

type fakeParser struct{ invalidated bool }

func (p *fakeParser) Invalidate() { p.invalidated = true }

func TestReplaceParser(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "servo.dom")
	defer teardown()
	//
	doc := NewDocument("about:blank")
	p1, p2 := &fakeParser{}, &fakeParser{}
	doc.ReplaceParser(p1)
	require.NoError(t, doc.AppendChild(doc.CreateElement(treebuilder.HTMLName("html"), nil)))
	doc.SetQuirksMode(treebuilder.Quirks)
	doc.ReplaceParser(p2)
	if !p1.invalidated {
		t.Errorf("expected first parser to be invalidated")
	}
	assert.False(t, doc.HasChildNodes(), "the tree of an invalidated parser is discarded")
	assert.Equal(t, treebuilder.NoQuirks, doc.QuirksMode())
	doc.ClearParser(p1)
	assert.Equal(t, p2, doc.CurrentParser(), "clearing by a stale parser must not empty the slot")
	doc.ClearParser(p2)
	assert.Nil(t, doc.CurrentParser())
	assert.False(t, p2.invalidated)
}
