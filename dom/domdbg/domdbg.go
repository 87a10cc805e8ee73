/*
Package domdbg implements helpers to debug a DOM tree.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>


*/
package domdbg

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"testing"
	"text/template"

	"github.com/Syrcon/servo/dom"
	"github.com/Syrcon/servo/dom/w3cdom"
	"github.com/xlab/treeprint"
	"golang.org/x/net/html"
)

// Parameters for GraphViz drawing.
type graphParamsType struct {
	Fontname string
	NodeTmpl *template.Template
	EdgeTmpl *template.Template
}

// ToGraphViz outputs a diagram for a DOM tree. The diagram is in
// GraphViz (DOT) format. Clients have to provide the root node of
// the DOM and a Writer.
func ToGraphViz(doc *dom.Node, w io.Writer) error {
	tmpl, err := template.New("dom").Parse(graphHeadTmpl)
	if err != nil {
		return err
	}
	gparams := graphParamsType{Fontname: "Helvetica"}
	gparams.NodeTmpl = template.Must(template.New("domnode").Funcs(
		template.FuncMap{
			"shortstring": shortText,
		}).Parse(domNodeTmpl))
	gparams.EdgeTmpl = template.Must(template.New("domedge").Parse(domEdgeTmpl))
	if err = tmpl.Execute(w, gparams); err != nil {
		return err
	}
	dict := make(map[*dom.Node]string, 4096)
	if err = nodes(doc, w, dict, &gparams); err != nil {
		return err
	}
	_, err = w.Write([]byte("}\n"))
	return err
}

// Dotty is a helper for testing. Given a DOM node and a testing.T, it will
// create a Graphiviz image of the DOM tree under `doc` and write it to
// a file in the current folder, choosing a unique file name.
// The image is in SVG format.
//
// If an error occurs, t.Error(…) will be set, causing the test to fail.
func Dotty(doc *dom.Node, t *testing.T) {
	tmpfile, err := os.CreateTemp(".", "dom.*.dot")
	if err != nil {
		t.Error(err)
		return
	}
	defer func() {
		tmpfile.Close()
		os.Remove(tmpfile.Name()) // clean up
	}()
	t.Logf("writing DOM digraph to %s\n", tmpfile.Name())
	if err = ToGraphViz(doc, tmpfile); err != nil {
		t.Error(err)
		return
	}
	outOption := fmt.Sprintf("-o%s.svg", tmpfile.Name())
	cmd := exec.Command("dot", "-Tsvg", outOption, tmpfile.Name())
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	t.Log("writing DOM tree image to tree.svg\n")
	if err := cmd.Run(); err != nil {
		t.Error(err.Error())
	}
}

type node struct {
	N    *dom.Node
	Name string
}

func nodes(n *dom.Node, w io.Writer, dict map[*dom.Node]string, gparams *graphParamsType) error {
	if err := domNode(n, w, dict, gparams); err != nil {
		return err
	}
	for _, ch := range children(n) {
		if err := nodes(ch, w, dict, gparams); err != nil {
			return err
		}
		if err := domEdge(n, ch, w, dict, gparams); err != nil {
			return err
		}
	}
	return nil
}

func domNode(n *dom.Node, w io.Writer, dict map[*dom.Node]string, gparams *graphParamsType) error {
	name := dict[n]
	if name == "" {
		l := len(dict) + 1
		name = fmt.Sprintf("node%05d", l)
		dict[n] = name
	}
	return gparams.NodeTmpl.Execute(w, &node{n, name})
}

type edge struct {
	N1, N2 node
}

func domEdge(n1 *dom.Node, n2 *dom.Node, w io.Writer, dict map[*dom.Node]string,
	gparams *graphParamsType) error {
	//
	e := edge{node{n1, dict[n1]}, node{n2, dict[n2]}}
	return gparams.EdgeTmpl.Execute(w, e)
}

func shortText(n *dom.Node) string {
	s := "\"\\\""
	data := n.NodeValue()
	if len(data) > 10 {
		s += data[:10] + "...\\\"\""
	} else {
		s += data + "\\\"\""
	}
	s = strings.Replace(s, "\n", `\\n`, -1)
	s = strings.Replace(s, "\t", `\\t`, -1)
	s = strings.Replace(s, " ", "␣", -1)
	return s
}

// children lists the child nodes of n, including template contents.
func children(n *dom.Node) []*dom.Node {
	var chs []*dom.Node
	if c := n.Contents(); c != nil && c.HasChildNodes() {
		chs = append(chs, c)
	}
	list := n.ChildNodes()
	for i := 0; i < list.Length(); i++ {
		chs = append(chs, list.Item(i).(*dom.Node))
	}
	return chs
}

// --- Outlines --------------------------------------------------------------

// Outline returns a compact one-line rendering of the tree under n, e.g.
//
//	(html(head,body(p("hi"))))
//
// Comments are rendered as !"text", doctypes as !doctype, template contents
// as [...] following the template element. Foreign elements carry their
// namespace prefix.
func Outline(n *dom.Node) string {
	var sb strings.Builder
	outline(n, &sb)
	return sb.String()
}

func outline(n *dom.Node, sb *strings.Builder) {
	switch n.NodeType() {
	case html.TextNode:
		fmt.Fprintf(sb, "%q", n.NodeValue())
		return
	case html.CommentNode:
		fmt.Fprintf(sb, "!%q", n.NodeValue())
		return
	case html.DoctypeNode:
		sb.WriteString("!doctype")
		return
	case html.ElementNode:
		sb.WriteString(n.QualName().String())
	}
	if c := n.Contents(); c != nil && c.HasChildNodes() {
		sb.WriteString("[")
		outlineChildren(c, sb)
		sb.WriteString("]")
	}
	if n.HasChildNodes() {
		sb.WriteString("(")
		outlineChildren(n, sb)
		sb.WriteString(")")
	}
}

func outlineChildren(n *dom.Node, sb *strings.Builder) {
	list := n.ChildNodes()
	for i := 0; i < list.Length(); i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		outline(list.Item(i).(*dom.Node), sb)
	}
}

// Print writes an indented tree view of the DOM under n.
func Print(n *dom.Node, w io.Writer) error {
	t := treeprint.New()
	addBranches(n, t.AddBranch(label(n)))
	_, err := io.WriteString(w, t.String())
	return err
}

func addBranches(n *dom.Node, t treeprint.Tree) {
	for _, ch := range children(n) {
		if len(children(ch)) > 0 {
			addBranches(ch, t.AddBranch(label(ch)))
		} else {
			t.AddNode(label(ch))
		}
	}
}

func label(n *dom.Node) string {
	switch n.NodeType() {
	case html.ElementNode:
		var sb strings.Builder
		sb.WriteString(n.QualName().String())
		attrs := n.Attributes()
		for i := 0; i < attrs.Length(); i++ {
			fmt.Fprintf(&sb, " %s=%q", attrs.Item(i).Key(), attrs.Item(i).Value())
		}
		return sb.String()
	case html.TextNode:
		return fmt.Sprintf("%q", n.NodeValue())
	}
	return n.NodeName()
}

const graphHeadTmpl = `digraph g {
  graph [labelloc="t" label="" splines=true overlap=false rankdir = "LR"];
  graph [{{ .Fontname }} = "helvetica" fontsize=14] ;
   node [fontname = "{{ .Fontname }}" fontsize=14] ;
   edge [fontname = "{{ .Fontname }}" fontsize=14] ;
`

const domNodeTmpl = `{{ if eq .N.NodeName "#text" }}
{{ .Name }}	[ label={{ shortstring .N }} shape=box style=filled fillcolor=grey95 fontname="Courier" fontsize=11.0 ] ;
{{ else }}
{{ .Name }}	[ label={{ printf "%q" .N.NodeName }} shape=ellipse style=filled fillcolor=lightblue3 ] ;
{{ end }}
`

const domEdgeTmpl = `{{ .N1.Name }} -> {{ .N2.Name }} [weight=1] ;
`

var _ w3cdom.Node = (*dom.Node)(nil)
