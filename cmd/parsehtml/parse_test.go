package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	viper.Reset()
	defer trace2go.Teardown()
	root := newRootCommand()
	root.AddCommand(newParseCommand())
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseOutline(t *testing.T) {
	page := writeFile(t, "page.html", "<p>a<p>b")
	out, _, err := run(t, "parse", "--format", "outline", page)
	require.NoError(t, err)
	if out != "(html(head,body(p(\"a\"),p(\"b\"))))\n" {
		t.Errorf("expected outline of two paragraphs, is %q", out)
	}
}

func TestParseSeveralDocuments(t *testing.T) {
	one := writeFile(t, "one.html", "<title>1</title>")
	two := writeFile(t, "two.txt", "plain <text>")
	out, _, err := run(t, "parse", "-f", "outline", one, two)
	require.NoError(t, err)
	want := "== " + one + " ==\n(html(head(title(\"1\")),body))\n" +
		"== " + two + " ==\n(html(head,body(pre(\"plain <text>\"))))\n"
	assert.Equal(t, want, out)
}

func TestParseSelect(t *testing.T) {
	page := writeFile(t, "page.html", "<div><p class=x>a</p><p>b</p></div>")
	out, _, err := run(t, "parse", "--format", "html", "--select", "p", page)
	require.NoError(t, err)
	assert.Equal(t, "<p class=\"x\">a</p>\n<p>b</p>\n", out)
	out, _, err = run(t, "parse", "--format", "tree", "--select", "p.x", page)
	require.NoError(t, err)
	assert.Contains(t, out, "p")
	assert.NotContains(t, out, "div")
}

func TestParseDot(t *testing.T) {
	page := writeFile(t, "page.html", "<p>dot")
	out, _, err := run(t, "parse", "--format", "dot", page)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "digraph"), "expected GraphViz output, is %q", out)
}

func TestParseErrors(t *testing.T) {
	page := writeFile(t, "page.html", "<p>x")
	_, _, err := run(t, "parse", "--format", "pdf", page)
	assert.ErrorContains(t, err, "unknown format")
	_, _, err = run(t, "parse", "--format", "dot", "--select", "p", page)
	assert.Error(t, err)
	_, _, err = run(t, "parse")
	assert.Error(t, err)
	_, _, err = run(t, "--config", filepath.Join(t.TempDir(), "none.yaml"), "parse", page)
	assert.Error(t, err)
	//
	missing := filepath.Join(t.TempDir(), "missing.html")
	out, errOut, err := run(t, "parse", "-f", "outline", missing)
	assert.ErrorContains(t, err, "1 of 1 documents failed")
	assert.Contains(t, errOut, missing)
	assert.Equal(t, "(html(head,body))\n", out, "a failed load still yields a document")
}

func TestParseWithConfig(t *testing.T) {
	conf := writeFile(t, "parsehtml.yaml", "parser:\n  maxnesting: 2\nfetch:\n  chunksize: 3\ntracelevel:\n  servo.parser: Info\n")
	page := writeFile(t, "page.html", "<p>ünïcödé</p>")
	out, _, err := run(t, "--config", conf, "parse", "-f", "outline", page)
	require.NoError(t, err)
	assert.Equal(t, "(html(head,body(p(\"ünïcödé\"))))\n", out)
}
