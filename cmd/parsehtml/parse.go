package main

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/Syrcon/servo/dom"
	"github.com/Syrcon/servo/dom/domdbg"
	"github.com/Syrcon/servo/fetch"
	"github.com/Syrcon/servo/loader"
	"github.com/Syrcon/servo/parser"
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/schukonf/viperadapter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

const (
	formatFlag = "format"
	selectFlag = "select"
)

func newParseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <url|file>...",
		Short: "Load and parse documents",
		Long: `Load documents from URLs or files, parse them and print the trees.

Formats are 'tree' (an indented dump), 'html' (serialized markup), 'outline'
(a one-line summary) and 'dot' (GraphViz input).`,
		Args: cobra.MinimumNArgs(1),
		RunE: runParse,
	}
	flags := cmd.Flags()
	flags.StringP(formatFlag, "f", "tree", "output format: tree, html, outline or dot")
	flags.StringP(selectFlag, "s", "", "print only nodes matching this CSS selector")
	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		return viper.BindPFlags(cmd.Flags())
	}
	return cmd
}

// result is a parsed document or the reason there is none.
type result struct {
	location string
	doc      *dom.Document
	err      error
}

func runParse(cmd *cobra.Command, args []string) error {
	format := viper.GetString(formatFlag)
	selector := viper.GetString(selectFlag)
	if err := checkFormat(format, selector); err != nil {
		return err
	}
	conf := viperadapter.New(appName)
	results := make([]result, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, location := range args {
		i, location := i, location
		g.Go(func() error {
			doc, err := load(ctx, conf, location)
			results[i] = result{location: location, doc: doc, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	var failed int
	for _, r := range results {
		if len(results) > 1 {
			fmt.Fprintf(out, "== %s ==\n", r.location)
		}
		if r.err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.location, r.err)
			failed++
		}
		if r.doc == nil {
			continue
		}
		if err := printDoc(out, r.doc, format, selector); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed to load", failed, len(results))
	}
	return nil
}

func checkFormat(format, selector string) error {
	switch format {
	case "tree", "html", "outline":
		return nil
	case "dot":
		if selector != "" {
			return fmt.Errorf("format dot does not support --%s", selectFlag)
		}
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}

// load fetches and parses a single document. The calling goroutine owns the
// document for the duration of the load.
func load(ctx context.Context, conf schuko.Configuration, location string) (*dom.Document, error) {
	var doc *dom.Document
	var p *parser.Parser
	opts := append(parser.FromConfig(conf), parser.WithScriptHost(scriptTracer{}))
	l := loader.NewListener(location, func(meta *loader.Metadata) *parser.Parser {
		url := location
		if meta != nil {
			url = meta.URL
		}
		doc = dom.NewDocument(url)
		p = parser.New(doc, opts...)
		return p
	})
	fetchErr := fetch.New(conf).Fetch(ctx, location, l)
	if p == nil {
		return nil, fetchErr
	}
	select {
	case <-p.Done():
	default:
		return doc, fmt.Errorf("parsing %s did not complete, parser is %v", location, p.State())
	}
	if err := p.Err(); err != nil {
		return doc, err
	}
	return doc, fetchErr
}

func printDoc(w io.Writer, doc *dom.Document, format, selector string) error {
	nodes := []*dom.Node{doc.Node}
	if selector != "" {
		var err error
		if nodes, err = doc.QueryAll(selector); err != nil {
			return err
		}
	}
	for _, n := range nodes {
		var err error
		switch format {
		case "tree":
			err = domdbg.Print(n, w)
		case "html":
			var buf bytes.Buffer
			if err = n.Render(&buf); err == nil {
				buf.WriteByte('\n')
				_, err = buf.WriteTo(w)
			}
		case "outline":
			_, err = fmt.Fprintln(w, domdbg.Outline(n))
		case "dot":
			err = domdbg.ToGraphViz(n, w)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// scriptTracer stands in for a script engine. It notes scripts as they are
// parsed and lets parsing continue.
type scriptTracer struct{}

func (scriptTracer) RunScript(p *parser.Parser, script *dom.Node) {
	text, _ := script.TextContent()
	src, _ := script.Attr("src")
	tracer().Infof("script in %s not run: src=%q, %d bytes inline",
		p.Document().URL(), src, len(text))
}
