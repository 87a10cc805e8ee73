package loader

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/Syrcon/servo/parser"
	"golang.org/x/net/html"
)

//go:embed resources/badcert.html
var badCertPage string

// StartFunc starts the parse session for a fetched document. meta is nil if
// the fetch failed before headers were received. Returning nil ignores the
// rest of the fetch.
type StartFunc func(meta *Metadata) *parser.Parser

// Listener feeds the events of a single fetch into a parse session. All
// methods must be called on the goroutine owning the document.
type Listener struct {
	url         string
	start       StartFunc
	parser      *parser.Parser
	decoder     *Decoder
	synthesized bool // body replaced by a synthesized document
	err         error
}

// NewListener creates a listener for a fetch of url.
func NewListener(url string, start StartFunc) *Listener {
	return &Listener{url: url, start: start}
}

// Parser returns the parse session started for the fetch, if any.
func (l *Listener) Parser() *parser.Parser {
	return l.parser
}

// Err returns the network error the fetch completed with, if any.
func (l *Listener) Err() error {
	return l.err
}

// HeadersAvailable is called once the response headers have been received,
// or with a *NetworkError if the fetch failed before that.
func (l *Listener) HeadersAvailable(meta *Metadata, err error) {
	sslError := false
	if err != nil {
		var netErr *NetworkError
		if errors.As(err, &netErr) && netErr.Kind == SSLValidation {
			sslError = true
			url := netErr.URL
			if url == "" {
				url = l.url
			}
			meta = &Metadata{URL: url, ContentType: "text/html"}
		} else {
			tracer().Errorf("no headers for %s: %v", l.url, err)
			meta = nil
		}
	}
	l.parser = l.start(meta)
	if l.parser == nil {
		return
	}
	l.decoder = NewDecoder(meta.Charset())
	top, sub, ok := meta.MediaType()
	if !ok {
		return
	}
	tracer().Debugf("%s has content type %s/%s", l.url, top, sub)
	switch {
	case top == "image":
		l.synthesize(fmt.Sprintf("<html><body><img src='%s' /></body></html>", html.EscapeString(l.url)))
	case top == "text" && sub == "plain":
		l.parser.FeedChunk("<pre>\n")
		l.parser.SetPlaintextState()
	case top == "text" && sub == "html":
		if sslError {
			l.synthesize(badCertPage)
		}
	case top == "text" && sub == "xml":
	case top == "application" && sub == "xhtml+xml":
	default:
		l.synthesize(fmt.Sprintf("<html><body><p>Unknown content type (%s/%s).</p></body></html>",
			html.EscapeString(top), html.EscapeString(sub)))
	}
}

// synthesize replaces the body of the fetch by page.
func (l *Listener) synthesize(page string) {
	l.synthesized = true
	l.parser.FeedChunk(page)
}

// DataAvailable is called for each chunk of the response body.
func (l *Listener) DataAvailable(p []byte) {
	if l.parser == nil || l.synthesized {
		return
	}
	if text := l.decoder.Decode(p); text != "" {
		l.parser.FeedChunk(text)
	}
}

// ResponseComplete is called once the fetch has ended, with err set if it
// failed. The parse session is finished in either case.
func (l *Listener) ResponseComplete(err error) {
	if l.parser == nil {
		return
	}
	if !l.synthesized {
		if text := l.decoder.Flush(); text != "" {
			l.parser.FeedChunk(text)
		}
	}
	l.parser.Document().FinishLoad()
	if err != nil {
		l.err = err
		tracer().Errorf("failed to load %s: %v", l.url, err)
	}
	l.parser.MarkLastChunkReceived()
}
