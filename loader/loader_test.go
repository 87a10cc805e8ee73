package loader

import (
	"errors"
	"testing"

	"github.com/Syrcon/servo/dom"
	"github.com/Syrcon/servo/dom/domdbg"
	"github.com/Syrcon/servo/parser"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const testURL = "https://example.org/page"

type session struct {
	doc     *dom.Document
	started int
	meta    *Metadata
}

func listen() (*Listener, *session) {
	s := &session{}
	l := NewListener(testURL, func(meta *Metadata) *parser.Parser {
		s.started++
		s.meta = meta
		s.doc = dom.NewDocument(testURL)
		return parser.New(s.doc)
	})
	return l, s
}

func fetch(l *Listener, contentType string, chunks ...string) {
	l.HeadersAvailable(&Metadata{URL: testURL, ContentType: contentType, Status: 200}, nil)
	for _, c := range chunks {
		l.DataAvailable([]byte(c))
	}
	l.ResponseComplete(nil)
}

func TestImage(t *testing.T) {
	defer goleak.VerifyNone(t)
	teardown := gotestingadapter.QuickConfig(t, "servo.loader")
	defer teardown()
	//
	l, s := listen()
	fetch(l, "image/png", "\x89PNG\r\n\x1a\n")
	assert.Equal(t, `(html(head,body(img)))`, domdbg.Outline(s.doc.Node))
	img, err := s.doc.Query("img")
	require.NoError(t, err)
	require.NotNil(t, img)
	if src, _ := img.Attr("src"); src != testURL {
		t.Errorf("expected img to reference %s, is %q", testURL, src)
	}
	assert.Equal(t, parser.Complete, l.Parser().State())
	assert.True(t, s.doc.Loaded())
}

func TestPlainText(t *testing.T) {
	defer goleak.VerifyNone(t)
	teardown := gotestingadapter.QuickConfig(t, "servo.loader")
	defer teardown()
	//
	l, s := listen()
	fetch(l, "text/plain; charset=utf-8", "a<b>", "&amp;")
	assert.Equal(t, `(html(head,body(pre("a<b>&amp;"))))`, domdbg.Outline(s.doc.Node))
	assert.Equal(t, parser.Complete, l.Parser().State())
}

func TestUnknownContentType(t *testing.T) {
	defer goleak.VerifyNone(t)
	teardown := gotestingadapter.QuickConfig(t, "servo.loader")
	defer teardown()
	//
	l, s := listen()
	fetch(l, "application/octet-stream", "<p>ignored</p>")
	assert.Equal(t, `(html(head,body(p("Unknown content type (application/octet-stream)."))))`,
		domdbg.Outline(s.doc.Node))
	assert.Equal(t, parser.Complete, l.Parser().State())
}

func TestCertificateError(t *testing.T) {
	defer goleak.VerifyNone(t)
	teardown := gotestingadapter.QuickConfig(t, "servo.loader")
	defer teardown()
	//
	l, s := listen()
	l.HeadersAvailable(nil, &NetworkError{Kind: SSLValidation, URL: testURL})
	l.DataAvailable([]byte("<p>should not show up</p>"))
	l.ResponseComplete(nil)
	require.NotNil(t, s.meta)
	assert.Equal(t, "text/html", s.meta.ContentType)
	title, err := s.doc.Query("title")
	require.NoError(t, err)
	require.NotNil(t, title)
	txt, _ := title.TextContent()
	assert.Equal(t, "Certificate Error", txt)
	ps, err := s.doc.QueryAll("p")
	require.NoError(t, err)
	assert.Len(t, ps, 1)
	assert.Equal(t, parser.Complete, l.Parser().State())
}

func TestBodyParsedAsIs(t *testing.T) {
	defer goleak.VerifyNone(t)
	teardown := gotestingadapter.QuickConfig(t, "servo.loader")
	defer teardown()
	//
	for _, ct := range []string{"text/html", "text/xml", "application/xhtml+xml", ""} {
		l, s := listen()
		fetch(l, ct, "<a>x</a>")
		assert.Equal(t, `(html(head,body(a("x"))))`, domdbg.Outline(s.doc.Node), "content type %q", ct)
	}
}

func TestNetworkFailureCompletes(t *testing.T) {
	defer goleak.VerifyNone(t)
	teardown := gotestingadapter.QuickConfig(t, "servo.loader")
	defer teardown()
	//
	l, s := listen()
	l.HeadersAvailable(&Metadata{URL: testURL, ContentType: "text/html"}, nil)
	l.ResponseComplete(&NetworkError{Kind: Internal, URL: testURL, Err: errors.New("connection reset")})
	assert.Equal(t, parser.Complete, l.Parser().State())
	assert.Equal(t, `(html(head,body))`, domdbg.Outline(s.doc.Node))
	assert.True(t, s.doc.Loaded())
	var netErr *NetworkError
	require.True(t, errors.As(l.Err(), &netErr))
	assert.Equal(t, Internal, netErr.Kind)
	//
	l, s = listen()
	l.HeadersAvailable(nil, &NetworkError{Kind: Internal, URL: testURL})
	l.ResponseComplete(&NetworkError{Kind: Internal, URL: testURL})
	assert.Nil(t, s.meta)
	assert.Equal(t, 1, s.started)
	assert.Equal(t, parser.Complete, l.Parser().State())
}

func TestIgnoredFetch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "servo.loader")
	defer teardown()
	//
	l := NewListener(testURL, func(*Metadata) *parser.Parser { return nil })
	assert.NotPanics(t, func() { fetch(l, "text/html", "<p>x") })
	assert.Nil(t, l.Parser())
}

func TestDecoding(t *testing.T) {
	defer goleak.VerifyNone(t)
	teardown := gotestingadapter.QuickConfig(t, "servo.loader")
	defer teardown()
	//
	cases := []struct {
		contentType string
		chunks      []string
		text        string
	}{
		{"text/html", []string{"<p>h\xc3", "\xa9llo"}, "héllo"},
		{"text/html", []string{"<p>\xe2\x82", "\xac", "!"}, "€!"},
		{"text/html", []string{"<p>a\xffb"}, "a�b"},
		{"text/html", []string{"<p>a\xc3"}, "a�"},
		{"text/html; charset=iso-8859-1", []string{"<p>caf\xe9"}, "café"},
	}
	for _, c := range cases {
		l, s := listen()
		fetch(l, c.contentType, c.chunks...)
		p, err := s.doc.Query("p")
		require.NoError(t, err)
		require.NotNil(t, p)
		if txt, _ := p.TextContent(); txt != c.text {
			t.Errorf("expected %q for %q, is %q", c.text, c.chunks, txt)
		}
	}
}

func TestDecoderCharset(t *testing.T) {
	assert.Equal(t, "utf-8", NewDecoder("").Charset())
	assert.Equal(t, "utf-8", NewDecoder("no-such-charset").Charset())
	assert.Equal(t, "windows-1252", NewDecoder("latin1").Charset())
	d := NewDecoder("utf-8")
	assert.Equal(t, "", d.Decode([]byte{0xe2}))
	assert.Equal(t, "", d.Decode([]byte{0x82}))
	assert.Equal(t, "€", d.Decode([]byte{0xac}))
	assert.Equal(t, "", d.Flush())
}

func TestSuspendedAtCompletion(t *testing.T) {
	defer goleak.VerifyNone(t)
	teardown := gotestingadapter.QuickConfig(t, "servo.loader")
	defer teardown()
	//
	l, s := listen()
	l.HeadersAvailable(&Metadata{URL: testURL, ContentType: "text/html"}, nil)
	l.DataAvailable([]byte("<p>one"))
	l.Parser().Suspend()
	l.DataAvailable([]byte("<p>two"))
	l.ResponseComplete(nil)
	assert.True(t, s.doc.Loaded())
	assert.Equal(t, parser.Suspended, l.Parser().State())
	l.Parser().Resume()
	assert.Equal(t, parser.Complete, l.Parser().State())
	assert.Equal(t, `(html(head,body(p("one"),p("two"))))`, domdbg.Outline(s.doc.Node))
}

func TestMediaType(t *testing.T) {
	m := &Metadata{ContentType: "Text/HTML; Charset=ISO-8859-1"}
	top, sub, ok := m.MediaType()
	assert.True(t, ok)
	assert.Equal(t, "text", top)
	assert.Equal(t, "html", sub)
	assert.Equal(t, "ISO-8859-1", m.Charset())
	_, _, ok = (&Metadata{ContentType: "garbage"}).MediaType()
	assert.False(t, ok)
	_, _, ok = (*Metadata)(nil).MediaType()
	assert.False(t, ok)
}
