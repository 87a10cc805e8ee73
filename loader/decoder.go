package loader

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoder decodes a body arriving in chunks. Byte sequences split between
// chunks are carried over to the next chunk.
type Decoder struct {
	t     transform.Transformer
	name  string
	carry []byte
	buf   []byte
}

// NewDecoder creates a decoder for a charset label. Unknown or empty labels
// select UTF-8.
func NewDecoder(label string) *Decoder {
	var enc encoding.Encoding = unicode.UTF8
	name := "utf-8"
	if label != "" {
		if e, canonical := charset.Lookup(label); e != nil {
			enc, name = e, canonical
		} else {
			tracer().Infof("unknown charset %q, decoding as utf-8", label)
		}
	}
	return &Decoder{
		t:    enc.NewDecoder(),
		name: name,
		buf:  make([]byte, 4096),
	}
}

// Charset is the canonical name of the decoder's charset.
func (d *Decoder) Charset() string {
	return d.name
}

// Decode decodes the next chunk. A trailing incomplete byte sequence is kept
// for the next call.
func (d *Decoder) Decode(p []byte) string {
	return d.decode(p, false)
}

// Flush decodes input carried over from previous chunks. An incomplete
// sequence at the end of input decodes to U+FFFD.
func (d *Decoder) Flush() string {
	return d.decode(nil, true)
}

func (d *Decoder) decode(p []byte, atEOF bool) string {
	src := p
	if len(d.carry) > 0 {
		src = append(d.carry, p...)
		d.carry = nil
	}
	var sb strings.Builder
	for {
		nDst, nSrc, err := d.t.Transform(d.buf, src, atEOF)
		sb.Write(d.buf[:nDst])
		src = src[nSrc:]
		switch {
		case err == nil:
			if atEOF {
				d.t.Reset()
			}
			return sb.String()
		case errors.Is(err, transform.ErrShortDst):
			continue
		case errors.Is(err, transform.ErrShortSrc):
			d.carry = append([]byte(nil), src...)
			return sb.String()
		default:
			// replacement decoders should not fail; skip the offending byte
			tracer().Debugf("decoding error: %v", err)
			sb.WriteRune(utf8.RuneError)
			if len(src) == 0 {
				return sb.String()
			}
			src = src[1:]
		}
	}
}
