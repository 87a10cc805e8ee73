/*
Package loader bridges a fetch of a document to its parse session.

A Listener receives the lifecycle events of a fetch: headers, body chunks
and completion. Once headers are known it starts a parser for the document
and decides, from the declared content type, whether the body is parsed as
HTML or replaced by a synthesized document:

	image/*                  a document showing the image
	text/plain               a <pre> element, the body as plain text
	text/html                the body; a warning page on certificate errors
	text/xml, xhtml          the body, untouched
	anything else            a page naming the unsupported type
	no content type          the body

Body bytes are decoded with the charset of the content type, UTF-8 by
default. Malformed byte sequences decode to U+FFFD.

A network failure never leaves a document unfinished: the session is still
marked as having received its last chunk and is drained to completion.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package loader

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'servo.loader'.
func tracer() tracing.Trace {
	return tracing.Select("servo.loader")
}
