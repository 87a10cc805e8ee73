/*
Package fetch loads documents over HTTP(S) or from the file system and
reports the progress of a load to a Listener.

Listener events are delivered on the goroutine calling Fetch, which is
expected to be the goroutine owning the document being loaded. Requests
failing with a transport error or a server error status are retried with
exponential backoff. Certificate verification failures are not retried;
they are reported as network errors of kind loader.SSLValidation.

Configuration keys:

	fetch.retry.maxelapsed   give up retrying after this many seconds
	fetch.chunksize          size of body chunks handed to the listener

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package fetch

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'servo.fetch'.
func tracer() tracing.Trace {
	return tracing.Select("servo.fetch")
}
