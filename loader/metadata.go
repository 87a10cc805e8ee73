package loader

import (
	"fmt"
	"mime"
	"strings"
)

// Metadata describes a fetched resource, as known from its response headers.
type Metadata struct {
	URL         string
	ContentType string // value of the Content-Type header, may be empty
	Status      int
}

// MediaType splits the content type into lower case top level and sub
// level type. ok is false if there is no parsable content type.
func (m *Metadata) MediaType() (top, sub string, ok bool) {
	if m == nil || m.ContentType == "" {
		return "", "", false
	}
	mt, _, err := mime.ParseMediaType(m.ContentType)
	if err != nil {
		tracer().Debugf("cannot parse content type %q: %v", m.ContentType, err)
		return "", "", false
	}
	top, sub, found := strings.Cut(mt, "/")
	if !found {
		return "", "", false
	}
	return top, sub, true
}

// Charset returns the charset parameter of the content type, if any.
func (m *Metadata) Charset() string {
	if m == nil || m.ContentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(m.ContentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

// ErrorKind classifies network errors.
type ErrorKind int

// Kinds of network errors.
const (
	Internal ErrorKind = iota
	SSLValidation
)

func (k ErrorKind) String() string {
	if k == SSLValidation {
		return "ssl-validation"
	}
	return "internal"
}

// NetworkError is the error a fetch reports to a Listener.
type NetworkError struct {
	Kind ErrorKind
	URL  string
	Err  error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v error fetching %s", e.Kind, e.URL)
	}
	return fmt.Sprintf("%v error fetching %s: %v", e.Kind, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
