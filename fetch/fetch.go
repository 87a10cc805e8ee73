package fetch

import (
	"bufio"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/Syrcon/servo/loader"
	"github.com/cenkalti/backoff/v4"
	"github.com/npillmayer/schuko"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Listener receives the events of a load. The byte slice passed to
// DataAvailable is only valid during the call.
type Listener interface {
	HeadersAvailable(meta *loader.Metadata, err error)
	DataAvailable(p []byte)
	ResponseComplete(err error)
}

var _ Listener = (*loader.Listener)(nil)

// Defaults for a Fetcher.
const (
	DefaultChunkSize  = 8192
	DefaultMaxElapsed = 30 * time.Second
)

var retries = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "servo",
	Subsystem: "fetch",
	Name:      "retries_total",
	Help:      "HTTP requests retried after a transport error or server error status.",
})

// Fetcher loads documents. The zero value is usable.
type Fetcher struct {
	Client          *http.Client  // http.DefaultClient if nil
	ChunkSize       int           // size of body chunks
	MaxElapsed      time.Duration // give up retrying after this time
	InitialInterval time.Duration // first retry interval, backoff default if 0
}

// New creates a fetcher configured from conf, which may be nil.
func New(conf schuko.Configuration) *Fetcher {
	f := &Fetcher{ChunkSize: DefaultChunkSize, MaxElapsed: DefaultMaxElapsed}
	if conf == nil {
		return f
	}
	if conf.IsSet("fetch.chunksize") {
		if n := conf.GetInt("fetch.chunksize"); n > 0 {
			f.ChunkSize = n
		}
	}
	if conf.IsSet("fetch.retry.maxelapsed") {
		f.MaxElapsed = time.Duration(conf.GetInt("fetch.retry.maxelapsed")) * time.Second
	}
	return f
}

// Fetch loads location and reports the load to l. Locations without a URL
// scheme are file paths. The error the load failed with, if any, is
// returned after it has been reported to l.
func (f *Fetcher) Fetch(ctx context.Context, location string, l Listener) error {
	u, err := Resolve(location)
	if err != nil {
		return f.fail(l, location, loader.Internal, err)
	}
	tracer().Infof("fetching %s", u)
	switch u.Scheme {
	case "http", "https":
		return f.fetchHTTP(ctx, u, l)
	case "file":
		return f.fetchFile(ctx, u, l)
	}
	return f.fail(l, u.String(), loader.Internal, fmt.Errorf("unsupported scheme %q", u.Scheme))
}

// Resolve turns a location into a URL. A location without a scheme is
// taken as a file path.
func Resolve(location string) (*url.URL, error) {
	if u, err := url.Parse(location); err == nil && len(u.Scheme) > 1 {
		return u, nil
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return nil, err
	}
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, u *url.URL, l Listener) error {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = DefaultMaxElapsed
	if f.MaxElapsed > 0 {
		policy.MaxElapsedTime = f.MaxElapsed
	}
	if f.InitialInterval > 0 {
		policy.InitialInterval = f.InitialInterval
	}
	var resp *http.Response
	attempt := 1
	err := backoff.Retry(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		r, err := f.client().Do(req)
		if err != nil {
			if isCertificateError(err) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			tracer().Infof("fetching %s failed, attempt %d: %v", u, attempt, err)
			attempt++
			retries.Inc()
			return err
		}
		if r.StatusCode >= http.StatusInternalServerError {
			r.Body.Close()
			tracer().Infof("fetching %s failed, attempt %d: %s", u, attempt, r.Status)
			attempt++
			retries.Inc()
			return fmt.Errorf("server responded %s", r.Status)
		}
		resp = r
		return nil
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		kind := loader.Internal
		if isCertificateError(err) {
			kind = loader.SSLValidation
		}
		return f.fail(l, u.String(), kind, err)
	}
	defer resp.Body.Close()
	l.HeadersAvailable(&loader.Metadata{
		URL:         resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
		Status:      resp.StatusCode,
	}, nil)
	return f.complete(l, u.String(), f.stream(ctx, resp.Body, l))
}

func (f *Fetcher) fetchFile(ctx context.Context, u *url.URL, l Listener) error {
	path := filepath.FromSlash(u.Path)
	fh, err := os.Open(path)
	if err != nil {
		return f.fail(l, u.String(), loader.Internal, err)
	}
	defer fh.Close()
	var r io.Reader = fh
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		br := bufio.NewReader(fh)
		head, _ := br.Peek(512)
		ct = http.DetectContentType(head)
		r = br
	}
	l.HeadersAvailable(&loader.Metadata{URL: u.String(), ContentType: ct}, nil)
	return f.complete(l, u.String(), f.stream(ctx, r, l))
}

// stream hands the body to l in chunks.
func (f *Fetcher) stream(ctx context.Context, r io.Reader, l Listener) error {
	size := f.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	buf := make([]byte, size)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if n > 0 {
			l.DataAvailable(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// fail reports a load which did not get to see any headers.
func (f *Fetcher) fail(l Listener, location string, kind loader.ErrorKind, err error) error {
	netErr := &loader.NetworkError{Kind: kind, URL: location, Err: err}
	tracer().Errorf("%v", netErr)
	l.HeadersAvailable(nil, netErr)
	l.ResponseComplete(netErr)
	return netErr
}

func (f *Fetcher) complete(l Listener, location string, err error) error {
	if err != nil {
		netErr := &loader.NetworkError{Kind: loader.Internal, URL: location, Err: err}
		l.ResponseComplete(netErr)
		return netErr
	}
	l.ResponseComplete(nil)
	return nil
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

func isCertificateError(err error) bool {
	var verr *tls.CertificateVerificationError
	var aerr x509.UnknownAuthorityError
	var herr x509.HostnameError
	var ierr x509.CertificateInvalidError
	return errors.As(err, &verr) || errors.As(err, &aerr) ||
		errors.As(err, &herr) || errors.As(err, &ierr)
}
