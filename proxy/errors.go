package proxy

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/papercomputeco/relay/pkg/upstream"
)

// Kind classifies the outcome of a proxied call.
type Kind string

const (
	KindOK        Kind = "ok"
	KindTransport Kind = "transport"
	KindUpstream  Kind = "upstream"
	KindFileRead  Kind = "file_read"
	KindLock      Kind = "lock"
	KindInvalid   Kind = "invalid"
)

// UnknownErrorDetail replaces an upstream error body that could not be read.
const UnknownErrorDetail = "Unknown error"

var (
	// ErrMalformedBody marks a 2xx response whose body is not valid JSON.
	ErrMalformedBody = errors.New("failed to parse response")

	// ErrUnsupportedMethod is returned for verbs other than GET, POST, PUT and DELETE.
	ErrUnsupportedMethod = errors.New("unsupported method")
)

// TransportError is a failure to complete the exchange: DNS, connect, TLS,
// timeout, an unreadable body or a body that is not JSON.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: request failed: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UpstreamError is a non-2xx response.
type UpstreamError struct {
	Method string
	URL    string
	Status int

	// Detail is the upstream response body, or UnknownErrorDetail.
	Detail string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %s: API error (%d %s): %s",
		e.Method, e.URL, e.Status, http.StatusText(e.Status), e.Detail)
}

// FileReadError is an upload source that could not be read.
type FileReadError struct {
	Method   string
	Endpoint string
	Path     string
	Err      error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("%s %s: failed to read %s: %v", e.Method, e.Endpoint, e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error {
	return e.Err
}

// KindOf returns the outcome kind of err; nil is KindOK.
func KindOf(err error) Kind {
	var (
		upstreamErr *UpstreamError
		fileErr     *FileReadError
	)

	switch {
	case err == nil:
		return KindOK
	case errors.As(err, &upstreamErr):
		return KindUpstream
	case errors.As(err, &fileErr):
		return KindFileRead
	case errors.Is(err, upstream.ErrLockPoisoned):
		return KindLock
	case errors.Is(err, ErrUnsupportedMethod):
		return KindInvalid
	default:
		return KindTransport
	}
}
