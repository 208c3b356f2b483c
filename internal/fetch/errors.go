package fetch

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"
)

// HTTPError is a completed response whose status is outside 2xx.
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %s", e.Status)
}

// TimeoutError is an attempt cancelled by its own per-attempt timer.
type TimeoutError struct {
	URL   string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request to %s timed out after %s", e.URL, e.After)
}

func (e *TimeoutError) Timeout() bool { return true }

// IsTimeout returns true if err is, or wraps, a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsHTTPStatus returns true if err is, or wraps, an HTTPError.
func IsHTTPStatus(err error) bool {
	var he *HTTPError
	return errors.As(err, &he)
}

// IsTransport reports whether err came from the transport layer: a timeout,
// a non-2xx status, a connection failure or an undecodable body.
func IsTransport(err error) bool {
	if err == nil {
		return false
	}
	if IsTimeout(err) || IsHTTPStatus(err) {
		return true
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return true
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}

// DecodeError is a 2xx response whose body is not valid JSON.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid JSON from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
