// Package fetch retrieves asset bytes from the remote source. One GET, no
// retries; retry policy belongs to whoever calls the manager. The body is
// streamed to a staging file so partial downloads are never visible to the
// store.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"
)

// Error classifies a failed fetch. Reason is a short stable token
// (request, timeout, transport, status, read, stage).
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("fetch failed (%s)", e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// IsError reports whether err is a fetch failure.
func IsError(err error) bool {
	var fe *Error
	return errors.As(err, &fe)
}

// Fetcher performs single-shot HTTP GETs with configured timeouts. Timeout
// expiry is the only cancellation mechanism beyond the caller's context.
type Fetcher struct {
	client *http.Client
}

// New builds a Fetcher. connectTimeout bounds dialing; readTimeout bounds
// the whole request including the body transfer.
func New(connectTimeout, readTimeout time.Duration) *Fetcher {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: connectTimeout,
		}).DialContext,
		TLSHandshakeTimeout: connectTimeout,
	}
	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   readTimeout,
		},
	}
}

// Download GETs url and streams the body into a temp file under dstDir.
// It returns the staged path and byte count only after the transfer fully
// completed; any failure removes the staged file.
func (f *Fetcher) Download(ctx context.Context, url, dstDir string) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, &Error{Reason: "request", Err: err}
	}
	res, err := f.client.Do(req)
	if err != nil {
		return "", 0, &Error{Reason: classify(err), Err: err}
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return "", 0, &Error{Reason: fmt.Sprintf("status %d", res.StatusCode)}
	}

	tmp, err := os.CreateTemp(dstDir, "download-*")
	if err != nil {
		return "", 0, &Error{Reason: "stage", Err: err}
	}
	tmpName := tmp.Name()
	n, err := tmp.ReadFrom(res.Body)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", 0, &Error{Reason: classify(err), Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", 0, &Error{Reason: "stage", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", 0, &Error{Reason: "stage", Err: err}
	}
	return tmpName, n, nil
}

// classify distinguishes timeouts from other transport failures so callers
// can log them apart; the error kind is the same either way.
func classify(err error) string {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return "timeout"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "transport"
}
