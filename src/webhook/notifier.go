// Package webhook notifies an external endpoint of the detected language.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds both connecting to and reading from the endpoint.
const DefaultTimeout = 5 * time.Second

// maxBodyBytes caps how much of a response body is kept for the build log.
const maxBodyBytes = 1 << 20

var (
	// ErrEndpointRequired is returned when no webhook endpoint is configured.
	ErrEndpointRequired = errors.New("API endpoint must not be empty")
	// ErrInvalidEndpoint is returned when the endpoint is not an absolute http(s) URL.
	ErrInvalidEndpoint = errors.New("invalid API endpoint")
)

// StatusError is returned when the endpoint answers with anything but 200.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed with response code: %d", e.Code)
}

// Result describes one notification attempt.
type Result struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

// OK reports whether the endpoint answered 200.
func (r Result) OK() bool {
	return r.Err == nil && r.StatusCode == http.StatusOK
}

// Notifier POSTs the detected language to a webhook.
type Notifier struct {
	httpClient *http.Client
}

// NewNotifier creates a notifier with DefaultTimeout for connect and read.
func NewNotifier() *Notifier {
	return NewNotifierWithTimeout(DefaultTimeout)
}

// NewNotifierWithTimeout creates a notifier with the given connect and read timeout.
func NewNotifierWithTimeout(timeout time.Duration) *Notifier {
	return &Notifier{httpClient: newHTTPClient(timeout)}
}

// newHTTPClient bounds the dial and the wait for response headers separately, and the
// whole exchange by twice the timeout, mirroring a connect timeout plus a read timeout.
func newHTTPClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: timeout}).DialContext
	transport.TLSHandshakeTimeout = timeout
	transport.ResponseHeaderTimeout = timeout

	return &http.Client{
		Timeout:   2 * timeout,
		Transport: transport,
	}
}

// BuildURL returns endpoint with the language query parameter set and encoded.
// Existing query parameters on the endpoint are kept.
func BuildURL(endpoint, language string) (string, error) {
	u, err := parseEndpoint(endpoint)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("language", language)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func parseEndpoint(endpoint string) (*url.URL, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, ErrEndpointRequired
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %s (want http or https URL)", ErrInvalidEndpoint, endpoint)
	}
	return u, nil
}

// Notify issues a single POST to endpoint?language=<language> with no body.
// The returned Result carries the error, if any; nothing is retried.
func (n *Notifier) Notify(ctx context.Context, endpoint, language string) Result {
	target, err := BuildURL(endpoint, language)
	if err != nil {
		return Result{Err: err}
	}

	res := Result{URL: target}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, nil)
	if err != nil {
		res.Err = err
		return res
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		res.Err = err
		return res
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		res.Err = &StatusError{Code: resp.StatusCode}
		return res
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		res.Err = fmt.Errorf("failed to read response: %w", err)
		return res
	}
	res.Body = string(body)
	return res
}
