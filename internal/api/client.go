// Package api is the HTTP client for the ingestion server: uploads, the
// upload list, session/account, folder publishing and stream status.
// Every request body is gzip-compressed JSON.
package api

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	syncerrors "github.com/alexjbarnes/folder-sync/internal/errors"
)

// DefaultUploadURL is the ingestion endpoint of a local development server.
const DefaultUploadURL = "http://127.0.0.1:3002/uploads"

const (
	// maxRedirects is the maximum number of HTTP redirects to follow
	// before giving up, matching the default net/http limit.
	maxRedirects = 10

	// defaultTimeout applies when no custom http.Client is provided.
	defaultTimeout = 60 * time.Second

	// maxAPIResponseBytes caps response body reads. List responses carry
	// file metadata only, never file content.
	maxAPIResponseBytes = 8 * 1024 * 1024

	// contentEncoding is sent on every request with a body.
	contentEncoding = "gzip, deflate"
)

// Client talks to the ingestion server.
type Client struct {
	httpClient *http.Client
	uploadURL  string
	baseURL    string

	mu    sync.RWMutex
	token string
}

// sameHostRedirectPolicy follows redirects only when the target host
// matches the original request host so session tokens never leave the
// server origin.
func sameHostRedirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return errors.New("stopped after 10 redirects")
	}

	if len(via) > 0 {
		origHost := via[0].URL.Host
		if req.URL.Host != origHost {
			return fmt.Errorf("redirect to different host blocked: %s -> %s", origHost, req.URL.Host)
		}
	}

	return nil
}

// NewHTTPClient returns an http.Client with the given timeout that only
// follows redirects within the same host.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:       timeout,
		CheckRedirect: sameHostRedirectPolicy,
	}
}

// NewClient creates a client for the given upload endpoint. Session,
// folder and stream endpoints live on the same origin. If httpClient is
// nil, a client with a 60-second timeout and same-host redirect policy
// is created.
func NewClient(uploadURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(uploadURL)
	if err != nil {
		return nil, fmt.Errorf("parsing upload URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("upload URL must be http or https, got %q", uploadURL)
	}

	if u.Host == "" {
		return nil, fmt.Errorf("upload URL has no host: %q", uploadURL)
	}

	if httpClient == nil {
		httpClient = NewHTTPClient(defaultTimeout)
	}

	return &Client{
		httpClient: httpClient,
		uploadURL:  strings.TrimRight(uploadURL, "/"),
		baseURL:    u.Scheme + "://" + u.Host,
	}, nil
}

// UploadURL returns the ingestion endpoint.
func (c *Client) UploadURL() string {
	return c.uploadURL
}

// SetToken sets the session token sent as a bearer credential.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current session token, or empty string.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.token
}

// compress gzips data at maximum compression.
func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}

	if _, err := zw.Write(data); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// newRequest builds a request with the fixed JSON headers. A non-nil
// body is JSON-encoded and gzip-compressed.
func (c *Client) newRequest(ctx context.Context, method, rawURL string, body interface{}) (*http.Request, error) {
	var (
		reader io.Reader
		length int
	)

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshalling request body: %w", err)
		}

		compressed, err := compress(payload)
		if err != nil {
			return nil, fmt.Errorf("compressing request body: %w", err)
		}

		reader = bytes.NewReader(compressed)
		length = len(compressed)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Content-Encoding", contentEncoding)
		// net/http writes Content-Length from this field.
		req.ContentLength = int64(length)
	}

	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

// do sends a request and decodes a JSON response into result. Any 2xx
// status is success.
func (c *Client) do(ctx context.Context, method, rawURL string, body, result interface{}) error {
	endpoint := method + " " + rawURL

	req, err := c.newRequest(ctx, method, rawURL, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request to %s: %w: %w", endpoint, syncerrors.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxAPIResponseBytes))
	if err != nil {
		return fmt.Errorf("reading response from %s: %w: %w", endpoint, syncerrors.ErrAPIResponse, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(endpoint, resp.StatusCode, respBody)
	}

	if result == nil {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("decoding response from %s: %w: %w", endpoint, syncerrors.ErrAPIResponse, err)
	}

	return nil
}

// statusError builds the error for a non-2xx response. The server
// reports problems in "error", "message" or an "errors" array.
func statusError(endpoint string, status int, body []byte) error {
	sentinel := syncerrors.ErrAPIRequest

	switch status {
	case http.StatusUnauthorized:
		sentinel = syncerrors.ErrInvalidCredentials
	case http.StatusUnprocessableEntity:
		sentinel = syncerrors.ErrValidation
	}

	if msg := serverMessage(body); msg != "" {
		return fmt.Errorf("%s (%d): %w: %s", endpoint, status, sentinel, msg)
	}

	return fmt.Errorf("%s returned status %d: %w: %s", endpoint, status, sentinel, sanitizeResponseBody(body))
}

// serverMessage extracts a human-readable message from an error body.
func serverMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}

	if errs := gjson.GetBytes(body, "errors"); errs.IsArray() {
		var msgs []string
		for _, e := range errs.Array() {
			if s := e.String(); s != "" {
				msgs = append(msgs, s)
			}
		}

		if len(msgs) > 0 {
			return sanitizeResponseBody([]byte(strings.Join(msgs, "; ")))
		}
	}

	for _, key := range []string{"error", "message"} {
		if v := gjson.GetBytes(body, key); v.Type == gjson.String && v.Str != "" {
			return sanitizeResponseBody([]byte(v.Str))
		}
	}

	return ""
}

// sanitizeResponseBody truncates and sanitizes a response body for
// inclusion in error messages. Limits to 256 bytes and replaces
// non-printable characters to prevent log injection.
func sanitizeResponseBody(body []byte) string {
	const maxLen = 256
	if len(body) > maxLen {
		body = body[:maxLen]
	}

	var clean []byte

	for len(body) > 0 {
		r, size := utf8.DecodeRune(body)
		if r == utf8.RuneError && size <= 1 {
			clean = append(clean, '?')
			body = body[1:]

			continue
		}

		if r < 0x20 && r != '\t' {
			clean = append(clean, '?')
		} else {
			clean = append(clean, body[:size]...)
		}

		body = body[size:]
	}

	return string(clean)
}
