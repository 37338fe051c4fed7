// Package dogapi talks to the public breed endpoint and the image CDN.
//
// Failures are classified into three sentinels so callers can report them without
// inspecting transport details:
//   - ErrConnection: the request never produced a response (DNS, refused, timeout).
//   - ErrRetrieval: a response arrived with a non-2xx status (see *StatusError).
//   - ErrMalformedPayload: the body could not be decoded as the breed schema.
package dogapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBreedsURL     = "https://api.thedogapi.com/v1/breeds"
	DefaultImageTemplate = "https://cdn2.thedogapi.com/images/%s.jpg"
	DefaultTimeout       = 30 * time.Second

	maxListBytes  = 16 << 20
	maxImageBytes = 32 << 20
)

var (
	ErrConnection       = errors.New("failed to establish a connection")
	ErrRetrieval        = errors.New("unable to retrieve data")
	ErrMalformedPayload = errors.New("malformed breed payload")
)

// StatusError carries the non-2xx status of a failed retrieval.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("GET %s: status=%d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: status=%d body=%s", e.URL, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrRetrieval }

// Measure is a height or weight object; only the metric range is used.
type Measure struct {
	Imperial string  `json:"imperial"`
	Metric   *string `json:"metric"`
}

// Breed is one element of the breed list as sent by the API. Pointer fields let
// callers tell a missing key from an empty value.
type Breed struct {
	ID               *int     `json:"id"`
	Name             *string  `json:"name"`
	Height           *Measure `json:"height"`
	Weight           *Measure `json:"weight"`
	LifeSpan         *string  `json:"life_span"`
	ReferenceImageID *string  `json:"reference_image_id"`
}

// Client fetches breed data. The zero value is not usable; use New.
type Client struct {
	HTTP      *http.Client
	BreedsURL string
	APIKey    string
}

// New returns a Client for breedsURL with the given request timeout (<=0 keeps DefaultTimeout).
func New(breedsURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if strings.TrimSpace(breedsURL) == "" {
		breedsURL = DefaultBreedsURL
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		BreedsURL: breedsURL,
	}
}

// FetchBreeds performs one GET of the full breed list.
func (c *Client) FetchBreeds(ctx context.Context) ([]Breed, error) {
	raw, err := c.get(ctx, c.BreedsURL, "application/json", maxListBytes)
	if err != nil {
		return nil, err
	}
	var breeds []Breed
	if err := json.Unmarshal(raw, &breeds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return breeds, nil
}

// FetchImage downloads the image at url and returns its bytes undecoded.
func (c *Client) FetchImage(ctx context.Context, url string) ([]byte, error) {
	return c.get(ctx, url, "image/*", maxImageBytes)
}

func (c *Client) get(ctx context.Context, url, accept string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request %s: %w", url, err)
	}
	req.Header.Set("Accept", accept)
	if c.APIKey != "" {
		req.Header.Set("x-api-key", c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrConnection, url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Body: snippet(raw)}
	}
	if err != nil {
		if isTransientNetErr(err) {
			return nil, fmt.Errorf("%w: read %s: %v", ErrConnection, url, err)
		}
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return raw, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

// ImageURL builds the CDN URL for a reference image id. An empty id yields "".
func ImageURL(template, imageID string) string {
	imageID = strings.TrimSpace(imageID)
	if imageID == "" {
		return ""
	}
	if template == "" {
		template = DefaultImageTemplate
	}
	return fmt.Sprintf(template, imageID)
}

// isTransientNetErr reports connection-level failures seen while reading a body.
func isTransientNetErr(err error) bool {
	if err == nil {
		return false
	}
	es := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return true
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return true
	case strings.Contains(es, "connection reset by peer"):
		return true
	case strings.Contains(es, "broken pipe"):
		return true
	case strings.Contains(es, "use of closed network connection"):
		return true
	case strings.Contains(es, "timeout"):
		return true
	default:
		return false
	}
}
