// Package device is the typed contract for the KiloCam HTTP API: status,
// settings, clock, power control, capture and the flat per-directory file
// listing. Every call is a single GET with query-string parameters.
package device

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"kilocam/internal/errors"
	"kilocam/internal/log"
)

// Client talks to one device.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every request. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the device at baseURL, e.g. "http://192.168.4.1".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the device address the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// get issues GET endpoint?query. A non-2xx answer is returned as a
// device-reported error carrying the body text; the caller owns resp.Body
// only on success.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values) (*http.Response, error) {
	reqURL := c.baseURL + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	log.Debugf("GET %s", reqURL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewTransientError(endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.NewDeviceReportedError(endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp, nil
}

// getText performs get and returns the acknowledgment text verbatim.
func (c *Client) getText(ctx context.Context, endpoint string, query url.Values) (string, error) {
	resp, err := c.get(ctx, endpoint, query)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewTransientError(endpoint, err)
	}
	return string(body), nil
}

// Status fetches the device snapshot.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	resp, err := c.get(ctx, "/status", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var status Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return &status, nil
}

// SaveSettings validates s and pushes it as one /save-config request.
func (c *Client) SaveSettings(ctx context.Context, s Settings) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}

	q := url.Values{}
	if s.Name != "" {
		q.Set("name", s.Name)
	}
	q.Set("interval", strconv.Itoa(s.Interval))
	q.Set("lightPwm", strconv.Itoa(s.LightPWM))
	q.Set("lightDur", strconv.Itoa(s.LightDur))
	return c.getText(ctx, "/save-config", q)
}

// SetTime sets the device clock. tzMinutes is the offset east of UTC.
func (c *Client) SetTime(ctx context.Context, epoch int64, tzMinutes int) (string, error) {
	q := url.Values{}
	q.Set("time", strconv.FormatInt(epoch, 10))
	q.Set("tz", strconv.Itoa(tzMinutes))
	return c.getText(ctx, "/set-time", q)
}

// Control sends a one-shot power/light command.
func (c *Client) Control(ctx context.Context, action Action) (string, error) {
	if !action.Valid() {
		return "", fmt.Errorf("unknown control action %q", action)
	}
	q := url.Values{}
	q.Set("action", string(action))
	return c.getText(ctx, "/control", q)
}

// Capture takes a test photo and returns the image bytes.
func (c *Client) Capture(ctx context.Context) (*Capture, error) {
	resp, err := c.get(ctx, "/capture", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewTransientError("/capture", err)
	}
	return &Capture{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}

// List returns the children of an absolute directory path, in server order.
func (c *Client) List(ctx context.Context, path string) ([]Entry, error) {
	q := url.Values{}
	q.Set("path", path)
	resp, err := c.get(ctx, "/list", q)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var entries []Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode listing of %s: %w", path, err)
	}
	return entries, nil
}

// Delete removes a file, or a directory and everything below it.
func (c *Client) Delete(ctx context.Context, path string) error {
	q := url.Values{}
	q.Set("path", path)
	resp, err := c.get(ctx, "/delete", q)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

// Fetch streams the content of the file at an absolute device path into w.
// Files are served at their own path, e.g. GET /2024-01-01/IMG_0001.jpg.
func (c *Client) Fetch(ctx context.Context, path string, w io.Writer) (int64, error) {
	resp, err := c.get(ctx, escapePath(path), nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, errors.NewTransientError(path, err)
	}
	return n, nil
}

func escapePath(p string) string {
	return (&url.URL{Path: p}).EscapedPath()
}
