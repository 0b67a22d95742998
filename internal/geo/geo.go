// Package geo looks up the coarse location of the host's public IP address
// using an IP-geolocation JSON service.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DefaultURL is the default geolocation service.
	DefaultURL = "https://ipinfo.io/json"

	// DefaultTimeout bounds a lookup.
	DefaultTimeout = 5 * time.Second

	maxBodySize = 1 << 20
)

// Location is the subset of the geolocation response we use.
type Location struct {
	IP      string `json:"ip"`
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

// String formats the location as "country, city, region".
func (l Location) String() string {
	return strings.Join([]string{l.Country, l.City, l.Region}, ", ")
}

// Client queries a geolocation service.
type Client struct {
	URL       string
	Timeout   time.Duration
	UserAgent string

	httpClient *http.Client
}

// New returns a Client for the service at url. An empty url selects
// DefaultURL.
func New(url string) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		URL:        url,
		Timeout:    DefaultTimeout,
		httpClient: http.DefaultClient,
	}
}

// RequestError is returned when the service cannot be reached.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return "Request failed: " + e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Lookup returns the location of the caller. Transport failures are
// returned as *RequestError; a non-2xx status or an undecodable body as a
// plain error.
func (c *Client) Lookup(ctx context.Context) (*Location, error) {
	timeout, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeout, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	loc := &Location{}
	if err := json.Unmarshal(b, loc); err != nil {
		return nil, fmt.Errorf("invalid response: %w", err)
	}
	if loc.Country == "" && loc.City == "" && loc.Region == "" {
		return nil, errors.New("no location in response")
	}
	return loc, nil
}

// Region returns the caller's location as "country, city, region". It never
// fails: a transport error yields "Request failed: <error>" and any other
// failure yields "Error: <error>".
func (c *Client) Region(ctx context.Context) string {
	loc, err := c.Lookup(ctx)
	if err != nil {
		log.Warn("geolocation lookup failed", "url", c.URL, "error", err)
		if _, ok := err.(*RequestError); ok {
			return err.Error()
		}
		return "Error: " + err.Error()
	}
	return loc.String()
}
