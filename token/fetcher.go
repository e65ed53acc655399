// Package token fetches chat access tokens from the quickstart token endpoint.
package token

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

var ErrNoData = errors.New("token endpoint returned no data")

// Grant is what the endpoint hands out. Either field may be empty.
type Grant struct {
	Token    string
	Identity string
}

// Fetcher issues GET <base>/token.php?device=<id>.
type Fetcher struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

type Option func(*Fetcher)

func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) { f.client = client }
}

func WithLogger(log zerolog.Logger) Option {
	return func(f *Fetcher) { f.log = log }
}

func NewFetcher(baseURL string, timeout time.Duration, opts ...Option) *Fetcher {
	f := &Fetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// URL returns the request URL for a device.
func (f *Fetcher) URL(deviceID string) string {
	return f.baseURL + "/token.php?device=" + url.QueryEscape(deviceID)
}

// Fetch performs the request once. The response status is not interpreted:
// any non-empty body is parsed, and fields missing from it come back empty.
func (f *Fetcher) Fetch(ctx context.Context, deviceID string) (*Grant, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(deviceID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w (status %d)", ErrNoData, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		f.log.Debug().Int("status", resp.StatusCode).Msg("token endpoint returned non-200, parsing body anyway")
	}

	return Parse(body), nil
}

// Parse extracts token and identity from a JSON body. It never fails.
func Parse(body []byte) *Grant {
	result := gjson.GetManyBytes(body, "token", "identity")
	return &Grant{
		Token:    result[0].String(),
		Identity: result[1].String(),
	}
}
