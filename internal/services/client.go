package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/spotlist/internal/shared"
	"github.com/goccy/go-json"
)

const defaultTimeout = 10 * time.Second

// DefaultHTTPClient returns a client with the given timeout, falling back to ten seconds.
//
// TLS verification stays on; the default transport is used.
func DefaultHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// jsonClient performs GET requests against a JSON API and decodes the responses.
type jsonClient struct {
	service    string
	baseURL    string
	httpClient *http.Client
}

func newJSONClient(service, baseURL string, client *http.Client) jsonClient {
	if client == nil {
		client = DefaultHTTPClient(0)
	}
	return jsonClient{
		service:    service,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// get fetches path with the query params and decodes the body into result.
//
// When bearer is non-empty it is sent in the Authorization header.
// Every failure wraps one of the lookup sentinels in [shared].
func (c jsonClient) get(ctx context.Context, path string, params url.Values, bearer string, result any) error {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", shared.ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s request failed: %w", shared.ErrUpstream, c.service, unwrapURLError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", shared.ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return shared.ParseAPIError(c.service, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("%w: failed to decode %s response: %v", shared.ErrUpstream, c.service, err)
	}

	return nil
}

// unwrapURLError drops the *url.Error wrapper, whose text repeats the full request URL.
func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}
