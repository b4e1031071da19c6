package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/desertthunder/spotlist/internal/shared"
	tu "github.com/desertthunder/spotlist/internal/testing"
)

func TestJSONClient(t *testing.T) {
	t.Run("Trims Trailing Slash", func(t *testing.T) {
		c := newJSONClient("test", "http://example.com/", nil)
		if c.baseURL != "http://example.com" {
			t.Errorf("expected trimmed base url, got %s", c.baseURL)
		}
	})

	t.Run("Request Failed", func(t *testing.T) {
		c := newJSONClient("test", "http://example.com", tu.MockClient(nil, errors.New("network error")))

		var out map[string]any
		err := c.get(context.Background(), "/x", nil, "", &out)
		if !errors.Is(err, shared.ErrUpstream) {
			t.Errorf("expected ErrUpstream, got %v", err)
		}
		if strings.Contains(err.Error(), "http://example.com") {
			t.Errorf("error should not repeat the request url: %v", err)
		}
	})

	t.Run("Read Failure", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: http.Header{}}
		c := newJSONClient("test", "http://example.com", tu.MockClient(resp, nil))

		var out map[string]any
		err := c.get(context.Background(), "/x", nil, "", &out)
		if !errors.Is(err, shared.ErrUpstream) || !strings.Contains(err.Error(), "failed to read response") {
			t.Errorf("expected read failure, got %v", err)
		}
	})

	t.Run("Canceled Context", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t)
		c := newJSONClient("test", fake.ReferenceURL(), nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var out []Country
		if err := c.get(ctx, "/AvailableCountries", nil, "", &out); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("Sends Bearer Header", func(t *testing.T) {
		var got string
		resp := &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{}`)),
			Header:     http.Header{},
		}
		client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			got = r.Header.Get("Authorization")
			return resp, nil
		})}

		var out map[string]any
		if err := newJSONClient("test", "http://example.com", client).get(context.Background(), "/x", nil, "abc", &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "Bearer abc" {
			t.Errorf("expected bearer header, got %q", got)
		}
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
