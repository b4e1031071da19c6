package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ClientCredentials implements [TokenProvider] with the OAuth2 client-credentials grant.
//
// Credentials travel in a Basic Authorization header and the form body is grant_type=client_credentials.
type ClientCredentials struct {
	tokenURL   string
	httpClient *http.Client
}

// NewClientCredentials creates a token client for tokenURL, defaulting to the Spotify accounts service.
func NewClientCredentials(tokenURL string, client *http.Client) *ClientCredentials {
	if tokenURL == "" {
		tokenURL = SpotifyTokenURL
	}
	if client == nil {
		client = DefaultHTTPClient(0)
	}
	return &ClientCredentials{tokenURL: tokenURL, httpClient: client}
}

// Token requests a new access token for creds. Nothing is cached.
func (c *ClientCredentials) Token(ctx context.Context, creds models.Credentials) (models.BearerToken, error) {
	if err := creds.Validate(); err != nil {
		return models.BearerToken{}, err
	}

	conf := clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     c.tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	tok, err := conf.Token(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient))
	if err != nil {
		return models.BearerToken{}, classifyTokenError(err)
	}

	return models.BearerToken{Value: tok.AccessToken, Expiry: tok.Expiry}, nil
}

// classifyTokenError maps token endpoint failures onto the lookup sentinels.
//
// Rejections and unusable payloads are authentication failures; 5xx responses,
// transport errors and timeouts are upstream failures.
func classifyTokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}

		reason := retrieveErr.ErrorDescription
		if reason == "" {
			reason = retrieveErr.ErrorCode
		}
		if reason == "" {
			reason = shared.ParseAPIError("token", status, retrieveErr.Body).Message
		}

		if status >= http.StatusInternalServerError {
			return fmt.Errorf("%w: token endpoint returned %d: %s", shared.ErrUpstream, status, reason)
		}
		return fmt.Errorf("%w: %s", shared.ErrAuthentication, reason)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: token request failed: %w", shared.ErrUpstream, unwrapURLError(err))
	}

	return fmt.Errorf("%w: %v", shared.ErrAuthentication, err)
}
