// package services defines the clients for the upstream HTTP APIs
//
// Spotify accounts (token), Spotify Web API (catalog), Nager.Date (countries)
package services

import (
	"context"

	"github.com/desertthunder/spotlist/internal/models"
)

// TokenProvider exchanges client credentials for a bearer token.
//
// Callers ask for a fresh token per action; a caching policy can be added by wrapping an implementation.
type TokenProvider interface {
	Token(ctx context.Context, creds models.Credentials) (models.BearerToken, error)
}

// Catalog is the read-only subset of the music catalog API used by the lookups.
type Catalog interface {
	// ResolveArtist returns the first artist matching query.
	ResolveArtist(ctx context.Context, token models.BearerToken, query string) (models.EntityReference, error)

	// TopTracks returns the artist's most popular tracks in the given market.
	TopTracks(ctx context.Context, token models.BearerToken, artistID, country string) ([]SpotifyTrack, error)

	// Recommendations returns tracks seeded by an artist ID and a genre.
	Recommendations(ctx context.Context, token models.BearerToken, artistID, genre string, limit int) ([]SpotifyTrack, error)

	// GenreSeeds lists the genres accepted as recommendation seeds.
	GenreSeeds(ctx context.Context, token models.BearerToken) ([]string, error)

	// NewReleases lists newly released albums, optionally for one market.
	NewReleases(ctx context.Context, token models.BearerToken, country string, limit int) ([]SpotifyAlbum, error)
}

// CountryLister lists the countries offered in the market selector.
type CountryLister interface {
	Countries(ctx context.Context) ([]Country, error)
}

// Country is a selectable market.
type Country struct {
	Name        string `json:"name"`
	CountryCode string `json:"countryCode"`
}
