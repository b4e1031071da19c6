// Spotify Web API catalog client, implementation of [Catalog]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/shared"
)

const (
	SpotifyTokenURL = "https://accounts.spotify.com/api/token"
	SpotifyAPIURL   = "https://api.spotify.com/v1"

	DefaultRecommendationLimit = 10
	MaxRecommendationLimit     = 100
	DefaultReleaseLimit        = 20
	MaxReleaseLimit            = 50
)

var countryCodePattern = regexp.MustCompile(`^[A-Za-z]{2}$`)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyTrack represents a Spotify track.
//
// PreviewURL is nil when the catalog has no 30 second preview for the market.
type SpotifyTrack struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Artists      []SpotifyArtist   `json:"artists"`
	Album        SpotifyAlbum      `json:"album"`
	DurationMS   int               `json:"duration_ms"`
	Popularity   int               `json:"popularity"`
	PreviewURL   *string           `json:"preview_url"`
	ExternalURLs map[string]string `json:"external_urls"`
	URI          string            `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Genres       []string          `json:"genres"`
	ExternalURLs map[string]string `json:"external_urls"`
	URI          string            `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	AlbumType    string            `json:"album_type"`
	Artists      []SpotifyArtist   `json:"artists"`
	ReleaseDate  string            `json:"release_date"`
	TotalTracks  int               `json:"total_tracks"`
	Images       []SpotifyImage    `json:"images"`
	ExternalURLs map[string]string `json:"external_urls"`
	URI          string            `json:"uri"`
}

// SpotifyURL returns the open.spotify.com link of the album, or "".
func (a SpotifyAlbum) SpotifyURL() string {
	return a.ExternalURLs["spotify"]
}

// FirstArtist returns the name of the first credited artist, or "" when none is listed.
func (t SpotifyTrack) FirstArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0].Name
}

// Response envelopes. Pointers distinguish an absent field from an empty one.
type (
	searchArtistsResponse struct {
		Artists *struct {
			Items []SpotifyArtist `json:"items"`
		} `json:"artists"`
	}

	tracksResponse struct {
		Tracks *[]SpotifyTrack `json:"tracks"`
	}

	genreSeedsResponse struct {
		Genres *[]string `json:"genres"`
	}

	newReleasesResponse struct {
		Albums *struct {
			Items []SpotifyAlbum `json:"items"`
		} `json:"albums"`
	}
)

// SpotifyService is a read-only client for the Spotify Web API.
type SpotifyService struct {
	api jsonClient
}

// NewSpotifyService creates a catalog client for baseURL, defaulting to [SpotifyAPIURL].
func NewSpotifyService(baseURL string, client *http.Client) *SpotifyService {
	if baseURL == "" {
		baseURL = SpotifyAPIURL
	}
	return &SpotifyService{api: newJSONClient("spotify", baseURL, client)}
}

func (s *SpotifyService) doRequest(ctx context.Context, token models.BearerToken, endpoint string, params url.Values, result any) error {
	if token.Value == "" {
		return fmt.Errorf("%w: missing bearer token", shared.ErrAuthentication)
	}
	return s.api.get(ctx, endpoint, params, token.Value, result)
}

// ResolveArtist searches for query and returns the first artist in the result.
func (s *SpotifyService) ResolveArtist(ctx context.Context, token models.BearerToken, query string) (models.EntityReference, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.EntityReference{}, fmt.Errorf("%w: artist name is required", shared.ErrValidation)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "artist")
	params.Set("limit", "1")

	var resp searchArtistsResponse
	if err := s.doRequest(ctx, token, "/search", params, &resp); err != nil {
		return models.EntityReference{}, fmt.Errorf("artist search: %w", err)
	}

	if resp.Artists == nil {
		return models.EntityReference{}, fmt.Errorf("%w: search response has no artists object", shared.ErrUpstream)
	}
	if len(resp.Artists.Items) == 0 {
		return models.EntityReference{}, fmt.Errorf("%w: no artist matches %q", shared.ErrNotFound, query)
	}

	artist := resp.Artists.Items[0]
	if artist.ID == "" {
		return models.EntityReference{}, fmt.Errorf("%w: search result has no artist id", shared.ErrUpstream)
	}
	return models.EntityReference{ID: artist.ID, Name: artist.Name}, nil
}

// TopTracks returns the artist's top tracks in the market identified by a two letter country code.
func (s *SpotifyService) TopTracks(ctx context.Context, token models.BearerToken, artistID, country string) ([]SpotifyTrack, error) {
	if artistID == "" {
		return nil, fmt.Errorf("%w: artist ID is required", shared.ErrValidation)
	}

	market, err := NormalizeCountry(country)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("country", market)

	var resp tracksResponse
	endpoint := "/artists/" + url.PathEscape(artistID) + "/top-tracks"
	if err := s.doRequest(ctx, token, endpoint, params, &resp); err != nil {
		return nil, fmt.Errorf("top tracks: %w", err)
	}

	if resp.Tracks == nil {
		return nil, fmt.Errorf("%w: top tracks response has no tracks field", shared.ErrUpstream)
	}
	return *resp.Tracks, nil
}

// Recommendations returns up to limit tracks seeded by artistID and genre.
//
// A non-positive limit means [DefaultRecommendationLimit]; larger values are capped at [MaxRecommendationLimit].
func (s *SpotifyService) Recommendations(ctx context.Context, token models.BearerToken, artistID, genre string, limit int) ([]SpotifyTrack, error) {
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return nil, fmt.Errorf("%w: a seed genre is required", shared.ErrValidation)
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(clampLimit(limit, DefaultRecommendationLimit, MaxRecommendationLimit)))
	if artistID != "" {
		params.Set("seed_artists", artistID)
	}
	params.Set("seed_genres", genre)

	var resp tracksResponse
	if err := s.doRequest(ctx, token, "/recommendations", params, &resp); err != nil {
		return nil, fmt.Errorf("recommendations: %w", err)
	}

	if resp.Tracks == nil {
		return nil, fmt.Errorf("%w: recommendations response has no tracks field", shared.ErrUpstream)
	}
	return *resp.Tracks, nil
}

// GenreSeeds lists the genres accepted by [SpotifyService.Recommendations].
func (s *SpotifyService) GenreSeeds(ctx context.Context, token models.BearerToken) ([]string, error) {
	var resp genreSeedsResponse
	if err := s.doRequest(ctx, token, "/recommendations/available-genre-seeds", nil, &resp); err != nil {
		return nil, fmt.Errorf("genre seeds: %w", err)
	}

	if resp.Genres == nil {
		return nil, fmt.Errorf("%w: genre seeds response has no genres field", shared.ErrUpstream)
	}
	return *resp.Genres, nil
}

// NewReleases lists recently released albums. An empty country lists releases for all markets.
func (s *SpotifyService) NewReleases(ctx context.Context, token models.BearerToken, country string, limit int) ([]SpotifyAlbum, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(clampLimit(limit, DefaultReleaseLimit, MaxReleaseLimit)))

	if strings.TrimSpace(country) != "" {
		market, err := NormalizeCountry(country)
		if err != nil {
			return nil, err
		}
		params.Set("country", market)
	}

	var resp newReleasesResponse
	if err := s.doRequest(ctx, token, "/browse/new-releases", params, &resp); err != nil {
		return nil, fmt.Errorf("new releases: %w", err)
	}

	if resp.Albums == nil {
		return nil, fmt.Errorf("%w: new releases response has no albums object", shared.ErrUpstream)
	}
	return resp.Albums.Items, nil
}

// NormalizeCountry validates a two letter country code and upper-cases it.
func NormalizeCountry(country string) (string, error) {
	country = strings.TrimSpace(country)
	if !countryCodePattern.MatchString(country) {
		return "", fmt.Errorf("%w: country code must be two letters, got %q", shared.ErrValidation, country)
	}
	return strings.ToUpper(country), nil
}

func clampLimit(limit, def, hi int) int {
	switch {
	case limit <= 0:
		return def
	case limit > hi:
		return hi
	default:
		return limit
	}
}
