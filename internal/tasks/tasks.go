// package tasks implements the lookups offered by the web relay and the CLI.
//
// The core abstraction is LookupEngine, which acquires a token, queries the catalog and renders the result.
// Operations emit progress updates via channels for non-blocking status reporting to the CLI.
package tasks

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlist/internal/formatter"
	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/services"
	"github.com/desertthunder/spotlist/internal/shared"
)

// TopTracksResult contains an artist's top tracks for one market.
type TopTracksResult struct {
	Artist   models.EntityReference
	Country  string
	Rows     []formatter.TopTrackRow
	Table    *formatter.Table
	Fragment template.HTML
}

// RecommendationsResult contains tracks recommended for an artist and genre seed.
type RecommendationsResult struct {
	Artist   *models.EntityReference // nil when seeded by genre only
	Genre    string
	Rows     []formatter.RecommendationRow
	Table    *formatter.Table
	Fragment template.HTML
}

// ReleasesResult contains new album releases.
type ReleasesResult struct {
	Country  string
	Rows     []formatter.ReleaseRow
	Table    *formatter.Table
	Fragment template.HTML
}

// FormOptions are the choices offered by the lookup form.
//
// CountriesErr is set when the country list could not be fetched; the form then falls back to free text.
type FormOptions struct {
	Countries    []services.Country
	Genres       []string
	CountriesErr error
}

// Engine defines the lookups. Every method acquires its own token and never reuses one.
type Engine interface {
	// TopTracks resolves artist by name and lists its top tracks in country.
	TopTracks(ctx context.Context, creds models.Credentials, artist, country string, progress chan<- ProgressUpdate) (*TopTracksResult, error)

	// Recommendations lists tracks seeded by genre and, when artist is not blank, the resolved artist.
	Recommendations(ctx context.Context, creds models.Credentials, artist, genre string, progress chan<- ProgressUpdate) (*RecommendationsResult, error)

	// NewReleases lists new albums, optionally for one country.
	NewReleases(ctx context.Context, creds models.Credentials, country string, progress chan<- ProgressUpdate) (*ReleasesResult, error)

	// FormOptions fetches the countries and genre seeds for the lookup form.
	FormOptions(ctx context.Context, creds models.Credentials, progress chan<- ProgressUpdate) (*FormOptions, error)
}

// LookupEngine implements [Engine] on top of the service clients.
type LookupEngine struct {
	tokens    services.TokenProvider
	catalog   services.Catalog
	reference services.CountryLister
	logger    *log.Logger

	RecommendationLimit int
	ReleaseLimit        int
}

// NewLookupEngine creates a new LookupEngine. A nil logger discards output.
func NewLookupEngine(tokens services.TokenProvider, catalog services.Catalog, reference services.CountryLister, logger *log.Logger) *LookupEngine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &LookupEngine{
		tokens:              tokens,
		catalog:             catalog,
		reference:           reference,
		logger:              logger,
		RecommendationLimit: services.DefaultRecommendationLimit,
		ReleaseLimit:        services.DefaultReleaseLimit,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *LookupEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// token acquires a fresh bearer token for one lookup.
func (e *LookupEngine) token(ctx context.Context, creds models.Credentials) (models.BearerToken, error) {
	tok, err := e.tokens.Token(ctx, creds)
	if err != nil {
		e.logger.Warn("token request failed", "client_id", creds.ClientID, "error", err)
		return models.BearerToken{}, err
	}
	if !tok.Valid() {
		e.logger.Warn("token provider returned an unusable token", "client_id", creds.ClientID)
		return models.BearerToken{}, fmt.Errorf("%w: token is empty or expired", shared.ErrAuthentication)
	}
	return tok, nil
}

// TopTracks resolves artist and lists its top tracks in country.
func (e *LookupEngine) TopTracks(ctx context.Context, creds models.Credentials, artist, country string, progress chan<- ProgressUpdate) (*TopTracksResult, error) {
	if strings.TrimSpace(artist) == "" {
		return nil, fmt.Errorf("%w: artist name is required", shared.ErrValidation)
	}
	market, err := services.NormalizeCountry(country)
	if err != nil {
		return nil, err
	}

	const total = 4
	e.sendProgress(progress, acquireTokenUpdate(1, total))
	tok, err := e.token(ctx, creds)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, resolveArtistUpdate(2, total, artist))
	ref, err := e.catalog.ResolveArtist(ctx, tok, artist)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, foundArtistUpdate(2, total, ref))

	e.sendProgress(progress, fetchTracksUpdate(3, total, "top tracks"))
	tracks, err := e.catalog.TopTracks(ctx, tok, ref.ID, market)
	if err != nil {
		return nil, err
	}

	rows := formatter.TopTrackRows(tracks)
	table := formatter.TopTracksTable(rows)
	e.sendProgress(progress, renderUpdate(4, total, len(rows)))
	fragment, err := formatter.RenderHTML(table)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("top tracks", "artist", ref.Name, "country", market, "rows", len(rows))
	return &TopTracksResult{Artist: ref, Country: market, Rows: rows, Table: table, Fragment: fragment}, nil
}

// Recommendations lists tracks seeded by genre and, when artist is given, by the resolved artist.
func (e *LookupEngine) Recommendations(ctx context.Context, creds models.Credentials, artist, genre string, progress chan<- ProgressUpdate) (*RecommendationsResult, error) {
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return nil, fmt.Errorf("%w: a genre is required", shared.ErrValidation)
	}

	const total = 4
	e.sendProgress(progress, acquireTokenUpdate(1, total))
	tok, err := e.token(ctx, creds)
	if err != nil {
		return nil, err
	}

	result := &RecommendationsResult{Genre: genre}
	seed := ""
	if strings.TrimSpace(artist) != "" {
		e.sendProgress(progress, resolveArtistUpdate(2, total, artist))
		ref, err := e.catalog.ResolveArtist(ctx, tok, artist)
		if err != nil {
			return nil, err
		}
		e.sendProgress(progress, foundArtistUpdate(2, total, ref))
		result.Artist = &ref
		seed = ref.ID
	}

	e.sendProgress(progress, fetchTracksUpdate(3, total, "recommendations"))
	tracks, err := e.catalog.Recommendations(ctx, tok, seed, genre, e.RecommendationLimit)
	if err != nil {
		return nil, err
	}

	result.Rows = formatter.RecommendationRows(tracks)
	result.Table = formatter.RecommendationsTable(result.Rows)
	e.sendProgress(progress, renderUpdate(4, total, len(result.Rows)))
	if result.Fragment, err = formatter.RenderHTML(result.Table); err != nil {
		return nil, err
	}

	e.logger.Debug("recommendations", "seed_artist", seed, "genre", genre, "rows", len(result.Rows))
	return result, nil
}

// NewReleases lists new albums. A blank country means every market.
func (e *LookupEngine) NewReleases(ctx context.Context, creds models.Credentials, country string, progress chan<- ProgressUpdate) (*ReleasesResult, error) {
	market := ""
	if strings.TrimSpace(country) != "" {
		var err error
		if market, err = services.NormalizeCountry(country); err != nil {
			return nil, err
		}
	}

	const total = 3
	e.sendProgress(progress, acquireTokenUpdate(1, total))
	tok, err := e.token(ctx, creds)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, fetchReleasesUpdate(2, total))
	albums, err := e.catalog.NewReleases(ctx, tok, market, e.ReleaseLimit)
	if err != nil {
		return nil, err
	}

	rows := formatter.ReleaseRows(albums)
	table := formatter.ReleasesTable(rows)
	e.sendProgress(progress, renderUpdate(3, total, len(rows)))
	fragment, err := formatter.RenderHTML(table)
	if err != nil {
		return nil, err
	}

	return &ReleasesResult{Country: market, Rows: rows, Table: table, Fragment: fragment}, nil
}

// FormOptions fetches countries and genre seeds concurrently.
//
// A failed country fetch is logged and reported in [FormOptions.CountriesErr]; a failed genre fetch fails the call.
func (e *LookupEngine) FormOptions(ctx context.Context, creds models.Credentials, progress chan<- ProgressUpdate) (*FormOptions, error) {
	const total = 2
	e.sendProgress(progress, acquireTokenUpdate(1, total))
	tok, err := e.token(ctx, creds)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, fetchReferenceUpdate(2, total))

	var (
		wg        sync.WaitGroup
		opts      FormOptions
		genresErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		opts.Countries, opts.CountriesErr = e.reference.Countries(ctx)
	}()
	go func() {
		defer wg.Done()
		opts.Genres, genresErr = e.catalog.GenreSeeds(ctx, tok)
	}()
	wg.Wait()

	if genresErr != nil {
		return nil, genresErr
	}
	if opts.CountriesErr != nil {
		e.logger.Warn("country list unavailable, falling back to free text", "error", opts.CountriesErr)
	}

	return &opts, nil
}
