package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"
)

const (
	NagerDateURL = "https://date.nager.at/api/v3"

	countriesKey = "countries"
)

// ReferenceService lists the selectable countries from the Nager.Date public holiday API.
//
// No authentication; TLS verification is never disabled.
type ReferenceService struct {
	api jsonClient
}

// NewReferenceService creates a reference data client for baseURL, defaulting to [NagerDateURL].
func NewReferenceService(baseURL string, client *http.Client) *ReferenceService {
	if baseURL == "" {
		baseURL = NagerDateURL
	}
	return &ReferenceService{api: newJSONClient("nager.date", baseURL, client)}
}

// Countries returns the available countries in the order the API lists them.
func (s *ReferenceService) Countries(ctx context.Context) ([]Country, error) {
	var countries []Country
	if err := s.api.get(ctx, "/AvailableCountries", nil, "", &countries); err != nil {
		return nil, fmt.Errorf("available countries: %w", err)
	}
	return countries, nil
}

// CachedReference memoizes a [CountryLister] for a fixed TTL.
//
// Only successful results are cached.
type CachedReference struct {
	next  CountryLister
	ttl   time.Duration
	cache *ccache.Cache[[]Country]
	mux   sync.Mutex
}

// NewCachedReference wraps next. A non-positive ttl defaults to one hour.
func NewCachedReference(next CountryLister, ttl time.Duration) *CachedReference {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedReference{
		next: next,
		ttl:  ttl,
		cache: ccache.New(
			ccache.Configure[[]Country]().
				MaxSize(10).
				GetsPerPromote(3).
				ItemsToPrune(1),
		),
	}
}

// Countries returns the cached list, fetching it from the wrapped lister when missing or expired.
func (c *CachedReference) Countries(ctx context.Context) ([]Country, error) {
	c.mux.Lock()
	defer c.mux.Unlock()

	item, err := c.cache.Fetch(countriesKey, c.ttl, func() ([]Country, error) {
		return c.next.Countries(ctx)
	})
	if err != nil {
		return nil, err
	}
	return item.Value(), nil
}

// Stop releases the cache's background worker.
func (c *CachedReference) Stop() {
	c.cache.Stop()
}
