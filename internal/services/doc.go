// Package services implements the clients for the upstream HTTP APIs used by the lookups.
//
// # Token Client
//
// [ClientCredentials] implements [TokenProvider] with the OAuth2 client-credentials grant
// (golang.org/x/oauth2/clientcredentials). Credentials go in a Basic Authorization header.
// A fresh token is requested for every call; nothing is cached or refreshed.
//
// # Catalog Client
//
// [SpotifyService] implements [Catalog] against the Spotify Web API: artist search,
// top tracks per market, recommendations, genre seeds and new releases.
// Every request carries the bearer token of the current action.
//
// # Reference Data Client
//
// [ReferenceService] implements [CountryLister] against the Nager.Date API.
// [CachedReference] wraps any [CountryLister] in a ccache-backed TTL cache.
//
// # Error Handling
//
// Every error returned by this package wraps one of the lookup sentinels from shared:
//   - [shared.ErrValidation] : bad input, or a 400 from the catalog
//   - [shared.ErrAuthentication] : rejected credentials, an unusable token payload, or a 401/403
//   - [shared.ErrNotFound] : an artist search with no results, or a 404
//   - [shared.ErrUpstream] : 5xx responses, malformed bodies, transport failures and timeouts
//
// Non-2xx catalog responses are returned as [shared.APIError], whose message is read from the
// {"error":{"status":...,"message":...}} payload.
package services
