package testing

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Credentials and token accepted by [FakeSpotify].
const (
	ValidClientID     = "id1"
	ValidClientSecret = "sec1"
	ValidToken        = "T"

	DrakeID = "3TVXtAsR1Inumwj472S9r4"
)

// Route names for [FakeSpotify.Handle].
const (
	RouteToken           = "token"
	RouteSearch          = "search"
	RouteTopTracks       = "top-tracks"
	RouteRecommendations = "recommendations"
	RouteGenreSeeds      = "genre-seeds"
	RouteNewReleases     = "new-releases"
	RouteCountries       = "countries"
)

const TopTracksJSON = `{"tracks":[
	{"id":"t1","name":"God's Plan","popularity":90,"preview_url":null,
	 "artists":[{"id":"3TVXtAsR1Inumwj472S9r4","name":"Drake"}],
	 "album":{"id":"a1","name":"Scorpion","external_urls":{"spotify":"https://open.spotify.com/album/a1"}},
	 "external_urls":{"spotify":"https://open.spotify.com/track/t1"}},
	{"id":"t2","name":"One Dance","popularity":88,"preview_url":"https://p.scdn.co/mp3-preview/t2",
	 "artists":[{"id":"3TVXtAsR1Inumwj472S9r4","name":"Drake"},{"id":"w","name":"Wizkid"}],
	 "album":{"id":"a2","name":"Views","external_urls":{"spotify":"https://open.spotify.com/album/a2"}},
	 "external_urls":{"spotify":"https://open.spotify.com/track/t2"}},
	{"id":"t3","name":"Hotline <Bling>","popularity":85,"preview_url":null,
	 "artists":[{"id":"3TVXtAsR1Inumwj472S9r4","name":"Drake"}],
	 "album":{"id":"a2","name":"Views","external_urls":{"spotify":"https://open.spotify.com/album/a2"}},
	 "external_urls":{"spotify":"https://open.spotify.com/track/t3"}}
]}`

const RecommendationsJSON = `{"seeds":[],"tracks":[
	{"id":"r1","name":"Song","popularity":50,"preview_url":"https://p.scdn.co/mp3-preview/r1",
	 "artists":[{"id":"ar1","name":"A"}],
	 "album":{"id":"x","name":"X","external_urls":{"spotify":"https://x"}},
	 "external_urls":{"spotify":"https://open.spotify.com/track/r1"}},
	{"id":"r2","name":"Untitled","popularity":10,"preview_url":null,
	 "artists":[],
	 "album":{"id":"y","name":"Y","external_urls":{"spotify":"https://open.spotify.com/album/y"}},
	 "external_urls":{"spotify":"https://open.spotify.com/track/r2"}}
]}`

const GenreSeedsJSON = `{"genres":["acoustic","hip-hop","rock"]}`

const NewReleasesJSON = `{"albums":{"href":"","limit":20,"total":1,"items":[
	{"id":"n1","name":"For All The Dogs","album_type":"album","release_date":"2023-10-06",
	 "artists":[{"id":"3TVXtAsR1Inumwj472S9r4","name":"Drake"}],
	 "external_urls":{"spotify":"https://open.spotify.com/album/n1"}}
]}}`

const CountriesJSON = `[{"countryCode":"US","name":"United States"},{"countryCode":"GB","name":"United Kingdom"}]`

// FakeSpotify is an httptest server standing in for the Spotify accounts service,
// the Spotify Web API and the Nager.Date API.
//
// Routes answer with the fixtures above unless overridden with [FakeSpotify.Handle].
type FakeSpotify struct {
	Server *httptest.Server

	mu        sync.Mutex
	overrides map[string]http.HandlerFunc
	hits      map[string]int
	queries   map[string][]string
}

// NewFakeSpotify starts the fake server; it is closed when the test ends.
func NewFakeSpotify(t *testing.T) *FakeSpotify {
	t.Helper()

	f := &FakeSpotify{
		overrides: make(map[string]http.HandlerFunc),
		hits:      make(map[string]int),
		queries:   make(map[string][]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token", f.route(RouteToken, f.token))
	mux.HandleFunc("GET /v1/search", f.route(RouteSearch, f.authorized(f.search)))
	mux.HandleFunc("GET /v1/artists/{id}/top-tracks", f.route(RouteTopTracks, f.authorized(fixture(TopTracksJSON))))
	mux.HandleFunc("GET /v1/recommendations", f.route(RouteRecommendations, f.authorized(fixture(RecommendationsJSON))))
	mux.HandleFunc("GET /v1/recommendations/available-genre-seeds", f.route(RouteGenreSeeds, f.authorized(fixture(GenreSeedsJSON))))
	mux.HandleFunc("GET /v1/browse/new-releases", f.route(RouteNewReleases, f.authorized(fixture(NewReleasesJSON))))
	mux.HandleFunc("GET /nager/AvailableCountries", f.route(RouteCountries, fixture(CountriesJSON)))

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

func (f *FakeSpotify) TokenURL() string     { return f.Server.URL + "/api/token" }
func (f *FakeSpotify) APIURL() string       { return f.Server.URL + "/v1" }
func (f *FakeSpotify) ReferenceURL() string { return f.Server.URL + "/nager" }

// Handle replaces the handler of a named route.
func (f *FakeSpotify) Handle(route string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overrides[route] = h
}

// Hits returns how many requests a route has received.
func (f *FakeSpotify) Hits(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[route]
}

// Queries returns the raw query strings a route has received, in order.
func (f *FakeSpotify) Queries(route string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries[route]...)
}

func (f *FakeSpotify) route(name string, def http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.hits[name]++
		f.queries[name] = append(f.queries[name], r.URL.RawQuery)
		h, ok := f.overrides[name]
		f.mu.Unlock()

		if !ok {
			h = def
		}
		h(w, r)
	}
}

func (f *FakeSpotify) token(w http.ResponseWriter, r *http.Request) {
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte(ValidClientID+":"+ValidClientSecret))
	if r.Header.Get("Authorization") != want {
		JSON(w, http.StatusBadRequest, `{"error":"invalid_client","error_description":"Invalid client"}`)
		return
	}
	if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
		JSON(w, http.StatusBadRequest, `{"error":"unsupported_grant_type"}`)
		return
	}
	JSON(w, http.StatusOK, `{"access_token":"`+ValidToken+`","token_type":"Bearer","expires_in":3600}`)
}

func (f *FakeSpotify) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+ValidToken {
			JSON(w, http.StatusUnauthorized, `{"error":{"status":401,"message":"Invalid access token"}}`)
			return
		}
		next(w, r)
	}
}

func (f *FakeSpotify) search(w http.ResponseWriter, r *http.Request) {
	if strings.EqualFold(r.URL.Query().Get("q"), "drake") {
		JSON(w, http.StatusOK, `{"artists":{"items":[{"id":"`+DrakeID+`","name":"Drake","genres":["hip hop"]}],"total":1}}`)
		return
	}
	JSON(w, http.StatusOK, `{"artists":{"items":[],"total":0}}`)
}

func fixture(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		JSON(w, http.StatusOK, body)
	}
}

// JSON writes body with an application/json content type.
func JSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
