package services

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/shared"
	tu "github.com/desertthunder/spotlist/internal/testing"
)

var testToken = models.BearerToken{Value: tu.ValidToken}

func TestSpotifyService(t *testing.T) {
	ctx := context.Background()

	t.Run("New", func(t *testing.T) {
		srv := NewSpotifyService("", nil)
		if srv.api.baseURL != SpotifyAPIURL {
			t.Errorf("expected default base url, got %s", srv.api.baseURL)
		}
	})

	t.Run("ResolveArtist", func(t *testing.T) {
		t.Run("First Match Wins", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)
			srv := NewSpotifyService(fake.APIURL(), nil)

			ref, err := srv.ResolveArtist(ctx, testToken, "Drake")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if ref.ID != "3TVXtAsR1Inumwj472S9r4" || ref.Name != "Drake" {
				t.Errorf("unexpected reference %+v", ref)
			}

			q, _ := url.ParseQuery(fake.Queries(tu.RouteSearch)[0])
			if q.Get("type") != "artist" || q.Get("limit") != "1" || q.Get("q") != "Drake" {
				t.Errorf("unexpected search query %v", q)
			}
		})

		t.Run("Zero Items Is Not Found", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)
			_, err := NewSpotifyService(fake.APIURL(), nil).ResolveArtist(ctx, testToken, "zzzz-no-such-artist")
			if !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})

		t.Run("Missing Artists Object Is Upstream", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)
			fake.Handle(tu.RouteSearch, func(w http.ResponseWriter, r *http.Request) {
				tu.JSON(w, http.StatusOK, `{"tracks":{"items":[]}}`)
			})
			_, err := NewSpotifyService(fake.APIURL(), nil).ResolveArtist(ctx, testToken, "Drake")
			if !errors.Is(err, shared.ErrUpstream) {
				t.Errorf("expected ErrUpstream, got %v", err)
			}
		})

		t.Run("Match Without ID Is Upstream", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)
			fake.Handle(tu.RouteSearch, func(w http.ResponseWriter, r *http.Request) {
				tu.JSON(w, http.StatusOK, `{"artists":{"items":[{"name":"Drake"}]}}`)
			})
			_, err := NewSpotifyService(fake.APIURL(), nil).ResolveArtist(ctx, testToken, "Drake")
			if !errors.Is(err, shared.ErrUpstream) {
				t.Errorf("expected ErrUpstream, got %v", err)
			}
			if errors.Is(err, shared.ErrValidation) {
				t.Errorf("a malformed payload must not look like invalid input: %v", err)
			}
		})

		t.Run("Blank Query", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)
			_, err := NewSpotifyService(fake.APIURL(), nil).ResolveArtist(ctx, testToken, "   ")
			if !errors.Is(err, shared.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
			if fake.Hits(tu.RouteSearch) != 0 {
				t.Error("blank query should not reach the API")
			}
		})

		t.Run("Rejected Token", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)
			_, err := NewSpotifyService(fake.APIURL(), nil).ResolveArtist(ctx, models.BearerToken{Value: "stale"}, "Drake")
			if !errors.Is(err, shared.ErrAuthentication) {
				t.Errorf("expected ErrAuthentication, got %v", err)
			}

			var apiErr *shared.APIError
			if !errors.As(err, &apiErr) || apiErr.Message != "Invalid access token" {
				t.Errorf("expected APIError with upstream message, got %v", err)
			}
		})

		t.Run("Missing Token", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)
			_, err := NewSpotifyService(fake.APIURL(), nil).ResolveArtist(ctx, models.BearerToken{}, "Drake")
			if !errors.Is(err, shared.ErrAuthentication) {
				t.Errorf("expected ErrAuthentication, got %v", err)
			}
		})
	})

	t.Run("TopTracks", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)
			tracks, err := NewSpotifyService(fake.APIURL(), nil).TopTracks(ctx, testToken, tu.DrakeID, "us")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 3 || tracks[0].Name != "God's Plan" || tracks[0].Popularity != 90 {
				t.Errorf("unexpected tracks %+v", tracks)
			}
			if tracks[0].PreviewURL != nil {
				t.Error("expected null preview to decode as nil")
			}
			if got := fake.Queries(tu.RouteTopTracks)[0]; got != "country=US" {
				t.Errorf("expected upper-cased market, got %q", got)
			}
		})

		t.Run("Invalid Country", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)
			for _, cc := range []string{"", "USA", "1A", "ü"} {
				_, err := NewSpotifyService(fake.APIURL(), nil).TopTracks(ctx, testToken, tu.DrakeID, cc)
				if !errors.Is(err, shared.ErrValidation) {
					t.Errorf("country %q: expected ErrValidation, got %v", cc, err)
				}
			}
		})

		t.Run("Missing Tracks Field", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)
			fake.Handle(tu.RouteTopTracks, func(w http.ResponseWriter, r *http.Request) {
				tu.JSON(w, http.StatusOK, `{}`)
			})
			_, err := NewSpotifyService(fake.APIURL(), nil).TopTracks(ctx, testToken, tu.DrakeID, "US")
			if !errors.Is(err, shared.ErrUpstream) {
				t.Errorf("expected ErrUpstream, got %v", err)
			}
		})

		t.Run("Bad Market From Upstream", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)
			fake.Handle(tu.RouteTopTracks, func(w http.ResponseWriter, r *http.Request) {
				tu.JSON(w, http.StatusBadRequest, `{"error":{"status":400,"message":"Invalid market code"}}`)
			})
			_, err := NewSpotifyService(fake.APIURL(), nil).TopTracks(ctx, testToken, tu.DrakeID, "ZZ")
			if !errors.Is(err, shared.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	})

	t.Run("Recommendations", func(t *testing.T) {
		t.Run("Seeds And Default Limit", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)
			tracks, err := NewSpotifyService(fake.APIURL(), nil).Recommendations(ctx, testToken, tu.DrakeID, "hip-hop", 0)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 2 {
				t.Fatalf("expected 2 tracks, got %d", len(tracks))
			}
			if tracks[0].FirstArtist() != "A" || tracks[1].FirstArtist() != "" {
				t.Errorf("unexpected artists %q, %q", tracks[0].FirstArtist(), tracks[1].FirstArtist())
			}

			q, _ := url.ParseQuery(fake.Queries(tu.RouteRecommendations)[0])
			if q.Get("limit") != "10" || q.Get("seed_artists") != tu.DrakeID || q.Get("seed_genres") != "hip-hop" {
				t.Errorf("unexpected query %v", q)
			}
		})

		t.Run("Limit Is Capped", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)
			if _, err := NewSpotifyService(fake.APIURL(), nil).Recommendations(ctx, testToken, "", "rock", 500); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			q, _ := url.ParseQuery(fake.Queries(tu.RouteRecommendations)[0])
			if q.Get("limit") != "100" || q.Has("seed_artists") {
				t.Errorf("unexpected query %v", q)
			}
		})

		t.Run("Blank Genre", func(t *testing.T) {
			fake := tu.NewFakeSpotify(t)
			_, err := NewSpotifyService(fake.APIURL(), nil).Recommendations(ctx, testToken, tu.DrakeID, "", 10)
			if !errors.Is(err, shared.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	})

	t.Run("GenreSeeds", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t)
		genres, err := NewSpotifyService(fake.APIURL(), nil).GenreSeeds(ctx, testToken)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if strings.Join(genres, ",") != "acoustic,hip-hop,rock" {
			t.Errorf("unexpected genres %v", genres)
		}
	})

	t.Run("NewReleases", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t)
		albums, err := NewSpotifyService(fake.APIURL(), nil).NewReleases(ctx, testToken, "", 0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(albums) != 1 || albums[0].SpotifyURL() != "https://open.spotify.com/album/n1" {
			t.Errorf("unexpected albums %+v", albums)
		}
		if got := fake.Queries(tu.RouteNewReleases)[0]; got != "limit=20" {
			t.Errorf("expected no country filter, got %q", got)
		}

		if _, err := NewSpotifyService(fake.APIURL(), nil).NewReleases(ctx, testToken, "Narnia", 0); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("Upstream Failures", func(t *testing.T) {
		tc := []struct {
			name   string
			status int
			body   string
		}{
			{"server error", http.StatusInternalServerError, `{"error":{"status":500,"message":"Server error"}}`},
			{"rate limited", http.StatusTooManyRequests, `{"error":{"status":429,"message":"API rate limit exceeded"}}`},
			{"malformed body", http.StatusOK, `{"genres":[`},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				fake := tu.NewFakeSpotify(t)
				fake.Handle(tu.RouteGenreSeeds, func(w http.ResponseWriter, r *http.Request) {
					tu.JSON(w, tt.status, tt.body)
				})
				_, err := NewSpotifyService(fake.APIURL(), nil).GenreSeeds(ctx, testToken)
				if !errors.Is(err, shared.ErrUpstream) {
					t.Errorf("expected ErrUpstream, got %v", err)
				}
			})
		}
	})
}

func TestNormalizeCountry(t *testing.T) {
	got, err := NormalizeCountry(" gb ")
	if err != nil || got != "GB" {
		t.Errorf("NormalizeCountry() = %q, %v", got, err)
	}
}
