// Package tasks runs the lookups behind the web relay and the CLI.
//
// # Core Operations
//
// The [Engine] interface defines four operations:
//
//  1. [Engine.TopTracks] : an artist's top tracks in one market
//     - Acquires a token with the caller's credentials
//     - Resolves the artist name to its first search match
//     - Fetches the top tracks and renders name and popularity
//
//  2. [Engine.Recommendations] : tracks seeded by a genre and optionally an artist
//     - Rows carry the first artist, the song, an album link and a preview player
//
//  3. [Engine.NewReleases] : newly released albums
//
//  4. [Engine.FormOptions] : countries and genre seeds for the lookup form
//
// # Tokens
//
// Every operation acquires its own bearer token through [services.TokenProvider] and drops it
// when it returns. Tokens are never cached, refreshed or shared between operations.
//
// # Progress Reporting
//
// Operations accept an optional channel for [ProgressUpdate] values. Updates use select with
// default so a slow or absent reader never blocks a lookup.
package tasks
