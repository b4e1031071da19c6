package tasks

import (
	"fmt"

	"github.com/desertthunder/spotlist/internal/models"
)

// ProgressUpdate represents a progress event during a lookup.
//
// Used to send updates to the CLI for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number
	Total   int    // Total steps in this lookup
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Lookup phase enumeration
type Phase int

const (
	AcquireToken Phase = iota
	ResolveArtist
	FetchTracks
	FetchReleases
	FetchReference
	Render
)

func (p Phase) String() string {
	switch p {
	case AcquireToken:
		return "acquire_token"
	case ResolveArtist:
		return "resolve_artist"
	case FetchTracks:
		return "fetch_tracks"
	case FetchReleases:
		return "fetch_releases"
	case FetchReference:
		return "fetch_reference"
	case Render:
		return "render"
	default:
		return "unknown"
	}
}

func acquireTokenUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{Phase: AcquireToken, Step: step, Total: total, Message: "Requesting access token..."}
}

func resolveArtistUpdate(step, total int, query string) ProgressUpdate {
	return ProgressUpdate{Phase: ResolveArtist, Step: step, Total: total, Message: fmt.Sprintf("Searching for artist %q...", query)}
}

func foundArtistUpdate(step, total int, ref models.EntityReference) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveArtist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Found %s (%s)", ref.Name, ref.ID),
		Data:    ref,
	}
}

func fetchTracksUpdate(step, total int, what string) ProgressUpdate {
	return ProgressUpdate{Phase: FetchTracks, Step: step, Total: total, Message: fmt.Sprintf("Fetching %s...", what)}
}

func fetchReleasesUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{Phase: FetchReleases, Step: step, Total: total, Message: "Fetching new releases..."}
}

func fetchReferenceUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{Phase: FetchReference, Step: step, Total: total, Message: "Fetching countries and genres..."}
}

func renderUpdate(step, total, rows int) ProgressUpdate {
	return ProgressUpdate{Phase: Render, Step: step, Total: total, Message: fmt.Sprintf("Rendering %d rows", rows), Data: rows}
}
