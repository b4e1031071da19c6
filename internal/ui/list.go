package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/spotlist/internal/formatter"
)

var (
	_ list.Item = genreItem("")
	_ list.Item = trackItem{}
)

// genreItem wraps a genre seed to implement [list.Item].
type genreItem string

func (i genreItem) FilterValue() string { return string(i) }
func (i genreItem) Title() string       { return string(i) }
func (i genreItem) Description() string { return "" }

// trackItem wraps [formatter.RecommendationRow] to implement [list.Item].
type trackItem struct {
	row formatter.RecommendationRow
}

func (i trackItem) FilterValue() string { return i.row.Song }
func (i trackItem) Title() string       { return i.row.Song }
func (i trackItem) Description() string {
	artist := i.row.Artist
	if artist == "" {
		artist = "Unknown artist"
	}
	if i.row.PreviewURL == nil {
		return artist + " • " + formatter.NoPreviewText
	}
	return artist + " • preview available"
}
