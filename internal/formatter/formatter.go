// package formatter turns catalog results into row records and renders them as
// HTML table fragments, CSV or terminal tables
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html/template"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/spotlist/internal/services"
)

const (
	ListenLabel   = "Listen on Spotify"
	NoPreviewText = "There is no preview available for this song :("
	NoAudioText   = "Your browser does not support the audio element."
	NoLinkText    = "Not available on Spotify"
)

// Column headers
var (
	TopTrackColumns       = []string{"name", "popularity"}
	RecommendationColumns = []string{"Artist", "Song", "External URL", "Preview URL"}
	ReleaseColumns        = []string{"Album", "Artist", "Release Date", "External URL"}
)

type cellKind int

const (
	textCell cellKind = iota
	linkCell
	playerCell
)

// Cell is one table cell. Link and player cells hold a URL and render as markup;
// every other cell is escaped text.
type Cell struct {
	Value string
	kind  cellKind
}

func Text(s string) Cell { return Cell{Value: s} }

// Link holds an album URL; an empty URL becomes the text [NoLinkText].
func Link(url string) Cell {
	if url == "" {
		return Text(NoLinkText)
	}
	return Cell{Value: url, kind: linkCell}
}

// Player holds a preview URL; an empty URL renders [NoPreviewText].
func Player(url string) Cell { return Cell{Value: url, kind: playerCell} }

func (c Cell) IsLink() bool   { return c.kind == linkCell }
func (c Cell) IsPlayer() bool { return c.kind == playerCell }

// Plain returns the cell as text for CSV and terminal output.
func (c Cell) Plain() string {
	if c.kind == playerCell && c.Value == "" {
		return NoPreviewText
	}
	return c.Value
}

// Table is a header row and data rows, independent of the output format.
type Table struct {
	Columns []string
	Rows    [][]Cell
}

var fragment = template.Must(template.New("table").Parse(
	`<table border="0" class="dataframe custom-table text-outline">
  <thead>
    <tr style="text-align: left;">
{{- range .Columns}}
      <th>{{.}}</th>
{{- end}}
    </tr>
  </thead>
  <tbody>
{{- range .Rows}}
    <tr>
{{- range .}}
      <td>{{template "cell" .}}</td>
{{- end}}
    </tr>
{{- end}}
  </tbody>
</table>
{{- define "cell"}}
{{- if .IsLink}}<a href="{{.Value}}" class="btn btn-dark" target="_blank">` + ListenLabel + `</a>
{{- else if .IsPlayer}}
{{- if .Value}}<audio controls><source src="{{.Value}}" type="audio/mpeg">` + NoAudioText + `</audio>
{{- else}}` + NoPreviewText + `{{end}}
{{- else}}{{.Value}}{{end}}
{{- end}}`))

// RenderHTML renders t as an HTML table fragment. Text is escaped and URLs are sanitized.
func RenderHTML(t *Table) (template.HTML, error) {
	var buf bytes.Buffer
	if err := fragment.Execute(&buf, t); err != nil {
		return "", fmt.Errorf("failed to render table: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// ExportToCSV converts t to CSV with a header row.
func ExportToCSV(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(t.Columns); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range t.Rows {
		if err := writer.Write(plainRow(row)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// ExportToText renders t as a bordered terminal table.
func ExportToText(t *Table) []byte {
	rows := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rows = append(rows, plainRow(row))
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.Columns...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	return []byte(tbl.String() + "\n")
}

func plainRow(row []Cell) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = c.Plain()
	}
	return out
}

// TopTrackRow is one row of the top tracks table.
type TopTrackRow struct {
	Name       string `json:"name"`
	Popularity int    `json:"popularity"`
}

// RecommendationRow is one row of the recommendations table.
//
// Artist is the first credited artist, or "" when the track lists none.
type RecommendationRow struct {
	Artist      string  `json:"artist"`
	Song        string  `json:"song"`
	ExternalURL string  `json:"external_url"`
	PreviewURL  *string `json:"preview_url"`
}

// ReleaseRow is one row of the new releases table.
type ReleaseRow struct {
	Album       string `json:"album"`
	Artist      string `json:"artist"`
	ReleaseDate string `json:"release_date"`
	ExternalURL string `json:"external_url"`
}

func TopTrackRows(tracks []services.SpotifyTrack) []TopTrackRow {
	rows := make([]TopTrackRow, 0, len(tracks))
	for _, t := range tracks {
		rows = append(rows, TopTrackRow{Name: t.Name, Popularity: t.Popularity})
	}
	return rows
}

// RecommendationRows links each track to its album page.
func RecommendationRows(tracks []services.SpotifyTrack) []RecommendationRow {
	rows := make([]RecommendationRow, 0, len(tracks))
	for _, t := range tracks {
		rows = append(rows, RecommendationRow{
			Artist:      t.FirstArtist(),
			Song:        t.Name,
			ExternalURL: t.Album.SpotifyURL(),
			PreviewURL:  t.PreviewURL,
		})
	}
	return rows
}

func ReleaseRows(albums []services.SpotifyAlbum) []ReleaseRow {
	rows := make([]ReleaseRow, 0, len(albums))
	for _, a := range albums {
		artist := ""
		if len(a.Artists) > 0 {
			artist = a.Artists[0].Name
		}
		rows = append(rows, ReleaseRow{
			Album:       a.Name,
			Artist:      artist,
			ReleaseDate: a.ReleaseDate,
			ExternalURL: a.SpotifyURL(),
		})
	}
	return rows
}

func TopTracksTable(rows []TopTrackRow) *Table {
	t := &Table{Columns: TopTrackColumns}
	for _, r := range rows {
		t.Rows = append(t.Rows, []Cell{Text(r.Name), Text(strconv.Itoa(r.Popularity))})
	}
	return t
}

func RecommendationsTable(rows []RecommendationRow) *Table {
	t := &Table{Columns: RecommendationColumns}
	for _, r := range rows {
		preview := ""
		if r.PreviewURL != nil {
			preview = *r.PreviewURL
		}
		t.Rows = append(t.Rows, []Cell{Text(r.Artist), Text(r.Song), Link(r.ExternalURL), Player(preview)})
	}
	return t
}

func ReleasesTable(rows []ReleaseRow) *Table {
	t := &Table{Columns: ReleaseColumns}
	for _, r := range rows {
		t.Rows = append(t.Rows, []Cell{Text(r.Album), Text(r.Artist), Text(r.ReleaseDate), Link(r.ExternalURL)})
	}
	return t
}

// FormatTopTracks renders the name and popularity of each track. Rendering the same tracks twice yields identical output.
func FormatTopTracks(tracks []services.SpotifyTrack) (template.HTML, error) {
	return RenderHTML(TopTracksTable(TopTrackRows(tracks)))
}

// FormatRecommendations renders artist, song, an album link and an audio player per track.
func FormatRecommendations(tracks []services.SpotifyTrack) (template.HTML, error) {
	return RenderHTML(RecommendationsTable(RecommendationRows(tracks)))
}

func FormatNewReleases(albums []services.SpotifyAlbum) (template.HTML, error) {
	return RenderHTML(ReleasesTable(ReleaseRows(albums)))
}
