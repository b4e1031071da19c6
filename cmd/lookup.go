package main

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/desertthunder/spotlist/internal/formatter"
	"github.com/desertthunder/spotlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// writeTable prints a lookup result in the format chosen with --output.
func (r *Runner) writeTable(cmd *cli.Command, table *formatter.Table, fragment template.HTML, rows any) error {
	switch format := strings.ToLower(cmd.String("output")); format {
	case formatText, "":
		return r.writeBytes(formatter.ExportToText(table))
	case formatHTML:
		return r.writeBytes([]byte(fragment))
	case formatCSV:
		data, err := formatter.ExportToCSV(table)
		if err != nil {
			return err
		}
		return r.writeBytes(data)
	case formatJSON:
		return r.writeJSON(rows, cmd.Bool("pretty"))
	default:
		return fmt.Errorf("%w: unknown output format %q", shared.ErrValidation, format)
	}
}

// TopTracks lists an artist's top tracks in a country.
func (r *Runner) TopTracks(ctx context.Context, cmd *cli.Command) error {
	creds, err := r.credentials()
	if err != nil {
		return err
	}

	progress, wait := r.progress()
	result, err := r.engine.TopTracks(ctx, creds, cmd.StringArg("artist"), cmd.String("country"), progress)
	wait()
	if err != nil {
		return err
	}

	r.logger.Info("top tracks", "artist", result.Artist.Name, "country", result.Country, "rows", len(result.Rows))
	return r.writeTable(cmd, result.Table, result.Fragment, result.Rows)
}

// Recommendations lists tracks recommended for a genre and optional seed artist.
func (r *Runner) Recommendations(ctx context.Context, cmd *cli.Command) error {
	creds, err := r.credentials()
	if err != nil {
		return err
	}

	progress, wait := r.progress()
	result, err := r.engine.Recommendations(ctx, creds, cmd.String("artist"), cmd.String("genre"), progress)
	wait()
	if err != nil {
		return err
	}

	return r.writeTable(cmd, result.Table, result.Fragment, result.Rows)
}

// NewReleases lists new album releases.
func (r *Runner) NewReleases(ctx context.Context, cmd *cli.Command) error {
	creds, err := r.credentials()
	if err != nil {
		return err
	}

	progress, wait := r.progress()
	result, err := r.engine.NewReleases(ctx, creds, cmd.String("country"), progress)
	wait()
	if err != nil {
		return err
	}

	return r.writeTable(cmd, result.Table, result.Fragment, result.Rows)
}

// Genres lists the recommendation genre seeds, one per line.
func (r *Runner) Genres(ctx context.Context, cmd *cli.Command) error {
	creds, err := r.credentials()
	if err != nil {
		return err
	}

	progress, wait := r.progress()
	opts, err := r.engine.FormOptions(ctx, creds, progress)
	wait()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(opts.Genres, false)
	}
	for _, g := range opts.Genres {
		if err := r.writePlain("%s\n", g); err != nil {
			return err
		}
	}
	return nil
}

// Countries lists the available country codes. No credentials are needed.
func (r *Runner) Countries(ctx context.Context, cmd *cli.Command) error {
	countries, err := r.reference.Countries(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(countries, false)
	}
	for _, c := range countries {
		if err := r.writePlain("%s\t%s\n", c.CountryCode, c.Name); err != nil {
			return err
		}
	}
	return nil
}
