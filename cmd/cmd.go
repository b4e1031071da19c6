// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Output formats accepted by --output
const (
	formatText = "text"
	formatHTML = "html"
	formatCSV  = "csv"
	formatJSON = "json"
)

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: text, html, csv or json",
			Value:   formatText,
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

// globalFlags are shared by every command.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:  "client-id",
			Usage: "Spotify client ID (overrides config and environment)",
		},
		&cli.StringFlag{
			Name:  "client-secret",
			Usage: "Spotify client secret (overrides config and environment)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn or error",
		},
	}
}

// topCommand lists an artist's top tracks
func topCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "top",
		Aliases: []string{"top10"},
		Usage:   "List an artist's top tracks in a country",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "artist",
			},
		},
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "country",
				Aliases: []string{"C"},
				Usage:   "Two letter country code",
				Value:   "US",
			},
		}, outputFlags()...),
		Action: r.action(r.TopTracks),
	}
}

// recommendationsCommand lists tracks recommended for a genre and optional artist
func recommendationsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "recommendations",
		Aliases: []string{"recs"},
		Usage:   "List tracks recommended for a genre, optionally seeded by an artist",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "genre",
				Aliases:  []string{"g"},
				Usage:    "Seed genre (see 'spotlist genres')",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "artist",
				Aliases: []string{"a"},
				Usage:   "Seed artist name",
			},
		}, outputFlags()...),
		Action: r.action(r.Recommendations),
	}
}

// releasesCommand lists new album releases
func releasesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "releases",
		Aliases: []string{"new"},
		Usage:   "List new album releases",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "country",
				Aliases: []string{"C"},
				Usage:   "Two letter country code; all markets when empty",
			},
		}, outputFlags()...),
		Action: r.action(r.NewReleases),
	}
}

// genresCommand lists the genres accepted as recommendation seeds
func genresCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "genres",
		Usage: "List available recommendation genre seeds",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.action(r.Genres),
	}
}

// countriesCommand lists the country codes offered by the lookup form
func countriesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "countries",
		Usage: "List available country codes",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.action(r.Countries),
	}
}

// serveCommand starts the web relay
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web interface",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to listen on (overrides config)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides config)",
			},
			&cli.StringFlag{
				Name:  "session-backend",
				Usage: "Session store: memory or sqlite (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the login page in a browser once listening",
			},
		},
		Action: r.action(r.Serve),
	}
}

// setupCommand handles setup operations for configuration and the session database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and maintenance commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config file from the built-in template",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the session database and run migrations",
				Action: r.action(r.SetupDatabase),
			},
			{
				Name:   "rollback",
				Usage:  "Revert the most recent database migration",
				Action: r.action(r.SetupRollback),
			},
			{
				Name:  "prune",
				Usage: "Delete stored sessions that have not been used recently",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "older-than",
						Usage: "Delete sessions idle for longer than this",
						Value: 24 * time.Hour,
					},
				},
				Action: r.action(r.SetupPrune),
			},
		},
	}
}
