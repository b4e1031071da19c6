package main

import (
	"context"
	"os"

	"github.com/desertthunder/spotlist/internal/shared"
	"github.com/urfave/cli/v3"
)

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "spotlist",
		Usage:    "Look up top tracks, recommendations and new releases on Spotify",
		Version:  "0.1.0",
		Flags:    globalFlags(),
		Commands: r.register(),
	}
}

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnv(".env"); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}

	runner := NewRunner(RunnerOpts{Logger: logger})
	err := newApp(runner).Run(context.Background(), os.Args)
	runner.Close()

	if err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
