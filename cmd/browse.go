package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotlist/internal/ui"
	"github.com/urfave/cli/v3"
)

// browseCommand starts the interactive recommendations browser
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "Browse recommendations by genre in an interactive terminal UI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "artist",
				Aliases: []string{"a"},
				Usage:   "Seed every lookup with this artist",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to this file instead of discarding them",
			},
		},
		Action: r.Browse,
	}
}

// Browse runs the terminal UI. Logs would corrupt the alternate screen, so they are
// redirected before the engine is built.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	var logOutput io.Writer = io.Discard
	if path := cmd.String("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOutput = f
	}
	r.logger.SetOutput(logOutput)

	if err := r.load(cmd); err != nil {
		return err
	}

	creds, err := r.credentials()
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, r.engine, creds, cmd.String("artist"))
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
