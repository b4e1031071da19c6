package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/desertthunder/spotlist/internal/repositories"
	"github.com/desertthunder/spotlist/internal/server"
	"github.com/desertthunder/spotlist/internal/session"
	"github.com/desertthunder/spotlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the web relay until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config
	if host := cmd.String("host"); host != "" {
		cfg.Server.Host = host
	}
	if port := cmd.Int("port"); port != 0 {
		cfg.Server.Port = int(port)
	}
	if backend := cmd.String("session-backend"); backend != "" {
		cfg.Session.Backend = backend
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, closeStore, err := r.sessionStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	srv, err := server.New(
		r.engine,
		session.NewManager(store, cfg.Session.CookieName, cfg.Session.Secure),
		shared.WithLogger(r.logger, "component", "server"),
		server.Options{
			Addr:              cfg.Server.Addr(),
			ReadTimeout:       cfg.Server.ReadTimeout(),
			WriteTimeout:      cfg.Server.WriteTimeout(),
			RequestsPerSecond: cfg.Server.RequestsPerSecond,
			Burst:             cfg.Server.Burst,
		},
	)
	if err != nil {
		return err
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ready := make(chan string, 1)
	go func() {
		addr, ok := <-ready
		if !ok {
			return
		}
		url := fmt.Sprintf("http://%s/login", addr)
		if err := r.writePlain("Listening on %s\n", url); err != nil {
			r.logger.Warn("could not print the login URL", "url", url, "error", err)
		}
		if cmd.Bool("open") {
			if err := shared.OpenBrowser(ctx, url); err != nil {
				r.logger.Warn("could not open browser", "error", err)
			}
		}
	}()

	err = srv.ListenAndServe(ctx, ready)
	close(ready)
	return err
}

// sessionStore returns the configured session store and a function releasing it.
func (r *Runner) sessionStore(ctx context.Context) (session.Store, func(), error) {
	switch r.config.Session.Backend {
	case shared.SessionBackendSQLite:
		db, err := r.openDatabase(ctx)
		if err != nil {
			return nil, nil, err
		}
		r.logger.Info("using sqlite session store", "path", r.config.Database.Path)
		return repositories.NewSessionRepository(db), func() { db.Close() }, nil
	default:
		r.logger.Info("using in-memory session store")
		return repositories.NewMemoryStore(), func() {}, nil
	}
}
