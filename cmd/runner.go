package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/services"
	"github.com/desertthunder/spotlist/internal/shared"
	"github.com/desertthunder/spotlist/internal/tasks"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	engine     tasks.Engine
	reference  services.CountryLister
	cache      *services.CachedReference
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Engine and Reference are built from the configuration in [Runner.load] when left nil.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Engine     tasks.Engine
	Reference  services.CountryLister
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		engine:     opts.Engine,
		reference:  opts.Reference,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, browseCommand, topCommand, recommendationsCommand, releasesCommand, genresCommand, countriesCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// action wraps a command action so that it runs after [Runner.load].
func (r *Runner) action(fn cli.ActionFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if err := r.load(cmd); err != nil {
			return err
		}
		return fn(ctx, cmd)
	}
}

// load reads the configuration named by --config, applies environment and flag overrides and
// builds the lookup engine.
//
// A missing config file is only an error when --config was given explicitly.
func (r *Runner) load(cmd *cli.Command) error {
	path := cmd.String("config")
	if _, err := os.Stat(path); err == nil {
		config, err := shared.LoadConfig(path)
		if err != nil {
			return err
		}
		r.config = config
		r.configPath = path
	} else if cmd.IsSet("config") {
		return fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
	}

	r.config.ApplyEnv()
	if id := cmd.String("client-id"); id != "" {
		r.config.Credentials.Spotify.ClientID = id
	}
	if secret := cmd.String("client-secret"); secret != "" {
		r.config.Credentials.Spotify.ClientSecret = secret
	}
	if level := cmd.String("log-level"); level != "" {
		r.config.Log.Level = level
	}

	if err := shared.SetLogLevel(r.logger, r.config.Log.Level); err != nil {
		return err
	}
	if err := r.config.Validate(); err != nil {
		return err
	}

	r.build()
	return nil
}

// build wires the service clients from the configuration. Injected dependencies are kept.
func (r *Runner) build() {
	if r.httpClient == nil {
		r.httpClient = services.DefaultHTTPClient(r.config.HTTP.Timeout())
	}

	if r.reference == nil {
		r.cache = services.NewCachedReference(
			services.NewReferenceService(r.config.HTTP.ReferenceURL, r.httpClient),
			r.config.Cache.ReferenceTTL(),
		)
		r.reference = r.cache
	}

	if r.engine == nil {
		spotify := r.config.Credentials.Spotify
		r.engine = tasks.NewLookupEngine(
			services.NewClientCredentials(spotify.TokenURL, r.httpClient),
			services.NewSpotifyService(spotify.APIURL, r.httpClient),
			r.reference,
			shared.WithLogger(r.logger, "component", "engine"),
		)
	}
}

// Close releases background workers started by [Runner.load].
func (r *Runner) Close() {
	if r.cache != nil {
		r.cache.Stop()
	}
}

// credentials returns the configured Spotify client credentials for CLI lookups.
func (r *Runner) credentials() (models.Credentials, error) {
	creds := models.Credentials{
		ClientID:     r.config.Credentials.Spotify.ClientID,
		ClientSecret: r.config.Credentials.Spotify.ClientSecret,
	}
	if err := creds.Validate(); err != nil {
		return creds, fmt.Errorf(
			"%w: pass --client-id and --client-secret, set %s and %s, or fill [credentials.spotify] in the config file",
			shared.ErrMissingCredentials, shared.EnvClientID, shared.EnvClientSecret,
		)
	}
	return creds, nil
}

// progress returns a channel whose updates are logged until it is closed.
func (r *Runner) progress() (chan<- tasks.ProgressUpdate, func()) {
	ch := make(chan tasks.ProgressUpdate, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range ch {
			r.logger.Info(update.Message, "phase", update.Phase, "step", fmt.Sprintf("%d/%d", update.Step, update.Total))
		}
	}()
	return ch, func() {
		close(ch)
		<-done
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeBytes(b []byte) error {
	if _, err := r.output.Write(b); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(b) > 0 && !strings.HasSuffix(string(b), "\n") {
		return r.writePlain("\n")
	}
	return nil
}
