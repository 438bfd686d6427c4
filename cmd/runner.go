package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/holocron/internal/favorites"
	"github.com/desertthunder/holocron/internal/services"
	"github.com/desertthunder/holocron/internal/shared"
	"github.com/desertthunder/holocron/internal/storage"
	"github.com/desertthunder/holocron/internal/tasks"
	"github.com/desertthunder/holocron/internal/ui"
	"github.com/urfave/cli/v3"
)

// Catalog is what the commands read reference data from; [tasks.Catalog] implements it.
type Catalog interface {
	ui.Catalog
	Search(ctx context.Context, query string, progress chan<- tasks.ProgressUpdate) (*tasks.SearchResult, error)
}

// SlotOpener opens the durable favorites slot.
type SlotOpener func(ctx context.Context, cfg *shared.Config) (storage.Slot, error)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	catalog    Catalog
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	openSlot   SlotOpener

	// builtCatalog is set when the catalog came from config and can be rebuilt with a new logger.
	builtCatalog bool

	mu    sync.Mutex
	slot  storage.Slot
	store *favorites.Store

	errMu      sync.Mutex
	persistErr error
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A nil Catalog is built from the config by [Runner.configure].
type RunnerOpts struct {
	Config     *shared.Config
	Catalog    Catalog
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	OpenSlot   SlotOpener
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
	if opts.OpenSlot == nil {
		opts.OpenSlot = storage.Open
	}

	return &Runner{
		config:     opts.Config,
		catalog:    opts.Catalog,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		openSlot:   opts.OpenSlot,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		browseCommand, showCommand, searchCommand, favoritesCommand, tuiCommand, serveCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// configure loads the config file and environment overrides, then builds the catalog.
//
// A missing config file is not an error; defaults apply.
func (r *Runner) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	configPath := cmd.String("config")
	if _, err := os.Stat(configPath); err == nil {
		config, err := shared.LoadConfig(configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", configPath)
	}

	if err := shared.ApplyEnv(r.config, r.config.Log.EnvFile); err != nil {
		return ctx, err
	}

	if cmd.Bool("ephemeral") {
		r.config.Storage.Backend = shared.BackendMemory
	}

	level := r.config.Log.Level
	if l := cmd.String("log-level"); l != "" {
		level = l
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(level))

	if r.catalog == nil || r.builtCatalog {
		r.catalog = r.buildCatalog()
		r.builtCatalog = true
	}
	return ctx, nil
}

// buildCatalog wires the SWAPI client, image index and (when credentials exist) TMDB.
func (r *Runner) buildCatalog() *tasks.Catalog {
	client := r.httpClient
	if client == nil {
		client = &http.Client{Timeout: r.config.API.Timeout()}
	}

	opts := tasks.CatalogOptions{
		Reference: services.NewSWAPIService(services.SWAPIOptions{
			BaseURL:   r.config.API.SWAPIURL,
			Client:    client,
			RateLimit: r.config.API.RateLimit,
			Workers:   r.config.API.Workers,
			Logger:    r.logger,
		}),
		Images:  services.NewImageService(r.config.API.ImagesURL, client),
		PerPage: r.config.API.PerPage,
		Logger:  r.logger,
	}

	if r.config.TMDB.Enabled() {
		tmdb, err := services.NewTMDBService(r.config.TMDB, client)
		if err != nil {
			r.logger.Warn("posters disabled", "error", err)
		} else {
			opts.Artwork = tmdb
		}
	} else {
		r.logger.Debug("no tmdb credentials, posters disabled")
	}

	return tasks.NewCatalog(opts)
}

// SetLogger replaces the logger used by commands and by stores opened afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// favorites opens the configured slot and initializes the store on first use.
func (r *Runner) favorites(ctx context.Context) (*favorites.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.store != nil {
		return r.store, nil
	}

	slot, err := r.openSlot(ctx, r.config)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", r.config.Storage.Backend, err)
	}

	store := favorites.NewStore(slot, favorites.Options{
		Key:            r.config.Storage.Key,
		Logger:         r.logger,
		OnPersistError: r.recordPersistError,
	})
	store.Initialize(ctx)

	r.slot = slot
	r.store = store
	r.logger.Debug("favorites ready", "backend", r.config.Storage.Backend, "count", store.Len())
	return store, nil
}

func (r *Runner) recordPersistError(err error) {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	r.persistErr = err
}

// takePersistError returns and resets the last write failure seen by the store.
func (r *Runner) takePersistError() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	err := r.persistErr
	r.persistErr = nil
	return err
}

// isFavorite returns a membership check, or one that is always false when storage is unavailable.
func (r *Runner) isFavorite(ctx context.Context) func(string) bool {
	store, err := r.favorites(ctx)
	if err != nil {
		r.logger.Warn("favorites unavailable", "error", err)
		return func(string) bool { return false }
	}
	return store.Contains
}

// Close releases the favorites slot if one was opened.
func (r *Runner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slot == nil {
		return nil
	}
	err := r.slot.Close()
	r.slot = nil
	r.store = nil
	return err
}

// trackProgress logs catalog progress at debug level. Call the returned func once the operation returns.
func (r *Runner) trackProgress() (chan tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()
	return progress, func() {
		close(progress)
		<-done
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
