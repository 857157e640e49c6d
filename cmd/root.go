package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tiliavir/lumina/internal/config"
	"github.com/Tiliavir/lumina/internal/connectivity"
	"github.com/Tiliavir/lumina/internal/gemini"
	"github.com/Tiliavir/lumina/internal/logger"
	"github.com/Tiliavir/lumina/internal/planner"
	"github.com/Tiliavir/lumina/internal/storage"
	"github.com/Tiliavir/lumina/internal/tripstore"
)

var (
	flagOffline   bool
	flagEphemeral bool
)

var rootCmd = &cobra.Command{
	Use:   "lumina",
	Short: "Lumina – a local travel planner",
	Long: `lumina plans a trip from the command line: destination lookup, itinerary,
hotel, timed prep/to-do/shopping lists, expenses and currency conversion.
All data is stored under ~/.lumina/. Run "lumina serve" for a local JSON API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Exit codes.
const (
	exitUsage   = 1
	exitStorage = 2
)

// exitError carries the process exit code for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(exitUsage)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagOffline, "offline", false, "Treat the network as unavailable")
	rootCmd.PersistentFlags().BoolVar(&flagEphemeral, "ephemeral", false, "Keep state in memory only")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(hotelCmd)
	rootCmd.AddCommand(activityCmd)
	for _, c := range listCmds() {
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(expenseCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(serveCmd)
}

// app bundles everything a command needs.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	base     string
	store    *tripstore.Store
	monitor  *connectivity.Monitor
	searcher *planner.Searcher
	closeKV  func() error
}

// openApp loads config, opens the configured storage backend and builds the
// store. With probe set, the initial connectivity state comes from a one-shot
// dial; otherwise the network is assumed available unless --offline is set.
func openApp(ctx context.Context, probe bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	log := logger.New(cfg.Env)

	base := cfg.Storage.Dir
	if base == "" {
		base, err = storage.BaseDir()
		if err != nil {
			return nil, withCode(exitStorage, err)
		}
	}
	backend := cfg.Storage.Backend
	if flagEphemeral {
		backend = "memory"
	}
	kv, closeKV, err := storage.Open(backend, base)
	if err != nil {
		return nil, withCode(exitStorage, err)
	}

	store := tripstore.Open(storage.NewPersistent(kv, log), tripstore.Options{
		DateLayout:      cfg.Expenses.DateLayout,
		DefaultCurrency: cfg.Expenses.DefaultCurrency,
	})

	online := !flagOffline
	if online && probe {
		online = connectivity.Probe(ctx, cfg.Connectivity.ProbeAddress, cfg.Connectivity.Timeout())
	}
	monitor := connectivity.New(online, log)

	return &app{
		cfg:      cfg,
		log:      log,
		base:     base,
		store:    store,
		monitor:  monitor,
		searcher: planner.NewSearcher(store, newFetcher(ctx, cfg, base, log), monitor, log),
		closeKV:  closeKV,
	}, nil
}

func (a *app) Close() {
	if err := a.closeKV(); err != nil {
		a.log.Warn("closing storage", zap.Error(err))
	}
	_ = a.log.Sync()
}

// newFetcher prefers OAuth when configured and a token is saved, and falls
// back to the API key otherwise.
func newFetcher(ctx context.Context, cfg config.Config, base string, log *zap.Logger) gemini.Fetcher {
	opts := gemini.Options{
		BaseURL: cfg.Gemini.BaseURL,
		Model:   cfg.Gemini.Model,
		APIKey:  cfg.Gemini.APIKey,
	}
	if cfg.Gemini.OAuth.Enabled() {
		oc := gemini.OAuth2Config(cfg.Gemini.OAuth.ClientID, cfg.Gemini.OAuth.ClientSecret)
		hc, err := gemini.OAuthHTTPClient(ctx, base, oc, log)
		if err == nil {
			opts.HTTPClient = hc
			opts.APIKey = ""
		} else {
			log.Warn("oauth unavailable, using api key", zap.Error(err))
		}
	}
	return gemini.NewClient(opts)
}

// storageErr tags a persistence failure with the storage exit code.
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	return withCode(exitStorage, fmt.Errorf("saving trip state: %w", err))
}
