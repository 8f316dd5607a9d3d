package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roman-kulish/spectrum-viewer/internal/datfile"
	"github.com/roman-kulish/spectrum-viewer/internal/spectrum"
	"github.com/roman-kulish/spectrum-viewer/internal/storage"
)

var errNoRecords = errors.New("no records loaded")

// App holds the state shared by all commands
type App struct {
	config   *Config
	logger   *slog.Logger
	logLevel *slog.LevelVar
	out      io.Writer
}

// NewRootCommand builds the specview command tree. Log level changes requested by
// the configuration or flags are applied to logLevel.
func NewRootCommand(logger *slog.Logger, logLevel *slog.LevelVar) *cobra.Command {
	a := &App{
		config:   NewConfig(),
		logger:   logger,
		logLevel: logLevel,
		out:      os.Stdout,
	}

	var configPath, level string
	root := &cobra.Command{
		Use:           "specview",
		Short:         "Inspect, export and plot spectrum analyzer captures",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				config, err := LoadConfig(configPath)
				if err != nil {
					return fmt.Errorf("loading configuration %s: %w", configPath, err)
				}
				a.config = config
			}
			if cmd.Flags().Changed("log-level") {
				a.config.Settings.LogLevel = level
			}
			if err := a.logLevel.UnmarshalText([]byte(a.config.Settings.LogLevel)); err != nil {
				return fmt.Errorf("setting log level: %w", err)
			}
			a.out = cmd.OutOrStdout()
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the configuration file")
	root.PersistentFlags().StringVar(&level, "log-level", "", "Log level [debug, info, warn, error]")

	root.AddCommand(
		newInfoCommand(a),
		newExportCommand(a),
		newSeriesCommand(a),
		newPlotCommand(a),
		newImportCommand(a),
		newListCommand(a),
		newRemoveCommand(a),
	)
	return root
}

// recordLoader resolves a command argument into a record.
type recordLoader func(ctx context.Context, arg string) (*spectrum.Record, error)

func readCapture(_ context.Context, path string) (*spectrum.Record, error) {
	return datfile.ReadFile(path)
}

// loaderFor returns how a command's arguments are resolved: as names of archived
// records when its --db flag is set, as capture files otherwise. The returned
// close function is never nil.
func (a *App) loaderFor(cmd *cobra.Command, dbPath string) (recordLoader, func() error, error) {
	if !cmd.Flags().Changed("db") {
		return readCapture, func() error { return nil }, nil
	}

	store, err := a.openStore(dbPath, true)
	if err != nil {
		return nil, nil, err
	}
	return store.Record, store.Close, nil
}

// forEachRecord loads every argument with load and passes the record to fn.
// Failures are logged and skipped so one bad input does not abort the batch; the
// number of failed inputs is returned. Only context cancellation stops the loop early.
func (a *App) forEachRecord(ctx context.Context, load recordLoader, args []string, fn func(arg string, r *spectrum.Record) error) (failed int, err error) {
	for _, arg := range args {
		if err = ctx.Err(); err != nil {
			return
		}

		r, loadErr := load(ctx, arg)
		if loadErr != nil {
			a.logger.Error("failed to load record", slog.String("source", arg), slog.String("error", loadErr.Error()))
			failed++
			continue
		}
		a.logger.Debug("record loaded", slog.String("source", arg), slog.String("record", r.String()))

		if fnErr := fn(arg, r); fnErr != nil {
			a.logger.Error("failed to process record", slog.String("source", arg), slog.String("error", fnErr.Error()))
			failed++
		}
	}
	return
}

func (a *App) openStore(dbPath string, mustExist bool) (*storage.SqliteStore, error) {
	if dbPath == "" {
		return nil, errors.New("db path is required")
	}
	if mustExist {
		if _, err := os.Stat(dbPath); err != nil && os.IsNotExist(err) {
			return nil, fmt.Errorf("database file '%s' does not exist: %w", dbPath, err)
		}
	}
	return storage.NewSqliteStore(dbPath), nil
}
