package app

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roman-kulish/spectrum-viewer/internal/plot"
	"github.com/roman-kulish/spectrum-viewer/internal/spectrum"
)

func dbPathFlag(cmd *cobra.Command, a *App, dbPath string) string {
	if cmd.Flags().Changed("db") {
		return dbPath
	}
	return a.config.Storage.DBPath
}

func newImportCommand(a *App) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Archive captures in the database",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(dbPathFlag(cmd, a, dbPath), false)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			failed, err := a.forEachRecord(ctx, readCapture, args, func(path string, r *spectrum.Record) error {
				source, err := filepath.Abs(path)
				if err != nil {
					source = path
				}

				id, err := store.SaveRecord(ctx, r, source)
				if err != nil {
					return err
				}
				a.logger.Info("record archived", slog.String("name", r.Name()), slog.Int64("id", id))
				return nil
			})
			if err != nil {
				return err
			}

			a.logger.Info("import finished", slog.Int("imported", len(args)-failed), slog.Int("failed", failed))
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the database file")
	return cmd
}

func newListCommand(a *App) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived captures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(dbPathFlag(cmd, a, dbPath), true)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Records(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing records: %w", err)
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tRANGE\tSAMPLES\tIMPORTED\tSOURCE")
			for _, r := range records {
				source := "-"
				if r.Source != nil {
					source = *r.Source
				}
				fmt.Fprintf(tw, "%s\t%s - %s\t%s\t%s\t%s\n",
					r.Name,
					plot.FormatFrequency(r.StartFrequency),
					plot.FormatFrequency(r.StopFrequency),
					humanize.Comma(int64(r.NumSamples)),
					humanize.Time(r.ImportedAt),
					source,
				)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the database file")
	return cmd
}

func newRemoveCommand(a *App) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "remove NAME...",
		Short: "Remove archived captures",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(dbPathFlag(cmd, a, dbPath), true)
			if err != nil {
				return err
			}
			defer store.Close()

			for _, name := range args {
				deleted, err := store.DeleteRecord(cmd.Context(), name)
				if err != nil {
					return fmt.Errorf("removing %s: %w", name, err)
				}
				if !deleted {
					a.logger.Warn("record not found", slog.String("name", name))
					continue
				}
				a.logger.Info("record removed", slog.String("name", name))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the database file")
	return cmd
}
