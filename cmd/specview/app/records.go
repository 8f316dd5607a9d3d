package app

import (
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roman-kulish/spectrum-viewer/internal/csvexport"
	"github.com/roman-kulish/spectrum-viewer/internal/datfile"
	"github.com/roman-kulish/spectrum-viewer/internal/spectrum"
)

func newInfoCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE...",
		Short: "Print the header and summary of captures",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.forEachRecord(cmd.Context(), readCapture, args, func(path string, r *spectrum.Record) error {
				size := datfile.Header{NumSamples: int64(r.Len())}.Size()
				a.logger.Info("record",
					slog.String("name", r.Name()),
					slog.String("path", path),
					slog.Group("header",
						slog.Float64("startFrequency", r.StartFrequency()),
						slog.Float64("stopFrequency", r.StopFrequency()),
						slog.Float64("referenceLevel", float64(r.ReferenceLevel())),
						slog.Float64("scale", float64(r.Scale())),
					),
					slog.Int("samples", r.Len()),
					slog.String("samplingRate", humanize.SIWithDigits(r.SamplingRate()*1e6, 3, "Hz")),
					slog.String("averagePower", humanize.FtoaWithDigits(r.AveragePower(), 2)+" dBm"),
					slog.String("size", humanize.Bytes(uint64(size))),
				)
				return nil
			})
			return err
		},
	}
}

func newExportCommand(a *App) *cobra.Command {
	var dir, dbPath string

	cmd := &cobra.Command{
		Use:   "export FILE|NAME...",
		Short: "Export captures or archived records as CSV",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("out") {
				dir = a.config.Export.Directory
			}

			load, closeLoader, err := a.loaderFor(cmd, dbPath)
			if err != nil {
				return err
			}
			defer closeLoader()

			failed, err := a.forEachRecord(cmd.Context(), load, args, func(_ string, r *spectrum.Record) error {
				path, err := csvexport.WriteFile(dir, r)
				if err != nil {
					return err
				}
				a.logger.Info("record exported", slog.String("name", r.Name()), slog.String("path", path))
				return nil
			})
			if err != nil {
				return err
			}

			a.logger.Info("export finished", slog.Int("exported", len(args)-failed), slog.Int("failed", failed))
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "out", "o", ".", "Directory to write CSV files to")
	cmd.Flags().StringVar(&dbPath, "db", "", "Read records by name from this database instead of capture files")
	return cmd
}
