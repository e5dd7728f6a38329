package main

import (
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/rmp-cli/internal/facility"
	"github.com/sells-group/rmp-cli/internal/observability"
)

var (
	facilitiesCorrections bool
	facilitiesInput       string
	facilitiesOutput      string
	facilitiesMetricsFile string
)

var facilitiesCmd = &cobra.Command{
	Use:   "facilities",
	Short: "Correct facility coordinates and add report links",
	Long: `Streams a facility CSV, fixing coordinates that fall outside every US region
(swapped axes, sign errors, decimal shifts, or the state center as a last resort)
and prepending a markdown link to each facility's RMP report.

Reads stdin and writes stdout unless --input/--output are given.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		streamCfg := cfg.Stream
		if cmd.Flags().Changed("corrections") {
			streamCfg.IncludeCorrections = facilitiesCorrections
		}
		metricsPath := cfg.Metrics.Textfile
		if facilitiesMetricsFile != "" {
			metricsPath = facilitiesMetricsFile
		}

		in, closeIn, err := openInput(facilitiesInput, cmd.InOrStdin())
		if err != nil {
			return err
		}
		defer closeIn()

		out, closeOut, err := openOutput(facilitiesOutput, cmd.OutOrStdout())
		if err != nil {
			return err
		}

		metrics := observability.NewMetrics()
		tr := facility.NewTransformer(streamCfg, facility.WithMetrics(metrics))

		stats, runErr := tr.Run(ctx, in, out)
		if err := closeOut(); err != nil && runErr == nil {
			runErr = err
		}

		if metricsPath != "" {
			if err := metrics.WriteTextfile(metricsPath); err != nil {
				zap.L().Warn("facilities: metrics textfile not written", zap.Error(err))
			}
		}

		if errors.Is(runErr, facility.ErrSinkClosed) {
			zap.L().Info("facilities: output closed early", zap.Int("rows", stats.Rows))
			return nil
		}
		if runErr != nil {
			return eris.Wrap(runErr, "facilities")
		}

		zap.L().Info("facilities: complete",
			zap.Int("rows", stats.Rows),
			zap.Int("suspicious", stats.Suspicious),
			zap.Int("changed", stats.Changed),
			zap.Int("unparsable", stats.Unparsable),
			zap.Int("failed", stats.Failed),
			zap.Any("by_kind", stats.ByKind),
			zap.Duration("elapsed", stats.Elapsed),
		)
		return nil
	},
}

// openInput opens path for reading, with "-" or "" meaning stdin.
func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "open input %s", path)
	}
	return f, func() { _ = f.Close() }, nil
}

// openOutput creates path for writing, with "-" or "" meaning stdout.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "create output %s", path)
	}
	return f, func() error {
		if err := f.Close(); err != nil {
			return eris.Wrapf(err, "close output %s", path)
		}
		return nil
	}, nil
}

func init() {
	facilitiesCmd.Flags().BoolVar(&facilitiesCorrections, "corrections", false, "append changed, confidence and correction_type columns (overrides stream.include_corrections)")
	facilitiesCmd.Flags().StringVar(&facilitiesInput, "input", "-", "input CSV path, - for stdin")
	facilitiesCmd.Flags().StringVar(&facilitiesOutput, "output", "-", "output CSV path, - for stdout")
	facilitiesCmd.Flags().StringVar(&facilitiesMetricsFile, "metrics-file", "", "write Prometheus textfile metrics here (overrides metrics.textfile)")
	rootCmd.AddCommand(facilitiesCmd)
}
