package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/rmp-cli/internal/fetcher"
)

var stripBOMConcurrency int

var stripBOMCmd = &cobra.Command{
	Use:   "strip-bom FILE...",
	Short: "Remove a leading UTF-8 byte order mark from files in place",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		limit := cfg.BOM.Concurrency
		if stripBOMConcurrency > 0 {
			limit = stripBOMConcurrency
		}

		results, err := fetcher.StripBOMFiles(ctx, args, limit)
		if err != nil {
			return err
		}

		var changed, failed int
		for _, r := range results {
			switch {
			case r.Err != nil:
				failed++
				zap.L().Error("strip-bom: file failed", zap.String("path", r.Path), zap.Error(r.Err))
			case r.Changed:
				changed++
				zap.L().Info("strip-bom: removed bom", zap.String("path", r.Path))
			default:
				zap.L().Debug("strip-bom: no bom", zap.String("path", r.Path))
			}
		}

		zap.L().Info("strip-bom: complete",
			zap.Int("files", len(results)),
			zap.Int("changed", changed),
			zap.Int("failed", failed),
		)
		if failed > 0 {
			return eris.Errorf("strip-bom: %d of %d files failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	stripBOMCmd.Flags().IntVar(&stripBOMConcurrency, "concurrency", 0, "files processed at once (default bom.concurrency)")
	rootCmd.AddCommand(stripBOMCmd)
}
