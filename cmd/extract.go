package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/rmp-cli/internal/rmpextract"
)

var (
	extractInput     string
	extractChemicals string
	extractNAICS     string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Split chemical and NAICS lists into per-facility tables",
	Long:  "Reads the combined facility table and writes one row per facility and chemical, and one row per facility and NAICS code.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		in, closeIn, err := openInput(extractInput, cmd.InOrStdin())
		if err != nil {
			return err
		}
		defer closeIn()

		chem, closeChem, err := openOutput(extractChemicals, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		naics, closeNAICS, err := openOutput(extractNAICS, cmd.OutOrStdout())
		if err != nil {
			_ = closeChem()
			return err
		}

		stats, runErr := rmpextract.New(cfg.Extract).Run(ctx, in, chem, naics)
		for _, closeFn := range []func() error{closeChem, closeNAICS} {
			if err := closeFn(); err != nil && runErr == nil {
				runErr = err
			}
		}
		if runErr != nil {
			return eris.Wrap(runErr, "extract")
		}

		zap.L().Info("extract: complete",
			zap.Int("rows", stats.Rows),
			zap.Int("chemicals", stats.Chemicals),
			zap.Int("naics_codes", stats.NAICSCodes),
			zap.Int("invalid_naics", stats.InvalidNAICS),
			zap.String("chemicals_path", extractChemicals),
			zap.String("naics_path", extractNAICS),
		)
		for sector, n := range stats.Sectors {
			title, _ := rmpextract.SectorTitle(sector)
			zap.L().Debug("extract: naics sector",
				zap.String("sector", sector),
				zap.String("title", title),
				zap.Int("codes", n),
			)
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractInput, "input", "Combined.csv", "combined facility CSV, - for stdin")
	extractCmd.Flags().StringVar(&extractChemicals, "chemicals", "Chemicals.csv", "chemical table output path")
	extractCmd.Flags().StringVar(&extractNAICS, "naics", "NAICS.csv", "NAICS table output path")
	rootCmd.AddCommand(extractCmd)
}
