package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/rmp-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "rmp-cli",
	Short: "EPA Risk Management Plan facility data tools",
	Long:  "Cleans EPA RMP facility extracts: corrects implausible coordinates, adds report links, splits chemical and NAICS lists, and strips byte order marks.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is fine; the environment and config.yaml still apply.
		_ = godotenv.Load()

		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}
		zap.ReplaceGlobals(zap.L().With(
			zap.String("run_id", uuid.NewString()),
			zap.String("command", cmd.Name()),
		))

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	// A downstream reader closing the pipe must surface as EPIPE on write
	// rather than kill the process.
	signal.Ignore(syscall.SIGPIPE)

	if err := rootCmd.Execute(); err != nil {
		zap.L().Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}
