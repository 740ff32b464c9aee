package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/digital-business-cards/walletpass/internal/config"
	"github.com/digital-business-cards/walletpass/internal/logger"
	"github.com/digital-business-cards/walletpass/internal/version"
)

// app holds the configuration loaded before any subcommand runs
type app struct {
	cfg    *config.ServerEnvironment
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:               "walletpass",
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		Short:             "Apple Wallet business card pass CLI",
		Long: `walletpass generates and verifies signed Apple Wallet passes (.pkpass) for digital business cards.

Pass identifiers and certificate paths are read from the same environment variables as walletpass-server
(PASS_TYPE_IDENTIFIER, TEAM_IDENTIFIER, WWDR_CERT_PATH, SIGNER_CERT_PATH, SIGNER_KEY_PATH, ...).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a.cfg, err = config.NewServerConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			a.logger = logger.InitLogger(logger.ParseLogLevel(a.cfg.LogLevel), a.cfg.Environment)
			return nil
		},
	}

	v := version.Get()
	rootCmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	rootCmd.AddCommand(newGenerateCmd(a))
	rootCmd.AddCommand(newVerifyCmd(a))
	rootCmd.AddCommand(newDevCertsCmd())

	return rootCmd
}

// Execute runs the CLI and exits non-zero on any failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
