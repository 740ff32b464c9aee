package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/digital-business-cards/walletpass/internal/logger"
	"github.com/digital-business-cards/walletpass/internal/pass"
)

type generateOptions struct {
	input  pass.Input
	output string
}

func newGenerateCmd(a *app) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a signed .pkpass file",
		Long: `Run the pass pipeline (payload, manifest, signature, archive) once and write the archive to disk.

The command exits non-zero if any stage fails; no file is written in that case.

Example:
  walletpass generate --name "John Doe" --company Acme --card-id c1 --user-id u1 \
    --url https://example.com/card/c1 --output ./John_Doe_BusinessCard.pkpass`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, a, opts)
		},
	}

	cmd.Flags().StringVar(&opts.input.Name, "name", "", "Card holder name (required)")
	cmd.Flags().StringVar(&opts.input.Company, "company", "", "Company or title (required)")
	cmd.Flags().StringVar(&opts.input.CardID, "card-id", "", "Card identifier (required)")
	cmd.Flags().StringVar(&opts.input.UserID, "user-id", "", "User identifier (required)")
	cmd.Flags().StringVar(&opts.input.PublicCardURL, "url", "", "Public card URL encoded in the QR code (required)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default <Name>_BusinessCard.pkpass in the current directory)")

	return cmd
}

func runGenerate(cmd *cobra.Command, a *app, opts *generateOptions) error {
	ctx := logger.ContextWithRequestLogger(context.Background(), a.logger)

	packager := pass.NewPackager(a.cfg.PassConfig(), a.cfg.NewSigner())
	result, err := packager.Generate(ctx, opts.input)
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = pass.Filename(opts.input.Name)
	}
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(output, result.Archive, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s (serial %s, %d bytes)\n", output, result.SerialNumber, len(result.Archive))
	return nil
}
