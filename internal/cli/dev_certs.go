package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/digital-business-cards/walletpass/internal/crypto"
)

type devCertsOptions struct {
	outputDir string
	chain     crypto.DevelopmentChainOptions
}

func newDevCertsCmd() *cobra.Command {
	opts := &devCertsOptions{}

	cmd := &cobra.Command{
		Use:   "dev-certs",
		Short: "Generate a development signing chain",
		Long: `Generate a self-signed root (standing in for the Apple WWDR intermediate), a pass signing
certificate and its private key for local development.

Passes signed with this chain verify with "walletpass verify" but are not accepted by Apple Wallet.

Example:
  walletpass dev-certs --output ./certs --passphrase secret`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDevCerts(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "./certs", "Output directory")
	cmd.Flags().StringVar(&opts.chain.PassTypeIdentifier, "pass-type-id", "pass.com.example.businesscard", "Pass type identifier")
	cmd.Flags().StringVar(&opts.chain.TeamIdentifier, "team-id", "TEAMID1234", "Team identifier")
	cmd.Flags().StringVar(&opts.chain.KeyPassphrase, "passphrase", "", "Passphrase for the private key (unencrypted if empty)")
	cmd.Flags().DurationVar(&opts.chain.Validity, "validity", 365*24*time.Hour, "Certificate validity")
	cmd.Flags().IntVar(&opts.chain.KeyBits, "size", 2048, "RSA key size in bits (2048 or 4096)")

	return cmd
}

func runDevCerts(cmd *cobra.Command, opts *devCertsOptions) error {
	if opts.chain.KeyBits != 2048 && opts.chain.KeyBits != 4096 {
		return fmt.Errorf("invalid RSA key size: %d (must be 2048 or 4096)", opts.chain.KeyBits)
	}

	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	chain, err := crypto.GenerateDevelopmentChain(opts.outputDir, opts.chain)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ WWDR (development root): %s\n", chain.WWDRCertPath)
	fmt.Fprintf(out, "✓ Signer certificate:      %s\n", chain.SignerCertPath)
	fmt.Fprintf(out, "✓ Signer key:              %s\n", chain.SignerKeyPath)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "export the following before running walletpass-server or walletpass generate:")
	fmt.Fprintf(out, "  PASS_TYPE_IDENTIFIER=%s\n", opts.chain.PassTypeIdentifier)
	fmt.Fprintf(out, "  TEAM_IDENTIFIER=%s\n", opts.chain.TeamIdentifier)
	fmt.Fprintf(out, "  WWDR_CERT_PATH=%s\n", chain.WWDRCertPath)
	fmt.Fprintf(out, "  SIGNER_CERT_PATH=%s\n", chain.SignerCertPath)
	fmt.Fprintf(out, "  SIGNER_KEY_PATH=%s\n", chain.SignerKeyPath)
	if opts.chain.KeyPassphrase != "" {
		fmt.Fprintln(out, "  SIGNER_KEY_PASSPHRASE=<the passphrase you chose>")
	}
	return nil
}
