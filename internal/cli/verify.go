package cli

import (
	"crypto/x509"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/digital-business-cards/walletpass/internal/crypto"
	"github.com/digital-business-cards/walletpass/internal/pass"
)

func newVerifyCmd(a *app) *cobra.Command {
	var rootsPath string
	var noChain bool

	cmd := &cobra.Command{
		Use:   "verify <file.pkpass>",
		Short: "Verify a .pkpass file",
		Long: `Check the archive layout, the manifest digests and the detached signature of a pass.

The signer chain is verified against --roots (PEM), or WWDR_CERT_PATH when --roots is not given.
Use --no-chain to check the signature without verifying the certificate chain.

Example:
  walletpass verify ./John_Doe_BusinessCard.pkpass --roots ./certs/wwdr.pem`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var roots *x509.CertPool
			if !noChain {
				path := rootsPath
				if path == "" {
					path = a.cfg.WWDRCertPath
				}
				if path == "" {
					return fmt.Errorf("no trust roots: set --roots or WWDR_CERT_PATH, or use --no-chain")
				}
				var err error
				roots, err = crypto.LoadCustomRootCAs(path)
				if err != nil {
					return err
				}
			}
			return runVerify(cmd, args[0], roots)
		},
	}

	cmd.Flags().StringVar(&rootsPath, "roots", "", "PEM file with trusted root/intermediate certificates")
	cmd.Flags().BoolVar(&noChain, "no-chain", false, "Skip certificate chain verification")

	return cmd
}

func runVerify(cmd *cobra.Command, path string, roots *x509.CertPool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	verification, err := pass.Verify(data, roots)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ %s is valid\n", path)
	fmt.Fprintf(out, "  serial:  %s\n", verification.SerialNumber)
	fmt.Fprintf(out, "  signer:  %s\n", verification.Signer.Subject.CommonName)
	fmt.Fprintf(out, "  entries: %s\n", strings.Join(verification.Entries, ", "))
	return nil
}
