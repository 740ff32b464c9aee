package crypto

// openssl.go signs manifests by running `openssl smime`.
//
// The manifest is written to a per-call staging directory, openssl writes the DER signature
// next to it, and the directory is removed on every path.

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/digital-business-cards/walletpass/internal/logger"
	"github.com/digital-business-cards/walletpass/internal/staging"
)

const (
	// passphraseEnvVar carries the key passphrase to openssl (-passin env:...) so it never
	// appears in the process list
	passphraseEnvVar = "WALLETPASS_SIGNER_KEY_PASSPHRASE"

	manifestFile  = "manifest.json"
	signatureFile = "signature"

	// maximum stderr kept for error messages
	maxDiagnosticLength = 2048
)

// OpenSSLSigner shells out to the openssl binary.
type OpenSSLSigner struct {
	// Path to the openssl binary (default "openssl" resolved via PATH)
	Path string

	// Timeout bounds a single openssl invocation (0 = no limit beyond ctx)
	Timeout time.Duration

	// StagingRoot is the parent of the per-call staging directories (default: OS temp dir)
	StagingRoot string
}

// NewOpenSSLSigner creates a signer that runs the openssl binary at path.
func NewOpenSSLSigner(path string, timeout time.Duration, stagingRoot string) *OpenSSLSigner {
	if path == "" {
		path = "openssl"
	}
	return &OpenSSLSigner{Path: path, Timeout: timeout, StagingRoot: stagingRoot}
}

// signArgs builds the openssl command line (sign, binary, detached, DER output)
func (s *OpenSSLSigner) signArgs(chain SigningChain, in, out string) []string {
	args := []string{
		"smime", "-binary", "-sign",
		"-certfile", chain.WWDRCertPath,
		"-signer", chain.SignerCertPath,
		"-inkey", chain.SignerKeyPath,
		"-in", in,
		"-out", out,
		"-outform", "DER",
	}
	if chain.KeyPassphrase != "" {
		args = append(args, "-passin", "env:"+passphraseEnvVar)
	}
	return args
}

func (s *OpenSSLSigner) Sign(ctx context.Context, manifest []byte, chain SigningChain) ([]byte, error) {
	if len(manifest) == 0 {
		return nil, NewValidationError("manifest is empty")
	}

	reqLogger := logger.ContextRequestLogger(ctx)

	if err := checkSignerChain(chain); err != nil {
		return nil, err
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	dir, err := staging.New(s.StagingRoot)
	if err != nil {
		return nil, WrapInternalError(err, "failed to create signing staging directory")
	}
	defer dir.Cleanup(reqLogger)

	if err := dir.WriteFile(manifestFile, manifest); err != nil {
		return nil, WrapInternalError(err, "failed to stage manifest for signing")
	}

	// #nosec G204 -- binary path comes from operator configuration
	cmd := exec.CommandContext(ctx, s.Path, s.signArgs(chain, dir.Path(manifestFile), dir.Path(signatureFile))...)
	cmd.Env = os.Environ()
	if chain.KeyPassphrase != "" {
		cmd.Env = append(cmd.Env, passphraseEnvVar+"="+chain.KeyPassphrase)
	}
	cmd.WaitDelay = time.Second

	var stderr bytes.Buffer
	cmd.Stdout = &stderr
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()

	reqLogger.Debug("openssl smime finished",
		slog.Duration("duration", time.Since(start)),
		slog.Bool("ok", runErr == nil),
	)

	if runErr != nil {
		if ctx.Err() != nil {
			return nil, contextSigningError(ctx.Err(), s.Timeout)
		}
		return nil, WrapSigningError(runErr, fmt.Sprintf("openssl smime failed: %s", diagnostic(stderr.String())))
	}

	signature, err := dir.ReadFile(signatureFile)
	if err != nil {
		return nil, WrapSigningError(err, "openssl did not produce a signature")
	}
	if len(signature) == 0 {
		return nil, NewSigningError("openssl produced an empty signature")
	}

	return signature, nil
}

// checkSignerChain verifies the signer certificate chains to the WWDR certificate and is
// currently valid. openssl smime embeds whatever -certfile names without checking it.
func checkSignerChain(chain SigningChain) error {
	signerCerts, err := ReadCertChainFromFile(chain.SignerCertPath)
	if err != nil {
		return WrapSigningError(err, "failed to load signer certificate")
	}
	wwdr, err := LoadCustomRootCAs(chain.WWDRCertPath)
	if err != nil {
		return WrapSigningError(err, "failed to load WWDR certificate")
	}
	if err := ValidateCertificateChain(signerCerts[:1], wwdr, time.Time{}); err != nil {
		return WrapSigningError(err, "signer certificate does not chain to the WWDR certificate")
	}
	return nil
}

func diagnostic(output string) string {
	output = strings.TrimSpace(output)
	if output == "" {
		return "no diagnostic output"
	}
	if len(output) > maxDiagnosticLength {
		output = output[:maxDiagnosticLength] + "..."
	}
	return output
}
