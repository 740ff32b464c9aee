package crypto

// signer.go produces the detached CMS (PKCS#7) signature stored in a pass as "signature".
//
// The signature covers the exact bytes of manifest.json and nothing else. It embeds the
// signing certificate and the WWDR intermediate so the wallet can build the chain.

import (
	"context"
	"crypto"
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	"go.mozilla.org/pkcs7"
)

// SigningChain identifies the certificate files used to sign a manifest.
type SigningChain struct {
	// WWDRCertPath is the Apple WWDR intermediate (PEM or DER)
	WWDRCertPath string

	// SignerCertPath is the Pass Type ID certificate (PEM)
	SignerCertPath string

	// SignerKeyPath is the private key of the Pass Type ID certificate (PEM)
	SignerKeyPath string

	KeyPassphrase string
}

// Signer creates a detached DER-encoded CMS signature over manifest.
//
// Implementations must not modify manifest and must honour ctx cancellation.
// All failures are returned as *CryptoError (code ErrCodeSigning for signing failures and timeouts).
type Signer interface {
	Sign(ctx context.Context, manifest []byte, chain SigningChain) ([]byte, error)
}

// SigningIdentity is a loaded and checked signing chain
type SigningIdentity struct {
	Certificate   *x509.Certificate
	Key           crypto.Signer
	Intermediates []*x509.Certificate
}

// LoadSigningIdentity reads the certificates and key referenced by chain and checks that
// the key belongs to the certificate and that the certificate is currently valid.
func LoadSigningIdentity(chain SigningChain, at time.Time) (*SigningIdentity, error) {
	signerCerts, err := ReadCertChainFromFile(chain.SignerCertPath)
	if err != nil {
		return nil, err
	}

	wwdr, err := ReadCertChainFromFile(chain.WWDRCertPath)
	if err != nil {
		return nil, err
	}

	key, err := ReadPrivateKeyFromPEMFile(chain.SignerKeyPath, chain.KeyPassphrase)
	if err != nil {
		return nil, err
	}

	leaf := signerCerts[0]
	if err := ValidateKeyMatchesCertificate(leaf, key); err != nil {
		return nil, err
	}
	if err := CheckCertificateValidity(leaf, at); err != nil {
		return nil, err
	}

	// any extra certificates bundled with the signer cert are kept as intermediates
	intermediates := append(wwdr, signerCerts[1:]...)

	return &SigningIdentity{
		Certificate:   leaf,
		Key:           key,
		Intermediates: intermediates,
	}, nil
}

// PKCS7Signer signs in-process with go.mozilla.org/pkcs7.
// Output is equivalent to `openssl smime -binary -sign -outform DER` (SHA-256 digest,
// signed attributes, detached content).
type PKCS7Signer struct {
	// Timeout bounds a single Sign call (0 = no limit beyond ctx)
	Timeout time.Duration

	now func() time.Time
}

// NewPKCS7Signer creates an in-process signer
func NewPKCS7Signer(timeout time.Duration) *PKCS7Signer {
	return &PKCS7Signer{Timeout: timeout, now: time.Now}
}

func (s *PKCS7Signer) Sign(ctx context.Context, manifest []byte, chain SigningChain) ([]byte, error) {
	if len(manifest) == 0 {
		return nil, NewValidationError("manifest is empty")
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	type result struct {
		signature []byte
		err       error
	}
	// buffered: after a timeout signDetached still finishes and its send must not block
	done := make(chan result, 1)

	go func() {
		sig, err := s.signDetached(manifest, chain)
		done <- result{signature: sig, err: err}
	}()

	select {
	case r := <-done:
		return r.signature, r.err
	case <-ctx.Done():
		return nil, contextSigningError(ctx.Err(), s.Timeout)
	}
}

func (s *PKCS7Signer) signDetached(manifest []byte, chain SigningChain) ([]byte, error) {
	now := time.Now
	if s.now != nil {
		now = s.now
	}

	identity, err := LoadSigningIdentity(chain, now())
	if err != nil {
		return nil, err
	}

	signedData, err := pkcs7.NewSignedData(manifest)
	if err != nil {
		return nil, WrapSigningError(err, "failed to create signed data")
	}
	signedData.SetDigestAlgorithm(pkcs7.OIDDigestAlgorithmSHA256)

	if err := signedData.AddSignerChain(identity.Certificate, identity.Key, identity.Intermediates, pkcs7.SignerInfoConfig{}); err != nil {
		return nil, WrapSigningError(err, "failed to add signer")
	}

	signedData.Detach()

	der, err := signedData.Finish()
	if err != nil {
		return nil, WrapSigningError(err, "failed to finish signature")
	}

	return der, nil
}

func contextSigningError(err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		if timeout > 0 {
			return WrapSigningError(err, fmt.Sprintf("signing timed out after %s", timeout))
		}
		return WrapSigningError(err, "signing timed out")
	}
	return WrapSigningError(err, "signing cancelled")
}
