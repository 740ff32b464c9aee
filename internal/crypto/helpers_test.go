package crypto

import (
	"crypto/x509"
	"errors"
	"testing"
)

const testPassphrase = "correct horse battery staple"

// newTestChain writes a development chain into a temporary directory
func newTestChain(t *testing.T, opts DevelopmentChainOptions) *DevelopmentChain {
	t.Helper()

	chain, err := GenerateDevelopmentChain(t.TempDir(), opts)
	if err != nil {
		t.Fatalf("GenerateDevelopmentChain() error = %v", err)
	}
	return chain
}

func rootPool(chain *DevelopmentChain) *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AddCert(chain.Root)
	return pool
}

func assertCryptoCode(t *testing.T, err error, want ErrorCode) {
	t.Helper()

	var cryptoErr *CryptoError
	if !errors.As(err, &cryptoErr) {
		t.Fatalf("expected *CryptoError, got %T: %v", err, err)
	}
	if cryptoErr.Code() != want {
		t.Errorf("error code = %q, want %q (error: %v)", cryptoErr.Code(), want, err)
	}
}
