package pass

import (
	"context"
	"crypto/x509"
	"errors"
	"sync"
	"testing"

	"github.com/digital-business-cards/walletpass/internal/crypto"
)

const testPassphrase = "test-passphrase"

func validInput() Input {
	return Input{
		Name:          "John Doe",
		Company:       "Acme",
		CardID:        "c1",
		UserID:        "u1",
		PublicCardURL: "https://example.com/card/c1",
	}
}

// testConfig writes a development signing chain into a temp dir and returns a complete Config
// along with a trust pool for verifying signatures made with it.
func testConfig(t *testing.T) (Config, *x509.CertPool) {
	t.Helper()

	chain, err := crypto.GenerateDevelopmentChain(t.TempDir(), crypto.DevelopmentChainOptions{
		PassTypeIdentifier: "pass.com.example.test",
		TeamIdentifier:     "TEAM123456",
		KeyPassphrase:      testPassphrase,
	})
	if err != nil {
		t.Fatalf("GenerateDevelopmentChain() error = %v", err)
	}

	pool := x509.NewCertPool()
	pool.AddCert(chain.Root)

	return Config{
		PassTypeIdentifier:  "pass.com.example.test",
		TeamIdentifier:      "TEAM123456",
		OrganizationName:    "Digital Business Card",
		Description:         "Digital Business Card",
		SupportContact:      "support@example.com",
		WebServiceURL:       "https://example.com/passes/",
		AuthenticationToken: "vxwxd7J8AlNNFPS8k0a0FfUFtq0ewzFdc",
		WWDRCertPath:        chain.WWDRCertPath,
		SignerCertPath:      chain.SignerCertPath,
		SignerKeyPath:       chain.SignerKeyPath,
		SignerKeyPassphrase: testPassphrase,
	}, pool
}

// fakeSigner returns a canned signature (or error) and counts calls
type fakeSigner struct {
	mu        sync.Mutex
	calls     int
	manifest  []byte
	signature []byte
	err       error
}

func (f *fakeSigner) Sign(_ context.Context, manifest []byte, _ crypto.SigningChain) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.manifest = append([]byte(nil), manifest...)
	if f.err != nil {
		return nil, f.err
	}
	return f.signature, nil
}

func (f *fakeSigner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func assertPassCode(t *testing.T, err error, want ErrorCode) *PassError {
	t.Helper()

	var passErr *PassError
	if !errors.As(err, &passErr) {
		t.Fatalf("expected *PassError, got %T: %v", err, err)
	}
	if passErr.Code() != want {
		t.Errorf("error code = %q, want %q (error: %v)", passErr.Code(), want, err)
	}
	return passErr
}
