package crypto

import (
	"crypto/x509"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestReadCertChainFromFile(t *testing.T) {
	chain := newTestChain(t, DevelopmentChainOptions{})

	certs, err := ReadCertChainFromFile(chain.SignerCertPath)
	if err != nil {
		t.Fatalf("ReadCertChainFromFile() error = %v", err)
	}
	if len(certs) != 1 {
		t.Fatalf("expected 1 certificate, got %d", len(certs))
	}
	if certs[0].Subject.CommonName != "Pass Type ID: pass.com.example.businesscard" {
		t.Errorf("unexpected subject %q", certs[0].Subject.CommonName)
	}

	// Apple distributes the WWDR certificate as DER
	derPath := filepath.Join(t.TempDir(), "wwdr.cer")
	if err := os.WriteFile(derPath, chain.Root.Raw, 0644); err != nil {
		t.Fatalf("failed to write DER file: %v", err)
	}
	derCerts, err := ReadCertChainFromFile(derPath)
	if err != nil {
		t.Fatalf("ReadCertChainFromFile() DER error = %v", err)
	}
	if !derCerts[0].Equal(chain.Root) {
		t.Error("DER certificate does not match the root")
	}

	if _, err := ReadCertChainFromFile(filepath.Join(t.TempDir(), "missing.pem")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseCertificateChain(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantCode ErrorCode
	}{
		{"empty", nil, ErrCodeValidation},
		{"garbage DER", []byte("not a certificate"), ErrCodeCertificate},
		{"PEM without certificates", []byte("-----BEGIN PUBLIC KEY-----\nAAAA\n-----END PUBLIC KEY-----\n"), ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCertificateChain(tt.data)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			assertCryptoCode(t, err, tt.wantCode)
		})
	}
}

func TestValidateCertificateChain(t *testing.T) {
	chain := newTestChain(t, DevelopmentChainOptions{})
	other := newTestChain(t, DevelopmentChainOptions{})

	if err := ValidateCertificateChain([]*x509.Certificate{chain.Signer, chain.Root}, rootPool(chain), time.Time{}); err != nil {
		t.Errorf("expected valid chain, got %v", err)
	}

	err := ValidateCertificateChain([]*x509.Certificate{chain.Signer}, rootPool(other), time.Time{})
	if err == nil {
		t.Fatal("expected error for untrusted root")
	}
	assertCryptoCode(t, err, ErrCodeCertificate)

	err = ValidateCertificateChain([]*x509.Certificate{chain.Signer}, rootPool(chain), time.Now().Add(2*365*24*time.Hour))
	if err == nil {
		t.Fatal("expected error for a time after expiry")
	}

	if err := ValidateCertificateChain(nil, rootPool(chain), time.Time{}); err == nil {
		t.Error("expected error for empty chain")
	}
}

func TestLoadCustomRootCAs(t *testing.T) {
	chain := newTestChain(t, DevelopmentChainOptions{})

	pool, err := LoadCustomRootCAs(chain.WWDRCertPath)
	if err != nil {
		t.Fatalf("LoadCustomRootCAs() error = %v", err)
	}
	if err := ValidateCertificateChain([]*x509.Certificate{chain.Signer}, pool, time.Time{}); err != nil {
		t.Errorf("signer should validate against loaded roots: %v", err)
	}

	if _, err := LoadCustomRootCAs(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestCheckCertificateValidity(t *testing.T) {
	chain := newTestChain(t, DevelopmentChainOptions{})
	cert := chain.Signer

	tests := []struct {
		name    string
		at      time.Time
		wantErr bool
	}{
		{"now", time.Now(), false},
		{"before not-before", cert.NotBefore.Add(-time.Minute), true},
		{"after not-after", cert.NotAfter.Add(time.Minute), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCertificateValidity(cert, tt.at)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				assertCryptoCode(t, err, ErrCodeCertificate)
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateKeyMatchesCertificate(t *testing.T) {
	chain := newTestChain(t, DevelopmentChainOptions{})

	key, err := ReadPrivateKeyFromPEMFile(chain.SignerKeyPath, "")
	if err != nil {
		t.Fatalf("failed to read key: %v", err)
	}

	if err := ValidateKeyMatchesCertificate(chain.Signer, key); err != nil {
		t.Errorf("expected key to match, got %v", err)
	}

	otherKey, err := GenerateRSAKeyPair(2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	err = ValidateKeyMatchesCertificate(chain.Signer, otherKey)
	if err == nil {
		t.Fatal("expected mismatch error")
	}
	assertCryptoCode(t, err, ErrCodeKeyManagement)
}
