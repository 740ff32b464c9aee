package pass

import (
	"context"
	"crypto/x509"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/digital-business-cards/walletpass/internal/crypto"
)

// generateSigned returns a signed archive and its trust pool
func generateSigned(t *testing.T) ([]byte, *x509.CertPool) {
	t.Helper()

	cfg, roots := testConfig(t)
	result, err := NewPackager(cfg, crypto.NewPKCS7Signer(10*time.Second)).Generate(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	return result.Archive, roots
}

// rebuild repacks an archive after applying mutate to its entries
func rebuild(t *testing.T, archive []byte, mutate func(entries map[string][]byte, names []string) []string) []byte {
	t.Helper()

	entries, names, err := ReadArchive(archive)
	if err != nil {
		t.Fatalf("ReadArchive() error = %v", err)
	}
	names = mutate(entries, names)

	files := make([]File, 0, len(names))
	for _, name := range names {
		files = append(files, File{Name: name, Data: entries[name]})
	}
	out, err := BuildArchive(files, time.Now())
	if err != nil {
		t.Fatalf("BuildArchive() error = %v", err)
	}
	return out
}

func without(names []string, drop string) []string {
	out := names[:0:0]
	for _, n := range names {
		if n != drop {
			out = append(out, n)
		}
	}
	return out
}

func TestVerify(t *testing.T) {
	archive, roots := generateSigned(t)
	_, otherRoots := testConfig(t)

	tests := []struct {
		name         string
		archive      func() []byte
		roots        *x509.CertPool
		errorContain string
	}{
		{
			name:    "valid pass",
			archive: func() []byte { return archive },
			roots:   roots,
		},
		{
			name:    "valid pass without trust pool",
			archive: func() []byte { return archive },
		},
		{
			name: "tampered pass.json",
			archive: func() []byte {
				return rebuild(t, archive, func(e map[string][]byte, n []string) []string {
					e[PassFile] = []byte(strings.Replace(string(e[PassFile]), "John Doe", "Jane Doe", 1))
					return n
				})
			},
			roots:        roots,
			errorContain: "digest mismatch for pass.json",
		},
		{
			name: "entry missing from manifest",
			archive: func() []byte {
				return rebuild(t, archive, func(e map[string][]byte, n []string) []string {
					e["logo.png"] = []byte("unlisted")
					return append(n, "logo.png")
				})
			},
			roots:        roots,
			errorContain: "logo.png is not listed",
		},
		{
			name: "manifest lists a removed entry",
			archive: func() []byte {
				return rebuild(t, archive, func(e map[string][]byte, n []string) []string {
					return without(n, Icon3xFile)
				})
			},
			roots:        roots,
			errorContain: Icon3xFile,
		},
		{
			name: "required entry missing",
			archive: func() []byte {
				return rebuild(t, archive, func(e map[string][]byte, n []string) []string {
					return without(n, SignatureFile)
				})
			},
			roots:        roots,
			errorContain: "missing signature",
		},
		{
			name: "reformatted manifest breaks the signature",
			archive: func() []byte {
				return rebuild(t, archive, func(e map[string][]byte, n []string) []string {
					e[ManifestFile] = []byte(strings.Replace(string(e[ManifestFile]), ",", ", ", 1))
					return n
				})
			},
			roots:        roots,
			errorContain: "signature does not verify",
		},
		{
			name:         "untrusted signer",
			archive:      func() []byte { return archive },
			roots:        otherRoots,
			errorContain: "signature does not verify",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verification, err := Verify(tt.archive(), tt.roots)
			if tt.errorContain == "" {
				if err != nil {
					t.Fatalf("Verify() error = %v", err)
				}
				if verification.Signer == nil {
					t.Error("expected signer certificate")
				}
				return
			}

			if err == nil {
				t.Fatal("expected error, got nil")
			}
			assertPassCode(t, err, ErrCodeArchive)
			if !strings.Contains(err.Error(), tt.errorContain) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.errorContain)
			}
		})
	}
}

func TestVerifyDigestMismatchCarriesChecksumCode(t *testing.T) {
	archive, roots := generateSigned(t)

	tampered := rebuild(t, archive, func(e map[string][]byte, n []string) []string {
		e[StripFile] = append(append([]byte(nil), e[StripFile]...), 0)
		return n
	})

	_, err := Verify(tampered, roots)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	assertPassCode(t, err, ErrCodeArchive)

	var cryptoErr *crypto.CryptoError
	if !errors.As(err, &cryptoErr) {
		t.Fatalf("expected a wrapped *crypto.CryptoError, got %v", err)
	}
	if cryptoErr.Code() != crypto.ErrCodeInvalidChecksum {
		t.Errorf("crypto error code = %s, want %s", cryptoErr.Code(), crypto.ErrCodeInvalidChecksum)
	}
	if !strings.Contains(err.Error(), "digest mismatch for strip.png") {
		t.Errorf("error %q does not name strip.png", err.Error())
	}
}
