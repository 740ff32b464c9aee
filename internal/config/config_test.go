package config

import (
	"strings"
	"testing"
	"time"

	"github.com/digital-business-cards/walletpass/internal/crypto"
)

func TestNewServerConfigDefaults(t *testing.T) {
	cfg, err := NewServerConfig()
	if err != nil {
		t.Fatalf("NewServerConfig() error = %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.SignerBackend != SignerBackendNative {
		t.Errorf("SignerBackend = %s, want %s", cfg.SignerBackend, SignerBackendNative)
	}
	if cfg.PassValidity != 365*24*time.Hour {
		t.Errorf("PassValidity = %s, want one year", cfg.PassValidity)
	}
	if cfg.SigningTimeout != 10*time.Second {
		t.Errorf("SigningTimeout = %s, want 10s", cfg.SigningTimeout)
	}
}

func TestNewServerConfigValidation(t *testing.T) {
	tests := []struct {
		name         string
		env          map[string]string
		errorContain string
	}{
		{"port out of range", map[string]string{"PORT": "70000"}, "PORT"},
		{"unknown environment", map[string]string{"ENVIRONMENT": "qa"}, "ENVIRONMENT"},
		{"unknown log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"unknown signer backend", map[string]string{"SIGNER_BACKEND": "hsm"}, "SIGNER_BACKEND"},
		{"zero signing timeout", map[string]string{"SIGNING_TIMEOUT": "0s"}, "SIGNING_TIMEOUT"},
		{"zero pass validity", map[string]string{"PASS_VALIDITY": "0s"}, "PASS_VALIDITY"},
		{"zero body limit", map[string]string{"MAX_REQUEST_BODY_BYTES": "0"}, "MAX_REQUEST_BODY_BYTES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := NewServerConfig()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errorContain) {
				t.Errorf("error %q does not mention %s", err.Error(), tt.errorContain)
			}
		})
	}
}

func TestMissingPassSettingsAreNotFatalAtStartup(t *testing.T) {
	t.Setenv("PASS_TYPE_IDENTIFIER", "")
	t.Setenv("WWDR_CERT_PATH", "/does/not/exist.pem")

	cfg, err := NewServerConfig()
	if err != nil {
		t.Fatalf("NewServerConfig() error = %v", err)
	}
	if err := cfg.PassConfig().Validate(); err == nil {
		t.Error("expected the pass configuration to be reported incomplete")
	}
}

func TestPassConfig(t *testing.T) {
	t.Setenv("PASS_TYPE_IDENTIFIER", "pass.com.example.card")
	t.Setenv("TEAM_IDENTIFIER", "ABCDE12345")
	t.Setenv("SIGNER_KEY_PASSPHRASE", "secret")
	t.Setenv("PASS_VALIDITY", "720h")
	t.Setenv("WWDR_CERT_PATH", "/certs/wwdr.pem")

	cfg, err := NewServerConfig()
	if err != nil {
		t.Fatalf("NewServerConfig() error = %v", err)
	}

	pc := cfg.PassConfig()
	if pc.PassTypeIdentifier != "pass.com.example.card" || pc.TeamIdentifier != "ABCDE12345" {
		t.Errorf("identifiers not mapped: %+v", pc)
	}
	if pc.Validity != 720*time.Hour {
		t.Errorf("Validity = %s, want 720h", pc.Validity)
	}
	chain := pc.Chain()
	if chain.KeyPassphrase != "secret" || chain.WWDRCertPath != "/certs/wwdr.pem" {
		t.Errorf("signing chain not mapped: %+v", chain)
	}
}

func TestNewSigner(t *testing.T) {
	t.Run("native", func(t *testing.T) {
		cfg := &ServerEnvironment{SignerBackend: SignerBackendNative, SigningTimeout: time.Second}
		if _, ok := cfg.NewSigner().(*crypto.PKCS7Signer); !ok {
			t.Errorf("expected *crypto.PKCS7Signer, got %T", cfg.NewSigner())
		}
	})

	t.Run("openssl", func(t *testing.T) {
		cfg := &ServerEnvironment{
			SignerBackend:  SignerBackendOpenSSL,
			OpenSSLPath:    "/usr/bin/openssl",
			SigningTimeout: 3 * time.Second,
			StagingDir:     t.TempDir(),
		}
		signer, ok := cfg.NewSigner().(*crypto.OpenSSLSigner)
		if !ok {
			t.Fatalf("expected *crypto.OpenSSLSigner, got %T", cfg.NewSigner())
		}
		if signer.Path != "/usr/bin/openssl" || signer.Timeout != 3*time.Second || signer.StagingRoot != cfg.StagingDir {
			t.Errorf("unexpected signer settings %+v", signer)
		}
	})
}
