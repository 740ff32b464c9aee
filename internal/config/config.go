package config

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"

	"github.com/digital-business-cards/walletpass/internal/crypto"
	"github.com/digital-business-cards/walletpass/internal/logger"
	"github.com/digital-business-cards/walletpass/internal/pass"
)

// Environment variables with defaults
type ServerEnvironment struct {

	// http server settings
	Environment           string        `env:"ENVIRONMENT,default=dev"`
	Host                  string        `env:"HOST,default=0.0.0.0"`
	Port                  int           `env:"PORT,default=8080"`
	LogLevel              string        `env:"LOG_LEVEL,default=debug"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT,default=10s"`
	ReadTimeout           time.Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout          time.Duration `env:"WRITE_TIMEOUT,default=30s"`
	IdleTimeout           time.Duration `env:"IDLE_TIMEOUT,default=60s"`
	RequestTimeout        time.Duration `env:"REQUEST_TIMEOUT,default=30s"`
	RateLimitRPS          int32         `env:"RATE_LIMIT_RPS,default=100"`
	RateLimitBurst        int32         `env:"RATE_LIMIT_BURST,default=200"`
	MaxRequestBodyBytes   int64         `env:"MAX_REQUEST_BODY_BYTES,default=65536"`

	// pass identity - checked per request (see pass.Config.Validate), not at startup
	PassTypeIdentifier string        `env:"PASS_TYPE_IDENTIFIER"`
	TeamIdentifier     string        `env:"TEAM_IDENTIFIER"`
	OrganizationName   string        `env:"ORGANIZATION_NAME,default=Digital Business Card"`
	PassDescription    string        `env:"PASS_DESCRIPTION,default=Digital Business Card"`
	SupportContact     string        `env:"SUPPORT_CONTACT,default=support@example.com"`
	PassValidity       time.Duration `env:"PASS_VALIDITY,default=8760h"`

	// web service fields are static - the pass update protocol is not implemented
	WebServiceURL       string `env:"WEB_SERVICE_URL,default=https://example.com/passes/"`
	AuthenticationToken string `env:"AUTHENTICATION_TOKEN,default=vxwxd7J8AlNNFPS8k0a0FfUFtq0ewzFdc"`

	// signing
	WWDRCertPath        string        `env:"WWDR_CERT_PATH"`
	SignerCertPath      string        `env:"SIGNER_CERT_PATH"`
	SignerKeyPath       string        `env:"SIGNER_KEY_PATH"`
	SignerKeyPassphrase string        `env:"SIGNER_KEY_PASSPHRASE"`
	SignerBackend       string        `env:"SIGNER_BACKEND,default=native"`
	OpenSSLPath         string        `env:"OPENSSL_PATH,default=openssl"`
	SigningTimeout      time.Duration `env:"SIGNING_TIMEOUT,default=10s"`
	StagingDir          string        `env:"STAGING_DIR"`
}

const (
	SignerBackendNative  = "native"
	SignerBackendOpenSSL = "openssl"
)

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"prod":    true,
	"staging": true,
}

// NewServerConfig loads environment variables and returns a ServerEnvironment struct that contains the values
func NewServerConfig() (*ServerEnvironment, error) {
	var cfg ServerEnvironment

	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validateConfig checks the settings that must be correct before the process can start.
func validateConfig(cfg *ServerEnvironment) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid ENVIRONMENT: %s", cfg.Environment)
	}
	if !logger.ValidLogLevel(cfg.LogLevel) {
		return fmt.Errorf("invalid LOG_LEVEL: %s", cfg.LogLevel)
	}
	if cfg.SignerBackend != SignerBackendNative && cfg.SignerBackend != SignerBackendOpenSSL {
		return fmt.Errorf("SIGNER_BACKEND must be %q or %q, got %q", SignerBackendNative, SignerBackendOpenSSL, cfg.SignerBackend)
	}
	if cfg.SigningTimeout <= 0 {
		return fmt.Errorf("SIGNING_TIMEOUT must be greater than 0")
	}
	if cfg.PassValidity <= 0 {
		return fmt.Errorf("PASS_VALIDITY must be greater than 0")
	}
	if cfg.MaxRequestBodyBytes < 1 {
		return fmt.Errorf("MAX_REQUEST_BODY_BYTES must be at least 1")
	}

	return nil
}

// PassConfig returns the read-only pass settings injected into the packager.
func (cfg *ServerEnvironment) PassConfig() pass.Config {
	return pass.Config{
		PassTypeIdentifier:  cfg.PassTypeIdentifier,
		TeamIdentifier:      cfg.TeamIdentifier,
		OrganizationName:    cfg.OrganizationName,
		Description:         cfg.PassDescription,
		SupportContact:      cfg.SupportContact,
		Validity:            cfg.PassValidity,
		WebServiceURL:       cfg.WebServiceURL,
		AuthenticationToken: cfg.AuthenticationToken,
		WWDRCertPath:        cfg.WWDRCertPath,
		SignerCertPath:      cfg.SignerCertPath,
		SignerKeyPath:       cfg.SignerKeyPath,
		SignerKeyPassphrase: cfg.SignerKeyPassphrase,
	}
}

// NewSigner returns the manifest signer selected by SIGNER_BACKEND.
func (cfg *ServerEnvironment) NewSigner() crypto.Signer {
	if cfg.SignerBackend == SignerBackendOpenSSL {
		return crypto.NewOpenSSLSigner(cfg.OpenSSLPath, cfg.SigningTimeout, cfg.StagingDir)
	}
	return crypto.NewPKCS7Signer(cfg.SigningTimeout)
}
