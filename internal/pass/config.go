package pass

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/digital-business-cards/walletpass/internal/crypto"
)

// DefaultValidity is the offset from generation time to the pass expirationDate.
const DefaultValidity = 365 * 24 * time.Hour

// configuration item names reported by Validate
const (
	ItemPassTypeIdentifier = "passTypeIdentifier"
	ItemTeamIdentifier     = "teamIdentifier"
	ItemWWDRCertificate    = "wwdrCertificate"
	ItemSignerCertificate  = "signerCertificate"
	ItemSignerKey          = "signerKey"
)

// Config is the process-wide, read-only pass configuration.
//
// It is built once at startup and injected into the Packager; nothing in this package reads the
// environment.
type Config struct {
	PassTypeIdentifier string
	TeamIdentifier     string
	OrganizationName   string
	Description        string
	SupportContact     string

	// Validity is added to the generation time to produce expirationDate (default one year)
	Validity time.Duration

	// static values: the pass update web service is not implemented
	WebServiceURL       string
	AuthenticationToken string

	WWDRCertPath        string
	SignerCertPath      string
	SignerKeyPath       string
	SignerKeyPassphrase string
}

// Validate checks that the identifiers are set and that the three certificate/key files
// exist and are readable.
//
// Every problem is reported, not just the first: the returned error is a configuration
// PassError whose Fields() lists each failing item.
func (c Config) Validate() error {
	var items []string
	var errs error

	if strings.TrimSpace(c.PassTypeIdentifier) == "" {
		items = append(items, ItemPassTypeIdentifier)
		errs = multierr.Append(errs, fmt.Errorf("pass type identifier is not set"))
	}
	if strings.TrimSpace(c.TeamIdentifier) == "" {
		items = append(items, ItemTeamIdentifier)
		errs = multierr.Append(errs, fmt.Errorf("team identifier is not set"))
	}

	files := []struct {
		item  string
		label string
		path  string
	}{
		{ItemWWDRCertificate, "WWDR certificate", c.WWDRCertPath},
		{ItemSignerCertificate, "signer certificate", c.SignerCertPath},
		{ItemSignerKey, "signer key", c.SignerKeyPath},
	}
	for _, f := range files {
		if err := checkReadable(f.path); err != nil {
			items = append(items, f.item)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", f.label, err))
		}
	}

	if errs != nil {
		return NewConfigurationError(items, errs)
	}
	return nil
}

// Chain returns the signing chain referenced by the configuration.
func (c Config) Chain() crypto.SigningChain {
	return crypto.SigningChain{
		WWDRCertPath:   c.WWDRCertPath,
		SignerCertPath: c.SignerCertPath,
		SignerKeyPath:  c.SignerKeyPath,
		KeyPassphrase:  c.SignerKeyPassphrase,
	}
}

func (c Config) validity() time.Duration {
	if c.Validity <= 0 {
		return DefaultValidity
	}
	return c.Validity
}

func checkReadable(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is not set")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s is empty", path)
	}
	return nil
}
