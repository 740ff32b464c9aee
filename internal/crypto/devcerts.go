package crypto

// devcerts.go generates a self-signed certificate chain shaped like the Apple one
// (root CA standing in for WWDR, Pass Type ID leaf, encrypted key).
//
// The chain is only useful for local development and tests: wallet software will not
// accept passes signed with it.

import (
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"path/filepath"
	"time"
)

// default file names written by GenerateDevelopmentChain
const (
	DevWWDRCertFile   = "wwdr.pem"
	DevSignerCertFile = "signerCert.pem"
	DevSignerKeyFile  = "signerKey.pem"
)

// DevelopmentChainOptions controls GenerateDevelopmentChain.
type DevelopmentChainOptions struct {
	PassTypeIdentifier string
	TeamIdentifier     string
	KeyPassphrase      string

	// Validity of the generated certificates (default one year)
	Validity time.Duration

	// NotBefore defaults to now minus one hour. Set it in the past together with a short
	// Validity to produce an expired chain.
	NotBefore time.Time

	// KeyBits defaults to 2048
	KeyBits int
}

// DevelopmentChain holds the generated certificates and the paths they were written to.
type DevelopmentChain struct {
	Root           *x509.Certificate
	Signer         *x509.Certificate
	WWDRCertPath   string
	SignerCertPath string
	SignerKeyPath  string
}

// SigningChain returns the chain in the form expected by a Signer
func (c *DevelopmentChain) SigningChain(passphrase string) SigningChain {
	return SigningChain{
		WWDRCertPath:   c.WWDRCertPath,
		SignerCertPath: c.SignerCertPath,
		SignerKeyPath:  c.SignerKeyPath,
		KeyPassphrase:  passphrase,
	}
}

// GenerateDevelopmentChain creates a root CA and a pass signing certificate and writes
// wwdr.pem, signerCert.pem and signerKey.pem into dir.
func GenerateDevelopmentChain(dir string, opts DevelopmentChainOptions) (*DevelopmentChain, error) {
	if opts.PassTypeIdentifier == "" {
		opts.PassTypeIdentifier = "pass.com.example.businesscard"
	}
	if opts.TeamIdentifier == "" {
		opts.TeamIdentifier = "TEAMID1234"
	}
	if opts.Validity == 0 {
		opts.Validity = 365 * 24 * time.Hour
	}
	if opts.NotBefore.IsZero() {
		opts.NotBefore = time.Now().Add(-time.Hour)
	}
	if opts.KeyBits == 0 {
		opts.KeyBits = 2048
	}

	rootKey, err := GenerateRSAKeyPair(opts.KeyBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate root key: %w", err)
	}

	rootTemplate := &x509.Certificate{
		SerialNumber: randomSerial(),
		Subject: pkix.Name{
			CommonName:         "Development Wallet Pass CA",
			OrganizationalUnit: []string{"G4"},
			Organization:       []string{"walletpass development"},
		},
		NotBefore:             opts.NotBefore,
		NotAfter:              opts.NotBefore.Add(opts.Validity),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
	}

	rootDER, err := x509.CreateCertificate(rand.Reader, rootTemplate, rootTemplate, &rootKey.PublicKey, rootKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create root certificate: %w", err)
	}
	root, err := x509.ParseCertificate(rootDER)
	if err != nil {
		return nil, fmt.Errorf("failed to parse root certificate: %w", err)
	}

	signerKey, err := GenerateRSAKeyPair(opts.KeyBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signer key: %w", err)
	}

	signerTemplate := &x509.Certificate{
		SerialNumber: randomSerial(),
		Subject: pkix.Name{
			CommonName:         "Pass Type ID: " + opts.PassTypeIdentifier,
			OrganizationalUnit: []string{opts.TeamIdentifier},
			Organization:       []string{"walletpass development"},
		},
		NotBefore:   opts.NotBefore,
		NotAfter:    opts.NotBefore.Add(opts.Validity),
		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}

	signerDER, err := x509.CreateCertificate(rand.Reader, signerTemplate, root, &signerKey.PublicKey, rootKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create signer certificate: %w", err)
	}
	signer, err := x509.ParseCertificate(signerDER)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signer certificate: %w", err)
	}

	if err := SaveCertificateToPEMFile(root, dir, DevWWDRCertFile); err != nil {
		return nil, err
	}
	if err := SaveCertificateToPEMFile(signer, dir, DevSignerCertFile); err != nil {
		return nil, err
	}
	if err := SavePrivateKeyToPEMFile(signerKey, opts.KeyPassphrase, dir, DevSignerKeyFile); err != nil {
		return nil, err
	}

	return &DevelopmentChain{
		Root:           root,
		Signer:         signer,
		WWDRCertPath:   filepath.Join(dir, DevWWDRCertFile),
		SignerCertPath: filepath.Join(dir, DevSignerCertFile),
		SignerKeyPath:  filepath.Join(dir, DevSignerKeyFile),
	}, nil
}

func randomSerial() *big.Int {
	limit := new(big.Int).Lsh(big.NewInt(1), 62)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return big.NewInt(time.Now().UnixNano())
	}
	return n
}
