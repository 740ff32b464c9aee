package crypto

// certs.go - loading and checking the certificates used to sign pass manifests.
//
// A pass is signed with the Pass Type ID certificate issued by Apple. The Apple WWDR
// intermediate certificate is embedded in the signature so wallet software can build the
// chain to the Apple root.

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ValidateCertificateChain validates an X.509 certificate chain against a set of trusted root CAs.
//
// Parameters:
//   - certChain: Certificate chain (leaf first, root last)
//   - roots: Root CA pool (nil = system roots, custom pool = testing/private CA)
//   - at: the time the chain must be valid at (zero = now)
func ValidateCertificateChain(certChain []*x509.Certificate, roots *x509.CertPool, at time.Time) error {
	if len(certChain) == 0 {
		return NewInternalError("empty certificate chain")
	}
	if at.IsZero() {
		at = time.Now()
	}

	// Build intermediate pool from chain (excluding leaf)
	intermediates := x509.NewCertPool()
	if len(certChain) > 1 {
		for _, cert := range certChain[1:] {
			intermediates.AddCert(cert)
		}
	}

	verifyOpts := x509.VerifyOptions{
		Roots:         roots, // nil = system roots
		Intermediates: intermediates,
		CurrentTime:   at,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	}

	leaf := certChain[0]
	chains, err := leaf.Verify(verifyOpts)
	if err != nil {
		return WrapCertificateError(err, "certificate chain validation failed")
	}
	if len(chains) == 0 {
		return NewCertificateError("no valid certificate chains found")
	}

	return nil
}

// ParseCertificateChain parses one or more X.509 certificates.
// The certificates are returned in the order they appear in the data.
//
// PEM input may contain several concatenated CERTIFICATE blocks (non-certificate blocks are skipped).
// Input without any PEM block is parsed as DER, which is how Apple distributes the WWDR
// certificate (.cer).
func ParseCertificateChain(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	var block *pem.Block
	remaining := data
	sawPEM := false

	for {
		block, remaining = pem.Decode(remaining)
		if block == nil {
			break
		}
		sawPEM = true

		if block.Type != "CERTIFICATE" {
			continue
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, WrapCertificateError(err, "failed to parse certificate")
		}

		certs = append(certs, cert)
	}

	if !sawPEM && len(data) > 0 {
		derCerts, err := x509.ParseCertificates(data)
		if err != nil {
			return nil, WrapCertificateError(err, "failed to parse DER certificate")
		}
		certs = derCerts
	}

	if len(certs) == 0 {
		return nil, NewValidationError("no certificates found in certificate data")
	}

	return certs, nil
}

// ReadCertChainFromFile loads a certificate chain (PEM or DER) from a file.
//
// Parameters:
//   - path: The file path (e.g., "./certs/signerCert.pem" or "./certs/wwdr.cer")
func ReadCertChainFromFile(path string) ([]*x509.Certificate, error) {
	data, err := readScopedFile(path)
	if err != nil {
		return nil, WrapCertificateError(err, fmt.Sprintf("failed to read %s", path))
	}

	return ParseCertificateChain(data)
}

// LoadCustomRootCAs loads root CAs from a PEM/DER file into a cert pool.
func LoadCustomRootCAs(path string) (*x509.CertPool, error) {
	if path == "" {
		return nil, fmt.Errorf("nil custom roots path received")
	}

	certs, err := ReadCertChainFromFile(path)
	if err != nil {
		return nil, err
	}

	pool := x509.NewCertPool()
	for _, cert := range certs {
		pool.AddCert(cert)
	}

	return pool, nil
}

// CheckCertificateValidity returns a certificate error if cert is not valid at the given time.
// The signer checks this up front so an expired Pass Type ID certificate produces a clear
// message instead of a pass the wallet silently rejects.
func CheckCertificateValidity(cert *x509.Certificate, at time.Time) error {
	if at.Before(cert.NotBefore) {
		return NewCertificateError(fmt.Sprintf("certificate %q is not valid before %s",
			cert.Subject.CommonName, cert.NotBefore.UTC().Format(time.RFC3339)))
	}
	if at.After(cert.NotAfter) {
		return NewCertificateError(fmt.Sprintf("certificate %q expired at %s",
			cert.Subject.CommonName, cert.NotAfter.UTC().Format(time.RFC3339)))
	}
	return nil
}

// ValidateKeyMatchesCertificate checks that the private key belongs to the signing certificate.
//
// Returns error if:
//   - the key type is unsupported
//   - the public keys don't match
func ValidateKeyMatchesCertificate(cert *x509.Certificate, key crypto.Signer) error {
	switch pub := key.Public().(type) {
	case *rsa.PublicKey:
		certKey, ok := cert.PublicKey.(*rsa.PublicKey)
		if !ok {
			return NewKeyManagementError(fmt.Sprintf("signing certificate contains %T key, but the private key is RSA", cert.PublicKey))
		}
		if !pub.Equal(certKey) {
			return NewKeyManagementError("private key does not match the signing certificate")
		}

	case *ecdsa.PublicKey:
		certKey, ok := cert.PublicKey.(*ecdsa.PublicKey)
		if !ok {
			return NewKeyManagementError(fmt.Sprintf("signing certificate contains %T key, but the private key is ECDSA", cert.PublicKey))
		}
		if !pub.Equal(certKey) {
			return NewKeyManagementError("private key does not match the signing certificate")
		}

	default:
		return NewKeyManagementError(fmt.Sprintf("unsupported private key type: %T (expected RSA or ECDSA)", pub))
	}

	return nil
}

// readScopedFile reads a file through an os.Root opened on its directory
func readScopedFile(path string) ([]byte, error) {
	dir := filepath.Dir(path)
	filename := filepath.Base(path)

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory %s: %w", dir, err)
	}
	defer root.Close()

	return root.ReadFile(filename)
}
