// this file contains functions to load and save the private key of the pass signing certificate.
//
// Pass Type ID keys are normally exported from the macOS keychain as a .p12 and converted with
// openssl, so the loader accepts the formats openssl produces:
//   - PKCS#8 "PRIVATE KEY" and encrypted PKCS#8 "ENCRYPTED PRIVATE KEY"
//   - PKCS#1 "RSA PRIVATE KEY" and SEC 1 "EC PRIVATE KEY", optionally with legacy
//     Proc-Type/DEK-Info encryption
//
// Keys written by this package are PKCS#8, encrypted when a passphrase is given.

package crypto

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/youmark/pkcs8"
)

// ReadPrivateKeyFromPEMFile loads the signing key from a PEM file.
// passphrase may be empty for unencrypted keys.
func ReadPrivateKeyFromPEMFile(path, passphrase string) (crypto.Signer, error) {
	pemData, err := readScopedFile(path)
	if err != nil {
		return nil, WrapKeyManagementError(err, fmt.Sprintf("failed to read %s", path))
	}
	return ParsePrivateKeyPEM(pemData, passphrase)
}

// ParsePrivateKeyPEM parses the first private key block in pemData.
func ParsePrivateKeyPEM(pemData []byte, passphrase string) (crypto.Signer, error) {
	var block *pem.Block
	remaining := pemData
	for {
		block, remaining = pem.Decode(remaining)
		if block == nil {
			return nil, NewKeyManagementError("no private key found in PEM data")
		}
		switch block.Type {
		case "PRIVATE KEY", "ENCRYPTED PRIVATE KEY", "RSA PRIVATE KEY", "EC PRIVATE KEY":
			return parsePrivateKeyBlock(block, passphrase)
		}
	}
}

func parsePrivateKeyBlock(block *pem.Block, passphrase string) (crypto.Signer, error) {
	var (
		key any
		err error
	)

	switch block.Type {
	case "ENCRYPTED PRIVATE KEY":
		if passphrase == "" {
			return nil, NewKeyManagementError("private key is encrypted but no passphrase was configured")
		}
		key, err = pkcs8.ParsePKCS8PrivateKey(block.Bytes, []byte(passphrase))
		if err != nil {
			return nil, WrapKeyManagementError(err, "failed to decrypt private key (check the passphrase)")
		}

	case "PRIVATE KEY":
		key, err = x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, WrapKeyManagementError(err, "failed to parse PKCS#8 private key")
		}

	default:
		der := block.Bytes
		//nolint:staticcheck // legacy PEM encryption is still what `openssl rsa -des3` writes
		if x509.IsEncryptedPEMBlock(block) {
			if passphrase == "" {
				return nil, NewKeyManagementError("private key is encrypted but no passphrase was configured")
			}
			//nolint:staticcheck
			der, err = x509.DecryptPEMBlock(block, []byte(passphrase))
			if err != nil {
				if errors.Is(err, x509.IncorrectPasswordError) {
					return nil, WrapKeyManagementError(err, "failed to decrypt private key (check the passphrase)")
				}
				return nil, WrapKeyManagementError(err, "failed to decrypt private key")
			}
		}
		if block.Type == "RSA PRIVATE KEY" {
			key, err = x509.ParsePKCS1PrivateKey(der)
		} else {
			key, err = x509.ParseECPrivateKey(der)
		}
		if err != nil {
			return nil, WrapKeyManagementError(err, fmt.Sprintf("failed to parse %s", block.Type))
		}
	}

	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, NewKeyManagementError(fmt.Sprintf("unsupported private key type %T", key))
	}
	return signer, nil
}

// GenerateRSAKeyPair generates a new RSA key pair with the specified bit size
// minimum key size is 2048 bits - key size must be a multiple of 256
func GenerateRSAKeyPair(bits int) (*rsa.PrivateKey, error) {
	if bits < 2048 {
		return nil, fmt.Errorf("key size must be at least 2048 bits")
	}

	if bits%256 != 0 {
		return nil, fmt.Errorf("key size should be a multiple of 256")
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key pair: %w", err)
	}

	return privateKey, nil
}

// SavePrivateKeyToPEMFile saves a private key in PKCS#8 format.
// When passphrase is not empty the key is written as an encrypted PKCS#8 block.
//
// Parameters:
//   - baseDir: The base directory to scope file access (e.g., "./certs")
//   - filename: The filename within the base directory (e.g., "signerKey.pem")
func SavePrivateKeyToPEMFile(privateKey crypto.Signer, passphrase, baseDir, filename string) error {
	var pw []byte
	blockType := "PRIVATE KEY"
	if passphrase != "" {
		pw = []byte(passphrase)
		blockType = "ENCRYPTED PRIVATE KEY"
	}

	der, err := pkcs8.MarshalPrivateKey(privateKey, pw, nil)
	if err != nil {
		return fmt.Errorf("failed to marshal private key: %w", err)
	}

	return writePEMFile(&pem.Block{Type: blockType, Bytes: der}, baseDir, filename, 0600)
}

// SaveCertificateToPEMFile saves a certificate as a PEM CERTIFICATE block.
func SaveCertificateToPEMFile(cert *x509.Certificate, baseDir, filename string) error {
	return writePEMFile(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw}, baseDir, filename, 0644)
}

func writePEMFile(block *pem.Block, baseDir, filename string, perm os.FileMode) error {
	root, err := os.OpenRoot(baseDir)
	if err != nil {
		return fmt.Errorf("failed to open root directory %s: %w", baseDir, err)
	}
	defer root.Close()

	file, err := root.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := pem.Encode(file, block); err != nil {
		return fmt.Errorf("failed to encode PEM: %w", err)
	}

	return nil
}
