package pass

import (
	"crypto/x509"
	"fmt"
	"sort"

	"github.com/digital-business-cards/walletpass/internal/crypto"
)

// requiredEntries must be present in every pass archive
var requiredEntries = []string{PassFile, IconFile, StripFile, ManifestFile, SignatureFile}

// Verification describes a verified archive.
type Verification struct {
	Entries      []string
	SerialNumber string
	Signer       *x509.Certificate
}

// Verify checks a .pkpass archive: flat layout, required entries, a manifest that covers
// exactly the other entries with correct SHA-1 digests, and a detached signature over the
// manifest bytes.
//
// When roots is nil the signature is checked but the signer chain is not.
func Verify(archive []byte, roots *x509.CertPool) (*Verification, error) {
	entries, names, err := ReadArchive(archive)
	if err != nil {
		return nil, err
	}

	for _, name := range requiredEntries {
		if _, ok := entries[name]; !ok {
			return nil, NewArchiveError(fmt.Sprintf("archive is missing %s", name))
		}
	}

	digests, err := ParseManifest(entries[ManifestFile])
	if err != nil {
		return nil, err
	}

	for _, name := range names {
		if name == ManifestFile || name == SignatureFile {
			continue
		}
		digest, ok := digests[name]
		if !ok {
			return nil, NewArchiveError(fmt.Sprintf("%s is not listed in manifest.json", name))
		}
		if !crypto.VerifyHash(entries[name], digest) {
			return nil, WrapArchiveError(crypto.NewChecksumError(fmt.Sprintf("digest mismatch for %s", name)), "manifest check failed")
		}
	}
	for name := range digests {
		if _, ok := entries[name]; !ok || name == ManifestFile || name == SignatureFile {
			return nil, NewArchiveError(fmt.Sprintf("manifest.json lists %s which is not a payload entry", name))
		}
	}

	signer, err := crypto.VerifyDetachedSignature(entries[SignatureFile], entries[ManifestFile], roots)
	if err != nil {
		return nil, WrapArchiveError(err, "signature does not verify")
	}

	descriptor, err := parseDescriptor(entries[PassFile])
	if err != nil {
		return nil, err
	}

	sort.Strings(names)
	return &Verification{
		Entries:      names,
		SerialNumber: descriptor.SerialNumber,
		Signer:       signer,
	}, nil
}
