package pass

import (
	"encoding/json"
	"fmt"

	"github.com/digital-business-cards/walletpass/internal/crypto"
)

const (
	ManifestFile  = "manifest.json"
	SignatureFile = "signature"
)

// Manifest maps each payload file name to the SHA-1 hex digest of its bytes.
//
// Bytes is the serialized form that is signed and archived; it is never regenerated after signing.
type Manifest struct {
	Digests map[string]string
	Bytes   []byte
}

// BuildManifest hashes every payload file and freezes the manifest bytes.
//
// The payload is sealed: files added afterwards would not be covered by the manifest.
func BuildManifest(payload *Payload) (*Manifest, error) {
	files := payload.Files()
	if len(files) == 0 {
		return nil, NewIOError("payload is empty")
	}

	digests := make(map[string]string, len(files))
	for _, f := range files {
		digest, err := crypto.Hash(f.Data)
		if err != nil {
			return nil, WrapIOError(err, fmt.Sprintf("failed to hash %s", f.Name))
		}
		digests[f.Name] = digest
	}
	payload.seal()

	data, err := json.Marshal(digests)
	if err != nil {
		return nil, WrapIOError(err, "failed to serialize manifest")
	}
	frozen, err := crypto.CanonicalizeJSON(data)
	if err != nil {
		return nil, WrapIOError(err, "failed to canonicalize manifest")
	}

	return &Manifest{Digests: digests, Bytes: frozen}, nil
}

// ParseManifest decodes manifest bytes read from an archive.
func ParseManifest(data []byte) (map[string]string, error) {
	var digests map[string]string
	if err := json.Unmarshal(data, &digests); err != nil {
		return nil, WrapArchiveError(err, "manifest.json is not a JSON object of digests")
	}
	return digests, nil
}
