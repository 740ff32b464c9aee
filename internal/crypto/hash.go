// this file provides the digest used for pass manifests.
//
// Apple Wallet validates every entry of manifest.json as the SHA-1 of the file's bytes,
// encoded as lowercase hex. The algorithm is fixed by the pass format and is not configurable.

package crypto

import (
	"bytes"
	"crypto/sha1" // #nosec G505 -- SHA-1 is mandated by the pass manifest format
	"encoding/hex"
	"fmt"
	"io"
)

// Hash calculates the SHA-1 manifest digest of data and returns it as a lowercase hex string.
//
// Empty input is rejected: every pass payload file has content, so an empty
// buffer indicates an upstream read failure.
func Hash(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("data is empty")
	}
	return HashReader(bytes.NewReader(data))
}

// HashReader calculates the SHA-1 manifest digest of everything read from r.
//
// Use this when reading entries back out of an archive.
func HashReader(r io.Reader) (string, error) {
	hasher := sha1.New() // #nosec G401
	if _, err := io.Copy(hasher, r); err != nil {
		return "", fmt.Errorf("failed to hash data: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// VerifyHash verifies that data matches the expected manifest digest.
func VerifyHash(data []byte, expectedDigest string) bool {
	digest, err := Hash(data)
	if err != nil {
		return false
	}
	return digest == expectedDigest
}
