// manifest.json is signed byte for byte, so it is frozen in RFC 8785 canonical form before hashing/signing.
// this implementation uses the gowebpki/jcs library to perform this canonicalization
package crypto

import (
	"github.com/gowebpki/jcs"
)

// CanonicalizeJSON converts JSON to canonical form per RFC 8785
//
// If the input is empty or not valid JSON, a validation error is returned.
func CanonicalizeJSON(jsonData []byte) ([]byte, error) {
	if len(jsonData) == 0 {
		return nil, NewValidationError("cannot canonicalize empty JSON")
	}
	canonical, err := jcs.Transform(jsonData)
	if err != nil {
		return nil, WrapValidationError(err, "failed to canonicalize JSON")
	}
	return canonical, nil
}
