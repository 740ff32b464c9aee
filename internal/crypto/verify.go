package crypto

import (
	"crypto/x509"

	"go.mozilla.org/pkcs7"
)

// VerifyDetachedSignature checks that signature is a valid detached CMS signature over content.
//
// When roots is nil only the signature itself is checked. Otherwise the embedded certificates
// must chain to one of roots at the signing time recorded in the signature.
//
// Returns the signing certificate on success.
func VerifyDetachedSignature(signature, content []byte, roots *x509.CertPool) (*x509.Certificate, error) {
	if len(signature) == 0 {
		return nil, NewSignatureError("signature is empty")
	}

	p7, err := pkcs7.Parse(signature)
	if err != nil {
		return nil, WrapSignatureError(err, "failed to parse signature")
	}

	if len(p7.Content) != 0 {
		return nil, NewSignatureError("signature is not detached: it embeds content")
	}
	p7.Content = content

	if roots == nil {
		err = p7.Verify()
	} else {
		err = p7.VerifyWithChain(roots)
	}
	if err != nil {
		return nil, WrapSignatureError(err, "signature verification failed")
	}

	return p7.GetOnlySigner(), nil
}
