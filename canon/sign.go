package canon

import (
	"github.com/cayerbe/gns-core/gnserr"
	"github.com/cayerbe/gns-core/identity"
)

// Signer is satisfied by *identity.Identity; kept narrow so Sign accepts
// any type with these two methods, not only an identity.
type Signer interface {
	Sign(message []byte) []byte
	PublicBytes() []byte
}

// Sign canonicalizes value and signs the resulting bytes, returning both
// the canonical encoding and the signature so callers can transmit either
// or both.
func Sign(signer Signer, value interface{}) (canonical []byte, signature []byte) {
	canonical = Encode(value)
	signature = signer.Sign(canonical)
	return canonical, signature
}

// Verify re-canonicalizes value and checks signature against it using the
// supplied 32-byte Ed25519 public key. A structural problem (malformed key
// or signature length) is reported as an error; a well-formed but
// non-matching signature returns (false, nil), never an error — callers
// must not conflate "could not verify" with "verification failed".
func Verify(publicKey []byte, value interface{}, signature []byte) (bool, error) {
	canonical := Encode(value)
	valid, err := identity.VerifyWithPublicKey(publicKey, canonical, signature)
	if err != nil {
		return false, gnserr.Wrap(gnserr.KindSignatureVerificationFailed, "verify canonical signature", err)
	}
	return valid, nil
}
