package identity

import (
	"filippo.io/edwards25519"

	"github.com/cayerbe/gns-core/gnserr"
)

// AgreementPublicFromEdwardsPoint derives the X25519 public value directly
// from an Ed25519 public key by converting the Edwards point to its
// Montgomery u-coordinate, without going through the secret-seed
// derivation. It exists as a cross-check of the primary SHA-512+clamp
// derivation used by fromSeed: both routes must agree for any given
// identity, since they describe the same birational map between the two
// curves.
func AgreementPublicFromEdwardsPoint(ed25519PublicKey []byte) ([32]byte, error) {
	var out [32]byte
	if len(ed25519PublicKey) != 32 {
		return out, gnserr.InvalidKeyLength(32, len(ed25519PublicKey))
	}
	p, err := new(edwards25519.Point).SetBytes(ed25519PublicKey)
	if err != nil {
		return out, gnserr.Wrap(gnserr.KindInvalidKeyLength, "decompress ed25519 point", err)
	}
	copy(out[:], p.BytesMontgomery())
	return out, nil
}
