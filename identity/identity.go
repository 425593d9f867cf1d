// Package identity implements the core's single cryptographic identity:
// one 32-byte seed from which both a signing keypair (Ed25519) and a
// derived key-agreement keypair (X25519) are computed. This is the
// Identity component (C1).
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"io"

	"golang.org/x/crypto/curve25519"

	"github.com/cayerbe/gns-core/gnserr"
	"github.com/cayerbe/gns-core/sealed"
)

const (
	seedSize      = 32
	signatureSize = 64
)

// Identity holds a signing seed and the two public keys derived from it.
// The seed and the derived X25519 secret are held in memory that callers
// should wipe via Close when the identity is no longer needed.
type Identity struct {
	seed          [seedSize]byte
	signingSecret ed25519.PrivateKey
	signingPublic ed25519.PublicKey
	agreementSec  [32]byte
	agreementPub  [32]byte
}

// Generate samples a fresh seed from the OS CSPRNG.
func Generate() (*Identity, error) {
	var seed [seedSize]byte
	if _, err := io.ReadFull(rand.Reader, seed[:]); err != nil {
		return nil, gnserr.Wrap(gnserr.KindEncryptionFailed, "sample identity seed", err)
	}
	return fromSeed(seed)
}

// FromHex imports an identity from a 64-character hex-encoded seed.
func FromHex(seedHex string) (*Identity, error) {
	if len(seedHex) != seedSize*2 {
		return nil, gnserr.InvalidKeyLength(seedSize*2, len(seedHex))
	}
	raw, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, gnserr.Wrap(gnserr.KindInvalidHex, "decode seed hex", err)
	}
	if len(raw) != seedSize {
		return nil, gnserr.InvalidKeyLength(seedSize, len(raw))
	}
	var seed [seedSize]byte
	copy(seed[:], raw)
	return fromSeed(seed)
}

func fromSeed(seed [seedSize]byte) (*Identity, error) {
	signingSecret := ed25519.NewKeyFromSeed(seed[:])
	signingPublic := signingSecret.Public().(ed25519.PublicKey)

	agreementSec := edToX25519Secret(seed)
	pub, err := curve25519.X25519(agreementSec[:], curve25519.Basepoint)
	if err != nil {
		return nil, gnserr.Wrap(gnserr.KindKeyDerivationFailed, "derive agreement public key", err)
	}
	var agreementPub [32]byte
	copy(agreementPub[:], pub)

	return &Identity{
		seed:          seed,
		signingSecret: signingSecret,
		signingPublic: signingPublic,
		agreementSec:  agreementSec,
		agreementPub:  agreementPub,
	}, nil
}

// edToX25519Secret derives the X25519 key-agreement secret from the
// Ed25519 signing seed: SHA-512 the seed, take the first 32 bytes, apply
// the standard X25519 clamp. This must be byte-identical across every
// implementation of this scheme.
func edToX25519Secret(seed [seedSize]byte) [32]byte {
	h := sha512.Sum512(seed[:])
	var k [32]byte
	copy(k[:], h[:32])
	k[0] &= 248
	k[31] &= 127
	k[31] |= 64
	return k
}

// PublicHex returns the 64-hex-character signing public key.
func (id *Identity) PublicHex() string {
	return hex.EncodeToString(id.signingPublic)
}

// AgreementPublicHex returns the 64-hex-character key-agreement public key.
func (id *Identity) AgreementPublicHex() string {
	return hex.EncodeToString(id.agreementPub[:])
}

// PublicBytes returns the raw 32-byte signing public key.
func (id *Identity) PublicBytes() []byte {
	out := make([]byte, len(id.signingPublic))
	copy(out, id.signingPublic)
	return out
}

// AgreementPublicBytes returns the raw 32-byte key-agreement public key.
func (id *Identity) AgreementPublicBytes() [32]byte {
	return id.agreementPub
}

// SeedHex returns the 64-hex-character seed. Callers that persist this
// value are responsible for the secret-storage collaborator (spec §6.6).
func (id *Identity) SeedHex() string {
	return hex.EncodeToString(id.seed[:])
}

// Sign produces a 64-byte Ed25519 signature over message.
func (id *Identity) Sign(message []byte) []byte {
	return ed25519.Sign(id.signingSecret, message)
}

// EncryptFor seals plaintext for a recipient's 32-byte key-agreement
// public key.
func (id *Identity) EncryptFor(plaintext []byte, recipientAgreementPub [32]byte) (*sealed.Payload, error) {
	return sealed.Seal(plaintext, recipientAgreementPub)
}

// Decrypt opens a sealed payload using this identity's key-agreement
// secret. Returns DecryptionFailed on any AEAD failure, whether caused by
// a wrong recipient or a tampered ciphertext — the two are
// indistinguishable by design.
func (id *Identity) Decrypt(payload *sealed.Payload) ([]byte, error) {
	return sealed.Open(id.agreementSec, payload)
}

// Close wipes the secret key material. The Identity must not be used
// after Close.
func (id *Identity) Close() {
	zero(id.seed[:])
	zero(id.signingSecret)
	zero(id.agreementSec[:])
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// VerifyWithPublicKey verifies a signature against a raw 32-byte Ed25519
// public key, independent of any Identity instance. Errors are only
// structural; a mismatched-but-well-formed signature returns (false, nil).
func VerifyWithPublicKey(publicKey []byte, message, signature []byte) (bool, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return false, gnserr.InvalidKeyLength(ed25519.PublicKeySize, len(publicKey))
	}
	if len(signature) != signatureSize {
		return false, gnserr.InvalidKeyLength(signatureSize, len(signature))
	}
	return ed25519.Verify(publicKey, message, signature), nil
}

// VerifyHex is the hex-encoded convenience form of VerifyWithPublicKey.
func VerifyHex(publicKeyHex string, message []byte, signatureHex string) (bool, error) {
	pub, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return false, gnserr.Wrap(gnserr.KindInvalidHex, "decode public key hex", err)
	}
	sig, err := hex.DecodeString(signatureHex)
	if err != nil {
		return false, gnserr.Wrap(gnserr.KindInvalidHex, "decode signature hex", err)
	}
	return VerifyWithPublicKey(pub, message, sig)
}
