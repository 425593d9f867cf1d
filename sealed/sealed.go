// Package sealed implements the ephemeral-ECDH + AEAD sealed payload: a
// one-shot encryption of a plaintext to a recipient's X25519 public key,
// using an ephemeral sender keypair so no long-term secret ever touches
// the wire. This is the "sealed payload" component of the core (C3).
package sealed

import (
	"crypto/rand"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	"crypto/sha256"

	"github.com/cayerbe/gns-core/gnserr"
)

const (
	// PublicKeySize is the length in bytes of an X25519 public value.
	PublicKeySize = 32
	// NonceSize is the ChaCha20-Poly1305 nonce length.
	NonceSize = chacha20poly1305.NonceSize
	infoPrefix = "gns-envelope-v1:"
)

// Payload is the (ephemeral_pub, nonce, ciphertext) triple produced by
// Seal and consumed by Open.
type Payload struct {
	EphemeralPublicKey [PublicKeySize]byte
	Nonce              [NonceSize]byte
	Ciphertext         []byte
}

// Seal encrypts plaintext for recipientPub (the recipient's static X25519
// public key) using a freshly sampled ephemeral keypair.
func Seal(plaintext []byte, recipientPub [PublicKeySize]byte) (*Payload, error) {
	var ephemeralSecret [32]byte
	if _, err := io.ReadFull(rand.Reader, ephemeralSecret[:]); err != nil {
		return nil, gnserr.Wrap(gnserr.KindEncryptionFailed, "sample ephemeral secret", err)
	}

	var ephemeralPub [PublicKeySize]byte
	pub, err := curve25519.X25519(ephemeralSecret[:], curve25519.Basepoint)
	if err != nil {
		return nil, gnserr.Wrap(gnserr.KindEncryptionFailed, "derive ephemeral public key", err)
	}
	copy(ephemeralPub[:], pub)

	shared, err := curve25519.X25519(ephemeralSecret[:], recipientPub[:])
	if err != nil {
		return nil, gnserr.Wrap(gnserr.KindEncryptionFailed, "ECDH", err)
	}

	key, err := deriveSymmetricKey(shared, ephemeralPub[:], recipientPub[:])
	if err != nil {
		return nil, err
	}
	defer zero(key[:])

	var nonce [NonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, gnserr.Wrap(gnserr.KindEncryptionFailed, "sample nonce", err)
	}

	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, gnserr.Wrap(gnserr.KindEncryptionFailed, "init AEAD", err)
	}
	ciphertext := aead.Seal(nil, nonce[:], plaintext, nil)

	return &Payload{
		EphemeralPublicKey: ephemeralPub,
		Nonce:              nonce,
		Ciphertext:         ciphertext,
	}, nil
}

// Open decrypts p using our static X25519 secret. Any AEAD authentication
// failure, including a wrong recipient or tampered ciphertext, returns the
// same DecryptionFailed error so the two cases are indistinguishable by
// design.
func Open(ourSecret [32]byte, p *Payload) ([]byte, error) {
	if p == nil {
		return nil, gnserr.New(gnserr.KindInvalidEnvelope, "nil sealed payload")
	}
	shared, err := curve25519.X25519(ourSecret[:], p.EphemeralPublicKey[:])
	if err != nil {
		return nil, gnserr.Wrap(gnserr.KindDecryptionFailed, "ECDH", err)
	}

	ourPub, err := curve25519.X25519(ourSecret[:], curve25519.Basepoint)
	if err != nil {
		return nil, gnserr.Wrap(gnserr.KindDecryptionFailed, "derive our public key", err)
	}

	key, err := deriveSymmetricKey(shared, p.EphemeralPublicKey[:], ourPub)
	if err != nil {
		return nil, err
	}
	defer zero(key[:])

	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, gnserr.Wrap(gnserr.KindDecryptionFailed, "init AEAD", err)
	}

	plaintext, err := aead.Open(nil, p.Nonce[:], p.Ciphertext, nil)
	if err != nil {
		return nil, gnserr.Wrap(gnserr.KindDecryptionFailed, "authentication failed", err)
	}
	return plaintext, nil
}

// deriveSymmetricKey derives the 32-byte ChaCha20-Poly1305 key from the
// ECDH shared secret, binding both ephemeral and recipient public values
// into the HKDF info string so the key is exchange-specific.
func deriveSymmetricKey(shared, ephemeralPub, recipientPub []byte) (*[32]byte, error) {
	info := make([]byte, 0, len(infoPrefix)+len(ephemeralPub)+len(recipientPub))
	info = append(info, []byte(infoPrefix)...)
	info = append(info, ephemeralPub...)
	info = append(info, recipientPub...)

	kdf := hkdf.New(sha256.New, shared, nil, info)
	var key [32]byte
	if _, err := io.ReadFull(kdf, key[:]); err != nil {
		return nil, gnserr.Wrap(gnserr.KindKeyDerivationFailed, "HKDF expand", err)
	}
	return &key, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
