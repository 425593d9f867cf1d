package sealed

import (
	"crypto/rand"
	"io"
	"testing"

	"golang.org/x/crypto/curve25519"

	"github.com/stretchr/testify/require"
)

func genStaticKeypair(t *testing.T) (secret [32]byte, public [32]byte) {
	t.Helper()
	_, err := io.ReadFull(rand.Reader, secret[:])
	require.NoError(t, err)
	pub, err := curve25519.X25519(secret[:], curve25519.Basepoint)
	require.NoError(t, err)
	copy(public[:], pub)
	return secret, public
}

func TestSealOpenRoundTrip(t *testing.T) {
	secret, pub := genStaticKeypair(t)

	plaintext := []byte("Hello, this is a secret message!")
	payload, err := Seal(plaintext, pub)
	require.NoError(t, err)

	decrypted, err := Open(secret, payload)
	require.NoError(t, err)
	require.Equal(t, plaintext, decrypted)
}

func TestOpenWrongRecipientFails(t *testing.T) {
	_, recipientPub := genStaticKeypair(t)
	wrongSecret, _ := genStaticKeypair(t)

	payload, err := Seal([]byte("secret message"), recipientPub)
	require.NoError(t, err)

	_, err = Open(wrongSecret, payload)
	require.Error(t, err)
}

func TestOpenTamperedCiphertextFails(t *testing.T) {
	secret, pub := genStaticKeypair(t)

	payload, err := Seal([]byte("secret message"), pub)
	require.NoError(t, err)

	payload.Ciphertext[0] ^= 0xFF

	_, err = Open(secret, payload)
	require.Error(t, err)
}

func TestSealNoncesAreFresh(t *testing.T) {
	_, pub := genStaticKeypair(t)

	p1, err := Seal([]byte("a"), pub)
	require.NoError(t, err)
	p2, err := Seal([]byte("a"), pub)
	require.NoError(t, err)

	require.NotEqual(t, p1.Nonce, p2.Nonce)
	require.NotEqual(t, p1.EphemeralPublicKey, p2.EphemeralPublicKey)
}
