package envelope

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cayerbe/gns-core/identity"
)

func TestCreateOpenRoundTrip(t *testing.T) {
	alice, err := identity.Generate()
	require.NoError(t, err)
	defer alice.Close()

	bob, err := identity.Generate()
	require.NoError(t, err)
	defer bob.Close()

	env, err := Create(alice, bob.PublicHex(), bob.AgreementPublicBytes(), "text/plain", []byte("hi"), Hints{})
	require.NoError(t, err)

	opened, err := Open(bob, env)
	require.NoError(t, err)
	assert.True(t, opened.SignatureValid)
	assert.Equal(t, []byte("hi"), opened.Payload)
	assert.Equal(t, alice.PublicHex(), opened.FromPublicKey)
	assert.True(t, env.IsFor(bob.PublicHex()))
}

func TestTamperedHeaderFieldInvalidatesSignatureWithoutLosingPayload(t *testing.T) {
	alice, err := identity.Generate()
	require.NoError(t, err)
	defer alice.Close()

	bob, err := identity.Generate()
	require.NoError(t, err)
	defer bob.Close()

	env, err := Create(alice, bob.PublicHex(), bob.AgreementPublicBytes(), "text/plain", []byte("original"), Hints{})
	require.NoError(t, err)

	env.TimestampMs += 1000

	opened, err := Open(bob, env)
	require.NoError(t, err)
	assert.False(t, opened.SignatureValid)
	assert.Equal(t, []byte("original"), opened.Payload)
}

func TestTamperingDisplayHintsDoesNotInvalidateSignature(t *testing.T) {
	alice, err := identity.Generate()
	require.NoError(t, err)
	defer alice.Close()

	bob, err := identity.Generate()
	require.NoError(t, err)
	defer bob.Close()

	env, err := Create(alice, bob.PublicHex(), bob.AgreementPublicBytes(), "text/plain", []byte("hi"), Hints{
		FromHandle: "alice",
		ThreadID:   "t1",
		ReplyToID:  "r1",
	})
	require.NoError(t, err)

	env.FromHandle = "mallory"
	env.ThreadID = "different-thread"
	env.ReplyToID = "different-reply"

	opened, err := Open(bob, env)
	require.NoError(t, err)
	assert.True(t, opened.SignatureValid)
}

func TestOpenWrongRecipientFailsToDecrypt(t *testing.T) {
	alice, err := identity.Generate()
	require.NoError(t, err)
	defer alice.Close()

	bob, err := identity.Generate()
	require.NoError(t, err)
	defer bob.Close()

	mallory, err := identity.Generate()
	require.NoError(t, err)
	defer mallory.Close()

	env, err := Create(alice, bob.PublicHex(), bob.AgreementPublicBytes(), "text/plain", []byte("secret"), Hints{})
	require.NoError(t, err)

	_, err = Open(mallory, env)
	require.Error(t, err)
}

func TestResolvedPayloadAcceptsStringForm(t *testing.T) {
	alice, err := identity.Generate()
	require.NoError(t, err)
	defer alice.Close()

	bob, err := identity.Generate()
	require.NoError(t, err)
	defer bob.Close()

	env, err := Create(alice, bob.PublicHex(), bob.AgreementPublicBytes(), "text/plain", []byte("hi"), Hints{})
	require.NoError(t, err)

	// A string-form wire envelope carries encryptedPayload as a bare
	// string, with ephemeralPublicKey/nonce promoted to the top level.
	wire := map[string]interface{}{
		"id":                 env.ID,
		"fromPublicKey":      env.FromPublicKey,
		"toPublicKeys":       env.ToPublicKeys,
		"payloadType":        env.PayloadType,
		"timestamp":          env.TimestampMs,
		"encryptedPayload":   env.EncryptedPayload.Ciphertext,
		"ephemeralPublicKey": env.EncryptedPayload.EphemeralPublicKey,
		"nonce":              env.EncryptedPayload.Nonce,
		"signature":          env.Signature,
	}
	raw, err := json.Marshal(wire)
	require.NoError(t, err)

	var stringForm Envelope
	require.NoError(t, json.Unmarshal(raw, &stringForm))
	assert.Nil(t, stringForm.EncryptedPayload)
	assert.Equal(t, env.EncryptedPayload.Ciphertext, stringForm.CiphertextString)

	opened, err := Open(bob, &stringForm)
	require.NoError(t, err)
	assert.True(t, opened.SignatureValid)
	assert.Equal(t, []byte("hi"), opened.Payload)
}

func TestUnmarshalJSONAcceptsObjectFormEncryptedPayload(t *testing.T) {
	alice, err := identity.Generate()
	require.NoError(t, err)
	defer alice.Close()

	bob, err := identity.Generate()
	require.NoError(t, err)
	defer bob.Close()

	env, err := Create(alice, bob.PublicHex(), bob.AgreementPublicBytes(), "text/plain", []byte("hi"), Hints{})
	require.NoError(t, err)

	raw, err := json.Marshal(env)
	require.NoError(t, err)

	var roundTripped Envelope
	require.NoError(t, json.Unmarshal(raw, &roundTripped))
	require.NotNil(t, roundTripped.EncryptedPayload)
	assert.Equal(t, env.EncryptedPayload.Ciphertext, roundTripped.EncryptedPayload.Ciphertext)
	assert.Empty(t, roundTripped.CiphertextString)

	opened, err := Open(bob, &roundTripped)
	require.NoError(t, err)
	assert.True(t, opened.SignatureValid)
	assert.Equal(t, []byte("hi"), opened.Payload)
}
