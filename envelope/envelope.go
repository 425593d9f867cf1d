// Package envelope implements the addressed, signed-then-sealed message
// container that traverses the relay (C4). An envelope's header — id,
// sender, recipients, payload type, timestamp, and a hash binding the
// encrypted content — is signed; display hints (handle, thread, reply-to)
// travel unsigned alongside it.
package envelope

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"lukechampine.com/blake3"

	"github.com/cayerbe/gns-core/canon"
	"github.com/cayerbe/gns-core/gnserr"
	"github.com/cayerbe/gns-core/identity"
	"github.com/cayerbe/gns-core/sealed"
)

// EncryptedPayload is the object-form wire encoding of a sealed payload.
type EncryptedPayload struct {
	EphemeralPublicKey string `json:"ephemeralPublicKey"`
	Nonce               string `json:"nonce"`
	Ciphertext          string `json:"ciphertext"`
}

// Envelope is the on-wire message unit. JSON tags follow the camelCase
// wire format; EncryptedPayload is always emitted in object form, and
// ephemeralPublicKey/nonce at the top level are therefore always omitted
// on output (they exist so inbound string-form envelopes still parse).
type Envelope struct {
	ID                 string            `json:"id"`
	FromPublicKey      string            `json:"fromPublicKey"`
	FromHandle         string            `json:"fromHandle,omitempty"`
	ToPublicKeys       []string          `json:"toPublicKeys"`
	PayloadType        string            `json:"payloadType"`
	TimestampMs        int64             `json:"timestamp"`
	ThreadID           string            `json:"threadId,omitempty"`
	ReplyToID          string            `json:"replyToId,omitempty"`
	EncryptedPayload   *EncryptedPayload `json:"encryptedPayload"`
	CiphertextString   string            `json:"-"`
	EphemeralPublicKey string            `json:"ephemeralPublicKey,omitempty"`
	Nonce              string            `json:"nonce,omitempty"`
	Signature          string            `json:"signature"`
}

// UnmarshalJSON accepts encryptedPayload in either accepted wire form: an
// object ({ephemeralPublicKey, nonce, ciphertext}), or a bare string, in
// which case ephemeralPublicKey/nonce are taken from the envelope's
// top-level fields and ciphertext from the string itself. Both forms
// normalize into resolvedPayload at read time.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	type envelopeAlias Envelope
	aux := struct {
		EncryptedPayload json.RawMessage `json:"encryptedPayload"`
		*envelopeAlias
	}{envelopeAlias: (*envelopeAlias)(e)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	raw := bytes.TrimSpace(aux.EncryptedPayload)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	if raw[0] == '"' {
		var ciphertext string
		if err := json.Unmarshal(raw, &ciphertext); err != nil {
			return gnserr.Wrap(gnserr.KindInvalidEnvelope, "decode string-form encryptedPayload", err)
		}
		e.CiphertextString = ciphertext
		e.EncryptedPayload = nil
		return nil
	}

	var obj EncryptedPayload
	if err := json.Unmarshal(raw, &obj); err != nil {
		return gnserr.Wrap(gnserr.KindInvalidEnvelope, "decode object-form encryptedPayload", err)
	}
	e.EncryptedPayload = &obj
	return nil
}

// Opened is the result of opening an envelope: the decrypted payload plus
// the outcome of a signature check that is always performed but never
// allowed to block decryption.
type Opened struct {
	FromPublicKey  string
	FromHandle     string
	PayloadType    string
	Payload        []byte
	SignatureValid bool
	EnvelopeID     string
	TimestampMs    int64
	ThreadID       string
	ReplyToID      string
}

// Hints carries the unsigned display/routing metadata attached to an
// envelope at construction time.
type Hints struct {
	FromHandle string
	ThreadID   string
	ReplyToID  string
}

// Create seals payload for recipientAgreementPub, builds the signed
// header, and attaches the unsigned hints. recipientPublicKeyHex is the
// recipient's 64-hex-character signing public key (used only for
// addressing — the header's encrypted_payload_hash and signature bind the
// actual sealed bytes).
func Create(sender *identity.Identity, recipientPublicKeyHex string, recipientAgreementPub [32]byte, payloadType string, payload []byte, hints Hints) (*Envelope, error) {
	sealedPayload, err := sender.EncryptFor(payload, recipientAgreementPub)
	if err != nil {
		return nil, err
	}

	wirePayload := &EncryptedPayload{
		EphemeralPublicKey: hex.EncodeToString(sealedPayload.EphemeralPublicKey[:]),
		Nonce:              hex.EncodeToString(sealedPayload.Nonce[:]),
		Ciphertext:         hex.EncodeToString(sealedPayload.Ciphertext),
	}

	id := uuid.NewString()
	timestampMs := time.Now().UnixMilli()
	toPubs := []string{recipientPublicKeyHex}

	hash, err := hashEncryptedPayload(wirePayload)
	if err != nil {
		return nil, err
	}

	header := signingHeader(id, sender.PublicHex(), toPubs, payloadType, timestampMs, hash)
	_, sig := canon.Sign(sender, header)

	return &Envelope{
		ID:               id,
		FromPublicKey:    sender.PublicHex(),
		FromHandle:       hints.FromHandle,
		ToPublicKeys:     toPubs,
		PayloadType:      payloadType,
		TimestampMs:      timestampMs,
		ThreadID:         hints.ThreadID,
		ReplyToID:        hints.ReplyToID,
		EncryptedPayload: wirePayload,
		Signature:        hex.EncodeToString(sig),
	}, nil
}

// Open decrypts env using recipient's key-agreement secret and reports
// signature validity independently: decryption failure is always fatal,
// a bad signature never is.
func Open(recipient *identity.Identity, env *Envelope) (*Opened, error) {
	wirePayload, err := env.resolvedPayload()
	if err != nil {
		return nil, err
	}

	sealedPayload, err := decodeSealedPayload(wirePayload)
	if err != nil {
		return nil, err
	}

	plaintext, err := recipient.Decrypt(sealedPayload)
	if err != nil {
		return nil, err
	}

	hash, err := hashEncryptedPayload(wirePayload)
	if err != nil {
		return nil, err
	}
	header := signingHeader(env.ID, env.FromPublicKey, env.ToPublicKeys, env.PayloadType, env.TimestampMs, hash)

	fromPub, err := hex.DecodeString(env.FromPublicKey)
	var sigValid bool
	if err == nil {
		sig, sigErr := hex.DecodeString(env.Signature)
		if sigErr == nil {
			sigValid, _ = canon.Verify(fromPub, header, sig)
		}
	}

	return &Opened{
		FromPublicKey:  env.FromPublicKey,
		FromHandle:     env.FromHandle,
		PayloadType:    env.PayloadType,
		Payload:        plaintext,
		SignatureValid: sigValid,
		EnvelopeID:     env.ID,
		TimestampMs:    env.TimestampMs,
		ThreadID:       env.ThreadID,
		ReplyToID:      env.ReplyToID,
	}, nil
}

// IsFor reports whether publicKeyHex appears among the envelope's
// recipients.
func (e *Envelope) IsFor(publicKeyHex string) bool {
	for _, k := range e.ToPublicKeys {
		if equalFoldHex(k, publicKeyHex) {
			return true
		}
	}
	return false
}

// resolvedPayload normalizes the two accepted wire encodings (object form
// already in EncryptedPayload, or string form split across
// ciphertextString/EphemeralPublicKey/Nonce) into a single object form.
func (e *Envelope) resolvedPayload() (*EncryptedPayload, error) {
	if e.EncryptedPayload != nil {
		return e.EncryptedPayload, nil
	}
	if e.CiphertextString == "" || e.EphemeralPublicKey == "" || e.Nonce == "" {
		return nil, gnserr.New(gnserr.KindInvalidEnvelope, "missing ephemeralPublicKey/nonce for string-form payload")
	}
	return &EncryptedPayload{
		EphemeralPublicKey: e.EphemeralPublicKey,
		Nonce:              e.Nonce,
		Ciphertext:         e.CiphertextString,
	}, nil
}

func decodeSealedPayload(w *EncryptedPayload) (*sealed.Payload, error) {
	ephemeral, err := decodeKey(w.EphemeralPublicKey)
	if err != nil {
		return nil, err
	}
	nonce, err := hex.DecodeString(w.Nonce)
	if err != nil {
		return nil, gnserr.Wrap(gnserr.KindInvalidHex, "decode nonce", err)
	}
	if len(nonce) != sealed.NonceSize {
		return nil, gnserr.Wrap(gnserr.KindInvalidNonceLength, "decode nonce", gnserr.InvalidKeyLength(sealed.NonceSize, len(nonce)))
	}
	ciphertext, err := hex.DecodeString(w.Ciphertext)
	if err != nil {
		return nil, gnserr.Wrap(gnserr.KindInvalidHex, "decode ciphertext", err)
	}

	p := &sealed.Payload{EphemeralPublicKey: ephemeral, Ciphertext: ciphertext}
	copy(p.Nonce[:], nonce)
	return p, nil
}

func decodeKey(hexStr string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return out, gnserr.Wrap(gnserr.KindInvalidHex, "decode key", err)
	}
	if len(raw) != 32 {
		return out, gnserr.InvalidKeyLength(32, len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

func hashEncryptedPayload(w *EncryptedPayload) ([]byte, error) {
	canonical := canon.Encode(map[string]interface{}{
		"ephemeralPublicKey": w.EphemeralPublicKey,
		"nonce":              w.Nonce,
		"ciphertext":         w.Ciphertext,
	})
	sum := blake3.Sum256(canonical)
	return sum[:], nil
}

func signingHeader(id, fromPub string, toPubs []string, payloadType string, timestampMs int64, hash []byte) map[string]interface{} {
	toPubsIface := make([]interface{}, len(toPubs))
	for i, p := range toPubs {
		toPubsIface[i] = p
	}
	return map[string]interface{}{
		"id":                   id,
		"fromPublicKey":        fromPub,
		"toPublicKeys":         toPubsIface,
		"payloadType":          payloadType,
		"timestamp":            timestampMs,
		"encryptedPayloadHash": hex.EncodeToString(hash),
	}
}

func equalFoldHex(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
