// Package gnserr defines the error taxonomy shared by every component of
// the core: identity, canonical signing, sealed payload, envelope,
// breadcrumb/trajectory, relay session, local store, and message router.
package gnserr

import (
	"errors"
	"fmt"
)

// Kind identifies the class of failure, independent of which component
// raised it.
type Kind string

const (
	KindInvalidKeyLength           Kind = "invalid_key_length"
	KindInvalidHex                 Kind = "invalid_hex"
	KindInvalidNonceLength         Kind = "invalid_nonce_length"
	KindSignatureVerificationFailed Kind = "signature_verification_failed"
	KindDecryptionFailed           Kind = "decryption_failed"
	KindEncryptionFailed           Kind = "encryption_failed"
	KindKeyDerivationFailed        Kind = "key_derivation_failed"
	KindSerializationError         Kind = "serialization_error"
	KindInvalidEnvelope            Kind = "invalid_envelope"
	KindConnectionError            Kind = "connection_error"
	KindNotConnected               Kind = "not_connected"
	KindRequestError               Kind = "request_error"
	KindApiError                   Kind = "api_error"
	KindParseError                 Kind = "parse_error"
	KindDatabaseError              Kind = "database_error"
	KindMismatchedOwner            Kind = "mismatched_owner"
)

// Error is the concrete error type carried across component boundaries.
// It wraps an optional underlying cause so callers can still use
// errors.Is/errors.As against both the Kind and the cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, gnserr.ErrX) work: it reports true when the
// target is a *Error with the same Kind, whatever the messages.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// sentinels for the Kind-only matching pattern (errors.Is(err, gnserr.X))
var (
	ErrInvalidKeyLength            = &Error{Kind: KindInvalidKeyLength}
	ErrInvalidHex                  = &Error{Kind: KindInvalidHex}
	ErrInvalidNonceLength          = &Error{Kind: KindInvalidNonceLength}
	ErrSignatureVerificationFailed = &Error{Kind: KindSignatureVerificationFailed}
	ErrDecryptionFailed            = &Error{Kind: KindDecryptionFailed}
	ErrEncryptionFailed            = &Error{Kind: KindEncryptionFailed}
	ErrKeyDerivationFailed         = &Error{Kind: KindKeyDerivationFailed}
	ErrSerializationError          = &Error{Kind: KindSerializationError}
	ErrInvalidEnvelope             = &Error{Kind: KindInvalidEnvelope}
	ErrConnectionError             = &Error{Kind: KindConnectionError}
	ErrNotConnected                = &Error{Kind: KindNotConnected}
	ErrRequestError                = &Error{Kind: KindRequestError}
	ErrApiError                    = &Error{Kind: KindApiError}
	ErrParseError                  = &Error{Kind: KindParseError}
	ErrDatabaseError               = &Error{Kind: KindDatabaseError}
	ErrMismatchedOwner             = &Error{Kind: KindMismatchedOwner}
)

// InvalidKeyLength builds the parameterized variant used throughout the
// crypto packages: "expected N bytes, got M".
func InvalidKeyLength(expected, got int) *Error {
	return New(KindInvalidKeyLength, fmt.Sprintf("expected %d bytes, got %d", expected, got))
}

// As is a thin re-export so callers don't need a second import for the
// common case of unwrapping to *Error.
func As(err error, target **Error) bool {
	return errors.As(err, target)
}
