package relay

import (
	"encoding/json"

	"github.com/cayerbe/gns-core/envelope"
)

// Inbound is the set of typed values the demux can hand to a host: every
// variant named in the relay frame protocol, plus Unknown for anything
// that doesn't match.
type Inbound interface {
	inbound()
}

// Welcome acknowledges a successful peer handshake.
type Welcome struct {
	PublicKey string
}

func (Welcome) inbound() {}

// ConnectionStatus reports multi-device presence.
type ConnectionStatus struct {
	MobilePresent bool
	BrowserCount  int
}

func (ConnectionStatus) inbound() {}

// EnvelopeFrame carries a deliverable, still-sealed envelope.
type EnvelopeFrame struct {
	Envelope *envelope.Envelope
}

func (EnvelopeFrame) inbound() {}

// MessageSentFromBrowser reports that a peer browser device sent a
// plaintext message this device must mirror into its local store.
type MessageSentFromBrowser struct {
	ID          string
	ToPublicKey string
	Plaintext   string
	TimestampMs int64
}

func (MessageSentFromBrowser) inbound() {}

// MessageSynced replicates a single message across devices of the same
// owner.
type MessageSynced struct {
	ID               string
	ConversationWith string
	Plaintext        string
	Direction        string // "in" or "out"
	TimestampMs      int64
	FromHandle       string
}

func (MessageSynced) inbound() {}

// RequestSync asks this device to stream back stored messages for a
// conversation.
type RequestSync struct {
	ConversationWith string
	Limit            int
}

func (RequestSync) inbound() {}

// RequestDecryption asks this device (which holds the key) to decrypt and
// return specific messages to the requester.
type RequestDecryption struct {
	MessageIDs       []string
	ConversationWith string
	RequesterPub     string
}

func (RequestDecryption) inbound() {}

// ReadReceipt marks a message as read by the peer.
type ReadReceipt struct {
	MessageID   string
	TimestampMs int64
}

func (ReadReceipt) inbound() {}

// Unknown wraps any frame that did not match a known type.
type Unknown struct {
	Raw string
}

func (Unknown) inbound() {}

type wireFrame struct {
	Type string `json:"type"`

	// Welcome
	PublicKey string `json:"pub,omitempty"`

	// ConnectionStatus
	MobilePresent *bool `json:"mobilePresent,omitempty"`
	BrowserCount  *int  `json:"browserCount,omitempty"`

	// Envelope (bare, legacy-compatible: type may be absent)
	Envelope *envelope.Envelope `json:"envelope,omitempty"`

	// MessageSentFromBrowser
	ID          string `json:"id,omitempty"`
	ToPublicKey string `json:"toPublicKey,omitempty"`
	Plaintext   string `json:"plaintext,omitempty"`
	TimestampMs int64  `json:"timestamp,omitempty"`

	// MessageSynced
	ConversationWith string `json:"conversationWith,omitempty"`
	Direction        string `json:"direction,omitempty"`
	FromHandle       string `json:"fromHandle,omitempty"`

	// RequestSync
	Limit int `json:"limit,omitempty"`

	// RequestDecryption
	MessageIDs   []string `json:"messageIds,omitempty"`
	RequesterPub string   `json:"requesterPub,omitempty"`

	// ReadReceipt
	MessageID string `json:"messageId,omitempty"`
}

// DecodeFrame parses a single text frame into its typed Inbound value.
// A frame with no recognized "type" but an "envelope" key is treated as a
// bare (legacy) envelope delivery.
func DecodeFrame(raw []byte) Inbound {
	var w wireFrame
	if err := json.Unmarshal(raw, &w); err != nil {
		return Unknown{Raw: string(raw)}
	}

	switch w.Type {
	case "welcome":
		return Welcome{PublicKey: w.PublicKey}
	case "connectionStatus":
		status := ConnectionStatus{}
		if w.MobilePresent != nil {
			status.MobilePresent = *w.MobilePresent
		}
		if w.BrowserCount != nil {
			status.BrowserCount = *w.BrowserCount
		}
		return status
	case "message":
		if w.Envelope != nil {
			return EnvelopeFrame{Envelope: w.Envelope}
		}
		return Unknown{Raw: string(raw)}
	case "messageSentFromBrowser":
		return MessageSentFromBrowser{
			ID:          w.ID,
			ToPublicKey: w.ToPublicKey,
			Plaintext:   w.Plaintext,
			TimestampMs: w.TimestampMs,
		}
	case "messageSynced", "message_synced":
		return MessageSynced{
			ID:               w.ID,
			ConversationWith: w.ConversationWith,
			Plaintext:        w.Plaintext,
			Direction:        w.Direction,
			TimestampMs:      w.TimestampMs,
			FromHandle:       w.FromHandle,
		}
	case "requestSync":
		return RequestSync{ConversationWith: w.ConversationWith, Limit: w.Limit}
	case "requestDecryption":
		return RequestDecryption{
			MessageIDs:       w.MessageIDs,
			ConversationWith: w.ConversationWith,
			RequesterPub:     w.RequesterPub,
		}
	case "readReceipt":
		return ReadReceipt{MessageID: w.MessageID, TimestampMs: w.TimestampMs}
	default:
		if w.Envelope != nil {
			return EnvelopeFrame{Envelope: w.Envelope}
		}
		return Unknown{Raw: string(raw)}
	}
}

// EncodeEnvelopeFrame wraps an outbound envelope per the wire protocol:
// {"type":"message","envelope": <envelope>}.
func EncodeEnvelopeFrame(env *envelope.Envelope) ([]byte, error) {
	return json.Marshal(struct {
		Type     string             `json:"type"`
		Envelope *envelope.Envelope `json:"envelope"`
	}{Type: "message", Envelope: env})
}

// MessageSyncedOut is the outbound shape of a messageSynced frame: sent to
// mirror a message onto the other devices of a single owner (addressed via
// To), or to answer a decryption request from a specific peer device.
type MessageSyncedOut struct {
	To               []string `json:"to"`
	MessageID        string   `json:"messageId"`
	ConversationWith string   `json:"conversationWith"`
	Plaintext        string   `json:"plaintext"`
	Direction        string   `json:"direction"`
	TimestampMs      int64    `json:"timestamp"`
	FromHandle       string   `json:"fromHandle,omitempty"`
}

// EncodeMessageSyncedFrame wraps out per the wire protocol:
// {"type":"messageSynced", ...}.
func EncodeMessageSyncedFrame(out MessageSyncedOut) ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		MessageSyncedOut
	}{Type: "messageSynced", MessageSyncedOut: out})
}
