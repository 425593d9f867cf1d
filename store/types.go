// Package store defines the local persisted model: threads, messages,
// breadcrumbs, pending outbound envelopes, sync cursors, and reactions
// (C7). It exposes a facade interface implemented by store/memory (for
// tests and single-process hosts) and store/postgres (for a shared
// backing store).
package store

// Thread is a conversation grouping.
type Thread struct {
	ID                  string
	ParticipantPublicKey string
	ParticipantHandle   string
	LastMessageAtMs     int64
	UnreadCount         int
	IsPinned            bool
	IsMuted             bool
	IsArchived          bool
	Subject             string
}

// MessageDirection is the direction of a stored message relative to the
// owning identity.
type MessageDirection string

const (
	DirectionIn  MessageDirection = "in"
	DirectionOut MessageDirection = "out"
)

// MessageStatus tracks an outbound message's lifecycle, or an inbound
// message's read state.
type MessageStatus string

const (
	StatusQueued   MessageStatus = "queued"
	StatusSent     MessageStatus = "sent"
	StatusReceived MessageStatus = "received"
	StatusRead     MessageStatus = "read"
)

// Message is a single stored envelope payload.
type Message struct {
	ID               string
	ThreadID         string
	FromPublicKey    string
	FromHandle       string
	PayloadType      string
	PayloadJSON      string
	TimestampMs      int64
	Direction        MessageDirection
	Status           MessageStatus
	SignatureValid   bool
	ReplyToID        string
	IsStarred        bool
	ForwardedFromID  string
	Reactions        []Reaction
}

// Reaction is an emoji reaction to a message.
type Reaction struct {
	MessageID     string
	FromPublicKey string
	Emoji         string
	TimestampMs   int64
}

// StoredBreadcrumb is the persisted form of a breadcrumb.Breadcrumb:
// counters and aggregate queries operate on this shape rather than
// re-verifying signatures on every read.
type StoredBreadcrumb struct {
	CellID      string
	TimestampS  int64
	Signature   string
	PublicKey   string
	Resolution  uint8
	PrevHash    string
}

// PendingMessage is an envelope the host queued while the relay was down.
type PendingMessage struct {
	ID           string
	EnvelopeJSON string
	CreatedAtMs  int64
	RetryCount   int
}
