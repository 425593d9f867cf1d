// Package directory models the handle-directory HTTP surface this core
// consumes but does not implement (resolving handles to identity
// records, alias reservation/claim, breadcrumb and pending-message
// relay). The collaborator owns the handlers; this package only knows
// how to call them.
package directory

// IdentityRecord is the signed record a directory returns for a handle
// or public key lookup.
type IdentityRecord struct {
	PublicKey   string `json:"public_key"`
	Handle      string `json:"handle,omitempty"`
	Signature   string `json:"signature"`
	UpdatedAt   int64  `json:"updated_at"`
}

// AliasAvailability is the response to an alias-availability check.
type AliasAvailability struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// AliasClaim is the body of a PUT /aliases/{handle} request: a handle
// claim backed by trajectory proof.
type AliasClaim struct {
	PublicKey       string            `json:"public_key"`
	TrajectoryProof []BreadcrumbWire  `json:"trajectory_proof"`
	Signature       string            `json:"signature"`
}

// BreadcrumbWire is the over-the-wire breadcrumb shape (spec.md §6.3),
// distinct from breadcrumb.Breadcrumb's internal JSON tags.
type BreadcrumbWire struct {
	H3Index    string `json:"h3_index"`
	TimestampS int64  `json:"timestamp"`
	PublicKey  string `json:"public_key"`
	Signature  string `json:"signature"`
	Resolution uint8  `json:"resolution"`
}

// PendingMessageWire is the over-the-wire shape returned by
// GET /messages/pending/{pub}; the core re-decodes the envelope field
// with envelope.Open once retrieved.
type PendingMessageWire struct {
	ID       string `json:"id"`
	Envelope any    `json:"envelope"`
}
