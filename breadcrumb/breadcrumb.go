// Package breadcrumb implements signed, quantized location attestations
// and the trajectories they accumulate into (C5). A breadcrumb proves the
// identity holder was near a quantized cell at a given time without
// revealing exact coordinates.
package breadcrumb

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/cayerbe/gns-core/gnserr"
	"github.com/cayerbe/gns-core/identity"
)

// DefaultResolution is the quantizer resolution used when the caller does
// not specify one; it is meant to land near a ~5 km2 cell area in a real
// hex-grid quantizer.
const DefaultResolution uint8 = 7

const signingPrefix = "gns-breadcrumb-v1"

const (
	minCrumbsForClaim   = 100
	minUniqueCells      = 10
	minSpanSeconds      = 7 * 24 * 60 * 60
)

// Breadcrumb is a signed location proof.
type Breadcrumb struct {
	CellID      string `json:"cellId"`
	TimestampS  int64  `json:"timestamp"`
	PublicKey   string `json:"publicKey"`
	Signature   string `json:"signature"`
	Resolution  uint8  `json:"resolution"`

	// PrevHash is the ContentHash of the breadcrumb this one follows in a
	// device's local trajectory, or "" for the first breadcrumb. It is
	// bookkeeping only: it is never part of signingData, so appending to
	// the chain never invalidates an earlier signature.
	PrevHash string `json:"prevHash,omitempty"`
}

// Create quantizes (lat, lon) at resolution (DefaultResolution if zero)
// and signs the result with identity. The quantizer is pluggable so a
// real hex-grid implementation can replace DefaultQuantizer without
// touching the signing/verification logic. prevHash chains this
// breadcrumb to the ContentHash of the previous one in the caller's
// local trajectory; pass "" for the first breadcrumb.
func Create(q Quantizer, id *identity.Identity, lat, lon float64, resolution uint8, prevHash string) (*Breadcrumb, error) {
	if resolution == 0 {
		resolution = DefaultResolution
	}
	cellID, err := q.Cell(lat, lon, resolution)
	if err != nil {
		return nil, err
	}

	timestampS := time.Now().Unix()
	sig := id.Sign([]byte(signingData(cellID, timestampS, id.PublicHex())))

	return &Breadcrumb{
		CellID:     cellID,
		TimestampS: timestampS,
		PublicKey:  id.PublicHex(),
		Signature:  bytesToHex(sig),
		Resolution: resolution,
		PrevHash:   prevHash,
	}, nil
}

// ContentHash returns the hex-encoded SHA-256 digest of the breadcrumb's
// signed fields plus its signature, suitable as the prevHash passed to
// the next Create call in a chain. It does not cover PrevHash itself, so
// re-hashing a breadcrumb always yields the same link regardless of
// where it sits in a chain.
func (b *Breadcrumb) ContentHash() string {
	sum := sha256.Sum256([]byte(signingData(b.CellID, b.TimestampS, b.PublicKey) + ":" + b.Signature))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the signed string and checks the signature. A
// malformed public key or signature is reported as an error; a
// well-formed but non-matching signature returns (false, nil).
func Verify(b *Breadcrumb) (bool, error) {
	return identity.VerifyHex(b.PublicKey, []byte(signingData(b.CellID, b.TimestampS, b.PublicKey)), b.Signature)
}

func signingData(cellID string, timestampS int64, publicKeyHex string) string {
	return fmt.Sprintf("%s:%s:%d:%s", signingPrefix, cellID, timestampS, publicKeyHex)
}

// Trajectory is an ordered (by timestamp) collection of breadcrumbs all
// signed by the same public key.
type Trajectory struct {
	PublicKey   string
	Breadcrumbs []*Breadcrumb
}

// NewTrajectory creates an empty trajectory owned by publicKeyHex.
func NewTrajectory(publicKeyHex string) *Trajectory {
	return &Trajectory{PublicKey: publicKeyHex}
}

// Add appends b after checking ownership and signature validity, then
// keeps the collection sorted by timestamp.
func (t *Trajectory) Add(b *Breadcrumb) error {
	if b.PublicKey != t.PublicKey {
		return gnserr.New(gnserr.KindMismatchedOwner, "breadcrumb public key does not match trajectory owner")
	}

	valid, err := Verify(b)
	if err != nil {
		return err
	}
	if !valid {
		return gnserr.New(gnserr.KindSignatureVerificationFailed, "breadcrumb signature invalid")
	}

	t.Breadcrumbs = append(t.Breadcrumbs, b)
	sort.SliceStable(t.Breadcrumbs, func(i, j int) bool {
		return t.Breadcrumbs[i].TimestampS < t.Breadcrumbs[j].TimestampS
	})
	return nil
}

// UniqueCells returns the number of distinct cell ids visited.
func (t *Trajectory) UniqueCells() int {
	seen := make(map[string]struct{}, len(t.Breadcrumbs))
	for _, b := range t.Breadcrumbs {
		seen[b.CellID] = struct{}{}
	}
	return len(seen)
}

// TimeSpanSeconds returns the span between the earliest and latest
// breadcrumb, or (0, false) if fewer than two breadcrumbs are present.
func (t *Trajectory) TimeSpanSeconds() (int64, bool) {
	if len(t.Breadcrumbs) < 2 {
		return 0, false
	}
	first := t.Breadcrumbs[0].TimestampS
	last := t.Breadcrumbs[len(t.Breadcrumbs)-1].TimestampS
	return last - first, true
}

// MeetsClaimRequirements reports whether the trajectory has enough
// breadcrumbs (>=100), enough unique cells (>=10), and a long enough span
// (>=7 days) to be eligible for a handle claim.
func (t *Trajectory) MeetsClaimRequirements() bool {
	if len(t.Breadcrumbs) < minCrumbsForClaim {
		return false
	}
	if t.UniqueCells() < minUniqueCells {
		return false
	}
	span, ok := t.TimeSpanSeconds()
	if !ok {
		return false
	}
	return span >= minSpanSeconds
}

func bytesToHex(b []byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexdigits[c>>4]
		out[i*2+1] = hexdigits[c&0x0f]
	}
	return string(out)
}
