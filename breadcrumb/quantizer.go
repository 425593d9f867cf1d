package breadcrumb

import (
	"fmt"

	"github.com/cayerbe/gns-core/gnserr"
)

// Quantizer maps a coordinate and resolution to a stable cell identifier.
// The production deployment is expected to swap in a hierarchical
// hex-grid implementation; DefaultQuantizer is a deterministic
// placeholder that packs the quantized coordinates into a 64-bit index.
type Quantizer interface {
	Cell(lat, lon float64, resolution uint8) (string, error)
}

// DefaultQuantizer packs (lat, lon, resolution) into a 64-bit index: the
// low 32 bits hold the longitude quantized to 1/1000 of a degree, the
// next 28 bits hold the latitude at the same resolution, and the top 4
// bits hold the resolution. It is not a real hexagonal grid — cell
// adjacency and area guarantees described in the design notes only hold
// for a true H3-style quantizer.
type DefaultQuantizer struct{}

func (DefaultQuantizer) Cell(lat, lon float64, resolution uint8) (string, error) {
	if lat < -90 || lat > 90 {
		return "", gnserr.New(gnserr.KindInvalidEnvelope, fmt.Sprintf("invalid latitude: %v", lat))
	}
	if lon < -180 || lon > 180 {
		return "", gnserr.New(gnserr.KindInvalidEnvelope, fmt.Sprintf("invalid longitude: %v", lon))
	}
	if resolution > 15 {
		return "", gnserr.New(gnserr.KindInvalidEnvelope, fmt.Sprintf("invalid resolution: %v", resolution))
	}

	latQuantized := uint64((lat + 90.0) * 1000.0)
	lonQuantized := uint64((lon + 180.0) * 1000.0)
	index := (latQuantized << 32) | lonQuantized | (uint64(resolution) << 60)

	return fmt.Sprintf("%016x", index), nil
}
