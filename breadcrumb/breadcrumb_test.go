package breadcrumb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cayerbe/gns-core/identity"
)

func TestCreateVerifyRoundTrip(t *testing.T) {
	id, err := identity.Generate()
	require.NoError(t, err)
	defer id.Close()

	b, err := Create(DefaultQuantizer{}, id, 40.7128, -74.0060, 0, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultResolution, b.Resolution)
	assert.Equal(t, id.PublicHex(), b.PublicKey)

	valid, err := Verify(b)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestTamperedTimestampFailsVerification(t *testing.T) {
	id, err := identity.Generate()
	require.NoError(t, err)
	defer id.Close()

	b, err := Create(DefaultQuantizer{}, id, 40.7128, -74.0060, 0, "")
	require.NoError(t, err)

	b.TimestampS++

	valid, err := Verify(b)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestQuantizerRejectsOutOfRangeCoordinates(t *testing.T) {
	_, err := DefaultQuantizer{}.Cell(91, 0, 7)
	require.Error(t, err)

	_, err = DefaultQuantizer{}.Cell(0, 181, 7)
	require.Error(t, err)

	_, err = DefaultQuantizer{}.Cell(0, 0, 16)
	require.Error(t, err)
}

func TestTrajectoryAddRejectsMismatchedOwner(t *testing.T) {
	owner, err := identity.Generate()
	require.NoError(t, err)
	defer owner.Close()

	other, err := identity.Generate()
	require.NoError(t, err)
	defer other.Close()

	traj := NewTrajectory(owner.PublicHex())

	b, err := Create(DefaultQuantizer{}, other, 1, 1, 0, "")
	require.NoError(t, err)

	err = traj.Add(b)
	require.Error(t, err)
}

func TestTrajectoryAddRejectsInvalidSignature(t *testing.T) {
	owner, err := identity.Generate()
	require.NoError(t, err)
	defer owner.Close()

	traj := NewTrajectory(owner.PublicHex())

	b, err := Create(DefaultQuantizer{}, owner, 1, 1, 0, "")
	require.NoError(t, err)
	b.TimestampS++

	err = traj.Add(b)
	require.Error(t, err)
}

func TestTrajectoryKeepsSortedByTimestamp(t *testing.T) {
	owner, err := identity.Generate()
	require.NoError(t, err)
	defer owner.Close()

	traj := NewTrajectory(owner.PublicHex())

	for i, lat := range []float64{10, 5, 20} {
		b, err := Create(DefaultQuantizer{}, owner, lat, float64(i), 0, "")
		require.NoError(t, err)
		b.TimestampS = int64(100 - i*10)
		// re-sign since we mutated the timestamp after signing
		b.Signature = bytesToHex(owner.Sign([]byte(signingData(b.CellID, b.TimestampS, b.PublicKey))))
		require.NoError(t, traj.Add(b))
	}

	for i := 1; i < len(traj.Breadcrumbs); i++ {
		assert.LessOrEqual(t, traj.Breadcrumbs[i-1].TimestampS, traj.Breadcrumbs[i].TimestampS)
	}
}

func TestMeetsClaimRequirements(t *testing.T) {
	owner, err := identity.Generate()
	require.NoError(t, err)
	defer owner.Close()

	traj := NewTrajectory(owner.PublicHex())
	assert.False(t, traj.MeetsClaimRequirements())

	const daySeconds = int64(24 * 60 * 60)
	base := int64(1_700_000_000)
	for i := 0; i < 150; i++ {
		lat := float64(i%20) * 0.01
		b, err := Create(DefaultQuantizer{}, owner, lat, 0, 0, "")
		require.NoError(t, err)
		b.TimestampS = base + int64(i)*daySeconds/10
		resigned := *b
		sig := owner.Sign([]byte(signingData(resigned.CellID, resigned.TimestampS, resigned.PublicKey)))
		resigned.Signature = bytesToHex(sig)
		require.NoError(t, traj.Add(&resigned))
	}

	assert.True(t, traj.MeetsClaimRequirements())
}

func TestPrevHashChainsWithoutAffectingSignature(t *testing.T) {
	owner, err := identity.Generate()
	require.NoError(t, err)
	defer owner.Close()

	first, err := Create(DefaultQuantizer{}, owner, 1, 1, 0, "")
	require.NoError(t, err)
	assert.Empty(t, first.PrevHash)

	second, err := Create(DefaultQuantizer{}, owner, 2, 2, 0, first.ContentHash())
	require.NoError(t, err)
	assert.Equal(t, first.ContentHash(), second.PrevHash)

	valid, err := Verify(second)
	require.NoError(t, err)
	assert.True(t, valid)

	// ContentHash does not depend on PrevHash, so re-chaining is stable.
	rechained := *first
	rechained.PrevHash = second.ContentHash()
	assert.Equal(t, first.ContentHash(), rechained.ContentHash())
}
