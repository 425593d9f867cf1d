package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgreementPublicFromEdwardsPointAgreesWithSeedDerivation(t *testing.T) {
	id, err := Generate()
	require.NoError(t, err)
	defer id.Close()

	viaEdwards, err := AgreementPublicFromEdwardsPoint(id.PublicBytes())
	require.NoError(t, err)

	assert.Equal(t, id.AgreementPublicBytes(), viaEdwards)
}

func TestAgreementPublicFromEdwardsPointRejectsBadLength(t *testing.T) {
	_, err := AgreementPublicFromEdwardsPoint([]byte{1, 2, 3})
	require.Error(t, err)
}
