package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cayerbe/gns-core/identity"
)

func TestEncodeSortsKeysRecursively(t *testing.T) {
	value := map[string]interface{}{
		"z": "last",
		"a": "first",
		"m": map[string]interface{}{
			"nested_z": int64(1),
			"nested_a": int64(2),
		},
	}
	got := string(Encode(value))
	assert.Equal(t, `{"a":"first","m":{"nested_a":2,"nested_z":1},"z":"last"}`, got)
}

func TestEncodeOrderIndependence(t *testing.T) {
	first := map[string]interface{}{"b": int64(1), "a": int64(2)}
	second := map[string]interface{}{"a": int64(2), "b": int64(1)}

	gotFirst := string(Encode(first))
	gotSecond := string(Encode(second))

	assert.Equal(t, gotFirst, gotSecond)
	assert.Equal(t, `{"a":2,"b":1}`, gotFirst)
}

func TestEncodeEscapesControlCharacters(t *testing.T) {
	got := string(Encode(map[string]interface{}{"s": "line1\nline2\ttab\x01ctrl"}))
	assert.Equal(t, `{"s":"line1\nline2\ttabctrl"}`, got)
}

func TestEncodeArraysPreserveOrder(t *testing.T) {
	got := string(Encode(map[string]interface{}{"xs": []interface{}{int64(3), int64(1), int64(2)}}))
	assert.Equal(t, `{"xs":[3,1,2]}`, got)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	id, err := identity.Generate()
	require.NoError(t, err)
	defer id.Close()

	value := map[string]interface{}{"thread_id": "abc", "seq": int64(4)}
	canonical, sig := Sign(id, value)
	assert.Equal(t, Encode(value), canonical)

	valid, err := Verify(id.PublicBytes(), value, sig)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestVerifyRejectsTamperedValue(t *testing.T) {
	id, err := identity.Generate()
	require.NoError(t, err)
	defer id.Close()

	value := map[string]interface{}{"amount": int64(100)}
	_, sig := Sign(id, value)

	tampered := map[string]interface{}{"amount": int64(200)}
	valid, err := Verify(id.PublicBytes(), tampered, sig)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestVerifyStructuralErrorOnBadKeyLength(t *testing.T) {
	_, err := Verify([]byte{1, 2, 3}, map[string]interface{}{"a": int64(1)}, make([]byte, 64))
	require.Error(t, err)
}
