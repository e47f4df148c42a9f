package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksum_Deterministic(t *testing.T) {
	a := Checksum([]byte("payload"))
	b := Checksum([]byte("payload"))
	require.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestVerifyChecksum_Match(t *testing.T) {
	data := []byte(`{"token":"abc"}`)
	sum := Checksum(data)
	assert.True(t, VerifyChecksum(data, sum))
}

func TestVerifyChecksum_SingleByteCorruption(t *testing.T) {
	data := []byte(`{"token":"abc"}`)
	sum := Checksum(data)

	corrupted := make([]byte, len(data))
	copy(corrupted, data)
	corrupted[3] ^= 0x01

	assert.False(t, VerifyChecksum(corrupted, sum))
}
