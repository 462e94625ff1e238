package service

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		code := GenerateCode()
		require.Len(t, code, CodeLength)

		n, err := strconv.Atoi(code)
		require.NoError(t, err, "code must be all digits: %q", code)
		assert.GreaterOrEqual(t, n, 0)
		assert.LessOrEqual(t, n, 999999)
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 450, "codes should rarely repeat")
}

func TestGenerateCode_KeepsLeadingZeros(t *testing.T) {
	// With a 1-digit code, a zero shows up quickly if the range starts at 0.
	sawZero := false
	for i := 0; i < 500 && !sawZero; i++ {
		code := generateCode(1)
		require.Len(t, code, 1)
		sawZero = code == "0"
	}
	assert.True(t, sawZero, "0 must be a possible code")

	for i := 0; i < 200; i++ {
		assert.Len(t, generateCode(3), 3)
	}
}

func TestGenerateCode_OtherLengths(t *testing.T) {
	assert.Len(t, generateCode(1), 1)
	assert.Len(t, generateCode(8), 8)
	assert.Panics(t, func() { generateCode(0) })
}
