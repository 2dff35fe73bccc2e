package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := hashPassword("hunter2-but-longer")
	require.NoError(t, err)

	ok, err := verifyPassword("hunter2-but-longer", hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = verifyPassword("hunter2-but-wrong", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPasswordHashesAreSalted(t *testing.T) {
	first, err := hashPassword("same password")
	require.NoError(t, err)
	second, err := hashPassword("same password")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	_, err := verifyPassword("anything", "not-an-encoded-hash")
	require.ErrorIs(t, err, errMalformedHash)
}
