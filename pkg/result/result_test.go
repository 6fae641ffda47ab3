package result

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOk(t *testing.T) {
	r := Ok(42)
	assert.True(t, r.IsOk())
	assert.Equal(t, 42, r.Value())
	assert.Empty(t, r.Failure().Message)

	v, err := r.Unpack()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestFail(t *testing.T) {
	r := Fail[string](NetworkFailure("no connection to server"))
	assert.False(t, r.IsOk())
	assert.Empty(t, r.Value())
	assert.Equal(t, FailureNetwork, r.Failure().Kind)

	_, err := r.Unpack()
	require.Error(t, err)
	assert.Equal(t, "network: no connection to server", err.Error())
}

func TestFailureConstructors(t *testing.T) {
	cases := []struct {
		failure FailureInfo
		kind    FailureKind
	}{
		{NetworkFailure("offline"), FailureNetwork},
		{ServerFailure("boom"), FailureServer},
		{AuthFailure("session expired"), FailureAuth},
		{ValidationFailure("code too short"), FailureValidation},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.kind, tc.failure.Kind)
	}
}

func TestUnpackErrorIsFailureInfo(t *testing.T) {
	r := Fail[int](AuthFailure("session expired"))
	_, err := r.Unpack()

	var f FailureInfo
	require.ErrorAs(t, err, &f)
	assert.Equal(t, FailureAuth, f.Kind)
	assert.Equal(t, "session expired", f.Message)
}
