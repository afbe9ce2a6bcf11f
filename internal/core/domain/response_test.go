package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestParsedResponse_Variants tests the three response variants
func TestParsedResponse_Variants(t *testing.T) {
	ok := Success([]string{"a", "b"})
	assert.True(t, ok.OK())
	assert.Equal(t, []string{"a", "b"}, ok.Data)
	assert.NoError(t, ok.Err())
	assert.Equal(t, "success", ok.Status.String())

	bad := Malformed[[]string]("expected array")
	assert.False(t, bad.OK())
	assert.Nil(t, bad.Data)
	assert.True(t, errors.Is(bad.Err(), ErrMalformedResponse))
	assert.Contains(t, bad.Err().Error(), "expected array")
	assert.Equal(t, "malformed", bad.Status.String())

	down := UpstreamFailure[string]("status 503")
	assert.False(t, down.OK())
	assert.True(t, errors.Is(down.Err(), ErrUpstream))
	assert.False(t, errors.Is(down.Err(), ErrMalformedResponse))
	assert.Equal(t, "upstream_failure", down.Status.String())
}
