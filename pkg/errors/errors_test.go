package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Wrap(CodeUpstreamUnavailable, "places search unavailable", cause)

	require.True(t, IsCode(err, CodeUpstreamUnavailable))
	require.ErrorIs(t, err, cause)
	require.Equal(t, "places search unavailable: dial tcp: timeout", err.Error())
	require.Equal(t, "places search unavailable", MessageOf(err))
}

func TestCodeOfWrappedChain(t *testing.T) {
	err := fmt.Errorf("handler: %w", Wrap(CodeNotFound, "restaurant not found", nil))
	require.Equal(t, CodeNotFound, CodeOf(err))
	require.Empty(t, CodeOf(errors.New("plain")))
	require.False(t, IsCode(nil, CodeNotFound))
}
