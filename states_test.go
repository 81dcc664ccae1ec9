package vidq

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatus_Parse(t *testing.T) {
	for _, s := range AllStatuses {
		got, err := ParseStatus(s.String())
		require.NoError(t, err)
		require.Equal(t, s, got)
	}
	_, err := ParseStatus("bogus")
	require.ErrorIs(t, err, ErrUnknownStatus)
}

func TestStatus_Terminal(t *testing.T) {
	require.False(t, StatusPending.Terminal())
	require.False(t, StatusStarted.Terminal())
	require.False(t, StatusProcessing.Terminal())
	require.True(t, StatusSuccess.Terminal())
	require.True(t, StatusFailure.Terminal())
}
