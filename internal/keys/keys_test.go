package keys

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	require.Equal(t, "vidq:{media}:details", Details("media"))
	require.Equal(t, "vidq:{media}:history", History("media"))
	require.Equal(t, "vidq:{media}:pending", Pending("media"))
	require.Equal(t, "vidq:{media}:active", Active("media"))
}

func TestFor(t *testing.T) {
	k := For("media")
	require.Equal(t, Details("media"), k.Details)
	require.Equal(t, History("media"), k.History)
	require.Equal(t, Pending("media"), k.Pending)
	require.Equal(t, Active("media"), k.Active)
}
