package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("localOnly")
	require.NoError(t, err)
	assert.Equal(t, ModeLocalOnly, mode)

	mode, err = ParseMode("cloudSync")
	require.NoError(t, err)
	assert.Equal(t, ModeCloudSync, mode)

	for _, bad := range []string{"", "hybrid", "LOCALONLY", "local_only"} {
		_, err := ParseMode(bad)
		assert.Error(t, err, "mode %q", bad)
	}
}
