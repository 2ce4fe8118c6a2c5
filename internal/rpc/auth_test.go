package rpc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnixAuthEncodeParseRoundTrip(t *testing.T) {
	t.Run("RoundTripsTypicalCredential", func(t *testing.T) {
		auth := &UnixAuth{
			Stamp:       12345,
			MachineName: "testhost",
			UID:         1000,
			GID:         1000,
			GIDs:        []uint32{4, 24, 27, 30},
		}

		var buf bytes.Buffer
		require.NoError(t, auth.Encode(&buf))
		assert.Equal(t, int(auth.EncodedSize()), buf.Len())

		parsed, err := ParseUnixAuth(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, auth.Stamp, parsed.Stamp)
		assert.Equal(t, auth.MachineName, parsed.MachineName)
		assert.Equal(t, auth.UID, parsed.UID)
		assert.Equal(t, auth.GID, parsed.GID)
		assert.Equal(t, auth.GIDs, parsed.GIDs)
	})

	t.Run("RoundTripsRootCredential", func(t *testing.T) {
		auth := &UnixAuth{Stamp: 1, MachineName: "", UID: 0, GID: 0, GIDs: []uint32{}}

		var buf bytes.Buffer
		require.NoError(t, auth.Encode(&buf))

		parsed, err := ParseUnixAuth(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, uint32(0), parsed.UID)
		assert.Equal(t, uint32(0), parsed.GID)
		assert.Empty(t, parsed.GIDs)
	})

	t.Run("RejectsTooManyGroups", func(t *testing.T) {
		gids := make([]uint32, 17)
		auth := &UnixAuth{MachineName: "h", GIDs: gids}

		var buf bytes.Buffer
		err := auth.Encode(&buf)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too many gids")
	})
}

func TestParseUnixAuthRejectsEmptyBody(t *testing.T) {
	_, err := ParseUnixAuth([]byte{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestUnixAuthString(t *testing.T) {
	auth := &UnixAuth{MachineName: "testhost", UID: 1000, GID: 1000, GIDs: []uint32{4, 24}}
	str := auth.String()
	assert.Contains(t, str, "testhost")
	assert.Contains(t, str, "[4 24]")
}

func TestAuthFlavorValues(t *testing.T) {
	assert.Equal(t, uint32(0), AuthNull)
	assert.Equal(t, uint32(1), AuthUnix)
	assert.Equal(t, uint32(2), AuthShort)
	assert.Equal(t, uint32(3), AuthDES)
}
