package nfs3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFattr3DebugRoundTrip(t *testing.T) {
	want := &Fattr3{
		Type:  TypeReg,
		Mode:  0644,
		Nlink: 1,
		UID:   1000,
		GID:   1000,
		Size:  4096,
		Used:  4096,
		Fsid:  1,
		FileID: 42,
	}

	data, err := MarshalFattr3Debug(want)
	require.NoError(t, err)

	got, err := UnmarshalFattr3Debug(data)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNFSTime3DebugRoundTrip(t *testing.T) {
	want := NFSTime3{Seconds: 1700000000, Nseconds: 123456}

	data, err := MarshalNFSTime3Debug(want)
	require.NoError(t, err)

	got, err := UnmarshalNFSTime3Debug(data)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
