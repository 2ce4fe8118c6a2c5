package nfs3

import (
	"testing"
	"time"

	"github.com/marmos91/nfsclient/internal/rpcerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterIsIdempotentForSameHandle(t *testing.T) {
	reg := NewRegistry([]byte{0x00})

	handle := []byte{0x01, 0x02, 0x03}
	first := reg.Register(handle, "foo", RootToken)
	second := reg.Register(handle, "foo-again", RootToken)

	assert.Equal(t, first, second)
}

func TestRegisterAssignsDistinctTokens(t *testing.T) {
	reg := NewRegistry([]byte{0x00})

	a := reg.Register([]byte{0x01}, "a", RootToken)
	b := reg.Register([]byte{0x02}, "b", RootToken)

	assert.NotEqual(t, a, b)
}

func TestRegisterUpdatesNameOnReobservation(t *testing.T) {
	reg := NewRegistry([]byte{0x00})

	handle := []byte{0x01}
	token := reg.Register(handle, "old-name", RootToken)
	dir := reg.Register([]byte{0x02}, "dir", RootToken)
	reg.Register(handle, "new-name", dir)

	path, err := reg.Path(token)
	require.NoError(t, err)
	assert.Equal(t, "/dir/new-name", path)
}

func TestRegisterIgnoresDotNames(t *testing.T) {
	reg := NewRegistry([]byte{0x00})

	handle := []byte{0x01}
	token := reg.Register(handle, "dir", RootToken)
	reg.Register(handle, ".", token)
	reg.Register(handle, "..", RootToken)

	path, err := reg.Path(token)
	require.NoError(t, err)
	assert.Equal(t, "/dir", path)
}

func TestResolveUnknownTokenFails(t *testing.T) {
	reg := NewRegistry([]byte{0x00})

	_, err := reg.Resolve(999)
	require.Error(t, err)
	var unknown *rpcerrors.HandleUnknown
	assert.ErrorAs(t, err, &unknown)
	assert.Equal(t, uint64(999), unknown.Token)
}

func TestPathReconstructsFromParentChain(t *testing.T) {
	reg := NewRegistry([]byte{0x00})

	dir := reg.Register([]byte{0x01}, "dir", RootToken)
	file := reg.Register([]byte{0x02}, "file.txt", dir)

	path, err := reg.Path(file)
	require.NoError(t, err)
	assert.Equal(t, "/dir/file.txt", path)
}

func TestPathOfRootIsSlash(t *testing.T) {
	reg := NewRegistry([]byte{0x00})

	path, err := reg.Path(RootToken)
	require.NoError(t, err)
	assert.Equal(t, "/", path)
}

func TestPathDefendsAgainstParentCycle(t *testing.T) {
	reg := NewRegistry([]byte{0x00})

	// Construct a malicious cycle directly: token 1's parent is 2, and
	// token 2's parent is 1, neither reaching the root.
	reg.byToken[1] = &handleEntry{serverHandle: []byte{0x01}, name: "a", parent: 2, hasParent: true}
	reg.byToken[2] = &handleEntry{serverHandle: []byte{0x02}, name: "b", parent: 1, hasParent: true}

	done := make(chan string, 1)
	go func() {
		path, err := reg.Path(1)
		require.NoError(t, err)
		done <- path
	}()

	select {
	case path := <-done:
		assert.NotEmpty(t, path)
	case <-time.After(2 * time.Second):
		t.Fatal("Path did not terminate on a cyclic parent chain")
	}
}
