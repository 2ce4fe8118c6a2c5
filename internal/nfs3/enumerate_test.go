package nfs3

import (
	"bytes"
	"encoding/binary"
	"net"
	"testing"

	"github.com/marmos91/nfsclient/internal/rpc"
	"github.com/marmos91/nfsclient/internal/rpcerrors"
	"github.com/marmos91/nfsclient/internal/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnerCredentialFallsBackToZero(t *testing.T) {
	cred := ownerCredential(nil, "")
	unix, ok := cred.(rpc.UnixCredential)
	require.True(t, ok)
	assert.Equal(t, uint32(0), unix.Auth.UID)
	assert.Equal(t, uint32(0), unix.Auth.GID)
	assert.Equal(t, "nfsclient", unix.Auth.MachineName)
}

func TestOwnerCredentialUsesAttrOwner(t *testing.T) {
	cred := ownerCredential(&Fattr3{UID: 1000, GID: 100}, "box")
	unix, ok := cred.(rpc.UnixCredential)
	require.True(t, ok)
	assert.Equal(t, uint32(1000), unix.Auth.UID)
	assert.Equal(t, uint32(100), unix.Auth.GID)
	assert.Equal(t, "box", unix.Auth.MachineName)
}

func TestIsFatalWalkErrorBadCookieIsFatal(t *testing.T) {
	assert.True(t, isFatalWalkError(rpcerrors.NewNfsError(StatusBadCookie)))
}

func TestIsFatalWalkErrorOtherNfsErrorIsNotFatal(t *testing.T) {
	assert.False(t, isFatalWalkError(rpcerrors.NewNfsError(StatusAcces)))
}

func TestIsFatalWalkErrorTransportErrorIsFatal(t *testing.T) {
	assert.True(t, isFatalWalkError(rpcerrors.NewTransportError("read", assert.AnError)))
}

// fakeDirServer answers GETATTR and READDIRPLUS calls keyed by the file
// handle in the request, from a canned handle→listing map. A handle with no
// key in the map means the server denies that directory with NFS3ERR_ACCES.
func fakeDirServer(t *testing.T, conn net.Conn, listings map[string][]DirEntry) {
	t.Helper()
	for {
		msg, err := rpc.ReadRecordMarkedMessage(conn)
		if err != nil {
			return
		}

		xid := binary.BigEndian.Uint32(msg[0:4])
		r := bytes.NewReader(msg[4:])
		xdr.DecodeUint32(r) // msg type
		xdr.DecodeUint32(r) // rpcvers
		xdr.DecodeUint32(r) // program
		xdr.DecodeUint32(r) // version
		proc, _ := xdr.DecodeUint32(r)
		xdr.DecodeUint32(r) // cred flavor
		xdr.DecodeOpaque(r)
		xdr.DecodeUint32(r) // verf flavor
		xdr.DecodeOpaque(r)

		handle, _ := xdr.DecodeOpaque(r)

		var result bytes.Buffer
		switch proc {
		case ProcGetAttr:
			binary.Write(&result, binary.BigEndian, uint32(0))
			encodeFattr3(&result, Fattr3{Type: TypeDir})
		case ProcReaddirplus:
			entries, ok := listings[string(handle)]
			if !ok {
				binary.Write(&result, binary.BigEndian, StatusAcces)
				encodePostOpAttrAbsent(&result)
				break
			}
			binary.Write(&result, binary.BigEndian, uint32(0))
			encodePostOpAttrAbsent(&result)
			var verf [8]byte
			result.Write(verf[:])
			for _, e := range entries {
				binary.Write(&result, binary.BigEndian, uint32(1))
				binary.Write(&result, binary.BigEndian, e.FileID)
				encodeString(&result, e.Name)
				binary.Write(&result, binary.BigEndian, e.Cookie)
				encodePostOpAttrPresent(&result, *e.Attr)
				binary.Write(&result, binary.BigEndian, uint32(1))
				encodeOpaque(&result, e.Handle)
			}
			binary.Write(&result, binary.BigEndian, uint32(0)) // terminate list
			binary.Write(&result, binary.BigEndian, uint32(1)) // eof
		default:
			t.Errorf("fakeDirServer: unexpected procedure %d", proc)
			return
		}

		var reply bytes.Buffer
		binary.Write(&reply, binary.BigEndian, xid)
		binary.Write(&reply, binary.BigEndian, rpc.RPCReply)
		binary.Write(&reply, binary.BigEndian, rpc.RPCMsgAccepted)
		binary.Write(&reply, binary.BigEndian, rpc.AuthNull)
		binary.Write(&reply, binary.BigEndian, uint32(0))
		binary.Write(&reply, binary.BigEndian, rpc.RPCSuccess)
		reply.Write(result.Bytes())

		if _, err := conn.Write(rpc.WriteRecordMark(reply.Bytes())); err != nil {
			return
		}
	}
}

func TestWalkContinuesPastDeniedSubdirectory(t *testing.T) {
	client, _, server := newTestClient(t)

	d1 := []byte{0x01}
	d2 := []byte{0x02}
	file := []byte{0x03}
	dirAttr := &Fattr3{Type: TypeDir}
	regAttr := &Fattr3{Type: TypeReg}

	listings := map[string][]DirEntry{
		string(rootHandle): {
			{Name: "d1", Cookie: 1, FileID: 10, Attr: dirAttr, Handle: d1},
			{Name: "d2", Cookie: 2, FileID: 11, Attr: dirAttr, Handle: d2},
		},
		string(d1): {
			{Name: "a.txt", Cookie: 1, FileID: 20, Attr: regAttr, Handle: file},
		},
		// d2 absent: the server denies listing it.
	}
	go fakeDirServer(t, server, listings)

	got := make(map[string]WalkEntry)
	for entry := range Walk(testCtx(t), client, RootToken, "", 1, WalkOptions{}) {
		key := entry.Path
		if entry.Err != nil {
			key += "!err"
		}
		got[key] = entry
	}

	assert.Contains(t, got, "/d1")
	assert.Contains(t, got, "/d1/a.txt")
	assert.Contains(t, got, "/d2")
	require.Contains(t, got, "/d2!err")
	var nfsErr *rpcerrors.NfsError
	require.ErrorAs(t, got["/d2!err"].Err, &nfsErr)
	assert.Equal(t, StatusAcces, nfsErr.Status)
}

// fakeReadServer answers every READ call on conn with up to len(source)
// bytes starting at the requested offset, honoring the caller's requested
// count and reporting eof once the source is exhausted. It stops once ctx
// closes the connection (read error) rather than being told how many
// calls to expect.
func fakeReadServer(t *testing.T, conn net.Conn, source []byte) {
	t.Helper()
	for {
		msg, err := rpc.ReadRecordMarkedMessage(conn)
		if err != nil {
			return
		}

		xid := binary.BigEndian.Uint32(msg[0:4])
		r := bytes.NewReader(msg[4:])
		xdr.DecodeUint32(r) // msg type
		xdr.DecodeUint32(r) // rpcvers
		xdr.DecodeUint32(r) // program
		xdr.DecodeUint32(r) // version
		xdr.DecodeUint32(r) // procedure
		xdr.DecodeUint32(r) // cred flavor
		xdr.DecodeOpaque(r)
		xdr.DecodeUint32(r) // verf flavor
		xdr.DecodeOpaque(r)

		xdr.DecodeOpaque(r) // handle
		offset, _ := xdr.DecodeUint64(r)
		count, _ := xdr.DecodeUint32(r)

		var chunk []byte
		eof := true
		if offset < uint64(len(source)) {
			end := offset + uint64(count)
			if end > uint64(len(source)) {
				end = uint64(len(source))
			}
			chunk = source[offset:end]
			eof = end >= uint64(len(source))
		}

		var result bytes.Buffer
		binary.Write(&result, binary.BigEndian, uint32(0))
		encodePostOpAttrAbsent(&result)
		binary.Write(&result, binary.BigEndian, uint32(len(chunk)))
		eofVal := uint32(0)
		if eof {
			eofVal = 1
		}
		binary.Write(&result, binary.BigEndian, eofVal)
		encodeOpaque(&result, chunk)

		var reply bytes.Buffer
		binary.Write(&reply, binary.BigEndian, xid)
		binary.Write(&reply, binary.BigEndian, rpc.RPCReply)
		binary.Write(&reply, binary.BigEndian, rpc.RPCMsgAccepted)
		binary.Write(&reply, binary.BigEndian, rpc.AuthNull)
		binary.Write(&reply, binary.BigEndian, uint32(0))
		binary.Write(&reply, binary.BigEndian, rpc.RPCSuccess)
		reply.Write(result.Bytes())

		if _, err := conn.Write(rpc.WriteRecordMark(reply.Bytes())); err != nil {
			return
		}
	}
}

func TestDownloadStopsAtEOF(t *testing.T) {
	client, _, server := newTestClient(t)
	source := []byte("0123456789abc")
	go fakeReadServer(t, server, source)

	var dst bytes.Buffer
	total, err := Download(testCtx(t), client, RootToken, &dst, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(source)), total)
	assert.Equal(t, string(source), dst.String())
}

func TestDownloadRespectsMaxBytes(t *testing.T) {
	client, _, server := newTestClient(t)
	source := []byte("0123456789")
	go fakeReadServer(t, server, source)

	var dst bytes.Buffer
	total, err := Download(testCtx(t), client, RootToken, &dst, 10, 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), total)
	assert.Equal(t, "01234", dst.String())
}
