package mount

import (
	"bytes"
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/marmos91/nfsclient/internal/rpc"
	"github.com/marmos91/nfsclient/internal/rpcerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func replyWithResult(t *testing.T, conn net.Conn, result []byte) {
	t.Helper()
	msg, err := rpc.ReadRecordMarkedMessage(conn)
	require.NoError(t, err)
	xid := binary.BigEndian.Uint32(msg[0:4])

	var reply bytes.Buffer
	binary.Write(&reply, binary.BigEndian, xid)
	binary.Write(&reply, binary.BigEndian, rpc.RPCReply)
	binary.Write(&reply, binary.BigEndian, rpc.RPCMsgAccepted)
	binary.Write(&reply, binary.BigEndian, rpc.AuthNull)
	binary.Write(&reply, binary.BigEndian, uint32(0))
	binary.Write(&reply, binary.BigEndian, rpc.RPCSuccess)
	reply.Write(result)

	_, err = conn.Write(rpc.WriteRecordMark(reply.Bytes()))
	require.NoError(t, err)
}

func newTestClient(t *testing.T) (*Client, net.Conn) {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	t.Cleanup(func() { clientConn.Close(); serverConn.Close() })
	session := rpc.NewSession(clientConn, nil)
	t.Cleanup(func() { session.Close() })
	return New(session, nil), serverConn
}

func encodeOpaque(buf *bytes.Buffer, data []byte) {
	binary.Write(buf, binary.BigEndian, uint32(len(data)))
	buf.Write(data)
	for i := len(data); i%4 != 0; i++ {
		buf.WriteByte(0)
	}
}

func encodeString(buf *bytes.Buffer, s string) {
	encodeOpaque(buf, []byte(s))
}

func TestMntReturnsRootHandleOnSuccess(t *testing.T) {
	client, server := newTestClient(t)

	var result bytes.Buffer
	binary.Write(&result, binary.BigEndian, uint32(0))
	encodeOpaque(&result, []byte{0x01, 0x02, 0x03, 0x04})

	go replyWithResult(t, server, result.Bytes())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	handle, err := client.Mnt(ctx, "/export")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, handle)
}

func TestMntReturnsMountDeniedOnNonZeroStatus(t *testing.T) {
	client, server := newTestClient(t)

	var result bytes.Buffer
	binary.Write(&result, binary.BigEndian, uint32(13)) // EACCES

	go replyWithResult(t, server, result.Bytes())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := client.Mnt(ctx, "/private")
	require.Error(t, err)
	var denied *rpcerrors.MountDenied
	assert.ErrorAs(t, err, &denied)
	assert.Equal(t, uint32(13), denied.Errno)
}

func TestDumpParsesMountEntries(t *testing.T) {
	client, server := newTestClient(t)

	var result bytes.Buffer
	binary.Write(&result, binary.BigEndian, uint32(1))
	encodeString(&result, "client1.example.com")
	encodeString(&result, "/export")
	binary.Write(&result, binary.BigEndian, uint32(0))

	go replyWithResult(t, server, result.Bytes())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	entries, err := client.Dump(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "client1.example.com", entries[0].Hostname)
	assert.Equal(t, "/export", entries[0].Directory)
}

func TestExportParsesNestedGroupLists(t *testing.T) {
	client, server := newTestClient(t)

	var result bytes.Buffer
	binary.Write(&result, binary.BigEndian, uint32(1))
	encodeString(&result, "/export")
	binary.Write(&result, binary.BigEndian, uint32(1))
	encodeString(&result, "192.168.1.0/24")
	binary.Write(&result, binary.BigEndian, uint32(0))
	binary.Write(&result, binary.BigEndian, uint32(0))

	go replyWithResult(t, server, result.Bytes())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	entries, err := client.Export(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "/export", entries[0].Directory)
	assert.Equal(t, []string{"192.168.1.0/24"}, entries[0].Groups)
}
