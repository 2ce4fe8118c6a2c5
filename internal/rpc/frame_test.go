package rpc

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/nfsclient/internal/rpcerrors"
)

func TestSplitRecordFragmentsSingleFragment(t *testing.T) {
	got := SplitRecordFragments([]byte{0xAA, 0xBB, 0xCC}, 0)
	want := []byte{0x80, 0x00, 0x00, 0x03, 0xAA, 0xBB, 0xCC}
	assert.Equal(t, want, got)
}

func TestSplitRecordFragmentsTwoFragments(t *testing.T) {
	got := SplitRecordFragments([]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE}, 3)
	want := []byte{
		0x00, 0x00, 0x00, 0x03, 0xAA, 0xBB, 0xCC,
		0x80, 0x00, 0x00, 0x02, 0xDD, 0xEE,
	}
	assert.Equal(t, want, got)
}

func TestSplitRecordFragmentsEmptyMessage(t *testing.T) {
	got := SplitRecordFragments(nil, 3)
	assert.Equal(t, []byte{0x80, 0x00, 0x00, 0x00}, got)
}

// The concatenation of fragment payloads must equal the original message,
// with exactly one last-fragment bit, on the final fragment.
func TestSplitRecordFragmentsReassembles(t *testing.T) {
	for _, size := range []int{0, 1, 3, 4, 7, 100, 1000} {
		msg := bytes.Repeat([]byte{0x5A}, size)
		wire := SplitRecordFragments(msg, 7)

		var payload []byte
		lastBits := 0
		for off := 0; off < len(wire); {
			header := binary.BigEndian.Uint32(wire[off : off+4])
			length := int(header & 0x7FFFFFFF)
			if header&0x80000000 != 0 {
				lastBits++
			}
			payload = append(payload, wire[off+4:off+4+length]...)
			off += 4 + length
		}

		assert.Equal(t, msg, payload, "size %d", size)
		assert.Equal(t, 1, lastBits, "size %d", size)
	}
}

func TestReadRecordMarkedMessageSingleFragment(t *testing.T) {
	r := bytes.NewReader([]byte{0x80, 0x00, 0x00, 0x03, 0xAA, 0xBB, 0xCC})
	msg, err := ReadRecordMarkedMessage(r)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, msg)
}

func TestReadRecordMarkedMessageMultiFragment(t *testing.T) {
	r := bytes.NewReader([]byte{
		0x00, 0x00, 0x00, 0x03, 0xAA, 0xBB, 0xCC,
		0x80, 0x00, 0x00, 0x02, 0xDD, 0xEE,
	})
	msg, err := ReadRecordMarkedMessage(r)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE}, msg)
}

// 0x80000000 is a last fragment with no payload: a valid empty message.
func TestReadRecordMarkedMessageEmptyLastFragment(t *testing.T) {
	r := bytes.NewReader([]byte{0x80, 0x00, 0x00, 0x00})
	msg, err := ReadRecordMarkedMessage(r)
	require.NoError(t, err)
	assert.Empty(t, msg)
}

func TestReadRecordMarkedMessageOversizeFragment(t *testing.T) {
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], 0x80000000|uint32(MaxFragmentSize+1))
	_, err := ReadRecordMarkedMessage(bytes.NewReader(hdr[:]))
	require.Error(t, err)
	var framing *rpcerrors.FramingError
	assert.ErrorAs(t, err, &framing)
}

func TestLargeCallSplitsAcrossFragmentsAndReassembles(t *testing.T) {
	args := bytes.Repeat([]byte{0x42}, 200)

	msg, err := BuildCall(17, ProgramNFS, NFSVersion, 7, nil, args)
	require.NoError(t, err)

	wire := SplitRecordFragments(msg, 64)
	reassembled, err := ReadRecordMarkedMessage(bytes.NewReader(wire))
	require.NoError(t, err)
	assert.Equal(t, msg, reassembled)
}
