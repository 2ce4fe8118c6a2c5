package rpc

import (
	"encoding/binary"
	"io"

	"github.com/marmos91/nfsclient/internal/rpcerrors"
	"github.com/marmos91/nfsclient/pkg/bufpool"
)

// FragmentHeader is the parsed 4-byte ONC RPC record-marking header
// (RFC 5531 Section 11): bit 31 is the last-fragment flag, bits 0-30 carry
// the fragment's byte length.
type FragmentHeader struct {
	IsLast bool
	Length uint32
}

// ReadFragmentHeader reads and parses one fragment header from r. EOF is
// returned unwrapped so callers can distinguish a clean peer disconnect
// from a mid-message failure.
func ReadFragmentHeader(r io.Reader) (*FragmentHeader, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	header := binary.BigEndian.Uint32(buf[:])
	return &FragmentHeader{
		IsLast: header&0x80000000 != 0,
		Length: header & 0x7FFFFFFF,
	}, nil
}

// WriteRecordMark prepends a single-fragment record-marking header to msg.
func WriteRecordMark(msg []byte) []byte {
	header := uint32(len(msg)) | 0x80000000
	out := make([]byte, 4+len(msg))
	binary.BigEndian.PutUint32(out[0:4], header)
	copy(out[4:], msg)
	return out
}

// SplitRecordFragments encodes msg as one or more record-marking fragments
// of at most maxFragment payload bytes each, with the last-fragment bit set
// only on the final one. A maxFragment of 0 falls back to
// DefaultFragmentSize. An empty msg still produces one empty last fragment.
func SplitRecordFragments(msg []byte, maxFragment uint32) []byte {
	if maxFragment == 0 {
		maxFragment = DefaultFragmentSize
	}

	fragments := (uint32(len(msg)) + maxFragment - 1) / maxFragment
	if fragments == 0 {
		fragments = 1
	}
	out := make([]byte, 0, uint32(len(msg))+4*fragments)

	rest := msg
	for {
		chunk := rest
		if uint32(len(chunk)) > maxFragment {
			chunk = chunk[:maxFragment]
		}
		rest = rest[len(chunk):]

		header := uint32(len(chunk))
		if len(rest) == 0 {
			header |= 0x80000000
		}
		var hdr [4]byte
		binary.BigEndian.PutUint32(hdr[:], header)
		out = append(out, hdr[:]...)
		out = append(out, chunk...)

		if len(rest) == 0 {
			return out
		}
	}
}

// ReadRecordMarkedMessage reassembles one complete RPC message (possibly
// spread across several fragments) from r, using the pooled buffer for
// the fragment payload when there is exactly one fragment and growing a
// plain slice for the (uncommon) multi-fragment case.
func ReadRecordMarkedMessage(r io.Reader) ([]byte, error) {
	var whole []byte
	for {
		header, err := ReadFragmentHeader(r)
		if err != nil {
			return nil, err
		}
		if header.Length > MaxFragmentSize {
			return nil, rpcerrors.NewFramingError("fragment exceeds maximum size")
		}

		frag := bufpool.Get(int(header.Length))
		if _, err := io.ReadFull(r, frag); err != nil {
			bufpool.Put(frag)
			return nil, rpcerrors.NewTransportError("read fragment", err)
		}

		if whole == nil && header.IsLast {
			out := make([]byte, len(frag))
			copy(out, frag)
			bufpool.Put(frag)
			return out, nil
		}

		whole = append(whole, frag...)
		bufpool.Put(frag)
		if header.IsLast {
			return whole, nil
		}
	}
}
