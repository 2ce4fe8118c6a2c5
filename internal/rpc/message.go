package rpc

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/marmos91/nfsclient/internal/rpcerrors"
	"github.com/marmos91/nfsclient/internal/xdr"
)

// Credential is anything that can encode itself as the body of an
// opaque_auth structure along with its flavor tag.
type Credential interface {
	Flavor() uint32
	Encode(buf *bytes.Buffer) error
}

// NullCredential is the AUTH_NONE credential: flavor 0, zero-length body.
type NullCredential struct{}

func (NullCredential) Flavor() uint32                 { return AuthNull }
func (NullCredential) Encode(buf *bytes.Buffer) error { return nil }

// UnixCredential adapts a UnixAuth into the Credential interface.
type UnixCredential struct {
	Auth *UnixAuth
}

func (c UnixCredential) Flavor() uint32 { return AuthUnix }
func (c UnixCredential) Encode(buf *bytes.Buffer) error {
	return c.Auth.Encode(buf)
}

// BuildCall encodes a complete ONC RPC call message (RFC 5531 Section 8.1):
// xid, msg type, rpc version, program/version/procedure, credential and
// verifier, followed by the already-encoded procedure arguments.
func BuildCall(xid, program, version, procedure uint32, cred Credential, args []byte) ([]byte, error) {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.BigEndian, xid); err != nil {
		return nil, fmt.Errorf("write xid: %w", err)
	}
	if err := binary.Write(&buf, binary.BigEndian, RPCCall); err != nil {
		return nil, fmt.Errorf("write msg type: %w", err)
	}
	if err := binary.Write(&buf, binary.BigEndian, Version); err != nil {
		return nil, fmt.Errorf("write rpc version: %w", err)
	}
	if err := binary.Write(&buf, binary.BigEndian, program); err != nil {
		return nil, fmt.Errorf("write program: %w", err)
	}
	if err := binary.Write(&buf, binary.BigEndian, version); err != nil {
		return nil, fmt.Errorf("write version: %w", err)
	}
	if err := binary.Write(&buf, binary.BigEndian, procedure); err != nil {
		return nil, fmt.Errorf("write procedure: %w", err)
	}

	if cred == nil {
		cred = NullCredential{}
	}
	if err := writeOpaqueAuth(&buf, cred); err != nil {
		return nil, fmt.Errorf("write credential: %w", err)
	}
	if err := writeOpaqueAuth(&buf, NullCredential{}); err != nil {
		return nil, fmt.Errorf("write verifier: %w", err)
	}

	if _, err := buf.Write(args); err != nil {
		return nil, fmt.Errorf("write args: %w", err)
	}

	return buf.Bytes(), nil
}

func writeOpaqueAuth(buf *bytes.Buffer, cred Credential) error {
	if err := xdr.WriteUint32(buf, cred.Flavor()); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := cred.Encode(&body); err != nil {
		return err
	}
	return xdr.WriteOpaque(buf, body.Bytes())
}

// ReplyHeader is the parsed disposition of a REPLY message up to (but not
// including) the procedure-specific results.
type ReplyHeader struct {
	XID    uint32
	Stat   uint32 // RPCMsgAccepted or RPCMsgDenied
	Verf   []byte
	Accept uint32 // valid only when Stat == RPCMsgAccepted
}

// ParseReplyHeader reads the XID, msg type, and accept/reject disposition
// from a complete RPC reply message and returns the header together with
// the remaining bytes, which are the procedure results (or, on a
// non-success disposition, an error describing the rejection).
func ParseReplyHeader(msg []byte) (*ReplyHeader, []byte, error) {
	r := bytes.NewReader(msg)

	xid, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, nil, err
	}

	msgType, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, nil, err
	}
	if msgType != RPCReply {
		return nil, nil, rpcerrors.NewProtocolViolation("expected REPLY message type")
	}

	replyStat, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, nil, err
	}

	header := &ReplyHeader{XID: xid, Stat: replyStat}

	if replyStat == RPCMsgDenied {
		sub, err := xdr.DecodeUint32(r)
		if err != nil {
			return nil, nil, err
		}
		if sub == RPCMismatch {
			// mismatch_info: low, high versions follow; not surfaced to
			// callers beyond the rejection itself.
			if _, err := xdr.DecodeUint32(r); err != nil {
				return nil, nil, err
			}
			if _, err := xdr.DecodeUint32(r); err != nil {
				return nil, nil, err
			}
		}
		return header, nil, &rpcerrors.RpcReplyDenied{Sub: rpcerrors.RejectSubReason(sub)}
	}

	if replyStat != RPCMsgAccepted {
		return nil, nil, rpcerrors.NewMalformedMessage("invalid reply_stat")
	}

	verfFlavor, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, nil, err
	}
	_ = verfFlavor
	verfBody, err := xdr.DecodeOpaque(r)
	if err != nil {
		return nil, nil, err
	}
	header.Verf = verfBody

	acceptStat, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, nil, err
	}
	header.Accept = acceptStat

	switch acceptStat {
	case RPCSuccess:
		rest := msg[len(msg)-r.Len():]
		return header, rest, nil
	case RPCProgMismatch:
		// mismatch_info: low, high; consumed so callers never see it.
		if _, err := xdr.DecodeUint32(r); err != nil {
			return nil, nil, err
		}
		if _, err := xdr.DecodeUint32(r); err != nil {
			return nil, nil, err
		}
		return header, nil, &rpcerrors.RpcCallRejected{Code: rpcerrors.AcceptCode(acceptStat)}
	default:
		return header, nil, &rpcerrors.RpcCallRejected{Code: rpcerrors.AcceptCode(acceptStat)}
	}
}
