// Package rpcerrors defines the typed error taxonomy surfaced by the ONC
// RPC transport, the XDR codec, and the PORTMAP/MOUNT/NFSv3 service
// clients. Each wire-level or protocol-level failure mode gets its own
// type so callers can use errors.As instead of matching on strings.
package rpcerrors

import "fmt"

// TransportError wraps a socket-level failure: connect, read, or write.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NewTransportError builds a TransportError for the given operation.
func NewTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

// FramingError indicates a malformed ONC RPC record-marking fragment, such
// as a declared length exceeding the configured ceiling.
type FramingError struct {
	Message string
}

func (e *FramingError) Error() string { return "rpc framing error: " + e.Message }

// NewFramingError builds a FramingError with the given message.
func NewFramingError(message string) *FramingError {
	return &FramingError{Message: message}
}

// ProtocolViolation indicates the peer sent something the session did not
// expect: a CALL where a REPLY was required, or a reply body that could
// not be parsed against the expected shape.
type ProtocolViolation struct {
	Message string
}

func (e *ProtocolViolation) Error() string { return "rpc protocol violation: " + e.Message }

// NewProtocolViolation builds a ProtocolViolation with the given message.
func NewProtocolViolation(message string) *ProtocolViolation {
	return &ProtocolViolation{Message: message}
}

// RejectSubReason distinguishes the two MSG_DENIED sub-reasons defined by
// RFC 5531 Section 9.
type RejectSubReason uint32

const (
	RejectRPCMismatch RejectSubReason = 0
	RejectAuthError   RejectSubReason = 1
)

func (r RejectSubReason) String() string {
	switch r {
	case RejectRPCMismatch:
		return "RPC_MISMATCH"
	case RejectAuthError:
		return "AUTH_ERROR"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(r))
	}
}

// RpcReplyDenied means the peer refused the RPC message outright
// (MSG_DENIED), before any procedure-specific processing happened.
type RpcReplyDenied struct {
	Sub RejectSubReason
}

func (e *RpcReplyDenied) Error() string {
	return fmt.Sprintf("rpc call denied: %s", e.Sub)
}

// NewRpcReplyDenied builds an RpcReplyDenied for the given sub-reason.
func NewRpcReplyDenied(sub RejectSubReason) *RpcReplyDenied {
	return &RpcReplyDenied{Sub: sub}
}

// AcceptCode enumerates the non-SUCCESS accept_stat values defined by
// RFC 5531 Section 9.
type AcceptCode uint32

const (
	AcceptSuccess      AcceptCode = 0
	AcceptProgUnavail  AcceptCode = 1
	AcceptProgMismatch AcceptCode = 2
	AcceptProcUnavail  AcceptCode = 3
	AcceptGarbageArgs  AcceptCode = 4
	AcceptSystemErr    AcceptCode = 5
)

func (c AcceptCode) String() string {
	switch c {
	case AcceptSuccess:
		return "SUCCESS"
	case AcceptProgUnavail:
		return "PROG_UNAVAIL"
	case AcceptProgMismatch:
		return "PROG_MISMATCH"
	case AcceptProcUnavail:
		return "PROC_UNAVAIL"
	case AcceptGarbageArgs:
		return "GARBAGE_ARGS"
	case AcceptSystemErr:
		return "SYSTEM_ERR"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(c))
	}
}

// RpcCallRejected means the message was MSG_ACCEPTED but the accept_stat
// was not SUCCESS: the program/version/procedure did not match, or the
// server could not parse the arguments.
type RpcCallRejected struct {
	Code AcceptCode
}

func (e *RpcCallRejected) Error() string {
	return fmt.Sprintf("rpc call rejected: %s", e.Code)
}

// NewRpcCallRejected builds an RpcCallRejected for the given accept code.
func NewRpcCallRejected(code AcceptCode) *RpcCallRejected {
	return &RpcCallRejected{Code: code}
}

// MountDenied means MOUNT MNT returned a non-zero status.
type MountDenied struct {
	Errno uint32
}

func (e *MountDenied) Error() string {
	return fmt.Sprintf("mount denied: errno %d", e.Errno)
}

// NewMountDenied builds a MountDenied for the given MOUNT status code.
func NewMountDenied(errno uint32) *MountDenied {
	return &MountDenied{Errno: errno}
}

// NfsError means an NFSv3 procedure returned a non-zero nfsstat3 status.
type NfsError struct {
	Status uint32
}

func (e *NfsError) Error() string {
	return fmt.Sprintf("nfs error: status %d (%s)", e.Status, nfsStatusName(e.Status))
}

// NewNfsError builds an NfsError for the given nfsstat3 code.
func NewNfsError(status uint32) *NfsError {
	return &NfsError{Status: status}
}

// HandleUnknown means the caller passed a local token that is not present
// in the handle registry.
type HandleUnknown struct {
	Token uint64
}

func (e *HandleUnknown) Error() string {
	return fmt.Sprintf("handle unknown: token %d", e.Token)
}

// NewHandleUnknown builds a HandleUnknown for the given token.
func NewHandleUnknown(token uint64) *HandleUnknown {
	return &HandleUnknown{Token: token}
}

// PortmapUnavailable means the initial connection to the portmapper itself
// failed.
type PortmapUnavailable struct {
	Err error
}

func (e *PortmapUnavailable) Error() string {
	return fmt.Sprintf("portmapper unavailable: %v", e.Err)
}

func (e *PortmapUnavailable) Unwrap() error { return e.Err }

// NewPortmapUnavailable builds a PortmapUnavailable wrapping the dial/call
// error.
func NewPortmapUnavailable(err error) *PortmapUnavailable {
	return &PortmapUnavailable{Err: err}
}

// ServiceNotRegistered means GETPORT succeeded but returned port 0: the
// requested (program, version, protocol) tuple is not registered.
type ServiceNotRegistered struct {
	Program uint32
	Version uint32
}

func (e *ServiceNotRegistered) Error() string {
	return fmt.Sprintf("service not registered: program %d version %d", e.Program, e.Version)
}

// NewServiceNotRegistered builds a ServiceNotRegistered for the given
// program/version pair.
func NewServiceNotRegistered(program, version uint32) *ServiceNotRegistered {
	return &ServiceNotRegistered{Program: program, Version: version}
}

// TruncatedMessage means an XDR decode ran past the end of the available
// bytes.
type TruncatedMessage struct {
	Field string
	Err   error
}

func (e *TruncatedMessage) Error() string {
	return fmt.Sprintf("truncated message reading %s: %v", e.Field, e.Err)
}

func (e *TruncatedMessage) Unwrap() error { return e.Err }

// NewTruncatedMessage builds a TruncatedMessage for the given field name
// and underlying read error.
func NewTruncatedMessage(field string, err error) *TruncatedMessage {
	return &TruncatedMessage{Field: field, Err: err}
}

// MalformedMessage means an XDR decode encountered a value it could parse
// structurally but that violates the wire contract: an unknown union tag,
// an opaque field longer than the configured ceiling, or similar.
type MalformedMessage struct {
	Message string
}

func (e *MalformedMessage) Error() string { return "malformed message: " + e.Message }

// NewMalformedMessage builds a MalformedMessage with the given message.
func NewMalformedMessage(message string) *MalformedMessage {
	return &MalformedMessage{Message: message}
}

// nfsStatusName renders the common NFS3ERR_* codes by name; anything else
// is reported numerically only.
func nfsStatusName(status uint32) string {
	switch status {
	case 0:
		return "NFS3_OK"
	case 1:
		return "NFS3ERR_PERM"
	case 2:
		return "NFS3ERR_NOENT"
	case 5:
		return "NFS3ERR_IO"
	case 13:
		return "NFS3ERR_ACCES"
	case 17:
		return "NFS3ERR_EXIST"
	case 18:
		return "NFS3ERR_XDEV"
	case 20:
		return "NFS3ERR_NOTDIR"
	case 21:
		return "NFS3ERR_ISDIR"
	case 22:
		return "NFS3ERR_INVAL"
	case 27:
		return "NFS3ERR_FBIG"
	case 28:
		return "NFS3ERR_NOSPC"
	case 30:
		return "NFS3ERR_ROFS"
	case 63:
		return "NFS3ERR_NAMETOOLONG"
	case 66:
		return "NFS3ERR_NOTEMPTY"
	case 70:
		return "NFS3ERR_STALE"
	case 10004:
		return "NFS3ERR_BAD_COOKIE"
	case 10005:
		return "NFS3ERR_NOTSUPP"
	default:
		return "unknown"
	}
}
