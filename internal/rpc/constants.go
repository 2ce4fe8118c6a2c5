// Package rpc implements the ONC RPC (RFC 5531) call/reply protocol and its
// TCP record-marking framing, the transport that PORTMAP, MOUNT and NFSv3 all
// ride on top of.
package rpc

const (
	// Version is the ONC RPC protocol version carried in every call
	// message.
	Version uint32 = 2
)

// Program numbers assigned by RFC 1057/1813 and the portmapper registry.
const (
	ProgramPortmap uint32 = 100000
	ProgramMount   uint32 = 100005
	ProgramNFS     uint32 = 100003
)

// Program version numbers this client speaks. MOUNT is v1 here: the
// server this client targets exports the original mount protocol
// alongside NFSv3, not the v3 mount protocol some servers also offer.
const (
	PortmapVersion uint32 = 2
	// PortmapVersion4 is the rpcbind v4 protocol, needed only for GETTIME.
	PortmapVersion4 uint32 = 4
	MountVersion    uint32 = 1
	NFSVersion      uint32 = 3
)

// IPProtoTCP is the protocol value portmapper GETPORT/DUMP expect for a
// stream-oriented registration.
const IPProtoTCP uint32 = 6

// MsgType distinguishes CALL from REPLY in the RPC message header
// (RFC 5531 Section 8).
const (
	RPCCall  uint32 = 0
	RPCReply uint32 = 1
)

// ReplyStat is the top-level disposition of an RPC reply.
const (
	RPCMsgAccepted uint32 = 0
	RPCMsgDenied   uint32 = 1
)

// RejectStat sub-reasons for MSG_DENIED (RFC 5531 Section 9).
const (
	RPCMismatch uint32 = 0
	AuthError   uint32 = 1
)

// AcceptStat values for MSG_ACCEPTED (RFC 5531 Section 9).
const (
	RPCSuccess      uint32 = 0
	RPCProgUnavail  uint32 = 1
	RPCProgMismatch uint32 = 2
	RPCProcUnavail  uint32 = 3
	RPCGarbageArgs  uint32 = 4
	RPCSystemErr    uint32 = 5
)

// Auth flavors (RFC 5531 Section 8.2).
const (
	AuthNull  uint32 = 0
	AuthUnix  uint32 = 1
	AuthShort uint32 = 2
	AuthDES   uint32 = 3
)

// maxGIDs is the ceiling on AUTH_SYS supplementary groups per RFC 5531.
const maxGIDs = 16

// maxMachineNameLength is the ceiling this client enforces on the AUTH_SYS
// machine name field, matching common server-side limits.
const maxMachineNameLength = 255

// MaxFragmentSize bounds a single ONC RPC record-marking fragment. It must
// exceed the largest NFSv3 READ/WRITE payload this client requests plus
// header overhead.
const MaxFragmentSize = (1 << 20) + (1 << 18)

// DefaultFragmentSize is the outbound fragment cap used when a Session is
// constructed without WithMaxFragmentSize.
const DefaultFragmentSize uint32 = 1 << 20
