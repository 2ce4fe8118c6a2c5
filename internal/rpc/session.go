package rpc

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/marmos91/nfsclient/internal/logger"
	"github.com/marmos91/nfsclient/internal/rpcerrors"
)

// firstXID is the starting value for the per-session XID generator. XIDs
// wrap back to this value rather than to 0, so a stray 0 on the wire is
// never mistaken for a live call.
const firstXID uint32 = 10

// MetricsRecorder receives call-level observations from a Session. A nil
// recorder is a valid, no-op default.
type MetricsRecorder interface {
	ObserveCall(program, procedure uint32, duration time.Duration, err error)
}

type pendingCall struct {
	reply chan []byte
	err   chan error
}

// Session multiplexes ONC RPC calls and replies over a single TCP
// connection, matching replies to outstanding calls by XID. A Session is
// not bound to one program: each Call names its own program and version,
// so calls to different programs registered on the same port (PORTMAP,
// MOUNT, NFS can all live on :2049 on many servers) may be in flight on
// one connection at once.
type Session struct {
	conn        net.Conn
	metrics     MetricsRecorder
	maxFragment uint32

	mu      sync.Mutex
	nextXID uint32
	pending map[uint32]*pendingCall
	closed  bool
	closeCh chan struct{}
}

// SessionOption customizes a Session at construction time.
type SessionOption func(*Session)

// WithMaxFragmentSize caps the payload size of each outbound record-marking
// fragment; messages larger than n are split across fragments. Values of 0
// or above MaxFragmentSize are clamped to the defaults.
func WithMaxFragmentSize(n uint32) SessionOption {
	return func(s *Session) {
		if n == 0 || n > MaxFragmentSize {
			n = DefaultFragmentSize
		}
		s.maxFragment = n
	}
}

// NewSession wraps an established connection and starts the background
// reader goroutine that demultiplexes replies. The caller owns conn's
// lifecycle up to Close.
func NewSession(conn net.Conn, metrics MetricsRecorder, opts ...SessionOption) *Session {
	s := &Session{
		conn:        conn,
		metrics:     metrics,
		maxFragment: DefaultFragmentSize,
		nextXID:     firstXID,
		pending:     make(map[uint32]*pendingCall),
		closeCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.readLoop()
	return s
}

func (s *Session) allocateXID() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	xid := s.nextXID
	s.nextXID++
	if s.nextXID == 0 {
		s.nextXID = firstXID
	}
	return xid
}

// Call sends a single RPC call and blocks until the matching reply
// arrives, the session is closed, or ctx is done. The returned bytes are
// the procedure-specific result payload, with the RPC reply envelope
// already stripped and validated.
func (s *Session) Call(ctx context.Context, program, version, procedure uint32, cred Credential, args []byte) ([]byte, error) {
	start := time.Now()
	xid := s.allocateXID()

	msg, err := BuildCall(xid, program, version, procedure, cred, args)
	if err != nil {
		return nil, fmt.Errorf("build call: %w", err)
	}

	call := &pendingCall{reply: make(chan []byte, 1), err: make(chan error, 1)}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, rpcerrors.NewTransportError("call", fmt.Errorf("session closed"))
	}
	if _, busy := s.pending[xid]; busy {
		s.mu.Unlock()
		violation := rpcerrors.NewProtocolViolation(fmt.Sprintf("xid %d reused while its call is outstanding", xid))
		logger.Error("rpc session xid reuse", "xid", xid)
		s.abort(violation)
		return nil, violation
	}
	s.pending[xid] = call
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, xid)
		s.mu.Unlock()
	}()

	if deadline, ok := ctx.Deadline(); ok {
		_ = s.conn.SetWriteDeadline(deadline)
	}
	if _, err := s.conn.Write(SplitRecordFragments(msg, s.maxFragment)); err != nil {
		wrapped := rpcerrors.NewTransportError("write call", err)
		s.recordMetric(program, procedure, start, wrapped)
		return nil, wrapped
	}

	select {
	case result := <-call.reply:
		s.recordMetric(program, procedure, start, nil)
		return result, nil
	case err := <-call.err:
		s.recordMetric(program, procedure, start, err)
		return nil, err
	case <-ctx.Done():
		s.recordMetric(program, procedure, start, ctx.Err())
		return nil, ctx.Err()
	case <-s.closeCh:
		err := rpcerrors.NewTransportError("call", fmt.Errorf("session closed"))
		s.recordMetric(program, procedure, start, err)
		return nil, err
	}
}

func (s *Session) recordMetric(program, procedure uint32, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.ObserveCall(program, procedure, time.Since(start), err)
	}
}

// readLoop reassembles record-marked messages and dispatches each reply
// to its waiting caller by XID. A message that is not a REPLY (this client
// never acts as a server) poisons the session with a ProtocolViolation.
// readLoop exits, aborting every pending call, when the connection fails
// or such a violation is seen.
func (s *Session) readLoop() {
	for {
		msg, err := ReadRecordMarkedMessage(s.conn)
		if err != nil {
			s.abort(rpcerrors.NewTransportError("read reply", err))
			return
		}
		if len(msg) < 8 {
			continue
		}

		msgType := binary.BigEndian.Uint32(msg[4:8])
		if msgType != RPCReply {
			logger.Debug("rpc session received non-REPLY message", "type", msgType)
			s.abort(rpcerrors.NewProtocolViolation("received a CALL where a REPLY was expected"))
			return
		}

		xid := binary.BigEndian.Uint32(msg[0:4])

		s.mu.Lock()
		call, ok := s.pending[xid]
		s.mu.Unlock()
		if !ok {
			logger.Debug("rpc session reply for unknown xid", "xid", xid)
			continue
		}

		header, result, err := ParseReplyHeader(msg)
		if err != nil {
			call.err <- err
			continue
		}
		_ = header
		call.reply <- result
	}
}

func (s *Session) abort(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.closeCh)
	for xid, call := range s.pending {
		call.err <- err
		delete(s.pending, xid)
	}
}

// Close shuts down the underlying connection and aborts any outstanding
// calls. Safe to call more than once.
func (s *Session) Close() error {
	s.abort(rpcerrors.NewTransportError("close", fmt.Errorf("session closed by caller")))
	return s.conn.Close()
}
