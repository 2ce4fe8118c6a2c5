package nfsclient

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/marmos91/nfsclient/internal/mount"
	"github.com/marmos91/nfsclient/internal/nfs3"
	"github.com/marmos91/nfsclient/internal/portmap"
	"github.com/marmos91/nfsclient/internal/rpc"
	"github.com/marmos91/nfsclient/internal/rpcerrors"
)

// Metrics tracks Prometheus metrics for RPC calls issued by a Client: total
// calls, call latency, rejected calls, and transport errors, broken down by
// program/procedure.
//
// All metrics use the "nfsclient_" prefix. Methods handle a nil receiver
// gracefully, so a nil *Metrics acts as a no-op when metrics are disabled.
type Metrics struct {
	// CallsTotal counts every RPC call attempted, labeled by program and
	// procedure name.
	CallsTotal *prometheus.CounterVec

	// CallDuration tracks RPC call round-trip latency in seconds, labeled
	// by program and procedure name.
	CallDuration *prometheus.HistogramVec

	// RejectedCalls counts calls the peer rejected at the RPC layer
	// (MSG_DENIED or a non-SUCCESS accept_stat), labeled by program.
	RejectedCalls *prometheus.CounterVec

	// TransportErrors counts calls that failed before a reply was ever
	// parsed: write, read, or framing failures.
	TransportErrors *prometheus.CounterVec
}

var (
	metricsOnce     sync.Once
	metricsInstance *Metrics
)

// NewMetrics creates and registers the client's Prometheus metrics. If
// registerer is nil, prometheus.DefaultRegisterer is used. Idempotent via
// sync.Once so constructing multiple Clients in one process does not
// double-register collectors.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	metricsOnce.Do(func() {
		if registerer == nil {
			registerer = prometheus.DefaultRegisterer
		}

		m := &Metrics{
			CallsTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "nfsclient_rpc_calls_total",
					Help: "Total RPC calls attempted, by program and procedure",
				},
				[]string{"program", "procedure"},
			),
			CallDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "nfsclient_rpc_call_duration_seconds",
					Help:    "RPC call round-trip latency in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"program", "procedure"},
			),
			RejectedCalls: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "nfsclient_rpc_calls_rejected_total",
					Help: "Total RPC calls rejected by the peer at the RPC layer",
				},
				[]string{"program"},
			),
			TransportErrors: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "nfsclient_rpc_transport_errors_total",
					Help: "Total RPC calls that failed before a reply was parsed",
				},
				[]string{"program"},
			),
		}

		registerer.MustRegister(
			m.CallsTotal,
			m.CallDuration,
			m.RejectedCalls,
			m.TransportErrors,
		)

		metricsInstance = m
	})

	return metricsInstance
}

// programName renders one of the three well-known ONC RPC program numbers
// this client speaks, or "unknown" for anything else.
func programName(program uint32) string {
	switch program {
	case rpc.ProgramPortmap:
		return "portmap"
	case rpc.ProgramMount:
		return "mount"
	case rpc.ProgramNFS:
		return "nfs3"
	default:
		return "unknown"
	}
}

// procedureName maps a procedure number to its name within program, falling
// back to "unknown" for anything this client does not itself call.
func procedureName(program, procedure uint32) string {
	switch program {
	case rpc.ProgramPortmap:
		switch procedure {
		case portmap.ProcNull:
			return "NULL"
		case portmap.ProcGetPort:
			return "GETPORT"
		case portmap.ProcDump:
			return "DUMP"
		case portmap.ProcGetTime:
			return "GETTIME"
		case portmap.ProcCallIt:
			return "CALLIT"
		}
	case rpc.ProgramMount:
		switch procedure {
		case mount.ProcNull:
			return "NULL"
		case mount.ProcMnt:
			return "MNT"
		case mount.ProcDump:
			return "DUMP"
		case mount.ProcUmnt:
			return "UMNT"
		case mount.ProcUmntAll:
			return "UMNTALL"
		case mount.ProcExport:
			return "EXPORT"
		}
	case rpc.ProgramNFS:
		switch procedure {
		case nfs3.ProcNull:
			return "NULL"
		case nfs3.ProcGetAttr:
			return "GETATTR"
		case nfs3.ProcSetAttr:
			return "SETATTR"
		case nfs3.ProcLookup:
			return "LOOKUP"
		case nfs3.ProcAccess:
			return "ACCESS"
		case nfs3.ProcReadlink:
			return "READLINK"
		case nfs3.ProcRead:
			return "READ"
		case nfs3.ProcWrite:
			return "WRITE"
		case nfs3.ProcCreate:
			return "CREATE"
		case nfs3.ProcMkdir:
			return "MKDIR"
		case nfs3.ProcSymlink:
			return "SYMLINK"
		case nfs3.ProcMknod:
			return "MKNOD"
		case nfs3.ProcRemove:
			return "REMOVE"
		case nfs3.ProcRmdir:
			return "RMDIR"
		case nfs3.ProcRename:
			return "RENAME"
		case nfs3.ProcLink:
			return "LINK"
		case nfs3.ProcReaddir:
			return "READDIR"
		case nfs3.ProcReaddirplus:
			return "READDIRPLUS"
		case nfs3.ProcFsstat:
			return "FSSTAT"
		case nfs3.ProcFsinfo:
			return "FSINFO"
		case nfs3.ProcPathconf:
			return "PATHCONF"
		case nfs3.ProcCommit:
			return "COMMIT"
		}
	}
	return "unknown"
}

// ObserveCall implements rpc.MetricsRecorder, recording every RPC call's
// outcome and latency, and classifying failures as rejected (peer-level RPC
// rejection) or transport (never got a parseable reply) so the two don't get
// conflated in dashboards.
func (m *Metrics) ObserveCall(program, procedure uint32, duration time.Duration, err error) {
	if m == nil {
		return
	}

	prog := programName(program)
	proc := procedureName(program, procedure)

	m.CallsTotal.WithLabelValues(prog, proc).Inc()
	m.CallDuration.WithLabelValues(prog, proc).Observe(duration.Seconds())

	if err == nil {
		return
	}

	var rejected *rpcerrors.RpcCallRejected
	var denied *rpcerrors.RpcReplyDenied
	if errors.As(err, &rejected) || errors.As(err, &denied) {
		m.RejectedCalls.WithLabelValues(prog).Inc()
		return
	}

	var transportErr *rpcerrors.TransportError
	if errors.As(err, &transportErr) {
		m.TransportErrors.WithLabelValues(prog).Inc()
	}
}
