// Package nfsclient is the public entry point: it bootstraps a connection
// to an NFSv3 server (resolving services via the portmapper, mounting an
// export, then issuing NFS3 procedures) and exposes the resulting Client
// alongside the lower-level internal/nfs3.Client it wraps.
package nfsclient

import (
	"context"
	"fmt"
	"net"

	"github.com/marmos91/nfsclient/internal/logger"
	"github.com/marmos91/nfsclient/internal/mount"
	"github.com/marmos91/nfsclient/internal/nfs3"
	"github.com/marmos91/nfsclient/internal/portmap"
	"github.com/marmos91/nfsclient/internal/rpc"
	"github.com/marmos91/nfsclient/internal/rpcerrors"
)

// State identifies a Client's position in the bootstrap sequence.
type State int

const (
	// StateInit is the initial state before Connect is called.
	StateInit State = iota
	// StatePortmapResolved means the MOUNT and NFS ports have been
	// determined (via the portmapper or Config.Ports overrides).
	StatePortmapResolved
	// StateConnected means a session is open to the MOUNT and NFS
	// services, but the export has not been mounted yet.
	StateConnected
	// StateMounted means Mnt succeeded and a root file handle has been
	// registered.
	StateMounted
	// StateActive is StateMounted plus a live NFS3 client ready for
	// GETATTR/LOOKUP/READ/etc. This is the state Connect leaves the
	// Client in on success.
	StateActive
	// StateClosed means Close has been called; the Client is no longer
	// usable.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StatePortmapResolved:
		return "portmap-resolved"
	case StateConnected:
		return "connected"
	case StateMounted:
		return "mounted"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

const portmapPort = 111

// Client is a bootstrapped NFSv3 client: one TCP connection to the mount
// service, one to the NFS service (the same connection when the server
// multiplexes both programs on one port, as most do), and the registry of
// file handles discovered along the way.
type Client struct {
	cfg   *Config
	state State

	portmapConn net.Conn
	mountConn   net.Conn
	nfsConn     net.Conn

	mountSession *rpc.Session
	nfsSession   *rpc.Session

	mountClient *mount.Client
	NFS         *nfs3.Client

	metrics *Metrics
}

// New creates a Client in StateInit. Call Connect to run the bootstrap
// sequence before issuing any NFS3 procedure.
func New(cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := &Client{cfg: cfg, state: StateInit}
	if cfg.Metrics.Enabled {
		c.metrics = NewMetrics(nil)
	}
	return c
}

// State reports the Client's current bootstrap state.
func (c *Client) State() State {
	return c.state
}

// Connect runs the full bootstrap: resolve ports (portmap), dial and mount
// the export (mount), then dial NFS3 and leave the Client in StateActive.
// On any failure, Connect tears down whatever connections it opened and
// returns a wrapped error; the Client is left in StateInit-equivalent
// condition (safe to retry with a fresh Connect call, though callers
// typically just construct a new Client).
func (c *Client) Connect(ctx context.Context) (err error) {
	if c.state != StateInit {
		return fmt.Errorf("nfsclient: Connect called in state %s", c.state)
	}

	defer func() {
		if err != nil {
			c.closeConns()
			c.state = StateInit
		}
	}()

	mountPort, nfsPort, err := c.resolvePorts(ctx)
	if err != nil {
		return err
	}
	c.state = StatePortmapResolved
	logger.InfoCtx(ctx, "resolved service ports", "mount_port", mountPort, "nfs_port", nfsPort)

	if err := c.connectServices(ctx, mountPort, nfsPort); err != nil {
		return err
	}
	c.state = StateConnected

	rootHandle, err := c.mountExport(ctx)
	if err != nil {
		return err
	}
	c.state = StateMounted

	c.NFS = nfs3.New(c.nfsSession, nfs3.NewRegistry(rootHandle), c.defaultCredential())
	c.state = StateActive

	return nil
}

// resolvePorts determines the MOUNT and NFS3 ports, either from
// Config.Ports overrides or by querying the portmapper at Host:111.
func (c *Client) resolvePorts(ctx context.Context) (mountPort, nfsPort uint32, err error) {
	mountPort = uint32(c.cfg.Ports.Mount)
	nfsPort = uint32(c.cfg.Ports.NFS)
	if mountPort != 0 && nfsPort != 0 {
		return mountPort, nfsPort, nil
	}

	portmapAddr := fmt.Sprintf("%s:%d", c.cfg.Host, firstNonZero(c.cfg.Ports.Portmap, portmapPort))
	conn, err := net.DialTimeout("tcp", portmapAddr, c.cfg.DialTimeout)
	if err != nil {
		return 0, 0, rpcerrors.NewPortmapUnavailable(err)
	}
	c.portmapConn = conn

	session := rpc.NewSession(conn, c.metrics)
	pm := portmap.New(session)

	if mountPort == 0 {
		mountPort, err = pm.ResolveOrFail(ctx, rpc.ProgramMount, rpc.MountVersion, portmap.ProtoTCP)
		if err != nil {
			return 0, 0, err
		}
	}
	if nfsPort == 0 {
		nfsPort, err = pm.ResolveOrFail(ctx, rpc.ProgramNFS, rpc.NFSVersion, portmap.ProtoTCP)
		if err != nil {
			return 0, 0, err
		}
	}

	return mountPort, nfsPort, nil
}

// connectServices dials the MOUNT and NFS services. When both resolve to
// the same port (the common case for servers that multiplex all three
// programs on :2049), a single connection and Session are shared.
func (c *Client) connectServices(ctx context.Context, mountPort, nfsPort uint32) error {
	mountAddr := fmt.Sprintf("%s:%d", c.cfg.Host, mountPort)
	conn, err := net.DialTimeout("tcp", mountAddr, c.cfg.DialTimeout)
	if err != nil {
		return rpcerrors.NewTransportError("dial mount service", err)
	}
	fragOpt := rpc.WithMaxFragmentSize(uint32(c.cfg.FragmentSize))
	c.mountConn = conn
	c.mountSession = rpc.NewSession(conn, c.metrics, fragOpt)

	if nfsPort == mountPort {
		c.nfsConn = conn
		c.nfsSession = c.mountSession
	} else {
		nfsAddr := fmt.Sprintf("%s:%d", c.cfg.Host, nfsPort)
		nfsConn, err := net.DialTimeout("tcp", nfsAddr, c.cfg.DialTimeout)
		if err != nil {
			return rpcerrors.NewTransportError("dial nfs service", err)
		}
		c.nfsConn = nfsConn
		c.nfsSession = rpc.NewSession(nfsConn, c.metrics, fragOpt)
	}

	c.mountClient = mount.New(c.mountSession, c.mountCredential())
	return nil
}

// mountExport issues MNT for Config.Export and returns the root file
// handle.
func (c *Client) mountExport(ctx context.Context) ([]byte, error) {
	handle, err := c.mountClient.Mnt(ctx, c.cfg.Export)
	if err != nil {
		return nil, fmt.Errorf("mount export %q: %w", c.cfg.Export, err)
	}
	return handle, nil
}

// mountCredential builds the AUTH_SYS credential presented on MNT/UMNT.
func (c *Client) mountCredential() rpc.Credential {
	return c.defaultCredential()
}

// defaultCredential builds the AUTH_SYS credential used for NFS3 calls
// unless a caller overrides it per-request via nfs3.Client.WithCredential.
func (c *Client) defaultCredential() rpc.Credential {
	cred := c.cfg.Credential
	return rpc.UnixCredential{Auth: &rpc.UnixAuth{
		MachineName: cred.MachineName,
		UID:         cred.UID,
		GID:         cred.GID,
		GIDs:        cred.GIDs,
	}}
}

// Unmount issues UMNT for Config.Export. The Client remains usable for
// further NFS3 calls the server still permits without an active mount
// record; most callers follow Unmount with Close.
func (c *Client) Unmount(ctx context.Context) error {
	if c.mountClient == nil {
		return fmt.Errorf("nfsclient: Unmount called before Connect")
	}
	return c.mountClient.Umnt(ctx, c.cfg.Export)
}

// Close sends a best-effort UMNTALL to release this client's mount records
// on the server, then tears down every connection this Client opened. Safe
// to call more than once.
func (c *Client) Close() error {
	if c.state != StateClosed && c.mountClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.DialTimeout)
		if err := c.mountClient.UmntAll(ctx); err != nil {
			logger.Debug("umntall on close failed", "error", err)
		}
		cancel()
	}
	c.state = StateClosed
	c.closeConns()
	return nil
}

func (c *Client) closeConns() {
	seen := make(map[net.Conn]struct{})
	for _, conn := range []net.Conn{c.portmapConn, c.mountConn, c.nfsConn} {
		if conn == nil {
			continue
		}
		if _, ok := seen[conn]; ok {
			continue
		}
		seen[conn] = struct{}{}
		_ = conn.Close()
	}
}

func firstNonZero(v uint16, fallback int) int {
	if v != 0 {
		return int(v)
	}
	return fallback
}
