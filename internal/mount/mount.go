// Package mount implements a client for the MOUNT protocol (RFC 1813
// Appendix I, program 100005, version 1): exchanging a server export path
// for a root NFS file handle and tearing the mount down again on
// disconnect.
package mount

import (
	"bytes"
	"context"
	"io"

	"github.com/marmos91/nfsclient/internal/rpc"
	"github.com/marmos91/nfsclient/internal/rpcerrors"
	"github.com/marmos91/nfsclient/internal/xdr"
)

// Procedure numbers for program 100005, version 1.
const (
	ProcNull    uint32 = 0
	ProcMnt     uint32 = 1
	ProcDump    uint32 = 2
	ProcUmnt    uint32 = 3
	ProcUmntAll uint32 = 4
	ProcExport  uint32 = 5
)

// Status values for the fhstatus3 MNT reply. 0 is success; anything else
// is a platform errno surfaced as MountDenied.
const mountOK uint32 = 0

// MountEntry is one (hostname, directory) pair as returned by DUMP.
type MountEntry struct {
	Hostname  string
	Directory string
}

// ExportEntry is one exported filesystem and the client groups allowed to
// mount it, as returned by EXPORT.
type ExportEntry struct {
	Directory string
	Groups    []string
}

// Client is a thin procedure-oriented facade over an rpc.Session for the
// MOUNT program.
type Client struct {
	session *rpc.Session
	cred    rpc.Credential
}

// New wraps an already-connected session. cred is used as the credential
// on every call (nil defaults to AUTH_NONE).
func New(session *rpc.Session, cred rpc.Credential) *Client {
	return &Client{session: session, cred: cred}
}

// Null sends a heartbeat NULL call.
func (c *Client) Null(ctx context.Context) error {
	_, err := c.session.Call(ctx, rpc.ProgramMount, rpc.MountVersion, ProcNull, c.cred, nil)
	return err
}

// Mnt requests the root file handle for the given export path. A non-zero
// MOUNT status is surfaced as MountDenied.
func (c *Client) Mnt(ctx context.Context, path string) ([]byte, error) {
	var args bytes.Buffer
	if err := xdr.WriteString(&args, path); err != nil {
		return nil, err
	}

	result, err := c.session.Call(ctx, rpc.ProgramMount, rpc.MountVersion, ProcMnt, c.cred, args.Bytes())
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(result)
	status, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, err
	}
	if status != mountOK {
		return nil, rpcerrors.NewMountDenied(status)
	}

	handle, err := xdr.DecodeOpaque(r)
	if err != nil {
		return nil, err
	}
	return handle, nil
}

// Dump returns the list of mounts the server currently tracks for all
// clients.
func (c *Client) Dump(ctx context.Context) ([]MountEntry, error) {
	result, err := c.session.Call(ctx, rpc.ProgramMount, rpc.MountVersion, ProcDump, c.cred, nil)
	if err != nil {
		return nil, err
	}

	var entries []MountEntry
	r := bytes.NewReader(result)
	err = xdr.DecodeNextList(r, func(r io.Reader) error {
		hostname, err := xdr.DecodeString(r)
		if err != nil {
			return err
		}
		directory, err := xdr.DecodeString(r)
		if err != nil {
			return err
		}
		entries = append(entries, MountEntry{Hostname: hostname, Directory: directory})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Umnt requests that the server forget this client's mount of path.
// Best-effort: servers commonly return no status at all for UMNT.
func (c *Client) Umnt(ctx context.Context, path string) error {
	var args bytes.Buffer
	if err := xdr.WriteString(&args, path); err != nil {
		return err
	}
	_, err := c.session.Call(ctx, rpc.ProgramMount, rpc.MountVersion, ProcUmnt, c.cred, args.Bytes())
	return err
}

// UmntAll requests that the server forget every mount held by this
// client. Called best-effort on disconnect.
func (c *Client) UmntAll(ctx context.Context) error {
	_, err := c.session.Call(ctx, rpc.ProgramMount, rpc.MountVersion, ProcUmntAll, c.cred, nil)
	return err
}

// Export returns the list of exported filesystems and the client groups
// permitted to mount each one.
func (c *Client) Export(ctx context.Context) ([]ExportEntry, error) {
	result, err := c.session.Call(ctx, rpc.ProgramMount, rpc.MountVersion, ProcExport, c.cred, nil)
	if err != nil {
		return nil, err
	}

	var entries []ExportEntry
	r := bytes.NewReader(result)
	err = xdr.DecodeNextList(r, func(r io.Reader) error {
		directory, err := xdr.DecodeString(r)
		if err != nil {
			return err
		}
		var groups []string
		if err := xdr.DecodeNextList(r, func(r io.Reader) error {
			group, err := xdr.DecodeString(r)
			if err != nil {
				return err
			}
			groups = append(groups, group)
			return nil
		}); err != nil {
			return err
		}
		entries = append(entries, ExportEntry{Directory: directory, Groups: groups})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
