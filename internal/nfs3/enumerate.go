package nfs3

import (
	"context"
	"errors"
	"io"

	"github.com/marmos91/nfsclient/internal/logger"
	"github.com/marmos91/nfsclient/internal/rpc"
	"github.com/marmos91/nfsclient/internal/rpcerrors"
)

// Default paging and chunk sizes for the enumeration driver and bulk
// download, chosen to sit comfortably under common server rsize/dtpref
// limits without a prior FSINFO round trip.
const (
	DefaultDirCount      uint32 = 8 * 1024
	DefaultMaxCount      uint32 = 32 * 1024
	DefaultDownloadChunk uint32 = 32 * 1024
)

// WalkEntry is one result of a recursive tree enumeration: the
// reconstructed virtual path, the entry's type (zero if the server never
// supplied attributes), the raw directory entry, its registered local
// token (0 if the server did not hand back a handle inline), and an error
// when this particular entry could not be listed or described.
type WalkEntry struct {
	Path  string
	Kind  FileType
	Entry DirEntry
	Token uint64
	Err   error
}

// WalkOptions configures a Walk call.
type WalkOptions struct {
	// DirCount/MaxCount override the READDIRPLUS paging hints; zero means
	// DefaultDirCount/DefaultMaxCount.
	DirCount uint32
	MaxCount uint32

	// ShouldDescend, when non-nil, is consulted before recursing into a
	// directory; returning false prunes that subtree without an error.
	ShouldDescend func(path string, token uint64, attr *Fattr3) bool

	// MachineName is used to build the per-directory AUTH_SYS credential.
	// Empty defaults to "nfsclient".
	MachineName string
}

func (o WalkOptions) dirCount() uint32 {
	if o.DirCount != 0 {
		return o.DirCount
	}
	return DefaultDirCount
}

func (o WalkOptions) maxCount() uint32 {
	if o.MaxCount != 0 {
		return o.MaxCount
	}
	return DefaultMaxCount
}

func (o WalkOptions) machineName() string {
	if o.MachineName != "" {
		return o.MachineName
	}
	return "nfsclient"
}

// Walk recursively enumerates the tree rooted at startToken (reconstructed
// to startPath), descending depth levels at most, and returns a channel of
// WalkEntry values in server order. The channel is closed once the walk
// completes or ctx is cancelled. Per-directory listing failures are
// delivered as a single error entry for that directory without aborting
// sibling traversal; a transport-level failure or a rejected cookieverf
// (NFS3ERR_BAD_COOKIE) aborts the entire walk.
func Walk(ctx context.Context, client *Client, startToken uint64, startPath string, depth int, opts WalkOptions) <-chan WalkEntry {
	out := make(chan WalkEntry)
	go func() {
		defer close(out)
		rootAttr, err := client.GetAttr(ctx, startToken)
		if err != nil {
			select {
			case out <- WalkEntry{Path: startPath, Err: err}:
			case <-ctx.Done():
			}
			return
		}
		walkDir(ctx, client, startToken, startPath, depth, opts, rootAttr, out)
	}()
	return out
}

// walkDir lists one directory's contents, recursing into subdirectories
// until depth is exhausted. It returns true when a fatal error aborted the
// walk (the caller must not continue with siblings).
func walkDir(ctx context.Context, client *Client, token uint64, path string, depth int, opts WalkOptions, dirAttr *Fattr3, out chan<- WalkEntry) bool {
	if ctx.Err() != nil {
		return true
	}

	dirClient := client.WithCredential(ownerCredential(dirAttr, opts.machineName()))

	var cookie uint64
	var verf CookieVerf

	for {
		entries, tokens, nextVerf, eof, err := dirClient.Readdirplus(ctx, token, cookie, verf, opts.dirCount(), opts.maxCount())
		if err != nil {
			logger.DebugCtx(ctx, "readdirplus failed", logger.Path(path), logger.Err(err))
			select {
			case out <- WalkEntry{Path: path, Err: err}:
			case <-ctx.Done():
				return true
			}
			return isFatalWalkError(err)
		}

		for i, entry := range entries {
			if entry.Name == "." || entry.Name == ".." {
				continue
			}

			childPath := path + "/" + entry.Name
			childToken := tokens[i]
			kind := FileType(0)
			if entry.Attr != nil {
				kind = entry.Attr.Type
			}

			select {
			case out <- WalkEntry{Path: childPath, Kind: kind, Entry: entry, Token: childToken}:
			case <-ctx.Done():
				return true
			}

			if kind != TypeDir || childToken == 0 || depth <= 0 {
				continue
			}
			if opts.ShouldDescend != nil && !opts.ShouldDescend(childPath, childToken, entry.Attr) {
				continue
			}
			if walkDir(ctx, client, childToken, childPath, depth-1, opts, entry.Attr, out) {
				return true
			}
		}

		if eof || len(entries) == 0 {
			return false
		}
		cookie = entries[len(entries)-1].Cookie
		verf = nextVerf
	}
}

// ownerCredential builds an AUTH_SYS credential impersonating attr's
// owner, falling back to uid/gid 0 when attr is unavailable, per the
// enumeration driver's access-check-friendly default.
func ownerCredential(attr *Fattr3, machineName string) rpc.Credential {
	var uid, gid uint32
	if attr != nil {
		uid, gid = attr.UID, attr.GID
	}
	return rpc.UnixCredential{Auth: &rpc.UnixAuth{MachineName: machineName, UID: uid, GID: gid}}
}

// isFatalWalkError reports whether err should abort the entire walk rather
// than being reported as a single directory's failure. Any non-NfsError
// (transport, framing, protocol, rejected/denied RPC) is fatal; among
// NfsErrors, only a rejected cookieverf is, since pagination state for that
// whole subtree is no longer trustworthy.
func isFatalWalkError(err error) bool {
	var nfsErr *rpcerrors.NfsError
	if errors.As(err, &nfsErr) {
		return nfsErr.Status == StatusBadCookie
	}
	return true
}

// Download reads fileToken from offset 0 in chunkSize pieces (0 means
// DefaultDownloadChunk) and writes them to dst, stopping at the first
// short read or EOF, or once maxBytes bytes have been written (0 means
// unbounded). It performs no sparse-hole detection.
func Download(ctx context.Context, client *Client, fileToken uint64, dst io.Writer, chunkSize uint32, maxBytes uint64) (uint64, error) {
	if chunkSize == 0 {
		chunkSize = DefaultDownloadChunk
	}

	var offset, total uint64
	for {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}

		want := chunkSize
		if maxBytes > 0 {
			if total >= maxBytes {
				return total, nil
			}
			remaining := maxBytes - total
			if uint64(want) > remaining {
				want = uint32(remaining)
			}
		}

		data, eof, _, err := client.Read(ctx, fileToken, offset, want)
		if err != nil {
			return total, err
		}

		if len(data) > 0 {
			if _, err := dst.Write(data); err != nil {
				return total, rpcerrors.NewTransportError("write download chunk", err)
			}
			offset += uint64(len(data))
			total += uint64(len(data))
		}

		if eof || len(data) == 0 || uint32(len(data)) < want {
			return total, nil
		}
	}
}
