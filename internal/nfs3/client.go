package nfs3

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/marmos91/nfsclient/internal/rpc"
	"github.com/marmos91/nfsclient/internal/rpcerrors"
	"github.com/marmos91/nfsclient/internal/xdr"
)

// Client is a thin procedure-oriented facade over an rpc.Session for the
// NFSv3 program. It adapts every procedure's file-handle arguments and
// results to the local token space maintained by a Registry: callers never
// see raw server handle bytes.
type Client struct {
	session  *rpc.Session
	registry *Registry
	cred     rpc.Credential
}

// New wraps an already-connected session and the registry that owns the
// mount's root token. cred is used as the default credential on every call
// (nil defaults to AUTH_NONE); pass an AUTH_SYS credential for servers that
// enforce uid/gid access checks.
func New(session *rpc.Session, registry *Registry, cred rpc.Credential) *Client {
	return &Client{session: session, registry: registry, cred: cred}
}

// WithCredential returns a shallow copy of c that issues calls with cred
// instead of c's default credential, sharing the same session and
// registry. Used by the enumeration driver to impersonate each directory's
// owner without mutating the caller's client.
func (c *Client) WithCredential(cred rpc.Credential) *Client {
	return &Client{session: c.session, registry: c.registry, cred: cred}
}

// Registry returns the handle registry backing this client's tokens.
func (c *Client) Registry() *Registry {
	return c.registry
}

func (c *Client) call(ctx context.Context, proc uint32, args []byte) ([]byte, error) {
	return c.session.Call(ctx, rpc.ProgramNFS, rpc.NFSVersion, proc, c.cred, args)
}

func (c *Client) handleArg(buf *bytes.Buffer, token uint64) error {
	handle, err := c.registry.Resolve(token)
	if err != nil {
		return err
	}
	return xdr.WriteOpaque(buf, handle)
}

// Null sends a heartbeat NULL call.
func (c *Client) Null(ctx context.Context) error {
	_, err := c.call(ctx, ProcNull, nil)
	return err
}

// GetAttr returns the unconditional fattr3 for token.
func (c *Client) GetAttr(ctx context.Context, token uint64) (*Fattr3, error) {
	var args bytes.Buffer
	if err := c.handleArg(&args, token); err != nil {
		return nil, err
	}

	result, err := c.call(ctx, ProcGetAttr, args.Bytes())
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(result)
	status, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, err
	}
	if status != StatusOK {
		return nil, rpcerrors.NewNfsError(status)
	}
	return decodeFattr3(r)
}

// SetAttr applies new attributes to token, optionally guarded by a prior
// ctime to detect concurrent modification (a nil guard disables the
// check). Returns the wcc_data describing the object before/after.
func (c *Client) SetAttr(ctx context.Context, token uint64, attrs Sattr3, guard *NFSTime3) (WccData, error) {
	var args bytes.Buffer
	if err := c.handleArg(&args, token); err != nil {
		return WccData{}, err
	}
	if err := encodeSattr3(&args, attrs); err != nil {
		return WccData{}, err
	}
	if err := xdr.WriteOptional(&args, guard != nil, func(b *bytes.Buffer) error {
		return encodeNFSTime3(b, *guard)
	}); err != nil {
		return WccData{}, err
	}

	result, err := c.call(ctx, ProcSetAttr, args.Bytes())
	if err != nil {
		return WccData{}, err
	}

	r := bytes.NewReader(result)
	status, err := xdr.DecodeUint32(r)
	if err != nil {
		return WccData{}, err
	}
	before, after, err := decodeWccData(r)
	if err != nil {
		return WccData{}, err
	}
	wcc := WccData{Before: before, After: after}
	if status != StatusOK {
		return wcc, rpcerrors.NewNfsError(status)
	}
	return wcc, nil
}

// Lookup resolves name within the directory dirToken. A not-found status is
// reported as present=false with no error, so callers can probe for a name
// without error handling; every other non-zero status is a returned error.
// dirAttr is the directory's post_op_attr regardless of outcome.
func (c *Client) Lookup(ctx context.Context, dirToken uint64, name string) (token uint64, present bool, objAttr, dirAttr *Fattr3, err error) {
	var args bytes.Buffer
	if err = c.handleArg(&args, dirToken); err != nil {
		return
	}
	if err = xdr.WriteString(&args, name); err != nil {
		return
	}

	result, callErr := c.call(ctx, ProcLookup, args.Bytes())
	if callErr != nil {
		err = callErr
		return
	}

	r := bytes.NewReader(result)
	status, decErr := xdr.DecodeUint32(r)
	if decErr != nil {
		err = decErr
		return
	}

	if status == StatusOK {
		handle, decErr := xdr.DecodeOpaque(r)
		if decErr != nil {
			err = decErr
			return
		}
		if objAttr, decErr = decodePostOpAttr(r); decErr != nil {
			err = decErr
			return
		}
		if dirAttr, decErr = decodePostOpAttr(r); decErr != nil {
			err = decErr
			return
		}
		token = c.registry.Register(handle, name, dirToken)
		present = true
		return
	}

	if dirAttr, decErr = decodePostOpAttr(r); decErr != nil {
		err = decErr
		return
	}
	if status == StatusNoEnt {
		return
	}
	err = rpcerrors.NewNfsError(status)
	return
}

// Access returns the subset of the requested access bits the server
// actually grants for token.
func (c *Client) Access(ctx context.Context, token uint64, requested uint32) (granted uint32, attr *Fattr3, err error) {
	var args bytes.Buffer
	if err = c.handleArg(&args, token); err != nil {
		return
	}
	if err = xdr.WriteUint32(&args, requested); err != nil {
		return
	}

	result, callErr := c.call(ctx, ProcAccess, args.Bytes())
	if callErr != nil {
		err = callErr
		return
	}

	r := bytes.NewReader(result)
	status, decErr := xdr.DecodeUint32(r)
	if decErr != nil {
		err = decErr
		return
	}
	if attr, decErr = decodePostOpAttr(r); decErr != nil {
		err = decErr
		return
	}
	if status != StatusOK {
		err = rpcerrors.NewNfsError(status)
		return
	}
	granted, err = xdr.DecodeUint32(r)
	return
}

// Readlink returns the target string of the symlink token.
func (c *Client) Readlink(ctx context.Context, token uint64) (string, *Fattr3, error) {
	var args bytes.Buffer
	if err := c.handleArg(&args, token); err != nil {
		return "", nil, err
	}

	result, err := c.call(ctx, ProcReadlink, args.Bytes())
	if err != nil {
		return "", nil, err
	}

	r := bytes.NewReader(result)
	status, err := xdr.DecodeUint32(r)
	if err != nil {
		return "", nil, err
	}
	attr, err := decodePostOpAttr(r)
	if err != nil {
		return "", nil, err
	}
	if status != StatusOK {
		return "", attr, rpcerrors.NewNfsError(status)
	}
	target, err := xdr.DecodeString(r)
	if err != nil {
		return "", attr, err
	}
	return target, attr, nil
}

// Read requests up to count bytes from token at offset. Short reads are
// legal; the returned eof flag tells the caller whether the end of file was
// reached.
func (c *Client) Read(ctx context.Context, token uint64, offset uint64, count uint32) (data []byte, eof bool, attr *Fattr3, err error) {
	var args bytes.Buffer
	if err = c.handleArg(&args, token); err != nil {
		return
	}
	if err = xdr.WriteUint64(&args, offset); err != nil {
		return
	}
	if err = xdr.WriteUint32(&args, count); err != nil {
		return
	}

	result, callErr := c.call(ctx, ProcRead, args.Bytes())
	if callErr != nil {
		err = callErr
		return
	}

	r := bytes.NewReader(result)
	status, decErr := xdr.DecodeUint32(r)
	if decErr != nil {
		err = decErr
		return
	}
	if attr, decErr = decodePostOpAttr(r); decErr != nil {
		err = decErr
		return
	}
	if status != StatusOK {
		err = rpcerrors.NewNfsError(status)
		return
	}

	if _, decErr = xdr.DecodeUint32(r); decErr != nil { // count, redundant with len(data)
		err = decErr
		return
	}
	if eof, decErr = xdr.DecodeBool(r); decErr != nil {
		err = decErr
		return
	}
	data, decErr = xdr.DecodeOpaque(r)
	if decErr != nil {
		err = decErr
		return
	}
	return
}

// Write stores data at offset in token, requesting stability. It returns
// the byte count the server actually committed, the stability level it
// achieved (which may be higher than requested), and the write verifier
// the caller should compare across calls to detect an intervening server
// reboot (see Commit).
func (c *Client) Write(ctx context.Context, token uint64, offset uint64, data []byte, stability uint32) (count uint32, committed uint32, verf [8]byte, wcc WccData, err error) {
	var args bytes.Buffer
	if err = c.handleArg(&args, token); err != nil {
		return
	}
	if err = xdr.WriteUint64(&args, offset); err != nil {
		return
	}
	if err = xdr.WriteUint32(&args, uint32(len(data))); err != nil {
		return
	}
	if err = xdr.WriteUint32(&args, stability); err != nil {
		return
	}
	if err = xdr.WriteOpaque(&args, data); err != nil {
		return
	}

	result, callErr := c.call(ctx, ProcWrite, args.Bytes())
	if callErr != nil {
		err = callErr
		return
	}

	r := bytes.NewReader(result)
	status, decErr := xdr.DecodeUint32(r)
	if decErr != nil {
		err = decErr
		return
	}
	before, after, decErr := decodeWccData(r)
	if decErr != nil {
		err = decErr
		return
	}
	wcc = WccData{Before: before, After: after}
	if status != StatusOK {
		err = rpcerrors.NewNfsError(status)
		return
	}

	if count, decErr = xdr.DecodeUint32(r); decErr != nil {
		err = decErr
		return
	}
	if committed, decErr = xdr.DecodeUint32(r); decErr != nil {
		err = decErr
		return
	}
	verfBytes, decErr := xdr.DecodeFixedOpaque(r, 8)
	if decErr != nil {
		err = decErr
		return
	}
	copy(verf[:], verfBytes)
	return
}

// Create creates name within dirToken under mode ∈ {CreateUnchecked,
// CreateGuarded, CreateExclusive}. For CreateExclusive, attrs is ignored on
// the wire and verf supplies the 8-byte create verifier instead; the
// caller is expected to follow up with SetAttr once the object exists.
func (c *Client) Create(ctx context.Context, dirToken uint64, name string, mode uint32, attrs Sattr3, verf [8]byte) (token uint64, objAttr *Fattr3, dirWcc WccData, err error) {
	var args bytes.Buffer
	if err = c.handleArg(&args, dirToken); err != nil {
		return
	}
	if err = xdr.WriteString(&args, name); err != nil {
		return
	}
	if err = xdr.WriteUnionTag(&args, mode); err != nil {
		return
	}
	if mode == CreateExclusive {
		if err = xdr.WriteFixedOpaque(&args, verf[:]); err != nil {
			return
		}
	} else {
		if err = encodeSattr3(&args, attrs); err != nil {
			return
		}
	}

	result, callErr := c.call(ctx, ProcCreate, args.Bytes())
	if callErr != nil {
		err = callErr
		return
	}

	r := bytes.NewReader(result)
	status, decErr := xdr.DecodeUint32(r)
	if decErr != nil {
		err = decErr
		return
	}
	if status != StatusOK {
		before, after, wccErr := decodeWccData(r)
		if wccErr != nil {
			err = wccErr
			return
		}
		dirWcc = WccData{Before: before, After: after}
		err = rpcerrors.NewNfsError(status)
		return
	}

	handle, decErr := decodePostOpFh3(r)
	if decErr != nil {
		err = decErr
		return
	}
	if objAttr, decErr = decodePostOpAttr(r); decErr != nil {
		err = decErr
		return
	}
	before, after, decErr := decodeWccData(r)
	if decErr != nil {
		err = decErr
		return
	}
	dirWcc = WccData{Before: before, After: after}

	if handle != nil {
		token = c.registry.Register(handle, name, dirToken)
	}
	return
}

// Mkdir creates a directory named name within dirToken.
func (c *Client) Mkdir(ctx context.Context, dirToken uint64, name string, attrs Sattr3) (token uint64, objAttr *Fattr3, dirWcc WccData, err error) {
	var args bytes.Buffer
	if err = c.handleArg(&args, dirToken); err != nil {
		return
	}
	if err = xdr.WriteString(&args, name); err != nil {
		return
	}
	if err = encodeSattr3(&args, attrs); err != nil {
		return
	}

	result, callErr := c.call(ctx, ProcMkdir, args.Bytes())
	if callErr != nil {
		err = callErr
		return
	}
	return c.decodeFhCreateReply(result, name, dirToken)
}

// Symlink creates a symbolic link named name within dirToken pointing at
// target.
func (c *Client) Symlink(ctx context.Context, dirToken uint64, name, target string, attrs Sattr3) (token uint64, objAttr *Fattr3, dirWcc WccData, err error) {
	var args bytes.Buffer
	if err = c.handleArg(&args, dirToken); err != nil {
		return
	}
	if err = xdr.WriteString(&args, name); err != nil {
		return
	}
	if err = encodeSattr3(&args, attrs); err != nil {
		return
	}
	if err = xdr.WriteString(&args, target); err != nil {
		return
	}

	result, callErr := c.call(ctx, ProcSymlink, args.Bytes())
	if callErr != nil {
		err = callErr
		return
	}
	return c.decodeFhCreateReply(result, name, dirToken)
}

// Mknod creates a special file of nodeType ∈ {MknodChr, MknodBlk,
// MknodSock, MknodFifo} named name within dirToken. spec is required for
// MknodChr/MknodBlk and ignored otherwise.
func (c *Client) Mknod(ctx context.Context, dirToken uint64, name string, nodeType uint32, attrs Sattr3, spec SpecData3) (token uint64, objAttr *Fattr3, dirWcc WccData, err error) {
	var args bytes.Buffer
	if err = c.handleArg(&args, dirToken); err != nil {
		return
	}
	if err = xdr.WriteString(&args, name); err != nil {
		return
	}
	if err = xdr.WriteUnionTag(&args, nodeType); err != nil {
		return
	}
	switch nodeType {
	case MknodChr, MknodBlk:
		if err = encodeSattr3(&args, attrs); err != nil {
			return
		}
		if err = xdr.WriteUint32(&args, spec.Major); err != nil {
			return
		}
		if err = xdr.WriteUint32(&args, spec.Minor); err != nil {
			return
		}
	case MknodSock, MknodFifo:
		if err = encodeSattr3(&args, attrs); err != nil {
			return
		}
	default:
		err = fmt.Errorf("nfs3: unsupported mknod type %d", nodeType)
		return
	}

	result, callErr := c.call(ctx, ProcMknod, args.Bytes())
	if callErr != nil {
		err = callErr
		return
	}
	return c.decodeFhCreateReply(result, name, dirToken)
}

// decodeFhCreateReply decodes the common MKDIR3res/SYMLINK3res/MKNOD3res
// shape: status, then either (post_op_fh3 obj, post_op_attr, wcc_data) on
// success or a bare wcc_data on failure.
func (c *Client) decodeFhCreateReply(result []byte, name string, dirToken uint64) (token uint64, objAttr *Fattr3, dirWcc WccData, err error) {
	r := bytes.NewReader(result)
	status, decErr := xdr.DecodeUint32(r)
	if decErr != nil {
		err = decErr
		return
	}
	if status != StatusOK {
		before, after, wccErr := decodeWccData(r)
		if wccErr != nil {
			err = wccErr
			return
		}
		dirWcc = WccData{Before: before, After: after}
		err = rpcerrors.NewNfsError(status)
		return
	}

	handle, decErr := decodePostOpFh3(r)
	if decErr != nil {
		err = decErr
		return
	}
	if objAttr, decErr = decodePostOpAttr(r); decErr != nil {
		err = decErr
		return
	}
	before, after, decErr := decodeWccData(r)
	if decErr != nil {
		err = decErr
		return
	}
	dirWcc = WccData{Before: before, After: after}

	if handle != nil {
		token = c.registry.Register(handle, name, dirToken)
	}
	return
}

// Remove deletes the non-directory entry name from dirToken.
func (c *Client) Remove(ctx context.Context, dirToken uint64, name string) (WccData, error) {
	return c.removeLike(ctx, ProcRemove, dirToken, name)
}

// Rmdir deletes the empty directory entry name from dirToken.
func (c *Client) Rmdir(ctx context.Context, dirToken uint64, name string) (WccData, error) {
	return c.removeLike(ctx, ProcRmdir, dirToken, name)
}

func (c *Client) removeLike(ctx context.Context, proc uint32, dirToken uint64, name string) (WccData, error) {
	var args bytes.Buffer
	if err := c.handleArg(&args, dirToken); err != nil {
		return WccData{}, err
	}
	if err := xdr.WriteString(&args, name); err != nil {
		return WccData{}, err
	}

	result, err := c.call(ctx, proc, args.Bytes())
	if err != nil {
		return WccData{}, err
	}

	r := bytes.NewReader(result)
	status, err := xdr.DecodeUint32(r)
	if err != nil {
		return WccData{}, err
	}
	before, after, err := decodeWccData(r)
	if err != nil {
		return WccData{}, err
	}
	wcc := WccData{Before: before, After: after}
	if status != StatusOK {
		return wcc, rpcerrors.NewNfsError(status)
	}
	return wcc, nil
}

// Rename moves fromName within fromDirToken to toName within toDirToken.
func (c *Client) Rename(ctx context.Context, fromDirToken uint64, fromName string, toDirToken uint64, toName string) (fromWcc, toWcc WccData, err error) {
	var args bytes.Buffer
	if err = c.handleArg(&args, fromDirToken); err != nil {
		return
	}
	if err = xdr.WriteString(&args, fromName); err != nil {
		return
	}
	if err = c.handleArg(&args, toDirToken); err != nil {
		return
	}
	if err = xdr.WriteString(&args, toName); err != nil {
		return
	}

	result, callErr := c.call(ctx, ProcRename, args.Bytes())
	if callErr != nil {
		err = callErr
		return
	}

	r := bytes.NewReader(result)
	status, decErr := xdr.DecodeUint32(r)
	if decErr != nil {
		err = decErr
		return
	}
	fromBefore, fromAfter, decErr := decodeWccData(r)
	if decErr != nil {
		err = decErr
		return
	}
	fromWcc = WccData{Before: fromBefore, After: fromAfter}
	toBefore, toAfter, decErr := decodeWccData(r)
	if decErr != nil {
		err = decErr
		return
	}
	toWcc = WccData{Before: toBefore, After: toAfter}

	if status != StatusOK {
		err = rpcerrors.NewNfsError(status)
	}
	return
}

// Link creates a hard link named name within dirToken pointing at the
// existing file fileToken.
func (c *Client) Link(ctx context.Context, fileToken, dirToken uint64, name string) (fileAttr *Fattr3, dirWcc WccData, err error) {
	var args bytes.Buffer
	if err = c.handleArg(&args, fileToken); err != nil {
		return
	}
	if err = c.handleArg(&args, dirToken); err != nil {
		return
	}
	if err = xdr.WriteString(&args, name); err != nil {
		return
	}

	result, callErr := c.call(ctx, ProcLink, args.Bytes())
	if callErr != nil {
		err = callErr
		return
	}

	r := bytes.NewReader(result)
	status, decErr := xdr.DecodeUint32(r)
	if decErr != nil {
		err = decErr
		return
	}
	if fileAttr, decErr = decodePostOpAttr(r); decErr != nil {
		err = decErr
		return
	}
	before, after, decErr := decodeWccData(r)
	if decErr != nil {
		err = decErr
		return
	}
	dirWcc = WccData{Before: before, After: after}

	if status != StatusOK {
		err = rpcerrors.NewNfsError(status)
	}
	return
}

// CookieVerf is the opaque 8-byte pagination verifier READDIR(PLUS)
// threads across pages of one logical listing.
type CookieVerf [8]byte

// Readdir lists dirToken starting from cookie/cookieverf (zero values for
// the first page), returning non-plus entries (no inline attributes or
// handle), the reply's cookieverf for the next page, and whether this page
// is the last.
func (c *Client) Readdir(ctx context.Context, dirToken uint64, cookie uint64, cookieverf CookieVerf, count uint32) (entries []DirEntry, nextVerf CookieVerf, eof bool, err error) {
	var args bytes.Buffer
	if err = c.handleArg(&args, dirToken); err != nil {
		return
	}
	if err = xdr.WriteUint64(&args, cookie); err != nil {
		return
	}
	if err = xdr.WriteFixedOpaque(&args, cookieverf[:]); err != nil {
		return
	}
	if err = xdr.WriteUint32(&args, count); err != nil {
		return
	}

	result, callErr := c.call(ctx, ProcReaddir, args.Bytes())
	if callErr != nil {
		err = callErr
		return
	}

	r := bytes.NewReader(result)
	status, decErr := xdr.DecodeUint32(r)
	if decErr != nil {
		err = decErr
		return
	}
	if _, decErr = decodePostOpAttr(r); decErr != nil { // dir_attributes, not surfaced here
		err = decErr
		return
	}
	if status != StatusOK {
		err = rpcerrors.NewNfsError(status)
		return
	}

	verfBytes, decErr := xdr.DecodeFixedOpaque(r, 8)
	if decErr != nil {
		err = decErr
		return
	}
	copy(nextVerf[:], verfBytes)

	decErr = xdr.DecodeNextList(r, func(r io.Reader) error {
		fileID, e := xdr.DecodeUint64(r)
		if e != nil {
			return e
		}
		name, e := xdr.DecodeString(r)
		if e != nil {
			return e
		}
		cookie, e := xdr.DecodeUint64(r)
		if e != nil {
			return e
		}
		entries = append(entries, DirEntry{Name: name, Cookie: cookie, FileID: fileID})
		return nil
	})
	if decErr != nil {
		err = decErr
		return
	}
	eof, err = xdr.DecodeBool(r)
	return
}

// Readdirplus lists dirToken starting from cookie/cookieverf, returning
// plus entries (inline attributes and a registered handle token for any
// entry the server supplied one for), the reply's cookieverf, and whether
// this page is the last. dircount bounds the directory-information portion
// of the reply; maxcount is the hard cap on the total reply size.
func (c *Client) Readdirplus(ctx context.Context, dirToken uint64, cookie uint64, cookieverf CookieVerf, dircount, maxcount uint32) (entries []DirEntry, tokens []uint64, nextVerf CookieVerf, eof bool, err error) {
	var args bytes.Buffer
	if err = c.handleArg(&args, dirToken); err != nil {
		return
	}
	if err = xdr.WriteUint64(&args, cookie); err != nil {
		return
	}
	if err = xdr.WriteFixedOpaque(&args, cookieverf[:]); err != nil {
		return
	}
	if err = xdr.WriteUint32(&args, dircount); err != nil {
		return
	}
	if err = xdr.WriteUint32(&args, maxcount); err != nil {
		return
	}

	result, callErr := c.call(ctx, ProcReaddirplus, args.Bytes())
	if callErr != nil {
		err = callErr
		return
	}

	r := bytes.NewReader(result)
	status, decErr := xdr.DecodeUint32(r)
	if decErr != nil {
		err = decErr
		return
	}
	if _, decErr = decodePostOpAttr(r); decErr != nil {
		err = decErr
		return
	}
	if status != StatusOK {
		err = rpcerrors.NewNfsError(status)
		return
	}

	verfBytes, decErr := xdr.DecodeFixedOpaque(r, 8)
	if decErr != nil {
		err = decErr
		return
	}
	copy(nextVerf[:], verfBytes)

	decErr = xdr.DecodeNextList(r, func(r io.Reader) error {
		fileID, e := xdr.DecodeUint64(r)
		if e != nil {
			return e
		}
		name, e := xdr.DecodeString(r)
		if e != nil {
			return e
		}
		cookie, e := xdr.DecodeUint64(r)
		if e != nil {
			return e
		}
		attr, e := decodePostOpAttr(r)
		if e != nil {
			return e
		}
		handle, e := decodePostOpFh3(r)
		if e != nil {
			return e
		}

		entry := DirEntry{Name: name, Cookie: cookie, FileID: fileID, Attr: attr, Handle: handle}
		entries = append(entries, entry)

		if handle != nil && name != "." && name != ".." {
			tokens = append(tokens, c.registry.Register(handle, name, dirToken))
		} else {
			tokens = append(tokens, 0)
		}
		return nil
	})
	if decErr != nil {
		err = decErr
		return
	}
	eof, err = xdr.DecodeBool(r)
	return
}

// Fsstat returns dynamic filesystem statistics for the filesystem
// containing token.
func (c *Client) Fsstat(ctx context.Context, token uint64) (*FsStat3, *Fattr3, error) {
	var args bytes.Buffer
	if err := c.handleArg(&args, token); err != nil {
		return nil, nil, err
	}

	result, err := c.call(ctx, ProcFsstat, args.Bytes())
	if err != nil {
		return nil, nil, err
	}

	r := bytes.NewReader(result)
	status, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, nil, err
	}
	attr, err := decodePostOpAttr(r)
	if err != nil {
		return nil, nil, err
	}
	if status != StatusOK {
		return nil, attr, rpcerrors.NewNfsError(status)
	}
	stat, err := decodeFsStat3(r)
	if err != nil {
		return nil, attr, err
	}
	return stat, attr, nil
}

// Fsinfo returns static server capability limits for the filesystem
// containing token.
func (c *Client) Fsinfo(ctx context.Context, token uint64) (*FsInfo3, *Fattr3, error) {
	var args bytes.Buffer
	if err := c.handleArg(&args, token); err != nil {
		return nil, nil, err
	}

	result, err := c.call(ctx, ProcFsinfo, args.Bytes())
	if err != nil {
		return nil, nil, err
	}

	r := bytes.NewReader(result)
	status, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, nil, err
	}
	attr, err := decodePostOpAttr(r)
	if err != nil {
		return nil, nil, err
	}
	if status != StatusOK {
		return nil, attr, rpcerrors.NewNfsError(status)
	}
	info, err := decodeFsInfo3(r)
	if err != nil {
		return nil, attr, err
	}
	return info, attr, nil
}

// Pathconf returns POSIX pathconf values for token.
func (c *Client) Pathconf(ctx context.Context, token uint64) (*PathConf3, *Fattr3, error) {
	var args bytes.Buffer
	if err := c.handleArg(&args, token); err != nil {
		return nil, nil, err
	}

	result, err := c.call(ctx, ProcPathconf, args.Bytes())
	if err != nil {
		return nil, nil, err
	}

	r := bytes.NewReader(result)
	status, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, nil, err
	}
	attr, err := decodePostOpAttr(r)
	if err != nil {
		return nil, nil, err
	}
	if status != StatusOK {
		return nil, attr, rpcerrors.NewNfsError(status)
	}
	pc, err := decodePathConf3(r)
	if err != nil {
		return nil, attr, err
	}
	return pc, attr, nil
}

// Commit requests the server flush previously WRITE(UNSTABLE)'d data for
// token in [offset, offset+count) to stable storage. The returned verifier
// must match the one observed at the first UNSTABLE write; a mismatch
// means the server rebooted in between and the caller must retransmit the
// data rather than trust the commit.
func (c *Client) Commit(ctx context.Context, token uint64, offset uint64, count uint32) (verf [8]byte, wcc WccData, err error) {
	var args bytes.Buffer
	if err = c.handleArg(&args, token); err != nil {
		return
	}
	if err = xdr.WriteUint64(&args, offset); err != nil {
		return
	}
	if err = xdr.WriteUint32(&args, count); err != nil {
		return
	}

	result, callErr := c.call(ctx, ProcCommit, args.Bytes())
	if callErr != nil {
		err = callErr
		return
	}

	r := bytes.NewReader(result)
	status, decErr := xdr.DecodeUint32(r)
	if decErr != nil {
		err = decErr
		return
	}
	before, after, decErr := decodeWccData(r)
	if decErr != nil {
		err = decErr
		return
	}
	wcc = WccData{Before: before, After: after}
	if status != StatusOK {
		err = rpcerrors.NewNfsError(status)
		return
	}

	verfBytes, decErr := xdr.DecodeFixedOpaque(r, 8)
	if decErr != nil {
		err = decErr
		return
	}
	copy(verf[:], verfBytes)
	return
}
