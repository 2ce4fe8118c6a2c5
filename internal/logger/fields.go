package logger

import (
	"fmt"
	"log/slog"
)

// Standard field keys for structured logging across the RPC, mount and NFSv3
// layers. Use these keys consistently so log lines can be aggregated and
// queried uniformly regardless of which layer emitted them.
const (
	// ========================================================================
	// Protocol & Operation
	// ========================================================================
	KeyProtocol  = "protocol"   // Protocol type: portmap, mount, nfs3
	KeyProcedure = "procedure"  // Procedure name: LOOKUP, READ, MNT, GETPORT, ...
	KeyHandle    = "handle"     // NFS file handle, hex-encoded
	KeyShare     = "share"      // Mounted export path
	KeyStatus    = "status"     // Operation status code (nfsstat3, accept_stat, ...)
	KeyStatusMsg = "status_msg" // Human-readable status message

	// ========================================================================
	// File System Operations
	// ========================================================================
	KeyPath       = "path"        // Full file/directory path
	KeyFilename   = "filename"    // File or directory name (basename)
	KeyParentPath = "parent_path" // Parent directory path
	KeyOldPath    = "old_path"    // Source path for rename operations
	KeyNewPath    = "new_path"    // Destination path for rename operations
	KeyType       = "type"        // File type: reg, dir, lnk, ...
	KeySize       = "size"        // File size in bytes
	KeyMode       = "mode"        // File mode/permissions (Unix-style)

	// ========================================================================
	// I/O Operations
	// ========================================================================
	KeyOffset       = "offset"        // File offset for read/write operations
	KeyCount        = "count"         // Byte count requested
	KeyBytesRead    = "bytes_read"    // Actual bytes read
	KeyBytesWritten = "bytes_written" // Actual bytes written
	KeyEOF          = "eof"           // End of file indicator
	KeyStable       = "stable"        // Write durability level (sync, async, ...)

	// ========================================================================
	// Server / Credential Identification
	// ========================================================================
	KeyClientIP = "server_addr" // Remote server address (host:port)
	KeyUID      = "uid"         // AUTH_SYS user ID used for the call
	KeyGID      = "gid"         // AUTH_SYS group ID used for the call
	KeyAuth     = "auth"        // Authentication flavor (AUTH_NONE, AUTH_SYS, ...)

	// ========================================================================
	// Session & Connection
	// ========================================================================
	KeySessionID    = "session_id"    // Session identifier
	KeyConnectionID = "connection_id" // TCP connection identifier
	KeyRequestID    = "request_id"    // ONC RPC transaction ID (xid)

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // Numeric error code
	KeyAttempt    = "attempt"     // Retry attempt number
	KeyMaxRetries = "max_retries" // Maximum retry attempts

	// ========================================================================
	// Directory Operations
	// ========================================================================
	KeyEntries    = "entries"     // Number of directory entries returned
	KeyCookieEnd  = "cookie_end"  // Continuation cookie/cookieverf
	KeyMaxEntries = "max_entries" // Maximum entries requested

	// ========================================================================
	// Link Operations
	// ========================================================================
	KeyLinkTarget = "link_target" // Symbolic link target path
	KeyLinkCount  = "link_count"  // Hard link count
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// Protocol returns a slog.Attr for protocol name (portmap, mount, nfs3).
func Protocol(proto string) slog.Attr {
	return slog.String(KeyProtocol, proto)
}

// Procedure returns a slog.Attr for procedure name.
func Procedure(name string) slog.Attr {
	return slog.String(KeyProcedure, name)
}

// Handle returns a slog.Attr for a file handle (formatted as hex).
func Handle(h []byte) slog.Attr {
	return slog.String(KeyHandle, fmt.Sprintf("%x", h))
}

// HandleHex returns a slog.Attr for a file handle already in hex format.
func HandleHex(h string) slog.Attr {
	return slog.String(KeyHandle, h)
}

// Share returns a slog.Attr for the mounted export path.
func Share(name string) slog.Attr {
	return slog.String(KeyShare, name)
}

// Status returns a slog.Attr for an operation status code.
func Status(code int) slog.Attr {
	return slog.Int(KeyStatus, code)
}

// StatusMsg returns a slog.Attr for a human-readable status message.
func StatusMsg(msg string) slog.Attr {
	return slog.String(KeyStatusMsg, msg)
}

// Path returns a slog.Attr for a file/directory path.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Filename returns a slog.Attr for a filename (basename).
func Filename(name string) slog.Attr {
	return slog.String(KeyFilename, name)
}

// ParentPath returns a slog.Attr for a parent directory path.
func ParentPath(p string) slog.Attr {
	return slog.String(KeyParentPath, p)
}

// OldPath returns a slog.Attr for the source path in a rename.
func OldPath(p string) slog.Attr {
	return slog.String(KeyOldPath, p)
}

// NewPath returns a slog.Attr for the destination path in a rename.
func NewPath(p string) slog.Attr {
	return slog.String(KeyNewPath, p)
}

// TypeStr returns a slog.Attr for file type as a string.
func TypeStr(t string) slog.Attr {
	return slog.String(KeyType, t)
}

// Size returns a slog.Attr for file size.
func Size(s uint64) slog.Attr {
	return slog.Uint64(KeySize, s)
}

// Mode returns a slog.Attr for file mode/permissions.
func Mode(m uint32) slog.Attr {
	return slog.Any(KeyMode, m)
}

// Offset returns a slog.Attr for file offset.
func Offset(off uint64) slog.Attr {
	return slog.Uint64(KeyOffset, off)
}

// Count returns a slog.Attr for byte count requested.
func Count(c uint32) slog.Attr {
	return slog.Any(KeyCount, c)
}

// BytesRead returns a slog.Attr for actual bytes read.
func BytesRead(n int) slog.Attr {
	return slog.Int(KeyBytesRead, n)
}

// BytesWritten returns a slog.Attr for actual bytes written.
func BytesWritten(n int) slog.Attr {
	return slog.Int(KeyBytesWritten, n)
}

// EOF returns a slog.Attr for the end-of-file indicator.
func EOF(eof bool) slog.Attr {
	return slog.Bool(KeyEOF, eof)
}

// Stable returns a slog.Attr for write durability level.
func Stable(s int) slog.Attr {
	return slog.Int(KeyStable, s)
}

// ServerAddr returns a slog.Attr for the remote server address.
func ServerAddr(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

// UID returns a slog.Attr for the AUTH_SYS user ID.
func UID(uid uint32) slog.Attr {
	return slog.Any(KeyUID, uid)
}

// GID returns a slog.Attr for the AUTH_SYS group ID.
func GID(gid uint32) slog.Attr {
	return slog.Any(KeyGID, gid)
}

// Auth returns a slog.Attr for the authentication flavor.
func Auth(flavor uint32) slog.Attr {
	return slog.Any(KeyAuth, flavor)
}

// SessionID returns a slog.Attr for a session identifier.
func SessionID(id string) slog.Attr {
	return slog.String(KeySessionID, id)
}

// ConnectionID returns a slog.Attr for a TCP connection identifier.
func ConnectionID(id string) slog.Attr {
	return slog.String(KeyConnectionID, id)
}

// RequestID returns a slog.Attr for the RPC transaction ID (xid).
func RequestID(id uint32) slog.Attr {
	return slog.Any(KeyRequestID, id)
}

// DurationMs returns a slog.Attr for duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a numeric error code.
func ErrorCode(code int) slog.Attr {
	return slog.Int(KeyErrorCode, code)
}

// Attempt returns a slog.Attr for the retry attempt number.
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// MaxRetries returns a slog.Attr for the maximum retry attempts.
func MaxRetries(n int) slog.Attr {
	return slog.Int(KeyMaxRetries, n)
}

// Entries returns a slog.Attr for the number of directory entries returned.
func Entries(n int) slog.Attr {
	return slog.Int(KeyEntries, n)
}

// CookieEnd returns a slog.Attr for the continuation cookie/cookieverf.
func CookieEnd(cookie uint64) slog.Attr {
	return slog.Uint64(KeyCookieEnd, cookie)
}

// MaxEntries returns a slog.Attr for the maximum entries requested.
func MaxEntries(n int) slog.Attr {
	return slog.Int(KeyMaxEntries, n)
}

// LinkTarget returns a slog.Attr for a symbolic link target path.
func LinkTarget(target string) slog.Attr {
	return slog.String(KeyLinkTarget, target)
}

// LinkCount returns a slog.Attr for hard link count.
func LinkCount(count uint32) slog.Attr {
	return slog.Any(KeyLinkCount, count)
}
