// Package xdr provides generic XDR (External Data Representation) encoding
// and decoding utilities per RFC 4506.
//
// XDR is the canonical binary encoding used by ONC RPC and everything built
// on it: PORTMAP, MOUNT, and NFSv3. This package provides protocol-agnostic
// primitives; the wire structures for each service live in their own
// packages (internal/portmap, internal/mount, internal/nfs3).
//
// Key characteristics of XDR:
//   - Big-endian byte order for all multi-byte integers.
//   - 4-byte alignment for all data types.
//   - Variable-length data is preceded by a 4-byte length.
//   - Strings and opaque data are padded to 4-byte boundaries.
//
// Reference: RFC 4506 - XDR: External Data Representation Standard.
package xdr

// MaxOpaqueLength bounds a single decoded opaque/string field to guard
// against a hostile or corrupt peer declaring an enormous length.
const MaxOpaqueLength = 1 << 20

// MaxArrayLength bounds the element count of a length-prefixed array
// decode, for the same reason.
const MaxArrayLength = 1 << 16
