package xdr

import (
	"bytes"
	"io"
)

// ============================================================================
// XDR Discriminated Union Helpers
// ============================================================================

// Encoder is implemented by types that can encode themselves to XDR.
type Encoder interface {
	Encode(buf *bytes.Buffer) error
}

// Decoder is implemented by types that can decode themselves from XDR.
type Decoder interface {
	Decode(r io.Reader) error
}

// WriteUnionTag writes the uint32 discriminant of an XDR discriminated
// union (RFC 4506 Section 4.15). It is an alias for WriteUint32 that makes
// union-encoding call sites self-documenting.
func WriteUnionTag(buf *bytes.Buffer, tag uint32) error {
	return WriteUint32(buf, tag)
}

// DecodeUnionTag reads the uint32 discriminant of an XDR discriminated
// union.
func DecodeUnionTag(r io.Reader) (uint32, error) {
	return DecodeUint32(r)
}
