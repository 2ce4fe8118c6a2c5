package xdr

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// ============================================================================
// XDR Encoding Helpers - Go Types → Wire Format
// ============================================================================

// WriteUint32 encodes a 32-bit unsigned integer in XDR format.
func WriteUint32(buf *bytes.Buffer, v uint32) error {
	if err := binary.Write(buf, binary.BigEndian, v); err != nil {
		return fmt.Errorf("write uint32: %w", err)
	}
	return nil
}

// WriteUint64 encodes a 64-bit unsigned integer (XDR "hyper") in big-endian
// byte order.
func WriteUint64(buf *bytes.Buffer, v uint64) error {
	if err := binary.Write(buf, binary.BigEndian, v); err != nil {
		return fmt.Errorf("write uint64: %w", err)
	}
	return nil
}

// WriteInt32 encodes a 32-bit signed integer in XDR format.
func WriteInt32(buf *bytes.Buffer, v int32) error {
	if err := binary.Write(buf, binary.BigEndian, v); err != nil {
		return fmt.Errorf("write int32: %w", err)
	}
	return nil
}

// WriteInt64 encodes a 64-bit signed integer (XDR "hyper") in big-endian
// byte order.
func WriteInt64(buf *bytes.Buffer, v int64) error {
	if err := binary.Write(buf, binary.BigEndian, v); err != nil {
		return fmt.Errorf("write int64: %w", err)
	}
	return nil
}

// WriteBool encodes a boolean as a 32-bit 0/1 per RFC 4506 Section 4.4.
func WriteBool(buf *bytes.Buffer, v bool) error {
	var val uint32
	if v {
		val = 1
	}
	return WriteUint32(buf, val)
}

// WritePadding writes zero bytes to align dataLen to the next 4-byte
// boundary.
func WritePadding(buf *bytes.Buffer, dataLen uint32) error {
	padding := (4 - (dataLen % 4)) % 4
	if padding == 0 {
		return nil
	}
	var padBuf [3]byte
	if _, err := buf.Write(padBuf[:padding]); err != nil {
		return fmt.Errorf("write padding: %w", err)
	}
	return nil
}

// WriteOpaque encodes variable-length opaque data: length + bytes + padding.
func WriteOpaque(buf *bytes.Buffer, data []byte) error {
	length := uint32(len(data))
	if err := WriteUint32(buf, length); err != nil {
		return fmt.Errorf("write opaque length: %w", err)
	}
	if _, err := buf.Write(data); err != nil {
		return fmt.Errorf("write opaque data: %w", err)
	}
	return WritePadding(buf, length)
}

// WriteFixedOpaque encodes fixed-length opaque data: bytes + padding, with
// no length prefix (the length is known statically by both peers).
func WriteFixedOpaque(buf *bytes.Buffer, data []byte) error {
	if _, err := buf.Write(data); err != nil {
		return fmt.Errorf("write fixed opaque data: %w", err)
	}
	return WritePadding(buf, uint32(len(data)))
}

// WriteString encodes a string using the same length+data+padding layout as
// WriteOpaque, per RFC 4506 Section 4.11.
func WriteString(buf *bytes.Buffer, s string) error {
	return WriteOpaque(buf, []byte(s))
}

// WriteUint32Array encodes a length-prefixed array of uint32 values.
func WriteUint32Array(buf *bytes.Buffer, values []uint32) error {
	if err := WriteUint32(buf, uint32(len(values))); err != nil {
		return fmt.Errorf("write array length: %w", err)
	}
	for _, v := range values {
		if err := WriteUint32(buf, v); err != nil {
			return fmt.Errorf("write array element: %w", err)
		}
	}
	return nil
}

// WriteOptional encodes an "optional" value: a boolean discriminator
// followed by present's encoding when set is true.
func WriteOptional(buf *bytes.Buffer, set bool, present func(*bytes.Buffer) error) error {
	if err := WriteBool(buf, set); err != nil {
		return err
	}
	if !set {
		return nil
	}
	return present(buf)
}

// WriteNextList encodes a sequence of XDR "next?" linked-list entries: each
// element is preceded by the tag 1 (more follow) and the list is terminated
// by the tag 0, the encoding used by PORTMAP DUMP, MOUNT DUMP and MOUNT
// EXPORT.
func WriteNextList(buf *bytes.Buffer, n int, writeElem func(*bytes.Buffer, int) error) error {
	for i := 0; i < n; i++ {
		if err := WriteUint32(buf, 1); err != nil {
			return fmt.Errorf("write next-list tag: %w", err)
		}
		if err := writeElem(buf, i); err != nil {
			return fmt.Errorf("write next-list element %d: %w", i, err)
		}
	}
	return WriteUint32(buf, 0)
}
