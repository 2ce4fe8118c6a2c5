package xdr

import (
	"encoding/binary"
	"io"

	"github.com/marmos91/nfsclient/internal/rpcerrors"
)

// ============================================================================
// XDR Decoding Helpers - Wire Format → Go Types
// ============================================================================

// DecodeUint32 decodes a 32-bit unsigned integer from XDR format.
func DecodeUint32(r io.Reader) (uint32, error) {
	var v uint32
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, rpcerrors.NewTruncatedMessage("uint32", err)
	}
	return v, nil
}

// DecodeUint64 decodes a 64-bit unsigned integer (XDR "hyper") from XDR
// format.
func DecodeUint64(r io.Reader) (uint64, error) {
	var v uint64
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, rpcerrors.NewTruncatedMessage("uint64", err)
	}
	return v, nil
}

// DecodeInt32 decodes a 32-bit signed integer from XDR format.
func DecodeInt32(r io.Reader) (int32, error) {
	var v int32
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, rpcerrors.NewTruncatedMessage("int32", err)
	}
	return v, nil
}

// DecodeInt64 decodes a 64-bit signed integer (XDR "hyper") from XDR
// format.
func DecodeInt64(r io.Reader) (int64, error) {
	var v int64
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, rpcerrors.NewTruncatedMessage("int64", err)
	}
	return v, nil
}

// DecodeBool decodes an XDR boolean (any non-zero value is true).
func DecodeBool(r io.Reader) (bool, error) {
	v, err := DecodeUint32(r)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// skipPadding reads and discards the 0-3 zero bytes that follow a
// variable-length field to realign to a 4-byte boundary.
func skipPadding(r io.Reader, dataLen uint32) error {
	padding := (4 - (dataLen % 4)) % 4
	if padding == 0 {
		return nil
	}
	var padBuf [3]byte
	if _, err := io.ReadFull(r, padBuf[:padding]); err != nil {
		return rpcerrors.NewTruncatedMessage("padding", err)
	}
	return nil
}

// DecodeOpaque decodes XDR variable-length opaque data: length, data,
// padding. Lengths beyond MaxOpaqueLength are rejected as malformed rather
// than attempted, to protect against a hostile peer's declared length.
func DecodeOpaque(r io.Reader) ([]byte, error) {
	length, err := DecodeUint32(r)
	if err != nil {
		return nil, err
	}
	if length > MaxOpaqueLength {
		return nil, rpcerrors.NewMalformedMessage("opaque length exceeds maximum")
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, rpcerrors.NewTruncatedMessage("opaque data", err)
	}

	if err := skipPadding(r, length); err != nil {
		return nil, err
	}
	return data, nil
}

// DecodeFixedOpaque decodes fixed-length opaque data of exactly n bytes,
// still padded to the next 4-byte boundary.
func DecodeFixedOpaque(r io.Reader, n int) ([]byte, error) {
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, rpcerrors.NewTruncatedMessage("fixed opaque data", err)
	}
	if err := skipPadding(r, uint32(n)); err != nil {
		return nil, err
	}
	return data, nil
}

// DecodeString decodes an XDR string using the same layout as
// DecodeOpaque.
func DecodeString(r io.Reader) (string, error) {
	data, err := DecodeOpaque(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeUint32Array decodes a length-prefixed array of uint32 values.
func DecodeUint32Array(r io.Reader) ([]uint32, error) {
	n, err := DecodeUint32(r)
	if err != nil {
		return nil, err
	}
	if n > MaxArrayLength {
		return nil, rpcerrors.NewMalformedMessage("array length exceeds maximum")
	}
	values := make([]uint32, n)
	for i := range values {
		v, err := DecodeUint32(r)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// DecodeOptional decodes an "optional" value: a boolean discriminator
// followed by present's decoding when the discriminator is true.
func DecodeOptional(r io.Reader, present func(io.Reader) error) (bool, error) {
	set, err := DecodeBool(r)
	if err != nil {
		return false, err
	}
	if !set {
		return false, nil
	}
	if err := present(r); err != nil {
		return false, err
	}
	return true, nil
}

// DecodeNextList walks an XDR "next?" linked list: each element is
// preceded by the tag 1, termination is the tag 0. readElem is invoked once
// per element; decoding stops at the first 0 tag or the first error.
func DecodeNextList(r io.Reader, readElem func(io.Reader) error) error {
	for {
		tag, err := DecodeUint32(r)
		if err != nil {
			return err
		}
		switch tag {
		case 0:
			return nil
		case 1:
			if err := readElem(r); err != nil {
				return err
			}
		default:
			return rpcerrors.NewMalformedMessage("invalid next-list tag")
		}
	}
}
