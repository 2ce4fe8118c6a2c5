package nfs3

import (
	"bytes"

	"github.com/rasky/go-xdr/xdr2"
)

// MarshalFattr3Debug encodes a Fattr3 using the reflection-driven go-xdr
// codec rather than the hand-rolled primitive encoder in internal/xdr. It
// exists for diagnostic dumps (cmd/nfsget's --raw attribute dump) where
// struct-tag-driven encoding is convenient; the wire-critical GETATTR/
// SETATTR/LOOKUP paths still decode through decodeFattr3 in types.go.
func MarshalFattr3Debug(a *Fattr3) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, a); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalFattr3Debug is the inverse of MarshalFattr3Debug, used by tests
// and the debug dump path to round-trip a previously marshaled Fattr3.
func UnmarshalFattr3Debug(data []byte) (*Fattr3, error) {
	var a Fattr3
	if _, err := xdr.Unmarshal(bytes.NewReader(data), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// MarshalNFSTime3Debug and UnmarshalNFSTime3Debug do the same for the
// smaller nfstime3 structure, used when dumping just a timestamp field.
func MarshalNFSTime3Debug(t NFSTime3) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func UnmarshalNFSTime3Debug(data []byte) (NFSTime3, error) {
	var t NFSTime3
	if _, err := xdr.Unmarshal(bytes.NewReader(data), &t); err != nil {
		return NFSTime3{}, err
	}
	return t, nil
}
