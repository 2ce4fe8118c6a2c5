package rpc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// UnixAuth is the AUTH_SYS/AUTH_UNIX credential body (RFC 5531 Section 8.2):
// a timestamp, a machine name, the caller's uid/gid, and a supplementary
// group list capped at 16 entries.
type UnixAuth struct {
	Stamp       uint32
	MachineName string
	UID         uint32
	GID         uint32
	GIDs        []uint32
}

// String renders the credential for logging. It never includes anything
// sensitive beyond what the wire already carries in cleartext.
func (a *UnixAuth) String() string {
	return fmt.Sprintf("UnixAuth{machine=%s uid=%d gid=%d gids=%v}", a.MachineName, a.UID, a.GID, a.GIDs)
}

// Encode writes the credential body (without the surrounding opaque_auth
// flavor/length wrapper) to buf.
func (a *UnixAuth) Encode(buf *bytes.Buffer) error {
	if err := binary.Write(buf, binary.BigEndian, a.Stamp); err != nil {
		return fmt.Errorf("write stamp: %w", err)
	}

	nameBytes := []byte(a.MachineName)
	if err := binary.Write(buf, binary.BigEndian, uint32(len(nameBytes))); err != nil {
		return fmt.Errorf("write machine name length: %w", err)
	}
	buf.Write(nameBytes)
	padding := (4 - (len(nameBytes) % 4)) % 4
	for i := 0; i < padding; i++ {
		buf.WriteByte(0)
	}

	if err := binary.Write(buf, binary.BigEndian, a.UID); err != nil {
		return fmt.Errorf("write uid: %w", err)
	}
	if err := binary.Write(buf, binary.BigEndian, a.GID); err != nil {
		return fmt.Errorf("write gid: %w", err)
	}

	if len(a.GIDs) > maxGIDs {
		return fmt.Errorf("too many gids: %d (max %d)", len(a.GIDs), maxGIDs)
	}
	if err := binary.Write(buf, binary.BigEndian, uint32(len(a.GIDs))); err != nil {
		return fmt.Errorf("write gids length: %w", err)
	}
	for _, gid := range a.GIDs {
		if err := binary.Write(buf, binary.BigEndian, gid); err != nil {
			return fmt.Errorf("write gid: %w", err)
		}
	}

	return nil
}

// EncodedSize returns the exact number of bytes Encode will write, so
// callers can size the opaque_auth length field without a double pass.
func (a *UnixAuth) EncodedSize() uint32 {
	nameLen := len(a.MachineName)
	namePadded := nameLen + (4-(nameLen%4))%4
	return 4 + 4 + uint32(namePadded) + 4 + 4 + 4 + uint32(len(a.GIDs)*4)
}

// ParseUnixAuth decodes an AUTH_SYS credential body as sent by a peer. The
// client does not receive AUTH_SYS credentials from a server in normal
// operation, but decoding is kept symmetric with Encode for verifier
// echoes and for testing against fixtures captured from real traffic.
func ParseUnixAuth(body []byte) (*UnixAuth, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("empty auth_unix body")
	}

	r := bytes.NewReader(body)

	var stamp uint32
	if err := binary.Read(r, binary.BigEndian, &stamp); err != nil {
		return nil, fmt.Errorf("read stamp: %w", err)
	}

	var nameLen uint32
	if err := binary.Read(r, binary.BigEndian, &nameLen); err != nil {
		return nil, fmt.Errorf("read machine name length: %w", err)
	}
	if nameLen > maxMachineNameLength {
		return nil, fmt.Errorf("machine name too long: %d", nameLen)
	}
	nameBytes := make([]byte, nameLen)
	if _, err := io.ReadFull(r, nameBytes); err != nil {
		return nil, fmt.Errorf("read machine name: %w", err)
	}
	padding := (4 - (nameLen % 4)) % 4
	if padding > 0 {
		padBuf := make([]byte, padding)
		if _, err := io.ReadFull(r, padBuf); err != nil {
			return nil, fmt.Errorf("read machine name padding: %w", err)
		}
	}

	var uid, gid uint32
	if err := binary.Read(r, binary.BigEndian, &uid); err != nil {
		return nil, fmt.Errorf("read uid: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &gid); err != nil {
		return nil, fmt.Errorf("read gid: %w", err)
	}

	var numGIDs uint32
	if err := binary.Read(r, binary.BigEndian, &numGIDs); err != nil {
		return nil, fmt.Errorf("read gids length: %w", err)
	}
	if numGIDs > maxGIDs {
		return nil, fmt.Errorf("too many gids: %d (max %d)", numGIDs, maxGIDs)
	}
	gids := make([]uint32, numGIDs)
	for i := range gids {
		if err := binary.Read(r, binary.BigEndian, &gids[i]); err != nil {
			return nil, fmt.Errorf("read gid %d: %w", i, err)
		}
	}

	return &UnixAuth{
		Stamp:       stamp,
		MachineName: string(nameBytes),
		UID:         uid,
		GID:         gid,
		GIDs:        gids,
	}, nil
}
