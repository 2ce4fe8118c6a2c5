package nfs3

import (
	"bytes"
	"io"

	"github.com/marmos91/nfsclient/internal/xdr"
)

// NFSTime3 is an NFSv3 timestamp: seconds and nanoseconds since the Unix
// epoch (RFC 1813 Section 2.5).
type NFSTime3 struct {
	Seconds  uint32
	Nseconds uint32
}

func decodeNFSTime3(r io.Reader) (NFSTime3, error) {
	sec, err := xdr.DecodeUint32(r)
	if err != nil {
		return NFSTime3{}, err
	}
	nsec, err := xdr.DecodeUint32(r)
	if err != nil {
		return NFSTime3{}, err
	}
	return NFSTime3{Seconds: sec, Nseconds: nsec}, nil
}

func encodeNFSTime3(buf *bytes.Buffer, t NFSTime3) error {
	if err := xdr.WriteUint32(buf, t.Seconds); err != nil {
		return err
	}
	return xdr.WriteUint32(buf, t.Nseconds)
}

// Fattr3 is the full NFSv3 file attribute structure (RFC 1813 Section
// 2.6).
type Fattr3 struct {
	Type       FileType
	Mode       uint32
	Nlink      uint32
	UID        uint32
	GID        uint32
	Size       uint64
	Used       uint64
	RdevMajor  uint32
	RdevMinor  uint32
	Fsid       uint64
	FileID     uint64
	ATime      NFSTime3
	MTime      NFSTime3
	CTime      NFSTime3
}

func decodeFattr3(r io.Reader) (*Fattr3, error) {
	a := &Fattr3{}

	typeTag, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, err
	}
	a.Type = FileType(typeTag)

	if a.Mode, err = xdr.DecodeUint32(r); err != nil {
		return nil, err
	}
	if a.Nlink, err = xdr.DecodeUint32(r); err != nil {
		return nil, err
	}
	if a.UID, err = xdr.DecodeUint32(r); err != nil {
		return nil, err
	}
	if a.GID, err = xdr.DecodeUint32(r); err != nil {
		return nil, err
	}
	if a.Size, err = xdr.DecodeUint64(r); err != nil {
		return nil, err
	}
	if a.Used, err = xdr.DecodeUint64(r); err != nil {
		return nil, err
	}
	if a.RdevMajor, err = xdr.DecodeUint32(r); err != nil {
		return nil, err
	}
	if a.RdevMinor, err = xdr.DecodeUint32(r); err != nil {
		return nil, err
	}
	if a.Fsid, err = xdr.DecodeUint64(r); err != nil {
		return nil, err
	}
	if a.FileID, err = xdr.DecodeUint64(r); err != nil {
		return nil, err
	}
	if a.ATime, err = decodeNFSTime3(r); err != nil {
		return nil, err
	}
	if a.MTime, err = decodeNFSTime3(r); err != nil {
		return nil, err
	}
	if a.CTime, err = decodeNFSTime3(r); err != nil {
		return nil, err
	}

	return a, nil
}

// decodePostOpAttr decodes a post_op_attr: optional fattr3.
func decodePostOpAttr(r io.Reader) (*Fattr3, error) {
	var attr *Fattr3
	_, err := xdr.DecodeOptional(r, func(r io.Reader) error {
		a, err := decodeFattr3(r)
		if err != nil {
			return err
		}
		attr = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return attr, nil
}

// WccAttr is the pre-operation weak cache consistency snapshot: size and
// the two timestamps that change when content or metadata changes.
type WccAttr struct {
	Size  uint64
	MTime NFSTime3
	CTime NFSTime3
}

// decodeWccData decodes a wcc_data: optional pre_op_attr followed by a
// post_op_attr.
func decodeWccData(r io.Reader) (*WccAttr, *Fattr3, error) {
	var before *WccAttr
	_, err := xdr.DecodeOptional(r, func(r io.Reader) error {
		size, err := xdr.DecodeUint64(r)
		if err != nil {
			return err
		}
		mtime, err := decodeNFSTime3(r)
		if err != nil {
			return err
		}
		ctime, err := decodeNFSTime3(r)
		if err != nil {
			return err
		}
		before = &WccAttr{Size: size, MTime: mtime, CTime: ctime}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	after, err := decodePostOpAttr(r)
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

// SetFieldU32 is an optional uint32 field of sattr3 (mode/uid/gid), or the
// zero value when not set.
type SetFieldU32 struct {
	Set   bool
	Value uint32
}

// SetFieldU64 is an optional uint64 field of sattr3 (size).
type SetFieldU64 struct {
	Set   bool
	Value uint64
}

// SetTime is an sattr3 atime/mtime field: DONT_CHANGE, SET_TO_SERVER_TIME,
// or SET_TO_CLIENT_TIME with an explicit NFSTime3.
type SetTime struct {
	How  uint32
	Time NFSTime3
}

// Sattr3 is the settable subset of file attributes accepted by SETATTR
// and CREATE (RFC 1813 Section 2.6).
type Sattr3 struct {
	Mode  SetFieldU32
	UID   SetFieldU32
	GID   SetFieldU32
	Size  SetFieldU64
	ATime SetTime
	MTime SetTime
}

func encodeSattr3(buf *bytes.Buffer, a Sattr3) error {
	if err := xdr.WriteOptional(buf, a.Mode.Set, func(b *bytes.Buffer) error {
		return xdr.WriteUint32(b, a.Mode.Value)
	}); err != nil {
		return err
	}
	if err := xdr.WriteOptional(buf, a.UID.Set, func(b *bytes.Buffer) error {
		return xdr.WriteUint32(b, a.UID.Value)
	}); err != nil {
		return err
	}
	if err := xdr.WriteOptional(buf, a.GID.Set, func(b *bytes.Buffer) error {
		return xdr.WriteUint32(b, a.GID.Value)
	}); err != nil {
		return err
	}
	if err := xdr.WriteOptional(buf, a.Size.Set, func(b *bytes.Buffer) error {
		return xdr.WriteUint64(b, a.Size.Value)
	}); err != nil {
		return err
	}
	if err := xdr.WriteUnionTag(buf, a.ATime.How); err != nil {
		return err
	}
	if a.ATime.How == SetToClientTime {
		if err := encodeNFSTime3(buf, a.ATime.Time); err != nil {
			return err
		}
	}
	if err := xdr.WriteUnionTag(buf, a.MTime.How); err != nil {
		return err
	}
	if a.MTime.How == SetToClientTime {
		if err := encodeNFSTime3(buf, a.MTime.Time); err != nil {
			return err
		}
	}
	return nil
}

// SpecData3 is the device major/minor pair carried by MKNOD for CHR/BLK
// special files.
type SpecData3 struct {
	Major uint32
	Minor uint32
}

// DirEntry is one READDIRPLUS result: the name, the opaque pagination
// cookie, the file id, and (when the server provided them) attributes and
// a handle.
type DirEntry struct {
	Name   string
	Cookie uint64
	FileID uint64
	Attr   *Fattr3
	Handle []byte
}

// WccData is a weak cache consistency pair: the pre-operation snapshot (if
// the server supplied one) and the post-operation attributes.
type WccData struct {
	Before *WccAttr
	After  *Fattr3
}

// decodePostOpFh3 decodes a post_op_fh3: optional nfs_fh3.
func decodePostOpFh3(r io.Reader) ([]byte, error) {
	var handle []byte
	_, err := xdr.DecodeOptional(r, func(r io.Reader) error {
		h, err := xdr.DecodeOpaque(r)
		if err != nil {
			return err
		}
		handle = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	return handle, nil
}

// FsStat3 is the dynamic filesystem statistics returned by FSSTAT (RFC 1813
// Section 3.3.18).
type FsStat3 struct {
	TotalBytes uint64
	FreeBytes  uint64
	AvailBytes uint64
	TotalFiles uint64
	FreeFiles  uint64
	AvailFiles uint64
	InvarSec   uint32
}

func decodeFsStat3(r io.Reader) (*FsStat3, error) {
	s := &FsStat3{}
	var err error
	if s.TotalBytes, err = xdr.DecodeUint64(r); err != nil {
		return nil, err
	}
	if s.FreeBytes, err = xdr.DecodeUint64(r); err != nil {
		return nil, err
	}
	if s.AvailBytes, err = xdr.DecodeUint64(r); err != nil {
		return nil, err
	}
	if s.TotalFiles, err = xdr.DecodeUint64(r); err != nil {
		return nil, err
	}
	if s.FreeFiles, err = xdr.DecodeUint64(r); err != nil {
		return nil, err
	}
	if s.AvailFiles, err = xdr.DecodeUint64(r); err != nil {
		return nil, err
	}
	if s.InvarSec, err = xdr.DecodeUint32(r); err != nil {
		return nil, err
	}
	return s, nil
}

// FsInfo3 is the static server capability information returned by FSINFO
// (RFC 1813 Section 3.3.19).
type FsInfo3 struct {
	RtMax       uint32
	RtPref      uint32
	RtMult      uint32
	WtMax       uint32
	WtPref      uint32
	WtMult      uint32
	DtPref      uint32
	MaxFileSize uint64
	TimeDelta   NFSTime3
	Properties  uint32
}

// FSINFO properties bitmask values (RFC 1813 Section 3.3.19).
const (
	Fsf3Link        uint32 = 0x0001
	Fsf3Symlink     uint32 = 0x0002
	Fsf3Homogeneous uint32 = 0x0008
	Fsf3CanSetTime  uint32 = 0x0010
)

func decodeFsInfo3(r io.Reader) (*FsInfo3, error) {
	f := &FsInfo3{}
	var err error
	if f.RtMax, err = xdr.DecodeUint32(r); err != nil {
		return nil, err
	}
	if f.RtPref, err = xdr.DecodeUint32(r); err != nil {
		return nil, err
	}
	if f.RtMult, err = xdr.DecodeUint32(r); err != nil {
		return nil, err
	}
	if f.WtMax, err = xdr.DecodeUint32(r); err != nil {
		return nil, err
	}
	if f.WtPref, err = xdr.DecodeUint32(r); err != nil {
		return nil, err
	}
	if f.WtMult, err = xdr.DecodeUint32(r); err != nil {
		return nil, err
	}
	if f.DtPref, err = xdr.DecodeUint32(r); err != nil {
		return nil, err
	}
	if f.MaxFileSize, err = xdr.DecodeUint64(r); err != nil {
		return nil, err
	}
	if f.TimeDelta, err = decodeNFSTime3(r); err != nil {
		return nil, err
	}
	if f.Properties, err = xdr.DecodeUint32(r); err != nil {
		return nil, err
	}
	return f, nil
}

// PathConf3 is the POSIX pathconf information returned by PATHCONF (RFC
// 1813 Section 3.3.20).
type PathConf3 struct {
	LinkMax         uint32
	NameMax         uint32
	NoTrunc         bool
	ChownRestricted bool
	CaseInsensitive bool
	CasePreserving  bool
}

func decodePathConf3(r io.Reader) (*PathConf3, error) {
	p := &PathConf3{}
	var err error
	if p.LinkMax, err = xdr.DecodeUint32(r); err != nil {
		return nil, err
	}
	if p.NameMax, err = xdr.DecodeUint32(r); err != nil {
		return nil, err
	}
	if p.NoTrunc, err = xdr.DecodeBool(r); err != nil {
		return nil, err
	}
	if p.ChownRestricted, err = xdr.DecodeBool(r); err != nil {
		return nil, err
	}
	if p.CaseInsensitive, err = xdr.DecodeBool(r); err != nil {
		return nil, err
	}
	if p.CasePreserving, err = xdr.DecodeBool(r); err != nil {
		return nil, err
	}
	return p, nil
}
