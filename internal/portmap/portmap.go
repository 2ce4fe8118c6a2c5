// Package portmap implements a minimal client for the portmapper service
// (RFC 1833, program 100000): resolving a registered program/version pair
// to the TCP port it currently listens on, and the handful of other
// procedures the portmapper exposes.
package portmap

import (
	"bytes"
	"context"
	"io"

	"github.com/marmos91/nfsclient/internal/rpc"
	"github.com/marmos91/nfsclient/internal/rpcerrors"
	"github.com/marmos91/nfsclient/internal/xdr"
)

// Procedure numbers for program 100000, versions 2 and 4.
const (
	ProcNull    uint32 = 0
	ProcSet     uint32 = 1
	ProcUnset   uint32 = 2
	ProcGetPort uint32 = 3
	ProcDump    uint32 = 4
	ProcCallIt  uint32 = 5
	ProcGetTime uint32 = 6
)

// Protocol values accepted by GETPORT/DUMP mapping entries.
const (
	ProtoTCP uint32 = 6
	ProtoUDP uint32 = 17
)

// Mapping is one (program, version, protocol, port) registration as
// returned by DUMP.
type Mapping struct {
	Program  uint32
	Version  uint32
	Protocol uint32
	Port     uint32
}

// Client is a thin procedure-oriented facade over an rpc.Session for the
// portmapper program.
type Client struct {
	session *rpc.Session
}

// New wraps an already-connected session. The caller is expected to have
// dialed port 111 (or whatever port the portmapper listens on) before
// constructing this client.
func New(session *rpc.Session) *Client {
	return &Client{session: session}
}

// Null sends a heartbeat NULL call.
func (c *Client) Null(ctx context.Context) error {
	_, err := c.session.Call(ctx, rpc.ProgramPortmap, rpc.PortmapVersion, ProcNull, nil, nil)
	return err
}

// GetPort resolves the port registered for (program, version, protocol),
// returning 0 if nothing is registered.
func (c *Client) GetPort(ctx context.Context, program, version, protocol uint32) (uint32, error) {
	var args bytes.Buffer
	if err := xdr.WriteUint32(&args, program); err != nil {
		return 0, err
	}
	if err := xdr.WriteUint32(&args, version); err != nil {
		return 0, err
	}
	if err := xdr.WriteUint32(&args, protocol); err != nil {
		return 0, err
	}
	if err := xdr.WriteUint32(&args, 0); err != nil { // port, ignored by servers on request
		return 0, err
	}

	result, err := c.session.Call(ctx, rpc.ProgramPortmap, rpc.PortmapVersion, ProcGetPort, nil, args.Bytes())
	if err != nil {
		return 0, rpcerrors.NewPortmapUnavailable(err)
	}

	port, err := xdr.DecodeUint32(bytes.NewReader(result))
	if err != nil {
		return 0, err
	}
	return port, nil
}

// ResolveOrFail is GetPort with the "not registered" case turned into a
// typed error, since almost every caller wants that rather than a bare 0.
func (c *Client) ResolveOrFail(ctx context.Context, program, version, protocol uint32) (uint32, error) {
	port, err := c.GetPort(ctx, program, version, protocol)
	if err != nil {
		return 0, err
	}
	if port == 0 {
		return 0, rpcerrors.NewServiceNotRegistered(program, version)
	}
	return port, nil
}

// Dump returns every (program, version, protocol, port) mapping the
// remote portmapper currently knows about.
func (c *Client) Dump(ctx context.Context) ([]Mapping, error) {
	result, err := c.session.Call(ctx, rpc.ProgramPortmap, rpc.PortmapVersion, ProcDump, nil, nil)
	if err != nil {
		return nil, rpcerrors.NewPortmapUnavailable(err)
	}

	var mappings []Mapping
	r := bytes.NewReader(result)
	err = xdr.DecodeNextList(r, func(r io.Reader) error {
		program, err := xdr.DecodeUint32(r)
		if err != nil {
			return err
		}
		version, err := xdr.DecodeUint32(r)
		if err != nil {
			return err
		}
		protocol, err := xdr.DecodeUint32(r)
		if err != nil {
			return err
		}
		port, err := xdr.DecodeUint32(r)
		if err != nil {
			return err
		}
		mappings = append(mappings, Mapping{Program: program, Version: version, Protocol: protocol, Port: port})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mappings, nil
}

// GetTime returns the remote portmapper's notion of the current time as
// seconds since the Unix epoch. It requires portmapper version 4.
func (c *Client) GetTime(ctx context.Context) (uint32, error) {
	result, err := c.session.Call(ctx, rpc.ProgramPortmap, rpc.PortmapVersion4, ProcGetTime, nil, nil)
	if err != nil {
		return 0, rpcerrors.NewPortmapUnavailable(err)
	}
	return xdr.DecodeUint32(bytes.NewReader(result))
}

// CallIt invokes a procedure indirectly through the portmapper's CALLIT
// relay, returning the port the target service actually answered on and
// the raw result bytes.
func (c *Client) CallIt(ctx context.Context, program, version, procedure uint32, args []byte) (uint32, []byte, error) {
	var buf bytes.Buffer
	if err := xdr.WriteUint32(&buf, program); err != nil {
		return 0, nil, err
	}
	if err := xdr.WriteUint32(&buf, version); err != nil {
		return 0, nil, err
	}
	if err := xdr.WriteUint32(&buf, procedure); err != nil {
		return 0, nil, err
	}
	if err := xdr.WriteOpaque(&buf, args); err != nil {
		return 0, nil, err
	}

	result, err := c.session.Call(ctx, rpc.ProgramPortmap, rpc.PortmapVersion, ProcCallIt, nil, buf.Bytes())
	if err != nil {
		return 0, nil, rpcerrors.NewPortmapUnavailable(err)
	}

	r := bytes.NewReader(result)
	port, err := xdr.DecodeUint32(r)
	if err != nil {
		return 0, nil, err
	}
	resultBytes, err := xdr.DecodeOpaque(r)
	if err != nil {
		return 0, nil, err
	}
	return port, resultBytes, nil
}
