package nfsclient

import (
	"context"
	"fmt"
)

// Export is one exported filesystem and the client groups allowed to mount
// it, as reported by the MOUNT EXPORT procedure.
type Export struct {
	Directory string   `json:"directory" yaml:"directory"`
	Groups    []string `json:"groups,omitempty" yaml:"groups,omitempty"`
}

// MountRecord is one (hostname, directory) pair from the MOUNT DUMP
// procedure: a mount record some client currently holds on the server.
type MountRecord struct {
	Hostname  string `json:"hostname" yaml:"hostname"`
	Directory string `json:"directory" yaml:"directory"`
}

// Exports lists the server's exported filesystems. Valid once Connect has
// reached StateConnected (the export listing does not require a mount).
func (c *Client) Exports(ctx context.Context) ([]Export, error) {
	if c.mountClient == nil {
		return nil, fmt.Errorf("nfsclient: Exports called before Connect")
	}
	entries, err := c.mountClient.Export(ctx)
	if err != nil {
		return nil, err
	}
	exports := make([]Export, 0, len(entries))
	for _, e := range entries {
		exports = append(exports, Export{Directory: e.Directory, Groups: e.Groups})
	}
	return exports, nil
}

// Mounts lists the mount records the server currently holds for all
// clients.
func (c *Client) Mounts(ctx context.Context) ([]MountRecord, error) {
	if c.mountClient == nil {
		return nil, fmt.Errorf("nfsclient: Mounts called before Connect")
	}
	entries, err := c.mountClient.Dump(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]MountRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, MountRecord{Hostname: e.Hostname, Directory: e.Directory})
	}
	return records, nil
}

// ListExports resolves the MOUNT service on cfg.Host, queries its export
// list, and tears the connection down again without mounting anything.
func ListExports(ctx context.Context, cfg *Config) ([]Export, error) {
	c := New(cfg)
	defer c.Close()

	mountPort, nfsPort, err := c.resolvePorts(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.connectServices(ctx, mountPort, nfsPort); err != nil {
		return nil, err
	}
	c.state = StateConnected

	return c.Exports(ctx)
}
