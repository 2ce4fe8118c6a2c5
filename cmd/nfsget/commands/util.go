package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/marmos91/nfsclient/cmd/nfsget/cmdutil"
	"github.com/marmos91/nfsclient/internal/bytesize"
	"github.com/marmos91/nfsclient/internal/cli/timeutil"
	"github.com/marmos91/nfsclient/internal/nfs3"
	"github.com/marmos91/nfsclient/pkg/nfsclient"
)

// connectClient loads the effective config and runs the full bootstrap
// (portmap, mount, nfs). The caller must Close the returned client.
func connectClient(ctx context.Context) (*nfsclient.Client, *nfsclient.Config, error) {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Export == "" {
		return nil, nil, fmt.Errorf("no export configured (use --export or NFSCLIENT_EXPORT)")
	}

	client := nfsclient.New(cfg)
	if err := client.Connect(ctx); err != nil {
		client.Close()
		return nil, nil, err
	}
	return client, cfg, nil
}

// resolvePath walks path component by component from the mount root (token
// 0) via LOOKUP and returns the final component's token.
func resolvePath(ctx context.Context, client *nfsclient.Client, path string) (uint64, error) {
	token := uint64(0)
	for _, name := range strings.Split(path, "/") {
		if name == "" || name == "." {
			continue
		}
		next, present, _, _, err := client.NFS.Lookup(ctx, token, name)
		if err != nil {
			return 0, fmt.Errorf("lookup %q: %w", name, err)
		}
		if !present {
			return 0, fmt.Errorf("no such file or directory: %q", path)
		}
		token = next
	}
	return token, nil
}

// formatSize renders a byte count the way the rest of the CLI does.
func formatSize(n uint64) string {
	return bytesize.ByteSize(n).String()
}

// formatNFSTime renders an nfstime3 as a local timestamp.
func formatNFSTime(t nfs3.NFSTime3) string {
	return timeutil.FormatUnix(uint64(t.Seconds), uint64(t.Nseconds))
}
