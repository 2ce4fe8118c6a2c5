package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/marmos91/nfsclient/cmd/nfsget/cmdutil"
	"github.com/marmos91/nfsclient/internal/bytesize"
	"github.com/marmos91/nfsclient/internal/cli/prompt"
	"github.com/marmos91/nfsclient/internal/nfs3"
)

var (
	getChunkSize string
	getMaxBytes  string
	getForce     bool
)

var getCmd = &cobra.Command{
	Use:   "get <remote-path> [local-path]",
	Short: "Download one file from the mounted export",
	Long: `Download a single file via chunked READ calls. The local path defaults to
the remote file's base name in the current directory.

Examples:
  # Download /export/etc/passwd to ./passwd
  nfsget get --host 10.0.0.5 --export /export etc/passwd

  # Download at most the first megabyte
  nfsget get --host 10.0.0.5 --export /export big.bin --max-bytes 1MiB`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringVar(&getChunkSize, "chunk-size", "", "READ request size per chunk, e.g. 32KiB")
	getCmd.Flags().StringVar(&getMaxBytes, "max-bytes", "", "stop after downloading this many bytes")
	getCmd.Flags().BoolVarP(&getForce, "force", "f", false, "overwrite an existing local file without asking")
}

func runGet(cmd *cobra.Command, args []string) error {
	chunk, maxBytes, err := parseGetSizes()
	if err != nil {
		return err
	}

	client, _, err := connectClient(cmd.Context())
	if err != nil {
		return err
	}
	defer client.Close()

	remote := args[0]
	local := filepath.Base(remote)
	if len(args) == 2 {
		local = args[1]
	}

	if _, err := os.Stat(local); err == nil {
		ok, err := prompt.ConfirmWithForce(fmt.Sprintf("Overwrite %s", local), getForce)
		if err != nil {
			return err
		}
		if !ok {
			cmd.Println("Aborted.")
			return nil
		}
	}

	token, err := resolvePath(cmd.Context(), client, remote)
	if err != nil {
		return err
	}

	dst, err := os.Create(local)
	if err != nil {
		return fmt.Errorf("create %s: %w", local, err)
	}
	defer dst.Close()

	written, err := nfs3.Download(cmd.Context(), client.NFS, token, dst, chunk, maxBytes)
	if err != nil {
		return fmt.Errorf("download %s: %w", remote, err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Downloaded %s (%s) to %s", remote, formatSize(written), local))
	return nil
}

func parseGetSizes() (chunk uint32, maxBytes uint64, err error) {
	if getChunkSize != "" {
		size, err := bytesize.ParseByteSize(getChunkSize)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid --chunk-size: %w", err)
		}
		chunk = uint32(size.Uint64())
	}
	if getMaxBytes != "" {
		size, err := bytesize.ParseByteSize(getMaxBytes)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid --max-bytes: %w", err)
		}
		maxBytes = size.Uint64()
	}
	return chunk, maxBytes, nil
}
