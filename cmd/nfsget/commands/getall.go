package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/marmos91/nfsclient/cmd/nfsget/cmdutil"
	"github.com/marmos91/nfsclient/internal/logger"
	"github.com/marmos91/nfsclient/internal/nfs3"
	"github.com/marmos91/nfsclient/pkg/nfsclient"
)

var (
	getallDest  string
	getallDepth int
)

var getallCmd = &cobra.Command{
	Use:   "getall [path]",
	Short: "Download a directory tree from the mounted export",
	Long: `Walk a directory tree via READDIRPLUS and download every regular file
found, mirroring the remote layout under the destination directory.
Symlinks are skipped. Per-directory permission errors are reported and the
walk continues with siblings.

Examples:
  # Mirror the whole export into ./dump
  nfsget getall --host 10.0.0.5 --export /export --dest dump

  # Mirror two levels of a subdirectory
  nfsget getall --host 10.0.0.5 --export /export home --depth 2 --dest dump`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGetall,
}

func init() {
	getallCmd.Flags().StringVar(&getallDest, "dest", ".", "local destination directory")
	getallCmd.Flags().IntVarP(&getallDepth, "depth", "d", 16, "maximum recursion depth")
}

func runGetall(cmd *cobra.Command, args []string) error {
	client, cfg, err := connectClient(cmd.Context())
	if err != nil {
		return err
	}
	defer client.Close()

	startPath := ""
	if len(args) == 1 {
		startPath = args[0]
	}

	token, err := resolvePath(cmd.Context(), client, startPath)
	if err != nil {
		return err
	}

	var files, failures int
	var bytes uint64

	opts := nfs3.WalkOptions{MachineName: cfg.Credential.MachineName}
	for entry := range nfs3.Walk(cmd.Context(), client.NFS, token, startPath, getallDepth, opts) {
		if entry.Err != nil {
			failures++
			PrintErr("skipping %s: %v", entry.Path, entry.Err)
			continue
		}

		local := filepath.Join(getallDest, filepath.FromSlash(entry.Path))
		switch entry.Kind {
		case nfs3.TypeDir:
			if err := os.MkdirAll(local, 0o755); err != nil {
				return fmt.Errorf("mkdir %s: %w", local, err)
			}
		case nfs3.TypeReg:
			if entry.Token == 0 {
				failures++
				PrintErr("skipping %s: server returned no handle", entry.Path)
				continue
			}
			written, err := downloadTo(cmd, client, entry.Token, local)
			if err != nil {
				failures++
				PrintErr("skipping %s: %v", entry.Path, err)
				continue
			}
			files++
			bytes += written
			logger.Debug("downloaded file", "path", entry.Path, "bytes", written)
		}
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Downloaded %d files (%s) to %s, %d entries skipped",
		files, formatSize(bytes), getallDest, failures))
	return nil
}

func downloadTo(cmd *cobra.Command, client *nfsclient.Client, token uint64, local string) (uint64, error) {
	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		return 0, err
	}
	dst, err := os.Create(local)
	if err != nil {
		return 0, err
	}
	defer dst.Close()
	return nfs3.Download(cmd.Context(), client.NFS, token, dst, 0, 0)
}
