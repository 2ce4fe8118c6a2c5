package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/nfsclient/cmd/nfsget/cmdutil"
	"github.com/marmos91/nfsclient/pkg/nfsclient"
)

var exportsCmd = &cobra.Command{
	Use:   "exports",
	Short: "List the server's exported filesystems",
	Long: `Query the MOUNT service's EXPORT procedure and list every filesystem the
server exports, together with the client groups allowed to mount each one.
No export is mounted in the process.

Examples:
  # List exports as a table
  nfsget exports --host 10.0.0.5

  # List as JSON
  nfsget exports --host 10.0.0.5 -o json`,
	RunE: runExports,
}

// ExportList is a list of exports for table rendering.
type ExportList []nfsclient.Export

// Headers implements TableRenderer.
func (el ExportList) Headers() []string {
	return []string{"EXPORT", "ALLOWED CLIENTS"}
}

// Rows implements TableRenderer.
func (el ExportList) Rows() [][]string {
	rows := make([][]string, 0, len(el))
	for _, e := range el {
		groups := "(everyone)"
		if len(e.Groups) > 0 {
			groups = strings.Join(e.Groups, ", ")
		}
		rows = append(rows, []string{e.Directory, groups})
	}
	return rows
}

func runExports(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}

	exports, err := nfsclient.ListExports(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to list exports: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, exports, len(exports) == 0, "No exports found.", ExportList(exports))
}
