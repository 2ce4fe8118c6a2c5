// Package commands implements the CLI commands for the nfsget demo client.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/nfsclient/cmd/nfsget/cmdutil"
	"github.com/marmos91/nfsclient/internal/logger"
)

// Version information injected at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "nfsget",
	Short: "nfsget - NFSv3 client exerciser",
	Long: `nfsget is a thin command-line exerciser for the NFSv3 client library:
it discovers exports, mounts one, lists directory trees, and downloads files,
speaking ONC RPC over TCP to the portmap, mount and nfs services.

Use "nfsget [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := cmdutil.Flags.LogLevel
		if level == "" {
			level = "WARN"
		}
		return logger.Init(logger.Config{Level: level, Format: "text", Output: "stderr"})
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cmdutil.Flags.ConfigFile, "config", "", "config file (default: $XDG_CONFIG_HOME/nfsclient/config.yaml)")
	pf.StringVarP(&cmdutil.Flags.Host, "host", "H", "", "NFS server hostname or IP address")
	pf.StringVarP(&cmdutil.Flags.Export, "export", "e", "", "server export path to mount, e.g. /export/data")
	pf.StringVarP(&cmdutil.Flags.Output, "output", "o", "table", "output format: table, json, yaml")
	pf.BoolVar(&cmdutil.Flags.NoColor, "no-color", false, "disable colored output")
	pf.StringVar(&cmdutil.Flags.LogLevel, "log-level", "", "log level: DEBUG, INFO, WARN, ERROR")
	pf.Uint32Var(&cmdutil.Flags.UID, "uid", 0, "AUTH_SYS uid presented on every call")
	pf.Uint32Var(&cmdutil.Flags.GID, "gid", 0, "AUTH_SYS gid presented on every call")
	pf.StringVar(&cmdutil.Flags.MachineName, "machine-name", "", "AUTH_SYS machine name (default: local hostname)")
	pf.Uint16Var(&cmdutil.Flags.PortmapPort, "portmap-port", 0, "fixed portmapper port (default: 111)")
	pf.Uint16Var(&cmdutil.Flags.MountPort, "mount-port", 0, "fixed mount service port (default: ask the portmapper)")
	pf.Uint16Var(&cmdutil.Flags.NFSPort, "nfs-port", 0, "fixed nfs service port (default: ask the portmapper)")
	pf.StringVar(&cmdutil.Flags.FragSize, "fragsize", "", "maximum outbound RPC fragment size, e.g. 32KiB")
	pf.DurationVar(&cmdutil.Flags.Timeout, "timeout", 0, "TCP dial timeout (default: 10s)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(exportsCmd)
	rootCmd.AddCommand(mountCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(getallCmd)
	rootCmd.AddCommand(dfCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("nfsget %s (commit: %s, built: %s)\n", Version, Commit, Date)
	},
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}
