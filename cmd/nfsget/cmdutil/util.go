// Package cmdutil provides shared utilities for nfsget commands.
package cmdutil

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/marmos91/nfsclient/internal/bytesize"
	"github.com/marmos91/nfsclient/internal/cli/output"
	"github.com/marmos91/nfsclient/pkg/nfsclient"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values.
type GlobalFlags struct {
	ConfigFile  string
	Host        string
	Export      string
	Output      string
	NoColor     bool
	LogLevel    string
	UID         uint32
	GID         uint32
	MachineName string
	PortmapPort uint16
	MountPort   uint16
	NFSPort     uint16
	FragSize    string
	Timeout     time.Duration
}

// LoadConfig builds the effective nfsclient.Config: file and environment
// first, then any explicitly supplied flag on top.
func LoadConfig() (*nfsclient.Config, error) {
	cfg, err := nfsclient.LoadConfig(Flags.ConfigFile)
	if err != nil {
		return nil, err
	}

	if Flags.Host != "" {
		cfg.Host = Flags.Host
	}
	if Flags.Export != "" {
		cfg.Export = Flags.Export
	}
	if Flags.UID != 0 {
		cfg.Credential.UID = Flags.UID
	}
	if Flags.GID != 0 {
		cfg.Credential.GID = Flags.GID
	}
	if Flags.MachineName != "" {
		cfg.Credential.MachineName = Flags.MachineName
	}
	if Flags.PortmapPort != 0 {
		cfg.Ports.Portmap = Flags.PortmapPort
	}
	if Flags.MountPort != 0 {
		cfg.Ports.Mount = Flags.MountPort
	}
	if Flags.NFSPort != 0 {
		cfg.Ports.NFS = Flags.NFSPort
	}
	if Flags.FragSize != "" {
		size, err := bytesize.ParseByteSize(Flags.FragSize)
		if err != nil {
			return nil, fmt.Errorf("invalid --fragsize: %w", err)
		}
		cfg.FragmentSize = size
	}
	if Flags.Timeout != 0 {
		cfg.DialTimeout = Flags.Timeout
	}
	if Flags.LogLevel != "" {
		cfg.Logging.Level = Flags.LogLevel
	}

	if cfg.Host == "" {
		return nil, fmt.Errorf("no server host configured (use --host or NFSCLIENT_HOST)")
	}
	return cfg, nil
}

// GetOutputFormatParsed returns the parsed output format.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// IsColorDisabled returns whether color output is disabled.
func IsColorDisabled() bool {
	return Flags.NoColor
}

// PrintOutput prints data in the specified format (JSON, YAML, or table).
// For table format, it displays emptyMsg if data is empty, otherwise uses
// the tableRenderer.
func PrintOutput(w io.Writer, data any, isEmpty bool, emptyMsg string, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		if isEmpty {
			_, _ = fmt.Fprintln(w, emptyMsg)
			return nil
		}
		return output.PrintTable(w, tableRenderer)
	}
}

// PrintSuccess prints a success message if the output format is table.
func PrintSuccess(msg string) {
	format, err := GetOutputFormatParsed()
	if err != nil || format != output.FormatTable {
		return
	}
	printer := output.NewPrinter(os.Stdout, format, !IsColorDisabled())
	printer.Success(msg)
}
