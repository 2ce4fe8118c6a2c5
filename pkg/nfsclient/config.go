package nfsclient

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/marmos91/nfsclient/internal/bytesize"
)

// Config configures a Client's bootstrap against a single NFSv3 server: which
// host to resolve services on, optional fixed ports to skip the portmapper
// round trips, the export to mount, the credential to present, and the
// transport tuning knobs used once the mount is established.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (NFSCLIENT_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
type Config struct {
	// Host is the NFS server's hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Export is the server-side path to mount, e.g. "/export/data".
	Export string `mapstructure:"export" yaml:"export"`

	// Ports overrides the portmapper for one or more of the three
	// services. A zero value means "ask the portmapper".
	Ports PortConfig `mapstructure:"ports" yaml:"ports"`

	// DialTimeout bounds every TCP dial performed during bootstrap.
	// Default: 10s
	DialTimeout time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`

	// FragmentSize caps the size of a single RPC record-marking fragment
	// written to the wire. Supports human-readable sizes like "1MiB".
	// Default: 32KiB
	FragmentSize bytesize.ByteSize `mapstructure:"fragment_size" yaml:"fragment_size"`

	// Credential is the default AUTH_SYS identity presented on NFS3 calls
	// after the mount completes. MOUNT itself always uses this identity.
	Credential CredentialConfig `mapstructure:"credential" yaml:"credential"`

	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Metrics controls whether a Prometheus MetricsRecorder is attached
	// to the session.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// PortConfig holds fixed ports for the three RPC programs this client
// speaks. A zero field means "resolve via the portmapper on Host:111".
type PortConfig struct {
	Portmap uint16 `mapstructure:"portmap" yaml:"portmap"`
	Mount   uint16 `mapstructure:"mount" yaml:"mount"`
	NFS     uint16 `mapstructure:"nfs" yaml:"nfs"`
}

// CredentialConfig is the AUTH_SYS identity used for MOUNT and, by default,
// for NFS3 calls.
type CredentialConfig struct {
	// MachineName identifies the calling host in the AUTH_SYS credential.
	// Default: the local hostname.
	MachineName string `mapstructure:"machine_name" yaml:"machine_name"`

	// UID/GID are the effective identity. Default: 0/0 (root).
	UID uint32 `mapstructure:"uid" yaml:"uid"`
	GID uint32 `mapstructure:"gid" yaml:"gid"`

	// GIDs lists supplementary group IDs carried on every call.
	GIDs []uint32 `mapstructure:"gids" yaml:"gids,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string `mapstructure:"level" yaml:"level"`

	// Format specifies the log output format: text or json.
	Format string `mapstructure:"format" yaml:"format"`

	// Output specifies where logs are written: stdout, stderr, or a file path.
	Output string `mapstructure:"output" yaml:"output"`
}

// MetricsConfig controls whether the Client records Prometheus metrics.
type MetricsConfig struct {
	// Enabled controls whether a MetricsRecorder is constructed and
	// attached to every session the Client opens.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultConfig returns a Config with every field set to its documented
// default, suitable as a starting point before CLI flags or a config file
// are layered on top.
func DefaultConfig() *Config {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "nfsclient"
	}

	return &Config{
		DialTimeout:  10 * time.Second,
		FragmentSize: bytesize.ByteSize(32 * 1024),
		Credential: CredentialConfig{
			MachineName: hostname,
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
			Output: "stderr",
		},
	}
}

// LoadConfig loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (NFSCLIENT_*)
//  2. Configuration file
//  3. Default values
//
// configPath may be empty, in which case only the default location is
// consulted and a missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	_, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	// AutomaticEnv only reaches keys viper already knows, so bind every
	// key; NFSCLIENT_* variables then apply with or without a file.
	for _, key := range []string{"host", "export", "ports.portmap", "ports.mount", "ports.nfs",
		"dial_timeout", "fragment_size", "credential.machine_name", "credential.uid", "credential.gid",
		"logging.level", "logging.format", "logging.output", "metrics.enabled"} {
		_ = v.BindEnv(key)
	}

	if err := v.Unmarshal(cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("NFSCLIENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	v.AddConfigPath(getConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns $XDG_CONFIG_HOME/nfsclient, falling back to
// ~/.config/nfsclient, or "." if the home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "nfsclient")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "nfsclient")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}
