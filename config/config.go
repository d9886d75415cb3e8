package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"

	"devicectrl/inputbridge/platform"
	"devicectrl/inputbridge/triggers"
)

// EnvConfigPath names the environment variable holding the config file location
const EnvConfigPath = "CONFIG_PATH"

type Config struct {
	ServerConnection ServerConnectionConfig `json:"server_connection" toml:"server_connection"`
	Actions          []triggers.Entry       `json:"actions" toml:"actions"`
	QueueSize        int                    `json:"queue_size" toml:"queue_size"`
	DeviceDir        string                 `json:"device_dir" toml:"device_dir"`
}

type ServerConnectionConfig struct {
	ServerAddr     string   `json:"server_addr" toml:"server_addr"`
	ServerDomain   string   `json:"server_domain" toml:"server_domain"`
	ServerCAPath   string   `json:"server_ca_path" toml:"server_ca_path"`
	CertPath       string   `json:"cert_path" toml:"cert_path"`
	KeyPath        string   `json:"key_path" toml:"key_path"`
	ReconnectDelay Duration `json:"reconnect_delay" toml:"reconnect_delay"`
	Keepalive      Duration `json:"keepalive" toml:"keepalive"`

	// PEM material read from the paths above
	ServerCA []byte `json:"-" toml:"-"`
	Cert     []byte `json:"-" toml:"-"`
	Key      []byte `json:"-" toml:"-"`
}

// Duration is a time.Duration written as a string like "5s"
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("negative duration %s", text)
	}
	*d = Duration(v)
	return nil
}

// Default configuration
func defaultConfig() *Config {
	return &Config{
		ServerConnection: ServerConnectionConfig{
			ReconnectDelay: Duration(5 * time.Second),
			Keepalive:      Duration(5 * time.Second),
		},
		QueueSize: 64,
		DeviceDir: platform.DefaultDeviceDir,
	}
}

// ConfigPath returns the configuration file location from the environment
func ConfigPath() (string, error) {
	path := strings.TrimSpace(os.Getenv(EnvConfigPath))
	if path == "" {
		return "", fmt.Errorf("%s env var missing", EnvConfigPath)
	}
	return path, nil
}

// Load reads the configuration file at path. Files ending in .toml are
// decoded as TOML, anything else as JSON with comments allowed. The TLS
// material referenced by the document is read as part of loading.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := defaultConfig()
	if err := decode(path, data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.ServerConnection.loadMaterial(filepath.Dir(path)); err != nil {
		return nil, err
	}

	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	default:
		return json.Unmarshal(jsonc.ToJSON(data), cfg)
	}
}

// Validate checks the fields the agent cannot run without
func (c *Config) Validate() error {
	var errs []error
	sc := c.ServerConnection
	if strings.TrimSpace(sc.ServerAddr) == "" {
		errs = append(errs, errors.New("server_connection.server_addr is required"))
	}
	if strings.TrimSpace(sc.ServerDomain) == "" {
		errs = append(errs, errors.New("server_connection.server_domain is required"))
	}
	for name, p := range map[string]string{
		"server_ca_path": sc.ServerCAPath,
		"cert_path":      sc.CertPath,
		"key_path":       sc.KeyPath,
	} {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Errorf("server_connection.%s is required", name))
		}
	}
	if sc.ReconnectDelay <= 0 {
		errs = append(errs, errors.New("server_connection.reconnect_delay must be positive"))
	}
	if sc.Keepalive <= 0 {
		errs = append(errs, errors.New("server_connection.keepalive must be positive"))
	}
	if len(c.Actions) == 0 {
		errs = append(errs, errors.New("actions must contain at least one entry"))
	}
	if c.QueueSize <= 0 {
		errs = append(errs, fmt.Errorf("queue_size must be positive, got %d", c.QueueSize))
	}
	if c.DeviceDir == "" {
		errs = append(errs, errors.New("device_dir must not be empty"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// TriggerTable builds the read-only trigger table from the configured actions
func (c *Config) TriggerTable() *triggers.Table {
	return triggers.NewTable(c.Actions)
}

// loadMaterial reads the CA, certificate and key files. Relative paths are
// resolved against base.
func (sc *ServerConnectionConfig) loadMaterial(base string) error {
	var err error
	if sc.ServerCA, err = readFile(base, sc.ServerCAPath); err != nil {
		return err
	}
	if sc.Cert, err = readFile(base, sc.CertPath); err != nil {
		return err
	}
	if sc.Key, err = readFile(base, sc.KeyPath); err != nil {
		return err
	}
	return nil
}

func readFile(base, path string) ([]byte, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
