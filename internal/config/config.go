package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "arbor.yaml"

// EnvEncryptionKey overrides encryption_key so keys stay out of config files.
const EnvEncryptionKey = "ARBOR_ENCRYPTION_KEY"

// Backend names a snapshot store.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendFile   Backend = "file"
	BackendRedis  Backend = "redis"
	BackendBolt   Backend = "bolt"
)

// Config holds the application configuration
type Config struct {
	// Views is the directory holding view documents.
	Views    string `yaml:"views"`
	LogLevel string `yaml:"log_level"`

	SliceBudget   time.Duration `yaml:"slice_budget"`
	FrameInterval time.Duration `yaml:"frame_interval"`

	Snapshot SnapshotConfig `yaml:"snapshot"`
	Redis    RedisConfig    `yaml:"redis"`

	// EncryptionKey is 64 hex characters (32 bytes). Empty disables encryption.
	EncryptionKey string `yaml:"encryption_key"`
	// Redact lists regular expressions matched against attribute names.
	Redact []string `yaml:"redact"`

	HTTP HTTPConfig `yaml:"http"`
	MCP  MCPConfig  `yaml:"mcp"`
}

type SnapshotConfig struct {
	Backend Backend `yaml:"backend"`
	// Path is the directory (file) or database file (bolt).
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
	// Lock enables the distributed container lock.
	Lock bool `yaml:"lock"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type MCPConfig struct {
	Transport string `yaml:"transport"`
	Port      int    `yaml:"port"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Views:         ".",
		LogLevel:      "info",
		SliceBudget:   5 * time.Millisecond,
		FrameInterval: 16 * time.Millisecond,
		Snapshot: SnapshotConfig{
			Backend: BackendMemory,
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "arbor:snapshot:",
		},
		HTTP: HTTPConfig{Port: 8080},
		MCP:  MCPConfig{Transport: "stdio", Port: 8081},
	}
}

// Load reads the configuration from path, or from DefaultFile when path is
// empty. A missing default file yields the defaults; a missing explicit
// file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, cfg.applyEnv()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	// Relative paths are relative to the config file.
	base := filepath.Dir(path)
	cfg.Views = resolve(base, cfg.Views)
	cfg.Snapshot.Path = resolve(base, cfg.Snapshot.Path)

	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if key := os.Getenv(EnvEncryptionKey); key != "" {
		c.EncryptionKey = key
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Snapshot.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendBolt:
	default:
		return fmt.Errorf("unknown snapshot backend %q", c.Snapshot.Backend)
	}
	if c.Snapshot.Backend == BackendBolt && c.Snapshot.Path == "" {
		return fmt.Errorf("snapshot.path is required for the bolt backend")
	}
	if c.SliceBudget <= 0 {
		return fmt.Errorf("slice_budget must be positive")
	}
	if c.FrameInterval <= 0 {
		return fmt.Errorf("frame_interval must be positive")
	}
	if c.EncryptionKey != "" {
		if _, err := c.Key(); err != nil {
			return err
		}
	}
	switch c.MCP.Transport {
	case "stdio", "sse":
	default:
		return fmt.Errorf("unknown mcp transport %q", c.MCP.Transport)
	}
	return nil
}

// Key decodes EncryptionKey. It returns nil when encryption is disabled.
func (c *Config) Key() ([]byte, error) {
	if c.EncryptionKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption_key must be hex encoded: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption_key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
