package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"

	"github.com/soumendus/godust/pkg/dust"
)

// ConfigFileName is the default config file name, looked up in the working
// directory.
const ConfigFileName = ".godust.json"

// BadBlockConfig is one preloaded bad-block entry.
type BadBlockConfig struct {
	Mode           string `json:"mode"`
	Block          uint64 `json:"block"`
	WriteFailCount uint8  `json:"write_fail_count,omitempty"`
}

// Config holds the attach parameters. The file format is HuJSON (JSON with
// comments and trailing commas), so configs can be annotated.
type Config struct {
	// Name identifies the device in status output. Defaults to "dust".
	Name string `json:"name,omitempty"`

	// Device is the backing file or block device path. The attach command's
	// positional argument overrides it.
	Device string `json:"device,omitempty"`

	// BlockSize is the bad-block granularity in bytes.
	BlockSize uint32 `json:"block_size,omitempty"`

	// Start is the sector offset of the data area within the backing device.
	Start uint64 `json:"start,omitempty"`

	// Quiet suppresses diagnostic narration.
	Quiet bool `json:"quiet,omitempty"`

	// BadBlocks are inserted into the lists right after attach, before the
	// console starts.
	BadBlocks []BadBlockConfig `json:"bad_blocks,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Name:      "dust",
		BlockSize: 512,
	}
}

// LoadConfig reads and validates a config file. When path is empty, the
// default location is tried and a missing file silently yields defaults; an
// explicit path must exist.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = ConfigFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}

		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	std, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg := DefaultConfig()

	dec := json.NewDecoder(bytes.NewReader(std))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// WriteDefaultConfig writes a starter config to path. The write is atomic so
// an interrupted init never leaves a half-written file behind.
func WriteDefaultConfig(path string) error {
	if path == "" {
		path = ConfigFileName
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config %s already exists", path)
	}

	data, err := json.MarshalIndent(DefaultConfig(), "", "  ")
	if err != nil {
		return err
	}

	data = append(data, '\n')

	return atomic.WriteFile(path, bytes.NewReader(data))
}

func validateConfig(cfg Config) error {
	// Geometry is fully validated by dust.New; only config-specific fields
	// are checked here.
	for _, bb := range cfg.BadBlocks {
		if _, err := dust.ParseMode(bb.Mode); err != nil {
			return fmt.Errorf("bad_blocks entry for block %d: %w", bb.Block, err)
		}
	}

	return nil
}
