// Package config loads the pager's TOML configuration file (spec.md 6).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/streampager/streampager/internal/line"
	"github.com/streampager/streampager/internal/pagererr"
)

// InterfaceMode selects how the pager starts up relative to the
// terminal's alternate screen.
type InterfaceMode string

const (
	Fullscreen InterfaceMode = "fullscreen"
	Delayed    InterfaceMode = "delayed"
	Hybrid     InterfaceMode = "hybrid"
	Direct     InterfaceMode = "direct"
)

// Config is the resolved set of recognized TOML keys.
type Config struct {
	InterfaceMode    InterfaceMode `toml:"interface_mode"`
	ScrollPastEOF    bool          `toml:"scroll_past_eof"`
	ReadAheadLines   uint          `toml:"read_ahead_lines"`
	StartupPollInput bool          `toml:"startup_poll_input"`
	WrappingMode     string        `toml:"wrapping_mode"`
	Keymap           string        `toml:"keymap"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		InterfaceMode:  Hybrid,
		ReadAheadLines: 1000,
		WrappingMode:   "none",
	}
}

// Wrap resolves WrappingMode to a line.WrapMode, defaulting to WrapNone
// for an unrecognized or empty value.
func (c Config) Wrap() line.WrapMode {
	switch c.WrappingMode {
	case "character":
		return line.WrapChar
	case "word":
		return line.WrapWord
	default:
		return line.WrapNone
	}
}

// DefaultPath returns the standard config-dir path for the pager's
// config file (spec.md 6: "<config>/streampager/streampager.toml").
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", pagererr.New(pagererr.KindConfig, "locate config dir", err)
	}
	return filepath.Join(dir, "streampager", "streampager.toml"), nil
}

// Load reads and parses path, starting from Default() for any key the
// file doesn't set. A missing file is not an error: Default() is
// returned unchanged. Unknown keys are ignored with a warning written to
// warn (spec.md 6: "Unknown keys are ignored with a warning"); pass nil
// to discard warnings.
func Load(path string, warn func(string)) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, pagererr.New(pagererr.KindConfig, "read config", err)
	}

	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, pagererr.New(pagererr.KindConfig, "parse config", err)
	}
	if warn != nil {
		for _, key := range meta.Undecoded() {
			warn(fmt.Sprintf("streampager: unrecognized config key %q", key.String()))
		}
	}
	return cfg, nil
}
