package prefs

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable that overrides the file location.
const EnvPath = "FASTFIT_PREFS"

// Loader reads and writes preferences from ~/.fastfit/prefs.yaml
// (overridable via FASTFIT_PREFS). Files ending in .toml use TOML.
type Loader struct {
	overridePath string
}

// NewLoader builds a loader. An empty path uses the environment or the
// default location.
func NewLoader(path string) *Loader {
	return &Loader{overridePath: path}
}

// Path is the file the loader reads.
func (l *Loader) Path() string {
	if l.overridePath != "" {
		return expandPath(l.overridePath)
	}
	if custom := os.Getenv(EnvPath); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(userHomeDir(), ".fastfit", "prefs.yaml")
}

// Load reads the preferences. A missing file is created with defaults.
func (l *Loader) Load() (Preferences, error) {
	path := l.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			p := Default()
			if err := l.Save(p); err != nil {
				return Preferences{}, err
			}
			return p, nil
		}
		return Preferences{}, err
	}

	var p Preferences
	if isTOML(path) {
		_, err = toml.Decode(string(data), &p)
	} else {
		err = yaml.Unmarshal(data, &p)
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("prefs: parse %s: %w", path, err)
	}
	return p.Hydrate(), nil
}

// Save writes p, creating the directory if needed.
func (l *Loader) Save(p Preferences) error {
	path := l.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var raw []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(p); err != nil {
			return err
		}
		raw = buf.Bytes()
	} else {
		var err error
		if raw, err = yaml.Marshal(p); err != nil {
			return err
		}
	}
	return os.WriteFile(path, raw, 0o600)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func expandPath(path string) string {
	if path == "~" {
		return userHomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(userHomeDir(), path[2:])
	}
	return path
}

func userHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return home
}
