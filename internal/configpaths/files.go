// Package configpaths locates hidc's optional configuration file, adapted
// from the teacher's internal/configpaths to hidc's single-binary shape:
// one "hidc.{json,yaml,toml}" file, not a per-subcommand family of them.
package configpaths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

// DefaultConfigDir returns the platform-specific configuration directory for hidc.
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("AppData"); appdata != "" {
			return filepath.Join(appdata, "hidc"), nil
		}
		return "", errors.New("AppData not set")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "hidc"), nil
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".config", "hidc"), nil
		}
		return "", errors.New("HOME not set")
	}
}

// CandidatePaths builds candidate config paths per format, in priority
// order: an explicit --config path first (routed to the loader matching its
// extension), then "hidc.*" in the working directory, then in the user
// config directory.
func CandidatePaths(userPath string) (jsonPaths, yamlPaths, tomlPaths []string) {
	add := func(slice *[]string, p string) { *slice = append(*slice, p) }

	if userPath != "" {
		switch filepath.Ext(userPath) {
		case ".yaml", ".yml":
			add(&yamlPaths, userPath)
		case ".toml":
			add(&tomlPaths, userPath)
		default:
			add(&jsonPaths, userPath)
		}
	}

	wd, _ := os.Getwd()
	add(&jsonPaths, filepath.Join(wd, "hidc.json"))
	add(&yamlPaths, filepath.Join(wd, "hidc.yaml"))
	add(&yamlPaths, filepath.Join(wd, "hidc.yml"))
	add(&tomlPaths, filepath.Join(wd, "hidc.toml"))

	if dir, err := DefaultConfigDir(); err == nil {
		add(&jsonPaths, filepath.Join(dir, "hidc.json"))
		add(&yamlPaths, filepath.Join(dir, "hidc.yaml"))
		add(&yamlPaths, filepath.Join(dir, "hidc.yml"))
		add(&tomlPaths, filepath.Join(dir, "hidc.toml"))
	}

	return
}
