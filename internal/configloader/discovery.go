package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// appName names the system and user config directories.
const appName = "govlist"

// ConfigPaths holds the configuration files found for one run. Empty fields
// mean no file was found at that layer.
type ConfigPaths struct {
	// System is /etc/govlist/config.yaml, or %ProgramData%\govlist on Windows.
	System string

	// User is $XDG_CONFIG_HOME/govlist/config.yaml.
	User string

	// Project is the nearest .govlist.yml above the working directory.
	Project string

	// Explicit is the --config path.
	Explicit string
}

// Candidate names, most preferred first.
//
//nolint:gochecknoglobals // Read-only lookup tables.
var (
	layerConfigFiles   = []string{"config.yaml", "config.yml"}
	projectConfigFiles = []string{".govlist.yml", ".govlist.yaml", "govlist.yml", "govlist.yaml", ".govlist.json"}
	vcsRootMarkers     = []string{".git", ".hg", ".svn"}
)

// DiscoverPaths finds the system, user and project configuration files.
// The project search walks upward from workDir (see FindProjectConfig).
func DiscoverPaths(ctx context.Context, workDir string) (*ConfigPaths, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("discover config: %w", err)
	}

	project, err := FindProjectConfig(ctx, workDir)
	if err != nil {
		return nil, err
	}

	paths := &ConfigPaths{Project: project}
	if dir := systemConfigDir(); dir != "" {
		paths.System = firstFile(dir, layerConfigFiles)
	}
	if dir := userConfigDir(); dir != "" {
		paths.User = firstFile(dir, layerConfigFiles)
	}

	return paths, nil
}

func systemConfigDir() string {
	if runtime.GOOS != "windows" {
		return filepath.Join("/etc", appName)
	}
	programData := os.Getenv("ProgramData")
	if programData == "" {
		programData = `C:\ProgramData`
	}
	return filepath.Join(programData, appName)
}

func userConfigDir() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// FindProjectConfig returns the first project config file in startDir or one
// of its parents, or "" when there is none. The search includes, then stops
// at, a VCS root or the home directory. An empty startDir means the working
// directory.
func FindProjectConfig(ctx context.Context, startDir string) (string, error) {
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		startDir = wd
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	//nolint:errcheck // Without a home directory the search stops at VCS or filesystem roots.
	home, _ := os.UserHomeDir()

	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("find project config: %w", err)
		}

		if path := firstFile(dir, projectConfigFiles); path != "" {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir || dir == home || hasVCSMarker(dir) {
			return "", nil
		}
		dir = parent
	}
}

// firstFile returns the first of names that is a regular file in dir.
func firstFile(dir string, names []string) string {
	for _, name := range names {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

func hasVCSMarker(dir string) bool {
	for _, marker := range vcsRootMarkers {
		if info, err := os.Stat(filepath.Join(dir, marker)); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}
