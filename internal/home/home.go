package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the postgen home directory.
	DefaultDirName = ".postgen"

	// DataDirName is the subdirectory holding datasets and their sidecars.
	DataDirName = "data"

	// BackupsDirName is the subdirectory of the data directory for dataset backups.
	BackupsDirName = "backups"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the postgen home directory structure.
type Dir struct {
	path     string
	dataPath string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.postgen).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path, dataPath: filepath.Join(path, DataDirName)}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// DataPath returns the path to the data directory.
func (d *Dir) DataPath() string {
	return d.dataPath
}

// SetDataPath points the data directory somewhere other than <home>/data.
// An empty path keeps the current one.
func (d *Dir) SetDataPath(path string) {
	if path != "" {
		d.dataPath = path
	}
}

// DataFile returns the path of a file inside the data directory.
func (d *Dir) DataFile(name string) string {
	return filepath.Join(d.dataPath, name)
}

// BackupsPath returns the directory dataset backups are written to.
func (d *Dir) BackupsPath() string {
	return filepath.Join(d.dataPath, BackupsDirName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return fmt.Errorf("failed to create home directory: %w", err)
	}
	if err := os.MkdirAll(d.dataPath, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// EnsureBackupsDir creates the backups directory.
func (d *Dir) EnsureBackupsDir() error {
	return os.MkdirAll(d.BackupsPath(), 0o755)
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}
