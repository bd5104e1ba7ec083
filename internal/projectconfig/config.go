// Package projectconfig provides the ProjectConfig struct and loader for
// .simarchive.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/spboyer/simarchive/internal/archive"
	"github.com/spboyer/simarchive/internal/models"
)

// FileName is the name of the project configuration file.
const FileName = ".simarchive.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultWorkspaceDir = "."
	DefaultBuildsDir    = "builds"
	DefaultHistoryDir   = ".simarchive/history"

	DefaultOnCollision = string(archive.CollisionFail)

	DefaultServerPort = 3000

	// maxWalkUp bounds the parent directory search.
	maxWalkUp = 10
)

// PathsConfig holds the workspace, per-build archive and history locations.
type PathsConfig struct {
	Workspace string `yaml:"workspace,omitempty"`
	Builds    string `yaml:"builds,omitempty"`
	History   string `yaml:"history,omitempty"`
}

// ArchiveConfig controls archiving. Enabled is a tri-state: a missing value
// means tracking was never configured.
type ArchiveConfig struct {
	Enabled     *bool  `yaml:"enabled,omitempty"`
	OnCollision string `yaml:"on_collision,omitempty"`
}

// ServerConfig holds history API server settings.
type ServerConfig struct {
	Port int `yaml:"port,omitempty"`
}

// RemoteConfig points at the blob container bundles are uploaded to.
type RemoteConfig struct {
	ContainerURL string `yaml:"container_url,omitempty"`
	Prefix       string `yaml:"prefix,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .simarchive.yaml.
type ProjectConfig struct {
	Paths   PathsConfig   `yaml:"paths,omitempty"`
	Archive ArchiveConfig `yaml:"archive,omitempty"`
	Server  ServerConfig  `yaml:"server,omitempty"`
	Remote  RemoteConfig  `yaml:"remote,omitempty"`

	// dir is the directory the file was found in; relative paths resolve
	// against it. Empty when defaults are used.
	dir string
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Workspace: DefaultWorkspaceDir,
			Builds:    DefaultBuildsDir,
			History:   DefaultHistoryDir,
		},
		Archive: ArchiveConfig{
			OnCollision: DefaultOnCollision,
		},
		Server: ServerConfig{
			Port: DefaultServerPort,
		},
	}
}

// Load finds .simarchive.yaml by walking up from startDir, unmarshals it, and
// fills in missing fields with defaults. If no config file is found, returns
// defaults with a nil error. Real I/O errors are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	path, data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	mergeConfig(cfg, &fileCfg)
	cfg.dir = filepath.Dir(path)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that cannot be caught by YAML decoding.
func (c *ProjectConfig) Validate() error {
	if _, err := archive.ParseCollisionPolicy(c.Archive.OnCollision); err != nil {
		return fmt.Errorf("archive.on_collision: %w", err)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port: %d is out of range", c.Server.Port)
	}
	return nil
}

// Enablement returns the resolved simulation tracking switch.
func (c *ProjectConfig) Enablement() models.Enablement {
	return models.EnablementFromBool(c.Archive.Enabled)
}

// Dir returns the directory the configuration file was loaded from, or ""
// when only defaults are in effect.
func (c *ProjectConfig) Dir() string {
	return c.dir
}

// Resolve makes p absolute relative to the configuration file's directory.
// Absolute paths are returned unchanged.
func (c *ProjectConfig) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// BuildRoot returns the private storage directory for buildID.
func (c *ProjectConfig) BuildRoot(buildID string) string {
	return filepath.Join(c.Resolve(c.Paths.Builds), buildID)
}

// findConfigFile walks up from dir looking for .simarchive.yaml.
// Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) (string, []byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for range maxWalkUp {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return p, data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	if src.Paths.Workspace != "" {
		dst.Paths.Workspace = src.Paths.Workspace
	}
	if src.Paths.Builds != "" {
		dst.Paths.Builds = src.Paths.Builds
	}
	if src.Paths.History != "" {
		dst.Paths.History = src.Paths.History
	}

	if src.Archive.Enabled != nil {
		dst.Archive.Enabled = src.Archive.Enabled
	}
	if src.Archive.OnCollision != "" {
		dst.Archive.OnCollision = src.Archive.OnCollision
	}

	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}

	if src.Remote.ContainerURL != "" {
		dst.Remote.ContainerURL = src.Remote.ContainerURL
	}
	if src.Remote.Prefix != "" {
		dst.Remote.Prefix = src.Remote.Prefix
	}
}
