package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the project file looked up by the CLI.
const ManifestName = "vsharp.toml"

// ErrPackageSectionMissing indicates that [package] is absent.
var ErrPackageSectionMissing = errors.New("missing [package]")

// Manifest is a loaded vsharp.toml.
type Manifest struct {
	Path   string // absolute path of the file
	Dir    string // directory containing it
	Config Config
}

type Config struct {
	Package PackageConfig `toml:"package"`
	Build   BuildConfig   `toml:"build"`
	Run     RunConfig     `toml:"run"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

type BuildConfig struct {
	Root   string `toml:"root"`
	Entry  string `toml:"entry"`
	Output string `toml:"output"`
	Jobs   int    `toml:"jobs"`
}

type RunConfig struct {
	Main string `toml:"main"`
}

// FindManifest walks up from startDir looking for vsharp.toml.
func FindManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// LoadManifest parses path and fills defaults for keys that are not defined.
func LoadManifest(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(abs)
	name := strings.TrimSpace(cfg.Package.Name)
	if name == "" {
		name = filepath.Base(dir)
	}
	cfg.Package.Name = name
	if !meta.IsDefined("build", "root") || strings.TrimSpace(cfg.Build.Root) == "" {
		cfg.Build.Root = "."
	}
	if !meta.IsDefined("build", "entry") || strings.TrimSpace(cfg.Build.Entry) == "" {
		cfg.Build.Entry = "main"
	}
	if !meta.IsDefined("build", "output") || strings.TrimSpace(cfg.Build.Output) == "" {
		cfg.Build.Output = filepath.Join("build", name+ArtifactExt)
	}
	if cfg.Build.Jobs < 0 {
		cfg.Build.Jobs = 0
	}
	return &Manifest{Path: abs, Dir: dir, Config: cfg}, nil
}

// RootDir is the absolute module root.
func (m *Manifest) RootDir() string {
	if filepath.IsAbs(m.Config.Build.Root) {
		return m.Config.Build.Root
	}
	return filepath.Join(m.Dir, m.Config.Build.Root)
}

// OutputPath is the absolute artifact path.
func (m *Manifest) OutputPath() string {
	if filepath.IsAbs(m.Config.Build.Output) {
		return m.Config.Build.Output
	}
	return filepath.Join(m.Dir, m.Config.Build.Output)
}
