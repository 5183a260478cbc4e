// Package settings loads the tool's own configuration from an optional HCL
// file. Every value has a default, so a missing file is not an error.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/GNPower/Vitis/internal/filelock"
	"github.com/GNPower/Vitis/internal/fsutil"
	"github.com/GNPower/Vitis/internal/layout"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// FileName is the settings file looked up in the source root.
const FileName = "vitisgen.hcl"

// Build backends.
const (
	BackendVitis = "vitis"
	BackendNinja = "ninja"
)

// LogFileName is the default log file name inside the log directory.
const LogFileName = "workspace_builder.log"

// Settings is the decoded configuration with defaults applied and every
// path made absolute.
type Settings struct {
	// Path is the file the settings were read from, or "" for defaults.
	Path string

	Layout    Layout
	Toolchain Toolchain
	Build     Build
	Logging   Logging
	Tooling   Tooling
}

type Layout struct {
	SourceRoot  string
	TopDir      string
	ProjectsDir string
	HDLDataDir  string
	LogDir      string
}

type Toolchain struct {
	// VitisRoot skips installation detection when set.
	VitisRoot string
	// Command is the vendor CLI executable.
	Command string
}

type Build struct {
	Backend     string
	SystemNinja bool
	Clean       bool
}

type Logging struct {
	Level  string
	Format string
	// File receives a copy of every record. Empty disables it.
	File string
}

// Tooling tunes source discovery and activation. Nil lists keep the
// built-in defaults of the consuming package.
type Tooling struct {
	LockRetries    uint64
	LockInterval   time.Duration
	SourcePatterns []string
	ClangdAdd      []string
	ClangdRemove   []string
}

// Defaults returns the settings used when no file is present.
func Defaults(sourceRoot string) *Settings {
	l := layout.New(sourceRoot)
	logDir := filepath.Join(sourceRoot, "logs")
	return &Settings{
		Layout: Layout{
			SourceRoot:  l.SourceRoot,
			TopDir:      l.TopDir,
			ProjectsDir: l.WorkspaceDir,
			HDLDataDir:  l.HDLDataDir,
			LogDir:      logDir,
		},
		Toolchain: Toolchain{Command: "vitis"},
		Build:     Build{Backend: BackendVitis},
		Logging: Logging{
			Level:  "info",
			Format: "text",
			File:   filepath.Join(logDir, LogFileName),
		},
		Tooling: Tooling{
			LockRetries:    filelock.DefaultOptions.Retries,
			LockInterval:   filelock.DefaultOptions.Interval,
			SourcePatterns: fsutil.DefaultSourcePatterns,
		},
	}
}

// ProjectLayout returns the path convention derived from the settings.
func (s *Settings) ProjectLayout() layout.Layout {
	return layout.Layout{
		SourceRoot:   s.Layout.SourceRoot,
		TopDir:       s.Layout.TopDir,
		WorkspaceDir: s.Layout.ProjectsDir,
		HDLDataDir:   s.Layout.HDLDataDir,
	}
}

// LockOptions returns the retry bounds for the shared tooling lock.
func (s *Settings) LockOptions() filelock.Options {
	return filelock.Options{Retries: s.Tooling.LockRetries, Interval: s.Tooling.LockInterval}
}

type hclFile struct {
	Layout    *hclLayout    `hcl:"layout,block"`
	Toolchain *hclToolchain `hcl:"toolchain,block"`
	Build     *hclBuild     `hcl:"build,block"`
	Logging   *hclLogging   `hcl:"logging,block"`
	Tooling   *hclTooling   `hcl:"tooling,block"`
}

type hclLayout struct {
	SourceRoot  *string `hcl:"source_root,optional"`
	TopDir      *string `hcl:"top_dir,optional"`
	ProjectsDir *string `hcl:"projects_dir,optional"`
	HDLDataDir  *string `hcl:"hdl_data_dir,optional"`
	LogDir      *string `hcl:"log_dir,optional"`
}

type hclToolchain struct {
	VitisRoot *string `hcl:"vitis_root,optional"`
	Command   *string `hcl:"command,optional"`
}

type hclBuild struct {
	Backend     *string `hcl:"backend,optional"`
	SystemNinja *bool   `hcl:"system_ninja,optional"`
	Clean       *bool   `hcl:"clean,optional"`
}

type hclLogging struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
	File   *string `hcl:"file,optional"`
}

type hclTooling struct {
	LockRetries    *int      `hcl:"lock_retries,optional"`
	LockInterval   *string   `hcl:"lock_interval,optional"`
	SourcePatterns *[]string `hcl:"source_patterns,optional"`
	ClangdAdd      *[]string `hcl:"clangd_add,optional"`
	ClangdRemove   *[]string `hcl:"clangd_remove,optional"`
}

// Load reads the settings file at path. When path is empty the file is
// looked up in sourceRoot, and a missing file yields Defaults(sourceRoot).
// An explicitly named file must exist. Relative paths in the file resolve
// against the file's directory.
func Load(path, sourceRoot string) (*Settings, error) {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(sourceRoot, FileName)
	}
	s := Defaults(sourceRoot)

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, diags)
	}
	var root hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode settings file %s: %w", path, diags)
	}

	s.Path = path
	if err := s.apply(&root, filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("invalid settings file %s: %w", path, err)
	}
	return s, nil
}

func (s *Settings) apply(f *hclFile, base string) error {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	if l := f.Layout; l != nil {
		// A new source root moves every directory not set explicitly.
		if l.SourceRoot != nil {
			def := Defaults(abs(*l.SourceRoot))
			s.Layout = def.Layout
			s.Logging.File = def.Logging.File
		}
		if l.TopDir != nil {
			s.Layout.TopDir = abs(*l.TopDir)
		}
		if l.ProjectsDir != nil {
			s.Layout.ProjectsDir = abs(*l.ProjectsDir)
		}
		if l.HDLDataDir != nil {
			s.Layout.HDLDataDir = abs(*l.HDLDataDir)
		}
		if l.LogDir != nil {
			s.Layout.LogDir = abs(*l.LogDir)
			s.Logging.File = filepath.Join(s.Layout.LogDir, LogFileName)
		}
	}

	if t := f.Toolchain; t != nil {
		if t.VitisRoot != nil {
			s.Toolchain.VitisRoot = abs(*t.VitisRoot)
		}
		if t.Command != nil && *t.Command != "" {
			s.Toolchain.Command = *t.Command
		}
	}

	if b := f.Build; b != nil {
		if b.Backend != nil {
			switch *b.Backend {
			case BackendVitis, BackendNinja:
				s.Build.Backend = *b.Backend
			default:
				return fmt.Errorf("build.backend must be %q or %q, got %q", BackendVitis, BackendNinja, *b.Backend)
			}
		}
		if b.SystemNinja != nil {
			s.Build.SystemNinja = *b.SystemNinja
		}
		if b.Clean != nil {
			s.Build.Clean = *b.Clean
		}
	}

	if l := f.Logging; l != nil {
		if l.Level != nil {
			s.Logging.Level = *l.Level
		}
		if l.Format != nil {
			s.Logging.Format = *l.Format
		}
		if l.File != nil {
			s.Logging.File = abs(*l.File)
		}
	}

	if t := f.Tooling; t != nil {
		if t.LockRetries != nil {
			if *t.LockRetries < 0 {
				return fmt.Errorf("tooling.lock_retries must not be negative")
			}
			s.Tooling.LockRetries = uint64(*t.LockRetries)
		}
		if t.LockInterval != nil {
			d, err := time.ParseDuration(*t.LockInterval)
			if err != nil {
				return fmt.Errorf("tooling.lock_interval: %w", err)
			}
			s.Tooling.LockInterval = d
		}
		if t.SourcePatterns != nil {
			if len(*t.SourcePatterns) == 0 {
				return fmt.Errorf("tooling.source_patterns must not be empty")
			}
			for _, p := range *t.SourcePatterns {
				if !doublestar.ValidatePattern(p) {
					return fmt.Errorf("tooling.source_patterns: invalid pattern %q", p)
				}
			}
			s.Tooling.SourcePatterns = *t.SourcePatterns
		}
		if t.ClangdAdd != nil {
			s.Tooling.ClangdAdd = *t.ClangdAdd
		}
		if t.ClangdRemove != nil {
			s.Tooling.ClangdRemove = *t.ClangdRemove
		}
	}
	return nil
}
