package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/GNPower/Vitis/internal/config"
	"github.com/GNPower/Vitis/internal/ctxlog"
	"github.com/GNPower/Vitis/internal/layout"
	"github.com/GNPower/Vitis/internal/toolchain"
	"golang.org/x/mod/semver"
)

// MinNinjaVersion is the oldest ninja able to read the generated build files.
const MinNinjaVersion = "1.5"

// BuildFile is the build description each build directory must contain.
const BuildFile = "build.ninja"

// ErrNoBuildFile is returned for a build directory without a build.ninja.
var ErrNoBuildFile = errors.New("no " + BuildFile + " found; create the project first")

// Ninja runs ninja in each generated build directory.
type Ninja struct {
	Layout layout.Layout
	// Path is the ninja executable.
	Path   string
	Runner toolchain.Runner
	// Clean runs `ninja clean` before each build. A failing clean is logged
	// and the build continues.
	Clean bool
}

// PlatformDirs returns the build directories of p in build order: each
// domain's board support package, then the first stage boot loader when
// boot components are enabled.
func PlatformDirs(lay layout.Layout, p *config.Platform) []string {
	component := p.ComponentName()
	var dirs []string
	for _, d := range p.Domains {
		dirs = append(dirs, lay.BSPBuildDir(component, d.Processor, d.Name))
	}
	if p.BootComponents {
		dirs = append(dirs, lay.FSBLBuildDir(component))
	}
	return dirs
}

func (n *Ninja) BuildPlatform(ctx context.Context, p *config.Platform) error {
	for _, dir := range PlatformDirs(n.Layout, p) {
		if err := n.run(ctx, p.ComponentName(), dir); err != nil {
			return err
		}
	}
	return nil
}

func (n *Ninja) BuildApplication(ctx context.Context, _ *config.Platform, app *config.Application) error {
	return n.run(ctx, app.Name, n.Layout.AppBuildDir(app.Name))
}

func (n *Ninja) run(ctx context.Context, entity, dir string) error {
	logger := ctxlog.FromContext(ctx).With("path", dir)

	if _, err := os.Stat(filepath.Join(dir, BuildFile)); err != nil {
		return &toolchain.Error{Op: "build", Entity: entity, Err: fmt.Errorf("%s: %w", dir, ErrNoBuildFile)}
	}

	if n.Clean {
		logger.Debug("Cleaning build artifacts.")
		if out, err := n.Runner.Run(ctx, dir, n.Path, "clean"); err != nil {
			logger.Warn("Clean failed, continuing with build.", "error", err, "output", tail(out))
		}
	}

	logger.Info("Running ninja.", "entity", entity)
	out, err := n.Runner.Run(ctx, dir, n.Path)
	if err != nil {
		return &toolchain.Error{Op: "build", Entity: entity, Output: string(out), Err: err}
	}
	logger.Debug("Ninja finished.", "entity", entity, "output", tail(out))
	return nil
}

func tail(out []byte) string {
	const max = 2048
	s := strings.TrimSpace(string(out))
	if len(s) > max {
		return "..." + s[len(s)-max:]
	}
	return s
}

// FindNinja returns the ninja executable to use. With system set it is
// looked up on PATH and must report at least MinNinjaVersion; otherwise the
// installation's bundled copy is used.
func FindNinja(ctx context.Context, runner toolchain.Runner, lookPath toolchain.LookPathFunc, inst *toolchain.Installation, system bool) (string, error) {
	logger := ctxlog.FromContext(ctx)

	if !system {
		if inst == nil {
			return "", fmt.Errorf("bundled ninja requires a toolchain installation: %w", toolchain.ErrNotFound)
		}
		path := inst.BundledNinja()
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("bundled ninja %w at %s", toolchain.ErrNotFound, path)
		}
		logger.Debug("Using bundled ninja.", "path", path)
		return path, nil
	}

	path, err := lookPath("ninja")
	if err != nil {
		return "", fmt.Errorf("system ninja %w on PATH: %w", toolchain.ErrNotFound, err)
	}
	out, err := runner.Run(ctx, "", path, "--version")
	if err != nil {
		logger.Warn("Could not verify ninja version, proceeding anyway.", "path", path, "error", err)
		return path, nil
	}
	version := ParseNinjaVersion(string(out))
	if version == "" {
		logger.Warn("Could not parse ninja version, proceeding anyway.", "path", path, "output", tail(out))
		return path, nil
	}
	if semver.Compare("v"+version, "v"+MinNinjaVersion) < 0 {
		return "", fmt.Errorf("system ninja %s at %s is too old; %s or newer is required", version, path, MinNinjaVersion)
	}
	logger.Debug("Using system ninja.", "path", path, "version", version)
	return path, nil
}

// ParseNinjaVersion extracts the numeric release from `ninja --version`
// output, dropping suffixes such as ".git.kitware". It returns "" when none
// is found.
func ParseNinjaVersion(out string) string {
	out = strings.TrimSpace(out)
	var parts []string
	for _, p := range strings.SplitN(out, ".", 4) {
		end := 0
		for end < len(p) && p[end] >= '0' && p[end] <= '9' {
			end++
		}
		if end == 0 {
			break
		}
		parts = append(parts, p[:end])
		if end < len(p) || len(parts) == 3 {
			break
		}
	}
	if len(parts) == 0 {
		return ""
	}
	v := strings.Join(parts, ".")
	if !semver.IsValid("v" + v) {
		return ""
	}
	return v
}
