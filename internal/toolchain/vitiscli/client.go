// Package vitiscli implements toolchain.Client by generating short Python
// scripts for the vendor CLI and running them with `vitis -s`.
//
// Entity existence is answered from the workspace on disk, which is the
// toolchain's own source of truth and is cheaper than starting the CLI.
package vitiscli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/GNPower/Vitis/internal/config"
	"github.com/GNPower/Vitis/internal/ctxlog"
	"github.com/GNPower/Vitis/internal/layout"
	"github.com/GNPower/Vitis/internal/toolchain"
)

// Client drives the vendor CLI.
type Client struct {
	layout  layout.Layout
	command string
	runner  toolchain.Runner
	scripts string
}

var _ toolchain.Client = (*Client)(nil)

// New creates a Client that runs command (usually "vitis") through runner.
// Generated scripts are written under scriptDir.
func New(l layout.Layout, command string, runner toolchain.Runner, scriptDir string) *Client {
	if command == "" {
		command = "vitis"
	}
	if runner == nil {
		runner = toolchain.ExecRunner{}
	}
	return &Client{layout: l, command: command, runner: runner, scripts: scriptDir}
}

// persisted lists the categories the vendor configuration call is trusted
// to persist. Compiler flags, OS bindings and library parameters are not.
var persisted = map[toolchain.Category]bool{
	toolchain.CategoryLibraries: true,
	toolchain.CategoryDrivers:   true,
}

func (c *Client) run(ctx context.Context, op, entity, tmpl string, data any) error {
	logger := ctxlog.FromContext(ctx)

	var buf bytes.Buffer
	if err := scripts.ExecuteTemplate(&buf, tmpl, data); err != nil {
		return fmt.Errorf("failed to render %s script: %w", op, err)
	}

	if err := os.MkdirAll(c.scripts, 0755); err != nil {
		return fmt.Errorf("failed to create script directory: %w", err)
	}
	path := filepath.Join(c.scripts, fmt.Sprintf("%s_%s.py", op, entity))
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s script: %w", op, err)
	}

	logger.Debug("Running toolchain script.", "op", op, "entity", entity, "script", path)
	out, err := c.runner.Run(ctx, c.layout.WorkspaceDir, c.command, "-s", path)
	if err != nil {
		logger.Error("Toolchain script failed.", "op", op, "entity", entity, "output", string(out))
		return &toolchain.Error{Op: op, Entity: entity, Output: string(out), Err: err}
	}
	return nil
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (c *Client) SetWorkspace(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &toolchain.Error{Op: "workspace", Entity: dir, Err: err}
	}
	return nil
}

func (c *Client) PlatformExists(ctx context.Context, p *config.Platform) (bool, error) {
	return exists(c.layout.PlatformDir(p.ComponentName()))
}

func (c *Client) CreatePlatform(ctx context.Context, p *config.Platform) error {
	if p.Source != config.SourceXSA {
		return &toolchain.Error{
			Op:     "create_platform",
			Entity: p.ComponentName(),
			Err:    fmt.Errorf("hardware source %q is not supported by the vendor CLI adapter", p.Source),
		}
	}
	first := p.Domains[0]
	return c.run(ctx, "create_platform", p.ComponentName(), "create_platform", map[string]any{
		"Workspace": c.layout.WorkspaceDir,
		"Name":      p.ComponentName(),
		"XSA":       p.HardwareDesignPath,
		"OS":        first.OS,
		"CPU":       first.Processor,
		"Domain":    first.Name,
		"NoBootBSP": !p.BootComponents,
	})
}

func (c *Client) BuildPlatform(ctx context.Context, p *config.Platform) error {
	return c.run(ctx, "build_platform", p.ComponentName(), "build_component", map[string]any{
		"Workspace": c.layout.WorkspaceDir,
		"Name":      p.ComponentName(),
	})
}

func (c *Client) DomainExists(ctx context.Context, p *config.Platform, d *config.Domain) (bool, error) {
	return exists(c.layout.DomainDir(p.ComponentName(), d.Processor, d.Name))
}

func (c *Client) CreateDomain(ctx context.Context, p *config.Platform, d *config.Domain) error {
	return c.run(ctx, "create_domain", d.Name, "create_domain", map[string]any{
		"Workspace":   c.layout.WorkspaceDir,
		"Platform":    p.ComponentName(),
		"Name":        d.Name,
		"DisplayName": d.DisplayName,
		"CPU":         d.Processor,
		"OS":          d.OS,
	})
}

func (c *Client) ConfigureDomain(ctx context.Context, p *config.Platform, d *config.Domain) (toolchain.ApplyResult, error) {
	res := toolchain.ApplyResult{Persisted: map[toolchain.Category]bool{}}

	var libs, drivers []*config.Package
	for _, l := range d.Libraries {
		if l.Path != "" || !l.Enabled {
			libs = append(libs, l)
		}
	}
	for _, drv := range d.Drivers {
		if drv.Path != "" {
			drivers = append(drivers, drv)
		}
	}
	if len(libs) > 0 || len(drivers) > 0 {
		err := c.run(ctx, "configure_domain", d.Name, "configure_domain", map[string]any{
			"Workspace": c.layout.WorkspaceDir,
			"Platform":  p.ComponentName(),
			"Domain":    d.Name,
			"Libraries": libs,
			"Drivers":   drivers,
		})
		if err != nil {
			return res, err
		}
	}

	for cat, ok := range persisted {
		res.Persisted[cat] = ok
	}
	return res, nil
}

func (c *Client) RegenerateDomain(ctx context.Context, p *config.Platform, d *config.Domain) error {
	return c.run(ctx, "regenerate_domain", d.Name, "regenerate_domain", map[string]any{
		"Workspace": c.layout.WorkspaceDir,
		"Platform":  p.ComponentName(),
		"Domain":    d.Name,
	})
}

func (c *Client) ApplicationExists(ctx context.Context, app *config.Application) (bool, error) {
	return exists(c.layout.AppDir(app.Name))
}

func (c *Client) CreateApplication(ctx context.Context, p *config.Platform, app *config.Application) error {
	return c.run(ctx, "create_application", app.Name, "create_application", map[string]any{
		"Workspace": c.layout.WorkspaceDir,
		"Name":      app.Name,
		"Platform":  filepath.ToSlash(c.layout.XPFM(p.ComponentName())),
		"Domain":    app.Domain,
		"Template":  app.Template,
	})
}

func (c *Client) BuildApplication(ctx context.Context, app *config.Application) error {
	return c.run(ctx, "build_application", app.Name, "build_component", map[string]any{
		"Workspace": c.layout.WorkspaceDir,
		"Name":      app.Name,
	})
}
