package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/GNPower/Vitis/internal/config"
	"github.com/GNPower/Vitis/internal/layout"
	"github.com/GNPower/Vitis/internal/toolchain"
)

// FakeToolchain is an in-process toolchain.Client. It records every call and
// simulates the files a real toolchain leaves in the workspace, so existence
// checks and file patching behave as they would against a real workspace.
type FakeToolchain struct {
	Layout layout.Layout

	// Persist lists the categories ConfigureDomain reports as persisted.
	Persist map[toolchain.Category]bool
	// Fail maps "op entity" to an error returned by that call.
	Fail map[string]error

	mu    sync.Mutex
	calls []Call
}

var _ toolchain.Client = (*FakeToolchain)(nil)

// NewFakeToolchain creates a fake that, like the vendor CLI, persists
// libraries and drivers but not compiler flags, OS bindings or library
// parameters.
func NewFakeToolchain(l layout.Layout) *FakeToolchain {
	return &FakeToolchain{
		Layout: l,
		Persist: map[toolchain.Category]bool{
			toolchain.CategoryLibraries: true,
			toolchain.CategoryDrivers:   true,
		},
		Fail: map[string]error{},
	}
}

// Calls returns a copy of the recorded calls.
func (f *FakeToolchain) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallStrings returns recorded calls formatted as "op entity".
func (f *FakeToolchain) CallStrings() []string {
	var out []string
	for _, c := range f.Calls() {
		out = append(out, c.String())
	}
	return out
}

// Reset forgets recorded calls.
func (f *FakeToolchain) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *FakeToolchain) record(op, entity string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: op, Entity: entity})
	if err, ok := f.Fail[op+" "+entity]; ok {
		return &toolchain.Error{Op: op, Entity: entity, Err: err}
	}
	return nil
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}

func (f *FakeToolchain) SetWorkspace(ctx context.Context, dir string) error {
	if err := f.record("workspace", filepath.Base(dir)); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

func (f *FakeToolchain) PlatformExists(ctx context.Context, p *config.Platform) (bool, error) {
	return exists(f.Layout.PlatformDir(p.ComponentName()))
}

func (f *FakeToolchain) CreatePlatform(ctx context.Context, p *config.Platform) error {
	if err := f.record("create_platform", p.ComponentName()); err != nil {
		return err
	}
	if err := writeFile(f.Layout.XPFM(p.ComponentName()), "<platform/>\n"); err != nil {
		return err
	}
	if len(p.Domains) > 0 {
		return f.seedDomain(p, p.Domains[0])
	}
	return nil
}

func (f *FakeToolchain) BuildPlatform(ctx context.Context, p *config.Platform) error {
	return f.record("build_platform", p.ComponentName())
}

func (f *FakeToolchain) DomainExists(ctx context.Context, p *config.Platform, d *config.Domain) (bool, error) {
	return exists(f.Layout.DomainDir(p.ComponentName(), d.Processor, d.Name))
}

func (f *FakeToolchain) CreateDomain(ctx context.Context, p *config.Platform, d *config.Domain) error {
	if err := f.record("create_domain", d.Name); err != nil {
		return err
	}
	return f.seedDomain(p, d)
}

func (f *FakeToolchain) seedDomain(p *config.Platform, d *config.Domain) error {
	return writeFile(f.Layout.BSPFile(p.ComponentName(), d.Processor, d.Name), BSPYAML(d.OS, d.Processor))
}

func (f *FakeToolchain) ConfigureDomain(ctx context.Context, p *config.Platform, d *config.Domain) (toolchain.ApplyResult, error) {
	if err := f.record("configure_domain", d.Name); err != nil {
		return toolchain.ApplyResult{}, err
	}
	res := toolchain.ApplyResult{Persisted: map[toolchain.Category]bool{}}
	for c, ok := range f.Persist {
		res.Persisted[c] = ok
	}
	return res, nil
}

func (f *FakeToolchain) RegenerateDomain(ctx context.Context, p *config.Platform, d *config.Domain) error {
	return f.record("regenerate_domain", d.Name)
}

func (f *FakeToolchain) ApplicationExists(ctx context.Context, app *config.Application) (bool, error) {
	return exists(f.Layout.AppDir(app.Name))
}

func (f *FakeToolchain) CreateApplication(ctx context.Context, p *config.Platform, app *config.Application) error {
	if err := f.record("create_application", app.Name); err != nil {
		return err
	}
	if err := writeFile(f.Layout.UserConfigFile(app.Name), UserConfigCMake); err != nil {
		return err
	}
	if err := writeFile(f.Layout.CMakeListsFile(app.Name), CMakeLists); err != nil {
		return err
	}
	return writeFile(filepath.Join(f.Layout.AppSrcDir(app.Name), "main.c"), "int main(void) { return 0; }\n")
}

// BuildApplication records the call and writes a compiler database listing
// the application's generated main.c, as a real build would.
func (f *FakeToolchain) BuildApplication(ctx context.Context, app *config.Application) error {
	if err := f.record("build_application", app.Name); err != nil {
		return err
	}
	return WriteCompileDB(f.Layout.AppBuildDir(app.Name), filepath.Join(f.Layout.AppSrcDir(app.Name), "main.c"))
}

// WriteCompileDB writes a compile_commands.json in dir with one record per
// source file.
func WriteCompileDB(dir string, files ...string) error {
	type record struct {
		Directory string `json:"directory"`
		Command   string `json:"command"`
		File      string `json:"file"`
	}
	var records []record
	for _, f := range files {
		records = append(records, record{
			Directory: dir,
			Command:   fmt.Sprintf("arm-none-eabi-gcc -c %s -I%s", f, filepath.Dir(f)),
			File:      f,
		})
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, "compile_commands.json"), string(data)+"\n")
}
