// Package layout fixes where configuration files are read from and where
// generated artifacts are placed. The convention is a stable contract shared
// by every command.
package layout

import (
	"path/filepath"
)

const (
	TopFileName    = "vitis.conf"
	ConfigExt      = ".conf"
	ActiveFileName = ".active_project"
	CompileDBName  = "compile_commands.json"
	ClangdName     = ".clangd"
	LockFileName   = ".compile_commands.lock"
	LinkerScript   = "lscript.ld"
)

// Layout holds the roots every other path is derived from.
type Layout struct {
	// SourceRoot is the directory holding Top/ and Projects/.
	SourceRoot string
	// TopDir holds one configuration directory per project.
	TopDir string
	// WorkspaceDir is the vendor workspace where components are generated.
	WorkspaceDir string
	// HDLDataDir holds hardware design files.
	HDLDataDir string
}

// New derives the default layout from a source root.
func New(sourceRoot string) Layout {
	return Layout{
		SourceRoot:   sourceRoot,
		TopDir:       filepath.Join(sourceRoot, "Top"),
		WorkspaceDir: filepath.Join(sourceRoot, "Projects"),
		HDLDataDir:   filepath.Join(filepath.Dir(sourceRoot), "hdl", "data"),
	}
}

func (l Layout) ProjectConfigDir(project string) string {
	return filepath.Join(l.TopDir, project)
}

func (l Layout) TopFile(project string) string {
	return filepath.Join(l.ProjectConfigDir(project), TopFileName)
}

// ConfigFile resolves a CONFIG reference to its file.
func (l Layout) ConfigFile(project, ref string) string {
	return filepath.Join(l.ProjectConfigDir(project), ref+ConfigExt)
}

func (l Layout) HardwareDesign(name string) string {
	return filepath.Join(l.HDLDataDir, name+".xsa")
}

func (l Layout) PlatformDir(component string) string {
	return filepath.Join(l.WorkspaceDir, component)
}

func (l Layout) XPFM(component string) string {
	return filepath.Join(l.PlatformDir(component), "export", component, component+".xpfm")
}

func (l Layout) DomainDir(component, processor, domain string) string {
	return filepath.Join(l.PlatformDir(component), processor, domain)
}

// BSPFile is the generated board-support-package state file of a domain.
func (l Layout) BSPFile(component, processor, domain string) string {
	return filepath.Join(l.DomainDir(component, processor, domain), "bsp", "bsp.yaml")
}

func (l Layout) BSPBuildDir(component, processor, domain string) string {
	return filepath.Join(l.DomainDir(component, processor, domain), "bsp", "libsrc", "build_configs", "gen_bsp")
}

func (l Layout) FSBLBuildDir(component string) string {
	return filepath.Join(l.PlatformDir(component), "zynq_fsbl", "build")
}

func (l Layout) AppDir(app string) string {
	return filepath.Join(l.WorkspaceDir, app)
}

func (l Layout) AppSrcDir(app string) string {
	return filepath.Join(l.AppDir(app), "src")
}

func (l Layout) AppBuildDir(app string) string {
	return filepath.Join(l.AppDir(app), "build")
}

func (l Layout) UserConfigFile(app string) string {
	return filepath.Join(l.AppSrcDir(app), "UserConfig.cmake")
}

func (l Layout) CMakeListsFile(app string) string {
	return filepath.Join(l.AppSrcDir(app), "CMakeLists.txt")
}

func (l Layout) LaunchFile(app string) string {
	return filepath.Join(l.AppDir(app), "_ide", ".theia", "launch.json")
}

func (l Layout) BitstreamDir(app string) string {
	return filepath.Join(l.AppDir(app), "_ide", "bitstream")
}

// CompileDBCandidates lists where an application's compiler database may
// appear, in order of preference.
func (l Layout) CompileDBCandidates(app string) []string {
	return []string{
		filepath.Join(l.AppBuildDir(app), CompileDBName),
		filepath.Join(l.AppDir(app), CompileDBName),
	}
}

func (l Layout) ActiveFile() string {
	return filepath.Join(l.WorkspaceDir, ActiveFileName)
}
