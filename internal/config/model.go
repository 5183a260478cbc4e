package config

// HardwareSource is the closed set of ways a platform can be derived.
type HardwareSource string

const (
	SourceXSA      HardwareSource = "xsa"
	SourceFixed    HardwareSource = "fixed"
	SourcePlatform HardwareSource = "platform"
)

// Valid reports whether s is a member of the closed set.
func (s HardwareSource) Valid() bool {
	switch s {
	case SourceXSA, SourceFixed, SourcePlatform:
		return true
	}
	return false
}

// Project is the top-level aggregate: one platform and an ordered list of
// applications built against it.
type Project struct {
	Name         string
	ConfigDir    string
	Platform     *Platform
	Applications []*Application
}

// Application returns the application with the given name.
func (p *Project) Application(name string) (*Application, bool) {
	for _, a := range p.Applications {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// Platform is the hardware/firmware layer every application builds against.
type Platform struct {
	Name        string
	Description string
	Source      HardwareSource
	// HardwareDesign is the design name as written in the configuration.
	HardwareDesign string
	// HardwareDesignPath is the resolved location of the design file. The
	// file is opaque to this engine.
	HardwareDesignPath string
	BootComponents     bool
	Domains            []*Domain
}

// ComponentName is the name the toolchain knows the platform by.
func (p *Platform) ComponentName() string {
	return p.Name + "_platform"
}

// Domain returns the domain with the given name.
func (p *Platform) Domain(name string) (*Domain, bool) {
	for _, d := range p.Domains {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// Domain is a board-support-package configuration bound to one processor.
type Domain struct {
	Name        string
	DisplayName string
	Processor   string
	OS          string

	// Optional settings; nil means not declared.
	CompilerFlags *string
	Stdin         *string
	Stdout        *string

	Libraries []*Package
	Drivers   []*Package
}

// HasSettings reports whether the domain declares anything beyond creation.
func (d *Domain) HasSettings() bool {
	return d.CompilerFlags != nil || d.Stdin != nil || d.Stdout != nil ||
		len(d.Libraries) > 0 || len(d.Drivers) > 0
}

// PackageKind distinguishes libraries from drivers.
type PackageKind string

const (
	KindLibrary PackageKind = "library"
	KindDriver  PackageKind = "driver"
)

// Package is a library or driver owned by exactly one domain.
type Package struct {
	Kind    PackageKind
	Name    string
	Version string
	Enabled bool
	// Path is the source location inside the toolchain installation for a
	// versioned package, or empty when the toolchain default applies.
	Path   string
	Params []Param
}

// Param is one library- or driver-specific setting, kept in declaration order.
type Param struct {
	Name  string
	Value string
}

// Application is a buildable software project bound to one platform and one
// domain.
type Application struct {
	Name        string
	Description string
	Platform    string
	Domain      string
	Template    string
	Compiler    Compiler
	Linker      Linker
	Launches    []*Launch
}

// HasSources reports whether the application declares sources or a linker
// script to project into its source tree.
func (a *Application) HasSources() bool {
	return len(a.Compiler.SourceFiles) > 0 || len(a.Compiler.SourceFolders) > 0 || a.Linker.Script != ""
}

// Compiler holds the application's compiler settings. A nil slice or
// pointer means the setting was not declared and the generated default is
// left alone.
type Compiler struct {
	Definitions      []string
	UndefinedSymbols []string
	IncludeDirs      []string
	SourceFiles      []string
	SourceFolders    []string

	Optimization      *string
	OptimizationFlags *string
	Debug             *string
	DebugFlags        *string

	WarningsAll              *bool
	WarningsExtra            *bool
	WarningsAsErrors         *bool
	WarningsCheckSyntaxOnly  *bool
	WarningsPedantic         *bool
	WarningsPedanticAsErrors *bool
	WarningsInhibitAll       *bool
	Verbose                  *bool
	ANSI                     *bool

	OtherFlags *string
}

// Linker holds the application's linker settings.
type Linker struct {
	NoStartFiles      *bool
	NoDefaultLibs     *bool
	NoStdlib          *bool
	OmitAllSymbolInfo *bool

	Libraries []string
	LinkDirs  []string
	// Script is the resolved linker script path, empty when not declared.
	Script     string
	OtherFlags *string
}

// Launch is one debug launch configuration of an application.
type Launch struct {
	Name        string
	DisplayName string
	// ConfigName is the entry name in the generated launch file; entries
	// are merged by this name.
	ConfigName    string
	DebugType     string
	TargetCore    string
	TargetContext string

	// Hardware overrides; empty means auto-detect.
	Bitstream string
	FSBL      string
	PSInitTCL string

	ResetSystem    bool
	ProgramDevice  bool
	ResetAPU       bool
	ResetProcessor bool
	StopAtEntry    bool
}
