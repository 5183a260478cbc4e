package loader

import (
	"fmt"
	"strings"

	"github.com/GNPower/Vitis/internal/config"
	"github.com/GNPower/Vitis/internal/ini"
	"github.com/GNPower/Vitis/internal/vars"
)

// appContext extends the invocation-wide variables with the application's
// own generated directories.
func (r *reader) appContext(app string, plat *config.Platform) (*vars.Context, error) {
	l := r.loader.layout
	extra := map[string]string{
		vars.AppDir:    l.AppDir(app),
		vars.AppSrcDir: l.AppSrcDir(app),
	}
	if plat != nil && plat.Name != "" {
		extra[vars.PlatformDir] = l.PlatformDir(plat.ComponentName())
	}
	if r.loader.vars == nil {
		return vars.NewContext(extra)
	}
	return r.loader.vars.With(extra)
}

func (r *reader) readApplication(top *ini.Document, sec *ini.Section, plat *config.Platform) (*config.Application, error) {
	app := &config.Application{
		Name: r.required(top, sec, "NAME"),
	}
	app.Description = sec.String("DESCRIPTION", app.Name+" application component")
	ref := r.required(top, sec, "CONFIG")
	if app.Name == "" || ref == "" {
		return nil, nil
	}

	doc, err := r.parse(field(top, sec.Name, "CONFIG"), ref)
	if err != nil || doc == nil {
		return nil, err
	}

	as, ok := doc.Section("application")
	if !ok {
		r.problems.add(field(doc, "application", ""), "section is required")
		return nil, nil
	}
	app.Platform = r.required(doc, as, "PLATFORM")
	app.Domain = r.required(doc, as, "DOMAIN")
	app.Template = as.String("TEMPLATE", "")

	if app.Platform != "" && plat != nil && plat.Name != "" && app.Platform != plat.Name {
		r.problems.add(field(doc, "application", "PLATFORM"), "references platform %q but the project declares %q", app.Platform, plat.Name)
	}
	if app.Domain != "" && plat != nil {
		matches := 0
		for _, d := range plat.Domains {
			if d.Name == app.Domain {
				matches++
			}
		}
		switch matches {
		case 0:
			r.problems.add(field(doc, "application", "DOMAIN"), "no domain named %q is declared by platform %q", app.Domain, plat.Name)
		case 1:
		default:
			r.problems.add(field(doc, "application", "DOMAIN"), "domain name %q is ambiguous", app.Domain)
		}
	}

	vctx, err := r.appContext(app.Name, plat)
	if err != nil {
		return nil, fmt.Errorf("failed to build variable context for %s: %w", app.Name, err)
	}

	cs, _ := doc.Section("compiler")
	app.Compiler = r.readCompiler(doc, cs, vctx)
	ls, _ := doc.Section("linker")
	app.Linker = r.readLinker(doc, ls, vctx)

	launchSecs, _ := r.collection(doc, "launch")
	for _, lsec := range launchSecs {
		launch, err := r.readLaunch(doc, lsec, app.Name, vctx)
		if err != nil {
			return nil, err
		}
		if launch != nil {
			app.Launches = append(app.Launches, launch)
		}
	}

	return app, nil
}

func (r *reader) readCompiler(doc *ini.Document, sec *ini.Section, vctx *vars.Context) config.Compiler {
	if sec == nil {
		return config.Compiler{}
	}
	return config.Compiler{
		Definitions:      optList(sec, "compile_definitions", nil),
		UndefinedSymbols: optList(sec, "undefined_symbols", nil),
		IncludeDirs:      optList(sec, "include_directories", vctx),
		SourceFiles:      optList(sec, "source_files", vctx),
		SourceFolders:    optList(sec, "source_folders", vctx),

		Optimization:      optString(sec, "optimization_level"),
		OptimizationFlags: optString(sec, "optimization_other_flags"),
		Debug:             optString(sec, "debug_level"),
		DebugFlags:        optString(sec, "debug_other_flags"),

		WarningsAll:              r.optBool(doc, sec, "warnings_all"),
		WarningsExtra:            r.optBool(doc, sec, "warnings_extra"),
		WarningsAsErrors:         r.optBool(doc, sec, "warnings_as_errors"),
		WarningsCheckSyntaxOnly:  r.optBool(doc, sec, "warnings_check_syntax_only"),
		WarningsPedantic:         r.optBool(doc, sec, "warnings_pedantic"),
		WarningsPedanticAsErrors: r.optBool(doc, sec, "warnings_pedantic_as_errors"),
		WarningsInhibitAll:       r.optBool(doc, sec, "warnings_inhibit_all"),
		Verbose:                  r.optBool(doc, sec, "verbose"),
		ANSI:                     r.optBool(doc, sec, "ansi"),

		OtherFlags: optString(sec, "other_flags"),
	}
}

func (r *reader) readLinker(doc *ini.Document, sec *ini.Section, vctx *vars.Context) config.Linker {
	if sec == nil {
		return config.Linker{}
	}
	lk := config.Linker{
		NoStartFiles:      r.optBool(doc, sec, "no_start_files"),
		NoDefaultLibs:     r.optBool(doc, sec, "no_default_libs"),
		NoStdlib:          r.optBool(doc, sec, "no_stdlib"),
		OmitAllSymbolInfo: r.optBool(doc, sec, "omit_all_symbol_info"),
		Libraries:         optList(sec, "libraries", nil),
		LinkDirs:          optList(sec, "link_directories", vctx),
		OtherFlags:        optString(sec, "other_flags"),
	}
	if script, ok := sec.Get("linker_script"); ok && strings.TrimSpace(script) != "" {
		lk.Script = vctx.Resolve(strings.TrimSpace(script))
	}
	return lk
}

// Launch defaults applied when the launch file leaves a value out.
const (
	defaultDebugType     = "baremetal-zynq"
	defaultTargetCore    = "ps7_cortexa9_0"
	defaultTargetContext = "zynq"
)

func (r *reader) readLaunch(appDoc *ini.Document, sec *ini.Section, app string, vctx *vars.Context) (*config.Launch, error) {
	launch := &config.Launch{
		Name: r.required(appDoc, sec, "NAME"),
	}
	launch.DisplayName = sec.String("DISPLAY_NAME", launch.Name)
	ref := r.required(appDoc, sec, "CONFIG")
	if launch.Name == "" || ref == "" {
		return nil, nil
	}

	doc, err := r.parse(field(appDoc, sec.Name, "CONFIG"), ref)
	if err != nil || doc == nil {
		return nil, err
	}

	get := func(section, key, fallback string) string {
		if s, ok := doc.Section(section); ok {
			return s.String(key, fallback)
		}
		return fallback
	}
	flag := func(key string, fallback bool) bool {
		if s, ok := doc.Section("behavior"); ok {
			return r.boolean(doc, s, key, fallback)
		}
		return fallback
	}

	launch.ConfigName = get("launch", "name", app+"_"+launch.Name)
	launch.DebugType = get("launch", "debug_type", defaultDebugType)
	launch.TargetCore = get("target", "core", defaultTargetCore)
	launch.TargetContext = get("target", "context", defaultTargetContext)

	if v := get("hardware", "bitstream", ""); v != "" {
		launch.Bitstream = vctx.Resolve(v)
	}
	if v := get("hardware", "fsbl", ""); v != "" {
		launch.FSBL = vctx.Resolve(v)
	}
	if v := get("hardware", "ps_init_tcl", ""); v != "" {
		launch.PSInitTCL = vctx.Resolve(v)
	}

	launch.ResetSystem = flag("reset_system", true)
	launch.ProgramDevice = flag("program_device", true)
	launch.ResetAPU = flag("reset_apu", false)
	launch.ResetProcessor = flag("reset_processor", true)
	launch.StopAtEntry = flag("stop_at_entry", false)

	return launch, nil
}
