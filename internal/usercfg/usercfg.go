// Package usercfg applies an application's compiler and linker settings to
// the build files generated with it: the set() blocks of UserConfig.cmake
// and the source discovery of CMakeLists.txt.
package usercfg

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/GNPower/Vitis/internal/config"
)

// Setting is one UserConfig.cmake variable and its rendered value.
type Setting struct {
	Name  string
	Value string
}

// LinkerScriptRef is the USER_LINKER_SCRIPT value of a projected script.
const LinkerScriptRef = `"${CMAKE_SOURCE_DIR}/lscript.ld"`

type flagSetting struct {
	name string
	flag string
	get  func(*config.Application) *bool
}

var warningSettings = []flagSetting{
	{"USER_COMPILE_WARNINGS_ALL", "-Wall", func(a *config.Application) *bool { return a.Compiler.WarningsAll }},
	{"USER_COMPILE_WARNINGS_EXTRA", "-Wextra", func(a *config.Application) *bool { return a.Compiler.WarningsExtra }},
	{"USER_COMPILE_WARNINGS_AS_ERRORS", "-Werror", func(a *config.Application) *bool { return a.Compiler.WarningsAsErrors }},
	{"USER_COMPILE_WARNINGS_CHECK_SYNTAX_ONLY", "-fsyntax-only", func(a *config.Application) *bool { return a.Compiler.WarningsCheckSyntaxOnly }},
	{"USER_COMPILE_WARNINGS_PEDANTIC", "-pedantic", func(a *config.Application) *bool { return a.Compiler.WarningsPedantic }},
	{"USER_COMPILE_WARNINGS_PEDANTIC_AS_ERRORS", "-pedantic-errors", func(a *config.Application) *bool { return a.Compiler.WarningsPedanticAsErrors }},
	{"USER_COMPILE_WARNINGS_INHIBIT_ALL", "-w", func(a *config.Application) *bool { return a.Compiler.WarningsInhibitAll }},
}

var miscSettings = []flagSetting{
	{"USER_COMPILE_VERBOSE", "-v", func(a *config.Application) *bool { return a.Compiler.Verbose }},
	{"USER_COMPILE_ANSI", "-ansi", func(a *config.Application) *bool { return a.Compiler.ANSI }},
}

var linkFlagSettings = []flagSetting{
	{"USER_LINK_NO_START_FILES", "-nostartfiles", func(a *config.Application) *bool { return a.Linker.NoStartFiles }},
	{"USER_LINK_NO_DEFAULT_LIBS", "-nodefaultlibs", func(a *config.Application) *bool { return a.Linker.NoDefaultLibs }},
	{"USER_LINK_NO_STDLIB", "-nostdlib", func(a *config.Application) *bool { return a.Linker.NoStdlib }},
	{"USER_LINK_OMIT_ALL_SYMBOL_INFO", "-s", func(a *config.Application) *bool { return a.Linker.OmitAllSymbolInfo }},
}

// Settings returns the UserConfig.cmake variables app declares, in file
// order. Undeclared settings are omitted so the generated defaults stay.
// linkerScript is the rendered USER_LINKER_SCRIPT value; empty leaves it
// alone.
func Settings(app *config.Application, linkerScript string) []Setting {
	var out []Setting
	list := func(name string, items []string) {
		if len(items) > 0 {
			out = append(out, Setting{name, FormatList(items)})
		}
	}
	str := func(name string, v *string, format func(string) string) {
		if v != nil {
			out = append(out, Setting{name, format(*v)})
		}
	}
	flags := func(fs []flagSetting) {
		for _, f := range fs {
			if v := f.get(app); v != nil {
				out = append(out, Setting{f.name, Flag(*v, f.flag)})
			}
		}
	}

	c := app.Compiler
	list("USER_COMPILE_DEFINITIONS", c.Definitions)
	list("USER_UNDEFINED_SYMBOLS", c.UndefinedSymbols)
	list("USER_INCLUDE_DIRECTORIES", c.IncludeDirs)
	flags(warningSettings)
	str("USER_COMPILE_OPTIMIZATION_LEVEL", c.Optimization, OptimizationFlag)
	str("USER_COMPILE_OPTIMIZATION_OTHER_FLAGS", c.OptimizationFlags, strings.TrimSpace)
	str("USER_COMPILE_DEBUG_LEVEL", c.Debug, DebugFlag)
	str("USER_COMPILE_DEBUG_OTHER_FLAGS", c.DebugFlags, strings.TrimSpace)
	flags(miscSettings)
	str("USER_COMPILE_OTHER_FLAGS", c.OtherFlags, strings.TrimSpace)

	l := app.Linker
	flags(linkFlagSettings)
	list("USER_LINK_LIBRARIES", l.Libraries)
	list("USER_LINK_DIRECTORIES", l.LinkDirs)
	if linkerScript != "" {
		out = append(out, Setting{"USER_LINKER_SCRIPT", linkerScript})
	}
	str("USER_LINK_OTHER_FLAGS", l.OtherFlags, strings.TrimSpace)
	return out
}

// FormatList renders items one quoted entry per line.
func FormatList(items []string) string {
	var b strings.Builder
	b.WriteByte('\n')
	for _, it := range items {
		b.WriteString(`"` + it + "\"\n")
	}
	return b.String()
}

// Flag returns flag when enabled and "" otherwise.
func Flag(enabled bool, flag string) string {
	if enabled {
		return flag
	}
	return ""
}

// OptimizationFlag normalizes an optimization level: "O2" and "2" become
// "-O2", "none" and "" become "", and values starting with '-' pass through.
func OptimizationFlag(level string) string {
	return levelFlag(level, "O", true)
}

// DebugFlag normalizes a debug level: "g3" and "3" become "-g3".
func DebugFlag(level string) string {
	return levelFlag(level, "g", false)
}

func levelFlag(level, prefix string, upper bool) string {
	raw := strings.TrimSpace(level)
	level = strings.ToLower(raw)
	switch {
	case level == "" || level == "none":
		return ""
	case strings.HasPrefix(level, "-"):
		return raw
	case strings.HasPrefix(level, strings.ToLower(prefix)):
		if upper {
			return "-" + strings.ToUpper(level[:1]) + level[1:]
		}
		return "-" + level
	default:
		return "-" + prefix + level
	}
}

func render(s Setting) string {
	if strings.HasPrefix(s.Value, "\n") {
		return "set(" + s.Name + s.Value + ")"
	}
	return "set(" + s.Name + " " + s.Value + ")"
}

func setHead(name string) *regexp.Regexp {
	return regexp.MustCompile(`set\(` + regexp.QuoteMeta(name) + `[\s)]`)
}

// closeParen returns the index just past the ')' that closes a set() call
// whose arguments begin at from. Parentheses inside quoted arguments do not
// count and unquoted ones must nest. It returns -1 when the call is
// unterminated.
func closeParen(content string, from int) int {
	depth, quoted := 1, false
	for i := from; i < len(content); i++ {
		switch c := content[i]; {
		case quoted && c == '\\':
			i++
		case c == '"':
			quoted = !quoted
		case quoted:
		case c == '(':
			depth++
		case c == ')':
			if depth--; depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// setBlocks returns the [start, end) spans of every set() call for name.
func setBlocks(content, name string) [][2]int {
	var spans [][2]int
	head := setHead(name)
	for off := 0; off < len(content); {
		loc := head.FindStringIndex(content[off:])
		if loc == nil {
			break
		}
		start := off + loc[0]
		argsFrom := off + loc[1] - 1
		end := closeParen(content, argsFrom)
		if end < 0 {
			break
		}
		spans = append(spans, [2]int{start, end})
		off = end
	}
	return spans
}

// Apply rewrites the set() block of every setting in content, appending
// blocks that are missing. It returns the new content and the names whose
// block changed.
func Apply(content string, settings []Setting) (string, []string) {
	var changed []string
	for _, s := range settings {
		block := render(s)
		spans := setBlocks(content, s.Name)
		if len(spans) > 0 {
			var b strings.Builder
			last := 0
			for _, sp := range spans {
				b.WriteString(content[last:sp[0]])
				b.WriteString(block)
				last = sp[1]
			}
			b.WriteString(content[last:])
			if updated := b.String(); updated != content {
				changed = append(changed, s.Name)
				content = updated
			}
			continue
		}
		if content != "" && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		content += block + "\n"
		changed = append(changed, s.Name)
	}
	return content, changed
}

// ApplyFile applies settings to the UserConfig.cmake at path, writing it
// only when something changed.
func ApplyFile(path string, settings []Setting) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read user configuration: %w", err)
	}
	out, changed := Apply(string(data), settings)
	if len(changed) == 0 {
		return nil, nil
	}
	if err := os.WriteFile(path, []byte(out), 0644); err != nil {
		return nil, fmt.Errorf("failed to write user configuration: %w", err)
	}
	return changed, nil
}

var auxSources = regexp.MustCompile(`aux_source_directory\(\$\{CMAKE_SOURCE_DIR\}\s+_sources\)`)

const globSources = `file(GLOB_RECURSE _sources
    FOLLOW_SYMLINKS
    ${CMAKE_SOURCE_DIR}/*.c
    ${CMAKE_SOURCE_DIR}/*.S
)`

// PatchCMakeLists switches source discovery to a recursive glob so sources
// inside projected folders are compiled. It reports whether content changed.
func PatchCMakeLists(content string) (string, bool) {
	out := auxSources.ReplaceAllLiteralString(content, globSources)
	return out, out != content
}

// PatchCMakeListsFile applies PatchCMakeLists to the file at path.
func PatchCMakeListsFile(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read build description: %w", err)
	}
	out, changed := PatchCMakeLists(string(data))
	if !changed {
		return false, nil
	}
	if err := os.WriteFile(path, []byte(out), 0644); err != nil {
		return false, fmt.Errorf("failed to write build description: %w", err)
	}
	return true, nil
}
