package activeproject

import (
	"bytes"
	"fmt"

	"github.com/GNPower/Vitis/internal/config"
	"github.com/GNPower/Vitis/internal/vars"
	"gopkg.in/yaml.v3"
)

type clangdFile struct {
	CompileFlags clangdFlags `yaml:"CompileFlags"`
}

type clangdFlags struct {
	Add    []string `yaml:"Add,flow"`
	Remove []string `yaml:"Remove,flow,omitempty"`
}

func renderClangd(opts Options, includes []string) ([]byte, error) {
	add := append([]string{}, opts.ClangdAdd...)
	for _, dir := range includes {
		add = append(add, "-I"+dir)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(clangdFile{CompileFlags: clangdFlags{Add: add, Remove: opts.ClangdRemove}}); err != nil {
		return nil, fmt.Errorf("failed to encode clangd configuration: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// includeDirs returns the resolved include directories of every application
// of p, first occurrence wins. Entries still holding a build-system
// placeholder are left out.
func includeDirs(p *config.Project) []string {
	seen := make(map[string]bool)
	var out []string
	for _, app := range p.Applications {
		for _, dir := range app.Compiler.IncludeDirs {
			if !seen[dir] && !vars.Unresolved(dir) {
				seen[dir] = true
				out = append(out, dir)
			}
		}
	}
	return out
}
