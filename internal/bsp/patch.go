package bsp

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/GNPower/Vitis/internal/config"
	"gopkg.in/yaml.v3"
)

// Result describes what a patch changed.
type Result struct {
	Changed bool
	// Keys lists the dotted paths whose values changed.
	Keys []string
}

// PatchFile applies s to the state file at path. The file is rewritten only
// if something changed.
func PatchFile(path string, s Settings) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read board support package state: %w", err)
	}
	out, res, err := Patch(data, s)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	if !res.Changed {
		return res, nil
	}
	if err := writeAtomic(path, out); err != nil {
		return Result{}, fmt.Errorf("failed to write board support package state: %w", err)
	}
	return res, nil
}

func writeAtomic(path string, data []byte) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, fi.Mode().Perm()); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Patch applies s to state file content and returns the new content. When
// nothing changes, the input is returned unmodified.
func Patch(data []byte, s Settings) ([]byte, Result, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, Result{}, fmt.Errorf("invalid state file: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, Result{}, errors.New("invalid state file: top level is not a mapping")
	}

	p := &patcher{root: doc.Content[0]}
	p.apply(s)
	if len(p.changed) == 0 {
		return data, Result{}, nil
	}
	p.setValue(p.root, "reconfig", "config")

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, Result{}, fmt.Errorf("failed to encode state file: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, Result{}, fmt.Errorf("failed to encode state file: %w", err)
	}
	return buf.Bytes(), Result{Changed: true, Keys: p.changed}, nil
}

type patcher struct {
	root    *yaml.Node
	changed []string
}

func (p *patcher) apply(s Settings) {
	if s.CompilerFlags != nil {
		// The toolchain expects a leading separator before user flags.
		p.setParam(p.root, " "+*s.CompilerFlags, "proc_config", s.Processor, "proc_extra_compiler_flags")
	}
	if s.Stdin != nil {
		p.setParam(p.root, *s.Stdin, "os_config", s.OS, s.OS+"_stdin")
	}
	if s.Stdout != nil {
		p.setParam(p.root, *s.Stdout, "os_config", s.OS, s.OS+"_stdout")
	}

	for _, lib := range s.Libraries {
		p.applyLibrary(lib)
	}
	for _, drv := range s.Drivers {
		for _, inst := range p.driverInstances(drv.Name) {
			if drv.Version != "" {
				p.setValue(p.root, drv.Version, "drv_info", inst, "ver")
			}
			if drv.Path != "" {
				p.setValue(p.root, drv.Path, "drv_info", inst, "path")
			}
		}
	}
	for _, owner := range s.ParamOwners {
		p.applyParams(owner)
	}
}

func (p *patcher) applyLibrary(lib *config.Package) {
	if !lib.Enabled {
		if deleteKey(lookup(p.root, "lib_info"), lib.Name) {
			p.changed = append(p.changed, "lib_info."+lib.Name)
		}
		if deleteKey(lookup(p.root, "lib_config"), lib.Name) {
			p.changed = append(p.changed, "lib_config."+lib.Name)
		}
		return
	}
	if lib.Path == "" {
		// A default-version library is added by the toolchain, which knows
		// its location.
		return
	}
	p.setValue(p.root, lib.Path, "lib_info", lib.Name, "path")
	p.setValue(p.root, lib.Version, "lib_info", lib.Name, "version")
}

func (p *patcher) applyParams(owner *config.Package) {
	if owner.Kind == config.KindDriver {
		for _, inst := range p.driverInstances(owner.Name) {
			for _, prm := range owner.Params {
				p.setParam(p.root, prm.Value, "drv_config", inst, prm.Name)
			}
		}
		return
	}
	for _, prm := range owner.Params {
		p.setParam(p.root, prm.Value, "lib_config", owner.Name, prm.Name)
	}
}

// driverInstances returns the drv_info keys whose driver is name.
func (p *patcher) driverInstances(name string) []string {
	info := lookup(p.root, "drv_info")
	if info == nil || info.Kind != yaml.MappingNode {
		return nil
	}
	var out []string
	for i := 0; i+1 < len(info.Content); i += 2 {
		entry := info.Content[i+1]
		if d := lookup(entry, "driver"); d != nil && d.Value == name {
			out = append(out, info.Content[i].Value)
		}
	}
	return out
}

// setParam sets the `value` field of a parameter entry found under path.
// The last path element is matched case-insensitively because parameter
// names in configuration files are case-folded. A missing entry is created.
func (p *patcher) setParam(m *yaml.Node, value string, path ...string) {
	parent := ensure(m, path[:len(path)-1]...)
	name := path[len(path)-1]
	key := name
	if k, ok := findKeyFold(parent, name); ok {
		key = k
	}
	entry := lookup(parent, key)
	if entry == nil || entry.Kind != yaml.MappingNode {
		entry = ensure(parent, key)
		p.setValue(entry, key, "name")
	}
	full := append(append([]string{}, path[:len(path)-1]...), key)
	if setScalar(ensureScalar(entry, "value"), value) {
		p.changed = append(p.changed, strings.Join(full, ".")+".value")
	}
}

// setValue sets a scalar at path below m, creating intermediate mappings.
func (p *patcher) setValue(m *yaml.Node, value string, path ...string) {
	parent := ensure(m, path[:len(path)-1]...)
	if setScalar(ensureScalar(parent, path[len(path)-1]), value) {
		if m == p.root {
			p.changed = append(p.changed, strings.Join(path, "."))
		}
	}
}

func lookup(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func findKeyFold(m *yaml.Node, key string) (string, bool) {
	if m == nil || m.Kind != yaml.MappingNode {
		return "", false
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if strings.EqualFold(m.Content[i].Value, key) {
			return m.Content[i].Value, true
		}
	}
	return "", false
}

// ensure walks path below m, creating empty mappings where keys are absent
// or hold a non-mapping value.
func ensure(m *yaml.Node, path ...string) *yaml.Node {
	cur := m
	for _, key := range path {
		next := lookup(cur, key)
		if next == nil {
			next = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			cur.Content = append(cur.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				next,
			)
		} else if next.Kind != yaml.MappingNode {
			*next = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		}
		cur = next
	}
	return cur
}

func ensureScalar(m *yaml.Node, key string) *yaml.Node {
	if n := lookup(m, key); n != nil {
		return n
	}
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: ""}
	m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, n)
	return n
}

func deleteKey(m *yaml.Node, key string) bool {
	if m == nil || m.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content = append(m.Content[:i], m.Content[i+2:]...)
			return true
		}
	}
	return false
}

// setScalar assigns value to n and reports whether anything changed. An
// existing boolean or integer tag is kept when the new value still fits it.
func setScalar(n *yaml.Node, value string) bool {
	tag := "!!str"
	switch n.ShortTag() {
	case "!!bool":
		if _, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			tag = "!!bool"
		}
	case "!!int":
		if _, err := strconv.ParseInt(value, 0, 64); err == nil {
			tag = "!!int"
		}
	}
	if n.Kind == yaml.ScalarNode && n.Value == value && n.ShortTag() == tag {
		return false
	}
	*n = yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value, LineComment: n.LineComment, HeadComment: n.HeadComment}
	return true
}
