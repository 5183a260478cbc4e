// Package launch generates the debug launch configurations of an
// application and merges them into its launch.json.
package launch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/GNPower/Vitis/internal/config"
	"github.com/GNPower/Vitis/internal/fsutil"
	"github.com/GNPower/Vitis/internal/layout"
	"github.com/tidwall/jsonc"
)

// WorkspaceFolder is the IDE placeholder for the workspace root.
const WorkspaceFolder = "${workspaceFolder}"

// Configuration is one entry of launch.json.
type Configuration struct {
	Type                      string      `json:"type"`
	Request                   string      `json:"request"`
	Name                      string      `json:"name"`
	DebugType                 string      `json:"debugType"`
	AutoAttachProcessChildren bool        `json:"autoAttachProcessChildren"`
	Target                    Target      `json:"target"`
	TargetSetup               TargetSetup `json:"targetSetup"`
	InternalConsoleOptions    string      `json:"internalConsoleOptions"`
}

type Target struct {
	TargetConnectionID string `json:"targetConnectionId"`
	PeersIniPath       string `json:"peersIniPath"`
	Context            string `json:"context"`
}

type TargetSetup struct {
	ResetSystem        bool               `json:"resetSystem"`
	ProgramDevice      bool               `json:"programDevice"`
	ResetAPU           bool               `json:"resetAPU"`
	BitstreamFile      string             `json:"bitstreamFile"`
	ZynqInitialization ZynqInitialization `json:"zynqInitialization"`
	DownloadElf        []DownloadElf      `json:"downloadElf"`
}

type ZynqInitialization struct {
	IsFSBL       bool         `json:"isFsbl"`
	UsingFSBL    UsingFSBL    `json:"usingFSBL"`
	UsingPs7Init UsingPs7Init `json:"usingPs7Init"`
}

type UsingFSBL struct {
	InitWithFSBL bool   `json:"initWithFSBL"`
	FSBLFile     string `json:"fsblFile"`
}

type UsingPs7Init struct {
	RunPs7Init     bool   `json:"runPs7Init"`
	RunPs7PostInit bool   `json:"runPs7PostInit"`
	Ps7InitTclFile string `json:"ps7InitTclFile"`
}

type DownloadElf struct {
	Core           string `json:"core"`
	ResetProcessor bool   `json:"resetProcessor"`
	ElfFile        string `json:"elfFile"`
	StopAtEntry    bool   `json:"stopAtEntry"`
}

// Generator builds configurations for one application.
type Generator struct {
	Layout layout.Layout
	// PlatformComponent is the platform's component name.
	PlatformComponent string
}

// Configurations returns one configuration per launch declared by app.
// Empty hardware overrides are filled in from the workspace.
func (g Generator) Configurations(app *config.Application) ([]Configuration, error) {
	bitstream, err := g.detectBitstream(app.Name)
	if err != nil {
		return nil, err
	}

	out := make([]Configuration, 0, len(app.Launches))
	for _, l := range app.Launches {
		c := Configuration{
			Type:      "tcf-debug",
			Request:   "launch",
			Name:      l.ConfigName,
			DebugType: l.DebugType,
			Target: Target{
				TargetConnectionID: "Local",
				PeersIniPath:       "../../../.peers.ini",
				Context:            l.TargetContext,
			},
			TargetSetup: TargetSetup{
				ResetSystem:   l.ResetSystem,
				ProgramDevice: l.ProgramDevice,
				ResetAPU:      l.ResetAPU,
				BitstreamFile: orDefault(l.Bitstream, bitstream),
				ZynqInitialization: ZynqInitialization{
					IsFSBL: true,
					UsingFSBL: UsingFSBL{
						InitWithFSBL: true,
						FSBLFile:     orDefault(l.FSBL, g.fsbl()),
					},
					UsingPs7Init: UsingPs7Init{
						RunPs7Init:     true,
						RunPs7PostInit: true,
						Ps7InitTclFile: orDefault(l.PSInitTCL, workspacePath(app.Name, "_ide", "psinit", "ps7_init.tcl")),
					},
				},
				DownloadElf: []DownloadElf{{
					Core:           l.TargetCore,
					ResetProcessor: l.ResetProcessor,
					ElfFile:        workspacePath(app.Name, "build", app.Name+".elf"),
					StopAtEntry:    l.StopAtEntry,
				}},
			},
			InternalConsoleOptions: "openOnSessionStart",
		}
		out = append(out, c)
	}
	return out, nil
}

func (g Generator) detectBitstream(app string) (string, error) {
	dir := g.Layout.BitstreamDir(app)
	if _, err := os.Stat(dir); err != nil {
		return "", nil
	}
	bits, err := fsutil.FindFiles(dir, "*.bit")
	if err != nil {
		return "", fmt.Errorf("failed to look for a bitstream: %w", err)
	}
	if len(bits) == 0 {
		return "", nil
	}
	return workspacePath(app, "_ide", "bitstream", bits[0]), nil
}

func (g Generator) fsbl() string {
	c := g.PlatformComponent
	return workspacePath(c, "export", c, "sw", "boot", "fsbl.elf")
}

func workspacePath(elem ...string) string {
	return path.Join(append([]string{WorkspaceFolder}, elem...)...)
}

func isEmpty(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null")) || bytes.Equal(t, []byte(`""`))
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

const defaultVersion = `"0.2.0"`

// Merge adds configs to the launch file content data, replacing entries of
// the same name in place and appending the rest. Entries with other names
// and every other top-level key are kept as they are. Comments and trailing
// commas in data are accepted but not preserved.
func Merge(data []byte, configs []Configuration) ([]byte, error) {
	doc := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
			return nil, fmt.Errorf("invalid launch file: %w", err)
		}
		if doc == nil {
			doc = map[string]json.RawMessage{}
		}
	}
	if v, ok := doc["version"]; !ok || isEmpty(v) {
		doc["version"] = json.RawMessage(defaultVersion)
	}

	var entries []json.RawMessage
	if raw, ok := doc["configurations"]; ok && !isEmpty(raw) {
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("invalid launch file configurations: %w", err)
		}
	}

	for _, c := range configs {
		raw, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		idx := -1
		for i, existing := range entries {
			var named struct {
				Name string `json:"name"`
			}
			if json.Unmarshal(existing, &named) == nil && named.Name == c.Name {
				idx = i
				break
			}
		}
		if idx >= 0 {
			entries[idx] = raw
		} else {
			entries = append(entries, raw)
		}
	}

	if entries == nil {
		entries = []json.RawMessage{}
	}
	list, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}
	doc["configurations"] = list

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// WriteFile merges configs into the launch file at p, creating it and its
// directory when missing. It reports whether the file was written.
func WriteFile(p string, configs []Configuration) (bool, error) {
	data, err := os.ReadFile(p)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to read launch file: %w", err)
	}
	out, err := Merge(data, configs)
	if err != nil {
		return false, fmt.Errorf("%s: %w", p, err)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return false, err
	}
	written, err := fsutil.WriteFileIfChanged(p, out, 0644)
	if err != nil {
		return false, fmt.Errorf("failed to write launch file: %w", err)
	}
	return written, nil
}
