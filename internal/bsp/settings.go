package bsp

import (
	"github.com/GNPower/Vitis/internal/config"
	"github.com/GNPower/Vitis/internal/toolchain"
)

// Settings are the values the patcher owns for one domain.
type Settings struct {
	Processor string
	OS        string

	CompilerFlags *string
	Stdin         *string
	Stdout        *string

	// Libraries whose presence, version and path are applied.
	Libraries []*config.Package
	// ParamOwners are the libraries and drivers whose parameters are applied.
	ParamOwners []*config.Package
	// Drivers whose version and path are applied.
	Drivers []*config.Package
}

// Empty reports whether there is nothing to patch.
func (s Settings) Empty() bool {
	return s.CompilerFlags == nil && s.Stdin == nil && s.Stdout == nil &&
		len(s.Libraries) == 0 && len(s.ParamOwners) == 0 && len(s.Drivers) == 0
}

// SettingsFor selects the settings of d that belong to the given categories.
func SettingsFor(d *config.Domain, cats []toolchain.Category) Settings {
	s := Settings{Processor: d.Processor, OS: d.OS}
	for _, c := range cats {
		switch c {
		case toolchain.CategoryCompilerFlags:
			s.CompilerFlags = d.CompilerFlags
		case toolchain.CategoryOSBindings:
			s.Stdin = d.Stdin
			s.Stdout = d.Stdout
		case toolchain.CategoryLibraries:
			s.Libraries = d.Libraries
		case toolchain.CategoryLibraryParams:
			for _, l := range d.Libraries {
				if l.Enabled && len(l.Params) > 0 {
					s.ParamOwners = append(s.ParamOwners, l)
				}
			}
		case toolchain.CategoryDrivers:
			s.Drivers = d.Drivers
			for _, drv := range d.Drivers {
				if len(drv.Params) > 0 {
					s.ParamOwners = append(s.ParamOwners, drv)
				}
			}
		}
	}
	return s
}
