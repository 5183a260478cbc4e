package toolchain

import (
	"context"

	"github.com/GNPower/Vitis/internal/config"
)

// Category is a class of domain settings whose persistence a Client reports
// on.
type Category string

const (
	CategoryCompilerFlags Category = "compiler_flags"
	CategoryOSBindings    Category = "os_bindings"
	CategoryLibraries     Category = "libraries"
	CategoryLibraryParams Category = "library_params"
	CategoryDrivers       Category = "drivers"
)

// Categories lists every category in a stable order.
var Categories = []Category{
	CategoryCompilerFlags,
	CategoryOSBindings,
	CategoryLibraries,
	CategoryLibraryParams,
	CategoryDrivers,
}

// Declared returns the categories a domain actually declares settings for.
func Declared(d *config.Domain) []Category {
	var out []Category
	if d.CompilerFlags != nil {
		out = append(out, CategoryCompilerFlags)
	}
	if d.Stdin != nil || d.Stdout != nil {
		out = append(out, CategoryOSBindings)
	}
	if len(d.Libraries) > 0 {
		out = append(out, CategoryLibraries)
	}
	for _, l := range d.Libraries {
		if len(l.Params) > 0 {
			out = append(out, CategoryLibraryParams)
			break
		}
	}
	if len(d.Drivers) > 0 {
		out = append(out, CategoryDrivers)
	}
	return out
}

// ApplyResult reports which categories a configuration call persisted.
type ApplyResult struct {
	Persisted map[Category]bool
}

// Unpersisted returns the members of declared that were not persisted.
func (r ApplyResult) Unpersisted(declared []Category) []Category {
	var out []Category
	for _, c := range declared {
		if !r.Persisted[c] {
			out = append(out, c)
		}
	}
	return out
}

// Client is the external toolchain collaborator. Every operation is keyed by
// entity name. Implementations must not be relied upon to detect existing
// entities on create; callers check with the Exists methods first.
type Client interface {
	// SetWorkspace creates or opens the workspace rooted at dir.
	SetWorkspace(ctx context.Context, dir string) error

	PlatformExists(ctx context.Context, p *config.Platform) (bool, error)
	// CreatePlatform creates the platform from its hardware source. The
	// first declared domain is created along with it.
	CreatePlatform(ctx context.Context, p *config.Platform) error
	BuildPlatform(ctx context.Context, p *config.Platform) error

	DomainExists(ctx context.Context, p *config.Platform, d *config.Domain) (bool, error)
	CreateDomain(ctx context.Context, p *config.Platform, d *config.Domain) error
	// ConfigureDomain applies the domain's declared settings and reports
	// which categories were persisted.
	ConfigureDomain(ctx context.Context, p *config.Platform, d *config.Domain) (ApplyResult, error)
	// RegenerateDomain regenerates the domain's sources from its state file.
	RegenerateDomain(ctx context.Context, p *config.Platform, d *config.Domain) error

	ApplicationExists(ctx context.Context, app *config.Application) (bool, error)
	CreateApplication(ctx context.Context, p *config.Platform, app *config.Application) error
	BuildApplication(ctx context.Context, app *config.Application) error
}
