package loader

import (
	"regexp"
	"strings"

	"github.com/GNPower/Vitis/internal/config"
	"github.com/GNPower/Vitis/internal/ini"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (r *reader) readPlatform(top *ini.Document, sec *ini.Section) (*config.Platform, error) {
	plat := &config.Platform{
		Name:           r.required(top, sec, "NAME"),
		Description:    sec.String("DESCRIPTION", ""),
		BootComponents: true,
	}
	ref := r.required(top, sec, "CONFIG")
	if ref == "" {
		return plat, nil
	}

	doc, err := r.parse(field(top, sec.Name, "CONFIG"), ref)
	if err != nil || doc == nil {
		return plat, err
	}

	if flow, ok := doc.Section("flow"); ok {
		plat.Source = config.HardwareSource(strings.ToLower(r.required(doc, flow, "SOURCE")))
		if plat.Source != "" && !plat.Source.Valid() {
			r.problems.add(field(doc, "flow", "SOURCE"), "must be one of xsa, fixed or platform, got %q", plat.Source)
		}
		if plat.Source == config.SourceXSA {
			plat.HardwareDesign = r.required(doc, flow, "XSA")
			if plat.HardwareDesign != "" {
				plat.HardwareDesignPath = r.loader.layout.HardwareDesign(plat.HardwareDesign)
			}
		}
	} else {
		r.problems.add(field(doc, "flow", ""), "section is required")
	}

	if boot, ok := doc.Section("boot"); ok {
		plat.BootComponents = r.boolean(doc, boot, "BOOT_COMPONENTS", true)
	}

	domSecs, ok := r.collection(doc, "domain")
	if ok && len(domSecs) == 0 {
		r.problems.add(field(doc, "domain", ""), "at least one domain is required")
	}
	seen := make(map[string]string)
	for _, ds := range domSecs {
		dom, err := r.readDomain(doc, ds)
		if err != nil {
			return nil, err
		}
		if dom.Name == "" {
			continue
		}
		if prev, dup := seen[dom.Name]; dup {
			r.problems.add(field(doc, ds.Name, "NAME"), "domain %q is already declared in [%s]", dom.Name, prev)
			continue
		}
		seen[dom.Name] = ds.Name
		plat.Domains = append(plat.Domains, dom)
	}

	return plat, nil
}

func (r *reader) readDomain(plat *ini.Document, sec *ini.Section) (*config.Domain, error) {
	dom := &config.Domain{
		Name:      r.required(plat, sec, "NAME"),
		Processor: r.required(plat, sec, "PROCESSOR_INSTANCE"),
	}
	dom.DisplayName = sec.String("DISPLAY_NAME", dom.Name)
	if dom.Processor != "" && !identifier.MatchString(dom.Processor) {
		r.problems.add(field(plat, sec.Name, "PROCESSOR_INSTANCE"), "%q is not a valid processor instance identifier", dom.Processor)
	}

	ref := r.required(plat, sec, "CONFIG")
	if ref == "" {
		return dom, nil
	}
	doc, err := r.parse(field(plat, sec.Name, "CONFIG"), ref)
	if err != nil || doc == nil {
		return dom, err
	}

	if ds, ok := doc.Section("domain"); ok {
		dom.OS = r.required(doc, ds, "OS")
	} else {
		r.problems.add(field(doc, "domain", "OS"), "required value is missing")
	}

	if cs, ok := doc.Section("compiler"); ok {
		dom.CompilerFlags = optString(cs, "flags")
	}
	if osSec, ok := doc.Section("os"); ok {
		dom.Stdin = optString(osSec, "stdin")
		dom.Stdout = optString(osSec, "stdout")
	}

	libSecs, _ := r.collection(doc, "library")
	for _, ls := range libSecs {
		if p := r.readPackage(doc, ls, config.KindLibrary); p != nil {
			dom.Libraries = append(dom.Libraries, p)
		}
	}
	drvSecs, _ := r.collection(doc, "driver")
	for _, ds := range drvSecs {
		if p := r.readPackage(doc, ds, config.KindDriver); p != nil {
			dom.Drivers = append(dom.Drivers, p)
		}
	}

	return dom, nil
}

const paramPrefix = "param_"

func (r *reader) readPackage(doc *ini.Document, sec *ini.Section, kind config.PackageKind) *config.Package {
	p := &config.Package{
		Kind:    kind,
		Name:    r.required(doc, sec, "name"),
		Version: sec.String("version", ""),
		Enabled: r.boolean(doc, sec, "enabled", true),
	}
	if p.Name == "" {
		return nil
	}
	if kind == config.KindDriver && p.Version == "" {
		r.problems.add(field(doc, sec.Name, "version"), "required value is missing")
	}

	for _, key := range sec.Keys() {
		if strings.HasPrefix(key, paramPrefix) && len(key) > len(paramPrefix) {
			v, _ := sec.Get(key)
			p.Params = append(p.Params, config.Param{Name: key[len(paramPrefix):], Value: v})
		}
	}

	if p.Version != "" && p.Enabled && r.loader.packages != nil {
		var (
			path string
			err  error
		)
		if kind == config.KindLibrary {
			path, err = r.loader.packages.LibraryPath(p.Name, p.Version)
		} else {
			path, err = r.loader.packages.DriverPath(p.Name, p.Version)
		}
		if err != nil {
			r.problems.addErr(&config.ValidationError{
				Field: field(doc, sec.Name, "version"),
				Msg:   err.Error(),
				Err:   err,
			})
		}
		p.Path = path
	}
	return p
}
