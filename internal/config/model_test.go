package config

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatform_Lookups(t *testing.T) {
	p := &Platform{
		Name:    "zybo",
		Domains: []*Domain{{Name: "standalone_domain"}, {Name: "freertos_domain"}},
	}
	assert.Equal(t, "zybo_platform", p.ComponentName())

	d, ok := p.Domain("freertos_domain")
	require.True(t, ok)
	assert.Equal(t, "freertos_domain", d.Name)

	_, ok = p.Domain("Standalone_domain")
	assert.False(t, ok, "domain lookup is case-sensitive")
}

func TestHardwareSource_Valid(t *testing.T) {
	for _, s := range []HardwareSource{SourceXSA, SourceFixed, SourcePlatform} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, HardwareSource("XSA").Valid())
}

func TestApplication_HasSources(t *testing.T) {
	assert.False(t, (&Application{}).HasSources())
	assert.True(t, (&Application{Compiler: Compiler{SourceFolders: []string{"/src"}}}).HasSources())
	assert.True(t, (&Application{Linker: Linker{Script: "/ld/lscript.ld"}}).HasSources())
}

func TestDomain_HasSettings(t *testing.T) {
	assert.False(t, (&Domain{}).HasSettings())
	flags := "-DDEBUG"
	assert.True(t, (&Domain{CompilerFlags: &flags}).HasSettings())
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("loading project: %w", Invalid("application.conf[application].DOMAIN", "no domain named %q", "x"))

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "application.conf[application].DOMAIN", vErr.Field)
	assert.EqualError(t, vErr, `invalid application.conf[application].DOMAIN: no domain named "x"`)
}
