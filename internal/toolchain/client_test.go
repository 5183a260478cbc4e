package toolchain

import (
	"testing"

	"github.com/GNPower/Vitis/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestDeclared(t *testing.T) {
	flags := "-O2"
	stdout := "ps7_uart_1"

	assert.Empty(t, Declared(&config.Domain{}))

	d := &config.Domain{
		CompilerFlags: &flags,
		Stdout:        &stdout,
		Libraries: []*config.Package{
			{Name: "xilffs"},
			{Name: "xilrsa", Params: []config.Param{{Name: "p", Value: "1"}}},
		},
		Drivers: []*config.Package{{Name: "uartps", Version: "3.13"}},
	}
	assert.Equal(t, []Category{
		CategoryCompilerFlags,
		CategoryOSBindings,
		CategoryLibraries,
		CategoryLibraryParams,
		CategoryDrivers,
	}, Declared(d))
}

func TestApplyResult_Unpersisted(t *testing.T) {
	res := ApplyResult{Persisted: map[Category]bool{CategoryLibraries: true, CategoryDrivers: true}}
	declared := []Category{CategoryCompilerFlags, CategoryLibraries, CategoryDrivers, CategoryOSBindings}
	assert.Equal(t, []Category{CategoryCompilerFlags, CategoryOSBindings}, res.Unpersisted(declared))

	assert.Equal(t, declared, ApplyResult{}.Unpersisted(declared))
}
