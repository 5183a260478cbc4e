package toolchain

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoot(t *testing.T) {
	testCases := []struct {
		name    string
		exe     string
		root    string
		version string
	}{
		{"flat layout", "/tools/Xilinx/2024.2/bin/vitis", "/tools/Xilinx/2024.2", "2024.2"},
		{"vitis layout", "/opt/Xilinx/Vitis/2024.1/bin/vitis", "/opt/Xilinx/Vitis/2024.1", "2024.1"},
		{"lower case", "/opt/xilinx/vitis/2024.1/bin/vitis", "/opt/xilinx/vitis/2024.1", "2024.1"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root, version, err := ParseRoot(tc.exe)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tc.root), root)
			assert.Equal(t, tc.version, version)
		})
	}

	_, _, err := ParseRoot("/usr/local/bin/vitis")
	assert.ErrorContains(t, err, "no Xilinx/<version> component")
}

func TestDetect(t *testing.T) {
	t.Run("version gate", func(t *testing.T) {
		lookPath := func(string) (string, error) { return "/opt/Xilinx/Vitis/2023.2/bin/vitis", nil }
		_, err := Detect(lookPath, "vitis")
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
		assert.ErrorContains(t, err, "2024.1 or newer is required")
	})

	t.Run("supported", func(t *testing.T) {
		lookPath := func(string) (string, error) { return "/opt/Xilinx/2025.1/bin/vitis", nil }
		inst, err := Detect(lookPath, "vitis")
		require.NoError(t, err)
		assert.Equal(t, "2025.1", inst.Version)
	})

	t.Run("missing executable", func(t *testing.T) {
		lookPath := func(string) (string, error) { return "", errors.New("exec: not found") }
		_, err := Detect(lookPath, "vitis")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestFromRoot(t *testing.T) {
	inst, err := FromRoot("/opt/Xilinx/Vitis/2024.1/")
	require.NoError(t, err)
	assert.Equal(t, "2024.1", inst.Version)

	_, err = FromRoot("/opt/Xilinx/Vitis/current")
	assert.Error(t, err)
}

func TestCompareVersions(t *testing.T) {
	assert.Equal(t, 0, CompareVersions("1.5", "1.5.0"))
	assert.Equal(t, 1, CompareVersions("1.11.1", "1.5"))
	assert.Equal(t, -1, CompareVersions("1.4.9", "1.5"))
}

func TestInstallation_PackagePaths(t *testing.T) {
	root := t.TempDir()
	inst := &Installation{Root: root, Version: "2024.1"}
	sw := filepath.Join(root, "data", "embeddedsw")
	require.NoError(t, os.MkdirAll(filepath.Join(sw, "lib", "sw_services", "xilffs_5.2"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(sw, "ThirdParty", "sw_services", "lwip220_1.0"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(sw, "XilinxProcessorIPLib", "drivers", "uartps_3.13"), 0755))

	p, err := inst.LibraryPath("xilffs", "5.2")
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(filepath.Join(sw, "lib", "sw_services", "xilffs_5.2")), p)

	p, err = inst.LibraryPath("lwip220", "1.0")
	require.NoError(t, err)
	assert.Contains(t, p, "ThirdParty/sw_services/lwip220_1.0")

	_, err = inst.LibraryPath("xilffs", "9.9")
	assert.ErrorIs(t, err, ErrNotFound)

	p, err = inst.DriverPath("uartps", "3.13")
	require.NoError(t, err)
	assert.Contains(t, p, "drivers/uartps_3.13")

	_, err = inst.DriverPath("gpiops", "1.0")
	assert.ErrorIs(t, err, ErrNotFound)
}
