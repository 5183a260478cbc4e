package toolchain

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/mod/semver"
)

// MinVersion is the oldest supported toolchain release.
const MinVersion = "2024.1"

// ErrNotFound is returned when a toolchain component cannot be located.
var ErrNotFound = errors.New("not found")

// ErrUnsupportedVersion is returned for installations older than MinVersion.
var ErrUnsupportedVersion = errors.New("unsupported toolchain version")

// Installation is a detected toolchain installation.
type Installation struct {
	Root    string
	Version string
}

// LookPathFunc resolves an executable name on PATH.
type LookPathFunc func(file string) (string, error)

// Detect locates the installation from the executable named command. The
// executable is expected under `.../Xilinx/<version>/...` or
// `.../Xilinx/Vitis/<version>/...`.
func Detect(lookPath LookPathFunc, command string) (*Installation, error) {
	exe, err := lookPath(command)
	if err != nil {
		return nil, fmt.Errorf("%s CLI %w on PATH: %w", command, ErrNotFound, err)
	}
	root, version, err := ParseRoot(exe)
	if err != nil {
		return nil, err
	}
	return newInstallation(root, version)
}

// FromRoot builds an Installation from an explicitly configured root whose
// last element is the version.
func FromRoot(root string) (*Installation, error) {
	root = filepath.Clean(root)
	return newInstallation(root, filepath.Base(root))
}

func newInstallation(root, version string) (*Installation, error) {
	if !versionAtLeast(version, MinVersion) {
		return nil, fmt.Errorf("%w %q at %s; %s or newer is required", ErrUnsupportedVersion, version, root, MinVersion)
	}
	return &Installation{Root: root, Version: version}, nil
}

// ParseRoot extracts the installation root and version from the path of the
// toolchain executable.
func ParseRoot(exe string) (root, version string, err error) {
	clean := filepath.ToSlash(filepath.Clean(exe))
	parts := strings.Split(clean, "/")
	for i, part := range parts {
		if !strings.EqualFold(part, "xilinx") || i+1 >= len(parts) {
			continue
		}
		next := i + 1
		if strings.EqualFold(parts[next], "vitis") {
			next++
		}
		if next >= len(parts) {
			break
		}
		root = strings.Join(parts[:next+1], "/")
		if root == "" {
			root = "/"
		}
		return filepath.FromSlash(root), parts[next], nil
	}
	return "", "", fmt.Errorf("cannot determine toolchain root from %s: no Xilinx/<version> component", exe)
}

func versionAtLeast(version, min string) bool {
	v := "v" + strings.TrimPrefix(version, "v")
	if !semver.IsValid(v) {
		return false
	}
	return semver.Compare(v, "v"+min) >= 0
}

// CompareVersions compares two dotted release numbers. Invalid versions sort
// before valid ones.
func CompareVersions(a, b string) int {
	return semver.Compare("v"+strings.TrimPrefix(a, "v"), "v"+strings.TrimPrefix(b, "v"))
}

func (i *Installation) embeddedSW() string {
	return filepath.Join(i.Root, "data", "embeddedsw")
}

// LibraryPath resolves the source directory of a versioned library.
func (i *Installation) LibraryPath(name, version string) (string, error) {
	dir := name + "_" + version
	for _, base := range [][]string{
		{"ThirdParty", "sw_services"},
		{"lib", "sw_services"},
		{"lib", "bsp"},
	} {
		candidate := filepath.Join(append([]string{i.embeddedSW()}, append(base, dir)...)...)
		if isDir(candidate) {
			return filepath.ToSlash(candidate), nil
		}
	}
	return "", fmt.Errorf("library %s version %s %w under %s", name, version, ErrNotFound, i.embeddedSW())
}

// DriverPath resolves the source directory of a versioned driver.
func (i *Installation) DriverPath(name, version string) (string, error) {
	candidate := filepath.Join(i.embeddedSW(), "XilinxProcessorIPLib", "drivers", name+"_"+version)
	if isDir(candidate) {
		return filepath.ToSlash(candidate), nil
	}
	return "", fmt.Errorf("driver %s version %s %w at %s", name, version, ErrNotFound, candidate)
}

// BundledNinja is the build executor shipped with the installation.
func (i *Installation) BundledNinja() string {
	bin := "ninja"
	plat := "lnx64"
	if runtime.GOOS == "windows" {
		bin = "ninja.exe"
		plat = "win64"
	}
	return filepath.Join(i.Root, "tps", plat, "lopper-1.1.0-packages", "min_sdk", "usr", "bin", bin)
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
