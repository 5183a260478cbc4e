package fsutil

import (
	"path/filepath"
	"strings"
)

// CommonAncestor returns the deepest directory containing every path. Paths
// are cleaned but not resolved against the file system. It returns "" when
// paths is empty or the paths share no root (different volumes).
func CommonAncestor(paths ...string) string {
	if len(paths) == 0 {
		return ""
	}
	common := splitPath(filepath.Clean(paths[0]))
	for _, p := range paths[1:] {
		parts := splitPath(filepath.Clean(p))
		n := 0
		for n < len(common) && n < len(parts) && common[n] == parts[n] {
			n++
		}
		common = common[:n]
	}
	if len(common) == 0 {
		return ""
	}
	if len(common) == 1 && common[0] == "" {
		return string(filepath.Separator)
	}
	joined := strings.Join(common, string(filepath.Separator))
	if vol := filepath.VolumeName(joined); vol != "" && joined == vol {
		return joined + string(filepath.Separator)
	}
	return joined
}

func splitPath(p string) []string {
	if p == string(filepath.Separator) {
		return []string{""}
	}
	return strings.Split(p, string(filepath.Separator))
}
