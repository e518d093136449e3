package diagfmt

import (
	"path/filepath"
)

func formatPath(path string, mode PathMode, baseDir string) string {
	if path == "" {
		return "<input>"
	}
	switch mode {
	case PathModeBasename:
		return filepath.Base(path)
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	case PathModeRelative, PathModeAuto:
		base := baseDir
		if base == "" {
			base = "."
		}
		absBase, err1 := filepath.Abs(base)
		absPath, err2 := filepath.Abs(path)
		if err1 != nil || err2 != nil {
			return path
		}
		rel, err := filepath.Rel(absBase, absPath)
		if err != nil {
			return path
		}
		if mode == PathModeAuto && len(rel) >= len(path) {
			return filepath.ToSlash(path)
		}
		return filepath.ToSlash(rel)
	}
	return path
}
