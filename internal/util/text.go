package util

import (
	"path/filepath"
	"strings"
)

// IsDigits reports whether s is non-empty and made only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// OutputPrefix strips everything from the first dot of the file name and, when outDir
// is set, relocates the result under it.
func OutputPrefix(inputPath, outDir string) string {
	dir, name := filepath.Split(inputPath)
	if i := strings.Index(name, "."); i > 0 {
		name = name[:i]
	}
	if strings.TrimSpace(outDir) != "" {
		dir = outDir
	}
	return filepath.Join(dir, name)
}

func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
