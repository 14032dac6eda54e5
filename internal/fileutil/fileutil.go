// Package fileutil holds path and sorting helpers shared by handlers.
package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var digitRunRe = regexp.MustCompile(`\d+`)

// ExpandPath resolves a leading ~ to the user home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// IsMP3 reports whether path has a .mp3 suffix, case-insensitive.
func IsMP3(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".mp3")
}

type naturalChunk struct {
	num   int64
	text  string
	isNum bool
}

func naturalKey(s string) []naturalChunk {
	s = strings.ToLower(s)
	var chunks []naturalChunk
	last := 0
	for _, loc := range digitRunRe.FindAllStringIndex(s, -1) {
		if loc[0] > last {
			chunks = append(chunks, naturalChunk{text: s[last:loc[0]]})
		}
		n, err := strconv.ParseInt(s[loc[0]:loc[1]], 10, 64)
		if err != nil {
			chunks = append(chunks, naturalChunk{text: s[loc[0]:loc[1]]})
		} else {
			chunks = append(chunks, naturalChunk{num: n, isNum: true})
		}
		last = loc[1]
	}
	if last < len(s) {
		chunks = append(chunks, naturalChunk{text: s[last:]})
	}
	return chunks
}

// NaturalLess compares two strings treating digit runs as numbers,
// so "file2" sorts before "file10".
func NaturalLess(a, b string) bool {
	ka, kb := naturalKey(a), naturalKey(b)
	for i := 0; i < len(ka) && i < len(kb); i++ {
		ca, cb := ka[i], kb[i]
		switch {
		case ca.isNum && cb.isNum:
			if ca.num != cb.num {
				return ca.num < cb.num
			}
		case !ca.isNum && !cb.isNum:
			if ca.text != cb.text {
				return ca.text < cb.text
			}
		default:
			// number sorts before text at the same position
			return ca.isNum
		}
	}
	return len(ka) < len(kb)
}

// SortNatural sorts paths in place by the natural order of their base names.
func SortNatural(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		return NaturalLess(filepath.Base(paths[i]), filepath.Base(paths[j]))
	})
}

// FindMP3Files lists MP3 files under dir, recursively, in natural-sort order.
// A missing or non-directory dir yields an empty list.
func FindMP3Files(dir string) []string {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil
	}

	var files []string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && IsMP3(path) {
			files = append(files, path)
		}
		return nil
	})

	SortNatural(files)
	return files
}

var twoDigitRe = regexp.MustCompile(`^\d{2}`)

// TwoDigitPrefix extracts the leading two-digit prefix from a folder name,
// e.g. "01_MyAlbum" -> "01".
func TwoDigitPrefix(folderName string) (string, error) {
	m := twoDigitRe.FindString(folderName)
	if m == "" {
		return "", fmt.Errorf("folder name %q does not start with a two-digit prefix", folderName)
	}
	return m, nil
}

// FormatSize renders a byte count in human-readable units.
func FormatSize(size int64) string {
	s := float64(size)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if s < 1024.0 {
			return fmt.Sprintf("%.1f %s", s, unit)
		}
		s /= 1024.0
	}
	return fmt.Sprintf("%.1f TB", s)
}
