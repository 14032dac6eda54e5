package proc

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-pkgz/lgr"

	"tonorg/internal/fileutil"
)

// ScanNumbered maps the three-digit prefix of each NNN_ file in folder to
// its path. Files without the prefix are ignored here, they still show up
// in the plain MP3 listing. Rebuilt from disk on every run, this is the
// ground truth for which numbers are occupied.
func ScanNumbered(folder string) map[int]string {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return map[int]string{}
	}

	result := map[int]string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !numberPrefixRe.MatchString(name) {
			continue
		}
		num, err := strconv.Atoi(name[:3])
		if err != nil {
			continue
		}
		result[num] = filepath.Join(folder, name)
	}

	return result
}

// LocalFiles lists the folder's MP3 files in natural-sort order, deleting
// any file confirmed shorter than minDuration along the way. Files whose
// duration can't be read stay.
func LocalFiles(folder string, minDuration float64, probe ProbeFunc, l lgr.L) []string {
	files := fileutil.FindMP3Files(folder)

	var kept []string
	for _, file := range files {
		duration := probe(file)
		if duration > 0 && duration < minDuration {
			l.Logf("[INFO] removing too-short file (%.1fs): %s", duration, filepath.Base(file))
			if err := os.Remove(file); err != nil {
				l.Logf("[WARN] can't remove %s, %v", file, err)
				kept = append(kept, file)
			}
			continue
		}
		kept = append(kept, file)
	}

	return kept
}
