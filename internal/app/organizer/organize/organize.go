// Package organize copies playable files into the numbered output layout
// the playback device expects: {output}/{NN}/{NNN}.mp3.
package organize

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-pkgz/lgr"

	"tonorg/internal/fileutil"
)

// MaxFilesPerFolder is the device limit for one output folder.
const MaxFilesPerFolder = 255

// Organize copies files (already sorted) into outputPath under the
// two-digit prefix of folderName, renaming them 001.mp3 .. NNN.mp3.
// Returns the copied paths.
func Organize(files []string, folderName, outputPath string, l lgr.L) ([]string, error) {
	if len(files) > MaxFilesPerFolder {
		return nil, fmt.Errorf("too many MP3 files (%d), maximum is %d", len(files), MaxFilesPerFolder)
	}

	prefix, err := fileutil.TwoDigitPrefix(folderName)
	if err != nil {
		return nil, err
	}

	outputFolder := filepath.Join(outputPath, prefix)
	if err := os.MkdirAll(outputFolder, 0o755); err != nil {
		return nil, fmt.Errorf("can't create output folder %s: %w", outputFolder, err)
	}

	copied := make([]string, 0, len(files))
	for i, src := range files {
		dest := filepath.Join(outputFolder, fmt.Sprintf("%03d.mp3", i+1))
		size, err := copyFile(src, dest)
		if err != nil {
			return nil, fmt.Errorf("can't copy %s: %w", filepath.Base(src), err)
		}
		l.Logf("[INFO] %s -> %s/%s (%s)", filepath.Base(src), prefix, filepath.Base(dest), fileutil.FormatSize(size))
		copied = append(copied, dest)
	}

	return copied, nil
}

// copyFile copies src to dest preserving the source modification time.
func copyFile(src, dest string) (int64, error) {
	in, err := os.Open(src) // nolint
	if err != nil {
		return 0, err
	}
	defer in.Close() // nolint

	out, err := os.Create(dest) // nolint
	if err != nil {
		return 0, err
	}

	size, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dest)
		return 0, err
	}

	if info, serr := os.Stat(src); serr == nil {
		_ = os.Chtimes(dest, info.ModTime(), info.ModTime())
	}

	return size, nil
}
