// Package organizer walks the input tree and turns every album and
// podcast folder into the numbered output layout.
package organizer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pkgz/lgr"

	"tonorg/internal/app/organizer/description"
	"tonorg/internal/app/organizer/organize"
	"tonorg/internal/app/organizer/proc"
	"tonorg/internal/app/organizer/upload"
	"tonorg/internal/configs"
	"tonorg/internal/fileutil"
)

// App ties the folder handlers together.
type App struct {
	config    *configs.Conf
	processor *proc.Processor
	s3        *upload.S3Store
	log       lgr.L

	inputPath  string
	outputPath string
}

// Stats of one organize run.
type Stats struct {
	Processed   int
	FilesCopied int
	Errors      int
}

// NewApplication creates the app. s3 may be nil when uploads are not
// configured.
func NewApplication(conf *configs.Conf, processor *proc.Processor, s3 *upload.S3Store, l lgr.L) (*App, error) {
	app := App{
		config:     conf,
		processor:  processor,
		s3:         s3,
		log:        l,
		inputPath:  fileutil.ExpandPath(conf.Input),
		outputPath: fileutil.ExpandPath(conf.Output),
	}

	if err := os.MkdirAll(app.inputPath, 0o755); err != nil {
		return nil, fmt.Errorf("can't create input folder: %w", err)
	}
	if err := os.MkdirAll(app.outputPath, 0o755); err != nil {
		return nil, fmt.Errorf("can't create output folder: %w", err)
	}

	return &app, nil
}

// FindFolders lists input folders carrying a two-digit prefix, the only
// ones the device layout can address.
func (a *App) FindFolders() []string {
	entries, err := os.ReadDir(a.inputPath)
	if err != nil {
		a.log.Logf("[WARN] can't read input folder %s, %v", a.inputPath, err)
		return nil
	}

	var folders []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := fileutil.TwoDigitPrefix(entry.Name()); err != nil {
			continue
		}
		folders = append(folders, filepath.Join(a.inputPath, entry.Name()))
	}

	return folders
}

// Organize processes every valid input folder sequentially and copies
// the results into the output tree. update refreshes RSS feeds first.
func (a *App) Organize(update bool) Stats {
	folders := a.FindFolders()
	if len(folders) == 0 {
		a.log.Logf("[WARN] no valid album/podcast folders found in %s", a.inputPath)
		return Stats{}
	}
	a.log.Logf("[INFO] found %d album/podcast folder(s)", len(folders))

	stats := Stats{}
	for _, folder := range folders {
		copied, err := a.organizeFolder(folder, update)
		if err != nil {
			a.log.Logf("[ERROR] can't process %s, %v", filepath.Base(folder), err)
			stats.Errors++
			continue
		}
		if copied > 0 {
			stats.Processed++
			stats.FilesCopied += copied
		}
	}

	a.log.Logf("[INFO] processed %d folder(s), copied %d file(s), %d error(s)",
		stats.Processed, stats.FilesCopied, stats.Errors)
	return stats
}

func (a *App) organizeFolder(folder string, update bool) (int, error) {
	name := filepath.Base(folder)

	desc, err := description.Load(folder)
	if err != nil {
		return 0, err
	}

	var files []string
	switch desc.Kind {
	case description.Static:
		a.log.Logf("[INFO] processing static album %s", name)
		files = fileutil.FindMP3Files(folder)
	case description.RSS:
		a.log.Logf("[INFO] processing podcast %s", name)
		files = a.processor.ProcessPodcast(folder, desc.FeedURL, update, desc.MinDuration)
	}

	if len(files) == 0 {
		a.log.Logf("[WARN] no MP3 files found in %s", name)
		return 0, nil
	}

	copied, err := organize.Organize(files, name, a.outputPath, a.log)
	if err != nil {
		return 0, err
	}

	a.log.Logf("[INFO] organized %d file(s) from %s", len(copied), name)
	return len(copied), nil
}

// Upload mirrors the output tree to s3 storage.
func (a *App) Upload(ctx context.Context) error {
	if a.s3 == nil {
		return fmt.Errorf("cloud storage is not configured")
	}
	return a.s3.UploadTree(ctx, a.outputPath)
}
