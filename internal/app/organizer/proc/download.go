package proc

import (
	"crypto/md5" // nolint
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-pkgz/lgr"

	"tonorg/internal/app/organizer/audio"
	"tonorg/internal/app/organizer/podcast"
	"tonorg/internal/fileutil"
)

const downloadChunkSize = 8192

// ProbeFunc reports the playback duration of a local file in seconds,
// 0.0 when unknown.
type ProbeFunc func(path string) float64

// Downloader streams assigned episodes into the podcast folder. A
// finished file is probed and either committed (downloaded set plus
// url->number mapping) or, when confirmed shorter than MinDuration,
// deleted and recorded as rejected.
type Downloader struct {
	Client      *http.Client
	Folder      string
	MinDuration float64
	State       *State
	Probe       ProbeFunc
	log         lgr.L
}

// NewDownloader makes a downloader with a bounded wait for the initial
// response, the body itself may stream as long as it needs.
func NewDownloader(folder string, minDuration float64, state *State, probe ProbeFunc, l lgr.L) *Downloader {
	client := &http.Client{Transport: &http.Transport{ResponseHeaderTimeout: 30 * time.Second}}
	return &Downloader{Client: client, Folder: folder, MinDuration: minDuration, State: state, Probe: probe, log: l}
}

// Download fetches one assigned episode. The returned path is empty when
// the episode produced no file (destination collision or rejection); an
// error means this episode failed and the batch should move on.
func (d *Downloader) Download(a podcast.Assignment) (string, error) {
	name := fmt.Sprintf("%03d_%s", a.Number, episodeBaseName(a.Episode))
	dest := filepath.Join(d.Folder, name)

	if _, err := os.Stat(dest); err == nil {
		d.log.Logf("[WARN] destination %s already exists, skipping %q", dest, a.Episode.Title)
		return "", nil
	}

	d.log.Logf("[INFO] downloading %q as %s", a.Episode.Title, name)

	if err := d.fetchToFile(a.Episode.EnclosureURL, dest); err != nil {
		return "", err
	}

	duration := d.Probe(dest)
	if duration > 0 && duration < d.MinDuration {
		d.log.Logf("[WARN] file too short (%.1fs < %.1fs), discarding %s", duration, d.MinDuration, name)
		if err := os.Remove(dest); err != nil {
			d.log.Logf("[WARN] can't remove rejected file %s, %v", dest, err)
		}
		d.State.RecordRejected(a.Episode.EnclosureURL)
		return "", nil
	}

	d.State.RecordDownloaded(a.Episode.EnclosureURL)
	d.State.RecordMapping(a.Episode.EnclosureURL, a.Number)

	if info, err := os.Stat(dest); err == nil {
		if title := audio.Title(dest); title != "" {
			d.log.Logf("[INFO] downloaded %s (%s, %.1fs), tag title %q", name, fileutil.FormatSize(info.Size()), duration, title)
		} else {
			d.log.Logf("[INFO] downloaded %s (%s, %.1fs)", name, fileutil.FormatSize(info.Size()), duration)
		}
	}

	return dest, nil
}

// fetchToFile streams the body to dest in fixed-size chunks, removing the
// partial file on any failure.
func (d *Downloader) fetchToFile(srcURL, dest string) error {
	resp, err := d.Client.Get(srcURL)
	if err != nil {
		return fmt.Errorf("can't fetch %s: %w", srcURL, err)
	}
	defer resp.Body.Close() // nolint

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, srcURL)
	}

	f, err := os.Create(dest) // nolint
	if err != nil {
		return fmt.Errorf("can't create %s: %w", dest, err)
	}

	buf := make([]byte, downloadChunkSize)
	_, copyErr := io.CopyBuffer(f, resp.Body, buf)
	closeErr := f.Close()

	if copyErr != nil || closeErr != nil {
		if err := os.Remove(dest); err != nil {
			d.log.Logf("[WARN] can't remove partial file %s, %v", dest, err)
		}
		if copyErr != nil {
			return fmt.Errorf("download of %s failed: %w", srcURL, copyErr)
		}
		return fmt.Errorf("can't finish %s: %w", dest, closeErr)
	}

	return nil
}

var numberPrefixRe = regexp.MustCompile(`^\d{3}_`)

// episodeBaseName derives the destination base name: the url's file name
// when it is already an mp3, otherwise a sanitized episode title,
// otherwise a short hash of the url. Any pre-existing three-digit prefix
// is stripped so the assigned number is the only one.
func episodeBaseName(e podcast.Episode) string {
	name := ""
	if u, err := url.Parse(e.EnclosureURL); err == nil {
		candidate := path.Base(u.Path)
		if candidate != "." && candidate != "/" && strings.HasSuffix(strings.ToLower(candidate), ".mp3") {
			name = candidate
		}
	}

	if name == "" {
		name = sanitizeTitle(e.Title)
	}
	if name == "" {
		hash := md5.Sum([]byte(e.EnclosureURL)) // nolint
		name = fmt.Sprintf("episode_%x", hash[:4])
	}

	if !strings.HasSuffix(strings.ToLower(name), ".mp3") {
		name += ".mp3"
	}

	return numberPrefixRe.ReplaceAllString(name, "")
}

func sanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}
