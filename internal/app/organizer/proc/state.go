// Package proc implements the podcast pipeline: feed fetch, numbering
// reconciliation, episode download and local folder maintenance.
package proc

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-pkgz/lgr"
)

const (
	downloadedFile = ".downloaded_files"
	rejectedFile   = ".rejected_files"
	mappingFile    = ".url_mapping"
)

// State tracks which enclosure URLs were downloaded or rejected and which
// three-digit number each URL owns. All three sets live in flat text
// files inside the podcast folder and are appended to on every change,
// so a crash between episodes loses nothing. Persistence failures are
// warnings: in-memory state still advances for the rest of the run.
type State struct {
	folder string
	log    lgr.L

	downloaded  map[string]struct{}
	rejected    map[string]struct{}
	urlToNumber map[string]int
	numberToURL map[int]string
}

// LoadState reads the three state files from folder. Missing files mean
// empty sets, unreadable ones are warned about and treated as empty.
func LoadState(folder string, l lgr.L) *State {
	s := &State{
		folder:      folder,
		log:         l,
		downloaded:  map[string]struct{}{},
		rejected:    map[string]struct{}{},
		urlToNumber: map[string]int{},
		numberToURL: map[int]string{},
	}

	for _, url := range s.readLines(downloadedFile) {
		s.downloaded[url] = struct{}{}
	}
	for _, url := range s.readLines(rejectedFile) {
		s.rejected[url] = struct{}{}
	}
	for _, line := range s.readLines(mappingFile) {
		url, numStr, found := strings.Cut(line, "|")
		if !found {
			s.log.Logf("[WARN] malformed mapping line %q in %s", line, folder)
			continue
		}
		num, err := strconv.Atoi(numStr)
		if err != nil {
			s.log.Logf("[WARN] malformed mapping number %q in %s", line, folder)
			continue
		}
		// last line wins for a repeated url, same for a repeated number
		s.urlToNumber[url] = num
		s.numberToURL[num] = url
	}

	return s
}

func (s *State) readLines(name string) []string {
	path := filepath.Join(s.folder, name)
	f, err := os.Open(path) // nolint
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Logf("[WARN] can't read %s, %v", path, err)
		}
		return nil
	}
	defer f.Close() // nolint

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		s.log.Logf("[WARN] error reading %s, %v", path, err)
	}
	return lines
}

func (s *State) appendLine(name, line string) {
	path := filepath.Join(s.folder, name)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) // nolint
	if err != nil {
		s.log.Logf("[WARN] can't persist to %s, %v", path, err)
		return
	}
	defer f.Close() // nolint

	if _, err := f.WriteString(line + "\n"); err != nil {
		s.log.Logf("[WARN] can't persist to %s, %v", path, err)
	}
}

// IsDownloaded reports whether url was downloaded and accepted before.
func (s *State) IsDownloaded(url string) bool {
	_, ok := s.downloaded[url]
	return ok
}

// IsRejected reports whether url was downloaded once and found too short.
func (s *State) IsRejected(url string) bool {
	_, ok := s.rejected[url]
	return ok
}

// Number returns the number assigned to url, if any.
func (s *State) Number(url string) (int, bool) {
	n, ok := s.urlToNumber[url]
	return n, ok
}

// URLForNumber is the reverse lookup: which url owns a number.
func (s *State) URLForNumber(number int) (string, bool) {
	url, ok := s.numberToURL[number]
	return url, ok
}

// RecordDownloaded adds url to the downloaded set and appends it to disk.
func (s *State) RecordDownloaded(url string) {
	s.downloaded[url] = struct{}{}
	s.appendLine(downloadedFile, url)
}

// RecordRejected adds url to the rejected set and appends it to disk.
func (s *State) RecordRejected(url string) {
	s.rejected[url] = struct{}{}
	s.appendLine(rejectedFile, url)
}

// RecordMapping stores the url -> number assignment and appends it to disk.
func (s *State) RecordMapping(url string, number int) {
	s.urlToNumber[url] = number
	s.numberToURL[number] = url
	s.appendLine(mappingFile, fmt.Sprintf("%s|%d", url, number))
}
