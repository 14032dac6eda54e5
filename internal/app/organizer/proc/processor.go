package proc

import (
	"github.com/go-pkgz/lgr"

	"tonorg/internal/app/organizer/podcast"
)

// Processor runs the podcast pipeline for one folder at a time:
// state load, feed fetch, numbering reconciliation, downloads, then the
// cleaned-up local listing.
type Processor struct {
	Fetcher *Fetcher
	Probe   ProbeFunc
	log     lgr.L
}

// NewProcessor wires a processor with the default fetcher.
func NewProcessor(probe ProbeFunc, l lgr.L) *Processor {
	return &Processor{Fetcher: NewFetcher(l), Probe: probe, log: l}
}

// ProcessPodcast optionally refreshes folder from feedURL, then returns
// the folder's playable files after evicting too-short ones.
func (p *Processor) ProcessPodcast(folder, feedURL string, update bool, minDuration float64) []string {
	if update {
		p.updateFromFeed(folder, feedURL, minDuration)
	}

	return LocalFiles(folder, minDuration, p.Probe, p.log)
}

func (p *Processor) updateFromFeed(folder, feedURL string, minDuration float64) {
	state := LoadState(folder, p.log)

	episodes := p.Fetcher.Fetch(feedURL)
	if len(episodes) == 0 {
		return
	}

	// feeds deliver newest first, the reconciler wants release order
	chronological := make([]podcast.Episode, len(episodes))
	for i, e := range episodes {
		chronological[len(episodes)-1-i] = e
	}

	assignments := Reconcile(chronological, ScanNumbered(folder), state, p.log)
	if len(assignments) == 0 {
		p.log.Logf("[INFO] no new episodes to download")
		return
	}

	downloader := NewDownloader(folder, minDuration, state, p.Probe, p.log)
	downloaded := 0
	for _, a := range assignments {
		file, err := downloader.Download(a)
		if err != nil {
			p.log.Logf("[WARN] can't download %q, %v", a.Episode.Title, err)
			continue
		}
		if file != "" {
			downloaded++
		}
	}

	if downloaded > 0 {
		p.log.Logf("[INFO] downloaded %d new episode(s)", downloaded)
	} else {
		p.log.Logf("[INFO] no new episodes downloaded")
	}
}
