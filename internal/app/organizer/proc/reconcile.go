package proc

import (
	"github.com/go-pkgz/lgr"

	"tonorg/internal/app/organizer/podcast"
)

// maxNumber is the last usable three-digit prefix.
const maxNumber = 999

// Reconcile decides which feed episodes need downloading and which number
// each one gets. episodes must come oldest first, so new episodes are
// numbered in release order and playback order on the device matches.
//
// Numbers already carried by local files whose url is gone from the feed
// (orphans) stay reserved and are never handed out. Episodes that already
// have a matching local file only advance the cursor. Rejected urls are
// skipped for good.
func Reconcile(episodes []podcast.Episode, localByNumber map[int]string, state *State, l lgr.L) []podcast.Assignment {
	feedURLs := make(map[string]struct{}, len(episodes))
	for _, e := range episodes {
		feedURLs[e.EnclosureURL] = struct{}{}
	}

	reserved := reservedNumbers(localByNumber, feedURLs, state)

	var assignments []podcast.Assignment
	nextNumber := 1
	for _, e := range episodes {
		url := e.EnclosureURL

		if state.IsRejected(url) {
			continue
		}

		if num, ok := state.Number(url); ok {
			if _, onDisk := localByNumber[num]; onDisk {
				// already satisfied, keep the cursor ahead of it
				if num >= nextNumber {
					nextNumber = num + 1
				}
				continue
			}
		}

		// downloaded once and later removed from disk, leave it gone
		if state.IsDownloaded(url) {
			continue
		}

		for {
			if _, taken := reserved[nextNumber]; !taken {
				break
			}
			nextNumber++
		}

		if nextNumber > maxNumber {
			l.Logf("[WARN] no free number left for %q, skipping", e.Title)
			continue
		}

		assignments = append(assignments, podcast.Assignment{Episode: e, Number: nextNumber})
		nextNumber++
	}

	return assignments
}

// reservedNumbers collects numbers owned by local files the current feed
// no longer lists, either because the url->number mapping has no entry
// for them or because the mapped url dropped out of the feed.
func reservedNumbers(localByNumber map[int]string, feedURLs map[string]struct{}, state *State) map[int]struct{} {
	reserved := map[int]struct{}{}
	for num := range localByNumber {
		url, ok := state.URLForNumber(num)
		if !ok {
			reserved[num] = struct{}{}
			continue
		}
		if _, inFeed := feedURLs[url]; !inFeed {
			reserved[num] = struct{}{}
		}
	}
	return reserved
}
