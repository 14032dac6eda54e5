package proc

import (
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/mmcdole/gofeed"

	"tonorg/internal/app/organizer/podcast"
)

// Fetcher retrieves an RSS/Atom feed and flattens its entries into
// episodes. Entries without a resolvable audio enclosure are dropped.
// A feed that can't be fetched or parsed yields no episodes, not an
// error: the folder keeps working with whatever is on disk.
type Fetcher struct {
	Client *http.Client
	log    lgr.L
}

// NewFetcher makes a feed fetcher with a bounded overall timeout.
func NewFetcher(l lgr.L) *Fetcher {
	return &Fetcher{Client: &http.Client{Timeout: 30 * time.Second}, log: l}
}

// Fetch returns the feed's episodes in delivery order, conventionally
// newest first.
func (f *Fetcher) Fetch(feedURL string) []podcast.Episode {
	f.log.Logf("[INFO] fetching rss feed %s", feedURL)

	resp, err := f.Client.Get(feedURL)
	if err != nil {
		f.log.Logf("[WARN] can't fetch feed %s, %v", feedURL, err)
		return nil
	}
	defer resp.Body.Close() // nolint

	if resp.StatusCode != http.StatusOK {
		f.log.Logf("[WARN] feed %s returned status %d", feedURL, resp.StatusCode)
		return nil
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		f.log.Logf("[WARN] can't parse feed %s, %v", feedURL, err)
		return nil
	}

	if len(feed.Items) == 0 {
		f.log.Logf("[WARN] no entries found in feed %s", feedURL)
		return nil
	}
	f.log.Logf("[INFO] found %d episode(s) in feed", len(feed.Items))

	var episodes []podcast.Episode
	for _, item := range feed.Items {
		enclosureURL := resolveEnclosure(item)
		if enclosureURL == "" {
			continue
		}
		title := item.Title
		if title == "" {
			title = "Unknown Episode"
		}
		episodes = append(episodes, podcast.Episode{Title: title, EnclosureURL: enclosureURL})
	}

	return episodes
}

// resolveEnclosure picks the entry's audio URL: first enclosure with an
// audio/* media type, falling back to links that look like audio files
// (gofeed doesn't keep link media types).
func resolveEnclosure(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "audio/") && enc.URL != "" {
			return enc.URL
		}
	}

	for _, link := range item.Links {
		if isAudioURL(link) {
			return link
		}
	}

	return ""
}

var audioExtensions = map[string]struct{}{
	".mp3": {}, ".m4a": {}, ".m4b": {}, ".aac": {}, ".ogg": {}, ".opus": {}, ".wav": {},
}

func isAudioURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	_, ok := audioExtensions[strings.ToLower(path.Ext(u.Path))]
	return ok
}
