package proc

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-pkgz/lgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feedServer serves an RSS feed listing the given episode names newest
// first, plus the episode bodies themselves.
func feedServer(t *testing.T, episodes ...string) *httptest.Server {
	t.Helper()

	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/feed.xml" {
			var items strings.Builder
			for i := len(episodes) - 1; i >= 0; i-- { // newest first
				fmt.Fprintf(&items, `<item><title>%s</title><enclosure url="%s/%s.mp3" type="audio/mpeg" length="10"/></item>`,
					episodes[i], ts.URL, episodes[i])
			}
			w.Header().Set("Content-Type", "application/rss+xml")
			fmt.Fprintf(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>t</title>%s</channel></rss>`, items.String())
			return
		}
		_, _ = w.Write([]byte("payload for " + r.URL.Path))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestProcessor(probe ProbeFunc) *Processor {
	return NewProcessor(probe, lgr.Default())
}

func TestProcessPodcastEndToEnd(t *testing.T) {
	ts := feedServer(t, "ep1", "ep2", "ep3")
	folder := t.TempDir()

	p := newTestProcessor(fixedProbe(120))
	files := p.ProcessPodcast(folder, ts.URL+"/feed.xml", true, 60)

	require.Len(t, files, 3)
	assert.Equal(t, "001_ep1.mp3", filepath.Base(files[0]))
	assert.Equal(t, "002_ep2.mp3", filepath.Base(files[1]))
	assert.Equal(t, "003_ep3.mp3", filepath.Base(files[2]))
}

func TestProcessPodcastIdempotent(t *testing.T) {
	ts := feedServer(t, "ep1", "ep2")
	folder := t.TempDir()

	p := newTestProcessor(fixedProbe(120))
	first := p.ProcessPodcast(folder, ts.URL+"/feed.xml", true, 60)
	require.Len(t, first, 2)

	mtimes := map[string]int64{}
	for _, f := range first {
		info, err := os.Stat(f)
		require.NoError(t, err)
		mtimes[f] = info.ModTime().UnixNano()
	}

	second := p.ProcessPodcast(folder, ts.URL+"/feed.xml", true, 60)
	assert.Equal(t, first, second)
	for _, f := range second {
		info, err := os.Stat(f)
		require.NoError(t, err)
		assert.Equal(t, mtimes[f], info.ModTime().UnixNano(), "file %s was re-downloaded", f)
	}
}

func TestProcessPodcastShortEpisodeRejectedForGood(t *testing.T) {
	ts := feedServer(t, "clip")
	folder := t.TempDir()

	p := newTestProcessor(fixedProbe(30))
	files := p.ProcessPodcast(folder, ts.URL+"/feed.xml", true, 60)
	assert.Empty(t, files)

	state := LoadState(folder, lgr.Default())
	assert.True(t, state.IsRejected(ts.URL+"/clip.mp3"))
	assert.False(t, state.IsDownloaded(ts.URL+"/clip.mp3"))

	// second run must not attempt it again
	files = p.ProcessPodcast(folder, ts.URL+"/feed.xml", true, 60)
	assert.Empty(t, files)
	entries, err := os.ReadDir(folder)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".mp3"), "unexpected mp3 %s", e.Name())
	}
}

func TestProcessPodcastOrphanKeepsNumber(t *testing.T) {
	ts := feedServer(t, "ep1")
	folder := t.TempDir()

	// number 001 belongs to a feed-pruned episode still on disk
	orphan := filepath.Join(folder, "001_gone.mp3")
	require.NoError(t, os.WriteFile(orphan, []byte("orphan"), 0o644))
	state := LoadState(folder, lgr.Default())
	state.RecordMapping("https://elsewhere/gone.mp3", 1)

	p := newTestProcessor(fixedProbe(120))
	files := p.ProcessPodcast(folder, ts.URL+"/feed.xml", true, 60)

	require.Len(t, files, 2)
	assert.FileExists(t, orphan)
	assert.FileExists(t, filepath.Join(folder, "002_ep1.mp3"))
}

func TestProcessPodcastNoUpdate(t *testing.T) {
	folder := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(folder, "001_a.mp3"), []byte("x"), 0o644))

	p := newTestProcessor(fixedProbe(120))
	files := p.ProcessPodcast(folder, "http://127.0.0.1:1/feed.xml", false, 60)
	require.Len(t, files, 1)
}

func TestProcessPodcastUnreachableFeed(t *testing.T) {
	folder := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(folder, "001_a.mp3"), []byte("x"), 0o644))

	p := newTestProcessor(fixedProbe(120))
	files := p.ProcessPodcast(folder, "http://127.0.0.1:1/feed.xml", true, 60)
	require.Len(t, files, 1)
}
