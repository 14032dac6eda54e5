// Package audio reads playback metadata from local MP3 files.
package audio

import (
	"io"
	"os"

	"github.com/bogem/id3v2/v2"
	"github.com/go-pkgz/lgr"
	"github.com/tcolgate/mp3"
)

// Prober computes MP3 playback durations, decoding frame headers and
// summing frame times. Failures are reported as 0.0 (duration unknown),
// never as an error.
type Prober struct {
	cache *Cache
	log   lgr.L
}

// NewProber makes a prober. cache may be nil, then every call decodes.
func NewProber(cache *Cache, l lgr.L) *Prober {
	return &Prober{cache: cache, log: l}
}

// Duration returns the playback length of the file in seconds, 0.0 if it
// can't be determined.
func (p *Prober) Duration(path string) float64 {
	info, err := os.Stat(path)
	if err != nil {
		p.log.Logf("[WARN] can't stat %s, %v", path, err)
		return 0.0
	}

	if p.cache != nil {
		if d, ok := p.cache.Get(path, info); ok {
			return d
		}
	}

	d := p.decode(path)

	if p.cache != nil && d > 0 {
		if err := p.cache.Put(path, info, d); err != nil {
			p.log.Logf("[WARN] can't cache duration of %s, %v", path, err)
		}
	}

	return d
}

func (p *Prober) decode(path string) float64 {
	f, err := os.Open(path) // nolint
	if err != nil {
		p.log.Logf("[WARN] can't open %s for duration probe, %v", path, err)
		return 0.0
	}
	defer f.Close() // nolint

	dec := mp3.NewDecoder(f)
	var frame mp3.Frame
	var skipped int
	var total float64
	var frames int

	for {
		if err := dec.Decode(&frame, &skipped); err != nil {
			if err != io.EOF && frames == 0 {
				p.log.Logf("[WARN] can't read duration of %s, %v", path, err)
				return 0.0
			}
			break
		}
		total += frame.Duration().Seconds()
		frames++
	}

	return total
}

// Title reads the ID3v2 title tag, best effort. Empty string when the
// file has no readable tag.
func Title(path string) string {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return ""
	}
	defer tag.Close() // nolint

	return tag.Title()
}
