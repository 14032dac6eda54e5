// Package description reads the per-folder description.yaml file that
// declares whether a folder is a static album or an RSS podcast.
package description

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultMinDuration is applied when description.yaml has no min_duration.
const DefaultMinDuration = 60.0

// Kind of a source folder.
type Kind string

const (
	// Static folders hold pre-arranged MP3 files.
	Static Kind = "static"
	// RSS folders are filled from a podcast feed.
	RSS Kind = "rss"
)

// Description is the parsed content of description.yaml.
type Description struct {
	Kind        Kind
	FeedURL     string
	MinDuration float64
}

type rawDescription struct {
	Type        string   `yaml:"type"`
	FeedURL     string   `yaml:"feed_url"`
	MinDuration *float64 `yaml:"min_duration"`
}

// Load reads and validates description.yaml from folder.
func Load(folder string) (*Description, error) {
	file := filepath.Join(folder, "description.yaml")
	data, err := os.ReadFile(file) // nolint
	if err != nil {
		return nil, fmt.Errorf("can't read description file: %w", err)
	}

	raw := rawDescription{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid yaml in %s: %w", file, err)
	}

	if raw.Type == "" {
		return nil, fmt.Errorf("description file %s must contain 'type' field", file)
	}

	res := &Description{Kind: Kind(raw.Type), MinDuration: DefaultMinDuration}
	switch res.Kind {
	case Static:
	case RSS:
		if raw.FeedURL == "" {
			return nil, fmt.Errorf("description with type 'rss' must contain non-empty 'feed_url'")
		}
		res.FeedURL = raw.FeedURL
	default:
		return nil, fmt.Errorf("invalid type %q, must be 'static' or 'rss'", raw.Type)
	}

	if raw.MinDuration != nil {
		if *raw.MinDuration <= 0 {
			return nil, fmt.Errorf("'min_duration' must be a positive number")
		}
		res.MinDuration = *raw.MinDuration
	}

	return res, nil
}
