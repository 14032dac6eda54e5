// Package podcast holds the records shared by the feed pipeline.
package podcast

// Episode is one downloadable feed entry. Identity is the enclosure URL,
// compared as an exact string.
type Episode struct {
	Title        string
	EnclosureURL string
}

// Assignment pairs a new episode with the three-digit number the
// reconciler picked for it.
type Assignment struct {
	Episode Episode
	Number  int
}
