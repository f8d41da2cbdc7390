package songs

import (
	"regexp"
	"strings"
)

// ChartKind identifies the chart encoding a song was authored in.
type ChartKind string

const (
	ChartKindText ChartKind = "chart"
	ChartKindMIDI ChartKind = "mid"
)

// NPS carries measured notes-per-second figures. Available is false when the
// chart had no countable guitar content; a missing measurement is a valid
// state, not a zero.
type NPS struct {
	Avg       float64
	Peak      float64
	Available bool
}

// Song is the normalized metadata record for one library entry. It is
// created by a scan, mutated only by a re-scan, and read-only during tiering.
type Song struct {
	// Fingerprint is the uppercase hex MD5 of the chart asset and the
	// song's identity across scans, the cache, and exported setlists.
	Fingerprint string

	Title   string
	Artist  string
	Charter string
	Genre   string
	Album   string
	Year    int

	LengthSeconds int
	DiffGuitar    int

	ChartKind      ChartKind
	DescriptorPath string
	ChartPath      string

	NPS NPS

	OfficialCharter bool
	MemeGenre       bool
	VeryLong        bool

	Eligible         bool
	IneligibleReason string

	Score float64
}

// VeryLongThresholdSeconds marks songs long enough to keep out of early tiers.
const VeryLongThresholdSeconds = 7 * 60

var colorTagRe = regexp.MustCompile(`(?i)</?color\b[^>]*>`)

// StripColorTags removes Clone Hero-style <color=...> markup from metadata.
func StripColorTags(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(colorTagRe.ReplaceAllString(text, ""))
}

// officialCharters are charters whose work ships with the commercial games;
// their difficulty ratings run one step hotter than community norms.
var officialCharters = map[string]struct{}{
	"harmonix":  {},
	"neversoft": {},
}

// IsOfficialCharter reports whether the charter is a recognized official one.
func IsOfficialCharter(charter string) bool {
	_, ok := officialCharters[strings.ToLower(strings.TrimSpace(charter))]
	return ok
}

// memeGenres is the explicit genre table used for meme exclusion. Matching is
// exact on the normalized genre string so every rule stays testable.
var memeGenres = map[string]struct{}{
	"meme":             {},
	"memes":            {},
	"heavy memes":      {},
	"meme mashup":      {},
	"nu-disco meme":    {},
	"drum & bass meme": {},
}

// IsMemeGenre reports whether the genre is in the meme exclusion table.
func IsMemeGenre(genre string) bool {
	_, ok := memeGenres[strings.ToLower(strings.TrimSpace(genre))]
	return ok
}

// Normalize strips markup from display fields, defaults the genre, and
// derives the official/meme/very-long flags.
func (s *Song) Normalize() {
	s.Title = StripColorTags(s.Title)
	s.Artist = StripColorTags(s.Artist)
	s.Charter = StripColorTags(s.Charter)
	s.Genre = StripColorTags(s.Genre)
	if s.Genre == "" {
		s.Genre = "Unknown"
	}
	s.OfficialCharter = IsOfficialCharter(s.Charter)
	s.MemeGenre = IsMemeGenre(s.Genre)
	s.VeryLong = s.LengthSeconds >= VeryLongThresholdSeconds
}

// Less orders songs by composite score with a full (artist, title) lexical
// tie-break so identical input always yields identical ordering.
func Less(a, b *Song) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	if a.Artist != b.Artist {
		return a.Artist < b.Artist
	}
	if a.Title != b.Title {
		return a.Title < b.Title
	}
	return a.Fingerprint < b.Fingerprint
}
