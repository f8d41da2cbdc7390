package tiering

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"chcareer/internal/config"
	"chcareer/internal/songs"
)

// Rule names used in violation annotations.
const (
	RuleArtistCap = "artist-cap"
	RuleLongSong  = "long-song"
)

// ErrEmptyPool reports a build attempt with no eligible songs.
var ErrEmptyPool = errors.New("no eligible songs in pool")

// Options are the tier-building rules.
type Options struct {
	TierCount    int
	SongsPerTier int

	// ArtistCap limits how often one artist appears per tier; zero means
	// unlimited.
	ArtistCap int

	GenreGrouping     bool
	MinDifficulty     int
	ExcludeMemeGenres bool
	LowerOfficial     bool

	// LongSongSeconds marks songs kept out of the first LongSongTierScope
	// tiers.
	LongSongSeconds   int
	LongSongTierScope int

	Theme string
}

// OptionsFromConfig maps the configured tiering defaults onto build options.
func OptionsFromConfig(cfg *config.Config) Options {
	t := cfg.Tiering
	return Options{
		TierCount:         t.TierCount,
		SongsPerTier:      t.SongsPerTier,
		ArtistCap:         t.ArtistCap,
		GenreGrouping:     t.GenreGrouping,
		MinDifficulty:     t.MinDifficulty,
		ExcludeMemeGenres: t.ExcludeMemeGenres,
		LowerOfficial:     t.LowerOfficialCharters,
		LongSongSeconds:   t.LongSongMinutes * 60,
		LongSongTierScope: t.LongSongTierScope,
		Theme:             t.TierNameTheme,
	}
}

// Exclusion records a song left out of the setlist and why.
type Exclusion struct {
	Song   songs.Song
	Reason string
}

// Violation records a rule the builder could not satisfy for a tier.
type Violation struct {
	TierIndex int
	Rule      string
	Detail    string
}

// Tier is one rung of the career ladder, ordered easiest first.
type Tier struct {
	Index int
	Name  string
	Songs []songs.Song
}

// Setlist is the build output: tiers in ascending difficulty plus full
// accounting of what was excluded and which rules went unsatisfied.
type Setlist struct {
	Tiers      []Tier
	Excluded   []Exclusion
	Violations []Violation
}

// Songs returns every tiered song in tier-then-rank order.
func (s *Setlist) Songs() []songs.Song {
	var out []songs.Song
	for _, tier := range s.Tiers {
		out = append(out, tier.Songs...)
	}
	return out
}

// FilterPool drops ineligible songs and sorts the remainder ascending by
// score with a full lexical tie-break.
func FilterPool(pool []songs.Song, opts Options) ([]songs.Song, []Exclusion) {
	eligible := make([]songs.Song, 0, len(pool))
	var excluded []Exclusion
	for _, song := range pool {
		switch {
		case !song.Eligible:
			reason := song.IneligibleReason
			if reason == "" {
				reason = "ineligible"
			}
			excluded = append(excluded, Exclusion{Song: song, Reason: reason})
		case opts.ExcludeMemeGenres && song.MemeGenre:
			excluded = append(excluded, Exclusion{Song: song, Reason: "meme genre"})
		case songs.EffectiveDiff(&song, opts.LowerOfficial) < opts.MinDifficulty:
			excluded = append(excluded, Exclusion{Song: song, Reason: "below difficulty floor"})
		default:
			eligible = append(eligible, song)
		}
	}
	sort.Slice(eligible, func(i, j int) bool { return songs.Less(&eligible[i], &eligible[j]) })
	return eligible, excluded
}

// Build constructs the career setlist from a scanned pool.
func Build(pool []songs.Song, opts Options) (*Setlist, error) {
	if opts.TierCount <= 0 || opts.SongsPerTier <= 0 {
		return nil, fmt.Errorf("invalid tier shape %dx%d", opts.TierCount, opts.SongsPerTier)
	}

	eligible, excluded := FilterPool(pool, opts)
	if len(eligible) == 0 {
		return nil, ErrEmptyPool
	}

	setlist := &Setlist{Excluded: excluded}

	capacity := opts.TierCount * opts.SongsPerTier
	selected := eligible
	if len(eligible) > capacity {
		selected = eligible[:capacity]
		for _, song := range eligible[capacity:] {
			setlist.Excluded = append(setlist.Excluded, Exclusion{Song: song, Reason: "beyond setlist capacity"})
		}
	}

	// Rank banding: contiguous score bands, short tail allowed.
	var bands [][]songs.Song
	for start := 0; start < len(selected); start += opts.SongsPerTier {
		end := start + opts.SongsPerTier
		if end > len(selected) {
			end = len(selected)
		}
		band := make([]songs.Song, end-start)
		copy(band, selected[start:end])
		bands = append(bands, band)
	}

	b := &builder{opts: opts, bands: bands, setlist: setlist}
	b.relocateLongSongs()
	if opts.GenreGrouping {
		b.groupGenres()
	}
	b.enforceArtistCaps()

	for i, band := range b.bands {
		sort.Slice(band, func(x, y int) bool { return songs.Less(&band[x], &band[y]) })
		setlist.Tiers = append(setlist.Tiers, Tier{
			Index: i,
			Name:  TierName(opts.Theme, i),
			Songs: band,
		})
	}
	return setlist, nil
}

type builder struct {
	opts    Options
	bands   [][]songs.Song
	setlist *Setlist
}

func (b *builder) isLong(song *songs.Song) bool {
	return b.opts.LongSongSeconds > 0 && song.LengthSeconds >= b.opts.LongSongSeconds
}

// relocateLongSongs exchanges long songs out of the protected leading tiers
// for the nearest-score short song from a later tier. An impossible exchange
// keeps the song in place and flags the tier.
func (b *builder) relocateLongSongs() {
	scope := b.opts.LongSongTierScope
	if scope <= 0 || b.opts.LongSongSeconds <= 0 {
		return
	}
	if scope > len(b.bands) {
		scope = len(b.bands)
	}

	for tier := 0; tier < scope; tier++ {
		for pos := range b.bands[tier] {
			long := &b.bands[tier][pos]
			if !b.isLong(long) {
				continue
			}
			swapTier, swapPos := b.nearestShort(long.Score, scope)
			if swapTier < 0 {
				b.flag(tier, RuleLongSong, fmt.Sprintf("%s - %s is %ds long with no short exchange available",
					long.Artist, long.Title, long.LengthSeconds))
				continue
			}
			b.bands[tier][pos], b.bands[swapTier][swapPos] = b.bands[swapTier][swapPos], b.bands[tier][pos]
		}
	}
}

// nearestShort finds the short song outside the protected scope whose score
// is closest to target.
func (b *builder) nearestShort(target float64, scope int) (int, int) {
	bestTier, bestPos := -1, -1
	bestDelta := math.Inf(1)
	for tier := scope; tier < len(b.bands); tier++ {
		for pos := range b.bands[tier] {
			candidate := &b.bands[tier][pos]
			if b.isLong(candidate) {
				continue
			}
			delta := math.Abs(candidate.Score - target)
			if delta < bestDelta {
				bestDelta = delta
				bestTier, bestPos = tier, pos
			}
		}
	}
	return bestTier, bestPos
}

// groupGenres nudges each tier toward its dominant genre by swapping
// off-genre members for nearest-score matches from adjacent tiers. A swap is
// skipped when it would violate an artist cap or move a long song into the
// protected scope.
func (b *builder) groupGenres() {
	for tier := range b.bands {
		dominant := dominantGenre(b.bands[tier])
		if dominant == "" {
			continue
		}
		for pos := range b.bands[tier] {
			member := &b.bands[tier][pos]
			if member.Genre == dominant {
				continue
			}
			swapTier, swapPos := b.adjacentGenreMatch(tier, pos, dominant)
			if swapTier < 0 {
				continue
			}
			b.bands[tier][pos], b.bands[swapTier][swapPos] = b.bands[swapTier][swapPos], b.bands[tier][pos]
		}
	}
}

func dominantGenre(band []songs.Song) string {
	counts := make(map[string]int)
	for i := range band {
		counts[band[i].Genre]++
	}
	best, bestCount := "", 0
	for genre, count := range counts {
		if count > bestCount || (count == bestCount && genre < best) {
			best, bestCount = genre, count
		}
	}
	if bestCount < 2 {
		// No meaningful majority to group around.
		return ""
	}
	return best
}

// adjacentGenreMatch looks in the neighboring tiers for a song of the wanted
// genre that is itself off-genre where it sits, preferring the nearest score.
func (b *builder) adjacentGenreMatch(tier, pos int, genre string) (int, int) {
	member := &b.bands[tier][pos]
	bestTier, bestPos := -1, -1
	bestDelta := math.Inf(1)
	for _, adj := range []int{tier + 1, tier - 1} {
		if adj < 0 || adj >= len(b.bands) {
			continue
		}
		adjDominant := dominantGenre(b.bands[adj])
		for p := range b.bands[adj] {
			candidate := &b.bands[adj][p]
			if candidate.Genre != genre || candidate.Genre == adjDominant {
				continue
			}
			if !b.swapAllowed(tier, pos, adj, p) {
				continue
			}
			delta := math.Abs(candidate.Score - member.Score)
			if delta < bestDelta {
				bestDelta = delta
				bestTier, bestPos = adj, p
			}
		}
	}
	return bestTier, bestPos
}

// swapAllowed checks that exchanging bands[ta][pa] and bands[tb][pb] keeps
// artist caps and long-song scope intact.
func (b *builder) swapAllowed(ta, pa, tb, pb int) bool {
	a := &b.bands[ta][pa]
	c := &b.bands[tb][pb]
	if b.opts.LongSongTierScope > 0 {
		if b.isLong(c) && ta < b.opts.LongSongTierScope {
			return false
		}
		if b.isLong(a) && tb < b.opts.LongSongTierScope {
			return false
		}
	}
	if b.opts.ArtistCap > 0 {
		if artistCount(b.bands[ta], c.Artist)-boolCount(a.Artist == c.Artist) >= b.opts.ArtistCap {
			return false
		}
		if artistCount(b.bands[tb], a.Artist)-boolCount(a.Artist == c.Artist) >= b.opts.ArtistCap {
			return false
		}
	}
	return true
}

func artistCount(band []songs.Song, artist string) int {
	count := 0
	for i := range band {
		if band[i].Artist == artist {
			count++
		}
	}
	return count
}

func boolCount(v bool) int {
	if v {
		return 1
	}
	return 0
}

// enforceArtistCaps resolves per-tier artist overflows by nearest-score
// exchange with a later tier; unresolvable overflows stay in place with a
// violation annotation. Caps outrank genre cohesion, so this pass runs last.
func (b *builder) enforceArtistCaps() {
	if b.opts.ArtistCap <= 0 {
		return
	}
	for tier := range b.bands {
		seen := make(map[string]int)
		for pos := 0; pos < len(b.bands[tier]); pos++ {
			artist := b.bands[tier][pos].Artist
			seen[artist]++
			if seen[artist] <= b.opts.ArtistCap {
				continue
			}
			swapTier, swapPos := b.capExchange(tier, pos)
			if swapTier < 0 {
				b.flag(tier, RuleArtistCap, fmt.Sprintf("%s appears more than %d times", artist, b.opts.ArtistCap))
				continue
			}
			b.bands[tier][pos], b.bands[swapTier][swapPos] = b.bands[swapTier][swapPos], b.bands[tier][pos]
			seen[artist]--
			seen[b.bands[tier][pos].Artist]++
		}
	}
}

// capExchange finds the nearest-score swap partner in the earliest later
// tier that leaves both tiers within their caps.
func (b *builder) capExchange(tier, pos int) (int, int) {
	member := &b.bands[tier][pos]
	for adj := tier + 1; adj < len(b.bands); adj++ {
		bestPos := -1
		bestDelta := math.Inf(1)
		for p := range b.bands[adj] {
			candidate := &b.bands[adj][p]
			if candidate.Artist == member.Artist {
				continue
			}
			if !b.swapAllowed(tier, pos, adj, p) {
				continue
			}
			delta := math.Abs(candidate.Score - member.Score)
			if delta < bestDelta {
				bestDelta = delta
				bestPos = p
			}
		}
		if bestPos >= 0 {
			return adj, bestPos
		}
	}
	return -1, -1
}

func (b *builder) flag(tier int, rule, detail string) {
	b.setlist.Violations = append(b.setlist.Violations, Violation{TierIndex: tier, Rule: rule, Detail: detail})
}
