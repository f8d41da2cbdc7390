package songs_test

import (
	"testing"

	"chcareer/internal/songs"
)

func TestStripColorTags(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"<color=#00FF00>DragonForce</color>", "DragonForce"},
		{"  plain  ", "plain"},
		{"<COLOR=red>Loud</COLOR> Band", "Loud Band"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := songs.StripColorTags(tc.in); got != tc.want {
			t.Fatalf("StripColorTags(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeDefaultsAndFlags(t *testing.T) {
	s := &songs.Song{
		Title:         "<color=blue>Song</color>",
		Charter:       " Harmonix ",
		Genre:         "",
		LengthSeconds: 8 * 60,
	}
	s.Normalize()
	if s.Genre != "Unknown" {
		t.Fatalf("empty genre should default to Unknown, got %q", s.Genre)
	}
	if !s.OfficialCharter {
		t.Fatal("Harmonix should be recognized as official")
	}
	if !s.VeryLong {
		t.Fatal("eight minute song should be flagged very long")
	}
	if s.Title != "Song" {
		t.Fatalf("color tags should be stripped, got %q", s.Title)
	}
}

func TestIsMemeGenre(t *testing.T) {
	if !songs.IsMemeGenre("Heavy Memes") {
		t.Fatal("expected table match to be case-insensitive")
	}
	if songs.IsMemeGenre("Heavy Metal") {
		t.Fatal("non-meme genre matched")
	}
}

func TestDifficultyScoreCurve(t *testing.T) {
	if got := songs.DifficultyScore(0, 0); got != 0 {
		t.Fatalf("zero difficulty should score 0, got %v", got)
	}
	if got := songs.DifficultyScore(9, 0); got != 100 {
		t.Fatalf("max difficulty should score 100, got %v", got)
	}
	// Length boost caps at 10 points.
	if got := songs.DifficultyScore(9, 60*60); got != 110 {
		t.Fatalf("boost should cap at 10, got %v", got)
	}
	if got := songs.DifficultyScore(12, 0); got != 100 {
		t.Fatalf("difficulty should clamp to 9, got %v", got)
	}
}

func TestEffectiveDiffLowersOfficialWithFloor(t *testing.T) {
	s := &songs.Song{Charter: "Neversoft", DiffGuitar: 5}
	s.Normalize()
	if got := songs.EffectiveDiff(s, true); got != 4 {
		t.Fatalf("expected official chart lowered to 4, got %d", got)
	}
	s.DiffGuitar = 1
	if got := songs.EffectiveDiff(s, true); got != 1 {
		t.Fatalf("expected floor of 1, got %d", got)
	}
	if got := songs.EffectiveDiff(s, false); got != 1 {
		t.Fatalf("adjustment disabled should keep declared value, got %d", got)
	}
}

func TestCompositeScoreNPSWeighting(t *testing.T) {
	s := &songs.Song{DiffGuitar: 5, NPS: songs.NPS{Avg: 4, Peak: 8, Available: true}}
	base := songs.CompositeScore(s, songs.ScoreOptions{})
	weighted := songs.CompositeScore(s, songs.ScoreOptions{WeightNPS: true})
	if weighted <= base {
		t.Fatalf("weighted score should exceed base: %v vs %v", weighted, base)
	}

	unavailable := &songs.Song{DiffGuitar: 5}
	if got := songs.CompositeScore(unavailable, songs.ScoreOptions{WeightNPS: true}); got != base {
		t.Fatalf("unavailable NPS must contribute zero: got %v want %v", got, base)
	}
}

func TestLessIsDeterministic(t *testing.T) {
	a := &songs.Song{Score: 10, Artist: "A", Title: "x", Fingerprint: "1"}
	b := &songs.Song{Score: 10, Artist: "A", Title: "y", Fingerprint: "2"}
	if !songs.Less(a, b) || songs.Less(b, a) {
		t.Fatal("equal scores must order by title")
	}
}
