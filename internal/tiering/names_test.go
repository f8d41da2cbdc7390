package tiering

import "testing"

func TestTierNamePlain(t *testing.T) {
	if got := TierName(ThemePlain, 0); got != "Tier 1" {
		t.Fatalf("TierName(plain, 0) = %q", got)
	}
	if got := TierName("unknown-theme", 4); got != "Tier 5" {
		t.Fatalf("TierName(unknown, 4) = %q", got)
	}
}

func TestTierNameGuitarHero(t *testing.T) {
	cases := map[int]string{
		0:  "Local Gig",
		2:  "Battle of the Bands",
		10: "Hall of Fame",
		11: "Hall of Fame 2",
		12: "Hall of Fame 3",
	}
	for index, want := range cases {
		if got := TierName(ThemeGuitarHero, index); got != want {
			t.Errorf("TierName(guitar-hero, %d) = %q, want %q", index, got, want)
		}
	}
}
