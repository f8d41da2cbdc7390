package scanner

import "testing"

func TestDeriveTitle(t *testing.T) {
	cases := map[string]string{
		"/lib/some-band_live":     "Some Band Live",
		"/lib/FreeBird":           "Freebird",
		"/lib/song.v2":            "Song V2",
		"/lib/---":                "Unknown Song",
		"/lib/Already Good Title": "Already Good Title",
	}
	for dir, want := range cases {
		if got := deriveTitle(dir); got != want {
			t.Errorf("deriveTitle(%q) = %q, want %q", dir, got, want)
		}
	}
}
