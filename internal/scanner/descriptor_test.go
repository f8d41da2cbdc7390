package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"chcareer/internal/songs"
)

func writeDescriptor(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DescriptorFile)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write descriptor: %v", err)
	}
	return path
}

func TestParseDescriptor(t *testing.T) {
	path := writeDescriptor(t, t.TempDir(), `[song]
name = Through the Fire and Flames
artist = DragonForce
charter = Neversoft
genre = Power Metal
album = Inhuman Rampage
year = 2006
song_length = 441000
diff_guitar = 9
`)

	desc, err := parseDescriptor(path)
	if err != nil {
		t.Fatalf("parseDescriptor: %v", err)
	}
	want := Descriptor{
		Title:         "Through the Fire and Flames",
		Artist:        "DragonForce",
		Charter:       "Neversoft",
		Genre:         "Power Metal",
		Album:         "Inhuman Rampage",
		Year:          2006,
		LengthSeconds: 441,
		DiffGuitar:    9,
	}
	if desc != want {
		t.Fatalf("parseDescriptor = %+v, want %+v", desc, want)
	}
}

func TestParseDescriptorTolerant(t *testing.T) {
	path := writeDescriptor(t, t.TempDir(), "\ufeff[Song]\r\nNAME = Title = With = Equals\r\nFrets = SomeCharter\r\nyear = 1999 (remaster)\r\ndiff_guitar = not a number\r\nstray line without separator\r\n; comment = ignored\r\n")

	desc, err := parseDescriptor(path)
	if err != nil {
		t.Fatalf("parseDescriptor: %v", err)
	}
	if desc.Title != "Title = With = Equals" {
		t.Errorf("Title = %q", desc.Title)
	}
	if desc.Charter != "SomeCharter" {
		t.Errorf("Charter = %q, want frets fallback", desc.Charter)
	}
	if desc.Year != 1999 {
		t.Errorf("Year = %d, want 1999", desc.Year)
	}
	if desc.DiffGuitar != 0 {
		t.Errorf("DiffGuitar = %d, want 0 for unparseable", desc.DiffGuitar)
	}
}

func TestParseDescriptorCharterOverFrets(t *testing.T) {
	path := writeDescriptor(t, t.TempDir(), "[song]\ncharter = Primary\nfrets = Legacy\n")

	desc, err := parseDescriptor(path)
	if err != nil {
		t.Fatalf("parseDescriptor: %v", err)
	}
	if desc.Charter != "Primary" {
		t.Errorf("Charter = %q, want the first charter key to win", desc.Charter)
	}
}

func TestLeadingInt(t *testing.T) {
	cases := map[string]int{
		"2006":            2006,
		"2006 (remaster)": 2006,
		"-3":              -3,
		"":                0,
		"abc":             0,
		"+41x":            41,
	}
	for input, want := range cases {
		if got := leadingInt(input); got != want {
			t.Errorf("leadingInt(%q) = %d, want %d", input, got, want)
		}
	}
}

func TestFindChartPriority(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"song.mid", "extra.chart", "Notes.Mid", "notes.chart"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	path, kind, ok := findChart(dir)
	if !ok {
		t.Fatal("findChart found nothing")
	}
	if filepath.Base(path) != "notes.chart" || kind != songs.ChartKindText {
		t.Fatalf("findChart = %s (%s), want notes.chart", path, kind)
	}
}

func TestFindChartCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "NOTES.MID"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	path, kind, ok := findChart(dir)
	if !ok || filepath.Base(path) != "NOTES.MID" || kind != songs.ChartKindMIDI {
		t.Fatalf("findChart = %s (%s, %v), want NOTES.MID", path, kind, ok)
	}
}

func TestFindChartFallback(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zz.mid", "aa.mid"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	path, kind, ok := findChart(dir)
	if !ok || filepath.Base(path) != "aa.mid" || kind != songs.ChartKindMIDI {
		t.Fatalf("findChart = %s (%s, %v), want sorted fallback aa.mid", path, kind, ok)
	}
}

func TestFindChartEmpty(t *testing.T) {
	if _, _, ok := findChart(t.TempDir()); ok {
		t.Fatal("findChart reported a chart in an empty folder")
	}
}
