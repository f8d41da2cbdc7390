package chart

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"chcareer/internal/testsupport"
)

func writeAsset(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write chart asset: %v", err)
	}
	return path
}

// Steady 4-per-second strumming at 120 BPM: onsets every 96 ticks at
// resolution 192, so both the average and the one-second peak land on
// exactly 4.0.
func steadyOnsets() []int64 {
	ticks := make([]int64, 0, 32)
	for tick := int64(96); tick <= 3072; tick += 96 {
		ticks = append(ticks, tick)
	}
	return ticks
}

func TestAnalyzeChartSteadyDensity(t *testing.T) {
	path := writeAsset(t, "notes.chart", []byte(testsupport.ChartText(testsupport.ChartSpec{
		Resolution: 192,
		MilliBPM:   120_000,
		Section:    "ExpertSingle",
		OnsetTicks: steadyOnsets(),
	})))

	summary, ok := Analyze(path)
	if !ok {
		t.Fatal("Analyze reported unavailable for a valid chart")
	}
	if math.Abs(summary.AvgNPS-4.0) > 1e-9 {
		t.Fatalf("AvgNPS = %v, want 4.0", summary.AvgNPS)
	}
	if summary.PeakNPS < 4.0 {
		t.Fatalf("PeakNPS = %v, want >= 4.0", summary.PeakNPS)
	}
}

func TestAnalyzeChartMergesChords(t *testing.T) {
	single := writeAsset(t, "single.chart", []byte(testsupport.ChartText(testsupport.ChartSpec{
		OnsetTicks: steadyOnsets(),
	})))
	chords := writeAsset(t, "chords.chart", []byte(testsupport.ChartText(testsupport.ChartSpec{
		OnsetTicks:    steadyOnsets(),
		NotesPerOnset: 3,
	})))

	singleSummary, ok := Analyze(single)
	if !ok {
		t.Fatal("single-note chart unavailable")
	}
	chordSummary, ok := Analyze(chords)
	if !ok {
		t.Fatal("chord chart unavailable")
	}
	if singleSummary != chordSummary {
		t.Fatalf("chord chart measured %+v, single-note chart %+v; chords must count once", chordSummary, singleSummary)
	}
}

func TestAnalyzeChartSectionPriority(t *testing.T) {
	// Expert carries a denser part than Hard; the expert section must win.
	spec := testsupport.ChartSpec{OnsetTicks: steadyOnsets()}
	content := testsupport.ChartText(spec)
	content += testsupport.ChartText(testsupport.ChartSpec{
		Section:    "HardSingle",
		OnsetTicks: []int64{96, 3072},
	})
	// Strip the duplicated [Song]/[SyncTrack] blocks by concatenating as-is;
	// the parser keeps the first resolution and merges sections by name.
	path := writeAsset(t, "notes.chart", []byte(content))

	summary, ok := Analyze(path)
	if !ok {
		t.Fatal("Analyze reported unavailable")
	}
	if math.Abs(summary.AvgNPS-4.0) > 1e-9 {
		t.Fatalf("AvgNPS = %v, want the ExpertSingle density 4.0", summary.AvgNPS)
	}
}

func TestAnalyzeChartFallsBackToLowerDifficulty(t *testing.T) {
	path := writeAsset(t, "notes.chart", []byte(testsupport.ChartText(testsupport.ChartSpec{
		Section:    "MediumSingle",
		OnsetTicks: steadyOnsets(),
	})))

	if _, ok := Analyze(path); !ok {
		t.Fatal("chart with only MediumSingle should still measure")
	}
}

func TestAnalyzeMissingFile(t *testing.T) {
	if _, ok := Analyze(filepath.Join(t.TempDir(), "absent.chart")); ok {
		t.Fatal("Analyze of a missing file must report unavailable")
	}
}

func TestAnalyzeGarbageBytes(t *testing.T) {
	path := writeAsset(t, "notes.chart", []byte("not a chart at all"))
	if _, ok := Analyze(path); ok {
		t.Fatal("garbage bytes must report unavailable")
	}
}

func TestAnalyzeChartNoGuitarSection(t *testing.T) {
	path := writeAsset(t, "notes.chart", []byte("[Song]\n{\n  Resolution = 192\n}\n[ExpertDrums]\n{\n  96 = N 0 0\n}\n"))
	if _, ok := Analyze(path); ok {
		t.Fatal("drums-only chart must report unavailable")
	}
}

func TestIsMIDIPath(t *testing.T) {
	cases := map[string]bool{
		"notes.mid":   true,
		"NOTES.MID":   true,
		"song.midi":   true,
		"notes.chart": false,
		"song.ogg":    false,
	}
	for path, want := range cases {
		if got := IsMIDIPath(path); got != want {
			t.Errorf("IsMIDIPath(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestHasGuitarPart(t *testing.T) {
	withGuitar := writeAsset(t, "notes.chart", []byte(testsupport.ChartText(testsupport.ChartSpec{
		OnsetTicks: []int64{96},
	})))
	if !HasGuitarPart(withGuitar) {
		t.Error("probe missed an ExpertSingle section")
	}

	drumsOnly := writeAsset(t, "drums.chart", []byte("[Song]\n{\n}\n[ExpertDrums]\n{\n  96 = N 0 0\n}\n"))
	if HasGuitarPart(drumsOnly) {
		t.Error("probe matched a drums-only chart")
	}

	midi := writeAsset(t, "notes.mid", testsupport.BuildMIDI(480, testsupport.MIDITrack{
		Name:  "PART GUITAR",
		Notes: []testsupport.MIDINote{{Tick: 480, Pitch: 96}},
	}))
	if !HasGuitarPart(midi) {
		t.Error("probe missed a PART GUITAR track")
	}
}
