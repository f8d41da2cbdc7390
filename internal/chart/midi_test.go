package chart

import (
	"math"
	"testing"

	"chcareer/internal/testsupport"
)

// quarterNotes builds note events on every quarter from tick division to
// count*division inclusive.
func quarterNotes(division int64, count int) []testsupport.MIDINote {
	notes := make([]testsupport.MIDINote, 0, count)
	for i := 1; i <= count; i++ {
		notes = append(notes, testsupport.MIDINote{Tick: division * int64(i), Pitch: 96})
	}
	return notes
}

func TestAnalyzeMIDISteadyDensity(t *testing.T) {
	// 120 BPM default tempo, one note per quarter: 2 notes per second,
	// last onset 5 seconds in.
	path := writeAsset(t, "notes.mid", testsupport.BuildMIDI(480,
		testsupport.MIDITrack{Name: "tempo track"},
		testsupport.MIDITrack{Name: "PART GUITAR", Notes: quarterNotes(480, 10)},
	))

	summary, ok := Analyze(path)
	if !ok {
		t.Fatal("Analyze reported unavailable for a valid midi chart")
	}
	if math.Abs(summary.AvgNPS-2.0) > 1e-9 {
		t.Fatalf("AvgNPS = %v, want 2.0", summary.AvgNPS)
	}
	if summary.PeakNPS < 2.0 {
		t.Fatalf("PeakNPS = %v, want >= 2.0", summary.PeakNPS)
	}
}

func TestAnalyzeMIDIHonorsTempoTrack(t *testing.T) {
	// Doubling the tempo halves every onset time, doubling the density.
	path := writeAsset(t, "notes.mid", testsupport.BuildMIDI(480,
		testsupport.MIDITrack{
			Name:   "tempo track",
			Tempos: []testsupport.MIDITempo{{Tick: 0, USPerQuarter: 250_000}},
		},
		testsupport.MIDITrack{Name: "PART GUITAR", Notes: quarterNotes(480, 10)},
	))

	summary, ok := Analyze(path)
	if !ok {
		t.Fatal("Analyze reported unavailable")
	}
	if math.Abs(summary.AvgNPS-4.0) > 1e-9 {
		t.Fatalf("AvgNPS = %v, want 4.0 at 240 BPM", summary.AvgNPS)
	}
}

func TestAnalyzeMIDITrackPriority(t *testing.T) {
	// A busier PART RHYTHM must not outrank PART GUITAR.
	path := writeAsset(t, "notes.mid", testsupport.BuildMIDI(480,
		testsupport.MIDITrack{Name: "PART RHYTHM", Notes: quarterNotes(240, 40)},
		testsupport.MIDITrack{Name: "part guitar", Notes: quarterNotes(480, 10)},
	))

	summary, ok := Analyze(path)
	if !ok {
		t.Fatal("Analyze reported unavailable")
	}
	if math.Abs(summary.AvgNPS-2.0) > 1e-9 {
		t.Fatalf("AvgNPS = %v, want the PART GUITAR density 2.0", summary.AvgNPS)
	}
}

func TestAnalyzeMIDIFallsBackToBusiestTrack(t *testing.T) {
	path := writeAsset(t, "notes.mid", testsupport.BuildMIDI(480,
		testsupport.MIDITrack{Name: "VOCALS", Notes: quarterNotes(480, 3)},
		testsupport.MIDITrack{Name: "LEAD 6-STRING", Notes: quarterNotes(480, 10)},
	))

	summary, ok := Analyze(path)
	if !ok {
		t.Fatal("Analyze reported unavailable")
	}
	if math.Abs(summary.AvgNPS-2.0) > 1e-9 {
		t.Fatalf("AvgNPS = %v, want the busiest track's 2.0", summary.AvgNPS)
	}
}

func TestAnalyzeMIDIMergesOctaveEncodings(t *testing.T) {
	// Difficulty layers sit in different octaves; the same lane at the same
	// tick counts once.
	notes := make([]testsupport.MIDINote, 0, 20)
	for i := 1; i <= 10; i++ {
		notes = append(notes,
			testsupport.MIDINote{Tick: 480 * int64(i), Pitch: 96},
			testsupport.MIDINote{Tick: 480 * int64(i), Pitch: 84},
		)
	}
	path := writeAsset(t, "notes.mid", testsupport.BuildMIDI(480,
		testsupport.MIDITrack{Name: "PART GUITAR", Notes: notes},
	))

	summary, ok := Analyze(path)
	if !ok {
		t.Fatal("Analyze reported unavailable")
	}
	if math.Abs(summary.AvgNPS-2.0) > 1e-9 {
		t.Fatalf("AvgNPS = %v, want 2.0 after octave folding", summary.AvgNPS)
	}
}

func TestAnalyzeMIDITruncated(t *testing.T) {
	full := testsupport.BuildMIDI(480,
		testsupport.MIDITrack{Name: "PART GUITAR", Notes: quarterNotes(480, 10)},
	)
	path := writeAsset(t, "notes.mid", full[:len(full)/2])

	if _, ok := Analyze(path); ok {
		t.Fatal("truncated midi data must report unavailable")
	}
}

func TestAnalyzeMIDIRejectsSMPTEDivision(t *testing.T) {
	data := testsupport.BuildMIDI(480,
		testsupport.MIDITrack{Name: "PART GUITAR", Notes: quarterNotes(480, 4)},
	)
	data[12] = 0xE8 // negative SMPTE frame rate
	path := writeAsset(t, "notes.mid", data)

	if _, ok := Analyze(path); ok {
		t.Fatal("SMPTE division must report unavailable")
	}
}

func TestAnalyzeMIDINoNotes(t *testing.T) {
	path := writeAsset(t, "notes.mid", testsupport.BuildMIDI(480,
		testsupport.MIDITrack{Name: "PART GUITAR"},
	))
	if _, ok := Analyze(path); ok {
		t.Fatal("noteless chart must report unavailable")
	}
}
