package testsupport

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// ChartSpec describes a synthetic .chart text file.
type ChartSpec struct {
	Resolution int
	MilliBPM   int64  // BPM scaled by 1000, written as a [SyncTrack] anchor
	Section    string // difficulty section name, e.g. "ExpertSingle"
	OnsetTicks []int64
	// NotesPerOnset > 1 writes extra frets at each tick so chord merging
	// is exercised.
	NotesPerOnset int
}

// ChartText renders a ChartSpec into .chart file content.
func ChartText(spec ChartSpec) string {
	if spec.Resolution == 0 {
		spec.Resolution = 192
	}
	if spec.MilliBPM == 0 {
		spec.MilliBPM = 120_000
	}
	if spec.Section == "" {
		spec.Section = "ExpertSingle"
	}
	if spec.NotesPerOnset < 1 {
		spec.NotesPerOnset = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[Song]\n{\n  Resolution = %d\n}\n", spec.Resolution)
	fmt.Fprintf(&b, "[SyncTrack]\n{\n  0 = TS 4\n  0 = B %d\n}\n", spec.MilliBPM)
	fmt.Fprintf(&b, "[%s]\n{\n", spec.Section)
	for _, tick := range spec.OnsetTicks {
		for fret := 0; fret < spec.NotesPerOnset; fret++ {
			fmt.Fprintf(&b, "  %d = N %d 0\n", tick, fret)
		}
	}
	b.WriteString("}\n")
	return b.String()
}

// MIDINote is one note-on event in a synthetic binary chart.
type MIDINote struct {
	Tick  int64
	Pitch uint8
}

// MIDITempo is one tempo change in a synthetic binary chart.
type MIDITempo struct {
	Tick         int64
	USPerQuarter int64
}

// MIDITrack describes one track of a synthetic binary chart.
type MIDITrack struct {
	Name   string
	Notes  []MIDINote
	Tempos []MIDITempo
}

// BuildMIDI assembles a standard MIDI file from the given tracks.
func BuildMIDI(division uint16, tracks ...MIDITrack) []byte {
	var out []byte
	out = append(out, 'M', 'T', 'h', 'd')
	out = binary.BigEndian.AppendUint32(out, 6)
	out = binary.BigEndian.AppendUint16(out, 1)
	out = binary.BigEndian.AppendUint16(out, uint16(len(tracks)))
	out = binary.BigEndian.AppendUint16(out, division)

	for _, track := range tracks {
		body := buildTrackBody(track)
		out = append(out, 'M', 'T', 'r', 'k')
		out = binary.BigEndian.AppendUint32(out, uint32(len(body)))
		out = append(out, body...)
	}
	return out
}

type midiEvent struct {
	tick int64
	data []byte
}

func buildTrackBody(track MIDITrack) []byte {
	var events []midiEvent
	if track.Name != "" {
		name := []byte(track.Name)
		data := append([]byte{0xFF, 0x03, byte(len(name))}, name...)
		events = append(events, midiEvent{tick: 0, data: data})
	}
	for _, tempo := range track.Tempos {
		us := tempo.USPerQuarter
		data := []byte{0xFF, 0x51, 0x03, byte(us >> 16), byte(us >> 8), byte(us)}
		events = append(events, midiEvent{tick: tempo.Tick, data: data})
	}
	for _, note := range track.Notes {
		events = append(events, midiEvent{tick: note.Tick, data: []byte{0x90, note.Pitch, 0x64}})
		events = append(events, midiEvent{tick: note.Tick, data: []byte{0x80, note.Pitch, 0x00}})
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].tick < events[j].tick })

	var body []byte
	var last int64
	for _, ev := range events {
		body = appendVarint(body, ev.tick-last)
		body = append(body, ev.data...)
		last = ev.tick
	}
	body = appendVarint(body, 0)
	body = append(body, 0xFF, 0x2F, 0x00)
	return body
}

func appendVarint(out []byte, value int64) []byte {
	if value < 0 {
		value = 0
	}
	var stack [4]byte
	n := 0
	for {
		stack[n] = byte(value & 0x7F)
		n++
		value >>= 7
		if value == 0 {
			break
		}
	}
	for i := n - 1; i > 0; i-- {
		out = append(out, stack[i]|0x80)
	}
	return append(out, stack[0])
}

// SongFolder writes a song folder with a song.ini and a chart asset and
// returns its path.
func SongFolder(t testing.TB, root, name string, ini map[string]string, chartName string, chartData []byte) string {
	t.Helper()

	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir song folder: %v", err)
	}

	var b strings.Builder
	b.WriteString("[song]\n")
	keys := make([]string, 0, len(ini))
	for key := range ini {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, "%s = %s\n", key, ini[key])
	}
	if err := os.WriteFile(filepath.Join(dir, "song.ini"), []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write song.ini: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, chartName), chartData, 0o644); err != nil {
		t.Fatalf("write chart asset: %v", err)
	}
	return dir
}
