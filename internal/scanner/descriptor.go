package scanner

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"chcareer/internal/songs"
)

// DescriptorFile is the metadata filename that marks a folder as a song.
const DescriptorFile = "song.ini"

// Descriptor holds the raw metadata parsed from a song.ini file.
type Descriptor struct {
	Title         string
	Artist        string
	Charter       string
	Genre         string
	Album         string
	Year          int
	LengthSeconds int
	DiffGuitar    int
}

// preferredChartNames is the ordered filename priority for a song folder's
// chart asset. Only when none is present does discovery fall back to any
// *.chart, then any *.mid, in sorted order.
var preferredChartNames = []string{
	"notes.chart",
	"notes.mid",
	"song.chart",
	"song.mid",
}

// parseDescriptor reads a song.ini. The format in the wild is loose: stray
// bytes before the [song] header, duplicated keys, uppercase keys, values
// containing '='. Lines that do not parse are skipped rather than fatal.
func parseDescriptor(path string) (Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("open descriptor: %w", err)
	}
	defer f.Close()

	var desc Descriptor
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		line = strings.TrimPrefix(line, "\ufeff")
		if line == "" || strings.HasPrefix(line, "[") || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "name":
			desc.Title = value
		case "artist":
			desc.Artist = value
		case "charter", "frets":
			if desc.Charter == "" {
				desc.Charter = value
			}
		case "genre":
			desc.Genre = value
		case "album":
			desc.Album = value
		case "year":
			desc.Year = leadingInt(value)
		case "song_length":
			desc.LengthSeconds = leadingInt(value) / 1000
		case "diff_guitar":
			desc.DiffGuitar = leadingInt(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return Descriptor{}, fmt.Errorf("read descriptor: %w", err)
	}
	return desc, nil
}

// leadingInt parses the leading integer of a value, tolerating trailing
// junk like "2006 (remaster)". Unparseable values map to zero.
func leadingInt(value string) int {
	value = strings.TrimSpace(value)
	end := 0
	if end < len(value) && (value[end] == '-' || value[end] == '+') {
		end++
	}
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(value[:end])
	if err != nil {
		return 0
	}
	return n
}

// findChart locates the song folder's chart asset.
func findChart(dir string) (string, songs.ChartKind, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", "", false
	}

	byLower := make(map[string]string, len(entries))
	var chartFiles, midiFiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		lower := strings.ToLower(name)
		byLower[lower] = name
		switch filepath.Ext(lower) {
		case ".chart":
			chartFiles = append(chartFiles, name)
		case ".mid", ".midi":
			midiFiles = append(midiFiles, name)
		}
	}

	for _, want := range preferredChartNames {
		if name, ok := byLower[want]; ok {
			return filepath.Join(dir, name), kindForName(name), true
		}
	}
	sort.Strings(chartFiles)
	sort.Strings(midiFiles)
	if len(chartFiles) > 0 {
		return filepath.Join(dir, chartFiles[0]), songs.ChartKindText, true
	}
	if len(midiFiles) > 0 {
		return filepath.Join(dir, midiFiles[0]), songs.ChartKindMIDI, true
	}
	return "", "", false
}

func kindForName(name string) songs.ChartKind {
	switch filepath.Ext(strings.ToLower(name)) {
	case ".mid", ".midi":
		return songs.ChartKindMIDI
	}
	return songs.ChartKindText
}
