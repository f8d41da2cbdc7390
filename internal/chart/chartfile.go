package chart

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

const defaultResolution = 192

// guitarSections is the ordered priority list of .chart sections holding a
// 5-fret guitar part. The first present section wins.
var guitarSections = []string{
	"ExpertSingle",
	"HardSingle",
	"MediumSingle",
	"EasySingle",
}

// analyzeChartFile parses the .chart text format: named sections of
// tick-stamped events, with tempo anchors in [SyncTrack] and note events in
// the per-difficulty sections.
func analyzeChartFile(data []byte) (Summary, error) {
	sections, err := splitSections(data)
	if err != nil {
		return Summary{}, err
	}

	resolution := chartResolution(sections["song"])

	tempo := NewTempoMap(usPerTickFromBPM(120_000, resolution))
	for _, line := range sections["synctrack"] {
		tick, kind, args, ok := parseEventLine(line)
		if !ok || kind != "B" || len(args) == 0 {
			continue
		}
		milliBPM, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || milliBPM <= 0 {
			continue
		}
		tempo.Add(tick, usPerTickFromBPM(milliBPM, resolution))
	}

	var onsets []int64
	for _, name := range guitarSections {
		lines, ok := sections[strings.ToLower(name)]
		if !ok {
			continue
		}
		for _, line := range lines {
			tick, kind, _, ok := parseEventLine(line)
			if !ok || kind != "N" {
				continue
			}
			onsets = append(onsets, tick)
		}
		break
	}

	return measure(onsets, tempo)
}

// usPerTickFromBPM converts a .chart tempo anchor (BPM scaled by 1000) into
// microseconds per tick at the given resolution.
func usPerTickFromBPM(milliBPM int64, resolution int) float64 {
	return 60_000_000_000.0 / (float64(milliBPM) * float64(resolution))
}

func chartResolution(songLines []string) int {
	for _, line := range songLines {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(key), "Resolution") {
			continue
		}
		if res, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && res > 0 {
			return res
		}
	}
	return defaultResolution
}

// splitSections breaks the file into lowercase section name -> body lines.
// The format is tolerant: unknown sections are kept (and ignored by the
// caller), stray lines outside any section are dropped.
func splitSections(data []byte) (map[string][]string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	sections := make(map[string][]string)
	var current string

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || line == "{" || line == "}":
			continue
		case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
			current = strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
		case current != "":
			sections[current] = append(sections[current], line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan chart text: %w", err)
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("chart text contains no sections")
	}
	return sections, nil
}

// parseEventLine splits "tick = KIND arg..." into its parts.
func parseEventLine(line string) (tick int64, kind string, args []string, ok bool) {
	left, right, found := strings.Cut(line, "=")
	if !found {
		return 0, "", nil, false
	}
	tick, err := strconv.ParseInt(strings.TrimSpace(left), 10, 64)
	if err != nil || tick < 0 {
		return 0, "", nil, false
	}
	fields := strings.Fields(right)
	if len(fields) == 0 {
		return 0, "", nil, false
	}
	return tick, fields[0], fields[1:], true
}
