package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
)

// chartProbeTokens and midiProbeTokens back the cheap guitar-part probe.
// They mirror the section and track names the full parsers select on.
var (
	chartProbeTokens = [][]byte{
		[]byte("[expertsingle]"),
		[]byte("[hardsingle]"),
		[]byte("[mediumsingle]"),
		[]byte("[easysingle]"),
	}
	midiProbeTokens = [][]byte{
		[]byte("part guitar"),
		[]byte("t1 gems"),
		[]byte("part lead"),
		[]byte("part rhythm"),
	}
)

// IsMIDIPath reports whether the path names a binary-track chart.
func IsMIDIPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mid", ".midi":
		return true
	}
	return false
}

// Analyze reads the chart asset and measures its guitar density. The boolean
// is false when NPS is unavailable: missing file, no guitar content, or
// bytes the parsers could not make sense of. Analysis failures never
// propagate; a broken chart must not abort the surrounding scan.
func Analyze(path string) (Summary, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, false
	}

	var summary Summary
	if IsMIDIPath(path) {
		summary, err = analyzeMIDI(data)
	} else {
		summary, err = analyzeChartFile(data)
	}
	if err != nil {
		return Summary{}, false
	}
	return summary, true
}

// HasGuitarPart is a fast byte-level probe for a 5-fret guitar part, used to
// decide eligibility before committing to a full parse.
func HasGuitarPart(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	lower := bytes.ToLower(data)
	tokens := chartProbeTokens
	if IsMIDIPath(path) {
		tokens = midiProbeTokens
	}
	for _, token := range tokens {
		if bytes.Contains(lower, token) {
			return true
		}
	}
	return false
}
