// Package chart measures the note density of Clone Hero chart assets.
//
// Two front-ends, one for the .chart text format and one for the .mid
// binary-track format, extract guitar note onsets and tempo changes and feed
// a shared tempo-aware core that reports average and peak notes-per-second.
// Simultaneous notes collapse into single chord onsets before counting. A
// chart with no countable guitar content yields "unavailable" rather than a
// zero measurement, and malformed bytes degrade the same way instead of
// failing the surrounding scan.
package chart
