// Package scanner walks the song library, parses descriptors and charts,
// fingerprints chart assets, and produces the normalized song records the
// tier builder consumes.
//
// A scan is a single-flight operation: one scanner runs one scan at a time,
// fans folder work out to a bounded worker pool, and funnels every cache
// write through the coordinating goroutine.
package scanner
