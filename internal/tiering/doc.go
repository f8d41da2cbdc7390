// Package tiering turns a scanned song pool into an ordered career ladder:
// difficulty-ranked tiers subject to artist caps, genre cohesion, and
// long-song placement rules.
//
// Building is deterministic. Rules that cannot be satisfied are never
// silently ignored; the resulting setlist carries a violation annotation for
// each one.
package tiering
