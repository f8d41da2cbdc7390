// Package setlist encodes career setlists to disk and reads them back.
//
// Two binary layouts are supported: the combined format, which holds every
// tier with its display name in one file, and the game-native flat format,
// one nameless tier per file. Decoding sniffs the magic, so either layout
// can be imported.
package setlist
