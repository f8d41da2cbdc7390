// Package songcache persists scan results in SQLite so repeat scans only
// re-hash and re-parse charts whose files changed on disk.
//
// The cache is advisory. When the database cannot be opened the scanner runs
// without it; a nil *Store is valid and behaves as an always-miss cache that
// rejects writes with ErrUnavailable.
package songcache
