package songcache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"chcareer/internal/config"
	"chcareer/internal/songs"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current cache schema. A database written by a
// different version is thrown away and rebuilt; the cache holds nothing that
// cannot be regenerated by a scan.
const schemaVersion = 1

// DatabaseFile is the cache database filename under the cache directory.
const DatabaseFile = "songs.db"

const lockFile = "songs.lock"

// ErrUnavailable reports a cache operation on a store that is not backed by
// a database.
var ErrUnavailable = errors.New("song cache unavailable")

// ErrLocked reports that another process holds the cache lock.
var ErrLocked = errors.New("song cache locked by another process")

// Entry is one cached scan result: the song record plus the file identity
// used for staleness checks.
type Entry struct {
	Song songs.Song

	// ChartMTimeNS and ChartSize identify the chart file state the entry
	// was computed from. A matching pair means the fingerprint is still
	// valid and the file need not be re-hashed.
	ChartMTimeNS int64
	ChartSize    int64

	ScannedAt time.Time
}

// FreshFor reports whether the entry still describes the given file state.
func (e *Entry) FreshFor(info fs.FileInfo) bool {
	if e == nil || info == nil {
		return false
	}
	return e.ChartMTimeNS == info.ModTime().UnixNano() && e.ChartSize == info.Size()
}

// Stats summarizes cache state for diagnostic output.
type Stats struct {
	Path      string
	Entries   int
	SizeBytes int64
}

// Store manages the scan cache backed by SQLite. A nil Store is usable: all
// reads miss and writes fail with ErrUnavailable.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open connects to the cache database under the configured cache directory,
// taking an advisory lock so concurrent processes do not interleave writes.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(filepath.Join(cfg.Paths.CacheDir, lockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}

	dbPath := filepath.Join(cfg.Paths.CacheDir, DatabaseFile)
	store, err := openAt(dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	store.lock = lock
	return store, nil
}

func openAt(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists > 0 {
		var version int
		err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
		if err == nil && version == schemaVersion {
			return nil
		}
		// Stale or unreadable schema: every row is derivable from the
		// library, so rebuild instead of migrating.
		if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS songs"); err != nil {
			return fmt.Errorf("drop stale songs table: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS schema_version"); err != nil {
			return fmt.Errorf("drop stale schema_version table: %w", err)
		}
	}

	return s.createSchema(ctx)
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Close releases the database connection and the cache lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var firstErr error
	if s.db != nil {
		firstErr = s.db.Close()
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// LookupPath fetches the cached entry for a chart path. A miss returns
// (nil, nil); a nil store always misses.
func (s *Store) LookupPath(ctx context.Context, chartPath string) (*Entry, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM songs WHERE chart_path = ? LIMIT 1`, chartPath)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup by path: %w", err)
	}
	return entry, nil
}

// Get fetches the cached entry for a fingerprint. A miss returns (nil, nil);
// a nil store always misses.
func (s *Store) Get(ctx context.Context, fp string) (*Entry, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM songs WHERE fingerprint = ?`, fp)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get by fingerprint: %w", err)
	}
	return entry, nil
}

// PutBatch upserts a batch of entries in one transaction. The scanner calls
// this from its coordinator only, so writers never contend.
func (s *Store) PutBatch(ctx context.Context, entries []Entry) error {
	if s == nil || s.db == nil {
		return ErrUnavailable
	}
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cache tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Editing a chart changes its fingerprint but not its path. Evict any
	// row still claiming the path under the old fingerprint so the upsert
	// cannot leave a stale duplicate behind.
	evict, err := tx.PrepareContext(ctx, `DELETE FROM songs WHERE chart_path = ? AND fingerprint <> ?`)
	if err != nil {
		return fmt.Errorf("prepare evict: %w", err)
	}
	defer evict.Close()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO songs (
            fingerprint, chart_path, chart_mtime_ns, chart_size, chart_kind,
            descriptor_path, title, artist, charter, genre, album, year,
            length_seconds, diff_guitar, nps_avg, nps_peak, nps_available, scanned_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (fingerprint) DO UPDATE SET
            chart_path = excluded.chart_path,
            chart_mtime_ns = excluded.chart_mtime_ns,
            chart_size = excluded.chart_size,
            chart_kind = excluded.chart_kind,
            descriptor_path = excluded.descriptor_path,
            title = excluded.title,
            artist = excluded.artist,
            charter = excluded.charter,
            genre = excluded.genre,
            album = excluded.album,
            year = excluded.year,
            length_seconds = excluded.length_seconds,
            diff_guitar = excluded.diff_guitar,
            nps_avg = excluded.nps_avg,
            nps_peak = excluded.nps_peak,
            nps_available = excluded.nps_available,
            scanned_at = excluded.scanned_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		song := entry.Song
		scannedAt := entry.ScannedAt
		if scannedAt.IsZero() {
			scannedAt = time.Now().UTC()
		}
		if _, err := evict.ExecContext(ctx, song.ChartPath, song.Fingerprint); err != nil {
			return fmt.Errorf("evict stale entry for %s: %w", song.ChartPath, err)
		}
		if _, err := stmt.ExecContext(ctx,
			song.Fingerprint,
			song.ChartPath,
			entry.ChartMTimeNS,
			entry.ChartSize,
			string(song.ChartKind),
			song.DescriptorPath,
			song.Title,
			song.Artist,
			song.Charter,
			song.Genre,
			song.Album,
			song.Year,
			song.LengthSeconds,
			song.DiffGuitar,
			song.NPS.Avg,
			song.NPS.Peak,
			boolToInt(song.NPS.Available),
			scannedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("upsert entry %s: %w", song.Fingerprint, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cache batch: %w", err)
	}
	return nil
}

// PruneMissing removes entries whose chart path is absent from keep.
func (s *Store) PruneMissing(ctx context.Context, keep map[string]struct{}) (int64, error) {
	if s == nil || s.db == nil {
		return 0, ErrUnavailable
	}
	rows, err := s.db.QueryContext(ctx, `SELECT fingerprint, chart_path FROM songs`)
	if err != nil {
		return 0, fmt.Errorf("list cache paths: %w", err)
	}
	var stale []string
	for rows.Next() {
		var fp, path string
		if err := rows.Scan(&fp, &path); err != nil {
			rows.Close()
			return 0, err
		}
		if _, ok := keep[path]; !ok {
			stale = append(stale, fp)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	var removed int64
	for _, fp := range stale {
		res, err := s.db.ExecContext(ctx, `DELETE FROM songs WHERE fingerprint = ?`, fp)
		if err != nil {
			return removed, fmt.Errorf("prune entry %s: %w", fp, err)
		}
		n, _ := res.RowsAffected()
		removed += n
	}
	return removed, nil
}

// Clear removes every entry.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, ErrUnavailable
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM songs`)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return res.RowsAffected()
}

// Stats reports entry count and on-disk size.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	if s == nil || s.db == nil {
		return Stats{}, ErrUnavailable
	}
	stats := Stats{Path: s.path}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM songs`).Scan(&stats.Entries); err != nil {
		return Stats{}, fmt.Errorf("count cache entries: %w", err)
	}
	if info, err := os.Stat(s.path); err == nil {
		stats.SizeBytes = info.Size()
	}
	return stats, nil
}

const entryColumns = "fingerprint, chart_path, chart_mtime_ns, chart_size, chart_kind, descriptor_path, title, artist, charter, genre, album, year, length_seconds, diff_guitar, nps_avg, nps_peak, nps_available, scanned_at"

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		entry        Entry
		chartKind    string
		npsAvailable int
		scannedRaw   string
	)
	if err := scanner.Scan(
		&entry.Song.Fingerprint,
		&entry.Song.ChartPath,
		&entry.ChartMTimeNS,
		&entry.ChartSize,
		&chartKind,
		&entry.Song.DescriptorPath,
		&entry.Song.Title,
		&entry.Song.Artist,
		&entry.Song.Charter,
		&entry.Song.Genre,
		&entry.Song.Album,
		&entry.Song.Year,
		&entry.Song.LengthSeconds,
		&entry.Song.DiffGuitar,
		&entry.Song.NPS.Avg,
		&entry.Song.NPS.Peak,
		&npsAvailable,
		&scannedRaw,
	); err != nil {
		return nil, err
	}
	entry.Song.ChartKind = songs.ChartKind(chartKind)
	entry.Song.NPS.Available = npsAvailable != 0
	if scanned, err := time.Parse(time.RFC3339Nano, scannedRaw); err == nil {
		entry.ScannedAt = scanned
	}
	entry.Song.Normalize()
	return &entry, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
