package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"chcareer/internal/chart"
	"chcareer/internal/config"
	"chcareer/internal/fingerprint"
	"chcareer/internal/logging"
	"chcareer/internal/songcache"
	"chcareer/internal/songs"
)

// State names the scanner lifecycle phase.
type State string

const (
	StateIdle      State = "idle"
	StateScanning  State = "scanning"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
	StateFailed    State = "failed"
)

// ErrScanInProgress reports an attempt to start a scan while one is running.
var ErrScanInProgress = errors.New("a scan is already in progress")

// ErrLibraryMissing reports a library directory that does not exist.
var ErrLibraryMissing = errors.New("library directory does not exist")

// Progress is a throttled snapshot of a running scan.
type Progress struct {
	ScanID    uuid.UUID
	Phase     string
	Processed int
	Total     int
	Percent   float64
}

// SkippedFolder records a song folder the scan could not turn into a record.
type SkippedFolder struct {
	Path   string
	Reason string
}

// Result is the outcome of one scan.
type Result struct {
	ScanID      uuid.UUID
	State       State
	Songs       []songs.Song
	Skipped     []SkippedFolder
	CacheHits   int
	CacheMisses int
	Duration    time.Duration
}

// Scanner runs library scans. One scan at a time; Cancel stops the running
// one cooperatively.
type Scanner struct {
	cfg    *config.Config
	store  *songcache.Store
	logger *slog.Logger

	mu     sync.Mutex
	state  State
	scanID uuid.UUID
	cancel context.CancelFunc
}

// New builds a scanner. store may be nil; the scan then runs uncached.
func New(cfg *config.Config, store *songcache.Store, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "scanner"),
		state:  StateIdle,
	}
}

// State returns the current lifecycle state.
func (s *Scanner) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastScanID returns the identifier of the current or most recent scan.
func (s *Scanner) LastScanID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanID
}

// Cancel requests cooperative cancellation of the running scan. It is a
// no-op when no scan is active.
func (s *Scanner) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

type scanJob struct {
	index int
	dir   string
}

type scanResult struct {
	index    int
	song     *songs.Song
	entry    *songcache.Entry
	skip     *SkippedFolder
	cacheHit bool
}

// Scan walks the library and returns one record per distinct chart
// fingerprint, in traversal order. onProgress, when non-nil, receives
// throttled progress updates from the coordinating goroutine.
func (s *Scanner) Scan(ctx context.Context, onProgress func(Progress)) (*Result, error) {
	s.mu.Lock()
	if s.state == StateScanning {
		s.mu.Unlock()
		return nil, ErrScanInProgress
	}
	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	scanID := uuid.New()
	s.state = StateScanning
	s.scanID = scanID
	s.cancel = cancel
	s.mu.Unlock()

	started := time.Now()
	result, err := s.run(scanCtx, scanID, onProgress)

	s.mu.Lock()
	s.cancel = nil
	switch {
	case err != nil:
		s.state = StateFailed
	case result.State == StateCancelled:
		s.state = StateCancelled
	default:
		s.state = StateCompleted
	}
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	result.Duration = time.Since(started)
	s.logger.Info("scan finished",
		logging.String("scan_id", scanID.String()),
		logging.String("state", string(result.State)),
		logging.Int("songs", len(result.Songs)),
		logging.Int("skipped", len(result.Skipped)),
		logging.Int("cache_hits", result.CacheHits),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

func (s *Scanner) run(ctx context.Context, scanID uuid.UUID, onProgress func(Progress)) (*Result, error) {
	result := &Result{ScanID: scanID, State: StateCompleted}

	folders, err := s.discoverFolders()
	if err != nil {
		return nil, err
	}
	s.logger.Info("scan started",
		logging.String("scan_id", scanID.String()),
		logging.String("library", s.cfg.Paths.LibraryDir),
		logging.Int("folders", len(folders)),
	)
	if len(folders) == 0 {
		return result, nil
	}

	workers := s.cfg.ScanWorkers(runtime.NumCPU())
	if workers > len(folders) {
		workers = len(folders)
	}

	jobs := make(chan scanJob)
	results := make(chan scanResult, len(folders))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				results <- s.scanFolder(ctx, job)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(jobs)
		for i, dir := range folders {
			select {
			case jobs <- scanJob{index: i, dir: dir}:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Collect every worker result, then restore traversal order so scan
	// output is stable regardless of worker interleaving.
	ordered := make([]*scanResult, len(folders))
	sampler := logging.NewProgressSampler(s.cfg.Scan.ProgressPercentStep)
	processed := 0
	for res := range results {
		res := res
		ordered[res.index] = &res
		processed++
		percent := float64(processed) / float64(len(folders)) * 100
		if sampler.ShouldEmit(percent, "scanning") {
			s.logger.Info("scan progress",
				logging.String("scan_id", scanID.String()),
				logging.Int("processed", processed),
				logging.Int("total", len(folders)),
			)
			if onProgress != nil {
				onProgress(Progress{
					ScanID:    scanID,
					Phase:     "scanning",
					Processed: processed,
					Total:     len(folders),
					Percent:   percent,
				})
			}
		}
	}

	if ctx.Err() != nil {
		// Cancelled scans leave the cache untouched: a partial commit
		// would make the next scan trust half-measured results.
		result.State = StateCancelled
		return result, nil
	}

	seen := make(map[string]struct{}, len(folders))
	keepPaths := make(map[string]struct{}, len(folders))
	var cacheBatch []songcache.Entry
	for _, res := range ordered {
		if res == nil {
			continue
		}
		if res.skip != nil {
			result.Skipped = append(result.Skipped, *res.skip)
			continue
		}
		song := res.song
		if _, dup := seen[song.Fingerprint]; dup {
			result.Skipped = append(result.Skipped, SkippedFolder{
				Path:   filepath.Dir(song.DescriptorPath),
				Reason: "duplicate chart fingerprint",
			})
			continue
		}
		seen[song.Fingerprint] = struct{}{}
		keepPaths[song.ChartPath] = struct{}{}
		if res.cacheHit {
			result.CacheHits++
		} else {
			result.CacheMisses++
			if res.entry != nil {
				cacheBatch = append(cacheBatch, *res.entry)
			}
		}
		result.Songs = append(result.Songs, *song)
	}

	s.commitCache(ctx, cacheBatch, keepPaths)
	return result, nil
}

// commitCache persists freshly scanned entries and drops rows for charts no
// longer on disk. Cache failures degrade to a warning; the scan result is
// already complete.
func (s *Scanner) commitCache(ctx context.Context, batch []songcache.Entry, keep map[string]struct{}) {
	if s.store == nil {
		return
	}
	if err := s.store.PutBatch(ctx, batch); err != nil && !errors.Is(err, songcache.ErrUnavailable) {
		s.logger.Warn("cache write failed, results not persisted", logging.Error(err))
		return
	}
	if _, err := s.store.PruneMissing(ctx, keep); err != nil && !errors.Is(err, songcache.ErrUnavailable) {
		s.logger.Warn("cache prune failed", logging.Error(err))
	}
}

// discoverFolders walks the library collecting directories that hold a
// song.ini. WalkDir visits lexically, so the order is deterministic.
func (s *Scanner) discoverFolders() ([]string, error) {
	library, err := config.ExpandPath(s.cfg.Paths.LibraryDir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(library)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrLibraryMissing, library)
		}
		return nil, fmt.Errorf("stat library: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("library path %s is not a directory", library)
	}

	var folders []string
	err = filepath.WalkDir(library, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			s.logger.Warn("library walk error, skipping subtree",
				logging.String("path", path), logging.Error(walkErr))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && strings.EqualFold(d.Name(), DescriptorFile) {
			folders = append(folders, filepath.Dir(path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk library: %w", err)
	}
	return folders, nil
}

// scanFolder turns one song folder into a record, consulting the cache
// before doing any hashing or parsing.
func (s *Scanner) scanFolder(ctx context.Context, job scanJob) scanResult {
	if ctx.Err() != nil {
		return scanResult{index: job.index, skip: &SkippedFolder{Path: job.dir, Reason: "scan cancelled"}}
	}

	chartPath, kind, found := findChart(job.dir)
	if !found {
		return scanResult{index: job.index, skip: &SkippedFolder{Path: job.dir, Reason: "no chart asset"}}
	}

	chartInfo, err := os.Stat(chartPath)
	if err != nil {
		return scanResult{index: job.index, skip: &SkippedFolder{Path: job.dir, Reason: "chart unreadable: " + err.Error()}}
	}

	if cached, err := s.store.LookupPath(ctx, chartPath); err == nil && cached.FreshFor(chartInfo) {
		song := cached.Song
		s.finalize(&song)
		return scanResult{index: job.index, song: &song, cacheHit: true}
	} else if err != nil {
		s.logger.Warn("cache lookup failed", logging.String("path", chartPath), logging.Error(err))
	}

	fp, err := fingerprint.File(chartPath)
	if err != nil {
		return scanResult{index: job.index, skip: &SkippedFolder{Path: job.dir, Reason: "fingerprint failed: " + err.Error()}}
	}

	descriptorPath := filepath.Join(job.dir, DescriptorFile)
	desc, err := parseDescriptor(descriptorPath)
	if err != nil {
		return scanResult{index: job.index, skip: &SkippedFolder{Path: job.dir, Reason: "descriptor unreadable: " + err.Error()}}
	}

	song := songs.Song{
		Fingerprint:    fp,
		Title:          desc.Title,
		Artist:         desc.Artist,
		Charter:        desc.Charter,
		Genre:          desc.Genre,
		Album:          desc.Album,
		Year:           desc.Year,
		LengthSeconds:  desc.LengthSeconds,
		DiffGuitar:     desc.DiffGuitar,
		ChartKind:      kind,
		DescriptorPath: descriptorPath,
		ChartPath:      chartPath,
	}
	if song.Title == "" {
		song.Title = deriveTitle(job.dir)
	}

	if chart.HasGuitarPart(chartPath) {
		if summary, ok := chart.Analyze(chartPath); ok {
			song.NPS = songs.NPS{Avg: summary.AvgNPS, Peak: summary.PeakNPS, Available: true}
		}
	}

	s.finalize(&song)

	entry := &songcache.Entry{
		Song:         song,
		ChartMTimeNS: chartInfo.ModTime().UnixNano(),
		ChartSize:    chartInfo.Size(),
		ScannedAt:    time.Now().UTC(),
	}
	return scanResult{index: job.index, song: &song, entry: entry}
}

// finalize normalizes metadata and applies config-dependent derivations,
// which are recomputed even for cache hits since the config may have
// changed between scans.
func (s *Scanner) finalize(song *songs.Song) {
	song.Normalize()
	song.Score = songs.CompositeScore(song, songs.ScoreOptions{
		LowerOfficial: s.cfg.Tiering.LowerOfficialCharters,
		WeightNPS:     s.cfg.Tiering.WeightByNPS,
	})
	song.Eligible = true
	song.IneligibleReason = ""
	if !song.NPS.Available && !chart.HasGuitarPart(song.ChartPath) {
		song.Eligible = false
		song.IneligibleReason = "no guitar part"
	}
}
