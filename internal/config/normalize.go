package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScan()
	c.normalizeTiering()
	c.normalizeExport()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeScan() {
	if c.Scan.WorkerFraction <= 0 || c.Scan.WorkerFraction > 1 {
		c.Scan.WorkerFraction = defaultWorkerFraction
	}
	if c.Scan.ProgressPercentStep <= 0 {
		c.Scan.ProgressPercentStep = defaultProgressPercentStep
	}
}

func (c *Config) normalizeTiering() {
	if c.Tiering.TierCount <= 0 {
		c.Tiering.TierCount = defaultTierCount
	}
	if c.Tiering.SongsPerTier <= 0 {
		c.Tiering.SongsPerTier = defaultSongsPerTier
	}
	if c.Tiering.ArtistCap <= 0 {
		c.Tiering.ArtistCap = defaultArtistCap
	}
	if c.Tiering.MinDifficulty < 0 {
		c.Tiering.MinDifficulty = defaultMinDifficulty
	}
	if c.Tiering.LongSongMinutes <= 0 {
		c.Tiering.LongSongMinutes = defaultLongSongMinutes
	}
	if c.Tiering.LongSongTierScope < 0 {
		c.Tiering.LongSongTierScope = defaultLongSongTierScope
	}
	c.Tiering.TierNameTheme = strings.ToLower(strings.TrimSpace(c.Tiering.TierNameTheme))
	if c.Tiering.TierNameTheme == "" {
		c.Tiering.TierNameTheme = defaultTierNameTheme
	}
}

func (c *Config) normalizeExport() {
	c.Export.Mode = strings.ToLower(strings.TrimSpace(c.Export.Mode))
	if c.Export.Mode == "" {
		c.Export.Mode = defaultExportMode
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
