package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateTiering(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.LibraryDir == "" {
		return errors.New("paths.library_dir must be set")
	}
	if c.Paths.CacheDir == "" {
		return errors.New("paths.cache_dir must be set")
	}
	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.WorkerFraction <= 0 || c.Scan.WorkerFraction > 1 {
		return errors.New("scan.worker_fraction must be in (0, 1]")
	}
	if c.Scan.ProgressPercentStep <= 0 || c.Scan.ProgressPercentStep > 100 {
		return errors.New("scan.progress_percent_step must be in (0, 100]")
	}
	return nil
}

func (c *Config) validateTiering() error {
	if err := ensurePositiveMap(map[string]int{
		"tiering.tier_count":        c.Tiering.TierCount,
		"tiering.songs_per_tier":    c.Tiering.SongsPerTier,
		"tiering.artist_cap":        c.Tiering.ArtistCap,
		"tiering.long_song_minutes": c.Tiering.LongSongMinutes,
	}); err != nil {
		return err
	}
	if c.Tiering.MinDifficulty < 0 || c.Tiering.MinDifficulty > 9 {
		return errors.New("tiering.min_difficulty must be between 0 and 9")
	}
	if c.Tiering.LongSongTierScope < 0 || c.Tiering.LongSongTierScope > c.Tiering.TierCount {
		return errors.New("tiering.long_song_tier_scope must be between 0 and tiering.tier_count")
	}
	switch c.Tiering.TierNameTheme {
	case "plain", "guitar-hero":
	default:
		return fmt.Errorf("tiering.tier_name_theme: unsupported value %q", c.Tiering.TierNameTheme)
	}
	return nil
}

func (c *Config) validateExport() error {
	switch c.Export.Mode {
	case "combined", "per-tier":
		return nil
	default:
		return fmt.Errorf("export.mode: unsupported value %q", c.Export.Mode)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
