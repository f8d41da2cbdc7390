package config

const (
	defaultLibraryDir          = "~/clonehero/songs"
	defaultCacheDir            = "~/.cache/chcareer"
	defaultLogDir              = "~/.local/share/chcareer/logs"
	defaultWorkerFraction      = 0.75
	defaultProgressPercentStep = 5.0
	defaultTierCount           = 8
	defaultSongsPerTier        = 5
	defaultArtistCap           = 1
	defaultMinDifficulty       = 1
	defaultLongSongMinutes     = 7
	defaultLongSongTierScope   = 2
	defaultTierNameTheme       = "plain"
	defaultExportMode          = "combined"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			CacheDir:   defaultCacheDir,
			LogDir:     defaultLogDir,
		},
		Scan: Scan{
			WorkerFraction:      defaultWorkerFraction,
			ProgressPercentStep: defaultProgressPercentStep,
		},
		Tiering: Tiering{
			TierCount:         defaultTierCount,
			SongsPerTier:      defaultSongsPerTier,
			ArtistCap:         defaultArtistCap,
			MinDifficulty:     defaultMinDifficulty,
			ExcludeMemeGenres: true,
			LongSongMinutes:   defaultLongSongMinutes,
			LongSongTierScope: defaultLongSongTierScope,
			TierNameTheme:     defaultTierNameTheme,
		},
		Export: Export{
			Mode: defaultExportMode,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
