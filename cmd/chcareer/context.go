package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"chcareer/internal/config"
	"chcareer/internal/logging"
	"chcareer/internal/scanner"
	"chcareer/internal/songcache"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.loggerOnce.Do(func() {
		logger, logErr := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
		if logErr != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger, nil
}

// openStore opens the scan cache, degrading to an always-miss cache when the
// database is unavailable. The returned warning, when non-empty, should be
// surfaced to the user; the scan itself proceeds either way.
func (c *commandContext) openStore() (*songcache.Store, string) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, ""
	}
	store, err := songcache.Open(cfg)
	if err != nil {
		if errors.Is(err, songcache.ErrLocked) {
			return nil, "song cache is locked by another process; continuing without caching"
		}
		return nil, fmt.Sprintf("song cache unavailable (%v); continuing without caching", err)
	}
	return store, ""
}

// scanLibrary runs one full library scan with cache support, printing the
// cache warning and live progress (terminal only) to out.
func (c *commandContext) scanLibrary(ctx context.Context, out io.Writer) (*scanner.Result, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	store, warn := c.openStore()
	if warn != "" {
		fmt.Fprintln(out, warn)
	}
	defer store.Close()

	interactive := shouldColorize(out)
	var onProgress func(scanner.Progress)
	if interactive {
		onProgress = func(p scanner.Progress) {
			fmt.Fprintf(out, "\rScanning %d/%d folders (%.0f%%)", p.Processed, p.Total, p.Percent)
		}
	}

	s := scanner.New(cfg, store, logger)
	result, err := s.Scan(ctx, onProgress)
	if interactive {
		fmt.Fprintln(out)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}
