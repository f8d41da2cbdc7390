package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chcareer/internal/config"
	"chcareer/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	cfg := config.Default()
	cfg.Paths.LibraryDir = filepath.Join(base, "songs")
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Tiering.TierCount = 2
	cfg.Tiering.SongsPerTier = 2
	if err := os.MkdirAll(cfg.Paths.LibraryDir, 0o755); err != nil {
		t.Fatalf("mkdir library: %v", err)
	}

	configPath := filepath.Join(homeDir, ".config", "chcareer", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, &cfg)

	return &cliTestEnv{cfg: &cfg, configPath: configPath, baseDir: base}
}

// seedLibrary fills the test library with four distinct songs so the
// configured 2x2 ladder fills completely.
func seedLibrary(t *testing.T, env *cliTestEnv) {
	t.Helper()
	for i := 1; i <= 4; i++ {
		chartData := []byte(testsupport.ChartText(testsupport.ChartSpec{
			OnsetTicks: []int64{96, 192, 288, int64(96 * (3 + i))},
		}))
		testsupport.SongFolder(t, env.cfg.Paths.LibraryDir, fmt.Sprintf("Artist %d - Song %d", i, i),
			map[string]string{
				"name":        fmt.Sprintf("Song %d", i),
				"artist":      fmt.Sprintf("Artist %d", i),
				"genre":       "Rock",
				"diff_guitar": fmt.Sprintf("%d", i+1),
				"song_length": "180000",
			}, "notes.chart", chartData)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
library_dir = %q
cache_dir = %q
log_dir = %q

[tiering]
tier_count = %d
songs_per_tier = %d

[logging]
level = "error"
`,
		cfg.Paths.LibraryDir,
		cfg.Paths.CacheDir,
		cfg.Paths.LogDir,
		cfg.Tiering.TierCount,
		cfg.Tiering.SongsPerTier,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
