package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	seedLibrary(t, env)

	out, _, err := runCLI(t, []string{"scan"}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "Song 1")
	requireContains(t, out, "Artist 4")
	requireContains(t, out, "4 songs")
	requireContains(t, out, "0 cache hits")

	// A second scan is served from the cache.
	out, _, err = runCLI(t, []string{"scan"}, env.configPath)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	requireContains(t, out, "4 cache hits")
}

func TestScanCommandShowsSkipped(t *testing.T) {
	env := setupCLITestEnv(t)
	seedLibrary(t, env)
	dir := filepath.Join(env.cfg.Paths.LibraryDir, "Chartless")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "song.ini"), []byte("[song]\nname = Chartless\n"), 0o644); err != nil {
		t.Fatalf("write song.ini: %v", err)
	}

	out, _, err := runCLI(t, []string{"scan", "--skipped"}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "1 skipped")
	requireContains(t, out, "no chart asset")
}

func TestTiersCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	seedLibrary(t, env)

	out, _, err := runCLI(t, []string{"tiers"}, env.configPath)
	if err != nil {
		t.Fatalf("tiers: %v", err)
	}
	requireContains(t, out, "Tier 1")
	requireContains(t, out, "Tier 2")
	requireContains(t, out, "Song 1")
	requireContains(t, out, "Song 4")
}

func TestTiersCommandThemeOverride(t *testing.T) {
	env := setupCLITestEnv(t)
	seedLibrary(t, env)

	out, _, err := runCLI(t, []string{"tiers", "--theme", "guitar-hero"}, env.configPath)
	if err != nil {
		t.Fatalf("tiers: %v", err)
	}
	requireContains(t, out, "Local Gig")
	requireContains(t, out, "Small Club")
}

func TestExportAndImportCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	seedLibrary(t, env)
	exportDir := filepath.Join(env.baseDir, "export")

	out, _, err := runCLI(t, []string{"export", "--out", exportDir, "--name", "career"}, env.configPath)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	requireContains(t, out, "Wrote ")

	exported := filepath.Join(exportDir, "career.setlist")
	if _, err := os.Stat(exported); err != nil {
		t.Fatalf("exported setlist missing: %v", err)
	}

	out, _, err = runCLI(t, []string{"import", exported}, env.configPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	requireContains(t, out, "Tier 1")
	// Titles resolve through the cache populated by the export's scan.
	requireContains(t, out, "Song 1")
}

func TestExportPerTierCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	seedLibrary(t, env)
	exportDir := filepath.Join(env.baseDir, "export")

	_, _, err := runCLI(t, []string{"export", "--out", exportDir, "--mode", "per-tier"}, env.configPath)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, name := range []string{"career-01.setlist", "career-02.setlist"} {
		if _, err := os.Stat(filepath.Join(exportDir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
}

func TestCacheCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	seedLibrary(t, env)

	if _, _, err := runCLI(t, []string{"scan"}, env.configPath); err != nil {
		t.Fatalf("scan: %v", err)
	}

	out, _, err := runCLI(t, []string{"cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Entries:  4")

	out, _, err = runCLI(t, []string{"cache", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Removed 4 cache entries")
}
