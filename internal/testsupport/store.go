package testsupport

import (
	"testing"

	"chcareer/internal/config"
	"chcareer/internal/songcache"
)

// MustOpenStore opens a scan cache in a temp directory and closes it when
// the test ends.
func MustOpenStore(t testing.TB, cfg *config.Config) *songcache.Store {
	t.Helper()

	store, err := songcache.Open(cfg)
	if err != nil {
		t.Fatalf("open song cache: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close song cache: %v", err)
		}
	})
	return store
}
