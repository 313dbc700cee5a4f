package scheduler

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/astroview/voprod/internal/logger"
	"github.com/astroview/voprod/internal/sources/profiles"
)

func writeProfiles(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestProfileReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	writeProfiles(t, path, "profiles:\n  - name: one\n")

	set := profiles.NewSet()
	pr := NewProfileReloader(path, set, logger.NewNop(), time.Hour, nil)

	if err := pr.Reload(); err != nil {
		t.Fatal(err)
	}
	if set.Count() != 1 {
		t.Fatalf("count = %d, want 1", set.Count())
	}

	writeProfiles(t, path, "profiles:\n  - name: one\n  - name: two\n")
	if err := pr.Reload(); err != nil {
		t.Fatal(err)
	}
	if set.Count() != 2 {
		t.Fatalf("count after reload = %d, want 2", set.Count())
	}
}

func TestProfileReloadKeepsSetOnBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	writeProfiles(t, path, "profiles:\n  - name: one\n")

	set := profiles.NewSet()
	pr := NewProfileReloader(path, set, logger.NewNop(), time.Hour, nil)
	if err := pr.Reload(); err != nil {
		t.Fatal(err)
	}

	writeProfiles(t, path, "profiles: [broken")
	if err := pr.Reload(); err == nil {
		t.Fatal("bad file reloaded without error")
	}
	if set.Count() != 1 {
		t.Errorf("count = %d, want the previous set kept", set.Count())
	}
}
