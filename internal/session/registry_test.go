package session

import (
	"testing"
	"time"
)

func TestGetOrCreate(t *testing.T) {
	r := NewRegistry()

	s, created := r.GetOrCreate("")
	if !created {
		t.Fatal("fresh registry did not create a session")
	}
	if s.ID == "" || s.Ctx == nil {
		t.Fatalf("created session incomplete: %+v", s)
	}

	again, created := r.GetOrCreate(s.ID)
	if created {
		t.Error("existing id created a new session")
	}
	if again != s {
		t.Error("lookup returned a different session")
	}

	if _, created := r.GetOrCreate("unknown-id"); !created {
		t.Error("unknown id did not create a session")
	}
	if r.Count() != 2 {
		t.Errorf("count = %d, want 2", r.Count())
	}
}

func TestIdleSince(t *testing.T) {
	r := NewRegistry()
	fresh, _ := r.GetOrCreate("")
	stale, _ := r.GetOrCreate("")
	stale.LastSeen = time.Now().Add(-2 * time.Hour)

	idle := r.IdleSince(time.Now().Add(-time.Hour))
	if len(idle) != 1 || idle[0] != stale.ID {
		t.Fatalf("idle = %v, want only %s", idle, stale.ID)
	}

	r.Delete(stale.ID)
	if r.Get(stale.ID) != nil {
		t.Error("deleted session still present")
	}
	if r.Get(fresh.ID) == nil {
		t.Error("fresh session lost")
	}
}

func TestRecordRoundTrip(t *testing.T) {
	r := NewRegistry()
	s, _ := r.GetOrCreate("")
	s.Ctx.UpdateActiveKey("https://ex/dl", "dlt-2")
	s.Ctx.SetComponentValue("wise", "sdCutoutSize", "0.05")

	restored := FromRecord(s.ToRecord())
	if restored.ID != s.ID {
		t.Errorf("id = %q, want %q", restored.ID, s.ID)
	}
	if got := restored.Ctx.ActiveMenuKey("https://ex/dl"); got != "dlt-2" {
		t.Errorf("active key = %q, want dlt-2", got)
	}
	if got := restored.Ctx.CurrentLookupKey(); got != "https://ex/dl" {
		t.Errorf("current lookup key = %q, want the selected table url", got)
	}
	if got := restored.Ctx.CutoutSize("wise"); got != 0.05 {
		t.Errorf("cutout size = %v, want 0.05", got)
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if len(id) != 32 {
			t.Fatalf("id length = %d, want 32", len(id))
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
