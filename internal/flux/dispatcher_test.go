package flux

import (
	"reflect"
	"testing"
)

func TestDispatchOrder(t *testing.T) {
	d := New()
	var got []string
	d.Register(func(a Action) {
		got = append(got, a.Type)
	})

	d.Dispatch(Action{Type: "a"})
	d.Dispatch(Action{Type: "b"})
	d.Dispatch(Action{Type: "c"})

	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("dispatch order = %v, want %v", got, want)
	}
}

func TestReentrantDispatchQueues(t *testing.T) {
	d := New()
	var got []string
	d.Register(func(a Action) {
		got = append(got, "reduce:"+a.Type)
		if a.Type == "first" {
			d.Dispatch(Action{Type: "nested"})
		}
		got = append(got, "done:"+a.Type)
	})

	d.Dispatch(Action{Type: "first"})

	// nested dispatch must run after first completes, never inside it
	want := []string{"reduce:first", "done:first", "reduce:nested", "done:nested"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWatcherFilter(t *testing.T) {
	d := New()
	var got []string
	d.AddWatcher([]string{"wanted"}, func(a Action, _ func()) {
		got = append(got, a.Type)
	})

	d.Dispatch(Action{Type: "ignored"})
	d.Dispatch(Action{Type: "wanted"})
	d.Dispatch(Action{Type: "ignored"})

	if len(got) != 1 || got[0] != "wanted" {
		t.Errorf("watcher saw %v, want [wanted]", got)
	}
}

func TestOneShotWatcherRemovesItself(t *testing.T) {
	d := New()
	calls := 0
	d.AddWatcher([]string{"evt"}, func(a Action, cancelSelf func()) {
		calls++
		cancelSelf()
	})

	d.Dispatch(Action{Type: "evt"})
	d.Dispatch(Action{Type: "evt"})

	if calls != 1 {
		t.Errorf("watcher ran %d times, want 1", calls)
	}
	if n := d.WatcherCount(); n != 0 {
		t.Errorf("watcher count after cancel = %d, want 0", n)
	}
}

func TestWatcherCancelIdempotent(t *testing.T) {
	d := New()
	w := d.AddWatcher(nil, func(Action, func()) {})
	w.Cancel()
	w.Cancel()
	if n := d.WatcherCount(); n != 0 {
		t.Errorf("watcher count = %d, want 0", n)
	}
}

func TestEmptyFilterMatchesAll(t *testing.T) {
	d := New()
	calls := 0
	d.AddWatcher(nil, func(Action, func()) { calls++ })

	d.Dispatch(Action{Type: "x"})
	d.Dispatch(Action{Type: "y"})

	if calls != 2 {
		t.Errorf("watcher ran %d times, want 2", calls)
	}
}
