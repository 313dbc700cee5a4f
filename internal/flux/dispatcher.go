// Package flux is the central action dispatcher: every mutation of the
// shared visualization state goes through Dispatch, which runs reducers
// and watchers strictly in dispatch order.
package flux

import "sync"

// Action is a named event with an arbitrary payload.
type Action struct {
	Type    string
	Payload any
}

// Reducer consumes every dispatched action, in order.
type Reducer func(Action)

// WatcherFunc is invoked for actions matching a watcher's type filter.
// cancelSelf removes the watcher; a one-shot watcher calls it from
// inside the callback. It is always safe to call more than once.
type WatcherFunc func(a Action, cancelSelf func())

// Watcher is a registered action subscription with explicit cancel.
type Watcher struct {
	id    int
	types map[string]bool
	fn    WatcherFunc
	d     *Dispatcher
}

// Cancel removes the watcher from the registry. Idempotent.
func (w *Watcher) Cancel() {
	w.d.removeWatcher(w.id)
}

// Dispatcher processes actions strictly in dispatch order. A dispatch
// issued from inside a reducer or watcher is queued behind the action
// currently being processed, never run recursively, so every observer
// sees one consistent read-modify-write per action.
type Dispatcher struct {
	mu          sync.Mutex
	reducers    []Reducer
	watchers    []*Watcher
	queue       []Action
	dispatching bool
	nextID      int
}

func New() *Dispatcher {
	return &Dispatcher{}
}

// Register adds a store reducer. Reducers run in registration order.
func (d *Dispatcher) Register(r Reducer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reducers = append(d.reducers, r)
}

// Dispatch queues the action and, unless a dispatch loop is already
// draining the queue, processes it (and everything queued behind it).
func (d *Dispatcher) Dispatch(a Action) {
	d.mu.Lock()
	d.queue = append(d.queue, a)
	if d.dispatching {
		d.mu.Unlock()
		return
	}
	d.dispatching = true

	for len(d.queue) > 0 {
		act := d.queue[0]
		d.queue = d.queue[1:]
		reducers := append([]Reducer(nil), d.reducers...)
		watchers := append([]*Watcher(nil), d.watchers...)
		d.mu.Unlock()

		for _, r := range reducers {
			r(act)
		}
		for _, w := range watchers {
			if w.types != nil && !w.types[act.Type] {
				continue
			}
			w.fn(act, w.Cancel)
		}

		d.mu.Lock()
	}
	d.dispatching = false
	d.mu.Unlock()
}

// AddWatcher registers a watcher for the given action types. An empty
// type list matches every action. The watcher stays registered until
// cancelled, from inside the callback or via the returned handle.
func (d *Dispatcher) AddWatcher(types []string, fn WatcherFunc) *Watcher {
	d.mu.Lock()
	defer d.mu.Unlock()

	var filter map[string]bool
	if len(types) > 0 {
		filter = make(map[string]bool, len(types))
		for _, t := range types {
			filter[t] = true
		}
	}
	d.nextID++
	w := &Watcher{id: d.nextID, types: filter, fn: fn, d: d}
	d.watchers = append(d.watchers, w)
	return w
}

// WatcherCount returns the number of registered watchers. Used by tests
// to verify one-shot watchers clean up after themselves.
func (d *Dispatcher) WatcherCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.watchers)
}

func (d *Dispatcher) removeWatcher(id int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, w := range d.watchers {
		if w.id == id {
			d.watchers = append(d.watchers[:i], d.watchers[i+1:]...)
			return
		}
	}
}
