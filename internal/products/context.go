package products

import (
	"strconv"
	"sync"
)

// DefaultComponentKey is the component-state slot used when options do
// not name one.
const DefaultComponentKey = "DEFAULT_FACTORY_COMP_KEY"

// CutoutSizeKey is the component-state field holding the user's cutout
// size in degrees.
const CutoutSizeKey = "sdCutoutSize"

// DefaultCutoutDeg is the cutout size used when the user never set one.
const DefaultCutoutDeg = 0.0213

// Context holds the cross-rebuild state of one data-products instance:
// which menu key was last active per DataLink table, which table was
// last touched, user-entered component values, and the counter behind
// extraction plot ids. One Context per session; safe for concurrent use.
type Context struct {
	mu sync.Mutex

	// activeMenuKeys remembers the selected menu key per lookup key
	// (the DataLink table URL).
	activeMenuKeys map[string]string

	// currentLookupKey is the lookup key of the most recent selection,
	// which image-grid menus consult to carry the choice across rows.
	currentLookupKey string

	// componentState holds user-entered values keyed by component key
	// then field name, e.g. the cutout size.
	componentState map[string]map[string]string

	extractCounter int
}

func NewContext() *Context {
	return &Context{
		activeMenuKeys: make(map[string]string),
		componentState: make(map[string]map[string]string),
	}
}

// ActiveMenuKey returns the menu key last selected for a lookup key.
func (c *Context) ActiveMenuKey(lookupKey string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeMenuKeys[lookupKey]
}

// UpdateActiveKey records the selected menu key for a lookup key and
// marks that lookup key as the current one.
func (c *Context) UpdateActiveKey(lookupKey, menuKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeMenuKeys[lookupKey] = menuKey
	c.currentLookupKey = lookupKey
}

// CurrentLookupKey returns the lookup key of the most recent selection.
func (c *Context) CurrentLookupKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentLookupKey
}

// ResetActiveKeys drops all remembered selections.
func (c *Context) ResetActiveKeys() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeMenuKeys = make(map[string]string)
	c.currentLookupKey = ""
}

// ComponentState returns a copy of the named component slot.
func (c *Context) ComponentState(key string) map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.componentState[key]))
	for k, v := range c.componentState[key] {
		out[k] = v
	}
	return out
}

// SetComponentValue stores one user-entered value in a component slot.
func (c *Context) SetComponentValue(key, field, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot, ok := c.componentState[key]
	if !ok {
		slot = make(map[string]string)
		c.componentState[key] = slot
	}
	slot[field] = value
}

// CutoutSize returns the cutout size in degrees for a component key,
// falling back to the default when unset or unparsable.
func (c *Context) CutoutSize(key string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot, ok := c.componentState[key]
	if !ok {
		return DefaultCutoutDeg
	}
	raw, ok := slot[CutoutSizeKey]
	if !ok {
		return DefaultCutoutDeg
	}
	size, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return DefaultCutoutDeg
	}
	return size
}

// ContextSnapshot is the serializable form of a Context, used to
// persist session state between requests.
type ContextSnapshot struct {
	ActiveMenuKeys   map[string]string            `json:"active_menu_keys"`
	CurrentLookupKey string                       `json:"current_lookup_key,omitempty"`
	ComponentState   map[string]map[string]string `json:"component_state,omitempty"`
	ExtractCounter   int                          `json:"extract_counter"`
}

// Snapshot copies the Context into its serializable form.
func (c *Context) Snapshot() ContextSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := ContextSnapshot{
		ActiveMenuKeys:   make(map[string]string, len(c.activeMenuKeys)),
		CurrentLookupKey: c.currentLookupKey,
		ComponentState:   make(map[string]map[string]string, len(c.componentState)),
		ExtractCounter:   c.extractCounter,
	}
	for k, v := range c.activeMenuKeys {
		s.ActiveMenuKeys[k] = v
	}
	for key, slot := range c.componentState {
		cp := make(map[string]string, len(slot))
		for f, v := range slot {
			cp[f] = v
		}
		s.ComponentState[key] = cp
	}
	return s
}

// Restore replaces the Context state with a snapshot's.
func (c *Context) Restore(s ContextSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeMenuKeys = make(map[string]string, len(s.ActiveMenuKeys))
	for k, v := range s.ActiveMenuKeys {
		c.activeMenuKeys[k] = v
	}
	c.currentLookupKey = s.CurrentLookupKey
	c.componentState = make(map[string]map[string]string, len(s.ComponentState))
	for key, slot := range s.ComponentState {
		cp := make(map[string]string, len(slot))
		for f, v := range slot {
			cp[f] = v
		}
		c.componentState[key] = cp
	}
	c.extractCounter = s.ExtractCounter
}

// NextExtractPlotID mints the next pinned-extraction plot id. Ids are
// assigned when the extraction command is built, not when it runs, so a
// rebuilt menu keeps handing out fresh ids.
func (c *Context) NextExtractPlotID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := "extract-plotId-" + strconv.Itoa(c.extractCounter)
	c.extractCounter++
	return id
}
