// Package imagevis is the shared image-visualization store: plot views,
// viewer item lists, and the orchestration that keeps them in sync with
// resolved data products. All mutation goes through the flux dispatcher;
// nothing here writes state directly.
package imagevis

import (
	"slices"
	"sync"

	"github.com/astroview/voprod/internal/flux"
	"github.com/astroview/voprod/internal/logger"
)

// Server-call states of a plot view.
const (
	ServerCallWorking = "working"
	ServerCallSuccess = "success"
	ServerCallFail    = "fail"
)

// PlotView is the plotted state for one plot id. Request holds the
// request that produced it; ThreeColor is set for composite plots.
type PlotView struct {
	PlotID      string
	PlotGroupID string
	Request     *PlotRequest
	ThreeColor  *ThreeColorRequest
	Attributes  map[string]string
	ServerCall  string
	ZoomType    string
}

// Viewer is an ordered list of plot ids shown together.
type Viewer struct {
	ID      string
	ItemIDs []string
	Layout  string
}

// Vis is the visualization store. State is mutated only by the reducer
// registered on the dispatcher; accessors take a read lock so any
// goroutine may read.
type Vis struct {
	d   *flux.Dispatcher
	log logger.Logger

	mu                    sync.RWMutex
	plotViews             []*PlotView
	viewers               map[string]*Viewer
	activePlotID          string
	defaultCoverageActive bool
	expanded              bool
	wcsMatchActive        bool
}

// New creates the store and registers its reducer on the dispatcher.
func New(d *flux.Dispatcher, log logger.Logger) *Vis {
	v := &Vis{
		d:       d,
		log:     log,
		viewers: make(map[string]*Viewer),
	}
	d.Register(v.reduce)
	return v
}

// Dispatcher returns the dispatcher the store is registered on.
func (v *Vis) Dispatcher() *flux.Dispatcher { return v.d }

func (v *Vis) reduce(a flux.Action) {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch a.Type {
	case ActionPlotImage:
		p, ok := a.Payload.(PlotImagePayload)
		if !ok {
			return
		}
		v.plotImageLocked(p)
	case ActionPlotGroup:
		p, ok := a.Payload.(PlotGroupPayload)
		if !ok {
			return
		}
		v.plotGroupLocked(p)
	case ActionPlotImageDone:
		p, ok := a.Payload.(PlotImageDonePayload)
		if !ok {
			return
		}
		for _, info := range p.NewPlotInfo {
			if pv := v.findLocked(info.PlotID); pv != nil {
				pv.ServerCall = ServerCallSuccess
			}
		}
	case ActionPlotImageFail:
		p, ok := a.Payload.(PlotImageFailPayload)
		if !ok {
			return
		}
		if pv := v.findLocked(p.PlotID); pv != nil {
			pv.ServerCall = ServerCallFail
		}
	case ActionDeletePlotView:
		p, ok := a.Payload.(DeletePlotViewPayload)
		if !ok {
			return
		}
		v.deleteLocked(p)
	case ActionReplaceViewerItems:
		p, ok := a.Payload.(ReplaceViewerItemsPayload)
		if !ok {
			return
		}
		vw := v.viewerLocked(p.ViewerID)
		vw.ItemIDs = slices.Clone(p.ItemIDs)
	case ActionChangeActivePlotView:
		p, ok := a.Payload.(ChangeActivePlotViewPayload)
		if !ok {
			return
		}
		if v.findLocked(p.PlotID) != nil {
			v.activePlotID = p.PlotID
		}
	case ActionZoom:
		p, ok := a.Payload.(ZoomPayload)
		if !ok {
			return
		}
		if pv := v.findLocked(p.PlotID); pv != nil {
			pv.ZoomType = p.ZoomType
		}
	}
}

func (v *Vis) plotImageLocked(p PlotImagePayload) {
	plotID := p.PlotID
	if plotID == "" && p.Request != nil {
		plotID = p.Request.PlotID
	}
	if plotID == "" && p.ThreeColor != nil {
		if r := p.ThreeColor.First(); r != nil {
			plotID = r.PlotID
		}
	}
	if plotID == "" {
		v.log.Warn("plot image dispatched without a plot id")
		return
	}

	pv := v.findLocked(plotID)
	if pv == nil {
		pv = &PlotView{PlotID: plotID}
		v.plotViews = append(v.plotViews, pv)
	}
	pv.Request = p.Request
	pv.ThreeColor = p.ThreeColor
	pv.ServerCall = ServerCallWorking
	pv.Attributes = mergeAttrs(p.Attributes, requestAttrs(p.Request, p.ThreeColor))
	if p.Request != nil {
		pv.PlotGroupID = p.Request.PlotGroupID
	} else if r := p.ThreeColor.First(); r != nil {
		pv.PlotGroupID = r.PlotGroupID
	}
	if p.ViewerID != "" {
		v.addViewerItemLocked(p.ViewerID, plotID)
	}
}

func (v *Vis) plotGroupLocked(p PlotGroupPayload) {
	var firstNew string
	for _, r := range p.Requests {
		if r == nil || r.PlotID == "" {
			continue
		}
		pv := v.findLocked(r.PlotID)
		if pv == nil {
			pv = &PlotView{PlotID: r.PlotID}
			v.plotViews = append(v.plotViews, pv)
			if firstNew == "" {
				firstNew = r.PlotID
			}
		}
		pv.Request = r
		pv.PlotGroupID = r.PlotGroupID
		pv.ServerCall = ServerCallWorking
		pv.Attributes = mergeAttrs(p.Attributes, r.Attributes)
		if p.ViewerID != "" {
			v.addViewerItemLocked(p.ViewerID, r.PlotID)
		}
	}
	if p.SetNewPlotAsActive && firstNew != "" && v.activePlotID == "" {
		v.activePlotID = firstNew
	}
}

func (v *Vis) deleteLocked(p DeletePlotViewPayload) {
	for i, pv := range v.plotViews {
		if pv.PlotID == p.PlotID {
			v.plotViews = append(v.plotViews[:i], v.plotViews[i+1:]...)
			break
		}
	}
	for _, vw := range v.viewers {
		if idx := slices.Index(vw.ItemIDs, p.PlotID); idx >= 0 {
			vw.ItemIDs = append(vw.ItemIDs[:idx], vw.ItemIDs[idx+1:]...)
		}
	}
	if v.activePlotID == p.PlotID {
		v.activePlotID = ""
	}
	if !p.HoldWcsMatch {
		v.wcsMatchActive = false
	}
}

func (v *Vis) viewerLocked(id string) *Viewer {
	vw, ok := v.viewers[id]
	if !ok {
		vw = &Viewer{ID: id, Layout: LayoutSingle}
		v.viewers[id] = vw
	}
	return vw
}

func (v *Vis) addViewerItemLocked(viewerID, plotID string) {
	vw := v.viewerLocked(viewerID)
	if !slices.Contains(vw.ItemIDs, plotID) {
		vw.ItemIDs = append(vw.ItemIDs, plotID)
	}
}

func (v *Vis) findLocked(plotID string) *PlotView {
	for _, pv := range v.plotViews {
		if pv.PlotID == plotID {
			return pv
		}
	}
	return nil
}

func mergeAttrs(base, extra map[string]string) map[string]string {
	if base == nil && extra == nil {
		return nil
	}
	out := make(map[string]string, len(base)+len(extra))
	for k, val := range base {
		out[k] = val
	}
	for k, val := range extra {
		out[k] = val
	}
	return out
}

func requestAttrs(r *PlotRequest, tc *ThreeColorRequest) map[string]string {
	if r != nil {
		return r.Attributes
	}
	if f := tc.First(); f != nil {
		return f.Attributes
	}
	return nil
}

// PlotViewByID returns the view for a plot id, or nil.
func (v *Vis) PlotViewByID(plotID string) *PlotView {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.findLocked(plotID)
}

// PlotViews returns a snapshot slice of all plot views, in plot order.
func (v *Vis) PlotViews() []*PlotView {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.plotViews)
}

// PrimePlot returns the completed request for a plot id, nil while the
// plot is still working or after it failed.
func (v *Vis) PrimePlot(plotID string) *PlotRequest {
	v.mu.RLock()
	defer v.mu.RUnlock()
	pv := v.findLocked(plotID)
	if pv == nil || pv.ServerCall != ServerCallSuccess {
		return nil
	}
	return pv.Request
}

// ViewerItemIDs returns a snapshot of a viewer's item list.
func (v *Vis) ViewerItemIDs(viewerID string) []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	vw, ok := v.viewers[viewerID]
	if !ok {
		return nil
	}
	return slices.Clone(vw.ItemIDs)
}

// LayoutType returns a viewer's layout ("single" unless changed).
func (v *Vis) LayoutType(viewerID string) string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	vw, ok := v.viewers[viewerID]
	if !ok {
		return LayoutSingle
	}
	return vw.Layout
}

// SetLayoutType sets a viewer's layout. UI-driven, not reducer state.
func (v *Vis) SetLayoutType(viewerID, layout string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.viewerLocked(viewerID).Layout = layout
}

// ActivePlotID returns the id of the active plot view, or "".
func (v *Vis) ActivePlotID() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.activePlotID
}

// DefaultCoverageActive reports whether the default coverage viewer is
// the one currently showing.
func (v *Vis) DefaultCoverageActive() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.defaultCoverageActive
}

// SetDefaultCoverageActive records which viewer family is showing.
func (v *Vis) SetDefaultCoverageActive(active bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.defaultCoverageActive = active
}

// Expanded reports whether the image area is in expanded mode.
func (v *Vis) Expanded() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.expanded
}

// SetExpanded records expanded mode.
func (v *Vis) SetExpanded(expanded bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.expanded = expanded
}

// WcsMatchActive reports whether WCS matching is on.
func (v *Vis) WcsMatchActive() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.wcsMatchActive
}

// SetWcsMatchActive turns WCS matching on or off.
func (v *Vis) SetWcsMatchActive(active bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.wcsMatchActive = active
}
