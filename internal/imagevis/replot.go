package imagevis

import (
	"slices"
	"strconv"

	"github.com/astroview/voprod/internal/flux"
	"github.com/astroview/voprod/internal/table"
)

// Migration describes what the UI is moving to when it leaves a product
// set; cleanup uses it to decide whether plots can be kept.
type Migration struct {
	NextDisplayType string
	NextTableID     string
	// ActiveTable is the table whose highlighted row governs which plots
	// survive; nil means nothing survives.
	ActiveTable *table.TableModel
}

// MigrationDisplayImage is the display-type tag for image products, as
// passed in Migration.NextDisplayType.
const MigrationDisplayImage = "image"

// CleanupFunc tears down plots left behind by a replot when the UI
// migrates away from the product set that created them.
type CleanupFunc func(m Migration)

// Replot reconciles the viewer with a prepared request set. Re-running
// with unchanged inputs creates no duplicate plots and dispatches no
// viewer-items replacement: existing plots in the group whose data is
// equal are reused, stale ones are deleted, and only genuinely new or
// changed requests are dispatched. The returned cleanup function
// garbage-collects plots for rows the user has moved away from.
func (v *Vis) Replot(activePlotID string, makeActive bool, viewerID, tblID string,
	reqs []*PlotRequest, threeColor *ThreeColorRequest) CleanupFunc {

	groupTag := tblID
	if groupTag == "" {
		groupTag = "no-table-group"
	}
	groupID := viewerID + "-" + groupTag + "-standard"

	live := make([]*PlotRequest, 0, len(reqs))
	for _, r := range reqs {
		if r != nil {
			live = append(live, r)
		}
	}

	// Reuse plot ids of data-equal plots already in the group.
	views := v.PlotViews()
	for _, r := range live {
		for _, pv := range views {
			if pv.PlotGroupID == groupID && DataEqual(pv.Request, r) {
				r.PlotID = pv.PlotID
				break
			}
		}
	}

	plottingIDs := make([]string, 0, len(live)+1)
	for _, r := range live {
		if r.PlotID != "" {
			plottingIDs = append(plottingIDs, r.PlotID)
		}
	}

	plottingThree := false
	threeCPlotID := ""
	if first := threeColor.First(); first != nil {
		plottingThree = true
		threeCPlotID = first.PlotID
		plottingIDs = append(plottingIDs, threeCPlotID)
		for _, b := range AllBands {
			if r := threeColor.Get(b); r != nil {
				r.PlotGroupID = groupID
			}
		}
	}

	// Prepare each standard request.
	prepared := make([]*PlotRequest, 0, len(live))
	for _, r := range live {
		c := r.Copy()
		c.PlotGroupID = groupID
		c.Annotation = AnnotationInline
		prepared = append(prepared, c)
	}

	// Replace viewer items only when the id set actually changes.
	inViewer := v.ViewerItemIDs(viewerID)
	if len(union(plottingIDs, inViewer)) != len(inViewer) || len(plottingIDs) < len(inViewer) {
		v.d.Dispatch(flux.Action{
			Type:    ActionReplaceViewerItems,
			Payload: ReplaceViewerItemsPayload{ViewerID: viewerID, ItemIDs: slices.Clone(plottingIDs)},
		})
	}

	// Clean up plot ids no longer requested, keeping WCS-match state.
	for _, stale := range difference(inViewer, plottingIDs) {
		v.d.Dispatch(flux.Action{
			Type:    ActionDeletePlotView,
			Payload: DeletePlotViewPayload{PlotID: stale, HoldWcsMatch: true},
		})
	}

	// Plot the requests not already satisfied by an equal plot.
	if toPlot := v.makePlottingList(prepared); len(toPlot) > 0 {
		v.d.Dispatch(flux.Action{
			Type: ActionPlotGroup,
			Payload: PlotGroupPayload{
				Requests:           toPlot,
				ViewerID:           viewerID,
				SetNewPlotAsActive: makeActive && activePlotID == "",
				HoldWcsMatch:       true,
				Attributes:         map[string]string{AttrDatalinkTableID: tblID},
			},
		})
	}
	if makeActive && activePlotID != "" {
		v.d.Dispatch(flux.Action{
			Type:    ActionChangeActivePlotView,
			Payload: ChangeActivePlotViewPayload{PlotID: activePlotID},
		})
	}

	// Three-color composite: dispatch only when the band mapping changed.
	if plottingThree && !v.threeColorCurrent(threeColor) {
		v.d.Dispatch(flux.Action{
			Type: ActionPlotImage,
			Payload: PlotImagePayload{
				PlotID:     threeCPlotID,
				ViewerID:   viewerID,
				ThreeColor: threeColor,
				Attributes: map[string]string{AttrDatalinkTableID: tblID},
			},
		})
	}

	return func(m Migration) {
		if v.Expanded() {
			return
		}
		if m.NextDisplayType == MigrationDisplayImage &&
			v.LayoutType(viewerID) == LayoutGrid && tblID == m.NextTableID {
			// the UI keeps showing a compatible grid for the same table
			return
		}
		for _, pv := range v.PlotViews() {
			if pv.PlotGroupID != groupID {
				continue
			}
			if plotMatchesHighlight(pv, m.ActiveTable) {
				continue
			}
			v.d.Dispatch(flux.Action{
				Type:    ActionDeletePlotView,
				Payload: DeletePlotViewPayload{PlotID: pv.PlotID},
			})
		}
		if plottingThree {
			v.d.Dispatch(flux.Action{
				Type:    ActionDeletePlotView,
				Payload: DeletePlotViewPayload{PlotID: threeCPlotID},
			})
		}
	}
}

// makePlottingList drops requests whose plot id already shows (or is
// already loading) the same image data.
func (v *Vis) makePlottingList(reqs []*PlotRequest) []*PlotRequest {
	out := make([]*PlotRequest, 0, len(reqs))
	for _, r := range reqs {
		pv := v.PlotViewByID(r.PlotID)
		switch {
		case pv == nil:
			out = append(out, r)
		case v.PrimePlot(r.PlotID) != nil:
			if !DataEqual(v.PrimePlot(r.PlotID), r) {
				out = append(out, r)
			}
		case pv.Request != nil:
			if !DataEqual(pv.Request, r) {
				out = append(out, r)
			}
		default:
			out = append(out, r)
		}
	}
	return out
}

// threeColorCurrent reports whether the currently plotted composite has
// the same per-band data as the requested one.
func (v *Vis) threeColorCurrent(tc *ThreeColorRequest) bool {
	first := tc.First()
	if first == nil {
		return true
	}
	pv := v.PlotViewByID(first.PlotID)
	if pv == nil || pv.ServerCall != ServerCallSuccess || pv.ThreeColor == nil {
		return false
	}
	for _, b := range AllBands {
		if !DataEqual(pv.ThreeColor.Get(b), tc.Get(b)) {
			return false
		}
	}
	return true
}

func plotMatchesHighlight(pv *PlotView, tbl *table.TableModel) bool {
	if tbl == nil || pv.ServerCall != ServerCallSuccess {
		return false
	}
	row, err := strconv.Atoi(pv.Attributes[AttrDatalinkTableRow])
	if err != nil {
		return false
	}
	return row == tbl.HighlightedRow && pv.Attributes[AttrDatalinkTableID] == tbl.ID
}

func union(a, b []string) []string {
	out := slices.Clone(a)
	for _, s := range b {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func difference(a, b []string) []string {
	out := make([]string, 0, len(a))
	for _, s := range a {
		if !slices.Contains(b, s) {
			out = append(out, s)
		}
	}
	return out
}
