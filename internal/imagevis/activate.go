package imagevis

import (
	"strconv"

	"github.com/astroview/voprod/internal/flux"
	"github.com/astroview/voprod/internal/logger"
	"github.com/astroview/voprod/internal/table"
)

// ZoomFill sizes the plot to fill its view.
const ZoomFill = "fill"

// SingleViewPlotID is the plot id used when a table shows one image at a
// time; reusing the id across rows makes row navigation replace the plot
// in place.
func SingleViewPlotID(tblID string) string { return tblID + "-singleview" }

// ActivateSingleImage plots one request into the viewer, reusing the
// table's single-view plot id, and zooms it to fit once the plot
// completes. Returns the cleanup function from the underlying replot.
func (v *Vis) ActivateSingleImage(r *PlotRequest, viewerID string, src *table.TableModel, row int) CleanupFunc {
	if r == nil {
		return func(Migration) {}
	}
	tblID := ""
	if src != nil {
		tblID = src.ID
	}
	c := r.Copy()
	c.PlotID = SingleViewPlotID(tblID)
	if src != nil {
		c.SetAttributes(map[string]string{
			AttrDatalinkTableID:  src.ID,
			AttrDatalinkTableRow: strconv.Itoa(row),
		})
	}
	v.ZoomPlotPerViewSize(c.PlotID)
	return v.Replot("", true, viewerID, tblID, []*PlotRequest{c}, nil)
}

// ActivateGrid plots a related-image grid: every request in one group,
// the grid layout on the viewer, and the active plot kept in step with
// the table's highlighted row.
func (v *Vis) ActivateGrid(reqs []*PlotRequest, viewerID string, src *table.TableModel,
	threeColor *ThreeColorRequest, activePlotID string) CleanupFunc {

	tblID := ""
	if src != nil {
		tblID = src.ID
	}
	v.SetLayoutType(viewerID, LayoutGrid)
	cleanup := v.Replot(activePlotID, activePlotID != "", viewerID, tblID, reqs, threeColor)
	if src != nil {
		ids := make([]string, 0, len(reqs))
		for _, r := range reqs {
			if r != nil {
				ids = append(ids, r.PlotID)
			}
		}
		v.ResetGridActivePlot(src, ids)
	}
	return cleanup
}

// ZoomPlotPerViewSize zooms the plot to fill its view. If the plot is
// still loading, a one-shot watcher defers the zoom until the plot
// completes; the watcher removes itself on completion or failure.
func (v *Vis) ZoomPlotPerViewSize(plotID string) {
	if v.PrimePlot(plotID) != nil {
		v.d.Dispatch(flux.Action{Type: ActionZoom, Payload: ZoomPayload{PlotID: plotID, ZoomType: ZoomFill}})
		return
	}
	v.d.AddWatcher([]string{ActionPlotImageDone, ActionPlotImageFail},
		func(a flux.Action, cancelSelf func()) {
			switch a.Type {
			case ActionPlotImageDone:
				p, ok := a.Payload.(PlotImageDonePayload)
				if !ok {
					v.log.Warn("unexpected payload while waiting on plot completion", logger.String("plotId", plotID))
					cancelSelf()
					return
				}
				for _, info := range p.NewPlotInfo {
					if info.PlotID == plotID {
						v.d.Dispatch(flux.Action{Type: ActionZoom, Payload: ZoomPayload{PlotID: plotID, ZoomType: ZoomFill}})
						cancelSelf()
						return
					}
				}
			case ActionPlotImageFail:
				p, ok := a.Payload.(PlotImageFailPayload)
				if !ok || p.PlotID == plotID {
					cancelSelf()
				}
			}
		})
}

// ResetGridActivePlot moves the active plot to the one plotted for the
// table's highlighted row. No-op when the active plot already matches or
// when no grid plot was made for that row.
func (v *Vis) ResetGridActivePlot(tbl *table.TableModel, plotIDs []string) {
	if tbl == nil {
		return
	}
	if active := v.PlotViewByID(v.ActivePlotID()); active != nil {
		if row, err := strconv.Atoi(active.Attributes[AttrDatalinkTableRow]); err == nil &&
			row == tbl.HighlightedRow && active.Attributes[AttrDatalinkTableID] == tbl.ID {
			return
		}
	}
	for _, id := range plotIDs {
		pv := v.PlotViewByID(id)
		if pv == nil {
			continue
		}
		if row, err := strconv.Atoi(pv.Attributes[AttrDatalinkTableRow]); err == nil &&
			row == tbl.HighlightedRow && pv.Attributes[AttrDatalinkTableID] == tbl.ID {
			v.d.Dispatch(flux.Action{Type: ActionChangeActivePlotView, Payload: ChangeActivePlotViewPayload{PlotID: id}})
			return
		}
	}
}

// RowOfPlot returns the source-table row a plot was made for, so the
// caller can highlight that row when the user activates the plot. ok is
// false when the plot has no row attribute or belongs to another table.
func (v *Vis) RowOfPlot(plotID, tblID string) (row int, ok bool) {
	pv := v.PlotViewByID(plotID)
	if pv == nil || pv.Attributes[AttrDatalinkTableID] != tblID {
		return 0, false
	}
	row, err := strconv.Atoi(pv.Attributes[AttrDatalinkTableRow])
	if err != nil {
		return 0, false
	}
	return row, true
}
