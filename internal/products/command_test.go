package products

import (
	"testing"

	"github.com/astroview/voprod/internal/flux"
	"github.com/astroview/voprod/internal/imagevis"
	"github.com/astroview/voprod/internal/logger"
	"github.com/astroview/voprod/internal/vo"
)

func newRuntime() *Runtime {
	return &Runtime{
		Vis: imagevis.New(flux.New(), logger.NewNop()),
		Ctx: NewContext(),
		Log: logger.NewNop(),
	}
}

func TestSingleImageCommandTargetsDefaultViewer(t *testing.T) {
	rt := newRuntime()
	src := sourceTable()
	req := imagevis.MakeObsCoreRequest("http://x/a.fits", &vo.WorldPt{Lon: 1, Lat: 2}, "a", src, 0)

	singleImageCommand(req, src, 0).Run(rt)

	items := rt.Vis.ViewerItemIDs(imagevis.DefaultViewerID)
	if len(items) != 1 {
		t.Fatalf("default viewer items = %v, want one plot", items)
	}
	if got := rt.Vis.ViewerItemIDs(imagevis.CoverageViewerID); len(got) != 0 {
		t.Errorf("coverage viewer items = %v, want none", got)
	}
}

func TestSingleImageCommandTargetsCoverageViewerWhenActive(t *testing.T) {
	rt := newRuntime()
	rt.Vis.SetDefaultCoverageActive(true)
	src := sourceTable()
	req := imagevis.MakeObsCoreRequest("http://x/a.fits", nil, "a", src, 0)

	singleImageCommand(req, src, 0).Run(rt)

	if got := rt.Vis.ViewerItemIDs(imagevis.CoverageViewerID); len(got) != 1 {
		t.Errorf("coverage viewer items = %v, want one plot", got)
	}
}

func TestExtractionMintsFreshPlotIDs(t *testing.T) {
	ctx := NewContext()
	src := sourceTable()
	req := imagevis.MakeObsCoreRequest("http://x/a.fits", nil, "a", src, 0)

	first := extractImageCommand(ctx, req)
	second := extractImageCommand(ctx, req)

	if first.Requests[0].PlotID == second.Requests[0].PlotID {
		t.Errorf("two extractions share plot id %q", first.Requests[0].PlotID)
	}
	if first.Requests[0].PlotID != "extract-plotId-0" {
		t.Errorf("first extraction id = %q, want extract-plotId-0", first.Requests[0].PlotID)
	}
	// the source request is untouched
	if req.PlotID != "" {
		t.Errorf("extraction mutated the original request plot id: %q", req.PlotID)
	}
}

func TestExtractionPlotsWithoutChangingActive(t *testing.T) {
	rt := newRuntime()
	src := sourceTable()

	base := imagevis.MakeObsCoreRequest("http://x/a.fits", nil, "a", src, 0)
	singleImageCommand(base, src, 0).Run(rt)
	activeBefore := rt.Vis.ActivePlotID()

	extractImageCommand(rt.Ctx,
		imagevis.MakeObsCoreRequest("http://x/b.fits", nil, "b", src, 0)).Run(rt)

	if got := rt.Vis.ActivePlotID(); got != activeBefore {
		t.Errorf("extraction changed the active plot: %q -> %q", activeBefore, got)
	}
	if pv := rt.Vis.PlotViewByID("extract-plotId-0"); pv == nil {
		t.Errorf("extraction plot missing")
	}
}

func TestRelatedGridCommandSetsGridLayout(t *testing.T) {
	rt := newRuntime()
	src := sourceTable()
	reqs := []*imagevis.PlotRequest{
		imagevis.MakeObsCoreRequest("http://x/a.fits", nil, "a", src, 0),
		imagevis.MakeObsCoreRequest("http://x/b.fits", nil, "b", src, 0),
	}
	reqs[0].PlotID = "dp-related_grid-0"
	reqs[1].PlotID = "dp-related_grid-1"

	(&Command{Kind: CmdRelatedGrid, Requests: reqs, Source: src}).Run(rt)

	if got := rt.Vis.LayoutType(imagevis.DefaultViewerID); got != imagevis.LayoutGrid {
		t.Errorf("layout = %q, want grid", got)
	}
	if got := rt.Vis.ViewerItemIDs(imagevis.DefaultViewerID); len(got) != 2 {
		t.Errorf("viewer items = %v, want both grid plots", got)
	}
}
