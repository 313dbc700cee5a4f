package imagevis

import (
	"strconv"
	"testing"

	"github.com/astroview/voprod/internal/flux"
	"github.com/astroview/voprod/internal/logger"
	"github.com/astroview/voprod/internal/table"
	"github.com/astroview/voprod/internal/vo"
)

func newTestVis(t *testing.T) *Vis {
	t.Helper()
	return New(flux.New(), logger.NewNop())
}

func completePlots(v *Vis, ids ...string) {
	infos := make([]PlotInfo, 0, len(ids))
	for _, id := range ids {
		infos = append(infos, PlotInfo{PlotID: id})
	}
	v.Dispatcher().Dispatch(flux.Action{Type: ActionPlotImageDone, Payload: PlotImageDonePayload{NewPlotInfo: infos}})
}

func testRequest(id, url string) *PlotRequest {
	return &PlotRequest{
		PlotID:   id,
		URL:      url,
		Title:    "obs " + id,
		Position: &vo.WorldPt{Lon: 210.8, Lat: 54.3},
	}
}

func TestReplotIdempotent(t *testing.T) {
	v := newTestVis(t)
	reqs := []*PlotRequest{testRequest("p1", "https://ex/a.fits"), testRequest("p2", "https://ex/b.fits")}

	v.Replot("", true, DefaultViewerID, "tbl-1", reqs, nil)
	completePlots(v, "p1", "p2")

	before := v.PlotViews()
	v.Replot("", true, DefaultViewerID, "tbl-1",
		[]*PlotRequest{testRequest("p1", "https://ex/a.fits"), testRequest("p2", "https://ex/b.fits")}, nil)
	after := v.PlotViews()

	if len(after) != len(before) {
		t.Fatalf("plot count after identical replot = %d, want %d", len(after), len(before))
	}
	for i := range after {
		if after[i].ServerCall != ServerCallSuccess {
			t.Errorf("plot %s server call = %q, want success (should not have been replotted)",
				after[i].PlotID, after[i].ServerCall)
		}
	}
}

func TestReplotReusesDataEqualPlotID(t *testing.T) {
	v := newTestVis(t)
	v.Replot("", true, DefaultViewerID, "tbl-1", []*PlotRequest{testRequest("orig", "https://ex/a.fits")}, nil)
	completePlots(v, "orig")

	// same data under a different plot id picks up the existing id
	r := testRequest("fresh", "https://ex/a.fits")
	v.Replot("", true, DefaultViewerID, "tbl-1", []*PlotRequest{r}, nil)

	if r.PlotID != "orig" {
		t.Errorf("plot id = %q, want reuse of %q", r.PlotID, "orig")
	}
	if got := len(v.PlotViews()); got != 1 {
		t.Errorf("plot count = %d, want 1", got)
	}
}

func TestReplotDeletesStalePlots(t *testing.T) {
	v := newTestVis(t)
	v.SetWcsMatchActive(true)
	v.Replot("", true, DefaultViewerID, "tbl-1",
		[]*PlotRequest{testRequest("p1", "https://ex/a.fits"), testRequest("p2", "https://ex/b.fits")}, nil)
	completePlots(v, "p1", "p2")

	v.Replot("", true, DefaultViewerID, "tbl-1", []*PlotRequest{testRequest("p1", "https://ex/a.fits")}, nil)

	if pv := v.PlotViewByID("p2"); pv != nil {
		t.Errorf("stale plot p2 still present")
	}
	items := v.ViewerItemIDs(DefaultViewerID)
	if len(items) != 1 || items[0] != "p1" {
		t.Errorf("viewer items = %v, want [p1]", items)
	}
	if !v.WcsMatchActive() {
		t.Errorf("wcs match was reset by replot cleanup, want held")
	}
}

func TestReplotChangedDataReplots(t *testing.T) {
	v := newTestVis(t)
	v.Replot("", true, DefaultViewerID, "tbl-1", []*PlotRequest{testRequest("p1", "https://ex/a.fits")}, nil)
	completePlots(v, "p1")

	v.Replot("", true, DefaultViewerID, "tbl-1", []*PlotRequest{testRequest("p1", "https://ex/other.fits")}, nil)

	pv := v.PlotViewByID("p1")
	if pv == nil {
		t.Fatal("plot p1 missing")
	}
	if pv.ServerCall != ServerCallWorking {
		t.Errorf("server call = %q, want working (changed data must replot)", pv.ServerCall)
	}
	if pv.Request.URL != "https://ex/other.fits" {
		t.Errorf("request url = %q, want the new one", pv.Request.URL)
	}
}

func TestReplotSetsGroupAndAnnotation(t *testing.T) {
	v := newTestVis(t)
	v.Replot("", true, DefaultViewerID, "tbl-9", []*PlotRequest{testRequest("p1", "https://ex/a.fits")}, nil)

	pv := v.PlotViewByID("p1")
	if pv == nil {
		t.Fatal("plot p1 missing")
	}
	wantGroup := DefaultViewerID + "-tbl-9-standard"
	if pv.PlotGroupID != wantGroup {
		t.Errorf("group = %q, want %q", pv.PlotGroupID, wantGroup)
	}
	if pv.Request.Annotation != AnnotationInline {
		t.Errorf("annotation = %q, want inline", pv.Request.Annotation)
	}
}

func TestReplotNoTableGroup(t *testing.T) {
	v := newTestVis(t)
	v.Replot("", true, DefaultViewerID, "", []*PlotRequest{testRequest("p1", "https://ex/a.fits")}, nil)

	pv := v.PlotViewByID("p1")
	if pv == nil {
		t.Fatal("plot p1 missing")
	}
	wantGroup := DefaultViewerID + "-no-table-group-standard"
	if pv.PlotGroupID != wantGroup {
		t.Errorf("group = %q, want %q", pv.PlotGroupID, wantGroup)
	}
}

func TestReplotMakeActive(t *testing.T) {
	v := newTestVis(t)
	v.Replot("", true, DefaultViewerID, "tbl-1",
		[]*PlotRequest{testRequest("p1", "https://ex/a.fits"), testRequest("p2", "https://ex/b.fits")}, nil)

	if got := v.ActivePlotID(); got != "p1" {
		t.Errorf("active plot = %q, want first new plot p1", got)
	}

	v.Replot("p2", true, DefaultViewerID, "tbl-1",
		[]*PlotRequest{testRequest("p1", "https://ex/a.fits"), testRequest("p2", "https://ex/b.fits")}, nil)
	if got := v.ActivePlotID(); got != "p2" {
		t.Errorf("active plot = %q, want explicit p2", got)
	}
}

func TestReplotThreeColorOnlyWhenBandsChange(t *testing.T) {
	v := newTestVis(t)
	tc := &ThreeColorRequest{
		Red:   testRequest("rgb", "https://ex/r.fits"),
		Green: testRequest("rgb", "https://ex/g.fits"),
	}
	v.Replot("", true, DefaultViewerID, "tbl-1", nil, tc)
	completePlots(v, "rgb")

	same := &ThreeColorRequest{
		Red:   testRequest("rgb", "https://ex/r.fits"),
		Green: testRequest("rgb", "https://ex/g.fits"),
	}
	v.Replot("", true, DefaultViewerID, "tbl-1", nil, same)
	if pv := v.PlotViewByID("rgb"); pv.ServerCall != ServerCallSuccess {
		t.Errorf("unchanged composite was replotted, server call = %q", pv.ServerCall)
	}

	changed := &ThreeColorRequest{
		Red:  testRequest("rgb", "https://ex/r.fits"),
		Blue: testRequest("rgb", "https://ex/g.fits"),
	}
	v.Replot("", true, DefaultViewerID, "tbl-1", nil, changed)
	if pv := v.PlotViewByID("rgb"); pv.ServerCall != ServerCallWorking {
		t.Errorf("changed band mapping did not replot, server call = %q", pv.ServerCall)
	}
}

func TestCleanupDeletesPlotsForOtherRows(t *testing.T) {
	v := newTestVis(t)
	tbl := &table.TableModel{ID: "tbl-1", HighlightedRow: 1}

	var reqs []*PlotRequest
	for i := 0; i < 3; i++ {
		r := testRequest("p"+strconv.Itoa(i), "https://ex/"+strconv.Itoa(i)+".fits")
		r.SetAttributes(map[string]string{
			AttrDatalinkTableID:  "tbl-1",
			AttrDatalinkTableRow: strconv.Itoa(i),
		})
		reqs = append(reqs, r)
	}
	cleanup := v.Replot("", true, DefaultViewerID, "tbl-1", reqs, nil)
	completePlots(v, "p0", "p1", "p2")

	cleanup(Migration{NextDisplayType: "table", NextTableID: "tbl-1", ActiveTable: tbl})

	if pv := v.PlotViewByID("p1"); pv == nil {
		t.Errorf("plot for highlighted row was deleted")
	}
	for _, id := range []string{"p0", "p2"} {
		if pv := v.PlotViewByID(id); pv != nil {
			t.Errorf("plot %s for non-highlighted row survived cleanup", id)
		}
	}
}

func TestCleanupSkippedWhenGridForSameTable(t *testing.T) {
	v := newTestVis(t)
	v.SetLayoutType(DefaultViewerID, LayoutGrid)
	cleanup := v.Replot("", true, DefaultViewerID, "tbl-1",
		[]*PlotRequest{testRequest("p1", "https://ex/a.fits")}, nil)
	completePlots(v, "p1")

	cleanup(Migration{NextDisplayType: MigrationDisplayImage, NextTableID: "tbl-1"})

	if pv := v.PlotViewByID("p1"); pv == nil {
		t.Errorf("grid plot for same table was deleted, want kept")
	}
}

func TestCleanupSkippedWhenExpanded(t *testing.T) {
	v := newTestVis(t)
	cleanup := v.Replot("", true, DefaultViewerID, "tbl-1",
		[]*PlotRequest{testRequest("p1", "https://ex/a.fits")}, nil)
	completePlots(v, "p1")
	v.SetExpanded(true)

	cleanup(Migration{NextDisplayType: "table", NextTableID: "tbl-2"})

	if pv := v.PlotViewByID("p1"); pv == nil {
		t.Errorf("plot deleted while expanded, want kept")
	}
}
