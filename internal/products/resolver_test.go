package products

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/astroview/voprod/internal/imagevis"
	"github.com/astroview/voprod/internal/logger"
	"github.com/astroview/voprod/internal/table"
)

type fakeFetcher struct {
	tables map[string]*table.TableModel
	err    error
}

func (f *fakeFetcher) FetchDatalinkTable(_ context.Context, url string) (*table.TableModel, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.tables[url]
	if !ok {
		return nil, errors.New("not found: " + url)
	}
	return t, nil
}

func TestSingleProductFetchFailureBecomesMessage(t *testing.T) {
	r := NewResolver(&fakeFetcher{err: errors.New("connection refused")}, logger.NewNop())

	got := r.SingleProduct(context.Background(), NewContext(), Options{}, SingleParams{
		DLTableURL: "https://ex/dl", Source: sourceTable(), Row: 0, TitleStr: "obs 1",
	})
	if got.DisplayType != DisplayMessage {
		t.Fatalf("display type = %q, want message (never an error)", got.DisplayType)
	}
	if !strings.Contains(got.Message, "connection refused") {
		t.Errorf("message = %q, want the fetch error text", got.Message)
	}
	if !got.SingleDownload || len(got.Menu) == 0 || got.Menu[0].URL != "https://ex/dl" {
		t.Errorf("message entry missing the raw-table download link: %+v", got)
	}
}

func TestSingleProduct(t *testing.T) {
	f := &fakeFetcher{tables: map[string]*table.TableModel{
		"https://ex/dl": dlTable("dl",
			[]string{"#this", "http://x/a.fits", "", "application/fits", "100", "", "", ""},
		),
	}}
	r := NewResolver(f, logger.NewNop())

	got := r.SingleProduct(context.Background(), NewContext(), Options{}, SingleParams{
		DLTableURL: "https://ex/dl", Source: sourceTable(), Row: 0, DoFileAnalysis: true,
	})
	if got.DisplayType != DisplayFromMenu {
		t.Fatalf("display type = %q, want from-menu", got.DisplayType)
	}
}

func gridTableThreeRows() *table.TableModel {
	return dlTable("dl-grid",
		[]string{"#this", "http://x/r.fits", "", "application/fits", "100", "grid band-r", "", ""},
		[]string{"#this", "http://x/g.fits", "", "application/fits", "100", "grid band-g", "", ""},
		[]string{"#this", "http://x/b.fits", "", "application/fits", "100", "grid band-b", "", ""},
	)
}

func TestRelatedGridProduct(t *testing.T) {
	f := &fakeFetcher{tables: map[string]*table.TableModel{"https://ex/dl": gridTableThreeRows()}}
	r := NewResolver(f, logger.NewNop())

	got := r.RelatedGridProduct(context.Background(), NewContext(), Options{}, RelatedGridParams{
		DLTableURL: "https://ex/dl", Source: sourceTable(), Row: 0, TitleStr: "coadd",
	})
	if got.DisplayType != DisplayImage {
		t.Fatalf("display type = %q, want image", got.DisplayType)
	}
	if got.MenuKey != "image-grid-0" {
		t.Errorf("menu key = %q, want image-grid-0", got.MenuKey)
	}
	if got.Activate == nil || got.Activate.Kind != CmdRelatedGrid {
		t.Fatalf("activate command = %+v, want related-grid", got.Activate)
	}
	reqs := got.Activate.Requests
	if len(reqs) != 3 {
		t.Fatalf("request count = %d, want 3", len(reqs))
	}
	for i, req := range reqs {
		if !strings.HasSuffix(req.PlotID, "-related_grid-"+string(rune('0'+i))) {
			t.Errorf("plot id %d = %q, want the -related_grid-%d suffix", i, req.PlotID, i)
		}
	}
}

func TestRelatedGridNoGridRows(t *testing.T) {
	f := &fakeFetcher{tables: map[string]*table.TableModel{
		"https://ex/dl": dlTable("dl",
			[]string{"#this", "http://x/a.fits", "", "application/fits", "100", "", "", ""},
		),
	}}
	r := NewResolver(f, logger.NewNop())

	got := r.RelatedGridProduct(context.Background(), NewContext(), Options{}, RelatedGridParams{
		DLTableURL: "https://ex/dl", Source: sourceTable(), Row: 0,
	})
	if got.DisplayType != DisplayMessage {
		t.Fatalf("display type = %q, want message", got.DisplayType)
	}
	if !strings.Contains(got.Message, "no support for related grid") {
		t.Errorf("message = %q", got.Message)
	}
}

func TestRelatedGridThreeColor(t *testing.T) {
	f := &fakeFetcher{tables: map[string]*table.TableModel{"https://ex/dl": gridTableThreeRows()}}
	r := NewResolver(f, logger.NewNop())

	got := r.RelatedGridProduct(context.Background(), NewContext(), Options{}, RelatedGridParams{
		DLTableURL: "https://ex/dl", Source: sourceTable(), Row: 0,
		ThreeColor: &ThreeColorOps{Red: 0, Green: 1, Blue: -1},
	})
	tc := got.Activate.ThreeColor
	if tc == nil {
		t.Fatal("no three-color request built")
	}
	if tc.Red == nil || tc.Green == nil || tc.Blue != nil {
		t.Fatalf("band assignment = %+v, want red+green only", tc)
	}
	if tc.Red.PlotID != "3id_dl-grid" {
		t.Errorf("composite plot id = %q, want 3id_dl-grid", tc.Red.PlotID)
	}
	if tc.Red.URL != "http://x/r.fits" || tc.Green.URL != "http://x/g.fits" {
		t.Errorf("band urls = %q/%q", tc.Red.URL, tc.Green.URL)
	}
}

func TestDescribeThreeColorExplicitBands(t *testing.T) {
	f := &fakeFetcher{tables: map[string]*table.TableModel{"https://ex/dl": gridTableThreeRows()}}
	r := NewResolver(f, logger.NewNop())

	got, err := r.DescribeThreeColor(context.Background(), NewContext(), Options{}, "https://ex/dl", sourceTable(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("assignments = %d, want 3", len(got))
	}
	want := map[int]imagevis.Band{0: imagevis.Red, 1: imagevis.Green, 2: imagevis.Blue}
	for idx, band := range want {
		if got[idx].Color != band {
			t.Errorf("index %d color = %v, want %v", idx, got[idx].Color, band)
		}
	}
}

func TestDescribeThreeColorFillsUnassigned(t *testing.T) {
	dl := dlTable("dl-grid",
		[]string{"#this", "http://x/one.fits", "", "application/fits", "100", "grid", "", ""},
		[]string{"#this", "http://x/two.fits", "", "application/fits", "100", "grid band-g", "", ""},
		[]string{"#this", "http://x/three.fits", "", "application/fits", "100", "grid", "", ""},
	)
	f := &fakeFetcher{tables: map[string]*table.TableModel{"https://ex/dl": dl}}
	r := NewResolver(f, logger.NewNop())

	got, err := r.DescribeThreeColor(context.Background(), NewContext(), Options{}, "https://ex/dl", sourceTable(), 0)
	if err != nil {
		t.Fatal(err)
	}
	// green is pinned by its flag; red and blue fill the free slots in order
	if got[1].Color != imagevis.Green {
		t.Errorf("index 1 color = %v, want green", got[1].Color)
	}
	if got[0].Color != imagevis.Red {
		t.Errorf("index 0 color = %v, want red (first free slot)", got[0].Color)
	}
	if got[2].Color != imagevis.Blue {
		t.Errorf("index 2 color = %v, want blue (second free slot)", got[2].Color)
	}
}

func TestGridResult(t *testing.T) {
	f := &fakeFetcher{tables: map[string]*table.TableModel{
		"https://ex/dl0": dlTable("dl0",
			[]string{"#this", "http://x/a.fits", "", "application/fits", "100", "", "", ""}),
		"https://ex/dl1": dlTable("dl1",
			[]string{"#this", "http://x/b.fits", "", "application/fits", "100", "", "", ""}),
	}}
	r := NewResolver(f, logger.NewNop())

	got, err := r.GridResult(context.Background(), NewContext(), Options{}, sourceTable(), []GridJob{
		{DLTableURL: "https://ex/dl0", Row: 0},
		{DLTableURL: "https://ex/dl1", Row: 0},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.Activate == nil || got.Activate.Kind != CmdGridImages {
		t.Fatalf("activate = %+v, want grid-images", got.Activate)
	}
	if len(got.Activate.Requests) != 2 {
		t.Fatalf("request count = %d, want 2", len(got.Activate.Requests))
	}
}

func TestGridResultToleratesFailedCell(t *testing.T) {
	f := &fakeFetcher{tables: map[string]*table.TableModel{
		"https://ex/dl0": dlTable("dl0",
			[]string{"#this", "http://x/a.fits", "", "application/fits", "100", "", "", ""}),
	}}
	r := NewResolver(f, logger.NewNop())

	got, err := r.GridResult(context.Background(), NewContext(), Options{}, sourceTable(), []GridJob{
		{DLTableURL: "https://ex/dl0", Row: 0},
		{DLTableURL: "https://ex/missing", Row: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Activate.Requests) != 1 {
		t.Errorf("request count = %d, want 1 (failed cell contributes nothing)", len(got.Activate.Requests))
	}
}
