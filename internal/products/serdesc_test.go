package products

import (
	"net/url"
	"strings"
	"testing"

	"github.com/astroview/voprod/internal/table"
	"github.com/astroview/voprod/internal/vo"
)

func sodaDescriptor(src *table.TableModel) *table.ServiceDescriptor {
	return &table.ServiceDescriptor{
		ID:         "soda-svc",
		Title:      "SODA cutout",
		AccessURL:  "https://ex/soda",
		StandardID: "ivo://ivoa.net/std/SODA#sync-1.0",
		Params: []table.SerDefParam{
			{Name: "ID", Ref: "obs_id", ColName: "obs_id"},
			{Name: "CIRCLE", Xtype: "circle", AllowsInput: true},
		},
		Source: src,
	}
}

func cutoutSource() *table.TableModel {
	return &table.TableModel{
		ID: "obs-tbl",
		Columns: []table.Column{
			{Name: "s_ra"}, {Name: "s_dec"}, {Name: "obs_id"},
		},
		Rows: [][]string{{"210.80", "54.34", "obs-123"}},
	}
}

func TestCutoutEntryUsesDefaultSize(t *testing.T) {
	src := cutoutSource()
	def := sodaDescriptor(src)
	ctx := NewContext()

	e := makeServiceDefEntry(ctx, Options{}, serviceDefInput{
		Name: "cutout", Def: def, Source: src, Row: 0, Idx: 0,
		Position: &vo.WorldPt{Lon: 210.80, Lat: 54.34},
		TitleStr: "SODA cutout", MenuKey: "dlt-0", IsCutout: true,
	})
	if e == nil {
		t.Fatal("no cutout entry built")
	}
	if e.DisplayType != DisplayImage {
		t.Fatalf("display type = %q, want image", e.DisplayType)
	}
	u, err := url.Parse(e.URL)
	if err != nil {
		t.Fatalf("bad cutout url: %v", err)
	}
	circle := u.Query().Get("CIRCLE")
	if !strings.Contains(circle, "0.0213") {
		t.Errorf("CIRCLE = %q, want the default 0.0213 deg radius", circle)
	}
	if got := u.Query().Get("ID"); got != "obs-123" {
		t.Errorf("ID = %q, want ref-bound obs-123", got)
	}
}

func TestCutoutRejectedWhenSizeNotPositive(t *testing.T) {
	src := cutoutSource()
	def := sodaDescriptor(src)
	ctx := NewContext()
	ctx.SetComponentValue(DefaultComponentKey, CutoutSizeKey, "0")

	e := makeServiceDefEntry(ctx, Options{}, serviceDefInput{
		Name: "cutout", Def: def, Source: src, Row: 0, Idx: 0,
		Position: &vo.WorldPt{Lon: 210.80, Lat: 54.34},
		TitleStr: "SODA cutout", MenuKey: "dlt-0", IsCutout: true,
	})
	if e != nil {
		t.Errorf("cutout with size 0 built an entry: %+v", e)
	}
}

func TestCutoutNeedsPosition(t *testing.T) {
	src := cutoutSource()
	def := sodaDescriptor(src)

	if canMakeCutoutProduct(def, nil) {
		t.Errorf("cutout eligible without a position")
	}
	if !canMakeCutoutProduct(def, &vo.WorldPt{Lon: 1, Lat: 2}) {
		t.Errorf("SODA service with position not cutout eligible")
	}
}

func TestCutoutEligibilityByUCD(t *testing.T) {
	def := &table.ServiceDescriptor{
		ID: "svc", AccessURL: "https://ex/svc",
		StandardID: "ivo://other/std/thing",
		Params: []table.SerDefParam{
			{Name: "SIZE", UCD: "phys.angSize;instr.fov"},
		},
	}
	if !canMakeCutoutProduct(def, &vo.WorldPt{Lon: 1, Lat: 2}) {
		t.Errorf("cutout UCD param not recognized")
	}
}

func TestServiceDefDeferredEntryMarksInputRequired(t *testing.T) {
	src := cutoutSource()
	def := &table.ServiceDescriptor{
		ID: "svc", Title: "spectrum service", AccessURL: "https://ex/svc",
		Params: []table.SerDefParam{
			{Name: "BAND", AllowsInput: true, InputRequired: true},
		},
		Source: src,
	}
	e := makeServiceDefEntry(NewContext(), Options{}, serviceDefInput{
		Name: "svc", Def: def, Source: src, Row: 0, Idx: 0,
		TitleStr: "spectrum service", MenuKey: "dlt-1",
	})
	if e == nil {
		t.Fatal("no entry built")
	}
	if e.DisplayType != DisplayAnalyze {
		t.Errorf("display type = %q, want analyze", e.DisplayType)
	}
	if !strings.Contains(e.Name, "(Input Required)") {
		t.Errorf("name = %q, want the input-required annotation", e.Name)
	}
	if !e.AllowsInput {
		t.Errorf("AllowsInput not set")
	}
}

func TestMakeURLFromParamsPrecedence(t *testing.T) {
	src := cutoutSource()
	def := &table.ServiceDescriptor{
		ID: "svc", AccessURL: "https://ex/svc",
		Params: []table.SerDefParam{
			{Name: "FORMAT", Value: "fits"},
			{Name: "ID", Ref: "obs_id", ColName: "obs_id"},
		},
		Source: src,
	}

	got, err := MakeURLFromParams("https://ex/svc", def, 0, map[string]string{"FORMAT": "votable"})
	if err != nil {
		t.Fatal(err)
	}
	u, _ := url.Parse(got)
	if v := u.Query().Get("FORMAT"); v != "votable" {
		t.Errorf("FORMAT = %q, want user value to override the default", v)
	}
	if v := u.Query().Get("ID"); v != "obs-123" {
		t.Errorf("ID = %q, want the ref-bound cell value", v)
	}
}

func TestComponentInputsPrecedence(t *testing.T) {
	ctx := NewContext()
	ctx.SetComponentValue(DefaultComponentKey, "em.wl", "by-ucd")
	ctx.SetComponentValue(DefaultComponentKey, "BAND", "by-name")

	def := &table.ServiceDescriptor{
		Params: []table.SerDefParam{{Name: "BAND", UCD: "em.wl"}},
	}
	opts := Options{UCDKeys: []string{"em.wl"}, ParamNameKeys: []string{"BAND"}}

	got := componentInputs(ctx, opts, def, nil)
	// param-name overlay comes after the UCD overlay, so it wins
	if got["BAND"] != "by-name" {
		t.Errorf("BAND = %q, want by-name", got["BAND"])
	}
}

func TestMakeServiceDescriptorMenuSkipsDatalinkServices(t *testing.T) {
	src := cutoutSource()
	src.Descriptors = []table.ServiceDescriptor{
		{ID: "dl", Title: "links", AccessURL: "https://ex/dl",
			StandardID: "ivo://ivoa.net/std/DataLink#links-1.0", Source: src},
		{ID: "svc", Title: "product", AccessURL: "https://ex/svc", Source: src},
	}
	menu := MakeServiceDescriptorMenu(NewContext(), Options{}, src, 0, "https://ex/dl")
	if len(menu) != 1 {
		t.Fatalf("menu size = %d, want 1 (DataLink descriptor skipped)", len(menu))
	}
	if !strings.Contains(menu[0].Name, "product") {
		t.Errorf("entry name = %q, want the non-DataLink service", menu[0].Name)
	}
}
