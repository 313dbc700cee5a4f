package products

import (
	"sort"
	"strconv"
	"strings"

	"github.com/astroview/voprod/internal/datalink"
	"github.com/astroview/voprod/internal/imagevis"
	"github.com/astroview/voprod/internal/table"
	"github.com/astroview/voprod/internal/vo"
)

// ParsingAlgorithm restricts which classified rows make it into a menu.
type ParsingAlgorithm string

const (
	ParseUseAll           ParsingAlgorithm = "use-all"
	ParseImage            ParsingAlgorithm = "image"
	ParseSpectrum         ParsingAlgorithm = "spectrum"
	ParseRelatedImageGrid ParsingAlgorithm = "related-image-grid"
)

// Fallback message texts.
const (
	MsgNoData          = "No data available for this row"
	MsgOnlyDownload    = "You may only download data for this row - nothing to display"
	MsgNoDisplayable   = "No displayable data available for this row"
	datalinkTableTitle = "Datalink VO Table"
)

// ProcessInput is everything the menu processor needs for one row.
type ProcessInput struct {
	Source     *table.TableModel
	Row        int
	Datalink   *table.TableModel
	DLTableURL string

	BaseTitle      string
	DoFileAnalysis bool
	Parsing        ParsingAlgorithm

	// Additional entries appended before the fixed DataLink-table
	// entries, e.g. products from the source table's own descriptors.
	Additional []*Entry
}

// ProcessDatalinkTable classifies a fetched DataLink table, builds the
// product menu for the source row, and selects the active entry. Always
// returns an entry: a from-menu wrapper when something is displayable,
// otherwise a message entry describing why not.
func ProcessDatalinkTable(ctx *Context, opts Options, in ProcessInput) *Entry {
	rows := datalink.Classify(in.Datalink)
	isImageGrid := datalink.HasImageGrid(rows)
	lookupKey := in.DLTableURL

	var menu []*Entry
	if len(rows) > 0 {
		menu = buildMenu(ctx, opts, in, rows)
	}

	// Only row-derived entries count toward displayability; the fixed
	// show/download-table entries never rescue an all-download menu.
	canShow := false
	for _, m := range menu {
		if strings.HasPrefix(m.MenuKey, "dlt-") && m.DisplayType != DisplayDownload && m.Size < vo.GiB {
			canShow = true
			break
		}
	}

	if canShow {
		index := -1
		if isImageGrid {
			// carry the selection from the previously active row's menu,
			// so scrolling a grid keeps the same product highlighted
			lastKey := ctx.ActiveMenuKey(ctx.CurrentLookupKey())
			index = findMenuKey(menu, lastKey)
		}
		if index < 0 {
			index = findMenuKey(menu, ctx.ActiveMenuKey(lookupKey))
		}
		if index < 0 {
			index = 0
		}
		ctx.UpdateActiveKey(lookupKey, menu[index].MenuKey)
		return fromMenu(menu, index, lookupKey)
	}

	if len(menu) > 0 {
		dMenu := convertAllToDownload(menu)
		msgMenu := append(dMenu,
			tableEntry("Show Datalink VO Table for list of products", "nd0-showtable",
				showTableCommand(in.DLTableURL, datalinkTableTitle),
				extractTableCommand(in.DLTableURL, datalinkTableTitle)),
			downloadEntry("Download Datalink VO Table for list of products", in.DLTableURL, "nd1-downloadtable", "vo-table"),
		)
		msg := MsgNoDisplayable
		if len(dMenu) > 0 {
			msg = MsgOnlyDownload
		}
		e := messageEntry(msg, msgMenu, lookupKey)
		e.SingleDownload = true
		return e
	}

	return messageEntry(MsgNoData, nil, lookupKey)
}

func findMenuKey(menu []*Entry, key string) int {
	if key == "" {
		return -1
	}
	for i, m := range menu {
		if m.MenuKey == key {
			return i
		}
	}
	return -1
}

// buildMenu creates one entry per filtered DataLink row, appends the
// additional and fixed DataLink-table entries when building a full menu,
// and sorts the result.
func buildMenu(ctx *Context, opts Options, in ProcessInput, rows []datalink.Data) []*Entry {
	filtered := filterRows(in.Parsing, rows)

	auxTot := 0
	for _, d := range rows {
		if d.Semantics == "#auxiliary" {
			auxTot++
		}
	}

	var menu []*Entry
	auxCnt, primeCnt := 0, 0
	for idx, dl := range filtered {
		name := makeName(dl.Semantics, dl.URL(), auxTot, auxCnt, primeCnt, in.BaseTitle)
		if e := makeMenuEntry(ctx, opts, in, dl, idx, name); e != nil {
			menu = append(menu, e)
		}
		if dl.Analysis.IsAux {
			auxCnt++
		}
		if dl.Analysis.IsThis {
			primeCnt++
		}
	}

	if in.Parsing == ParseUseAll {
		menu = append(menu, in.Additional...)
		menu = append(menu,
			tableEntry("Show Datalink VO Table for list of products", "datalink-entry-showtable",
				showTableCommand(in.DLTableURL, datalinkTableTitle),
				extractTableCommand(in.DLTableURL, datalinkTableTitle)),
			downloadEntry("Download Datalink VO Table for list of products", in.DLTableURL, "datalink-entry-downloadtable", "vo-table"),
		)
	}

	return sortMenu(menu)
}

func filterRows(alg ParsingAlgorithm, rows []datalink.Data) []datalink.Data {
	pred := func(datalink.Data) bool { return true }
	switch alg {
	case ParseImage:
		pred = func(d datalink.Data) bool { return d.Analysis.IsImage }
	case ParseSpectrum:
		pred = func(d datalink.Data) bool { return d.Analysis.IsSpectrum }
	case ParseRelatedImageGrid:
		pred = func(d datalink.Data) bool {
			return d.Analysis.IsThis && d.Analysis.IsGrid && d.Analysis.IsImage
		}
	}
	out := make([]datalink.Data, 0, len(rows))
	for _, d := range rows {
		if pred(d) {
			out = append(out, d)
		}
	}
	return out
}

// sortMenu orders entries so #this products come first, ties broken by
// name with the literal "(#this)" label winning. The original chained a
// second sort that only ever hoisted entries named exactly "(#this)";
// the partition below reproduces that observable order directly.
func sortMenu(menu []*Entry) []*Entry {
	sort.SliceStable(menu, func(i, j int) bool {
		a, b := menu[i], menu[j]
		aThis := a.Semantics == vo.SemanticsThis
		bThis := b.Semantics == vo.SemanticsThis
		if aThis && bThis {
			aLit := strings.Contains(a.Name, "(#this)")
			bLit := strings.Contains(b.Name, "(#this)")
			if aLit != bLit {
				return aLit
			}
			return a.Name < b.Name
		}
		return aThis && !bThis
	})

	literal := make([]*Entry, 0, len(menu))
	rest := make([]*Entry, 0, len(menu))
	for _, e := range menu {
		if e.Name == "(#this)" {
			literal = append(literal, e)
		} else {
			rest = append(rest, e)
		}
	}
	return append(literal, rest...)
}

// convertAllToDownload rewrites every entry into a download entry,
// dropping entries with no resolvable URL.
func convertAllToDownload(menu []*Entry) []*Entry {
	out := make([]*Entry, 0, len(menu))
	for _, e := range menu {
		switch {
		case e.DisplayType == DisplayDownload:
			c := *e
			out = append(out, &c)
		case e.URL != "":
			c := *e
			c.DisplayType = DisplayDownload
			out = append(out, &c)
		case e.Request != nil && e.Request.URL != "":
			c := *e
			c.DisplayType = DisplayDownload
			c.URL = e.Request.URL
			out = append(out, &c)
		}
	}
	return out
}

// makeMenuEntry dispatches on row shape: service descriptor first, plain
// URL second, nothing otherwise.
func makeMenuEntry(ctx *Context, opts Options, in ProcessInput, dl datalink.Data, idx int, name string) *Entry {
	if def := dl.ServiceDef(); def != nil {
		return makeServiceDefMenuEntry(ctx, opts, in, dl, def, idx, name)
	}
	if dl.URL() != "" {
		return makeAccessURLMenuEntry(ctx, opts, in, dl, idx, name)
	}
	return nil
}

func makeServiceDefMenuEntry(ctx *Context, opts Options, in ProcessInput, dl datalink.Data,
	def *table.ServiceDescriptor, idx int, name string) *Entry {

	pos := vo.Position(in.Source, in.Row)
	titleStr := firstNonEmpty(dl.Description, def.Title)
	if in.BaseTitle != "" {
		titleStr = in.BaseTitle + " (" + firstNonEmpty(dl.Description, def.Title) + ")"
	}
	prodType := firstNonEmpty(dl.ContentType, vo.ObsCoreProdType(in.Source, in.Row))

	return makeServiceDefEntry(ctx, opts, serviceDefInput{
		Name:          name,
		Def:           def,
		Source:        in.Source,
		Row:           in.Row,
		Idx:           idx,
		Position:      pos,
		TitleStr:      titleStr,
		LookupKey:     in.DLTableURL,
		MenuKey:       "dlt-" + strconv.Itoa(idx),
		Semantics:     dl.Semantics,
		Size:          dl.Size,
		SRegion:       vo.ObsCoreSRegion(in.Source, in.Row),
		ProdTypeHint:  prodType,
		ServiceDefRef: dl.ServiceDefRef,
		IsCutout:      dl.Analysis.IsCutout,
	})
}

func makeAccessURLMenuEntry(ctx *Context, opts Options, in ProcessInput, dl datalink.Data, idx int, name string) *Entry {
	url := dl.URL()
	menuKey := "dlt-" + strconv.Itoa(idx)
	lookupKey := in.DLTableURL
	pos := vo.Position(in.Source, in.Row)
	sRegion := vo.ObsCoreSRegion(in.Source, in.Row)
	prodType := vo.ObsCoreProdType(in.Source, in.Row)
	contentType := strings.ToLower(dl.ContentType)
	a := dl.Analysis

	switch {
	case a.IsDownloadOnly:
		fileType := ""
		if a.IsTar {
			fileType = "tar"
		}
		if a.IsGzip {
			fileType = "gzip"
		}
		e := downloadEntry("Download file: "+name, url, menuKey, fileType)
		e.Semantics = dl.Semantics
		e.Size = dl.Size
		e.ActiveMenuLookupKey = lookupKey
		return e

	case a.IsSimpleImage:
		e := pngEntry("Show PNG image: "+name, url, menuKey)
		e.Semantics = dl.Semantics
		e.Size = dl.Size
		e.ActiveMenuLookupKey = lookupKey
		return e

	case dl.Size > vo.GiB:
		// hard threshold, no override
		e := downloadEntry("Download: "+name+" (too large to show)", url, menuKey, "fits")
		e.Semantics = dl.Semantics
		e.Size = dl.Size
		e.ActiveMenuLookupKey = lookupKey
		return e

	case datalink.IsAnalysisType(contentType):
		if !in.DoFileAnalysis {
			return guessEntry(ctx, in, dl, name, menuKey, url, contentType, pos)
		}
		req := imagevis.MakeObsCoreRequest(url, pos, name, in.Source, in.Row)
		e := analyzeEntry("Show: "+name, menuKey)
		e.URL = url
		e.Request = req
		e.Activate = analyzeCommand(req, in.Source, in.Row)
		e.Extraction = extractImageCommand(ctx, req)
		e.Semantics = dl.Semantics
		e.Size = dl.Size
		e.SRegion = sRegion
		e.ActiveMenuLookupKey = lookupKey
		e.ProdTypeHint = firstNonEmpty(dl.ContentType, prodType)
		return e

	default:
		return guessEntry(ctx, in, dl, name, menuKey, url, contentType, pos)
	}
}

// guessEntry is the best-effort fallback when the content type gave no
// firm answer: guess by substring, or give up and return nil.
func guessEntry(ctx *Context, in ProcessInput, dl datalink.Data, name, menuKey, url, ct string, pos *vo.WorldPt) *Entry {
	switch {
	case strings.Contains(ct, "image") || strings.Contains(ct, "fits") || strings.Contains(ct, "cube"):
		req := imagevis.MakeObsCoreRequest(url, pos, name, in.Source, in.Row)
		e := imageEntry(name, menuKey, req,
			singleImageCommand(req, in.Source, in.Row),
			extractImageCommand(ctx, req))
		e.URL = url
		e.Semantics = dl.Semantics
		e.Size = dl.Size
		return e

	case strings.Contains(ct, "table") || strings.Contains(ct, "spectrum") ||
		strings.Contains(dl.Semantics, "auxiliary"):
		e := tableEntry(name, menuKey,
			showTableCommand(url, name),
			extractTableCommand(url, name))
		e.URL = url
		e.Semantics = dl.Semantics
		e.Size = dl.Size
		return e

	case datalink.IsSimpleImageType(ct):
		e := pngEntry(name, url, menuKey)
		e.Semantics = dl.Semantics
		return e

	case datalink.IsDownloadType(ct):
		fileType := ""
		if datalink.IsTarType(ct) {
			fileType = "tar"
		}
		if datalink.IsGzipType(ct) {
			fileType = "gzip"
		}
		e := downloadEntry(name, url, menuKey, fileType)
		e.Semantics = dl.Semantics
		return e
	}
	return nil
}
