package products

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/astroview/voprod/internal/datalink"
	"github.com/astroview/voprod/internal/imagevis"
	"github.com/astroview/voprod/internal/logger"
	"github.com/astroview/voprod/internal/table"
)

// Resolver is the engine front door: it fetches DataLink tables and
// turns source-table rows into product menus. One Resolver serves many
// sessions; per-session state lives in the Context passed per call.
type Resolver struct {
	fetcher table.Fetcher
	log     logger.Logger
}

func NewResolver(fetcher table.Fetcher, log logger.Logger) *Resolver {
	return &Resolver{fetcher: fetcher, log: log}
}

// SingleParams are the inputs for resolving one row's product menu.
type SingleParams struct {
	DLTableURL     string
	Source         *table.TableModel
	Row            int
	TitleStr       string
	DoFileAnalysis bool
	Additional     []*Entry
}

// SingleProduct fetches the row's DataLink table and builds the full
// product menu. A fetch failure is never returned as an error: it
// becomes a message entry with a raw-file download link.
func (r *Resolver) SingleProduct(c context.Context, ctx *Context, opts Options, p SingleParams) *Entry {
	titleStr := p.TitleStr
	if titleStr == "" {
		titleStr = "datalink table"
	}
	dlTable, err := r.fetcher.FetchDatalinkTable(c, p.DLTableURL)
	if err != nil {
		r.log.Warn("datalink fetch failed",
			logger.String("url", p.DLTableURL), logger.Error(err))
		return MessageWithDownload(
			"No data to display: Could not retrieve datalink data, "+err.Error(),
			"Download File: "+titleStr, p.DLTableURL)
	}

	parsing := ParseUseAll
	if opts.SingleViewImageOnly {
		parsing = ParseImage
	}
	if opts.SingleViewTableOnly {
		parsing = ParseSpectrum
	}

	return ProcessDatalinkTable(ctx, opts, ProcessInput{
		Source:         p.Source,
		Row:            p.Row,
		Datalink:       dlTable,
		DLTableURL:     p.DLTableURL,
		BaseTitle:      p.TitleStr,
		DoFileAnalysis: p.DoFileAnalysis,
		Parsing:        parsing,
		Additional:     p.Additional,
	})
}

// ThreeColorOps maps each color band to an index into the grid's request
// list; -1 leaves the band unassigned.
type ThreeColorOps struct {
	Red   int
	Green int
	Blue  int
}

// NoThreeColor is the zero assignment.
var NoThreeColor = ThreeColorOps{Red: -1, Green: -1, Blue: -1}

// RelatedGridParams are the inputs for a related-image-grid product.
type RelatedGridParams struct {
	DLTableURL string
	Source     *table.TableModel
	Row        int
	TitleStr   string

	// ThreeColor selects up to three grid requests for a composite;
	// nil plots no composite.
	ThreeColor *ThreeColorOps
}

// RelatedGridProduct builds the image-grid product for a row whose
// DataLink table carries multiple grid-flagged primary images.
func (r *Resolver) RelatedGridProduct(c context.Context, ctx *Context, opts Options, p RelatedGridParams) *Entry {
	dlTable, err := r.fetcher.FetchDatalinkTable(c, p.DLTableURL)
	if err != nil {
		r.log.Warn("datalink fetch failed",
			logger.String("url", p.DLTableURL), logger.Error(err))
		return MessageWithDownload(
			"No data to display: Could not retrieve datalink data, "+err.Error(),
			"Download File: "+p.TitleStr, p.DLTableURL)
	}

	rows := datalink.Classify(dlTable)
	if len(datalink.GridRows(rows)) == 0 {
		return SimpleMessage("no support for related grid in datalink file")
	}

	grid := ProcessDatalinkTable(ctx, opts, ProcessInput{
		Source:         p.Source,
		Row:            p.Row,
		Datalink:       dlTable,
		DLTableURL:     p.DLTableURL,
		BaseTitle:      p.TitleStr,
		DoFileAnalysis: false,
		Parsing:        ParseRelatedImageGrid,
	})

	requests := plottableRequests(grid.Menu)
	for idx, req := range requests {
		base := req.PlotID
		if base == "" {
			base = "dp"
		}
		req.PlotID = base + "-related_grid-" + strconv.Itoa(idx)
	}

	var threeColor *imagevis.ThreeColorRequest
	if p.ThreeColor != nil && len(requests) > 1 {
		threeColor = makeThreeColorRequests(requests, *p.ThreeColor, dlTable.ID)
	}

	activate := &Command{Kind: CmdRelatedGrid, Requests: requests, ThreeColor: threeColor,
		Source: p.Source, Row: p.Row}
	return imageEntry("image grid", "image-grid-0", nil, activate, extractImageCommand(ctx, requests...))
}

// GridJob is one cell of a plain image grid: a row and its DataLink URL.
type GridJob struct {
	DLTableURL string
	Row        int
	TitleStr   string
}

// GridResult resolves every job concurrently and assembles the plotted
// requests into one grid product. Individual job failures become message
// entries and simply contribute no request; only a cancelled context
// aborts the whole grid.
func (r *Resolver) GridResult(c context.Context, ctx *Context, opts Options, src *table.TableModel, jobs []GridJob) (*Entry, error) {
	results := make([]*Entry, len(jobs))
	g, gc := errgroup.WithContext(c)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := gc.Err(); err != nil {
				return err
			}
			results[i] = r.SingleProduct(gc, ctx, opts, SingleParams{
				DLTableURL: job.DLTableURL,
				Source:     src,
				Row:        job.Row,
				TitleStr:   job.TitleStr,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var requests []*imagevis.PlotRequest
	for i, e := range results {
		if e == nil {
			continue
		}
		if e.DisplayType == DisplayFromMenu && e.ActiveIndex < len(e.Menu) {
			e = e.Menu[e.ActiveIndex]
		}
		if e.Request == nil || (e.DisplayType != DisplayImage && e.DisplayType != DisplayAnalyze) {
			continue
		}
		req := e.Request
		base := req.PlotID
		if base == "" {
			base = "dp"
		}
		req.PlotID = base + "-" + strconv.Itoa(i)
		requests = append(requests, req)
	}

	activate := &Command{Kind: CmdGridImages, Requests: requests, Source: src}
	return imageEntry("image grid", "image-grid-0", nil, activate, extractImageCommand(ctx, requests...)), nil
}

// BandAssignment describes one grid request's role in a composite.
type BandAssignment struct {
	Title string
	Color imagevis.Band
}

// DescribeThreeColor maps each grid request index to a band, using the
// rows' band flags and filling any unassigned band into the first free
// slot in R, G, B order. Best effort, not a guarantee the assignment is
// scientifically right.
func (r *Resolver) DescribeThreeColor(c context.Context, ctx *Context, opts Options, dlTableURL string, src *table.TableModel, row int) (map[int]BandAssignment, error) {
	dlTable, err := r.fetcher.FetchDatalinkTable(c, dlTableURL)
	if err != nil {
		return nil, err
	}
	grid := ProcessDatalinkTable(ctx, opts, ProcessInput{
		Source:         src,
		Row:            row,
		Datalink:       dlTable,
		DLTableURL:     dlTableURL,
		DoFileAnalysis: false,
		Parsing:        ParseRelatedImageGrid,
	})

	out := make(map[int]BandAssignment)
	for idx, req := range plottableRequests(grid.Menu) {
		out[idx] = BandAssignment{Title: req.Title}
	}

	gridRows := datalink.GridRows(datalink.Classify(dlTable))
	rIdx, gIdx, bIdx := bandIndexes(gridRows)
	assign := func(idx int, b imagevis.Band) {
		if a, ok := out[idx]; ok {
			a.Color = b
			out[idx] = a
		}
	}
	assign(rIdx, imagevis.Red)
	assign(gIdx, imagevis.Green)
	assign(bIdx, imagevis.Blue)
	return out, nil
}

// bandIndexes resolves which grid row serves each band: explicit band
// flags first, then unassigned bands fill the first free slots in R, G,
// B order.
func bandIndexes(gridRows []datalink.Data) (r, g, b int) {
	bands := make([]imagevis.Band, len(gridRows))
	for i, d := range gridRows {
		switch {
		case d.Analysis.RBand && !contains(bands, imagevis.Red):
			bands[i] = imagevis.Red
		case d.Analysis.GBand && !contains(bands, imagevis.Green):
			bands[i] = imagevis.Green
		case d.Analysis.BBand && !contains(bands, imagevis.Blue):
			bands[i] = imagevis.Blue
		}
	}
	for _, band := range imagevis.AllBands {
		if contains(bands, band) {
			continue
		}
		for i := range bands {
			if bands[i] == imagevis.NoBand {
				bands[i] = band
				break
			}
		}
	}
	return indexOf(bands, imagevis.Red), indexOf(bands, imagevis.Green), indexOf(bands, imagevis.Blue)
}

func contains(bands []imagevis.Band, b imagevis.Band) bool {
	return indexOf(bands, b) >= 0
}

func indexOf(bands []imagevis.Band, b imagevis.Band) int {
	for i := range bands {
		if bands[i] == b {
			return i
		}
	}
	return -1
}

// plottableRequests picks the requests of menu entries that can plot.
func plottableRequests(menu []*Entry) []*imagevis.PlotRequest {
	var out []*imagevis.PlotRequest
	for _, e := range menu {
		if e == nil || e.Request == nil {
			continue
		}
		if e.DisplayType == DisplayImage || e.DisplayType == DisplayAnalyze {
			out = append(out, e.Request)
		}
	}
	return out
}

// makeThreeColorRequests copies the selected requests under the shared
// composite plot id 3id_<tbl_id>.
func makeThreeColorRequests(requests []*imagevis.PlotRequest, ops ThreeColorOps, tblID string) *imagevis.ThreeColorRequest {
	plotID := "3id_" + tblID
	pick := func(idx int) *imagevis.PlotRequest {
		if idx < 0 || idx >= len(requests) {
			return nil
		}
		c := requests[idx].Copy()
		c.PlotID = plotID
		return c
	}
	tc := &imagevis.ThreeColorRequest{Red: pick(ops.Red), Green: pick(ops.Green), Blue: pick(ops.Blue)}
	if tc.IsEmpty() {
		return nil
	}
	return tc
}
