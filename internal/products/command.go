package products

import (
	"github.com/astroview/voprod/internal/flux"
	"github.com/astroview/voprod/internal/imagevis"
	"github.com/astroview/voprod/internal/logger"
	"github.com/astroview/voprod/internal/table"
)

// CommandKind tags what running a command does.
type CommandKind string

const (
	CmdSingleImage  CommandKind = "single-image"
	CmdAnalyze      CommandKind = "analyze-file"
	CmdRelatedGrid  CommandKind = "related-grid"
	CmdGridImages   CommandKind = "grid-images"
	CmdShowTable    CommandKind = "show-table"
	CmdExtractImage CommandKind = "extract-image"
	CmdExtractTable CommandKind = "extract-table"
)

// Command is the deferred work behind a menu entry's activate or
// extraction slot. Building one has no side effects; all plot and fetch
// actions happen when Run is called. Requests are snapshotted at build
// time, so a rebuilt menu always carries fresh commands.
type Command struct {
	Kind CommandKind

	Request    *imagevis.PlotRequest
	Requests   []*imagevis.PlotRequest
	ThreeColor *imagevis.ThreeColorRequest

	// Source table and row the product belongs to.
	Source *table.TableModel
	Row    int

	// Table commands carry the URL and title of the table to show.
	TableURL   string
	TableTitle string
}

// Runtime is everything a command needs to run: the visualization store,
// the per-session context, and an optional hook for showing tables.
type Runtime struct {
	Vis *imagevis.Vis
	Ctx *Context
	Log logger.Logger

	// ShowTable displays a fetched table to the user; nil when the
	// embedding application has no table area.
	ShowTable func(url, title string)
}

func noCleanup(imagevis.Migration) {}

// Run executes the command against the runtime, returning the cleanup
// function to invoke when the UI navigates away. Never returns nil.
func (c *Command) Run(rt *Runtime) imagevis.CleanupFunc {
	if c == nil || rt == nil || rt.Vis == nil {
		return noCleanup
	}
	switch c.Kind {
	case CmdSingleImage, CmdAnalyze:
		viewerID := imagevis.DefaultViewerID
		if rt.Vis.DefaultCoverageActive() {
			viewerID = imagevis.CoverageViewerID
		}
		return rt.Vis.ActivateSingleImage(c.Request, viewerID, c.Source, c.Row)

	case CmdRelatedGrid, CmdGridImages:
		return rt.Vis.ActivateGrid(c.Requests, imagevis.DefaultViewerID, c.Source, c.ThreeColor, "")

	case CmdExtractImage:
		// pinned extractions always land in the default viewer and never
		// touch the active-plot state of other viewers
		rt.Log.Info("Pinning to Image Area")
		for _, r := range c.Requests {
			if r == nil {
				continue
			}
			rt.Vis.Dispatcher().Dispatch(flux.Action{
				Type: imagevis.ActionPlotImage,
				Payload: imagevis.PlotImagePayload{
					PlotID:   r.PlotID,
					ViewerID: imagevis.DefaultViewerID,
					Request:  r,
				},
			})
		}
		return noCleanup

	case CmdShowTable, CmdExtractTable:
		if rt.ShowTable != nil {
			rt.ShowTable(c.TableURL, c.TableTitle)
		} else {
			rt.Log.Debug("no table area registered", logger.String("url", c.TableURL))
		}
		return noCleanup
	}
	return noCleanup
}

func singleImageCommand(req *imagevis.PlotRequest, src *table.TableModel, row int) *Command {
	return &Command{Kind: CmdSingleImage, Request: req, Source: src, Row: row}
}

func analyzeCommand(req *imagevis.PlotRequest, src *table.TableModel, row int) *Command {
	return &Command{Kind: CmdAnalyze, Request: req, Source: src, Row: row}
}

// extractImageCommand snapshots copies of the requests under fresh
// extraction plot ids, minted now so repeated extractions pin new plots.
func extractImageCommand(ctx *Context, reqs ...*imagevis.PlotRequest) *Command {
	copies := make([]*imagevis.PlotRequest, 0, len(reqs))
	for _, r := range reqs {
		if r == nil {
			continue
		}
		c := r.Copy()
		c.PlotID = ctx.NextExtractPlotID()
		copies = append(copies, c)
	}
	return &Command{Kind: CmdExtractImage, Requests: copies}
}

func showTableCommand(url, title string) *Command {
	return &Command{Kind: CmdShowTable, TableURL: url, TableTitle: title}
}

func extractTableCommand(url, title string) *Command {
	return &Command{Kind: CmdExtractTable, TableURL: url, TableTitle: title}
}
