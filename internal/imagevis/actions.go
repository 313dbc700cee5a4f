package imagevis

// Action types handled by the visualization store reducer. These names
// and payload shapes are the integration contract with the surrounding
// application.
const (
	ActionPlotImage            = "imagevis.plotImage"
	ActionPlotGroup            = "imagevis.plotGroup"
	ActionPlotImageDone        = "imagevis.plotImageDone"
	ActionPlotImageFail        = "imagevis.plotImageFail"
	ActionDeletePlotView       = "imagevis.deletePlotView"
	ActionReplaceViewerItems   = "imagevis.replaceViewerItems"
	ActionChangeActivePlotView = "imagevis.changeActivePlotView"
	ActionZoom                 = "imagevis.zoom"
)

// Well-known viewer ids and layouts.
const (
	DefaultViewerID  = "default-image-viewer"
	CoverageViewerID = "coverage-viewer"

	LayoutSingle = "single"
	LayoutGrid   = "grid"
)

// PlotImagePayload requests one plot, optionally a three-color composite.
type PlotImagePayload struct {
	PlotID     string
	ViewerID   string
	Request    *PlotRequest
	ThreeColor *ThreeColorRequest
	Attributes map[string]string
}

// PlotGroupPayload requests a batch of plots in one dispatch.
type PlotGroupPayload struct {
	Requests           []*PlotRequest
	ViewerID           string
	SetNewPlotAsActive bool
	HoldWcsMatch       bool
	Attributes         map[string]string
}

// PlotInfo identifies one plot affected by a completion event.
type PlotInfo struct {
	PlotID string
}

// PlotImageDonePayload reports completed plots (the PLOT_IMAGE event).
type PlotImageDonePayload struct {
	NewPlotInfo []PlotInfo
}

// PlotImageFailPayload reports a failed plot.
type PlotImageFailPayload struct {
	PlotID string
	Reason string
}

// DeletePlotViewPayload removes one plot view. HoldWcsMatch preserves
// the WCS-match state across the deletion.
type DeletePlotViewPayload struct {
	PlotID       string
	HoldWcsMatch bool
}

// ReplaceViewerItemsPayload swaps a viewer's item list in one batch op.
type ReplaceViewerItemsPayload struct {
	ViewerID string
	ItemIDs  []string
}

// ChangeActivePlotViewPayload makes the plot the active one.
type ChangeActivePlotViewPayload struct {
	PlotID string
}

// ZoomPayload applies a zoom type to one plot.
type ZoomPayload struct {
	PlotID   string
	ZoomType string
}
