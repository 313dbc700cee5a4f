package imagevis

import (
	"maps"
	"strconv"

	"github.com/astroview/voprod/internal/table"
	"github.com/astroview/voprod/internal/vo"
)

// Plot attributes carried from a request onto the plotted view. The
// DataLink row/table pair ties a plot back to the source-table row it
// was resolved for, which is what replot cleanup keys on.
const (
	AttrDatalinkTableRow = "datalinkTableRow"
	AttrDatalinkTableID  = "datalinkTableId"
)

// AnnotationOps controls how a plot is annotated in the viewer.
type AnnotationOps string

const (
	AnnotationNone   AnnotationOps = ""
	AnnotationInline AnnotationOps = "inline"
)

// PlotRequest is a prepared image-plot request. Created fresh per
// activation by copying a template; never shared between two plot ids.
type PlotRequest struct {
	PlotID      string
	PlotGroupID string

	URL   string
	Title string

	// Position overlays the target marker; nil plots without one.
	Position *vo.WorldPt

	// Display-only settings, ignored by DataEqual.
	Annotation         AnnotationOps
	InitialRangeValues string

	Attributes map[string]string
}

// MakeObsCoreRequest builds the plot request for a resolved product URL.
func MakeObsCoreRequest(url string, pos *vo.WorldPt, title string, src *table.TableModel, row int) *PlotRequest {
	if url == "" {
		return nil
	}
	r := &PlotRequest{URL: url, Title: title, Position: pos}
	if src != nil {
		r.SetAttributes(map[string]string{
			AttrDatalinkTableID:  src.ID,
			AttrDatalinkTableRow: strconv.Itoa(row),
		})
	}
	return r
}

// Copy returns a deep copy. The copy owns its own attribute map.
func (r *PlotRequest) Copy() *PlotRequest {
	if r == nil {
		return nil
	}
	c := *r
	if r.Attributes != nil {
		c.Attributes = maps.Clone(r.Attributes)
	}
	if r.Position != nil {
		p := *r.Position
		c.Position = &p
	}
	return &c
}

// SetAttributes merges attrs into the request's attribute map.
func (r *PlotRequest) SetAttributes(attrs map[string]string) {
	if r.Attributes == nil {
		r.Attributes = make(map[string]string, len(attrs))
	}
	maps.Copy(r.Attributes, attrs)
}

// Attribute returns a single attribute value, or "".
func (r *PlotRequest) Attribute(key string) string {
	if r == nil || r.Attributes == nil {
		return ""
	}
	return r.Attributes[key]
}

// DataEqual reports whether two requests ask for the same image data.
// Display-only overrides (annotation, range values, group, plot id) and
// attributes are ignored: this is the idempotence check replot uses to
// avoid duplicate plots.
func DataEqual(a, b *PlotRequest) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.URL != b.URL || a.Title != b.Title {
		return false
	}
	switch {
	case a.Position == nil && b.Position == nil:
		return true
	case a.Position == nil || b.Position == nil:
		return false
	}
	return *a.Position == *b.Position
}
