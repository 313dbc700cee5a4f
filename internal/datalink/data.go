// Package datalink classifies the rows of a fetched DataLink table into
// product descriptors the menu builder can act on.
package datalink

import "github.com/astroview/voprod/internal/table"

// Target is what a DataLink row points at, decided once at
// classification time: either a direct access URL or a nested service
// descriptor. Builders switch on the concrete type and never re-sniff
// row shape.
type Target interface{ target() }

// URLTarget is a row with a concrete access_url.
type URLTarget struct {
	URL string
}

// ServiceDefTarget is a row whose service_def reference resolved to a
// descriptor block of the same table.
type ServiceDefTarget struct {
	Def *table.ServiceDescriptor
}

func (URLTarget) target()        {}
func (ServiceDefTarget) target() {}

// Analysis holds the derived boolean flags for a row. Computed once by
// Classify and never mutated afterwards.
type Analysis struct {
	IsThis         bool `json:"isThis"`
	IsAux          bool `json:"isAux"`
	IsImage        bool `json:"isImage"`
	IsGrid         bool `json:"isGrid"`
	IsSpectrum     bool `json:"isSpectrum"`
	IsDownloadOnly bool `json:"isDownloadOnly"`
	IsCutout       bool `json:"isCutout"`
	IsTar          bool `json:"isTar"`
	IsGzip         bool `json:"isGzip"`
	IsSimpleImage  bool `json:"isSimpleImage"`

	// band markers for three-color composition, best effort
	RBand bool `json:"rBand,omitempty"`
	GBand bool `json:"gBand,omitempty"`
	BBand bool `json:"bBand,omitempty"`
}

// Data is one classified DataLink row. Discarded whenever the owning
// table is re-fetched or the menu is rebuilt.
type Data struct {
	RowIdx         int
	Semantics      string
	LocalSemantics string
	Description    string
	ContentType    string
	ServiceDefRef  string
	Size           int64 // bytes, -1 when absent

	Target   Target
	Analysis Analysis
}

// URL returns the direct access URL, or "" for service-descriptor rows.
func (d *Data) URL() string {
	if t, ok := d.Target.(URLTarget); ok {
		return t.URL
	}
	return ""
}

// ServiceDef returns the nested descriptor, or nil for plain-URL rows.
func (d *Data) ServiceDef() *table.ServiceDescriptor {
	if t, ok := d.Target.(ServiceDefTarget); ok {
		return t.Def
	}
	return nil
}
