package datalink

import (
	"strings"

	"github.com/astroview/voprod/internal/table"
	"github.com/astroview/voprod/internal/vo"
)

// Content-type predicates. All operate on lowercased substrings; DataLink
// producers are loose about exact media types so exact matching loses data.

func IsTarType(ct string) bool { return strings.Contains(ct, "tar") }

func IsGzipType(ct string) bool { return strings.Contains(ct, "gz") }

// IsDownloadType marks content that can only be saved, never displayed.
func IsDownloadType(ct string) bool {
	return IsTarType(ct) || IsGzipType(ct) ||
		strings.Contains(ct, "zip") || strings.Contains(ct, "octet-stream")
}

// IsSimpleImageType marks browser-renderable raster images (not FITS).
func IsSimpleImageType(ct string) bool {
	return strings.Contains(ct, "png") || strings.Contains(ct, "jpeg") ||
		strings.Contains(ct, "jpg") || strings.Contains(ct, "gif")
}

// IsImageType marks FITS-family content a viewer can plot.
func IsImageType(ct string) bool {
	if IsSimpleImageType(ct) {
		return false
	}
	return strings.Contains(ct, "fits") || strings.Contains(ct, "cube") ||
		strings.Contains(ct, "image")
}

func IsSpectrumType(ct string) bool { return strings.Contains(ct, "spectrum") }

func IsTableType(ct string) bool {
	return strings.Contains(ct, "table") || strings.Contains(ct, "csv") ||
		strings.Contains(ct, "tsv")
}

var analysisTypes = []string{"fits", "cube", "table", "spectrum", "auxiliary"}

// IsAnalysisType reports whether the content type should go through file
// analysis. An empty content type is analyzable: the server will tell us.
func IsAnalysisType(ct string) bool {
	if ct == "" {
		return true
	}
	for _, a := range analysisTypes {
		if strings.Contains(ct, a) {
			return true
		}
	}
	return false
}

// gridMarker tags a row as one tile of a related-image set. Producers we
// support mark these with a "grid" token in semantics or local_semantics.
func gridMarker(semantics, localSemantics string) bool {
	return strings.Contains(semantics, "grid") || strings.Contains(localSemantics, "grid")
}

// cutoutMarker tags a row as a cutout service. Either the semantics says
// so or the descriptor is a SODA/SIA service.
func cutoutMarker(semantics, localSemantics string, def *table.ServiceDescriptor) bool {
	if strings.Contains(semantics, "cutout") || strings.Contains(localSemantics, "cutout") {
		return true
	}
	if def == nil {
		return false
	}
	return vo.IsSODAStandardID(def.StandardID) || vo.IsSIAStandardID(def.StandardID)
}

// bandMarker finds an r/g/b band tag in local_semantics or description.
// Best effort: producers write "#band-r", "r band", "red", etc.
func bandMarker(localSemantics, description string) (r, g, b bool) {
	probe := strings.ToLower(localSemantics + " " + description)
	switch {
	case hasBandToken(probe, "r", "red"):
		return true, false, false
	case hasBandToken(probe, "g", "green"):
		return false, true, false
	case hasBandToken(probe, "b", "blue"):
		return false, false, true
	}
	return false, false, false
}

func hasBandToken(probe, short, long string) bool {
	if strings.Contains(probe, long) {
		return true
	}
	for _, pat := range []string{"band-" + short, "band " + short, short + " band", short + "-band"} {
		if strings.Contains(probe, pat) {
			return true
		}
	}
	return false
}

// analyze computes the full flag set for one classified row.
func analyze(semantics, localSemantics, ct, description string, target Target) Analysis {
	def, _ := targetDef(target)

	a := Analysis{
		IsThis:        strings.HasPrefix(semantics, vo.SemanticsThis),
		IsAux:         strings.HasPrefix(semantics, "#aux"),
		IsImage:       IsImageType(ct),
		IsGrid:        gridMarker(semantics, localSemantics),
		IsSpectrum:    IsSpectrumType(ct),
		IsTar:         IsTarType(ct),
		IsGzip:        IsGzipType(ct),
		IsSimpleImage: IsSimpleImageType(ct),
		IsCutout:      cutoutMarker(semantics, localSemantics, def),
	}
	a.IsDownloadOnly = a.IsTar || a.IsGzip
	a.RBand, a.GBand, a.BBand = bandMarker(localSemantics, description)
	return a
}

func targetDef(target Target) (*table.ServiceDescriptor, bool) {
	t, ok := target.(ServiceDefTarget)
	if !ok {
		return nil, false
	}
	return t.Def, true
}
