package vo

import (
	"strconv"
	"strings"

	"github.com/astroview/voprod/internal/table"
)

// Table meta keys carrying the search target of the query that produced
// a source table, when one exists.
const (
	MetaSearchTargetLon = "search_target_lon"
	MetaSearchTargetLat = "search_target_lat"
)

// ObsCoreProdType reads the ObsCore dataproduct_type for a row, lowercased.
func ObsCoreProdType(t *table.TableModel, row int) string {
	if t == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(t.CellString(row, "dataproduct_type")))
}

// ObsCoreSRegion reads the ObsCore s_region (STC-S footprint) for a row.
func ObsCoreSRegion(t *table.TableModel, row int) string {
	if t == nil {
		return ""
	}
	return strings.TrimSpace(t.CellString(row, "s_region"))
}

// SearchTarget returns the position of the search that produced the
// table, when the table request recorded one.
func SearchTarget(t *table.TableModel) *WorldPt {
	if t == nil || t.Meta == nil {
		return nil
	}
	lonStr, okLon := t.Meta[MetaSearchTargetLon]
	latStr, okLat := t.Meta[MetaSearchTargetLat]
	if !okLon || !okLat {
		return nil
	}
	lon, err1 := strconv.ParseFloat(lonStr, 64)
	lat, err2 := strconv.ParseFloat(latStr, 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	return &WorldPt{Lon: lon, Lat: lat}
}

// WorldPtFromCenterColumns builds a position from a row's center columns:
// the pos.eq.ra/dec meta.main pair when tagged, else s_ra/s_dec, else
// ra/dec. Returns nil when no usable pair exists.
func WorldPtFromCenterColumns(t *table.TableModel, row int) *WorldPt {
	if t == nil || row < 0 || row >= t.NRows() {
		return nil
	}
	raCol, decCol := centerColumns(t)
	if raCol == "" || decCol == "" {
		return nil
	}
	raStr, okRa := t.Cell(row, raCol)
	decStr, okDec := t.Cell(row, decCol)
	if !okRa || !okDec {
		return nil
	}
	ra, err1 := strconv.ParseFloat(strings.TrimSpace(raStr), 64)
	dec, err2 := strconv.ParseFloat(strings.TrimSpace(decStr), 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	return &WorldPt{Lon: ra, Lat: dec}
}

// Position resolves the position to use for a source row: the search
// target when available, otherwise the row's center columns.
func Position(t *table.TableModel, row int) *WorldPt {
	if wp := SearchTarget(t); wp != nil {
		return wp
	}
	return WorldPtFromCenterColumns(t, row)
}

func centerColumns(t *table.TableModel) (string, string) {
	raCol := t.ColumnByUCD("pos.eq.ra;meta.main")
	decCol := t.ColumnByUCD("pos.eq.dec;meta.main")
	if raCol != nil && decCol != nil {
		return raCol.Name, decCol.Name
	}
	for _, pair := range [][2]string{{"s_ra", "s_dec"}, {"ra", "dec"}} {
		if t.ColumnIndex(pair[0]) >= 0 && t.ColumnIndex(pair[1]) >= 0 {
			return pair[0], pair[1]
		}
	}
	return "", ""
}
