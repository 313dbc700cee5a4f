package datalink

import (
	"strings"

	"github.com/astroview/voprod/internal/table"
	"github.com/astroview/voprod/internal/vo"
)

// Classify turns every usable row of a fetched DataLink table into a
// Data descriptor. Rows that carry an error_message, or that have neither
// an access URL nor a resolvable service descriptor, are skipped; a bad
// row never fails the whole table.
func Classify(dl *table.TableModel) []Data {
	if dl == nil {
		return nil
	}
	out := make([]Data, 0, dl.NRows())
	for row := 0; row < dl.NRows(); row++ {
		if strings.TrimSpace(dl.CellString(row, vo.ColErrorMessage)) != "" {
			continue
		}

		url := strings.TrimSpace(dl.CellString(row, vo.ColAccessURL))
		sdRef := strings.TrimSpace(dl.CellString(row, vo.ColServiceDef))
		target := resolveTarget(dl, url, sdRef)
		if target == nil {
			continue
		}

		semantics := strings.TrimSpace(dl.CellString(row, vo.ColSemantics))
		localSem := strings.ToLower(strings.TrimSpace(dl.CellString(row, vo.ColLocalSemantics)))
		ct := strings.ToLower(strings.TrimSpace(dl.CellString(row, vo.ColContentType)))
		description := strings.TrimSpace(dl.CellString(row, vo.ColDescription))

		out = append(out, Data{
			RowIdx:         row,
			Semantics:      semantics,
			LocalSemantics: localSem,
			Description:    description,
			ContentType:    ct,
			ServiceDefRef:  sdRef,
			Size:           dl.CellInt64(row, vo.ColContentLength, -1),
			Target:         target,
			Analysis:       analyze(semantics, localSem, ct, description, target),
		})
	}
	return out
}

// resolveTarget prefers the service descriptor when the reference
// resolves; a dangling reference falls back to the URL when one exists.
func resolveTarget(dl *table.TableModel, url, sdRef string) Target {
	if sdRef != "" {
		if def := dl.DescriptorByID(sdRef); def != nil {
			return ServiceDefTarget{Def: def}
		}
	}
	if url != "" {
		return URLTarget{URL: url}
	}
	return nil
}

// HasImageGrid reports whether the classified rows describe a related
// image grid: more than one image row carrying the grid marker.
func HasImageGrid(rows []Data) bool {
	n := 0
	for i := range rows {
		if rows[i].Analysis.IsImage && rows[i].Analysis.IsGrid {
			n++
			if n > 1 {
				return true
			}
		}
	}
	return false
}

// GridRows filters the rows that form the related image grid.
func GridRows(rows []Data) []Data {
	out := make([]Data, 0, len(rows))
	for i := range rows {
		a := rows[i].Analysis
		if a.IsThis && a.IsGrid && a.IsImage {
			out = append(out, rows[i])
		}
	}
	return out
}
