package vo

import "strings"

// GiB is the hard display threshold: products larger than this are never
// loaded into a viewer, only offered for download.
const GiB int64 = 1 << 30

// IVOA standard-identifier prefixes, compared case-insensitively.
const (
	StandardIDSIA      = "ivo://ivoa.net/std/sia"
	StandardIDSODA     = "ivo://ivoa.net/std/soda"
	StandardIDTAP      = "ivo://ivoa.net/std/tap"
	StandardIDDataLink = "ivo://ivoa.net/std/datalink"
)

// CutoutUCDs are the UCD tokens that mark a service-descriptor parameter
// as a cutout field-of-view input. Matched as lowercase substrings.
var CutoutUCDs = []string{"obs.field", "phys.angsize", "phys.size", "instr.fov"}

// DataLink table column names. This column-name contract is the de facto
// wire format with DataLink-table producers and must not drift.
const (
	ColSemantics      = "semantics"
	ColLocalSemantics = "local_semantics"
	ColAccessURL      = "access_url"
	ColServiceDef     = "service_def"
	ColContentType    = "content_type"
	ColContentLength  = "content_length"
	ColDescription    = "description"
	ColErrorMessage   = "error_message"
)

// Semantics tags with fixed meaning.
const (
	SemanticsThis = "#this"
	SemanticsAux  = "#auxiliary"
)

// IsSIAStandardID reports whether the standard id is in the SIA family.
func IsSIAStandardID(standardID string) bool {
	return strings.HasPrefix(strings.ToLower(standardID), StandardIDSIA)
}

// IsSODAStandardID reports whether the standard id is in the SODA family.
func IsSODAStandardID(standardID string) bool {
	return strings.HasPrefix(strings.ToLower(standardID), StandardIDSODA)
}

// IsDataLinkStandardID reports whether a service descriptor points at
// another DataLink service rather than a concrete product.
func IsDataLinkStandardID(standardID string) bool {
	return strings.HasPrefix(strings.ToLower(standardID), StandardIDDataLink)
}
