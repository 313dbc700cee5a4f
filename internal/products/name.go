package products

import (
	"strconv"
	"strings"
)

// makeName builds the menu label for one DataLink row from its semantics
// tag. auxTot is the total number of #auxiliary rows; auxCnt and
// primeCnt count how many auxiliary/#this rows came before this one.
func makeName(semantics, url string, auxTot, auxCnt, primeCnt int, baseTitle string) string {
	if baseTitle != "" {
		return makeNameWithBaseTitle(semantics, auxTot, auxCnt, primeCnt, baseTitle)
	}
	name := semantics
	if semantics == "#this" && primeCnt > 0 {
		name = "#this " + strconv.Itoa(primeCnt)
	}
	if strings.HasPrefix(semantics, "#this") {
		name = "Primary product (" + name + ")"
	} else {
		name = semantics
	}
	name = strings.TrimPrefix(name, "#")
	if name == "auxiliary" && auxTot > 1 {
		name = name + ": " + strconv.Itoa(auxCnt)
	}
	if name == "" {
		return url
	}
	return name
}

func makeNameWithBaseTitle(semantics string, auxTot, auxCnt, primeCnt int, baseTitle string) string {
	if semantics == "" {
		return baseTitle
	}
	if strings.HasPrefix(semantics, "#this") {
		if primeCnt < 1 {
			return baseTitle + " (#this)"
		}
		return baseTitle + " (#this " + strconv.Itoa(primeCnt) + ")"
	}
	if semantics == "auxiliary" || semantics == "#auxiliary" {
		if auxTot > 0 {
			return "auxiliary " + strconv.Itoa(auxCnt) + ": " + baseTitle
		}
		return "auxiliary: " + baseTitle
	}
	return strings.TrimPrefix(semantics, "#") + ": " + baseTitle
}
