package vo

import (
	"fmt"
	"strconv"
	"strings"
)

// WorldPt is a celestial position in degrees (ICRS).
type WorldPt struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// MakeCircleString renders the CIRCLE parameter value used by SIA/SODA
// cutout services: "<lon> <lat> <radius>" in degrees.
func MakeCircleString(lon, lat, radiusDeg float64) string {
	return fmt.Sprintf("%s %s %s",
		trimFloat(lon), trimFloat(lat), trimFloat(radiusDeg))
}

func trimFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
