package imagevis

// Band identifies a color plane of a three-color plot. NoBand is its own
// tag, never an alias of Red, so band checks are always explicit.
type Band int

const (
	NoBand Band = iota
	Red
	Green
	Blue
)

// AllBands lists the color bands in R, G, B order.
var AllBands = []Band{Red, Green, Blue}

func (b Band) String() string {
	switch b {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	default:
		return "none"
	}
}

// ThreeColorRequest maps each color band to a plot request. Unset bands
// are nil; a composite is valid with any non-empty subset.
type ThreeColorRequest struct {
	Red   *PlotRequest
	Green *PlotRequest
	Blue  *PlotRequest
}

// Get returns the request assigned to a band.
func (t *ThreeColorRequest) Get(b Band) *PlotRequest {
	if t == nil {
		return nil
	}
	switch b {
	case Red:
		return t.Red
	case Green:
		return t.Green
	case Blue:
		return t.Blue
	}
	return nil
}

// First returns any assigned request, or nil when the composite is empty.
func (t *ThreeColorRequest) First() *PlotRequest {
	for _, b := range AllBands {
		if r := t.Get(b); r != nil {
			return r
		}
	}
	return nil
}

// IsEmpty reports whether no band has a request.
func (t *ThreeColorRequest) IsEmpty() bool { return t.First() == nil }
