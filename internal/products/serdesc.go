package products

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/astroview/voprod/internal/imagevis"
	"github.com/astroview/voprod/internal/table"
	"github.com/astroview/voprod/internal/vo"
)

// serviceDefInput bundles the arguments of the service-descriptor entry
// builder; extra carries the DataLink row fields when the descriptor came
// from a DataLink table rather than directly from the source table.
type serviceDefInput struct {
	Name      string
	Def       *table.ServiceDescriptor
	Source    *table.TableModel
	Row       int
	Idx       int
	Position  *vo.WorldPt
	TitleStr  string
	LookupKey string
	MenuKey   string

	Semantics     string
	Size          int64
	SRegion       string
	ProdTypeHint  string
	ServiceDefRef string
	IsCutout      bool
}

// makeServiceDefEntry builds the menu entry for a service-descriptor
// product: a cutout image when the descriptor supports one and a
// position is known, otherwise an analyze entry whose URL is resolved
// eagerly or deferred depending on the options.
func makeServiceDefEntry(ctx *Context, opts Options, in serviceDefInput) *Entry {
	def := in.Def
	allowsInput := false
	noInputRequired := false
	for _, p := range def.Params {
		if p.AllowsInput {
			allowsInput = true
		}
		if !p.InputRequired {
			noInputRequired = true
		}
	}

	if in.IsCutout && canMakeCutoutProduct(def, in.Position) {
		if e := makeCutoutEntry(ctx, opts, in); e != nil {
			return e
		}
		return nil
	}

	if opts.ActivateServiceDef && noInputRequired {
		resolved, err := MakeURLFromParams(def.AccessURL, def, in.Idx, componentInputs(ctx, opts, def, nil))
		if err != nil {
			return nil
		}
		req := imagevis.MakeObsCoreRequest(resolved, in.Position, in.TitleStr, in.Source, in.Row)
		e := analyzeEntry("Show: "+firstNonEmpty(in.TitleStr, in.Name), in.MenuKey)
		e.URL = resolved
		e.Request = req
		e.Activate = analyzeCommand(req, in.Source, in.Row)
		e.Extraction = extractImageCommand(ctx, req)
		e.ActiveMenuLookupKey = in.LookupKey
		e.Semantics = in.Semantics
		e.Size = in.Size
		e.SRegion = in.SRegion
		e.ProdTypeHint = in.ProdTypeHint
		e.ServiceDefRef = in.ServiceDefRef
		e.ServiceDef = def
		return e
	}

	req := imagevis.MakeObsCoreRequest(def.AccessURL, in.Position, in.TitleStr, in.Source, in.Row)
	name := "Show: " + firstNonEmpty(in.TitleStr, def.Title, fmt.Sprintf("Service #%d: %s", in.Idx, in.Name))
	if allowsInput {
		name += " (Input Required)"
	}
	e := analyzeEntry(name, in.MenuKey)
	e.URL = def.AccessURL
	e.Request = req
	e.Activate = analyzeCommand(req, in.Source, in.Row)
	e.Extraction = extractImageCommand(ctx, req)
	e.ActiveMenuLookupKey = in.LookupKey
	e.AllowsInput = allowsInput
	e.ServiceDefRef = in.ServiceDefRef
	e.StandardID = def.StandardID
	e.Semantics = in.Semantics
	e.Size = in.Size
	e.SRegion = in.SRegion
	e.ProdTypeHint = firstNonEmpty(in.ProdTypeHint, "unknown")
	e.ServiceDef = def
	return e
}

// canMakeCutoutProduct reports whether a descriptor can serve a cutout:
// the service is SIA-family, or declares a circle-xtype param, or has a
// param whose UCD is one of the cutout UCDs. A position is mandatory.
func canMakeCutoutProduct(def *table.ServiceDescriptor, pos *vo.WorldPt) bool {
	if pos == nil {
		return false
	}
	if vo.IsSIAStandardID(def.StandardID) || findXtypeParam(def, "circle") != nil {
		return true
	}
	return findCutoutUCDParam(def) != nil
}

// makeCutoutEntry builds the cutout image entry. Returns nil when the
// configured cutout size is not positive.
func makeCutoutEntry(ctx *Context, opts Options, in serviceDefInput) *Entry {
	def := in.Def
	size := ctx.CutoutSize(opts.componentKey())
	if size <= 0 {
		return nil
	}
	if in.Position == nil {
		return nil
	}

	cutoutOpts := opts
	var params map[string]string
	if vo.IsSIAStandardID(def.StandardID) || findXtypeParam(def, "circle") != nil {
		cutoutOpts.XtypeKeys = append(append([]string{}, opts.XtypeKeys...), "circle")
		params = map[string]string{"circle": vo.MakeCircleString(in.Position.Lon, in.Position.Lat, size)}
	} else {
		p := findCutoutUCDParam(def)
		if p == nil {
			return nil
		}
		cutoutOpts.UCDKeys = append(append([]string{}, opts.UCDKeys...), p.UCD)
		params = map[string]string{p.UCD: strconv.FormatFloat(size, 'f', -1, 64)}
	}

	resolved, err := MakeURLFromParams(def.AccessURL, def, in.Idx, componentInputs(ctx, cutoutOpts, def, params))
	if err != nil {
		return nil
	}
	req := imagevis.MakeObsCoreRequest(resolved, in.Position, in.TitleStr, in.Source, in.Row)
	e := imageEntry("Show: "+firstNonEmpty(in.TitleStr, in.Name), in.MenuKey, req,
		singleImageCommand(req, in.Source, in.Source.HighlightedRow),
		extractImageCommand(ctx, req))
	e.URL = resolved
	e.ActiveMenuLookupKey = in.LookupKey
	e.Semantics = in.Semantics
	e.Size = in.Size
	e.SRegion = in.SRegion
	e.ProdTypeHint = in.ProdTypeHint
	e.ServiceDef = def
	return e
}

// componentInputs collects the user-entered values that apply to a
// descriptor's params, resolving each options key against the matching
// param. Overlay precedence: UCD, then utype, then param name, then
// xtype; a later overlay wins on name collision.
func componentInputs(ctx *Context, opts Options, def *table.ServiceDescriptor, moreParams map[string]string) map[string]string {
	values := ctx.ComponentState(opts.componentKey())
	for k, v := range moreParams {
		values[k] = v
	}
	if len(values) == 0 {
		return nil
	}

	out := make(map[string]string)
	for _, key := range opts.UCDKeys {
		v, ok := values[key]
		if !ok {
			continue
		}
		for i := range def.Params {
			if def.Params[i].UCD == key {
				out[def.Params[i].Name] = v
				break
			}
		}
	}
	for _, key := range opts.UtypeKeys {
		v, ok := values[key]
		if !ok {
			continue
		}
		for i := range def.Params {
			if def.Params[i].Utype == key {
				out[def.Params[i].Name] = v
				break
			}
		}
	}
	for _, key := range opts.ParamNameKeys {
		if v, ok := values[key]; ok {
			out[key] = v
		}
	}
	for _, key := range opts.XtypeKeys {
		v, ok := values[key]
		if !ok {
			continue
		}
		for i := range def.Params {
			if def.Params[i].Xtype == key {
				out[def.Params[i].Name] = v
				break
			}
		}
	}
	return out
}

// MakeURLFromParams resolves a descriptor's access URL: declared default
// values first, then ref-bound values read from the descriptor's source
// table at rowIdx, then user-supplied values, all appended as query
// parameters.
func MakeURLFromParams(accessURL string, def *table.ServiceDescriptor, rowIdx int, userInputParams map[string]string) (string, error) {
	u, err := url.Parse(accessURL)
	if err != nil {
		return "", fmt.Errorf("parse access url: %w", err)
	}

	send := make(map[string]string)
	for _, p := range def.Params {
		if p.Value != "" {
			send[p.Name] = p.Value
		}
	}
	for _, p := range def.Params {
		if p.Ref == "" {
			continue
		}
		col := p.ColName
		if col == "" {
			col = p.Ref
		}
		if def.Source != nil {
			send[p.Name] = def.Source.CellString(rowIdx, col)
		}
	}
	for k, v := range userInputParams {
		if v != "" {
			send[k] = v
		}
	}

	q := u.Query()
	for k, v := range send {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// MakeServiceDescriptorMenu builds entries for the descriptors attached
// directly to a source table, skipping DataLink descriptors (those are
// resolved through their DataLink table instead).
func MakeServiceDescriptorMenu(ctx *Context, opts Options, src *table.TableModel, row int, lookupKey string) []*Entry {
	pos := vo.Position(src, row)
	var out []*Entry
	idx := 0
	for i := range src.Descriptors {
		def := &src.Descriptors[i]
		if vo.IsDataLinkStandardID(def.StandardID) {
			continue
		}
		e := makeServiceDefEntry(ctx, opts, serviceDefInput{
			Name:      "Show: " + def.Title,
			Def:       def,
			Source:    src,
			Row:       row,
			Idx:       row,
			Position:  pos,
			TitleStr:  def.Title,
			LookupKey: lookupKey,
			MenuKey:   "serdesc-dlt-" + strconv.Itoa(idx),
		})
		if e != nil {
			out = append(out, e)
		}
		idx++
	}
	return out
}

func findXtypeParam(def *table.ServiceDescriptor, xtype string) *table.SerDefParam {
	for i := range def.Params {
		if strings.EqualFold(def.Params[i].Xtype, xtype) {
			return &def.Params[i]
		}
	}
	return nil
}

func findCutoutUCDParam(def *table.ServiceDescriptor) *table.SerDefParam {
	for i := range def.Params {
		ucd := strings.ToLower(def.Params[i].UCD)
		if ucd == "" {
			continue
		}
		for _, test := range vo.CutoutUCDs {
			if strings.Contains(ucd, test) {
				return &def.Params[i]
			}
		}
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
