package handlers

import (
	"net/http"
	"strconv"

	"github.com/astroview/voprod/internal/httpserver/deps"
	"github.com/astroview/voprod/internal/logger"
	"github.com/astroview/voprod/internal/products"
	"github.com/astroview/voprod/internal/session"
	"github.com/astroview/voprod/internal/table"
)

type resolveRequest struct {
	SessionID      string            `json:"sessionId,omitempty"`
	DatalinkURL    string            `json:"datalinkURL"`
	SourceTable    *table.TableModel `json:"sourceTable,omitempty"`
	Row            int               `json:"row"`
	Title          string            `json:"title,omitempty"`
	DoFileAnalysis *bool             `json:"doFileAnalysis,omitempty"`
}

type resolveResponse struct {
	SessionID string          `json:"sessionId"`
	Profile   string          `json:"profile,omitempty"`
	Product   *products.Entry `json:"product"`
}

// sessionFor resolves the request's session and the display options of
// the matching archive profile. A profile cutout default is seeded into
// the session the first time, so a user-set size is never overwritten.
func sessionFor(d deps.Deps, id, tableID, dlURL string) (*session.Session, products.Options, string) {
	sess, _ := d.Sessions.GetOrCreate(id)
	opts, profile := d.Profiles.OptionsFor(tableID, dlURL)
	if cutout := d.Profiles.CutoutFor(tableID, dlURL); cutout > 0 {
		key := opts.ComponentKey
		if key == "" {
			key = products.DefaultComponentKey
		}
		if _, ok := sess.Ctx.ComponentState(key)[products.CutoutSizeKey]; !ok {
			sess.Ctx.SetComponentValue(key, products.CutoutSizeKey,
				strconv.FormatFloat(cutout, 'f', -1, 64))
		}
	}
	return sess, opts, profile
}

// persistSession saves the session to Redis, best effort.
func persistSession(d deps.Deps, r *http.Request, sess *session.Session) {
	if d.Store == nil {
		return
	}
	if err := d.Store.SaveSession(r.Context(), sess.ToRecord()); err != nil {
		d.Logger.Warn("failed to persist session",
			logger.String("session_id", sess.ID), logger.Error(err))
	}
}

// Resolve builds the full product menu for one source-table row.
func Resolve(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resolveRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.DatalinkURL == "" {
			writeError(w, http.StatusBadRequest, "datalinkURL is required")
			return
		}

		sess, opts, profile := sessionFor(d, req.SessionID, sourceID(req.SourceTable), req.DatalinkURL)

		doFA := true
		if req.DoFileAnalysis != nil {
			doFA = *req.DoFileAnalysis
		}

		product := d.Resolver.SingleProduct(r.Context(), sess.Ctx, opts, products.SingleParams{
			DLTableURL:     req.DatalinkURL,
			Source:         req.SourceTable,
			Row:            req.Row,
			TitleStr:       req.Title,
			DoFileAnalysis: doFA,
		})

		persistSession(d, r, sess)
		writeJSON(w, http.StatusOK, resolveResponse{SessionID: sess.ID, Profile: profile, Product: product})
	}
}

type relatedGridRequest struct {
	resolveRequest
	ThreeColor *threeColorOps `json:"threeColor,omitempty"`
}

type threeColorOps struct {
	Red   *int `json:"red,omitempty"`
	Green *int `json:"green,omitempty"`
	Blue  *int `json:"blue,omitempty"`
}

func (t *threeColorOps) toOps() *products.ThreeColorOps {
	if t == nil {
		return nil
	}
	ops := products.NoThreeColor
	if t.Red != nil {
		ops.Red = *t.Red
	}
	if t.Green != nil {
		ops.Green = *t.Green
	}
	if t.Blue != nil {
		ops.Blue = *t.Blue
	}
	return &ops
}

// RelatedGrid builds the image-grid product for a row with grid-flagged
// primary images.
func RelatedGrid(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req relatedGridRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.DatalinkURL == "" {
			writeError(w, http.StatusBadRequest, "datalinkURL is required")
			return
		}

		sess, opts, profile := sessionFor(d, req.SessionID, sourceID(req.SourceTable), req.DatalinkURL)

		product := d.Resolver.RelatedGridProduct(r.Context(), sess.Ctx, opts, products.RelatedGridParams{
			DLTableURL: req.DatalinkURL,
			Source:     req.SourceTable,
			Row:        req.Row,
			TitleStr:   req.Title,
			ThreeColor: req.ThreeColor.toOps(),
		})

		persistSession(d, r, sess)
		writeJSON(w, http.StatusOK, resolveResponse{SessionID: sess.ID, Profile: profile, Product: product})
	}
}

type gridRequest struct {
	SessionID   string            `json:"sessionId,omitempty"`
	SourceTable *table.TableModel `json:"sourceTable,omitempty"`
	Jobs        []gridJob         `json:"jobs"`
}

type gridJob struct {
	DatalinkURL string `json:"datalinkURL"`
	Row         int    `json:"row"`
	Title       string `json:"title,omitempty"`
}

// Grid resolves many rows concurrently into one grid product.
func Grid(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req gridRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if len(req.Jobs) == 0 {
			writeError(w, http.StatusBadRequest, "jobs is required")
			return
		}

		var dlURL string
		jobs := make([]products.GridJob, len(req.Jobs))
		for i, j := range req.Jobs {
			if j.DatalinkURL == "" {
				writeError(w, http.StatusBadRequest, "jobs["+strconv.Itoa(i)+"].datalinkURL is required")
				return
			}
			if dlURL == "" {
				dlURL = j.DatalinkURL
			}
			jobs[i] = products.GridJob{DLTableURL: j.DatalinkURL, Row: j.Row, TitleStr: j.Title}
		}

		sess, opts, profile := sessionFor(d, req.SessionID, sourceID(req.SourceTable), dlURL)

		product, err := d.Resolver.GridResult(r.Context(), sess.Ctx, opts, req.SourceTable, jobs)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		persistSession(d, r, sess)
		writeJSON(w, http.StatusOK, resolveResponse{SessionID: sess.ID, Profile: profile, Product: product})
	}
}

type threeColorResponse struct {
	SessionID   string                    `json:"sessionId"`
	Assignments map[int]bandAssignmentDTO `json:"assignments"`
}

type bandAssignmentDTO struct {
	Title string `json:"title,omitempty"`
	Color string `json:"color"`
}

// ThreeColor describes the band assignment a related grid would use for
// a composite.
func ThreeColor(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resolveRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.DatalinkURL == "" {
			writeError(w, http.StatusBadRequest, "datalinkURL is required")
			return
		}

		sess, opts, _ := sessionFor(d, req.SessionID, sourceID(req.SourceTable), req.DatalinkURL)

		assignments, err := d.Resolver.DescribeThreeColor(r.Context(), sess.Ctx, opts,
			req.DatalinkURL, req.SourceTable, req.Row)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}

		out := make(map[int]bandAssignmentDTO, len(assignments))
		for idx, a := range assignments {
			out[idx] = bandAssignmentDTO{Title: a.Title, Color: a.Color.String()}
		}
		writeJSON(w, http.StatusOK, threeColorResponse{SessionID: sess.ID, Assignments: out})
	}
}

type descriptorsResponse struct {
	SessionID string            `json:"sessionId"`
	Entries   []*products.Entry `json:"entries"`
}

// Descriptors builds the service-descriptor menu entries of a source
// table row, without fetching anything.
func Descriptors(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resolveRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.SourceTable == nil {
			writeError(w, http.StatusBadRequest, "sourceTable is required")
			return
		}

		sess, opts, _ := sessionFor(d, req.SessionID, req.SourceTable.ID, req.DatalinkURL)
		entries := products.MakeServiceDescriptorMenu(sess.Ctx, opts, req.SourceTable, req.Row, req.DatalinkURL)

		persistSession(d, r, sess)
		writeJSON(w, http.StatusOK, descriptorsResponse{SessionID: sess.ID, Entries: entries})
	}
}

func sourceID(t *table.TableModel) string {
	if t == nil {
		return ""
	}
	return t.ID
}
