package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cairnstack/cairn/internal/alerts"
	"github.com/cairnstack/cairn/internal/keeper"
	"github.com/cairnstack/cairn/pkg/series"
	"github.com/cairnstack/cairn/pkg/types"
)

// AlertSource supplies the currently firing alerts. *alerts.Engine satisfies
// it; passing nil disables the /api/v1/alerts endpoint's content.
type AlertSource interface {
	Active() []*alerts.Alert
}

// Handler is the HTTP handler for all /api/v1/* endpoints.
// It reads cache state from the keeper and returns JSON responses.
type Handler struct {
	keeper *keeper.Keeper
	alerts AlertSource
	mux    *http.ServeMux
}

// New creates a Handler wired to the given keeper and registers all routes.
func New(k *keeper.Keeper, src AlertSource) http.Handler {
	h := &Handler{keeper: k, alerts: src, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/series", h.listSeries)
	h.mux.HandleFunc("/api/v1/series/", h.oneSeries) // subtree — extracts {name}
	h.mux.HandleFunc("/api/v1/errors", h.errorLog)
	h.mux.HandleFunc("/api/v1/delta", h.delta)
	h.mux.HandleFunc("/api/v1/slice", h.slice)
	h.mux.HandleFunc("/api/v1/purge", h.purge)
	h.mux.HandleFunc("/api/v1/alerts", h.activeAlerts)
	h.mux.HandleFunc("/api/v1/snapshot", h.snapshot)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health — container-wide counters.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	c := h.keeper.Current()
	resp := HealthResponse{
		SeriesCount: len(c.Names()),
		ValueCount:  c.Len(),
		Empty:       c.Empty(),
	}
	for _, name := range c.Names() {
		s, _ := c.Series(name)
		resp.TotalAdmitted += s.Admitted()
		resp.TotalRejected += c.Errors().Rejected(name)
	}
	jsonResp(w, http.StatusOK, resp)
}

// listSeries returns GET /api/v1/series — per-series stats in declared order.
func (h *Handler) listSeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.keeper.Stats())
}

// oneSeries handles GET and POST /api/v1/series/{name}.
func (h *Handler) oneSeries(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/v1/series/")
	if name == "" {
		h.listSeries(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getSeries(w, name)
	case http.MethodPost:
		h.putValue(w, r, name)
	default:
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) getSeries(w http.ResponseWriter, name string) {
	c := h.keeper.Current()
	if _, ok := c.Series(name); !ok {
		jsonErr(w, http.StatusNotFound, "series not found")
		return
	}

	for _, st := range h.keeper.Stats() {
		if st.Series == name {
			jsonResp(w, http.StatusOK, detail(c, st))
			return
		}
	}
}

func (h *Handler) putValue(w http.ResponseWriter, r *http.Request, name string) {
	var req PutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	at := time.Now().UTC()
	if req.At != "" {
		parsed, err := time.Parse(time.RFC3339, req.At)
		if err != nil {
			jsonErr(w, http.StatusBadRequest, "invalid at timestamp")
			return
		}
		at = parsed
	}

	accepted, err := h.keeper.Put(name, types.Observation{Value: req.Value, At: at, Feed: req.Feed})
	if err != nil {
		if errors.Is(err, series.ErrUnknownSeries) {
			jsonErr(w, http.StatusNotFound, "series not found")
			return
		}
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResp(w, http.StatusAccepted, PutResponse{Series: name, Accepted: accepted})
}

// errorLog returns GET /api/v1/errors — retained rejections, newest first.
func (h *Handler) errorLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.keeper.Current().Errors().Entries()
	out := make([]RejectionResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, RejectionResponse{Series: e.Series, Value: toValueResponse(e.Value)})
	}
	jsonResp(w, http.StatusOK, out)
}

// delta returns GET /api/v1/delta — per-series extremes under the favor
// ranking. ?rank=asc|desc overrides each series' own ranking.
func (h *Handler) delta(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var rank func(a, b float64) bool
	switch r.URL.Query().Get("rank") {
	case "":
	case "asc":
		rank = series.Asc
	case "desc":
		rank = series.Desc
	default:
		jsonErr(w, http.StatusBadRequest, "rank must be asc or desc")
		return
	}

	c := h.keeper.Current()
	deltas := c.Delta(rank)
	out := make([]ExtentResponse, 0, len(deltas))
	for _, name := range c.Names() {
		d, ok := deltas[name]
		if !ok || !d.OK {
			continue
		}
		out = append(out, ExtentResponse{
			Series: name,
			Min:    d.Min.Value,
			Max:    d.Max.Value,
			Spread: d.Max.Value - d.Min.Value,
		})
	}
	jsonResp(w, http.StatusOK, out)
}

// slice returns GET /api/v1/slice — the newest value of every non-empty series.
func (h *Handler) slice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	heads := h.keeper.Current().Slice()
	out := make(SliceResponse, len(heads))
	for name, v := range heads {
		out[name] = toValueResponse(v)
	}
	jsonResp(w, http.StatusOK, out)
}

// purge handles POST /api/v1/purge — re-validates all cached values now.
func (h *Handler) purge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, PurgeResponse{Removed: h.keeper.Purge()})
}

// activeAlerts returns GET /api/v1/alerts — currently firing alerts.
func (h *Handler) activeAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.alerts == nil {
		jsonResp(w, http.StatusOK, []struct{}{})
		return
	}
	jsonResp(w, http.StatusOK, h.alerts.Active())
}

// snapshot returns GET /api/v1/snapshot — every series with its values.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, BuildSnapshot(h.keeper))
}

// BuildSnapshot builds the full-dump payload. The WebSocket hub reuses it for
// periodic broadcasts.
func BuildSnapshot(k *keeper.Keeper) SnapshotResponse {
	c := k.Current()
	stats := k.Stats()
	out := make([]SeriesDetail, 0, len(stats))
	for _, st := range stats {
		out = append(out, detail(c, st))
	}
	return SnapshotResponse{
		Series:      out,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// --- helpers ----------------------------------------------------------------

func detail(c *series.Container[types.Observation], st keeper.Stat) SeriesDetail {
	d := SeriesDetail{Stat: st}

	s, _ := c.Series(st.Series)
	d.Values = make([]ValueResponse, 0, s.Len())
	for _, v := range s.Values() {
		d.Values = append(d.Values, toValueResponse(v))
	}

	rejected := c.Errors().For(st.Series)
	d.Rejected = make([]ValueResponse, 0, len(rejected))
	for _, e := range rejected {
		d.Rejected = append(d.Rejected, toValueResponse(e.Value))
	}

	d.Diagnostics = computeDiagnostics(st)
	return d
}

func toValueResponse(o types.Observation) ValueResponse {
	return ValueResponse{
		Value: o.Value,
		At:    o.At.UTC().Format(time.RFC3339),
		Feed:  o.Feed,
	}
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
