// Package status serves a read-only JSON view of the sign for monitoring.
package status

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/deevus/transit-sign/board"
	"github.com/deevus/transit-sign/internal"
	"github.com/julienschmidt/httprouter"
)

// StateReporter reports whether refreshing is active.
type StateReporter interface {
	Running() bool
}

// Entry is the JSON form of one column row.
type Entry struct {
	Route       string          `json:"route"`
	Destination string          `json:"destination"`
	Countdown   board.Countdown `json:"countdown"`
	Secondary   string          `json:"secondary,omitempty"`
	Capacity    string          `json:"capacity,omitempty"`
	Placeholder bool            `json:"placeholder,omitempty"`
	Padding     board.Density   `json:"padding"`
}

// Columns holds both sides of the sign.
type Columns struct {
	A []Entry `json:"a"`
	B []Entry `json:"b"`
}

// Response is the body of GET /status.
type Response struct {
	Running     bool          `json:"running"`
	LastUpdated *time.Time    `json:"last_updated"`
	Density     board.Density `json:"density"`
	Columns     Columns       `json:"columns"`
}

type handler struct {
	store  *board.Store
	state  StateReporter
	logger *slog.Logger
}

// NewHandler returns the status routes backed by store.
func NewHandler(store *board.Store, state StateReporter, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = internal.Discard()
	}
	h := &handler{store: store, state: state, logger: logger.With(slog.String("component", "status"))}

	router := httprouter.New()
	router.GET("/status", h.status)
	router.GET("/healthz", h.healthz)
	router.NotFound = http.HandlerFunc(h.notFound)
	router.HandleMethodNotAllowed = false
	return router
}

func (h *handler) status(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	v := h.store.Snapshot()
	a, b := board.Columns(v)

	resp := Response{
		Running: h.state != nil && h.state.Running(),
		Density: v.Density,
		Columns: Columns{A: entries(a), B: entries(b)},
	}
	if v.Updated() {
		t := v.LastUpdated.UTC()
		resp.LastUpdated = &t
	}
	h.sendJSON(w, http.StatusOK, resp)
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte("ok")); err != nil {
		internal.LogError(h.logger, "failed to write health response", err)
	}
}

func (h *handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
}

func (h *handler) sendJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		internal.LogError(h.logger, "failed to encode response", err)
	}
}

func entries(col []board.Entry) []Entry {
	out := make([]Entry, len(col))
	for i, e := range col {
		out[i] = Entry{
			Route:       e.Route,
			Destination: e.Destination,
			Countdown:   e.Countdown,
			Secondary:   e.Secondary,
			Placeholder: e.Placeholder,
			Padding:     e.Padding,
		}
		if e.HasCapacity {
			out[i].Capacity = e.Capacity.Label
		}
	}
	return out
}

// NewServer wraps h in an http.Server listening on addr.
func NewServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
