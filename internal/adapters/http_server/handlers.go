// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_catalog/internal/app"
	"hotel_catalog/internal/domain"
)

// Handlers opens one store session per request and closes it before returning.
type Handlers struct{ Sessions domain.SessionOpener }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/hotels", h.searchHotels)
	s.mux.Get("/v1/hotels/lookup", h.lookupHotel)
	s.mux.Get("/v1/hotels/{id}", h.getHotel)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return "", nil, err
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body, nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body, err := calcETagAndBody(v)
	if err != nil {
		log.Error().Err(err).Msg("marshal response failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	w.Header().Set("ETag", etag)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("write body failed")
	}
}

// catalog opens the request's session. On failure it has already written 503.
func (h *Handlers) catalog(w http.ResponseWriter, r *http.Request) (*app.CatalogService, func(), bool) {
	sess, err := h.Sessions.OpenSession(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("open store session failed")
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "catalog store is unavailable")
		return nil, nil, false
	}
	closeFn := func() {
		if err := sess.Close(); err != nil {
			log.Warn().Err(err).Msg("close store session failed")
		}
	}
	return app.NewCatalogService(sess), closeFn, true
}

func internalError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("catalog query failed")
	writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
}

func (h *Handlers) searchHotels(w http.ResponseWriter, r *http.Request) {
	var f domain.HotelFilter
	q := r.URL.Query()
	if q.Has("location") {
		loc := q.Get("location")
		f.Location = &loc
	}
	if rs := strings.TrimSpace(q.Get("min_rating")); rs != "" {
		n, err := strconv.Atoi(rs)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid min_rating", "min_rating must be an integer")
			return
		}
		f.MinRating = &n
	}

	svc, done, ok := h.catalog(w, r)
	if !ok {
		return
	}
	defer done()

	hs, err := svc.SearchHotels(r.Context(), f)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, r, hotelList{Items: toHotelDTOs(hs)})
}

func (h *Handlers) lookupHotel(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeProblem(w, http.StatusBadRequest, "Missing name", "name query parameter is required")
		return
	}

	svc, done, ok := h.catalog(w, r)
	if !ok {
		return
	}
	defer done()

	hotel, err := svc.FindHotelByName(r.Context(), name)
	if err != nil {
		internalError(w, err)
		return
	}
	if hotel == nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "hotel not found")
		return
	}
	writeJSON(w, r, toHotelDTO(*hotel))
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}

	svc, done, ok := h.catalog(w, r)
	if !ok {
		return
	}
	defer done()

	hd, err := svc.GetHotelDetails(r.Context(), id)
	if err != nil {
		internalError(w, err)
		return
	}
	if hd == nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "hotel not found")
		return
	}
	writeJSON(w, r, toDetailsDTO(*hd))
}
