package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/erdlayout/pkg/buildinfo"
	"github.com/matzehuels/erdlayout/pkg/diagram"
	errs "github.com/matzehuels/erdlayout/pkg/errors"
	"github.com/matzehuels/erdlayout/pkg/ordering"
	"github.com/matzehuels/erdlayout/pkg/pipeline"
	"github.com/matzehuels/erdlayout/pkg/store"
)

var errInternal = errs.New(errs.ErrCodeInternal, "internal server error")

// LayoutResponse is the body returned for a stored layout.
type LayoutResponse struct {
	store.Record
	Document json.RawMessage `json:"document,omitempty"`
	Cached   bool            `json:"cached,omitempty"`
}

// ErrorResponse is the body returned for failed requests.
type ErrorResponse struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

func (s *Server) createLayout(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	d, err := diagram.Read(r.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	if name := r.URL.Query().Get("name"); name != "" {
		d.Name = name
	}

	cfg := s.cfg
	if h := r.URL.Query().Get("heuristic"); h != "" {
		if cfg.Heuristic, err = ordering.ParseHeuristic(h); err != nil {
			writeError(w, errs.Wrap(errs.ErrCodeInvalidHeuristic, err, "invalid heuristic"))
			return
		}
	}

	result, err := s.runner.Run(r.Context(), d, pipeline.Options{Layout: &cfg})
	if err != nil {
		writeError(w, err)
		return
	}

	var doc bytes.Buffer
	if err := diagram.Write(d, &doc); err != nil {
		writeError(w, err)
		return
	}
	rec := &store.Record{
		ID:        uuid.NewString(),
		Name:      d.Name,
		CreatedAt: time.Now().UTC(),
		Stats:     result.Stats,
		Document:  doc.Bytes(),
	}
	if err := s.store.Save(r.Context(), rec); err != nil {
		writeError(w, err)
		return
	}
	s.logger.Debug("stored layout", "id", rec.ID, "name", rec.Name, "cached", result.CacheInfo.LayoutHit)

	w.Header().Set("Location", "/v1/layouts/"+rec.ID)
	writeJSON(w, http.StatusCreated, LayoutResponse{
		Record:   *rec,
		Document: rec.Document,
		Cached:   result.CacheInfo.LayoutHit,
	})
}

func (s *Server) listLayouts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, errs.New(errs.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	records, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []store.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) getLayout(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LayoutResponse{Record: *rec, Document: rec.Document})
}

func (s *Server) getLayoutSVG(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	d, err := diagram.Read(bytes.NewReader(rec.Document))
	if err != nil {
		writeError(w, err)
		return
	}

	opts := pipeline.Options{
		Engine:   r.URL.Query().Get("engine"),
		Detailed: r.URL.Query().Get("detailed") == "true",
	}
	if opts.Engine == "" {
		opts.Engine = pipeline.EngineNative
	}
	if err := pipeline.ValidateEngine(opts.Engine); err != nil {
		writeError(w, err)
		return
	}
	svg, err := pipeline.Render(r.Context(), d, pipeline.FormatSVG, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

func (s *Server) deleteLayout(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	status := statusFor(code)

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}

	msg := errs.UserMessage(err)
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: msg})
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errs.Code) int {
	switch code {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidFormat, errs.ErrCodeInvalidConfig,
		errs.ErrCodeInvalidPath, errs.ErrCodeInvalidHeuristic:
		return http.StatusBadRequest
	case errs.ErrCodeInvalidTopology, errs.ErrCodeUnsupportedContainer, errs.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeNotFound, errs.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errs.ErrCodeInvalidState:
		return http.StatusConflict
	case errs.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
