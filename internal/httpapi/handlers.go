// internal/httpapi/handlers.go
package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	commonerrors "recruitment-analytics/internal/common/errors"
	"recruitment-analytics/internal/dashboard"
	"recruitment-analytics/internal/dataset"
	"recruitment-analytics/internal/filter"
)

// errorEnvelope is the JSON error body, carrying the internal error code.
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details,omitempty"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	var env errorEnvelope
	var stdErr *commonerrors.StandardError
	if errors.As(err, &stdErr) {
		env.Error.Code = string(stdErr.Code)
		env.Error.Message = stdErr.Message
		env.Error.Details = stdErr.Details
	} else {
		env.Error.Code = "INTERNAL"
		env.Error.Message = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// dimensionKeys maps query parameter names to dimensions.
var dimensionKeys = func() map[string]dataset.Dimension {
	m := make(map[string]dataset.Dimension, len(dataset.Dimensions))
	for _, dim := range dataset.Dimensions {
		m[string(dim)] = dim
	}
	return m
}()

// parseSelection builds a filter selection from repeatable dimension query
// parameters, e.g. ?business_unit=A&business_unit=B&location=Pune. A query
// key that is not a known dimension is an invalid filter.
func parseSelection(query url.Values) (filter.Selection, error) {
	sel := filter.Selection{}
	for key, values := range query {
		dim, ok := dimensionKeys[key]
		if !ok {
			return nil, commonerrors.NewInvalidFilterFormatError(fmt.Sprintf("unknown dimension %q", key))
		}
		for _, v := range values {
			if v != "" {
				sel[dim] = append(sel[dim], v)
			}
		}
	}
	return sel, nil
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	snap, err := s.svc.Render(r.Context(), sel)
	if err != nil {
		if errors.Is(err, dashboard.ErrNoDataset) {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handleDimensions(w http.ResponseWriter, r *http.Request) {
	dims, err := s.svc.Dimensions()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, dims)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rows, err := s.svc.Records(sel)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	if rows == nil {
		rows = []dataset.Record{}
	}
	writeJSON(w, rows)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	// Serialize before touching headers so a failure can still return an
	// error envelope instead of a truncated download.
	var buf bytes.Buffer
	if _, err := s.svc.Export(r.Context(), &buf, sel); err != nil {
		if errors.Is(err, dashboard.ErrNoDataset) {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	filename := fmt.Sprintf("recruitment_data_%s.csv", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := io.Copy(w, &buf); err != nil {
		s.logger.Error("export write failed", map[string]interface{}{
			"requestId": RequestIDFrom(r.Context()),
			"error":     err.Error(),
		})
	}
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ds, err := s.svc.Load(r.Context())
	if err != nil {
		// The previous dataset stays in place; surface the load error.
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, map[string]any{
		"version":  ds.Version,
		"rows":     ds.Len(),
		"skipped":  ds.Skipped,
		"loadedAt": ds.LoadedAt,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ok"}
	if ds, err := s.svc.Dataset(); err == nil {
		status["datasetVersion"] = ds.Version
		status["rows"] = ds.Len()
	} else {
		status["status"] = "no dataset"
	}
	writeJSON(w, status)
}
