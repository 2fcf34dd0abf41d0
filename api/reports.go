package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/gorilla/mux"
	"github.com/qri-io/jsonschema"

	"github.com/CharlesManalo/CommunitySafe/internal/hazard"
	"github.com/CharlesManalo/CommunitySafe/internal/imagestore"
)

// Inline base64 images make submission bodies large; cap them well above
// any realistic phone photo.
const maxSubmitBodyBytes = 15 << 20

//go:embed report_schema.json
var reportSchemaJSON []byte

type ReportsHandler struct {
	svc    hazard.Service
	schema *jsonschema.Schema
}

// NewReportsHandler compiles the embedded submission schema; a broken schema
// is a programming error surfaced at startup.
func NewReportsHandler(svc hazard.Service) (*ReportsHandler, error) {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(reportSchemaJSON, rs); err != nil {
		return nil, fmt.Errorf("compile report schema: %w", err)
	}

	return &ReportsHandler{svc: svc, schema: rs}, nil
}

type submitReportRequest struct {
	BeforeImage string   `json:"before_image"`
	Description string   `json:"description"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

type resolveReportRequest struct {
	AfterImage string `json:"after_image"`
}

func (h *ReportsHandler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSubmitBodyBytes))
	if err != nil {
		writeJSON(w, map[string]any{"error": "Invalid request body"}, http.StatusBadRequest)
		return
	}

	keyErrs, err := h.schema.ValidateBytes(r.Context(), body)
	if err != nil {
		writeJSON(w, map[string]any{"error": "Invalid request"}, http.StatusBadRequest)
		return
	}
	if len(keyErrs) > 0 {
		writeJSON(w, map[string]any{"error": keyErrs[0].Message}, http.StatusBadRequest)
		return
	}

	var req submitReportRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, map[string]any{"error": "Invalid request"}, http.StatusBadRequest)
		return
	}

	id, err := h.svc.SubmitReport(r.Context(), hazard.SubmitRequest{
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		BeforeImage: req.BeforeImage,
	})
	if err != nil {
		h.writeSubmitError(r.Context(), w, err)
		return
	}

	writeJSON(w, map[string]any{
		"success":   true,
		"report_id": id,
		"message":   "Hazard reported successfully",
	}, http.StatusCreated)
}

func (h *ReportsHandler) writeSubmitError(ctx context.Context, w http.ResponseWriter, err error) {
	var missing *hazard.MissingFieldError
	var invalid *hazard.InvalidFieldError
	switch {
	case errors.As(err, &missing), errors.As(err, &invalid):
		writeJSON(w, map[string]any{"error": err.Error()}, http.StatusBadRequest)
	case errors.Is(err, imagestore.ErrInvalidFormat):
		writeJSON(w, map[string]any{"error": "Invalid image format"}, http.StatusBadRequest)
	default:
		logger.ErrorContext(ctx, "submit report", slog.Any("err", err))
		writeJSON(w, map[string]any{"error": "Internal server error"}, http.StatusInternalServerError)
	}
}

func (h *ReportsHandler) ResolveReport(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["report_id"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, map[string]any{"error": "Invalid report id"}, http.StatusBadRequest)
		return
	}

	var req resolveReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, map[string]any{"error": "Invalid request"}, http.StatusBadRequest)
		return
	}

	if err := h.svc.ResolveReport(r.Context(), id, req.AfterImage); err != nil {
		switch {
		case errors.Is(err, imagestore.ErrInvalidFormat):
			writeJSON(w, map[string]any{"error": "Invalid after image"}, http.StatusBadRequest)
		case errors.Is(err, hazard.ErrReportNotFound):
			writeJSON(w, map[string]any{"error": "Report not found"}, http.StatusNotFound)
		case errors.Is(err, hazard.ErrAlreadyResolved):
			writeJSON(w, map[string]any{"error": "Report already resolved"}, http.StatusConflict)
		default:
			logger.ErrorContext(r.Context(), "resolve report", slog.Int64("id", id), slog.Any("err", err))
			writeJSON(w, map[string]any{"error": "Internal server error"}, http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, map[string]any{
		"success": true,
		"message": "Hazard marked as resolved",
	}, http.StatusOK)
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}
