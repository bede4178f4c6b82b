// Package handler exposes the dashboard operations over HTTP.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/history"
	"github.com/Krimson/neorisk-monitor/neorisk/internal/models"
	"github.com/Krimson/neorisk-monitor/neorisk/internal/service"
	"github.com/Krimson/neorisk-monitor/neorisk/internal/stats"
	"github.com/Krimson/neorisk-monitor/neorisk/internal/validation"
)

// maxBodyBytes bounds prediction request bodies.
const maxBodyBytes = 1 << 20

// HTTPHandler serves the JSON API.
type HTTPHandler struct {
	service     *service.Service
	pageSize    int
	seedDefault int
	now         func() time.Time
}

// NewHTTPHandler builds the handler. pageSize and seedDefault apply when
// the corresponding query parameter is absent.
func NewHTTPHandler(svc *service.Service, pageSize, seedDefault int) *HTTPHandler {
	return &HTTPHandler{
		service:     svc,
		pageSize:    pageSize,
		seedDefault: seedDefault,
		now:         time.Now,
	}
}

// RegisterRoutes registers the API routes on router.
func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/predictions", h.CreatePrediction).Methods("POST")

	api.HandleFunc("/history", h.ListHistory).Methods("GET")
	api.HandleFunc("/history", h.ClearHistory).Methods("DELETE")
	api.HandleFunc("/history/stats", h.GetHistoryStats).Methods("GET")
	api.HandleFunc("/history/export", h.ExportHistory).Methods("GET")
	api.HandleFunc("/history/{id}", h.DeleteHistoryEntry).Methods("DELETE")

	api.HandleFunc("/admin/seed", h.SeedHistory).Methods("POST")

	api.HandleFunc("/dashboard", h.GetDashboard).Methods("GET")
	api.HandleFunc("/models", h.ListModels).Methods("GET")
	api.HandleFunc("/models/performance", h.GetModelPerformance).Methods("GET")
	api.HandleFunc("/models/comparison", h.GetModelComparison).Methods("GET")
	api.HandleFunc("/validation-rules", h.GetValidationRules).Methods("GET")
}

// CreatePrediction runs the selected classifiers
// POST /api/predictions
func (h *HTTPHandler) CreatePrediction(w http.ResponseWriter, r *http.Request) {
	var req models.PredictionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Data.BabyName = req.BabyName

	resp, err := h.service.Predict(r.Context(), req)
	if err != nil {
		respondServiceError(w, "create prediction", err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// ListHistory returns one page of filtered history
// GET /api/history?search=&from=&to=&consensus=&model=&sortBy=&sortOrder=&page=&pageSize=
func (h *HTTPHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := getQueryInt(r, "page", 1)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	size, err := getQueryInt(r, "pageSize", h.pageSize)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	state := history.QueryState{Filters: filters, Page: page, PageSize: size}
	respondJSON(w, http.StatusOK, h.service.History(r.Context(), state))
}

// GetHistoryStats
// GET /api/history/stats
func (h *HTTPHandler) GetHistoryStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.HistoryStats(r.Context()))
}

// ExportHistory streams the filtered history as an attachment
// GET /api/history/export?format=json|csv
func (h *HTTPHandler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	format := history.FormatJSON
	if raw := r.URL.Query().Get("format"); raw != "" {
		f, err := history.ParseFormat(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		format = f
	}

	filters, err := parseFilters(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// buffered so a failed read still gets a proper status
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), &buf, filters, format); err != nil {
		respondServiceError(w, "export history", err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename(h.now())+`"`)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[ERROR] Failed to write history export: %v", err)
	}
}

// DeleteHistoryEntry
// DELETE /api/history/{id}
func (h *HTTPHandler) DeleteHistoryEntry(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.service.Delete(r.Context(), id); err != nil {
		respondServiceError(w, "delete history entry "+id, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "History entry deleted successfully",
		"id":      id,
	})
}

// ClearHistory
// DELETE /api/history
func (h *HTTPHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.Clear(r.Context())
	if err != nil {
		respondServiceError(w, "clear history", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "History cleared successfully",
		"deleted": n,
	})
}

// SeedHistory stores generated sample entries
// POST /api/admin/seed?count=50
func (h *HTTPHandler) SeedHistory(w http.ResponseWriter, r *http.Request) {
	count, err := getQueryInt(r, "count", h.seedDefault)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	n, err := h.service.Seed(r.Context(), count)
	if err != nil {
		respondServiceError(w, "seed history", err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "History seeded successfully",
		"created": n,
	})
}

// GetDashboard
// GET /api/dashboard
func (h *HTTPHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.Dashboard(r.Context()))
}

// ListModels returns the classifier catalogue
// GET /api/models
func (h *HTTPHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	all := models.AllModels()
	infos := make([]models.ModelInfo, len(all))
	for i, m := range all {
		infos[i] = m.Info()
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"models": infos})
}

// GetModelPerformance
// GET /api/models/performance?sortBy=accuracy&asc=false
func (h *HTTPHandler) GetModelPerformance(w http.ResponseWriter, r *http.Request) {
	by := stats.ByAccuracy
	if raw := r.URL.Query().Get("sortBy"); raw != "" {
		c, err := stats.ParseCriterion(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		by = c
	}

	asc := false
	if raw := r.URL.Query().Get("asc"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "asc must be a boolean")
			return
		}
		asc = b
	}

	respondJSON(w, http.StatusOK, h.service.Performance(r.Context(), by, asc))
}

// GetModelComparison
// GET /api/models/comparison
func (h *HTTPHandler) GetModelComparison(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.Comparison(r.Context()))
}

// GetValidationRules
// GET /api/validation-rules
func (h *HTTPHandler) GetValidationRules(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"rules": validation.Rules()})
}

// ===== Helpers =====

const dateLayout = "2006-01-02"

// parseFilters reads the history filter query parameters. A date-only "to"
// bound covers the whole day.
func parseFilters(r *http.Request) (models.HistoryFilters, error) {
	q := r.URL.Query()
	f := models.DefaultFilters()
	f.SearchQuery = strings.TrimSpace(q.Get("search"))

	if raw := q.Get("from"); raw != "" {
		t, _, err := parseTime(raw)
		if err != nil {
			return f, err
		}
		f.DateFrom = &t
	}
	if raw := q.Get("to"); raw != "" {
		t, dateOnly, err := parseTime(raw)
		if err != nil {
			return f, err
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		f.DateTo = &t
	}

	if raw := q.Get("consensus"); raw != "" && !strings.EqualFold(raw, string(models.VerdictAll)) {
		v, err := models.ParseVerdict(raw)
		if err != nil {
			return f, err
		}
		f.Consensus = v
	}
	if raw := q.Get("model"); raw != "" && !strings.EqualFold(raw, string(models.ModelAll)) {
		m, err := models.ParseModelID(raw)
		if err != nil {
			return f, err
		}
		f.Model = m
	}
	if raw := q.Get("sortBy"); raw != "" {
		s, err := models.ParseSortField(raw)
		if err != nil {
			return f, err
		}
		f.SortBy = s
	}
	if raw := q.Get("sortOrder"); raw != "" {
		o, err := models.ParseSortOrder(raw)
		if err != nil {
			return f, err
		}
		f.SortOrder = o
	}
	return f, nil
}

func parseTime(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, errors.New("dates must be YYYY-MM-DD or RFC3339, got " + strconv.Quote(raw))
	}
	return t, false, nil
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[ERROR] Failed to encode JSON response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":  message,
		"status": status,
	})
}

// respondServiceError maps service errors onto status codes.
func respondServiceError(w http.ResponseWriter, action string, err error) {
	var fields validation.Errors
	switch {
	case errors.As(err, &fields):
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "Validation failed",
			"status": http.StatusBadRequest,
			"fields": fields,
		})
	case errors.Is(err, models.ErrNoModelsSelected):
		respondError(w, http.StatusBadRequest, "Select at least one model")
	case errors.Is(err, models.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrHistoryUnavailable):
		log.Printf("[ERROR] Failed to %s: %v", action, err)
		respondError(w, http.StatusServiceUnavailable, "History is unavailable, try again later")
	default:
		log.Printf("[ERROR] Failed to %s: %v", action, err)
		respondError(w, http.StatusInternalServerError, "Failed to "+action)
	}
}

func getQueryInt(r *http.Request, key string, defaultValue int) (int, error) {
	valueStr := r.URL.Query().Get(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return value, nil
}
