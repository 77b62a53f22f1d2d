package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/snapstats/analyzer/internal/charts"
	"github.com/snapstats/analyzer/internal/loader"
	"github.com/snapstats/analyzer/internal/logic"
	"github.com/snapstats/analyzer/internal/models"
)

// Analyze handles POST /api/v1/analyze
// @Summary Analyze a match log
// @Description Accepts a match log as CSV (text/csv) or a JSON array of records and returns location, deck and card insights
// @Tags Analysis
// @Accept text/csv,json
// @Produce json
// @Param padding query string false "Padding sentinel" default(PADDING)
// @Param delimiter query string false "Field delimiter" default(,)
// @Param card_sort query string false "name or appearances"
// @Param limit_cards query int false "Maximum cards returned (0 = all)"
// @Success 200 {object} models.AnalyzeResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 413 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /analyze [post]
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	params, report, ok := h.runAnalysis(w, r)
	if !ok {
		return
	}

	h.jsonResponse(w, http.StatusOK, models.NewAnalyzeResponse(report, params.CardSort, params.LimitCards))
}

// AnalyzeChart handles POST /api/v1/analyze/chart
// @Summary Chart a match log
// @Description Same input as /analyze; returns an HTML page of charts
// @Tags Analysis
// @Accept text/csv,json
// @Produce html
// @Success 200 {string} string "HTML page"
// @Failure 422 {object} models.ErrorResponse
// @Router /analyze/chart [post]
func (h *Handler) AnalyzeChart(w http.ResponseWriter, r *http.Request) {
	params, report, ok := h.runAnalysis(w, r)
	if !ok {
		return
	}

	cfg := charts.DefaultConfig()
	if params.LimitCards > 0 {
		cfg.TopCards = params.LimitCards
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := charts.Render(w, report, cfg); err != nil {
		h.logger.Errorw("Failed to render charts", "report", report.ID, "error", err)
	}
}

// runAnalysis parses, normalizes and analyzes the request body. On failure it
// has already written the error response.
func (h *Handler) runAnalysis(w http.ResponseWriter, r *http.Request) (models.AnalyzeParams, *models.Report, bool) {
	params, err := h.parseParams(r)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return params, nil, false
	}
	if err := h.validator.Struct(params); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return params, nil, false
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	defer r.Body.Close()

	records, err := h.decodeBody(r)
	if err != nil {
		h.analysisError(w, err)
		return params, nil, false
	}

	ds, err := logic.Normalize(records, logic.NormalizeOptions{
		Padding:   params.Padding,
		Delimiter: params.Delimiter,
	})
	if err != nil {
		h.analysisError(w, err)
		return params, nil, false
	}

	report, err := h.analysis.Analyze(r.Context(), ds)
	if err != nil {
		h.analysisError(w, err)
		return params, nil, false
	}
	return params, report, true
}

func (h *Handler) parseParams(r *http.Request) (models.AnalyzeParams, error) {
	params := h.defaults
	q := r.URL.Query()

	if v := q.Get("padding"); v != "" {
		params.Padding = v
	}
	if v := q.Get("delimiter"); v != "" {
		params.Delimiter = v
	}
	if v := q.Get("card_sort"); v != "" {
		sort, err := models.ParseCardSort(v)
		if err != nil {
			return params, err
		}
		params.CardSort = sort
	}
	if v := q.Get("limit_cards"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return params, fmt.Errorf("invalid limit_cards %q", v)
		}
		params.LimitCards = n
	}
	return params, nil
}

func (h *Handler) decodeBody(r *http.Request) ([]models.RawRecord, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	// Any JSON media type: application/json, text/json, application/vnd.x+json.
	if strings.HasSuffix(mediaType, "/json") || strings.HasSuffix(mediaType, "+json") {
		return loader.ParseJSON(r.Context(), r.Body)
	}
	return loader.ParseCSV(r.Context(), r.Body)
}

func (h *Handler) analysisError(w http.ResponseWriter, err error) {
	var malformed *logic.MalformedRecordError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &malformed):
		idx := malformed.Index
		h.jsonResponse(w, http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:  malformed.Error(),
			Record: &idx,
			Field:  malformed.Field,
		})
	case errors.Is(err, logic.ErrEmptyDataset):
		h.errorResponse(w, http.StatusUnprocessableEntity, "Match log has no records")
	case errors.As(err, &tooLarge):
		h.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		h.errorResponse(w, http.StatusServiceUnavailable, "Analysis timed out")
	default:
		h.logger.Errorw("Analysis failed", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}
