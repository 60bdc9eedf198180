package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"TrendRadar/internal/glossary"
	"TrendRadar/internal/model"
	"TrendRadar/internal/recorder"
)

// Diagnoser classifies one instrument.
type Diagnoser interface {
	Diagnose(ctx context.Context, symbol string) (*model.Diagnosis, error)
}

// SeriesSource produces indicator series.
type SeriesSource interface {
	Collect(ctx context.Context, symbol string) (*model.IndicatorSeries, error)
}

// ReportSource exposes the last scheduled scan.
type ReportSource interface {
	LatestReport() (*model.ScanReport, bool)
}

// Handler serves the JSON API.
type Handler struct {
	Diagnoser Diagnoser
	Series    SeriesSource
	Reports   ReportSource
	History   recorder.Recorder
	Glossary  *glossary.Glossary
}

type symbolRequest struct {
	Symbol string `param:"symbol" validate:"required,max=32"`
}

type seriesRequest struct {
	Symbol string `param:"symbol" validate:"required,max=32"`
	Tail   int    `query:"tail" default:"60" validate:"min=1,max=500"`
}

type historyRequest struct {
	Symbol string `param:"symbol" validate:"required,max=32"`
	Limit  int    `query:"limit" default:"20" validate:"min=1,max=200"`
}

type glossaryRequest struct {
	Query string `query:"q" validate:"max=64"`
}

// RegisterRoutes mounts the API under /api/v1.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.health)

	g := e.Group("/api/v1")
	g.GET("/regime/:symbol", h.regime)
	g.GET("/series/:symbol", h.series)
	g.GET("/scan/latest", h.latestScan)
	g.GET("/history/:symbol", h.history)
	g.GET("/glossary", h.glossary)
}

func (h *Handler) health(c echo.Context) error {
	return successResponse(c, map[string]string{"status": "ok"})
}

func (h *Handler) regime(c echo.Context) error {
	var req symbolRequest
	if verrs := bindRequest(c, &req); verrs != nil {
		return dataResponse(c, http.StatusBadRequest, verrs)
	}
	d, err := h.Diagnoser.Diagnose(c.Request().Context(), normalize(req.Symbol))
	if err != nil {
		return classificationError(c, err)
	}
	return successResponse(c, d)
}

func (h *Handler) series(c echo.Context) error {
	var req seriesRequest
	if verrs := bindRequest(c, &req); verrs != nil {
		return dataResponse(c, http.StatusBadRequest, verrs)
	}
	s, err := h.Series.Collect(c.Request().Context(), normalize(req.Symbol))
	if err != nil {
		return classificationError(c, err)
	}
	return successResponse(c, newSeriesDTO(s.Tail(req.Tail)))
}

func (h *Handler) latestScan(c echo.Context) error {
	report, ok := h.Reports.LatestReport()
	if !ok {
		return errorResponse(c, http.StatusNotFound, "no_scan", "no scan has completed yet")
	}
	return successResponse(c, report)
}

func (h *Handler) history(c echo.Context) error {
	var req historyRequest
	if verrs := bindRequest(c, &req); verrs != nil {
		return dataResponse(c, http.StatusBadRequest, verrs)
	}
	verdicts, err := h.History.RecentVerdicts(normalize(req.Symbol), req.Limit)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "storage", err.Error())
	}
	if verdicts == nil {
		verdicts = []recorder.Verdict{}
	}
	return successResponse(c, verdicts)
}

func (h *Handler) glossary(c echo.Context) error {
	var req glossaryRequest
	if verrs := bindRequest(c, &req); verrs != nil {
		return dataResponse(c, http.StatusBadRequest, verrs)
	}
	return successResponse(c, h.Glossary.Search(req.Query))
}

// classificationError maps data-quality errors to 422 and retrieval errors to 502.
func classificationError(c echo.Context, err error) error {
	reason := model.FailureReason(err)
	switch {
	case model.IsDataQuality(err):
		return errorResponse(c, http.StatusUnprocessableEntity, reason, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errorResponse(c, http.StatusServiceUnavailable, reason, err.Error())
	default:
		return errorResponse(c, http.StatusBadGateway, reason, err.Error())
	}
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
