package api

import (
	"math"
	"net/http"
	"time"

	models "StockHark/internal/domain/models"
	"StockHark/internal/usecase"
	xhttp "StockHark/pkg/http"
	xlogger "StockHark/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SentimentEchoHandler implements Echo-based HTTP handlers for the
// aggregated-sentiment API.
type SentimentEchoHandler struct {
	logger    *xlogger.Logger
	query     *usecase.SentimentQuery
	collector *usecase.PostCollector
}

func NewSentimentEchoHandler(logger *xlogger.Logger, query *usecase.SentimentQuery, collector *usecase.PostCollector) *SentimentEchoHandler {
	return &SentimentEchoHandler{logger: logger, query: query, collector: collector}
}

func (h *SentimentEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/stocks", h.TopStocks)
	g.GET("/stocks/:symbol", h.StockSentiment)
	g.GET("/status", h.Status)
	g.POST("/collect", h.Collect)
	e.GET("/healthz", h.Health)
}

func (h *SentimentEchoHandler) TopStocks(c echo.Context) error {
	req := &models.TopStocksRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	results, err := h.query.TopStocks(c.Request().Context(), req.Limit, req.Hours)
	if err != nil {
		h.logger.Error("top stocks usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	out := make([]models.StockSentimentResponse, len(results))
	for i, res := range results {
		out[i] = toResponse(res)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=30")
	return xhttp.SuccessResponse(c, out)
}

func (h *SentimentEchoHandler) StockSentiment(c echo.Context) error {
	req := &models.StockSentimentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	at := xhttp.ParseTimeDefault(req.At, time.Time{})
	if req.At != "" && at.IsZero() {
		return xhttp.BadRequestResponse(c, xhttp.NewAppError("ERR_BAD_TIME", "at", "invalid reference time", http.StatusBadRequest))
	}

	res, err := h.query.SymbolSentiment(c.Request().Context(), req.Symbol, req.Hours, req.Debug, at)
	if err != nil {
		h.logger.Error("symbol sentiment usecase error",
			xlogger.String("symbol", req.Symbol),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, toResponse(res))
}

func (h *SentimentEchoHandler) Status(c echo.Context) error {
	ctx := c.Request().Context()
	status := h.collector.Status()
	storage := "ok"
	if err := h.query.StorageHealth(ctx); err != nil {
		storage = err.Error()
	}
	mentions, err := h.query.MentionCounts(ctx, 24)
	if err != nil {
		h.logger.Warn("mention counts unavailable", xlogger.Error(err))
		mentions = map[string]int{}
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"collector":    status,
		"storage":      storage,
		"mentions_24h": mentions,
	})
}

func (h *SentimentEchoHandler) Health(c echo.Context) error {
	if err := h.query.StorageHealth(c.Request().Context()); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_STORAGE", "", "storage unavailable", http.StatusServiceUnavailable).WithError(err))
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *SentimentEchoHandler) Collect(c echo.Context) error {
	n := h.collector.ForceCollect(c.Request().Context())
	return xhttp.SuccessResponse(c, map[string]int{"observations_collected": n})
}

// toResponse projects a result for display with 3-decimal rounding.
func toResponse(res models.AggregationResult) models.StockSentimentResponse {
	return models.StockSentimentResponse{
		Symbol:            res.Symbol,
		FinalSentiment:    round3(res.FinalSentiment),
		Label:             res.Label,
		Confidence:        round3(res.Confidence),
		TotalObservations: res.TotalObservations,
		Diagnostics:       res.Diagnostics,
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
