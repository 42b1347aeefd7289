package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/indicator-maps/internal/pkg/errors"
	"github.com/indicator-maps/internal/pkg/utils"
	"github.com/indicator-maps/internal/pkg/validator"
	"github.com/indicator-maps/internal/usecase"
	"github.com/indicator-maps/internal/usecase/dto"
)

// IndicatorHandler - обработчик отрисовок сохраненных индикаторов
type IndicatorHandler struct {
	choroplethUC *usecase.ChoroplethUseCase
	chartUC      *usecase.ChartUseCase
	trendUC      *usecase.TrendUseCase
	logger       *zap.Logger
}

// NewIndicatorHandler - создание нового IndicatorHandler
func NewIndicatorHandler(
	choroplethUC *usecase.ChoroplethUseCase,
	chartUC *usecase.ChartUseCase,
	trendUC *usecase.TrendUseCase,
	logger *zap.Logger,
) *IndicatorHandler {
	return &IndicatorHandler{
		choroplethUC: choroplethUC,
		chartUC:      chartUC,
		trendUC:      trendUC,
		logger:       logger,
	}
}

// GetChoropleth godoc
// @Summary Encode indicator as choropleth
// @Description Возвращает обогащенный GeoJSON, стек слоев, охват и легенды цвета и размера
// @Tags Indicators
// @Produce json
// @Param id path string true "Indicator ID"
// @Param period query string true "Period"
// @Param level query string false "Territorial level"
// @Param locale query string false "BCP 47 locale for value labels"
// @Param selected query string false "Selected territory code"
// @Param symbols query bool false "Add proportional symbol layer"
// @Success 200 {object} utils.SuccessResponse{data=dto.ChoroplethResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/indicators/{id}/choropleth [get]
func (h *IndicatorHandler) GetChoropleth(c *fiber.Ctx) error {
	req, err := parseChoroplethRequest(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	start := time.Now()
	resp, err := h.choroplethUC.Render(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, resp, &utils.Meta{
		Total:    len(resp.Source.Features),
		Matched:  resp.Matched,
		Cached:   resp.Cached,
		Locale:   resp.Locale,
		TimeMSec: float64(time.Since(start).Microseconds()) / 1000,
	})
}

// GetStyle godoc
// @Summary MapLibre style for indicator
// @Description Возвращает документ стиля MapLibre со встроенным источником и слоями хороплета
// @Tags Indicators
// @Produce json
// @Param id path string true "Indicator ID"
// @Param period query string true "Period"
// @Param level query string false "Territorial level"
// @Param locale query string false "BCP 47 locale for value labels"
// @Param selected query string false "Selected territory code"
// @Param symbols query bool false "Add proportional symbol layer"
// @Success 200 {object} map[string]interface{} "MapLibre style document"
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/indicators/{id}/style.json [get]
func (h *IndicatorHandler) GetStyle(c *fiber.Ctx) error {
	req, err := parseChoroplethRequest(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	style, err := h.choroplethUC.Style(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendDocument(c, style)
}

// GetLegend godoc
// @Summary HTML legend for indicator
// @Description Возвращает HTML-фрагмент легенды; пустые интервалы не выводятся
// @Tags Indicators
// @Produce html
// @Param id path string true "Indicator ID"
// @Param period query string true "Period"
// @Param level query string false "Territorial level"
// @Param locale query string false "BCP 47 locale for value labels"
// @Success 200 {string} string "HTML fragment"
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/indicators/{id}/legend.html [get]
func (h *IndicatorHandler) GetLegend(c *fiber.Ctx) error {
	req, err := parseChoroplethRequest(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	html, err := h.choroplethUC.LegendHTML(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendHTML(c, html)
}

// GetChart godoc
// @Summary Chart marks for indicator
// @Description Возвращает для каждой территории цвет отклонения от эталона, радиус и обводку
// @Tags Indicators
// @Produce json
// @Param id path string true "Indicator ID"
// @Param period query string true "Period"
// @Param level query string false "Territorial level"
// @Param locale query string false "BCP 47 locale for value labels"
// @Param codes query []string false "Territory codes to keep" collectionFormat(multi)
// @Success 200 {object} utils.SuccessResponse{data=dto.ChartResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/indicators/{id}/chart [get]
func (h *IndicatorHandler) GetChart(c *fiber.Ctx) error {
	var req dto.ChartRequest
	if err := parseParams(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.chartUC.GetChart(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, resp, &utils.Meta{Total: len(resp.Marks)})
}

// GetTrend godoc
// @Summary Trend categories for indicator
// @Description Классифицирует динамику индикатора между двумя периодами для каждой территории
// @Tags Indicators
// @Produce json
// @Param id path string true "Indicator ID"
// @Param from query string true "First period"
// @Param to query string true "Second period"
// @Param level query string false "Territorial level"
// @Success 200 {object} utils.SuccessResponse{data=dto.TrendResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/indicators/{id}/trend [get]
func (h *IndicatorHandler) GetTrend(c *fiber.Ctx) error {
	var req dto.TrendRequest
	if err := parseParams(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.trendUC.GetTrend(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, resp, &utils.Meta{Total: len(resp.Items)})
}

func parseChoroplethRequest(c *fiber.Ctx) (dto.ChoroplethRequest, error) {
	var req dto.ChoroplethRequest
	err := parseParams(c, &req)
	return req, err
}

// parseParams заполняет запрос из пути и query-параметров и валидирует его
func parseParams(c *fiber.Ctx, req interface{}) error {
	if err := c.ParamsParser(req); err != nil {
		return errors.ErrInvalidRequest.WithDetails(map[string]interface{}{"error": err.Error()})
	}
	if err := c.QueryParser(req); err != nil {
		return errors.ErrInvalidRequest.WithDetails(map[string]interface{}{"error": err.Error()})
	}
	if err := validator.Validate(req); err != nil {
		return errors.ErrInvalidRequest.WithDetails(validator.Details(err))
	}
	return nil
}
