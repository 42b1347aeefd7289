package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/indicator-maps/internal/pkg/errors"
	"github.com/indicator-maps/internal/pkg/utils"
	"github.com/indicator-maps/internal/pkg/validator"
	"github.com/indicator-maps/internal/usecase"
	"github.com/indicator-maps/internal/usecase/dto"
)

// EncodeHandler - обработчик кодирования переданных данных без обращения к хранилищам
type EncodeHandler struct {
	encodeUC *usecase.EncodeUseCase
	logger   *zap.Logger
}

// NewEncodeHandler - создание нового EncodeHandler
func NewEncodeHandler(encodeUC *usecase.EncodeUseCase, logger *zap.Logger) *EncodeHandler {
	return &EncodeHandler{
		encodeUC: encodeUC,
		logger:   logger,
	}
}

// EncodeChoropleth godoc
// @Summary Encode posted features as choropleth
// @Description Соединяет переданные GeoJSON-объекты со строками индикатора и возвращает обогащенный источник, слои и легенды
// @Tags Encode
// @Accept json
// @Produce json
// @Param request body dto.EncodeChoroplethRequest true "Features and rows"
// @Success 200 {object} utils.SuccessResponse{data=dto.ChoroplethResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/encode/choropleth [post]
func (h *EncodeHandler) EncodeChoropleth(c *fiber.Ctx) error {
	var req dto.EncodeChoroplethRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	resp, _, err := h.encodeUC.EncodeChoropleth(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, resp, &utils.Meta{
		Total:   len(resp.Source.Features),
		Matched: resp.Matched,
		Locale:  resp.Locale,
	})
}

// EncodeTrend godoc
// @Summary Classify posted value pairs
// @Description Классифицирует динамику для переданных пар значений с учетом полярности
// @Tags Encode
// @Accept json
// @Produce json
// @Param request body dto.EncodeTrendRequest true "Value pairs"
// @Success 200 {object} utils.SuccessResponse{data=dto.TrendResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/encode/trend [post]
func (h *EncodeHandler) EncodeTrend(c *fiber.Ctx) error {
	var req dto.EncodeTrendRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.encodeUC.EncodeTrend(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, resp, &utils.Meta{Total: len(resp.Items)})
}

// EncodeSizes godoc
// @Summary Build size scale for posted values
// @Description Строит адаптивную шкалу радиусов с отдельным интервалом выбросов
// @Tags Encode
// @Accept json
// @Produce json
// @Param request body dto.EncodeSizesRequest true "Values"
// @Success 200 {object} utils.SuccessResponse{data=dto.SizesResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/encode/sizes [post]
func (h *EncodeHandler) EncodeSizes(c *fiber.Ctx) error {
	var req dto.EncodeSizesRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.encodeUC.EncodeSizes(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, resp, &utils.Meta{Total: resp.Scale.Total})
}

func parseBody(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return errors.ErrInvalidRequest.WithDetails(map[string]interface{}{"body": "invalid JSON"})
	}
	if err := validator.Validate(req); err != nil {
		return errors.ErrInvalidRequest.WithDetails(validator.Details(err))
	}
	return nil
}
