package utils

import (
	"github.com/gofiber/fiber/v2"

	"github.com/indicator-maps/internal/pkg/errors"
)

// SuccessResponse - конверт успешного JSON-ответа
type SuccessResponse struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta,omitempty"`
}

// ErrorResponse - конверт ответа с ошибкой
type ErrorResponse struct {
	Error *errors.AppError `json:"error"`
}

type Meta struct {
	Total    int     `json:"total,omitempty"`
	Matched  int     `json:"matched,omitempty"`
	Cached   bool    `json:"cached,omitempty"`
	Locale   string  `json:"locale,omitempty"`
	TimeMSec float64 `json:"time_ms,omitempty"`
}

func SendSuccess(c *fiber.Ctx, data interface{}, meta *Meta) error {
	return c.JSON(SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

// SendDocument отдает документ без конверта (стиль MapLibre читается клиентом напрямую)
func SendDocument(c *fiber.Ctx, doc interface{}) error {
	return c.JSON(doc)
}

// SendHTML отдает HTML-фрагмент
func SendHTML(c *fiber.Ctx, html []byte) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(html)
}

func SendError(c *fiber.Ctx, err error) error {
	if appErr, ok := errors.As(err); ok {
		status := appErr.StatusCode
		if status == 0 {
			status = fiber.StatusInternalServerError
		}
		return c.Status(status).JSON(ErrorResponse{
			Error: appErr,
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: errors.ErrInternalServer,
	})
}
