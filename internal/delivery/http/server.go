package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/indicator-maps/internal/config"
	"github.com/indicator-maps/internal/delivery/http/handler"
	"github.com/indicator-maps/internal/delivery/http/middleware"
	"github.com/indicator-maps/internal/pkg/errors"
)

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	// Handlers
	healthHandler    *handler.HealthHandler
	indicatorHandler *handler.IndicatorHandler
	encodeHandler    *handler.EncodeHandler
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthHandler *handler.HealthHandler,
	indicatorHandler *handler.IndicatorHandler,
	encodeHandler *handler.EncodeHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Indicator Maps",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    16 * 1024 * 1024,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:              app,
		config:           cfg,
		logger:           logger,
		healthHandler:    healthHandler,
		indicatorHandler: indicatorHandler,
		encodeHandler:    encodeHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// App возвращает приложение Fiber (используется в тестах)
func (s *Server) App() *fiber.App {
	return s.app
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS(s.config.Server.CORSOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	api := s.app.Group("/api/v1")

	api.Get("/health", s.healthHandler.Health)

	// Indicator renders
	indicators := api.Group("/indicators/:id")
	indicators.Get("/choropleth", s.indicatorHandler.GetChoropleth)
	indicators.Get("/style.json", s.indicatorHandler.GetStyle)
	indicators.Get("/legend.html", s.indicatorHandler.GetLegend)
	indicators.Get("/chart", s.indicatorHandler.GetChart)
	indicators.Get("/trend", s.indicatorHandler.GetTrend)

	// Stateless encoding
	encode := api.Group("/encode")
	encode.Post("/choropleth", s.encodeHandler.EncodeChoropleth)
	encode.Post("/trend", s.encodeHandler.EncodeTrend)
	encode.Post("/sizes", s.encodeHandler.EncodeSizes)
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - кастомный обработчик ошибок: ответ в том же формате, что utils.SendError
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		appErr := errors.ErrInternalServer

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			appErr = errors.New(errorCode(code), e.Message, code)
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		return c.Status(code).JSON(fiber.Map{"error": appErr})
	}
}

func errorCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "REQUEST_TOO_LARGE"
	default:
		if status < fiber.StatusInternalServerError {
			return "INVALID_REQUEST"
		}
		return "INTERNAL_SERVER_ERROR"
	}
}
