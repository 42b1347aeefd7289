package encoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/indicator-maps/internal/domain"
	"github.com/indicator-maps/internal/domain/repository"
	apperrors "github.com/indicator-maps/internal/pkg/errors"
	"github.com/indicator-maps/internal/worker"
)

const retryPause = 500 * time.Millisecond

// RenderWarmer кодирует карту заново и кладет ее в кеш
type RenderWarmer interface {
	Warm(ctx context.Context, key domain.RenderKey) (int, error)
}

// CacheInvalidator удаляет устаревшие отрисовки индикатора
type CacheInvalidator interface {
	InvalidateIndicator(ctx context.Context, indicatorID string) (int, error)
}

// CacheWarmerWorker слушает stream:indicator:updated, сбрасывает кеш индикатора,
// перекодирует каждый уровень и публикует результат в stream:indicator:encoded
type CacheWarmerWorker struct {
	*worker.BaseWorker
	streamRepo repository.StreamRepository
	cache      CacheInvalidator
	warmer     RenderWarmer
	levels     []string
	locales    []string
	maxRetries int
}

// NewCacheWarmerWorker создает новый CacheWarmerWorker
func NewCacheWarmerWorker(
	streamRepo repository.StreamRepository,
	cache CacheInvalidator,
	warmer RenderWarmer,
	consumerGroup string,
	levels, locales []string,
	maxRetries int,
	logger *zap.Logger,
) *CacheWarmerWorker {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &CacheWarmerWorker{
		BaseWorker: worker.NewBaseWorker("cache-warmer", consumerGroup, logger),
		streamRepo: streamRepo,
		cache:      cache,
		warmer:     warmer,
		levels:     levels,
		locales:    locales,
		maxRetries: maxRetries,
	}
}

// Start читает события до остановки воркера или отмены контекста
func (w *CacheWarmerWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting cache warmer",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.ConsumerName()),
		zap.Strings("levels", w.levels),
		zap.Strings("locales", w.locales))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamIndicatorUpdated, w.ConsumerGroup()); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := w.streamRepo.ConsumeStream(consumeCtx, domain.StreamIndicatorUpdated, w.ConsumerGroup(), w.ConsumerName())
	if err != nil {
		return fmt.Errorf("failed to consume stream: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		case msg, ok := <-messages:
			if !ok {
				logger.Info("Stream closed")
				return nil
			}
			w.HandleMessage(consumeCtx, msg)
		}
	}
}

// HandleMessage обрабатывает одно сообщение и подтверждает его.
// Битые сообщения подтверждаются без обработки, чтобы не застревать в PEL.
func (w *CacheWarmerWorker) HandleMessage(ctx context.Context, msg domain.StreamMessage) {
	logger := w.Logger().With(zap.String("message_id", msg.ID))

	var event domain.IndicatorUpdatedEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil || !event.Valid() {
		logger.Warn("Invalid indicator event, skipping", zap.Error(err))
		w.ack(ctx, msg.ID)
		return
	}

	logger = logger.With(
		zap.String("indicator_id", event.IndicatorID),
		zap.String("period", event.Period))

	removed, err := w.cache.InvalidateIndicator(ctx, event.IndicatorID)
	if err != nil {
		logger.Warn("Failed to invalidate cache", zap.Error(err))
	} else {
		logger.Debug("Cache invalidated", zap.Int("removed", removed))
	}

	for _, level := range event.LevelsOr(w.levels) {
		done := domain.EncodingDoneEvent{
			EventID:     uuid.New(),
			IndicatorID: event.IndicatorID,
			Period:      event.Period,
			Level:       level,
		}

		for _, locale := range event.LocalesOr(w.locales) {
			key := domain.RenderKey{
				IndicatorID: event.IndicatorID,
				Period:      event.Period,
				Level:       level,
				Locale:      locale,
			}
			features, err := w.warm(ctx, key)
			if err != nil {
				logger.Error("Failed to warm render",
					zap.String("level", level),
					zap.String("locale", locale),
					zap.Error(err))
				done.Error = err.Error()
				break
			}
			done.Features = features
		}

		if err := w.streamRepo.PublishToStream(ctx, domain.StreamIndicatorEncoded, done); err != nil {
			logger.Error("Failed to publish encoding result",
				zap.String("level", level),
				zap.Error(err))
		}
	}

	w.ack(ctx, msg.ID)
	logger.Info("Indicator re-encoded")
}

// warm повторяет перекодирование только при ошибках базы данных
func (w *CacheWarmerWorker) warm(ctx context.Context, key domain.RenderKey) (int, error) {
	var lastErr error
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		features, err := w.warmer.Warm(ctx, key)
		if err == nil {
			return features, nil
		}
		lastErr = err
		if !errors.Is(err, apperrors.ErrDatabaseError) || attempt == w.maxRetries {
			break
		}

		w.Logger().Warn("Retrying render",
			zap.String("key", key.String()),
			zap.Int("attempt", attempt),
			zap.Error(err))
		select {
		case <-time.After(retryPause * time.Duration(attempt)):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return 0, lastErr
}

func (w *CacheWarmerWorker) ack(ctx context.Context, messageID string) {
	if err := w.streamRepo.AckMessage(ctx, domain.StreamIndicatorUpdated, w.ConsumerGroup(), messageID); err != nil {
		w.Logger().Error("Failed to ack message",
			zap.String("message_id", messageID),
			zap.Error(err))
	}
}
