//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	updatedStream = "stream:indicator:updated"
	encodedStream = "stream:indicator:encoded"
)

type IndicatorUpdatedEvent struct {
	EventID     uuid.UUID `json:"event_id"`
	IndicatorID string    `json:"indicator_id"`
	Period      string    `json:"period"`
	Levels      []string  `json:"levels,omitempty"`
	Locales     []string  `json:"locales,omitempty"`
}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	indicator := flag.String("indicator", "unemployment", "Indicator id")
	period := flag.String("period", "2023", "Period")
	levels := flag.String("levels", "", "Comma separated levels, worker defaults when empty")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	event := IndicatorUpdatedEvent{
		EventID:     uuid.New(),
		IndicatorID: *indicator,
		Period:      *period,
	}
	if *levels != "" {
		event.Levels = strings.Split(*levels, ",")
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	// Запоминаем конец выходного стрима, чтобы читать только новые результаты
	lastID := "$"
	if msgs, err := client.XRevRangeN(ctx, encodedStream, "+", "-", 1).Result(); err == nil && len(msgs) > 0 {
		lastID = msgs[0].ID
	}

	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: updatedStream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Event published\n")
	fmt.Printf("   Stream: %s\n", updatedStream)
	fmt.Printf("   Message ID: %s\n", result)
	fmt.Printf("   Indicator: %s, period %s\n", event.IndicatorID, event.Period)

	fmt.Printf("\nWaiting for results in %s...\n", encodedStream)

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		results, err := client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{encodedStream, lastID},
			Count:   10,
			Block:   time.Second,
		}).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				log.Printf("Read failed: %v", err)
			}
			continue
		}

		for _, stream := range results {
			for _, msg := range stream.Messages {
				lastID = msg.ID
				dataStr, ok := msg.Values["data"].(string)
				if !ok {
					continue
				}

				var done map[string]interface{}
				if err := json.Unmarshal([]byte(dataStr), &done); err != nil {
					continue
				}
				if done["indicator_id"] != event.IndicatorID || done["period"] != event.Period {
					continue
				}

				pretty, _ := json.MarshalIndent(done, "", "  ")
				fmt.Printf("%s\n", pretty)
			}
		}
	}
}
