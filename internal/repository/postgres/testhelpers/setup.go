package testhelpers

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/indicator-maps/internal/config"
)

const connectAttempts = 3

// dataTables - таблицы с тестовыми данными в порядке очистки
var dataTables = []string{
	"indicator_values",
	"indicator_references",
	"indicators",
	"territories",
}

// TestDB represents a test database connection
type TestDB struct {
	DB     *sqlx.DB
	Logger *zap.Logger
}

// testConfig reads TEST_DB_* variables
func testConfig() config.DatabaseConfig {
	port, err := strconv.Atoi(getEnv("TEST_DB_PORT", "5433"))
	if err != nil {
		port = 5433
	}
	return config.DatabaseConfig{
		Host:     getEnv("TEST_DB_HOST", "localhost"),
		Port:     port,
		User:     getEnv("TEST_DB_USER", "postgres"),
		Password: getEnv("TEST_DB_PASSWORD", "postgres"),
		DBName:   getEnv("TEST_DB_NAME", "indicators_test"),
		SSLMode:  getEnv("TEST_DB_SSLMODE", "disable"),
	}
}

// SetupTestDB connects to the PostGIS test database or skips the test
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	cfg := testConfig()

	var (
		db  *sqlx.DB
		err error
	)
	delay := 500 * time.Millisecond
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		db, err = sqlx.Connect("postgres", cfg.DSN())
		if err == nil {
			break
		}
		if attempt < connectAttempts {
			t.Logf("Database not ready (attempt %d/%d), waiting %v...", attempt, connectAttempts, delay)
			time.Sleep(delay)
			delay *= 2
		}
	}
	if err != nil {
		t.Skipf("Test database not available at %s:%d: %v", cfg.Host, cfg.Port, err)
	}

	var version string
	if err := db.Get(&version, "SELECT PostGIS_Version()"); err != nil {
		_ = db.Close()
		t.Skipf("PostGIS not available: %v", err)
	}
	t.Logf("PostGIS version: %s", version)

	logger := zap.NewNop()
	if testing.Verbose() {
		if dev, err := zap.NewDevelopment(); err == nil {
			logger = dev
		}
	}

	return &TestDB{
		DB:     db,
		Logger: logger,
	}
}

// Close closes the database connection
func (tdb *TestDB) Close() {
	if tdb.DB != nil {
		_ = tdb.DB.Close()
	}
}

// Cleanup truncates the data tables; missing tables are skipped
func (tdb *TestDB) Cleanup(ctx context.Context) error {
	for _, table := range dataTables {
		var exists bool
		if err := tdb.DB.GetContext(ctx, &exists, "SELECT to_regclass($1::text) IS NOT NULL", table); err != nil {
			return fmt.Errorf("check table %s: %w", table, err)
		}
		if !exists {
			continue
		}
		if _, err := tdb.DB.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
