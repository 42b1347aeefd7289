package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Log      LogConfig
	Worker   WorkerConfig
	Encoding EncodingConfig
	Map      MapConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	Env         string
	CORSOrigins string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	ChoroplethTTL time.Duration
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	StreamReadTimeout time.Duration
	MaxRetries        int
	Levels            []string
	Locales           []string
}

// EncodingConfig - параметры кодирования данных в цвет и размер
type EncodingConfig struct {
	NoiseRatio        float64
	OutlierMultiplier float64
	MaxOutlierPct     float64
	MinOutlierCount   int
	SizeBins          int
	RadiusMin         float64
	RadiusMax         float64
	Palette           []string
	NoDataColor       string
	DefaultFill       string
	LabelMinZoom      float64
	Locale            string
}

// MapConfig - параметры базового стиля карты
type MapConfig struct {
	StyleName    string
	Glyphs       string
	CenterLon    float64
	CenterLat    float64
	Zoom         float64
	FitPadding   float64
	DefaultLevel string
}

// Load читает .env (если он есть) и переменные окружения
func Load() (*Config, error) {
	return LoadFile(".env")
}

// zeroValidDefaults - значения по умолчанию для ключей, где явный ноль допустим
var zeroValidDefaults = map[string]any{
	"TREND_NOISE_RATIO":  0.02,
	"MAP_LABEL_MIN_ZOOM": 6.0,
	"MAP_CENTER_LON":     2.4,
	"MAP_CENTER_LAT":     46.6,
	"MAP_ZOOM":           5.0,
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range zeroValidDefaults {
		v.SetDefault(key, value)
	}
	return v
}

// LoadFile читает конфигурацию из указанного файла и окружения. Отсутствие файла не ошибка.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:        v.GetString("API_HOST"),
			Port:        v.GetInt("API_PORT"),
			Env:         v.GetString("API_ENV"),
			CORSOrigins: v.GetString("API_CORS_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			ChoroplethTTL: time.Duration(v.GetInt("CHOROPLETH_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:           v.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     v.GetString("WORKER_CONSUMER_GROUP"),
			StreamReadTimeout: time.Duration(v.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			MaxRetries:        v.GetInt("WORKER_MAX_RETRIES"),
			Levels:            parseList(v.GetString("WORKER_LEVELS")),
			Locales:           parseList(v.GetString("WORKER_LOCALES")),
		},
		Encoding: EncodingConfig{
			NoiseRatio:        v.GetFloat64("TREND_NOISE_RATIO"),
			OutlierMultiplier: v.GetFloat64("SIZE_OUTLIER_MULTIPLIER"),
			MaxOutlierPct:     v.GetFloat64("SIZE_MAX_OUTLIER_PCT"),
			MinOutlierCount:   v.GetInt("SIZE_MIN_OUTLIER_COUNT"),
			SizeBins:          v.GetInt("SIZE_BINS"),
			RadiusMin:         v.GetFloat64("SIZE_RADIUS_MIN"),
			RadiusMax:         v.GetFloat64("SIZE_RADIUS_MAX"),
			Palette:           parseList(v.GetString("COLOR_PALETTE")),
			NoDataColor:       v.GetString("COLOR_NO_DATA"),
			DefaultFill:       v.GetString("MAP_DEFAULT_FILL"),
			LabelMinZoom:      v.GetFloat64("MAP_LABEL_MIN_ZOOM"),
			Locale:            v.GetString("DEFAULT_LOCALE"),
		},
		Map: MapConfig{
			StyleName:    v.GetString("MAP_STYLE_NAME"),
			Glyphs:       v.GetString("MAP_GLYPHS_URL"),
			CenterLon:    v.GetFloat64("MAP_CENTER_LON"),
			CenterLat:    v.GetFloat64("MAP_CENTER_LAT"),
			Zoom:         v.GetFloat64("MAP_ZOOM"),
			FitPadding:   v.GetFloat64("MAP_FIT_PADDING"),
			DefaultLevel: v.GetString("MAP_DEFAULT_LEVEL"),
		},
	}

	cfg.applyDefaults()
	return cfg
}

// applyDefaults подставляет значения по умолчанию вместо незаданных.
// Ключи из zeroValidDefaults здесь не трогаются.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Env == "" {
		c.Server.Env = "development"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	d := &c.Database
	if d.Host == "" {
		d.Host = "localhost"
	}
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.MaxConns == 0 {
		d.MaxConns = 20
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = 5
	}
	if d.ConnMaxLifetime == 0 {
		d.ConnMaxLifetime = 30 * time.Minute
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Cache.ChoroplethTTL == 0 {
		c.Cache.ChoroplethTTL = 6 * time.Hour
	}

	if c.Worker.ConsumerGroup == "" {
		c.Worker.ConsumerGroup = "indicator-encoding-workers"
	}
	if c.Worker.StreamReadTimeout == 0 {
		c.Worker.StreamReadTimeout = 5000 * time.Millisecond
	}
	if c.Worker.MaxRetries == 0 {
		c.Worker.MaxRetries = 3
	}
	if len(c.Worker.Levels) == 0 {
		c.Worker.Levels = []string{"region", "department"}
	}
	if len(c.Worker.Locales) == 0 {
		c.Worker.Locales = []string{"en"}
	}

	e := &c.Encoding
	if e.OutlierMultiplier == 0 {
		e.OutlierMultiplier = 1.5
	}
	if e.MaxOutlierPct == 0 {
		e.MaxOutlierPct = 0.05
	}
	if e.MinOutlierCount == 0 {
		e.MinOutlierCount = 3
	}
	if e.SizeBins == 0 {
		e.SizeBins = 5
	}
	if e.RadiusMin == 0 {
		e.RadiusMin = 4
	}
	if e.RadiusMax == 0 {
		e.RadiusMax = 24
	}
	if e.NoDataColor == "" {
		e.NoDataColor = "#d9d9d9"
	}
	if e.DefaultFill == "" {
		e.DefaultFill = "#d9d9d9"
	}
	if e.Locale == "" {
		e.Locale = "en"
	}

	m := &c.Map
	if m.StyleName == "" {
		m.StyleName = "indicator-map"
	}
	if m.FitPadding == 0 {
		m.FitPadding = 24
	}
	if m.DefaultLevel == "" {
		m.DefaultLevel = "region"
	}
}

// Default возвращает конфигурацию только со значениями по умолчанию
func Default() *Config {
	return fromViper(newViper())
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return c.Database.DSN()
}

// DSN возвращает строку подключения в формате key=value
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.DBName,
		d.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return c.Redis.Addr()
}

// Addr возвращает адрес Redis в формате host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
