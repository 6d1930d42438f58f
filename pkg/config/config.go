package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Engine   EngineConfig
	Breaks   BreaksConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// EngineConfig tunes the timetable generator and conflict detector.
type EngineConfig struct {
	PlaceholderRoom  string
	TargetDays       int
	CacheEnabled     bool
	ConflictCacheTTL time.Duration
}

// BreakWindow is one configurable break period.
type BreakWindow struct {
	Start string
	End   string
	Label string
}

// BreaksConfig holds the default break windows applied to every class grid.
type BreaksConfig struct {
	Morning   BreakWindow
	Lunch     BreakWindow
	Afternoon BreakWindow
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Engine = EngineConfig{
		PlaceholderRoom:  v.GetString("ENGINE_PLACEHOLDER_ROOM"),
		TargetDays:       v.GetInt("ENGINE_TARGET_DAYS"),
		CacheEnabled:     v.GetBool("ENGINE_CONFLICT_CACHE"),
		ConflictCacheTTL: parseDuration(v.GetString("ENGINE_CONFLICT_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Breaks = BreaksConfig{
		Morning: BreakWindow{
			Start: v.GetString("BREAK_MORNING_START"),
			End:   v.GetString("BREAK_MORNING_END"),
			Label: v.GetString("BREAK_MORNING_LABEL"),
		},
		Lunch: BreakWindow{
			Start: v.GetString("BREAK_LUNCH_START"),
			End:   v.GetString("BREAK_LUNCH_END"),
			Label: v.GetString("BREAK_LUNCH_LABEL"),
		},
		Afternoon: BreakWindow{
			Start: v.GetString("BREAK_AFTERNOON_START"),
			End:   v.GetString("BREAK_AFTERNOON_END"),
			Label: v.GetString("BREAK_AFTERNOON_LABEL"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENGINE_PLACEHOLDER_ROOM", "À définir")
	v.SetDefault("ENGINE_TARGET_DAYS", 2)
	v.SetDefault("ENGINE_CONFLICT_CACHE", false)
	v.SetDefault("ENGINE_CONFLICT_CACHE_TTL", "5m")

	v.SetDefault("BREAK_MORNING_START", "10:00")
	v.SetDefault("BREAK_MORNING_END", "10:15")
	v.SetDefault("BREAK_MORNING_LABEL", "Récréation")
	v.SetDefault("BREAK_LUNCH_START", "12:15")
	v.SetDefault("BREAK_LUNCH_END", "13:45")
	v.SetDefault("BREAK_LUNCH_LABEL", "Pause déjeuner")
	v.SetDefault("BREAK_AFTERNOON_START", "15:45")
	v.SetDefault("BREAK_AFTERNOON_END", "16:00")
	v.SetDefault("BREAK_AFTERNOON_LABEL", "Pause")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
