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

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Rewards       RewardsConfig
	Leaderboard   LeaderboardConfig
	Uploads       UploadsConfig
	Notifications NotificationsConfig
	Community     CommunityConfig
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

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RewardsConfig defines the ecoPoints granted per activity kind and the
// sizing of the background award queue.
type RewardsConfig struct {
	Material      int
	Quiz          int
	Assignment    int
	GameDefault   int
	GameMax       int
	WorkerCount   int
	WorkerRetries int
}

// LeaderboardConfig tunes leaderboard exposure and caching.
type LeaderboardConfig struct {
	MaxLimit int
	CacheTTL time.Duration
}

// UploadsConfig controls blob storage for course materials and teacher resumes.
type UploadsConfig struct {
	StorageDir       string
	SignedURLSecret  string
	SignedURLTTL     time.Duration
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// NotificationsConfig names the realtime fan-out channel.
type NotificationsConfig struct {
	Channel string
}

// CommunityConfig seeds the single community chat created at bootstrap.
type CommunityConfig struct {
	Name        string
	Description string
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

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 7*24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("JWT_REFRESH_EXPIRATION"), 30*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Rewards = RewardsConfig{
		Material:      v.GetInt("REWARD_MATERIAL_POINTS"),
		Quiz:          v.GetInt("REWARD_QUIZ_POINTS"),
		Assignment:    v.GetInt("REWARD_ASSIGNMENT_POINTS"),
		GameDefault:   v.GetInt("REWARD_GAME_DEFAULT_POINTS"),
		GameMax:       v.GetInt("REWARD_GAME_MAX_POINTS"),
		WorkerCount:   v.GetInt("REWARD_WORKER_COUNT"),
		WorkerRetries: v.GetInt("REWARD_WORKER_RETRIES"),
	}

	cfg.Leaderboard = LeaderboardConfig{
		MaxLimit: v.GetInt("LEADERBOARD_MAX_LIMIT"),
		CacheTTL: parseDuration(v.GetString("LEADERBOARD_CACHE_TTL"), time.Minute),
	}

	maxUploadSize := v.GetInt64("UPLOADS_MAX_FILE_SIZE")
	if maxUploadSize <= 0 {
		maxUploadSize = 100 * 1024 * 1024
	}
	cfg.Uploads = UploadsConfig{
		StorageDir:       v.GetString("UPLOADS_STORAGE_DIR"),
		SignedURLSecret:  v.GetString("UPLOADS_SIGNED_URL_SECRET"),
		SignedURLTTL:     parseDuration(v.GetString("UPLOADS_SIGNED_URL_TTL"), 30*time.Minute),
		MaxFileSizeBytes: maxUploadSize,
		AllowedMIMEs:     splitAndTrim(v.GetString("UPLOADS_ALLOWED_MIME_TYPES")),
	}

	cfg.Notifications = NotificationsConfig{
		Channel: v.GetString("NOTIFICATIONS_CHANNEL"),
	}

	cfg.Community = CommunityConfig{
		Name:        v.GetString("COMMUNITY_NAME"),
		Description: v.GetString("COMMUNITY_DESCRIPTION"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "ecolearn")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "168h")
	v.SetDefault("JWT_REFRESH_EXPIRATION", "720h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("REWARD_MATERIAL_POINTS", 10)
	v.SetDefault("REWARD_QUIZ_POINTS", 10)
	v.SetDefault("REWARD_ASSIGNMENT_POINTS", 10)
	v.SetDefault("REWARD_GAME_DEFAULT_POINTS", 10)
	v.SetDefault("REWARD_GAME_MAX_POINTS", 50)
	v.SetDefault("REWARD_WORKER_COUNT", 1)
	v.SetDefault("REWARD_WORKER_RETRIES", 3)

	v.SetDefault("LEADERBOARD_MAX_LIMIT", 100)
	v.SetDefault("LEADERBOARD_CACHE_TTL", "1m")

	v.SetDefault("UPLOADS_STORAGE_DIR", "./uploads")
	v.SetDefault("UPLOADS_SIGNED_URL_SECRET", "dev_uploads_secret")
	v.SetDefault("UPLOADS_SIGNED_URL_TTL", "30m")
	v.SetDefault("UPLOADS_MAX_FILE_SIZE", 100*1024*1024)
	v.SetDefault("UPLOADS_ALLOWED_MIME_TYPES", "application/pdf,video/mp4,image/png,image/jpeg,text/html,application/epub+zip")

	v.SetDefault("NOTIFICATIONS_CHANNEL", "ecolearn:notifications")

	v.SetDefault("COMMUNITY_NAME", "EcoLearn Community")
	v.SetDefault("COMMUNITY_DESCRIPTION", "A place for students and teachers to connect")
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
