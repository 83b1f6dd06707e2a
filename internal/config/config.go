package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Room      RoomConfig
	Sync      SyncConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	YouTube   YouTubeConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Mode         string // debug, release, test
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type RoomConfig struct {
	// GracePeriod is how long an empty room survives before deletion, so a
	// page reload does not destroy a running session.
	GracePeriod time.Duration
}

type SyncConfig struct {
	// DriftThreshold is the position divergence, in seconds, above which a
	// client treats a jump as a deliberate seek rather than timer jitter.
	DriftThreshold float64
	// PollInterval is how often a client samples its local player.
	PollInterval time.Duration
	// PlayPauseCooldown and SeekCooldown are the echo-suppression windows
	// entered after applying a remote event.
	PlayPauseCooldown time.Duration
	SeekCooldown      time.Duration
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	// Backend selects the limiter implementation: memory or redis.
	Backend string
	// Window is the sliding window used by the redis backend.
	Window time.Duration
	// SearchRequests per SearchWindow bounds catalog search, which burns
	// external API quota.
	SearchRequests int
	SearchWindow   time.Duration
}

// APIRequests is the request budget for one redis sliding window,
// derived from the per-second rate.
func (c *RateLimitConfig) APIRequests() int {
	requests := int(c.RequestsPerSecond * c.Window.Seconds())
	if requests < 1 {
		requests = 1
	}
	return requests
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

type YouTubeConfig struct {
	APIKey     string
	MaxResults int64
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetEnvPrefix("SYNCBEATS")
	viper.AutomaticEnv()

	setDefaults()

	// The config file is optional; env vars and defaults cover everything.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVariables()

	cfg := &Config{
		Server: ServerConfig{
			Host:         viper.GetString("server.host"),
			Port:         viper.GetInt("server.port"),
			Mode:         viper.GetString("server.mode"),
			ReadTimeout:  viper.GetDuration("server.read_timeout"),
			WriteTimeout: viper.GetDuration("server.write_timeout"),
		},
		Room: RoomConfig{
			GracePeriod: viper.GetDuration("room.grace_period"),
		},
		Sync: SyncConfig{
			DriftThreshold:    viper.GetFloat64("sync.drift_threshold"),
			PollInterval:      viper.GetDuration("sync.poll_interval"),
			PlayPauseCooldown: viper.GetDuration("sync.play_pause_cooldown"),
			SeekCooldown:      viper.GetDuration("sync.seek_cooldown"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: viper.GetFloat64("ratelimit.requests_per_second"),
			Burst:             viper.GetInt("ratelimit.burst"),
			Backend:           viper.GetString("ratelimit.backend"),
			Window:            viper.GetDuration("ratelimit.window"),
			SearchRequests:    viper.GetInt("ratelimit.search_requests"),
			SearchWindow:      viper.GetDuration("ratelimit.search_window"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("redis.host"),
			Port:     viper.GetInt("redis.port"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
			PoolSize: viper.GetInt("redis.pool_size"),
		},
		YouTube: YouTubeConfig{
			APIKey:     viper.GetString("youtube.api_key"),
			MaxResults: viper.GetInt64("youtube.max_results"),
		},
		Log: LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		},
	}

	return cfg, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")

	// Room defaults
	viper.SetDefault("room.grace_period", "30m")

	// Sync defaults. The 3s threshold tolerates normal playback timer
	// jitter; scrubs shorter than it are invisible and stay that way.
	viper.SetDefault("sync.drift_threshold", 3.0)
	viper.SetDefault("sync.poll_interval", "1s")
	viper.SetDefault("sync.play_pause_cooldown", "500ms")
	viper.SetDefault("sync.seek_cooldown", "1s")

	// Rate limit defaults
	viper.SetDefault("ratelimit.requests_per_second", 10.0)
	viper.SetDefault("ratelimit.burst", 20)
	viper.SetDefault("ratelimit.backend", "memory")
	viper.SetDefault("ratelimit.window", "1m")
	viper.SetDefault("ratelimit.search_requests", 30)
	viper.SetDefault("ratelimit.search_window", "1m")

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.pool_size", 10)

	// YouTube defaults
	viper.SetDefault("youtube.api_key", "")
	viper.SetDefault("youtube.max_results", 8)

	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
}

func bindEnvVariables() {
	// Server
	_ = viper.BindEnv("server.host", "SERVER_HOST")
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.mode", "SERVER_MODE")

	// Room
	_ = viper.BindEnv("room.grace_period", "ROOM_GRACE_PERIOD")

	// Rate limit
	_ = viper.BindEnv("ratelimit.backend", "RATELIMIT_BACKEND")

	// Redis
	_ = viper.BindEnv("redis.host", "REDIS_HOST")
	_ = viper.BindEnv("redis.port", "REDIS_PORT")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// YouTube
	_ = viper.BindEnv("youtube.api_key", "YOUTUBE_API_KEY")

	// Log
	_ = viper.BindEnv("log.level", "LOG_LEVEL")
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetAddr returns server address
func (c *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
