package buildCFG

import (
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"

	"eventify/cmd/middleware"
	"eventify/internal/mailer"
)

type ServerConfig struct {
	Port string
}

func BuildServerConfig(cfg *config.Config, log *zerolog.Logger) ServerConfig {
	port := cfg.GetString("server.port")
	if port == "" {
		port = "8080"
		log.Warn().Msg("server.port not set, using 8080")
	}
	return ServerConfig{Port: port}
}

func BuildDBConfig(cfg *config.Config, log *zerolog.Logger) (string, []string, *dbpg.Options, error) {
	masterDSN := cfg.GetString("database.master_dsn")
	if masterDSN == "" {
		return "", nil, nil, errors.New("database.master_dsn is required")
	}

	var slaveDSNs []string
	if raw := cfg.GetString("database.slave_dsns"); raw != "" {
		for _, dsn := range strings.Split(raw, ",") {
			if dsn = strings.TrimSpace(dsn); dsn != "" {
				slaveDSNs = append(slaveDSNs, dsn)
			}
		}
	}

	maxOpen := cfg.GetInt("database.max_open_conns")
	if maxOpen <= 0 {
		maxOpen = 10
	}
	maxIdle := cfg.GetInt("database.max_idle_conns")
	if maxIdle <= 0 {
		maxIdle = 5
	}
	lifetimeMin := cfg.GetInt("database.conn_max_lifetime_minutes")
	if lifetimeMin <= 0 {
		lifetimeMin = 30
	}

	log.Info().
		Int("slaves", len(slaveDSNs)).
		Int("max_open_conns", maxOpen).
		Msg("database config built")

	return masterDSN, slaveDSNs, &dbpg.Options{
		MaxOpenConns:    maxOpen,
		MaxIdleConns:    maxIdle,
		ConnMaxLifetime: time.Duration(lifetimeMin) * time.Minute,
	}, nil
}

type RabbitConfig struct {
	Url      string
	Exchange string
	Queue    string
}

func BuildRabbitConfig(cfg *config.Config, log *zerolog.Logger) (RabbitConfig, error) {
	rc := RabbitConfig{
		Url:      cfg.GetString("rabbit.url"),
		Exchange: cfg.GetString("rabbit.exchange"),
		Queue:    cfg.GetString("rabbit.queue"),
	}
	if rc.Url == "" {
		return rc, errors.New("rabbit.url is required")
	}
	if rc.Exchange == "" {
		rc.Exchange = "bookings"
	}
	if rc.Queue == "" {
		rc.Queue = "booking_notifications"
	}
	log.Info().Str("exchange", rc.Exchange).Str("queue", rc.Queue).Msg("rabbit config built")
	return rc, nil
}

type AuthConfig struct {
	Secret string
}

func BuildAuthConfig(cfg *config.Config) (AuthConfig, error) {
	secret := cfg.GetString("auth.secret")
	if secret == "" {
		return AuthConfig{}, errors.New("auth.secret is required")
	}
	return AuthConfig{Secret: secret}, nil
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

func BuildRedisConfig(cfg *config.Config, log *zerolog.Logger) (RedisConfig, middleware.RateLimitConfig) {
	rc := RedisConfig{
		Enabled:  cfg.GetBool("redis.enabled"),
		Addr:     cfg.GetString("redis.addr"),
		Password: cfg.GetString("redis.password"),
		DB:       cfg.GetInt("redis.db"),
	}
	if rc.Enabled && rc.Addr == "" {
		log.Warn().Msg("redis.enabled is set but redis.addr is empty, rate limiting disabled")
		rc.Enabled = false
	}

	rl := middleware.RateLimitConfig{
		Enabled:        rc.Enabled,
		Capacity:       cfg.GetInt("redis.limiter.capacity"),
		RefillTokens:   cfg.GetInt("redis.limiter.refill_tokens"),
		RefillInterval: time.Duration(cfg.GetInt("redis.limiter.refill_interval_seconds")) * time.Second,
		TTL:            time.Duration(cfg.GetInt("redis.limiter.ttl_seconds")) * time.Second,
	}
	if rl.Capacity <= 0 {
		rl.Capacity = 10
	}
	if rl.RefillTokens <= 0 {
		rl.RefillTokens = 1
	}
	if rl.RefillInterval <= 0 {
		rl.RefillInterval = time.Second
	}
	if rl.TTL <= 0 {
		rl.TTL = time.Minute
	}

	return rc, rl
}

func BuildMailConfig(cfg *config.Config) mailer.Config {
	return mailer.Config{
		Enabled:  cfg.GetBool("mail.enabled"),
		Host:     cfg.GetString("mail.host"),
		Port:     cfg.GetInt("mail.port"),
		From:     cfg.GetString("mail.from"),
		Password: cfg.GetString("mail.password"),
	}
}
