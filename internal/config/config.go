package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/env"
)

const envPrefix = "ESCROW_"

type Config struct {
	Primary  Primary        `koanf:"primary"`
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Gateway  GatewayConfig  `koanf:"gateway"`
	Retry    RetryConfig    `koanf:"retry"`
	Payment  PaymentConfig  `koanf:"payment"`
	Escrow   EscrowConfig   `koanf:"escrow"`
	Worker   WorkerConfig   `koanf:"worker"`
	Kafka    KafkaConfig    `koanf:"kafka"`
	Redis    RedisConfig    `koanf:"redis"`
	Logger   LoggerConfig   `koanf:"logger"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port           string        `koanf:"port" validate:"required"`
	ReadTimeout    time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout   time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout    time.Duration `koanf:"idle_timeout" validate:"required"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"required"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password" validate:"required"`
	Name            string        `koanf:"name" validate:"required"`
	SSLMode         string        `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"required"`
}

type GatewayConfig struct {
	// Default is the adapter used for new payments: "simulator" or "midtrans".
	Default   string          `koanf:"default" validate:"required,oneof=simulator midtrans"`
	Timeout   time.Duration   `koanf:"timeout" validate:"required"`
	Simulator SimulatorConfig `koanf:"simulator"`
	Midtrans  MidtransConfig  `koanf:"midtrans"`
}

type SimulatorConfig struct {
	Secret           string        `koanf:"secret"`
	BaseURL          string        `koanf:"base_url"`
	AutoSuccess      bool          `koanf:"auto_success"`
	AutoSuccessDelay time.Duration `koanf:"auto_success_delay"`
}

type MidtransConfig struct {
	BaseURL   string `koanf:"base_url"`
	ServerKey string `koanf:"server_key"`
}

type RetryConfig struct {
	BaseDelay  time.Duration `koanf:"base_delay"`
	MaxRetries int32         `koanf:"max_retries"`
}

type PaymentConfig struct {
	Expiry     time.Duration `koanf:"expiry"`
	MaxRetries int           `koanf:"max_retries"`
}

type EscrowConfig struct {
	AutoReleaseAfter time.Duration `koanf:"auto_release_after"`
	SweepInterval    time.Duration `koanf:"sweep_interval"`
	BatchSize        int           `koanf:"batch_size"`
}

type WorkerConfig struct {
	Interval  time.Duration `koanf:"interval" validate:"required"`
	BatchSize int           `koanf:"batch_size" validate:"required"`
	LockTTL   time.Duration `koanf:"lock_ttl"`
	// ReconcileAfter is how long a pending payment may go without a callback before the gateway is asked.
	ReconcileAfter time.Duration `koanf:"reconcile_after"`
}

type KafkaConfig struct {
	Enabled     bool     `koanf:"enabled"`
	Brokers     []string `koanf:"brokers"`
	TopicPrefix string   `koanf:"topic_prefix"`
	ClientID    string   `koanf:"client_id"`
}

type RedisConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type LoggerConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, envPrefix)),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	mainConfig.applyDefaults()

	validate := validator.New()

	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}

func (c *Config) applyDefaults() {
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 30 * time.Second
	}
	if c.Retry.MaxRetries == 0 {
		c.Retry.MaxRetries = 3
	}
	if c.Retry.BaseDelay == 0 {
		c.Retry.BaseDelay = 500 * time.Millisecond
	}
	if c.Payment.Expiry == 0 {
		c.Payment.Expiry = 24 * time.Hour
	}
	if c.Payment.MaxRetries == 0 {
		c.Payment.MaxRetries = 3
	}
	if c.Escrow.AutoReleaseAfter == 0 {
		c.Escrow.AutoReleaseAfter = 7 * 24 * time.Hour
	}
	if c.Escrow.SweepInterval == 0 {
		c.Escrow.SweepInterval = 5 * time.Minute
	}
	if c.Escrow.BatchSize == 0 {
		c.Escrow.BatchSize = 100
	}
	if c.Worker.LockTTL == 0 {
		c.Worker.LockTTL = time.Minute
	}
	if c.Worker.ReconcileAfter == 0 {
		c.Worker.ReconcileAfter = 15 * time.Minute
	}
	if c.Gateway.Simulator.AutoSuccessDelay == 0 {
		c.Gateway.Simulator.AutoSuccessDelay = 10 * time.Second
	}
	if c.Kafka.TopicPrefix == "" {
		c.Kafka.TopicPrefix = "escrow"
	}
	if c.Kafka.ClientID == "" {
		c.Kafka.ClientID = "escrow-gateway"
	}
}
