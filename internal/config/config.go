package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Auth       AuthConfig       `yaml:"auth"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Compliance ComplianceConfig `yaml:"compliance"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"             env:"PORT"                    env-default:"3000"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	SecureCookies   bool          `yaml:"secure_cookies"   env:"SECURE_COOKIES"          env-default:"false"`
}

type DatabaseConfig struct {
	Host       string `yaml:"host"        env:"DB_HOST"        env-default:"localhost"`
	Port       string `yaml:"port"        env:"DB_PORT"        env-default:"5432"`
	User       string `yaml:"user"        env:"DB_USER"        env-default:"postgres"`
	Password   string `yaml:"password"    env:"DB_PASSWORD"`
	Name       string `yaml:"name"        env:"DB_NAME"        env-default:"compliance"`
	SSLMode    string `yaml:"sslmode"     env:"DB_SSLMODE"     env-default:"disable"`
	MaxRetries int    `yaml:"max_retries" env:"DB_MAX_RETRIES" env-default:"5"`
}

type RedisConfig struct {
	Addr       string        `yaml:"addr"        env:"REDIS_ADDR"        env-default:"localhost:6379"`
	OptionsTTL time.Duration `yaml:"options_ttl" env:"REDIS_OPTIONS_TTL" env-default:"10m"`
}

type KafkaConfig struct {
	Broker        string        `yaml:"broker"         env:"KAFKA_BROKER"`
	ConsumerGroup string        `yaml:"consumer_group" env:"KAFKA_CONSUMER_GROUP" env-default:"compliance-notifications"`
	PollInterval  time.Duration `yaml:"poll_interval"  env:"OUTBOX_POLL_INTERVAL" env-default:"3s"`
}

type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret"        env:"JWT_SECRET"        env-required:"true"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"  env:"ACCESS_TOKEN_TTL"  env-default:"15m"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL" env-default:"168h"`
}

// RateLimitConfig guards the unauthenticated grievance intake.
type RateLimitConfig struct {
	AnonymousPerSecond float64 `yaml:"anonymous_per_second" env:"RATE_LIMIT_ANONYMOUS_RPS"   env-default:"0.2"`
	AnonymousBurst     int     `yaml:"anonymous_burst"      env:"RATE_LIMIT_ANONYMOUS_BURST" env-default:"3"`
	UserPerSecond      float64 `yaml:"user_per_second"      env:"RATE_LIMIT_USER_RPS"        env-default:"10"`
	UserBurst          int     `yaml:"user_burst"           env:"RATE_LIMIT_USER_BURST"      env-default:"20"`
}

// ComplianceConfig holds the score weights. These are product policy.
type ComplianceConfig struct {
	PassThreshold        float64 `yaml:"pass_threshold"           env:"COMPLIANCE_PASS_THRESHOLD"           env-default:"70"`
	OverdueAuditPenalty  float64 `yaml:"overdue_audit_penalty"    env:"COMPLIANCE_OVERDUE_AUDIT_PENALTY"    env-default:"5"`
	OpenGrievancePenalty float64 `yaml:"open_grievance_penalty"   env:"COMPLIANCE_OPEN_GRIEVANCE_PENALTY"   env-default:"2"`
}
