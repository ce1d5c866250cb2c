package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string `env:"ENV" env-required:"true"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info" env-description:"logging level, debug, info, etc."`
	HttpServer HttpServer
	Database   Database
	Limiter    Limiter
	Auth       AuthConfig
	SMTP       SMTPConfig
	Email      EmailConfig
	Cache      Cache
	Worker     WorkerConfig
}

type HttpServer struct {
	Port           string        `env:"HTTP_PORT" env-default:"8080"`
	Timeout        time.Duration `env:"HTTP_TIMEOUT" env-default:"4s"`
	IdleTimeout    time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	SwaggerEnabled bool          `env:"HTTP_SWAGGER_ENABLED" env-default:"false"`
	AllowedOrigins []string      `env:"HTTP_ALLOWED_ORIGINS" env-default:"http://localhost:3000"`
}

type Database struct {
	Net                string        `env:"DB_NET" env-default:"tcp"`
	Server             string        `env:"DB_SERVER" env-required:"true"`
	DBName             string        `env:"DB_NAME" env-required:"true"`
	User               string        `env:"DB_USER" env-required:"true"`
	Password           string        `env:"DB_PASSWORD" env-required:"true"`
	TimeZone           string        `env:"DB_TIMEZONE" env-default:"UTC"`
	Timeout            time.Duration `env:"DB_TIMEOUT" env-default:"2s"`
	MaxIdleConnections int           `env:"DB_MAX_IDLE_CONNECTIONS" env-default:"40"`
	MaxOpenConnections int           `env:"DB_MAX_OPEN_CONNECTIONS" env-default:"40"`
	MigrateOnStart     bool          `env:"DB_MIGRATE_ON_START" env-default:"true"`
}

type Limiter struct {
	RPS   int           `env:"LIMITER_RPS" env-default:"10"`
	Burst int           `env:"LIMITER_BURST" env-default:"20"`
	TTL   time.Duration `env:"LIMITER_TTL" env-default:"10m"`

	// Issuance endpoints only, counted in Redis per client IP.
	IssuePerIP    int           `env:"LIMITER_ISSUE_PER_IP" env-default:"30"`
	IssueIPWindow time.Duration `env:"LIMITER_ISSUE_IP_WINDOW" env-default:"1h"`
}

type AuthConfig struct {
	JWT       JWTConfig
	Code      CodeConfig
	MagicLink MagicLinkConfig
	Lockout   LockoutConfig
	Cookie    CookieConfig

	// Salt for link token hashes at rest.
	TokenSalt     string `env:"AUTH_TOKEN_SALT" env-required:"true"`
	MinNameLength int    `env:"AUTH_MIN_NAME_LENGTH" env-default:"2"`
}

type JWTConfig struct {
	SessionTTL       time.Duration `env:"JWT_SESSION_TTL" env-default:"168h"`
	ProfileTicketTTL time.Duration `env:"JWT_PROFILE_TICKET_TTL" env-default:"15m"`
	SigningKey       string        `env:"JWT_SIGNING_KEY" env-required:"true"`
	Issuer           string        `env:"JWT_ISSUER" env-default:"passwordless"`
}

type CodeConfig struct {
	Length         int           `env:"AUTH_CODE_LENGTH" env-default:"6"`
	TTL            time.Duration `env:"AUTH_CODE_TTL" env-default:"10m"`
	ResendCooldown time.Duration `env:"AUTH_CODE_RESEND_COOLDOWN" env-default:"1m"`
	HourlyLimit    int           `env:"AUTH_CODE_HOURLY_LIMIT" env-default:"10"`
	DailyLimit     int           `env:"AUTH_CODE_DAILY_LIMIT" env-default:"50"`
	Backoff        time.Duration `env:"AUTH_CODE_BACKOFF" env-default:"5m"`
}

type MagicLinkConfig struct {
	TTL            time.Duration `env:"AUTH_LINK_TTL" env-default:"15m"`
	ResendCooldown time.Duration `env:"AUTH_LINK_RESEND_COOLDOWN" env-default:"1m"`
	HourlyLimit    int           `env:"AUTH_LINK_HOURLY_LIMIT" env-default:"5"`
	Backoff        time.Duration `env:"AUTH_LINK_BACKOFF" env-default:"5m"`
	BaseURL        string        `env:"AUTH_LINK_BASE_URL" env-required:"true" env-description:"page that receives token and email query params"`
}

type LockoutConfig struct {
	Threshold int           `env:"AUTH_LOCKOUT_THRESHOLD" env-default:"5"`
	Window    time.Duration `env:"AUTH_LOCKOUT_WINDOW" env-default:"15m"`
}

type CookieConfig struct {
	Name   string `env:"AUTH_COOKIE_NAME" env-default:"session"`
	Domain string `env:"AUTH_COOKIE_DOMAIN" env-default:""`
	Secure bool   `env:"AUTH_COOKIE_SECURE" env-default:"true"`
}

type SMTPConfig struct {
	Host string `env:"SMTP_HOST" env-required:"true"`
	Port int    `env:"SMTP_PORT" env-required:"true"`
	From string `env:"SMTP_FROM" env-required:"true"`
	Pass string `env:"SMTP_PASS" env-required:"true"`
}

type EmailConfig struct {
	Enabled      bool   `env:"EMAIL_ENABLED" env-default:"false"`
	TemplatesDir string `env:"EMAIL_TEMPLATES_DIR" env-default:"./templates"`
	Templates    EmailTemplates
}

type EmailTemplates struct {
	Verification string `env:"EMAIL_TEMPLATE_VERIFICATION" env-default:"verification_code.html"`
	MagicLink    string `env:"EMAIL_TEMPLATE_MAGIC_LINK" env-default:"magic_link.html"`
	Welcome      string `env:"EMAIL_TEMPLATE_WELCOME" env-default:"welcome.html"`
}

type Cache struct {
	Type         string `env:"REDIS_TYPE" env-required:"true" env-description:"specifies provider, one of redis/redisCluster"`
	Redis        Redis
	RedisCluster RedisCluster
}

type Redis struct {
	Address  string `env:"REDIS_ADDR" env-default:"" env-description:"redis host:port single instance"`
	Password string `env:"REDIS_PASSWORD" env-default:"" env-description:"redis password if exists"`
	PoolSize int    `env:"REDIS_POOL_SIZE" env-default:"70" env-description:"max tcp connections pool size"`
}

type RedisCluster struct {
	Addresses []string `env:"REDIS_CLUSTER_ADDRS" env-default:"" env-description:"redis cluster nodes, comma separated host:port list"`
	Password  string   `env:"REDIS_PASSWORD" env-default:"" env-description:"redis password if exists"`
	PoolSize  int      `env:"REDIS_POOL_SIZE" env-default:"70" env-description:"max tcp connections pool size"`
}

type WorkerConfig struct {
	Concurrency       int           `env:"WORKER_CONCURRENCY" env-default:"10"`
	SweepCron         string        `env:"WORKER_SWEEP_CRON" env-default:"@every 10m"`
	AttemptsRetention time.Duration `env:"WORKER_ATTEMPTS_RETENTION" env-default:"720h"`
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot read config from environment: %s", err)
	}

	return cfg
}

func Load() (*Config, error) {
	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
