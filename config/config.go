package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Postgres    Postgres
	Redis       Redis
	HTTP        HTTP
	Supabase    Supabase
	Session     Session
	Cache       Cache
	Jobs        Jobs
	Metrics     Metrics
	GoogleDrive GoogleDrive
	Telegram    Telegram
}

type Postgres struct {
	Host            string `env:"PG_HOST"`
	Port            int    `env:"PG_PORT"`
	DbName          string `env:"PG_DB_NAME"`
	Password        string `env:"PG_PASSWORD"`
	User            string `env:"PG_USER"`
	MaxOpenConns    int    `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
	ConnMaxLifetime int    `env:"PG_CONN_MAX_LIFETIME" envDefault:"300"`
	MaxIdleConns    int    `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxIdleTime int    `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"60"`
	MigrationDir    string `env:"PG_MIGRATION_DIR" envDefault:"migrations"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST"`
	Port     int    `env:"REDIS_PORT"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type HTTP struct {
	Addr         string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	GinMode      string        `env:"GIN_MODE" envDefault:"release"`
}

// Supabase holds the hosted auth collaborator settings.
type Supabase struct {
	Url     string        `env:"SUPABASE_URL"`
	AnonKey string        `env:"SUPABASE_ANON_KEY"`
	Timeout time.Duration `env:"SUPABASE_TIMEOUT" envDefault:"10s"`
	Debug   bool          `env:"SUPABASE_DEBUG" envDefault:"false"`
}

type Session struct {
	JWTSecret string        `env:"SESSION_JWT_SECRET"`
	TTL       time.Duration `env:"SESSION_TTL" envDefault:"24h"`
}

type Cache struct {
	QueryTTL time.Duration `env:"CACHE_QUERY_TTL" envDefault:"5m"`
}

type Jobs struct {
	RefreshSummaryInterval time.Duration `env:"JOB_REFRESH_SUMMARY_INTERVAL" envDefault:"15m"`
	CleanupReportsCrontab  string        `env:"JOB_CLEANUP_REPORTS_CRONTAB" envDefault:"0 0 3 * * *"`
}

type Metrics struct {
	Bucketing string `env:"METRICS_BUCKETING" envDefault:"exact" validate:"oneof=exact carry_forward"`
}

type GoogleDrive struct {
	Enabled         bool          `env:"GOOGLE_DRIVE_ENABLED" envDefault:"false"`
	CredentialsFile string        `env:"GOOGLE_DRIVE_CREDENTIALS_FILE" envDefault:""`
	FolderID        string        `env:"GOOGLE_DRIVE_FOLDER_ID" envDefault:""`
	FileTTL         time.Duration `env:"GOOGLE_DRIVE_FILE_TTL" envDefault:"720h"`
}

type Telegram struct {
	Enabled      bool          `env:"TELEGRAM_ENABLED" envDefault:"false"`
	Token        string        `env:"TELEGRAM_TOKEN" envDefault:""`
	UpdTimeout   time.Duration `env:"TELEGRAM_UPD_TIMEOUT" envDefault:"10s"`
	AllowedChats []int64       `env:"TELEGRAM_ALLOWED_CHATS" envSeparator:"," envDefault:""`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg, err := Load()
	if err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}

func Load() (*Config, error) {
	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
