// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

const (
	RepoInMemory = "inmemory"
	RepoPostgres = "postgres"
	RepoSQLite   = "sqlite"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	SQLite     SQLiteConfig     `yaml:"sqlite"`
	Logging    LoggingConfig    `yaml:"logging"`
	Repository RepositoryConfig `yaml:"repository"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
}

type ServerConfig struct {
	Port            string        `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	Host            string        `yaml:"host" env:"SERVER_HOST"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"10s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT" env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"15s"`
	CORSOrigins     []string      `yaml:"cors_origins" env:"SERVER_CORS_ORIGINS" env-separator:"," env-default:"*"`
}

type DatabaseConfig struct {
	URL            string        `yaml:"url" env:"DATABASE_URL"`
	MaxConnections int           `yaml:"max_connections" env:"DATABASE_MAX_CONNECTIONS" env-default:"10"`
	MinConnections int           `yaml:"min_connections" env:"DATABASE_MIN_CONNECTIONS" env-default:"1"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env:"DATABASE_IDLE_TIMEOUT" env-default:"5m"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" env:"SQLITE_PATH" env-default:"tasks.db"`
}

type LoggingConfig struct {
	Development bool `yaml:"development" env:"LOG_DEVELOPMENT"`
}

type RepositoryConfig struct {
	Type string `yaml:"type" env:"REPOSITORY_TYPE" env-default:"inmemory"` // inmemory, postgres или sqlite
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" env:"RATE_LIMIT_RPM" env-default:"100"`
}

// Load читает YAML (если файл есть) и накладывает переменные окружения и значения по умолчанию
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if err := readFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка чтения переменных окружения: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		// файла нет - работаем только на env
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("не могу открыть %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("ошибка парсинга %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Repository.Type {
	case RepoInMemory, RepoSQLite:
	case RepoPostgres:
		if c.Database.URL == "" {
			return errors.New("для репозитория postgres нужен database.url")
		}
	default:
		return fmt.Errorf("неизвестный тип репозитория %q", c.Repository.Type)
	}

	if c.RateLimit.RequestsPerMinute < 1 {
		return fmt.Errorf("rate_limit.requests_per_minute должен быть больше 0, получено %d", c.RateLimit.RequestsPerMinute)
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
