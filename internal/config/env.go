package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string `env:"APP_ADDR" envDefault:":8080"`
	GinMode string `env:"GIN_MODE"`

	DBUser     string `env:"DB_USER" envDefault:"root"`
	DBPassword string `env:"DB_PASSWORD"`
	DBHost     string `env:"DB_HOST" envDefault:"127.0.0.1:3306"`
	DBName     string `env:"DB_NAME" envDefault:"cooking_class"`

	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"25"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"10m"`

	// Empty disables the dispatch change feed; drivers fall back to polling.
	RedisURL string `env:"REDIS_URL"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"super-secret-key-change-me"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"12h"`

	// Bootstrap admin login, created on startup when missing.
	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	Timezone           string   `env:"APP_TIMEZONE" envDefault:"Local"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173"`
	DriverPollInterval int      `env:"DRIVER_POLL_INTERVAL" envDefault:"30"`
}

// LoadEnv reads an optional .env file, then parses the process environment.
func LoadEnv() (Env, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[CONFIG] .env tidak ditemukan, memakai environment proses")
	}

	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Location is the operator's wall-clock zone used by the lock policy.
func (e Env) Location() (*time.Location, error) {
	if e.Timezone == "" || e.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", e.Timezone, err)
	}
	return loc, nil
}

// Pool returns the connection pool limits for ConnectDB.
func (e Env) Pool() Pool {
	return Pool{
		MaxOpen:     e.DBMaxOpenConns,
		MaxIdle:     e.DBMaxIdleConns,
		MaxLifetime: e.DBConnMaxLifetime,
	}
}

// DSN builds the MySQL data source name with the pool-friendly timeouts.
func (e Env) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s",
		e.DBUser,
		e.DBPassword,
		e.DBHost,
		e.DBName,
	)
}
