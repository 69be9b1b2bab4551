package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port      int
	DBDSN     string
	JWTSecret string
}

// App holds the process-wide configuration, populated by Load in main.
var App Config

func Load() Config {
	port := 8082
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			port = p
		}
	}

	App = Config{
		Port:      port,
		DBDSN:     os.Getenv("DB_DSN"),
		JWTSecret: os.Getenv("JWT_SECRET"),
	}
	return App
}
