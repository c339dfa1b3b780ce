// Package config provides runtime configuration values for the storefront.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds configuration knobs for the HTTP server, database, auth and
// the real-time layer.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	DBUser string
	DBPass string
	DBAddr string
	DBName string

	JWTSecret string
	JWTTTL    time.Duration

	AdminEmail    string
	AdminPassword string

	AllowedOrigins []string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

func listenv(key string) []string {
	v := getenv(key, "")
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 10),
		DBUser:          getenv("DBUSER", "root"),
		DBPass:          getenv("DBPASS", ""),
		DBAddr:          getenv("DBADDR", "127.0.0.1:3306"),
		DBName:          getenv("DBNAME", "storefront"),
		JWTSecret:       getenv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTTTL:          durenvs("JWT_TTL_SECONDS", 7*24*3600),
		AdminEmail:      getenv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword:   getenv("ADMIN_PASSWORD", ""),
		AllowedOrigins:  listenv("ALLOWED_ORIGINS"),
	}
}
