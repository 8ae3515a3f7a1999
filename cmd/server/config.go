package main

import (
	"log/slog"
	"time"

	"github.com/avdeyev/storeserv/internal/config"
)

type serverConfig struct {
	GatewayAddr     string        `env:"GATEWAY_ADDR"`
	AdminAddr       string        `env:"ADMIN_ADDR"`
	AdminToken      string        `env:"ADMIN_TOKEN"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
	Postgres        config.PostgresConfig
}
