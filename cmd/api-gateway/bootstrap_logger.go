package main

import (
	config "github.com/NordCoder/crmdesk/internal/config/api-gateway"
	"github.com/NordCoder/crmdesk/internal/obs"
	"go.uber.org/zap"
)

func initLogger(cfg *config.Config) (*zap.Logger, error) {
	return obs.NewLogger(*cfg.Log.AsLoggerConfig(cfg.App))
}
