package app

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stocksim/api/internal/api"
	"github.com/stocksim/api/internal/config"
	"github.com/stocksim/api/internal/db"
	"github.com/stocksim/api/internal/logger"
)

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = checkConfig(conf); err != nil {
		return fmt.Errorf("invalid config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	s := api.NewServer(conf, postgresDB)

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr),
		zap.String("environment", conf.API.Environment),
		zap.Duration("stream_interval", conf.Stream.Interval),
	)
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}

// checkConfig rejects a config that would only fail later, at the first
// login or quote lookup, with a confusing runtime error.
func checkConfig(conf *config.AppConfig) error {
	if conf.API == nil || conf.API.JWTSigningKey == "" {
		return errors.New("api.jwt_signing_key is required")
	}
	if conf.Quote == nil || conf.Quote.BaseURL == "" {
		return errors.New("quote.base_url is required")
	}

	return nil
}
