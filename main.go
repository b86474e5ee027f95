package main

import (
	stdlog "log"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/horizonbank/banking-service/internal/config"
	"github.com/horizonbank/banking-service/internal/handlers"
	applog "github.com/horizonbank/banking-service/internal/log"
	"github.com/horizonbank/banking-service/internal/services/accounts"
	"github.com/horizonbank/banking-service/internal/services/dwolla"
	"github.com/horizonbank/banking-service/internal/services/plaid"
	"github.com/horizonbank/banking-service/internal/services/transfer"
	repository "github.com/horizonbank/banking-service/internal/storage/postgres"
)

func main() {

	// Load configuration (e.g. from env or file)
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v", err)
	}

	logger := applog.New("banking-service", cfg.LogLevel).Logger()
	defer logger.Sync() // flush logs before exiting

	// Setup DB connection
	pgSecret := &repository.PostgresSecret{
		DBConnString: cfg.DatabaseURL,
	}

	db, err := repository.NewPostgresDB(pgSecret)
	if err != nil {
		stdlog.Fatalf("failed to connect to DB: %v", err)
	}
	defer db.Close()

	repo := repository.NewPostgresRepo(db)
	transactor := repository.NewPostgresTransactor(db)

	// Build external clients and services
	plaidSvc := plaid.New(&plaid.Opts{
		ClientID:     cfg.PlaidClientID,
		ClientSecret: cfg.PlaidSecret,
		Environment:  cfg.PlaidEnv,
	}, logger)
	dwollaClient := dwolla.NewClient(cfg.DwollaBaseURL, cfg.DwollaKey, cfg.DwollaSecret)

	accountsSvc := accounts.NewService(repo, repo, plaidSvc, logger)
	transferSvc := transfer.NewService(repo, repo, dwollaClient, transactor, logger)

	httpHandler := handlers.NewHttpServer(logger, accountsSvc, transferSvc,
		repo, repo, transactor, plaidSvc, dwollaClient)

	r := handlers.RegisterRoutes(httpHandler)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: []string{"*"}, // Change for production
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsMiddleware.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	logger.Sugar().Infof("Listening on :%s...", cfg.Port)
	if err := srv.ListenAndServe(); err != nil {
		stdlog.Fatalf("HTTP server failed: %v", err)
	}
}
