package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/openclass/portal-service/internal/config"
	"github.com/openclass/portal-service/internal/delivery/httpd"
	"github.com/openclass/portal-service/internal/repository"
	"github.com/openclass/portal-service/internal/service"
	"github.com/openclass/portal-service/internal/service/integration"
	"github.com/openclass/portal-service/internal/service/storage"
	"github.com/openclass/portal-service/internal/worker"
	"github.com/openclass/portal-service/internal/worker/queue"
)

type App struct {
	server           *http.Server
	logger           zerolog.Logger
	config           *config.Config
	db               *sql.DB
	evaluationWorker worker.EvaluationWorker
	rabbitMQRepo     repository.RabbitMQRepository
	sessionStore     repository.SessionStore
	stopCleanup      context.CancelFunc
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	rabbitMQRepo, err := repository.NewRabbitMQRepository(cfg.RabbitMQ.URL, log)
	if err != nil {
		return nil, err
	}

	if err := rabbitMQRepo.SetupQueue(
		cfg.RabbitMQ.Exchange,
		cfg.RabbitMQ.QueueName,
		cfg.RabbitMQ.RoutingKey,
	); err != nil {
		return nil, err
	}

	rabbitMQConsumer := queue.NewRabbitMQConsumer(
		rabbitMQRepo.Channel(),
		cfg.RabbitMQ.QueueName,
		cfg.RabbitMQ.ConsumerTag,
		cfg.RabbitMQ.PrefetchCount,
		log,
	)

	minioStorage, err := storage.NewMinIOStorage(storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
		Timeout:   cfg.Storage.Timeout,
	})
	if err != nil {
		return nil, err
	}

	ledgerRepo := repository.NewLedgerRepository(db, cfg.Database.TxRetryCount, log)
	studentRepo := repository.NewStudentRepository(db, log)
	submissionRepo := repository.NewSubmissionRepository(db, log)
	contentRepo := repository.NewContentRepository(db, log)
	feedbackRepo := repository.NewFeedbackRepository(db, log)
	adminRepo := repository.NewAdminRepository(db, log)
	sessionStore := repository.NewSessionRepository(db, log)

	artifactClient := integration.NewArtifactClient(cfg.Evaluation.FetchTimeout, log)
	genaiClient := integration.NewGenAIClient(integration.GenAIConfig{
		BaseURL:         cfg.AI.BaseURL,
		APIKey:          cfg.AI.APIKey,
		Model:           cfg.AI.Model,
		Timeout:         cfg.AI.Timeout,
		Temperature:     cfg.AI.Temperature,
		MaxOutputTokens: cfg.AI.MaxOutputTokens,
	}, log)

	ledgerService := service.NewLedgerService(ledgerRepo, log)
	importService := service.NewImportService(ledgerService, log)
	evaluationService := service.NewEvaluationService(artifactClient, genaiClient, ledgerService, log)
	studentService := service.NewStudentService(studentRepo, ledgerRepo, log)
	submissionService := service.NewSubmissionService(
		submissionRepo,
		studentRepo,
		minioStorage,
		rabbitMQRepo,
		cfg.RabbitMQ.Exchange,
		cfg.RabbitMQ.RoutingKey,
		log,
	)
	contentService := service.NewContentService(contentRepo, log)
	feedbackService := service.NewFeedbackService(feedbackRepo, contentRepo, log)
	authService := service.NewAuthService(adminRepo, studentRepo, sessionStore, cfg.Auth.SessionTTL, log)

	workerPool := worker.NewWorkerPool(cfg.Evaluation.MaxWorkers, log)
	evaluationWorker := worker.NewEvaluationWorker(
		workerPool,
		rabbitMQConsumer,
		submissionService,
		evaluationService,
		log,
	)

	handler := httpd.NewHandler(
		authService,
		studentService,
		ledgerService,
		importService,
		submissionService,
		contentService,
		feedbackService,
		evaluationWorker,
		log,
	)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server:           server,
		logger:           log,
		config:           cfg,
		db:               db,
		evaluationWorker: evaluationWorker,
		rabbitMQRepo:     rabbitMQRepo,
		sessionStore:     sessionStore,
	}, nil
}

func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.stopCleanup = cancel

	if err := a.evaluationWorker.Start(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Failed to start evaluation worker")
		return err
	}

	go a.cleanupSessions(ctx)

	a.logger.Info().Msgf("Starting portal service on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

// cleanupSessions deletes expired sessions once an hour.
func (a *App) cleanupSessions(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := a.sessionStore.ClearExpired(ctx)
			if err != nil {
				a.logger.Error().Err(err).Msg("Failed to clear expired sessions")
				continue
			}
			if removed > 0 {
				a.logger.Info().Int64("removed", removed).Msg("Expired sessions cleared")
			}
		}
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down portal service...")

	if a.stopCleanup != nil {
		a.stopCleanup()
	}

	if err := a.evaluationWorker.Stop(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to stop evaluation worker")
	}

	if a.rabbitMQRepo != nil {
		if err := a.rabbitMQRepo.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Failed to shutdown HTTP server")
		return err
	}

	a.logger.Info().Msg("Portal service stopped")
	return nil
}
