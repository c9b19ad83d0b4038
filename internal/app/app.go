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

	"github.com/marisa-playground/labeling-service/internal/config"
	"github.com/marisa-playground/labeling-service/internal/delivery/httpd"
	"github.com/marisa-playground/labeling-service/internal/repository"
	"github.com/marisa-playground/labeling-service/internal/service"
	"github.com/marisa-playground/labeling-service/internal/service/integration"
)

type App struct {
	server *http.Server
	logger zerolog.Logger
	config *config.Config
	db     *sql.DB
	events integration.EventPublisher
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	// Создаем хранилище файлов
	minioRepo, err := repository.NewMinIORepository(
		cfg.MinIO.Endpoint,
		cfg.MinIO.AccessKey,
		cfg.MinIO.SecretKey,
		cfg.Storage.BucketName,
		cfg.Storage.Region,
		cfg.Storage.PublicURL,
		cfg.MinIO.UseSSL,
		cfg.MinIO.Timeout,
		log,
	)
	if err != nil {
		return nil, err
	}
	storageRepo := repository.NewStorageRepository(minioRepo, log)

	// Создаем издателя событий
	events, err := integration.NewRabbitMQClient(
		cfg.RabbitMQ.URL,
		cfg.RabbitMQ.Exchange,
		cfg.RabbitMQ.RoutingKey,
		cfg.RabbitMQ.QueueName,
		log,
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create RabbitMQ client")
		// Продолжаем без RabbitMQ, это допустимо для разработки
		events = nil
	}

	// Создаем репозитории
	userRepo := repository.NewUserRepository(db, log)
	poolRepo := repository.NewPoolRepository(db, log)
	questionRepo := repository.NewQuestionRepository(db, log)
	taskRepo := repository.NewTaskRepository(db, log)
	evaluationRepo := repository.NewEvaluationRepository(db, log)

	// Создаем сервисы
	authService := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	poolService := service.NewPoolService(poolRepo, questionRepo, taskRepo, log)
	ingestService := service.NewIngestService(
		poolRepo,
		taskRepo,
		storageRepo,
		events,
		service.IngestConfig{MaxArchiveSize: cfg.Server.MaxUploadSize},
		log,
	)
	assignmentService := service.NewAssignmentService(poolRepo, taskRepo, log)
	evaluationService := service.NewEvaluationService(taskRepo, evaluationRepo, questionRepo, log)
	consolidationService := service.NewConsolidationService(taskRepo, evaluationRepo, questionRepo, events, log)
	metricsService := service.NewMetricsService(poolRepo, taskRepo, log)
	exportService := service.NewExportService(poolRepo, taskRepo, log)

	// Создаем обработчики
	handler := httpd.NewHandler(
		authService,
		poolService,
		ingestService,
		assignmentService,
		evaluationService,
		consolidationService,
		metricsService,
		exportService,
		log,
	)

	// Создаем роутер
	router := chi.NewRouter()

	// Настраиваем middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Настраиваем CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	// Регистрируем маршруты
	handler.RegisterRoutes(router)

	// Создаем HTTP сервер
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server: server,
		logger: log,
		config: cfg,
		db:     db,
		events: events,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info().Msgf("Starting labeling service on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down labeling service...")

	// Закрываем RabbitMQ соединение
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	// Закрываем соединение с БД
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}

	// Останавливаем сервер
	return a.server.Shutdown(ctx)
}
