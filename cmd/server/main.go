package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"

	"github.com/maynagashev/pagekeeper/internal/handlers"
	"github.com/maynagashev/pagekeeper/internal/hubspot"
	appmiddleware "github.com/maynagashev/pagekeeper/internal/middleware"
	"github.com/maynagashev/pagekeeper/internal/repository"
	"github.com/maynagashev/pagekeeper/internal/services"
	"github.com/maynagashev/pagekeeper/internal/spreadsheet"
	"github.com/maynagashev/pagekeeper/internal/storage"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 2 * time.Minute // бэкап обходит все страницы аккаунта
	defaultIdleTimeout  = 30 * time.Second
	externalAPITimeout  = 30 * time.Second
	startupTimeout      = 30 * time.Second
)

// Точки подмены для тестов.
var (
	newPostgresDB  = repository.NewPostgresDB
	migrateDB      = repository.Migrate
	newMinioClient = storage.NewMinioClient
)

// Структура для хранения инициализированных зависимостей.
type dependencies struct {
	db            *sqlx.DB
	archive       storage.SnapshotArchive // nil, если архив не настроен
	authHandler   *handlers.AuthHandler
	changeHandler *handlers.ChangeHandler
	pageHandler   *handlers.PageHandler
}

// main - точка входа. Вызывает run и обрабатывает ошибку.
func main() {
	if err := run(); err != nil {
		log.Printf("Ошибка выполнения сервера: %v", err)
		os.Exit(1)
	}
}

// run содержит основную логику запуска сервера и возвращает ошибку.
func run() error {
	log.Println("Запуск сервера PageKeeper...")

	cfg, err := parseFlags()
	if err != nil {
		return fmt.Errorf("ошибка конфигурации: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	deps, err := setupDependencies(ctx, cfg)
	cancel()
	if err != nil {
		return fmt.Errorf("ошибка инициализации зависимостей: %w", err)
	}
	defer func() {
		if closeErr := deps.db.Close(); closeErr != nil {
			log.Printf("Ошибка закрытия соединения с БД: %v", closeErr)
		}
	}()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      setupRouter(deps, []byte(cfg.JWTSecret)),
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	if cfg.TLSEnabled() {
		log.Printf("Запуск HTTPS-сервера на порту %s (сертификат: %s)", cfg.Port, cfg.CertFile)
		err = server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
	} else {
		log.Printf("Запуск HTTP-сервера на порту %s", cfg.Port)
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ошибка запуска сервера: %w", err)
	}
	return nil
}

// setupDependencies инициализирует и возвращает все необходимые зависимости сервера.
func setupDependencies(ctx context.Context, cfg *config) (*dependencies, error) {
	deps := &dependencies{}
	var err error

	// 1. БД и миграции
	deps.db, err = newPostgresDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации БД: %w", err)
	}
	if err = migrateDB(deps.db); err != nil {
		closeDB(deps.db)
		return nil, fmt.Errorf("ошибка миграции БД: %w", err)
	}
	log.Println("Соединение с БД установлено, схема актуальна.")

	// 2. Архив снимков (необязательный)
	if cfg.MinioEndpoint != "" {
		archive, minioErr := newMinioClient(ctx, storage.MinioConfig{
			Endpoint:        cfg.MinioEndpoint,
			AccessKeyID:     cfg.MinioUser,
			SecretAccessKey: cfg.MinioPassword,
			UseSSL:          cfg.MinioUseSSL,
			BucketName:      cfg.MinioBucket,
		})
		if minioErr != nil {
			closeDB(deps.db)
			return nil, fmt.Errorf("ошибка инициализации архива MinIO: %w", minioErr)
		}
		deps.archive = archive
	} else {
		log.Println("MinIO не настроен, бэкап будет работать без архива JSON.")
	}

	// 3. Репозитории
	userRepo := repository.NewPostgresUserRepository(deps.db)
	snapshotRepo := repository.NewPostgresSnapshotRepository(deps.db)
	pageTypeRepo := repository.NewPostgresPageTypeRepository(deps.db)
	changeRepo := repository.NewPostgresChangeRepository(deps.db)

	// 4. Внешние API: клиенты создаются один раз, токены пользователей приходят в запросах
	pages := hubspot.NewClient(cfg.HubSpotURL, &http.Client{Timeout: externalAPITimeout})
	sheets := spreadsheet.NewClient(&http.Client{Timeout: externalAPITimeout}, "")

	// 5. Сервисы
	opts := services.Options{Location: cfg.Location}
	authService := services.NewAuthService(userRepo, []byte(cfg.JWTSecret))
	changeService := services.NewChangeService(pages, snapshotRepo, pageTypeRepo, changeRepo, opts)
	pageService := services.NewPageService(pages, sheets, deps.archive, snapshotRepo, pageTypeRepo, opts)

	// 6. Обработчики
	deps.authHandler = handlers.NewAuthHandler(authService)
	deps.changeHandler = handlers.NewChangeHandler(changeService)
	deps.pageHandler = handlers.NewPageHandler(pageService)

	return deps, nil
}

func closeDB(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("Ошибка закрытия соединения с БД: %v", err)
	}
}

// setupRouter настраивает и возвращает роутер chi.
func setupRouter(deps *dependencies, jwtSecret []byte) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong\n"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", deps.authHandler.Register)
		r.Post("/login", deps.authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.NewAuthenticator(jwtSecret))

			r.Post("/revert", deps.changeHandler.Revert)
			r.Post("/sync", deps.changeHandler.Sync)
			r.Get("/history", deps.changeHandler.History)

			r.Post("/backup", deps.pageHandler.Backup)
			r.Post("/preview", deps.pageHandler.Preview)
			r.Post("/compare", deps.pageHandler.Compare)
			r.Get("/archive", deps.pageHandler.Archive)
		})
	})
	return r
}
