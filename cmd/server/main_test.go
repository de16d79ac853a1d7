package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/pagekeeper/internal/handlers"
)

func testDependencies() *dependencies {
	return &dependencies{
		authHandler:   handlers.NewAuthHandler(nil),
		changeHandler: handlers.NewChangeHandler(nil),
		pageHandler:   handlers.NewPageHandler(nil),
	}
}

func TestSetupRouter(t *testing.T) {
	r := setupRouter(testDependencies(), []byte("test-secret"))
	require.NotNil(t, r)

	routes := []struct {
		method  string
		pattern string
	}{
		{http.MethodGet, "/ping"},
		{http.MethodPost, "/api/register"},
		{http.MethodPost, "/api/login"},
		{http.MethodPost, "/api/revert"},
		{http.MethodPost, "/api/sync"},
		{http.MethodGet, "/api/history"},
		{http.MethodPost, "/api/backup"},
		{http.MethodPost, "/api/preview"},
		{http.MethodPost, "/api/compare"},
		{http.MethodGet, "/api/archive"},
	}
	for _, route := range routes {
		assert.True(t, hasRoute(r, route.method, route.pattern), "%s %s", route.method, route.pattern)
	}

	t.Run("Ping доступен без токена", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "pong\n", rr.Body.String())
	})

	t.Run("Защищенные маршруты требуют токен", func(t *testing.T) {
		for _, path := range []string{"/api/revert", "/api/sync", "/api/backup", "/api/preview", "/api/compare"} {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, strings.NewReader("{}")))
			assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
		}
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/history?userId=1&date=2024-01-15", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

// Вспомогательная функция для проверки наличия маршрута.
func hasRoute(r chi.Router, method, pattern string) bool {
	found := false
	_ = chi.Walk(r, func(m, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if m == method && route == pattern {
			found = true
			return errors.New("found") // Прерываем обход
		}
		return nil
	})
	return found
}

func mockPostgresDB(t *testing.T) func(string) (*sqlx.DB, error) {
	return func(_ string) (*sqlx.DB, error) {
		mockDB, _, err := sqlmock.New()
		require.NoError(t, err)
		return sqlx.NewDb(mockDB, "sqlmock"), nil
	}
}

// newBucketServer имитирует MinIO, у которого бакет уже существует.
func newBucketServer(t *testing.T) string {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Query().Has("location"):
			w.Header().Set("Content-Type", "application/xml")
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><LocationConstraint>us-east-1</LocationConstraint>`))
		case r.Method == http.MethodHead:
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotImplemented)
		}
	}))
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "http://")
}

func TestSetupDependencies(t *testing.T) {
	originalNewPostgresDB := newPostgresDB
	originalMigrateDB := migrateDB
	defer func() {
		newPostgresDB = originalNewPostgresDB
		migrateDB = originalMigrateDB
	}()
	migrateDB = func(_ *sqlx.DB) error { return nil }

	baseConfig := func() *config {
		return &config{
			DatabaseDSN: "dummy-dsn-for-mock",
			JWTSecret:   "test-secret",
			HubSpotURL:  "http://hubspot.invalid",
			Location:    time.UTC,
		}
	}

	t.Run("Ошибка: Некорректный DatabaseDSN", func(t *testing.T) {
		newPostgresDB = originalNewPostgresDB
		cfg := baseConfig()
		cfg.DatabaseDSN = "невалидный dsn"

		_, err := setupDependencies(context.Background(), cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ошибка инициализации БД")
	})

	t.Run("Ошибка миграции", func(t *testing.T) {
		newPostgresDB = mockPostgresDB(t)
		migrateDB = func(_ *sqlx.DB) error { return errors.New("dirty database") }
		defer func() { migrateDB = func(_ *sqlx.DB) error { return nil } }()

		_, err := setupDependencies(context.Background(), baseConfig())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ошибка миграции БД")
	})

	t.Run("Ошибка: Некорректный MinIO Endpoint", func(t *testing.T) {
		newPostgresDB = mockPostgresDB(t)
		cfg := baseConfig()
		cfg.MinioEndpoint = "invalid-endpoint:!!!"
		cfg.MinioBucket = "bucket"

		_, err := setupDependencies(context.Background(), cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ошибка инициализации архива MinIO")
	})

	t.Run("Без MinIO архив не подключается", func(t *testing.T) {
		newPostgresDB = mockPostgresDB(t)

		deps, err := setupDependencies(context.Background(), baseConfig())
		require.NoError(t, err)
		defer deps.db.Close()

		assert.Nil(t, deps.archive)
		assert.NotNil(t, deps.authHandler)
		assert.NotNil(t, deps.changeHandler)
		assert.NotNil(t, deps.pageHandler)
	})

	t.Run("С MinIO архив подключается", func(t *testing.T) {
		newPostgresDB = mockPostgresDB(t)
		cfg := baseConfig()
		cfg.MinioEndpoint = newBucketServer(t)
		cfg.MinioUser = "user"
		cfg.MinioPassword = "password"
		cfg.MinioBucket = "pagekeeper-snapshots"

		deps, err := setupDependencies(context.Background(), cfg)
		require.NoError(t, err)
		defer deps.db.Close()

		assert.NotNil(t, deps.archive)
	})
}
