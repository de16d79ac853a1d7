package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/maynagashev/pagekeeper/internal/hubspot"
)

const (
	defaultServerPort = "8080"
	defaultTimeZone   = "UTC"

	// Переменные окружения.
	envServerPort      = "SERVER_PORT"
	envTLSCertFile     = "TLS_CERT_FILE"
	envTLSKeyFile      = "TLS_KEY_FILE"
	envDatabaseDSN     = "DATABASE_DSN"
	envJWTSecret       = "JWT_SECRET" //nolint:gosec // имя переменной окружения, не секрет
	envHubSpotURL      = "HUBSPOT_BASE_URL"
	envTimeZone        = "TIME_ZONE"
	envMinioEndpoint   = "MINIO_ENDPOINT"
	envMinioUser       = "MINIO_USER"
	envMinioPassword   = "MINIO_PASSWORD" //nolint:gosec // имя переменной окружения, не секрет
	envMinioBucket     = "MINIO_BUCKET"
	envMinioUseSSL     = "MINIO_USE_SSL"
	defaultMinioBucket = "pagekeeper-snapshots"
)

// config хранит конфигурацию сервера.
type config struct {
	Port        string
	CertFile    string
	KeyFile     string
	DatabaseDSN string
	JWTSecret   string
	HubSpotURL  string
	TimeZone    string
	Location    *time.Location

	// Архив снимков в MinIO включается, если указан MinioEndpoint.
	MinioEndpoint string
	MinioUser     string
	MinioPassword string
	MinioBucket   string
	MinioUseSSL   bool
}

// TLSEnabled сообщает, нужно ли поднимать HTTPS.
func (c *config) TLSEnabled() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

// parseFlags разбирает флаги и переменные окружения, возвращает config или ошибку.
// Флаг имеет приоритет над переменной окружения.
func parseFlags() (*config, error) {
	cfg := &config{}
	var minioSSL string

	flag.StringVar(&cfg.Port, "port", "",
		fmt.Sprintf("Порт HTTP-сервера (env: %s, default: %s)", envServerPort, defaultServerPort))
	flag.StringVar(&cfg.CertFile, "cert-file", "",
		fmt.Sprintf("Путь к файлу TLS-сертификата (env: %s)", envTLSCertFile))
	flag.StringVar(&cfg.KeyFile, "key-file", "",
		fmt.Sprintf("Путь к файлу TLS-ключа (env: %s)", envTLSKeyFile))
	flag.StringVar(&cfg.DatabaseDSN, "database-dsn", "",
		fmt.Sprintf("Строка подключения к базе данных (env: %s)", envDatabaseDSN))
	flag.StringVar(&cfg.JWTSecret, "jwt-secret", "",
		fmt.Sprintf("Ключ подписи JWT (env: %s)", envJWTSecret))
	flag.StringVar(&cfg.HubSpotURL, "hubspot-url", "",
		fmt.Sprintf("Базовый URL API HubSpot (env: %s, default: %s)", envHubSpotURL, hubspot.DefaultBaseURL))
	flag.StringVar(&cfg.TimeZone, "time-zone", "",
		fmt.Sprintf("Часовой пояс календарных дней снимков (env: %s, default: %s)", envTimeZone, defaultTimeZone))
	flag.StringVar(&cfg.MinioEndpoint, "minio-endpoint", "",
		fmt.Sprintf("Адрес MinIO для архива снимков, пусто - без архива (env: %s)", envMinioEndpoint))
	flag.StringVar(&cfg.MinioUser, "minio-user", "", fmt.Sprintf("Логин MinIO (env: %s)", envMinioUser))
	flag.StringVar(&cfg.MinioPassword, "minio-password", "", fmt.Sprintf("Пароль MinIO (env: %s)", envMinioPassword))
	flag.StringVar(&cfg.MinioBucket, "minio-bucket", "",
		fmt.Sprintf("Бакет архива (env: %s, default: %s)", envMinioBucket, defaultMinioBucket))
	flag.StringVar(&minioSSL, "minio-ssl", "", fmt.Sprintf("Подключаться к MinIO по TLS (env: %s)", envMinioUseSSL))

	flag.Parse()

	fromEnv(&cfg.Port, envServerPort, defaultServerPort)
	fromEnv(&cfg.CertFile, envTLSCertFile, "")
	fromEnv(&cfg.KeyFile, envTLSKeyFile, "")
	fromEnv(&cfg.DatabaseDSN, envDatabaseDSN, "")
	fromEnv(&cfg.JWTSecret, envJWTSecret, "")
	fromEnv(&cfg.HubSpotURL, envHubSpotURL, hubspot.DefaultBaseURL)
	fromEnv(&cfg.TimeZone, envTimeZone, defaultTimeZone)
	fromEnv(&cfg.MinioEndpoint, envMinioEndpoint, "")
	fromEnv(&cfg.MinioUser, envMinioUser, "")
	fromEnv(&cfg.MinioPassword, envMinioPassword, "")
	fromEnv(&cfg.MinioBucket, envMinioBucket, defaultMinioBucket)
	fromEnv(&minioSSL, envMinioUseSSL, "false")

	// Проверяем обязательные параметры
	if cfg.DatabaseDSN == "" {
		return nil, errors.New("не указана строка подключения к БД (--database-dsn или " + envDatabaseDSN + ")")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("не указан ключ подписи JWT (--jwt-secret или " + envJWTSecret + ")")
	}
	if (cfg.CertFile == "") != (cfg.KeyFile == "") {
		return nil, errors.New("для HTTPS нужны и сертификат, и ключ (--cert-file и --key-file)")
	}

	location, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("неизвестный часовой пояс '%s': %w", cfg.TimeZone, err)
	}
	cfg.Location = location

	cfg.MinioUseSSL, err = strconv.ParseBool(minioSSL)
	if err != nil {
		return nil, fmt.Errorf("некорректное значение minio-ssl '%s': %w", minioSSL, err)
	}

	return cfg, nil
}

// fromEnv заполняет незаданный флагом параметр из окружения или значением по умолчанию.
func fromEnv(target *string, key, fallback string) {
	if *target != "" {
		return
	}
	if value, ok := os.LookupEnv(key); ok {
		*target = value
		return
	}
	*target = fallback
}
