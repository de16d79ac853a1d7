package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/maynagashev/pagekeeper/internal/models"
)

// Ошибки репозитория пользователей.
var (
	ErrUserNotFound  = errors.New("пользователь не найден")
	ErrUsernameTaken = errors.New("имя пользователя уже занято")
)

const userColumns = `id, username, password_hash, created_at, updated_at`

// UserRepository хранит учетные записи пользователей дашборда.
// Имена приходят уже нормализованными из сервиса аутентификации.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

type postgresUserRepository struct {
	db *sqlx.DB
}

// NewPostgresUserRepository создает репозиторий пользователей.
func NewPostgresUserRepository(db *sqlx.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

// CreateUser вставляет пользователя и дописывает в user присвоенные БД
// ID и отметки времени.
func (r *postgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING ` + userColumns

	err := r.db.QueryRowxContext(ctx, query, user.Username, user.PasswordHash).StructScan(user)
	switch {
	case isUniqueViolation(err):
		log.Printf("[UserRepo] Имя '%s' уже зарегистрировано", user.Username)
		return ErrUsernameTaken
	case err != nil:
		log.Printf("[UserRepo] Не удалось сохранить пользователя '%s': %v", user.Username, err)
		return fmt.Errorf("ошибка выполнения запроса на создание пользователя: %w", err)
	}

	log.Printf("[UserRepo] Зарегистрирован пользователь %d ('%s')", user.ID, user.Username)
	return nil
}

// GetUserByUsername возвращает пользователя или ErrUserNotFound.
func (r *postgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user := &models.User{}
	err := r.db.GetContext(ctx, user, query, username)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrUserNotFound
	case err != nil:
		log.Printf("[UserRepo] Не удалось прочитать пользователя '%s': %v", username, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение пользователя: %w", err)
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pq.Error
	return errors.As(err, &pgErr) && pgErr.Code.Name() == "unique_violation"
}
