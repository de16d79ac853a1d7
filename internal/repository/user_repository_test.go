package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/pagekeeper/internal/models"
	"github.com/maynagashev/pagekeeper/internal/repository"
)

func setupUserRepoMock(t *testing.T) (repository.UserRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewPostgresUserRepository(sqlx.NewDb(db, "sqlmock")), mock
}

var userRowColumns = []string{"id", "username", "password_hash", "created_at", "updated_at"}

func TestCreateUser(t *testing.T) {
	created := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	insert := regexp.QuoteMeta(`INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id, username`)

	tests := []struct {
		name      string
		mockSetup func(mock sqlmock.Sqlmock)
		wantErr   error
		wantMsg   string
		wantID    int64
	}{
		{
			name: "ID и время заполняются из RETURNING",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(insert).WithArgs("editor", "hash").
					WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(int64(7), "editor", "hash", created, created))
			},
			wantID: 7,
		},
		{
			name: "Нарушение уникальности имени",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(insert).WithArgs("editor", "hash").
					WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})
			},
			wantErr: repository.ErrUsernameTaken,
		},
		{
			name: "Другая ошибка PostgreSQL не считается занятым именем",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(insert).WithArgs("editor", "hash").
					WillReturnError(&pq.Error{Code: "23502"})
			},
			wantMsg: "ошибка выполнения запроса на создание пользователя",
		},
		{
			name: "Обрыв соединения",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(insert).WillReturnError(errors.New("connection reset"))
			},
			wantMsg: "ошибка выполнения запроса на создание пользователя",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := setupUserRepoMock(t)
			tt.mockSetup(mock)

			user := &models.User{Username: "editor", PasswordHash: "hash"}
			err := repo.CreateUser(context.Background(), user)

			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, user.ID)
			case tt.wantMsg != "":
				require.Error(t, err)
				assert.NotErrorIs(t, err, repository.ErrUsernameTaken)
				assert.Contains(t, err.Error(), tt.wantMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, user.ID)
				assert.Equal(t, created, user.CreatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetUserByUsername(t *testing.T) {
	created := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	query := regexp.QuoteMeta(`FROM users WHERE username = $1`)

	t.Run("Пользователь найден", func(t *testing.T) {
		repo, mock := setupUserRepoMock(t)
		mock.ExpectQuery(query).WithArgs("editor").
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(int64(7), "editor", "hash", created, created))

		user, err := repo.GetUserByUsername(context.Background(), "editor")
		require.NoError(t, err)
		assert.Equal(t, int64(7), user.ID)
		assert.Equal(t, "hash", user.PasswordHash)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Пользователь не найден", func(t *testing.T) {
		repo, mock := setupUserRepoMock(t)
		mock.ExpectQuery(query).WithArgs("ghost").WillReturnRows(sqlmock.NewRows(userRowColumns))

		user, err := repo.GetUserByUsername(context.Background(), "ghost")
		require.ErrorIs(t, err, repository.ErrUserNotFound)
		assert.Nil(t, user)
	})

	t.Run("Ошибка базы данных", func(t *testing.T) {
		repo, mock := setupUserRepoMock(t)
		mock.ExpectQuery(query).WillReturnError(errors.New("connection reset"))

		user, err := repo.GetUserByUsername(context.Background(), "editor")
		require.Error(t, err)
		assert.Nil(t, user)
		assert.Contains(t, err.Error(), "ошибка выполнения запроса на получение пользователя")
	})
}
