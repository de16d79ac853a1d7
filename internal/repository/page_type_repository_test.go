package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/pagekeeper/internal/models"
	"github.com/maynagashev/pagekeeper/internal/repository"
)

func setupPageTypeRepoMock(t *testing.T) (repository.PageTypeRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewPostgresPageTypeRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestUpsertPageType(t *testing.T) {
	backup := &models.PageTypeBackup{UserID: 7, PageID: "101", PageName: "Главная", PageType: models.PageTypeLanding}
	query := regexp.QuoteMeta(`INSERT INTO page_type_backups`)

	t.Run("Успешная запись", func(t *testing.T) {
		repo, mock := setupPageTypeRepoMock(t)
		mock.ExpectExec(query).
			WithArgs(int64(7), "101", "Главная", "landing_page").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpsertPageType(context.Background(), backup))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Ошибка базы данных", func(t *testing.T) {
		repo, mock := setupPageTypeRepoMock(t)
		mock.ExpectExec(query).WillReturnError(errors.New("boom"))

		err := repo.UpsertPageType(context.Background(), backup)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ошибка выполнения запроса")
	})
}

func TestGetPageType(t *testing.T) {
	query := regexp.QuoteMeta(`FROM page_type_backups WHERE user_id=$1 AND page_id=$2`)

	t.Run("Тип найден", func(t *testing.T) {
		repo, mock := setupPageTypeRepoMock(t)
		rows := sqlmock.NewRows([]string{"user_id", "page_id", "page_name", "page_type", "updated_at"}).
			AddRow(int64(7), "101", "Главная", "site_page", time.Now())
		mock.ExpectQuery(query).WithArgs(int64(7), "101").WillReturnRows(rows)

		got, err := repo.GetPageType(context.Background(), 7, "101")
		require.NoError(t, err)
		assert.Equal(t, models.PageTypeSite, got.PageType)
	})

	t.Run("Тип неизвестен", func(t *testing.T) {
		repo, mock := setupPageTypeRepoMock(t)
		mock.ExpectQuery(query).WithArgs(int64(7), "404").WillReturnError(sql.ErrNoRows)

		got, err := repo.GetPageType(context.Background(), 7, "404")
		require.ErrorIs(t, err, repository.ErrPageTypeNotFound)
		assert.Nil(t, got)
	})
}
