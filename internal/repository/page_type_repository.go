package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"github.com/maynagashev/pagekeeper/internal/models"
)

// PageTypeRepository хранит типы страниц, запомненные при бэкапе.
type PageTypeRepository interface {
	UpsertPageType(ctx context.Context, backup *models.PageTypeBackup) error
	GetPageType(ctx context.Context, userID int64, pageID string) (*models.PageTypeBackup, error)
}

type postgresPageTypeRepository struct {
	db *sqlx.DB
}

// NewPostgresPageTypeRepository создает репозиторий типов страниц.
func NewPostgresPageTypeRepository(db *sqlx.DB) PageTypeRepository {
	return &postgresPageTypeRepository{db: db}
}

// UpsertPageType запоминает тип страницы.
func (r *postgresPageTypeRepository) UpsertPageType(ctx context.Context, backup *models.PageTypeBackup) error {
	query := `INSERT INTO page_type_backups (user_id, page_id, page_name, page_type)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (user_id, page_id) DO UPDATE
	          SET page_name = EXCLUDED.page_name, page_type = EXCLUDED.page_type, updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query,
		backup.UserID, backup.PageID, backup.PageName, backup.PageType); err != nil {
		log.Printf("[PageTypeRepo] Ошибка записи типа страницы %s: %v", backup.PageID, err)
		return fmt.Errorf("ошибка выполнения запроса на запись типа страницы: %w", err)
	}
	return nil
}

// GetPageType возвращает сохраненный тип страницы или ErrPageTypeNotFound.
func (r *postgresPageTypeRepository) GetPageType(
	ctx context.Context,
	userID int64,
	pageID string,
) (*models.PageTypeBackup, error) {
	query := `SELECT user_id, page_id, page_name, page_type, updated_at
	          FROM page_type_backups WHERE user_id=$1 AND page_id=$2`
	var backup models.PageTypeBackup

	if err := r.db.GetContext(ctx, &backup, query, userID, pageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[PageTypeRepo] Тип страницы %s пользователя %d неизвестен", pageID, userID)
			return nil, ErrPageTypeNotFound
		}
		log.Printf("[PageTypeRepo] Ошибка чтения типа страницы %s: %v", pageID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение типа страницы: %w", err)
	}
	return &backup, nil
}

// ErrPageTypeNotFound - для страницы нет сохраненного типа.
var ErrPageTypeNotFound = errors.New("тип страницы не найден")
