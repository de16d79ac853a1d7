package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/maynagashev/pagekeeper/internal/models"
)

// SnapshotRepository хранит снимки страниц: одна строка на (пользователь, страница, день).
type SnapshotRepository interface {
	UpsertSnapshot(ctx context.Context, snapshot *models.PageSnapshot) (int64, error)
	GetSnapshot(ctx context.Context, userID int64, pageID string, date time.Time) (*models.PageSnapshot, error)
	GetLatestSnapshot(ctx context.Context, userID int64, pageID string) (*models.PageSnapshot, error)
}

type postgresSnapshotRepository struct {
	db *sqlx.DB
}

// NewPostgresSnapshotRepository создает репозиторий снимков страниц.
func NewPostgresSnapshotRepository(db *sqlx.DB) SnapshotRepository {
	return &postgresSnapshotRepository{db: db}
}

const snapshotColumns = `id, user_id, page_id, page_name, slug, url, content, snapshot_date, created_at, updated_at`

// UpsertSnapshot записывает снимок. Повторная запись за тот же день перезаписывает
// строку (последняя запись побеждает), дубликатов не бывает.
func (r *postgresSnapshotRepository) UpsertSnapshot(
	ctx context.Context,
	snapshot *models.PageSnapshot,
) (int64, error) {
	query := `INSERT INTO page_snapshots (user_id, page_id, page_name, slug, url, content, snapshot_date)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          ON CONFLICT (user_id, page_id, snapshot_date) DO UPDATE
	          SET page_name = EXCLUDED.page_name, slug = EXCLUDED.slug, url = EXCLUDED.url,
	              content = EXCLUDED.content, updated_at = NOW()
	          RETURNING id`
	var id int64

	err := r.db.QueryRowxContext(ctx, query,
		snapshot.UserID, snapshot.PageID, snapshot.PageName, snapshot.Slug, snapshot.URL,
		snapshot.Content, DateKey(snapshot.SnapshotDate),
	).Scan(&id)
	if err != nil {
		log.Printf("[SnapshotRepo] Ошибка записи снимка страницы %s за %s: %v",
			snapshot.PageID, DateKey(snapshot.SnapshotDate), err)
		return 0, fmt.Errorf("ошибка выполнения запроса на запись снимка: %w", err)
	}

	log.Printf("[SnapshotRepo] Снимок страницы %s за %s записан (ID: %d)",
		snapshot.PageID, DateKey(snapshot.SnapshotDate), id)
	return id, nil
}

// GetSnapshot возвращает снимок страницы за указанный день.
func (r *postgresSnapshotRepository) GetSnapshot(
	ctx context.Context,
	userID int64,
	pageID string,
	date time.Time,
) (*models.PageSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM page_snapshots
	          WHERE user_id=$1 AND page_id=$2 AND snapshot_date=$3`
	var snapshot models.PageSnapshot

	if err := r.db.GetContext(ctx, &snapshot, query, userID, pageID, DateKey(date)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		log.Printf("[SnapshotRepo] Ошибка чтения снимка страницы %s за %s: %v", pageID, DateKey(date), err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение снимка: %w", err)
	}
	return &snapshot, nil
}

// GetLatestSnapshot возвращает самый свежий снимок страницы.
func (r *postgresSnapshotRepository) GetLatestSnapshot(
	ctx context.Context,
	userID int64,
	pageID string,
) (*models.PageSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM page_snapshots
	          WHERE user_id=$1 AND page_id=$2
	          ORDER BY snapshot_date DESC
	          LIMIT 1`
	var snapshot models.PageSnapshot

	if err := r.db.GetContext(ctx, &snapshot, query, userID, pageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		log.Printf("[SnapshotRepo] Ошибка чтения последнего снимка страницы %s: %v", pageID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение снимка: %w", err)
	}
	return &snapshot, nil
}

// DateKey форматирует календарный день в часовом поясе самого значения.
func DateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// ErrSnapshotNotFound - снимка за запрошенный день нет.
var ErrSnapshotNotFound = errors.New("снимок страницы не найден")
