package repository

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/maynagashev/pagekeeper/internal/models"
)

// MaxChangesLimit ограничивает размер ответа журнала изменений.
const MaxChangesLimit = 100

// ChangeFilter - условия выборки журнала изменений.
// From включительно, To не включительно.
type ChangeFilter struct {
	UserID int64
	PageID string
	From   *time.Time
	To     *time.Time
	Limit  int
}

// ChangeRepository - журнал изменений, только добавление и чтение.
type ChangeRepository interface {
	CreateChange(ctx context.Context, change *models.ChangeRecord) error
	ListChanges(ctx context.Context, filter ChangeFilter) ([]models.ChangeRecord, error)
}

type postgresChangeRepository struct {
	db *sqlx.DB
}

// NewPostgresChangeRepository создает репозиторий журнала изменений.
func NewPostgresChangeRepository(db *sqlx.DB) ChangeRepository {
	return &postgresChangeRepository{db: db}
}

// CreateChange добавляет запись в журнал. Пустые ID, тип и время заполняются здесь.
func (r *postgresChangeRepository) CreateChange(ctx context.Context, change *models.ChangeRecord) error {
	if change.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("ошибка генерации ID записи журнала: %w", err)
		}
		change.ID = id.String()
	}
	if change.ChangeType == "" {
		change.ChangeType = models.ChangeTypeUpdate
	}
	if change.ChangedAt.IsZero() {
		change.ChangedAt = time.Now().UTC()
	}

	query := `INSERT INTO change_records
	          (id, user_id, page_id, field_name, old_value, new_value, change_type, source, changed_by, changed_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		change.ID, change.UserID, change.PageID, change.FieldName, change.OldValue, change.NewValue,
		change.ChangeType, change.Source, change.ChangedBy, change.ChangedAt,
	)
	if err != nil {
		log.Printf("[ChangeRepo] Ошибка записи изменения поля %s страницы %s: %v", change.FieldName, change.PageID, err)
		return fmt.Errorf("ошибка выполнения запроса на запись изменения: %w", err)
	}

	log.Printf("[ChangeRepo] Изменение %s (страница %s, поле %s) записано", change.ID, change.PageID, change.FieldName)
	return nil
}

// ListChanges возвращает записи пользователя, новые сверху, не более MaxChangesLimit.
func (r *postgresChangeRepository) ListChanges(
	ctx context.Context,
	filter ChangeFilter,
) ([]models.ChangeRecord, error) {
	var (
		conds = []string{"user_id=$1"}
		args  = []any{filter.UserID}
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, cond+"$"+strconv.Itoa(len(args)))
	}
	if filter.PageID != "" {
		add("page_id=", filter.PageID)
	}
	if filter.From != nil {
		add("changed_at>=", *filter.From)
	}
	if filter.To != nil {
		add("changed_at<", *filter.To)
	}

	limit := filter.Limit
	if limit <= 0 || limit > MaxChangesLimit {
		limit = MaxChangesLimit
	}
	args = append(args, limit)

	query := `SELECT id, user_id, page_id, field_name, old_value, new_value, change_type, source, changed_by, changed_at
	          FROM change_records
	          WHERE ` + strings.Join(conds, " AND ") + `
	          ORDER BY changed_at DESC, id DESC
	          LIMIT $` + strconv.Itoa(len(args))

	changes := make([]models.ChangeRecord, 0, limit)
	if err := r.db.SelectContext(ctx, &changes, query, args...); err != nil {
		log.Printf("[ChangeRepo] Ошибка чтения журнала пользователя %d: %v", filter.UserID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение журнала: %w", err)
	}

	log.Printf("[ChangeRepo] Получено %d записей журнала пользователя %d", len(changes), filter.UserID)
	return changes, nil
}
