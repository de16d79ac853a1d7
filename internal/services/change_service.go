package services

import (
	"context"
	"log"

	"github.com/maynagashev/pagekeeper/internal/hubspot"
	"github.com/maynagashev/pagekeeper/internal/models"
	"github.com/maynagashev/pagekeeper/internal/repository"
)

// ChangeService определяет операции, меняющие страницы HubSpot, и чтение журнала.
type ChangeService interface {
	Revert(ctx context.Context, req models.RevertRequest) (*models.RevertResponse, error)
	Sync(ctx context.Context, req models.SyncRequest) (*models.SyncResponse, error)
	History(ctx context.Context, userID int64, date, pageID string) ([]models.ChangeRecord, error)
}

var _ ChangeService = (*changeService)(nil)

type changeService struct {
	pages     hubspot.PageStore
	snapshots repository.SnapshotRepository
	pageTypes repository.PageTypeRepository
	changes   repository.ChangeRepository
	opts      Options
}

// NewChangeService создает сервис изменений. Клиент HubSpot и репозитории
// создаются один раз при старте, токены HubSpot передаются в каждом запросе.
func NewChangeService(
	pages hubspot.PageStore,
	snapshots repository.SnapshotRepository,
	pageTypes repository.PageTypeRepository,
	changes repository.ChangeRepository,
	opts Options,
) ChangeService {
	return &changeService{
		pages:     pages,
		snapshots: snapshots,
		pageTypes: pageTypes,
		changes:   changes,
		opts:      opts,
	}
}

// History возвращает последние изменения пользователя, новые первыми.
// Дата фильтрует полуинтервал [date 00:00, date+1 00:00) в настроенном поясе.
func (s *changeService) History(ctx context.Context, userID int64, date, pageID string) ([]models.ChangeRecord, error) {
	if userID <= 0 {
		return nil, validationError("не указан userId")
	}

	filter := repository.ChangeFilter{
		UserID: userID,
		PageID: pageID,
		Limit:  repository.MaxChangesLimit,
	}
	if date != "" {
		from, err := s.opts.parseDate(date)
		if err != nil {
			return nil, err
		}
		to := from.AddDate(0, 0, 1)
		filter.From = &from
		filter.To = &to
	}

	changes, err := s.changes.ListChanges(ctx, filter)
	if err != nil {
		log.Printf("[HistoryService] Ошибка чтения журнала пользователя %d: %v", userID, err)
		return nil, wrap(ErrPersistence, err)
	}
	if changes == nil {
		changes = []models.ChangeRecord{}
	}
	return changes, nil
}
