package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/maynagashev/pagekeeper/internal/fieldmap"
	"github.com/maynagashev/pagekeeper/internal/hubspot"
	"github.com/maynagashev/pagekeeper/internal/models"
	"github.com/maynagashev/pagekeeper/internal/repository"
)

// Sync отправляет пакет изменений в HubSpot: одна страница - один PATCH.
// Страницы обрабатываются последовательно в порядке запроса; ошибка одной
// страницы не прерывает остальные. Ошибкой всего запроса бывает только
// некорректный запрос.
func (s *changeService) Sync(ctx context.Context, req models.SyncRequest) (*models.SyncResponse, error) {
	switch {
	case req.UserID <= 0:
		return nil, validationError("не указан userId")
	case req.ExternalToken == "":
		return nil, validationError("не указан externalToken")
	case req.Changes == nil:
		return nil, validationError("не указан список changes")
	}

	resp := &models.SyncResponse{
		Success:   true,
		Succeeded: []models.SyncItem{},
		Failed:    []models.SyncItem{},
	}

	for _, change := range req.Changes {
		item := models.SyncItem{PageID: change.PageID, PageName: change.PageName}

		outcome, err := s.syncPage(ctx, req, change)
		switch {
		case err != nil:
			item.Error = err.Error()
			item.Reason = failureReason(err)
			log.Printf("[SyncService] Страница %s не синхронизирована (%s): %v", change.PageID, item.Reason, err)
			resp.Failed = append(resp.Failed, item)
		case outcome == syncSkipped:
			log.Printf("[SyncService] Страница %s пропущена: нет известных полей", change.PageID)
			resp.Skipped = append(resp.Skipped, item)
		default:
			resp.Succeeded = append(resp.Succeeded, item)
		}
	}

	log.Printf("[SyncService] Пользователь %d: успешно %d, ошибок %d, пропущено %d",
		req.UserID, len(resp.Succeeded), len(resp.Failed), len(resp.Skipped))
	return resp, nil
}

type syncOutcome int

const (
	syncApplied syncOutcome = iota
	syncSkipped
)

func (s *changeService) syncPage(ctx context.Context, req models.SyncRequest, change models.PendingChange) (syncOutcome, error) {
	if change.PageID == "" {
		return 0, validationError("не указан pageId")
	}

	backup, err := s.pageTypes.GetPageType(ctx, req.UserID, change.PageID)
	if err != nil {
		// Без бэкапа тип страницы неизвестен, угадывать эндпоинт при пакетной записи не стоит
		if errors.Is(err, repository.ErrPageTypeNotFound) {
			return 0, wrap(ErrUnsupportedPageType, err)
		}
		return 0, wrap(ErrPersistence, err)
	}
	if !hubspot.SupportedPageType(backup.PageType) {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedPageType, backup.PageType)
	}

	fields := make([]string, 0, len(change.Fields))
	values := make(map[string]any, len(change.Fields))
	for field, pair := range change.Fields {
		if fieldmap.IsKnown(field) {
			fields = append(fields, field)
			values[field] = pair.New
		}
	}
	properties := fieldmap.ToExternal(values)
	if len(properties) == 0 {
		return syncSkipped, nil
	}
	sort.Strings(fields)

	updated, err := s.pages.UpdatePage(ctx, req.ExternalToken, backup.PageType, change.PageID, properties)
	if err != nil {
		return 0, wrap(ErrExternalUpdate, err)
	}

	// Страница в HubSpot уже изменена: ошибки журнала и снимка только логируем
	changedAt := s.opts.now().UTC()
	for _, field := range fields {
		record := &models.ChangeRecord{
			UserID:     req.UserID,
			PageID:     change.PageID,
			FieldName:  field,
			OldValue:   models.JSONValue{V: change.Fields[field].Old},
			NewValue:   models.JSONValue{V: change.Fields[field].New},
			ChangeType: models.ChangeTypeUpdate,
			Source:     models.ChangeSourceSync,
			ChangedBy:  req.UserID,
			ChangedAt:  changedAt,
		}
		if err = s.changes.CreateChange(ctx, record); err != nil {
			log.Printf("[SyncService] Запись журнала %s/%s не сохранена: %v", change.PageID, field, err)
		}
	}

	if len(updated.Properties) == 0 {
		log.Printf("[SyncService] HubSpot вернул страницу %s без свойств, снимок обновит следующий бэкап", change.PageID)
		return syncApplied, nil
	}
	snapshot := snapshotFromPage(req.UserID, updated, fieldmap.ToInternal(updated.Properties), s.opts.today())
	snapshot.PageID = change.PageID
	if snapshot.PageName == "" {
		snapshot.PageName = change.PageName
	}
	if _, err = s.snapshots.UpsertSnapshot(ctx, snapshot); err != nil {
		log.Printf("[SyncService] Снимок страницы %s не обновлен: %v", change.PageID, err)
	}

	return syncApplied, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return ReasonValidation
	case errors.Is(err, ErrUnsupportedPageType):
		return ReasonUnsupportedPageType
	case errors.Is(err, ErrExternalUpdate):
		return ReasonExternalUpdate
	default:
		return ReasonPersistence
	}
}
