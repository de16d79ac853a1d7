package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/maynagashev/pagekeeper/internal/diff"
	"github.com/maynagashev/pagekeeper/internal/fieldmap"
	"github.com/maynagashev/pagekeeper/internal/hubspot"
	"github.com/maynagashev/pagekeeper/internal/models"
	"github.com/maynagashev/pagekeeper/internal/repository"
	"github.com/maynagashev/pagekeeper/internal/spreadsheet"
	"github.com/maynagashev/pagekeeper/internal/storage"
)

// PageService определяет операции чтения страниц: бэкап, сравнение и предпросмотр.
type PageService interface {
	Backup(ctx context.Context, req models.BackupRequest) (*models.BackupResponse, error)
	Preview(ctx context.Context, req models.PreviewRequest) (*models.PreviewResponse, error)
	Compare(ctx context.Context, req models.CompareRequest) (*models.CompareResponse, error)
	ArchivedPage(ctx context.Context, userID int64, pageID, date string) (json.RawMessage, error)
}

var _ PageService = (*pageService)(nil)

type pageService struct {
	pages     hubspot.PageStore
	sheets    spreadsheet.Store
	archive   storage.SnapshotArchive // nil, если архив не настроен
	snapshots repository.SnapshotRepository
	pageTypes repository.PageTypeRepository
	opts      Options
}

// NewPageService создает сервис страниц. archive может быть nil.
func NewPageService(
	pages hubspot.PageStore,
	sheets spreadsheet.Store,
	archive storage.SnapshotArchive,
	snapshots repository.SnapshotRepository,
	pageTypes repository.PageTypeRepository,
	opts Options,
) PageService {
	return &pageService{
		pages:     pages,
		sheets:    sheets,
		archive:   archive,
		snapshots: snapshots,
		pageTypes: pageTypes,
		opts:      opts,
	}
}

// Compare сравнивает снимок страницы за дату (old) с текущим состоянием в HubSpot (new).
func (s *pageService) Compare(ctx context.Context, req models.CompareRequest) (*models.CompareResponse, error) {
	switch {
	case req.UserID <= 0:
		return nil, validationError("не указан userId")
	case req.PageID == "":
		return nil, validationError("не указан pageId")
	case req.ExternalToken == "":
		return nil, validationError("не указан externalToken")
	}
	day, err := s.opts.parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.snapshots.GetSnapshot(ctx, req.UserID, req.PageID, day)
	if err != nil {
		if errors.Is(err, repository.ErrSnapshotNotFound) {
			return nil, wrap(ErrSnapshotNotFound, err)
		}
		return nil, wrap(ErrPersistence, err)
	}

	pageType, err := resolvePageType(ctx, s.pageTypes, req.UserID, req.PageID)
	if err != nil {
		return nil, err
	}
	page, err := s.pages.GetPage(ctx, req.ExternalToken, pageType, req.PageID)
	if err != nil {
		return nil, wrap(ErrExternalFetch, err)
	}

	stored := map[string]any(snapshot.Content)
	if stored == nil {
		stored = map[string]any{}
	}
	result, err := diff.Compute(
		diff.Page{ID: req.PageID, Name: snapshot.PageName, Fields: stored},
		diff.Page{ID: req.PageID, Name: page.Name, Fields: fieldmap.ToInternal(page.Properties)},
	)
	if err != nil {
		return nil, wrap(ErrValidation, err)
	}

	log.Printf("[CompareService] Страница %s за %s: отличий %d", req.PageID, req.Date, len(result.Changes))
	return &models.CompareResponse{Success: true, Diff: result}, nil
}

// ArchivedPage возвращает сырой JSON страницы из архива за дату.
func (s *pageService) ArchivedPage(ctx context.Context, userID int64, pageID, date string) (json.RawMessage, error) {
	switch {
	case userID <= 0:
		return nil, validationError("не указан userId")
	case pageID == "":
		return nil, validationError("не указан pageId")
	}
	day, err := s.opts.parseDate(date)
	if err != nil {
		return nil, err
	}
	if s.archive == nil {
		return nil, wrap(ErrSnapshotNotFound, errors.New("архив снимков не настроен"))
	}

	data, err := s.archive.FetchSnapshot(ctx, storage.SnapshotKey(userID, pageID, repository.DateKey(day)))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, wrap(ErrSnapshotNotFound, err)
		}
		return nil, wrap(ErrPersistence, err)
	}
	return json.RawMessage(data), nil
}
