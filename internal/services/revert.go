package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/maynagashev/pagekeeper/internal/fieldmap"
	"github.com/maynagashev/pagekeeper/internal/models"
)

// revertState - шаг отката поля.
type revertState string

const (
	stateFetching        revertState = "Fetching"
	stateUpdating        revertState = "Updating"
	stateRecording       revertState = "Recording"
	stateSnapshotRefresh revertState = "SnapshotRefresh"
	stateDone            revertState = "Done"
	stateFailed          revertState = "Failed"
)

// revertRun ведет один откат по шагам и пишет переходы в лог.
type revertRun struct {
	req   models.RevertRequest
	state revertState
}

func (r *revertRun) enter(next revertState) {
	log.Printf("[RevertService] Страница %s, поле %s: %s -> %s", r.req.PageID, r.req.FieldName, r.state, next)
	r.state = next
}

func (r *revertRun) fail(sentinel, err error) error {
	log.Printf("[RevertService] Откат страницы %s прерван на шаге %s: %v", r.req.PageID, r.state, err)
	r.enter(stateFailed)
	return wrap(sentinel, err)
}

func validateRevert(req models.RevertRequest) error {
	switch {
	case req.UserID <= 0:
		return validationError("не указан userId")
	case req.PageID == "":
		return validationError("не указан pageId")
	case req.FieldName == "":
		return validationError("не указан fieldName")
	case req.ExternalToken == "":
		return validationError("не указан externalToken")
	case !fieldmap.IsKnown(req.FieldName):
		return validationError("неизвестное поле '%s'", req.FieldName)
	}
	return nil
}

// Revert возвращает одно поле страницы к заданному значению.
// Ошибки журнала и снимка после успешного PATCH не отменяют откат,
// они возвращаются как предупреждения.
func (s *changeService) Revert(ctx context.Context, req models.RevertRequest) (*models.RevertResponse, error) {
	if err := validateRevert(req); err != nil {
		return nil, err
	}
	property, _ := fieldmap.ExternalName(req.FieldName)

	pageType, err := resolvePageType(ctx, s.pageTypes, req.UserID, req.PageID)
	if err != nil {
		return nil, err
	}

	run := &revertRun{req: req}
	run.enter(stateFetching)
	page, err := s.pages.GetPage(ctx, req.ExternalToken, pageType, req.PageID)
	if err != nil {
		return nil, run.fail(ErrExternalFetch, err)
	}
	oldValue := page.Properties[property]

	run.enter(stateUpdating)
	if _, err = s.pages.UpdatePage(ctx, req.ExternalToken, pageType, req.PageID,
		map[string]any{property: req.RevertValue}); err != nil {
		return nil, run.fail(ErrExternalUpdate, err)
	}

	resp := &models.RevertResponse{Success: true, OldValue: oldValue, NewValue: req.RevertValue}

	run.enter(stateRecording)
	record := &models.ChangeRecord{
		UserID:     req.UserID,
		PageID:     req.PageID,
		FieldName:  req.FieldName,
		OldValue:   models.JSONValue{V: oldValue},
		NewValue:   models.JSONValue{V: req.RevertValue},
		ChangeType: models.ChangeTypeUpdate,
		Source:     models.ChangeSourceRevert,
		ChangedBy:  req.UserID,
		ChangedAt:  s.opts.now().UTC(),
	}
	if err = s.changes.CreateChange(ctx, record); err != nil {
		log.Printf("[RevertService] Запись журнала для страницы %s не сохранена: %v", req.PageID, err)
		resp.Warnings = append(resp.Warnings, fmt.Sprintf("журнал изменений не обновлен: %v", err))
	}

	run.enter(stateSnapshotRefresh)
	content := fieldmap.ToInternal(page.Properties)
	content[req.FieldName] = req.RevertValue
	snapshot := snapshotFromPage(req.UserID, page, content, s.opts.today())
	snapshot.PageID = req.PageID
	overlayIdentity(snapshot, req.FieldName, req.RevertValue)
	if _, err = s.snapshots.UpsertSnapshot(ctx, snapshot); err != nil {
		log.Printf("[RevertService] Снимок страницы %s не обновлен: %v", req.PageID, err)
		resp.Warnings = append(resp.Warnings, fmt.Sprintf("снимок страницы не обновлен: %v", err))
	}

	run.enter(stateDone)
	return resp, nil
}

// overlayIdentity синхронизирует колонки снимка с откатываемым полем.
// URL страницы строит HubSpot; при откате slug путь URL переписывается,
// только если он совпадает со старым slug, иначе URL остается прежним до
// следующего бэкапа.
func overlayIdentity(snapshot *models.PageSnapshot, field string, value any) {
	s, ok := value.(string)
	if !ok {
		return
	}
	switch field {
	case fieldmap.FieldName:
		snapshot.PageName = s
	case fieldmap.FieldSlug:
		snapshot.URL = replaceSlugInURL(snapshot.URL, snapshot.Slug, s)
		snapshot.Slug = s
	}
}

func replaceSlugInURL(pageURL, oldSlug, newSlug string) string {
	u, err := url.Parse(pageURL)
	if err != nil || oldSlug == "" || strings.Trim(u.Path, "/") != oldSlug {
		return pageURL
	}
	u.Path = "/" + newSlug
	u.RawPath = ""
	return u.String()
}
