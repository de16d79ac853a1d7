package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/maynagashev/pagekeeper/internal/fieldmap"
	"github.com/maynagashev/pagekeeper/internal/hubspot"
	"github.com/maynagashev/pagekeeper/internal/models"
	"github.com/maynagashev/pagekeeper/internal/repository"
	"github.com/maynagashev/pagekeeper/internal/spreadsheet"
	"github.com/maynagashev/pagekeeper/internal/storage"
)

// Служебные колонки вкладки бэкапа. Остальные колонки - внутренние имена полей.
const (
	columnPageID   = "page_id"
	columnPageType = "page_type"
	columnURL      = "url"
)

// backupHeader - первая строка вкладки бэкапа.
func backupHeader() []string {
	return append([]string{columnPageID, columnPageType, columnURL}, fieldmap.Fields()...)
}

// Backup снимает все страницы пользователя: типы страниц, снимки за сегодня,
// архив JSON и, если указана таблица, вкладку с текущими значениями.
// Ошибки записи отдельных страниц не прерывают бэкап.
func (s *pageService) Backup(ctx context.Context, req models.BackupRequest) (*models.BackupResponse, error) {
	switch {
	case req.UserID <= 0:
		return nil, validationError("не указан userId")
	case req.ExternalToken == "":
		return nil, validationError("не указан externalToken")
	case req.SpreadsheetID != "" && req.SheetsToken == "":
		return nil, validationError("для записи в таблицу нужен sheetsToken")
	}

	var pages []hubspot.Page
	for _, pageType := range hubspot.PageTypes() {
		list, err := s.pages.ListPages(ctx, req.ExternalToken, pageType)
		if err != nil {
			log.Printf("[BackupService] Ошибка получения списка %s: %v", pageType, err)
			return nil, wrap(ErrExternalFetch, err)
		}
		pages = append(pages, list...)
	}

	day := s.opts.today()
	resp := &models.BackupResponse{Success: true, SnapshotDate: repository.DateKey(day)}
	for i := range pages {
		if err := s.backupPage(ctx, req.UserID, day, &pages[i]); err != nil {
			log.Printf("[BackupService] Страница %s не сохранена: %v", pages[i].ID, err)
			resp.Failed = append(resp.Failed, pages[i].ID)
			continue
		}
		resp.Pages++
	}
	log.Printf("[BackupService] Пользователь %d: сохранено %d страниц, ошибок %d",
		req.UserID, resp.Pages, len(resp.Failed))

	if req.SpreadsheetID != "" {
		title := req.TabName
		if title == "" {
			title = resp.SnapshotDate
		}
		tab, err := s.writeTab(ctx, req, title, pages)
		resp.Tab = &models.TabInfo{Title: tab.Title, SheetID: tab.SheetID, Status: string(tab.Status)}
		if err != nil {
			resp.Warnings = append(resp.Warnings, err.Error())
		}
	}

	return resp, nil
}

func (s *pageService) backupPage(ctx context.Context, userID int64, day time.Time, page *hubspot.Page) error {
	err := s.pageTypes.UpsertPageType(ctx, &models.PageTypeBackup{
		UserID:   userID,
		PageID:   page.ID,
		PageName: page.Name,
		PageType: page.Type,
	})
	if err != nil {
		return wrap(ErrPersistence, err)
	}

	snapshot := snapshotFromPage(userID, page, fieldmap.ToInternal(page.Properties), day)
	if _, err = s.snapshots.UpsertSnapshot(ctx, snapshot); err != nil {
		return wrap(ErrPersistence, err)
	}

	if s.archive == nil {
		return nil
	}
	raw, err := json.Marshal(page.Properties)
	if err != nil {
		log.Printf("[BackupService] Не удалось сериализовать страницу %s: %v", page.ID, err)
		return nil
	}
	// Архив вспомогательный: его ошибка не делает страницу несохраненной
	if err = s.archive.ArchiveSnapshot(ctx, storage.SnapshotKey(userID, page.ID, repository.DateKey(day)), raw); err != nil {
		log.Printf("[BackupService] Страница %s не заархивирована: %v", page.ID, err)
	}
	return nil
}

// writeTab находит или создает вкладку, пишет в нее страницы и оформляет заголовок.
// Вкладка определяется один раз, ее sheetId передается в форматирование явно.
func (s *pageService) writeTab(
	ctx context.Context,
	req models.BackupRequest,
	title string,
	pages []hubspot.Page,
) (spreadsheet.Tab, error) {
	tab, err := s.sheets.EnsureTab(ctx, req.SheetsToken, req.SpreadsheetID, title)
	if err != nil {
		return tab, wrap(ErrSpreadsheet, err)
	}

	header := backupHeader()
	rows := make([][]any, 0, len(pages)+1)
	headerRow := make([]any, len(header))
	for i, column := range header {
		headerRow[i] = column
	}
	rows = append(rows, headerRow)
	for i := range pages {
		rows = append(rows, backupRow(&pages[i], header))
	}

	if err = s.sheets.WriteRows(ctx, req.SheetsToken, req.SpreadsheetID, tab.Title, rows); err != nil {
		return tab, wrap(ErrSpreadsheet, err)
	}
	if err = s.sheets.FormatHeader(ctx, req.SheetsToken, req.SpreadsheetID, tab.SheetID, len(header)); err != nil {
		return tab, fmt.Errorf("данные записаны, но заголовок не оформлен: %w", wrap(ErrSpreadsheet, err))
	}
	return tab, nil
}

func backupRow(page *hubspot.Page, header []string) []any {
	fields := fieldmap.ToInternal(page.Properties)
	row := make([]any, len(header))
	for i, column := range header {
		switch column {
		case columnPageID:
			row[i] = page.ID
		case columnPageType:
			row[i] = page.Type
		case columnURL:
			row[i] = page.URL
		default:
			row[i] = cellText(fields[column])
		}
	}
	return row
}

// cellText приводит значение поля к тексту ячейки. Тем же правилом
// предпросмотр приводит значения снимка перед сравнением.
func cellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
}
