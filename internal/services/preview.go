package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/maynagashev/pagekeeper/internal/diff"
	"github.com/maynagashev/pagekeeper/internal/fieldmap"
	"github.com/maynagashev/pagekeeper/internal/models"
	"github.com/maynagashev/pagekeeper/internal/repository"
)

// Preview сравнивает отредактированную пользователем вкладку с последними снимками.
// Каждый найденный дифф можно без изменений отправить в Sync.
func (s *pageService) Preview(ctx context.Context, req models.PreviewRequest) (*models.PreviewResponse, error) {
	switch {
	case req.UserID <= 0:
		return nil, validationError("не указан userId")
	case req.SheetsToken == "":
		return nil, validationError("не указан sheetsToken")
	case req.SpreadsheetID == "":
		return nil, validationError("не указан spreadsheetId")
	case req.TabName == "":
		return nil, validationError("не указан tabName")
	}

	rows, err := s.sheets.ReadRows(ctx, req.SheetsToken, req.SpreadsheetID, req.TabName)
	if err != nil {
		return nil, wrap(ErrSpreadsheet, err)
	}

	resp := &models.PreviewResponse{Success: true, Diffs: []models.FieldDiff{}, Changes: []models.PendingChange{}}
	if len(rows) == 0 {
		return resp, nil
	}

	columns := make([]string, len(rows[0]))
	idColumn := -1
	for i, cell := range rows[0] {
		columns[i] = strings.TrimSpace(fmt.Sprint(cell))
		if columns[i] == columnPageID {
			idColumn = i
		}
	}
	if idColumn < 0 {
		return nil, validationError("во вкладке '%s' нет колонки %s", req.TabName, columnPageID)
	}

	for _, row := range rows[1:] {
		pageID := cellAt(row, idColumn)
		if pageID == "" {
			continue
		}

		snapshot, err := s.snapshots.GetLatestSnapshot(ctx, req.UserID, pageID)
		if err != nil {
			if errors.Is(err, repository.ErrSnapshotNotFound) {
				resp.Unknown = append(resp.Unknown, pageID)
				continue
			}
			return nil, wrap(ErrPersistence, err)
		}

		// Сравниваются только колонки, которые есть во вкладке
		edited := map[string]any{}
		stored := map[string]any{}
		for i, column := range columns {
			if !fieldmap.IsKnown(column) {
				continue
			}
			edited[column] = cellAt(row, i)
			stored[column] = cellText(snapshot.Content[column])
		}

		result, err := diff.Compute(
			diff.Page{ID: pageID, Name: snapshot.PageName, Fields: stored},
			diff.Page{ID: pageID, Name: snapshot.PageName, Fields: edited},
		)
		if err != nil {
			return nil, wrap(ErrValidation, err)
		}
		if !result.Empty() {
			resp.Diffs = append(resp.Diffs, *result)
			resp.Changes = append(resp.Changes, result.Pending())
		}
	}

	log.Printf("[PreviewService] Вкладка '%s': изменено страниц %d, без снимка %d",
		req.TabName, len(resp.Diffs), len(resp.Unknown))
	return resp, nil
}

// cellAt возвращает текст ячейки; Sheets не отдает пустые ячейки в конце строки.
func cellAt(row []any, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	return fmt.Sprint(row[i])
}
