package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/maynagashev/pagekeeper/internal/hubspot"
	"github.com/maynagashev/pagekeeper/internal/spreadsheet"
	"github.com/maynagashev/pagekeeper/internal/storage"
)

// PageStore - мок hubspot.PageStore.
type PageStore struct {
	mock.Mock
}

var _ hubspot.PageStore = (*PageStore)(nil)

func (m *PageStore) GetPage(ctx context.Context, token, pageType, pageID string) (*hubspot.Page, error) {
	args := m.Called(ctx, token, pageType, pageID)
	page, _ := args.Get(0).(*hubspot.Page)
	return page, args.Error(1)
}

func (m *PageStore) UpdatePage(
	ctx context.Context,
	token, pageType, pageID string,
	properties map[string]any,
) (*hubspot.Page, error) {
	args := m.Called(ctx, token, pageType, pageID, properties)
	page, _ := args.Get(0).(*hubspot.Page)
	return page, args.Error(1)
}

func (m *PageStore) ListPages(ctx context.Context, token, pageType string) ([]hubspot.Page, error) {
	args := m.Called(ctx, token, pageType)
	pages, _ := args.Get(0).([]hubspot.Page)
	return pages, args.Error(1)
}

// SpreadsheetStore - мок spreadsheet.Store.
type SpreadsheetStore struct {
	mock.Mock
}

var _ spreadsheet.Store = (*SpreadsheetStore)(nil)

func (m *SpreadsheetStore) EnsureTab(ctx context.Context, token, spreadsheetID, title string) (spreadsheet.Tab, error) {
	args := m.Called(ctx, token, spreadsheetID, title)
	return args.Get(0).(spreadsheet.Tab), args.Error(1)
}

func (m *SpreadsheetStore) WriteRows(ctx context.Context, token, spreadsheetID, title string, rows [][]any) error {
	return m.Called(ctx, token, spreadsheetID, title, rows).Error(0)
}

func (m *SpreadsheetStore) ReadRows(ctx context.Context, token, spreadsheetID, title string) ([][]any, error) {
	args := m.Called(ctx, token, spreadsheetID, title)
	rows, _ := args.Get(0).([][]any)
	return rows, args.Error(1)
}

func (m *SpreadsheetStore) FormatHeader(
	ctx context.Context,
	token, spreadsheetID string,
	sheetID int64,
	columns int,
) error {
	return m.Called(ctx, token, spreadsheetID, sheetID, columns).Error(0)
}

// SnapshotArchive - мок storage.SnapshotArchive.
type SnapshotArchive struct {
	mock.Mock
}

var _ storage.SnapshotArchive = (*SnapshotArchive)(nil)

func (m *SnapshotArchive) ArchiveSnapshot(ctx context.Context, objectKey string, data []byte) error {
	return m.Called(ctx, objectKey, data).Error(0)
}

func (m *SnapshotArchive) FetchSnapshot(ctx context.Context, objectKey string) ([]byte, error) {
	args := m.Called(ctx, objectKey)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}
