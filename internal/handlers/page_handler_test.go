package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/pagekeeper/internal/handlers"
	"github.com/maynagashev/pagekeeper/internal/hubspot"
	"github.com/maynagashev/pagekeeper/internal/mocks"
	"github.com/maynagashev/pagekeeper/internal/models"
	"github.com/maynagashev/pagekeeper/internal/services"
)

func setupPageRouter(svc *mocks.PageService) *chi.Mux {
	h := handlers.NewPageHandler(svc)
	r := chi.NewRouter()
	r.Use(asUser(authUserID))
	r.Post("/backup", h.Backup)
	r.Post("/preview", h.Preview)
	r.Post("/compare", h.Compare)
	r.Get("/archive", h.Archive)
	return r
}

func TestPageHandler_Backup(t *testing.T) {
	svc := new(mocks.PageService)
	svc.On("Backup", mock.Anything, models.BackupRequest{
		UserID: authUserID, ExternalToken: "tok", SheetsToken: "g", SpreadsheetID: "s1",
	}).Return(&models.BackupResponse{
		Success:      true,
		SnapshotDate: "2024-01-15",
		Pages:        3,
		Tab:          &models.TabInfo{Title: "2024-01-15", SheetID: 42, Status: "already-exists"},
	}, nil).Once()

	body := `{"userId": 7, "externalToken": "tok", "sheetsToken": "g", "spreadsheetId": "s1"}`
	rr := httptest.NewRecorder()
	setupPageRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/backup", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp models.BackupResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Pages)
	assert.Equal(t, int64(42), resp.Tab.SheetID)
	assert.Equal(t, "already-exists", resp.Tab.Status)
	svc.AssertExpectations(t)
}

func TestPageHandler_Backup_HubSpotUnauthorized(t *testing.T) {
	svc := new(mocks.PageService)
	svc.On("Backup", mock.Anything, mock.Anything).Return(nil,
		fmt.Errorf("%w: %w", services.ErrExternalFetch, &hubspot.APIError{StatusCode: 401, Message: "expired token"})).Once()

	rr := httptest.NewRecorder()
	setupPageRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/backup",
		strings.NewReader(`{"userId": 7, "externalToken": "old"}`)))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	failure := decodeFailure(t, rr)
	assert.Equal(t, services.ErrExternalFetch.Error(), failure.Error)
	assert.Contains(t, failure.Details, "expired token")
}

func TestPageHandler_Preview(t *testing.T) {
	svc := new(mocks.PageService)
	svc.On("Preview", mock.Anything, models.PreviewRequest{
		UserID: authUserID, SheetsToken: "g", SpreadsheetID: "s1", TabName: "2024-01-15",
	}).Return(&models.PreviewResponse{
		Success: true,
		Diffs: []models.FieldDiff{{
			PageID: "101", PageName: "Главная",
			Changes: []models.FieldChange{{Field: "name", Old: "a", New: "b"}},
		}},
		Changes: []models.PendingChange{{
			PageID: "101", PageName: "Главная",
			Fields: map[string]models.OldNew{"name": {Old: "a", New: "b"}},
		}},
		Unknown: []string{"202"},
	}, nil).Once()

	body := `{"userId": 7, "sheetsToken": "g", "spreadsheetId": "s1", "tabName": "2024-01-15"}`
	rr := httptest.NewRecorder()
	setupPageRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/preview", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp models.PreviewResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Diffs, 1)
	assert.Equal(t, []models.PendingChange{{
		PageID: "101", PageName: "Главная",
		Fields: map[string]models.OldNew{"name": {Old: "a", New: "b"}},
	}}, resp.Changes)
	assert.Equal(t, []string{"202"}, resp.Unknown)
	svc.AssertExpectations(t)
}

func TestPageHandler_Compare(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockResp       *models.CompareResponse
		mockErr        error
		callService    bool
		expectedStatus int
	}{
		{
			name: "Есть отличия",
			body: `{"userId": 7, "pageId": "101", "date": "2024-01-10", "externalToken": "tok"}`,
			mockResp: &models.CompareResponse{Success: true, Diff: &models.FieldDiff{
				PageID: "101", Changes: []models.FieldChange{{Field: "name", Old: "Old Title", New: "New Title"}},
			}},
			callService:    true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Снимка за дату нет",
			body:           `{"userId": 7, "pageId": "101", "date": "2024-01-10", "externalToken": "tok"}`,
			mockErr:        fmt.Errorf("%w: нет строки", services.ErrSnapshotNotFound),
			callService:    true,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Тип страницы не поддерживается",
			body:           `{"userId": 7, "pageId": "101", "date": "2024-01-10", "externalToken": "tok"}`,
			mockErr:        fmt.Errorf("%w: blog_post", services.ErrUnsupportedPageType),
			callService:    true,
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "Чужой userId",
			body:           `{"userId": 9, "pageId": "101", "date": "2024-01-10", "externalToken": "tok"}`,
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.PageService)
			if tt.callService {
				svc.On("Compare", mock.Anything, mock.AnythingOfType("models.CompareRequest")).
					Return(tt.mockResp, tt.mockErr).Once()
			}

			rr := httptest.NewRecorder()
			setupPageRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/compare", strings.NewReader(tt.body)))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusOK {
				var resp models.CompareResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				require.NotNil(t, resp.Diff)
				assert.Equal(t, "name", resp.Diff.Changes[0].Field)
			} else {
				decodeFailure(t, rr)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestPageHandler_Archive(t *testing.T) {
	svc := new(mocks.PageService)
	svc.On("ArchivedPage", mock.Anything, authUserID, "101", "2024-01-15").
		Return(json.RawMessage(`{"id":"101","name":"Главная"}`), nil).Once()
	svc.On("ArchivedPage", mock.Anything, authUserID, "999", "2024-01-15").
		Return(nil, fmt.Errorf("%w: нет объекта", services.ErrSnapshotNotFound)).Once()

	router := setupPageRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/archive?userId=7&pageId=101&date=2024-01-15", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":"101","name":"Главная"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/archive?userId=7&pageId=999&date=2024-01-15", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/archive?pageId=101", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	svc.AssertExpectations(t)
}
