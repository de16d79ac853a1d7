package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/maynagashev/pagekeeper/internal/models"
	"github.com/maynagashev/pagekeeper/internal/services"
)

// AuthService - мок services.AuthService.
type AuthService struct {
	mock.Mock
}

var _ services.AuthService = (*AuthService)(nil)

func (m *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	args := m.Called(ctx, username, password)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *AuthService) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	args := m.Called(ctx, username, password)
	resp, _ := args.Get(0).(*models.LoginResponse)
	return resp, args.Error(1)
}

// ChangeService - мок services.ChangeService.
type ChangeService struct {
	mock.Mock
}

var _ services.ChangeService = (*ChangeService)(nil)

func (m *ChangeService) Revert(ctx context.Context, req models.RevertRequest) (*models.RevertResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*models.RevertResponse)
	return resp, args.Error(1)
}

func (m *ChangeService) Sync(ctx context.Context, req models.SyncRequest) (*models.SyncResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*models.SyncResponse)
	return resp, args.Error(1)
}

func (m *ChangeService) History(ctx context.Context, userID int64, date, pageID string) ([]models.ChangeRecord, error) {
	args := m.Called(ctx, userID, date, pageID)
	changes, _ := args.Get(0).([]models.ChangeRecord)
	return changes, args.Error(1)
}

// PageService - мок services.PageService.
type PageService struct {
	mock.Mock
}

var _ services.PageService = (*PageService)(nil)

func (m *PageService) Backup(ctx context.Context, req models.BackupRequest) (*models.BackupResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*models.BackupResponse)
	return resp, args.Error(1)
}

func (m *PageService) Preview(ctx context.Context, req models.PreviewRequest) (*models.PreviewResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*models.PreviewResponse)
	return resp, args.Error(1)
}

func (m *PageService) Compare(ctx context.Context, req models.CompareRequest) (*models.CompareResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*models.CompareResponse)
	return resp, args.Error(1)
}

func (m *PageService) ArchivedPage(ctx context.Context, userID int64, pageID, date string) (json.RawMessage, error) {
	args := m.Called(ctx, userID, pageID, date)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}
