// Package mocks - моки зависимостей сервисов на testify/mock.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/maynagashev/pagekeeper/internal/models"
	"github.com/maynagashev/pagekeeper/internal/repository"
)

// UserRepository - мок repository.UserRepository.
type UserRepository struct {
	mock.Mock
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (m *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

// SnapshotRepository - мок repository.SnapshotRepository.
type SnapshotRepository struct {
	mock.Mock
}

var _ repository.SnapshotRepository = (*SnapshotRepository)(nil)

func (m *SnapshotRepository) UpsertSnapshot(ctx context.Context, snapshot *models.PageSnapshot) (int64, error) {
	args := m.Called(ctx, snapshot)
	return args.Get(0).(int64), args.Error(1)
}

func (m *SnapshotRepository) GetSnapshot(
	ctx context.Context,
	userID int64,
	pageID string,
	date time.Time,
) (*models.PageSnapshot, error) {
	args := m.Called(ctx, userID, pageID, date)
	snapshot, _ := args.Get(0).(*models.PageSnapshot)
	return snapshot, args.Error(1)
}

func (m *SnapshotRepository) GetLatestSnapshot(ctx context.Context, userID int64, pageID string) (*models.PageSnapshot, error) {
	args := m.Called(ctx, userID, pageID)
	snapshot, _ := args.Get(0).(*models.PageSnapshot)
	return snapshot, args.Error(1)
}

// PageTypeRepository - мок repository.PageTypeRepository.
type PageTypeRepository struct {
	mock.Mock
}

var _ repository.PageTypeRepository = (*PageTypeRepository)(nil)

func (m *PageTypeRepository) UpsertPageType(ctx context.Context, backup *models.PageTypeBackup) error {
	return m.Called(ctx, backup).Error(0)
}

func (m *PageTypeRepository) GetPageType(ctx context.Context, userID int64, pageID string) (*models.PageTypeBackup, error) {
	args := m.Called(ctx, userID, pageID)
	backup, _ := args.Get(0).(*models.PageTypeBackup)
	return backup, args.Error(1)
}

// ChangeRepository - мок repository.ChangeRepository.
type ChangeRepository struct {
	mock.Mock
}

var _ repository.ChangeRepository = (*ChangeRepository)(nil)

func (m *ChangeRepository) CreateChange(ctx context.Context, change *models.ChangeRecord) error {
	return m.Called(ctx, change).Error(0)
}

func (m *ChangeRepository) ListChanges(ctx context.Context, filter repository.ChangeFilter) ([]models.ChangeRecord, error) {
	args := m.Called(ctx, filter)
	changes, _ := args.Get(0).([]models.ChangeRecord)
	return changes, args.Error(1)
}
