package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/maynagashev/pagekeeper/internal/hubspot"
	"github.com/maynagashev/pagekeeper/internal/models"
	"github.com/maynagashev/pagekeeper/internal/repository"
)

// Options - общие настройки сервисов.
type Options struct {
	// Location - часовой пояс, в котором считаются календарные дни снимков
	// и фильтр журнала по дате. По умолчанию UTC.
	Location *time.Location
	// Now подменяется в тестах.
	Now func() time.Time
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// today возвращает полночь текущего дня в настроенном поясе.
func (o Options) today() time.Time {
	y, m, d := o.now().In(o.location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, o.location())
}

// parseDate разбирает дату YYYY-MM-DD как полночь в настроенном поясе.
func (o Options) parseDate(value string) (time.Time, error) {
	day, err := time.ParseInLocation(time.DateOnly, value, o.location())
	if err != nil {
		return time.Time{}, validationError("некорректная дата '%s', ожидается YYYY-MM-DD", value)
	}
	return day, nil
}

// resolvePageType определяет тип страницы по бэкапу.
// Страница без бэкапа считается обычной страницей сайта.
func resolvePageType(ctx context.Context, repo repository.PageTypeRepository, userID int64, pageID string) (string, error) {
	backup, err := repo.GetPageType(ctx, userID, pageID)
	if err != nil {
		if errors.Is(err, repository.ErrPageTypeNotFound) {
			log.Printf("[Services] Тип страницы %s не найден, используется %s", pageID, models.PageTypeSite)
			return models.PageTypeSite, nil
		}
		return "", wrap(ErrPersistence, err)
	}
	if !hubspot.SupportedPageType(backup.PageType) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedPageType, backup.PageType)
	}
	return backup.PageType, nil
}

// snapshotFromPage собирает снимок из страницы HubSpot в каноничных полях.
func snapshotFromPage(userID int64, page *hubspot.Page, content map[string]any, day time.Time) *models.PageSnapshot {
	return &models.PageSnapshot{
		UserID:       userID,
		PageID:       page.ID,
		PageName:     page.Name,
		Slug:         page.Slug,
		URL:          page.URL,
		Content:      models.Fields(content),
		SnapshotDate: day,
	}
}
