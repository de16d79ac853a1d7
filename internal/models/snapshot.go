package models

import "time"

// PageSnapshot - снимок полей страницы HubSpot за календарный день.
// Ключ: (UserID, PageID, SnapshotDate). Повторная запись за тот же день
// перезаписывает строку.
type PageSnapshot struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"userId"`
	PageID       string    `db:"page_id" json:"pageId"`
	PageName     string    `db:"page_name" json:"pageName"`
	Slug         string    `db:"slug" json:"slug"`
	URL          string    `db:"url" json:"url"`
	Content      Fields    `db:"content" json:"content"`
	SnapshotDate time.Time `db:"snapshot_date" json:"snapshotDate"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Типы страниц HubSpot, для которых умеем делать бэкап и синхронизацию.
const (
	PageTypeSite    = "site_page"
	PageTypeLanding = "landing_page"
)

// PageTypeBackup хранит тип страницы, запомненный при последнем бэкапе.
// Нужен, чтобы при синхронизации обратиться к правильному эндпоинту HubSpot.
type PageTypeBackup struct {
	UserID    int64     `db:"user_id" json:"userId"`
	PageID    string    `db:"page_id" json:"pageId"`
	PageName  string    `db:"page_name" json:"pageName"`
	PageType  string    `db:"page_type" json:"pageType"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
