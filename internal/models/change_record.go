package models

import "time"

// Тип изменения. Пока поддерживается только обновление поля.
const ChangeTypeUpdate = "update"

// Источник изменения.
const (
	ChangeSourceRevert = "revert"
	ChangeSourceSync   = "sync"
)

// ChangeRecord - запись журнала изменений. После записи не меняется.
type ChangeRecord struct {
	ID         string    `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"userId"`
	PageID     string    `db:"page_id" json:"pageId"`
	FieldName  string    `db:"field_name" json:"fieldName"`
	OldValue   JSONValue `db:"old_value" json:"oldValue"`
	NewValue   JSONValue `db:"new_value" json:"newValue"`
	ChangeType string    `db:"change_type" json:"changeType"`
	Source     string    `db:"source" json:"source"`
	ChangedBy  int64     `db:"changed_by" json:"changedBy"`
	ChangedAt  time.Time `db:"changed_at" json:"changedAt"`
}
