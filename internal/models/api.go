package models

// OldNew - пара значений поля до и после изменения.
type OldNew struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// PendingChange - изменения одной страницы, ожидающие отправки в HubSpot.
type PendingChange struct {
	PageID   string            `json:"pageId"`
	PageName string            `json:"pageName"`
	Fields   map[string]OldNew `json:"fields"`
}

// RevertRequest - тело запроса на откат одного поля.
type RevertRequest struct {
	UserID        int64  `json:"userId"`
	PageID        string `json:"pageId"`
	FieldName     string `json:"fieldName"`
	RevertValue   any    `json:"revertValue"`
	ExternalToken string `json:"externalToken"`
}

// RevertResponse - ответ на успешный откат.
type RevertResponse struct {
	Success  bool     `json:"success"`
	OldValue any      `json:"oldValue"`
	NewValue any      `json:"newValue"`
	Warnings []string `json:"warnings,omitempty"`
}

// SyncRequest - тело запроса на пакетную синхронизацию.
type SyncRequest struct {
	UserID        int64           `json:"userId"`
	ExternalToken string          `json:"externalToken"`
	Changes       []PendingChange `json:"changes"`
}

// SyncItem - результат синхронизации одной страницы.
type SyncItem struct {
	PageID   string `json:"pageId"`
	PageName string `json:"pageName"`
	Error    string `json:"error,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// SyncResponse - итог пакетной синхронизации.
type SyncResponse struct {
	Success   bool       `json:"success"`
	Succeeded []SyncItem `json:"succeeded"`
	Failed    []SyncItem `json:"failed"`
	Skipped   []SyncItem `json:"skipped,omitempty"`
}

// HistoryResponse - ответ на запрос журнала изменений.
type HistoryResponse struct {
	Success bool           `json:"success"`
	Changes []ChangeRecord `json:"changes"`
}

// BackupRequest - запуск бэкапа страниц. Вызывается планировщиком или вручную.
type BackupRequest struct {
	UserID        int64  `json:"userId"`
	ExternalToken string `json:"externalToken"`
	SheetsToken   string `json:"sheetsToken,omitempty"`
	SpreadsheetID string `json:"spreadsheetId,omitempty"`
	TabName       string `json:"tabName,omitempty"`
}

// TabInfo описывает вкладку таблицы, в которую записан бэкап.
type TabInfo struct {
	Title   string `json:"title"`
	SheetID int64  `json:"sheetId"`
	Status  string `json:"status"`
}

// BackupResponse - итог бэкапа.
type BackupResponse struct {
	Success      bool     `json:"success"`
	SnapshotDate string   `json:"snapshotDate"`
	Pages        int      `json:"pages"`
	Failed       []string `json:"failed,omitempty"`
	Tab          *TabInfo `json:"tab,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

// PreviewRequest - сравнение отредактированной вкладки таблицы с бэкапом.
type PreviewRequest struct {
	UserID        int64  `json:"userId"`
	SheetsToken   string `json:"sheetsToken"`
	SpreadsheetID string `json:"spreadsheetId"`
	TabName       string `json:"tabName"`
}

// PreviewResponse - найденные изменения и строки без бэкапа.
// Changes повторяет Diffs в форме, которую принимает /api/sync.
type PreviewResponse struct {
	Success bool            `json:"success"`
	Diffs   []FieldDiff     `json:"diffs"`
	Changes []PendingChange `json:"changes"`
	Unknown []string        `json:"unknown,omitempty"`
}

// CompareRequest - сравнение снимка за дату с текущим состоянием страницы.
type CompareRequest struct {
	UserID        int64  `json:"userId"`
	PageID        string `json:"pageId"`
	Date          string `json:"date"`
	ExternalToken string `json:"externalToken"`
}

// CompareResponse - результат сравнения.
type CompareResponse struct {
	Success bool       `json:"success"`
	Diff    *FieldDiff `json:"diff"`
}

// ErrorResponse - тело ответа при ошибке.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
