package models

// FieldChange - одно отличающееся поле.
// Inline заполняется только для длинных текстовых полей (тело страницы).
type FieldChange struct {
	Field  string `json:"field"`
	Old    any    `json:"old"`
	New    any    `json:"new"`
	Inline string `json:"inline,omitempty"`
}

// FieldDiff - разреженный набор отличий полей одной страницы.
// Не сохраняется, вычисляется по запросу.
type FieldDiff struct {
	PageID   string        `json:"pageId"`
	PageName string        `json:"pageName"`
	Changes  []FieldChange `json:"changes"`
}

// Empty сообщает, что синхронизировать нечего.
func (d *FieldDiff) Empty() bool {
	return d == nil || len(d.Changes) == 0
}

// Pending превращает дифф в элемент пакетной синхронизации.
func (d *FieldDiff) Pending() PendingChange {
	fields := make(map[string]OldNew, len(d.Changes))
	for _, c := range d.Changes {
		fields[c.Field] = OldNew{Old: c.Old, New: c.New}
	}
	return PendingChange{PageID: d.PageID, PageName: d.PageName, Fields: fields}
}
