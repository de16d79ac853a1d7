// Package diff вычисляет отличия полей между двумя версиями одной страницы.
package diff

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/mitchellh/copystructure"

	"github.com/maynagashev/pagekeeper/internal/fieldmap"
	"github.com/maynagashev/pagekeeper/internal/models"
)

// ErrInvalidInput - одна из сторон не является корректным набором полей страницы.
var ErrInvalidInput = errors.New("некорректные данные страницы для сравнения")

// Page - версия страницы: снимок из БД, текущее состояние в HubSpot
// или строка отредактированной таблицы.
type Page struct {
	ID     string
	Name   string
	Fields map[string]any
}

func (p Page) validate(side string) error {
	if p.ID == "" {
		return fmt.Errorf("%w: у %s версии не указан ID страницы", ErrInvalidInput, side)
	}
	if p.Fields == nil {
		return fmt.Errorf("%w: у %s версии страницы %s нет полей", ErrInvalidInput, side, p.ID)
	}
	return nil
}

// Compute сравнивает старую и новую версии страницы.
// В результат попадают только отличающиеся поля, отсортированные по имени.
// Отсутствующий ключ считается отдельным значением: {a: nil} и {} отличаются.
func Compute(oldPage, newPage Page) (*models.FieldDiff, error) {
	if err := oldPage.validate("старой"); err != nil {
		return nil, err
	}
	if err := newPage.validate("новой"); err != nil {
		return nil, err
	}
	if oldPage.ID != newPage.ID {
		return nil, fmt.Errorf("%w: сравниваются разные страницы (%s и %s)", ErrInvalidInput, oldPage.ID, newPage.ID)
	}

	name := newPage.Name
	if name == "" {
		name = oldPage.Name
	}
	result := &models.FieldDiff{
		PageID:   newPage.ID,
		PageName: name,
		Changes:  []models.FieldChange{},
	}

	for _, key := range unionKeys(oldPage.Fields, newPage.Fields) {
		oldValue, inOld := oldPage.Fields[key]
		newValue, inNew := newPage.Fields[key]
		if inOld == inNew && Equal(oldValue, newValue) {
			continue
		}

		change := models.FieldChange{
			Field: key,
			Old:   clone(oldValue),
			New:   clone(newValue),
		}
		if fieldmap.IsLongForm(key) {
			change.Inline = Inline(text(oldValue), text(newValue))
		}
		result.Changes = append(result.Changes, change)
	}

	return result, nil
}

// Equal сравнивает значения полей. Значения, которые одинаково кодируются
// в JSON, считаются равными: после чтения из JSONB числа приходят как float64.
func Equal(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}

func unionKeys(a, b map[string]any) []string {
	keys := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, m := range []map[string]any{a, b} {
		for k := range m {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// clone отдает глубокую копию, чтобы дифф не разделял память с входными картами.
func clone(v any) any {
	if v == nil {
		return nil
	}
	c, err := copystructure.Copy(v)
	if err != nil {
		return v
	}
	return c
}

func text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
