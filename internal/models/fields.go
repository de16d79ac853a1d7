package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Fields - набор значений полей страницы во внутреннем словаре
// (name, title, meta_description, slug, body_content).
// В БД хранится как JSONB.
type Fields map[string]any

// Value реализует driver.Valuer.
func (f Fields) Value() (driver.Value, error) {
	if f == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(map[string]any(f))
	if err != nil {
		return nil, fmt.Errorf("ошибка кодирования полей страницы: %w", err)
	}
	return data, nil
}

// Scan реализует sql.Scanner.
func (f *Fields) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil {
		return err
	}
	if data == nil {
		*f = Fields{}
		return nil
	}
	out := Fields{}
	if err = json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("ошибка декодирования полей страницы: %w", err)
	}
	*f = out
	return nil
}

// JSONValue - произвольное значение поля, хранимое в колонке JSONB.
// Используется для old_value/new_value в журнале изменений.
type JSONValue struct {
	V any
}

// Value реализует driver.Valuer.
func (v JSONValue) Value() (driver.Value, error) {
	data, err := json.Marshal(v.V)
	if err != nil {
		return nil, fmt.Errorf("ошибка кодирования значения поля: %w", err)
	}
	return data, nil
}

// Scan реализует sql.Scanner.
func (v *JSONValue) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil {
		return err
	}
	if data == nil {
		v.V = nil
		return nil
	}
	var out any
	if err = json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("ошибка декодирования значения поля: %w", err)
	}
	v.V = out
	return nil
}

// MarshalJSON отдает значение без обертки.
func (v JSONValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.V)
}

// UnmarshalJSON принимает значение без обертки.
func (v *JSONValue) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &v.V)
}

func jsonBytes(src any) ([]byte, error) {
	switch s := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return s, nil
	case string:
		return []byte(s), nil
	default:
		return nil, errors.New("неподдерживаемый тип значения JSONB")
	}
}
