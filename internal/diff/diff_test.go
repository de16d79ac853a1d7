package diff_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/pagekeeper/internal/diff"
	"github.com/maynagashev/pagekeeper/internal/models"
)

func page(fields map[string]any) diff.Page {
	return diff.Page{ID: "101", Name: "Главная", Fields: fields}
}

func keys(d *models.FieldDiff) []string {
	out := make([]string, 0, len(d.Changes))
	for _, c := range d.Changes {
		out = append(out, c.Field)
	}
	sort.Strings(out)
	return out
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name     string
		oldPage  map[string]any
		newPage  map[string]any
		expected []models.FieldChange
	}{
		{
			name:     "Одинаковые версии",
			oldPage:  map[string]any{"name": "A", "slug": "a"},
			newPage:  map[string]any{"name": "A", "slug": "a"},
			expected: []models.FieldChange{},
		},
		{
			name:    "Изменилось одно поле",
			oldPage: map[string]any{"name": "Old Title", "slug": "a"},
			newPage: map[string]any{"name": "New Title", "slug": "a"},
			expected: []models.FieldChange{
				{Field: "name", Old: "Old Title", New: "New Title"},
			},
		},
		{
			name:    "Поле появилось и поле пропало",
			oldPage: map[string]any{"name": "A", "title": "T"},
			newPage: map[string]any{"name": "A", "slug": "a"},
			expected: []models.FieldChange{
				{Field: "slug", Old: nil, New: "a"},
				{Field: "title", Old: "T", New: nil},
			},
		},
		{
			name:    "Отсутствующий ключ отличается от явного null",
			oldPage: map[string]any{"meta_description": nil},
			newPage: map[string]any{},
			expected: []models.FieldChange{
				{Field: "meta_description", Old: nil, New: nil},
			},
		},
		{
			name:     "Числа из JSONB равны целым",
			oldPage:  map[string]any{"position": float64(3)},
			newPage:  map[string]any{"position": 3},
			expected: []models.FieldChange{},
		},
		{
			name:    "Строка и число отличаются",
			oldPage: map[string]any{"position": "3"},
			newPage: map[string]any{"position": 3},
			expected: []models.FieldChange{
				{Field: "position", Old: "3", New: 3},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := diff.Compute(page(tt.oldPage), page(tt.newPage))
			require.NoError(t, err)
			assert.Equal(t, "101", got.PageID)
			assert.Equal(t, "Главная", got.PageName)
			assert.Equal(t, tt.expected, got.Changes)
			assert.Equal(t, len(tt.expected) == 0, got.Empty())
		})
	}
}

func TestCompute_SameInputIsEmpty(t *testing.T) {
	a := map[string]any{
		"name":         "A",
		"body_content": "<p>Текст</p>",
		"nested":       map[string]any{"x": []any{1.0, "y"}},
	}
	got, err := diff.Compute(page(a), page(a))
	require.NoError(t, err)
	assert.True(t, got.Empty())
}

func TestCompute_SymmetricKeys(t *testing.T) {
	a := map[string]any{"name": "A", "title": "T1", "slug": "s"}
	b := map[string]any{"name": "B", "title": "T1", "meta_description": "M"}

	ab, err := diff.Compute(page(a), page(b))
	require.NoError(t, err)
	ba, err := diff.Compute(page(b), page(a))
	require.NoError(t, err)

	// Ключи: ровно те, где значения отличаются
	assert.Equal(t, []string{"meta_description", "name", "slug"}, keys(ab))
	assert.Equal(t, keys(ab), keys(ba))

	for i := range ab.Changes {
		assert.Equal(t, ab.Changes[i].Old, ba.Changes[i].New)
		assert.Equal(t, ab.Changes[i].New, ba.Changes[i].Old)
	}
}

func TestCompute_CopiesValues(t *testing.T) {
	nested := map[string]any{"x": "1"}
	got, err := diff.Compute(page(map[string]any{"meta": nested}), page(map[string]any{}))
	require.NoError(t, err)
	require.Len(t, got.Changes, 1)

	nested["x"] = "2"
	assert.Equal(t, map[string]any{"x": "1"}, got.Changes[0].Old)
}

func TestCompute_BodyInline(t *testing.T) {
	got, err := diff.Compute(
		page(map[string]any{"body_content": "<p>Hello world</p>"}),
		page(map[string]any{"body_content": "<p>Hello brave world</p>"}),
	)
	require.NoError(t, err)
	require.Len(t, got.Changes, 1)

	change := got.Changes[0]
	assert.Equal(t, "body_content", change.Field)
	assert.Equal(t, "<p>Hello world</p>", change.Old)
	assert.Equal(t, "<p>Hello brave world</p>", change.New)
	assert.Contains(t, change.Inline, "{+brave")
	assert.NotContains(t, change.Inline, "<p>")
}

func TestCompute_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		oldPage diff.Page
		newPage diff.Page
	}{
		{
			name:    "Нет ID у старой версии",
			oldPage: diff.Page{Fields: map[string]any{}},
			newPage: page(map[string]any{}),
		},
		{
			name:    "Нет полей у новой версии",
			oldPage: page(map[string]any{}),
			newPage: diff.Page{ID: "101"},
		},
		{
			name:    "Разные страницы",
			oldPage: page(map[string]any{}),
			newPage: diff.Page{ID: "202", Fields: map[string]any{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := diff.Compute(tt.oldPage, tt.newPage)
			require.ErrorIs(t, err, diff.ErrInvalidInput)
			assert.Nil(t, got)
		})
	}
}

func TestInline(t *testing.T) {
	t.Run("Удаление", func(t *testing.T) {
		got := diff.Inline("<p>one two three</p>", "<p>one three</p>")
		assert.Contains(t, got, "[-two")
		assert.NotContains(t, got, "{+")
	})

	t.Run("Скрипты вырезаются", func(t *testing.T) {
		got := diff.Inline("", "<p>ok</p><script>alert(1)</script>")
		assert.Contains(t, got, "ok")
		assert.NotContains(t, got, "alert")
	})

	t.Run("Пустые значения", func(t *testing.T) {
		assert.Equal(t, "", diff.Inline("", ""))
	})
}
