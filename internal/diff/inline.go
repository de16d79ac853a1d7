package diff

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Маркеры вставок и удалений во встроенном диффе.
const (
	insertOpen  = "{+"
	insertClose = "+}"
	deleteOpen  = "[-"
	deleteClose = "-]"
)

var (
	sanitizer   = bluemonday.UGCPolicy()
	mdConverter = converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
		),
	)
)

// Inline строит читаемый дифф двух HTML-фрагментов тела страницы.
// HTML очищается, переводится в Markdown, после чего вставки помечаются
// как {+текст+}, а удаления как [-текст-].
func Inline(oldHTML, newHTML string) string {
	oldText := toMarkdown(oldHTML)
	newText := toMarkdown(newHTML)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldText, newText, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			b.WriteString(d.Text)
		case diffmatchpatch.DiffInsert:
			b.WriteString(insertOpen)
			b.WriteString(d.Text)
			b.WriteString(insertClose)
		case diffmatchpatch.DiffDelete:
			b.WriteString(deleteOpen)
			b.WriteString(d.Text)
			b.WriteString(deleteClose)
		}
	}
	return b.String()
}

// toMarkdown возвращает очищенный текст, если конвертация не удалась.
func toMarkdown(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	clean := sanitizer.Sanitize(html)
	md, err := mdConverter.ConvertString(clean)
	if err != nil || strings.TrimSpace(md) == "" {
		return strings.TrimSpace(clean)
	}
	return strings.TrimSpace(md)
}
