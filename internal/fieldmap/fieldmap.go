// Package fieldmap переводит имена полей страницы между внутренним словарем
// сервиса и свойствами HubSpot CMS API.
package fieldmap

// Внутренние имена полей, которые понимает сервис.
const (
	FieldName            = "name"
	FieldTitle           = "title"
	FieldMetaDescription = "meta_description"
	FieldSlug            = "slug"
	FieldBodyContent     = "body_content"
)

type mapping struct {
	internal string
	external string
	longForm bool
}

// Порядок определяет порядок колонок в таблице бэкапа.
var table = []mapping{
	{internal: FieldName, external: "name"},
	{internal: FieldTitle, external: "htmlTitle"},
	{internal: FieldMetaDescription, external: "metaDescription"},
	{internal: FieldSlug, external: "slug"},
	{internal: FieldBodyContent, external: "body", longForm: true},
}

var (
	toExternal = make(map[string]string, len(table))
	toInternal = make(map[string]string, len(table))
	longForm   = make(map[string]bool, len(table))
)

func init() {
	for _, m := range table {
		toExternal[m.internal] = m.external
		toInternal[m.external] = m.internal
		longForm[m.internal] = m.longForm
	}
}

// Fields возвращает внутренние имена всех поддерживаемых полей в фиксированном порядке.
func Fields() []string {
	out := make([]string, 0, len(table))
	for _, m := range table {
		out = append(out, m.internal)
	}
	return out
}

// ExternalName возвращает имя свойства HubSpot для внутреннего поля.
func ExternalName(field string) (string, bool) {
	name, ok := toExternal[field]
	return name, ok
}

// InternalName возвращает внутреннее имя для свойства HubSpot.
func InternalName(property string) (string, bool) {
	name, ok := toInternal[property]
	return name, ok
}

// IsKnown сообщает, поддерживается ли внутреннее поле.
func IsKnown(field string) bool {
	_, ok := toExternal[field]
	return ok
}

// IsLongForm сообщает, что поле содержит длинный текст (HTML тела страницы),
// для которого дифф показывается построчно, а не целиком.
func IsLongForm(field string) bool {
	return longForm[field]
}

// ToExternal переводит поля во внешний словарь.
// Неизвестные поля молча отбрасываются: HubSpot все равно отклонит их.
func ToExternal(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if name, ok := ExternalName(k); ok {
			out[name] = v
		}
	}
	return out
}

// ToInternal выбирает из свойств HubSpot известные поля и переименовывает их.
func ToInternal(properties map[string]any) map[string]any {
	out := make(map[string]any, len(table))
	for k, v := range properties {
		if name, ok := InternalName(k); ok {
			out[name] = v
		}
	}
	return out
}
