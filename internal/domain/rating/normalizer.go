package rating

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// providerPrefix префикс, с которым приходят slug-идентификаторы из фронтенда
const providerPrefix = "provider-"

// Normalizer приводит произвольные идентификаторы провайдеров к каноническому ключу
type Normalizer struct {
	aliases *AliasTable
}

// NewNormalizer создает нормализатор поверх таблицы алиасов.
// nil таблица допустима: тогда каждый ключ отображается сам в себя.
func NewNormalizer(aliases *AliasTable) *Normalizer {
	if aliases == nil {
		aliases = emptyAliasTable()
	}
	return &Normalizer{aliases: aliases}
}

// Normalize возвращает канонический ключ провайдера.
// "Western Union", "western-union" и "provider-WESTERNUNION" дают один и тот же ключ.
func (n *Normalizer) Normalize(raw string) (string, error) {
	stripped := StripProviderName(raw)
	if stripped == "" {
		return "", ErrInvalidProviderKey
	}
	return n.aliases.Resolve(stripped), nil
}

// StripProviderName выполняет очистку имени без разрешения алиасов:
// срезает префикс provider-, приводит к нижнему регистру, убирает диакритику
// и все символы кроме [a-z0-9].
func StripProviderName(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) >= len(providerPrefix) && strings.EqualFold(s[:len(providerPrefix)], providerPrefix) {
		s = s[len(providerPrefix):]
	}

	s = cases.Lower(language.Und).String(s)

	// Трансформеры x/text не потокобезопасны, поэтому собираем цепочку на каждый вызов
	folder := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	if folded, _, err := transform.String(folder, s); err == nil {
		s = folded
	}

	var builder strings.Builder
	builder.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			builder.WriteRune(r)
		}
	}

	return strings.TrimSpace(builder.String())
}
