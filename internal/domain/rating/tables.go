package rating

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"ratingserver/internal/domain/repositories"
)

//go:embed tables.json
var defaultTablesJSON []byte

// ProviderEntry запись справочника провайдеров
type ProviderEntry struct {
	Key              string `json:"key"`
	DisplayName      string `json:"display_name"`
	TrustpilotDomain string `json:"trustpilot_domain,omitempty"`
}

// tablesFile формат файла таблиц
type tablesFile struct {
	Version   string                        `json:"version"`
	Providers []ProviderEntry               `json:"providers"`
	Aliases   map[string]string             `json:"aliases"`
	Fallbacks map[string]map[string]float64 `json:"fallbacks"`
}

// AliasTable отображение очищенных вариантов имени в канонический ключ.
// Неизменяема после создания.
type AliasTable struct {
	entries map[string]string
}

// NewAliasTable строит таблицу алиасов.
// Ключи алиасов очищаются через StripProviderName, каждый канонический ключ
// добавляется как алиас самого себя.
func NewAliasTable(canonical []string, aliases map[string]string) (*AliasTable, error) {
	entries := make(map[string]string, len(canonical)+len(aliases))
	for _, key := range canonical {
		if key == "" || StripProviderName(key) != key {
			return nil, fmt.Errorf("%w: canonical key %q is not normalized", ErrInvalidTables, key)
		}
		entries[key] = key
	}

	for alias, target := range aliases {
		stripped := StripProviderName(alias)
		if stripped == "" {
			return nil, fmt.Errorf("%w: alias %q normalizes to empty key", ErrInvalidTables, alias)
		}
		if _, ok := entries[target]; !ok || entries[target] != target {
			return nil, fmt.Errorf("%w: alias %q targets unknown canonical key %q", ErrInvalidTables, alias, target)
		}
		if existing, ok := entries[stripped]; ok && existing != target {
			return nil, fmt.Errorf("%w: alias %q conflicts with key %q", ErrInvalidTables, alias, existing)
		}
		entries[stripped] = target
	}

	return &AliasTable{entries: entries}, nil
}

func emptyAliasTable() *AliasTable {
	return &AliasTable{entries: map[string]string{}}
}

// Resolve возвращает канонический ключ; неизвестный ключ возвращается как есть
func (t *AliasTable) Resolve(stripped string) string {
	if canonical, ok := t.entries[stripped]; ok {
		return canonical
	}
	return stripped
}

// Len количество записей, включая самоотображения
func (t *AliasTable) Len() int {
	return len(t.entries)
}

// FallbackTable значения рейтинга по умолчанию для одного вида рейтинга
type FallbackTable struct {
	values map[string]float64
}

// NewFallbackTable создает таблицу, проверяя диапазон значений
func NewFallbackTable(values map[string]float64) (*FallbackTable, error) {
	copied := make(map[string]float64, len(values))
	for key, value := range values {
		if value < repositories.MinRatingValue || value > repositories.MaxRatingValue {
			return nil, fmt.Errorf("%w: fallback %q=%v out of range", ErrInvalidTables, key, value)
		}
		copied[key] = value
	}
	return &FallbackTable{values: copied}, nil
}

// Lookup возвращает значение по умолчанию для ключа
func (t *FallbackTable) Lookup(providerKey string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	value, ok := t.values[providerKey]
	return value, ok
}

// Catalog набор таблиц, загружаемый один раз при старте
type Catalog struct {
	Version   string
	Aliases   *AliasTable
	Fallbacks map[string]*FallbackTable
	Providers []ProviderEntry
}

// LoadCatalog загружает таблицы из файла; пустой путь - встроенные таблицы
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return ParseCatalog(defaultTablesJSON)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rating tables %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog разбирает и валидирует JSON с таблицами
func ParseCatalog(data []byte) (*Catalog, error) {
	var file tablesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTables, err)
	}

	if strings.TrimSpace(file.Version) == "" {
		return nil, fmt.Errorf("%w: version is required", ErrInvalidTables)
	}

	canonical := make([]string, 0, len(file.Providers))
	seen := make(map[string]bool, len(file.Providers))
	for _, p := range file.Providers {
		if seen[p.Key] {
			return nil, fmt.Errorf("%w: duplicate provider %q", ErrInvalidTables, p.Key)
		}
		seen[p.Key] = true
		canonical = append(canonical, p.Key)
	}

	aliases, err := NewAliasTable(canonical, file.Aliases)
	if err != nil {
		return nil, err
	}

	fallbacks := make(map[string]*FallbackTable, len(file.Fallbacks))
	for kind, values := range file.Fallbacks {
		for key := range values {
			if !seen[key] {
				return nil, fmt.Errorf("%w: fallback for unknown provider %q (%s)", ErrInvalidTables, key, kind)
			}
		}
		table, err := NewFallbackTable(values)
		if err != nil {
			return nil, err
		}
		fallbacks[kind] = table
	}

	providers := append([]ProviderEntry(nil), file.Providers...)
	sort.SliceStable(providers, func(i, j int) bool { return providers[i].Key < providers[j].Key })

	return &Catalog{
		Version:   file.Version,
		Aliases:   aliases,
		Fallbacks: fallbacks,
		Providers: providers,
	}, nil
}

// Fallback возвращает таблицу значений по умолчанию для вида; пустую, если вид не описан
func (c *Catalog) Fallback(kind string) *FallbackTable {
	if table, ok := c.Fallbacks[kind]; ok {
		return table
	}
	return &FallbackTable{values: map[string]float64{}}
}

// Provider ищет провайдера в справочнике по каноническому ключу
func (c *Catalog) Provider(key string) (ProviderEntry, bool) {
	for _, p := range c.Providers {
		if p.Key == key {
			return p, true
		}
	}
	return ProviderEntry{}, false
}
