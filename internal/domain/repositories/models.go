package repositories

import (
	"time"
)

// ============================================================================
// Rating Domain Models
// ============================================================================

// Виды рейтингов. Каждому виду соответствует своя таблица хранилища.
const (
	KindGoogle     = "google"
	KindTrustpilot = "trustpilot"
)

// Источники записи рейтинга
const (
	RecordSourcePlaces     = "google_places"
	RecordSourceTrustpilot = "trustpilot"
	RecordSourceAdmin      = "admin"
)

// Границы допустимого значения рейтинга
const (
	MinRatingValue = 0.0
	MaxRatingValue = 5.0
)

// RatingRecord представляет сохраненный рейтинг провайдера.
// На один ProviderKey приходится не более одной записи.
type RatingRecord struct {
	ProviderKey string    `json:"provider_key"`
	Value       float64   `json:"value"`
	ReviewCount int       `json:"review_count,omitempty"`
	Source      string    `json:"source,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}

// IsStale сообщает, старше ли запись заданного горизонта
func (r *RatingRecord) IsStale(now time.Time, horizon time.Duration) bool {
	return now.Sub(r.LastUpdated) > horizon
}
