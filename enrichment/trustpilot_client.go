package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"ratingserver/internal/domain/rating"
	"ratingserver/internal/domain/repositories"
)

// DefaultTrustpilotBaseURL адрес Trustpilot
const DefaultTrustpilotBaseURL = "https://www.trustpilot.com"

// TrustpilotClient источник рейтингов Trustpilot.
// Читает страницу отзывов провайдера: сначала JSON-LD aggregateRating,
// затем видимый блок с оценкой.
type TrustpilotClient struct {
	config  *EnricherConfig
	client  *http.Client
	breaker *CircuitBreaker
	limiter *rate.Limiter
}

// NewTrustpilotClient создает клиент Trustpilot
func NewTrustpilotClient(config *EnricherConfig) *TrustpilotClient {
	applyDefaults(config, DefaultTrustpilotBaseURL)

	return &TrustpilotClient{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		breaker: NewCircuitBreaker(5, 0),
		limiter: newRequestLimiter(config),
	}
}

// Name возвращает название источника
func (t *TrustpilotClient) Name() string {
	return "trustpilot"
}

// Kind возвращает вид рейтинга
func (t *TrustpilotClient) Kind() string {
	return repositories.KindTrustpilot
}

// Lookup загружает страницу отзывов и извлекает рейтинг
func (t *TrustpilotClient) Lookup(ctx context.Context, provider rating.ProviderEntry) (*FetchedRating, error) {
	if provider.TrustpilotDomain == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoDomain, provider.Key)
	}
	if !t.breaker.CanProceed() {
		return nil, ErrCircuitOpen
	}

	doc, err := t.fetchPage(ctx, provider.TrustpilotDomain)
	if err != nil {
		return nil, err
	}

	fetched, ok := parseTrustpilotPage(doc)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRating, provider.TrustpilotDomain)
	}
	fetched.ExternalID = provider.TrustpilotDomain
	return fetched, nil
}

// fetchPage загружает и разбирает страницу отзывов
func (t *TrustpilotClient) fetchPage(ctx context.Context, domain string) (*goquery.Document, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s/review/%s", t.config.BaseURL, domain)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("User-Agent", t.config.UserAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		t.breaker.RecordFailure()
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			t.breaker.RecordFailure()
		}
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedCode, resp.StatusCode)
	}

	node, err := html.Parse(resp.Body)
	if err != nil {
		t.breaker.RecordFailure()
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	t.breaker.RecordSuccess()

	return goquery.NewDocumentFromNode(node), nil
}

// parseTrustpilotPage извлекает рейтинг со страницы отзывов
func parseTrustpilotPage(doc *goquery.Document) (*FetchedRating, bool) {
	if fetched, ok := ratingFromJSONLD(doc); ok {
		return fetched, true
	}
	return ratingFromMarkup(doc)
}

// ratingFromJSONLD ищет aggregateRating в блоках application/ld+json
func ratingFromJSONLD(doc *goquery.Document) (*FetchedRating, bool) {
	var found *FetchedRating

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var payload interface{}
		if err := json.Unmarshal([]byte(s.Text()), &payload); err != nil {
			return true
		}

		aggregate, ok := findAggregateRating(payload)
		if !ok {
			return true
		}

		value, ok := parseRatingValue(aggregate["ratingValue"])
		if !ok {
			return true
		}

		found = &FetchedRating{
			Value:       value,
			ReviewCount: parseReviewCount(aggregate["reviewCount"]),
			Source:      repositories.RecordSourceTrustpilot,
		}
		return false
	})

	return found, found != nil
}

// findAggregateRating обходит JSON-LD граф в поисках aggregateRating
func findAggregateRating(v interface{}) (map[string]interface{}, bool) {
	switch node := v.(type) {
	case map[string]interface{}:
		if aggregate, ok := node["aggregateRating"].(map[string]interface{}); ok {
			return aggregate, true
		}
		for _, child := range node {
			if aggregate, ok := findAggregateRating(child); ok {
				return aggregate, true
			}
		}
	case []interface{}:
		for _, child := range node {
			if aggregate, ok := findAggregateRating(child); ok {
				return aggregate, true
			}
		}
	}
	return nil, false
}

// ratingFromMarkup читает оценку из разметки страницы
func ratingFromMarkup(doc *goquery.Document) (*FetchedRating, bool) {
	text := strings.TrimSpace(doc.Find("[data-rating-typography]").First().Text())
	value, ok := parseRatingValue(text)
	if !ok {
		return nil, false
	}

	countText := doc.Find("[data-reviews-count-typography]").First().Text()
	return &FetchedRating{
		Value:       value,
		ReviewCount: parseReviewCount(countText),
		Source:      repositories.RecordSourceTrustpilot,
	}, true
}

// parseRatingValue принимает число или строку вида "4.3" / "4,3"
func parseRatingValue(v interface{}) (float64, bool) {
	var value float64
	switch raw := v.(type) {
	case float64:
		value = raw
	case string:
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(raw), ",", "."), 64)
		if err != nil {
			return 0, false
		}
		value = parsed
	default:
		return 0, false
	}

	if !inRatingRange(value) {
		return 0, false
	}
	return value, true
}

// parseReviewCount принимает число или текст вида "12,345 total"
func parseReviewCount(v interface{}) int {
	switch raw := v.(type) {
	case float64:
		return int(raw)
	case string:
		var digits strings.Builder
		for _, r := range raw {
			if r >= '0' && r <= '9' {
				digits.WriteRune(r)
			}
		}
		count, err := strconv.Atoi(digits.String())
		if err != nil {
			return 0
		}
		return count
	default:
		return 0
	}
}
