package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"ratingserver/internal/domain/rating"
	"ratingserver/internal/domain/repositories"
)

// DefaultPlacesBaseURL адрес Google Places API
const DefaultPlacesBaseURL = "https://maps.googleapis.com"

// placesSearchQualifier уточнение поиска, без него находятся одноименные места
const placesSearchQualifier = "money transfer"

// PlacesClient источник рейтингов Google через Places API.
// Поиск в два шага: findplacefromtext -> details.
type PlacesClient struct {
	config  *EnricherConfig
	client  *http.Client
	breaker *CircuitBreaker
	limiter *rate.Limiter
}

// NewPlacesClient создает клиент Google Places
func NewPlacesClient(config *EnricherConfig) *PlacesClient {
	applyDefaults(config, DefaultPlacesBaseURL)

	return &PlacesClient{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		breaker: NewCircuitBreaker(5, 0),
		limiter: newRequestLimiter(config),
	}
}

// Name возвращает название источника
func (p *PlacesClient) Name() string {
	return "google_places"
}

// Kind возвращает вид рейтинга
func (p *PlacesClient) Kind() string {
	return repositories.KindGoogle
}

type placesFindResponse struct {
	Candidates []struct {
		PlaceID string `json:"place_id"`
	} `json:"candidates"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type placesDetailsResponse struct {
	Result struct {
		Rating           *float64 `json:"rating"`
		UserRatingsTotal int      `json:"user_ratings_total"`
	} `json:"result"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Lookup ищет место провайдера и возвращает его рейтинг
func (p *PlacesClient) Lookup(ctx context.Context, provider rating.ProviderEntry) (*FetchedRating, error) {
	if p.config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if !p.breaker.CanProceed() {
		return nil, ErrCircuitOpen
	}

	placeID, err := p.findPlace(ctx, provider.DisplayName)
	if err != nil {
		return nil, err
	}

	details, err := p.placeDetails(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if details.Result.Rating == nil {
		return nil, fmt.Errorf("%w: place %s", ErrMissingRating, placeID)
	}
	if !inRatingRange(*details.Result.Rating) {
		return nil, fmt.Errorf("%w: place %s: %v", ErrRatingRange, placeID, *details.Result.Rating)
	}

	return &FetchedRating{
		Value:       *details.Result.Rating,
		ReviewCount: details.Result.UserRatingsTotal,
		Source:      repositories.RecordSourcePlaces,
		ExternalID:  placeID,
	}, nil
}

// findPlace возвращает place_id первого кандидата
func (p *PlacesClient) findPlace(ctx context.Context, displayName string) (string, error) {
	params := url.Values{}
	params.Set("input", displayName+" "+placesSearchQualifier)
	params.Set("inputtype", "textquery")
	params.Set("fields", "place_id")
	params.Set("key", p.config.APIKey)

	var resp placesFindResponse
	if err := p.getJSON(ctx, "/maps/api/place/findplacefromtext/json", params, &resp); err != nil {
		return "", err
	}

	switch resp.Status {
	case "OK", "ZERO_RESULTS":
	default:
		return "", fmt.Errorf("find place for %q: status %s: %s", displayName, resp.Status, resp.ErrorMessage)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].PlaceID == "" {
		return "", fmt.Errorf("%w: %q", ErrNoCandidates, displayName)
	}
	return resp.Candidates[0].PlaceID, nil
}

// placeDetails запрашивает рейтинг и количество отзывов места
func (p *PlacesClient) placeDetails(ctx context.Context, placeID string) (*placesDetailsResponse, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "rating,user_ratings_total")
	params.Set("key", p.config.APIKey)

	var resp placesDetailsResponse
	if err := p.getJSON(ctx, "/maps/api/place/details/json", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "OK" {
		return nil, fmt.Errorf("place details %s: status %s: %s", placeID, resp.Status, resp.ErrorMessage)
	}
	return &resp, nil
}

// getJSON выполняет GET запрос и учитывает результат в circuit breaker
func (p *PlacesClient) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	// Lookup делает два запроса, поэтому лимит ждем на каждом
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := p.config.BaseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", p.config.UserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		p.breaker.RecordFailure()
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		p.breaker.RecordFailure()
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= http.StatusInternalServerError {
			p.breaker.RecordFailure()
		}
		return fmt.Errorf("%w: %d", ErrUnexpectedCode, resp.StatusCode)
	}
	p.breaker.RecordSuccess()

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
