package enrichment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"ratingserver/internal/domain/rating"
	"ratingserver/internal/domain/repositories"
)

func newPlacesServer(t *testing.T, findBody, detailsBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/maps/api/place/findplacefromtext/json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "textquery", r.URL.Query().Get("inputtype"))
		assert.Equal(t, "Wise money transfer", r.URL.Query().Get("input"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(findBody))
	})
	mux.HandleFunc("/maps/api/place/details/json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "place-123", r.URL.Query().Get("place_id"))
		assert.Equal(t, "rating,user_ratings_total", r.URL.Query().Get("fields"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(detailsBody))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestPlacesClient(baseURL string) *PlacesClient {
	return NewPlacesClient(&EnricherConfig{
		APIKey:      "test-key",
		BaseURL:     baseURL,
		Timeout:     2 * time.Second,
		MaxRequests: 60000,
		Enabled:     true,
	})
}

var wiseEntry = rating.ProviderEntry{Key: "wise", DisplayName: "Wise", TrustpilotDomain: "wise.com"}

func TestPlacesClient_Lookup(t *testing.T) {
	server := newPlacesServer(t,
		`{"candidates":[{"place_id":"place-123"}],"status":"OK"}`,
		`{"result":{"rating":4.6,"user_ratings_total":1532},"status":"OK"}`,
	)
	client := newTestPlacesClient(server.URL)

	fetched, err := client.Lookup(context.Background(), wiseEntry)
	require.NoError(t, err)
	assert.Equal(t, 4.6, fetched.Value)
	assert.Equal(t, 1532, fetched.ReviewCount)
	assert.Equal(t, repositories.RecordSourcePlaces, fetched.Source)
	assert.Equal(t, "place-123", fetched.ExternalID)
	assert.Equal(t, repositories.KindGoogle, client.Kind())
}

func TestPlacesClient_LookupErrors(t *testing.T) {
	tests := []struct {
		name    string
		find    string
		details string
		wantErr error
	}{
		{"zero results", `{"candidates":[],"status":"ZERO_RESULTS"}`, `{}`, ErrNoCandidates},
		{"missing rating", `{"candidates":[{"place_id":"place-123"}],"status":"OK"}`, `{"result":{},"status":"OK"}`, ErrMissingRating},
		{"rating above scale", `{"candidates":[{"place_id":"place-123"}],"status":"OK"}`, `{"result":{"rating":7.5},"status":"OK"}`, ErrRatingRange},
		{"negative rating", `{"candidates":[{"place_id":"place-123"}],"status":"OK"}`, `{"result":{"rating":-1},"status":"OK"}`, ErrRatingRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newPlacesServer(t, tt.find, tt.details)
			_, err := newTestPlacesClient(server.URL).Lookup(context.Background(), wiseEntry)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("request denied", func(t *testing.T) {
		server := newPlacesServer(t, `{"status":"REQUEST_DENIED","error_message":"bad key"}`, `{}`)
		_, err := newTestPlacesClient(server.URL).Lookup(context.Background(), wiseEntry)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "REQUEST_DENIED")
	})

	t.Run("missing api key", func(t *testing.T) {
		client := NewPlacesClient(&EnricherConfig{BaseURL: "http://127.0.0.1:1"})
		_, err := client.Lookup(context.Background(), wiseEntry)
		assert.ErrorIs(t, err, ErrMissingAPIKey)
	})
}

func TestPlacesClient_BreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestPlacesClient(server.URL)
	for i := 0; i < 5; i++ {
		_, err := client.Lookup(context.Background(), wiseEntry)
		assert.ErrorIs(t, err, ErrUnexpectedCode)
	}

	_, err := client.Lookup(context.Background(), wiseEntry)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(5), calls.Load())
}

func TestFetcher_OutOfRangePlacesRatingFallsBack(t *testing.T) {
	server := newPlacesServer(t,
		`{"candidates":[{"place_id":"place-123"}],"status":"OK"}`,
		`{"result":{"rating":7.5,"user_ratings_total":10},"status":"OK"}`,
	)
	repo := newMemRepo()
	fetcher := newTestFetcher(newTestPlacesClient(server.URL), repo)

	result, err := fetcher.FetchAndStore(context.Background(), wiseEntry)
	require.NoError(t, err)
	assert.False(t, result.Stored)
	assert.ErrorIs(t, result.Err, rating.ErrExternalFetchFailed)
	assert.ErrorIs(t, result.Err, ErrRatingRange)
	assert.Equal(t, DefaultFallbackRating, result.Record.Value)

	stored, _ := repo.Get(context.Background(), "wise")
	assert.Nil(t, stored)
}

func TestPlacesClient_MaxRequestsLimitsCalls(t *testing.T) {
	var details atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/maps/api/place/findplacefromtext/json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"place_id":"place-123"}],"status":"OK"}`))
	})
	mux.HandleFunc("/maps/api/place/details/json", func(w http.ResponseWriter, r *http.Request) {
		details.Add(1)
		w.Write([]byte(`{"result":{"rating":4.6},"status":"OK"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	// 2 запроса в минуту: второй запрос Lookup не укладывается в дедлайн
	client := NewPlacesClient(&EnricherConfig{APIKey: "test-key", BaseURL: server.URL, MaxRequests: 2, Enabled: true})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := client.Lookup(ctx, wiseEntry)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit wait")
	assert.Equal(t, int32(0), details.Load())
	assert.False(t, errors.Is(err, ErrCircuitOpen))
}

func TestNewRequestLimiter(t *testing.T) {
	limiter := newRequestLimiter(&EnricherConfig{MaxRequests: 30})
	assert.Equal(t, rate.Every(2*time.Second), limiter.Limit())
	assert.Equal(t, 1, limiter.Burst())

	assert.Equal(t, rate.Inf, newRequestLimiter(&EnricherConfig{}).Limit())
}
