package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/weatherq/weather-query-api/internal/models"
	"github.com/weatherq/weather-query-api/internal/weather"
)

type memoryStore struct {
	records   []models.WeatherQuery
	nextID    uint
	insertErr error
}

func (m *memoryStore) Insert(city, units string, payload []byte, fromCache bool) (*models.WeatherQuery, error) {
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	temperature, description := weather.ParseConditions(payload)
	m.nextID++
	record := models.WeatherQuery{
		ID:          m.nextID,
		City:        city,
		Units:       units,
		Temperature: temperature,
		Description: description,
		RawJSON:     datatypes.JSON(payload),
		FromCache:   fromCache,
		CreatedAt:   time.Now(),
	}
	m.records = append(m.records, record)
	return &record, nil
}

func (m *memoryStore) FindRecent(city, units string, window time.Duration) (*models.WeatherQuery, error) {
	since := time.Now().Add(-window)
	for i := len(m.records) - 1; i >= 0; i-- {
		r := m.records[i]
		if strings.EqualFold(r.City, city) && r.Units == units && !r.CreatedAt.Before(since) {
			return &r, nil
		}
	}
	return nil, nil
}

func (m *memoryStore) Search(filters models.HistoryFilters, page, perPage int) ([]models.WeatherQuery, int64, error) {
	return nil, 0, nil
}

func (m *memoryStore) SearchAll(filters models.HistoryFilters) ([]models.WeatherQuery, error) {
	return nil, nil
}

func (m *memoryStore) Count() (int64, error) {
	return int64(len(m.records)), nil
}

type stubGateway struct {
	payload []byte
	err     error
	calls   int
}

func (g *stubGateway) Fetch(ctx context.Context, city, units string) ([]byte, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.payload, nil
}

type stubLimiter struct {
	allow bool
}

func (l stubLimiter) Hit(identity string) bool { return l.allow }

func TestQueryService_RateLimitedWritesNothing(t *testing.T) {
	store := &memoryStore{}
	gateway := &stubGateway{payload: []byte(`{}`)}
	svc := NewQueryService(store, gateway, stubLimiter{allow: false}, logrus.New())

	_, err := svc.HandleWeatherRequest(context.Background(), "1.2.3.4", "Oslo", "metric")

	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Empty(t, store.records)
	assert.Zero(t, gateway.calls)
}

func TestQueryService_LiveFetch(t *testing.T) {
	store := &memoryStore{}
	gateway := &stubGateway{payload: []byte(`{"main":{"temp":20},"weather":[{"description":"clear"}]}`)}
	svc := NewQueryService(store, gateway, stubLimiter{allow: true}, logrus.New())

	record, err := svc.HandleWeatherRequest(context.Background(), "1.2.3.4", "Oslo", "metric")

	require.NoError(t, err)
	assert.False(t, record.FromCache)
	require.NotNil(t, record.Temperature)
	assert.Equal(t, 20.0, *record.Temperature)
	require.NotNil(t, record.Description)
	assert.Equal(t, "clear", *record.Description)
	assert.Len(t, store.records, 1)
}

func TestQueryService_RecentRecordReused(t *testing.T) {
	store := &memoryStore{}
	gateway := &stubGateway{payload: []byte(`{"main":{"temp":20},"weather":[{"description":"clear"}]}`)}
	svc := NewQueryService(store, gateway, stubLimiter{allow: true}, logrus.New())

	first, err := svc.HandleWeatherRequest(context.Background(), "1.2.3.4", "Oslo", "metric")
	require.NoError(t, err)

	second, err := svc.HandleWeatherRequest(context.Background(), "1.2.3.4", "Oslo", "metric")
	require.NoError(t, err)

	assert.True(t, second.FromCache)
	assert.Equal(t, *first.Temperature, *second.Temperature)
	assert.Equal(t, *first.Description, *second.Description)
	assert.JSONEq(t, string(first.RawJSON), string(second.RawJSON))
	// even the cache hit appends a fresh row
	assert.Len(t, store.records, 2)
	assert.NotEqual(t, first.ID, second.ID)
	// upstream was only called once
	assert.Equal(t, 1, gateway.calls)
}

func TestQueryService_CityMatchIsCaseInsensitive(t *testing.T) {
	store := &memoryStore{}
	gateway := &stubGateway{payload: []byte(`{"main":{"temp":20}}`)}
	svc := NewQueryService(store, gateway, stubLimiter{allow: true}, logrus.New())

	_, err := svc.HandleWeatherRequest(context.Background(), "1.2.3.4", "Oslo", "metric")
	require.NoError(t, err)

	record, err := svc.HandleWeatherRequest(context.Background(), "1.2.3.4", "OSLO", "metric")
	require.NoError(t, err)
	assert.True(t, record.FromCache)
	assert.Equal(t, 1, gateway.calls)
}

func TestQueryService_StaleRecordTriggersFreshFetch(t *testing.T) {
	store := &memoryStore{}
	gateway := &stubGateway{payload: []byte(`{"main":{"temp":20},"weather":[{"description":"clear"}]}`)}
	svc := NewQueryService(store, gateway, stubLimiter{allow: true}, logrus.New())

	_, err := svc.HandleWeatherRequest(context.Background(), "1.2.3.4", "Oslo", "metric")
	require.NoError(t, err)

	// age the stored record past the freshness window, then change upstream
	store.records[0].CreatedAt = time.Now().Add(-FreshnessWindow - time.Minute)
	gateway.payload = []byte(`{"main":{"temp":25},"weather":[{"description":"sunny"}]}`)

	record, err := svc.HandleWeatherRequest(context.Background(), "1.2.3.4", "Oslo", "metric")
	require.NoError(t, err)

	assert.False(t, record.FromCache)
	assert.Equal(t, 25.0, *record.Temperature)
	assert.Equal(t, "sunny", *record.Description)
	assert.Equal(t, 2, gateway.calls)
}

func TestQueryService_DifferentUnitsBypassCache(t *testing.T) {
	store := &memoryStore{}
	gateway := &stubGateway{payload: []byte(`{"main":{"temp":20}}`)}
	svc := NewQueryService(store, gateway, stubLimiter{allow: true}, logrus.New())

	_, err := svc.HandleWeatherRequest(context.Background(), "1.2.3.4", "Oslo", "metric")
	require.NoError(t, err)

	record, err := svc.HandleWeatherRequest(context.Background(), "1.2.3.4", "Oslo", "imperial")
	require.NoError(t, err)
	assert.False(t, record.FromCache)
	assert.Equal(t, 2, gateway.calls)
}

func TestQueryService_UpstreamFailureWritesNothing(t *testing.T) {
	store := &memoryStore{}
	gateway := &stubGateway{err: weather.ErrUpstream}
	svc := NewQueryService(store, gateway, stubLimiter{allow: true}, logrus.New())

	_, err := svc.HandleWeatherRequest(context.Background(), "1.2.3.4", "Oslo", "metric")

	assert.ErrorIs(t, err, weather.ErrUpstream)
	assert.Empty(t, store.records)
}

func TestQueryService_MalformedPayloadStillStored(t *testing.T) {
	store := &memoryStore{}
	gateway := &stubGateway{payload: []byte(`{"unexpected":true}`)}
	svc := NewQueryService(store, gateway, stubLimiter{allow: true}, logrus.New())

	record, err := svc.HandleWeatherRequest(context.Background(), "1.2.3.4", "Oslo", "metric")

	require.NoError(t, err)
	assert.Nil(t, record.Temperature)
	assert.Nil(t, record.Description)
	assert.Len(t, store.records, 1)
}

func TestQueryService_OneRowPerAcceptedRequest(t *testing.T) {
	store := &memoryStore{}
	gateway := &stubGateway{payload: []byte(`{"main":{"temp":20}}`)}
	svc := NewQueryService(store, gateway, stubLimiter{allow: true}, logrus.New())

	for i, city := range []string{"Oslo", "Oslo", "Riga", "Oslo"} {
		before := len(store.records)
		_, err := svc.HandleWeatherRequest(context.Background(), "1.2.3.4", city, "metric")
		require.NoError(t, err, "request %d", i)
		assert.Equal(t, before+1, len(store.records))
	}
}
