package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/weatherq/weather-query-api/internal/models"
)

// ErrRateLimited is returned when a client identity has exhausted its window.
var ErrRateLimited = errors.New("rate limit exceeded")

// FreshnessWindow is how long a stored result stays reusable without going
// back upstream.
const FreshnessWindow = 5 * time.Minute

// RateLimiter gates requests per client identity.
type RateLimiter interface {
	Hit(identity string) bool
}

// WeatherGateway fetches the raw provider payload for one city.
type WeatherGateway interface {
	Fetch(ctx context.Context, city, units string) ([]byte, error)
}

type QueryService struct {
	repo    models.WeatherQueryRepository
	gateway WeatherGateway
	limiter RateLimiter
	logger  *logrus.Logger
}

func NewQueryService(
	repo models.WeatherQueryRepository,
	gateway WeatherGateway,
	limiter RateLimiter,
	logger *logrus.Logger,
) *QueryService {
	return &QueryService{
		repo:    repo,
		gateway: gateway,
		limiter: limiter,
		logger:  logger,
	}
}

// HandleWeatherRequest runs the per-request decision sequence: rate limiter,
// then a fresh stored record, then the upstream provider. Every request that
// passes the limiter inserts exactly one new record; a cache hit duplicates
// the stored payload into a fresh row instead of touching the old one, so the
// history stays an append-only log of attempts. Rate-limited and
// upstream-failed requests write nothing.
func (s *QueryService) HandleWeatherRequest(ctx context.Context, identity, city, units string) (*models.WeatherQuery, error) {
	if !s.limiter.Hit(identity) {
		s.logger.WithFields(logrus.Fields{
			"identity": identity,
			"city":     city,
		}).Warn("Rate limit exceeded")
		return nil, ErrRateLimited
	}

	cached, err := s.repo.FindRecent(city, units, FreshnessWindow)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		record, err := s.repo.Insert(city, units, cached.RawJSON, true)
		if err != nil {
			return nil, err
		}

		s.logger.WithFields(logrus.Fields{
			"city":      city,
			"units":     units,
			"reused_id": cached.ID,
		}).Info("Weather served from recent record")
		return record, nil
	}

	payload, err := s.gateway.Fetch(ctx, city, units)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"city":  city,
			"units": units,
		}).Error("External API request failed")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"city":  city,
		"units": units,
	}).Info("External API request succeeded")

	return s.repo.Insert(city, units, payload, false)
}
