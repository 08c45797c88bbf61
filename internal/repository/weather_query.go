package repository

import (
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/weatherq/weather-query-api/internal/models"
	"github.com/weatherq/weather-query-api/internal/weather"
)

// WeatherQueryRepositoryImpl implements models.WeatherQueryRepository
type WeatherQueryRepositoryImpl struct {
	db *gorm.DB
}

func NewWeatherQueryRepository(db *gorm.DB) models.WeatherQueryRepository {
	return &WeatherQueryRepositoryImpl{db: db}
}

func (r *WeatherQueryRepositoryImpl) Insert(city, units string, payload []byte, fromCache bool) (*models.WeatherQuery, error) {
	temperature, description := weather.ParseConditions(payload)

	record := &models.WeatherQuery{
		City:        city,
		Units:       units,
		Temperature: temperature,
		Description: description,
		RawJSON:     datatypes.JSON(payload),
		FromCache:   fromCache,
	}

	if err := r.db.Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *WeatherQueryRepositoryImpl) FindRecent(city, units string, window time.Duration) (*models.WeatherQuery, error) {
	since := time.Now().Add(-window)

	var record models.WeatherQuery
	err := r.db.Where("LOWER(city) = LOWER(?)", city).
		Where("units = ?", units).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *WeatherQueryRepositoryImpl) Search(filters models.HistoryFilters, page, perPage int) ([]models.WeatherQuery, int64, error) {
	var total int64
	if err := r.filtered(filters).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.WeatherQuery
	err := r.filtered(filters).
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&records).Error
	return records, total, err
}

func (r *WeatherQueryRepositoryImpl) SearchAll(filters models.HistoryFilters) ([]models.WeatherQuery, error) {
	var records []models.WeatherQuery
	err := r.filtered(filters).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

func (r *WeatherQueryRepositoryImpl) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.WeatherQuery{}).Count(&count).Error
	return count, err
}

// filtered builds a fresh query with the optional history constraints applied.
func (r *WeatherQueryRepositoryImpl) filtered(filters models.HistoryFilters) *gorm.DB {
	query := r.db.Model(&models.WeatherQuery{})
	if filters.City != "" {
		query = query.Where("LOWER(city) LIKE ?", "%"+strings.ToLower(filters.City)+"%")
	}
	if filters.From != nil {
		query = query.Where("created_at >= ?", *filters.From)
	}
	if filters.To != nil {
		query = query.Where("created_at <= ?", *filters.To)
	}
	return query
}
