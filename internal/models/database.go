package models

// GORM models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
)

// WeatherQuery is one row per query attempt. Cache hits insert a fresh row too;
// the table is an append-only log, not a deduplicated result store.
type WeatherQuery struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	City        string         `json:"city" gorm:"size:255;not null;index"`
	Units       string         `json:"units" gorm:"size:10;not null"`
	Temperature *float64       `json:"temperature"`
	Description *string        `json:"description" gorm:"size:255"`
	RawJSON     datatypes.JSON `json:"raw_json" gorm:"not null"`
	FromCache   bool           `json:"from_cache" gorm:"not null;default:false"`
	CreatedAt   time.Time      `json:"created_at" gorm:"type:timestamptz;not null;default:now()"`
}

func (WeatherQuery) TableName() string { return "weather_queries" }

// HistoryFilters are the optional constraints for history reads. Zero values
// mean "no constraint".
type HistoryFilters struct {
	City string
	From *time.Time
	To   *time.Time
}

// WeatherQueryRepository is the persistence boundary for query records.
type WeatherQueryRepository interface {
	// Insert parses temperature/description out of payload and persists a new
	// record. The returned record carries the server-assigned id and timestamp.
	Insert(city, units string, payload []byte, fromCache bool) (*WeatherQuery, error)
	// FindRecent returns the most recent record matching city (case-insensitive)
	// and units created within the window, or nil when there is none.
	FindRecent(city, units string, window time.Duration) (*WeatherQuery, error)
	// Search returns one page of filtered records, newest first, plus the total
	// count of the filtered set before pagination. Pages are 1-indexed.
	Search(filters HistoryFilters, page, perPage int) ([]WeatherQuery, int64, error)
	// SearchAll returns the full filtered set, newest first.
	SearchAll(filters HistoryFilters) ([]WeatherQuery, error)
	// Count is a trivial probe used by the health check.
	Count() (int64, error)
}

func (wq *WeatherQuery) Validate() error {
	if wq.City == "" {
		return fmt.Errorf("city is required")
	}
	if wq.Units != UnitsMetric && wq.Units != UnitsImperial {
		return fmt.Errorf("invalid units: %s", wq.Units)
	}
	return nil
}

// GORM hooks
func (wq *WeatherQuery) BeforeCreate(tx *gorm.DB) error {
	return wq.Validate()
}
