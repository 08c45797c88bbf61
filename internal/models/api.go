package models

import "time"

type WeatherParams struct {
	City  string `form:"city" binding:"required"`
	Units string `form:"units" binding:"omitempty,oneof=metric imperial"`
}

type WeatherResponse struct {
	City        string    `json:"city"`
	Units       string    `json:"units"`
	Temperature *float64  `json:"temperature"`
	Description *string   `json:"description"`
	FromCache   bool      `json:"from_cache"`
	CreatedAt   time.Time `json:"created_at"`
}

type HistoryParams struct {
	City    string `form:"city"`
	From    string `form:"from"`
	To      string `form:"to"`
	Page    int    `form:"page,default=1" binding:"omitempty,min=1"`
	PerPage int    `form:"per_page,default=10" binding:"omitempty,min=1,max=100"`
	Export  string `form:"export"`
}

type HistoryItem struct {
	ID uint `json:"id"`
	WeatherResponse
}

type HistoryPage struct {
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
	Total   int64         `json:"total"`
	Items   []HistoryItem `json:"items"`
}

type HealthResponse struct {
	DB string `json:"db"`
}
