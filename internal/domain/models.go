package domain

import (
	"time"

	"github.com/andresuchdata/stockcast/internal/forecast"
	"github.com/shopspring/decimal"
)

// Product is a stocked item with its replenishment settings
type Product struct {
	ID           string          `json:"id" db:"id"`
	SKU          string          `json:"sku" db:"sku"`
	Name         string          `json:"name" db:"name"`
	Category     string          `json:"category" db:"category"`
	TemplateID   string          `json:"template_id" db:"template_id"`
	CurrentStock float64         `json:"current_stock" db:"current_stock"`
	MinStock     float64         `json:"min_stock" db:"min_stock"`
	UnitCost     decimal.Decimal `json:"unit_cost" db:"unit_cost"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// ProductFilter narrows product listings
type ProductFilter struct {
	IDs      []string `json:"ids"`
	Category string   `json:"category"`
}

// ProductForecast is a forecast run for a stored product
type ProductForecast struct {
	Product     Product          `json:"product"`
	TemplateID  string           `json:"template_id"`
	HorizonDays int              `json:"horizon_days"`
	GeneratedAt time.Time        `json:"generated_at"`
	Result      *forecast.Result `json:"result"`
}

// ProductOverview is one row of a demand overview
type ProductOverview struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	forecast.Overview
	Error string `json:"error,omitempty"`
}

// DemandOverview represents the overview across a set of products
type DemandOverview struct {
	GeneratedAt time.Time         `json:"generated_at"`
	PeriodDays  int               `json:"period_days"`
	Items       []ProductOverview `json:"items"`
	Summary     []PrioritySummary `json:"summary"`
}

// SimulationRequest is the payload of an ad-hoc forecast over supplied history
type SimulationRequest struct {
	History      []forecast.SalesRecord `json:"history"`
	CurrentStock float64                `json:"current_stock"`
	MinStock     float64                `json:"min_stock"`
	TemplateID   string                 `json:"template_id"`
	HorizonDays  int                    `json:"horizon_days"`
}

// ToRequest fills engine defaults for omitted fields.
func (s SimulationRequest) ToRequest() forecast.Request {
	req := forecast.NewRequest(s.History, s.CurrentStock, s.MinStock)
	if s.TemplateID != "" {
		req.TemplateID = s.TemplateID
	}
	if s.HorizonDays != 0 {
		req.HorizonDays = s.HorizonDays
	}
	return req
}
