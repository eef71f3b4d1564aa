package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LotFilterQuery query params de GET /api/lots.
type LotFilterQuery struct {
	Name        string `query:"name" validate:"max=200"`
	Brand       string `query:"brand" validate:"max=120"`
	Size        string `query:"size" validate:"max=50"`
	Location    string `query:"location" validate:"max=120"`
	MinQuantity string `query:"min_quantity" validate:"omitempty,numeric"`
	MaxQuantity string `query:"max_quantity" validate:"omitempty,numeric"`
	Critical    bool   `query:"critical"`
	Depleted    bool   `query:"depleted"`
}

// LotResponse lote de reactivo.
type LotResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	NominalSize string          `json:"nominal_size"`
	Brand       string          `json:"brand"`
	Location    string          `json:"location"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	Packages    int             `json:"packages"`
	Controlled  bool            `json:"controlled"`
	Critical    bool            `json:"critical"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// SummaryResponse indicadores del stock.
type SummaryResponse struct {
	TotalLots         int                        `json:"total_lots"`
	TotalQuantity     decimal.Decimal            `json:"total_quantity"`
	CriticalLots      int                        `json:"critical_lots"`
	DepletedLots      int                        `json:"depleted_lots"`
	MeanQuantity      decimal.Decimal            `json:"mean_quantity"`
	MaxQuantityLot    *LotResponse               `json:"max_quantity_lot"`
	QuantityByUnit    map[string]decimal.Decimal `json:"quantity_by_unit"`
	CriticalThreshold decimal.Decimal            `json:"critical_threshold"`
}

// SearchItemResponse resultado de GET /api/lots/search.
type SearchItemResponse struct {
	Status  string            `json:"status"` // in_stock | not_arrived
	Lot     *LotResponse      `json:"lot,omitempty"`
	Inbound []InboundResponse `json:"inbound,omitempty"`
	Order   *OrderResponse    `json:"order,omitempty"`
}

// GenerateReportRequest body para POST /api/reports.
type GenerateReportRequest struct {
	Type string `json:"type" validate:"required,oneof=open_orders closed_orders stock inbound_history outbound_history"`
}

// ReportResponse reporte tabular.
type ReportResponse struct {
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Columns     []string   `json:"columns"`
	Rows        [][]string `json:"rows"`
	Total       int        `json:"total"`
	GeneratedAt time.Time  `json:"generated_at"`
}
