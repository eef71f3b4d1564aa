package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateInboundRequest body para POST /api/inbound.
// Con order_id el nombre del reactivo sale del pedido.
type CreateInboundRequest struct {
	OrderID     *int64 `json:"order_id" validate:"omitempty,min=1"`
	ReagentName string `json:"reagent_name" validate:"omitempty,max=200"`
	NominalSize string `json:"nominal_size" validate:"omitempty,max=50"`
	Brand       string `json:"brand" validate:"required,max=120"`
	Location    string `json:"location" validate:"required,max=120"`
	Packages    int    `json:"packages" validate:"required,min=1"`
	Controlled  bool   `json:"controlled"`
	ReceivedAt  string `json:"received_at" validate:"required,datetime=2006-01-02"`
	ExpiresAt   string `json:"expires_at" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateInboundRequest body para PUT /api/inbound/:id. Solo campos corregibles.
type UpdateInboundRequest struct {
	Location   *string `json:"location" validate:"omitempty,max=120"`
	Brand      *string `json:"brand" validate:"omitempty,max=120"`
	ReceivedAt *string `json:"received_at" validate:"omitempty,datetime=2006-01-02"`
	ExpiresAt  *string `json:"expires_at" validate:"omitempty,datetime=2006-01-02"`
}

// InboundResponse entrada registrada.
type InboundResponse struct {
	ID            int64           `json:"id"`
	TransactionID string          `json:"transaction_id"`
	LotID         int64           `json:"lot_id"`
	OrderID       *int64          `json:"order_id,omitempty"`
	ReagentName   string          `json:"reagent_name"`
	NominalSize   string          `json:"nominal_size"`
	Brand         string          `json:"brand"`
	Location      string          `json:"location"`
	Packages      int             `json:"packages"`
	Controlled    bool            `json:"controlled"`
	ReceivedAt    string          `json:"received_at"`
	ExpiresAt     *string         `json:"expires_at,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	Remaining     decimal.Decimal `json:"remaining"`
	Unit          string          `json:"unit"`
	UserID        string          `json:"user_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CreateOutboundRequest body para POST /api/outbound.
// Con inbound_id los campos vacíos de la clave se toman de la entrada.
type CreateOutboundRequest struct {
	InboundID   *int64          `json:"inbound_id" validate:"omitempty,min=1"`
	ReagentName string          `json:"reagent_name" validate:"required_without=InboundID,max=200"`
	NominalSize string          `json:"nominal_size" validate:"max=50"`
	Brand       string          `json:"brand" validate:"max=120"`
	Quantity    decimal.Decimal `json:"quantity" validate:"positive_decimal"`
	WithdrawnAt string          `json:"withdrawn_at" validate:"omitempty,datetime=2006-01-02"`
	Notes       string          `json:"notes" validate:"max=500"`
}

// UpdateOutboundRequest body para PUT /api/outbound/:id. La cantidad no se corrige.
type UpdateOutboundRequest struct {
	WithdrawnAt *string `json:"withdrawn_at" validate:"omitempty,datetime=2006-01-02"`
	Notes       *string `json:"notes" validate:"omitempty,max=500"`
}

// OutboundResponse salida registrada.
type OutboundResponse struct {
	ID            int64           `json:"id"`
	TransactionID string          `json:"transaction_id"`
	LotID         int64           `json:"lot_id"`
	InboundID     *int64          `json:"inbound_id,omitempty"`
	ReagentName   string          `json:"reagent_name"`
	NominalSize   string          `json:"nominal_size"`
	Brand         string          `json:"brand"`
	Location      string          `json:"location"`
	Quantity      decimal.Decimal `json:"quantity"`
	Unit          string          `json:"unit"`
	Controlled    bool            `json:"controlled"`
	WithdrawnAt   string          `json:"withdrawn_at"`
	Notes         string          `json:"notes"`
	UserID        string          `json:"user_id"`
	CreatedAt     time.Time       `json:"created_at"`
}
