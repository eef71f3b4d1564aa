package dto

import "time"

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	ReagentName     string `json:"reagent_name" validate:"required,max=200"`
	NominalQuantity string `json:"nominal_quantity" validate:"required,max=50"`
	OrderDate       string `json:"order_date" validate:"required,datetime=2006-01-02"`
	Controlled      bool   `json:"controlled"`
}

// UpdateOrderRequest body para PUT /api/orders/:id. Campos ausentes no cambian.
type UpdateOrderRequest struct {
	ReagentName     *string `json:"reagent_name" validate:"omitempty,max=200"`
	NominalQuantity *string `json:"nominal_quantity" validate:"omitempty,max=50"`
	OrderDate       *string `json:"order_date" validate:"omitempty,datetime=2006-01-02"`
	Controlled      *bool   `json:"controlled"`
}

// OrderResponse pedido de compra.
type OrderResponse struct {
	ID              int64     `json:"id"`
	ReagentName     string    `json:"reagent_name"`
	NominalQuantity string    `json:"nominal_quantity"`
	OrderDate       string    `json:"order_date"`
	Controlled      bool      `json:"controlled"`
	Status          string    `json:"status"`
	UserID          string    `json:"user_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
