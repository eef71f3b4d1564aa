package entity

import "time"

// Estados de un pedido de compra.
const (
	OrderStatusOpen   = "open"
	OrderStatusClosed = "closed"
)

// PurchaseOrder representa un pedido de un reactivo que aún no llegó.
// Pasa de open a closed cuando una entrada declara atenderlo; vuelve a open si esa entrada se elimina.
type PurchaseOrder struct {
	ID              int64
	ReagentName     string
	NominalQuantity string // ej: "500g"
	OrderDate       time.Time
	Controlled      bool
	Status          string
	UserID          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsOpen indica si el pedido sigue pendiente.
func (o *PurchaseOrder) IsOpen() bool { return o.Status == OrderStatusOpen }
