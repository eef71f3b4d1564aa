package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OutboundMovement registra el retiro de reactivo (salida).
// Guarda copia de nombre, tamaño, marca y ubicación porque el lote puede eliminarse al agotarse.
type OutboundMovement struct {
	ID            int64
	TransactionID string
	LotID         int64
	InboundID     *int64
	ReagentName   string
	NominalSize   string
	Brand         string
	Location      string
	Quantity      decimal.Decimal
	Unit          string
	Controlled    bool
	WithdrawnAt   time.Time
	UserID        string
	Notes         string
	CreatedAt     time.Time
}
