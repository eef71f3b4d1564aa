package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InboundMovement registra la llegada de reactivo (entrada) y el lote al que se sumó.
// Remaining baja con las salidas que referencian esta entrada.
type InboundMovement struct {
	ID            int64
	TransactionID string
	LotID         int64
	OrderID       *int64 // pedido atendido, nil si la entrada no viene de un pedido
	ReagentName   string
	Packages      int
	Brand         string
	NominalSize   string
	Location      string
	Controlled    bool
	ReceivedAt    time.Time
	ExpiresAt     *time.Time
	Quantity      decimal.Decimal // total convertido (tamaño × embalajes)
	Unit          string
	Remaining     decimal.Decimal
	UserID        string
	CreatedAt     time.Time
}
