package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Reagentes-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción del almacén, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de stock: si fn devuelve error no queda ningún cambio.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		orderRepo repository.OrderRepository,
		inboundRepo repository.InboundRepository,
		outboundRepo repository.OutboundRepository,
	) error) error
}

// Tipos de evento de stock.
const (
	EventInboundRecorded   = "inbound.recorded"
	EventInboundCorrected  = "inbound.corrected"
	EventInboundDeleted    = "inbound.deleted"
	EventOutboundRecorded  = "outbound.recorded"
	EventOutboundCorrected = "outbound.corrected"
	EventOutboundDeleted   = "outbound.deleted"
)

// StockEvent cambio confirmado en el ledger, emitido después del commit.
type StockEvent struct {
	Type        string          `json:"type"`
	MovementID  int64           `json:"movement_id"`
	LotID       int64           `json:"lot_id"`
	ReagentName string          `json:"reagent_name"`
	NominalSize string          `json:"nominal_size"`
	Brand       string          `json:"brand"`
	Quantity    decimal.Decimal `json:"quantity"`     // cantidad del movimiento
	LotQuantity decimal.Decimal `json:"lot_quantity"` // cantidad del lote tras el cambio
	Unit        string          `json:"unit"`
	Depleted    bool            `json:"depleted"`
	UserID      string          `json:"user_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// EventPublisher puerto de salida para notificar cambios de stock (websocket, métricas).
type EventPublisher interface {
	Publish(ctx context.Context, event StockEvent)
}

// Publishers reparte cada evento a varios publicadores.
type Publishers []EventPublisher

// Publish implementa EventPublisher.
func (p Publishers) Publish(ctx context.Context, event StockEvent) {
	for _, pub := range p {
		if pub != nil {
			pub.Publish(ctx, event)
		}
	}
}
