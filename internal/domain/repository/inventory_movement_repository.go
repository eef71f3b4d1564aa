package repository

import (
	"context"

	"github.com/jhoicas/Reagentes-api/internal/domain/entity"
)

// InboundRepository define el puerto de persistencia para entradas.
type InboundRepository interface {
	// Create asigna el ID de la entrada.
	Create(ctx context.Context, movement *entity.InboundMovement) error
	GetByID(ctx context.Context, id int64) (*entity.InboundMovement, error)
	// List devuelve las entradas por fecha de recepción descendente.
	List(ctx context.Context) ([]*entity.InboundMovement, error)
	Update(ctx context.Context, movement *entity.InboundMovement) error
	Delete(ctx context.Context, id int64) error
}

// OutboundRepository define el puerto de persistencia para salidas.
type OutboundRepository interface {
	// Create asigna el ID de la salida.
	Create(ctx context.Context, movement *entity.OutboundMovement) error
	GetByID(ctx context.Context, id int64) (*entity.OutboundMovement, error)
	// List devuelve las salidas por fecha de retiro descendente.
	List(ctx context.Context) ([]*entity.OutboundMovement, error)
	// CountByInbound cuántas salidas referencian la entrada.
	CountByInbound(ctx context.Context, inboundID int64) (int, error)
	Update(ctx context.Context, movement *entity.OutboundMovement) error
	Delete(ctx context.Context, id int64) error
}
