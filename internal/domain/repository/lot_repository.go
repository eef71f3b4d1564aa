package repository

import (
	"context"

	"github.com/jhoicas/Reagentes-api/internal/domain/entity"
)

// LotRepository define el puerto de persistencia para lotes de reactivo (DIP).
// El ledger asigna el ID (máximo + 1) antes de Insert.
type LotRepository interface {
	// List devuelve todos los lotes ordenados por ID.
	List(ctx context.Context) ([]*entity.ReagentLot, error)
	GetByID(ctx context.Context, id int64) (*entity.ReagentLot, error)
	Insert(ctx context.Context, lot *entity.ReagentLot) error
	Update(ctx context.Context, lot *entity.ReagentLot) error
	Delete(ctx context.Context, id int64) error
}
