package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Reagentes-api/internal/application/inventory"
	"github.com/jhoicas/Reagentes-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, bloquea la tabla de lotes para escritura concurrente,
// ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	orderRepo repository.OrderRepository,
	inboundRepo repository.InboundRepository,
	outboundRepo repository.OutboundRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Otras instancias del servicio esperan aquí; la asignación de IDs de lote (max+1) queda serializada.
	if _, err := tx.Exec(ctx, `LOCK TABLE reagent_lots IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return fmt.Errorf("lock reagent_lots: %w", err)
	}

	if err := fn(
		NewLotRepository(tx),
		NewOrderRepository(tx),
		NewInboundRepository(tx),
		NewOutboundRepository(tx),
	); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
