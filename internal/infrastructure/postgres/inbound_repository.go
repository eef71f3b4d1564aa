package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Reagentes-api/internal/domain"
	"github.com/jhoicas/Reagentes-api/internal/domain/entity"
	"github.com/jhoicas/Reagentes-api/internal/domain/repository"
)

var _ repository.InboundRepository = (*InboundRepo)(nil)

const inboundColumns = `id, transaction_id, lot_id, order_id, reagent_name, packages, brand, nominal_size, location,
	controlled, received_at, expires_at, quantity, unit, remaining, user_id, created_at`

// InboundRepo implementación sobre PostgreSQL (usable con pool o tx).
type InboundRepo struct {
	q Querier
}

// NewInboundRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInboundRepository(q Querier) *InboundRepo {
	return &InboundRepo{q: q}
}

func scanInbound(row pgx.Row) (*entity.InboundMovement, error) {
	var m entity.InboundMovement
	err := row.Scan(&m.ID, &m.TransactionID, &m.LotID, &m.OrderID, &m.ReagentName, &m.Packages,
		&m.Brand, &m.NominalSize, &m.Location, &m.Controlled, &m.ReceivedAt, &m.ExpiresAt,
		&m.Quantity, &m.Unit, &m.Remaining, &m.UserID, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create persiste la entrada y asigna su ID.
func (r *InboundRepo) Create(ctx context.Context, m *entity.InboundMovement) error {
	if m.TransactionID == "" {
		m.TransactionID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO inbound_movements (transaction_id, lot_id, order_id, reagent_name, packages, brand, nominal_size,
			location, controlled, received_at, expires_at, quantity, unit, remaining, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		m.TransactionID, m.LotID, m.OrderID, m.ReagentName, m.Packages, m.Brand, m.NominalSize,
		m.Location, m.Controlled, m.ReceivedAt, m.ExpiresAt, m.Quantity, m.Unit, m.Remaining,
		m.UserID, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		return mapWriteError("create inbound movement", err)
	}
	return nil
}

// GetByID obtiene una entrada; (nil, nil) si no existe.
func (r *InboundRepo) GetByID(ctx context.Context, id int64) (*entity.InboundMovement, error) {
	m, err := scanInbound(r.q.QueryRow(ctx, `SELECT `+inboundColumns+` FROM inbound_movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inbound movement: %w", err)
	}
	return m, nil
}

// List lista las entradas, más recientes primero.
func (r *InboundRepo) List(ctx context.Context) ([]*entity.InboundMovement, error) {
	rows, err := r.q.Query(ctx, `SELECT `+inboundColumns+` FROM inbound_movements ORDER BY received_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list inbound movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.InboundMovement
	for rows.Next() {
		m, err := scanInbound(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inbound movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Update reescribe la entrada. domain.ErrNotFound si no existe.
func (r *InboundRepo) Update(ctx context.Context, m *entity.InboundMovement) error {
	query := `
		UPDATE inbound_movements SET lot_id = $2, order_id = $3, brand = $4, location = $5,
			received_at = $6, expires_at = $7, remaining = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		m.ID, m.LotID, m.OrderID, m.Brand, m.Location, m.ReceivedAt, m.ExpiresAt, m.Remaining,
	)
	if err != nil {
		return mapWriteError("update inbound movement", err)
	}
	return expectOne(tag, domain.ErrNotFound)
}

// Delete elimina la entrada. domain.ErrConflict si alguna salida la referencia.
func (r *InboundRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM inbound_movements WHERE id = $1`, id)
	if err != nil {
		return mapWriteError("delete inbound movement", err)
	}
	return expectOne(tag, domain.ErrNotFound)
}
