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

var _ repository.OutboundRepository = (*OutboundRepo)(nil)

const outboundColumns = `id, transaction_id, lot_id, inbound_id, reagent_name, nominal_size, brand, location,
	quantity, unit, controlled, withdrawn_at, user_id, notes, created_at`

// OutboundRepo implementación sobre PostgreSQL (usable con pool o tx).
type OutboundRepo struct {
	q Querier
}

// NewOutboundRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOutboundRepository(q Querier) *OutboundRepo {
	return &OutboundRepo{q: q}
}

func scanOutbound(row pgx.Row) (*entity.OutboundMovement, error) {
	var m entity.OutboundMovement
	err := row.Scan(&m.ID, &m.TransactionID, &m.LotID, &m.InboundID, &m.ReagentName, &m.NominalSize,
		&m.Brand, &m.Location, &m.Quantity, &m.Unit, &m.Controlled, &m.WithdrawnAt, &m.UserID,
		&m.Notes, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create persiste la salida y asigna su ID.
func (r *OutboundRepo) Create(ctx context.Context, m *entity.OutboundMovement) error {
	if m.TransactionID == "" {
		m.TransactionID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO outbound_movements (transaction_id, lot_id, inbound_id, reagent_name, nominal_size, brand,
			location, quantity, unit, controlled, withdrawn_at, user_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		m.TransactionID, m.LotID, m.InboundID, m.ReagentName, m.NominalSize, m.Brand,
		m.Location, m.Quantity, m.Unit, m.Controlled, m.WithdrawnAt, m.UserID, m.Notes, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		return mapWriteError("create outbound movement", err)
	}
	return nil
}

// GetByID obtiene una salida; (nil, nil) si no existe.
func (r *OutboundRepo) GetByID(ctx context.Context, id int64) (*entity.OutboundMovement, error) {
	m, err := scanOutbound(r.q.QueryRow(ctx, `SELECT `+outboundColumns+` FROM outbound_movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get outbound movement: %w", err)
	}
	return m, nil
}

// List lista las salidas, más recientes primero.
func (r *OutboundRepo) List(ctx context.Context) ([]*entity.OutboundMovement, error) {
	rows, err := r.q.Query(ctx, `SELECT `+outboundColumns+` FROM outbound_movements ORDER BY withdrawn_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list outbound movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.OutboundMovement
	for rows.Next() {
		m, err := scanOutbound(rows)
		if err != nil {
			return nil, fmt.Errorf("scan outbound movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// CountByInbound cuenta las salidas que referencian una entrada.
func (r *OutboundRepo) CountByInbound(ctx context.Context, inboundID int64) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM outbound_movements WHERE inbound_id = $1`, inboundID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count outbound by inbound: %w", err)
	}
	return n, nil
}

// Update corrige fecha y observaciones. domain.ErrNotFound si no existe.
func (r *OutboundRepo) Update(ctx context.Context, m *entity.OutboundMovement) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE outbound_movements SET withdrawn_at = $2, notes = $3 WHERE id = $1`,
		m.ID, m.WithdrawnAt, m.Notes,
	)
	if err != nil {
		return fmt.Errorf("update outbound movement: %w", err)
	}
	return expectOne(tag, domain.ErrNotFound)
}

// Delete elimina la salida. domain.ErrNotFound si no existe.
func (r *OutboundRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM outbound_movements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete outbound movement: %w", err)
	}
	return expectOne(tag, domain.ErrNotFound)
}
