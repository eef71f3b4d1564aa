package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Reagentes-api/internal/domain"
	"github.com/jhoicas/Reagentes-api/internal/domain/entity"
	"github.com/jhoicas/Reagentes-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = `id, name, nominal_size, brand, location, quantity, unit, packages, controlled, created_at, updated_at`

// LotRepo implementación sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

func scanLot(row pgx.Row) (*entity.ReagentLot, error) {
	var l entity.ReagentLot
	err := row.Scan(&l.ID, &l.Name, &l.NominalSize, &l.Brand, &l.Location,
		&l.Quantity, &l.Unit, &l.Packages, &l.Controlled, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// List devuelve todos los lotes ordenados por ID.
func (r *LotRepo) List(ctx context.Context) ([]*entity.ReagentLot, error) {
	rows, err := r.q.Query(ctx, `SELECT `+lotColumns+` FROM reagent_lots ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()
	var list []*entity.ReagentLot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// GetByID obtiene un lote; (nil, nil) si no existe.
func (r *LotRepo) GetByID(ctx context.Context, id int64) (*entity.ReagentLot, error) {
	l, err := scanLot(r.q.QueryRow(ctx, `SELECT `+lotColumns+` FROM reagent_lots WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return l, nil
}

// Insert persiste un lote nuevo con el ID ya asignado.
func (r *LotRepo) Insert(ctx context.Context, lot *entity.ReagentLot) error {
	now := time.Now()
	if lot.CreatedAt.IsZero() {
		lot.CreatedAt = now
	}
	lot.UpdatedAt = now
	nameKey, sizeKey, brandKey := lotKeyColumns(lot.Name, lot.NominalSize, lot.Brand)
	query := `
		INSERT INTO reagent_lots (id, name, nominal_size, brand, name_key, size_key, brand_key,
			location, quantity, unit, packages, controlled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		lot.ID, lot.Name, lot.NominalSize, lot.Brand, nameKey, sizeKey, brandKey,
		lot.Location, lot.Quantity, lot.Unit, lot.Packages, lot.Controlled, lot.CreatedAt, lot.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("insert lot", err)
	}
	return nil
}

// Update reescribe los datos mutables del lote. domain.ErrNotFound si no existe.
func (r *LotRepo) Update(ctx context.Context, lot *entity.ReagentLot) error {
	lot.UpdatedAt = time.Now()
	query := `
		UPDATE reagent_lots SET location = $2, quantity = $3, packages = $4, controlled = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, lot.ID, lot.Location, lot.Quantity, lot.Packages, lot.Controlled, lot.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update lot: %w", err)
	}
	return expectOne(tag, domain.ErrNotFound)
}

// Delete elimina un lote agotado. domain.ErrNotFound si no existe.
func (r *LotRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM reagent_lots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lot: %w", err)
	}
	return expectOne(tag, domain.ErrNotFound)
}
