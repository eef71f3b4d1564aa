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

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, reagent_name, nominal_quantity, order_date, controlled, status, user_id, created_at, updated_at`

// OrderRepo implementación sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

func scanOrder(row pgx.Row) (*entity.PurchaseOrder, error) {
	var o entity.PurchaseOrder
	err := row.Scan(&o.ID, &o.ReagentName, &o.NominalQuantity, &o.OrderDate, &o.Controlled,
		&o.Status, &o.UserID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create persiste el pedido y asigna su ID.
func (r *OrderRepo) Create(ctx context.Context, order *entity.PurchaseOrder) error {
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	query := `
		INSERT INTO purchase_orders (reagent_name, nominal_quantity, order_date, controlled, status, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		order.ReagentName, order.NominalQuantity, order.OrderDate, order.Controlled,
		order.Status, order.UserID, order.CreatedAt, order.UpdatedAt,
	).Scan(&order.ID)
	if err != nil {
		return mapWriteError("create order", err)
	}
	return nil
}

// GetByID obtiene un pedido; (nil, nil) si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM purchase_orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// List lista pedidos por estado ("" = todos), más recientes primero.
func (r *OrderRepo) List(ctx context.Context, status string) ([]*entity.PurchaseOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM purchase_orders`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY order_date DESC, id DESC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// Update actualiza el pedido. domain.ErrOrderNotFound si no existe.
func (r *OrderRepo) Update(ctx context.Context, order *entity.PurchaseOrder) error {
	order.UpdatedAt = time.Now()
	query := `
		UPDATE purchase_orders SET reagent_name = $2, nominal_quantity = $3, order_date = $4,
			controlled = $5, status = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		order.ID, order.ReagentName, order.NominalQuantity, order.OrderDate,
		order.Controlled, order.Status, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return expectOne(tag, domain.ErrOrderNotFound)
}

// Delete elimina el pedido. domain.ErrOrderNotFound si no existe.
func (r *OrderRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM purchase_orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return expectOne(tag, domain.ErrOrderNotFound)
}
