package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Reagentes-api/internal/domain"
	"github.com/jhoicas/Reagentes-api/internal/domain/entity"
	"github.com/jhoicas/Reagentes-api/internal/domain/repository"
)

// OrderQueue administra los pedidos de compra pendientes.
type OrderQueue struct {
	orders repository.OrderRepository
	now    func() time.Time
}

// NewOrderQueue construye la cola sobre orders (repositorio directo o atado a una transacción).
func NewOrderQueue(orders repository.OrderRepository) *OrderQueue {
	return &OrderQueue{orders: orders, now: time.Now}
}

// OrderInput datos para crear un pedido.
type OrderInput struct {
	ReagentName     string
	NominalQuantity string
	OrderDate       time.Time
	Controlled      bool
	UserID          string
}

// OrderUpdate campos editables de un pedido; nil = sin cambio.
type OrderUpdate struct {
	ReagentName     *string
	NominalQuantity *string
	OrderDate       *time.Time
	Controlled      *bool
}

// Create registra un pedido en estado open.
func (q *OrderQueue) Create(ctx context.Context, in OrderInput) (*entity.PurchaseOrder, error) {
	name := strings.TrimSpace(in.ReagentName)
	if name == "" {
		return nil, domain.NewValidationError("reagent_name", "es obligatorio")
	}
	size := strings.TrimSpace(in.NominalQuantity)
	if size == "" {
		return nil, domain.NewValidationError("nominal_quantity", "es obligatorio")
	}
	if in.OrderDate.IsZero() {
		return nil, domain.NewValidationError("order_date", "es obligatorio")
	}
	now := q.now()
	order := &entity.PurchaseOrder{
		ReagentName:     name,
		NominalQuantity: size,
		OrderDate:       in.OrderDate,
		Controlled:      in.Controlled,
		Status:          entity.OrderStatusOpen,
		UserID:          in.UserID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := q.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("crear pedido: %w", err)
	}
	return order, nil
}

// Get devuelve el pedido o domain.ErrOrderNotFound.
func (q *OrderQueue) Get(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	order, err := q.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// List devuelve los pedidos con el estado dado (vacío = todos), fecha de pedido descendente.
func (q *OrderQueue) List(ctx context.Context, status string) ([]*entity.PurchaseOrder, error) {
	switch status {
	case "", entity.OrderStatusOpen, entity.OrderStatusClosed:
	default:
		return nil, domain.NewValidationError("status", "debe ser open o closed")
	}
	return q.orders.List(ctx, status)
}

// ListOpen pedidos pendientes, para elegir al registrar una entrada.
func (q *OrderQueue) ListOpen(ctx context.Context) ([]*entity.PurchaseOrder, error) {
	return q.orders.List(ctx, entity.OrderStatusOpen)
}

// Close marca el pedido como closed. Idempotente: no falla si no existe o ya estaba cerrado.
func (q *OrderQueue) Close(ctx context.Context, id int64) error {
	return q.setStatus(ctx, id, entity.OrderStatusClosed)
}

// Reopen vuelve el pedido a open. Idempotente.
func (q *OrderQueue) Reopen(ctx context.Context, id int64) error {
	return q.setStatus(ctx, id, entity.OrderStatusOpen)
}

func (q *OrderQueue) setStatus(ctx context.Context, id int64, status string) error {
	order, err := q.orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if order == nil || order.Status == status {
		return nil
	}
	order.Status = status
	order.UpdatedAt = q.now()
	return q.orders.Update(ctx, order)
}

// Update edita un pedido abierto. Solo el autor o un administrador.
func (q *OrderQueue) Update(ctx context.Context, actor entity.Actor, id int64, in OrderUpdate) (*entity.PurchaseOrder, error) {
	order, err := q.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.ReagentName != nil {
		name := strings.TrimSpace(*in.ReagentName)
		if name == "" {
			return nil, domain.NewValidationError("reagent_name", "no puede quedar vacío")
		}
		order.ReagentName = name
	}
	if in.NominalQuantity != nil {
		size := strings.TrimSpace(*in.NominalQuantity)
		if size == "" {
			return nil, domain.NewValidationError("nominal_quantity", "no puede quedar vacío")
		}
		order.NominalQuantity = size
	}
	if in.OrderDate != nil && !in.OrderDate.IsZero() {
		order.OrderDate = *in.OrderDate
	}
	if in.Controlled != nil {
		order.Controlled = *in.Controlled
	}
	order.UpdatedAt = q.now()
	if err := q.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("actualizar pedido %d: %w", id, err)
	}
	return order, nil
}

// Delete elimina un pedido abierto. Solo el autor o un administrador.
func (q *OrderQueue) Delete(ctx context.Context, actor entity.Actor, id int64) error {
	if _, err := q.editable(ctx, actor, id); err != nil {
		return err
	}
	return q.orders.Delete(ctx, id)
}

func (q *OrderQueue) editable(ctx context.Context, actor entity.Actor, id int64) (*entity.PurchaseOrder, error) {
	order, err := q.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(order.UserID) {
		return nil, domain.ErrForbidden
	}
	if !order.IsOpen() {
		return nil, fmt.Errorf("pedido %d cerrado: %w", id, domain.ErrConflict)
	}
	return order, nil
}
