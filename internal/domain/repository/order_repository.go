package repository

import (
	"context"

	"github.com/jhoicas/Reagentes-api/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para pedidos de compra.
type OrderRepository interface {
	// Create asigna el ID del pedido.
	Create(ctx context.Context, order *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id int64) (*entity.PurchaseOrder, error)
	// List filtra por estado; status vacío devuelve todos. Orden: fecha de pedido descendente.
	List(ctx context.Context, status string) ([]*entity.PurchaseOrder, error)
	Update(ctx context.Context, order *entity.PurchaseOrder) error
	Delete(ctx context.Context, id int64) error
}
