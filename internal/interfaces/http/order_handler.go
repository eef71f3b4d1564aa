package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reagentes-api/internal/application/dto"
	"github.com/jhoicas/Reagentes-api/internal/application/inventory"
)

// OrderHandler maneja los pedidos de compra (protegido).
type OrderHandler struct {
	queue *inventory.OrderQueue
}

// NewOrderHandler construye el handler.
func NewOrderHandler(queue *inventory.OrderQueue) *OrderHandler {
	return &OrderHandler{queue: queue}
}

// Create godoc
// @Summary      Registrar pedido de compra
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "reactivo, cantidad nominal, fecha"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	date, err := parseDate("order_date", in.OrderDate)
	if err != nil {
		return writeError(c, err)
	}
	order, err := h.queue.Create(c.UserContext(), inventory.OrderInput{
		ReagentName:     in.ReagentName,
		NominalQuantity: in.NominalQuantity,
		OrderDate:       date,
		Controlled:      in.Controlled,
		UserID:          GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toOrderResponse(order))
}

// List godoc
// @Summary      Listar pedidos
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "open | closed (vacío = todos)"
// @Success      200  {object}  dto.ListResponse[dto.OrderResponse]
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	orders, err := h.queue.List(c.UserContext(), c.Query("status"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderList(orders))
}

// ListOpen godoc
// @Summary      Listar pedidos abiertos
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ListResponse[dto.OrderResponse]
// @Router       /api/orders/open [get]
func (h *OrderHandler) ListOpen(c *fiber.Ctx) error {
	orders, err := h.queue.ListOpen(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderList(orders))
}

// GetByID godoc
// @Summary      Obtener pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	id, ok, err := parseID(c)
	if !ok {
		return err
	}
	order, err := h.queue.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderResponse(order))
}

// Update godoc
// @Summary      Editar pedido abierto
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID del pedido"
// @Param        body  body  dto.UpdateOrderRequest  true  "campos a cambiar"
// @Success      200   {object}  dto.OrderResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [put]
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	id, ok, err := parseID(c)
	if !ok {
		return err
	}
	var in dto.UpdateOrderRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	date, err := parseDatePtr("order_date", in.OrderDate)
	if err != nil {
		return writeError(c, err)
	}
	order, err := h.queue.Update(c.UserContext(), GetActor(c), id, inventory.OrderUpdate{
		ReagentName:     in.ReagentName,
		NominalQuantity: in.NominalQuantity,
		OrderDate:       date,
		Controlled:      in.Controlled,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderResponse(order))
}

// Delete godoc
// @Summary      Eliminar pedido abierto
// @Tags         orders
// @Security     Bearer
// @Param        id   path  int  true  "ID del pedido"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [delete]
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	id, ok, err := parseID(c)
	if !ok {
		return err
	}
	if err := h.queue.Delete(c.UserContext(), GetActor(c), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
