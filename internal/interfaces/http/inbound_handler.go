package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reagentes-api/internal/application/dto"
	"github.com/jhoicas/Reagentes-api/internal/application/inventory"
)

// InboundHandler maneja las entradas de reactivo (protegido).
type InboundHandler struct {
	recorder *inventory.MovementRecorder
}

// NewInboundHandler construye el handler.
func NewInboundHandler(recorder *inventory.MovementRecorder) *InboundHandler {
	return &InboundHandler{recorder: recorder}
}

// Create godoc
// @Summary      Registrar entrada de reactivo
// @Description  Con order_id el nombre sale del pedido y el pedido queda cerrado.
// @Tags         inbound
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInboundRequest  true  "datos de la entrada"
// @Success      201   {object}  dto.InboundResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inbound [post]
func (h *InboundHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInboundRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	received, err := parseDate("received_at", in.ReceivedAt)
	if err != nil {
		return writeError(c, err)
	}
	expires, err := parseDatePtr("expires_at", &in.ExpiresAt)
	if err != nil {
		return writeError(c, err)
	}
	m, err := h.recorder.RecordInbound(c.UserContext(), inventory.InboundInput{
		OrderID:     in.OrderID,
		ReagentName: in.ReagentName,
		NominalSize: in.NominalSize,
		Brand:       in.Brand,
		Location:    in.Location,
		Packages:    in.Packages,
		Controlled:  in.Controlled,
		ReceivedAt:  received,
		ExpiresAt:   expires,
		UserID:      GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toInboundResponse(m))
}

// List godoc
// @Summary      Historial de entradas
// @Tags         inbound
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ListResponse[dto.InboundResponse]
// @Router       /api/inbound [get]
func (h *InboundHandler) List(c *fiber.Ctx) error {
	list, err := h.recorder.ListInbound(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.InboundResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toInboundResponse(m))
	}
	return c.JSON(dto.NewListResponse(items))
}

// GetByID godoc
// @Summary      Obtener entrada
// @Tags         inbound
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la entrada"
// @Success      200  {object}  dto.InboundResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inbound/{id} [get]
func (h *InboundHandler) GetByID(c *fiber.Ctx) error {
	id, ok, err := parseID(c)
	if !ok {
		return err
	}
	m, err := h.recorder.GetInbound(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toInboundResponse(m))
}

// Update godoc
// @Summary      Corregir entrada
// @Description  Cambiar la marca mueve el saldo restante al lote de la nueva marca.
// @Tags         inbound
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID de la entrada"
// @Param        body  body  dto.UpdateInboundRequest  true  "campos a corregir"
// @Success      200   {object}  dto.InboundResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inbound/{id} [put]
func (h *InboundHandler) Update(c *fiber.Ctx) error {
	id, ok, err := parseID(c)
	if !ok {
		return err
	}
	var in dto.UpdateInboundRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	received, err := parseDatePtr("received_at", in.ReceivedAt)
	if err != nil {
		return writeError(c, err)
	}
	expires, err := parseDatePtr("expires_at", in.ExpiresAt)
	if err != nil {
		return writeError(c, err)
	}
	m, err := h.recorder.CorrectInbound(c.UserContext(), GetActor(c), id, inventory.InboundCorrection{
		Location:   in.Location,
		Brand:      in.Brand,
		ReceivedAt: received,
		ExpiresAt:  expires,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toInboundResponse(m))
}

// Delete godoc
// @Summary      Eliminar entrada
// @Description  Retira el saldo restante del lote y reabre el pedido atendido.
// @Tags         inbound
// @Security     Bearer
// @Param        id   path  int  true  "ID de la entrada"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inbound/{id} [delete]
func (h *InboundHandler) Delete(c *fiber.Ctx) error {
	id, ok, err := parseID(c)
	if !ok {
		return err
	}
	if err := h.recorder.DeleteInbound(c.UserContext(), GetActor(c), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
