package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reagentes-api/internal/application/dto"
	"github.com/jhoicas/Reagentes-api/internal/application/inventory"
)

// OutboundHandler maneja las salidas de reactivo (protegido).
type OutboundHandler struct {
	recorder *inventory.MovementRecorder
}

// NewOutboundHandler construye el handler.
func NewOutboundHandler(recorder *inventory.MovementRecorder) *OutboundHandler {
	return &OutboundHandler{recorder: recorder}
}

// Create godoc
// @Summary      Registrar salida de reactivo
// @Tags         outbound
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOutboundRequest  true  "reactivo y cantidad en unidad base"
// @Success      201   {object}  dto.OutboundResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.StockErrorResponse
// @Router       /api/outbound [post]
func (h *OutboundHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOutboundRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	withdrawn, err := parseDate("withdrawn_at", in.WithdrawnAt)
	if err != nil {
		return writeError(c, err)
	}
	m, err := h.recorder.RecordOutbound(c.UserContext(), inventory.OutboundInput{
		InboundID:   in.InboundID,
		ReagentName: in.ReagentName,
		NominalSize: in.NominalSize,
		Brand:       in.Brand,
		Quantity:    in.Quantity,
		WithdrawnAt: withdrawn,
		Notes:       in.Notes,
		UserID:      GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toOutboundResponse(m))
}

// List godoc
// @Summary      Historial de salidas
// @Tags         outbound
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ListResponse[dto.OutboundResponse]
// @Router       /api/outbound [get]
func (h *OutboundHandler) List(c *fiber.Ctx) error {
	list, err := h.recorder.ListOutbound(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.OutboundResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toOutboundResponse(m))
	}
	return c.JSON(dto.NewListResponse(items))
}

// GetByID godoc
// @Summary      Obtener salida
// @Tags         outbound
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la salida"
// @Success      200  {object}  dto.OutboundResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/outbound/{id} [get]
func (h *OutboundHandler) GetByID(c *fiber.Ctx) error {
	id, ok, err := parseID(c)
	if !ok {
		return err
	}
	m, err := h.recorder.GetOutbound(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOutboundResponse(m))
}

// Update godoc
// @Summary      Corregir salida (fecha y observaciones)
// @Tags         outbound
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID de la salida"
// @Param        body  body  dto.UpdateOutboundRequest  true  "campos a corregir"
// @Success      200   {object}  dto.OutboundResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/outbound/{id} [put]
func (h *OutboundHandler) Update(c *fiber.Ctx) error {
	id, ok, err := parseID(c)
	if !ok {
		return err
	}
	var in dto.UpdateOutboundRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	withdrawn, err := parseDatePtr("withdrawn_at", in.WithdrawnAt)
	if err != nil {
		return writeError(c, err)
	}
	m, err := h.recorder.CorrectOutbound(c.UserContext(), GetActor(c), id, inventory.OutboundCorrection{
		WithdrawnAt: withdrawn,
		Notes:       in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOutboundResponse(m))
}

// Delete godoc
// @Summary      Revertir salida
// @Description  La cantidad vuelve al lote (se recrea si se había agotado).
// @Tags         outbound
// @Security     Bearer
// @Param        id   path  int  true  "ID de la salida"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/outbound/{id} [delete]
func (h *OutboundHandler) Delete(c *fiber.Ctx) error {
	id, ok, err := parseID(c)
	if !ok {
		return err
	}
	if err := h.recorder.DeleteOutbound(c.UserContext(), GetActor(c), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
