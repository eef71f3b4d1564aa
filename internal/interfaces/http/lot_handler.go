package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Reagentes-api/internal/application/dto"
	"github.com/jhoicas/Reagentes-api/internal/application/report"
	"github.com/jhoicas/Reagentes-api/internal/domain"
	"github.com/jhoicas/Reagentes-api/pkg/validator"
)

// LotHandler consultas del stock (protegido).
type LotHandler struct {
	uc *report.QueryUseCase
}

// NewLotHandler construye el handler.
func NewLotHandler(uc *report.QueryUseCase) *LotHandler {
	return &LotHandler{uc: uc}
}

// List godoc
// @Summary      Filtrar lotes
// @Description  Los filtros se combinan (AND). name, size y location buscan subcadena; brand es exacta.
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        name          query  string  false  "Nombre (subcadena)"
// @Param        brand         query  string  false  "Marca"
// @Param        size          query  string  false  "Tamaño nominal"
// @Param        location      query  string  false  "Ubicación"
// @Param        min_quantity  query  number  false  "Cantidad mínima"
// @Param        max_quantity  query  number  false  "Cantidad máxima"
// @Param        critical      query  bool    false  "Solo críticos"
// @Param        depleted      query  bool    false  "Solo agotados"
// @Success      200  {object}  dto.ListResponse[dto.LotResponse]
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/lots [get]
func (h *LotHandler) List(c *fiber.Ctx) error {
	var q dto.LotFilterQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	if errs := validator.ValidateStruct(&q); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validator.Message(errs)})
	}
	criteria := report.Criteria{
		Name:     q.Name,
		Brand:    q.Brand,
		Size:     q.Size,
		Location: q.Location,
		Critical: q.Critical,
		Depleted: q.Depleted,
	}
	var err error
	if criteria.MinQuantity, err = parseDecimalQuery("min_quantity", q.MinQuantity); err != nil {
		return writeError(c, err)
	}
	if criteria.MaxQuantity, err = parseDecimalQuery("max_quantity", q.MaxQuantity); err != nil {
		return writeError(c, err)
	}

	lots, err := h.uc.Filter(c.UserContext(), criteria)
	if err != nil {
		return writeError(c, err)
	}
	critical := h.uc.CriticalThreshold()
	items := make([]dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		items = append(items, toLotResponse(l, critical))
	}
	return c.JSON(dto.NewListResponse(items))
}

// Summary godoc
// @Summary      Indicadores del stock
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SummaryResponse
// @Router       /api/lots/summary [get]
func (h *LotHandler) Summary(c *fiber.Ctx) error {
	s, err := h.uc.Summary(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSummaryResponse(s, h.uc.CriticalThreshold()))
}

// Search godoc
// @Summary      Buscar reactivo por nombre
// @Description  Devuelve los lotes en stock (con sus entradas con saldo) y los pedidos abiertos que aún no llegaron.
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        name  query  string  true  "Nombre del reactivo"
// @Success      200  {object}  dto.ListResponse[dto.SearchItemResponse]
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/search [get]
func (h *LotHandler) Search(c *fiber.Ctx) error {
	items, err := h.uc.Search(c.UserContext(), c.Query("name"))
	if err != nil {
		return writeError(c, err)
	}
	critical := h.uc.CriticalThreshold()
	out := make([]dto.SearchItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toSearchItemResponse(it, critical))
	}
	return c.JSON(dto.NewListResponse(out))
}

// GetByID godoc
// @Summary      Obtener lote
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del lote"
// @Success      200  {object}  dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [get]
func (h *LotHandler) GetByID(c *fiber.Ctx) error {
	id, ok, err := parseID(c)
	if !ok {
		return err
	}
	lot, err := h.uc.GetLot(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toLotResponse(lot, h.uc.CriticalThreshold()))
}

func parseDecimalQuery(field, s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, domain.NewValidationError(field, "debe ser numérico")
	}
	return &d, nil
}
