package report

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Reagentes-api/internal/domain"
	"github.com/jhoicas/Reagentes-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Reagentes-api/internal/domain/inventory"
	"github.com/jhoicas/Reagentes-api/internal/domain/repository"
)

// DefaultCriticalThreshold cantidad por debajo de la cual un lote es crítico.
var DefaultCriticalThreshold = decimal.NewFromInt(5)

// QueryUseCase consultas de solo lectura sobre el ledger: filtros, resumen y búsqueda.
type QueryUseCase struct {
	lotRepo     repository.LotRepository
	orderRepo   repository.OrderRepository
	inboundRepo repository.InboundRepository
	critical    decimal.Decimal
}

// NewQueryUseCase construye el caso de uso. critical <= 0 usa DefaultCriticalThreshold.
func NewQueryUseCase(
	lotRepo repository.LotRepository,
	orderRepo repository.OrderRepository,
	inboundRepo repository.InboundRepository,
	critical decimal.Decimal,
) *QueryUseCase {
	if !critical.IsPositive() {
		critical = DefaultCriticalThreshold
	}
	return &QueryUseCase{lotRepo: lotRepo, orderRepo: orderRepo, inboundRepo: inboundRepo, critical: critical}
}

// Criteria filtros combinables (AND). Campos vacíos o nil no filtran.
type Criteria struct {
	Name        string // subcadena
	Brand       string // igualdad
	Size        string // subcadena
	Location    string // subcadena
	MinQuantity *decimal.Decimal
	MaxQuantity *decimal.Decimal
	Critical    bool
	Depleted    bool
}

// Summary indicadores del stock.
type Summary struct {
	TotalLots      int
	TotalQuantity  decimal.Decimal
	CriticalLots   int
	DepletedLots   int
	MeanQuantity   decimal.Decimal
	MaxQuantityLot *entity.ReagentLot
	QuantityByUnit map[string]decimal.Decimal
}

// Estados de un resultado de búsqueda.
const (
	SearchStatusInStock    = "in_stock"
	SearchStatusNotArrived = "not_arrived"
)

// SearchItem resultado de búsqueda: un lote en stock o un pedido que aún no llegó.
type SearchItem struct {
	Status  string
	Lot     *entity.ReagentLot
	Inbound []*entity.InboundMovement // entradas del lote con saldo
	Order   *entity.PurchaseOrder
}

// CriticalThreshold umbral configurado.
func (uc *QueryUseCase) CriticalThreshold() decimal.Decimal { return uc.critical }

// Filter devuelve los lotes que cumplen todos los criterios, ordenados por ID.
func (uc *QueryUseCase) Filter(ctx context.Context, c Criteria) ([]*entity.ReagentLot, error) {
	lots, err := uc.lotRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar lotes: %w", err)
	}
	brand := domaininv.Normalize(c.Brand)
	out := make([]*entity.ReagentLot, 0, len(lots))
	for _, lot := range lots {
		if c.Name != "" && !domaininv.Contains(lot.Name, c.Name) {
			continue
		}
		if brand != "" && domaininv.Normalize(lot.Brand) != brand {
			continue
		}
		if c.Size != "" && !domaininv.Contains(lot.NominalSize, c.Size) {
			continue
		}
		if c.Location != "" && !domaininv.Contains(lot.Location, c.Location) {
			continue
		}
		if c.MinQuantity != nil && lot.Quantity.LessThan(*c.MinQuantity) {
			continue
		}
		if c.MaxQuantity != nil && lot.Quantity.GreaterThan(*c.MaxQuantity) {
			continue
		}
		if c.Critical && !lot.Quantity.LessThan(uc.critical) {
			continue
		}
		if c.Depleted && lot.Quantity.IsPositive() {
			continue
		}
		out = append(out, lot)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Summary calcula los indicadores. Sin lotes la media es 0.
func (uc *QueryUseCase) Summary(ctx context.Context) (Summary, error) {
	lots, err := uc.lotRepo.List(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("listar lotes: %w", err)
	}
	s := Summary{
		TotalQuantity:  decimal.Zero,
		MeanQuantity:   decimal.Zero,
		QuantityByUnit: map[string]decimal.Decimal{},
	}
	for _, lot := range lots {
		s.TotalLots++
		s.TotalQuantity = s.TotalQuantity.Add(lot.Quantity)
		s.QuantityByUnit[lot.Unit] = s.QuantityByUnit[lot.Unit].Add(lot.Quantity)
		if lot.Quantity.LessThan(uc.critical) {
			s.CriticalLots++
		}
		if !lot.Quantity.IsPositive() {
			s.DepletedLots++
		}
		if s.MaxQuantityLot == nil || lot.Quantity.GreaterThan(s.MaxQuantityLot.Quantity) {
			s.MaxQuantityLot = lot
		}
	}
	if s.TotalLots > 0 {
		s.MeanQuantity = s.TotalQuantity.Div(decimal.NewFromInt(int64(s.TotalLots)))
	}
	return s, nil
}

// Search busca por nombre los lotes en stock y los pedidos abiertos.
// domain.ErrNotFound si no hay ningún resultado.
func (uc *QueryUseCase) Search(ctx context.Context, name string) ([]SearchItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "es obligatorio")
	}
	lots, err := uc.Filter(ctx, Criteria{Name: name})
	if err != nil {
		return nil, err
	}
	inbound, err := uc.inboundRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar entradas: %w", err)
	}
	orders, err := uc.orderRepo.List(ctx, entity.OrderStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("listar pedidos: %w", err)
	}

	items := make([]SearchItem, 0, len(lots))
	for _, lot := range lots {
		key := domaininv.NewLotKey(lot.Name, lot.NominalSize, lot.Brand)
		item := SearchItem{Status: SearchStatusInStock, Lot: lot}
		for _, m := range inbound {
			if m.Remaining.IsPositive() && domaininv.NewLotKey(m.ReagentName, m.NominalSize, m.Brand) == key {
				item.Inbound = append(item.Inbound, m)
			}
		}
		items = append(items, item)
	}
	for _, o := range orders {
		if domaininv.Contains(o.ReagentName, name) {
			items = append(items, SearchItem{Status: SearchStatusNotArrived, Order: o})
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%q: %w", name, domain.ErrNotFound)
	}
	return items, nil
}

// GetLot devuelve el lote o domain.ErrNotFound.
func (uc *QueryUseCase) GetLot(ctx context.Context, id int64) (*entity.ReagentLot, error) {
	lot, err := uc.lotRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	return lot, nil
}
