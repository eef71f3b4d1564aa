package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Reagentes-api/internal/domain"
	"github.com/jhoicas/Reagentes-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Reagentes-api/internal/domain/inventory"
	"github.com/jhoicas/Reagentes-api/internal/domain/repository"
)

// Ledger mantiene la colección de lotes: como máximo un lote por clave (nombre, tamaño, marca)
// normalizada y ningún lote con cantidad <= 0.
// Se construye sobre el repositorio de la transacción en curso; no es seguro entre goroutines
// por sí solo, el MovementRecorder serializa las mutaciones.
type Ledger struct {
	lots repository.LotRepository
	now  func() time.Time
}

// NewLedger construye el ledger sobre lots.
func NewLedger(lots repository.LotRepository) *Ledger {
	return &Ledger{lots: lots, now: time.Now}
}

// LotInput datos de una entrada a fusionar en el ledger. Delta está en la unidad base.
type LotInput struct {
	Name       string
	Size       string
	Brand      string
	Delta      decimal.Decimal
	Unit       string
	Packages   int
	Location   string
	Controlled bool
}

// WithdrawResult resultado de una retirada. Lot es la foto del lote antes de la retirada.
type WithdrawResult struct {
	Lot       entity.ReagentLot
	Remaining decimal.Decimal
	Depleted  bool
}

// ListAll devuelve todos los lotes ordenados por ID.
func (l *Ledger) ListAll(ctx context.Context) ([]*entity.ReagentLot, error) {
	lots, err := l.lots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar lotes: %w", err)
	}
	sort.SliceStable(lots, func(i, j int) bool { return lots[i].ID < lots[j].ID })
	return lots, nil
}

// FindLot busca el lote por clave normalizada. nil, nil si no existe.
func (l *Ledger) FindLot(ctx context.Context, name, size, brand string) (*entity.ReagentLot, error) {
	lots, err := l.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	key := domaininv.NewLotKey(name, size, brand)
	for _, lot := range lots {
		if domaininv.NewLotKey(lot.Name, lot.NominalSize, lot.Brand) == key {
			return lot, nil
		}
	}
	return nil, nil
}

// MergeOrCreate suma Delta al lote con la misma clave o crea uno nuevo con ID máximo + 1.
// La ubicación se sobrescribe solo si viene informada.
func (l *Ledger) MergeOrCreate(ctx context.Context, in LotInput) (*entity.ReagentLot, error) {
	if !in.Delta.IsPositive() {
		return nil, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	lots, err := l.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	now := l.now()
	key := domaininv.NewLotKey(in.Name, in.Size, in.Brand)
	var maxID int64
	for _, lot := range lots {
		if lot.ID > maxID {
			maxID = lot.ID
		}
		if domaininv.NewLotKey(lot.Name, lot.NominalSize, lot.Brand) != key {
			continue
		}
		lot.Quantity = lot.Quantity.Add(in.Delta)
		lot.Packages += in.Packages
		if loc := strings.TrimSpace(in.Location); loc != "" {
			lot.Location = loc
		}
		lot.Controlled = lot.Controlled || in.Controlled
		lot.UpdatedAt = now
		if err := l.lots.Update(ctx, lot); err != nil {
			return nil, fmt.Errorf("actualizar lote %d: %w", lot.ID, err)
		}
		return lot, nil
	}

	lot := &entity.ReagentLot{
		ID:          maxID + 1,
		Name:        strings.TrimSpace(in.Name),
		NominalSize: strings.TrimSpace(in.Size),
		Brand:       strings.TrimSpace(in.Brand),
		Location:    strings.TrimSpace(in.Location),
		Quantity:    in.Delta,
		Unit:        in.Unit,
		Packages:    in.Packages,
		Controlled:  in.Controlled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := l.lots.Insert(ctx, lot); err != nil {
		return nil, fmt.Errorf("crear lote: %w", err)
	}
	return lot, nil
}

// Restore devuelve cantidad al lote (reversión de una salida o traslado de marca).
// Igual que MergeOrCreate, pero los embalajes se recalculan a partir de la cantidad resultante.
func (l *Ledger) Restore(ctx context.Context, in LotInput) (*entity.ReagentLot, error) {
	in.Packages = 0
	lot, err := l.MergeOrCreate(ctx, in)
	if err != nil {
		return nil, err
	}
	lot.Packages = domaininv.PackagesFor(lot.NominalSize, lot.Quantity)
	if err := l.lots.Update(ctx, lot); err != nil {
		return nil, fmt.Errorf("actualizar lote %d: %w", lot.ID, err)
	}
	return lot, nil
}

// Withdraw retira qty del lote con la clave dada.
// domain.ErrNotFound si no existe; *domain.InsufficientStockError sin tocar el lote si qty supera lo disponible.
// Si la cantidad llega a <= 0 el lote se elimina y el resultado indica Depleted.
func (l *Ledger) Withdraw(ctx context.Context, name, size, brand string, qty decimal.Decimal) (WithdrawResult, error) {
	lot, err := l.FindLot(ctx, name, size, brand)
	if err != nil {
		return WithdrawResult{}, err
	}
	if lot == nil {
		return WithdrawResult{}, domain.ErrNotFound
	}
	if qty.GreaterThan(lot.Quantity) {
		return WithdrawResult{}, &domain.InsufficientStockError{
			Available: lot.Quantity,
			Requested: qty,
			Unit:      lot.Unit,
		}
	}
	snapshot := *lot
	remaining := lot.Quantity.Sub(qty)
	if !remaining.IsPositive() {
		if err := l.lots.Delete(ctx, lot.ID); err != nil {
			return WithdrawResult{}, fmt.Errorf("eliminar lote %d: %w", lot.ID, err)
		}
		return WithdrawResult{Lot: snapshot, Remaining: decimal.Zero, Depleted: true}, nil
	}
	lot.Quantity = remaining
	lot.Packages = domaininv.PackagesFor(lot.NominalSize, remaining)
	lot.UpdatedAt = l.now()
	if err := l.lots.Update(ctx, lot); err != nil {
		return WithdrawResult{}, fmt.Errorf("actualizar lote %d: %w", lot.ID, err)
	}
	return WithdrawResult{Lot: snapshot, Remaining: remaining}, nil
}
