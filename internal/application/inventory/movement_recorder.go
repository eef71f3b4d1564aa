package inventory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Reagentes-api/internal/domain"
	"github.com/jhoicas/Reagentes-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Reagentes-api/internal/domain/inventory"
	"github.com/jhoicas/Reagentes-api/internal/domain/repository"
	"github.com/jhoicas/Reagentes-api/pkg/logger"
)

// MovementRecorder registra entradas y salidas de reactivo de forma transaccional.
// Todas las mutaciones pasan por un único mutex del proceso y por TxRunner.Run (Commit/Rollback).
type MovementRecorder struct {
	mu           sync.Mutex
	txRunner     TxRunner
	inboundRepo  repository.InboundRepository
	outboundRepo repository.OutboundRepository
	publisher    EventPublisher
	log          *logger.Logger
	now          func() time.Time
}

// NewMovementRecorder construye el caso de uso. publisher puede ser nil.
func NewMovementRecorder(
	txRunner TxRunner,
	inboundRepo repository.InboundRepository,
	outboundRepo repository.OutboundRepository,
	publisher EventPublisher,
	log *logger.Logger,
) *MovementRecorder {
	if log == nil {
		log = logger.Nop()
	}
	return &MovementRecorder{
		txRunner:     txRunner,
		inboundRepo:  inboundRepo,
		outboundRepo: outboundRepo,
		publisher:    publisher,
		log:          log.Component("movement_recorder"),
		now:          time.Now,
	}
}

// InboundInput datos de una entrada. Con OrderID el nombre (y el tamaño, si falta) salen del pedido.
type InboundInput struct {
	OrderID     *int64
	ReagentName string
	NominalSize string
	Brand       string
	Location    string
	Packages    int
	Controlled  bool
	ReceivedAt  time.Time
	ExpiresAt   *time.Time
	UserID      string
}

// OutboundInput datos de una salida. Con InboundID los campos de clave vacíos se toman de la entrada.
type OutboundInput struct {
	InboundID   *int64
	ReagentName string
	NominalSize string
	Brand       string
	Quantity    decimal.Decimal
	WithdrawnAt time.Time
	Notes       string
	UserID      string
}

// InboundCorrection campos corregibles de una entrada; nil = sin cambio.
type InboundCorrection struct {
	Location   *string
	Brand      *string
	ReceivedAt *time.Time
	ExpiresAt  *time.Time
}

// OutboundCorrection campos corregibles de una salida; la cantidad no se corrige.
type OutboundCorrection struct {
	WithdrawnAt *time.Time
	Notes       *string
}

func validateInbound(in InboundInput) error {
	if in.Packages <= 0 {
		return domain.NewValidationError("packages", "debe ser mayor que cero")
	}
	if strings.TrimSpace(in.Brand) == "" {
		return domain.NewValidationError("brand", "es obligatorio")
	}
	if strings.TrimSpace(in.Location) == "" {
		return domain.NewValidationError("location", "es obligatorio")
	}
	if in.ReceivedAt.IsZero() {
		return domain.NewValidationError("received_at", "es obligatorio")
	}
	return nil
}

// RecordInbound registra una entrada: resuelve y cierra el pedido, convierte la cantidad
// y la fusiona en el lote con la misma clave.
func (uc *MovementRecorder) RecordInbound(ctx context.Context, in InboundInput) (*entity.InboundMovement, error) {
	if err := validateInbound(in); err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	var (
		mov *entity.InboundMovement
		lot *entity.ReagentLot
	)
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		orderRepo repository.OrderRepository,
		inboundRepo repository.InboundRepository,
		_ repository.OutboundRepository,
	) error {
		name := strings.TrimSpace(in.ReagentName)
		size := strings.TrimSpace(in.NominalSize)
		controlled := in.Controlled
		if in.OrderID != nil {
			queue := NewOrderQueue(orderRepo)
			order, err := queue.Get(ctx, *in.OrderID)
			if err != nil {
				return err
			}
			name = order.ReagentName
			if size == "" {
				size = order.NominalQuantity
			}
			controlled = controlled || order.Controlled
			// Un pedido ya cerrado no impide la entrada: Close es idempotente.
			if err := queue.Close(ctx, order.ID); err != nil {
				return fmt.Errorf("cerrar pedido %d: %w", order.ID, err)
			}
		}
		if name == "" {
			return domain.NewValidationError("reagent_name", "es obligatorio cuando no hay pedido")
		}
		if size == "" {
			return domain.NewValidationError("nominal_size", "es obligatorio")
		}

		total, unit := domaininv.Convert(size, in.Packages)
		var err error
		lot, err = NewLedger(lotRepo).MergeOrCreate(ctx, LotInput{
			Name:       name,
			Size:       size,
			Brand:      in.Brand,
			Delta:      total,
			Unit:       unit,
			Packages:   in.Packages,
			Location:   in.Location,
			Controlled: controlled,
		})
		if err != nil {
			return err
		}

		now := uc.now()
		mov = &entity.InboundMovement{
			TransactionID: uuid.New().String(),
			LotID:         lot.ID,
			OrderID:       in.OrderID,
			ReagentName:   lot.Name,
			Packages:      in.Packages,
			Brand:         strings.TrimSpace(in.Brand),
			NominalSize:   size,
			Location:      strings.TrimSpace(in.Location),
			Controlled:    controlled,
			ReceivedAt:    in.ReceivedAt,
			ExpiresAt:     in.ExpiresAt,
			Quantity:      total,
			Unit:          unit,
			Remaining:     total,
			UserID:        in.UserID,
			CreatedAt:     now,
		}
		return inboundRepo.Create(ctx, mov)
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("reagent", in.ReagentName).Msg("entrada rechazada")
		return nil, err
	}

	uc.log.Info().
		Int64("inbound_id", mov.ID).
		Int64("lot_id", lot.ID).
		Str("reagent", mov.ReagentName).
		Str("quantity", mov.Quantity.String()).
		Str("unit", mov.Unit).
		Msg("entrada registrada")
	uc.publish(ctx, StockEvent{
		Type:        EventInboundRecorded,
		MovementID:  mov.ID,
		LotID:       lot.ID,
		ReagentName: lot.Name,
		NominalSize: lot.NominalSize,
		Brand:       lot.Brand,
		Quantity:    mov.Quantity,
		LotQuantity: lot.Quantity,
		Unit:        lot.Unit,
		UserID:      mov.UserID,
	})
	return mov, nil
}

// RecordOutbound registra una salida: retira la cantidad del lote y guarda la ubicación
// que tenía el lote antes de la retirada (puede eliminarse al agotarse).
func (uc *MovementRecorder) RecordOutbound(ctx context.Context, in OutboundInput) (*entity.OutboundMovement, error) {
	in.Quantity = domaininv.RoundQuantity(in.Quantity)
	if !in.Quantity.IsPositive() {
		return nil, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	var (
		mov    *entity.OutboundMovement
		result WithdrawResult
	)
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		_ repository.OrderRepository,
		inboundRepo repository.InboundRepository,
		outboundRepo repository.OutboundRepository,
	) error {
		name, size, brand := in.ReagentName, in.NominalSize, in.Brand
		var source *entity.InboundMovement
		if in.InboundID != nil {
			inb, err := inboundRepo.GetByID(ctx, *in.InboundID)
			if err != nil {
				return err
			}
			if inb == nil {
				return fmt.Errorf("entrada %d: %w", *in.InboundID, domain.ErrNotFound)
			}
			if strings.TrimSpace(name) == "" {
				name = inb.ReagentName
			}
			if strings.TrimSpace(size) == "" {
				size = inb.NominalSize
			}
			if strings.TrimSpace(brand) == "" {
				brand = inb.Brand
			}
			if domaininv.NewLotKey(name, size, brand) != domaininv.NewLotKey(inb.ReagentName, inb.NominalSize, inb.Brand) {
				return domain.NewValidationError("inbound_id", "la entrada no corresponde al reactivo")
			}
			if in.Quantity.GreaterThan(inb.Remaining) {
				return &domain.InsufficientStockError{Available: inb.Remaining, Requested: in.Quantity, Unit: inb.Unit}
			}
			source = inb
		}
		if strings.TrimSpace(name) == "" {
			return domain.NewValidationError("reagent_name", "es obligatorio")
		}

		var err error
		result, err = NewLedger(lotRepo).Withdraw(ctx, name, size, brand, in.Quantity)
		if err != nil {
			return err
		}
		if source != nil {
			source.Remaining = source.Remaining.Sub(in.Quantity)
			if err := inboundRepo.Update(ctx, source); err != nil {
				return fmt.Errorf("actualizar entrada %d: %w", source.ID, err)
			}
		}

		now := uc.now()
		withdrawnAt := in.WithdrawnAt
		if withdrawnAt.IsZero() {
			withdrawnAt = now
		}
		mov = &entity.OutboundMovement{
			TransactionID: uuid.New().String(),
			LotID:         result.Lot.ID,
			InboundID:     in.InboundID,
			ReagentName:   result.Lot.Name,
			NominalSize:   result.Lot.NominalSize,
			Brand:         result.Lot.Brand,
			Location:      result.Lot.Location,
			Quantity:      in.Quantity,
			Unit:          result.Lot.Unit,
			Controlled:    result.Lot.Controlled,
			WithdrawnAt:   withdrawnAt,
			UserID:        in.UserID,
			Notes:         strings.TrimSpace(in.Notes),
			CreatedAt:     now,
		}
		return outboundRepo.Create(ctx, mov)
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("reagent", in.ReagentName).Str("quantity", in.Quantity.String()).Msg("salida rechazada")
		return nil, err
	}

	uc.log.Info().
		Int64("outbound_id", mov.ID).
		Int64("lot_id", mov.LotID).
		Str("quantity", mov.Quantity.String()).
		Bool("depleted", result.Depleted).
		Msg("salida registrada")
	uc.publish(ctx, StockEvent{
		Type:        EventOutboundRecorded,
		MovementID:  mov.ID,
		LotID:       mov.LotID,
		ReagentName: mov.ReagentName,
		NominalSize: mov.NominalSize,
		Brand:       mov.Brand,
		Quantity:    mov.Quantity,
		LotQuantity: result.Remaining,
		Unit:        mov.Unit,
		Depleted:    result.Depleted,
		UserID:      mov.UserID,
	})
	return mov, nil
}

// DeleteInbound elimina una entrada sin salidas asociadas: retira del lote lo que quedaba
// de ella y reabre el pedido que había cerrado.
func (uc *MovementRecorder) DeleteInbound(ctx context.Context, actor entity.Actor, id int64) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	var (
		inb    *entity.InboundMovement
		result WithdrawResult
	)
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		orderRepo repository.OrderRepository,
		inboundRepo repository.InboundRepository,
		outboundRepo repository.OutboundRepository,
	) error {
		var err error
		inb, err = uc.ownedInbound(ctx, inboundRepo, actor, id)
		if err != nil {
			return err
		}
		n, err := outboundRepo.CountByInbound(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("entrada %d tiene %d salidas registradas: %w", id, n, domain.ErrConflict)
		}
		result, err = uc.withdrawRemaining(ctx, NewLedger(lotRepo), inb)
		if err != nil {
			return err
		}
		if err := inboundRepo.Delete(ctx, id); err != nil {
			return err
		}
		if inb.OrderID != nil {
			return NewOrderQueue(orderRepo).Reopen(ctx, *inb.OrderID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	uc.log.Info().Int64("inbound_id", id).Str("user_id", actor.UserID).Msg("entrada eliminada")
	uc.publish(ctx, StockEvent{
		Type:        EventInboundDeleted,
		MovementID:  id,
		LotID:       result.Lot.ID,
		ReagentName: inb.ReagentName,
		NominalSize: inb.NominalSize,
		Brand:       inb.Brand,
		Quantity:    inb.Remaining,
		LotQuantity: result.Remaining,
		Unit:        inb.Unit,
		Depleted:    result.Depleted,
		UserID:      actor.UserID,
	})
	return nil
}

// CorrectInbound corrige ubicación, marca y fechas de una entrada.
// Un cambio de marca mueve lo que queda de la entrada al lote de la nueva clave.
func (uc *MovementRecorder) CorrectInbound(ctx context.Context, actor entity.Actor, id int64, in InboundCorrection) (*entity.InboundMovement, error) {
	if in.Location != nil && strings.TrimSpace(*in.Location) == "" {
		return nil, domain.NewValidationError("location", "no puede quedar vacío")
	}
	if in.Brand != nil && strings.TrimSpace(*in.Brand) == "" {
		return nil, domain.NewValidationError("brand", "no puede quedar vacío")
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	var (
		inb *entity.InboundMovement
		lot *entity.ReagentLot
	)
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		_ repository.OrderRepository,
		inboundRepo repository.InboundRepository,
		_ repository.OutboundRepository,
	) error {
		var err error
		inb, err = uc.ownedInbound(ctx, inboundRepo, actor, id)
		if err != nil {
			return err
		}
		ledger := NewLedger(lotRepo)

		if in.Location != nil {
			inb.Location = strings.TrimSpace(*in.Location)
		}
		if in.ReceivedAt != nil && !in.ReceivedAt.IsZero() {
			inb.ReceivedAt = *in.ReceivedAt
		}
		if in.ExpiresAt != nil {
			inb.ExpiresAt = in.ExpiresAt
		}

		newBrand := inb.Brand
		if in.Brand != nil {
			newBrand = strings.TrimSpace(*in.Brand)
		}
		if domaininv.Normalize(newBrand) != domaininv.Normalize(inb.Brand) && inb.Remaining.IsPositive() {
			moved, err := uc.withdrawRemaining(ctx, ledger, inb)
			if err != nil {
				return err
			}
			qty := moved.Lot.Quantity.Sub(moved.Remaining)
			// la entrada solo conserva lo que realmente se movió a la nueva clave
			inb.Remaining = decimal.Max(qty, decimal.Zero)
			if qty.IsPositive() {
				lot, err = ledger.Restore(ctx, LotInput{
					Name:       inb.ReagentName,
					Size:       inb.NominalSize,
					Brand:      newBrand,
					Delta:      qty,
					Unit:       inb.Unit,
					Location:   inb.Location,
					Controlled: inb.Controlled,
				})
				if err != nil {
					return err
				}
				inb.LotID = lot.ID
			}
		}
		inb.Brand = newBrand

		if lot == nil && in.Location != nil {
			current, err := ledger.FindLot(ctx, inb.ReagentName, inb.NominalSize, inb.Brand)
			if err != nil {
				return err
			}
			if current != nil && current.Location != inb.Location {
				current.Location = inb.Location
				current.UpdatedAt = uc.now()
				if err := lotRepo.Update(ctx, current); err != nil {
					return fmt.Errorf("actualizar lote %d: %w", current.ID, err)
				}
				lot = current
			}
		}
		return inboundRepo.Update(ctx, inb)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Int64("inbound_id", id).Str("user_id", actor.UserID).Msg("entrada corregida")
	ev := StockEvent{
		Type:        EventInboundCorrected,
		MovementID:  id,
		LotID:       inb.LotID,
		ReagentName: inb.ReagentName,
		NominalSize: inb.NominalSize,
		Brand:       inb.Brand,
		Unit:        inb.Unit,
		UserID:      actor.UserID,
	}
	if lot != nil {
		ev.LotQuantity = lot.Quantity
	}
	uc.publish(ctx, ev)
	return inb, nil
}

// DeleteOutbound revierte una salida: la cantidad vuelve al lote (se recrea si se había agotado)
// y a la entrada de origen.
func (uc *MovementRecorder) DeleteOutbound(ctx context.Context, actor entity.Actor, id int64) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	var (
		out *entity.OutboundMovement
		lot *entity.ReagentLot
	)
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		_ repository.OrderRepository,
		inboundRepo repository.InboundRepository,
		outboundRepo repository.OutboundRepository,
	) error {
		var err error
		out, err = uc.ownedOutbound(ctx, outboundRepo, actor, id)
		if err != nil {
			return err
		}
		lot, err = NewLedger(lotRepo).Restore(ctx, LotInput{
			Name:       out.ReagentName,
			Size:       out.NominalSize,
			Brand:      out.Brand,
			Delta:      out.Quantity,
			Unit:       out.Unit,
			Location:   out.Location,
			Controlled: out.Controlled,
		})
		if err != nil {
			return err
		}
		if out.InboundID != nil {
			inb, err := inboundRepo.GetByID(ctx, *out.InboundID)
			if err != nil {
				return err
			}
			if inb != nil {
				inb.Remaining = inb.Remaining.Add(out.Quantity)
				if err := inboundRepo.Update(ctx, inb); err != nil {
					return fmt.Errorf("actualizar entrada %d: %w", inb.ID, err)
				}
			}
		}
		return outboundRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	uc.log.Info().Int64("outbound_id", id).Str("user_id", actor.UserID).Msg("salida revertida")
	uc.publish(ctx, StockEvent{
		Type:        EventOutboundDeleted,
		MovementID:  id,
		LotID:       lot.ID,
		ReagentName: lot.Name,
		NominalSize: lot.NominalSize,
		Brand:       lot.Brand,
		Quantity:    out.Quantity,
		LotQuantity: lot.Quantity,
		Unit:        lot.Unit,
		UserID:      actor.UserID,
	})
	return nil
}

// CorrectOutbound corrige fecha y observaciones de una salida.
func (uc *MovementRecorder) CorrectOutbound(ctx context.Context, actor entity.Actor, id int64, in OutboundCorrection) (*entity.OutboundMovement, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	var out *entity.OutboundMovement
	err := uc.txRunner.Run(ctx, func(
		_ repository.LotRepository,
		_ repository.OrderRepository,
		_ repository.InboundRepository,
		outboundRepo repository.OutboundRepository,
	) error {
		var err error
		out, err = uc.ownedOutbound(ctx, outboundRepo, actor, id)
		if err != nil {
			return err
		}
		if in.WithdrawnAt != nil && !in.WithdrawnAt.IsZero() {
			out.WithdrawnAt = *in.WithdrawnAt
		}
		if in.Notes != nil {
			out.Notes = strings.TrimSpace(*in.Notes)
		}
		return outboundRepo.Update(ctx, out)
	})
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, StockEvent{
		Type:        EventOutboundCorrected,
		MovementID:  id,
		LotID:       out.LotID,
		ReagentName: out.ReagentName,
		NominalSize: out.NominalSize,
		Brand:       out.Brand,
		Quantity:    out.Quantity,
		Unit:        out.Unit,
		UserID:      actor.UserID,
	})
	return out, nil
}

// GetInbound devuelve la entrada o domain.ErrNotFound.
func (uc *MovementRecorder) GetInbound(ctx context.Context, id int64) (*entity.InboundMovement, error) {
	inb, err := uc.inboundRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inb == nil {
		return nil, domain.ErrNotFound
	}
	return inb, nil
}

// ListInbound entradas por fecha de recepción descendente.
func (uc *MovementRecorder) ListInbound(ctx context.Context) ([]*entity.InboundMovement, error) {
	return uc.inboundRepo.List(ctx)
}

// GetOutbound devuelve la salida o domain.ErrNotFound.
func (uc *MovementRecorder) GetOutbound(ctx context.Context, id int64) (*entity.OutboundMovement, error) {
	out, err := uc.outboundRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

// ListOutbound salidas por fecha de retiro descendente.
func (uc *MovementRecorder) ListOutbound(ctx context.Context) ([]*entity.OutboundMovement, error) {
	return uc.outboundRepo.List(ctx)
}

func (uc *MovementRecorder) ownedInbound(ctx context.Context, repo repository.InboundRepository, actor entity.Actor, id int64) (*entity.InboundMovement, error) {
	inb, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inb == nil {
		return nil, domain.ErrNotFound
	}
	if !actor.CanModify(inb.UserID) {
		return nil, domain.ErrForbidden
	}
	return inb, nil
}

func (uc *MovementRecorder) ownedOutbound(ctx context.Context, repo repository.OutboundRepository, actor entity.Actor, id int64) (*entity.OutboundMovement, error) {
	out, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, domain.ErrNotFound
	}
	if !actor.CanModify(out.UserID) {
		return nil, domain.ErrForbidden
	}
	return out, nil
}

// withdrawRemaining retira del lote lo que queda de la entrada, acotado a la cantidad del lote
// (las salidas sin entrada de origen no descuentan Remaining). Sin lote no hay nada que retirar.
func (uc *MovementRecorder) withdrawRemaining(ctx context.Context, ledger *Ledger, inb *entity.InboundMovement) (WithdrawResult, error) {
	lot, err := ledger.FindLot(ctx, inb.ReagentName, inb.NominalSize, inb.Brand)
	if err != nil {
		return WithdrawResult{}, err
	}
	if lot == nil || !inb.Remaining.IsPositive() {
		return WithdrawResult{Depleted: lot == nil}, nil
	}
	qty := decimal.Min(inb.Remaining, lot.Quantity)
	return ledger.Withdraw(ctx, inb.ReagentName, inb.NominalSize, inb.Brand, qty)
}

func (uc *MovementRecorder) publish(ctx context.Context, ev StockEvent) {
	if uc.publisher == nil {
		return
	}
	ev.OccurredAt = uc.now()
	uc.publisher.Publish(ctx, ev)
}
