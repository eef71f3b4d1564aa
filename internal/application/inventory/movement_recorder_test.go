package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reagentes-api/internal/domain"
	"github.com/jhoicas/Reagentes-api/internal/domain/entity"
	"github.com/jhoicas/Reagentes-api/internal/infrastructure/memory"
	"github.com/jhoicas/Reagentes-api/pkg/logger"
)

type recordedEvents struct {
	mu     sync.Mutex
	events []StockEvent
}

func (r *recordedEvents) Publish(_ context.Context, ev StockEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordedEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	store    *memory.Store
	recorder *MovementRecorder
	queue    *OrderQueue
	events   *recordedEvents
}

func newFixture() *fixture {
	store := memory.NewStore()
	events := &recordedEvents{}
	return &fixture{
		store:    store,
		recorder: NewMovementRecorder(memory.NewTxRunner(store), store.Inbound(), store.Outbound(), events, logger.Nop()),
		queue:    NewOrderQueue(store.Orders()),
		events:   events,
	}
}

func (f *fixture) lots(t *testing.T) []*entity.ReagentLot {
	t.Helper()
	lots, err := NewLedger(f.store.Lots()).ListAll(context.Background())
	require.NoError(t, err)
	return lots
}

var received = time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

func inbound(name, size, brand string, packages int) InboundInput {
	return InboundInput{
		ReagentName: name,
		NominalSize: size,
		Brand:       brand,
		Location:    "Shelf A1",
		Packages:    packages,
		ReceivedAt:  received,
		UserID:      owner.UserID,
	}
}

// ─── Escenarios completos ─────────────────────────────────────────────────────

func TestRecordInbound_PedidoSodioSeCierraYCreaLote(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	order, err := f.queue.Create(ctx, OrderInput{
		ReagentName:     "Sodium",
		NominalQuantity: "500g",
		OrderDate:       received.AddDate(0, 0, -7),
		UserID:          owner.UserID,
	})
	require.NoError(t, err)

	in := inbound("", "500g", "Synth", 10)
	in.OrderID = &order.ID
	mov, err := f.recorder.RecordInbound(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "Sodium", mov.ReagentName)
	assert.True(t, mov.Quantity.Equal(dec("5000")))
	assert.True(t, mov.Remaining.Equal(dec("5000")))
	assert.NotEmpty(t, mov.TransactionID)

	got, err := f.queue.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusClosed, got.Status)

	lots := f.lots(t)
	require.Len(t, lots, 1)
	assert.Equal(t, "Sodium", lots[0].Name)
	assert.Equal(t, "Synth", lots[0].Brand)
	assert.Equal(t, "500g", lots[0].NominalSize)
	assert.True(t, lots[0].Quantity.Equal(dec("5000")))
	assert.Equal(t, entity.UnitGram, lots[0].Unit)
	assert.Equal(t, 10, lots[0].Packages)
	assert.Equal(t, "Shelf A1", lots[0].Location)
	assert.Equal(t, []string{EventInboundRecorded}, f.events.types())
}

func TestRecordOutbound_ReactivoInexistenteNoCambiaNada(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.recorder.RecordInbound(ctx, inbound("Etanol", "1L", "Merck", 2))
	require.NoError(t, err)

	_, err = f.recorder.RecordOutbound(ctx, OutboundInput{
		ReagentName: "Inexistente", NominalSize: "1L", Brand: "Merck", Quantity: dec("1"), UserID: owner.UserID,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	lots := f.lots(t)
	require.Len(t, lots, 1)
	assert.True(t, lots[0].Quantity.Equal(dec("2")))
	outs, err := f.recorder.ListOutbound(ctx)
	require.NoError(t, err)
	assert.Empty(t, outs)
}

// ─── Entradas ─────────────────────────────────────────────────────────────────

func TestRecordInbound_ValidaCampos(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cases := []struct {
		name  string
		in    InboundInput
		field string
	}{
		{"sin embalajes", inbound("Etanol", "1L", "Merck", 0), "packages"},
		{"sin marca", inbound("Etanol", "1L", "", 1), "brand"},
		{"sin nombre ni pedido", inbound("", "1L", "Merck", 1), "reagent_name"},
		{"sin tamaño", inbound("Etanol", "", "Merck", 1), "nominal_size"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.recorder.RecordInbound(ctx, tc.in)
			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr), "error %v", err)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
	assert.Empty(t, f.lots(t))
}

func TestRecordInbound_PedidoInexistenteNoDejaLote(t *testing.T) {
	f := newFixture()
	missing := int64(42)
	in := inbound("", "1L", "Merck", 1)
	in.OrderID = &missing

	_, err := f.recorder.RecordInbound(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	assert.Empty(t, f.lots(t))
}

func TestRecordInbound_SegundaEntradaContraPedidoCerradoSeAcepta(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	order, err := f.queue.Create(ctx, OrderInput{ReagentName: "Sodium", NominalQuantity: "500g", OrderDate: received, UserID: owner.UserID})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		in := inbound("", "", "Synth", 1)
		in.OrderID = &order.ID
		_, err := f.recorder.RecordInbound(ctx, in)
		require.NoError(t, err)
	}
	lots := f.lots(t)
	require.Len(t, lots, 1)
	assert.True(t, lots[0].Quantity.Equal(dec("1000")))
}

func TestRecordInbound_TamanoNoReconocidoCuentaUnidades(t *testing.T) {
	f := newFixture()
	mov, err := f.recorder.RecordInbound(context.Background(), inbound("Ponteira", "caixa", "Kasvi", 3))
	require.NoError(t, err)
	assert.Equal(t, entity.UnitCount, mov.Unit)
	assert.True(t, mov.Quantity.Equal(dec("3")))
}

func TestDeleteInbound_ReabrePedidoYRetiraCantidad(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	order, err := f.queue.Create(ctx, OrderInput{ReagentName: "Sodium", NominalQuantity: "500g", OrderDate: received, UserID: owner.UserID})
	require.NoError(t, err)
	in := inbound("", "500g", "Synth", 2)
	in.OrderID = &order.ID
	mov, err := f.recorder.RecordInbound(ctx, in)
	require.NoError(t, err)

	assert.ErrorIs(t, f.recorder.DeleteInbound(ctx, other, mov.ID), domain.ErrForbidden)
	require.NoError(t, f.recorder.DeleteInbound(ctx, owner, mov.ID))

	got, err := f.queue.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, got.IsOpen())
	assert.Empty(t, f.lots(t))
	_, err = f.recorder.GetInbound(ctx, mov.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteInbound_ConSalidasEsConflicto(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	mov, err := f.recorder.RecordInbound(ctx, inbound("Etanol", "1L", "Merck", 2))
	require.NoError(t, err)
	_, err = f.recorder.RecordOutbound(ctx, OutboundInput{InboundID: &mov.ID, Quantity: dec("0.5"), UserID: owner.UserID})
	require.NoError(t, err)

	err = f.recorder.DeleteInbound(ctx, admin, mov.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	lots := f.lots(t)
	require.Len(t, lots, 1)
	assert.True(t, lots[0].Quantity.Equal(dec("1.5")))
}

func TestCorrectInbound_CambioDeMarcaMueveRestante(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.recorder.RecordInbound(ctx, inbound("Etanol", "1L", "Merk", 1))
	require.NoError(t, err)
	mov, err := f.recorder.RecordInbound(ctx, inbound("Etanol", "1L", "Merk", 2))
	require.NoError(t, err)

	brand := "Merck"
	loc := "Shelf B2"
	got, err := f.recorder.CorrectInbound(ctx, owner, mov.ID, InboundCorrection{Brand: &brand, Location: &loc})
	require.NoError(t, err)
	assert.Equal(t, "Merck", got.Brand)
	assert.Equal(t, "Shelf B2", got.Location)

	lots := f.lots(t)
	require.Len(t, lots, 2)
	assert.Equal(t, "Merk", lots[0].Brand)
	assert.True(t, lots[0].Quantity.Equal(dec("1")))
	assert.Equal(t, 1, lots[0].Packages)
	assert.Equal(t, "Merck", lots[1].Brand)
	assert.True(t, lots[1].Quantity.Equal(dec("2")))
	assert.Equal(t, 2, lots[1].Packages)
	assert.Equal(t, "Shelf B2", lots[1].Location)
	assert.Equal(t, lots[1].ID, got.LotID)
}

func TestCorrectInbound_CambioDeMarcaConLoteConsumidoNoTocaOtrasEntradas(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a, err := f.recorder.RecordInbound(ctx, inbound("Etanol", "500ml", "Merk", 2))
	require.NoError(t, err)
	_, err = f.recorder.RecordOutbound(ctx, OutboundInput{ReagentName: "Etanol", NominalSize: "500ml", Brand: "Merk", Quantity: dec("0.6"), UserID: owner.UserID})
	require.NoError(t, err)
	_, err = f.recorder.RecordInbound(ctx, inbound("Etanol", "500ml", "Merck", 2))
	require.NoError(t, err)

	brand := "Merck"
	got, err := f.recorder.CorrectInbound(ctx, owner, a.ID, InboundCorrection{Brand: &brand})
	require.NoError(t, err)
	assert.True(t, got.Remaining.Equal(dec("0.4")), "solo lo movido: %s", got.Remaining)

	lots := f.lots(t)
	require.Len(t, lots, 1)
	assert.Equal(t, "Merck", lots[0].Brand)
	assert.True(t, lots[0].Quantity.Equal(dec("1.4")))

	require.NoError(t, f.recorder.DeleteInbound(ctx, owner, a.ID))
	lots = f.lots(t)
	require.Len(t, lots, 1)
	assert.True(t, lots[0].Quantity.Equal(dec("1")), "la otra entrada conserva su litro: %s", lots[0].Quantity)
}

func TestCorrectInbound_FechasYUbicacion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	mov, err := f.recorder.RecordInbound(ctx, inbound("Etanol", "1L", "Merck", 1))
	require.NoError(t, err)

	expires := received.AddDate(2, 0, 0)
	loc := "Geladeira"
	got, err := f.recorder.CorrectInbound(ctx, admin, mov.ID, InboundCorrection{ExpiresAt: &expires, Location: &loc})
	require.NoError(t, err)
	require.NotNil(t, got.ExpiresAt)
	assert.True(t, got.ExpiresAt.Equal(expires))
	assert.Equal(t, "Geladeira", f.lots(t)[0].Location)

	empty := ""
	_, err = f.recorder.CorrectInbound(ctx, admin, mov.ID, InboundCorrection{Location: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ─── Salidas ──────────────────────────────────────────────────────────────────

func TestRecordOutbound_ExcesoNoModificaLote(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.recorder.RecordInbound(ctx, inbound("Acetona", "500ml", "Synth", 2))
	require.NoError(t, err)

	_, err = f.recorder.RecordOutbound(ctx, OutboundInput{
		ReagentName: "acetona", NominalSize: "500ML", Brand: "synth", Quantity: dec("1.5"), UserID: owner.UserID,
	})
	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.True(t, stockErr.Available.Equal(dec("1")))
	assert.True(t, stockErr.Requested.Equal(dec("1.5")))
	assert.True(t, f.lots(t)[0].Quantity.Equal(dec("1")))
}

func TestRecordOutbound_ExactoEliminaLoteYCopiaUbicacion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.recorder.RecordInbound(ctx, inbound("Acetona", "500ml", "Synth", 2))
	require.NoError(t, err)

	out, err := f.recorder.RecordOutbound(ctx, OutboundInput{
		ReagentName: "Acetona", NominalSize: "500ml", Brand: "Synth", Quantity: dec("1"), Notes: " aula ", UserID: owner.UserID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Shelf A1", out.Location)
	assert.Equal(t, "aula", out.Notes)
	assert.Equal(t, entity.UnitLiter, out.Unit)
	assert.False(t, out.WithdrawnAt.IsZero())
	assert.Empty(t, f.lots(t))

	f.events.mu.Lock()
	last := f.events.events[len(f.events.events)-1]
	f.events.mu.Unlock()
	assert.Equal(t, EventOutboundRecorded, last.Type)
	assert.True(t, last.Depleted)
}

func TestRecordOutbound_CantidadNoPositiva(t *testing.T) {
	f := newFixture()
	_, err := f.recorder.RecordOutbound(context.Background(), OutboundInput{ReagentName: "A", Quantity: dec("0")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.recorder.RecordOutbound(context.Background(), OutboundInput{ReagentName: "A", Quantity: dec("0.0000000000001")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "por debajo de la escala de almacenamiento")
}

func TestRecordOutbound_ConEntradaDescuentaRestante(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	mov, err := f.recorder.RecordInbound(ctx, inbound("Etanol", "1L", "Merck", 2))
	require.NoError(t, err)

	_, err = f.recorder.RecordOutbound(ctx, OutboundInput{InboundID: &mov.ID, Quantity: dec("3"), UserID: owner.UserID})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.recorder.RecordOutbound(ctx, OutboundInput{InboundID: &mov.ID, Brand: "Synth", Quantity: dec("1"), UserID: owner.UserID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.recorder.RecordOutbound(ctx, OutboundInput{InboundID: &mov.ID, Quantity: dec("1.25"), UserID: owner.UserID})
	require.NoError(t, err)
	got, err := f.recorder.GetInbound(ctx, mov.ID)
	require.NoError(t, err)
	assert.True(t, got.Remaining.Equal(dec("0.75")))

	missing := int64(99)
	_, err = f.recorder.RecordOutbound(ctx, OutboundInput{InboundID: &missing, Quantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteOutbound_RecreaLoteYRestauraEntrada(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	mov, err := f.recorder.RecordInbound(ctx, inbound("Etanol", "1L", "Merck", 2))
	require.NoError(t, err)
	out, err := f.recorder.RecordOutbound(ctx, OutboundInput{InboundID: &mov.ID, Quantity: dec("2"), UserID: owner.UserID})
	require.NoError(t, err)
	require.Empty(t, f.lots(t))

	assert.ErrorIs(t, f.recorder.DeleteOutbound(ctx, other, out.ID), domain.ErrForbidden)
	require.NoError(t, f.recorder.DeleteOutbound(ctx, owner, out.ID))

	lots := f.lots(t)
	require.Len(t, lots, 1)
	assert.True(t, lots[0].Quantity.Equal(dec("2")))
	assert.Equal(t, 2, lots[0].Packages)
	assert.Equal(t, "Shelf A1", lots[0].Location)
	got, err := f.recorder.GetInbound(ctx, mov.ID)
	require.NoError(t, err)
	assert.True(t, got.Remaining.Equal(dec("2")))
	_, err = f.recorder.GetOutbound(ctx, out.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCorrectOutbound_SoloFechaYNotas(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.recorder.RecordInbound(ctx, inbound("Etanol", "1L", "Merck", 2))
	require.NoError(t, err)
	out, err := f.recorder.RecordOutbound(ctx, OutboundInput{ReagentName: "Etanol", NominalSize: "1L", Brand: "Merck", Quantity: dec("1"), UserID: owner.UserID})
	require.NoError(t, err)

	when := received.AddDate(0, 0, 1)
	notes := "prática 3"
	got, err := f.recorder.CorrectOutbound(ctx, owner, out.ID, OutboundCorrection{WithdrawnAt: &when, Notes: &notes})
	require.NoError(t, err)
	assert.True(t, got.WithdrawnAt.Equal(when))
	assert.Equal(t, "prática 3", got.Notes)
	assert.True(t, got.Quantity.Equal(dec("1")))
}

func TestMovementRecorder_ConcurrenciaMantieneUnLote(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.recorder.RecordInbound(ctx, inbound("Etanol", "1L", "Merck", 1))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	lots := f.lots(t)
	require.Len(t, lots, 1)
	assert.True(t, lots[0].Quantity.Equal(dec("20")))
	assert.Equal(t, 20, lots[0].Packages)
}
