// Package memory implementa los repositorios del dominio en memoria, con transacciones
// por copia de estado. Se usa en tests y con STORE_BACKEND=memory.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Reagentes-api/internal/domain/entity"
	"github.com/jhoicas/Reagentes-api/internal/domain/repository"
)

type state struct {
	lots     map[int64]entity.ReagentLot
	orders   map[int64]entity.PurchaseOrder
	inbound  map[int64]entity.InboundMovement
	outbound map[int64]entity.OutboundMovement
	users    map[string]entity.User

	orderSeq    int64
	inboundSeq  int64
	outboundSeq int64
}

func newState() state {
	return state{
		lots:     map[int64]entity.ReagentLot{},
		orders:   map[int64]entity.PurchaseOrder{},
		inbound:  map[int64]entity.InboundMovement{},
		outbound: map[int64]entity.OutboundMovement{},
		users:    map[string]entity.User{},
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.lots {
		c.lots[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.inbound {
		c.inbound[k] = cloneInbound(v)
	}
	for k, v := range s.outbound {
		c.outbound[k] = cloneOutbound(v)
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	c.orderSeq, c.inboundSeq, c.outboundSeq = s.orderSeq, s.inboundSeq, s.outboundSeq
	return c
}

func cloneInbound(m entity.InboundMovement) entity.InboundMovement {
	if m.OrderID != nil {
		id := *m.OrderID
		m.OrderID = &id
	}
	if m.ExpiresAt != nil {
		t := *m.ExpiresAt
		m.ExpiresAt = &t
	}
	return m
}

func cloneOutbound(m entity.OutboundMovement) entity.OutboundMovement {
	if m.InboundID != nil {
		id := *m.InboundID
		m.InboundID = &id
	}
	return m
}

// accessor da acceso al estado: con bloqueo (Store) o directo (dentro de una tx).
type accessor interface {
	read(fn func(st *state))
	write(fn func(st *state))
}

// Store estado compartido del proceso. Las lecturas toman RLock; Run toma Lock durante toda la tx.
type Store struct {
	mu sync.RWMutex
	st state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) read(fn func(st *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.st)
}

func (s *Store) write(fn func(st *state)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.st)
}

type txAccessor struct{ st *state }

func (t txAccessor) read(fn func(st *state))  { fn(t.st) }
func (t txAccessor) write(fn func(st *state)) { fn(t.st) }

// Lots repositorio de lotes fuera de transacción.
func (s *Store) Lots() *LotRepo { return &LotRepo{acc: s} }

// Orders repositorio de pedidos fuera de transacción.
func (s *Store) Orders() *OrderRepo { return &OrderRepo{acc: s} }

// Inbound repositorio de entradas fuera de transacción.
func (s *Store) Inbound() *InboundRepo { return &InboundRepo{acc: s} }

// Outbound repositorio de salidas fuera de transacción.
func (s *Store) Outbound() *OutboundRepo { return &OutboundRepo{acc: s} }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{acc: s} }

// TxRunner implementa inventory.TxRunner sobre el almacén en memoria.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run trabaja sobre una copia del estado y la publica solo si fn no devuelve error.
func (r *TxRunner) Run(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	orderRepo repository.OrderRepository,
	inboundRepo repository.InboundRepository,
	outboundRepo repository.OutboundRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	working := r.store.st.clone()
	acc := txAccessor{st: &working}
	if err := fn(&LotRepo{acc: acc}, &OrderRepo{acc: acc}, &InboundRepo{acc: acc}, &OutboundRepo{acc: acc}); err != nil {
		return err
	}
	r.store.st = working
	return nil
}
