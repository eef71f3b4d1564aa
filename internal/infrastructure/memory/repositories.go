package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/Reagentes-api/internal/domain"
	"github.com/jhoicas/Reagentes-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Reagentes-api/internal/domain/inventory"
	"github.com/jhoicas/Reagentes-api/internal/domain/repository"
)

var (
	_ repository.LotRepository      = (*LotRepo)(nil)
	_ repository.OrderRepository    = (*OrderRepo)(nil)
	_ repository.InboundRepository  = (*InboundRepo)(nil)
	_ repository.OutboundRepository = (*OutboundRepo)(nil)
	_ repository.UserRepository     = (*UserRepo)(nil)
)

// ── Lotes ────────────────────────────────────────────────────────────────────

// LotRepo implementa repository.LotRepository.
type LotRepo struct{ acc accessor }

func (r *LotRepo) List(_ context.Context) ([]*entity.ReagentLot, error) {
	var out []*entity.ReagentLot
	r.acc.read(func(st *state) {
		out = make([]*entity.ReagentLot, 0, len(st.lots))
		for _, l := range st.lots {
			lot := l
			out = append(out, &lot)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *LotRepo) GetByID(_ context.Context, id int64) (*entity.ReagentLot, error) {
	var (
		lot entity.ReagentLot
		ok  bool
	)
	r.acc.read(func(st *state) { lot, ok = st.lots[id] })
	if !ok {
		return nil, nil
	}
	return &lot, nil
}

// Insert rechaza con domain.ErrDuplicate un ID existente o una clave normalizada repetida.
func (r *LotRepo) Insert(_ context.Context, lot *entity.ReagentLot) error {
	var err error
	r.acc.write(func(st *state) {
		if _, exists := st.lots[lot.ID]; exists {
			err = fmt.Errorf("lote %d: %w", lot.ID, domain.ErrDuplicate)
			return
		}
		key := domaininv.NewLotKey(lot.Name, lot.NominalSize, lot.Brand)
		for _, l := range st.lots {
			if domaininv.NewLotKey(l.Name, l.NominalSize, l.Brand) == key {
				err = fmt.Errorf("clave de lote repetida: %w", domain.ErrDuplicate)
				return
			}
		}
		st.lots[lot.ID] = *lot
	})
	return err
}

func (r *LotRepo) Update(_ context.Context, lot *entity.ReagentLot) error {
	var err error
	r.acc.write(func(st *state) {
		if _, exists := st.lots[lot.ID]; !exists {
			err = domain.ErrNotFound
			return
		}
		st.lots[lot.ID] = *lot
	})
	return err
}

func (r *LotRepo) Delete(_ context.Context, id int64) error {
	var err error
	r.acc.write(func(st *state) {
		if _, exists := st.lots[id]; !exists {
			err = domain.ErrNotFound
			return
		}
		delete(st.lots, id)
	})
	return err
}

// ── Pedidos ──────────────────────────────────────────────────────────────────

// OrderRepo implementa repository.OrderRepository.
type OrderRepo struct{ acc accessor }

func (r *OrderRepo) Create(_ context.Context, order *entity.PurchaseOrder) error {
	r.acc.write(func(st *state) {
		st.orderSeq++
		order.ID = st.orderSeq
		st.orders[order.ID] = *order
	})
	return nil
}

func (r *OrderRepo) GetByID(_ context.Context, id int64) (*entity.PurchaseOrder, error) {
	var (
		order entity.PurchaseOrder
		ok    bool
	)
	r.acc.read(func(st *state) { order, ok = st.orders[id] })
	if !ok {
		return nil, nil
	}
	return &order, nil
}

func (r *OrderRepo) List(_ context.Context, status string) ([]*entity.PurchaseOrder, error) {
	var out []*entity.PurchaseOrder
	r.acc.read(func(st *state) {
		out = make([]*entity.PurchaseOrder, 0, len(st.orders))
		for _, o := range st.orders {
			if status != "" && o.Status != status {
				continue
			}
			order := o
			out = append(out, &order)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].OrderDate.After(out[j].OrderDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *OrderRepo) Update(_ context.Context, order *entity.PurchaseOrder) error {
	var err error
	r.acc.write(func(st *state) {
		if _, exists := st.orders[order.ID]; !exists {
			err = domain.ErrOrderNotFound
			return
		}
		st.orders[order.ID] = *order
	})
	return err
}

func (r *OrderRepo) Delete(_ context.Context, id int64) error {
	var err error
	r.acc.write(func(st *state) {
		if _, exists := st.orders[id]; !exists {
			err = domain.ErrOrderNotFound
			return
		}
		delete(st.orders, id)
	})
	return err
}

// ── Entradas ─────────────────────────────────────────────────────────────────

// InboundRepo implementa repository.InboundRepository.
type InboundRepo struct{ acc accessor }

func (r *InboundRepo) Create(_ context.Context, m *entity.InboundMovement) error {
	r.acc.write(func(st *state) {
		st.inboundSeq++
		m.ID = st.inboundSeq
		st.inbound[m.ID] = cloneInbound(*m)
	})
	return nil
}

func (r *InboundRepo) GetByID(_ context.Context, id int64) (*entity.InboundMovement, error) {
	var (
		m  entity.InboundMovement
		ok bool
	)
	r.acc.read(func(st *state) { m, ok = st.inbound[id] })
	if !ok {
		return nil, nil
	}
	m = cloneInbound(m)
	return &m, nil
}

func (r *InboundRepo) List(_ context.Context) ([]*entity.InboundMovement, error) {
	var out []*entity.InboundMovement
	r.acc.read(func(st *state) {
		out = make([]*entity.InboundMovement, 0, len(st.inbound))
		for _, m := range st.inbound {
			c := cloneInbound(m)
			out = append(out, &c)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReceivedAt.Equal(out[j].ReceivedAt) {
			return out[i].ReceivedAt.After(out[j].ReceivedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *InboundRepo) Update(_ context.Context, m *entity.InboundMovement) error {
	var err error
	r.acc.write(func(st *state) {
		if _, exists := st.inbound[m.ID]; !exists {
			err = domain.ErrNotFound
			return
		}
		st.inbound[m.ID] = cloneInbound(*m)
	})
	return err
}

func (r *InboundRepo) Delete(_ context.Context, id int64) error {
	var err error
	r.acc.write(func(st *state) {
		if _, exists := st.inbound[id]; !exists {
			err = domain.ErrNotFound
			return
		}
		delete(st.inbound, id)
	})
	return err
}

// ── Salidas ──────────────────────────────────────────────────────────────────

// OutboundRepo implementa repository.OutboundRepository.
type OutboundRepo struct{ acc accessor }

func (r *OutboundRepo) Create(_ context.Context, m *entity.OutboundMovement) error {
	r.acc.write(func(st *state) {
		st.outboundSeq++
		m.ID = st.outboundSeq
		st.outbound[m.ID] = cloneOutbound(*m)
	})
	return nil
}

func (r *OutboundRepo) GetByID(_ context.Context, id int64) (*entity.OutboundMovement, error) {
	var (
		m  entity.OutboundMovement
		ok bool
	)
	r.acc.read(func(st *state) { m, ok = st.outbound[id] })
	if !ok {
		return nil, nil
	}
	m = cloneOutbound(m)
	return &m, nil
}

func (r *OutboundRepo) List(_ context.Context) ([]*entity.OutboundMovement, error) {
	var out []*entity.OutboundMovement
	r.acc.read(func(st *state) {
		out = make([]*entity.OutboundMovement, 0, len(st.outbound))
		for _, m := range st.outbound {
			c := cloneOutbound(m)
			out = append(out, &c)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].WithdrawnAt.Equal(out[j].WithdrawnAt) {
			return out[i].WithdrawnAt.After(out[j].WithdrawnAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *OutboundRepo) CountByInbound(_ context.Context, inboundID int64) (int, error) {
	n := 0
	r.acc.read(func(st *state) {
		for _, m := range st.outbound {
			if m.InboundID != nil && *m.InboundID == inboundID {
				n++
			}
		}
	})
	return n, nil
}

func (r *OutboundRepo) Update(_ context.Context, m *entity.OutboundMovement) error {
	var err error
	r.acc.write(func(st *state) {
		if _, exists := st.outbound[m.ID]; !exists {
			err = domain.ErrNotFound
			return
		}
		st.outbound[m.ID] = cloneOutbound(*m)
	})
	return err
}

func (r *OutboundRepo) Delete(_ context.Context, id int64) error {
	var err error
	r.acc.write(func(st *state) {
		if _, exists := st.outbound[id]; !exists {
			err = domain.ErrNotFound
			return
		}
		delete(st.outbound, id)
	})
	return err
}

// ── Usuarios ─────────────────────────────────────────────────────────────────

// UserRepo implementa repository.UserRepository.
type UserRepo struct{ acc accessor }

// Create rechaza con domain.ErrDuplicate un username ya registrado.
func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	var err error
	r.acc.write(func(st *state) {
		for _, existing := range st.users {
			if existing.Username == u.Username {
				err = fmt.Errorf("usuario %q: %w", u.Username, domain.ErrDuplicate)
				return
			}
		}
		st.users[u.ID] = *u
	})
	return err
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var (
		u  entity.User
		ok bool
	)
	r.acc.read(func(st *state) { u, ok = st.users[id] })
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	var found *entity.User
	r.acc.read(func(st *state) {
		for _, u := range st.users {
			if u.Username == username {
				c := u
				found = &c
				return
			}
		}
	})
	return found, nil
}

func (r *UserRepo) List(_ context.Context) ([]*entity.User, error) {
	var out []*entity.User
	r.acc.read(func(st *state) {
		out = make([]*entity.User, 0, len(st.users))
		for _, u := range st.users {
			c := u
			out = append(out, &c)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	var err error
	r.acc.write(func(st *state) {
		if _, exists := st.users[u.ID]; !exists {
			err = domain.ErrUserNotFound
			return
		}
		st.users[u.ID] = *u
	})
	return err
}
