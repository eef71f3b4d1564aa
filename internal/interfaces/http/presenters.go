package http

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Reagentes-api/internal/application/dto"
	"github.com/jhoicas/Reagentes-api/internal/application/report"
	"github.com/jhoicas/Reagentes-api/internal/domain/entity"
)

func toOrderResponse(o *entity.PurchaseOrder) dto.OrderResponse {
	return dto.OrderResponse{
		ID:              o.ID,
		ReagentName:     o.ReagentName,
		NominalQuantity: o.NominalQuantity,
		OrderDate:       o.OrderDate.Format(dto.DateLayout),
		Controlled:      o.Controlled,
		Status:          o.Status,
		UserID:          o.UserID,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toOrderList(orders []*entity.PurchaseOrder) dto.ListResponse[dto.OrderResponse] {
	items := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, toOrderResponse(o))
	}
	return dto.NewListResponse(items)
}

func toInboundResponse(m *entity.InboundMovement) dto.InboundResponse {
	return dto.InboundResponse{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		LotID:         m.LotID,
		OrderID:       m.OrderID,
		ReagentName:   m.ReagentName,
		NominalSize:   m.NominalSize,
		Brand:         m.Brand,
		Location:      m.Location,
		Packages:      m.Packages,
		Controlled:    m.Controlled,
		ReceivedAt:    m.ReceivedAt.Format(dto.DateLayout),
		ExpiresAt:     formatDatePtr(m.ExpiresAt),
		Quantity:      m.Quantity,
		Remaining:     m.Remaining,
		Unit:          m.Unit,
		UserID:        m.UserID,
		CreatedAt:     m.CreatedAt,
	}
}

func toOutboundResponse(m *entity.OutboundMovement) dto.OutboundResponse {
	return dto.OutboundResponse{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		LotID:         m.LotID,
		InboundID:     m.InboundID,
		ReagentName:   m.ReagentName,
		NominalSize:   m.NominalSize,
		Brand:         m.Brand,
		Location:      m.Location,
		Quantity:      m.Quantity,
		Unit:          m.Unit,
		Controlled:    m.Controlled,
		WithdrawnAt:   m.WithdrawnAt.Format(dto.DateLayout),
		Notes:         m.Notes,
		UserID:        m.UserID,
		CreatedAt:     m.CreatedAt,
	}
}

func toLotResponse(l *entity.ReagentLot, critical decimal.Decimal) dto.LotResponse {
	return dto.LotResponse{
		ID:          l.ID,
		Name:        l.Name,
		NominalSize: l.NominalSize,
		Brand:       l.Brand,
		Location:    l.Location,
		Quantity:    l.Quantity,
		Unit:        l.Unit,
		Packages:    l.Packages,
		Controlled:  l.Controlled,
		Critical:    l.Quantity.LessThan(critical),
		UpdatedAt:   l.UpdatedAt,
	}
}

func toSummaryResponse(s report.Summary, critical decimal.Decimal) dto.SummaryResponse {
	out := dto.SummaryResponse{
		TotalLots:         s.TotalLots,
		TotalQuantity:     s.TotalQuantity,
		CriticalLots:      s.CriticalLots,
		DepletedLots:      s.DepletedLots,
		MeanQuantity:      s.MeanQuantity,
		QuantityByUnit:    s.QuantityByUnit,
		CriticalThreshold: critical,
	}
	if s.MaxQuantityLot != nil {
		lot := toLotResponse(s.MaxQuantityLot, critical)
		out.MaxQuantityLot = &lot
	}
	return out
}

func toSearchItemResponse(it report.SearchItem, critical decimal.Decimal) dto.SearchItemResponse {
	out := dto.SearchItemResponse{Status: it.Status}
	if it.Lot != nil {
		lot := toLotResponse(it.Lot, critical)
		out.Lot = &lot
	}
	for _, m := range it.Inbound {
		out.Inbound = append(out.Inbound, toInboundResponse(m))
	}
	if it.Order != nil {
		o := toOrderResponse(it.Order)
		out.Order = &o
	}
	return out
}

func toReportResponse(r *report.Report) dto.ReportResponse {
	return dto.ReportResponse{
		Type:        r.Type,
		Title:       r.Title,
		Columns:     r.Columns,
		Rows:        r.Rows,
		Total:       r.Total,
		GeneratedAt: r.GeneratedAt,
	}
}
