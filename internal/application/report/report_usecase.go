package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/Reagentes-api/internal/domain"
	"github.com/jhoicas/Reagentes-api/internal/domain/entity"
	"github.com/jhoicas/Reagentes-api/internal/domain/repository"
)

// Tipos de reporte.
const (
	TypeOpenOrders      = "open_orders"
	TypeClosedOrders    = "closed_orders"
	TypeStock           = "stock"
	TypeInboundHistory  = "inbound_history"
	TypeOutboundHistory = "outbound_history"
)

var reportTitles = map[string]string{
	TypeOpenOrders:      "Pedidos abiertos",
	TypeClosedOrders:    "Pedidos cerrados",
	TypeStock:           "Stock de reactivos",
	TypeInboundHistory:  "Historial de entradas",
	TypeOutboundHistory: "Historial de salidas",
}

const dateLayout = "2006-01-02"

// Report tabla lista para mostrar o exportar.
type Report struct {
	Type        string
	Title       string
	Columns     []string
	Rows        [][]string
	Total       int
	GeneratedAt time.Time
}

// ReportUseCase genera los reportes del laboratorio y sus exportaciones.
type ReportUseCase struct {
	lotRepo      repository.LotRepository
	orderRepo    repository.OrderRepository
	inboundRepo  repository.InboundRepository
	outboundRepo repository.OutboundRepository
	exporters    map[string]Exporter
	now          func() time.Time
}

// NewReportUseCase construye el caso de uso con los exportadores disponibles.
func NewReportUseCase(
	lotRepo repository.LotRepository,
	orderRepo repository.OrderRepository,
	inboundRepo repository.InboundRepository,
	outboundRepo repository.OutboundRepository,
	exporters ...Exporter,
) *ReportUseCase {
	byFormat := make(map[string]Exporter, len(exporters))
	for _, e := range exporters {
		byFormat[e.Format()] = e
	}
	return &ReportUseCase{
		lotRepo:      lotRepo,
		orderRepo:    orderRepo,
		inboundRepo:  inboundRepo,
		outboundRepo: outboundRepo,
		exporters:    byFormat,
		now:          time.Now,
	}
}

// Generate arma el reporte del tipo pedido. Tipo desconocido: *domain.ValidationError.
func (uc *ReportUseCase) Generate(ctx context.Context, reportType string) (*Report, error) {
	title, ok := reportTitles[reportType]
	if !ok {
		return nil, domain.NewValidationError("type", "tipo de reporte inválido")
	}
	r := &Report{Type: reportType, Title: title, Rows: [][]string{}, GeneratedAt: uc.now()}

	var err error
	switch reportType {
	case TypeOpenOrders:
		err = uc.orders(ctx, r, entity.OrderStatusOpen)
	case TypeClosedOrders:
		err = uc.orders(ctx, r, entity.OrderStatusClosed)
	case TypeStock:
		err = uc.stock(ctx, r)
	case TypeInboundHistory:
		err = uc.inbound(ctx, r)
	case TypeOutboundHistory:
		err = uc.outbound(ctx, r)
	}
	if err != nil {
		return nil, fmt.Errorf("generar reporte %s: %w", reportType, err)
	}
	r.Total = len(r.Rows)
	return r, nil
}

// Export genera el reporte y lo convierte al formato pedido.
// Devuelve el contenido, su content-type y un nombre de archivo sugerido.
func (uc *ReportUseCase) Export(ctx context.Context, reportType, format string) ([]byte, string, string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	exporter, ok := uc.exporters[format]
	if !ok {
		return nil, "", "", domain.NewValidationError("format", "formato no soportado")
	}
	r, err := uc.Generate(ctx, reportType)
	if err != nil {
		return nil, "", "", err
	}
	data, err := exporter.Export(r)
	if err != nil {
		return nil, "", "", fmt.Errorf("exportar %s: %w", format, err)
	}
	filename := fmt.Sprintf("%s_%s.%s", reportType, r.GeneratedAt.Format("20060102"), format)
	return data, exporter.ContentType(), filename, nil
}

func (uc *ReportUseCase) orders(ctx context.Context, r *Report, status string) error {
	orders, err := uc.orderRepo.List(ctx, status)
	if err != nil {
		return err
	}
	r.Columns = []string{"ID", "Reactivo", "Cantidad nominal", "Fecha de pedido", "Controlado", "Estado"}
	for _, o := range orders {
		r.Rows = append(r.Rows, []string{
			strconv.FormatInt(o.ID, 10),
			o.ReagentName,
			o.NominalQuantity,
			o.OrderDate.Format(dateLayout),
			yesNo(o.Controlled),
			o.Status,
		})
	}
	return nil
}

func (uc *ReportUseCase) stock(ctx context.Context, r *Report) error {
	lots, err := uc.lotRepo.List(ctx)
	if err != nil {
		return err
	}
	r.Columns = []string{"ID", "Reactivo", "Tamaño", "Marca", "Ubicación", "Cantidad", "Unidad", "Embalajes", "Controlado"}
	for _, l := range lots {
		r.Rows = append(r.Rows, []string{
			strconv.FormatInt(l.ID, 10),
			l.Name,
			l.NominalSize,
			l.Brand,
			l.Location,
			l.Quantity.String(),
			l.Unit,
			strconv.Itoa(l.Packages),
			yesNo(l.Controlled),
		})
	}
	return nil
}

func (uc *ReportUseCase) inbound(ctx context.Context, r *Report) error {
	movs, err := uc.inboundRepo.List(ctx)
	if err != nil {
		return err
	}
	r.Columns = []string{"ID", "Recepción", "Reactivo", "Tamaño", "Marca", "Embalajes", "Cantidad", "Restante", "Unidad", "Ubicación", "Vencimiento", "Pedido"}
	for _, m := range movs {
		expires, order := "", ""
		if m.ExpiresAt != nil {
			expires = m.ExpiresAt.Format(dateLayout)
		}
		if m.OrderID != nil {
			order = strconv.FormatInt(*m.OrderID, 10)
		}
		r.Rows = append(r.Rows, []string{
			strconv.FormatInt(m.ID, 10),
			m.ReceivedAt.Format(dateLayout),
			m.ReagentName,
			m.NominalSize,
			m.Brand,
			strconv.Itoa(m.Packages),
			m.Quantity.String(),
			m.Remaining.String(),
			m.Unit,
			m.Location,
			expires,
			order,
		})
	}
	return nil
}

func (uc *ReportUseCase) outbound(ctx context.Context, r *Report) error {
	movs, err := uc.outboundRepo.List(ctx)
	if err != nil {
		return err
	}
	r.Columns = []string{"ID", "Retiro", "Reactivo", "Tamaño", "Marca", "Cantidad", "Unidad", "Ubicación", "Observaciones"}
	for _, m := range movs {
		r.Rows = append(r.Rows, []string{
			strconv.FormatInt(m.ID, 10),
			m.WithdrawnAt.Format(dateLayout),
			m.ReagentName,
			m.NominalSize,
			m.Brand,
			m.Quantity.String(),
			m.Unit,
			m.Location,
			m.Notes,
		})
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}
