package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reagentes-api/internal/application/auth"
	"github.com/jhoicas/Reagentes-api/internal/application/inventory"
	"github.com/jhoicas/Reagentes-api/internal/application/report"
	"github.com/jhoicas/Reagentes-api/internal/domain/entity"
	"github.com/jhoicas/Reagentes-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Reagentes-api/internal/infrastructure/realtime"
)

// RouterDeps dependencias para el router. Hub y Metrics son opcionales.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	Orders      *inventory.OrderQueue
	Recorder    *inventory.MovementRecorder
	Queries     *report.QueryUseCase
	Reports     *report.ReportUseCase
	Hub         *realtime.Hub
	Metrics     *metrics.Recorder
	MetricsPath string
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Use(deps.Metrics.Middleware())
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, deps.Metrics.Handler())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if deps.Hub != nil {
		app.Use("/ws", realtime.UpgradeMiddleware())
		app.Get("/ws/stock", deps.Hub.Handler())
	}

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)

	// Usuarios (solo admin)
	users := protected.Group("/users", RequireRole(entity.RoleAdmin))
	userHandler := NewUserHandler(deps.AuthUC)
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)

	// Pedidos de compra
	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.Orders)
	orders.Get("/", orderHandler.List)
	orders.Post("/", orderHandler.Create)
	orders.Get("/open", orderHandler.ListOpen)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Put("/:id", orderHandler.Update)
	orders.Delete("/:id", orderHandler.Delete)

	// Entradas
	inbound := protected.Group("/inbound")
	inboundHandler := NewInboundHandler(deps.Recorder)
	inbound.Get("/", inboundHandler.List)
	inbound.Post("/", inboundHandler.Create)
	inbound.Get("/:id", inboundHandler.GetByID)
	inbound.Put("/:id", inboundHandler.Update)
	inbound.Delete("/:id", inboundHandler.Delete)

	// Salidas
	outbound := protected.Group("/outbound")
	outboundHandler := NewOutboundHandler(deps.Recorder)
	outbound.Get("/", outboundHandler.List)
	outbound.Post("/", outboundHandler.Create)
	outbound.Get("/:id", outboundHandler.GetByID)
	outbound.Put("/:id", outboundHandler.Update)
	outbound.Delete("/:id", outboundHandler.Delete)

	// Lotes
	lots := protected.Group("/lots")
	lotHandler := NewLotHandler(deps.Queries)
	lots.Get("/", lotHandler.List)
	lots.Get("/summary", lotHandler.Summary)
	lots.Get("/search", lotHandler.Search)
	lots.Get("/:id", lotHandler.GetByID)

	// Reportes
	reports := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.Reports)
	reports.Post("/", reportHandler.Generate)
	reports.Get("/:type/export", reportHandler.Export)
}
