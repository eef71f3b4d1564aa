package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Reagentes-api/internal/application/auth"
	"github.com/jhoicas/Reagentes-api/internal/application/inventory"
	"github.com/jhoicas/Reagentes-api/internal/application/report"
	"github.com/jhoicas/Reagentes-api/internal/domain/repository"
	"github.com/jhoicas/Reagentes-api/internal/infrastructure/export"
	"github.com/jhoicas/Reagentes-api/internal/infrastructure/memory"
	"github.com/jhoicas/Reagentes-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Reagentes-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Reagentes-api/internal/infrastructure/realtime"
	httpRouter "github.com/jhoicas/Reagentes-api/internal/interfaces/http"
	"github.com/jhoicas/Reagentes-api/pkg/config"
	"github.com/jhoicas/Reagentes-api/pkg/logger"
)

// stores repositorios y runner transaccional del backend elegido.
type stores struct {
	lots     repository.LotRepository
	orders   repository.OrderRepository
	inbound  repository.InboundRepository
	outbound repository.OutboundRepository
	users    repository.UserRepository
	tx       inventory.TxRunner
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.DB.Store).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer st.close()

	authUC := auth.NewAuthUseCase(st.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	if cfg.Admin.Password != "" {
		created, err := authUC.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.Email)
		if err != nil {
			log.Fatal().Err(err).Msg("crear administrador inicial")
		}
		if created {
			log.Info().Str("username", cfg.Admin.Username).Msg("administrador inicial creado")
		}
	} else if cfg.DB.Store == config.StoreMemory {
		log.Warn().Msg("ADMIN_PASSWORD vacío: el store en memoria arranca sin usuarios")
	}

	hub := realtime.NewHub(log)
	go hub.Run(ctx)

	publishers := inventory.Publishers{hub}
	var recorder *metrics.Recorder
	if cfg.Metrics.Enabled {
		recorder = metrics.NewRecorder()
		publishers = append(publishers, recorder)
	}

	movementUC := inventory.NewMovementRecorder(st.tx, st.inbound, st.outbound, publishers, log)
	orderQueue := inventory.NewOrderQueue(st.orders)
	queryUC := report.NewQueryUseCase(st.lots, st.orders, st.inbound, cfg.Stock.CriticalThreshold)
	reportUC := report.NewReportUseCase(st.lots, st.orders, st.inbound, st.outbound,
		export.NewXLSXExporter(),
		export.NewPDFExporter(cfg.App.Name),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Reagentes API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		Orders:      orderQueue,
		Recorder:    movementUC,
		Queries:     queryUC,
		Reports:     reportUC,
		Hub:         hub,
		Metrics:     recorder,
		MetricsPath: cfg.Metrics.Path,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	stop()

	log.Info().Msg("aplicación detenida")
}

// openStores abre PostgreSQL (con migraciones si DB_AUTO_MIGRATE) o el almacén en memoria.
func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	if cfg.DB.Store == config.StoreMemory {
		store := memory.NewStore()
		return &stores{
			lots:     store.Lots(),
			orders:   store.Orders(),
			inbound:  store.Inbound(),
			outbound: store.Outbound(),
			users:    store.Users(),
			tx:       memory.NewTxRunner(store),
			close:    func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("migraciones aplicadas")
	}
	return &stores{
		lots:     postgres.NewLotRepository(pool),
		orders:   postgres.NewOrderRepository(pool),
		inbound:  postgres.NewInboundRepository(pool),
		outbound: postgres.NewOutboundRepository(pool),
		users:    postgres.NewUserRepository(pool),
		tx:       postgres.NewTxRunner(pool),
		close:    pool.Close,
	}, nil
}
