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

	"github.com/jhoicas/farmacia-pos/internal/application/accounts"
	"github.com/jhoicas/farmacia-pos/internal/application/auth"
	"github.com/jhoicas/farmacia-pos/internal/application/ports"
	"github.com/jhoicas/farmacia-pos/internal/application/receipt"
	"github.com/jhoicas/farmacia-pos/internal/application/sales"
	"github.com/jhoicas/farmacia-pos/internal/application/usecase"
	"github.com/jhoicas/farmacia-pos/internal/infrastructure/memory"
	"github.com/jhoicas/farmacia-pos/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/farmacia-pos/internal/infrastructure/pdf"
	"github.com/jhoicas/farmacia-pos/internal/infrastructure/postgres"
	"github.com/jhoicas/farmacia-pos/internal/infrastructure/postgres/migrations"
	"github.com/jhoicas/farmacia-pos/internal/infrastructure/printer"
	"github.com/jhoicas/farmacia-pos/internal/infrastructure/scheduler"
	httpRouter "github.com/jhoicas/farmacia-pos/internal/interfaces/http"
	"github.com/jhoicas/farmacia-pos/pkg/config"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// storage repositorios y transacciones del driver elegido.
type storage struct {
	repos  ports.Repos
	tx     ports.TxRunner
	pinger httpRouter.Pinger
	close  func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	// Los parámetros guardados desde /api/config/db tienen prioridad sobre el entorno.
	envDB := cfg.DB
	dbFile := config.NewDBFile(cfg.DB.ConfigFile)
	if saved, found, err := dbFile.Load(); err != nil {
		log.Warn().Err(err).Str("file", dbFile.Path()).Msg("archivo de configuración de base ilegible, se usa el entorno")
	} else if found {
		cfg.DB = config.Merge(cfg.DB, saved)
		log.Info().Str("file", dbFile.Path()).Msg("configuración de base tomada del archivo local")
	}

	ctx := context.Background()
	store := openStorage(ctx, cfg.DB, log)
	defer store.close()

	m := metrics.New()
	prn := buildPrinter(cfg, m, log)

	receipts := receipt.NewService(store.repos.Movements, store.repos.Clients, prn,
		infrapdf.NewReceiptGenerator(), cfg.Store, cfg.Printer, log)
	salesSvc := sales.NewService(store.repos, store.tx, receipts, m, log)
	accountsSvc := accounts.NewService(store.repos, store.tx, receipts, m, cfg.Ledger, log)

	clientUC := usecase.NewClientUseCase(store.repos.Clients, store.tx, log)
	employeeUC := usecase.NewEmployeeUseCase(store.repos.Employees, store.tx, log)
	productUC := usecase.NewProductUseCase(store.repos.Products, store.tx, log)
	movementUC := usecase.NewMovementUseCase(store.repos.Movements, store.tx, log)
	dbConfigUC := usecase.NewDBConfigUseCase(envDB, dbFile, postgres.ConnTester{}, log)
	authUC := auth.NewAuthUseCase(store.repos.Employees, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: la API no exige token")
	}

	jobs := scheduler.New(log)
	if err := jobs.AddReconcile(cfg.Jobs.ReconcileCron, movementUC); err != nil {
		log.Fatal().Err(err).Str("cron", cfg.Jobs.ReconcileCron).Msg("LEDGER_RECONCILE_CRON inválido")
	}
	jobs.Start()
	defer jobs.Stop()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))
	app.Use(m.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs (generado con swag init)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Farmacia POS API",
		}))
	}

	app.Get("/health", httpRouter.HealthHandler(store.pinger, cfg.DB.Driver))
	app.Get("/metrics", m.Handler())

	httpRouter.Router(app, httpRouter.RouterDeps{
		ClientUC:   clientUC,
		EmployeeUC: employeeUC,
		ProductUC:  productUC,
		MovementUC: movementUC,
		DBConfigUC: dbConfigUC,
		Sales:      salesSvc,
		Accounts:   accountsSvc,
		Receipts:   receipts,
		AuthUC:     authUC,
		JWTSecret:  cfg.JWT.Secret,
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

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, db config.DBConfig, log *logger.Logger) storage {
	if db.Driver == "memory" {
		log.Warn().Msg("DB_DRIVER=memory: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return storage{repos: s.Repos(), tx: s, close: func() {}}
	}

	pool, err := postgres.NewPool(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	if db.AutoMigrate {
		sqlDB := postgres.OpenDB(pool)
		applied, err := migrations.Apply(ctx, sqlDB)
		if err != nil {
			log.Fatal().Err(err).Strs("scripts", applied).Msg("migraciones")
		}
		_ = sqlDB.Close()
		log.Info().Strs("scripts", applied).Msg("esquema actualizado")
	}
	return storage{
		repos:  postgres.Repos(pool),
		tx:     postgres.NewTxRunner(pool),
		pinger: pool,
		close:  pool.Close,
	}
}

// buildPrinter devuelve nil con PRINTER_MODE=none; los cupons siguen
// disponibles por GET .../cupom.
func buildPrinter(cfg *config.Config, m *metrics.Metrics, log *logger.Logger) ports.Printer {
	var next ports.Printer
	switch cfg.Printer.Mode {
	case "spooler":
		next = printer.NewSpooler(cfg.Printer.Command, cfg.Printer.Name)
	case "agent":
		next = printer.NewAgent(cfg.Printer.AgentURL, cfg.Printer.Name, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.Printer.Timeout)
	default:
		log.Info().Msg("sin impresora configurada")
		return nil
	}
	log.Info().Str("mode", cfg.Printer.Mode).Str("printer", next.Name()).Msg("impresora configurada")
	return printer.NewQueue(next, cfg.Printer.Rate, cfg.Printer.Timeout, m, log)
}
