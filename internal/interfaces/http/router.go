package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-pos/internal/application/accounts"
	"github.com/jhoicas/farmacia-pos/internal/application/auth"
	"github.com/jhoicas/farmacia-pos/internal/application/receipt"
	"github.com/jhoicas/farmacia-pos/internal/application/sales"
	"github.com/jhoicas/farmacia-pos/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ClientUC   *usecase.ClientUseCase
	EmployeeUC *usecase.EmployeeUseCase
	ProductUC  *usecase.ProductUseCase
	MovementUC *usecase.MovementUseCase
	DBConfigUC *usecase.DBConfigUseCase
	Sales      *sales.Service
	Accounts   *accounts.Service
	Receipts   *receipt.Service
	AuthUC     *auth.AuthUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (Bearer Token cuando JWT_SECRET está configurado)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	clients := protected.Group("/clientes")
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Get("/", clientHandler.List)
	clients.Post("/", clientHandler.Create)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Put("/:id", clientHandler.Update)
	clients.Delete("/:id", clientHandler.Delete)
	clients.Post("/:id/restore", clientHandler.Restore)

	products := protected.Group("/produtos")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Post("/", productHandler.Create)
	products.Get("/barcode/:barcode", productHandler.GetByBarcode)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)
	products.Post("/:id/restore", productHandler.Restore)

	employees := protected.Group("/funcionarios")
	employeeHandler := NewEmployeeHandler(deps.EmployeeUC)
	employees.Get("/", employeeHandler.List)
	employees.Post("/", employeeHandler.Create)
	employees.Get("/:id", employeeHandler.GetByID)
	employees.Put("/:id", employeeHandler.Update)
	employees.Delete("/:id", employeeHandler.Delete)
	employees.Post("/:id/restore", employeeHandler.Restore)

	movements := protected.Group("/movimentos")
	movementHandler := NewMovementHandler(deps.MovementUC)
	movements.Get("/", movementHandler.List)
	movements.Get("/:id", movementHandler.GetByID)
	movements.Put("/:id", movementHandler.Update)
	movements.Delete("/:id", movementHandler.Delete)

	vendas := protected.Group("/vendas")
	saleHandler := NewSaleHandler(deps.Sales, deps.Receipts)
	vendas.Get("/", saleHandler.List)
	vendas.Post("/", saleHandler.Register)
	vendas.Get("/:code", saleHandler.Get)
	vendas.Get("/:code/cupom", saleHandler.Receipt)
	vendas.Get("/:code/cupom.pdf", saleHandler.ReceiptPDF)
	vendas.Post("/:code/imprimir", saleHandler.Print)

	contas := protected.Group("/contas")
	accountHandler := NewAccountHandler(deps.Accounts, deps.Receipts)
	contas.Get("/", accountHandler.Balances)
	contas.Post("/pagar", accountHandler.Settle)
	contas.Post("/estornar", accountHandler.Reopen)
	contas.Get("/:clientId", accountHandler.Account)
	contas.Get("/:clientId/cupom", accountHandler.Receipt)
	contas.Get("/:clientId/cupom.pdf", accountHandler.ReceiptPDF)

	dbConfig := protected.Group("/config/db")
	dbConfigHandler := NewDBConfigHandler(deps.DBConfigUC)
	dbConfig.Get("/", dbConfigHandler.Get)
	dbConfig.Put("/", dbConfigHandler.Save)
	dbConfig.Post("/test", dbConfigHandler.Test)
}
