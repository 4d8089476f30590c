// Package routes wires controllers onto the router. All route names are
// stable identifiers usable with router.URL for link generation.
package routes

import (
	"net/http"

	"github.com/shashiranjanraj/kalakriti/app/controllers"
	"github.com/shashiranjanraj/kalakriti/app/graph"
	"github.com/shashiranjanraj/kalakriti/app/repositories"
	"github.com/shashiranjanraj/kalakriti/app/services"
	"github.com/shashiranjanraj/kalakriti/pkg/database"
	"github.com/shashiranjanraj/kalakriti/pkg/logger"
	"github.com/shashiranjanraj/kalakriti/pkg/metrics"
	"github.com/shashiranjanraj/kalakriti/pkg/middleware"
	"github.com/shashiranjanraj/kalakriti/pkg/rbac"
	"github.com/shashiranjanraj/kalakriti/pkg/response"
	"github.com/shashiranjanraj/kalakriti/pkg/router"
	"github.com/shashiranjanraj/kalakriti/pkg/storage"
	"github.com/shashiranjanraj/kalakriti/pkg/ws"
)

// RegisterAPI mounts the full HTTP surface.
func RegisterAPI(r *router.Router, hub *ws.Hub) {
	db := database.DB
	store := storage.Default()

	userRepo := repositories.NewUserRepository(db)
	productRepo := repositories.NewProductRepository(db)
	discountRepo := repositories.NewDiscountRepository(db)
	orderRepo := repositories.NewOrderRepository(db)

	authSvc := services.NewAuthService(userRepo)
	productSvc := services.NewProductService(productRepo, discountRepo)
	discountSvc := services.NewDiscountService(discountRepo)
	orderSvc := services.NewOrderService(orderRepo, productRepo)
	entitlementSvc := services.NewEntitlementService(orderRepo, productRepo)
	downloadSvc := services.NewDownloadService(entitlementSvc, store)
	paymentSvc := services.NewPaymentService(orderSvc)

	authCtl := controllers.NewAuthController(authSvc)
	productCtl := controllers.NewProductController(productSvc)
	discountCtl := controllers.NewDiscountController(discountSvc)
	orderCtl := controllers.NewOrderController(orderSvc)
	downloadCtl := controllers.NewDownloadController(downloadSvc)
	paymentCtl := controllers.NewPaymentController(paymentSvc)

	r.HandleFunc("/metrics", metrics.Handler())
	r.Get("/health", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	})

	// Unsigned public assets resolve through a signed redirect.
	r.Get("/storage/public/*", "storage.public", downloadCtl.PublicFile)

	api := r.Group("/api")

	api.Post("/register", "auth.register", authCtl.Register)
	api.Post("/login", "auth.login", authCtl.Login)

	// Processor callbacks authenticate with a signature header.
	api.Post("/payments/webhook", "payments.webhook", paymentCtl.Webhook)

	// Public catalog reads.
	api.Get("/products", "products.list", productCtl.List)
	api.Get("/products/{id}", "products.get", productCtl.Get)

	if schema, err := graph.NewSchema(productSvc); err != nil {
		logger.Error("routes: graphql schema", "error", err)
	} else {
		api.Post("/graphql", "graphql", graph.Handler(schema))
	}

	authed := api.Group("", middleware.Auth)
	authed.Get("/profile", "auth.profile", authCtl.Profile)
	authed.Patch("/profile", "auth.profile.update", authCtl.UpdateProfile)
	authed.Post("/uploads", "uploads", downloadCtl.Upload)
	authed.Post("/orders", "orders.create", orderCtl.Create)
	authed.Get("/orders", "orders.mine", orderCtl.Mine)
	authed.Get("/orders/{id}", "orders.get", orderCtl.Get)
	authed.Post("/payments/intent", "payments.intent", paymentCtl.CreateIntent)
	authed.Get("/products/{id}/download", "products.download", downloadCtl.Link)

	admin := authed.Group("/admin")
	admin.Post("/products", "admin.products.create", productCtl.Create, rbac.Require(rbac.CapManageCatalog))
	admin.Put("/products/{id}", "admin.products.update", productCtl.Update, rbac.Require(rbac.CapManageCatalog))
	admin.Delete("/products/{id}", "admin.products.delete", productCtl.Delete, rbac.Require(rbac.CapManageCatalog))

	admin.Get("/discounts", "admin.discounts.list", discountCtl.List, rbac.Require(rbac.CapManageCatalog))
	admin.Get("/discounts/{id}", "admin.discounts.get", discountCtl.Get, rbac.Require(rbac.CapManageCatalog))
	admin.Post("/discounts", "admin.discounts.create", discountCtl.Create, rbac.Require(rbac.CapManageCatalog))
	admin.Put("/discounts/{id}", "admin.discounts.update", discountCtl.Update, rbac.Require(rbac.CapManageCatalog))
	admin.Delete("/discounts/{id}", "admin.discounts.delete", discountCtl.Delete, rbac.Require(rbac.CapManageCatalog))

	admin.Get("/orders", "admin.orders.list", orderCtl.All, rbac.Require(rbac.CapViewAllOrders))
	admin.Patch("/orders/{id}/status", "admin.orders.status", orderCtl.MarkStatus, rbac.Require(rbac.CapViewAllOrders))

	// Live order event stream for dashboards.
	admin.Get("/events", "admin.events", hub.Upgrade, rbac.Require(rbac.CapViewAllOrders))
}
