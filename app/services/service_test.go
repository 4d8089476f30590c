package services

import (
	"context"
	"testing"
	"time"

	"github.com/shashiranjanraj/kalakriti/app/models"
	"github.com/shashiranjanraj/kalakriti/app/repositories"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database per test, with the full
// schema migrated and foreign keys enforced.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Discount{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.DownloadLog{},
	))
	return db
}

type fixture struct {
	db           *gorm.DB
	orders       *OrderService
	products     *ProductService
	discounts    *DiscountService
	entitlements *EntitlementService

	orderRepo    *repositories.OrderRepository
	productRepo  *repositories.ProductRepository
	discountRepo *repositories.DiscountRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	orderRepo := repositories.NewOrderRepository(db)
	productRepo := repositories.NewProductRepository(db)
	discountRepo := repositories.NewDiscountRepository(db)
	return &fixture{
		db:           db,
		orders:       NewOrderService(orderRepo, productRepo),
		products:     NewProductService(productRepo, discountRepo),
		discounts:    NewDiscountService(discountRepo),
		entitlements: NewEntitlementService(orderRepo, productRepo),
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		discountRepo: discountRepo,
	}
}

func (f *fixture) seedUser(t *testing.T, email string, admin bool) models.User {
	t.Helper()
	u := models.User{Name: "Test User", Email: email, Password: "x", Admin: admin}
	require.NoError(t, f.db.Create(&u).Error)
	return u
}

func (f *fixture) seedProduct(t *testing.T, price int64, discountPct int) models.Product {
	t.Helper()
	p := models.Product{
		Title:   "Asset",
		Price:   price,
		FileKey: "products/asset.zip",
	}
	if discountPct > 0 {
		d := models.Discount{Name: "Promo", Percentage: discountPct, Active: true}
		require.NoError(t, f.db.Create(&d).Error)
		p.DiscountID = &d.ID
	}
	require.NoError(t, f.db.Create(&p).Error)

	loaded, err := f.productRepo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	return loaded
}

// payOrder walks an order from pending to paid the way the webhook does.
func (f *fixture) payOrder(t *testing.T, orderID string) {
	t.Helper()
	_, err := f.orders.MarkStatus(context.Background(), orderID, models.OrderPaid)
	require.NoError(t, err)
}

func within(t *testing.T, want, got time.Time, tolerance time.Duration) {
	t.Helper()
	diff := got.Sub(want)
	if diff < 0 {
		diff = -diff
	}
	require.LessOrEqual(t, diff, tolerance)
}
