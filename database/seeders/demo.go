package seeders

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/kalakriti/app/models"
	"github.com/shashiranjanraj/kalakriti/pkg/auth"
)

func init() {
	Register("admin-user", SeedAdminUser)
	Register("catalog", SeedCatalog)
}

// SeedAdminUser creates the initial admin account if it does not exist.
// Change the password immediately in any real deployment.
func SeedAdminUser(db *gorm.DB) error {
	hash, err := auth.HashPassword("admin12345")
	if err != nil {
		return err
	}
	admin := models.User{
		Name:     "Admin",
		Email:    "admin@kalakriti.local",
		Password: hash,
		Admin:    true,
	}
	return db.Where(models.User{Email: admin.Email}).FirstOrCreate(&admin).Error
}

// SeedCatalog inserts a launch discount and a couple of demo assets.
func SeedCatalog(db *gorm.DB) error {
	launch := models.Discount{Name: "Launch Sale", Percentage: 20, Active: true}
	if err := db.Where(models.Discount{Name: launch.Name}).FirstOrCreate(&launch).Error; err != nil {
		return err
	}

	products := []models.Product{
		{
			Title:       "Low-Poly Temple Kit",
			Description: "Modular temple pieces, game-ready, 4K textures included.",
			Price:       4500,
			Category:    "environments",
			FileKey:     "products/seed-temple-kit.zip",
			PreviewKeys: models.StringList{"public/previews/temple-1.jpg", "public/previews/temple-2.jpg"},
			DiscountID:  &launch.ID,
		},
		{
			Title:       "Rigged Elephant",
			Description: "Fully rigged and animated elephant, glTF and Blender source.",
			Price:       9900,
			Category:    "characters",
			FileKey:     "products/seed-elephant.glb",
			PreviewKeys: models.StringList{"public/previews/elephant.jpg"},
		},
	}
	for i := range products {
		if err := db.Where(models.Product{Title: products[i].Title}).FirstOrCreate(&products[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
