package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"github.com/aurelia-atelier/aurelia-backend/config"
	"github.com/aurelia-atelier/aurelia-backend/internal/app/model"
	"github.com/aurelia-atelier/aurelia-backend/internal/app/repository"
	"github.com/aurelia-atelier/aurelia-backend/internal/db"
)

var (
	materials = []string{"Gold", "Rose Gold", "White Gold", "Silver", "Platinum"}
	stones    = []string{"Diamond", "Sapphire", "Emerald", "Pearl", "Opal", "Ruby", "Topaz"}
	styles    = map[model.ProductCategory][]string{
		model.CategoryRings:     {"Solitaire Ring", "Eternity Band", "Signet Ring", "Halo Ring"},
		model.CategoryNecklaces: {"Pendant Necklace", "Choker", "Chain Necklace", "Locket"},
		model.CategoryEarrings:  {"Stud Earrings", "Hoop Earrings", "Drop Earrings"},
		model.CategoryBracelets: {"Tennis Bracelet", "Bangle", "Charm Bracelet", "Cuff"},
	}
)

func main() {
	count := flag.Int("count", 40, "number of products to seed")
	seed := flag.Uint64("seed", 0, "random seed (0 = random)")
	flag.Parse()

	if *seed != 0 {
		gofakeit.Seed(*seed)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	productRepo := repository.NewProductRepository(db.GetDB())

	created := 0
	for i := 0; i < *count; i++ {
		product := makeProduct(i)
		if err := productRepo.Create(product); err != nil {
			log.Printf("Skipping %q: %v", product.Name, err)
			continue
		}
		created++
	}

	fmt.Printf("Seeded %d products\n", created)
}

func makeProduct(n int) *model.Product {
	category := gofakeit.RandomString([]string{
		string(model.CategoryRings),
		string(model.CategoryNecklaces),
		string(model.CategoryEarrings),
		string(model.CategoryBracelets),
	})
	cat := model.ProductCategory(category)

	material := gofakeit.RandomString(materials)
	stone := gofakeit.RandomString(stones)
	style := gofakeit.RandomString(styles[cat])
	name := fmt.Sprintf("%s %s %s", material, stone, style)

	// Slugs must be unique; the counter keeps collisions out of repeated runs.
	slug := fmt.Sprintf("%s-%d", strings.ReplaceAll(strings.ToLower(name), " ", "-"), n+1)

	price := decimal.NewFromInt(int64(gofakeit.Number(8, 320) * 10))

	product := &model.Product{
		Name:           name,
		Slug:           slug,
		Description:    gofakeit.Paragraph(1, 3, 12, " "),
		Price:          price,
		Category:       cat,
		SKU:            fmt.Sprintf("AUR-%s-%04d", strings.ToUpper(category[:3]), n+1),
		StockQuantity:  gofakeit.Number(0, 25),
		TrackInventory: gofakeit.Number(0, 9) > 1,
		AllowBackorder: gofakeit.Bool() && gofakeit.Bool(),
	}

	// Roughly a third of the catalog is on sale.
	if gofakeit.Number(0, 2) == 0 {
		sale := price.Mul(decimal.NewFromFloat(gofakeit.Float64Range(0.6, 0.9))).Round(2)
		product.SalePrice = &sale
	}

	for pos := 0; pos < gofakeit.Number(1, 4); pos++ {
		product.Images = append(product.Images, model.ProductImage{
			URL:      fmt.Sprintf("https://cdn.aurelia-atelier.test/products/%s-%d.jpg", slug, pos+1),
			Position: pos,
		})
	}

	product.Variants = variantsFor(cat)

	return product
}

func variantsFor(cat model.ProductCategory) []model.ProductVariant {
	var variants []model.ProductVariant

	switch cat {
	case model.CategoryRings:
		for _, size := range []string{"5", "6", "7", "8", "9"} {
			variants = append(variants, model.ProductVariant{
				Name:            "Ring Size",
				Value:           size,
				PriceAdjustment: decimal.Zero,
			})
		}
	case model.CategoryNecklaces:
		for value, adj := range map[string]int64{"40cm": 0, "45cm": 0, "50cm": 15} {
			variants = append(variants, model.ProductVariant{
				Name:            "Chain Length",
				Value:           value,
				PriceAdjustment: decimal.NewFromInt(adj),
			})
		}
	case model.CategoryBracelets:
		for value, adj := range map[string]int64{"S": 0, "M": 0, "L": 10} {
			variants = append(variants, model.ProductVariant{
				Name:            "Wrist Size",
				Value:           value,
				PriceAdjustment: decimal.NewFromInt(adj),
			})
		}
	}

	return variants
}
