package catalog

import (
	"time"

	"lensstore/internal/model"

	"github.com/shopspring/decimal"
)

type variantSeed struct {
	sph   string
	price string
	stock int
}

// DefaultProducts returns the built-in catalogue used when no store or seed
// file is configured.
func DefaultProducts() []model.Product {
	created := time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)

	return []model.Product{
		lens(model.Product{
			ID:                  "acuvue-oasys-1day-90",
			Name:                "ACUVUE OASYS 1-Day (90)",
			Brand:               "Johnson & Johnson",
			Category:            model.CategoryDaily,
			ShortDescription:    "Conforto o dia todo. Lente diária premium para rotina intensa.",
			Description:         "Lente diária de silicone hidrogel. Selecione o grau (SPH) para ver preço e estoque.",
			Image:               "/file.svg",
			PackSize:            90,
			WearPeriod:          "daily",
			BaseCurve:           strPtr("8.5"),
			Diameter:            strPtr("14.3"),
			UVBlocking:          boolPtr(true),
			WaterContentPercent: intPtr(38),
			CreatedAt:           created,
		}, "ao-090", "AO1D90", []variantSeed{
			{"-0.50", "219.90", 18},
			{"-1.00", "219.90", 12},
			{"-1.25", "219.90", 6},
			{"-2.00", "219.90", 2},
			{"-3.00", "219.90", 0},
		}),
		lens(model.Product{
			ID:                  "dailies-total1-90",
			Name:                "DAILIES TOTAL1 (90)",
			Brand:               "Alcon",
			Category:            model.CategoryDaily,
			ShortDescription:    "Lente diária premium com conforto e visão nítida.",
			Description:         "Lente diária com gradiente de água. Grau, estoque e preço variam por SPH.",
			Image:               "/globe.svg",
			PackSize:            90,
			WearPeriod:          "daily",
			BaseCurve:           strPtr("8.5"),
			Diameter:            strPtr("14.1"),
			WaterContentPercent: intPtr(33),
			UVBlocking:          boolPtr(false),
			CreatedAt:           created,
		}, "dt1-090", "DT1-90", []variantSeed{
			{"-0.25", "239.90", 14},
			{"-0.75", "239.90", 9},
			{"-1.50", "239.90", 5},
			{"-2.25", "239.90", 3},
			{"-4.00", "249.90", 1},
		}),
		lens(model.Product{
			ID:               "air-optix-plus-hydraglyde-6",
			Name:             "AIR OPTIX plus HydraGlyde (6)",
			Brand:            "Alcon",
			Category:         model.CategoryMonthly,
			ShortDescription: "Lente mensal. Ótima para rotina de limpeza e manutenção.",
			Description:      "Lente mensal de silicone hidrogel, indicada para recompra recorrente.",
			Image:            "/window.svg",
			PackSize:         6,
			WearPeriod:       "monthly",
			BaseCurve:        strPtr("8.6"),
			Diameter:         strPtr("14.2"),
			UVBlocking:       boolPtr(false),
			CreatedAt:        created,
		}, "aop-006", "AOP6", []variantSeed{
			{"-0.50", "129.90", 22},
			{"-1.00", "129.90", 17},
			{"-1.75", "129.90", 8},
			{"-2.50", "129.90", 4},
			{"-6.00", "139.90", 2},
		}),
		lens(model.Product{
			ID:               "biofinity-6",
			Name:             "Biofinity (6)",
			Brand:            "CooperVision",
			Category:         model.CategoryMonthly,
			ShortDescription: "Lente mensal com ótimo custo-benefício e conforto natural.",
			Description:      "Lente mensal. Toric (CYL/AXIS) e multifocal (ADD) ficam para variantes futuras.",
			Image:            "/next.svg",
			PackSize:         6,
			WearPeriod:       "monthly",
			BaseCurve:        strPtr("8.6"),
			Diameter:         strPtr("14.0"),
			CreatedAt:        created,
		}, "bio-006", "BIO6", []variantSeed{
			{"-0.25", "119.90", 15},
			{"-0.75", "119.90", 11},
			{"-1.25", "119.90", 7},
			{"-2.00", "119.90", 4},
			{"-5.50", "129.90", 1},
		}),
	}
}

// lens attaches variants named <idPrefix>-<sph> with SKU <skuPrefix>-<sph>.
func lens(p model.Product, idPrefix, skuPrefix string, seeds []variantSeed) model.Product {
	p.Active = true
	p.Variants = make([]model.ProductVariant, len(seeds))
	for i, s := range seeds {
		p.Variants[i] = model.ProductVariant{
			ID:        idPrefix + "-" + s.sph,
			ProductID: p.ID,
			SKU:       skuPrefix + "-" + s.sph,
			Sph:       s.sph,
			Price:     decimal.RequireFromString(s.price),
			Stock:     s.stock,
			Active:    true,
		}
	}
	return p
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }
