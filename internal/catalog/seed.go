package catalog

import (
	"github.com/shopspring/decimal"

	"vintagepos/backend/internal/domain"
)

// DefaultProducts is the starter catalog loaded when nothing is stored yet.
func DefaultProducts() []domain.Product {
	rows := []struct {
		id        int
		design    string
		code      string
		retail    string
		wholesale string
		category  string
		seed      string
		count     int
	}{
		{1, "Classic White T-Shirt", "TS-CW", "15.99", "7.50", "Apparel", "tshirt", 100},
		{2, "Denim Jeans", "JN-DN", "49.99", "22.00", "Apparel", "jeans", 50},
		{3, "Leather Wallet", "AC-LW", "25.00", "11.25", "Accessories", "wallet", 75},
		{4, "Canvas Backpack", "AC-CB", "39.95", "18.00", "Accessories", "backpack", 40},
		{5, "Running Sneakers", "FW-RS", "79.50", "35.00", "Footwear", "sneakers", 60},
		{6, "Black Coffee Mug", "HW-CM", "8.99", "3.50", "Homeware", "mug", 120},
		{7, "Designer Sunglasses", "AC-DS", "120.00", "55.00", "Accessories", "glasses", 25},
		{8, "Wireless Headphones", "EL-WH", "99.99", "48.75", "Electronics", "headphones", 30},
		{9, "Hardcover Notebook", "ST-HN", "12.49", "5.00", "Stationery", "notebook", 150},
	}
	products := make([]domain.Product, 0, len(rows))
	for _, r := range rows {
		products = append(products, domain.Product{
			ID:             r.id,
			Design:         r.design,
			WholesaleID:    "W-" + r.code,
			RetailID:       "R-" + r.code,
			RetailPrice:    decimal.RequireFromString(r.retail),
			WholesalePrice: decimal.RequireFromString(r.wholesale),
			Category:       r.category,
			ImageURL:       "https://picsum.photos/seed/" + r.seed + "/400/300",
			Count:          r.count,
		})
	}
	return products
}
