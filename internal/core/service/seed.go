package service

import "github.com/shopspring/decimal"

// SeedDemo loads the starter catalog and customers of the store.
func SeedDemo(s *StoreService) {
	for _, item := range []NewItem{
		{Name: "T-Shirt", Category: "Top", Size: "M", Color: "Blue", Price: decimal.RequireFromString("599.99"), Stock: 50},
		{Name: "Jeans", Category: "Bottom", Size: "32", Color: "Denim", Price: decimal.RequireFromString("1299.00"), Stock: 30},
		{Name: "Dress", Category: "Outfit", Size: "S", Color: "Red", Price: decimal.RequireFromString("1999.50"), Stock: 20},
		{Name: "Shirt", Category: "Top", Size: "L", Color: "White", Price: decimal.RequireFromString("799.00"), Stock: 40},
	} {
		s.AddItem(item)
	}

	s.AddCustomer("Alice Smith", "9876543210")
	s.AddCustomer("Bob Johnson", "8765432109")
}
