package entity

import "time"

// Product groups sellable variants under one catalog entry.
// Prices and stock live on the Variant; the product only carries descriptive data.
type Product struct {
	ID          string
	Name        string
	Description string
	Category    string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
