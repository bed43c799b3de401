package domain

import (
	"bytes"
	"encoding/json"
)

// Product is a purchasable catalog entry. Names are unique case-insensitively.
type Product struct {
	Name     string  `json:"name"`
	Category string  `json:"category,omitempty"`
	Price    float64 `json:"price"`
	Unit     string  `json:"unit"`
}

// Category groups products under a category name, in catalog order
type Category struct {
	Name     string
	Products []Product
}

// Catalog is the static product list grouped by category.
// Category order and product order follow the source file.
type Catalog struct {
	Categories []Category
}

// MarshalJSON renders the catalog as an object keyed by category, keeping file order
func (c *Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, category := range c.Categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(category.Name)
		if err != nil {
			return nil, err
		}
		products := category.Products
		if products == nil {
			products = []Product{}
		}
		value, err := json.Marshal(products)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Size returns the total number of products across all categories
func (c *Catalog) Size() int {
	n := 0
	for _, category := range c.Categories {
		n += len(category.Products)
	}
	return n
}

// DropdownItem is the trimmed product shape used by UI dropdowns
type DropdownItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Unit  string  `json:"unit"`
}

// DropdownCategory is one category block of the dropdown listing
type DropdownCategory struct {
	Category string         `json:"category"`
	Items    []DropdownItem `json:"items"`
}

// DropdownCatalog is the catalog re-grouped for UI dropdowns
type DropdownCatalog struct {
	Categories []DropdownCategory `json:"categories"`
}
