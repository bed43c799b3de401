// Package catalogfile loads the static product catalog from a JSON file
// mapping category names to arrays of products.
package catalogfile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cartwise/backend/internal/domain"
	"github.com/tidwall/gjson"
)

// Load reads the catalog at path. Category order and product order follow
// the file, which encoding/json maps would lose.
func Load(path string) (*domain.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogLoad, err)
	}
	return Parse(data)
}

// Parse decodes catalog JSON. The top level must be an object whose values
// are arrays of product objects.
func Parse(data []byte) (*domain.Catalog, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", domain.ErrCatalogLoad)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level must be an object of categories", domain.ErrCatalogLoad)
	}

	catalog := &domain.Catalog{}
	var parseErr error
	root.ForEach(func(key, value gjson.Result) bool {
		if !value.IsArray() {
			parseErr = fmt.Errorf("%w: category %q is not an array", domain.ErrCatalogLoad, key.String())
			return false
		}

		category := domain.Category{Name: key.String()}
		for _, raw := range value.Array() {
			var product domain.Product
			if err := json.Unmarshal([]byte(raw.Raw), &product); err != nil {
				parseErr = fmt.Errorf("%w: category %q: %v", domain.ErrCatalogLoad, key.String(), err)
				return false
			}
			if product.Name == "" {
				parseErr = fmt.Errorf("%w: category %q has a product without a name", domain.ErrCatalogLoad, key.String())
				return false
			}
			product.Category = category.Name
			category.Products = append(category.Products, product)
		}
		catalog.Categories = append(catalog.Categories, category)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return catalog, nil
}
