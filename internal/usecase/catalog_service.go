package usecase

import (
	"strings"

	"github.com/cartwise/backend/internal/domain"
)

// CatalogService answers read-only lookups over the loaded catalog
type CatalogService struct {
	catalog *domain.Catalog
}

// NewCatalogService wraps an already loaded catalog
func NewCatalogService(catalog *domain.Catalog) *CatalogService {
	if catalog == nil {
		catalog = &domain.Catalog{}
	}
	return &CatalogService{catalog: catalog}
}

// AllProducts returns the catalog grouped by category
func (s *CatalogService) AllProducts() *domain.Catalog {
	return s.catalog
}

// FindByName does a case-insensitive exact match on the trimmed name.
// The first match in catalog order wins.
func (s *CatalogService) FindByName(name string) (domain.Product, bool) {
	name = strings.TrimSpace(name)
	for _, category := range s.catalog.Categories {
		for _, product := range category.Products {
			if strings.EqualFold(product.Name, name) {
				return product, true
			}
		}
	}
	return domain.Product{}, false
}

// SearchByKeyword returns products whose name contains keyword, ignoring
// case, in catalog order.
func (s *CatalogService) SearchByKeyword(keyword string) []domain.Product {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	matches := []domain.Product{}
	for _, category := range s.catalog.Categories {
		for _, product := range category.Products {
			if strings.Contains(strings.ToLower(product.Name), keyword) {
				matches = append(matches, product)
			}
		}
	}
	return matches
}

// Dropdown re-groups the catalog for UI dropdowns
func (s *CatalogService) Dropdown() domain.DropdownCatalog {
	out := domain.DropdownCatalog{Categories: make([]domain.DropdownCategory, 0, len(s.catalog.Categories))}
	for _, category := range s.catalog.Categories {
		items := make([]domain.DropdownItem, 0, len(category.Products))
		for _, p := range category.Products {
			items = append(items, domain.DropdownItem{Name: p.Name, Price: p.Price, Unit: p.Unit})
		}
		out.Categories = append(out.Categories, domain.DropdownCategory{Category: category.Name, Items: items})
	}
	return out
}
