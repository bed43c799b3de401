package usecase

import (
	"context"
	"strings"

	"github.com/cartwise/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// CartService derives the priced cart summary from the cart and catalog
type CartService struct {
	carts   domain.CartRepository
	catalog *CatalogService
}

// NewCartService creates a cart service
func NewCartService(carts domain.CartRepository, catalog *CatalogService) *CartService {
	return &CartService{carts: carts, catalog: catalog}
}

// Summary computes quantities, subtotals and the total from the current cart.
// It is recomputed on every call.
func (s *CartService) Summary(ctx context.Context) (domain.CartSummary, error) {
	lines, err := s.carts.Read(ctx)
	if err != nil {
		return domain.CartSummary{}, err
	}

	var order []string
	counts := make(map[string]int)
	for _, line := range lines {
		name := strings.TrimSpace(line.Name)
		if name == "" {
			continue
		}
		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}
		counts[name]++
	}

	summary := domain.CartSummary{Items: make([]domain.CartSummaryItem, 0, len(order))}
	total := decimal.Zero
	for _, name := range order {
		qty := counts[name]
		price := decimal.Zero
		unit := ""
		if product, ok := s.catalog.FindByName(name); ok {
			price = decimal.NewFromFloat(product.Price)
			unit = product.Unit
		}
		subtotal := price.Mul(decimal.NewFromInt(int64(qty)))
		total = total.Add(subtotal)

		summary.Items = append(summary.Items, domain.CartSummaryItem{
			Name:     name,
			Unit:     unit,
			Price:    price.InexactFloat64(),
			Quantity: qty,
			Subtotal: subtotal.InexactFloat64(),
		})
	}
	summary.Total = total.InexactFloat64()

	return summary, nil
}
