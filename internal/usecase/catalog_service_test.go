package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_FindByName(t *testing.T) {
	svc := NewCatalogService(testCatalog())

	tests := []struct {
		name      string
		query     string
		wantFound bool
		wantName  string
	}{
		{"exact", "Apple", true, "Apple"},
		{"lower case", "apple", true, "Apple"},
		{"upper case", "MILK", true, "Milk"},
		{"surrounding whitespace", "  mango ", true, "Mango"},
		{"multi word", "green apple", true, "Green Apple"},
		{"substring is not a match", "App", false, ""},
		{"unknown", "Banana", false, ""},
		{"empty", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product, ok := svc.FindByName(tt.query)
			assert.Equal(t, tt.wantFound, ok)
			assert.Equal(t, tt.wantName, product.Name)
		})
	}
}

func TestCatalogService_FindByName_FirstMatchWins(t *testing.T) {
	catalog := testCatalog()
	catalog.Categories[1].Products = append(catalog.Categories[1].Products,
		catalog.Categories[0].Products[0])
	catalog.Categories[1].Products[2].Category = "Dairy"

	product, ok := NewCatalogService(catalog).FindByName("apple")
	require.True(t, ok)
	assert.Equal(t, "Fruits", product.Category)
}

func TestCatalogService_SearchByKeyword(t *testing.T) {
	svc := NewCatalogService(testCatalog())

	t.Run("matches substrings in catalog order", func(t *testing.T) {
		got := svc.SearchByKeyword("APPLE")
		require.Len(t, got, 2)
		assert.Equal(t, "Apple", got[0].Name)
		assert.Equal(t, "Green Apple", got[1].Name)
	})

	t.Run("no match returns empty slice", func(t *testing.T) {
		got := svc.SearchByKeyword("durian")
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("blank keyword matches everything", func(t *testing.T) {
		assert.Len(t, svc.SearchByKeyword(" "), 5)
	})
}

func TestCatalogService_Dropdown(t *testing.T) {
	got := NewCatalogService(testCatalog()).Dropdown()

	require.Len(t, got.Categories, 2)
	assert.Equal(t, "Fruits", got.Categories[0].Category)
	assert.Equal(t, "Apple", got.Categories[0].Items[0].Name)
	assert.Equal(t, 50.0, got.Categories[0].Items[0].Price)
	assert.Equal(t, "kg", got.Categories[0].Items[0].Unit)
	assert.Equal(t, "Dairy", got.Categories[1].Category)
}

func TestCatalogService_NilCatalog(t *testing.T) {
	svc := NewCatalogService(nil)
	_, ok := svc.FindByName("Apple")
	assert.False(t, ok)
	assert.Empty(t, svc.Dropdown().Categories)
}
