package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/application/usecase"
	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/memory"
)

// ─── Productos ───────────────────────────────────────────────────────────────

func TestProductUseCase_CreateYGet(t *testing.T) {
	store := memory.NewStore()
	uc := usecase.NewProductUseCase(store.Products())
	ctx := context.Background()

	out, err := uc.Create(ctx, dto.CreateProductRequest{
		SKU: " CAF-1 ", Name: "Café", Price: decimal.NewFromInt(10), TaxRate: decimal.NewFromInt(19),
	})
	require.NoError(t, err)
	assert.Equal(t, "CAF-1", out.SKU)
	assert.True(t, out.TrackInventory, "track_inventory por defecto")
	assert.True(t, out.OnHandQuantity.IsZero())

	got, err := uc.GetByID(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, "Café", got.Name)
}

func TestProductUseCase_SKUDuplicado(t *testing.T) {
	store := memory.NewStore()
	uc := usecase.NewProductUseCase(store.Products())
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "Uno"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "Dos"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestProductUseCase_Validaciones(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.NewStore().Products())
	ctx := context.Background()

	cases := map[string]dto.CreateProductRequest{
		"sin sku":         {Name: "x"},
		"precio negativo": {SKU: "a", Name: "x", Price: decimal.NewFromInt(-1)},
		"tasa > 100":      {SKU: "a", Name: "x", TaxRate: decimal.NewFromInt(101)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Create(ctx, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestProductUseCase_NoEncontrado(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.NewStore().Products())
	_, err := uc.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestProductUseCase_ListPaginado(t *testing.T) {
	store := memory.NewStore()
	uc := usecase.NewProductUseCase(store.Products())
	ctx := context.Background()
	for _, sku := range []string{"a", "b", "c"} {
		_, err := uc.Create(ctx, dto.CreateProductRequest{SKU: sku, Name: "P-" + sku})
		require.NoError(t, err)
	}

	out, err := uc.List(ctx, dto.PageRequest{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Page.Total)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "P-c", out.Items[0].Name)
}

// ─── Ubicaciones ─────────────────────────────────────────────────────────────

func TestLocationUseCase_CreateGetList(t *testing.T) {
	store := memory.NewStore()
	uc := usecase.NewLocationUseCase(store.Locations())
	ctx := context.Background()

	out, err := uc.Create(ctx, dto.CreateLocationRequest{Name: "Centro", Address: "Calle 1"})
	require.NoError(t, err)

	got, err := uc.GetByID(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, "Centro", got.Name)

	list, err := uc.List(ctx, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page.Total)
	assert.Equal(t, 20, list.Page.Limit)

	_, err = uc.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)

	_, err = uc.Create(ctx, dto.CreateLocationRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
