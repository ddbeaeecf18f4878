package catalog

import (
	"context"
	"testing"

	"cookbook-backend/domain"
	"cookbook-backend/entities"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCatalogService(t *testing.T) (*gorm.DB, CatalogService) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Tag{}, &entities.Ingredient{}))

	return db, NewCatalogService(NewCatalogRepository(db))
}

func seedIngredients(t *testing.T, db *gorm.DB, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, db.Create(&entities.Ingredient{Name: name, MeasurementUnit: "g"}).Error)
	}
}

func TestGetTagsSorted(t *testing.T) {
	db, service := setupCatalogService(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&entities.Tag{Name: "Dinner", Color: "#00ff00", Slug: "dinner"}).Error)
	require.NoError(t, db.Create(&entities.Tag{Name: "Breakfast", Color: "#ff0000", Slug: "breakfast"}).Error)

	tags, err := service.GetTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Breakfast", tags[0].Name)
	assert.Equal(t, "Dinner", tags[1].Name)
}

func TestGetTagDetailNotFound(t *testing.T) {
	_, service := setupCatalogService(t)

	_, err := service.GetTagDetail(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrTagNotFound)
}

func TestSearchIngredientsPrefixMatch(t *testing.T) {
	db, service := setupCatalogService(t)
	ctx := context.Background()

	seedIngredients(t, db, "Salt", "Salted butter", "Sea salt", "Flour")

	res, err := service.SearchIngredients(ctx, "sal")
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "Salt", res[0].Name)
	assert.Equal(t, "Salted butter", res[1].Name)
}

func TestSearchIngredientsEveryTermMustMatch(t *testing.T) {
	db, service := setupCatalogService(t)
	ctx := context.Background()

	seedIngredients(t, db, "Salt", "Salted butter")

	res, err := service.SearchIngredients(ctx, "sal, salt")
	require.NoError(t, err)
	require.Len(t, res, 2)

	res, err = service.SearchIngredients(ctx, "sal flour")
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestSearchIngredientsTreatsWildcardsLiterally(t *testing.T) {
	db, service := setupCatalogService(t)
	ctx := context.Background()

	seedIngredients(t, db, "Salt", "Salted butter", "100% cocoa", "sea_weed")

	// "%" and "_" in the query are characters, not patterns
	res, err := service.SearchIngredients(ctx, "sal%")
	require.NoError(t, err)
	assert.Empty(t, res)

	res, err = service.SearchIngredients(ctx, "100%")
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "100% cocoa", res[0].Name)

	res, err = service.SearchIngredients(ctx, "sea_")
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "sea_weed", res[0].Name)
}

func TestSearchIngredientsEmptyQueryReturnsAll(t *testing.T) {
	db, service := setupCatalogService(t)
	ctx := context.Background()

	seedIngredients(t, db, "Salt", "Flour")

	res, err := service.SearchIngredients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, res, 2)
}

func TestGetIngredientDetail(t *testing.T) {
	db, service := setupCatalogService(t)
	ctx := context.Background()

	ingredient := &entities.Ingredient{Name: "Salt", MeasurementUnit: "g"}
	require.NoError(t, db.Create(ingredient).Error)

	res, err := service.GetIngredientDetail(ctx, ingredient.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Salt", res.Name)
	assert.Equal(t, "g", res.MeasurementUnit)

	_, err = service.GetIngredientDetail(ctx, uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrIngredientNotFound)
}
