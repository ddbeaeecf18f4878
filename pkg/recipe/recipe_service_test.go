package recipe

import (
	"context"
	"fmt"
	"testing"

	"cookbook-backend/domain"
	"cookbook-backend/entities"
	"cookbook-backend/pkg/catalog"
	"cookbook-backend/pkg/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stubStorage struct{}

func (s *stubStorage) UploadBase64Image(ctx context.Context, key string, dataURI string) (string, error) {
	return "https://cdn.test/" + key, nil
}

type testEnv struct {
	db      *gorm.DB
	service RecipeService

	author  *entities.User
	visitor *entities.User

	breakfast *entities.Tag
	dinner    *entities.Tag

	saltGrams *entities.Ingredient
	saltPinch *entities.Ingredient
	flour     *entities.Ingredient
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&entities.User{},
		&entities.Subscription{},
		&entities.Tag{},
		&entities.Ingredient{},
		&entities.Recipe{},
		&entities.IngredientLine{},
		&entities.Favorite{},
		&entities.CartItem{},
	))
	return db
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)

	env := &testEnv{
		db:        db,
		author:    &entities.User{Email: "chef@example.com", Username: "chef", FirstName: "Ada", LastName: "Cook"},
		visitor:   &entities.User{Email: "guest@example.com", Username: "guest", FirstName: "Bo", LastName: "Diner"},
		breakfast: &entities.Tag{Name: "Breakfast", Color: "#ff0000", Slug: "breakfast"},
		dinner:    &entities.Tag{Name: "Dinner", Color: "#00ff00", Slug: "dinner"},
		saltGrams: &entities.Ingredient{Name: "Salt", MeasurementUnit: "g"},
		saltPinch: &entities.Ingredient{Name: "Salt", MeasurementUnit: "pinch"},
		flour:     &entities.Ingredient{Name: "Flour", MeasurementUnit: "g"},
	}
	require.NoError(t, db.Create(env.author).Error)
	require.NoError(t, db.Create(env.visitor).Error)
	require.NoError(t, db.Create(env.breakfast).Error)
	require.NoError(t, db.Create(env.dinner).Error)
	require.NoError(t, db.Create(env.saltGrams).Error)
	require.NoError(t, db.Create(env.saltPinch).Error)
	require.NoError(t, db.Create(env.flour).Error)

	recipeRepository := NewRecipeRepository(db)
	catalogRepository := catalog.NewCatalogRepository(db)
	userRepository := user.NewUserRepository(db)
	env.service = NewRecipeService(recipeRepository, catalogRepository, userRepository, &stubStorage{})
	return env
}

func saveRequest(env *testEnv, name string) domain.SaveRecipeRequest {
	return domain.SaveRecipeRequest{
		Ingredients: []domain.IngredientAmountRequest{
			{ID: env.saltGrams.ID.String(), Amount: 5},
		},
		Tags:        []string{env.breakfast.ID.String()},
		Name:        name,
		Text:        "mix and serve",
		CookingTime: 10,
	}
}

func TestCreateRecipePersistsTagsAndLines(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	req := saveRequest(env, "Porridge")
	req.Ingredients = append(req.Ingredients, domain.IngredientAmountRequest{ID: env.flour.ID.String(), Amount: 200})
	req.Tags = append(req.Tags, env.dinner.ID.String())

	res, err := env.service.CreateRecipe(ctx, req, env.author.ID.String())
	require.NoError(t, err)

	assert.Equal(t, "Porridge", res.Name)
	assert.Len(t, res.Tags, 2)
	assert.Len(t, res.Ingredients, 2)
	assert.Equal(t, env.author.ID.String(), res.Author.ID)
	assert.False(t, res.IsFavorited)
	assert.False(t, res.IsInShoppingCart)

	var lineCount int64
	require.NoError(t, env.db.Model(&entities.IngredientLine{}).Count(&lineCount).Error)
	assert.EqualValues(t, 2, lineCount)
}

func TestCreateRecipeCollectsAllFieldErrors(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	req := domain.SaveRecipeRequest{
		Ingredients: []domain.IngredientAmountRequest{
			{ID: env.saltGrams.ID.String(), Amount: 0},
			{ID: env.saltGrams.ID.String(), Amount: 3},
		},
		Tags:        []string{},
		Name:        "Bad dish",
		Text:        "nope",
		CookingTime: 0,
	}

	_, err := env.service.CreateRecipe(ctx, req, env.author.ID.String())
	require.Error(t, err)

	vErrs, ok := domain.AsValidationErrors(err)
	require.True(t, ok)
	assert.Contains(t, vErrs.Fields, "cooking_time")
	assert.Contains(t, vErrs.Fields, "tags")
	assert.Contains(t, vErrs.Fields, "ingredients")

	var recipeCount int64
	require.NoError(t, env.db.Model(&entities.Recipe{}).Count(&recipeCount).Error)
	assert.Zero(t, recipeCount)
}

func TestCreateRecipeRejectsDuplicateName(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, err := env.service.CreateRecipe(ctx, saveRequest(env, "Porridge"), env.author.ID.String())
	require.NoError(t, err)

	_, err = env.service.CreateRecipe(ctx, saveRequest(env, "Porridge"), env.visitor.ID.String())
	require.Error(t, err)

	vErrs, ok := domain.AsValidationErrors(err)
	require.True(t, ok)
	assert.Contains(t, vErrs.Fields, "name")
}

func TestCreateRecipeRejectsUnknownReferences(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	req := saveRequest(env, "Mystery")
	req.Tags = []string{uuid.New().String()}
	req.Ingredients = []domain.IngredientAmountRequest{{ID: uuid.New().String(), Amount: 2}}

	_, err := env.service.CreateRecipe(ctx, req, env.author.ID.String())
	require.Error(t, err)

	vErrs, ok := domain.AsValidationErrors(err)
	require.True(t, ok)
	assert.Contains(t, vErrs.Fields, "tags")
	assert.Contains(t, vErrs.Fields, "ingredients")
}

func TestUpdateRecipeReplacesIngredientLines(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	created, err := env.service.CreateRecipe(ctx, saveRequest(env, "Porridge"), env.author.ID.String())
	require.NoError(t, err)

	update := saveRequest(env, "Porridge deluxe")
	update.Ingredients = []domain.IngredientAmountRequest{
		{ID: env.flour.ID.String(), Amount: 300},
	}
	update.Tags = []string{env.dinner.ID.String()}

	res, err := env.service.UpdateRecipe(ctx, created.ID, update, env.author.ID.String())
	require.NoError(t, err)

	assert.Equal(t, "Porridge deluxe", res.Name)
	require.Len(t, res.Ingredients, 1)
	assert.Equal(t, "Flour", res.Ingredients[0].Name)
	assert.Equal(t, 300, res.Ingredients[0].Amount)
	require.Len(t, res.Tags, 1)
	assert.Equal(t, "dinner", res.Tags[0].Slug)

	// the old lines are gone, not orphaned
	var lineCount int64
	require.NoError(t, env.db.Model(&entities.IngredientLine{}).Count(&lineCount).Error)
	assert.EqualValues(t, 1, lineCount)
}

func TestUpdateRecipeOnlyByAuthor(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	created, err := env.service.CreateRecipe(ctx, saveRequest(env, "Porridge"), env.author.ID.String())
	require.NoError(t, err)

	_, err = env.service.UpdateRecipe(ctx, created.ID, saveRequest(env, "Stolen"), env.visitor.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotRecipeAuthor)

	err = env.service.DeleteRecipe(ctx, created.ID, env.visitor.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotRecipeAuthor)
}

func TestDeleteRecipeCascades(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	created, err := env.service.CreateRecipe(ctx, saveRequest(env, "Porridge"), env.author.ID.String())
	require.NoError(t, err)

	_, err = env.service.AddFavorite(ctx, created.ID, env.visitor.ID.String())
	require.NoError(t, err)
	_, err = env.service.AddToCart(ctx, created.ID, env.visitor.ID.String())
	require.NoError(t, err)

	require.NoError(t, env.service.DeleteRecipe(ctx, created.ID, env.author.ID.String()))

	for _, model := range []any{&entities.Recipe{}, &entities.IngredientLine{}, &entities.Favorite{}, &entities.CartItem{}} {
		var count int64
		require.NoError(t, env.db.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}

	err = env.service.DeleteRecipe(ctx, created.ID, env.author.ID.String())
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestFavoriteMembershipConflicts(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	created, err := env.service.CreateRecipe(ctx, saveRequest(env, "Porridge"), env.author.ID.String())
	require.NoError(t, err)

	compact, err := env.service.AddFavorite(ctx, created.ID, env.visitor.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, compact.ID)
	assert.Equal(t, "Porridge", compact.Name)

	_, err = env.service.AddFavorite(ctx, created.ID, env.visitor.ID.String())
	assert.ErrorIs(t, err, domain.ErrAlreadyFavorited)

	require.NoError(t, env.service.RemoveFavorite(ctx, created.ID, env.visitor.ID.String()))
	err = env.service.RemoveFavorite(ctx, created.ID, env.visitor.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotInFavorites)
}

func TestCartMembershipConflicts(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	created, err := env.service.CreateRecipe(ctx, saveRequest(env, "Porridge"), env.author.ID.String())
	require.NoError(t, err)

	_, err = env.service.AddToCart(ctx, created.ID, env.visitor.ID.String())
	require.NoError(t, err)
	_, err = env.service.AddToCart(ctx, created.ID, env.visitor.ID.String())
	assert.ErrorIs(t, err, domain.ErrAlreadyInCart)

	require.NoError(t, env.service.RemoveFromCart(ctx, created.ID, env.visitor.ID.String()))
	err = env.service.RemoveFromCart(ctx, created.ID, env.visitor.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotInCart)
}

func TestMembershipOnMissingRecipe(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, err := env.service.AddFavorite(ctx, uuid.New().String(), env.visitor.ID.String())
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)

	_, err = env.service.AddToCart(ctx, uuid.New().String(), env.visitor.ID.String())
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestGetRecipesAnnotatesPerRequester(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	created, err := env.service.CreateRecipe(ctx, saveRequest(env, "Porridge"), env.author.ID.String())
	require.NoError(t, err)
	_, err = env.service.AddFavorite(ctx, created.ID, env.visitor.ID.String())
	require.NoError(t, err)

	// anonymous: every flag is false
	anonymous, _, err := env.service.GetRecipes(ctx, "", domain.RecipeFilterRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, anonymous, 1)
	assert.False(t, anonymous[0].IsFavorited)

	// the visitor sees their own favorite
	visitorView, _, err := env.service.GetRecipes(ctx, env.visitor.ID.String(), domain.RecipeFilterRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, visitorView, 1)
	assert.True(t, visitorView[0].IsFavorited)
	assert.False(t, visitorView[0].IsInShoppingCart)

	// the author did not favorite anything
	authorView, _, err := env.service.GetRecipes(ctx, env.author.ID.String(), domain.RecipeFilterRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, authorView, 1)
	assert.False(t, authorView[0].IsFavorited)
}

func TestGetRecipesTagFilterIsUnionWithoutDuplicates(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	both := saveRequest(env, "Both tags")
	both.Tags = []string{env.breakfast.ID.String(), env.dinner.ID.String()}
	_, err := env.service.CreateRecipe(ctx, both, env.author.ID.String())
	require.NoError(t, err)

	dinnerOnly := saveRequest(env, "Dinner only")
	dinnerOnly.Tags = []string{env.dinner.ID.String()}
	_, err = env.service.CreateRecipe(ctx, dinnerOnly, env.author.ID.String())
	require.NoError(t, err)

	res, count, err := env.service.GetRecipes(ctx, "", domain.RecipeFilterRequest{
		TagSlugs: []string{"breakfast", "dinner"},
		Page:     1,
		Limit:    10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	assert.Len(t, res, 2)

	res, count, err = env.service.GetRecipes(ctx, "", domain.RecipeFilterRequest{
		TagSlugs: []string{"breakfast"},
		Page:     1,
		Limit:    10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	require.Len(t, res, 1)
	assert.Equal(t, "Both tags", res[0].Name)
}

func TestGetRecipesFavoritedAndCartFilters(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	first, err := env.service.CreateRecipe(ctx, saveRequest(env, "First"), env.author.ID.String())
	require.NoError(t, err)
	second := saveRequest(env, "Second")
	second.Ingredients = []domain.IngredientAmountRequest{{ID: env.flour.ID.String(), Amount: 100}}
	_, err = env.service.CreateRecipe(ctx, second, env.author.ID.String())
	require.NoError(t, err)

	_, err = env.service.AddFavorite(ctx, first.ID, env.visitor.ID.String())
	require.NoError(t, err)

	res, count, err := env.service.GetRecipes(ctx, env.visitor.ID.String(), domain.RecipeFilterRequest{
		IsFavorited: true,
		Page:        1,
		Limit:       10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	require.Len(t, res, 1)
	assert.Equal(t, "First", res[0].Name)

	res, count, err = env.service.GetRecipes(ctx, env.visitor.ID.String(), domain.RecipeFilterRequest{
		IsInShoppingCart: true,
		Page:             1,
		Limit:            10,
	})
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, res)
}

func TestGetRecipesAuthorFilterAndPagination(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		req := saveRequest(env, fmt.Sprintf("Dish %d", i))
		_, err := env.service.CreateRecipe(ctx, req, env.author.ID.String())
		require.NoError(t, err)
	}

	res, count, err := env.service.GetRecipes(ctx, "", domain.RecipeFilterRequest{
		AuthorID: env.author.ID.String(),
		Page:     1,
		Limit:    2,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
	assert.Len(t, res, 2)

	res, _, err = env.service.GetRecipes(ctx, "", domain.RecipeFilterRequest{
		AuthorID: env.visitor.ID.String(),
		Page:     1,
		Limit:    10,
	})
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestBuildShoppingListMergesByNameAndUnit(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	first := saveRequest(env, "Soup")
	first.Ingredients = []domain.IngredientAmountRequest{
		{ID: env.saltGrams.ID.String(), Amount: 5},
		{ID: env.flour.ID.String(), Amount: 100},
	}
	firstRes, err := env.service.CreateRecipe(ctx, first, env.author.ID.String())
	require.NoError(t, err)

	second := saveRequest(env, "Bread")
	second.Ingredients = []domain.IngredientAmountRequest{
		{ID: env.saltGrams.ID.String(), Amount: 7},
		{ID: env.saltPinch.ID.String(), Amount: 2},
	}
	secondRes, err := env.service.CreateRecipe(ctx, second, env.author.ID.String())
	require.NoError(t, err)

	_, err = env.service.AddToCart(ctx, firstRes.ID, env.visitor.ID.String())
	require.NoError(t, err)
	_, err = env.service.AddToCart(ctx, secondRes.ID, env.visitor.ID.String())
	require.NoError(t, err)

	list, err := env.service.BuildShoppingList(ctx, env.visitor.ID.String())
	require.NoError(t, err)

	assert.Equal(t, "guest-shopping-cart.txt", list.Filename)
	// same name merges per unit, different units stay separate
	assert.Equal(t, "Flour (g) - 100\nSalt (g) - 12\nSalt (pinch) - 2", list.Content)
}

func TestBuildShoppingListEmptyCart(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	list, err := env.service.BuildShoppingList(ctx, env.visitor.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "guest-shopping-cart.txt", list.Filename)
	assert.Empty(t, list.Content)
}

func TestGetRecipeDetailNotFound(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, err := env.service.GetRecipeDetail(ctx, uuid.New().String(), "")
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}
