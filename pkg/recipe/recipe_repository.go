package recipe

import (
	"context"
	"time"

	"cookbook-backend/domain"
	"cookbook-backend/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	// RecipeFilter narrows a listing; membership filters only apply when
	// UserID identifies an authenticated requester.
	RecipeFilter struct {
		AuthorID      string
		TagSlugs      []string
		OnlyFavorited bool
		OnlyInCart    bool
		UserID        string
		Page          int
		Limit         int
	}

	// ShoppingListItem is one merged line of the aggregated shopping list.
	ShoppingListItem struct {
		Name            string
		MeasurementUnit string
		TotalAmount     int
	}

	RecipeRepository interface {
		GetRecipes(ctx context.Context, filter RecipeFilter) ([]*entities.Recipe, int64, error)
		GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error)
		RecipeNameTaken(ctx context.Context, name string, excludeID uuid.UUID) (bool, error)
		CreateRecipe(ctx context.Context, recipe *entities.Recipe, tags []*entities.Tag, lines []*entities.IngredientLine) error
		ReplaceRecipe(ctx context.Context, recipe *entities.Recipe, tags []*entities.Tag, lines []*entities.IngredientLine) error
		DeleteRecipe(ctx context.Context, id uuid.UUID) error

		AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) error
		RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error
		FavoriteRecipeIDs(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error)
		AddToCart(ctx context.Context, userID, recipeID uuid.UUID) error
		RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error
		CartRecipeIDs(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error)

		GetShoppingListItems(ctx context.Context, userID uuid.UUID) ([]ShoppingListItem, error)
	}

	recipeRepository struct {
		db        *gorm.DB
		favorites *membershipSet[entities.Favorite]
		cart      *membershipSet[entities.CartItem]
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{
		db: db,
		favorites: &membershipSet[entities.Favorite]{
			db:         db,
			errExists:  domain.ErrAlreadyFavorited,
			errMissing: domain.ErrNotInFavorites,
			newRow: func(userID, recipeID uuid.UUID) entities.Favorite {
				return entities.Favorite{UserID: userID, RecipeID: recipeID, CreatedAt: time.Now()}
			},
		},
		cart: &membershipSet[entities.CartItem]{
			db:         db,
			errExists:  domain.ErrAlreadyInCart,
			errMissing: domain.ErrNotInCart,
			newRow: func(userID, recipeID uuid.UUID) entities.CartItem {
				return entities.CartItem{UserID: userID, RecipeID: recipeID, CreatedAt: time.Now()}
			},
		},
	}
}

func (r *recipeRepository) applyFilter(db *gorm.DB, filter RecipeFilter) *gorm.DB {
	query := db.Model(&entities.Recipe{})

	if filter.AuthorID != "" {
		query = query.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		// OR across the selected tags: one matching tag is enough.
		query = query.
			Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
	}
	if filter.OnlyFavorited && filter.UserID != "" {
		query = query.Joins(
			"JOIN favorites ON favorites.recipe_id = recipes.id AND favorites.user_id = ?",
			filter.UserID,
		)
	}
	if filter.OnlyInCart && filter.UserID != "" {
		query = query.Joins(
			"JOIN cart_items ON cart_items.recipe_id = recipes.id AND cart_items.user_id = ?",
			filter.UserID,
		)
	}

	return query
}

// GetRecipes returns one page plus the total count, both read inside a single
// transaction so the listing is a consistent snapshot.
func (r *recipeRepository) GetRecipes(ctx context.Context, filter RecipeFilter) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	var count int64
	offset := (filter.Page - 1) * filter.Limit

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		countQuery := r.applyFilter(tx, filter)
		if len(filter.TagSlugs) > 0 {
			countQuery = countQuery.Distinct("recipes.id")
		}
		if err := countQuery.Count(&count).Error; err != nil {
			return err
		}

		findQuery := r.applyFilter(tx, filter)
		if len(filter.TagSlugs) > 0 {
			findQuery = findQuery.Distinct("recipes.*")
		}
		return findQuery.
			Preload("Author").
			Preload("Tags").
			Preload("IngredientLines.Ingredient").
			Offset(offset).
			Limit(filter.Limit).
			Order("recipes.published_at desc").
			Find(&recipes).Error
	})
	if err != nil {
		return nil, 0, err
	}

	return recipes, count, nil
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("IngredientLines.Ingredient").
		Where("id = ?", id).
		First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) RecipeNameTaken(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entities.Recipe{}).Where("name = ?", name)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateRecipe inserts the recipe row, its tag links and its ingredient lines
// as one transaction.
func (r *recipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe, tags []*entities.Tag, lines []*entities.IngredientLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Append(tags); err != nil {
			return err
		}
		for _, line := range lines {
			line.RecipeID = recipe.ID
		}
		return tx.Create(&lines).Error
	})
}

// ReplaceRecipe is a whole-object update: scalar fields are overwritten, tag
// links are replaced and ingredient lines are deleted and re-inserted.
func (r *recipeRepository) ReplaceRecipe(ctx context.Context, recipe *entities.Recipe, tags []*entities.Tag, lines []*entities.IngredientLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&entities.Recipe{}).
			Where("id = ?", recipe.ID).
			Updates(map[string]any{
				"name":         recipe.Name,
				"image_url":    recipe.ImageURL,
				"text":         recipe.Text,
				"cooking_time": recipe.CookingTime,
			}).Error
		if err != nil {
			return err
		}

		if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&entities.IngredientLine{}).Error; err != nil {
			return err
		}
		for _, line := range lines {
			line.RecipeID = recipe.ID
		}
		return tx.Create(&lines).Error
	})
}

// DeleteRecipe cascades to ingredient lines, tag links and every favorite and
// cart membership before removing the recipe row.
func (r *recipeRepository) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.IngredientLine{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.CartItem{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&entities.Recipe{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrRecipeNotFound
		}
		return nil
	})
}

func (r *recipeRepository) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	return r.favorites.Add(ctx, userID, recipeID)
}

func (r *recipeRepository) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	return r.favorites.Remove(ctx, userID, recipeID)
}

func (r *recipeRepository) FavoriteRecipeIDs(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return r.favorites.MemberRecipeIDs(ctx, userID, recipeIDs)
}

func (r *recipeRepository) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	return r.cart.Add(ctx, userID, recipeID)
}

func (r *recipeRepository) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	return r.cart.Remove(ctx, userID, recipeID)
}

func (r *recipeRepository) CartRecipeIDs(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return r.cart.MemberRecipeIDs(ctx, userID, recipeIDs)
}

// GetShoppingListItems merges the ingredient lines of every recipe in the
// user's cart, keyed by (name, unit), amounts summed. Ordered by name so the
// exported list is deterministic.
func (r *recipeRepository) GetShoppingListItems(ctx context.Context, userID uuid.UUID) ([]ShoppingListItem, error) {
	var items []ShoppingListItem

	err := r.db.WithContext(ctx).
		Table("cart_items").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(ingredient_lines.amount) AS total_amount").
		Joins("JOIN ingredient_lines ON ingredient_lines.recipe_id = cart_items.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = ingredient_lines.ingredient_id").
		Where("cart_items.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name asc, ingredients.measurement_unit asc").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}

	return items, nil
}
