package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessGetRecipes      = "success get recipes"
	MessageSuccessGetRecipeDetail = "success get recipe detail"
	MessageSuccessCreateRecipe    = "recipe created successfully"
	MessageSuccessUpdateRecipe    = "recipe updated successfully"
	MessageSuccessAddFavorite     = "recipe added to favorites"
	MessageSuccessAddToCart       = "recipe added to shopping cart"

	MessageFailedGetRecipes      = "failed to get recipes"
	MessageFailedGetRecipeDetail = "failed to get recipe detail"
	MessageFailedCreateRecipe    = "failed to create recipe"
	MessageFailedUpdateRecipe    = "failed to update recipe"
	MessageFailedDeleteRecipe    = "failed to delete recipe"
	MessageFailedAddFavorite     = "failed to add recipe to favorites"
	MessageFailedRemoveFavorite  = "failed to remove recipe from favorites"
	MessageFailedAddToCart       = "failed to add recipe to shopping cart"
	MessageFailedRemoveFromCart  = "failed to remove recipe from shopping cart"
	MessageFailedDownloadCart    = "failed to build shopping list"

	ErrRecipeNotFound   = errors.New("recipe not found")
	ErrNotRecipeAuthor  = errors.New("only the author can modify this recipe")
	ErrAlreadyFavorited = errors.New("recipe already in favorites")
	ErrNotInFavorites   = errors.New("recipe is not in favorites")
	ErrAlreadyInCart    = errors.New("recipe already in shopping cart")
	ErrNotInCart        = errors.New("recipe is not in shopping cart")
)

type (
	IngredientAmountRequest struct {
		ID     string `json:"id" validate:"required,uuid"`
		Amount int    `json:"amount" validate:"required"`
	}

	// SaveRecipeRequest is used for both create and full replace.
	SaveRecipeRequest struct {
		Ingredients []IngredientAmountRequest `json:"ingredients" validate:"required"`
		Tags        []string                  `json:"tags" validate:"required,dive,uuid"`
		Image       string                    `json:"image"`
		Name        string                    `json:"name" validate:"required,max=200"`
		Text        string                    `json:"text" validate:"required"`
		CookingTime int                       `json:"cooking_time" validate:"required"`
	}

	RecipeFilterRequest struct {
		AuthorID         string
		TagSlugs         []string
		IsFavorited      bool
		IsInShoppingCart bool
		Page             int
		Limit            int
	}

	IngredientLineResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	RecipeResponse struct {
		ID               string                   `json:"id"`
		Tags             []TagResponse            `json:"tags"`
		Author           UserResponse             `json:"author"`
		Ingredients      []IngredientLineResponse `json:"ingredients"`
		IsFavorited      bool                     `json:"is_favorited"`
		IsInShoppingCart bool                     `json:"is_in_shopping_cart"`
		Name             string                   `json:"name"`
		Image            string                   `json:"image"`
		Text             string                   `json:"text"`
		CookingTime      int                      `json:"cooking_time"`
		PublishedAt      time.Time                `json:"published_at"`
	}

	// CompactRecipeResponse is the short shape returned by favorite/cart
	// mutations and embedded in subscription payloads.
	CompactRecipeResponse struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Image       string `json:"image"`
		CookingTime int    `json:"cooking_time"`
	}

	ShoppingListResponse struct {
		Filename string
		Content  string
	}
)
