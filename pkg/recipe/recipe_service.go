package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cookbook-backend/domain"
	"cookbook-backend/entities"
	"cookbook-backend/internal/utils/storage"
	"cookbook-backend/pkg/catalog"
	"cookbook-backend/pkg/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	RecipeService interface {
		GetRecipes(ctx context.Context, userID string, filter domain.RecipeFilterRequest) ([]domain.RecipeResponse, int64, error)
		GetRecipeDetail(ctx context.Context, recipeID string, userID string) (domain.RecipeResponse, error)
		CreateRecipe(ctx context.Context, req domain.SaveRecipeRequest, authorID string) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, recipeID string, req domain.SaveRecipeRequest, userID string) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, recipeID string, userID string) error
		AddFavorite(ctx context.Context, recipeID, userID string) (domain.CompactRecipeResponse, error)
		RemoveFavorite(ctx context.Context, recipeID, userID string) error
		AddToCart(ctx context.Context, recipeID, userID string) (domain.CompactRecipeResponse, error)
		RemoveFromCart(ctx context.Context, recipeID, userID string) error
		BuildShoppingList(ctx context.Context, userID string) (domain.ShoppingListResponse, error)
	}

	recipeService struct {
		recipeRepository  RecipeRepository
		catalogRepository catalog.CatalogRepository
		userRepository    user.UserRepository
		storage           storage.AwsS3
	}
)

func NewRecipeService(
	recipeRepository RecipeRepository,
	catalogRepository catalog.CatalogRepository,
	userRepository user.UserRepository,
	storage storage.AwsS3,
) RecipeService {
	return &recipeService{
		recipeRepository:  recipeRepository,
		catalogRepository: catalogRepository,
		userRepository:    userRepository,
		storage:           storage,
	}
}

// validateSaveRequest collects every business-rule violation of a create or
// replace payload before anything is written.
func (s *recipeService) validateSaveRequest(ctx context.Context, req domain.SaveRecipeRequest, excludeID uuid.UUID) ([]*entities.Tag, []*entities.IngredientLine, error) {
	vErrs := domain.NewValidationErrors()

	if req.CookingTime < 1 {
		vErrs.Add("cooking_time", "cooking time must be at least 1 minute")
	}
	if len(req.Tags) == 0 {
		vErrs.Add("tags", "at least one tag is required")
	}
	if len(req.Ingredients) == 0 {
		vErrs.Add("ingredients", "at least one ingredient is required")
	}

	seen := make(map[string]bool, len(req.Ingredients))
	ingredientIDs := make([]string, 0, len(req.Ingredients))
	for _, line := range req.Ingredients {
		if seen[line.ID] {
			vErrs.Add("ingredients", fmt.Sprintf("ingredient %s appears more than once", line.ID))
			continue
		}
		seen[line.ID] = true
		ingredientIDs = append(ingredientIDs, line.ID)
		if line.Amount < 1 {
			vErrs.Add("ingredients", fmt.Sprintf("amount for ingredient %s must be at least 1", line.ID))
		}
	}

	taken, err := s.recipeRepository.RecipeNameTaken(ctx, req.Name, excludeID)
	if err != nil {
		return nil, nil, err
	}
	if taken {
		vErrs.Add("name", "a recipe with this name already exists")
	}

	tagIDs := uniqueStrings(req.Tags)
	tags, err := s.catalogRepository.GetTagsByIDs(ctx, tagIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(tags) != len(tagIDs) {
		vErrs.Add("tags", "one or more tags do not exist")
	}

	ingredients, err := s.catalogRepository.GetIngredientsByIDs(ctx, ingredientIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(ingredients) != len(ingredientIDs) {
		vErrs.Add("ingredients", "one or more ingredients do not exist")
	}

	if vErrs.HasErrors() {
		return nil, nil, vErrs
	}

	lines := make([]*entities.IngredientLine, 0, len(req.Ingredients))
	for _, line := range req.Ingredients {
		ingredientID, err := uuid.Parse(line.ID)
		if err != nil {
			return nil, nil, domain.ErrParseUUID
		}
		lines = append(lines, &entities.IngredientLine{
			IngredientID: ingredientID,
			Amount:       line.Amount,
		})
	}

	return tags, lines, nil
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.SaveRecipeRequest, authorID string) (domain.RecipeResponse, error) {
	authorUUID, err := uuid.Parse(authorID)
	if err != nil {
		return domain.RecipeResponse{}, domain.ErrParseUUID
	}

	tags, lines, err := s.validateSaveRequest(ctx, req, uuid.Nil)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	imageURL, err := s.uploadImage(ctx, req.Image, "")
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	newRecipe := &entities.Recipe{
		AuthorID:    authorUUID,
		Name:        req.Name,
		ImageURL:    imageURL,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		PublishedAt: time.Now(),
	}

	if err := s.recipeRepository.CreateRecipe(ctx, newRecipe, tags, lines); err != nil {
		// A raced insert on the unique name behaves like the pre-check.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			vErrs := domain.NewValidationErrors()
			vErrs.Add("name", "a recipe with this name already exists")
			return domain.RecipeResponse{}, vErrs
		}
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeDetail(ctx, newRecipe.ID.String(), authorID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID string, req domain.SaveRecipeRequest, userID string) (domain.RecipeResponse, error) {
	existing, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}
	if existing.AuthorID.String() != userID {
		return domain.RecipeResponse{}, domain.ErrNotRecipeAuthor
	}

	tags, lines, err := s.validateSaveRequest(ctx, req, existing.ID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	imageURL, err := s.uploadImage(ctx, req.Image, existing.ImageURL)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	updated := &entities.Recipe{
		ID:          existing.ID,
		AuthorID:    existing.AuthorID,
		Name:        req.Name,
		ImageURL:    imageURL,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		PublishedAt: existing.PublishedAt,
	}

	if err := s.recipeRepository.ReplaceRecipe(ctx, updated, tags, lines); err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeDetail(ctx, recipeID, userID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID string, userID string) error {
	existing, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}
	if existing.AuthorID.String() != userID {
		return domain.ErrNotRecipeAuthor
	}

	return s.recipeRepository.DeleteRecipe(ctx, existing.ID)
}

func (s *recipeService) GetRecipes(ctx context.Context, userID string, filter domain.RecipeFilterRequest) ([]domain.RecipeResponse, int64, error) {
	repoFilter := RecipeFilter{
		AuthorID:      filter.AuthorID,
		TagSlugs:      filter.TagSlugs,
		OnlyFavorited: filter.IsFavorited,
		OnlyInCart:    filter.IsInShoppingCart,
		UserID:        userID,
		Page:          filter.Page,
		Limit:         filter.Limit,
	}

	recipes, count, err := s.recipeRepository.GetRecipes(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}

	responses, err := s.composeResponses(ctx, recipes, userID)
	if err != nil {
		return nil, 0, err
	}
	return responses, count, nil
}

func (s *recipeService) GetRecipeDetail(ctx context.Context, recipeID string, userID string) (domain.RecipeResponse, error) {
	found, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}

	responses, err := s.composeResponses(ctx, []*entities.Recipe{found}, userID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	return responses[0], nil
}

// composeResponses attaches the per-user derived flags with three set
// queries, never one query per row. Anonymous requests short-circuit to
// all-false without touching the membership tables.
func (s *recipeService) composeResponses(ctx context.Context, recipes []*entities.Recipe, userID string) ([]domain.RecipeResponse, error) {
	favorited := map[uuid.UUID]bool{}
	inCart := map[uuid.UUID]bool{}
	subscribed := map[uuid.UUID]bool{}

	if userID != "" {
		userUUID, err := uuid.Parse(userID)
		if err != nil {
			return nil, domain.ErrParseUUID
		}

		recipeIDs := make([]uuid.UUID, 0, len(recipes))
		authorIDs := make([]uuid.UUID, 0, len(recipes))
		for _, entry := range recipes {
			recipeIDs = append(recipeIDs, entry.ID)
			authorIDs = append(authorIDs, entry.AuthorID)
		}

		if favorited, err = s.recipeRepository.FavoriteRecipeIDs(ctx, userUUID, recipeIDs); err != nil {
			return nil, err
		}
		if inCart, err = s.recipeRepository.CartRecipeIDs(ctx, userUUID, recipeIDs); err != nil {
			return nil, err
		}
		if subscribed, err = s.userRepository.SubscribedAuthorIDs(ctx, userUUID, authorIDs); err != nil {
			return nil, err
		}
	}

	responses := make([]domain.RecipeResponse, 0, len(recipes))
	for _, entry := range recipes {
		ingredients := make([]domain.IngredientLineResponse, 0, len(entry.IngredientLines))
		for _, line := range entry.IngredientLines {
			ingredients = append(ingredients, domain.IngredientLineResponse{
				ID:              line.IngredientID.String(),
				Name:            line.Ingredient.Name,
				MeasurementUnit: line.Ingredient.MeasurementUnit,
				Amount:          line.Amount,
			})
		}

		tags := make([]domain.TagResponse, 0, len(entry.Tags))
		for _, tag := range entry.Tags {
			tags = append(tags, domain.TagResponse{
				ID:    tag.ID.String(),
				Name:  tag.Name,
				Color: tag.Color,
				Slug:  tag.Slug,
			})
		}

		author := domain.UserResponse{ID: entry.AuthorID.String()}
		if entry.Author != nil {
			author = domain.UserResponse{
				ID:           entry.Author.ID.String(),
				Email:        entry.Author.Email,
				Username:     entry.Author.Username,
				FirstName:    entry.Author.FirstName,
				LastName:     entry.Author.LastName,
				IsSubscribed: subscribed[entry.AuthorID],
			}
		}

		responses = append(responses, domain.RecipeResponse{
			ID:               entry.ID.String(),
			Tags:             tags,
			Author:           author,
			Ingredients:      ingredients,
			IsFavorited:      favorited[entry.ID],
			IsInShoppingCart: inCart[entry.ID],
			Name:             entry.Name,
			Image:            entry.ImageURL,
			Text:             entry.Text,
			CookingTime:      entry.CookingTime,
			PublishedAt:      entry.PublishedAt,
		})
	}

	return responses, nil
}

func (s *recipeService) AddFavorite(ctx context.Context, recipeID, userID string) (domain.CompactRecipeResponse, error) {
	found, userUUID, err := s.resolveMembership(ctx, recipeID, userID)
	if err != nil {
		return domain.CompactRecipeResponse{}, err
	}

	if err := s.recipeRepository.AddFavorite(ctx, userUUID, found.ID); err != nil {
		return domain.CompactRecipeResponse{}, err
	}
	return compactResponse(found), nil
}

func (s *recipeService) RemoveFavorite(ctx context.Context, recipeID, userID string) error {
	found, userUUID, err := s.resolveMembership(ctx, recipeID, userID)
	if err != nil {
		return err
	}
	return s.recipeRepository.RemoveFavorite(ctx, userUUID, found.ID)
}

func (s *recipeService) AddToCart(ctx context.Context, recipeID, userID string) (domain.CompactRecipeResponse, error) {
	found, userUUID, err := s.resolveMembership(ctx, recipeID, userID)
	if err != nil {
		return domain.CompactRecipeResponse{}, err
	}

	if err := s.recipeRepository.AddToCart(ctx, userUUID, found.ID); err != nil {
		return domain.CompactRecipeResponse{}, err
	}
	return compactResponse(found), nil
}

func (s *recipeService) RemoveFromCart(ctx context.Context, recipeID, userID string) error {
	found, userUUID, err := s.resolveMembership(ctx, recipeID, userID)
	if err != nil {
		return err
	}
	return s.recipeRepository.RemoveFromCart(ctx, userUUID, found.ID)
}

// BuildShoppingList renders the merged cart contents as download-ready text.
// An empty cart produces empty content, not an error.
func (s *recipeService) BuildShoppingList(ctx context.Context, userID string) (domain.ShoppingListResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ShoppingListResponse{}, domain.ErrParseUUID
	}

	owner, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ShoppingListResponse{}, domain.ErrUserNotFound
		}
		return domain.ShoppingListResponse{}, err
	}

	items, err := s.recipeRepository.GetShoppingListItems(ctx, userUUID)
	if err != nil {
		return domain.ShoppingListResponse{}, err
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s (%s) - %d", item.Name, item.MeasurementUnit, item.TotalAmount))
	}

	return domain.ShoppingListResponse{
		Filename: fmt.Sprintf("%s-shopping-cart.txt", owner.Username),
		Content:  strings.Join(lines, "\n"),
	}, nil
}

func (s *recipeService) resolveMembership(ctx context.Context, recipeID, userID string) (*entities.Recipe, uuid.UUID, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, uuid.Nil, domain.ErrParseUUID
	}

	found, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, uuid.Nil, domain.ErrRecipeNotFound
		}
		return nil, uuid.Nil, err
	}
	return found, userUUID, nil
}

func (s *recipeService) uploadImage(ctx context.Context, dataURI, current string) (string, error) {
	if dataURI == "" {
		return current, nil
	}
	key := fmt.Sprintf("recipes/%s", uuid.New().String())
	return s.storage.UploadBase64Image(ctx, key, dataURI)
}

func compactResponse(entry *entities.Recipe) domain.CompactRecipeResponse {
	return domain.CompactRecipeResponse{
		ID:          entry.ID.String(),
		Name:        entry.Name,
		Image:       entry.ImageURL,
		CookingTime: entry.CookingTime,
	}
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		if seen[value] {
			continue
		}
		seen[value] = true
		result = append(result, value)
	}
	return result
}
