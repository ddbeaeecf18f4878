package catalog

import (
	"context"
	"errors"
	"strings"

	"cookbook-backend/domain"
	"cookbook-backend/entities"

	"gorm.io/gorm"
)

type (
	CatalogService interface {
		GetTags(ctx context.Context) ([]domain.TagResponse, error)
		GetTagDetail(ctx context.Context, tagID string) (domain.TagResponse, error)
		SearchIngredients(ctx context.Context, query string) ([]domain.IngredientResponse, error)
		GetIngredientDetail(ctx context.Context, ingredientID string) (domain.IngredientResponse, error)
	}

	catalogService struct {
		catalogRepository CatalogRepository
	}
)

func NewCatalogService(catalogRepository CatalogRepository) CatalogService {
	return &catalogService{catalogRepository: catalogRepository}
}

func (s *catalogService) GetTags(ctx context.Context) ([]domain.TagResponse, error) {
	tags, err := s.catalogRepository.GetTags(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.TagResponse, 0, len(tags))
	for _, tag := range tags {
		result = append(result, tagResponse(tag))
	}
	return result, nil
}

func (s *catalogService) GetTagDetail(ctx context.Context, tagID string) (domain.TagResponse, error) {
	tag, err := s.catalogRepository.GetTagByID(ctx, tagID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.TagResponse{}, domain.ErrTagNotFound
		}
		return domain.TagResponse{}, err
	}
	return tagResponse(tag), nil
}

// SearchIngredients splits the query on commas and whitespace; every term
// must prefix-match the ingredient name.
func (s *catalogService) SearchIngredients(ctx context.Context, query string) ([]domain.IngredientResponse, error) {
	terms := strings.FieldsFunc(query, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})

	ingredients, err := s.catalogRepository.SearchIngredients(ctx, terms)
	if err != nil {
		return nil, err
	}

	result := make([]domain.IngredientResponse, 0, len(ingredients))
	for _, ingredient := range ingredients {
		result = append(result, ingredientResponse(ingredient))
	}
	return result, nil
}

func (s *catalogService) GetIngredientDetail(ctx context.Context, ingredientID string) (domain.IngredientResponse, error) {
	ingredient, err := s.catalogRepository.GetIngredientByID(ctx, ingredientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.IngredientResponse{}, domain.ErrIngredientNotFound
		}
		return domain.IngredientResponse{}, err
	}
	return ingredientResponse(ingredient), nil
}

func tagResponse(tag *entities.Tag) domain.TagResponse {
	return domain.TagResponse{
		ID:    tag.ID.String(),
		Name:  tag.Name,
		Color: tag.Color,
		Slug:  tag.Slug,
	}
}

func ingredientResponse(ingredient *entities.Ingredient) domain.IngredientResponse {
	return domain.IngredientResponse{
		ID:              ingredient.ID.String(),
		Name:            ingredient.Name,
		MeasurementUnit: ingredient.MeasurementUnit,
	}
}
