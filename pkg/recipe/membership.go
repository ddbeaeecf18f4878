package recipe

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// membershipSet gives favorites and the shopping cart their shared set
// behaviour over distinct tables: at most one row per (user, recipe),
// duplicate adds and missing removals are conflicts.
type membershipSet[T any] struct {
	db         *gorm.DB
	errExists  error
	errMissing error
	newRow     func(userID, recipeID uuid.UUID) T
}

func (m *membershipSet[T]) Add(ctx context.Context, userID, recipeID uuid.UUID) error {
	var model T
	var count int64
	if err := m.db.WithContext(ctx).Model(&model).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return m.errExists
	}

	row := m.newRow(userID, recipeID)
	if err := m.db.WithContext(ctx).Create(&row).Error; err != nil {
		// A raced insert reports the same conflict as the pre-check.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return m.errExists
		}
		return err
	}
	return nil
}

func (m *membershipSet[T]) Remove(ctx context.Context, userID, recipeID uuid.UUID) error {
	var model T
	res := m.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return m.errMissing
	}
	return nil
}

// MemberRecipeIDs reports which of the given recipes are in the user's set.
func (m *membershipSet[T]) MemberRecipeIDs(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	members := make(map[uuid.UUID]bool, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return members, nil
	}

	var model T
	var ids []uuid.UUID
	if err := m.db.WithContext(ctx).Model(&model).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error; err != nil {
		return nil, err
	}

	for _, id := range ids {
		members[id] = true
	}
	return members, nil
}
