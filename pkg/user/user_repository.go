package user

import (
	"context"
	"time"

	"cookbook-backend/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	UserRepository interface {
		CreateUser(ctx context.Context, user *entities.User) error
		GetUserByID(ctx context.Context, id string) (*entities.User, error)
		GetUserByEmail(ctx context.Context, email string) (*entities.User, error)
		GetUsers(ctx context.Context, page int, limit int) ([]*entities.User, int64, error)
		EmailTaken(ctx context.Context, email string) (bool, error)
		UsernameTaken(ctx context.Context, username string) (bool, error)
		UpdatePassword(ctx context.Context, userID uuid.UUID, hashed string) error

		CreateSubscription(ctx context.Context, userID, authorID uuid.UUID) error
		DeleteSubscription(ctx context.Context, userID, authorID uuid.UUID) (bool, error)
		SubscriptionExists(ctx context.Context, userID, authorID uuid.UUID) (bool, error)
		GetSubscribedAuthors(ctx context.Context, userID uuid.UUID, page int, limit int) ([]*entities.User, int64, error)
		SubscribedAuthorIDs(ctx context.Context, userID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error)

		RecipeCountsByAuthor(ctx context.Context, authorIDs []uuid.UUID) (map[uuid.UUID]int64, error)
		RecentRecipesByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]*entities.Recipe, error)
	}

	userRepository struct {
		db *gorm.DB
	}
)

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUsers(ctx context.Context, page int, limit int) ([]*entities.User, int64, error) {
	var users []*entities.User
	var count int64
	offset := (page - 1) * limit

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.User{}).Count(&count).Error; err != nil {
			return err
		}
		return tx.
			Offset(offset).
			Limit(limit).
			Order("username asc").
			Find(&users).Error
	})
	if err != nil {
		return nil, 0, err
	}

	return users, count, nil
}

func (r *userRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, hashed string) error {
	return r.db.WithContext(ctx).Model(&entities.User{}).
		Where("id = ?", userID).
		Update("password", hashed).Error
}

func (r *userRepository) CreateSubscription(ctx context.Context, userID, authorID uuid.UUID) error {
	subscription := entities.Subscription{
		UserID:    userID,
		AuthorID:  authorID,
		CreatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Create(&subscription).Error
}

func (r *userRepository) DeleteSubscription(ctx context.Context, userID, authorID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&entities.Subscription{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepository) SubscriptionExists(ctx context.Context, userID, authorID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.Subscription{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetSubscribedAuthors pages through the authors the user follows, newest
// subscription first.
func (r *userRepository) GetSubscribedAuthors(ctx context.Context, userID uuid.UUID, page int, limit int) ([]*entities.User, int64, error) {
	var authors []*entities.User
	var count int64
	offset := (page - 1) * limit

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.Subscription{}).
			Where("user_id = ?", userID).
			Count(&count).Error; err != nil {
			return err
		}
		return tx.Model(&entities.User{}).
			Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
			Where("subscriptions.user_id = ?", userID).
			Order("subscriptions.created_at desc").
			Offset(offset).
			Limit(limit).
			Find(&authors).Error
	})
	if err != nil {
		return nil, 0, err
	}

	return authors, count, nil
}

// SubscribedAuthorIDs reports which of the given authors the user follows.
func (r *userRepository) SubscribedAuthorIDs(ctx context.Context, userID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	subscribed := make(map[uuid.UUID]bool, len(authorIDs))
	if len(authorIDs) == 0 {
		return subscribed, nil
	}

	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&entities.Subscription{}).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Pluck("author_id", &ids).Error; err != nil {
		return nil, err
	}

	for _, id := range ids {
		subscribed[id] = true
	}
	return subscribed, nil
}

func (r *userRepository) RecipeCountsByAuthor(ctx context.Context, authorIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		AuthorID uuid.UUID
		Total    int64
	}
	if err := r.db.WithContext(ctx).Model(&entities.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}

// RecentRecipesByAuthor returns the author's newest recipes; a negative limit
// means no trimming.
func (r *userRepository) RecentRecipesByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]*entities.Recipe, error) {
	var recipes []*entities.Recipe
	if err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("published_at desc").
		Limit(limit).
		Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}
