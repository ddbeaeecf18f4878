package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cookbook-backend/domain"
	"cookbook-backend/entities"
	"cookbook-backend/internal/utils/mailing"
	"cookbook-backend/pkg/jwt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.UserResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
		GetMe(ctx context.Context, userID string) (domain.UserResponse, error)
		GetUsers(ctx context.Context, requesterID string, page int, limit int) ([]domain.UserResponse, int64, error)
		GetProfile(ctx context.Context, profileID string, requesterID string) (domain.UserResponse, error)
		SetPassword(ctx context.Context, userID string, req domain.SetPasswordRequest) error
		ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error
		ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error

		Subscribe(ctx context.Context, userID, authorID string, recipesLimit int) (domain.SubscriptionResponse, error)
		Unsubscribe(ctx context.Context, userID, authorID string) error
		GetSubscriptions(ctx context.Context, userID string, recipesLimit int, page int, limit int) ([]domain.SubscriptionResponse, int64, error)
	}

	userService struct {
		userRepository UserRepository
		jwtService     jwt.JWTService
		mailer         mailing.Mailer
	}
)

func NewUserService(userRepository UserRepository, jwtService jwt.JWTService, mailer mailing.Mailer) UserService {
	return &userService{
		userRepository: userRepository,
		jwtService:     jwtService,
		mailer:         mailer,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.UserResponse, error) {
	vErrs := domain.NewValidationErrors()

	emailTaken, err := s.userRepository.EmailTaken(ctx, req.Email)
	if err != nil {
		return domain.UserResponse{}, err
	}
	if emailTaken {
		vErrs.Add("email", domain.ErrEmailAlreadyExists.Error())
	}

	usernameTaken, err := s.userRepository.UsernameTaken(ctx, req.Username)
	if err != nil {
		return domain.UserResponse{}, err
	}
	if usernameTaken {
		vErrs.Add("username", domain.ErrUsernameAlreadyExists.Error())
	}

	if vErrs.HasErrors() {
		return domain.UserResponse{}, vErrs
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserResponse{}, err
	}

	newUser := &entities.User{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashed),
	}

	if err := s.userRepository.CreateUser(ctx, newUser); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.UserResponse{}, domain.ErrEmailAlreadyExists
		}
		return domain.UserResponse{}, err
	}

	return userResponse(newUser, false), nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	found, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LoginResponse{}, domain.ErrCredentialsInvalid
		}
		return domain.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(found.Password), []byte(req.Password)); err != nil {
		return domain.LoginResponse{}, domain.ErrCredentialsInvalid
	}

	return domain.LoginResponse{Token: s.jwtService.GenerateTokenUser(found.ID.String())}, nil
}

func (s *userService) GetMe(ctx context.Context, userID string) (domain.UserResponse, error) {
	found, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		return domain.UserResponse{}, err
	}
	return userResponse(found, false), nil
}

func (s *userService) GetUsers(ctx context.Context, requesterID string, page int, limit int) ([]domain.UserResponse, int64, error) {
	users, count, err := s.userRepository.GetUsers(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	subscribed := map[uuid.UUID]bool{}
	if requesterID != "" {
		requesterUUID, err := uuid.Parse(requesterID)
		if err != nil {
			return nil, 0, domain.ErrParseUUID
		}
		ids := make([]uuid.UUID, 0, len(users))
		for _, entry := range users {
			ids = append(ids, entry.ID)
		}
		if subscribed, err = s.userRepository.SubscribedAuthorIDs(ctx, requesterUUID, ids); err != nil {
			return nil, 0, err
		}
	}

	responses := make([]domain.UserResponse, 0, len(users))
	for _, entry := range users {
		responses = append(responses, userResponse(entry, subscribed[entry.ID]))
	}
	return responses, count, nil
}

func (s *userService) GetProfile(ctx context.Context, profileID string, requesterID string) (domain.UserResponse, error) {
	found, err := s.userRepository.GetUserByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		return domain.UserResponse{}, err
	}

	isSubscribed := false
	if requesterID != "" && requesterID != profileID {
		requesterUUID, err := uuid.Parse(requesterID)
		if err != nil {
			return domain.UserResponse{}, domain.ErrParseUUID
		}
		if isSubscribed, err = s.userRepository.SubscriptionExists(ctx, requesterUUID, found.ID); err != nil {
			return domain.UserResponse{}, err
		}
	}

	return userResponse(found, isSubscribed), nil
}

func (s *userService) SetPassword(ctx context.Context, userID string, req domain.SetPasswordRequest) error {
	found, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(found.Password), []byte(req.CurrentPassword)); err != nil {
		return domain.ErrPasswordIncorrect
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepository.UpdatePassword(ctx, found.ID, string(hashed))
}

func (s *userService) ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error {
	found, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	token, err := s.jwtService.GenerateTokenResetPassword(found.Email, time.Hour)
	if err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", mailing.LoadMailConfig().AppURL, token)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Follow this link to choose a new password:</p><p><a href=%q>%s</a></p><p>The link expires in one hour.</p>",
		found.FirstName, resetURL, resetURL,
	)

	return s.mailer.SendMail(found.Email, "Password reset", body)
}

func (s *userService) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	email, err := s.jwtService.ValidateTokenResetPassword(req.Token)
	if err != nil {
		return err
	}

	found, err := s.userRepository.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepository.UpdatePassword(ctx, found.ID, string(hashed))
}

func (s *userService) Subscribe(ctx context.Context, userID, authorID string, recipesLimit int) (domain.SubscriptionResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.SubscriptionResponse{}, domain.ErrParseUUID
	}
	if userID == authorID {
		return domain.SubscriptionResponse{}, domain.ErrSelfSubscribe
	}

	author, err := s.userRepository.GetUserByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.SubscriptionResponse{}, domain.ErrUserNotFound
		}
		return domain.SubscriptionResponse{}, err
	}

	exists, err := s.userRepository.SubscriptionExists(ctx, userUUID, author.ID)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}
	if exists {
		return domain.SubscriptionResponse{}, domain.ErrAlreadySubscribed
	}

	if err := s.userRepository.CreateSubscription(ctx, userUUID, author.ID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.SubscriptionResponse{}, domain.ErrAlreadySubscribed
		}
		return domain.SubscriptionResponse{}, err
	}

	counts, err := s.userRepository.RecipeCountsByAuthor(ctx, []uuid.UUID{author.ID})
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}
	return s.subscriptionResponse(ctx, author, counts[author.ID], recipesLimit)
}

func (s *userService) Unsubscribe(ctx context.Context, userID, authorID string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ErrParseUUID
	}
	authorUUID, err := uuid.Parse(authorID)
	if err != nil {
		return domain.ErrParseUUID
	}

	removed, err := s.userRepository.DeleteSubscription(ctx, userUUID, authorUUID)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrNotSubscribed
	}
	return nil
}

func (s *userService) GetSubscriptions(ctx context.Context, userID string, recipesLimit int, page int, limit int) ([]domain.SubscriptionResponse, int64, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, domain.ErrParseUUID
	}

	authors, count, err := s.userRepository.GetSubscribedAuthors(ctx, userUUID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	// one grouped count query for the whole page
	authorIDs := make([]uuid.UUID, 0, len(authors))
	for _, author := range authors {
		authorIDs = append(authorIDs, author.ID)
	}
	counts, err := s.userRepository.RecipeCountsByAuthor(ctx, authorIDs)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]domain.SubscriptionResponse, 0, len(authors))
	for _, author := range authors {
		response, err := s.subscriptionResponse(ctx, author, counts[author.ID], recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		responses = append(responses, response)
	}
	return responses, count, nil
}

// subscriptionResponse annotates an author with the given recipe count and
// their newest recipes, trimmed to recipesLimit (negative means all).
func (s *userService) subscriptionResponse(ctx context.Context, author *entities.User, recipesCount int64, recipesLimit int) (domain.SubscriptionResponse, error) {
	recipes := []*entities.Recipe{}
	var err error
	if recipesLimit != 0 {
		if recipes, err = s.userRepository.RecentRecipesByAuthor(ctx, author.ID, recipesLimit); err != nil {
			return domain.SubscriptionResponse{}, err
		}
	}

	compact := make([]domain.CompactRecipeResponse, 0, len(recipes))
	for _, entry := range recipes {
		compact = append(compact, domain.CompactRecipeResponse{
			ID:          entry.ID.String(),
			Name:        entry.Name,
			Image:       entry.ImageURL,
			CookingTime: entry.CookingTime,
		})
	}

	return domain.SubscriptionResponse{
		UserResponse: userResponse(author, true),
		Recipes:      compact,
		RecipesCount: recipesCount,
	}, nil
}

func userResponse(entry *entities.User, isSubscribed bool) domain.UserResponse {
	return domain.UserResponse{
		ID:           entry.ID.String(),
		Email:        entry.Email,
		Username:     entry.Username,
		FirstName:    entry.FirstName,
		LastName:     entry.LastName,
		IsSubscribed: isSubscribed,
	}
}
