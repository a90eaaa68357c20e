package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nesterovv89/sharing-recipe-service/internal/models"
)

// AuthorDetail is an author profile with the viewer's subscription flag and
// an optional capped recipe preview.
type AuthorDetail struct {
	User         models.User
	IsSubscribed bool
	Recipes      []models.Recipe
	RecipesCount int64
}

// UserService handles user listing and the follow graph.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// List returns one page of users, each annotated with whether the viewer
// follows them. The flags come from one IN-query per page.
func (s *UserService) List(ctx context.Context, viewer *uuid.UUID, page, limit int) ([]AuthorDetail, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := s.db.WithContext(ctx).
		Order("created_at").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	details, err := s.annotateUsers(ctx, viewer, users)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// Get returns one user with the viewer's subscription flag.
func (s *UserService) Get(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*AuthorDetail, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	details, err := s.annotateUsers(ctx, viewer, []models.User{user})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *UserService) annotateUsers(ctx context.Context, viewer *uuid.UUID, users []models.User) ([]AuthorDetail, error) {
	details := make([]AuthorDetail, len(users))
	for i := range users {
		details[i].User = users[i]
	}
	if viewer == nil || len(users) == 0 {
		return details, nil
	}

	ids := make([]uuid.UUID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	var followed []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id IN ?", *viewer, ids).
		Pluck("author_id", &followed).Error; err != nil {
		return nil, err
	}
	followSet := toSet(followed)
	for i := range details {
		_, details[i].IsSubscribed = followSet[details[i].User.ID]
	}
	return details, nil
}

// Subscribe follows an author. Self-follow is rejected before the existence
// check; the unique (user, author) index turns concurrent duplicates into
// the same ErrAlreadyExists outcome.
func (s *UserService) Subscribe(ctx context.Context, userID, authorID uuid.UUID, recipesLimit int) (*AuthorDetail, error) {
	if userID == authorID {
		return nil, ErrSelfFollow
	}

	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	follow := models.Follow{UserID: userID, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Create(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	return s.authorDetail(ctx, author, true, recipesLimit)
}

// Unsubscribe removes the follow row; deleting a missing row is an error.
func (s *UserService) Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error {
	if userID == authorID {
		return ErrSelfFollow
	}
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotInList
	}
	return nil
}

// Subscriptions returns one page of the authors the user follows, each with
// their recipe count and a recipesLimit-capped recipe preview.
func (s *UserService) Subscriptions(ctx context.Context, userID uuid.UUID, page, limit, recipesLimit int) ([]AuthorDetail, int64, error) {
	followedIDs := s.db.Table("follows").Select("author_id").Where("user_id = ?", userID)

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id IN (?)", followedIDs).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var authors []models.User
	err := s.db.WithContext(ctx).
		Where("id IN (?)", followedIDs).
		Order("created_at").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&authors).Error
	if err != nil {
		return nil, 0, err
	}

	details := make([]AuthorDetail, 0, len(authors))
	for _, author := range authors {
		detail, err := s.authorDetail(ctx, author, true, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		details = append(details, *detail)
	}
	return details, total, nil
}

func (s *UserService) authorDetail(ctx context.Context, author models.User, subscribed bool, recipesLimit int) (*AuthorDetail, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ?", author.ID).Count(&count).Error; err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Where("author_id = ?", author.ID).
		Order("created_at DESC")
	if recipesLimit > 0 {
		query = query.Limit(recipesLimit)
	}
	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}

	return &AuthorDetail{
		User:         author,
		IsSubscribed: subscribed,
		Recipes:      recipes,
		RecipesCount: count,
	}, nil
}
