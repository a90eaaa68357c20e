package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nesterovv89/sharing-recipe-service/internal/database"
	"github.com/nesterovv89/sharing-recipe-service/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	return db
}

type fakeImageStore struct{}

func (fakeImageStore) UploadImage(ctx context.Context, data []byte, contentType string) (string, error) {
	return fmt.Sprintf("https://images.test/%s", uuid.New()), nil
}

func testImageURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("fake-image-bytes"))
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestTag(t *testing.T, db *gorm.DB, name, color, slug string) *models.Tag {
	t.Helper()
	tag := models.Tag{Name: name, Color: color, Slug: slug}
	require.NoError(t, db.Create(&tag).Error)
	return &tag
}

func createTestIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(&ingredient).Error)
	return &ingredient
}

func newTestRecipeService(db *gorm.DB) *RecipeService {
	return NewRecipeService(db, fakeImageStore{}, 1, 1)
}

func validRecipeInput(tag *models.Tag, items ...IngredientAmount) RecipeInput {
	return RecipeInput{
		Name:        "Borscht",
		Text:        "Chop, boil, serve",
		Image:       testImageURI(),
		CookingTime: 45,
		TagIDs:      []uuid.UUID{tag.ID},
		Ingredients: items,
	}
}

type fakeTokenStore struct {
	denied map[string]time.Time
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{denied: make(map[string]time.Time)}
}

func (s *fakeTokenStore) Deny(ctx context.Context, token string, ttl time.Duration) error {
	s.denied[token] = time.Now().Add(ttl)
	return nil
}

func (s *fakeTokenStore) IsDenied(ctx context.Context, token string) (bool, error) {
	exp, ok := s.denied[token]
	return ok && exp.After(time.Now()), nil
}
