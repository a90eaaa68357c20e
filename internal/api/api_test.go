package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nesterovv89/sharing-recipe-service/internal/database"
	"github.com/nesterovv89/sharing-recipe-service/internal/models"
	"github.com/nesterovv89/sharing-recipe-service/internal/service"
)

type fakeImageStore struct{}

func (fakeImageStore) UploadImage(ctx context.Context, data []byte, contentType string) (string, error) {
	return fmt.Sprintf("https://images.test/%s", uuid.New()), nil
}

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
}

func setupAPI(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))

	pagination := Pagination{DefaultLimit: 10, MaxLimit: 100}
	auth := service.NewAuthService(db, "test-secret", nil)
	users := service.NewUserService(db)
	recipes := service.NewRecipeService(db, fakeImageStore{}, 1, 1)
	shopping := service.NewShoppingListService(db)

	router := gin.New()
	group := router.Group("/api")
	NewUserHandler(auth, users, pagination).RegisterRoutes(group)
	NewRecipeHandler(recipes, shopping, auth, pagination).RegisterRoutes(group)
	NewTagHandler(db).RegisterRoutes(group)
	NewIngredientHandler(db).RegisterRoutes(group)

	return &testEnv{db: db, router: router}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// signup registers a user through the API and returns their auth token.
func (e *testEnv) signup(t *testing.T, username string) (uuid.UUID, string) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/users", "", gin.H{
		"email":      username + "@example.com",
		"username":   username,
		"first_name": "Test",
		"last_name":  "User",
		"password":   "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = e.do(t, http.MethodPost, "/api/auth/token/login", "", gin.H{
		"email":    username + "@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var login struct {
		AuthToken string `json:"auth_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.AuthToken)
	return created.ID, login.AuthToken
}

func (e *testEnv) seedTag(t *testing.T, name, color, slug string) *models.Tag {
	t.Helper()
	tag := models.Tag{Name: name, Color: color, Slug: slug}
	require.NoError(t, e.db.Create(&tag).Error)
	return &tag
}

func (e *testEnv) seedIngredient(t *testing.T, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, e.db.Create(&ingredient).Error)
	return &ingredient
}

func testImage() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("fake-image-bytes"))
}

func recipeBody(tag *models.Tag, ingredientID uuid.UUID, amount int) gin.H {
	return gin.H{
		"name":         "Borscht",
		"text":         "Cook everything together.",
		"image":        testImage(),
		"cooking_time": 40,
		"tags":         []uuid.UUID{tag.ID},
		"ingredients": []gin.H{
			{"id": ingredientID, "amount": amount},
		},
	}
}
