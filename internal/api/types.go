package api

import (
	"github.com/google/uuid"

	"github.com/nesterovv89/sharing-recipe-service/internal/models"
	"github.com/nesterovv89/sharing-recipe-service/internal/service"
)

// SignupRequest creates a new account.
type SignupRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

// LoginRequest exchanges credentials for a token.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SetPasswordRequest changes the current user's password.
type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// RecipeIngredientRequest references one ingredient with its amount.
type RecipeIngredientRequest struct {
	ID     uuid.UUID `json:"id"`
	Amount int       `json:"amount"`
}

// RecipeRequest is the write shape of a recipe. Cross-field rules (empty or
// duplicate tags/ingredients, minimums, image presence) are validated in the
// service so failures come back field-scoped.
type RecipeRequest struct {
	Ingredients []RecipeIngredientRequest `json:"ingredients"`
	Tags        []uuid.UUID               `json:"tags"`
	Image       string                    `json:"image"`
	Name        string                    `json:"name"`
	Text        string                    `json:"text"`
	CookingTime int                       `json:"cooking_time"`
}

func (r RecipeRequest) toInput() service.RecipeInput {
	ingredients := make([]service.IngredientAmount, len(r.Ingredients))
	for i, item := range r.Ingredients {
		ingredients[i] = service.IngredientAmount{ID: item.ID, Amount: item.Amount}
	}
	return service.RecipeInput{
		Name:        r.Name,
		Text:        r.Text,
		Image:       r.Image,
		CookingTime: r.CookingTime,
		TagIDs:      r.Tags,
		Ingredients: ingredients,
	}
}

// UserResponse is the read shape of a user.
type UserResponse struct {
	Email        string    `json:"email"`
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
}

func toUserResponse(user models.User, isSubscribed bool) UserResponse {
	return UserResponse{
		Email:        user.Email,
		ID:           user.ID,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: isSubscribed,
	}
}

// AuthorResponse is a user plus their recipe count and a capped preview.
type AuthorResponse struct {
	UserResponse
	Recipes      []ShortRecipeResponse `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count"`
}

func toAuthorResponse(detail service.AuthorDetail) AuthorResponse {
	recipes := make([]ShortRecipeResponse, len(detail.Recipes))
	for i, r := range detail.Recipes {
		recipes[i] = toShortRecipeResponse(r)
	}
	return AuthorResponse{
		UserResponse: toUserResponse(detail.User, detail.IsSubscribed),
		Recipes:      recipes,
		RecipesCount: detail.RecipesCount,
	}
}

// RecipeIngredientResponse joins ingredient identity with the per-recipe amount.
type RecipeIngredientResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

// RecipeResponse is the full read shape of a recipe.
type RecipeResponse struct {
	ID               uuid.UUID                  `json:"id"`
	Tags             []models.Tag               `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

func toRecipeResponse(detail service.RecipeDetail) RecipeResponse {
	recipe := detail.Recipe

	var author UserResponse
	if recipe.Author != nil {
		author = toUserResponse(*recipe.Author, detail.AuthorSubscribed)
	}

	ingredients := make([]RecipeIngredientResponse, len(recipe.RecipeIngredients))
	for i, ri := range recipe.RecipeIngredients {
		resp := RecipeIngredientResponse{
			ID:     ri.IngredientID,
			Amount: ri.Amount,
		}
		if ri.Ingredient != nil {
			resp.Name = ri.Ingredient.Name
			resp.MeasurementUnit = ri.Ingredient.MeasurementUnit
		}
		ingredients[i] = resp
	}

	tags := recipe.Tags
	if tags == nil {
		tags = []models.Tag{}
	}

	return RecipeResponse{
		ID:               recipe.ID,
		Tags:             tags,
		Author:           author,
		Ingredients:      ingredients,
		IsFavorited:      detail.IsFavorited,
		IsInShoppingCart: detail.IsInShoppingCart,
		Name:             recipe.Name,
		Image:            recipe.ImageURL,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
	}
}

// ShortRecipeResponse is the compact recipe shape returned by toggles and
// author previews.
type ShortRecipeResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

func toShortRecipeResponse(recipe models.Recipe) ShortRecipeResponse {
	return ShortRecipeResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}
