package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nesterovv89/sharing-recipe-service/internal/middleware"
	"github.com/nesterovv89/sharing-recipe-service/internal/service"
)

// RecipeHandler exposes recipe CRUD, the favorite and shopping-cart toggles
// and the shopping-list download.
type RecipeHandler struct {
	recipes     *service.RecipeService
	shopping    *service.ShoppingListService
	authService middleware.TokenValidator
	pagination  Pagination
}

func NewRecipeHandler(recipes *service.RecipeService, shopping *service.ShoppingListService, authService middleware.TokenValidator, pagination Pagination) *RecipeHandler {
	return &RecipeHandler{
		recipes:     recipes,
		shopping:    shopping,
		authService: authService,
		pagination:  pagination,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", middleware.OptionalAuthMiddleware(h.authService), h.ListRecipes)
		recipes.GET("/download_shopping_cart", middleware.AuthMiddleware(h.authService), h.DownloadShoppingCart)
		recipes.GET("/:id", middleware.OptionalAuthMiddleware(h.authService), h.GetRecipe)
		recipes.POST("", middleware.AuthMiddleware(h.authService), h.CreateRecipe)
		recipes.PATCH("/:id", middleware.AuthMiddleware(h.authService), h.UpdateRecipe)
		recipes.PUT("/:id", middleware.AuthMiddleware(h.authService), h.UpdateRecipe)
		recipes.DELETE("/:id", middleware.AuthMiddleware(h.authService), h.DeleteRecipe)
		recipes.POST("/:id/favorite", middleware.AuthMiddleware(h.authService), h.FavoriteRecipe)
		recipes.DELETE("/:id/favorite", middleware.AuthMiddleware(h.authService), h.UnfavoriteRecipe)
		recipes.POST("/:id/shopping_cart", middleware.AuthMiddleware(h.authService), h.AddToShoppingCart)
		recipes.DELETE("/:id/shopping_cart", middleware.AuthMiddleware(h.authService), h.RemoveFromShoppingCart)
	}
}

func parseFilter(c *gin.Context) service.RecipeFilter {
	f := service.RecipeFilter{
		TagSlugs: c.QueryArray("tags"),
	}
	if author := c.Query("author"); author != "" {
		if id, err := uuid.Parse(author); err == nil {
			f.AuthorID = &id
		}
	}
	f.Favorited = boolParam(c.Query("is_favorited"))
	f.InShoppingCart = boolParam(c.Query("is_in_shopping_cart"))
	return f
}

func boolParam(v string) bool {
	return v == "1" || v == "true"
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	page, limit := h.pagination.Parse(c)

	details, total, err := h.recipes.List(c.Request.Context(), viewerID(c), parseFilter(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]RecipeResponse, len(details))
	for i, d := range details {
		results[i] = toRecipeResponse(d)
	}
	c.JSON(http.StatusOK, PageResponse{Count: total, Results: results})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	detail, err := h.recipes.Get(c.Request.Context(), viewerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecipeResponse(*detail))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	viewer := viewerID(c)
	if viewer == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	detail, err := h.recipes.Create(c.Request.Context(), *viewer, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRecipeResponse(*detail))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	viewer := viewerID(c)
	if viewer == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	detail, err := h.recipes.Update(c.Request.Context(), *viewer, id, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecipeResponse(*detail))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	viewer := viewerID(c)
	if viewer == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), *viewer, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) withToggle(c *gin.Context, op func(*gin.Context, uuid.UUID, uuid.UUID) error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}
	viewer := viewerID(c)
	if viewer == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	if err := op(c, *viewer, id); err != nil {
		respondError(c, err)
	}
}

func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	h.withToggle(c, func(c *gin.Context, userID, recipeID uuid.UUID) error {
		recipe, err := h.recipes.Favorite(c.Request.Context(), userID, recipeID)
		if err != nil {
			return err
		}
		c.JSON(http.StatusCreated, toShortRecipeResponse(*recipe))
		return nil
	})
}

func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	h.withToggle(c, func(c *gin.Context, userID, recipeID uuid.UUID) error {
		if err := h.recipes.Unfavorite(c.Request.Context(), userID, recipeID); err != nil {
			return err
		}
		c.Status(http.StatusNoContent)
		return nil
	})
}

func (h *RecipeHandler) AddToShoppingCart(c *gin.Context) {
	h.withToggle(c, func(c *gin.Context, userID, recipeID uuid.UUID) error {
		recipe, err := h.recipes.AddToCart(c.Request.Context(), userID, recipeID)
		if err != nil {
			return err
		}
		c.JSON(http.StatusCreated, toShortRecipeResponse(*recipe))
		return nil
	})
}

func (h *RecipeHandler) RemoveFromShoppingCart(c *gin.Context) {
	h.withToggle(c, func(c *gin.Context, userID, recipeID uuid.UUID) error {
		if err := h.recipes.RemoveFromCart(c.Request.Context(), userID, recipeID); err != nil {
			return err
		}
		c.Status(http.StatusNoContent)
		return nil
	})
}

// DownloadShoppingCart returns the aggregated shopping list as a text
// attachment.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	viewer := viewerID(c)
	if viewer == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	items, err := h.shopping.Build(c.Request.Context(), *viewer)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_cart.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(service.Render(items)))
}
