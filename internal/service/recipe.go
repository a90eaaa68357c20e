package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nesterovv89/sharing-recipe-service/internal/models"
)

// RecipeService handles recipe CRUD, viewer-relative flags and the
// favorite/shopping-cart toggles.
type RecipeService struct {
	db             *gorm.DB
	images         ImageStore
	minCookingTime int
	minAmount      int
}

func NewRecipeService(db *gorm.DB, images ImageStore, minCookingTime, minAmount int) *RecipeService {
	return &RecipeService{
		db:             db,
		images:         images,
		minCookingTime: minCookingTime,
		minAmount:      minAmount,
	}
}

// IngredientAmount references an ingredient with its per-recipe amount.
type IngredientAmount struct {
	ID     uuid.UUID
	Amount int
}

// RecipeInput is the write shape of a recipe.
type RecipeInput struct {
	Name        string
	Text        string
	Image       string
	CookingTime int
	TagIDs      []uuid.UUID
	Ingredients []IngredientAmount
}

// RecipeDetail is a recipe together with its viewer-relative flags.
type RecipeDetail struct {
	Recipe           models.Recipe
	IsFavorited      bool
	IsInShoppingCart bool
	AuthorSubscribed bool
}

// RecipeFilter narrows the recipe list. Favorited and InShoppingCart are
// no-ops for anonymous viewers.
type RecipeFilter struct {
	TagSlugs       []string
	AuthorID       *uuid.UUID
	Favorited      bool
	InShoppingCart bool
}

func (s *RecipeService) filterScope(viewer *uuid.UUID, f RecipeFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(f.TagSlugs) > 0 {
			db = db.Where("recipes.id IN (?)",
				s.db.Table("recipe_tags").
					Select("recipe_tags.recipe_id").
					Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
					Where("tags.slug IN ?", f.TagSlugs))
		}
		if f.AuthorID != nil {
			db = db.Where("recipes.author_id = ?", *f.AuthorID)
		}
		if viewer != nil {
			if f.Favorited {
				db = db.Where("recipes.id IN (?)",
					s.db.Table("favorites").Select("recipe_id").Where("user_id = ?", *viewer))
			}
			if f.InShoppingCart {
				db = db.Where("recipes.id IN (?)",
					s.db.Table("shopping_cart_entries").Select("recipe_id").Where("user_id = ?", *viewer))
			}
		}
		return db
	}
}

// List returns one page of recipes with viewer flags, plus the total count.
func (s *RecipeService) List(ctx context.Context, viewer *uuid.UUID, f RecipeFilter, page, limit int) ([]RecipeDetail, int64, error) {
	scope := s.filterScope(viewer, f)

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	err := s.db.WithContext(ctx).Scopes(scope).
		Preload("Author").
		Preload("Tags").
		Preload("RecipeIngredients.Ingredient").
		Order("recipes.created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}

	details, err := s.annotate(ctx, viewer, recipes)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// Get returns a single recipe with viewer flags.
func (s *RecipeService) Get(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*RecipeDetail, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("RecipeIngredients.Ingredient").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	details, err := s.annotate(ctx, viewer, []models.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// annotate computes is_favorited, is_in_shopping_cart and the author's
// is_subscribed flag for a page of recipes with three IN-queries, never one
// per row. Anonymous viewers get all-false without touching the database.
func (s *RecipeService) annotate(ctx context.Context, viewer *uuid.UUID, recipes []models.Recipe) ([]RecipeDetail, error) {
	details := make([]RecipeDetail, len(recipes))
	for i := range recipes {
		details[i].Recipe = recipes[i]
	}
	if viewer == nil || len(recipes) == 0 {
		return details, nil
	}

	recipeIDs := make([]uuid.UUID, len(recipes))
	authorIDs := make([]uuid.UUID, 0, len(recipes))
	seenAuthors := make(map[uuid.UUID]struct{}, len(recipes))
	for i, r := range recipes {
		recipeIDs[i] = r.ID
		if _, ok := seenAuthors[r.AuthorID]; !ok {
			seenAuthors[r.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, r.AuthorID)
		}
	}

	var favorited []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id IN ?", *viewer, recipeIDs).
		Pluck("recipe_id", &favorited).Error; err != nil {
		return nil, err
	}

	var inCart []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.ShoppingCartEntry{}).
		Where("user_id = ? AND recipe_id IN ?", *viewer, recipeIDs).
		Pluck("recipe_id", &inCart).Error; err != nil {
		return nil, err
	}

	var followed []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id IN ?", *viewer, authorIDs).
		Pluck("author_id", &followed).Error; err != nil {
		return nil, err
	}

	favSet := toSet(favorited)
	cartSet := toSet(inCart)
	followSet := toSet(followed)
	for i := range details {
		_, details[i].IsFavorited = favSet[details[i].Recipe.ID]
		_, details[i].IsInShoppingCart = cartSet[details[i].Recipe.ID]
		_, details[i].AuthorSubscribed = followSet[details[i].Recipe.AuthorID]
	}
	return details, nil
}

func toSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s *RecipeService) validate(input RecipeInput, requireImage bool) *ValidationError {
	verr := NewValidationError()
	if input.Name == "" {
		verr.Add("name", "required field")
	}
	if input.Text == "" {
		verr.Add("text", "required field")
	}
	if requireImage && input.Image == "" {
		verr.Add("image", "required field")
	}
	if input.CookingTime < s.minCookingTime {
		verr.Add("cooking_time", "must be at least 1 minute")
	}
	if len(input.TagIDs) == 0 {
		verr.Add("tags", "at least one tag is required")
	}
	seenTags := make(map[uuid.UUID]struct{}, len(input.TagIDs))
	for _, id := range input.TagIDs {
		if _, dup := seenTags[id]; dup {
			verr.Add("tags", "tags must be unique")
			break
		}
		seenTags[id] = struct{}{}
	}
	if len(input.Ingredients) == 0 {
		verr.Add("ingredients", "at least one ingredient is required")
	}
	seenIngredients := make(map[uuid.UUID]struct{}, len(input.Ingredients))
	for _, item := range input.Ingredients {
		if _, dup := seenIngredients[item.ID]; dup {
			verr.Add("ingredients", "ingredients must be unique")
			break
		}
		seenIngredients[item.ID] = struct{}{}
		if item.Amount < s.minAmount {
			verr.Add("amount", "must be at least 1")
		}
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// resolveTags loads the referenced tags, failing validation when any id is
// unknown.
func resolveTags(tx *gorm.DB, ids []uuid.UUID) ([]models.Tag, error) {
	var tags []models.Tag
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		verr := NewValidationError()
		verr.Add("tags", "unknown tag id")
		return nil, verr
	}
	return tags, nil
}

func checkIngredients(tx *gorm.DB, items []IngredientAmount) error {
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	var count int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		verr := NewValidationError()
		verr.Add("ingredients", "unknown ingredient id")
		return verr
	}
	return nil
}

func ingredientRows(recipeID uuid.UUID, items []IngredientAmount) []models.RecipeIngredient {
	rows := make([]models.RecipeIngredient, len(items))
	for i, item := range items {
		rows[i] = models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: item.ID,
			Amount:       item.Amount,
		}
	}
	return rows
}

// Create validates the payload, stores the image and writes the recipe row
// plus all its associations in one transaction.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, input RecipeInput) (*RecipeDetail, error) {
	if verr := s.validate(input, true); verr != nil {
		return nil, verr
	}

	imageURL, err := s.storeImage(ctx, input.Image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        input.Name,
		Text:        input.Text,
		ImageURL:    imageURL,
		CookingTime: input.CookingTime,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveTags(tx, input.TagIDs)
		if err != nil {
			return err
		}
		if err := checkIngredients(tx, input.Ingredients); err != nil {
			return err
		}
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Replace(&tags); err != nil {
			return err
		}
		rows := ingredientRows(recipe.ID, input.Ingredients)
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, &authorID, recipe.ID)
}

// Update rewrites the recipe and replaces its tag and ingredient sets
// wholesale. Only the author may update.
func (s *RecipeService) Update(ctx context.Context, actorID, id uuid.UUID, input RecipeInput) (*RecipeDetail, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if recipe.AuthorID != actorID {
		return nil, ErrForbidden
	}

	if verr := s.validate(input, false); verr != nil {
		return nil, verr
	}

	imageURL := recipe.ImageURL
	if input.Image != "" {
		url, err := s.storeImage(ctx, input.Image)
		if err != nil {
			return nil, err
		}
		imageURL = url
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveTags(tx, input.TagIDs)
		if err != nil {
			return err
		}
		if err := checkIngredients(tx, input.Ingredients); err != nil {
			return err
		}
		updates := map[string]interface{}{
			"name":         input.Name,
			"text":         input.Text,
			"image_url":    imageURL,
			"cooking_time": input.CookingTime,
		}
		if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Replace(&tags); err != nil {
			return err
		}
		// Ingredient rows are replaced wholesale rather than diffed.
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		rows := ingredientRows(recipe.ID, input.Ingredients)
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, &actorID, recipe.ID)
}

// Delete removes a recipe. Only the author may delete.
func (s *RecipeService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if recipe.AuthorID != actorID {
		return ErrForbidden
	}
	return s.db.WithContext(ctx).Select("Tags", "RecipeIngredients").Delete(&recipe).Error
}

func (s *RecipeService) storeImage(ctx context.Context, dataURI string) (string, error) {
	data, contentType, err := DecodeBase64Image(dataURI)
	if err != nil {
		verr := NewValidationError()
		verr.Add("image", err.Error())
		return "", verr
	}
	return s.images.UploadImage(ctx, data, contentType)
}

func (s *RecipeService) getRecipeRow(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// Favorite adds the recipe to the user's favorites. The unique index on
// (user, recipe) is the authoritative guard: a concurrent duplicate request
// surfaces as the same ErrAlreadyExists outcome.
func (s *RecipeService) Favorite(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.getRecipeRow(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	fav := models.Favorite{UserID: userID, RecipeID: recipeID}
	if err := s.db.WithContext(ctx).Create(&fav).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return recipe, nil
}

// Unfavorite removes the favorite row; deleting a missing row is an error.
func (s *RecipeService) Unfavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Favorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotInList
	}
	return nil
}

// AddToCart puts the recipe into the user's shopping cart.
func (s *RecipeService) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.getRecipeRow(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	entry := models.ShoppingCartEntry{UserID: userID, RecipeID: recipeID}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return recipe, nil
}

// RemoveFromCart removes the cart entry; deleting a missing row is an error.
func (s *RecipeService) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.ShoppingCartEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotInList
	}
	return nil
}
