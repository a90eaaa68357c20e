package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nesterovv89/sharing-recipe-service/internal/models"
)

func TestCreateRecipeValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestRecipeService(db)
	author := createTestUser(t, db, "author")
	tag := createTestTag(t, db, "Dinner", "#eb3480", "dinner")
	potato := createTestIngredient(t, db, "potato", "g")

	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*RecipeInput)
		field  string
	}{
		{
			name:   "duplicate ingredient",
			mutate: func(in *RecipeInput) { in.Ingredients = append(in.Ingredients, in.Ingredients[0]) },
			field:  "ingredients",
		},
		{
			name:   "amount below minimum",
			mutate: func(in *RecipeInput) { in.Ingredients[0].Amount = 0 },
			field:  "amount",
		},
		{
			name:   "no tags",
			mutate: func(in *RecipeInput) { in.TagIDs = nil },
			field:  "tags",
		},
		{
			name:   "duplicate tag",
			mutate: func(in *RecipeInput) { in.TagIDs = append(in.TagIDs, in.TagIDs[0]) },
			field:  "tags",
		},
		{
			name:   "no ingredients",
			mutate: func(in *RecipeInput) { in.Ingredients = nil },
			field:  "ingredients",
		},
		{
			name:   "missing image",
			mutate: func(in *RecipeInput) { in.Image = "" },
			field:  "image",
		},
		{
			name:   "cooking time below minimum",
			mutate: func(in *RecipeInput) { in.CookingTime = 0 },
			field:  "cooking_time",
		},
		{
			name:   "unknown ingredient id",
			mutate: func(in *RecipeInput) { in.Ingredients[0].ID = uuid.New() },
			field:  "ingredients",
		},
		{
			name:   "unknown tag id",
			mutate: func(in *RecipeInput) { in.TagIDs = []uuid.UUID{uuid.New()} },
			field:  "tags",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validRecipeInput(tag, IngredientAmount{ID: potato.ID, Amount: 100})
			tc.mutate(&input)

			_, err := svc.Create(ctx, author.ID, input)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}

	// nothing should have been written
	var count int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateRecipeRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestRecipeService(db)
	author := createTestUser(t, db, "author")
	tag := createTestTag(t, db, "Dinner", "#eb3480", "dinner")
	potato := createTestIngredient(t, db, "potato", "g")
	beet := createTestIngredient(t, db, "beet", "g")

	ctx := context.Background()
	input := validRecipeInput(tag,
		IngredientAmount{ID: potato.ID, Amount: 100},
		IngredientAmount{ID: beet.ID, Amount: 200},
	)

	created, err := svc.Create(ctx, author.ID, input)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.Recipe.ID)
	assert.NotEmpty(t, created.Recipe.ImageURL)

	got, err := svc.Get(ctx, &author.ID, created.Recipe.ID)
	require.NoError(t, err)

	assert.Equal(t, input.Name, got.Recipe.Name)
	assert.Equal(t, input.Text, got.Recipe.Text)
	assert.Equal(t, input.CookingTime, got.Recipe.CookingTime)
	require.Len(t, got.Recipe.Tags, 1)
	assert.Equal(t, tag.ID, got.Recipe.Tags[0].ID)

	amounts := map[uuid.UUID]int{}
	for _, ri := range got.Recipe.RecipeIngredients {
		amounts[ri.IngredientID] = ri.Amount
	}
	assert.Equal(t, map[uuid.UUID]int{potato.ID: 100, beet.ID: 200}, amounts)

	assert.False(t, got.IsFavorited)
	assert.False(t, got.IsInShoppingCart)
}

func TestUpdateReplacesIngredientsWholesale(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestRecipeService(db)
	author := createTestUser(t, db, "author")
	tag := createTestTag(t, db, "Dinner", "#eb3480", "dinner")
	a := createTestIngredient(t, db, "a", "g")
	b := createTestIngredient(t, db, "b", "g")

	ctx := context.Background()
	created, err := svc.Create(ctx, author.ID, validRecipeInput(tag, IngredientAmount{ID: a.ID, Amount: 1}))
	require.NoError(t, err)

	update := validRecipeInput(tag, IngredientAmount{ID: b.ID, Amount: 1})
	update.Image = ""
	_, err = svc.Update(ctx, author.ID, created.Recipe.ID, update)
	require.NoError(t, err)

	var rows []models.RecipeIngredient
	require.NoError(t, db.Where("recipe_id = ?", created.Recipe.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, b.ID, rows[0].IngredientID)
	assert.Equal(t, 1, rows[0].Amount)
}

func TestUpdateKeepsImageWhenOmitted(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestRecipeService(db)
	author := createTestUser(t, db, "author")
	tag := createTestTag(t, db, "Dinner", "#eb3480", "dinner")
	a := createTestIngredient(t, db, "a", "g")

	ctx := context.Background()
	created, err := svc.Create(ctx, author.ID, validRecipeInput(tag, IngredientAmount{ID: a.ID, Amount: 1}))
	require.NoError(t, err)

	update := validRecipeInput(tag, IngredientAmount{ID: a.ID, Amount: 2})
	update.Image = ""
	updated, err := svc.Update(ctx, author.ID, created.Recipe.ID, update)
	require.NoError(t, err)
	assert.Equal(t, created.Recipe.ImageURL, updated.Recipe.ImageURL)
}

func TestUpdateForbiddenForNonAuthor(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestRecipeService(db)
	author := createTestUser(t, db, "author")
	stranger := createTestUser(t, db, "stranger")
	tag := createTestTag(t, db, "Dinner", "#eb3480", "dinner")
	a := createTestIngredient(t, db, "a", "g")

	ctx := context.Background()
	created, err := svc.Create(ctx, author.ID, validRecipeInput(tag, IngredientAmount{ID: a.ID, Amount: 1}))
	require.NoError(t, err)

	_, err = svc.Update(ctx, stranger.ID, created.Recipe.ID, validRecipeInput(tag, IngredientAmount{ID: a.ID, Amount: 1}))
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.Delete(ctx, stranger.ID, created.Recipe.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestFavoriteToggle(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestRecipeService(db)
	author := createTestUser(t, db, "author")
	viewer := createTestUser(t, db, "viewer")
	tag := createTestTag(t, db, "Dinner", "#eb3480", "dinner")
	a := createTestIngredient(t, db, "a", "g")

	ctx := context.Background()
	created, err := svc.Create(ctx, author.ID, validRecipeInput(tag, IngredientAmount{ID: a.ID, Amount: 1}))
	require.NoError(t, err)
	recipeID := created.Recipe.ID

	recipe, err := svc.Favorite(ctx, viewer.ID, recipeID)
	require.NoError(t, err)
	assert.Equal(t, recipeID, recipe.ID)

	_, err = svc.Favorite(ctx, viewer.ID, recipeID)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	require.NoError(t, svc.Unfavorite(ctx, viewer.ID, recipeID))
	assert.ErrorIs(t, svc.Unfavorite(ctx, viewer.ID, recipeID), ErrNotInList)

	_, err = svc.Favorite(ctx, viewer.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCartToggle(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestRecipeService(db)
	author := createTestUser(t, db, "author")
	viewer := createTestUser(t, db, "viewer")
	tag := createTestTag(t, db, "Dinner", "#eb3480", "dinner")
	a := createTestIngredient(t, db, "a", "g")

	ctx := context.Background()
	created, err := svc.Create(ctx, author.ID, validRecipeInput(tag, IngredientAmount{ID: a.ID, Amount: 1}))
	require.NoError(t, err)
	recipeID := created.Recipe.ID

	_, err = svc.AddToCart(ctx, viewer.ID, recipeID)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, viewer.ID, recipeID)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	require.NoError(t, svc.RemoveFromCart(ctx, viewer.ID, recipeID))
	assert.ErrorIs(t, svc.RemoveFromCart(ctx, viewer.ID, recipeID), ErrNotInList)
}

func TestViewerFlags(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestRecipeService(db)
	author := createTestUser(t, db, "author")
	viewer := createTestUser(t, db, "viewer")
	tag := createTestTag(t, db, "Dinner", "#eb3480", "dinner")
	a := createTestIngredient(t, db, "a", "g")

	ctx := context.Background()
	r1, err := svc.Create(ctx, author.ID, validRecipeInput(tag, IngredientAmount{ID: a.ID, Amount: 1}))
	require.NoError(t, err)
	r2, err := svc.Create(ctx, author.ID, validRecipeInput(tag, IngredientAmount{ID: a.ID, Amount: 2}))
	require.NoError(t, err)

	_, err = svc.Favorite(ctx, viewer.ID, r1.Recipe.ID)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, viewer.ID, r2.Recipe.ID)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Follow{UserID: viewer.ID, AuthorID: author.ID}).Error)

	details, total, err := svc.List(ctx, &viewer.ID, RecipeFilter{}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	byID := map[uuid.UUID]RecipeDetail{}
	for _, d := range details {
		byID[d.Recipe.ID] = d
	}
	assert.True(t, byID[r1.Recipe.ID].IsFavorited)
	assert.False(t, byID[r1.Recipe.ID].IsInShoppingCart)
	assert.False(t, byID[r2.Recipe.ID].IsFavorited)
	assert.True(t, byID[r2.Recipe.ID].IsInShoppingCart)
	assert.True(t, byID[r1.Recipe.ID].AuthorSubscribed)

	// anonymous viewers always see false flags
	details, _, err = svc.List(ctx, nil, RecipeFilter{}, 1, 10)
	require.NoError(t, err)
	for _, d := range details {
		assert.False(t, d.IsFavorited)
		assert.False(t, d.IsInShoppingCart)
		assert.False(t, d.AuthorSubscribed)
	}
}

func TestListFilters(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestRecipeService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	dinner := createTestTag(t, db, "Dinner", "#eb3480", "dinner")
	lunch := createTestTag(t, db, "Lunch", "#34eba8", "lunch")
	a := createTestIngredient(t, db, "a", "g")

	ctx := context.Background()
	aliceRecipe, err := svc.Create(ctx, alice.ID, validRecipeInput(dinner, IngredientAmount{ID: a.ID, Amount: 1}))
	require.NoError(t, err)
	bobInput := validRecipeInput(lunch, IngredientAmount{ID: a.ID, Amount: 1})
	bobRecipe, err := svc.Create(ctx, bob.ID, bobInput)
	require.NoError(t, err)

	_, total, err := svc.List(ctx, nil, RecipeFilter{TagSlugs: []string{"dinner"}}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = svc.List(ctx, nil, RecipeFilter{TagSlugs: []string{"dinner", "lunch"}}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	details, total, err := svc.List(ctx, nil, RecipeFilter{AuthorID: &bob.ID}, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, bobRecipe.Recipe.ID, details[0].Recipe.ID)

	// favorited filter restricts to the viewer's favorites
	_, err = svc.Favorite(ctx, bob.ID, aliceRecipe.Recipe.ID)
	require.NoError(t, err)
	details, total, err = svc.List(ctx, &bob.ID, RecipeFilter{Favorited: true}, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, aliceRecipe.Recipe.ID, details[0].Recipe.ID)

	// the same filter is a no-op for anonymous viewers
	_, total, err = svc.List(ctx, nil, RecipeFilter{Favorited: true, InShoppingCart: true}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestDeleteRecipeRemovesAssociations(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestRecipeService(db)
	author := createTestUser(t, db, "author")
	tag := createTestTag(t, db, "Dinner", "#eb3480", "dinner")
	a := createTestIngredient(t, db, "a", "g")

	ctx := context.Background()
	created, err := svc.Create(ctx, author.ID, validRecipeInput(tag, IngredientAmount{ID: a.ID, Amount: 1}))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, author.ID, created.Recipe.ID))

	_, err = svc.Get(ctx, nil, created.Recipe.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	var rows int64
	require.NoError(t, db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", created.Recipe.ID).Count(&rows).Error)
	assert.Zero(t, rows)
}
