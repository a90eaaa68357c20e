package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupLoginMe(t *testing.T) {
	env := setupAPI(t)
	id, token := env.signup(t, "alice")

	w := env.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var me UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, id, me.ID)
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, "alice@example.com", me.Email)

	w = env.do(t, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/users/me", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignupDuplicateEmail(t *testing.T) {
	env := setupAPI(t)
	env.signup(t, "alice")

	w := env.do(t, http.MethodPost, "/api/users", "", map[string]string{
		"email":      "alice@example.com",
		"username":   "alice2",
		"first_name": "Test",
		"last_name":  "User",
		"password":   "supersecret",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	env := setupAPI(t)
	env.signup(t, "alice")

	w := env.do(t, http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSetPasswordEndpoint(t *testing.T) {
	env := setupAPI(t)
	_, token := env.signup(t, "alice")

	w := env.do(t, http.MethodPost, "/api/users/set_password", token, map[string]string{
		"current_password": "wrong",
		"new_password":     "newpassword1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/users/set_password", token, map[string]string{
		"current_password": "supersecret",
		"new_password":     "newpassword1",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "newpassword1",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubscribeEndpoints(t *testing.T) {
	env := setupAPI(t)
	followerID, followerToken := env.signup(t, "follower")
	authorID, _ := env.signup(t, "author")

	// self-follow is rejected
	w := env.do(t, http.MethodPost, fmt.Sprintf("/api/users/%s/subscribe", followerID), followerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/users/%s/subscribe", authorID), followerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var author AuthorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &author))
	assert.Equal(t, authorID, author.ID)
	assert.True(t, author.IsSubscribed)

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/users/%s/subscribe", authorID), followerToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	var page struct {
		Count   int64            `json:"count"`
		Results []AuthorResponse `json:"results"`
	}
	w = env.do(t, http.MethodGet, "/api/users/subscriptions", followerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.EqualValues(t, 1, page.Count)
	assert.Equal(t, "author", page.Results[0].Username)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%s/subscribe", authorID), followerToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%s/subscribe", authorID), followerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListUsersEndpoint(t *testing.T) {
	env := setupAPI(t)
	_, viewerToken := env.signup(t, "viewer")
	authorID, _ := env.signup(t, "author")

	w := env.do(t, http.MethodPost, fmt.Sprintf("/api/users/%s/subscribe", authorID), viewerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var page struct {
		Count   int64          `json:"count"`
		Results []UserResponse `json:"results"`
	}
	w = env.do(t, http.MethodGet, "/api/users", viewerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.EqualValues(t, 2, page.Count)

	flags := map[string]bool{}
	for _, u := range page.Results {
		flags[u.Username] = u.IsSubscribed
	}
	assert.True(t, flags["author"])
	assert.False(t, flags["viewer"])
}

func TestLogoutEndpoint(t *testing.T) {
	env := setupAPI(t)
	_, token := env.signup(t, "alice")

	// with no token store configured logout still succeeds
	w := env.do(t, http.MethodPost, "/api/auth/token/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
