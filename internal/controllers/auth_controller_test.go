package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowheels/internal/models"
)

type authBody struct {
	models.User
	Token string `json:"token"`
}

func registerBody(email string) map[string]interface{} {
	return map[string]interface{}{
		"email":    email,
		"name":     "Asha Rao",
		"phone":    "+919811111111",
		"password": "s3cret-pass",
	}
}

func TestRegister(t *testing.T) {
	e := newTestEnv(t)

	w := e.do("POST", "/api/auth/register", registerBody("  Asha@Example.com "), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	got := decode[authBody](t, w)
	assert.Equal(t, "asha@example.com", got.Email)
	assert.Equal(t, models.RoleUser, got.Role)
	assert.True(t, got.IsActive)
	assert.NotEmpty(t, got.Token)
	assert.NotContains(t, w.Body.String(), "passwordHash")

	t.Run("duplicate email", func(t *testing.T) {
		w := e.do("POST", "/api/auth/register", registerBody("ASHA@example.com"), "")
		body := assertError(t, w, http.StatusConflict, "DUPLICATE_EMAIL")
		assert.Equal(t, "Email already exists", body.Error)
	})

	t.Run("role cannot be chosen", func(t *testing.T) {
		req := registerBody("mallory@example.com")
		req["role"] = models.RoleAdmin
		w := e.do("POST", "/api/auth/register", req, "")
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, models.RoleUser, decode[authBody](t, w).Role)
	})

	for _, tc := range []struct{ field, code string }{
		{"email", "MISSING_EMAIL"},
		{"name", "MISSING_NAME"},
		{"phone", "MISSING_PHONE"},
		{"password", "MISSING_PASSWORD"},
	} {
		t.Run("missing "+tc.field, func(t *testing.T) {
			req := registerBody("missing@example.com")
			delete(req, tc.field)
			assertError(t, e.do("POST", "/api/auth/register", req, ""), http.StatusBadRequest, tc.code)
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		assertError(t, e.do("POST", "/api/auth/register", "{not json", ""), http.StatusBadRequest, "INVALID_JSON")
	})
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)
	require.Equal(t, http.StatusCreated, e.do("POST", "/api/auth/register", registerBody("asha@example.com"), "").Code)

	w := e.do("POST", "/api/auth/login", map[string]string{"email": "ASHA@example.com", "password": "s3cret-pass"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[authBody](t, w)
	assert.NotEmpty(t, got.Token)
	assert.NotNil(t, got.LastLoginAt)

	wrongPassword := assertError(t,
		e.do("POST", "/api/auth/login", map[string]string{"email": "asha@example.com", "password": "nope"}, ""),
		http.StatusUnauthorized, "INVALID_CREDENTIALS")
	unknownEmail := assertError(t,
		e.do("POST", "/api/auth/login", map[string]string{"email": "ghost@example.com", "password": "nope"}, ""),
		http.StatusUnauthorized, "INVALID_CREDENTIALS")
	assert.Equal(t, wrongPassword.Error, unknownEmail.Error)

	assertError(t, e.do("POST", "/api/auth/login", map[string]string{"password": "x"}, ""), http.StatusBadRequest, "MISSING_EMAIL")
	assertError(t, e.do("POST", "/api/auth/login", map[string]string{"email": "asha@example.com"}, ""), http.StatusBadRequest, "MISSING_PASSWORD")

	t.Run("inactive account", func(t *testing.T) {
		_, err := e.store.SetUserActive(t.Context(), got.ID, false)
		require.NoError(t, err)
		w := e.do("POST", "/api/auth/login", map[string]string{"email": "asha@example.com", "password": "s3cret-pass"}, "")
		assertError(t, w, http.StatusForbidden, "ACCOUNT_INACTIVE")
	})
}

func TestMe(t *testing.T) {
	e := newTestEnv(t)
	u, token := e.createUser("me@example.com", models.RoleUser)

	w := e.do("GET", "/api/auth/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, u.Email, decode[models.User](t, w).Email)

	w = e.do("GET", fmt.Sprintf("/api/auth/me?userId=%d", u.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	assertError(t, e.do("GET", "/api/auth/me?userId=abc", nil, ""), http.StatusBadRequest, "INVALID_USER_ID")
	assertError(t, e.do("GET", "/api/auth/me", nil, ""), http.StatusBadRequest, "MISSING_USER_ID")
	assertError(t, e.do("GET", "/api/auth/me?userId=999", nil, ""), http.StatusNotFound, "USER_NOT_FOUND")

	_, err := e.store.SetUserActive(t.Context(), u.ID, false)
	require.NoError(t, err)
	assertError(t, e.do("GET", "/api/auth/me", nil, token), http.StatusNotFound, "USER_NOT_FOUND")
}

func TestUpdateProfile(t *testing.T) {
	e := newTestEnv(t)
	u, _ := e.createUser("profile@example.com", models.RoleUser)
	path := fmt.Sprintf("/api/users/profile?userId=%d", u.ID)

	w := e.do("PUT", path, map[string]interface{}{"name": "  New Name ", "profileImageUrl": "/me.png"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[models.User](t, w)
	assert.Equal(t, "New Name", got.Name)
	require.NotNil(t, got.ProfileImageURL)
	assert.Equal(t, "/me.png", *got.ProfileImageURL)

	w = e.do("PUT", path, map[string]interface{}{"profileImageUrl": nil}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[models.User](t, w).ProfileImageURL)

	assertError(t, e.do("PUT", path, map[string]interface{}{}, ""), http.StatusBadRequest, "NO_FIELDS_PROVIDED")
	assertError(t, e.do("PUT", path, map[string]interface{}{"name": 5}, ""), http.StatusBadRequest, "INVALID_NAME_TYPE")
	assertError(t, e.do("PUT", path, map[string]interface{}{"name": "  "}, ""), http.StatusBadRequest, "EMPTY_NAME")
	assertError(t, e.do("PUT", path, map[string]interface{}{"phone": true}, ""), http.StatusBadRequest, "INVALID_PHONE_TYPE")
	assertError(t, e.do("PUT", path, map[string]interface{}{"phone": ""}, ""), http.StatusBadRequest, "EMPTY_PHONE")
	assertError(t, e.do("PUT", path, map[string]interface{}{"profileImageUrl": 3}, ""), http.StatusBadRequest, "INVALID_PROFILE_IMAGE_TYPE")
	assertError(t, e.do("PUT", "/api/users/profile?userId=x", map[string]interface{}{"name": "n"}, ""), http.StatusBadRequest, "INVALID_USER_ID")
	assertError(t, e.do("PUT", "/api/users/profile?userId=999", map[string]interface{}{"name": "n"}, ""), http.StatusNotFound, "USER_NOT_FOUND")
}

func TestAdminUsers(t *testing.T) {
	e := newTestEnv(t)
	_, adminToken := e.createUser("admin@example.com", models.RoleAdmin)
	u, userToken := e.createUser("customer@example.com", models.RoleUser)

	assertError(t, e.do("GET", "/api/admin/users", nil, ""), http.StatusUnauthorized, "UNAUTHORIZED")
	assertError(t, e.do("GET", "/api/admin/users", nil, userToken), http.StatusForbidden, "FORBIDDEN")

	w := e.do("GET", "/api/admin/users?search=CUSTOMER", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	users := decode[[]models.User](t, w)
	require.Len(t, users, 1)
	assert.Equal(t, u.ID, users[0].ID)

	w = e.do("PATCH", fmt.Sprintf("/api/admin/users/%d/status", u.ID), map[string]bool{"isActive": false}, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, decode[models.User](t, w).IsActive)

	w = e.do("GET", "/api/admin/users?isActive=false", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.User](t, w), 1)
}
