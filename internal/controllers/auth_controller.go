package controllers

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"gowheels/internal/middleware"
	"gowheels/internal/models"
	"gowheels/internal/store"
)

// BcryptCost is the hashing cost for new passwords.
var BcryptCost = 12

type authResponse struct {
	*models.User
	Token string `json:"token"`
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

var (
	unknownUserHashOnce sync.Once
	unknownUserHash     []byte
)

// checkPassword reports whether password matches the user's hash. A nil user
// is compared against a fixed hash of the same cost and never matches.
func checkPassword(user *models.User, password string) bool {
	unknownUserHashOnce.Do(func() {
		unknownUserHash, _ = bcrypt.GenerateFromPassword([]byte("gowheels-unknown-user"), BcryptCost)
	})
	hash := unknownUserHash
	if user != nil {
		hash = []byte(user.PasswordHash)
	}
	matched := bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
	return matched && user != nil
}

// Register creates a customer account. Uniqueness is left to the email
// index so concurrent sign-ups cannot both succeed.
func (h *Handler) Register(c *gin.Context) {
	body, ok := bindBody(c)
	if !ok {
		return
	}
	p := payload(body)

	for _, f := range []struct{ key, label, code string }{
		{"email", "Email", "MISSING_EMAIL"},
		{"name", "Name", "MISSING_NAME"},
		{"phone", "Phone", "MISSING_PHONE"},
		{"password", "Password", "MISSING_PASSWORD"},
	} {
		if s, isStr := p[f.key].(string); !isStr || strings.TrimSpace(s) == "" {
			respondError(c, http.StatusBadRequest, f.label+" is required", f.code)
			return
		}
	}

	email, _ := p.str("email")
	name, _ := p.str("name")
	phone, _ := p.str("phone")
	password := p["password"].(string)

	hash, err := hashPassword(password)
	if err != nil {
		respondInternal(c, "Register", err)
		return
	}

	user := &models.User{
		Email:        strings.ToLower(email),
		Name:         name,
		Phone:        phone,
		PasswordHash: hash,
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if err := h.Store.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			respondError(c, http.StatusConflict, "Email already exists", "DUPLICATE_EMAIL")
			return
		}
		respondInternal(c, "Register", err)
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Role)
	if err != nil {
		respondInternal(c, "Register", err)
		return
	}
	c.JSON(http.StatusCreated, authResponse{User: user, Token: token})
}

// Login checks credentials. Unknown emails and wrong passwords get the same
// answer.
func (h *Handler) Login(c *gin.Context) {
	body, ok := bindBody(c)
	if !ok {
		return
	}
	p := payload(body)

	email, _ := p.str("email")
	if email == "" {
		respondError(c, http.StatusBadRequest, "Email is required", "MISSING_EMAIL")
		return
	}
	password, isStr := p["password"].(string)
	if !isStr || password == "" {
		respondError(c, http.StatusBadRequest, "Password is required", "MISSING_PASSWORD")
		return
	}

	ctx := c.Request.Context()
	user, err := h.Store.UserByEmail(ctx, email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		respondInternal(c, "Login", err)
		return
	}
	if !checkPassword(user, password) {
		respondError(c, http.StatusUnauthorized, "Invalid email or password", "INVALID_CREDENTIALS")
		return
	}
	if !user.IsActive {
		respondError(c, http.StatusForbidden, "Account is not active. Please contact support.", "ACCOUNT_INACTIVE")
		return
	}

	user, err = h.Store.TouchLastLogin(ctx, user.ID, time.Now().UTC())
	if err != nil {
		respondInternal(c, "Login", err)
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Role)
	if err != nil {
		respondInternal(c, "Login", err)
		return
	}
	c.JSON(http.StatusOK, authResponse{User: user, Token: token})
}

// Me returns the user named by ?userId=, or the bearer token's user.
func (h *Handler) Me(c *gin.Context) {
	var userID uint
	if raw, present := c.GetQuery("userId"); present {
		id, ok := parseID(raw)
		if !ok {
			respondError(c, http.StatusBadRequest, "Valid user ID is required", "INVALID_USER_ID")
			return
		}
		userID = id
	} else if id, ok := middleware.CurrentUserID(c); ok {
		userID = id
	} else {
		respondError(c, http.StatusBadRequest, "User ID is required", "MISSING_USER_ID")
		return
	}

	user, err := h.Store.ActiveUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "User not found or inactive", "USER_NOT_FOUND")
			return
		}
		respondInternal(c, "Me", err)
		return
	}
	c.JSON(http.StatusOK, user)
}
