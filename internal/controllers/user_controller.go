package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gowheels/internal/middleware"
	"gowheels/internal/models"
	"gowheels/internal/store"
)

// UpdateProfile changes name, phone or profile image of a user.
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := parseID(c.Query("userId"))
	if !ok {
		if _, present := c.GetQuery("userId"); present {
			respondError(c, http.StatusBadRequest, "Valid user ID is required", "INVALID_USER_ID")
			return
		}
		if userID, ok = middleware.CurrentUserID(c); !ok {
			respondError(c, http.StatusBadRequest, "Valid user ID is required", "INVALID_USER_ID")
			return
		}
	}

	body, ok := bindBody(c)
	if !ok {
		return
	}
	p := payload(body)

	if !p.has("name") && !p.has("phone") && !p.has("profileImageUrl") {
		respondError(c, http.StatusBadRequest, "At least one field (name, phone, profileImageUrl) must be provided", "NO_FIELDS_PROVIDED")
		return
	}

	fields := map[string]interface{}{}
	if p.has("name") {
		name, isStr := p["name"].(string)
		if !isStr {
			respondError(c, http.StatusBadRequest, "Name must be a string", "INVALID_NAME_TYPE")
			return
		}
		if strings.TrimSpace(name) == "" {
			respondError(c, http.StatusBadRequest, "Name cannot be empty", "EMPTY_NAME")
			return
		}
		fields["name"] = strings.TrimSpace(name)
	}
	if p.has("phone") {
		phone, isStr := p["phone"].(string)
		if !isStr {
			respondError(c, http.StatusBadRequest, "Phone must be a string", "INVALID_PHONE_TYPE")
			return
		}
		if strings.TrimSpace(phone) == "" {
			respondError(c, http.StatusBadRequest, "Phone cannot be empty", "EMPTY_PHONE")
			return
		}
		fields["phone"] = strings.TrimSpace(phone)
	}
	if p.has("profileImageUrl") {
		switch v := p["profileImageUrl"].(type) {
		case nil:
			fields["profile_image_url"] = nil
		case string:
			fields["profile_image_url"] = strings.TrimSpace(v)
		default:
			respondError(c, http.StatusBadRequest, "Profile image URL must be a string or null", "INVALID_PROFILE_IMAGE_TYPE")
			return
		}
	}

	user, err := h.Store.UpdateUser(c.Request.Context(), userID, fields)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "User not found", "USER_NOT_FOUND")
			return
		}
		respondInternal(c, "UpdateProfile", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers is the admin user directory.
func (h *Handler) ListUsers(c *gin.Context) {
	isActive, ok := optionalBool(c, "isActive")
	if !ok {
		respondError(c, http.StatusBadRequest, "isActive must be true or false", "INVALID_IS_ACTIVE")
		return
	}
	role := c.Query("role")
	if role != "" && !models.IsValidRole(role) {
		respondError(c, http.StatusBadRequest, "Invalid role", "INVALID_ROLE")
		return
	}

	users, err := h.Store.ListUsers(c.Request.Context(), store.UserFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Role:     role,
		IsActive: isActive,
	}, page(c))
	if err != nil {
		respondInternal(c, "ListUsers", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// SetUserStatus activates or deactivates an account. Users are never
// hard-deleted.
func (h *Handler) SetUserStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Valid ID is required", "INVALID_ID")
		return
	}
	body, ok := bindBody(c)
	if !ok {
		return
	}
	active, ok := payload(body).boolean("isActive")
	if !ok {
		respondError(c, http.StatusBadRequest, "isActive must be a boolean", "INVALID_IS_ACTIVE")
		return
	}

	user, err := h.Store.SetUserActive(c.Request.Context(), id, active)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "User not found", "USER_NOT_FOUND")
			return
		}
		respondInternal(c, "SetUserStatus", err)
		return
	}
	c.JSON(http.StatusOK, user)
}
