package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"gowheels/internal/models"
	"gowheels/internal/store"
)

// numericSettings must hold a non-negative number.
var numericSettings = map[string]bool{
	models.SettingTaxRate:            true,
	models.SettingDepositPercentage:  true,
	models.SettingMaxBookingDays:     true,
	models.SettingPlatformCommission: true,
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.Reports.Dashboard(c.Request.Context())
	if err != nil {
		respondInternal(c, "Stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) ListSettings(c *gin.Context) {
	settings, err := h.Store.Settings(c.Request.Context())
	if err != nil {
		respondInternal(c, "ListSettings", err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *Handler) GetSetting(c *gin.Context) {
	setting, err := h.Store.Setting(c.Request.Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Setting not found", "SETTING_NOT_FOUND")
			return
		}
		respondInternal(c, "GetSetting", err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

// PutSetting creates or replaces a setting. Values may be sent as JSON
// strings or numbers and are stored as text.
func (h *Handler) PutSetting(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		respondError(c, http.StatusBadRequest, "Setting key is required", "MISSING_SETTING_KEY")
		return
	}
	body, ok := bindBody(c)
	if !ok {
		return
	}
	p := payload(body)

	var value string
	switch v := p["settingValue"].(type) {
	case string:
		value = strings.TrimSpace(v)
	case float64:
		value = strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		value = strconv.FormatBool(v)
	}
	if value == "" {
		respondError(c, http.StatusBadRequest, "settingValue is required", "MISSING_SETTING_VALUE")
		return
	}
	if numericSettings[key] {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			respondError(c, http.StatusBadRequest, key+" must be a non-negative number", "INVALID_SETTING_VALUE")
			return
		}
	}

	var description *string
	if p.has("description") {
		d, ok := p.optStr("description")
		if !ok {
			respondError(c, http.StatusBadRequest, "description must be a string", "INVALID_DESCRIPTION")
			return
		}
		description = d
	}

	setting, err := h.Store.UpsertSetting(c.Request.Context(), key, value, description)
	if err != nil {
		respondInternal(c, "PutSetting", err)
		return
	}
	c.JSON(http.StatusOK, setting)
}
