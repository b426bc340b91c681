package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gowheels/internal/models"
	"gowheels/internal/pricing"
	"gowheels/internal/store"
)

// vehicleForInsurance loads the vehicle named by the path and writes the
// 404 itself.
func (h *Handler) vehicleForInsurance(c *gin.Context, handler string) (*models.Vehicle, bool) {
	id, ok := idParam(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Valid vehicle ID is required", "INVALID_VEHICLE_ID")
		return nil, false
	}
	v, err := h.Store.VehicleByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Vehicle not found", "VEHICLE_NOT_FOUND")
			return nil, false
		}
		respondInternal(c, handler, err)
		return nil, false
	}
	return v, true
}

func (h *Handler) ListInsuranceOptions(c *gin.Context) {
	v, ok := h.vehicleForInsurance(c, "ListInsuranceOptions")
	if !ok {
		return
	}
	options, err := h.Store.InsuranceOptions(c.Request.Context(), v.ID)
	if err != nil {
		respondInternal(c, "ListInsuranceOptions", err)
		return
	}
	c.JSON(http.StatusOK, options)
}

func (h *Handler) CreateInsuranceOption(c *gin.Context) {
	v, ok := h.vehicleForInsurance(c, "CreateInsuranceOption")
	if !ok {
		return
	}
	body, ok := bindBody(c)
	if !ok {
		return
	}
	p := payload(body)
	if missing := p.firstMissing("type", "pricePerDay", "description"); missing != "" {
		respondError(c, http.StatusBadRequest, missing+" is required", "MISSING_REQUIRED_FIELD")
		return
	}
	price, ok := p.number("pricePerDay")
	if !ok || price <= 0 {
		respondError(c, http.StatusBadRequest, "pricePerDay must be a positive number", "INVALID_PRICE")
		return
	}

	opt := &models.VehicleInsuranceOption{VehicleID: v.ID, PricePerDay: pricing.Round(price)}
	opt.Type, _ = p.str("type")
	opt.Description, _ = p.str("description")
	if err := h.Store.CreateInsuranceOption(c.Request.Context(), opt); err != nil {
		respondInternal(c, "CreateInsuranceOption", err)
		return
	}
	c.JSON(http.StatusCreated, opt)
}
