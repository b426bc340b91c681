package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gowheels/internal/pricing"
	"gowheels/internal/store"
)

// rates reads the pricing settings, falling back to defaults.
func (h *Handler) rates(ctx context.Context, s *store.Store) (pricing.Rates, error) {
	values, err := s.SettingValues(ctx)
	if err != nil {
		return pricing.Rates{}, err
	}
	return pricing.RatesFromSettings(values), nil
}

// extrasFrom reads the extrasInsurance/extrasDriver/extrasChildSeat flags.
func extrasFrom(p payload, base pricing.Extras) (pricing.Extras, *apiError) {
	for key, dst := range map[string]*bool{
		"extrasInsurance": &base.Insurance,
		"extrasDriver":    &base.Driver,
		"extrasChildSeat": &base.ChildSeat,
	} {
		if !p.has(key) || p[key] == nil {
			continue
		}
		b, ok := p.boolean(key)
		if !ok {
			return base, badRequest(key+" must be a boolean", "INVALID_EXTRAS")
		}
		*dst = b
	}
	return base, nil
}

// quote prices a stay and maps pricing errors onto API errors.
func quote(pricePerDay float64, pickupDate, returnDate string, extras pricing.Extras, rates pricing.Rates) (pricing.Quote, *apiError) {
	pickup, err := pricing.ParseDate(pickupDate)
	if err != nil {
		return pricing.Quote{}, badRequest("pickupDate must be YYYY-MM-DD or an ISO timestamp", "INVALID_DATE")
	}
	ret, err := pricing.ParseDate(returnDate)
	if err != nil {
		return pricing.Quote{}, badRequest("returnDate must be YYYY-MM-DD or an ISO timestamp", "INVALID_DATE")
	}
	q, err := pricing.Calculate(pricePerDay, pickup, ret, extras, rates)
	switch {
	case errors.Is(err, pricing.ErrInvalidDateRange):
		return q, badRequest("Return date must be after pickup date", "INVALID_DATE_RANGE")
	case errors.Is(err, pricing.ErrTooLong):
		return q, badRequest(err.Error(), "BOOKING_TOO_LONG")
	case err != nil:
		return q, badRequest(err.Error(), "INVALID_DATE")
	}
	return q, nil
}

// Quote prices a prospective booking without storing anything.
func (h *Handler) Quote(c *gin.Context) {
	body, ok := bindBody(c)
	if !ok {
		return
	}
	p := payload(body)

	if missing := p.firstMissing("vehicleId", "pickupDate", "returnDate"); missing != "" {
		respondError(c, http.StatusBadRequest, missing+" is required", "MISSING_REQUIRED_FIELD")
		return
	}
	vehicleID, ok := p.id("vehicleId")
	if !ok {
		respondError(c, http.StatusBadRequest, "Valid vehicleId is required", "INVALID_VEHICLE_ID")
		return
	}
	extras, apiErr := extrasFrom(p, pricing.Extras{})
	if apiErr != nil {
		apiErr.write(c)
		return
	}

	ctx := c.Request.Context()
	vehicle, err := h.Store.VehicleByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Vehicle not found", "VEHICLE_NOT_FOUND")
			return
		}
		respondInternal(c, "Quote", err)
		return
	}
	rates, err := h.rates(ctx, h.Store)
	if err != nil {
		respondInternal(c, "Quote", err)
		return
	}

	pickupDate, _ := p.str("pickupDate")
	returnDate, _ := p.str("returnDate")
	q, apiErr := quote(vehicle.PricePerDay, pickupDate, returnDate, extras, rates)
	if apiErr != nil {
		apiErr.write(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vehicleId":         vehicle.ID,
		"available":         vehicle.Bookable(),
		"quote":             q,
		"taxRate":           rates.TaxRate,
		"depositPercentage": rates.DepositPercentage,
	})
}
