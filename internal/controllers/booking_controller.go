package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"gowheels/internal/models"
	"gowheels/internal/pricing"
	"gowheels/internal/store"
)

var requiredBookingFields = []string{
	"userId", "vehicleId", "pickupDate", "returnDate", "pickupAddress",
	"dropoffAddress", "driverName", "driverPhone", "driverEmail", "paymentMethod",
}

// modifiableStatuses are the statuses in which booking details may change
// without a status change.
var modifiableStatuses = []string{models.BookingPending, models.BookingConfirmed}

func (h *Handler) ListBookings(c *gin.Context) {
	userID, ok := optionalID(c, "userId")
	if !ok {
		respondError(c, http.StatusBadRequest, "Valid userId is required", "INVALID_USER_ID")
		return
	}
	vehicleID, ok := optionalID(c, "vehicleId")
	if !ok {
		respondError(c, http.StatusBadRequest, "Valid vehicleId is required", "INVALID_VEHICLE_ID")
		return
	}
	status := c.Query("status")
	if status != "" && !models.IsValidBookingStatus(status) {
		respondError(c, http.StatusBadRequest, "Invalid booking status", "INVALID_STATUS")
		return
	}

	bookings, err := h.Store.ListBookings(c.Request.Context(), store.BookingFilter{
		UserID:    userID,
		VehicleID: vehicleID,
		Status:    status,
	}, page(c))
	if err != nil {
		respondInternal(c, "ListBookings", err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Valid ID is required", "INVALID_ID")
		return
	}
	b, err := h.Store.BookingByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Booking not found", "BOOKING_NOT_FOUND")
			return
		}
		respondInternal(c, "GetBooking", err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CreateBooking prices the booking on the server and stores it as pending.
func (h *Handler) CreateBooking(c *gin.Context) {
	body, ok := bindBody(c)
	if !ok {
		return
	}
	p := payload(body)

	if missing := p.firstMissing(requiredBookingFields...); missing != "" {
		respondError(c, http.StatusBadRequest, missing+" is required", "MISSING_REQUIRED_FIELD")
		return
	}
	userID, ok := p.id("userId")
	if !ok {
		respondError(c, http.StatusBadRequest, "Valid userId is required", "INVALID_USER_ID")
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
	exists, err := h.Store.UserExists(ctx, userID)
	if err != nil {
		respondInternal(c, "CreateBooking", err)
		return
	}
	if !exists {
		respondError(c, http.StatusBadRequest, "User not found", "USER_NOT_FOUND")
		return
	}
	vehicle, err := h.Store.VehicleByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusBadRequest, "Vehicle not found", "VEHICLE_NOT_FOUND")
			return
		}
		respondInternal(c, "CreateBooking", err)
		return
	}
	if !vehicle.Bookable() {
		respondError(c, http.StatusBadRequest, "Vehicle is not available for booking", "VEHICLE_UNAVAILABLE")
		return
	}

	rates, err := h.rates(ctx, h.Store)
	if err != nil {
		respondInternal(c, "CreateBooking", err)
		return
	}
	pickupDate, _ := p.str("pickupDate")
	returnDate, _ := p.str("returnDate")
	q, apiErr := quote(vehicle.PricePerDay, pickupDate, returnDate, extras, rates)
	if apiErr != nil {
		apiErr.write(c)
		return
	}
	if p.has("totalAmount") && p["totalAmount"] != nil {
		clientTotal, ok := p.number("totalAmount")
		if !ok || !q.Matches(clientTotal) {
			respondError(c, http.StatusBadRequest,
				fmt.Sprintf("Total amount does not match the calculated price of %s", pricing.Money(q.TotalAmount)),
				"PRICE_MISMATCH")
			return
		}
	}

	b := &models.Booking{
		UserID:          userID,
		VehicleID:       vehicleID,
		PickupDate:      pickupDate,
		ReturnDate:      returnDate,
		ExtrasInsurance: extras.Insurance,
		ExtrasDriver:    extras.Driver,
		ExtrasChildSeat: extras.ChildSeat,
		Status:          models.BookingPending,
	}
	b.PickupAddress, _ = p.str("pickupAddress")
	b.DropoffAddress, _ = p.str("dropoffAddress")
	b.DriverName, _ = p.str("driverName")
	b.DriverPhone, _ = p.str("driverPhone")
	b.DriverEmail, _ = p.str("driverEmail")
	b.PaymentMethod, _ = p.str("paymentMethod")
	b.PickupTime, _ = p.optStr("pickupTime")
	b.ReturnTime, _ = p.optStr("returnTime")
	b.PromoCode, _ = p.optStr("promoCode")
	applyQuote(b, q)

	if err := h.Store.CreateBooking(ctx, b); err != nil {
		respondInternal(c, "CreateBooking", err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func applyQuote(b *models.Booking, q pricing.Quote) {
	b.BasePrice = pricing.Money(q.BasePrice)
	b.ExtrasPrice = pricing.Money(q.ExtrasPrice)
	b.Taxes = pricing.Money(q.Taxes)
	b.TotalAmount = pricing.Money(q.TotalAmount)
	b.DepositAmount = pricing.Money(q.DepositAmount)
}

func quoteColumns(q pricing.Quote) map[string]interface{} {
	return map[string]interface{}{
		"base_price":     pricing.Money(q.BasePrice),
		"extras_price":   pricing.Money(q.ExtrasPrice),
		"taxes":          pricing.Money(q.Taxes),
		"total_amount":   pricing.Money(q.TotalAmount),
		"deposit_amount": pricing.Money(q.DepositAmount),
	}
}

var bookingTextFields = map[string]string{
	"pickupAddress":  "pickup_address",
	"dropoffAddress": "dropoff_address",
	"driverName":     "driver_name",
	"driverPhone":    "driver_phone",
	"driverEmail":    "driver_email",
	"paymentMethod":  "payment_method",
}

var bookingNullableFields = map[string]string{
	"pickupTime": "pickup_time",
	"returnTime": "return_time",
	"promoCode":  "promo_code",
}

// UpdateBooking applies a partial update. Date or extras changes re-price
// the booking; status changes must follow the booking lifecycle.
func (h *Handler) UpdateBooking(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Valid ID is required", "INVALID_ID")
		return
	}
	body, ok := bindBody(c)
	if !ok {
		return
	}
	p := payload(body)

	fields := map[string]interface{}{}
	for key, column := range bookingTextFields {
		if !p.has(key) {
			continue
		}
		s, ok := p.str(key)
		if !ok || s == "" {
			respondError(c, http.StatusBadRequest, key+" must be a non-empty string", "INVALID_FIELD")
			return
		}
		fields[column] = s
	}
	for key, column := range bookingNullableFields {
		if !p.has(key) {
			continue
		}
		s, ok := p.optStr(key)
		if !ok {
			respondError(c, http.StatusBadRequest, key+" must be a string", "INVALID_FIELD")
			return
		}
		fields[column] = s
	}

	var allowed []string
	statusChange := p.has("status")
	if statusChange {
		status, _ := p["status"].(string)
		if !models.IsValidBookingStatus(status) {
			respondError(c, http.StatusBadRequest, "Invalid booking status", "INVALID_STATUS")
			return
		}
		fields["status"] = status
		allowed = models.BookingPredecessors(status)
		if len(allowed) == 0 {
			allowed = []string{status}
		}
	} else {
		allowed = modifiableStatuses
	}

	reprice := p.has("pickupDate") || p.has("returnDate") ||
		p.has("extrasInsurance") || p.has("extrasDriver") || p.has("extrasChildSeat")
	if !reprice && len(fields) == 0 {
		respondError(c, http.StatusBadRequest, "No valid fields provided", "NO_FIELDS_PROVIDED")
		return
	}

	ctx := c.Request.Context()
	var updated *models.Booking
	var apiErr *apiError
	err := h.Store.WithTx(ctx, func(tx *store.Store) error {
		if reprice {
			allowed = intersect(allowed, modifiableStatuses, statusChange)
			if apiErr = h.repriceFields(ctx, tx, id, p, fields); apiErr != nil {
				return nil
			}
		}
		var err error
		updated, err = tx.UpdateBooking(ctx, id, fields, allowed)
		return err
	})

	switch {
	case apiErr != nil:
		apiErr.write(c)
	case errors.Is(err, store.ErrNotFound):
		respondError(c, http.StatusNotFound, "Booking not found", "BOOKING_NOT_FOUND")
	case errors.Is(err, store.ErrConflict):
		if statusChange {
			respondError(c, http.StatusConflict, "Booking cannot move to the requested status", "INVALID_STATUS_TRANSITION")
		} else {
			respondError(c, http.StatusConflict, "Only pending or confirmed bookings can be changed", "BOOKING_NOT_MODIFIABLE")
		}
	case err != nil:
		respondInternal(c, "UpdateBooking", err)
	default:
		c.JSON(http.StatusOK, updated)
	}
}

// repriceFields merges new dates and extras with the stored booking and
// adds the recomputed price columns to fields.
func (h *Handler) repriceFields(ctx context.Context, tx *store.Store, id uint, p payload, fields map[string]interface{}) *apiError {
	current, err := tx.BookingByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &apiError{Status: http.StatusNotFound, Message: "Booking not found", Code: "BOOKING_NOT_FOUND"}
		}
		return &apiError{Status: http.StatusInternalServerError, Message: "Internal server error: " + err.Error()}
	}

	pickupDate, returnDate := current.PickupDate, current.ReturnDate
	if p.has("pickupDate") {
		if pickupDate, _ = p.str("pickupDate"); pickupDate == "" {
			return badRequest("pickupDate must be a non-empty string", "INVALID_DATE")
		}
		fields["pickup_date"] = pickupDate
	}
	if p.has("returnDate") {
		if returnDate, _ = p.str("returnDate"); returnDate == "" {
			return badRequest("returnDate must be a non-empty string", "INVALID_DATE")
		}
		fields["return_date"] = returnDate
	}

	extras, apiErr := extrasFrom(p, pricing.Extras{
		Insurance: current.ExtrasInsurance,
		Driver:    current.ExtrasDriver,
		ChildSeat: current.ExtrasChildSeat,
	})
	if apiErr != nil {
		return apiErr
	}
	fields["extras_insurance"] = extras.Insurance
	fields["extras_driver"] = extras.Driver
	fields["extras_child_seat"] = extras.ChildSeat

	pricePerDay := 0.0
	if current.Vehicle != nil {
		pricePerDay = current.Vehicle.PricePerDay
	} else {
		v, err := tx.VehicleByID(ctx, current.VehicleID)
		if err != nil {
			return &apiError{Status: http.StatusInternalServerError, Message: "Internal server error: " + err.Error()}
		}
		pricePerDay = v.PricePerDay
	}

	rates, err := h.rates(ctx, tx)
	if err != nil {
		return &apiError{Status: http.StatusInternalServerError, Message: "Internal server error: " + err.Error()}
	}
	q, apiErr := quote(pricePerDay, pickupDate, returnDate, extras, rates)
	if apiErr != nil {
		return apiErr
	}
	for k, v := range quoteColumns(q) {
		fields[k] = v
	}
	return nil
}

// intersect narrows the allowed source statuses to those in limit. When no
// status change was requested the limit itself applies.
func intersect(allowed, limit []string, statusChange bool) []string {
	if !statusChange {
		return limit
	}
	out := []string{}
	for _, a := range allowed {
		for _, l := range limit {
			if a == l {
				out = append(out, a)
			}
		}
	}
	if len(out) == 0 {
		// no source status can satisfy both; match nothing
		return []string{"-"}
	}
	return out
}

// CancelBooking cancels a pending or confirmed booking. The row is kept.
func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Valid ID is required", "INVALID_ID")
		return
	}
	b, err := h.Store.CancelBooking(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			respondError(c, http.StatusNotFound, "Booking not found", "BOOKING_NOT_FOUND")
		case errors.Is(err, store.ErrConflict):
			respondError(c, http.StatusConflict, "Only pending or confirmed bookings can be cancelled", "INVALID_STATUS_TRANSITION")
		default:
			respondInternal(c, "CancelBooking", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Booking cancelled successfully",
		"booking": b,
	})
}
