package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gowheels/internal/models"
	"gowheels/internal/notify"
	"gowheels/internal/payment"
	"gowheels/internal/pricing"
	"gowheels/internal/store"
)

const notifyTimeout = 30 * time.Second

func (h *Handler) ListPayments(c *gin.Context) {
	bookingID, ok := optionalID(c, "bookingId")
	if !ok {
		respondError(c, http.StatusBadRequest, "Valid booking ID is required", "INVALID_BOOKING_ID")
		return
	}
	userID, ok := optionalID(c, "userId")
	if !ok {
		respondError(c, http.StatusBadRequest, "Valid user ID is required", "INVALID_USER_ID")
		return
	}
	status := c.Query("status")
	if status != "" && !models.IsValidPaymentStatus(status) {
		respondError(c, http.StatusBadRequest, "Invalid payment status", "INVALID_STATUS")
		return
	}

	payments, err := h.Store.ListPayments(c.Request.Context(), store.PaymentFilter{
		BookingID: bookingID,
		UserID:    userID,
		Status:    status,
	}, page(c))
	if err != nil {
		respondInternal(c, "ListPayments", err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

// bookingForPayment loads the booking a payment refers to. A missing
// booking is a client error.
func (h *Handler) bookingForPayment(c *gin.Context, p payload, handler string) (*models.Booking, bool) {
	if !p.truthy("bookingId") {
		respondError(c, http.StatusBadRequest, "Booking ID is required", "MISSING_BOOKING_ID")
		return nil, false
	}
	bookingID, ok := p.id("bookingId")
	if !ok {
		respondError(c, http.StatusBadRequest, "Valid booking ID is required", "INVALID_BOOKING_ID")
		return nil, false
	}
	b, err := h.Store.BookingByID(c.Request.Context(), bookingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusBadRequest, "Booking not found", "BOOKING_NOT_FOUND")
			return nil, false
		}
		respondInternal(c, handler, err)
		return nil, false
	}
	return b, true
}

// CreateOrder opens a gateway order for a booking and records a pending
// payment against it.
func (h *Handler) CreateOrder(c *gin.Context) {
	body, ok := bindBody(c)
	if !ok {
		return
	}
	p := payload(body)

	booking, ok := h.bookingForPayment(c, p, "CreateOrder")
	if !ok {
		return
	}
	paymentType, _ := p.str("paymentType")
	if paymentType == "" {
		paymentType = payment.TypeFull
	}
	if paymentType != payment.TypeFull && paymentType != payment.TypeDeposit {
		respondError(c, http.StatusBadRequest, "paymentType must be full or deposit", "INVALID_PAYMENT_TYPE")
		return
	}
	if !payable(booking) {
		respondError(c, http.StatusConflict, "Booking can no longer be paid", "BOOKING_NOT_PAYABLE")
		return
	}

	ctx := c.Request.Context()
	total, paid, err := h.paymentTotals(ctx, booking)
	if err != nil {
		respondInternal(c, "CreateOrder", err)
		return
	}
	// a full order charges whatever the captured payments have not covered
	amount := pricing.Round(total - paid)
	if amount < 0.01 {
		respondError(c, http.StatusConflict, "Booking is already paid", "BOOKING_ALREADY_PAID")
		return
	}
	if paymentType == payment.TypeDeposit {
		if paid > 0 {
			respondError(c, http.StatusConflict, "A payment has already been captured for this booking", "DEPOSIT_ALREADY_PAID")
			return
		}
		if amount, err = pricing.ParseMoney(booking.DepositAmount); err != nil {
			respondInternal(c, "CreateOrder", err)
			return
		}
	}

	order, err := h.Gateway.CreateOrder(ctx, pricing.Paise(amount), payment.CurrencyINR, booking.BookingReference)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidAmount) {
			respondError(c, http.StatusBadRequest, "Booking amount must be positive", "INVALID_AMOUNT")
			return
		}
		respondInternal(c, "CreateOrder", err)
		return
	}

	rec := &models.Payment{
		BookingID:       booking.ID,
		RazorpayOrderID: order.OrderID,
		Amount:          pricing.Money(amount),
		Currency:        order.Currency,
		Status:          models.PaymentPending,
		PaymentType:     paymentType,
	}
	if err := h.Store.CreatePayment(ctx, rec); err != nil {
		respondInternal(c, "CreateOrder", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"orderId":  order.OrderID,
		"amount":   order.Amount,
		"currency": order.Currency,
		"keyId":    order.KeyID,
		"receipt":  order.Receipt,
		"payment":  rec,
	})
}

func (h *Handler) CreatePayment(c *gin.Context) {
	body, ok := bindBody(c)
	if !ok {
		return
	}
	p := payload(body)

	if !p.truthy("bookingId") {
		respondError(c, http.StatusBadRequest, "Booking ID is required", "MISSING_BOOKING_ID")
		return
	}
	if !p.truthy("razorpayOrderId") {
		respondError(c, http.StatusBadRequest, "Razorpay Order ID is required", "MISSING_RAZORPAY_ORDER_ID")
		return
	}
	if !p.truthy("amount") {
		respondError(c, http.StatusBadRequest, "Amount is required", "MISSING_AMOUNT")
		return
	}
	if !p.truthy("paymentType") {
		respondError(c, http.StatusBadRequest, "Payment type is required", "MISSING_PAYMENT_TYPE")
		return
	}
	amount, ok := p.number("amount")
	if !ok || amount <= 0 {
		respondError(c, http.StatusBadRequest, "Amount must be a positive number", "INVALID_AMOUNT")
		return
	}
	booking, ok := h.bookingForPayment(c, p, "CreatePayment")
	if !ok {
		return
	}

	rec := &models.Payment{
		BookingID: booking.ID,
		Amount:    pricing.Money(amount),
		Currency:  payment.CurrencyINR,
		Status:    models.PaymentPending,
	}
	rec.RazorpayOrderID, _ = p.str("razorpayOrderId")
	rec.PaymentType, _ = p.str("paymentType")
	if currency, _ := p.str("currency"); currency != "" {
		rec.Currency = strings.ToUpper(currency)
	}
	rec.RazorpayPaymentID, _ = p.optStr("razorpayPaymentId")
	rec.RazorpaySignature, _ = p.optStr("razorpaySignature")
	if rec.RazorpayPaymentID != nil && rec.RazorpaySignature != nil &&
		!h.Gateway.VerifySignature(rec.RazorpayOrderID, *rec.RazorpayPaymentID, *rec.RazorpaySignature) {
		respondError(c, http.StatusBadRequest, "Payment signature verification failed", "INVALID_SIGNATURE")
		return
	}

	if err := h.Store.CreatePayment(c.Request.Context(), rec); err != nil {
		respondInternal(c, "CreatePayment", err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// UpdatePayment applies a partial update. A payment id plus signature is
// verified against the stored order id.
func (h *Handler) UpdatePayment(c *gin.Context) {
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
	if p.has("status") {
		status, _ := p["status"].(string)
		if !models.IsValidPaymentStatus(status) {
			respondError(c, http.StatusBadRequest, "Invalid payment status", "INVALID_STATUS")
			return
		}
		fields["status"] = status
	}
	if p.has("amount") {
		amount, ok := p.number("amount")
		if !ok || amount <= 0 {
			respondError(c, http.StatusBadRequest, "Amount must be a positive number", "INVALID_AMOUNT")
			return
		}
		fields["amount"] = pricing.Money(amount)
	}
	for key, column := range map[string]string{"currency": "currency", "paymentType": "payment_type"} {
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
	paymentID, _ := p.optStr("razorpayPaymentId")
	signature, _ := p.optStr("razorpaySignature")
	if p.has("razorpayPaymentId") {
		fields["razorpay_payment_id"] = paymentID
	}
	if p.has("razorpaySignature") {
		fields["razorpay_signature"] = signature
	}
	if len(fields) == 0 {
		respondError(c, http.StatusBadRequest, "No valid fields provided", "NO_FIELDS_PROVIDED")
		return
	}

	ctx := c.Request.Context()
	if paymentID != nil && signature != nil {
		existing, err := h.Store.PaymentByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondError(c, http.StatusNotFound, "Payment not found", "PAYMENT_NOT_FOUND")
				return
			}
			respondInternal(c, "UpdatePayment", err)
			return
		}
		if !h.Gateway.VerifySignature(existing.RazorpayOrderID, *paymentID, *signature) {
			respondError(c, http.StatusBadRequest, "Payment signature verification failed", "INVALID_SIGNATURE")
			return
		}
	}

	updated, err := h.Store.UpdatePayment(ctx, id, fields, nil)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Payment not found", "PAYMENT_NOT_FOUND")
			return
		}
		respondInternal(c, "UpdatePayment", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// CapturePayment settles a pending payment through the gateway, confirms
// its booking and notifies the driver.
func (h *Handler) CapturePayment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Valid ID is required", "INVALID_ID")
		return
	}

	ctx := c.Request.Context()
	existing, err := h.Store.PaymentByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Payment not found", "PAYMENT_NOT_FOUND")
			return
		}
		respondInternal(c, "CapturePayment", err)
		return
	}
	if existing.Status != models.PaymentPending {
		respondError(c, http.StatusConflict, "Only pending payments can be captured", "PAYMENT_NOT_PENDING")
		return
	}

	booking, err := h.Store.BookingByID(ctx, existing.BookingID)
	if err != nil {
		respondInternal(c, "CapturePayment", err)
		return
	}
	if !payable(booking) {
		respondError(c, http.StatusConflict, "Booking can no longer be paid", "BOOKING_NOT_PAYABLE")
		return
	}
	total, paid, err := h.paymentTotals(ctx, booking)
	if err != nil {
		respondInternal(c, "CapturePayment", err)
		return
	}
	amount, err := pricing.ParseMoney(existing.Amount)
	if err != nil {
		respondInternal(c, "CapturePayment", err)
		return
	}
	if pricing.Round(paid+amount) > pricing.Round(total)+0.01 {
		respondError(c, http.StatusConflict, "Booking is already paid", "BOOKING_ALREADY_PAID")
		return
	}

	capture, err := h.Gateway.CapturePayment(ctx, existing.RazorpayOrderID)
	if err != nil {
		respondInternal(c, "CapturePayment", err)
		return
	}

	captured, err := h.Store.UpdatePayment(ctx, id, map[string]interface{}{
		"status":              models.PaymentCaptured,
		"razorpay_payment_id": capture.PaymentID,
		"razorpay_signature":  capture.Signature,
	}, []string{models.PaymentPending})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			respondError(c, http.StatusConflict, "Only pending payments can be captured", "PAYMENT_NOT_PENDING")
		case errors.Is(err, store.ErrNotFound):
			respondError(c, http.StatusNotFound, "Payment not found", "PAYMENT_NOT_FOUND")
		default:
			respondInternal(c, "CapturePayment", err)
		}
		return
	}

	booking, err = h.Store.TransitionBooking(ctx, captured.BookingID, models.BookingConfirmed)
	if errors.Is(err, store.ErrConflict) {
		booking, err = h.Store.BookingByID(ctx, captured.BookingID)
	}
	if err != nil {
		respondInternal(c, "CapturePayment", err)
		return
	}

	// the booking may have been cancelled while the gateway call ran
	if booking.Status == models.BookingConfirmed {
		h.notifyBookingPaid(booking, captured.Amount)
	} else {
		logrus.WithFields(logrus.Fields{
			"booking_id": booking.ID,
			"payment_id": captured.ID,
			"status":     booking.Status,
		}).Warn("payment captured for a booking that is no longer payable")
	}

	c.JSON(http.StatusOK, gin.H{
		"payment": captured,
		"booking": booking,
	})
}

func payable(b *models.Booking) bool {
	return b.Status == models.BookingPending || b.Status == models.BookingConfirmed
}

// paymentTotals returns the booking total and the sum already captured.
func (h *Handler) paymentTotals(ctx context.Context, b *models.Booking) (total, paid float64, err error) {
	if total, err = pricing.ParseMoney(b.TotalAmount); err != nil {
		return 0, 0, err
	}
	captured, err := h.Store.CapturedPayments(ctx, b.ID)
	if err != nil {
		return 0, 0, err
	}
	for _, p := range captured {
		amount, err := pricing.ParseMoney(p.Amount)
		if err != nil {
			return 0, 0, err
		}
		paid += amount
	}
	return total, pricing.Round(paid), nil
}

func (h *Handler) notifyBookingPaid(b *models.Booking, amount string) {
	if len(h.Notifiers) == 0 {
		return
	}
	whatsapp, mail := notify.BookingConfirmation(b.BookingReference, b.DriverName, b.DriverPhone, b.DriverEmail, amount)
	h.goBackground("booking-notification", notifyTimeout, func(ctx context.Context) error {
		var errs []error
		for _, n := range h.Notifiers {
			msg := mail
			if n.Channel() == notify.ChannelWhatsApp {
				msg = whatsapp
			}
			if err := n.Send(ctx, msg); err != nil {
				logrus.WithError(err).WithFields(logrus.Fields{
					"channel":    n.Channel(),
					"booking_id": b.ID,
				}).Warn("notification failed")
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

func (h *Handler) DeletePayment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Valid ID is required", "INVALID_ID")
		return
	}
	deleted, err := h.Store.DeletePayment(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Payment not found", "PAYMENT_NOT_FOUND")
			return
		}
		respondInternal(c, "DeletePayment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Payment deleted successfully",
		"payment": deleted,
	})
}
