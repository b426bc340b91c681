// Package payment simulates the Razorpay checkout flow: order creation,
// payment capture and signature verification.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	CurrencyINR = "INR"

	TypeFull    = "full"
	TypeDeposit = "deposit"
)

var ErrInvalidAmount = errors.New("amount must be positive")

// Order is what the checkout widget needs to open a payment.
type Order struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"keyId"`
	Receipt  string `json:"receipt"`
}

// Capture is the result of a successful payment.
type Capture struct {
	PaymentID string `json:"razorpayPaymentId"`
	Signature string `json:"razorpaySignature"`
}

// Gateway is a local stand-in for the Razorpay API.
type Gateway struct {
	KeyID     string
	KeySecret string
	Delay     time.Duration
	NewID     func() string
}

func NewGateway(keyID, keySecret string, delay time.Duration) *Gateway {
	return &Gateway{
		KeyID:     keyID,
		KeySecret: keySecret,
		Delay:     delay,
		NewID:     func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:14] },
	}
}

func (g *Gateway) wait(ctx context.Context) error {
	if g.Delay <= 0 {
		return nil
	}
	timer := time.NewTimer(g.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CreateOrder opens an order for amountPaise in the given currency.
func (g *Gateway) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*Order, error) {
	if amountPaise <= 0 {
		return nil, ErrInvalidAmount
	}
	if currency == "" {
		currency = CurrencyINR
	}
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	return &Order{
		OrderID:  "order_" + g.NewID(),
		Amount:   amountPaise,
		Currency: currency,
		KeyID:    g.KeyID,
		Receipt:  receipt,
	}, nil
}

// CapturePayment settles an order and returns the payment id and the
// signature the checkout widget would hand back.
func (g *Gateway) CapturePayment(ctx context.Context, orderID string) (*Capture, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	paymentID := "pay_" + g.NewID()
	return &Capture{PaymentID: paymentID, Signature: g.Sign(orderID, paymentID)}, nil
}

// Sign computes hex(HMAC-SHA256(secret, orderID|paymentID)).
func (g *Gateway) Sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(g.KeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a checkout signature in constant time.
func (g *Gateway) VerifySignature(orderID, paymentID, signature string) bool {
	expected := g.Sign(orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}
