// Package notify delivers booking notifications. The channels are simulated:
// each waits a short delay and logs the message it would have sent.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Message is a notification addressed to one recipient.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier sends a message over one channel.
type Notifier interface {
	Channel() string
	Send(ctx context.Context, msg Message) error
}

const (
	ChannelWhatsApp = "whatsapp"
	ChannelEmail    = "email"
)

var ErrNoRecipient = errors.New("notification has no recipient")

type simulated struct {
	channel string
	delay   time.Duration
}

func (s *simulated) Channel() string { return s.channel }

func (s *simulated) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	logrus.WithFields(logrus.Fields{
		"channel": s.channel,
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("notification sent")
	return nil
}

// NewWhatsApp returns a simulated WhatsApp sender keyed by phone number.
func NewWhatsApp(delay time.Duration) Notifier {
	return &simulated{channel: ChannelWhatsApp, delay: delay}
}

// NewEmail returns a simulated email sender.
func NewEmail(delay time.Duration) Notifier {
	return &simulated{channel: ChannelEmail, delay: delay}
}

// BookingConfirmation builds the messages sent once a booking is paid.
func BookingConfirmation(reference, driverName, phone, email, amount string) (whatsapp, mail Message) {
	body := fmt.Sprintf("Hi %s, your GoWheels booking %s is confirmed. Amount paid: ₹%s.", driverName, reference, amount)
	whatsapp = Message{To: phone, Subject: "Booking " + reference, Body: body}
	mail = Message{To: email, Subject: "Your GoWheels booking " + reference, Body: body}
	return whatsapp, mail
}
