// Package assistant simulates the AI support agent: it escalates messages
// that mention sensitive topics and answers the rest with canned replies.
package assistant

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"
)

const (
	WelcomeMessage   = "Hi! I'm Sarah from support. How can I help you today?"
	EscalatedReply   = "Thanks for reaching out! I can see this is urgent. Let me get you connected with the right team member right away."
	GenericReply     = "Thanks for your message! I'll help you with that. Can you provide a bit more detail?"
	EscalationNotice = "This conversation has been escalated to our support team."
)

var escalationKeywords = []string{"urgent", "booking", "cancel", "refund", "emergency"}

type topic struct {
	keywords []string
	replies  []string
}

var topics = []topic{
	{
		keywords: []string{"payment", "pay", "card", "upi"},
		replies: []string{
			"We accept cards, UPI and net banking through Razorpay. You can pay the full amount or just the deposit.",
			"Payments are processed securely by Razorpay. A receipt is sent to your email once the payment is captured.",
		},
	},
	{
		keywords: []string{"pickup", "location", "address", "drop"},
		replies: []string{
			"You can choose any pickup and drop-off address while booking. Our team will confirm the handover point with you.",
			"Every vehicle page shows its home location. Doorstep delivery can be arranged in most city areas.",
		},
	},
	{
		keywords: []string{"price", "cost", "deposit", "tax"},
		replies: []string{
			"Prices are per day and include 18% GST at checkout. A 30% deposit secures the booking.",
			"The total shown at checkout covers the base rate, any extras you pick and taxes. There are no hidden fees.",
		},
	},
	{
		keywords: []string{"insurance", "damage", "accident"},
		replies: []string{
			"You can add full insurance for ₹500 per day, which covers damage with zero depreciation.",
			"Each vehicle lists its insurance options. Basic third-party cover is always included.",
		},
	},
	{
		keywords: []string{"license", "licence", "document", "id proof"},
		replies: []string{
			"Please carry a valid driving licence and a government ID at pickup.",
			"International licences are accepted together with your passport.",
		},
	},
}

// ShouldEscalate reports whether a user message mentions a topic that needs
// a human agent.
func ShouldEscalate(content string) bool {
	lower := strings.ToLower(content)
	for _, kw := range escalationKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Reply is the assistant's answer to one user message.
type Reply struct {
	Content   string
	Escalated bool
}

// Assistant answers after Delay to mimic a typing agent.
type Assistant struct {
	Delay time.Duration
	Intn  func(n int) int
}

func New(delay time.Duration) *Assistant {
	return &Assistant{Delay: delay, Intn: rand.IntN}
}

// Compose picks the reply text for content without waiting.
func (a *Assistant) Compose(content string) Reply {
	if ShouldEscalate(content) {
		return Reply{Content: EscalatedReply, Escalated: true}
	}
	lower := strings.ToLower(content)
	for _, t := range topics {
		for _, kw := range t.keywords {
			if strings.Contains(lower, kw) {
				return Reply{Content: t.replies[a.Intn(len(t.replies))]}
			}
		}
	}
	return Reply{Content: GenericReply}
}

// Respond waits for the configured delay and then composes the reply. It
// returns ctx.Err() if the context ends first.
func (a *Assistant) Respond(ctx context.Context, content string) (Reply, error) {
	if a.Delay > 0 {
		timer := time.NewTimer(a.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Reply{}, ctx.Err()
		case <-timer.C:
		}
	}
	return a.Compose(content), nil
}
