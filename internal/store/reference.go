package store

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

const (
	BookingPrefix      = "BK"
	ConversationPrefix = "SUPP"

	maxReferenceAttempts = 5
)

// ReferenceGenerator produces human-readable references of the form
// PREFIX-YYYYMMDD-NNNN with NNNN in 1000..9999.
type ReferenceGenerator struct {
	Now  func() time.Time
	Intn func(n int) int
}

func NewReferenceGenerator() *ReferenceGenerator {
	return &ReferenceGenerator{Now: time.Now, Intn: rand.IntN}
}

func (g *ReferenceGenerator) Next(prefix string) string {
	return fmt.Sprintf("%s-%s-%d", prefix, g.Now().UTC().Format("20060102"), 1000+g.Intn(9000))
}

// withReference calls create with fresh references until one is accepted by
// the unique index or the attempts run out.
func (g *ReferenceGenerator) withReference(prefix string, create func(ref string) error) error {
	for i := 0; i < maxReferenceAttempts; i++ {
		err := create(g.Next(prefix))
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrDuplicate) {
			return err
		}
	}
	return ErrReferenceExhausted
}
