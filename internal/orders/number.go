package orders

import (
	"context"
	"fmt"
	"math/rand"
)

// maxNumberAttempts caps collision retries. With a 10^6 code space a
// handful of attempts is already overwhelmingly likely to succeed; hitting
// the cap means the space is effectively full and we fail loudly.
const maxNumberAttempts = 25

type numberExists func(ctx context.Context, number string) (bool, error)

// generateOrderNumber draws random zero-padded 6-digit codes until one is
// unused. The caller runs it inside the order transaction; the unique index
// on orderNumber closes the remaining check-then-insert race.
func generateOrderNumber(ctx context.Context, rng *rand.Rand, exists numberExists) (string, error) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number := fmt.Sprintf("%06d", rng.Intn(1000000))
		taken, err := exists(ctx, number)
		if err != nil {
			return "", err
		}
		if !taken {
			return number, nil
		}
	}
	return "", ErrOrderNumberExhausted
}
