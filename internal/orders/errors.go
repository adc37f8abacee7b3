package orders

import (
	"errors"
	"fmt"

	"backend/internal/models"
)

// ErrOrderNotFound is returned by lookups and transitions on unknown orders.
var ErrOrderNotFound = errors.New("order not found")

// ErrOrderNumberExhausted is fatal: the generator gave up after the retry
// cap. Operator-visible, never user-correctable.
var ErrOrderNumberExhausted = errors.New("order number generation exhausted retries")

// InvalidTransitionError rejects a status change the transition table does
// not permit. No writes happen when it is returned.
type InvalidTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}
