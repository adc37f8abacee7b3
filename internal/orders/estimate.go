package orders

import "time"

const (
	basePrepMinutes = 15
	minutesPerItem  = 2
	maxPrepMinutes  = 30
	deliveryMinutes = 15
)

// estimatedReadyAt computes the estimated-ready timestamp from the total
// item quantity and the current clock only. Preparation scales with item
// count up to a cap; the delivery leg is a fixed allowance.
func estimatedReadyAt(now time.Time, totalQuantity int) time.Time {
	prep := basePrepMinutes + totalQuantity*minutesPerItem
	if prep > maxPrepMinutes {
		prep = maxPrepMinutes
	}
	return now.Add(time.Duration(prep+deliveryMinutes) * time.Minute)
}
