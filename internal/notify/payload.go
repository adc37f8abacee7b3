package notify

import (
	"fmt"

	"backend/internal/models"
)

// Payload is a channel-agnostic notification: the dispatchers render it
// into their own wire formats.
type Payload struct {
	Title string
	Body  string
	Data  map[string]string
}

// statusPayload composes the notification for a status change. One fixed
// template per status, interpolating the order number and, while out for
// delivery, the ready estimate.
func statusPayload(order *models.Order, status models.OrderStatus) Payload {
	title := "Order Update"
	body := fmt.Sprintf("Your order #%s status has been updated.", order.OrderNumber)

	switch status {
	case models.StatusPending:
		title = "Order Received"
		body = fmt.Sprintf("We've received your order #%s.", order.OrderNumber)
	case models.StatusConfirmed:
		title = "Order Confirmed!"
		body = fmt.Sprintf("Your order #%s has been confirmed.", order.OrderNumber)
	case models.StatusPreparing:
		title = "Preparing Your Order"
		body = "We're preparing your delicious fries!"
	case models.StatusReady:
		title = "Order Ready!"
		body = fmt.Sprintf("Your order #%s is ready for delivery.", order.OrderNumber)
	case models.StatusOutForDelivery:
		title = "On The Way!"
		body = "Your order is on its way!"
		if order.EstimatedReadyAt != nil {
			body = fmt.Sprintf("Your order is on its way! Estimated arrival: %s", order.EstimatedReadyAt.Format("15:04"))
		}
	case models.StatusDelivered:
		title = "Order Delivered"
		body = fmt.Sprintf("Your order #%s has been delivered. Enjoy!", order.OrderNumber)
	case models.StatusCancelled:
		title = "Order Cancelled"
		body = fmt.Sprintf("Your order #%s has been cancelled.", order.OrderNumber)
	}

	return Payload{
		Title: title,
		Body:  body,
		Data: map[string]string{
			"type":        "order_status_update",
			"status":      string(status),
			"orderNumber": order.OrderNumber,
		},
	}
}
