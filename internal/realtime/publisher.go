package realtime

import (
	"log"
	"time"

	"backend/internal/events"
)

type adminOrderItem struct {
	ProductName string  `json:"productName"`
	Size        string  `json:"size"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	TotalPrice  float64 `json:"totalPrice"`
}

type adminOrderSnapshot struct {
	ID                string           `json:"id"`
	OrderNumber       string           `json:"orderNumber"`
	CustomerName      string           `json:"customerName"`
	CustomerPhone     string           `json:"customerPhone"`
	DeliveryAddress   string           `json:"deliveryAddress"`
	DeliveryLatitude  *float64         `json:"deliveryLatitude,omitempty"`
	DeliveryLongitude *float64         `json:"deliveryLongitude,omitempty"`
	Subtotal          float64          `json:"subtotal"`
	DeliveryFee       float64          `json:"deliveryFee"`
	Total             float64          `json:"total"`
	ItemsCount        int              `json:"itemsCount"`
	Items             []adminOrderItem `json:"items"`
	Status            string           `json:"status"`
	StatusLabel       string           `json:"statusLabel"`
	OrderType         string           `json:"orderType"`
	OrderTypeLabel    string           `json:"orderTypeLabel"`
	PaymentMethod     string           `json:"paymentMethod"`
	Notes             string           `json:"notes,omitempty"`
	CreatedAt         string           `json:"createdAt"`
}

type adminMessage struct {
	Event   string             `json:"event"`
	Payload adminOrderSnapshot `json:"payload"`
}

// AdminPublisher pushes a structured new-order message to the live admin
// channel. Fire-and-forget: no retry, failures are the hub's problem and
// never reach the order-creation caller.
type AdminPublisher struct {
	hub *Hub
}

func NewAdminPublisher(hub *Hub) *AdminPublisher {
	return &AdminPublisher{hub: hub}
}

func (p *AdminPublisher) HandleOrderCreated(ev events.OrderCreated) {
	order := ev.Order

	items := make([]adminOrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, adminOrderItem{
			ProductName: item.ProductName,
			Size:        item.Size,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}

	p.hub.Broadcast(adminMessage{
		Event: "new-order",
		Payload: adminOrderSnapshot{
			ID:                order.ID.Hex(),
			OrderNumber:       order.OrderNumber,
			CustomerName:      order.CustomerName,
			CustomerPhone:     order.CustomerPhone,
			DeliveryAddress:   order.DeliveryAddress,
			DeliveryLatitude:  order.DeliveryLatitude,
			DeliveryLongitude: order.DeliveryLongitude,
			Subtotal:          order.Subtotal,
			DeliveryFee:       order.DeliveryFee,
			Total:             order.Total,
			ItemsCount:        len(order.Items),
			Items:             items,
			Status:            string(order.Status),
			StatusLabel:       order.Status.Label(),
			OrderType:         string(order.OrderType),
			OrderTypeLabel:    order.OrderType.Label(),
			PaymentMethod:     string(order.PaymentMethod),
			Notes:             order.Notes,
			CreatedAt:         order.CreatedAt.Format(time.RFC3339),
		},
	})
	log.Printf("[WS] [INFO] new-order broadcast for %s to %d clients", order.OrderNumber, p.hub.ClientCount())
}
