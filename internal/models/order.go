package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderItemAddon snapshots one add-on selection at order time. Name and
// price are copied from the catalog and never re-derived afterwards.
type OrderItemAddon struct {
	AddonID  primitive.ObjectID `bson:"addonId" json:"addonId"`
	Name     string             `bson:"name" json:"name"`
	Price    float64            `bson:"price" json:"price"`
	Quantity int                `bson:"quantity" json:"quantity"`
}

// OrderItem snapshots one priced cart line. UnitPrice already includes the
// add-on prices; TotalPrice is UnitPrice * Quantity.
type OrderItem struct {
	ProductID   primitive.ObjectID `bson:"productId" json:"productId"`
	SizeID      primitive.ObjectID `bson:"sizeId" json:"sizeId"`
	ProductName string             `bson:"productName" json:"productName"`
	Size        string             `bson:"size" json:"size"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	UnitPrice   float64            `bson:"unitPrice" json:"unitPrice"`
	TotalPrice  float64            `bson:"totalPrice" json:"totalPrice"`
	Addons      []OrderItemAddon   `bson:"addons,omitempty" json:"addons,omitempty"`
}

// StatusHistoryEntry is one append-only audit row. Forced marks entries
// written by the admin path that bypasses the transition table.
type StatusHistoryEntry struct {
	Status    OrderStatus `bson:"status" json:"status"`
	Note      string      `bson:"note,omitempty" json:"note,omitempty"`
	Forced    bool        `bson:"forced,omitempty" json:"forced,omitempty"`
	CreatedAt time.Time   `bson:"createdAt" json:"createdAt"`
}

// Order is the persisted order document. Items and StatusHistory are
// embedded so the aggregate is written and read as one unit.
type Order struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID            *primitive.ObjectID  `bson:"userId" json:"userId"`
	OrderNumber       string               `bson:"orderNumber" json:"orderNumber"`
	CustomerName      string               `bson:"customerName" json:"customerName"`
	CustomerPhone     string               `bson:"customerPhone" json:"customerPhone"`
	OrderType         OrderType            `bson:"orderType" json:"orderType"`
	DeliveryAddress   string               `bson:"deliveryAddress" json:"deliveryAddress"`
	DeliveryLatitude  *float64             `bson:"deliveryLatitude,omitempty" json:"deliveryLatitude,omitempty"`
	DeliveryLongitude *float64             `bson:"deliveryLongitude,omitempty" json:"deliveryLongitude,omitempty"`
	Items             []OrderItem          `bson:"items" json:"items"`
	Subtotal          float64              `bson:"subtotal" json:"subtotal"`
	DeliveryFee       float64              `bson:"deliveryFee" json:"deliveryFee"`
	Total             float64              `bson:"total" json:"total"`
	Status            OrderStatus          `bson:"status" json:"status"`
	PaymentMethod     PaymentMethod        `bson:"paymentMethod" json:"paymentMethod"`
	Notes             string               `bson:"notes,omitempty" json:"notes,omitempty"`
	EstimatedReadyAt  *time.Time           `bson:"estimatedReadyAt,omitempty" json:"estimatedReadyAt,omitempty"`
	StatusHistory     []StatusHistoryEntry `bson:"statusHistory" json:"statusHistory"`
	CreatedAt         time.Time            `bson:"createdAt" json:"createdAt"`
}

// TotalQuantity sums the item quantities across all lines.
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}
