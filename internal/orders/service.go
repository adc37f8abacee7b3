package orders

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/events"
	"backend/internal/models"
	"backend/internal/pricing"
)

// maxItemQuantity bounds a single cart line.
const maxItemQuantity = 10

// ValidationError rejects malformed input before any write.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// CartLine is one raw cart entry: a size reference, a quantity and
// optional add-on references.
type CartLine struct {
	SizeID   primitive.ObjectID
	Quantity int
	AddonIDs []primitive.ObjectID
}

// CreateOrderInput is the validated cart payload handed in by the HTTP
// layer. Customer fields are free text captured at order time.
type CreateOrderInput struct {
	UserID            *primitive.ObjectID
	CustomerName      string
	CustomerPhone     string
	OrderType         models.OrderType
	DeliveryAddress   string
	DeliveryLatitude  *float64
	DeliveryLongitude *float64
	PaymentMethod     models.PaymentMethod
	Notes             string
	Items             []CartLine
}

func (in CreateOrderInput) validate() error {
	if in.CustomerName == "" {
		return ValidationError{Message: "customer name is required"}
	}
	if in.CustomerPhone == "" {
		return ValidationError{Message: "customer phone is required"}
	}
	if !in.OrderType.Valid() {
		return ValidationError{Message: "order type must be either delivery or collection"}
	}
	if !in.PaymentMethod.Valid() {
		return ValidationError{Message: "invalid payment method"}
	}
	if len(in.Items) == 0 {
		return ValidationError{Message: "please add at least one item to your order"}
	}
	for _, line := range in.Items {
		if line.Quantity < 1 || line.Quantity > maxItemQuantity {
			return ValidationError{Message: fmt.Sprintf("quantity must be between 1 and %d", maxItemQuantity)}
		}
	}
	return nil
}

// Service orchestrates pricing, order persistence, the status machine and
// lifecycle event publication. Clock and random source are injectable for
// deterministic tests.
type Service struct {
	db          *mongo.Database
	store       storage
	engine      *pricing.Engine
	bus         *events.Bus
	deliveryFee float64
	now         func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

func NewService(db *mongo.Database, engine *pricing.Engine, bus *events.Bus, deliveryFee float64) *Service {
	return &Service{
		db:          db,
		store:       &mongoStorage{db: db},
		engine:      engine,
		bus:         bus,
		deliveryFee: deliveryFee,
		now:         time.Now,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithRand overrides the order-number random source. Test hook.
func (s *Service) WithRand(rng *rand.Rand) *Service {
	s.rng = rng
	return s
}

// CreateOrder builds and persists the full order aggregate in one
// transaction. Any pricing rejection or persistence error aborts the whole
// order; OrderCreated is published only after the transaction commits.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var created models.Order
	err := s.store.RunTransaction(ctx, func(txCtx context.Context) error {
		items := make([]models.OrderItem, 0, len(input.Items))
		for _, line := range input.Items {
			item, err := s.engine.PriceLine(txCtx, line.SizeID, line.AddonIDs, line.Quantity)
			if err != nil {
				return err
			}
			items = append(items, item)
		}

		number, err := s.nextOrderNumber(txCtx)
		if err != nil {
			return err
		}

		order := assembleOrder(input, items, number, s.deliveryFee, s.now())
		if err := s.store.InsertOrder(txCtx, &order); err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[ORDER] [INFO] order %s created, total %.2f", created.OrderNumber, created.Total)
	s.bus.PublishOrderCreated(events.OrderCreated{Order: &created})
	return &created, nil
}

// assembleOrder is the pure tail of order construction: totals, fee rules,
// initial status, the first history entry and the ready estimate.
func assembleOrder(input CreateOrderInput, items []models.OrderItem, number string, deliveryFee float64, now time.Time) models.Order {
	subtotal := 0.0
	for _, item := range items {
		subtotal += item.TotalPrice
	}

	if input.OrderType == models.OrderTypeCollection {
		deliveryFee = 0
	}

	order := models.Order{
		UserID:            input.UserID,
		OrderNumber:       number,
		CustomerName:      input.CustomerName,
		CustomerPhone:     input.CustomerPhone,
		OrderType:         input.OrderType,
		DeliveryAddress:   input.DeliveryAddress,
		DeliveryLatitude:  input.DeliveryLatitude,
		DeliveryLongitude: input.DeliveryLongitude,
		Items:             items,
		Subtotal:          subtotal,
		DeliveryFee:       deliveryFee,
		Total:             subtotal + deliveryFee,
		Status:            models.StatusPending,
		PaymentMethod:     input.PaymentMethod,
		Notes:             input.Notes,
		StatusHistory: []models.StatusHistoryEntry{
			{Status: models.StatusPending, Note: "Order placed", CreatedAt: now},
		},
		CreatedAt: now,
	}

	estimate := estimatedReadyAt(now, order.TotalQuantity())
	order.EstimatedReadyAt = &estimate
	return order
}

func (s *Service) nextOrderNumber(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return generateOrderNumber(ctx, s.rng, s.store.OrderNumberExists)
}

// UpdateStatus performs a table-enforced transition. It is the customer
// and driver facing path: an illegal move fails with
// InvalidTransitionError and writes nothing.
func (s *Service) UpdateStatus(ctx context.Context, orderNumber string, newStatus models.OrderStatus, note string) (*models.Order, error) {
	return s.transition(ctx, orderNumber, newStatus, note, false)
}

// ForceUpdateStatus is the operator escape hatch: it skips the transition
// table. History entries record when the table was actually bypassed.
func (s *Service) ForceUpdateStatus(ctx context.Context, orderNumber string, newStatus models.OrderStatus, note string) (*models.Order, error) {
	return s.transition(ctx, orderNumber, newStatus, note, true)
}

func (s *Service) transition(ctx context.Context, orderNumber string, newStatus models.OrderStatus, note string, force bool) (*models.Order, error) {
	if !newStatus.Valid() {
		return nil, ValidationError{Message: fmt.Sprintf("unknown order status %q", newStatus)}
	}

	current, err := s.OrderByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	tableAllows := current.Status.CanTransitionTo(newStatus)
	if !force && !tableAllows {
		return nil, InvalidTransitionError{From: current.Status, To: newStatus}
	}

	entry := models.StatusHistoryEntry{
		Status:    newStatus,
		Note:      note,
		Forced:    force && !tableAllows,
		CreatedAt: s.now(),
	}

	updated, err := s.store.ApplyTransition(ctx, orderNumber, current.Status, entry)
	if err == errNoMatchingOrder {
		return nil, InvalidTransitionError{From: current.Status, To: newStatus}
	}
	if err != nil {
		return nil, err
	}

	log.Printf("[ORDER] [INFO] order %s moved %s -> %s (forced=%v)", orderNumber, current.Status, newStatus, entry.Forced)
	s.bus.PublishOrderStatusChanged(events.OrderStatusChanged{
		Order:     updated,
		OldStatus: current.Status,
		NewStatus: newStatus,
	})
	return updated, nil
}
