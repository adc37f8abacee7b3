package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

// ErrSizeNotFound is returned when a cart line references a size id that
// does not exist in the catalog.
var ErrSizeNotFound = errors.New("product size not found")

// ProductUnavailableError rejects a cart line whose product is disabled.
type ProductUnavailableError struct {
	ProductName string
}

func (e ProductUnavailableError) Error() string {
	return fmt.Sprintf("Sorry, %s is currently unavailable. Please remove it from your cart and try again.", e.ProductName)
}

// SizeSelection is a catalog lookup result for one product size.
type SizeSelection struct {
	ProductID   primitive.ObjectID
	SizeID      primitive.ObjectID
	ProductName string
	Size        string
	Price       float64
	Available   bool
}

// Catalog is the read-only catalog surface the engine needs.
type Catalog interface {
	SizeByID(ctx context.Context, sizeID primitive.ObjectID) (SizeSelection, error)
	AvailableAddons(ctx context.Context, addonIDs []primitive.ObjectID) ([]models.Addon, error)
}

// Engine resolves cart lines into priced snapshots detached from live
// catalog state. It has no side effects.
type Engine struct {
	catalog Catalog
}

func NewEngine(catalog Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// PriceLine snapshots one cart line. An unavailable product fails the line
// with ProductUnavailableError; unavailable add-ons are silently excluded.
func (e *Engine) PriceLine(ctx context.Context, sizeID primitive.ObjectID, addonIDs []primitive.ObjectID, quantity int) (models.OrderItem, error) {
	selection, err := e.catalog.SizeByID(ctx, sizeID)
	if err != nil {
		return models.OrderItem{}, err
	}
	if !selection.Available {
		return models.OrderItem{}, ProductUnavailableError{ProductName: selection.ProductName}
	}

	var addons []models.OrderItemAddon
	addonsTotal := 0.0
	if len(addonIDs) > 0 {
		available, err := e.catalog.AvailableAddons(ctx, addonIDs)
		if err != nil {
			return models.OrderItem{}, err
		}
		for _, addon := range available {
			addons = append(addons, models.OrderItemAddon{
				AddonID:  addon.ID,
				Name:     addon.Name,
				Price:    addon.Price,
				Quantity: 1,
			})
			addonsTotal += addon.Price
		}
	}

	unitPrice := roundCents(selection.Price + addonsTotal)
	return models.OrderItem{
		ProductID:   selection.ProductID,
		SizeID:      selection.SizeID,
		ProductName: selection.ProductName,
		Size:        selection.Size,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalPrice:  roundCents(unitPrice * float64(quantity)),
		Addons:      addons,
	}, nil
}

func roundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
