package orders

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

// errNoMatchingOrder reports that a guarded status update matched no
// document: the order is gone or its status moved underneath us.
var errNoMatchingOrder = errors.New("no order matched the status guard")

// storage is the persistence seam under the service, in the spirit of the
// numberExists func the code generator takes. Tests substitute an
// in-memory implementation.
type storage interface {
	RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	InsertOrder(ctx context.Context, order *models.Order) error
	FindOrder(ctx context.Context, orderNumber string) (*models.Order, error)
	OrderNumberExists(ctx context.Context, number string) (bool, error)
	ApplyTransition(ctx context.Context, orderNumber string, current models.OrderStatus, entry models.StatusHistoryEntry) (*models.Order, error)
}

type mongoStorage struct {
	db *mongo.Database
}

func (m *mongoStorage) RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

func (m *mongoStorage) InsertOrder(ctx context.Context, order *models.Order) error {
	res, err := m.db.Collection("orders").InsertOne(ctx, *order)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = id
	}
	return nil
}

func (m *mongoStorage) FindOrder(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := m.db.Collection("orders").FindOne(ctx, bson.M{"orderNumber": orderNumber}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (m *mongoStorage) OrderNumberExists(ctx context.Context, number string) (bool, error) {
	count, err := m.db.Collection("orders").CountDocuments(ctx, bson.M{"orderNumber": number})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ApplyTransition atomically moves the order to the entry's status and
// appends the history entry. The status guard in the filter makes the
// caller's read-check-write safe against a concurrent transition on the
// same order.
func (m *mongoStorage) ApplyTransition(ctx context.Context, orderNumber string, current models.OrderStatus, entry models.StatusHistoryEntry) (*models.Order, error) {
	var updated models.Order
	err := m.db.Collection("orders").FindOneAndUpdate(ctx,
		bson.M{"orderNumber": orderNumber, "status": current},
		bson.M{
			"$set":  bson.M{"status": entry.Status},
			"$push": bson.M{"statusHistory": entry},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, errNoMatchingOrder
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
