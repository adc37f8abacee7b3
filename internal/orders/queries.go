package orders

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

// AdminListFilter narrows the admin order listing.
type AdminListFilter struct {
	Status  models.OrderStatus
	Search  string
	Page    int64
	PerPage int64
}

// OrderByNumber loads one fully populated aggregate (items, addons and
// history are embedded, so a single read returns everything).
func (s *Service) OrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	return s.store.FindOrder(ctx, orderNumber)
}

// OrdersByUser returns one page of the user's orders, newest first, with
// the total match count for pagination metadata.
func (s *Service) OrdersByUser(ctx context.Context, userID primitive.ObjectID, page, perPage int64) ([]models.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	filter := bson.M{"userId": userID}
	collection := s.db.Collection("orders")

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := collection.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page-1)*perPage).
		SetLimit(perPage))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var results []models.Order
	if err := cursor.All(ctx, &results); err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// AdminList returns orders for the admin dashboard with optional status
// filter and order-number / customer text search.
func (s *Service) AdminList(ctx context.Context, filter AdminListFilter) ([]models.Order, int64, error) {
	query := bson.M{}
	if filter.Status != "" && filter.Status != "all" {
		query["status"] = filter.Status
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexQuote(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"orderNumber": pattern},
			bson.M{"customerName": pattern},
			bson.M{"customerPhone": pattern},
		}
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 || perPage > 100 {
		perPage = 15
	}

	collection := s.db.Collection("orders")
	total, err := collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := collection.Find(ctx, query, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page-1)*perPage).
		SetLimit(perPage))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var results []models.Order
	if err := cursor.All(ctx, &results); err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// ActiveOrders returns today's non-terminal orders for the kanban board.
func (s *Service) ActiveOrders(ctx context.Context) ([]models.Order, error) {
	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	cursor, err := s.db.Collection("orders").Find(ctx, bson.M{
		"createdAt": bson.M{"$gte": startOfDay},
		"status": bson.M{"$nin": bson.A{
			models.StatusDelivered,
			models.StatusCancelled,
		}},
	}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []models.Order
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// regexQuote escapes the characters mongo's $regex treats specially so
// user search input is matched literally.
func regexQuote(s string) string {
	const special = `\.+*?()|[]{}^$`
	out := make([]rune, 0, len(s))
	for _, r := range s {
		for _, sp := range special {
			if r == sp {
				out = append(out, '\\')
				break
			}
		}
		out = append(out, r)
	}
	return string(out)
}
