package notify

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

// guestRecipientWindow bounds the recent-registration fallback used for
// guest orders.
const guestRecipientWindow = 24 * time.Hour

// Store reads and mutates notification recipients. Registration endpoints
// and the dispatchers' cleanup pass both go through it; every operation is
// an idempotent upsert or delete keyed by token/endpoint.
type Store struct {
	db *mongo.Database
}

func NewStore(db *mongo.Database) *Store {
	return &Store{db: db}
}

func (s *Store) UpsertDeviceToken(ctx context.Context, token, platform string, userID *primitive.ObjectID) error {
	now := time.Now()
	_, err := s.db.Collection("device_tokens").UpdateOne(ctx,
		bson.M{"token": token},
		bson.M{
			"$set": bson.M{
				"userId":    userID,
				"platform":  platform,
				"updatedAt": now,
			},
			"$setOnInsert": bson.M{"createdAt": now},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *Store) DeleteDeviceToken(ctx context.Context, token string) error {
	_, err := s.db.Collection("device_tokens").DeleteOne(ctx, bson.M{"token": token})
	return err
}

// DeleteDeviceTokens removes a batch of dead tokens in one call. Used by
// the mobile dispatcher after a delivery pass.
func (s *Store) DeleteDeviceTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	_, err := s.db.Collection("device_tokens").DeleteMany(ctx, bson.M{"token": bson.M{"$in": tokens}})
	return err
}

func (s *Store) UpsertSubscription(ctx context.Context, endpoint, p256dh, auth string, userID *primitive.ObjectID) error {
	now := time.Now()
	_, err := s.db.Collection("web_push_subscriptions").UpdateOne(ctx,
		bson.M{"endpoint": endpoint},
		bson.M{
			"$set": bson.M{
				"userId":    userID,
				"p256dhKey": p256dh,
				"authKey":   auth,
				"updatedAt": now,
			},
			"$setOnInsert": bson.M{"createdAt": now},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *Store) DeleteSubscription(ctx context.Context, endpoint string) error {
	_, err := s.db.Collection("web_push_subscriptions").DeleteOne(ctx, bson.M{"endpoint": endpoint})
	return err
}

// DeleteSubscriptions removes a batch of expired endpoints in one call.
// Used by the web dispatcher after a delivery pass.
func (s *Store) DeleteSubscriptions(ctx context.Context, endpoints []string) error {
	if len(endpoints) == 0 {
		return nil
	}
	_, err := s.db.Collection("web_push_subscriptions").DeleteMany(ctx, bson.M{"endpoint": bson.M{"$in": endpoints}})
	return err
}

// TokensForOrder resolves the mobile recipient set for an order: the
// owner's registered tokens, or for guest orders every unattached token
// registered in the 24 hours before the order. The guest window is a
// best-effort approximation, not an exact match to the ordering device.
func (s *Store) TokensForOrder(ctx context.Context, order *models.Order) ([]string, error) {
	cursor, err := s.db.Collection("device_tokens").Find(ctx, s.recipientFilter(order))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []models.DeviceToken
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	tokens := make([]string, 0, len(docs))
	for _, doc := range docs {
		tokens = append(tokens, doc.Token)
	}
	return tokens, nil
}

// SubscriptionsForOrder resolves the web recipient set for an order, with
// the same owner-or-guest-window rules as TokensForOrder.
func (s *Store) SubscriptionsForOrder(ctx context.Context, order *models.Order) ([]models.WebPushSubscription, error) {
	cursor, err := s.db.Collection("web_push_subscriptions").Find(ctx, s.recipientFilter(order))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subs []models.WebPushSubscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *Store) recipientFilter(order *models.Order) bson.M {
	if order.UserID != nil {
		return bson.M{"userId": *order.UserID}
	}
	return bson.M{
		"userId":    nil,
		"createdAt": bson.M{"$gte": order.CreatedAt.Add(-guestRecipientWindow)},
	}
}
