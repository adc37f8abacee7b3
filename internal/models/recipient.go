package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeviceToken is a registered mobile push endpoint. UserID is nil for
// tokens registered by guest sessions.
type DeviceToken struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    *primitive.ObjectID `bson:"userId" json:"userId"`
	Token     string              `bson:"token" json:"token"`
	Platform  string              `bson:"platform" json:"platform"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// WebPushSubscription is a registered browser push endpoint with its
// encryption keys. UserID is nil for subscriptions from guest sessions.
type WebPushSubscription struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    *primitive.ObjectID `bson:"userId" json:"userId"`
	Endpoint  string              `bson:"endpoint" json:"endpoint"`
	P256dhKey string              `bson:"p256dhKey" json:"p256dhKey"`
	AuthKey   string              `bson:"authKey" json:"authKey"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}
