package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureOrderIndexes creates the unique orderNumber index. The order
// service's pre-insert collision check is only an optimization; this index
// is what actually closes the check-then-insert race.
func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	log.Println("EnsureOrderIndexes: creating orderNumber_unique index")
	_, err := indexes.CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "orderNumber", Value: 1}},
		Options: options.Index().
			SetName("orderNumber_unique").
			SetUnique(true),
	})
	if err != nil {
		log.Println("EnsureOrderIndexes: orderNumber index error:", err)
		return err
	}

	log.Println("EnsureOrderIndexes: creating userId_createdAt index")
	_, err = indexes.CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("userId_createdAt"),
	})
	if err != nil {
		log.Println("EnsureOrderIndexes: userId index error:", err)
		return err
	}
	return nil
}

// EnsureRecipientIndexes makes token and endpoint the upsert keys for the
// two recipient collections.
func EnsureRecipientIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Println("EnsureRecipientIndexes: creating token_unique index")
	_, err := db.Collection("device_tokens").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "token", Value: 1}},
		Options: options.Index().
			SetName("token_unique").
			SetUnique(true),
	})
	if err != nil {
		log.Println("EnsureRecipientIndexes: token index error:", err)
		return err
	}

	log.Println("EnsureRecipientIndexes: creating endpoint_unique index")
	_, err = db.Collection("web_push_subscriptions").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "endpoint", Value: 1}},
		Options: options.Index().
			SetName("endpoint_unique").
			SetUnique(true),
	})
	if err != nil {
		log.Println("EnsureRecipientIndexes: endpoint index error:", err)
		return err
	}
	return nil
}

// EnsureUserIndexes keeps account emails unique.
func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Println("EnsureUserIndexes: creating email_unique index")
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	})
	if err != nil {
		log.Println("EnsureUserIndexes: email index error:", err)
		return err
	}
	return nil
}

// EnsureProductIndexes speeds up the pricing engine's size lookups.
func EnsureProductIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Println("EnsureProductIndexes: creating sizes_id index")
	_, err := db.Collection("products").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "sizes._id", Value: 1}},
		Options: options.Index().SetName("sizes_id_index"),
	})
	if err != nil {
		log.Println("EnsureProductIndexes: sizes index error:", err)
		return err
	}
	return nil
}
