package pricing

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

// MongoCatalog reads products and addons from their collections. It works
// with session contexts, so the engine can run inside an order transaction.
type MongoCatalog struct {
	db *mongo.Database
}

func NewMongoCatalog(db *mongo.Database) *MongoCatalog {
	return &MongoCatalog{db: db}
}

func (c *MongoCatalog) SizeByID(ctx context.Context, sizeID primitive.ObjectID) (SizeSelection, error) {
	var product models.Product
	err := c.db.Collection("products").FindOne(ctx, bson.M{"sizes._id": sizeID}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return SizeSelection{}, ErrSizeNotFound
	}
	if err != nil {
		return SizeSelection{}, err
	}

	for _, size := range product.Sizes {
		if size.ID == sizeID {
			return SizeSelection{
				ProductID:   product.ID,
				SizeID:      size.ID,
				ProductName: product.Name,
				Size:        size.Size,
				Price:       size.Price,
				Available:   product.IsAvailable,
			}, nil
		}
	}
	return SizeSelection{}, ErrSizeNotFound
}

func (c *MongoCatalog) AvailableAddons(ctx context.Context, addonIDs []primitive.ObjectID) ([]models.Addon, error) {
	if len(addonIDs) == 0 {
		return nil, nil
	}

	cursor, err := c.db.Collection("addons").Find(ctx, bson.M{
		"_id":         bson.M{"$in": addonIDs},
		"isAvailable": true,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var addons []models.Addon
	if err := cursor.All(ctx, &addons); err != nil {
		return nil, err
	}
	return addons, nil
}
