package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductSize is one orderable size of a product. Sizes are embedded in the
// product document and referenced by their own id from cart lines.
type ProductSize struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Size  string             `bson:"size" json:"size"`
	Price float64            `bson:"price" json:"price"`
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	ImagePath   string             `bson:"imagePath,omitempty" json:"imagePath,omitempty"`
	IsAvailable bool               `bson:"isAvailable" json:"isAvailable"`
	Sizes       []ProductSize      `bson:"sizes" json:"sizes"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Addon is an orderable extra, priced per unit.
type Addon struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Price       float64            `bson:"price" json:"price"`
	IsAvailable bool               `bson:"isAvailable" json:"isAvailable"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
