package models

import "time"

// WishlistItem is a product saved for later by a user
type WishlistItem struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	ProductID string    `bson:"product_id" json:"product_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	Product   *Product  `bson:"-" json:"product,omitempty"`
}
