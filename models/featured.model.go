package models

// FeaturedProduct pins a product to a position on the home page
type FeaturedProduct struct {
	ID        string   `bson:"_id" json:"id"`
	ProductID string   `bson:"product_id" json:"product_id"`
	Position  int      `bson:"position" json:"position"`
	Product   *Product `bson:"-" json:"product,omitempty"`
}
