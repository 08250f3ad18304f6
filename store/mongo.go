package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-storefront/models"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

// Collection names
const (
	colUsers      = "users"
	colProducts   = "products"
	colCategories = "categories"
	colCart       = "cart_items"
	colOrders     = "orders"
	colOrderItems = "order_items"
	colCheckouts  = "checkout_requests"
	colWishlist   = "wishlist_items"
	colFeatured   = "featured_products"
	colAboutUs    = "about_us"
	colContactUs  = "contact_us"
	colMessages   = "contact_messages"
)

// Mongo stores every table as a collection of one database.
type Mongo struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions bool
}

func encodeDecimal(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	if val.Type() != decimalType {
		return bsoncodec.ValueEncoderError{Name: "DecimalEncodeValue", Types: []reflect.Type{decimalType}, Received: val}
	}
	d128, err := primitive.ParseDecimal128(val.Interface().(decimal.Decimal).String())
	if err != nil {
		return err
	}
	return vw.WriteDecimal128(d128)
}

func decodeDecimal(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	if !val.CanSet() || val.Type() != decimalType {
		return bsoncodec.ValueDecoderError{Name: "DecimalDecodeValue", Types: []reflect.Type{decimalType}, Received: val}
	}

	var d decimal.Decimal
	switch vr.Type() {
	case bsontype.Decimal128:
		d128, err := vr.ReadDecimal128()
		if err != nil {
			return err
		}
		if d, err = decimal.NewFromString(d128.String()); err != nil {
			return err
		}
	case bsontype.Double:
		f, err := vr.ReadDouble()
		if err != nil {
			return err
		}
		d = decimal.NewFromFloat(f)
	case bsontype.Int32:
		i, err := vr.ReadInt32()
		if err != nil {
			return err
		}
		d = decimal.NewFromInt32(i)
	case bsontype.Int64:
		i, err := vr.ReadInt64()
		if err != nil {
			return err
		}
		d = decimal.NewFromInt(i)
	case bsontype.String:
		s, err := vr.ReadString()
		if err != nil {
			return err
		}
		if d, err = decimal.NewFromString(s); err != nil {
			return err
		}
	case bsontype.Null:
		if err := vr.ReadNull(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("cannot decode %v into a decimal", vr.Type())
	}
	val.Set(reflect.ValueOf(d))
	return nil
}

func newRegistry() *bsoncodec.Registry {
	reg := bson.NewRegistry()
	reg.RegisterTypeEncoder(decimalType, bsoncodec.ValueEncoderFunc(encodeDecimal))
	reg.RegisterTypeDecoder(decimalType, bsoncodec.ValueDecoderFunc(decodeDecimal))
	return reg
}

// NewMongo connects to uri and prepares the indexes the storefront relies on.
// transactions requires a replica set; standalone servers must pass false.
func NewMongo(ctx context.Context, uri, database string, transactions bool) (*Mongo, error) {
	if database == "" {
		database = "ecommerce"
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri).SetRegistry(newRegistry()))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	m := &Mongo{client: client, db: client.Database(database), transactions: transactions}
	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return m, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	// Users created from a bare session have no email yet.
	uniqueEmail := options.Index().SetUnique(true).
		SetPartialFilterExpression(bson.M{"email": bson.M{"$gt": ""}})
	indexes := map[string][]mongo.IndexModel{
		colUsers:    {{Keys: bson.D{{Key: "email", Value: 1}}, Options: uniqueEmail}},
		colCart:     {{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "product_id", Value: 1}}, Options: unique}},
		colWishlist: {{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "product_id", Value: 1}}, Options: unique}},
		colFeatured: {{Keys: bson.D{{Key: "product_id", Value: 1}}, Options: unique}},
		colOrderItems: {
			{Keys: bson.D{{Key: "order_id", Value: 1}}},
		},
		colOrders: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
	for name, idx := range indexes {
		if _, err := m.db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func mapMongoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	}
	return err
}

func (m *Mongo) c(name string) *mongo.Collection {
	return m.db.Collection(name)
}

func (m *Mongo) findOne(ctx context.Context, col string, filter any, out any) error {
	return mapMongoErr(m.c(col).FindOne(ctx, filter).Decode(out))
}

func findAll[T any](ctx context.Context, c *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func requireMatch(res *mongo.UpdateResult, err error) error {
	if err != nil {
		return mapMongoErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func requireDeleted(res *mongo.DeleteResult, err error) error {
	if err != nil {
		return mapMongoErr(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !m.transactions {
		return fn(ctx)
	}
	session, err := m.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Users

func (m *Mongo) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := m.findOne(ctx, colUsers, bson.M{"_id": id}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (m *Mongo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := m.findOne(ctx, colUsers, bson.M{"email": email}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (m *Mongo) GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	var u models.User
	if err := m.findOne(ctx, colUsers, bson.M{"verification_token": token}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (m *Mongo) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = newID(user.ID)
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.UpdatedAt = user.CreatedAt
	_, err := m.c(colUsers).InsertOne(ctx, user)
	return mapMongoErr(err)
}

func (m *Mongo) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	return requireMatch(m.c(colUsers).UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"email":              user.Email,
		"password":           user.Password,
		"role":               user.Role,
		"first_name":         user.FirstName,
		"last_name":          user.LastName,
		"phone":              user.Phone,
		"address_info":       user.Address,
		"profile_image":      user.ProfileImage,
		"is_verified":        user.IsVerified,
		"verification_token": user.VerificationToken,
		"updated_at":         user.UpdatedAt,
	}}))
}

func (m *Mongo) ListUsers(ctx context.Context, role string) ([]models.User, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	return findAll[models.User](ctx, m.c(colUsers), filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

// Catalog

func (m *Mongo) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := m.findOne(ctx, colProducts, bson.M{"_id": id}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func productFilterDoc(f models.ProductFilter) bson.M {
	filter := bson.M{}
	if f.Search != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
	}
	if len(f.CategoryIDs) > 0 {
		filter["category_id"] = bson.M{"$in": f.CategoryIDs}
	}
	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}
	if f.MinRating != nil {
		filter["rating"] = bson.M{"$gte": *f.MinRating}
	}
	return filter
}

func productSortDoc(order string) bson.D {
	switch order {
	case models.SortPriceLow:
		return bson.D{{Key: "price", Value: 1}}
	case models.SortPriceHigh:
		return bson.D{{Key: "price", Value: -1}}
	case models.SortNameAsc:
		return bson.D{{Key: "name", Value: 1}}
	case models.SortNameDesc:
		return bson.D{{Key: "name", Value: -1}}
	}
	return bson.D{{Key: "created_at", Value: -1}}
}

func (m *Mongo) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	return findAll[models.Product](ctx, m.c(colProducts), productFilterDoc(filter), options.Find().SetSort(productSortDoc(filter.Sort)))
}

func (m *Mongo) CreateProduct(ctx context.Context, product *models.Product) error {
	product.ID = newID(product.ID)
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	_, err := m.c(colProducts).InsertOne(ctx, product)
	return mapMongoErr(err)
}

func (m *Mongo) UpdateProduct(ctx context.Context, product *models.Product) error {
	return requireMatch(m.c(colProducts).UpdateOne(ctx, bson.M{"_id": product.ID}, bson.M{"$set": bson.M{
		"name":              product.Name,
		"description":       product.Description,
		"price":             product.Price,
		"stock_quantity":    product.StockQuantity,
		"image_url":         product.ImageURL,
		"additional_images": product.AdditionalImages,
		"category_id":       product.CategoryID,
		"rating":            product.Rating,
	}}))
}

func (m *Mongo) DeleteProduct(ctx context.Context, id string) error {
	return requireDeleted(m.c(colProducts).DeleteOne(ctx, bson.M{"_id": id}))
}

func (m *Mongo) ListCategories(ctx context.Context) ([]models.Category, error) {
	return findAll[models.Category](ctx, m.c(colCategories), bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (m *Mongo) CreateCategory(ctx context.Context, category *models.Category) error {
	category.ID = newID(category.ID)
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}
	_, err := m.c(colCategories).InsertOne(ctx, category)
	return mapMongoErr(err)
}

// Cart

func (m *Mongo) IncrementCartItem(ctx context.Context, userID, productID string, quantity int) (*models.CartItem, error) {
	filter := bson.M{"user_id": userID, "product_id": productID}
	update := bson.M{
		"$inc":         bson.M{"quantity": quantity},
		"$setOnInsert": bson.M{"_id": uuid.New().String(), "created_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var item models.CartItem
	err := m.c(colCart).FindOneAndUpdate(ctx, filter, update, opts).Decode(&item)
	if mongo.IsDuplicateKeyError(err) {
		// Two upserts raced on the unique index; the loser now matches the winner's row.
		err = m.c(colCart).FindOneAndUpdate(ctx, filter, update, opts).Decode(&item)
	}
	if err != nil {
		return nil, mapMongoErr(err)
	}
	return &item, nil
}

func (m *Mongo) SetCartItemQuantity(ctx context.Context, userID, itemID string, quantity int) error {
	return requireMatch(m.c(colCart).UpdateOne(ctx,
		bson.M{"_id": itemID, "user_id": userID},
		bson.M{"$set": bson.M{"quantity": quantity}}))
}

func (m *Mongo) DeleteCartItem(ctx context.Context, userID, itemID string) error {
	return requireDeleted(m.c(colCart).DeleteOne(ctx, bson.M{"_id": itemID, "user_id": userID}))
}

func (m *Mongo) ListCartItems(ctx context.Context, userID string) ([]models.CartItem, error) {
	return findAll[models.CartItem](ctx, m.c(colCart), bson.M{"user_id": userID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

func (m *Mongo) CountCartItems(ctx context.Context, userID string) (int64, error) {
	return m.c(colCart).CountDocuments(ctx, bson.M{"user_id": userID})
}

func (m *Mongo) ClearCart(ctx context.Context, userID string) error {
	_, err := m.c(colCart).DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}

// Orders

func (m *Mongo) InsertOrder(ctx context.Context, order *models.Order) error {
	order.ID = newID(order.ID)
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	_, err := m.c(colOrders).InsertOne(ctx, order)
	return mapMongoErr(err)
}

func (m *Mongo) InsertOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	docs := make([]interface{}, len(items))
	for i := range items {
		items[i].ID = newID(items[i].ID)
		docs[i] = items[i]
	}
	_, err := m.c(colOrderItems).InsertMany(ctx, docs)
	return mapMongoErr(err)
}

func (m *Mongo) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := m.findOne(ctx, colOrders, bson.M{"_id": id}, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (m *Mongo) ListOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	return findAll[models.OrderItem](ctx, m.c(colOrderItems), bson.M{"order_id": orderID})
}

func (m *Mongo) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	doc := bson.M{}
	if filter.UserID != "" {
		doc["user_id"] = filter.UserID
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	return findAll[models.Order](ctx, m.c(colOrders), doc, opts)
}

func (m *Mongo) UpdateOrderStatus(ctx context.Context, id, status string) error {
	return requireMatch(m.c(colOrders).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}}))
}

func (m *Mongo) GetCheckoutRequest(ctx context.Context, id string) (*models.CheckoutRequest, error) {
	var req models.CheckoutRequest
	if err := m.findOne(ctx, colCheckouts, bson.M{"_id": id}, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (m *Mongo) SaveCheckoutRequest(ctx context.Context, req *models.CheckoutRequest) error {
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	_, err := m.c(colCheckouts).InsertOne(ctx, req)
	return mapMongoErr(err)
}

// Wishlist

func (m *Mongo) ListWishlistItems(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	return findAll[models.WishlistItem](ctx, m.c(colWishlist), bson.M{"user_id": userID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

func (m *Mongo) GetWishlistItem(ctx context.Context, userID, itemID string) (*models.WishlistItem, error) {
	var item models.WishlistItem
	if err := m.findOne(ctx, colWishlist, bson.M{"_id": itemID, "user_id": userID}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (m *Mongo) AddWishlistItem(ctx context.Context, item *models.WishlistItem) error {
	item.ID = newID(item.ID)
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	_, err := m.c(colWishlist).InsertOne(ctx, item)
	return mapMongoErr(err)
}

func (m *Mongo) DeleteWishlistItem(ctx context.Context, userID, itemID string) error {
	return requireDeleted(m.c(colWishlist).DeleteOne(ctx, bson.M{"_id": itemID, "user_id": userID}))
}

// Featured products

func (m *Mongo) ListFeatured(ctx context.Context) ([]models.FeaturedProduct, error) {
	return findAll[models.FeaturedProduct](ctx, m.c(colFeatured), bson.M{},
		options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "_id", Value: 1}}))
}

func (m *Mongo) AddFeatured(ctx context.Context, item *models.FeaturedProduct) error {
	item.ID = newID(item.ID)
	_, err := m.c(colFeatured).InsertOne(ctx, item)
	return mapMongoErr(err)
}

func (m *Mongo) DeleteFeatured(ctx context.Context, id string) error {
	return requireDeleted(m.c(colFeatured).DeleteOne(ctx, bson.M{"_id": id}))
}

func (m *Mongo) SetFeaturedPosition(ctx context.Context, id string, position int) error {
	return requireMatch(m.c(colFeatured).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"position": position}}))
}

// Content

func (m *Mongo) GetAboutUs(ctx context.Context) (*models.AboutUs, error) {
	var about models.AboutUs
	if err := m.findOne(ctx, colAboutUs, bson.M{"_id": models.AboutUsID}, &about); err != nil {
		return nil, err
	}
	return &about, nil
}

func (m *Mongo) SaveAboutUs(ctx context.Context, about *models.AboutUs) error {
	about.ID = models.AboutUsID
	about.UpdatedAt = time.Now().UTC()
	_, err := m.c(colAboutUs).ReplaceOne(ctx, bson.M{"_id": about.ID}, about, options.Replace().SetUpsert(true))
	return mapMongoErr(err)
}

func (m *Mongo) GetContactUs(ctx context.Context) (*models.ContactUs, error) {
	var contact models.ContactUs
	if err := m.findOne(ctx, colContactUs, bson.M{"_id": models.ContactUsID}, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

func (m *Mongo) SaveContactUs(ctx context.Context, contact *models.ContactUs) error {
	contact.ID = models.ContactUsID
	contact.UpdatedAt = time.Now().UTC()
	_, err := m.c(colContactUs).ReplaceOne(ctx, bson.M{"_id": contact.ID}, contact, options.Replace().SetUpsert(true))
	return mapMongoErr(err)
}

func (m *Mongo) InsertContactMessage(ctx context.Context, msg *models.ContactMessage) error {
	msg.ID = newID(msg.ID)
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	_, err := m.c(colMessages).InsertOne(ctx, msg)
	return mapMongoErr(err)
}

func (m *Mongo) ListContactMessages(ctx context.Context) ([]models.ContactMessage, error) {
	return findAll[models.ContactMessage](ctx, m.c(colMessages), bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (m *Mongo) UpdateContactMessageStatus(ctx context.Context, id, status string) error {
	return requireMatch(m.c(colMessages).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}}))
}

var _ Store = (*Mongo)(nil)
