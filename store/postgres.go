package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-storefront/models"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// Postgres is a Store backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to uri and applies the schema.
func NewPostgres(ctx context.Context, uri string) (*Postgres, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	p := &Postgres{pool: pool}
	if err := p.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// q returns the transaction carried by ctx, or the pool.
func (p *Postgres) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return p.pool
}

func (p *Postgres) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback(ctx)
			panic(r)
		} else if err != nil {
			tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(context.WithValue(ctx, txKey{}, tx))
	return err
}

func (p *Postgres) Close(ctx context.Context) error {
	p.pool.Close()
	return nil
}

func mapPgErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

func requireAffected(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return mapPgErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Users

const userColumns = `id, email, password, role, first_name, last_name, phone,
	address, city, state, postal_code, country, profile_image, is_verified,
	verification_token, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Role, &u.FirstName, &u.LastName, &u.Phone,
		&u.Address.Address, &u.Address.City, &u.Address.State, &u.Address.PostalCode, &u.Address.Country,
		&u.ProfileImage, &u.IsVerified, &u.VerificationToken, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapPgErr(err)
	}
	return &u, nil
}

func (p *Postgres) GetUser(ctx context.Context, id string) (*models.User, error) {
	return scanUser(p.q(ctx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(p.q(ctx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
}

func (p *Postgres) GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return scanUser(p.q(ctx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE verification_token = $1`, token))
}

func (p *Postgres) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = newID(user.ID)
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.UpdatedAt = user.CreatedAt
	_, err := p.q(ctx).Exec(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		user.ID, user.Email, user.Password, user.Role, user.FirstName, user.LastName, user.Phone,
		user.Address.Address, user.Address.City, user.Address.State, user.Address.PostalCode, user.Address.Country,
		user.ProfileImage, user.IsVerified, user.VerificationToken, user.CreatedAt, user.UpdatedAt)
	return mapPgErr(err)
}

func (p *Postgres) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	tag, err := p.q(ctx).Exec(ctx, `UPDATE users SET email = $2, password = $3, role = $4,
		first_name = $5, last_name = $6, phone = $7, address = $8, city = $9, state = $10,
		postal_code = $11, country = $12, profile_image = $13, is_verified = $14,
		verification_token = $15, updated_at = $16
		WHERE id = $1`,
		user.ID, user.Email, user.Password, user.Role, user.FirstName, user.LastName, user.Phone,
		user.Address.Address, user.Address.City, user.Address.State, user.Address.PostalCode, user.Address.Country,
		user.ProfileImage, user.IsVerified, user.VerificationToken, user.UpdatedAt)
	return requireAffected(tag, err)
}

func (p *Postgres) ListUsers(ctx context.Context, role string) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var args []any
	if role != "" {
		query += ` WHERE role = $1`
		args = append(args, role)
	}
	query += ` ORDER BY created_at DESC`
	rows, err := p.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Catalog

const productColumns = `id, name, description, price, stock_quantity, image_url,
	additional_images, category_id, rating, created_at`

func scanProduct(row pgx.Row) (*models.Product, error) {
	var pr models.Product
	err := row.Scan(&pr.ID, &pr.Name, &pr.Description, &pr.Price, &pr.StockQuantity, &pr.ImageURL,
		&pr.AdditionalImages, &pr.CategoryID, &pr.Rating, &pr.CreatedAt)
	if err != nil {
		return nil, mapPgErr(err)
	}
	return &pr, nil
}

func (p *Postgres) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return scanProduct(p.q(ctx).QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
}

var productOrder = map[string]string{
	models.SortNewest:    "created_at DESC",
	models.SortPriceLow:  "price ASC",
	models.SortPriceHigh: "price DESC",
	models.SortNameAsc:   "name ASC",
	models.SortNameDesc:  "name DESC",
}

// likeEscaper escapes ILIKE metacharacters in user search text.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (p *Postgres) ListProducts(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Search != "" {
		where = append(where, "name ILIKE "+arg("%"+likeEscaper.Replace(f.Search)+"%"))
	}
	if len(f.CategoryIDs) > 0 {
		where = append(where, "category_id = ANY("+arg(f.CategoryIDs)+")")
	}
	if f.MinPrice != nil {
		where = append(where, "price >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		where = append(where, "price <= "+arg(*f.MaxPrice))
	}
	if f.MinRating != nil {
		where = append(where, "rating >= "+arg(*f.MinRating))
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	order, ok := productOrder[f.Sort]
	if !ok {
		order = productOrder[models.SortNewest]
	}
	query += " ORDER BY " + order + ", created_at ASC"

	rows, err := p.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		pr, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *pr)
	}
	return products, rows.Err()
}

func (p *Postgres) CreateProduct(ctx context.Context, pr *models.Product) error {
	pr.ID = newID(pr.ID)
	if pr.CreatedAt.IsZero() {
		pr.CreatedAt = time.Now().UTC()
	}
	if pr.AdditionalImages == nil {
		pr.AdditionalImages = []string{}
	}
	_, err := p.q(ctx).Exec(ctx, `INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		pr.ID, pr.Name, pr.Description, pr.Price, pr.StockQuantity, pr.ImageURL,
		pr.AdditionalImages, pr.CategoryID, pr.Rating, pr.CreatedAt)
	return mapPgErr(err)
}

func (p *Postgres) UpdateProduct(ctx context.Context, pr *models.Product) error {
	if pr.AdditionalImages == nil {
		pr.AdditionalImages = []string{}
	}
	tag, err := p.q(ctx).Exec(ctx, `UPDATE products SET name = $2, description = $3, price = $4,
		stock_quantity = $5, image_url = $6, additional_images = $7, category_id = $8, rating = $9
		WHERE id = $1`,
		pr.ID, pr.Name, pr.Description, pr.Price, pr.StockQuantity, pr.ImageURL,
		pr.AdditionalImages, pr.CategoryID, pr.Rating)
	return requireAffected(tag, err)
}

func (p *Postgres) DeleteProduct(ctx context.Context, id string) error {
	return requireAffected(p.q(ctx).Exec(ctx, `DELETE FROM products WHERE id = $1`, id))
}

func (p *Postgres) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := p.q(ctx).Query(ctx, `SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Category, error) {
		var c models.Category
		err := row.Scan(&c.ID, &c.Name, &c.CreatedAt)
		return c, err
	})
}

func (p *Postgres) CreateCategory(ctx context.Context, c *models.Category) error {
	c.ID = newID(c.ID)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := p.q(ctx).Exec(ctx, `INSERT INTO categories (id, name, created_at) VALUES ($1, $2, $3)`,
		c.ID, c.Name, c.CreatedAt)
	return mapPgErr(err)
}

// Cart

func scanCartItem(row pgx.Row) (models.CartItem, error) {
	var item models.CartItem
	err := row.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt)
	return item, err
}

func (p *Postgres) IncrementCartItem(ctx context.Context, userID, productID string, quantity int) (*models.CartItem, error) {
	row := p.q(ctx).QueryRow(ctx, `INSERT INTO cart_items (id, user_id, product_id, quantity, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, user_id, product_id, quantity, created_at`,
		newID(""), userID, productID, quantity)
	item, err := scanCartItem(row)
	if err != nil {
		return nil, mapPgErr(err)
	}
	return &item, nil
}

func (p *Postgres) SetCartItemQuantity(ctx context.Context, userID, itemID string, quantity int) error {
	return requireAffected(p.q(ctx).Exec(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE id = $1 AND user_id = $2`, itemID, userID, quantity))
}

func (p *Postgres) DeleteCartItem(ctx context.Context, userID, itemID string) error {
	return requireAffected(p.q(ctx).Exec(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID))
}

func (p *Postgres) ListCartItems(ctx context.Context, userID string) ([]models.CartItem, error) {
	rows, err := p.q(ctx).Query(ctx, `SELECT id, user_id, product_id, quantity, created_at
		FROM cart_items WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.CartItem, error) {
		return scanCartItem(row)
	})
}

func (p *Postgres) CountCartItems(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := p.q(ctx).QueryRow(ctx, `SELECT count(*) FROM cart_items WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func (p *Postgres) ClearCart(ctx context.Context, userID string) error {
	_, err := p.q(ctx).Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}

// Orders

const orderColumns = `id, user_id, status, total, shipping_address, payment_method, created_at`

func scanOrder(row pgx.Row) (models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.Total, &o.ShippingAddress, &o.PaymentMethod, &o.CreatedAt)
	return o, err
}

func (p *Postgres) InsertOrder(ctx context.Context, o *models.Order) error {
	o.ID = newID(o.ID)
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	_, err := p.q(ctx).Exec(ctx, `INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.UserID, o.Status, o.Total, o.ShippingAddress, o.PaymentMethod, o.CreatedAt)
	return mapPgErr(err)
}

// InsertOrderItems writes all items in one multi-row statement.
func (p *Postgres) InsertOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	values := make([]string, 0, len(items))
	args := make([]any, 0, len(items)*5)
	for i := range items {
		items[i].ID = newID(items[i].ID)
		n := len(args)
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5))
		args = append(args, items[i].ID, items[i].OrderID, items[i].ProductID, items[i].Quantity, items[i].Price)
	}
	_, err := p.q(ctx).Exec(ctx, `INSERT INTO order_items (id, order_id, product_id, quantity, price) VALUES `+
		strings.Join(values, ", "), args...)
	return mapPgErr(err)
}

func (p *Postgres) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	o, err := scanOrder(p.q(ctx).QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, mapPgErr(err)
	}
	return &o, nil
}

func (p *Postgres) ListOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	rows, err := p.q(ctx).Query(ctx, `SELECT id, order_id, product_id, quantity, price
		FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.OrderItem, error) {
		var item models.OrderItem
		err := row.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price)
		return item, err
	})
}

func (p *Postgres) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []any
	if f.UserID != "" {
		args = append(args, f.UserID)
		query += ` WHERE user_id = $1`
	}
	query += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}
	rows, err := p.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Order, error) {
		return scanOrder(row)
	})
}

func (p *Postgres) UpdateOrderStatus(ctx context.Context, id, status string) error {
	return requireAffected(p.q(ctx).Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status))
}

func (p *Postgres) GetCheckoutRequest(ctx context.Context, id string) (*models.CheckoutRequest, error) {
	var req models.CheckoutRequest
	err := p.q(ctx).QueryRow(ctx, `SELECT id, user_id, order_id, created_at FROM checkout_requests WHERE id = $1`, id).
		Scan(&req.ID, &req.UserID, &req.OrderID, &req.CreatedAt)
	if err != nil {
		return nil, mapPgErr(err)
	}
	return &req, nil
}

func (p *Postgres) SaveCheckoutRequest(ctx context.Context, req *models.CheckoutRequest) error {
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	_, err := p.q(ctx).Exec(ctx, `INSERT INTO checkout_requests (id, user_id, order_id, created_at)
		VALUES ($1, $2, $3, $4)`, req.ID, req.UserID, req.OrderID, req.CreatedAt)
	return mapPgErr(err)
}

// Wishlist

func scanWishlistItem(row pgx.Row) (models.WishlistItem, error) {
	var item models.WishlistItem
	err := row.Scan(&item.ID, &item.UserID, &item.ProductID, &item.CreatedAt)
	return item, err
}

func (p *Postgres) ListWishlistItems(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	rows, err := p.q(ctx).Query(ctx, `SELECT id, user_id, product_id, created_at
		FROM wishlist_items WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.WishlistItem, error) {
		return scanWishlistItem(row)
	})
}

func (p *Postgres) GetWishlistItem(ctx context.Context, userID, itemID string) (*models.WishlistItem, error) {
	item, err := scanWishlistItem(p.q(ctx).QueryRow(ctx, `SELECT id, user_id, product_id, created_at
		FROM wishlist_items WHERE id = $1 AND user_id = $2`, itemID, userID))
	if err != nil {
		return nil, mapPgErr(err)
	}
	return &item, nil
}

func (p *Postgres) AddWishlistItem(ctx context.Context, item *models.WishlistItem) error {
	item.ID = newID(item.ID)
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	_, err := p.q(ctx).Exec(ctx, `INSERT INTO wishlist_items (id, user_id, product_id, created_at)
		VALUES ($1, $2, $3, $4)`, item.ID, item.UserID, item.ProductID, item.CreatedAt)
	return mapPgErr(err)
}

func (p *Postgres) DeleteWishlistItem(ctx context.Context, userID, itemID string) error {
	return requireAffected(p.q(ctx).Exec(ctx,
		`DELETE FROM wishlist_items WHERE id = $1 AND user_id = $2`, itemID, userID))
}

// Featured products

func (p *Postgres) ListFeatured(ctx context.Context) ([]models.FeaturedProduct, error) {
	rows, err := p.q(ctx).Query(ctx, `SELECT id, product_id, position FROM featured_products ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.FeaturedProduct, error) {
		var f models.FeaturedProduct
		err := row.Scan(&f.ID, &f.ProductID, &f.Position)
		return f, err
	})
}

func (p *Postgres) AddFeatured(ctx context.Context, item *models.FeaturedProduct) error {
	item.ID = newID(item.ID)
	_, err := p.q(ctx).Exec(ctx, `INSERT INTO featured_products (id, product_id, position) VALUES ($1, $2, $3)`,
		item.ID, item.ProductID, item.Position)
	return mapPgErr(err)
}

func (p *Postgres) DeleteFeatured(ctx context.Context, id string) error {
	return requireAffected(p.q(ctx).Exec(ctx, `DELETE FROM featured_products WHERE id = $1`, id))
}

func (p *Postgres) SetFeaturedPosition(ctx context.Context, id string, position int) error {
	return requireAffected(p.q(ctx).Exec(ctx,
		`UPDATE featured_products SET position = $2 WHERE id = $1`, id, position))
}

// Content

func (p *Postgres) GetAboutUs(ctx context.Context) (*models.AboutUs, error) {
	var a models.AboutUs
	err := p.q(ctx).QueryRow(ctx, `SELECT id, title, content, mission, vision, team_members, updated_at
		FROM about_us WHERE id = $1`, models.AboutUsID).
		Scan(&a.ID, &a.Title, &a.Content, &a.Mission, &a.Vision, &a.TeamMembers, &a.UpdatedAt)
	if err != nil {
		return nil, mapPgErr(err)
	}
	return &a, nil
}

func (p *Postgres) SaveAboutUs(ctx context.Context, a *models.AboutUs) error {
	a.ID = models.AboutUsID
	a.UpdatedAt = time.Now().UTC()
	if a.TeamMembers == nil {
		a.TeamMembers = []models.TeamMember{}
	}
	_, err := p.q(ctx).Exec(ctx, `INSERT INTO about_us (id, title, content, mission, vision, team_members, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, content = EXCLUDED.content,
			mission = EXCLUDED.mission, vision = EXCLUDED.vision,
			team_members = EXCLUDED.team_members, updated_at = EXCLUDED.updated_at`,
		a.ID, a.Title, a.Content, a.Mission, a.Vision, a.TeamMembers, a.UpdatedAt)
	return err
}

func (p *Postgres) GetContactUs(ctx context.Context) (*models.ContactUs, error) {
	var c models.ContactUs
	err := p.q(ctx).QueryRow(ctx, `SELECT id, title, content, email, phone, address, map_url, social_media, updated_at
		FROM contact_us WHERE id = $1`, models.ContactUsID).
		Scan(&c.ID, &c.Title, &c.Content, &c.Email, &c.Phone, &c.Address, &c.MapURL, &c.SocialMedia, &c.UpdatedAt)
	if err != nil {
		return nil, mapPgErr(err)
	}
	return &c, nil
}

func (p *Postgres) SaveContactUs(ctx context.Context, c *models.ContactUs) error {
	c.ID = models.ContactUsID
	c.UpdatedAt = time.Now().UTC()
	if c.SocialMedia == nil {
		c.SocialMedia = []models.SocialLink{}
	}
	_, err := p.q(ctx).Exec(ctx, `INSERT INTO contact_us (id, title, content, email, phone, address, map_url, social_media, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, content = EXCLUDED.content,
			email = EXCLUDED.email, phone = EXCLUDED.phone, address = EXCLUDED.address,
			map_url = EXCLUDED.map_url, social_media = EXCLUDED.social_media, updated_at = EXCLUDED.updated_at`,
		c.ID, c.Title, c.Content, c.Email, c.Phone, c.Address, c.MapURL, c.SocialMedia, c.UpdatedAt)
	return err
}

func (p *Postgres) InsertContactMessage(ctx context.Context, msg *models.ContactMessage) error {
	msg.ID = newID(msg.ID)
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	_, err := p.q(ctx).Exec(ctx, `INSERT INTO contact_messages (id, name, email, subject, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		msg.ID, msg.Name, msg.Email, msg.Subject, msg.Message, msg.Status, msg.CreatedAt)
	return mapPgErr(err)
}

func (p *Postgres) ListContactMessages(ctx context.Context) ([]models.ContactMessage, error) {
	rows, err := p.q(ctx).Query(ctx, `SELECT id, name, email, subject, message, status, created_at
		FROM contact_messages ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ContactMessage, error) {
		var m models.ContactMessage
		err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Status, &m.CreatedAt)
		return m, err
	})
}

func (p *Postgres) UpdateContactMessageStatus(ctx context.Context, id, status string) error {
	return requireAffected(p.q(ctx).Exec(ctx, `UPDATE contact_messages SET status = $2 WHERE id = $1`, id, status))
}

var _ Store = (*Postgres)(nil)
