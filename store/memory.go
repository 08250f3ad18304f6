package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-storefront/models"
)

type tables struct {
	users      map[string]models.User
	products   map[string]models.Product
	categories map[string]models.Category
	cart       map[string]models.CartItem
	orders     map[string]models.Order
	orderItems map[string]models.OrderItem
	checkouts  map[string]models.CheckoutRequest
	wishlist   map[string]models.WishlistItem
	featured   map[string]models.FeaturedProduct
	messages   map[string]models.ContactMessage
	about      *models.AboutUs
	contact    *models.ContactUs
}

func newTables() tables {
	return tables{
		users:      make(map[string]models.User),
		products:   make(map[string]models.Product),
		categories: make(map[string]models.Category),
		cart:       make(map[string]models.CartItem),
		orders:     make(map[string]models.Order),
		orderItems: make(map[string]models.OrderItem),
		checkouts:  make(map[string]models.CheckoutRequest),
		wishlist:   make(map[string]models.WishlistItem),
		featured:   make(map[string]models.FeaturedProduct),
		messages:   make(map[string]models.ContactMessage),
	}
}

func cloneMap[V any](src map[string]V) map[string]V {
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (t tables) clone() tables {
	c := tables{
		users:      cloneMap(t.users),
		products:   cloneMap(t.products),
		categories: cloneMap(t.categories),
		cart:       cloneMap(t.cart),
		orders:     cloneMap(t.orders),
		orderItems: cloneMap(t.orderItems),
		checkouts:  cloneMap(t.checkouts),
		wishlist:   cloneMap(t.wishlist),
		featured:   cloneMap(t.featured),
		messages:   cloneMap(t.messages),
	}
	if t.about != nil {
		about := *t.about
		c.about = &about
	}
	if t.contact != nil {
		contact := *t.contact
		c.contact = &contact
	}
	return c
}

// Memory is an in-process Store. Faults can be injected per operation name
// (the method name, e.g. "InsertOrderItems") to exercise partial failures.
type Memory struct {
	// txMu is held for the whole of a transaction. Writers outside that
	// transaction wait on it, so a rollback only discards the transaction's
	// own writes.
	txMu   sync.Mutex
	mu     sync.RWMutex
	t      tables
	faults map[string]error
	last   time.Time
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		t:      newTables(),
		faults: make(map[string]error),
	}
}

// SetFault makes every call to op fail with err until cleared with a nil err.
func (m *Memory) SetFault(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.faults, op)
		return
	}
	m.faults[op] = err
}

func (m *Memory) fault(op string) error {
	return m.faults[op]
}

// now returns a strictly increasing clock so insertion order survives sorting.
func (m *Memory) now() time.Time {
	t := time.Now().UTC()
	if !t.After(m.last) {
		t = m.last.Add(time.Microsecond)
	}
	m.last = t
	return t
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.New().String()
}

type memTxKey struct{}

func inTx(ctx context.Context) bool {
	return ctx.Value(memTxKey{}) != nil
}

// lockWrite takes the write lock, first waiting for any transaction that ctx
// is not part of.
func (m *Memory) lockWrite(ctx context.Context) func() {
	if inTx(ctx) {
		m.mu.Lock()
		return m.mu.Unlock
	}
	m.txMu.Lock()
	m.mu.Lock()
	return func() {
		m.mu.Unlock()
		m.txMu.Unlock()
	}
}

func (m *Memory) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.RLock()
	snapshot := m.t.clone()
	m.mu.RUnlock()

	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		m.mu.Lock()
		m.t = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *Memory) Close(ctx context.Context) error { return nil }

// Users

func (m *Memory) GetUser(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fault("GetUser"); err != nil {
		return nil, err
	}
	u, ok := m.t.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.t.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if token == "" {
		return nil, ErrNotFound
	}
	for _, u := range m.t.users {
		if u.VerificationToken == token {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) CreateUser(ctx context.Context, user *models.User) error {
	defer m.lockWrite(ctx)()
	if err := m.fault("CreateUser"); err != nil {
		return err
	}
	user.ID = newID(user.ID)
	if _, ok := m.t.users[user.ID]; ok {
		return ErrDuplicate
	}
	for _, u := range m.t.users {
		if user.Email != "" && strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicate
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = m.now()
	}
	user.UpdatedAt = user.CreatedAt
	m.t.users[user.ID] = *user
	return nil
}

func (m *Memory) UpdateUser(ctx context.Context, user *models.User) error {
	defer m.lockWrite(ctx)()
	existing, ok := m.t.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = m.now()
	m.t.users[user.ID] = *user
	return nil
}

func (m *Memory) ListUsers(ctx context.Context, role string) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]models.User, 0, len(m.t.users))
	for _, u := range m.t.users {
		if role == "" || u.Role == role {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

// Catalog

func (m *Memory) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fault("GetProduct"); err != nil {
		return nil, err
	}
	p, ok := m.t.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func matchesFilter(p models.Product, f models.ProductFilter) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
		return false
	}
	if len(f.CategoryIDs) > 0 {
		found := false
		for _, id := range f.CategoryIDs {
			if p.CategoryID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.MinRating != nil && p.Rating < *f.MinRating {
		return false
	}
	return true
}

func sortProducts(products []models.Product, order string) {
	var less func(a, b models.Product) bool
	switch order {
	case models.SortPriceLow:
		less = func(a, b models.Product) bool { return a.Price.LessThan(b.Price) }
	case models.SortPriceHigh:
		less = func(a, b models.Product) bool { return a.Price.GreaterThan(b.Price) }
	case models.SortNameAsc:
		less = func(a, b models.Product) bool { return a.Name < b.Name }
	case models.SortNameDesc:
		less = func(a, b models.Product) bool { return a.Name > b.Name }
	default:
		less = func(a, b models.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}

func (m *Memory) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	products := make([]models.Product, 0, len(m.t.products))
	for _, p := range m.t.products {
		if matchesFilter(p, filter) {
			products = append(products, p)
		}
	}
	// Map iteration is random; settle ties on insertion time first.
	sort.Slice(products, func(i, j int) bool { return products[i].CreatedAt.Before(products[j].CreatedAt) })
	sortProducts(products, filter.Sort)
	return products, nil
}

func (m *Memory) CreateProduct(ctx context.Context, product *models.Product) error {
	defer m.lockWrite(ctx)()
	product.ID = newID(product.ID)
	if _, ok := m.t.products[product.ID]; ok {
		return ErrDuplicate
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = m.now()
	}
	m.t.products[product.ID] = *product
	return nil
}

func (m *Memory) UpdateProduct(ctx context.Context, product *models.Product) error {
	defer m.lockWrite(ctx)()
	if err := m.fault("UpdateProduct"); err != nil {
		return err
	}
	existing, ok := m.t.products[product.ID]
	if !ok {
		return ErrNotFound
	}
	product.CreatedAt = existing.CreatedAt
	m.t.products[product.ID] = *product
	return nil
}

func (m *Memory) DeleteProduct(ctx context.Context, id string) error {
	defer m.lockWrite(ctx)()
	if _, ok := m.t.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.t.products, id)
	return nil
}

func (m *Memory) ListCategories(ctx context.Context) ([]models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	categories := make([]models.Category, 0, len(m.t.categories))
	for _, c := range m.t.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (m *Memory) CreateCategory(ctx context.Context, category *models.Category) error {
	defer m.lockWrite(ctx)()
	category.ID = newID(category.ID)
	for _, c := range m.t.categories {
		if c.ID == category.ID || strings.EqualFold(c.Name, category.Name) {
			return ErrDuplicate
		}
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = m.now()
	}
	m.t.categories[category.ID] = *category
	return nil
}

// Cart

func (m *Memory) IncrementCartItem(ctx context.Context, userID, productID string, quantity int) (*models.CartItem, error) {
	defer m.lockWrite(ctx)()
	if err := m.fault("IncrementCartItem"); err != nil {
		return nil, err
	}
	for id, item := range m.t.cart {
		if item.UserID == userID && item.ProductID == productID {
			item.Quantity += quantity
			m.t.cart[id] = item
			return &item, nil
		}
	}
	item := models.CartItem{
		ID:        uuid.New().String(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: m.now(),
	}
	m.t.cart[item.ID] = item
	return &item, nil
}

func (m *Memory) SetCartItemQuantity(ctx context.Context, userID, itemID string, quantity int) error {
	defer m.lockWrite(ctx)()
	item, ok := m.t.cart[itemID]
	if !ok || item.UserID != userID {
		return ErrNotFound
	}
	item.Quantity = quantity
	m.t.cart[itemID] = item
	return nil
}

func (m *Memory) DeleteCartItem(ctx context.Context, userID, itemID string) error {
	defer m.lockWrite(ctx)()
	item, ok := m.t.cart[itemID]
	if !ok || item.UserID != userID {
		return ErrNotFound
	}
	delete(m.t.cart, itemID)
	return nil
}

func (m *Memory) ListCartItems(ctx context.Context, userID string) ([]models.CartItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fault("ListCartItems"); err != nil {
		return nil, err
	}
	var items []models.CartItem
	for _, item := range m.t.cart {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

func (m *Memory) CountCartItems(ctx context.Context, userID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, item := range m.t.cart {
		if item.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) ClearCart(ctx context.Context, userID string) error {
	defer m.lockWrite(ctx)()
	if err := m.fault("ClearCart"); err != nil {
		return err
	}
	for id, item := range m.t.cart {
		if item.UserID == userID {
			delete(m.t.cart, id)
		}
	}
	return nil
}

// Orders

func (m *Memory) InsertOrder(ctx context.Context, order *models.Order) error {
	defer m.lockWrite(ctx)()
	if err := m.fault("InsertOrder"); err != nil {
		return err
	}
	order.ID = newID(order.ID)
	if _, ok := m.t.orders[order.ID]; ok {
		return ErrDuplicate
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = m.now()
	}
	stored := *order
	stored.Items = nil
	m.t.orders[order.ID] = stored
	return nil
}

func (m *Memory) InsertOrderItems(ctx context.Context, items []models.OrderItem) error {
	defer m.lockWrite(ctx)()
	if err := m.fault("InsertOrderItems"); err != nil {
		return err
	}
	for i := range items {
		items[i].ID = newID(items[i].ID)
		stored := items[i]
		stored.Product = nil
		m.t.orderItems[stored.ID] = stored
	}
	return nil
}

func (m *Memory) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.t.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (m *Memory) ListOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []models.OrderItem
	for _, item := range m.t.orderItems {
		if item.OrderID == orderID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *Memory) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var orders []models.Order
	for _, o := range m.t.orders {
		if filter.UserID == "" || o.UserID == filter.UserID {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	if filter.Limit > 0 && len(orders) > filter.Limit {
		orders = orders[:filter.Limit]
	}
	return orders, nil
}

func (m *Memory) UpdateOrderStatus(ctx context.Context, id, status string) error {
	defer m.lockWrite(ctx)()
	o, ok := m.t.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	m.t.orders[id] = o
	return nil
}

func (m *Memory) GetCheckoutRequest(ctx context.Context, id string) (*models.CheckoutRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	req, ok := m.t.checkouts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &req, nil
}

func (m *Memory) SaveCheckoutRequest(ctx context.Context, req *models.CheckoutRequest) error {
	defer m.lockWrite(ctx)()
	if _, ok := m.t.checkouts[req.ID]; ok {
		return ErrDuplicate
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = m.now()
	}
	m.t.checkouts[req.ID] = *req
	return nil
}

// Wishlist

func (m *Memory) ListWishlistItems(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []models.WishlistItem
	for _, item := range m.t.wishlist {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

func (m *Memory) GetWishlistItem(ctx context.Context, userID, itemID string) (*models.WishlistItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.t.wishlist[itemID]
	if !ok || item.UserID != userID {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (m *Memory) AddWishlistItem(ctx context.Context, item *models.WishlistItem) error {
	defer m.lockWrite(ctx)()
	for _, existing := range m.t.wishlist {
		if existing.UserID == item.UserID && existing.ProductID == item.ProductID {
			return ErrDuplicate
		}
	}
	item.ID = newID(item.ID)
	if item.CreatedAt.IsZero() {
		item.CreatedAt = m.now()
	}
	stored := *item
	stored.Product = nil
	m.t.wishlist[item.ID] = stored
	return nil
}

func (m *Memory) DeleteWishlistItem(ctx context.Context, userID, itemID string) error {
	defer m.lockWrite(ctx)()
	if err := m.fault("DeleteWishlistItem"); err != nil {
		return err
	}
	item, ok := m.t.wishlist[itemID]
	if !ok || item.UserID != userID {
		return ErrNotFound
	}
	delete(m.t.wishlist, itemID)
	return nil
}

// Featured products

func (m *Memory) ListFeatured(ctx context.Context) ([]models.FeaturedProduct, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]models.FeaturedProduct, 0, len(m.t.featured))
	for _, item := range m.t.featured {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Position != items[j].Position {
			return items[i].Position < items[j].Position
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (m *Memory) AddFeatured(ctx context.Context, item *models.FeaturedProduct) error {
	defer m.lockWrite(ctx)()
	for _, existing := range m.t.featured {
		if existing.ProductID == item.ProductID {
			return ErrDuplicate
		}
	}
	item.ID = newID(item.ID)
	stored := *item
	stored.Product = nil
	m.t.featured[item.ID] = stored
	return nil
}

func (m *Memory) DeleteFeatured(ctx context.Context, id string) error {
	defer m.lockWrite(ctx)()
	if _, ok := m.t.featured[id]; !ok {
		return ErrNotFound
	}
	delete(m.t.featured, id)
	return nil
}

func (m *Memory) SetFeaturedPosition(ctx context.Context, id string, position int) error {
	defer m.lockWrite(ctx)()
	if err := m.fault("SetFeaturedPosition:" + id); err != nil {
		return err
	}
	item, ok := m.t.featured[id]
	if !ok {
		return ErrNotFound
	}
	item.Position = position
	m.t.featured[id] = item
	return nil
}

// Content

func (m *Memory) GetAboutUs(ctx context.Context) (*models.AboutUs, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.t.about == nil {
		return nil, ErrNotFound
	}
	about := *m.t.about
	return &about, nil
}

func (m *Memory) SaveAboutUs(ctx context.Context, about *models.AboutUs) error {
	defer m.lockWrite(ctx)()
	about.ID = models.AboutUsID
	about.UpdatedAt = m.now()
	stored := *about
	m.t.about = &stored
	return nil
}

func (m *Memory) GetContactUs(ctx context.Context) (*models.ContactUs, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.t.contact == nil {
		return nil, ErrNotFound
	}
	contact := *m.t.contact
	return &contact, nil
}

func (m *Memory) SaveContactUs(ctx context.Context, contact *models.ContactUs) error {
	defer m.lockWrite(ctx)()
	contact.ID = models.ContactUsID
	contact.UpdatedAt = m.now()
	stored := *contact
	m.t.contact = &stored
	return nil
}

func (m *Memory) InsertContactMessage(ctx context.Context, msg *models.ContactMessage) error {
	defer m.lockWrite(ctx)()
	msg.ID = newID(msg.ID)
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = m.now()
	}
	m.t.messages[msg.ID] = *msg
	return nil
}

func (m *Memory) ListContactMessages(ctx context.Context) ([]models.ContactMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := make([]models.ContactMessage, 0, len(m.t.messages))
	for _, msg := range m.t.messages {
		msgs = append(msgs, msg)
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].CreatedAt.After(msgs[j].CreatedAt) })
	return msgs, nil
}

func (m *Memory) UpdateContactMessageStatus(ctx context.Context, id, status string) error {
	defer m.lockWrite(ctx)()
	msg, ok := m.t.messages[id]
	if !ok {
		return ErrNotFound
	}
	msg.Status = status
	m.t.messages[id] = msg
	return nil
}

var _ Store = (*Memory)(nil)
