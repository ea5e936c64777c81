package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"velora-api/internal/admin"
	"velora-api/internal/auth"
	"velora-api/internal/metrics"
	"velora-api/internal/order"
	"velora-api/internal/product"
	"velora-api/internal/review"
	"velora-api/internal/user"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memUsers is an in-memory user.Repository.
type memUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]user.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[uuid.UUID]user.User)}
}

func (m *memUsers) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return user.ErrEmailExists
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = *u
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *memUsers) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) Update(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return user.ErrNotFound
	}
	u.UpdatedAt = time.Now()
	m.users[u.ID] = *u
	return nil
}

func (m *memUsers) List(_ context.Context) ([]*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*user.User, 0, len(m.users))
	for _, u := range m.users {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memUsers) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUsers) CountByRole(_ context.Context, role auth.Role) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (m *memUsers) ExistsByRole(ctx context.Context, role auth.Role) (bool, error) {
	n, err := m.CountByRole(ctx, role)
	return n > 0, err
}

// memOrders is an in-memory order.Repository with the same compare-and-swap
// semantics as the SQL store.
type memOrders struct {
	mu     sync.Mutex
	orders map[uuid.UUID]order.Order
	users  *memUsers
}

func newMemOrders(users *memUsers) *memOrders {
	return &memOrders{orders: make(map[uuid.UUID]order.Order), users: users}
}

func (m *memOrders) withOwner(o order.Order) *order.Order {
	if u, err := m.users.FindByID(context.Background(), o.UserID); err == nil {
		o.User = &order.Owner{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return &o
}

func (m *memOrders) Create(_ context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = uuid.New()
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	m.orders[o.ID] = *o
	return nil
}

func (m *memOrders) GetByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	m.mu.Lock()
	o, ok := m.orders[id]
	m.mu.Unlock()
	if !ok {
		return nil, order.ErrNotFound
	}
	return m.withOwner(o), nil
}

func (m *memOrders) list(keep func(order.Order) bool) []*order.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*order.Order, 0, len(m.orders))
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, m.withOwner(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memOrders) ListByUser(_ context.Context, userID uuid.UUID) ([]*order.Order, error) {
	return m.list(func(o order.Order) bool { return o.UserID == userID }), nil
}

func (m *memOrders) ListAll(_ context.Context) ([]*order.Order, error) {
	return m.list(func(order.Order) bool { return true }), nil
}

func (m *memOrders) ListRecent(_ context.Context, limit int) ([]*order.Order, error) {
	all := m.list(func(order.Order) bool { return true })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *memOrders) UpdateOrderStatus(_ context.Context, id uuid.UUID, prev, next order.Status, deliveredAt *time.Time) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return time.Time{}, order.ErrNotFound
	}
	if o.OrderStatus != prev {
		return time.Time{}, order.ErrConcurrentUpdate
	}
	o.OrderStatus = next
	o.DeliveredAt = deliveredAt
	o.UpdatedAt = time.Now()
	m.orders[id] = o
	return o.UpdatedAt, nil
}

func (m *memOrders) UpdatePaymentStatus(_ context.Context, id uuid.UUID, prev, next order.PaymentStatus) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return time.Time{}, order.ErrNotFound
	}
	if o.PaymentStatus != prev {
		return time.Time{}, order.ErrConcurrentUpdate
	}
	o.PaymentStatus = next
	o.UpdatedAt = time.Now()
	m.orders[id] = o
	return o.UpdatedAt, nil
}

func (m *memOrders) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.orders)), nil
}

func (m *memOrders) TotalPrices(_ context.Context) ([]decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]decimal.Decimal, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, decimal.NewFromFloat(o.TotalPrice))
	}
	return out, nil
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) ListProducts(ctx context.Context, filter product.Filter, sort product.Sort) ([]*product.Product, error) {
	args := m.Called(ctx, filter, sort)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *MockProductService) GetProduct(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) CreateProduct(ctx context.Context, in product.Input) (*product.Product, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) UpdateProduct(ctx context.Context, id uuid.UUID, in product.Input) (*product.Product, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) CreateReview(ctx context.Context, in review.CreateInput) (*review.Review, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.Review), args.Error(1)
}

func (m *MockReviewService) ListRecentReviews(ctx context.Context, limit int) ([]*review.Review, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*review.Review), args.Error(1)
}

// testServer runs the real user, order and admin services over in-memory
// stores; products and reviews are mocked.
type testServer struct {
	handler  http.Handler
	users    *memUsers
	orders   *memOrders
	products *MockProductService
	reviews  *MockReviewService
	metrics  *metrics.Registry
	userSvc  user.Service
}

func newTestServer(t *testing.T, production bool) *testServer {
	t.Helper()

	reg := metrics.NewRegistry()
	users := newMemUsers()
	orders := newMemOrders(users)
	products := new(MockProductService)
	reviews := new(MockReviewService)

	tokens := auth.NewTokenManager([]byte("testsecret"), time.Hour)
	userSvc := user.NewService(users, tokens, reg)
	orderSvc := order.NewService(orders, reg, true)
	adminSvc := admin.NewService(users, countProducts{}, orders)

	h := NewRouter(Deps{
		Users:       userSvc,
		Products:    products,
		Orders:      orderSvc,
		Reviews:     reviews,
		Admin:       adminSvc,
		Metrics:     reg,
		CORSOrigins: []string{"*"},
		Production:  production,
	})

	return &testServer{
		handler:  h,
		users:    users,
		orders:   orders,
		products: products,
		reviews:  reviews,
		metrics:  reg,
		userSvc:  userSvc,
	}
}

type countProducts struct{}

func (countProducts) Count(context.Context) (int64, error) { return 7, nil }

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

// register signs up a customer and returns the issued token.
func (s *testServer) register(t *testing.T, name, email string) (string, uuid.UUID) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp user.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token, resp.ID
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	_, _, err := s.userSvc.EnsureAdmin(context.Background(), user.AdminSeed{
		Name: "Admin User", Email: "admin@velora.com", Password: "admin123",
	})
	require.NoError(t, err)

	w := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "admin@velora.com", "password": "admin123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp user.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
