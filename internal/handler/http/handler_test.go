package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/imagestore"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
)

// =============================================================================
// Mock repositories
// =============================================================================

type mockCategoryRepo struct {
	mock.Mock
}

func (m *mockCategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryRepo) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Category, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockCategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockCategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCategoryRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) Create(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepo) Update(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockCartRepo struct {
	mock.Mock
}

func (m *mockCartRepo) AddLine(ctx context.Context, line *domain.CartLine) (bool, error) {
	args := m.Called(ctx, line)
	return args.Bool(0), args.Error(1)
}

func (m *mockCartRepo) ListByCart(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	args := m.Called(ctx, cartID)
	return args.Get(0).([]domain.CartLine), args.Error(1)
}

func (m *mockCartRepo) UpdateQuantity(ctx context.Context, id string, quantity int) (*domain.CartLine, error) {
	args := m.Called(ctx, id, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CartLine), args.Error(1)
}

func (m *mockCartRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCartRepo) Clear(ctx context.Context, cartID string) (int64, error) {
	args := m.Called(ctx, cartID)
	return args.Get(0).(int64), args.Error(1)
}

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) Checkout(ctx context.Context, cartID string, build repository.OrderBuilder) (*domain.Order, error) {
	args := m.Called(ctx, cartID)
	if err := args.Error(2); err != nil {
		return nil, err
	}
	return build(args.Get(0).([]domain.CartLine), args.Get(1).(map[string]*domain.Product))
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepo) List(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// =============================================================================
// Test harness
// =============================================================================

const (
	testCategoryID = "6f1c2b1e-8d2a-4a43-9c55-0f0a3d6b1c01"
	testProductID  = "3b9e7a44-51c2-4f8e-8a1d-2c6b9e0d7f02"
	testLineID     = "a7d4c0f2-9e1b-4c3a-b5f6-7e8d9c0b1a03"
	testOrderID    = "c2e5f8a1-4b7d-4e9c-8f3a-6d1b2c5e8f04"
	testCartID     = "cart-session-1"
)

var pngData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type testServer struct {
	categories *mockCategoryRepo
	products   *mockProductRepo
	cart       *mockCartRepo
	orders     *mockOrderRepo
	images     *imagestore.Memory
	handler    http.Handler
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}

// newTestServer wires real services over mocked repositories and an in-memory
// image store behind the production router.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithConfig(t, DefaultRouterConfig())
}

func newTestServerWithConfig(t *testing.T, cfg RouterConfig) *testServer {
	t.Helper()

	logger := newTestLogger()
	producer := event.NewProducer(pkgkafka.Discard{}, logger)

	ts := &testServer{
		categories: new(mockCategoryRepo),
		products:   new(mockProductRepo),
		cart:       new(mockCartRepo),
		orders:     new(mockOrderRepo),
		images:     imagestore.NewMemory("http://localhost:8080", "storefront"),
	}

	categorySvc := service.NewCategoryService(ts.categories, ts.images, producer, logger)
	productSvc := service.NewProductService(ts.products, ts.categories, ts.images, producer, logger)
	cartSvc := service.NewCartService(ts.cart, ts.products, ts.categories, producer, logger)
	orderSvc := service.NewOrderService(ts.orders, producer, logger, domain.DefaultShipping)

	if cfg.Images == nil {
		cfg.Images = ts.images
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ts.handler = NewRouter(ctx, categorySvc, productSvc, cartSvc, orderSvc, health.NewHandler(), cfg, logger)
	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target string, body any) *http.Request {
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

type upload struct {
	field string
	name  string
	data  []byte
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func testCategory() *domain.Category {
	return &domain.Category{
		ID:    testCategoryID,
		Name:  "Shoes",
		Image: domain.Image{URL: "http://localhost:8080/images/storefront/categories/shoes", PublicID: "storefront/categories/shoes"},
	}
}

func testProduct() *domain.Product {
	return &domain.Product{
		ID:          testProductID,
		Name:        "Runner",
		PriceBefore: decimal.RequireFromString("120"),
		PriceAfter:  decimal.RequireFromString("99.50"),
		Description: "Light running shoe",
		CategoryID:  testCategoryID,
		IsOffer:     true,
		Images:      []domain.Image{{URL: "http://localhost:8080/images/storefront/products/runner", PublicID: "storefront/products/runner"}},
	}
}

func pngUploads(field string, n int) []upload {
	files := make([]upload, n)
	for i := range files {
		files[i] = upload{field: field, name: fmt.Sprintf("photo-%d.png", i), data: pngData}
	}
	return files
}
