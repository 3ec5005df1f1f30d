package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/kitline/kitline-backend/api/middleware"
	"github.com/kitline/kitline-backend/internal/catalog"
	"github.com/kitline/kitline-backend/internal/composer"
	"github.com/kitline/kitline-backend/internal/orders"
	"github.com/kitline/kitline-backend/pkg/db/models"
	pkgerrors "github.com/kitline/kitline-backend/pkg/errors"
	"github.com/kitline/kitline-backend/pkg/types"
)

type cartTestEnv struct {
	router  http.Handler
	manager *composer.Manager
	placer  *stubPlacer
	clubID  uuid.UUID
}

func newCartTestEnv(t *testing.T, products ...models.Product) *cartTestEnv {
	t.Helper()

	placer := &stubPlacer{}
	manager, err := composer.NewManager(placer)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	catalogSvc := &stubCatalog{products: products}

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.ClubContext(nil))
		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", CartFetch(manager, nil))
			r.Put("/selections/{productID}", CartBufferSelection(manager, nil))
			r.Post("/items", CartAddItem(catalogSvc, manager, nil))
			r.Patch("/items/{itemID}", CartUpdateItem(manager, nil))
			r.Delete("/items/{itemID}", CartRemoveItem(manager, nil))
			r.Post("/allocations", CartAllocate(catalogSvc, manager, nil))
		})
		r.Post("/api/v1/orders", OrdersSubmit(manager, nil))
	})

	return &cartTestEnv{
		router:  r,
		manager: manager,
		placer:  placer,
		clubID:  uuid.New(),
	}
}

func (env *cartTestEnv) do(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Club-Id", env.clubID.String())
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func jerseyProduct() models.Product {
	return models.Product{
		ID:           uuid.New(),
		Name:         "Home Jersey",
		Slug:         "home-jersey",
		PriceCents:   18000,
		Currency:     "DKK",
		Sizes:        pq.StringArray{"S", "M", "L", "XL"},
		Customizable: true,
		IsActive:     true,
	}
}

func TestCartAddItemSimplePath(t *testing.T) {
	t.Parallel()

	product := jerseyProduct()
	env := newCartTestEnv(t, product)

	w := env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{
		"product_id":      product.ID.String(),
		"size":            "M",
		"quantity":        2,
		"personalization": []string{"VIGGO 7", "EMMA 10"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var out cartMutationResponse
	decodeEnvelope(t, w, &out)
	if out.Line == nil || out.Line.Quantity != 2 || out.Line.Size != "M" {
		t.Fatalf("unexpected line: %+v", out.Line)
	}
	if out.Cart.TotalCents != 36000 {
		t.Fatalf("expected cart total 36000, got %d", out.Cart.TotalCents)
	}
}

func TestCartAddItemMergesBufferedSelection(t *testing.T) {
	t.Parallel()

	product := jerseyProduct()
	env := newCartTestEnv(t, product)

	w := env.do(t, http.MethodPut, "/api/v1/cart/selections/"+product.ID.String(), map[string]any{
		"size":     "L",
		"quantity": 1,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("buffer selection: %d: %s", w.Code, w.Body.String())
	}

	// The add supplies only the product id; size and quantity come from
	// the buffered pick.
	w = env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{
		"product_id": product.ID.String(),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var out cartMutationResponse
	decodeEnvelope(t, w, &out)
	if out.Line.Size != "L" || out.Line.Quantity != 1 {
		t.Fatalf("buffered fields lost: %+v", out.Line)
	}
}

func TestCartAddItemRejectsMissingSize(t *testing.T) {
	t.Parallel()

	product := jerseyProduct()
	env := newCartTestEnv(t, product)

	w := env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{
		"product_id": product.ID.String(),
		"quantity":   2,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/v1/cart", nil)
	var snap composer.Snapshot
	decodeEnvelope(t, w, &snap)
	if len(snap.Items) != 0 {
		t.Fatal("rejected add must not touch the cart")
	}
}

func TestCartAllocateMultiSizeFlow(t *testing.T) {
	t.Parallel()

	product := jerseyProduct()
	env := newCartTestEnv(t, product)

	w := env.do(t, http.MethodPost, "/api/v1/cart/allocations", map[string]any{
		"product_id": product.ID.String(),
		"quantity":   5,
		"distribution": []map[string]any{
			{"size": "M", "count": 3, "personalization": []string{"VIGGO 7", "EMMA 10", "NOAH 4"}},
			{"size": "L", "count": 2, "personalization": []string{"IDA 9", "OSCAR 12"}},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var out struct {
		Lines []composer.LineItem `json:"lines"`
		Cart  composer.Snapshot   `json:"cart"`
	}
	decodeEnvelope(t, w, &out)
	if len(out.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(out.Lines))
	}
	if out.Cart.ItemCount != 5 || out.Cart.TotalCents != 90000 {
		t.Fatalf("unexpected cart aggregates: %+v", out.Cart)
	}
}

func TestCartAllocateRejectsBadDistribution(t *testing.T) {
	t.Parallel()

	product := jerseyProduct()
	env := newCartTestEnv(t, product)

	// Counts sum to 4, not the requested 5.
	w := env.do(t, http.MethodPost, "/api/v1/cart/allocations", map[string]any{
		"product_id": product.ID.String(),
		"quantity":   5,
		"distribution": []map[string]any{
			{"size": "M", "count": 2, "personalization": []string{"A 1", "B 2"}},
			{"size": "L", "count": 2, "personalization": []string{"C 3", "D 4"}},
		},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/v1/cart", nil)
	var snap composer.Snapshot
	decodeEnvelope(t, w, &snap)
	if len(snap.Items) != 0 {
		t.Fatal("failed allocation must leave the cart empty")
	}
}

func TestCartUpdateAndRemoveItem(t *testing.T) {
	t.Parallel()

	product := jerseyProduct()
	env := newCartTestEnv(t, product)

	w := env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{
		"product_id":      product.ID.String(),
		"size":            "M",
		"quantity":        2,
		"personalization": []string{"VIGGO 7", "EMMA 10"},
	})
	var added cartMutationResponse
	decodeEnvelope(t, w, &added)

	itemPath := fmt.Sprintf("/api/v1/cart/items/%d", added.Line.ID)

	w = env.do(t, http.MethodPatch, itemPath, map[string]any{"quantity": 4})
	if w.Code != http.StatusOK {
		t.Fatalf("patch quantity: %d: %s", w.Code, w.Body.String())
	}
	var updated cartMutationResponse
	decodeEnvelope(t, w, &updated)
	if updated.Line.Quantity != 4 || len(updated.Line.Personalization) != 4 {
		t.Fatalf("quantity update must reconcile slots: %+v", updated.Line)
	}

	w = env.do(t, http.MethodPatch, itemPath, map[string]any{
		"slot": map[string]any{"index": 2, "value": "NOAH 4"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("patch slot: %d: %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodDelete, itemPath, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %d: %s", w.Code, w.Body.String())
	}
	var afterDelete cartMutationResponse
	decodeEnvelope(t, w, &afterDelete)
	if len(afterDelete.Cart.Items) != 0 {
		t.Fatalf("expected empty cart after delete: %+v", afterDelete.Cart)
	}
}

func TestOrdersSubmitHandsOffAndClears(t *testing.T) {
	t.Parallel()

	product := jerseyProduct()
	env := newCartTestEnv(t, product)

	env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{
		"product_id":      product.ID.String(),
		"size":            "M",
		"quantity":        2,
		"personalization": []string{"VIGGO 7", "EMMA 10"},
	})

	w := env.do(t, http.MethodPost, "/api/v1/orders", map[string]any{
		"delivery_address": map[string]any{
			"name":        "Brøndby IF Ungdom",
			"line1":       "Brøndby Stadion 30",
			"city":        "Brøndby",
			"postal_code": "2605",
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if env.placer.calls != 1 {
		t.Fatalf("expected one handoff, got %d", env.placer.calls)
	}

	w = env.do(t, http.MethodGet, "/api/v1/cart", nil)
	var snap composer.Snapshot
	decodeEnvelope(t, w, &snap)
	if len(snap.Items) != 0 {
		t.Fatal("cart must be empty after a successful submit")
	}
}

func TestOrdersSubmitFailureKeepsCart(t *testing.T) {
	t.Parallel()

	product := jerseyProduct()
	env := newCartTestEnv(t, product)
	env.placer.err = pkgerrors.New(pkgerrors.CodeDependency, "database unavailable")

	env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{
		"product_id":      product.ID.String(),
		"size":            "M",
		"quantity":        2,
		"personalization": []string{"VIGGO 7", "EMMA 10"},
	})

	w := env.do(t, http.MethodPost, "/api/v1/orders", map[string]any{
		"delivery_address": map[string]any{
			"name":        "Brøndby IF Ungdom",
			"line1":       "Brøndby Stadion 30",
			"city":        "Brøndby",
			"postal_code": "2605",
		},
	})
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/v1/cart", nil)
	var snap composer.Snapshot
	decodeEnvelope(t, w, &snap)
	if len(snap.Items) != 1 {
		t.Fatal("failed submit must leave the cart intact")
	}
}

type stubCatalog struct {
	products []models.Product
}

func (s *stubCatalog) ListProducts(ctx context.Context) ([]catalog.ProductDTO, error) {
	return nil, nil
}

func (s *stubCatalog) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.ProductDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *stubCatalog) LoadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

type stubPlacer struct {
	calls int
	err   error
}

func (s *stubPlacer) Submit(ctx context.Context, input orders.SubmitInput) (*orders.OrderDTO, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &orders.OrderDTO{
		ID:        uuid.New(),
		ItemCount: len(input.Items),
		Total:     types.NewMoney(0, "DKK"),
	}, nil
}
