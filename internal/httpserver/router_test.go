package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/money"
	cartsvc "storefront/internal/service/cart"
)

type stubPinger struct {
	err error
}

func (s *stubPinger) Ping(_ context.Context) error {
	return s.err
}

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type testEnv struct {
	router *gin.Engine
	cart   *cartsvc.Store
}

func newTestEnv(t *testing.T, store Pinger) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cat := catalog.Defaults()
	cart := cartsvc.New(cat)
	formatter := money.NewFormatter(money.MVR)
	router, err := buildRouter(logDiscard(), Deps{
		Catalog:  cat,
		Cart:     cart,
		Checkout: checkout.NewBuilder(checkout.Merchant{Name: "Cherry Moon", Contact: "9607000000"}, formatter),
		Money:    formatter,
		Store:    store,
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return &testEnv{router: router, cart: cart}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) cartResponse {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp cartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	return resp
}

func TestBuildRouterRequiresDeps(t *testing.T) {
	if _, err := buildRouter(logDiscard(), Deps{}); err == nil {
		t.Fatalf("expected error for missing deps")
	}
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t, nil)
	if rec := env.do(t, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected readyz 200 without store, got %d", rec.Code)
	}

	env = newTestEnv(t, &stubPinger{err: errors.New("down")})
	if rec := env.do(t, http.MethodGet, "/readyz", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected readyz 503, got %d", rec.Code)
	}
}

func TestProductsFilter(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/products?q=choc&category=Chocolate", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp productListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 2 || resp.Results[0].ID != "almond-choc-100" || resp.Results[0].PriceFormatted != "MVR 45" {
		t.Fatalf("unexpected products %+v", resp)
	}
}

func TestProductGet(t *testing.T) {
	env := newTestEnv(t, nil)
	if rec := env.do(t, http.MethodGet, "/products/pista-usa-250", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/products/missing", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestCategories(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/categories", "")
	var resp struct {
		Categories []string `json:"categories"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Categories) != 5 || resp.Categories[0] != "All" || resp.Categories[1] != "Chocolate" {
		t.Fatalf("unexpected categories %v", resp.Categories)
	}
}

func TestCartFlow(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := decodeCart(t, env.do(t, http.MethodGet, "/cart", ""))
	if len(resp.Items) != 0 || resp.CheckoutEnabled || resp.TotalFormatted != "MVR 0" {
		t.Fatalf("unexpected empty cart %+v", resp)
	}

	resp = decodeCart(t, env.do(t, http.MethodPost, "/cart/items", `{"productId":"almond-choc-100"}`))
	if !resp.CartOpen {
		t.Fatalf("expected add to open the cart")
	}
	resp = decodeCart(t, env.do(t, http.MethodPost, "/cart/items", `{"productId":"almond-choc-100","quantity":1}`))
	if len(resp.Items) != 1 || resp.Items[0].Quantity != 2 || resp.Total != "90" || resp.TotalFormatted != "MVR 90" {
		t.Fatalf("unexpected cart after two adds %+v", resp)
	}

	decodeCart(t, env.do(t, http.MethodPost, "/cart/items", `{"productId":"pista-usa-250"}`))
	resp = decodeCart(t, env.do(t, http.MethodGet, "/cart", ""))
	if resp.Total != "210" || resp.ItemCount != 3 || !resp.CheckoutEnabled || resp.CartOpen {
		t.Fatalf("unexpected cart %+v", resp)
	}

	resp = decodeCart(t, env.do(t, http.MethodPut, "/cart/items/pista-usa-250", `{"quantity":150}`))
	if resp.Items[1].Quantity != 99 {
		t.Fatalf("expected clamp to 99, got %d", resp.Items[1].Quantity)
	}
	resp = decodeCart(t, env.do(t, http.MethodPut, "/cart/items/pista-usa-250", `{"quantity":"abc"}`))
	if resp.Items[1].Quantity != 1 {
		t.Fatalf("expected non-numeric to clamp to 1, got %d", resp.Items[1].Quantity)
	}
	resp = decodeCart(t, env.do(t, http.MethodPut, "/cart/items/pista-usa-250", `{"quantity":"0"}`))
	if len(resp.Items) != 2 || resp.Items[1].Quantity != 1 {
		t.Fatalf("expected zero to clamp to 1, got %+v", resp.Items)
	}

	resp = decodeCart(t, env.do(t, http.MethodPost, "/cart/items/pista-usa-250/increment", ""))
	if resp.Items[1].Quantity != 2 {
		t.Fatalf("expected increment to 2, got %d", resp.Items[1].Quantity)
	}
	decodeCart(t, env.do(t, http.MethodPost, "/cart/items/pista-usa-250/decrement", ""))
	resp = decodeCart(t, env.do(t, http.MethodPost, "/cart/items/pista-usa-250/decrement", ""))
	if resp.Items[1].Quantity != 1 {
		t.Fatalf("expected decrement to floor at 1, got %d", resp.Items[1].Quantity)
	}

	resp = decodeCart(t, env.do(t, http.MethodDelete, "/cart/items/almond-choc-100", ""))
	if len(resp.Items) != 1 || resp.Items[0].ID != "pista-usa-250" {
		t.Fatalf("unexpected cart after remove %+v", resp)
	}
	decodeCart(t, env.do(t, http.MethodDelete, "/cart/items/almond-choc-100", ""))

	resp = decodeCart(t, env.do(t, http.MethodDelete, "/cart", ""))
	if len(resp.Items) != 0 || resp.Total != "0" {
		t.Fatalf("expected empty cart, got %+v", resp)
	}
}

func TestAddItemSignedQuantity(t *testing.T) {
	env := newTestEnv(t, nil)

	decodeCart(t, env.do(t, http.MethodPost, "/cart/items", `{"productId":"almond-choc-100","quantity":5}`))
	resp := decodeCart(t, env.do(t, http.MethodPost, "/cart/items", `{"productId":"almond-choc-100","quantity":-3}`))
	if resp.Items[0].Quantity != 2 {
		t.Fatalf("expected negative quantity to lower the line to 2, got %d", resp.Items[0].Quantity)
	}
	resp = decodeCart(t, env.do(t, http.MethodPost, "/cart/items", `{"productId":"almond-choc-100","quantity":"-50"}`))
	if resp.Items[0].Quantity != 1 {
		t.Fatalf("expected quantity to floor at 1, got %d", resp.Items[0].Quantity)
	}
	resp = decodeCart(t, env.do(t, http.MethodPost, "/cart/items", `{"productId":"almond-choc-100","quantity":1e400}`))
	if resp.Items[0].Quantity != 99 {
		t.Fatalf("expected quantity to cap at 99, got %d", resp.Items[0].Quantity)
	}
	resp = decodeCart(t, env.do(t, http.MethodPost, "/cart/items", `{"productId":"pista-usa-250","quantity":-4}`))
	if resp.Items[1].Quantity != 1 {
		t.Fatalf("expected new line with negative quantity to start at 1, got %d", resp.Items[1].Quantity)
	}
}

func TestAddItemErrors(t *testing.T) {
	env := newTestEnv(t, nil)
	if rec := env.do(t, http.MethodPost, "/cart/items", `{"productId":"missing"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/cart/items", `{"productId":" "}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/cart/items", `not json`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if !env.cart.Empty() {
		t.Fatalf("failed adds must leave the cart empty")
	}
}

func TestCheckout(t *testing.T) {
	env := newTestEnv(t, nil)
	if rec := env.do(t, http.MethodGet, "/checkout", ""); rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for empty cart, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/checkout/redirect", ""); rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for empty cart, got %d", rec.Code)
	}

	env.cart.AddItem("almond-choc-100", 2)
	rec := env.do(t, http.MethodGet, "/checkout", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp checkoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(resp.Message, "1. Almond Chocolate Bar 100g (100 g) x 2 — MVR 90") {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	u, err := url.Parse(resp.URL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if u.Query().Get("text") != resp.Message {
		t.Fatalf("url text does not round-trip to message")
	}

	rec = env.do(t, http.MethodGet, "/checkout/redirect", "")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != resp.URL {
		t.Fatalf("expected redirect to %s, got %d %s", resp.URL, rec.Code, rec.Header().Get("Location"))
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cat := catalog.Defaults()
	formatter := money.NewFormatter(money.USD)
	router, err := buildRouter(logDiscard(), Deps{
		Catalog:            cat,
		Cart:               cartsvc.New(cat),
		Checkout:           checkout.NewBuilder(checkout.Merchant{Name: "Shop", Contact: "1"}, formatter),
		Money:              formatter,
		CORSAllowedOrigins: []string{"https://shop.example"},
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Origin", "https://shop.example")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example" {
		t.Fatalf("expected allow-origin header, got %q", got)
	}
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, nil)
	if rec := env.do(t, http.MethodGet, "/nope", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}
