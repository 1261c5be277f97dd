package httpserver

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type catalogService interface {
	All() []domain.Product
	Lookup(id string) (domain.Product, bool)
	Filter(query, category string) []domain.Product
	Categories() []string
}

type cartService interface {
	AddItem(productID string, delta int) bool
	SetQuantity(id string, quantity int)
	Increment(id string)
	Decrement(id string)
	RemoveItem(id string)
	Clear()
	Snapshot() []domain.LineItem
}

type checkoutBuilder interface {
	BuildOrderMessage(items []domain.LineItem) string
	BuildCheckoutURL(items []domain.LineItem) string
}

type moneyFormatter interface {
	Format(amount decimal.Decimal) string
}

// Pinger reports whether the cart store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps holds the collaborators the handlers dispatch to.
type Deps struct {
	Catalog  catalogService
	Cart     cartService
	Checkout checkoutBuilder
	Money    moneyFormatter
	// Store is optional; readiness always succeeds without it.
	Store Pinger

	CORSAllowedOrigins []string
}

func (d Deps) validate() error {
	switch {
	case d.Catalog == nil:
		return errors.New("httpserver: catalog required")
	case d.Cart == nil:
		return errors.New("httpserver: cart required")
	case d.Checkout == nil:
		return errors.New("httpserver: checkout builder required")
	case d.Money == nil:
		return errors.New("httpserver: money formatter required")
	}
	return nil
}

// buildRouter wires routes for the storefront.
func buildRouter(logger *log.Logger, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery(), corsMiddleware(deps.CORSAllowedOrigins))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Store))

	catalogH := &catalogHandler{catalog: deps.Catalog, money: deps.Money}
	router.GET("/products", catalogH.list)
	router.GET("/products/:id", catalogH.get)
	router.GET("/categories", catalogH.categories)

	cartH := &cartHandler{cart: deps.Cart, builder: deps.Checkout, money: deps.Money, logger: logger}
	carts := router.Group("/cart")
	carts.GET("", cartH.get)
	carts.DELETE("", cartH.clear)
	carts.POST("/items", cartH.add)
	carts.PUT("/items/:id", cartH.setQuantity)
	carts.DELETE("/items/:id", cartH.remove)
	carts.POST("/items/:id/increment", cartH.increment)
	carts.POST("/items/:id/decrement", cartH.decrement)

	router.GET("/checkout", cartH.checkout)
	router.GET("/checkout/redirect", cartH.checkoutRedirect)

	router.NoRoute(func(c *gin.Context) {
		errorJSON(c, http.StatusNotFound, "route not found")
	})

	return router, nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
