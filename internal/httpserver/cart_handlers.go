package httpserver

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	cartsvc "storefront/internal/service/cart"
)

// quantityInput accepts a JSON number or string. Anything that does not
// parse as a number becomes 1 instead of a 400.
type quantityInput struct {
	raw string
	set bool
}

func (q *quantityInput) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	q.set = true
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		q.raw = s
		return nil
	}
	q.raw = string(b)
	return nil
}

func (q quantityInput) value() int {
	return cartsvc.ParseQuantity(q.raw)
}

// delta keeps the sign so a negative quantity on add lowers an existing line.
func (q quantityInput) delta() int {
	return cartsvc.ParseDelta(q.raw)
}

type addItemRequest struct {
	ProductID string        `json:"productId"`
	Quantity  quantityInput `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity quantityInput `json:"quantity"`
}

type cartHandler struct {
	cart    cartService
	builder checkoutBuilder
	money   moneyFormatter
	logger  *log.Logger
}

func (h *cartHandler) respond(c *gin.Context, cartOpen bool) {
	resp := toCartResponse(h.cart.Snapshot(), h.money)
	resp.CartOpen = cartOpen
	c.JSON(http.StatusOK, resp)
}

func (h *cartHandler) get(c *gin.Context) {
	h.respond(c, false)
}

func (h *cartHandler) add(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}
	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		errorJSON(c, http.StatusBadRequest, "productId required")
		return
	}
	delta := 1
	if req.Quantity.set {
		delta = req.Quantity.delta()
	}
	if !h.cart.AddItem(productID, delta) {
		errorJSON(c, http.StatusNotFound, "product not found")
		return
	}
	h.logger.Printf("cart: add product_id=%s qty=%d", productID, delta)
	h.respond(c, true)
}

func (h *cartHandler) setQuantity(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}
	h.cart.SetQuantity(c.Param("id"), req.Quantity.value())
	h.respond(c, false)
}

func (h *cartHandler) increment(c *gin.Context) {
	h.cart.Increment(c.Param("id"))
	h.respond(c, false)
}

func (h *cartHandler) decrement(c *gin.Context) {
	h.cart.Decrement(c.Param("id"))
	h.respond(c, false)
}

func (h *cartHandler) remove(c *gin.Context) {
	h.cart.RemoveItem(c.Param("id"))
	h.respond(c, false)
}

func (h *cartHandler) clear(c *gin.Context) {
	h.cart.Clear()
	h.logger.Printf("cart: cleared")
	h.respond(c, false)
}

func (h *cartHandler) checkout(c *gin.Context) {
	items := h.cart.Snapshot()
	if len(items) == 0 {
		errorJSON(c, http.StatusConflict, "cart is empty")
		return
	}
	c.JSON(http.StatusOK, checkoutResponse{
		Message: h.builder.BuildOrderMessage(items),
		URL:     h.builder.BuildCheckoutURL(items),
	})
}

func (h *cartHandler) checkoutRedirect(c *gin.Context) {
	items := h.cart.Snapshot()
	if len(items) == 0 {
		errorJSON(c, http.StatusConflict, "cart is empty")
		return
	}
	h.logger.Printf("cart: checkout lines=%d", len(items))
	c.Redirect(http.StatusFound, h.builder.BuildCheckoutURL(items))
}
