package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/catalog"
)

type catalogHandler struct {
	catalog catalogService
	money   moneyFormatter
}

func (h *catalogHandler) list(c *gin.Context) {
	products := h.catalog.Filter(c.Query("q"), c.Query("category"))
	resp := productListResponse{
		Count:   len(products),
		Results: make([]productResponse, 0, len(products)),
	}
	for _, p := range products {
		resp.Results = append(resp.Results, toProductResponse(p, h.money))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *catalogHandler) get(c *gin.Context) {
	p, ok := h.catalog.Lookup(c.Param("id"))
	if !ok {
		errorJSON(c, http.StatusNotFound, "product not found")
		return
	}
	c.JSON(http.StatusOK, toProductResponse(p, h.money))
}

func (h *catalogHandler) categories(c *gin.Context) {
	categories := append([]string{catalog.AllCategories}, h.catalog.Categories()...)
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}
