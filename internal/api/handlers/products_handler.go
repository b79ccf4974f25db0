package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stratus-tools/bug-advisor/internal/models"
)

type ProductsHandler struct{}

func NewProductsHandler() *ProductsHandler { return &ProductsHandler{} }

// List serves the fixed product catalog the UI renders its picker from.
func (h *ProductsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"products": models.Catalog})
}
