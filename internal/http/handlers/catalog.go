package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/printshop-backend/internal/domain"
	"github.com/yungbote/printshop-backend/internal/http/response"
	"github.com/yungbote/printshop-backend/internal/normalization"
	"github.com/yungbote/printshop-backend/internal/platform/apierr"
	"github.com/yungbote/printshop-backend/internal/services"
)

type CatalogHandler struct {
	catalogService services.CatalogService
}

func NewCatalogHandler(catalogService services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

type productView struct {
	*types.Product
	UnitPrice int64 `json:"unit_price"`
}

func viewOfProduct(p *types.Product) productView {
	return productView{Product: p, UnitPrice: normalization.ParsePrice(p.DisplayPrice)}
}

// GET /products?limit=&offset=
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	products, err := h.catalogService.ListProducts(c.Request.Context(), limit, offset)
	if err != nil {
		response.RespondAPIError(c, apierr.FromCart("catalog.list", err))
		return
	}
	out := make([]productView, 0, len(products))
	for _, p := range products {
		if p != nil {
			out = append(out, viewOfProduct(p))
		}
	}
	c.JSON(http.StatusOK, gin.H{"products": out})
}

// GET /products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	p, err := h.catalogService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, apierr.FromCart("catalog.get", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": viewOfProduct(p)})
}
