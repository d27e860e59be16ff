package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/printshop-backend/internal/domain"
	"github.com/yungbote/printshop-backend/internal/domain/cart"
	"github.com/yungbote/printshop-backend/internal/platform/apierr"
	"github.com/yungbote/printshop-backend/internal/platform/ctxutil"
	"github.com/yungbote/printshop-backend/internal/platform/logger"
	"github.com/yungbote/printshop-backend/internal/services"
)

// CartHandler serves the per-user server cart. Every response carries the
// owner's current lines.
type CartHandler struct {
	log         *logger.Logger
	cartService services.CartService
}

func NewCartHandler(log *logger.Logger, cartService services.CartService) *CartHandler {
	return &CartHandler{log: log.With("handler", "CartHandler"), cartService: cartService}
}

type cartEnvelope struct {
	OK      bool                 `json:"ok"`
	Message string               `json:"message"`
	Kind    string               `json:"kind,omitempty"`
	Items   []types.CartLineView `json:"items"`
	Item    *types.CartLineView  `json:"item,omitempty"`
}

// GET /cart
func (h *CartHandler) List(c *gin.Context) {
	h.respondWithItems(c, "cart.list", uuidFromRequest(c), "ok", nil)
}

// POST /cart/items
// body: { "product_id", "unit_price", "quantity", "title", "image", "size" }
func (h *CartHandler) AddItem(c *gin.Context) {
	var req types.AddLineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "cart.add", cart.Validation("cart.add", "invalid request body"))
		return
	}
	ownerID := uuidFromRequest(c)
	line, err := h.cartService.AddOrIncrement(c.Request.Context(), ownerID, req)
	if err != nil {
		h.fail(c, "cart.add", err)
		return
	}
	h.respondWithItems(c, "cart.list", ownerID, "added", line)
}

// PATCH /cart/items/:id
// body: { "quantity": n } (n <= 0 removes the line)
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		h.fail(c, "cart.update", cart.Validation("cart.update", "quantity is required"))
		return
	}
	ownerID := uuidFromRequest(c)
	line, err := h.cartService.Update(c.Request.Context(), ownerID, c.Param("id"), *req.Quantity)
	if err != nil {
		h.fail(c, "cart.update", err)
		return
	}
	msg := "updated"
	if line == nil {
		msg = "removed"
	}
	h.respondWithItems(c, "cart.list", ownerID, msg, line)
}

// DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	ownerID := uuidFromRequest(c)
	if err := h.cartService.Remove(c.Request.Context(), ownerID, c.Param("id")); err != nil {
		h.fail(c, "cart.remove", err)
		return
	}
	h.respondWithItems(c, "cart.list", ownerID, "removed", nil)
}

// DELETE /cart
func (h *CartHandler) Clear(c *gin.Context) {
	ownerID := uuidFromRequest(c)
	n, err := h.cartService.ClearAll(c.Request.Context(), ownerID)
	if err != nil {
		h.fail(c, "cart.clear", err)
		return
	}
	h.respondWithItems(c, "cart.list", ownerID, fmt.Sprintf("cleared %d lines", n), nil)
}

func (h *CartHandler) respondWithItems(c *gin.Context, op string, ownerID uuid.UUID, msg string, line *types.CartLine) {
	lines, err := h.cartService.List(c.Request.Context(), ownerID)
	if err != nil {
		h.fail(c, op, err)
		return
	}
	env := cartEnvelope{OK: true, Message: msg, Items: cart.ViewOf(lines)}
	if line != nil {
		v := types.CartLineView{Line: *line, LineTotal: line.Total()}
		env.Item = &v
	}
	c.JSON(http.StatusOK, env)
}

func (h *CartHandler) fail(c *gin.Context, op string, err error) {
	apiErr := apierr.FromCart(op, err)
	ce := cart.Normalize(op, err)
	if apiErr.Status >= http.StatusInternalServerError {
		fields := append([]interface{}{"op", op, "error", err}, ctxutil.LogFields(c.Request.Context())...)
		h.log.Warn("Cart request failed", fields...)
	}
	c.JSON(apiErr.Status, cartEnvelope{
		OK:      false,
		Message: ce.Message,
		Kind:    apiErr.Code,
		Items:   []types.CartLineView{},
	})
}

func uuidFromRequest(c *gin.Context) uuid.UUID {
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
		return rd.UserID
	}
	return uuid.Nil
}
