package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/printshop-backend/internal/cartsync"
	"github.com/yungbote/printshop-backend/internal/domain/cart"
	"github.com/yungbote/printshop-backend/internal/http/response"
	"github.com/yungbote/printshop-backend/internal/platform/apierr"
	"github.com/yungbote/printshop-backend/internal/platform/ctxutil"
	"github.com/yungbote/printshop-backend/internal/platform/logger"
	"github.com/yungbote/printshop-backend/internal/services"
)

// StorefrontHandler drives the cart store of the calling browser profile.
type StorefrontHandler struct {
	log            *logger.Logger
	registry       *cartsync.Registry
	catalogService services.CatalogService
}

func NewStorefrontHandler(log *logger.Logger, registry *cartsync.Registry, catalogService services.CatalogService) *StorefrontHandler {
	return &StorefrontHandler{
		log:            log.With("handler", "StorefrontHandler"),
		registry:       registry,
		catalogService: catalogService,
	}
}

type storefrontResponse struct {
	Cart  cartsync.State     `json:"cart"`
	Error *response.APIError `json:"error,omitempty"`
}

// GET /storefront/cart
func (h *StorefrontHandler) GetCart(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, sess, "cart.state", nil)
}

// POST /storefront/cart/items
// body: { "product_id": "...", "quantity": n } (quantity defaults to 1)
func (h *StorefrontHandler) AddItem(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond(c, sess, "cart.add_item", sess.Store.RecordError("cart.add_item", cart.Validation("cart.add_item", "invalid request body")))
		return
	}
	product, err := h.catalogService.GetProduct(c.Request.Context(), req.ProductID)
	if err != nil {
		h.respond(c, sess, "cart.add_item", sess.Store.RecordError("cart.add_item", err))
		return
	}
	h.respond(c, sess, "cart.add_item", sess.Store.AddItem(c.Request.Context(), product.Ref(), req.Quantity))
}

// PATCH /storefront/cart/items/:id
// body: { "quantity": n } (n <= 0 removes the line)
func (h *StorefrontHandler) UpdateItem(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		h.respond(c, sess, "cart.update_quantity", sess.Store.RecordError("cart.update_quantity", cart.Validation("cart.update_quantity", "quantity is required")))
		return
	}
	h.respond(c, sess, "cart.update_quantity", sess.Store.UpdateQuantity(c.Request.Context(), c.Param("id"), *req.Quantity))
}

// DELETE /storefront/cart/items/:id
func (h *StorefrontHandler) RemoveItem(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, sess, "cart.remove_item", sess.Store.RemoveItem(c.Request.Context(), c.Param("id")))
}

// DELETE /storefront/cart
func (h *StorefrontHandler) ClearCart(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, sess, "cart.clear", sess.Store.ClearCart(c.Request.Context()))
}

// POST /storefront/cart/refresh
func (h *StorefrontHandler) Refresh(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, sess, "cart.refresh", sess.Store.Refresh(c.Request.Context()))
}

// DELETE /storefront/cart/error
func (h *StorefrontHandler) ClearError(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	sess.Store.ClearError()
	h.respond(c, sess, "cart.clear_error", nil)
}

// DELETE /storefront/session
func (h *StorefrontHandler) EndSession(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.ProfileID == "" {
		response.RespondError(c, http.StatusBadRequest, "validation", cart.Validation("cart.session", "profile id is required"))
		return
	}
	dropped := h.registry.Drop(rd.ProfileID)
	c.JSON(http.StatusOK, gin.H{"ok": true, "ended": dropped})
}

func (h *StorefrontHandler) session(c *gin.Context) (*cartsync.Session, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.ProfileID == "" {
		response.RespondError(c, http.StatusBadRequest, "validation", cart.Validation("cart.session", "profile id is required"))
		return nil, false
	}
	id := cartsync.Anonymous()
	if rd.UserID != uuid.Nil {
		id = cartsync.User(rd.UserID)
	}
	sess, err := h.registry.Session(c.Request.Context(), rd.ProfileID, id)
	if err != nil {
		response.RespondAPIError(c, apierr.FromCart("cart.session", err))
		return nil, false
	}
	return sess, true
}

func (h *StorefrontHandler) respond(c *gin.Context, sess *cartsync.Session, op string, err error) {
	body := storefrontResponse{Cart: sess.Store.State()}
	if err == nil {
		c.JSON(http.StatusOK, body)
		return
	}
	apiErr := apierr.FromCart(op, err)
	body.Error = &response.APIError{Message: cart.DisplayMessage(err), Code: apiErr.Code}
	if apiErr.Status >= http.StatusInternalServerError {
		fields := append([]interface{}{"op", op, "error", err}, ctxutil.LogFields(c.Request.Context())...)
		h.log.Warn("Storefront cart request failed", fields...)
	}
	c.JSON(apiErr.Status, body)
}
