package pantry

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/baldhadhaval08/pantry-wizard/internal/api/handlers"
	"github.com/baldhadhaval08/pantry-wizard/internal/api/middleware"
	"github.com/baldhadhaval08/pantry-wizard/internal/model"
	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Store 食材庫存資料存取
type Store interface {
	ListPantry(ctx context.Context, userID uint) ([]model.PantryItem, error)
	Create(ctx context.Context, item *model.PantryItem) error
	Get(ctx context.Context, userID, itemID uint) (*model.PantryItem, error)
	Update(ctx context.Context, item *model.PantryItem) error
	Delete(ctx context.Context, userID, itemID uint) error
}

// CreateRequest 新增食材
type CreateRequest struct {
	Name     string   `json:"name" binding:"required"`
	Quantity *float64 `json:"quantity" binding:"required,gte=0"`
	Unit     string   `json:"unit" binding:"required"`
}

// UpdateRequest 更新食材，只修改有提供的欄位
type UpdateRequest struct {
	Name     *string  `json:"name"`
	Quantity *float64 `json:"quantity" binding:"omitempty,gte=0"`
	Unit     *string  `json:"unit"`
}

// Handler 食材庫存處理器
type Handler struct {
	store Store
}

// NewHandler 創建食材庫存處理器
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// List GET /api/pantry
func (h *Handler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		common.WriteError(c, common.ErrUnauthorized)
		return
	}

	items, err := h.store.ListPantry(c.Request.Context(), userID)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	if items == nil {
		items = []model.PantryItem{}
	}
	c.JSON(http.StatusOK, items)
}

// Create POST /api/pantry
func (h *Handler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		common.WriteError(c, common.ErrUnauthorized)
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}

	item := &model.PantryItem{
		UserID:   userID,
		Name:     strings.TrimSpace(req.Name),
		Quantity: *req.Quantity,
		Unit:     strings.TrimSpace(req.Unit),
	}
	if item.Name == "" || item.Unit == "" {
		handlers.RespondError(c, common.NewValidationError("name and unit must not be blank"))
		return
	}

	if err := h.store.Create(c.Request.Context(), item); err != nil {
		handlers.RespondError(c, err)
		return
	}

	common.LogInfo("Pantry item added",
		zap.Uint("user_id", userID),
		zap.Uint("item_id", item.ID),
	)
	c.JSON(http.StatusCreated, item)
}

// Update PUT /api/pantry/:id
func (h *Handler) Update(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		common.WriteError(c, common.ErrUnauthorized)
		return
	}
	itemID, ok := itemID(c)
	if !ok {
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}

	item, err := h.store.Get(c.Request.Context(), userID, itemID)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	if req.Name != nil {
		if item.Name = strings.TrimSpace(*req.Name); item.Name == "" {
			handlers.RespondError(c, common.NewValidationError("name must not be blank"))
			return
		}
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		if item.Unit = strings.TrimSpace(*req.Unit); item.Unit == "" {
			handlers.RespondError(c, common.NewValidationError("unit must not be blank"))
			return
		}
	}

	if err := h.store.Update(c.Request.Context(), item); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Delete DELETE /api/pantry/:id
func (h *Handler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		common.WriteError(c, common.ErrUnauthorized)
		return
	}
	itemID, ok := itemID(c)
	if !ok {
		return
	}

	if err := h.store.Delete(c.Request.Context(), userID, itemID); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func itemID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		common.WriteErrorResponse(c, http.StatusBadRequest, common.ErrCodeInvalidRequest, "invalid pantry item id")
		return 0, false
	}
	return uint(id), true
}
