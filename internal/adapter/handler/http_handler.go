package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rl1809/cocktail-pantry/internal/core/domain"
	"github.com/rl1809/cocktail-pantry/internal/core/service"
)

type StockUseCase interface {
	AddToStock(ctx context.Context, in service.AddItemInput) (domain.StockEntry, error)
	RemoveFromStock(ctx context.Context, userID, ingredientID int64, removal *domain.Quantity) (*domain.StockEntry, error)
	ListStock(ctx context.Context, userID int64) ([]domain.StockEntry, error)
}

type ShoppingUseCase interface {
	AddToShoppingList(ctx context.Context, in service.AddItemInput) (domain.ShoppingListEntry, error)
	SetDone(ctx context.Context, userID, ingredientID int64, done bool) (domain.ShoppingListEntry, error)
	RemoveFromShoppingList(ctx context.Context, userID, ingredientID int64) error
	ListShoppingList(ctx context.Context, userID int64) ([]domain.ShoppingListEntry, error)
	Checkout(ctx context.Context, userID int64) ([]domain.StockEntry, error)
}

type FeasibilityUseCase interface {
	ListMakeable(ctx context.Context, userID int64) ([]domain.FeasibilityResult, error)
	ListQuasiRealizable(ctx context.Context, userID int64, maxMissing int) ([]domain.FeasibilityResult, error)
}

type HTTPHandler struct {
	stock             StockUseCase
	shopping          ShoppingUseCase
	feasibility       FeasibilityUseCase
	defaultMaxMissing int
	logger            *zap.Logger
}

type ItemHTTPRequest struct {
	IngredientID int64   `json:"ingredient_id" binding:"required,gt=0"`
	Amount       float64 `json:"amount" binding:"required,gt=0"`
	Unit         string  `json:"unit" binding:"required,max=32"`
}

type DoneHTTPRequest struct {
	Done *bool `json:"done" binding:"required"`
}

type StockHTTPResponse struct {
	IngredientID int64     `json:"ingredient_id"`
	Amount       float64   `json:"amount"`
	Unit         string    `json:"unit"`
	Version      int       `json:"version"`
	UpdatedAt    time.Time `json:"updated_at,omitzero"`
}

type ShoppingHTTPResponse struct {
	IngredientID int64     `json:"ingredient_id"`
	Amount       float64   `json:"amount"`
	Unit         string    `json:"unit"`
	Done         bool      `json:"done"`
	Version      int       `json:"version"`
	UpdatedAt    time.Time `json:"updated_at,omitzero"`
}

func NewHTTPHandler(stock StockUseCase, shopping ShoppingUseCase, feasibility FeasibilityUseCase, defaultMaxMissing int, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{
		stock:             stock,
		shopping:          shopping,
		feasibility:       feasibility,
		defaultMaxMissing: defaultMaxMissing,
		logger:            logger,
	}
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HTTPHandler) ListStock(c *gin.Context) {
	userID, ok := h.pathID(c, "user_id")
	if !ok {
		return
	}

	entries, err := h.stock.ListStock(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}

	out := make([]StockHTTPResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toStockResponse(e))
	}
	c.JSON(http.StatusOK, out)
}

func (h *HTTPHandler) AddToStock(c *gin.Context) {
	in, ok := h.bindItem(c)
	if !ok {
		return
	}

	entry, err := h.stock.AddToStock(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toStockResponse(entry))
}

// RemoveFromStock deletes the entry, or subtracts ?amount=&unit= from it.
func (h *HTTPHandler) RemoveFromStock(c *gin.Context) {
	userID, ok := h.pathID(c, "user_id")
	if !ok {
		return
	}
	ingredientID, ok := h.pathID(c, "ingredient_id")
	if !ok {
		return
	}

	var removal *domain.Quantity
	if raw := c.Query("amount"); raw != "" {
		amount, err := strconv.ParseFloat(raw, 64)
		unit := c.Query("unit")
		if err != nil || amount <= 0 || unit == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a positive number with a unit"})
			return
		}
		removal = &domain.Quantity{Amount: amount, Unit: unit}
	}

	remaining, err := h.stock.RemoveFromStock(c.Request.Context(), userID, ingredientID, removal)
	if err != nil {
		h.fail(c, err)
		return
	}
	if remaining == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, toStockResponse(*remaining))
}

func (h *HTTPHandler) ListShoppingList(c *gin.Context) {
	userID, ok := h.pathID(c, "user_id")
	if !ok {
		return
	}

	entries, err := h.shopping.ListShoppingList(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}

	out := make([]ShoppingHTTPResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toShoppingResponse(e))
	}
	c.JSON(http.StatusOK, out)
}

func (h *HTTPHandler) AddToShoppingList(c *gin.Context) {
	in, ok := h.bindItem(c)
	if !ok {
		return
	}

	entry, err := h.shopping.AddToShoppingList(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toShoppingResponse(entry))
}

func (h *HTTPHandler) SetShoppingDone(c *gin.Context) {
	userID, ok := h.pathID(c, "user_id")
	if !ok {
		return
	}
	ingredientID, ok := h.pathID(c, "ingredient_id")
	if !ok {
		return
	}

	var req DoneHTTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry, err := h.shopping.SetDone(c.Request.Context(), userID, ingredientID, *req.Done)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toShoppingResponse(entry))
}

func (h *HTTPHandler) RemoveFromShoppingList(c *gin.Context) {
	userID, ok := h.pathID(c, "user_id")
	if !ok {
		return
	}
	ingredientID, ok := h.pathID(c, "ingredient_id")
	if !ok {
		return
	}

	if err := h.shopping.RemoveFromShoppingList(c.Request.Context(), userID, ingredientID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) Checkout(c *gin.Context) {
	userID, ok := h.pathID(c, "user_id")
	if !ok {
		return
	}

	moved, err := h.shopping.Checkout(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}

	out := make([]StockHTTPResponse, 0, len(moved))
	for _, e := range moved {
		out = append(out, toStockResponse(e))
	}
	c.JSON(http.StatusOK, out)
}

func (h *HTTPHandler) ListMakeable(c *gin.Context) {
	userID, ok := h.pathID(c, "user_id")
	if !ok {
		return
	}

	results, err := h.feasibility.ListMakeable(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(results))
}

func (h *HTTPHandler) ListQuasiRealizable(c *gin.Context) {
	userID, ok := h.pathID(c, "user_id")
	if !ok {
		return
	}

	maxMissing := h.defaultMaxMissing
	if raw := c.Query("max_missing"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_missing must be a non-negative integer"})
			return
		}
		maxMissing = n
	}

	results, err := h.feasibility.ListQuasiRealizable(c.Request.Context(), userID, maxMissing)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(results))
}

func (h *HTTPHandler) bindItem(c *gin.Context) (service.AddItemInput, bool) {
	userID, ok := h.pathID(c, "user_id")
	if !ok {
		return service.AddItemInput{}, false
	}

	var req ItemHTTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("invalid item payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return service.AddItemInput{}, false
	}

	return service.AddItemInput{
		UserID:       userID,
		IngredientID: req.IngredientID,
		Amount:       req.Amount,
		Unit:         req.Unit,
	}, true
}

func (h *HTTPHandler) pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}

func (h *HTTPHandler) fail(c *gin.Context, err error) {
	code := httpStatus(err)
	if code == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(code, gin.H{"error": "internal error"})
		return
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func toStockResponse(e domain.StockEntry) StockHTTPResponse {
	return StockHTTPResponse{
		IngredientID: e.IngredientID,
		Amount:       e.Quantity.Amount,
		Unit:         e.Quantity.Unit,
		Version:      e.Version,
		UpdatedAt:    e.UpdatedAt,
	}
}

func toShoppingResponse(e domain.ShoppingListEntry) ShoppingHTTPResponse {
	return ShoppingHTTPResponse{
		IngredientID: e.IngredientID,
		Amount:       e.Quantity.Amount,
		Unit:         e.Quantity.Unit,
		Done:         e.Done,
		Version:      e.Version,
		UpdatedAt:    e.UpdatedAt,
	}
}

func nonNil(results []domain.FeasibilityResult) []domain.FeasibilityResult {
	if results == nil {
		return []domain.FeasibilityResult{}
	}
	return results
}
